package invite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDropsExistingQuery(t *testing.T) {
	link, err := Build("https://quickshare.onrender.com/?call=old&x=1#top", "brave-red-fox-jumps")
	require.NoError(t, err)
	assert.Equal(t, "https://quickshare.onrender.com/?call=brave-red-fox-jumps", link)
}

func TestParse(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"brave-red-fox-jumps", "brave-red-fox-jumps"},
		{"  brave-red-fox-jumps\n", "brave-red-fox-jumps"},
		{"https://quickshare.onrender.com/?call=calm-blue-owl-sings", "calm-blue-owl-sings"},
		{"http://localhost:5173/app?theme=dark&call=calm-blue-owl-sings", "calm-blue-owl-sings"},
	}

	for _, tc := range cases {
		got, err := Parse(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got)
	}
}

func TestParseRejectsLinkWithoutIdentity(t *testing.T) {
	_, err := Parse("https://quickshare.onrender.com/?theme=dark")
	assert.ErrorIs(t, err, ErrNoIdentity)

	_, err = Parse("   ")
	assert.ErrorIs(t, err, ErrNoIdentity)
}

func TestRoundTrip(t *testing.T) {
	link, err := Build("http://localhost:5173/", "quiet-green-bear-runs")
	require.NoError(t, err)

	id, err := Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "quiet-green-bear-runs", id)
}
