package protocol

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func TestLegacyEncodeShapes(t *testing.T) {
	codec := LegacyCodec{}

	cases := []struct {
		name     string
		frame    Frame
		want     string
		isString bool
	}{
		{"keepalive", Keepalive(), "ping", true},
		{"chat", Chat("hello <there>"), `{"text":"hello <there>"}`, true},
		{"meta", Meta("report.pdf", "application/pdf", 3), `{"meta":{"name":"report.pdf","type":"application/pdf"}}`, true},
		{"end", FileEnd(), "file-end", true},
		{"chunk", Chunk([]byte{0x00, 0xff}), "\x00\xff", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := codec.Encode(tc.frame)
			require.NoError(t, err)
			assert.Equal(t, tc.want, string(p.Data))
			assert.Equal(t, tc.isString, p.IsString)
		})
	}
}

func TestLegacyDecodeClassificationOrder(t *testing.T) {
	codec := LegacyCodec{}

	cases := []struct {
		name string
		in   string
		kind Kind
	}{
		{"keepalive literal", "ping", KindKeepalive},
		{"keepalive is exact match only", "ping!", KindFileChunk},
		{"chat prefix", `{"text":"hi"}`, KindChat},
		{"chat containing meta marker stays chat", `{"text":"{\"meta\":1}"}`, KindChat},
		{"terminator literal", "file-end", KindFileEnd},
		{"meta substring", `{"v":1,"meta":{"name":"a","type":"b"}}`, KindFileMeta},
		{"meta substring without meta object is a chunk", `{"meta":null}`, KindFileChunk},
		{"anything else is a chunk", "raw bytes", KindFileChunk},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f, err := codec.Decode(Payload{Data: []byte(tc.in)})
			require.NoError(t, err)
			assert.Equal(t, tc.kind, f.Kind)
		})
	}
}

func TestLegacyDecodeBinaryCollision(t *testing.T) {
	// Binary payloads are sniffed too; this is the format's known weakness.
	f, err := LegacyCodec{}.Decode(Payload{Data: []byte("file-end"), IsString: false})
	require.NoError(t, err)
	assert.Equal(t, KindFileEnd, f.Kind)
}

func TestLegacyDecodeMalformedFailsClosed(t *testing.T) {
	codec := LegacyCodec{}

	_, err := codec.Decode(Payload{Data: []byte(`{"text":`), IsString: true})
	assert.ErrorIs(t, err, ErrMalformedFrame)

	_, err = codec.Decode(Payload{Data: []byte(`{"meta":{"name":`), IsString: true})
	assert.ErrorIs(t, err, ErrMalformedFrame)
}

func TestLegacyDecodeNonStringText(t *testing.T) {
	codec := LegacyCodec{}

	cases := map[string]string{
		`{"text":5}`:          "5",
		`{"text":true}`:       "true",
		`{"text":null}`:       "",
		`{"text":{"a": [1]}}`: `{"a":[1]}`,
	}
	for in, want := range cases {
		f, err := codec.Decode(Payload{Data: []byte(in), IsString: true})
		require.NoError(t, err, in)
		assert.Equal(t, KindChat, f.Kind, in)
		assert.Equal(t, want, f.Text, in)
	}
}

func TestLegacyDecodeMeta(t *testing.T) {
	f, err := LegacyCodec{}.Decode(Payload{Data: []byte(`{"meta":{"name":"report.pdf","type":"application/pdf"}}`)})
	require.NoError(t, err)
	assert.Equal(t, KindFileMeta, f.Kind)
	assert.Equal(t, "report.pdf", f.Meta.Name)
	assert.Equal(t, "application/pdf", f.Meta.Type)
	assert.Zero(t, f.Meta.Size)
}

func TestTaggedRoundTrip(t *testing.T) {
	codec := TaggedCodec{}

	frames := []Frame{
		Keepalive(),
		Chat("ping"),
		Chat("file-end"),
		Chat(`{"meta":{"name":"x"}}`),
		Meta("report.pdf", "application/pdf", 3),
		Chunk([]byte("ping")),
		Chunk([]byte{0x01, 0x02, 0x03}),
		FileEnd(),
	}

	for _, in := range frames {
		p, err := codec.Encode(in)
		require.NoError(t, err)
		assert.False(t, p.IsString)

		out, err := codec.Decode(p)
		require.NoError(t, err)
		assert.Equal(t, in.Kind, out.Kind)

		switch in.Kind {
		case KindChat:
			assert.Equal(t, in.Text, out.Text)
		case KindFileMeta:
			assert.Equal(t, in.Meta, out.Meta)
		case KindFileChunk:
			assert.True(t, bytes.Equal(in.Data, out.Data))
		}
	}
}

func TestTaggedDecodeErrors(t *testing.T) {
	codec := TaggedCodec{}

	_, err := codec.Decode(Payload{Data: []byte("ping")})
	assert.ErrorIs(t, err, ErrMalformedFrame)

	msg, err := NewMessage("bogus", nil)
	require.NoError(t, err)
	raw, err := msgpack.Marshal(msg)
	require.NoError(t, err)
	_, err = codec.Decode(Payload{Data: raw})
	assert.ErrorIs(t, err, ErrUnknownFrame)
}

func TestSelectCodec(t *testing.T) {
	assert.Equal(t, "tagged", SelectCodec(ClientTypeCLI).Name())
	assert.Equal(t, "legacy", SelectCodec(ClientTypeWeb).Name())
	assert.Equal(t, "legacy", SelectCodec("").Name())
}
