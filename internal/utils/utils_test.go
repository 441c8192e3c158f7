package utils

import (
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "512 B", FormatSize(512))
	assert.Equal(t, "1.50 KB", FormatSize(1536))
	assert.Equal(t, "2.00 MB", FormatSize(2*1024*1024))
	assert.Equal(t, "1.00 GB", FormatSize(1024*1024*1024))
}

func TestFormatTimeDuration(t *testing.T) {
	assert.Equal(t, "5s", FormatTimeDuration(5*time.Second))
	assert.Equal(t, "2m 3s", FormatTimeDuration(123*time.Second))
	assert.Equal(t, "1h 0m 1s", FormatTimeDuration(time.Hour+time.Second))
}

func TestSafeFilename(t *testing.T) {
	cases := map[string]string{
		"report.pdf":          "report.pdf",
		"../../etc/passwd":    "passwd",
		`..\..\windows\x.dll`: "x.dll",
		"/":                   "download",
		"":                    "download",
		"..":                  "download",
	}
	for in, want := range cases {
		assert.Equal(t, want, SafeFilename(in, "download"), "input %q", in)
	}
}

func TestGetUniqueFilename(t *testing.T) {
	dir := t.TempDir()

	first := GetUniqueFilename(dir, "report.pdf")
	assert.Equal(t, filepath.Join(dir, "report.pdf"), first)
	require.NoError(t, os.WriteFile(first, []byte("x"), 0o644))

	second := GetUniqueFilename(dir, "report.pdf")
	assert.Equal(t, filepath.Join(dir, "report (1).pdf"), second)
	require.NoError(t, os.WriteFile(second, []byte("x"), 0o644))

	assert.Equal(t, filepath.Join(dir, "report (2).pdf"), GetUniqueFilename(dir, "report.pdf"))
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "short", TruncateString("short", 10))
	assert.Equal(t, "abcd…", TruncateString("abcdefgh", 5))
}

func TestIsRestrictedInterface(t *testing.T) {
	assert.True(t, isRestrictedInterface("wg0", nil))
	assert.True(t, isRestrictedInterface("CloudflareWARP", nil))
	assert.True(t, isRestrictedInterface("eth0", []net.IP{net.ParseIP("100.100.1.2")}))
	assert.False(t, isRestrictedInterface("eth0", []net.IP{net.ParseIP("192.168.1.10")}))
}
