package files

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.pdf")
	require.NoError(t, os.WriteFile(path, []byte("abc"), 0o644))

	info, err := ValidateFile(path)
	require.NoError(t, err)
	assert.Equal(t, "report.pdf", info.Name)
	assert.Equal(t, int64(3), info.Size)
	assert.Equal(t, "application/pdf", info.Type)

	data, err := info.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), data)
}

func TestValidateFileAllowsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.bin")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	info, err := ValidateFile(path)
	require.NoError(t, err)
	assert.Zero(t, info.Size)
}

func TestValidateFilesReportsEveryFailure(t *testing.T) {
	dir := t.TempDir()

	_, err := ValidateFiles([]string{filepath.Join(dir, "missing-a"), dir})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing-a: file does not exist")
	assert.Contains(t, err.Error(), "is a directory")

	_, err = ValidateFiles(nil)
	assert.Error(t, err)
}

func TestGetTotalSize(t *testing.T) {
	assert.Equal(t, int64(7), GetTotalSize([]FileInfo{{Size: 3}, {Size: 4}}))
}
