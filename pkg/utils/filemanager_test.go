package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/invoice-combiner/internal/normalize"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
}

func TestDiscoverInputFiles(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "b.csv"))
	touch(t, filepath.Join(dir, "a.xlsx"))
	touch(t, filepath.Join(dir, "c.XLSM"))
	touch(t, filepath.Join(dir, "notes.pdf"))
	touch(t, filepath.Join(dir, "readme.md"))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.csv"), 0755))

	files, err := DiscoverInputFiles(dir)
	require.NoError(t, err)

	// Recognized extensions only, directories excluded, sorted by name.
	require.Len(t, files, 3)
	assert.Equal(t, filepath.Join(dir, "a.xlsx"), files[0])
	assert.Equal(t, filepath.Join(dir, "b.csv"), files[1])
	assert.Equal(t, filepath.Join(dir, "c.XLSM"), files[2])
}

func TestDiscoverInputFilesMissingDir(t *testing.T) {
	_, err := DiscoverInputFiles(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
}

func TestArchiveFile(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "archive")
	src := filepath.Join(dir, "done.csv")
	touch(t, src)

	require.NoError(t, ArchiveFile(src, archive))

	_, err := os.Stat(src)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(archive, "done.csv"))
	assert.NoError(t, err)
}

func TestArchiveFileCollisionKeepsBoth(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "archive")

	first := filepath.Join(dir, "done.csv")
	touch(t, first)
	require.NoError(t, ArchiveFile(first, archive))

	second := filepath.Join(dir, "done.csv")
	touch(t, second)
	require.NoError(t, ArchiveFile(second, archive))

	entries, err := os.ReadDir(archive)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestWriteErrorLog(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	runID := uuid.New()

	path, err := WriteErrorLog(dir, runID, []normalize.FailureReport{
		{FileName: "b.csv", Stage: normalize.StageHeader, Reason: "no header row found in the first 20 rows"},
	})
	require.NoError(t, err)
	assert.Contains(t, filepath.Base(path), runID.String())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "b.csv")
	assert.Contains(t, string(content), "[header]")
	assert.Contains(t, string(content), "no header row")
}
