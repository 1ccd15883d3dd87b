package utils

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileHelpers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")

	empty, err := IsEmptyFile(path)
	require.NoError(t, err)
	assert.True(t, empty)

	require.NoError(t, os.WriteFile(path, nil, 0600))
	empty, err = IsEmptyFile(path)
	require.NoError(t, err)
	assert.True(t, empty)

	require.NoError(t, os.WriteFile(path, []byte("a,b\n"), 0600))
	empty, err = IsEmptyFile(path)
	require.NoError(t, err)
	assert.False(t, empty)

	other := filepath.Join(dir, "other.png")
	require.NoError(t, os.WriteFile(other, []byte("x"), 0600))

	// Missing files are ignored.
	require.NoError(t, RemoveFiles(path, other, filepath.Join(dir, "missing")))
	assert.False(t, FileExists(path))
	assert.False(t, FileExists(other))
}

type failingCloser struct {
	bytes.Buffer
	closed bool
}

func (self *failingCloser) Close() error {
	self.closed = true
	return errors.New("disk full")
}

func TestWriteAndClose(t *testing.T) {
	fd := &failingCloser{}
	err := WriteAndClose(fd, func(w io.Writer) error {
		_, err := w.Write([]byte("Date,Count\n"))
		return err
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.True(t, fd.closed)

	// A write error is reported over the close error.
	fd = &failingCloser{}
	err = WriteAndClose(fd, func(w io.Writer) error {
		return errors.New("render failed")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "render failed")
	assert.True(t, fd.closed)

	path := filepath.Join(t.TempDir(), "logs_per_day.csv")
	require.NoError(t, WriteFile(path, func(w io.Writer) error {
		_, err := w.Write([]byte("Date,Count\n"))
		return err
	}))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Date,Count\n", string(data))

	err = WriteFile(filepath.Join(t.TempDir(), "missing", "x.csv"),
		func(w io.Writer) error { return nil })
	assert.Error(t, err)
}

func TestStringHelpers(t *testing.T) {
	assert.Equal(t, []string{"b", "a", "c"},
		Uniquify([]string{"b", "a", "b", "c", "a"}))
	assert.Equal(t, []string{"a", "b"}, FirstN([]string{"a", "b", "c"}, 2))
	assert.Equal(t, []string{"a"}, FirstN([]string{"a"}, 3))
	assert.Equal(t, "", ToString(nil))
	assert.Equal(t, "16", ToString(16))
	assert.True(t, InString([]string{"evtx", "jsonl"}, "jsonl"))
}
