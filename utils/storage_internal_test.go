package utils

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokenReader struct {
	r io.Reader
}

func (b brokenReader) Read(p []byte) (int, error) {
	n, err := b.r.Read(p)
	if err == io.EOF {
		return n, errors.New("connection reset")
	}
	return n, err
}

func TestWriteFile(t *testing.T) {
	t.Run("writes content", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "a.png")
		require.NoError(t, writeFile(path, strings.NewReader("png-bytes")))

		got, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "png-bytes", string(got))
	})

	t.Run("failed copy removes the partial file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "a.png")

		err := writeFile(path, brokenReader{r: strings.NewReader("partial")})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection reset")

		_, statErr := os.Stat(path)
		assert.True(t, os.IsNotExist(statErr))
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}
