package utils_test

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasky/utils"
)

func fileHeader(t *testing.T, filename, contentType string, content []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", `form-data; name="avatar"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["avatar"][0]
}

func TestDiskAvatarStoreSave(t *testing.T) {
	root := t.TempDir()
	store := utils.NewDiskAvatarStore(root, 1024)

	first, err := store.Save(fileHeader(t, "face.JPG", "image/jpeg", []byte("jpeg")))
	require.NoError(t, err)
	second, err := store.Save(fileHeader(t, "face.JPG", "image/jpeg", []byte("jpeg")))
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "uploads never overwrite each other")
	assert.True(t, strings.HasPrefix(first, "/uploads/avatars/"))
	assert.Equal(t, ".jpg", filepath.Ext(first))

	content, err := os.ReadFile(filepath.Join(root, "avatars", filepath.Base(first)))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", string(content))
}

func TestDiskAvatarStoreRejects(t *testing.T) {
	store := utils.NewDiskAvatarStore(t.TempDir(), 8)

	_, err := store.Save(fileHeader(t, "script.sh", "image/png", []byte("x")))
	assert.ErrorIs(t, err, utils.ErrUnsupportedImage)

	_, err = store.Save(fileHeader(t, "fake.png", "text/html", []byte("x")))
	assert.ErrorIs(t, err, utils.ErrUnsupportedImage)

	_, err = store.Save(fileHeader(t, "big.gif", "image/gif", bytes.Repeat([]byte("x"), 9)))
	var tooLarge *utils.FileTooLargeError
	require.True(t, errors.As(err, &tooLarge))
	assert.Equal(t, int64(8), tooLarge.Limit)
}
