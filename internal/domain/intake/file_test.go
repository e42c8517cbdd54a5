package intake

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentTypeByName(t *testing.T) {
	assert.Equal(t, "image/jpeg", ContentTypeByName("a.JPG"))
	assert.Equal(t, "image/jpeg", ContentTypeByName("dir/a.jpeg"))
	assert.Equal(t, "image/png", ContentTypeByName("a.png"))
	assert.Equal(t, "application/zip", ContentTypeByName("photos.ZIP"))
	assert.Equal(t, "", ContentTypeByName("noext"))
}

func TestOpenDiskFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "photo.png")
	require.NoError(t, os.WriteFile(path, []byte("pixels"), 0o644))

	f, err := OpenDiskFile(path)
	require.NoError(t, err)
	assert.Equal(t, "photo.png", f.Name())
	assert.Equal(t, "image/png", f.ContentType())
	assert.Equal(t, int64(6), f.Size())
	assert.False(t, f.LastModified().IsZero())

	rc, err := f.Open()
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "pixels", string(data))

	_, err = OpenDiskFile(dir)
	assert.ErrorIs(t, err, ErrNotRegularFile)

	_, err = OpenDiskFile(filepath.Join(dir, "missing.png"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestMultipartFile(t *testing.T) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreatePart(map[string][]string{
		"Content-Disposition": {`form-data; name="files"; filename="a.png"`},
		"Content-Type":        {"image/png; charset=binary"},
	})
	require.NoError(t, err)
	_, _ = part.Write([]byte("png"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))

	received := time.Now()
	f := NewMultipartFile(req.MultipartForm.File["files"][0], received)
	assert.Equal(t, "a.png", f.Name())
	assert.Equal(t, "image/png", f.ContentType())
	assert.Equal(t, int64(3), f.Size())
	assert.Equal(t, received, f.LastModified())
}
