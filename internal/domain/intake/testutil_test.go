package intake

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"
	"time"
)

// stubFile reports any size without holding the bytes.
type stubFile struct {
	name        string
	contentType string
	size        int64
}

func (f *stubFile) Name() string            { return f.name }
func (f *stubFile) ContentType() string     { return f.contentType }
func (f *stubFile) Size() int64             { return f.size }
func (f *stubFile) LastModified() time.Time { return time.Time{} }
func (f *stubFile) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(nil)), nil
}

type zipEntry struct {
	name     string
	body     []byte
	modified time.Time
}

func buildZip(t *testing.T, entries ...zipEntry) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, e := range entries {
		hdr := &zip.FileHeader{Name: e.name, Method: zip.Store, Modified: e.modified}
		fw, err := w.CreateHeader(hdr)
		if err != nil {
			t.Fatalf("failed to create zip entry %s: %v", e.name, err)
		}
		if _, err := fw.Write(e.body); err != nil {
			t.Fatalf("failed to write zip entry %s: %v", e.name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("failed to close zip writer: %v", err)
	}
	return buf.Bytes()
}

func zipFile(name string, data []byte) *MemoryFile {
	return NewMemoryFile(name, "application/zip", data, time.Now())
}
