package intake

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// File is one binary blob handed to the intake, either by the caller or
// synthesized from an archive entry. The content type is the declared one;
// it is never sniffed from the bytes.
type File interface {
	Name() string
	ContentType() string
	Size() int64
	LastModified() time.Time
	Open() (io.ReadCloser, error)
}

// knownTypes covers what the intake cares about. mime.TypeByExtension has no
// builtin entry for .zip, so it cannot be relied on alone.
var knownTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".zip":  "application/zip",
}

// ContentTypeByName guesses a content type from the file extension.
func ContentTypeByName(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ct, ok := knownTypes[ext]; ok {
		return ct
	}
	return mediaType(mime.TypeByExtension(ext))
}

// mediaType strips parameters such as charset.
func mediaType(ct string) string {
	return strings.TrimSpace(strings.Split(ct, ";")[0])
}

// MemoryFile keeps its content in memory. Archive entries are turned into
// MemoryFiles once extracted.
type MemoryFile struct {
	name        string
	contentType string
	data        []byte
	size        int64
	modified    time.Time
}

func NewMemoryFile(name, contentType string, data []byte, modified time.Time) *MemoryFile {
	return &MemoryFile{
		name:        name,
		contentType: contentType,
		data:        data,
		size:        int64(len(data)),
		modified:    modified,
	}
}

// newDetachedFile describes an entry whose content was not retained, either
// because it crossed the size limit or because it could not be read.
func newDetachedFile(name, contentType string, size int64, modified time.Time) *MemoryFile {
	return &MemoryFile{name: name, contentType: contentType, size: size, modified: modified}
}

func (f *MemoryFile) Name() string            { return f.name }
func (f *MemoryFile) ContentType() string     { return f.contentType }
func (f *MemoryFile) Size() int64             { return f.size }
func (f *MemoryFile) LastModified() time.Time { return f.modified }
func (f *MemoryFile) Bytes() []byte           { return f.data }

func (f *MemoryFile) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(f.data)), nil
}

// DiskFile is a regular file picked from the local filesystem.
type DiskFile struct {
	path        string
	contentType string
	size        int64
	modified    time.Time
}

func OpenDiskFile(path string) (*DiskFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%s: %w", path, ErrNotRegularFile)
	}
	return &DiskFile{
		path:        path,
		contentType: ContentTypeByName(path),
		size:        info.Size(),
		modified:    info.ModTime(),
	}, nil
}

func (f *DiskFile) Name() string            { return filepath.Base(f.path) }
func (f *DiskFile) Path() string            { return f.path }
func (f *DiskFile) ContentType() string     { return f.contentType }
func (f *DiskFile) Size() int64             { return f.size }
func (f *DiskFile) LastModified() time.Time { return f.modified }

func (f *DiskFile) Open() (io.ReadCloser, error) {
	return os.Open(f.path)
}

// MultipartFile wraps one part of a multipart/form-data drop.
type MultipartFile struct {
	header   *multipart.FileHeader
	received time.Time
}

// NewMultipartFile uses the time the request arrived as the modification
// time, since browsers do not send one.
func NewMultipartFile(header *multipart.FileHeader, received time.Time) *MultipartFile {
	return &MultipartFile{header: header, received: received}
}

func (f *MultipartFile) Name() string            { return f.header.Filename }
func (f *MultipartFile) Size() int64             { return f.header.Size }
func (f *MultipartFile) LastModified() time.Time { return f.received }

func (f *MultipartFile) ContentType() string {
	return mediaType(f.header.Header.Get("Content-Type"))
}

func (f *MultipartFile) Open() (io.ReadCloser, error) {
	return f.header.Open()
}
