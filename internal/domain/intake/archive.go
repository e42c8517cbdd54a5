package intake

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

// ArchiveLoader extracts the images stored in one zip file.
type ArchiveLoader struct {
	file File

	// Concurrency bounds the number of entries extracted at once.
	// Zero means one goroutine per entry.
	Concurrency int
}

func NewArchiveLoader(f File) *ArchiveLoader {
	return &ArchiveLoader{file: f}
}

// ExtractImages decodes the archive and dispatches exactly one callback per
// entry that survives the name filter: onLoad when the extracted size is
// below sizeLimit, onInvalid when it is not, onFailed when the entry cannot
// be read. Callbacks never run concurrently with each other; any of them may
// be nil.
//
// When the archive itself cannot be decoded, onFailed is called once with the
// archive file, no entry callback fires, and the error is returned.
// ExtractImages returns after every entry callback has run.
func (l *ArchiveLoader) ExtractImages(
	ctx context.Context,
	sizeLimit int64,
	onLoad func(File),
	onInvalid func(File, error),
	onFailed func(File, error),
) error {
	var mu sync.Mutex
	emit := func(fn func()) {
		mu.Lock()
		defer mu.Unlock()
		fn()
	}

	reader, err := l.decode()
	if err != nil {
		err = fmt.Errorf("%w: %s: %v", ErrMalformedArchive, l.file.Name(), err)
		if onFailed != nil {
			onFailed(l.file, err)
		}
		return err
	}

	var g errgroup.Group
	if l.Concurrency > 0 {
		g.SetLimit(l.Concurrency)
	}

	for _, zf := range reader.File {
		if zf.FileInfo().IsDir() || !KeepEntry(zf.Name) {
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				stub := newDetachedFile(zf.Name, entryContentType(zf.Name), int64(zf.UncompressedSize64), zf.Modified)
				emit(func() {
					if onFailed != nil {
						onFailed(stub, err)
					}
				})
				return nil
			}

			image, err := extractEntry(zf, sizeLimit)
			emit(func() {
				switch {
				case err != nil:
					if onFailed != nil {
						onFailed(image, err)
					}
				case image.Size() < sizeLimit:
					if onLoad != nil {
						onLoad(image)
					}
				default:
					if onInvalid != nil {
						onInvalid(image, ErrFileTooLarge)
					}
				}
			})
			return nil
		})
	}

	return g.Wait()
}

func (l *ArchiveLoader) decode() (*zip.Reader, error) {
	rc, err := l.file.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, err
	}
	return zip.NewReader(bytes.NewReader(data), int64(len(data)))
}

// extractEntry reads at most sizeLimit bytes of the entry. Oversize entries
// are reported with their size but without their content.
func extractEntry(zf *zip.File, sizeLimit int64) (*MemoryFile, error) {
	name := zf.Name
	contentType := entryContentType(name)
	modified := zf.Modified

	rc, err := zf.Open()
	if err != nil {
		return newDetachedFile(name, contentType, int64(zf.UncompressedSize64), modified),
			fmt.Errorf("%w: %s: %v", ErrMalformedEntry, name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, sizeLimit))
	if err != nil {
		return newDetachedFile(name, contentType, int64(zf.UncompressedSize64), modified),
			fmt.Errorf("%w: %s: %v", ErrMalformedEntry, name, err)
	}

	if int64(len(data)) >= sizeLimit {
		size := int64(zf.UncompressedSize64)
		if size < int64(len(data)) {
			size = int64(len(data))
		}
		// The declared size can lie; anything that fills the limit is oversize.
		if size < sizeLimit {
			size = sizeLimit
		}
		return newDetachedFile(name, contentType, size, modified), nil
	}

	return NewMemoryFile(name, contentType, data, modified), nil
}

func entryContentType(name string) string {
	if ct := ContentTypeByName(name); ct != "" {
		return ct
	}
	if strings.Contains(strings.ToLower(name), ".jpeg") {
		return "image/jpeg"
	}
	return "application/octet-stream"
}
