package intake

import "errors"

var (
	ErrInvalidMimeType  = errors.New("file type is not allowed")
	ErrFileTooLarge     = errors.New("file exceeds maximum allowed size")
	ErrMalformedArchive = errors.New("archive could not be decoded")
	ErrMalformedEntry   = errors.New("archive entry could not be extracted")
	ErrNotRegularFile   = errors.New("not a regular file")
)
