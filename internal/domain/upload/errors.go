package upload

import "errors"

var (
	ErrImageNotFound = errors.New("image not found")
	ErrNotOwner      = errors.New("you do not own this image")
	ErrNoFiles       = errors.New("no files provided")
)
