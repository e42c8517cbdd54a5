package intake

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
)

// DataURL encodes the file content as a base64 data URL.
func DataURL(f File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", f.Name(), err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", f.Name(), err)
	}

	contentType := f.ContentType()
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// LoadAsDataURL converts f in the background and hands the result to
// callback. A nil callback is allowed.
func LoadAsDataURL(ctx context.Context, f File, callback func(url string, err error)) {
	go func() {
		url, err := DataURL(f)
		if ctxErr := ctx.Err(); ctxErr != nil {
			url, err = "", ctxErr
		}
		if callback != nil {
			callback(url, err)
		}
	}()
}
