package intake

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPolicyClassify(t *testing.T) {
	p := DefaultPolicy()

	cases := []struct {
		name    string
		file    File
		kind    Kind
		wantErr error
	}{
		{"png under limit", &stubFile{"a.png", "image/png", 1024}, KindImage, nil},
		{"jpeg just under limit", &stubFile{"a.jpg", "image/jpeg", ImageSizeLimit - 1}, KindImage, nil},
		{"image at limit", &stubFile{"a.jpg", "image/jpeg", ImageSizeLimit}, KindInvalidSize, ErrFileTooLarge},
		{"image over limit", &stubFile{"a.png", "image/png", ImageSizeLimit + 1}, KindInvalidSize, ErrFileTooLarge},
		{"zip under limit", &stubFile{"a.zip", "application/zip", ArchiveSizeLimit - 1}, KindArchive, nil},
		{"zip at limit", &stubFile{"a.zip", "application/zip", ArchiveSizeLimit}, KindInvalidSize, ErrFileTooLarge},
		{"gif", &stubFile{"a.gif", "image/gif", 10}, KindInvalidType, ErrInvalidMimeType},
		{"empty type", &stubFile{"a", "", 10}, KindInvalidType, ErrInvalidMimeType},
		{"type match is exact", &stubFile{"a.png", "IMAGE/PNG", 10}, KindInvalidType, ErrInvalidMimeType},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			kind, err := p.Classify(tc.file)
			assert.Equal(t, tc.kind, kind)
			assert.ErrorIs(t, err, tc.wantErr)
			if tc.wantErr == nil {
				assert.NoError(t, err)
			}
		})
	}
}
