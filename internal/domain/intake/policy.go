package intake

const (
	ImageSizeLimit   int64 = 3 * 1024 * 1024  // 3 MiB
	ArchiveSizeLimit int64 = 10 * 1024 * 1024 // 10 MiB
)

// Kind is the single classification a file receives on intake.
type Kind string

const (
	KindImage       Kind = "image"
	KindArchive     Kind = "archive"
	KindInvalidType Kind = "invalid_type"
	KindInvalidSize Kind = "invalid_size"
)

// Rule accepts a file whose declared type is one of ContentTypes and whose
// size is strictly below MaxBytes.
type Rule struct {
	ContentTypes []string
	MaxBytes     int64
}

func (r Rule) matchesType(contentType string) bool {
	for _, ct := range r.ContentTypes {
		if ct == contentType {
			return true
		}
	}
	return false
}

// Policy is the static accepted-type configuration.
type Policy struct {
	Image   Rule
	Archive Rule
}

func DefaultPolicy() Policy {
	return Policy{
		Image: Rule{
			ContentTypes: []string{"image/jpeg", "image/png"},
			MaxBytes:     ImageSizeLimit,
		},
		Archive: Rule{
			ContentTypes: []string{"application/zip"},
			MaxBytes:     ArchiveSizeLimit,
		},
	}
}

// Classify puts f into exactly one Kind. The error is set for the two
// invalid kinds and says why.
func (p Policy) Classify(f File) (Kind, error) {
	switch {
	case p.Image.matchesType(f.ContentType()):
		if f.Size() < p.Image.MaxBytes {
			return KindImage, nil
		}
		return KindInvalidSize, ErrFileTooLarge
	case p.Archive.matchesType(f.ContentType()):
		if f.Size() < p.Archive.MaxBytes {
			return KindArchive, nil
		}
		return KindInvalidSize, ErrFileTooLarge
	default:
		return KindInvalidType, ErrInvalidMimeType
	}
}
