package upload

import "time"

// Image is one accepted image stored on the local filesystem, either dropped
// directly or extracted from an archive.
type Image struct {
	ID           string    `gorm:"column:id;primaryKey" json:"id"`
	BatchID      string    `gorm:"column:batch_id;index" json:"batch_id"`
	UserID       int64     `gorm:"column:user_id;index" json:"user_id"`
	OriginalName string    `gorm:"column:original_name" json:"name"`
	Archive      string    `gorm:"column:archive" json:"archive,omitempty"` // containing zip, if any
	FilePath     string    `gorm:"column:file_path" json:"-"`               // relative disk path
	FileURL      string    `gorm:"column:file_url" json:"url"`              // public HTTP URL
	MimeType     string    `gorm:"column:mime_type" json:"mime_type"`
	Size         int64     `gorm:"column:size" json:"size"`
	LastModified time.Time `gorm:"column:last_modified" json:"last_modified"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Image) TableName() string { return "images" }

// Rejection describes a file that did not become an Image.
type Rejection struct {
	Name    string `json:"name"`
	Archive string `json:"archive,omitempty"`
	Reason  string `json:"reason"`
}

// IngestReport is the outcome of one drop.
type IngestReport struct {
	BatchID string      `json:"batch_id"`
	Loaded  []*Image    `json:"loaded"`
	Invalid []Rejection `json:"invalid"`
	Failed  []Rejection `json:"failed"`
}
