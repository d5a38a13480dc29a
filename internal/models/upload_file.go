package models

import "time"

// UploadFile is the archive record of a spreadsheet received by the ingest
// endpoint.
type UploadFile struct {
	ID       string `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Uploader string `gorm:"column:uploader;type:text;index" json:"uploader"`
	FileName string `gorm:"column:file_name;type:text" json:"file_name"`
	FilePath string `gorm:"column:file_path;type:text" json:"file_path"`

	FileSize int    `gorm:"column:file_size;type:integer" json:"file_size"`
	MimeType string `gorm:"column:mime_type;type:text" json:"mime_type"`

	UploadAt time.Time `gorm:"column:upload_at;type:timestamptz" json:"upload_at"`
}

func (UploadFile) TableName() string { return "upload_files" }
