package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IngestReport is the audit document kept for every upload, successful or not.
type IngestReport struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UploadID string             `bson:"upload_id" json:"upload_id"` // uuid v4
	FileName string             `bson:"file_name" json:"file_name"`
	Uploader string             `bson:"uploader,omitempty" json:"uploader,omitempty"`

	Stage   string `bson:"stage" json:"stage"` // last stage reached, or aborted
	Success bool   `bson:"success" json:"success"`
	Message string `bson:"message" json:"message"`

	TotalRows   int            `bson:"total_rows" json:"total_rows"`
	Classified  int            `bson:"classified" json:"classified"`
	Inserted    int            `bson:"inserted" json:"inserted"`
	Duplicates  int            `bson:"duplicates" json:"duplicates"`
	PerIndustry map[string]int `bson:"per_industry" json:"per_industry"`
	RowErrors   []string       `bson:"row_errors,omitempty" json:"row_errors,omitempty"`

	BackupLocation string `bson:"backup_location,omitempty" json:"backup_location,omitempty"`

	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
	ExpiresAt  time.Time `bson:"expires_at" json:"-"`
	DurationMs int64     `bson:"duration_ms" json:"duration_ms"`
}
