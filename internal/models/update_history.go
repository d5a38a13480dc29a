package models

import (
	"time"

	"gorm.io/datatypes"
)

// UpdateHistory records one successful ingestion.
type UpdateHistory struct {
	ID           string `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	RecordsCount int    `gorm:"column:records_count;type:integer" json:"records_count"`
	Industry     string `gorm:"column:industry;type:text" json:"industry"` // industry tag or "all"

	// per-industry inserted counts, ex: {"pharma":3,"battery":0}
	Breakdown datatypes.JSON `gorm:"column:breakdown;type:jsonb" json:"breakdown"`

	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamptz;index" json:"updated_at"`
}

func (UpdateHistory) TableName() string { return "update_history" }
