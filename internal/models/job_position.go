package models

import (
	"time"

	"github.com/lib/pq"
)

type JobPosition struct {
	ID       string `gorm:"column:id;type:text;primaryKey" json:"id"`
	Industry string `gorm:"column:industry;type:text;index;index:idx_job_chain,priority:1" json:"industry"`
	Layer    string `gorm:"column:layer;type:text;index:idx_job_chain,priority:2" json:"layer"`
	NodeID   string `gorm:"column:node_id;type:text;index:idx_job_chain,priority:3" json:"node_id"`

	Title    string `gorm:"column:title;type:text;index:idx_job_identity,priority:1" json:"title"`
	Company  string `gorm:"column:company;type:text;index:idx_job_identity,priority:2" json:"company"`
	Location string `gorm:"column:location;type:text;index:idx_job_identity,priority:3" json:"location"`
	Salary   string `gorm:"column:salary;type:text" json:"salary"`

	Requirements     pq.StringArray `gorm:"column:requirements;type:text[]" json:"requirements"`
	Responsibilities pq.StringArray `gorm:"column:responsibilities;type:text[]" json:"responsibilities"`

	Urgency string `gorm:"column:urgency;type:text" json:"urgency"`

	// optional attributes, NULL when the sheet left them blank
	Link         *string `gorm:"column:link;type:text" json:"link,omitempty"`
	Experience   *string `gorm:"column:experience;type:text" json:"experience,omitempty"`
	Education    *string `gorm:"column:education;type:text" json:"education,omitempty"`
	CompanySize  *string `gorm:"column:company_size;type:text" json:"company_size,omitempty"`
	IndustryType *string `gorm:"column:industry_type;type:text" json:"industry_type,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamptz" json:"updated_at"`
}

func (JobPosition) TableName() string { return "job_positions" }

// IdentityKey is the merge identity: trimmed title, company and location.
func IdentityKey(title, company, location string) string {
	return trim(title) + "-" + trim(company) + "-" + trim(location)
}

func (j *JobPosition) IdentityKey() string {
	return IdentityKey(j.Title, j.Company, j.Location)
}
