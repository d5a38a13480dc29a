package ingest

import (
	"fmt"
	"time"

	"github.com/chemtalent/jobchain/internal/classify"
	"github.com/chemtalent/jobchain/internal/models"
)

// RecordID is "<industry>-<batch stamp>-<sequence>". The stamp is taken once
// per batch, so the sequence keeps ids unique inside it.
func RecordID(industry string, batchStamp int64, seq int) string {
	return fmt.Sprintf("%s-%d-%d", industry, batchStamp, seq)
}

// Assemble builds the persisted record from a normalized input and its
// classification. Blank optional attributes become NULL.
func Assemble(in models.JobInput, c classify.Result, batchStamp int64, seq int, now time.Time) models.JobPosition {
	req := in.Requirements
	if req == nil {
		req = []string{}
	}
	resp := in.Responsibilities
	if resp == nil {
		resp = []string{}
	}

	return models.JobPosition{
		ID:               RecordID(string(c.Industry), batchStamp, seq),
		Industry:         string(c.Industry),
		Layer:            c.Layer,
		NodeID:           c.NodeID,
		Title:            in.Title,
		Company:          in.Company,
		Location:         in.Location,
		Salary:           in.Salary,
		Requirements:     req,
		Responsibilities: resp,
		Urgency:          string(c.Urgency),
		Link:             models.NullableString(in.Link),
		Experience:       models.NullableString(in.Experience),
		Education:        models.NullableString(in.Education),
		CompanySize:      models.NullableString(in.CompanySize),
		IndustryType:     models.NullableString(in.IndustryType),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}
