package services

import (
	"context"
	"errors"
	"time"

	"github.com/chemtalent/jobchain/internal/models"
	mongorepo "github.com/chemtalent/jobchain/internal/repositories/mongo"
	"github.com/chemtalent/jobchain/internal/utils"
)

// reportRetention is how long audit documents live before the TTL index
// removes them.
const reportRetention = 90 * 24 * time.Hour

type ReportService interface {
	Record(ctx context.Context, r *models.IngestReport) error
	Latest(ctx context.Context, n int) ([]models.IngestReport, error)
	Get(ctx context.Context, uploadID string) (*models.IngestReport, error)
}

type reportService struct {
	reports mongorepo.ReportRepository
}

func NewReportService(reports mongorepo.ReportRepository) ReportService {
	return &reportService{reports: reports}
}

func (s *reportService) Record(ctx context.Context, r *models.IngestReport) error {
	const op = "ReportService.Record"

	if r == nil || r.UploadID == "" {
		return utils.E(utils.CodeInvalidArgument, op, "report.upload_id is required", nil)
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	r.ExpiresAt = r.CreatedAt.Add(reportRetention)

	if err := s.reports.Create(ctx, r); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to store ingest report", err)
	}
	return nil
}

func (s *reportService) Latest(ctx context.Context, n int) ([]models.IngestReport, error) {
	const op = "ReportService.Latest"

	if n <= 0 || n > 100 {
		n = 20
	}
	out, err := s.reports.Latest(ctx, int64(n))
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list ingest reports", err)
	}
	return out, nil
}

func (s *reportService) Get(ctx context.Context, uploadID string) (*models.IngestReport, error) {
	const op = "ReportService.Get"

	if uploadID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "upload_id is required", nil)
	}
	out, err := s.reports.GetByUploadID(ctx, uploadID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "report not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get ingest report", err)
	}
	return out, nil
}
