package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/chemtalent/jobchain/internal/ingest"
	"github.com/chemtalent/jobchain/internal/models"
	"github.com/chemtalent/jobchain/internal/sheet"
	"github.com/chemtalent/jobchain/internal/taxonomy"
	"github.com/chemtalent/jobchain/internal/utils"
)

// Stage is the furthest point an ingestion reached.
type Stage string

const (
	StageReceived       Stage = "received"
	StageDecoded        Stage = "decoded"
	StageRowsClassified Stage = "rows_classified"
	StagePersisted      Stage = "persisted"
	StageReported       Stage = "reported"
	StageAborted        Stage = "aborted"
)

// AllowedExtensions lists the accepted upload file extensions.
var AllowedExtensions = []string{".xlsx", ".xls"}

type IngestRequest struct {
	FileName string
	Uploader string
	Data     []byte
}

// IngestReport is returned for every ingestion, including aborted ones.
type IngestReport struct {
	UploadID       string                    `json:"upload_id"`
	Stage          Stage                     `json:"stage"`
	Success        bool                      `json:"success"`
	Message        string                    `json:"message"`
	TotalRows      int                       `json:"total_rows"`
	Classified     int                       `json:"classified"`
	Inserted       int                       `json:"inserted"`
	Duplicates     int                       `json:"duplicates"`
	PerIndustry    map[taxonomy.Industry]int `json:"per_industry"`
	RowErrors      []ingest.RowError         `json:"row_errors,omitempty"`
	BackupLocation string                    `json:"backup_location,omitempty"`
}

type IngestService interface {
	// Ingest runs one upload through decode, classify, persist and report.
	// On abort it returns the partial report together with an AppError.
	Ingest(ctx context.Context, req IngestRequest) (*IngestReport, error)
}

// CacheInvalidator drops read-side caches after new data lands.
type CacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

// IngestDeps wires the ingest service. Archive, Reports, Publisher and Cache
// are optional.
type IngestDeps struct {
	Pipeline       *ingest.Pipeline
	Gateway        PersistGateway
	Archive        ArchiveService
	Reports        ReportService
	Publisher      Publisher
	Cache          CacheInvalidator
	MaxUploadBytes int64
	Log            *logrus.Logger
}

type ingestService struct {
	d IngestDeps
}

func NewIngestService(d IngestDeps) IngestService {
	if d.MaxUploadBytes <= 0 {
		d.MaxUploadBytes = 10 << 20
	}
	if d.Log == nil {
		d.Log = logrus.New()
	}
	return &ingestService{d: d}
}

func (s *ingestService) Ingest(ctx context.Context, req IngestRequest) (*IngestReport, error) {
	const op = "IngestService.Ingest"

	start := time.Now()
	rep := &IngestReport{
		UploadID:    uuid.NewString(),
		Stage:       StageReceived,
		PerIndustry: CountByIndustry(nil),
	}
	log := s.d.Log.WithFields(logrus.Fields{
		"op":        op,
		"upload_id": rep.UploadID,
		"file_name": req.FileName,
		"bytes":     len(req.Data),
	})

	abort := func(code utils.Code, msg string, cause error) (*IngestReport, error) {
		failedAt := rep.Stage
		rep.Stage = StageAborted
		rep.Success = false
		rep.Message = msg
		entry := log.WithField("failed_at", failedAt)
		if cause != nil {
			entry = entry.WithError(cause)
		}
		if code == utils.CodeInvalidArgument {
			entry.Warn("ingest aborted")
		} else {
			entry.Error("ingest aborted")
		}
		s.audit(ctx, req, rep, start)
		return rep, utils.E(code, op, msg, cause)
	}

	// received
	if err := validateUpload(req.FileName, len(req.Data), s.d.MaxUploadBytes); err != nil {
		return abort(utils.CodeInvalidArgument, err.Error(), nil)
	}
	if s.d.Archive != nil {
		if f, err := s.d.Archive.Archive(ctx, req.Uploader, req.FileName, req.Data); err != nil {
			log.WithError(err).Warn("archive failed, continuing without backup")
		} else {
			rep.BackupLocation = f.FilePath
		}
	}

	// decoded
	rows, err := sheet.Decode(req.Data)
	if err != nil {
		return abort(utils.CodeInvalidArgument, "file is not a readable spreadsheet", err)
	}
	rep.Stage = StageDecoded
	rep.TotalRows = len(rows)
	log.WithField("rows", len(rows)).Debug("spreadsheet decoded")
	if len(rows) == 0 {
		return abort(utils.CodeInvalidArgument, "no data found in spreadsheet", nil)
	}

	// rows classified
	batch, err := s.d.Pipeline.Run(ctx, rows)
	if err != nil {
		code := utils.CodeInternal
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			code = utils.CodeTimeout
		}
		return abort(code, "classification was interrupted", err)
	}
	rep.Stage = StageRowsClassified
	rep.Classified = len(batch.Records)
	rep.RowErrors = batch.Errors
	if len(batch.Records) == 0 {
		return abort(utils.CodeInvalidArgument, "no valid data to import", nil)
	}

	// persisted
	res, err := s.d.Gateway.Persist(ctx, batch.Records)
	if err != nil {
		code := utils.CodeInternal
		var ae *utils.AppError
		if errors.As(err, &ae) {
			code = ae.Code
		}
		return abort(code, utils.MessageOf(err, "failed to persist job positions"), err)
	}
	rep.Stage = StagePersisted
	rep.Inserted = len(res.Inserted)
	rep.Duplicates = res.Duplicates
	rep.PerIndustry = CountByIndustry(res.Inserted)

	// reported
	rep.Stage = StageReported
	rep.Success = true
	rep.Message = successMessage(rep)

	log.WithFields(logrus.Fields{
		"total_rows":   rep.TotalRows,
		"classified":   rep.Classified,
		"inserted":     rep.Inserted,
		"duplicates":   rep.Duplicates,
		"row_errors":   len(rep.RowErrors),
		"per_industry": rep.PerIndustry,
		"duration_ms":  time.Since(start).Milliseconds(),
	}).Info("ingest completed")

	s.afterCommit(ctx, rep, log)
	s.audit(ctx, req, rep, start)
	return rep, nil
}

func validateUpload(fileName string, size int, max int64) error {
	if strings.TrimSpace(fileName) == "" && size == 0 {
		return errors.New("no file uploaded")
	}
	ext := strings.ToLower(filepath.Ext(fileName))
	allowed := false
	for _, a := range AllowedExtensions {
		if ext == a {
			allowed = true
			break
		}
	}
	if !allowed {
		return errors.New("only .xlsx and .xls files are allowed")
	}
	if size == 0 {
		return errors.New("uploaded file is empty")
	}
	if int64(size) > max {
		return fmt.Errorf("file too large (max %dMB)", max>>20)
	}
	return nil
}

func successMessage(rep *IngestReport) string {
	msg := fmt.Sprintf("imported %d job positions", rep.Inserted)
	if rep.Duplicates > 0 {
		msg += fmt.Sprintf(", skipped %d already listed", rep.Duplicates)
	}
	if n := len(rep.RowErrors); n > 0 {
		msg += fmt.Sprintf(", %d rows rejected", n)
	}
	return msg
}

// afterCommit drops caches and notifies listeners. Failures are logged only;
// the data is already committed.
func (s *ingestService) afterCommit(ctx context.Context, rep *IngestReport, log *logrus.Entry) {
	if s.d.Cache != nil {
		if err := s.d.Cache.Invalidate(ctx); err != nil {
			log.WithError(err).Warn("cache invalidation failed")
		}
	}
	if s.d.Publisher != nil {
		evt := UpdateEvent{
			UploadID:    rep.UploadID,
			Inserted:    rep.Inserted,
			PerIndustry: industryCounts(rep.PerIndustry),
			At:          time.Now().UTC(),
		}
		if err := s.d.Publisher.Publish(ctx, evt); err != nil {
			log.WithError(err).Warn("publish update event failed")
		}
	}
}

func (s *ingestService) audit(ctx context.Context, req IngestRequest, rep *IngestReport, start time.Time) {
	if s.d.Reports == nil {
		return
	}
	doc := &models.IngestReport{
		UploadID:       rep.UploadID,
		FileName:       req.FileName,
		Uploader:       req.Uploader,
		Stage:          string(rep.Stage),
		Success:        rep.Success,
		Message:        rep.Message,
		TotalRows:      rep.TotalRows,
		Classified:     rep.Classified,
		Inserted:       rep.Inserted,
		Duplicates:     rep.Duplicates,
		PerIndustry:    industryCounts(rep.PerIndustry),
		BackupLocation: rep.BackupLocation,
		CreatedAt:      start.UTC(),
		DurationMs:     time.Since(start).Milliseconds(),
	}
	for _, e := range rep.RowErrors {
		doc.RowErrors = append(doc.RowErrors, e.String())
	}
	if err := s.d.Reports.Record(ctx, doc); err != nil {
		s.d.Log.WithError(err).WithField("upload_id", rep.UploadID).Warn("ingest report not recorded")
	}
}

func industryCounts(in map[taxonomy.Industry]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[string(k)] = v
	}
	return out
}
