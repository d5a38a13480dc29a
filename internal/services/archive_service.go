package services

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/chemtalent/jobchain/internal/models"
	pgrepo "github.com/chemtalent/jobchain/internal/repositories/postgres"
	"github.com/chemtalent/jobchain/internal/storage"
	"github.com/chemtalent/jobchain/internal/utils"
	"github.com/google/uuid"
)

const archivePrefix = "excel-uploads"

// ArchiveService keeps a copy of every uploaded spreadsheet before it is
// processed.
type ArchiveService interface {
	Archive(ctx context.Context, uploader, fileName string, data []byte) (*models.UploadFile, error)
	Recent(ctx context.Context, n int) ([]models.UploadFile, error)
}

type archiveService struct {
	repo     pgrepo.UploadFileRepository
	uploader storage.Uploader
	now      func() time.Time
}

// NewArchiveService stores files through uploader. repo may be nil, in which
// case no metadata row is written.
func NewArchiveService(repo pgrepo.UploadFileRepository, uploader storage.Uploader) ArchiveService {
	return &archiveService{repo: repo, uploader: uploader, now: time.Now}
}

func (s *archiveService) Archive(ctx context.Context, uploader, fileName string, data []byte) (*models.UploadFile, error) {
	const op = "ArchiveService.Archive"

	if s.uploader == nil {
		return nil, utils.E(utils.CodeInternal, op, "uploader is not configured", nil)
	}

	now := s.now().UTC()
	id := uuid.NewString()
	ext := strings.ToLower(filepath.Ext(fileName))
	objectName := archivePrefix + "/" + now.Format("2006/01/02") + "/" + id + ext
	mimeType := spreadsheetMIME(ext)

	storedPath, err := s.uploader.Upload(ctx, objectName, mimeType, bytes.NewReader(data))
	if err != nil {
		return nil, utils.E(utils.CodeUnavailable, op, "failed to archive upload", err)
	}

	row := &models.UploadFile{
		ID:       id,
		Uploader: uploader,
		FileName: fileName,
		FilePath: storedPath,
		FileSize: len(data),
		MimeType: mimeType,
		UploadAt: now,
	}
	if s.repo != nil {
		if err := s.repo.Insert(ctx, row); err != nil {
			return nil, utils.E(utils.CodeInternal, op, "failed to persist upload metadata", err)
		}
	}
	return row, nil
}

func (s *archiveService) Recent(ctx context.Context, n int) ([]models.UploadFile, error) {
	const op = "ArchiveService.Recent"

	if s.repo == nil {
		return []models.UploadFile{}, nil
	}
	if n <= 0 || n > 100 {
		n = 20
	}
	rows, err := s.repo.Latest(ctx, n)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list uploads", err)
	}
	return rows, nil
}

func spreadsheetMIME(ext string) string {
	switch ext {
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ".xls":
		return "application/vnd.ms-excel"
	default:
		return "application/octet-stream"
	}
}
