package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/chemtalent/jobchain/internal/models"
	"github.com/chemtalent/jobchain/internal/utils"
)

type memUploads struct {
	rows []models.UploadFile
}

func (m *memUploads) Insert(ctx context.Context, f *models.UploadFile) error {
	m.rows = append(m.rows, *f)
	return nil
}

func (m *memUploads) Latest(ctx context.Context, n int) ([]models.UploadFile, error) {
	if len(m.rows) > n {
		return m.rows[:n], nil
	}
	return m.rows, nil
}

type capturingUploader struct {
	name, contentType string
	body              string
	err               error
}

func (u *capturingUploader) Upload(ctx context.Context, objectName, contentType string, r io.Reader) (string, error) {
	if u.err != nil {
		return "", u.err
	}
	b, _ := io.ReadAll(r)
	u.name, u.contentType, u.body = objectName, contentType, string(b)
	return "mem://" + objectName, nil
}

func TestArchiveStoresAndRecords(t *testing.T) {
	repo := &memUploads{}
	up := &capturingUploader{}
	svc := NewArchiveService(repo, up).(*archiveService)
	svc.now = func() time.Time { return time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC) }

	row, err := svc.Archive(context.Background(), "admin", "Jobs.XLSX", []byte("data"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(up.name, "excel-uploads/2026/05/04/") || !strings.HasSuffix(up.name, ".xlsx") {
		t.Errorf("object name = %q", up.name)
	}
	if up.body != "data" || up.contentType != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Errorf("upload = %+v", up)
	}
	if row.FilePath != "mem://"+up.name || row.FileSize != 4 || row.Uploader != "admin" {
		t.Errorf("row = %+v", row)
	}

	recent, err := svc.Recent(context.Background(), 0)
	if err != nil || len(recent) != 1 || recent[0].ID != row.ID {
		t.Errorf("recent = %+v, %v", recent, err)
	}
}

func TestArchiveUploadFailure(t *testing.T) {
	repo := &memUploads{}
	svc := NewArchiveService(repo, &capturingUploader{err: errors.New("bucket gone")})

	if _, err := svc.Archive(context.Background(), "", "a.xls", []byte("x")); !utils.IsCode(err, utils.CodeUnavailable) {
		t.Fatalf("err = %v", err)
	}
	if len(repo.rows) != 0 {
		t.Error("metadata written for a failed upload")
	}
}

func TestArchiveWithoutRepo(t *testing.T) {
	svc := NewArchiveService(nil, &capturingUploader{})
	if _, err := svc.Archive(context.Background(), "", "a.xls", []byte("x")); err != nil {
		t.Fatal(err)
	}
	rows, err := svc.Recent(context.Background(), 5)
	if err != nil || len(rows) != 0 {
		t.Errorf("recent = %v, %v", rows, err)
	}
}
