package postgres

import (
	"context"

	"github.com/chemtalent/jobchain/internal/models"
	"gorm.io/gorm"
)

type UploadFileRepository interface {
	Insert(ctx context.Context, f *models.UploadFile) error
	Latest(ctx context.Context, n int) ([]models.UploadFile, error)
}

type uploadFileRepo struct {
	db *gorm.DB
}

func NewUploadFileRepo(db *gorm.DB) UploadFileRepository {
	return &uploadFileRepo{db: db}
}

func (r *uploadFileRepo) Insert(ctx context.Context, f *models.UploadFile) error {
	return r.db.WithContext(ctx).Create(f).Error
}

func (r *uploadFileRepo) Latest(ctx context.Context, n int) ([]models.UploadFile, error) {
	if n <= 0 {
		n = 20
	}
	var rows []models.UploadFile
	err := r.db.WithContext(ctx).
		Order("upload_at DESC").
		Limit(n).
		Find(&rows).Error
	return rows, err
}
