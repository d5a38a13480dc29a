package postgres

import (
	"context"
	"errors"

	"github.com/chemtalent/jobchain/internal/models"
	"github.com/chemtalent/jobchain/internal/utils"
	"gorm.io/gorm"
)

// ListFilter narrows a listing. Empty fields are ignored.
type ListFilter struct {
	Industry string
	Layer    string
	NodeID   string
	Limit    int
}

type JobPositionRepository interface {
	ExistingKeys(ctx context.Context) (map[string]struct{}, error)
	CreateBatch(ctx context.Context, rows []models.JobPosition) error
	AppendHistory(ctx context.Context, h *models.UpdateHistory) error
	LatestHistory(ctx context.Context) (*models.UpdateHistory, error)

	List(ctx context.Context, f ListFilter) ([]models.JobPosition, error)
	Search(ctx context.Context, keyword, industry string, limit int) ([]models.JobPosition, error)

	// Transaction runs fn against a repository bound to one database
	// transaction. Returning an error rolls everything back.
	Transaction(ctx context.Context, fn func(tx JobPositionRepository) error) error
}

type jobPositionRepo struct {
	db *gorm.DB
}

func NewJobPositionRepo(db *gorm.DB) JobPositionRepository {
	return &jobPositionRepo{db: db}
}

const batchSize = 500

type identityRow struct {
	Title    string
	Company  string
	Location string
}

func (r *jobPositionRepo) ExistingKeys(ctx context.Context) (map[string]struct{}, error) {
	var rows []identityRow
	err := r.db.WithContext(ctx).
		Model(&models.JobPosition{}).
		Select("title", "company", "location").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	keys := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		keys[models.IdentityKey(row.Title, row.Company, row.Location)] = struct{}{}
	}
	return keys, nil
}

func (r *jobPositionRepo) CreateBatch(ctx context.Context, rows []models.JobPosition) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(rows, batchSize).Error
}

func (r *jobPositionRepo) AppendHistory(ctx context.Context, h *models.UpdateHistory) error {
	return r.db.WithContext(ctx).Create(h).Error
}

func (r *jobPositionRepo) LatestHistory(ctx context.Context) (*models.UpdateHistory, error) {
	var row models.UpdateHistory
	err := r.db.WithContext(ctx).
		Order("updated_at DESC").
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &row, err
}

func (r *jobPositionRepo) List(ctx context.Context, f ListFilter) ([]models.JobPosition, error) {
	q := r.db.WithContext(ctx).Model(&models.JobPosition{})
	if f.Industry != "" {
		q = q.Where("industry = ?", f.Industry)
	}
	if f.Layer != "" {
		q = q.Where("layer = ?", f.Layer)
	}
	if f.NodeID != "" {
		q = q.Where("node_id = ?", f.NodeID)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var rows []models.JobPosition
	err := q.Order("created_at DESC").Order("id").Find(&rows).Error
	return rows, err
}

func (r *jobPositionRepo) Search(ctx context.Context, keyword, industry string, limit int) ([]models.JobPosition, error) {
	if limit <= 0 {
		limit = 50
	}
	like := "%" + keyword + "%"

	q := r.db.WithContext(ctx).
		Where("title ILIKE ? OR company ILIKE ?", like, like)
	if industry != "" {
		q = q.Where("industry = ?", industry)
	}

	var rows []models.JobPosition
	err := q.Order("created_at DESC").Limit(limit).Find(&rows).Error
	return rows, err
}

func (r *jobPositionRepo) Transaction(ctx context.Context, fn func(tx JobPositionRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&jobPositionRepo{db: tx})
	})
}
