package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/chemtalent/jobchain/internal/models"
	"github.com/chemtalent/jobchain/internal/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ReportRepository interface {
	Create(ctx context.Context, r *models.IngestReport) error
	Latest(ctx context.Context, n int64) ([]models.IngestReport, error)
	GetByUploadID(ctx context.Context, uploadID string) (*models.IngestReport, error)
}

type reportRepo struct {
	col *mongo.Collection
}

func NewReportRepo(db *mongo.Database) ReportRepository {
	return &reportRepo{col: db.Collection("ingest_reports")}
}

func (r *reportRepo) Create(ctx context.Context, rep *models.IngestReport) error {
	if rep.CreatedAt.IsZero() {
		rep.CreatedAt = time.Now().UTC()
	}
	_, err := r.col.InsertOne(ctx, rep)
	return err
}

func (r *reportRepo) Latest(ctx context.Context, n int64) ([]models.IngestReport, error) {
	if n <= 0 {
		n = 20
	}
	cur, err := r.col.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(n))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.IngestReport{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *reportRepo) GetByUploadID(ctx context.Context, uploadID string) (*models.IngestReport, error) {
	var rep models.IngestReport
	err := r.col.FindOne(ctx, bson.M{"upload_id": uploadID}).Decode(&rep)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	return &rep, err
}
