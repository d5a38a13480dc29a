package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/chemtalent/jobchain/internal/models"
	pgrepo "github.com/chemtalent/jobchain/internal/repositories/postgres"
	"github.com/chemtalent/jobchain/internal/utils"
)

// memJobRepo is an in-memory JobPositionRepository. Transaction works on a
// copy and only publishes it when fn succeeds.
type memJobRepo struct {
	mu      sync.Mutex
	rows    []models.JobPosition
	history []models.UpdateHistory

	failCreate error
	listCalls  int
}

func (r *memJobRepo) ExistingKeys(ctx context.Context) (map[string]struct{}, error) {
	keys := map[string]struct{}{}
	for _, row := range r.rows {
		keys[row.IdentityKey()] = struct{}{}
	}
	return keys, nil
}

func (r *memJobRepo) CreateBatch(ctx context.Context, rows []models.JobPosition) error {
	if r.failCreate != nil {
		return r.failCreate
	}
	r.rows = append(r.rows, rows...)
	return nil
}

func (r *memJobRepo) AppendHistory(ctx context.Context, h *models.UpdateHistory) error {
	r.history = append(r.history, *h)
	return nil
}

func (r *memJobRepo) LatestHistory(ctx context.Context) (*models.UpdateHistory, error) {
	if len(r.history) == 0 {
		return nil, utils.ErrNotFound
	}
	h := r.history[len(r.history)-1]
	return &h, nil
}

func (r *memJobRepo) List(ctx context.Context, f pgrepo.ListFilter) ([]models.JobPosition, error) {
	r.listCalls++
	var out []models.JobPosition
	for _, row := range r.rows {
		if f.Industry != "" && row.Industry != f.Industry {
			continue
		}
		if f.Layer != "" && row.Layer != f.Layer {
			continue
		}
		if f.NodeID != "" && row.NodeID != f.NodeID {
			continue
		}
		out = append(out, row)
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r *memJobRepo) Search(ctx context.Context, keyword, industry string, limit int) ([]models.JobPosition, error) {
	var out []models.JobPosition
	for _, row := range r.rows {
		if industry != "" && row.Industry != industry {
			continue
		}
		if strings.Contains(row.Title, keyword) || strings.Contains(row.Company, keyword) {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *memJobRepo) Transaction(ctx context.Context, fn func(tx pgrepo.JobPositionRepository) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx := &memJobRepo{
		rows:       append([]models.JobPosition(nil), r.rows...),
		history:    append([]models.UpdateHistory(nil), r.history...),
		failCreate: r.failCreate,
	}
	if err := fn(tx); err != nil {
		return err
	}
	r.rows, r.history = tx.rows, tx.history
	return nil
}

// memCache implements cache.Cache with a plain map of values.
type memCache struct {
	mu   sync.Mutex
	data map[string]any
	dels []string
}

func newMemCache() *memCache { return &memCache{data: map[string]any{}} }

func (c *memCache) GetJSON(ctx context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return false, nil
	}
	switch d := dst.(type) {
	case *[]models.JobPosition:
		*d = v.([]models.JobPosition)
	case *JobStats:
		*d = *(v.(*JobStats))
	default:
		return false, errors.New("memCache: unsupported type")
	}
	return true, nil
}

func (c *memCache) SetJSON(ctx context.Context, key string, val any, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = val
	return nil
}

func (c *memCache) Del(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
	}
	c.dels = append(c.dels, keys...)
	return nil
}

type recordingPublisher struct {
	events []UpdateEvent
}

func (p *recordingPublisher) Publish(ctx context.Context, evt UpdateEvent) error {
	p.events = append(p.events, evt)
	return nil
}

type memReports struct {
	docs []models.IngestReport
}

func (m *memReports) Record(ctx context.Context, r *models.IngestReport) error {
	m.docs = append(m.docs, *r)
	return nil
}

func (m *memReports) Latest(ctx context.Context, n int) ([]models.IngestReport, error) {
	return m.docs, nil
}

func (m *memReports) Get(ctx context.Context, uploadID string) (*models.IngestReport, error) {
	for i := range m.docs {
		if m.docs[i].UploadID == uploadID {
			return &m.docs[i], nil
		}
	}
	return nil, utils.E(utils.CodeNotFound, "memReports.Get", "report not found", nil)
}
