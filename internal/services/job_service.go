package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/chemtalent/jobchain/internal/cache"
	"github.com/chemtalent/jobchain/internal/models"
	pgrepo "github.com/chemtalent/jobchain/internal/repositories/postgres"
	"github.com/chemtalent/jobchain/internal/taxonomy"
	"github.com/chemtalent/jobchain/internal/utils"
)

type JobQuery struct {
	Industry string
	Layer    string
	NodeID   string
	Keyword  string
	Limit    int
}

type JobService interface {
	List(ctx context.Context, q JobQuery) ([]models.JobPosition, error)
	Stats(ctx context.Context, industry string) (*JobStats, error)
	LastUpdate(ctx context.Context) (*time.Time, error)
	Invalidate(ctx context.Context) error
}

type jobService struct {
	repo  pgrepo.JobPositionRepository
	rules *taxonomy.Rules
	cache cache.Cache // nil disables caching
	ttl   time.Duration
	log   *logrus.Logger
}

func NewJobService(repo pgrepo.JobPositionRepository, rules *taxonomy.Rules, c cache.Cache, ttl time.Duration, log *logrus.Logger) JobService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if log == nil {
		log = logrus.New()
	}
	return &jobService{repo: repo, rules: rules, cache: c, ttl: ttl, log: log}
}

const maxListLimit = 500

func listKey(industry string) string  { return "jobs:list:" + industry }
func statsKey(industry string) string { return "jobs:stats:" + industry }

func (s *jobService) List(ctx context.Context, q JobQuery) ([]models.JobPosition, error) {
	const op = "JobService.List"

	industry, err := normalizeIndustry(q.Industry)
	if err != nil {
		return nil, utils.E(utils.CodeInvalidArgument, op, err.Error(), nil)
	}
	if q.Limit < 0 || q.Limit > maxListLimit {
		q.Limit = maxListLimit
	}
	if q.Layer != "" && industry != "" && s.rules != nil {
		if ir, ok := s.rules.Industry(taxonomy.Industry(industry)); ok {
			if _, ok := ir.Layer(q.Layer); !ok {
				return nil, utils.E(utils.CodeInvalidArgument, op, "unknown layer "+q.Layer+" for industry "+industry, nil)
			}
		}
	}

	if kw := strings.TrimSpace(q.Keyword); kw != "" {
		rows, err := s.repo.Search(ctx, kw, industry, q.Limit)
		if err != nil {
			return nil, utils.E(utils.CodeInternal, op, "failed to search job positions", err)
		}
		return rows, nil
	}

	// the plain per-industry listing is what the pages load, so only that is cached
	cacheable := industry != "" && q.Layer == "" && q.NodeID == "" && q.Limit == 0
	if cacheable && s.cache != nil {
		var rows []models.JobPosition
		if hit, err := s.cache.GetJSON(ctx, listKey(industry), &rows); err != nil {
			s.log.WithError(err).Warn("job cache read failed")
		} else if hit {
			return rows, nil
		}
	}

	rows, err := s.repo.List(ctx, pgrepo.ListFilter{
		Industry: industry,
		Layer:    q.Layer,
		NodeID:   q.NodeID,
		Limit:    q.Limit,
	})
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list job positions", err)
	}

	if cacheable && s.cache != nil {
		if err := s.cache.SetJSON(ctx, listKey(industry), rows, s.ttl); err != nil {
			s.log.WithError(err).Warn("job cache write failed")
		}
	}
	return rows, nil
}

func (s *jobService) Stats(ctx context.Context, industry string) (*JobStats, error) {
	const op = "JobService.Stats"

	ind, err := normalizeIndustry(industry)
	if err != nil {
		return nil, utils.E(utils.CodeInvalidArgument, op, err.Error(), nil)
	}
	key := statsKey(ind)
	if ind == "" {
		key = statsKey("all")
	}

	if s.cache != nil {
		var st JobStats
		if hit, err := s.cache.GetJSON(ctx, key, &st); err == nil && hit {
			return &st, nil
		}
	}

	rows, err := s.repo.List(ctx, pgrepo.ListFilter{Industry: ind})
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to load job positions", err)
	}
	st := ComputeStats(s.rules, ind, rows)

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, st, s.ttl); err != nil {
			s.log.WithError(err).Warn("stats cache write failed")
		}
	}
	return st, nil
}

func (s *jobService) LastUpdate(ctx context.Context) (*time.Time, error) {
	const op = "JobService.LastUpdate"

	h, err := s.repo.LatestHistory(ctx)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, nil
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to read update history", err)
	}
	t := h.UpdatedAt
	return &t, nil
}

func (s *jobService) Invalidate(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	keys := []string{statsKey("all")}
	for _, ind := range taxonomy.Industries() {
		keys = append(keys, listKey(string(ind)), statsKey(string(ind)))
	}
	return s.cache.Del(ctx, keys...)
}

func normalizeIndustry(s string) (string, error) {
	if strings.TrimSpace(s) == "" {
		return "", nil
	}
	ind, ok := taxonomy.ParseIndustry(s)
	if !ok {
		return "", errors.New("unknown industry " + strings.TrimSpace(s))
	}
	return string(ind), nil
}
