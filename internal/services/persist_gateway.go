package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/chemtalent/jobchain/internal/lock"
	"github.com/chemtalent/jobchain/internal/models"
	pgrepo "github.com/chemtalent/jobchain/internal/repositories/postgres"
	"github.com/chemtalent/jobchain/internal/taxonomy"
	"github.com/chemtalent/jobchain/internal/utils"
)

const mergeLockKey = "ingest:merge"

// PersistResult describes what a merge actually wrote.
type PersistResult struct {
	Inserted   []models.JobPosition
	Duplicates int
}

// PersistGateway stores a classified batch.
type PersistGateway interface {
	Persist(ctx context.Context, records []models.JobPosition) (*PersistResult, error)
}

type mergeGateway struct {
	repo   pgrepo.JobPositionRepository
	locker lock.Locker
	log    *logrus.Logger
	now    func() time.Time
}

// NewMergeGateway returns the merge policy: records whose trimmed
// (title, company, location) already exist in storage are skipped, the rest
// are inserted, and one "all" history entry is appended. All of it runs in
// one transaction while holding the merge lock.
func NewMergeGateway(repo pgrepo.JobPositionRepository, locker lock.Locker, log *logrus.Logger) PersistGateway {
	if locker == nil {
		locker = lock.NewKeyedMutex()
	}
	return &mergeGateway{repo: repo, locker: locker, log: log, now: time.Now}
}

func (g *mergeGateway) Persist(ctx context.Context, records []models.JobPosition) (*PersistResult, error) {
	const op = "PersistGateway.Persist"

	unlock, err := g.locker.Lock(ctx, mergeLockKey)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, utils.E(utils.CodeTimeout, op, "another import is still running", err)
		}
		return nil, utils.E(utils.CodeUnavailable, op, "merge lock is unavailable", err)
	}
	defer unlock()

	var res PersistResult
	err = g.repo.Transaction(ctx, func(tx pgrepo.JobPositionRepository) error {
		existing, err := tx.ExistingKeys(ctx)
		if err != nil {
			return err
		}

		fresh := make([]models.JobPosition, 0, len(records))
		for _, r := range records {
			if _, dup := existing[r.IdentityKey()]; dup {
				continue
			}
			fresh = append(fresh, r)
		}

		if err := tx.CreateBatch(ctx, fresh); err != nil {
			return err
		}

		breakdown, err := json.Marshal(CountByIndustry(fresh))
		if err != nil {
			return err
		}
		if err := tx.AppendHistory(ctx, &models.UpdateHistory{
			ID:           uuid.NewString(),
			RecordsCount: len(fresh),
			Industry:     "all",
			Breakdown:    datatypes.JSON(breakdown),
			UpdatedAt:    g.now().UTC(),
		}); err != nil {
			return err
		}

		res = PersistResult{Inserted: fresh, Duplicates: len(records) - len(fresh)}
		return nil
	})
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to persist job positions", err)
	}

	if g.log != nil {
		g.log.WithFields(logrus.Fields{
			"op":         op,
			"incoming":   len(records),
			"inserted":   len(res.Inserted),
			"duplicates": res.Duplicates,
		}).Info("merge committed")
	}
	return &res, nil
}

// CountByIndustry counts records per industry, with every known industry
// present even when zero.
func CountByIndustry(records []models.JobPosition) map[taxonomy.Industry]int {
	out := make(map[taxonomy.Industry]int, 4)
	for _, ind := range taxonomy.Industries() {
		out[ind] = 0
	}
	for _, r := range records {
		out[taxonomy.Industry(r.Industry)]++
	}
	return out
}
