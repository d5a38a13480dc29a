package ingest

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/chemtalent/jobchain/internal/classify"
	"github.com/chemtalent/jobchain/internal/models"
	"github.com/chemtalent/jobchain/internal/sheet"
)

// RowError is a per-row rejection. It is reported, not returned.
type RowError struct {
	Line   int    `json:"row"`
	Reason string `json:"reason"`
}

func (e RowError) String() string { return fmt.Sprintf("row %d: %s", e.Line, e.Reason) }

// Batch is the outcome of classifying one upload.
type Batch struct {
	Stamp   int64
	Records []models.JobPosition
	Errors  []RowError
}

// Pipeline normalizes, classifies and assembles rows on a bounded worker
// pool. Output order follows input order regardless of scheduling.
type Pipeline struct {
	classifier *classify.Classifier
	workers    int
	now        func() time.Time
}

func NewPipeline(c *classify.Classifier, workers int) *Pipeline {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Pipeline{classifier: c, workers: workers, now: time.Now}
}

type slot struct {
	rec *models.JobPosition
	err *RowError
}

func (p *Pipeline) Run(ctx context.Context, rows []sheet.Row) (Batch, error) {
	now := p.now().UTC()
	b := Batch{Stamp: now.UnixNano()}

	slots := make([]slot, len(rows))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for i := range rows {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			in, ok := Normalize(rows[i])
			if !ok {
				slots[i].err = &RowError{Line: rows[i].Line, Reason: ErrMissingIdentity}
				return nil
			}
			rec := Assemble(*in, p.classifier.Classify(*in), b.Stamp, i, now)
			slots[i].rec = &rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Batch{}, err
	}

	b.Records = make([]models.JobPosition, 0, len(rows))
	for _, s := range slots {
		switch {
		case s.err != nil:
			b.Errors = append(b.Errors, *s.err)
		case s.rec != nil:
			b.Records = append(b.Records, *s.rec)
		}
	}
	return b, nil
}
