package hilal

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/chrissnell/hilal/pkg/coord"
	"golang.org/x/sync/errgroup"
)

// Query is one location and civil date
type Query struct {
	Location coord.Location `json:"location"`
	Year     int            `json:"year"`
	Month    int            `json:"month"`
	Day      int            `json:"day"`
}

// ComputeMany evaluates every query on a bounded pool of goroutines and
// returns the reports in query order. A query with no sunset yields a
// report with Applicable false and does not fail the batch; any other
// error cancels the remaining work.
func (e *Engine) ComputeMany(ctx context.Context, queries []Query) ([]Report, error) {
	reports := make([]Report, len(queries))

	workers := e.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, q := range queries {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			r, err := e.Compute(q.Location, q.Year, q.Month, q.Day)
			if err != nil && !errors.Is(err, ErrNotApplicable) {
				return fmt.Errorf("%s %04d-%02d-%02d: %w", q.Location.Name, q.Year, q.Month, q.Day, err)
			}
			reports[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}
