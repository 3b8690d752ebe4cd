package sim

import (
	"context"

	"github.com/san-kum/robonav/internal/dynamo"
	"golang.org/x/sync/errgroup"
)

// Job is one independent headless run. Metrics are stateful, so every job
// needs its own instances.
type Job struct {
	Name    string
	Robot   dynamo.Robot
	Metrics []dynamo.Metric
	Config  RunConfig
}

// RunBatch runs jobs concurrently, at most limit at a time (limit <= 0 means
// unbounded). Results are returned in job order. The first failing job
// cancels the rest.
func RunBatch(ctx context.Context, jobs []Job, limit int) ([]*Result, error) {
	results := make([]*Result, len(jobs))

	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, job := range jobs {
		g.Go(func() error {
			s := New(job.Robot)
			for _, m := range job.Metrics {
				s.AddMetric(m)
			}
			res, err := s.Run(ctx, job.Config)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
