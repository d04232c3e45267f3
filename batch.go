package poliastro

import (
	"context"
	"fmt"
	"os"
	"sync"

	kitlog "github.com/go-kit/kit/log"
)

// BatchJob is one independent propagation of a batch run.
type BatchJob struct {
	Name   string
	State  State
	Times  []float64
	Config PropConfig
	Perts  Perturbations
}

// BatchResult is the outcome of one BatchJob. Trajectory is nil when Err is
// set.
type BatchResult struct {
	Name       string
	Trajectory []State
	Err        error
}

// RunBatch fans the provided jobs out over a fixed number of goroutines and
// returns one result per job, in submission order. Each job owns its own
// propagator, so jobs need no coordination; a failed job does not affect the
// others. The context only gates the orchestration: jobs not yet started when
// it is canceled report ctx.Err(), a running propagation completes.
func RunBatch(ctx context.Context, workers int, jobs []BatchJob, logger kitlog.Logger) []BatchResult {
	if workers <= 0 {
		workers = 1
	}
	if logger == nil {
		logger = kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stdout))
	}
	logger = kitlog.With(logger, "subsys", "batch")

	results := make([]BatchResult, len(jobs))
	indexes := make(chan int, workers*2)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				job := jobs[i]
				if err := ctx.Err(); err != nil {
					results[i] = BatchResult{Name: job.Name, Err: fmt.Errorf("job %s not started: %w", job.Name, err)}
					continue
				}
				cfg := job.Config
				if cfg.Logger == nil {
					// Keep worker output from interleaving job logs.
					cfg.Logger = kitlog.NewNopLogger()
				}
				traj, err := Propagate(job.State, job.Times, cfg, job.Perts)
				results[i] = BatchResult{Name: job.Name, Trajectory: traj, Err: err}
			}
		}()
	}

	go func() {
		defer close(indexes)
		for i := range jobs {
			select {
			case indexes <- i:
			case <-ctx.Done():
				// Mark the rest as not started.
				for j := i; j < len(jobs); j++ {
					results[j] = BatchResult{Name: jobs[j].Name, Err: fmt.Errorf("job %s not started: %w", jobs[j].Name, ctx.Err())}
				}
				return
			}
		}
	}()

	wg.Wait()
	var failed int
	for _, res := range results {
		if res.Err != nil {
			failed++
		}
	}
	logger.Log("level", "info", "status", "finished", "jobs", len(jobs), "failed", failed, "workers", workers)
	return results
}
