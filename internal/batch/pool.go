package batch

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// ErrPoolFailure marks a systemic fault in the pool machinery itself, as
// opposed to a per-item failure already captured in an ItemResult.
var ErrPoolFailure = errors.New("worker pool failure")

// DefaultWorkers bounds concurrency conservatively: each in-flight item
// holds full image buffers and the engine's model in memory.
const DefaultWorkers = 2

// Pool dispatches tasks across a bounded set of workers.
type Pool struct {
	Workers int
	Process ProcessFunc
	Log     zerolog.Logger
}

// Run executes every task, emitting one ItemResult per task on results in
// completion order. Run does not close results.
//
// Process itself never returns an error; a panic escaping it is therefore
// a fault in the pool's own contract. When that happens the remaining work
// is drained without producing results and Run reports ErrPoolFailure —
// the caller must discard whatever was emitted and fall back to the
// sequential runner for the entire task list.
func (p *Pool) Run(ctx context.Context, tasks []Task, results chan<- ItemResult) error {
	workers := p.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if workers > len(tasks) {
		workers = len(tasks)
	}
	if workers < 1 {
		workers = 1
	}
	p.Log.Debug().Int("workers", workers).Int("tasks", len(tasks)).Msg("pool starting")

	jobs := make(chan Task)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var poolErr error

	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(id int) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					mu.Lock()
					if poolErr == nil {
						poolErr = fmt.Errorf("%w: worker %d: %v", ErrPoolFailure, id, r)
					}
					mu.Unlock()
					p.Log.Error().Int("worker", id).Interface("panic", r).Msg("worker crashed")
					// Keep the feeder from blocking on a dead worker.
					for range jobs {
					}
				}
			}()
			for task := range jobs {
				results <- p.Process(ctx, task)
			}
		}(i)
	}

	for _, task := range tasks {
		jobs <- task
	}
	close(jobs)
	wg.Wait()

	return poolErr
}
