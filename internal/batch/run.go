package batch

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

// OutputDirName is created under the input directory when no explicit
// output directory is given.
const OutputDirName = "imagenes_sin_fondo"

var (
	// ErrNoCandidates means the input directory held no image files.
	ErrNoCandidates = errors.New("no candidate images")
	// ErrOutputDir means the output directory could not be created or
	// written to; nothing was attempted.
	ErrOutputDir = errors.New("output directory not usable")
)

// Options configures one batch run.
type Options struct {
	InputDir  string
	OutputDir string
	Workers   int
}

// Run executes a whole batch: enumerate candidates, preflight the output
// directory, dispatch across the worker pool, and aggregate results. If
// the pool itself fails, the partial results are discarded and the entire
// task list is re-run sequentially, so a summary is always produced once
// preflight passes.
//
// updates, when non-nil, receives delta messages for a progress display;
// it is never closed by Run.
func Run(ctx context.Context, opts Options, process ProcessFunc, log zerolog.Logger, updates chan<- ProgressUpdate) (Summary, error) {
	names, err := Candidates(opts.InputDir)
	if err != nil {
		return Summary{}, err
	}
	if len(names) == 0 {
		return Summary{}, fmt.Errorf("%w in %s", ErrNoCandidates, opts.InputDir)
	}

	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return Summary{}, fmt.Errorf("%w: %v", ErrOutputDir, err)
	}
	if err := ProbeWritable(opts.OutputDir); err != nil {
		return Summary{}, fmt.Errorf("%w: %v", ErrOutputDir, err)
	}

	tasks := BuildTasks(opts.InputDir, opts.OutputDir, names)
	log.Info().Int("tasks", len(tasks)).Str("output", opts.OutputDir).Msg("batch starting")

	send := func(u ProgressUpdate) {
		if updates != nil {
			updates <- u
		}
	}
	send(ProgressUpdate{TotalDelta: len(tasks)})

	pool := &Pool{Workers: opts.Workers, Process: process, Log: log}
	agg := NewAggregator(len(tasks))
	results := make(chan ItemResult)
	done := collect(agg, len(tasks), results, send)

	poolErr := pool.Run(ctx, tasks, results)
	close(results)
	<-done

	if poolErr == nil {
		return agg.Summary(opts.OutputDir, false), nil
	}

	// Systemic pool fault: conservative recovery re-attempts the whole
	// list one item at a time, discarding whatever the pool produced.
	log.Warn().Err(poolErr).Msg("worker pool failed, retrying sequentially")
	send(ProgressUpdate{Reset: true, TotalDelta: len(tasks)})

	agg = NewAggregator(len(tasks))
	results = make(chan ItemResult)
	done = collect(agg, len(tasks), results, send)

	RunSequential(ctx, tasks, process, results)
	close(results)
	<-done

	return agg.Summary(opts.OutputDir, true), nil
}

// collect drains results into the aggregator and the progress sink until
// the channel closes. Completion index in the rendered line refers to
// arrival order, not submission order.
func collect(agg *Aggregator, total int, results <-chan ItemResult, send func(ProgressUpdate)) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		i := 0
		for res := range results {
			i++
			agg.Add(res)
			update := ProgressUpdate{
				DoneDelta: 1,
				Line:      fmt.Sprintf("[%d/%d] %s", i, total, res.Describe()),
			}
			if !res.OK() {
				update.FailedDelta = 1
			}
			send(update)
		}
	}()
	return done
}
