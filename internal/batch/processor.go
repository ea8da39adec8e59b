package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"

	"github.com/rs/zerolog"

	"desfondo/internal/segment"
	"desfondo/pkg/imgutil"
)

// ProcessFunc is the per-item contract shared by the pool and the
// sequential fallback: one Task in, exactly one ItemResult out, never an
// escaping error.
type ProcessFunc func(ctx context.Context, task Task) ItemResult

// Processor runs the per-file pipeline: read the source image, hand its
// bytes to the segmentation engine, decode the result to RGBA and write it
// as lossless WebP. Stateless; safe for concurrent use across workers.
type Processor struct {
	engine segment.Engine
	log    zerolog.Logger
}

func NewProcessor(engine segment.Engine, log zerolog.Logger) *Processor {
	return &Processor{engine: engine, log: log}
}

// Process executes the pipeline for one task. Every fault is terminal for
// the task and mapped to a tagged failure; nothing is retried here.
func (p *Processor) Process(ctx context.Context, task Task) ItemResult {
	res := ItemResult{Filename: task.Filename, OutputName: task.OutputName}
	if res.OutputName == "" {
		res.OutputName = OutputName(task.Filename)
	}

	inputPath := filepath.Join(task.InputDir, task.Filename)
	if _, err := os.Stat(inputPath); err != nil {
		res.Reason = ReasonNotFound
		res.Detail = err.Error()
		return res
	}

	data, err := os.ReadFile(inputPath)
	if err != nil {
		if os.IsNotExist(err) {
			res.Reason = ReasonNotFound
		} else {
			res.Reason = ReasonRead
		}
		res.Detail = err.Error()
		return res
	}
	if len(data) == 0 {
		res.Reason = ReasonEmptyInput
		return res
	}
	p.log.Debug().Str("file", task.Filename).Int("bytes", len(data)).Msg("read input")

	out, err := p.removeBackground(ctx, data)
	if err != nil {
		res.Reason = ReasonSegmentation
		res.Detail = err.Error()
		return res
	}
	if len(out) == 0 {
		res.Reason = ReasonSegmentation
		res.Detail = "engine returned no output"
		return res
	}
	p.log.Debug().Str("file", task.Filename).Int("bytes", len(out)).Msg("background removed")

	img, err := imgutil.DecodeRGBA(out)
	if err != nil {
		res.Reason = ReasonDecode
		res.Detail = err.Error()
		return res
	}

	outputPath := filepath.Join(task.OutputDir, res.OutputName)
	f, err := os.Create(outputPath)
	if err != nil {
		res.Reason = ReasonWrite
		res.Detail = err.Error()
		return res
	}
	encErr := imgutil.EncodeWebPLossless(f, img)
	closeErr := f.Close()
	if encErr == nil {
		encErr = closeErr
	}
	if encErr != nil {
		_ = os.Remove(outputPath)
		res.Reason = ReasonWrite
		res.Detail = encErr.Error()
		return res
	}

	info, err := os.Stat(outputPath)
	if err != nil || info.Size() == 0 {
		res.Reason = ReasonWriteVerify
		if err != nil {
			res.Detail = err.Error()
		} else {
			res.Detail = "output file is empty"
		}
		return res
	}

	p.log.Debug().Str("file", task.Filename).Str("output", res.OutputName).Msg("written")
	return res
}

// removeBackground isolates the engine call. The engine is a black box
// that may fail in arbitrary ways; even a panic inside it must come back
// as an ordinary error so one bad image cannot take down the batch.
func (p *Processor) removeBackground(ctx context.Context, data []byte) (out []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("engine panic: %v\n%s", r, debug.Stack())
		}
	}()
	return p.engine.Remove(ctx, data)
}
