package batch

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubProcess classifies by filename so tests control the outcome per task
// without touching the filesystem.
func stubProcess(ctx context.Context, task Task) ItemResult {
	res := ItemResult{Filename: task.Filename, OutputName: task.OutputName}
	if strings.HasPrefix(task.Filename, "bad") {
		res.Reason = ReasonSegmentation
		res.Detail = "stub failure"
	}
	return res
}

func makeTasks(names ...string) []Task {
	tasks := make([]Task, 0, len(names))
	for _, name := range names {
		tasks = append(tasks, Task{InputDir: "in", OutputDir: "out", Filename: name, OutputName: OutputName(name)})
	}
	return tasks
}

func runPool(t *testing.T, pool *Pool, tasks []Task) ([]ItemResult, error) {
	t.Helper()

	results := make(chan ItemResult)
	var collected []ItemResult
	done := make(chan struct{})
	go func() {
		defer close(done)
		for res := range results {
			collected = append(collected, res)
		}
	}()

	err := pool.Run(context.Background(), tasks, results)
	close(results)
	<-done
	return collected, err
}

func resultKeys(results []ItemResult) []string {
	keys := make([]string, 0, len(results))
	for _, res := range results {
		keys = append(keys, fmt.Sprintf("%s/%v", res.Filename, res.Reason))
	}
	sort.Strings(keys)
	return keys
}

func TestPoolOneResultPerTask(t *testing.T) {
	tasks := makeTasks("a.jpg", "bad1.png", "c.webp", "bad2.tiff", "e.bmp")
	pool := &Pool{Workers: 2, Process: stubProcess, Log: zerolog.Nop()}

	results, err := runPool(t, pool, tasks)

	require.NoError(t, err)
	assert.Len(t, results, len(tasks))
	assert.Equal(t,
		resultKeys([]ItemResult{
			{Filename: "a.jpg"},
			{Filename: "bad1.png", Reason: ReasonSegmentation},
			{Filename: "bad2.tiff", Reason: ReasonSegmentation},
			{Filename: "c.webp"},
			{Filename: "e.bmp"},
		}),
		resultKeys(results),
	)
}

func TestPoolConcurrencyDegreeDoesNotChangeResults(t *testing.T) {
	tasks := makeTasks("a.jpg", "bad1.png", "c.webp", "bad2.tiff", "e.bmp", "f.jpeg")

	serial := &Pool{Workers: 1, Process: stubProcess, Log: zerolog.Nop()}
	wide := &Pool{Workers: len(tasks), Process: stubProcess, Log: zerolog.Nop()}

	serialResults, err := runPool(t, serial, tasks)
	require.NoError(t, err)
	wideResults, err := runPool(t, wide, tasks)
	require.NoError(t, err)

	assert.Equal(t, resultKeys(serialResults), resultKeys(wideResults))
}

func TestPoolPanicIsSystemic(t *testing.T) {
	tasks := makeTasks("a.jpg", "boom.png", "c.webp", "d.tiff")
	pool := &Pool{
		Workers: 2,
		Process: func(ctx context.Context, task Task) ItemResult {
			if task.Filename == "boom.png" {
				panic("worker died outside the processor boundary")
			}
			return stubProcess(ctx, task)
		},
		Log: zerolog.Nop(),
	}

	_, err := runPool(t, pool, tasks)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPoolFailure)
}

func TestPoolZeroWorkerCap(t *testing.T) {
	tasks := makeTasks("a.jpg")
	pool := &Pool{Workers: 0, Process: stubProcess, Log: zerolog.Nop()}

	results, err := runPool(t, pool, tasks)

	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestRunSequentialKeepsSubmissionOrder(t *testing.T) {
	tasks := makeTasks("z.jpg", "a.png", "m.webp")

	results := make(chan ItemResult, len(tasks))
	RunSequential(context.Background(), tasks, stubProcess, results)
	close(results)

	var order []string
	for res := range results {
		order = append(order, res.Filename)
	}
	assert.Equal(t, []string{"z.jpg", "a.png", "m.webp"}, order)
}
