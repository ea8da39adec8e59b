package batch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunWorkedExample(t *testing.T) {
	// a.jpg valid, b.txt wrong extension, c.png zero bytes.
	inDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(inDir, "a.jpg"), []byte("image bytes"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(inDir, "b.txt"), []byte("not an image"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(inDir, "c.png"), nil, 0o644))

	outDir := filepath.Join(inDir, OutputDirName)
	proc := NewProcessor(okEngine(t), zerolog.Nop())

	summary, err := Run(context.Background(), Options{InputDir: inDir, OutputDir: outDir, Workers: 2}, proc.Process, zerolog.Nop(), nil)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)
	assert.Len(t, summary.Results, 2)
	assert.False(t, summary.Sequential)
	assert.Equal(t, outDir, summary.OutputDir)

	byName := map[string]ItemResult{}
	for _, res := range summary.Results {
		byName[res.Filename] = res
	}
	assert.Equal(t, ReasonNone, byName["a.jpg"].Reason)
	assert.Equal(t, "a_sin_fondo.webp", byName["a.jpg"].OutputName)
	assert.Equal(t, ReasonEmptyInput, byName["c.png"].Reason)

	_, err = os.Stat(filepath.Join(outDir, "a_sin_fondo.webp"))
	assert.NoError(t, err)
}

func TestRunRepeatedRunsAreStable(t *testing.T) {
	// With a deterministic engine, re-running against an unchanged folder
	// must reproduce the same output names, the same per-item
	// classification, and the same file set in the output directory.
	inDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(inDir, "a.jpg"), []byte("image bytes"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(inDir, "c.png"), nil, 0o644))

	outDir := filepath.Join(inDir, OutputDirName)
	proc := NewProcessor(okEngine(t), zerolog.Nop())
	opts := Options{InputDir: inDir, OutputDir: outDir, Workers: 2}

	classify := func(s Summary) map[string]string {
		byFile := make(map[string]string, len(s.Results))
		for _, res := range s.Results {
			byFile[res.Filename] = res.OutputName + "/" + res.Reason.String()
		}
		return byFile
	}
	listOutputs := func() []string {
		entries, err := os.ReadDir(outDir)
		require.NoError(t, err)
		names := make([]string, 0, len(entries))
		for _, entry := range entries {
			names = append(names, entry.Name())
		}
		return names
	}

	first, err := Run(context.Background(), opts, proc.Process, zerolog.Nop(), nil)
	require.NoError(t, err)
	firstOutputs := listOutputs()

	second, err := Run(context.Background(), opts, proc.Process, zerolog.Nop(), nil)
	require.NoError(t, err)

	assert.Equal(t, classify(first), classify(second))
	assert.Equal(t, first.Succeeded, second.Succeeded)
	assert.Equal(t, first.Failed, second.Failed)
	assert.Equal(t, firstOutputs, listOutputs(), "second run must not add or rename output files")
}

func TestRunNoCandidates(t *testing.T) {
	inDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(inDir, "notes.txt"), []byte("x"), 0o644))

	_, err := Run(context.Background(), Options{InputDir: inDir, OutputDir: filepath.Join(inDir, OutputDirName)}, stubProcess, zerolog.Nop(), nil)

	assert.ErrorIs(t, err, ErrNoCandidates)
}

func TestRunFallsBackToSequentialOnPoolFailure(t *testing.T) {
	inDir := t.TempDir()
	names := []string{"a.jpg", "b.png", "c.webp", "d.bmp"}
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(inDir, name), []byte("x"), 0o644))
	}

	// First invocation kills its worker; every later call behaves, so the
	// sequential pass sees the same per-item semantics a healthy pool would.
	var tripped atomic.Bool
	var mu sync.Mutex
	attempts := map[string]int{}
	process := func(ctx context.Context, task Task) ItemResult {
		if tripped.CompareAndSwap(false, true) {
			panic("systemic pool fault")
		}
		mu.Lock()
		attempts[task.Filename]++
		mu.Unlock()
		return stubProcess(ctx, task)
	}

	summary, err := Run(context.Background(), Options{
		InputDir:  inDir,
		OutputDir: filepath.Join(inDir, OutputDirName),
		Workers:   2,
	}, process, zerolog.Nop(), nil)
	require.NoError(t, err)

	assert.True(t, summary.Sequential)
	assert.Len(t, summary.Results, len(names))
	assert.Equal(t, len(names), summary.Succeeded)
	assert.Zero(t, summary.Failed)

	// The fallback attempts every task exactly once; earlier pool attempts
	// were discarded along with their results.
	order := make([]string, 0, len(summary.Results))
	for _, res := range summary.Results {
		order = append(order, res.Filename)
	}
	assert.Equal(t, names, order, "fallback runs in submission order")
	for _, name := range names {
		assert.GreaterOrEqual(t, attempts[name], 1, "%s must be attempted", name)
	}
}

func TestRunEmitsProgress(t *testing.T) {
	inDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(inDir, "a.jpg"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(inDir, "b.png"), []byte("x"), 0o644))

	updates := make(chan ProgressUpdate, 16)

	_, err := Run(context.Background(), Options{
		InputDir:  inDir,
		OutputDir: filepath.Join(inDir, OutputDirName),
	}, stubProcess, zerolog.Nop(), updates)
	require.NoError(t, err)
	close(updates)

	var total, lines int
	for u := range updates {
		total += u.TotalDelta
		if u.Line != "" {
			lines++
			assert.True(t, strings.HasPrefix(u.Line, "["), "line carries a completion index: %q", u.Line)
		}
	}
	assert.Equal(t, 2, total)
	assert.Equal(t, 2, lines)
}

func TestRunPreflightFailureProducesNoSummary(t *testing.T) {
	inDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(inDir, "a.jpg"), []byte("x"), 0o644))

	blocked := filepath.Join(inDir, "blocked")
	require.NoError(t, os.WriteFile(blocked, []byte("a file, not a directory"), 0o644))

	_, err := Run(context.Background(), Options{
		InputDir:  inDir,
		OutputDir: filepath.Join(blocked, "out"),
	}, stubProcess, zerolog.Nop(), nil)

	assert.ErrorIs(t, err, ErrOutputDir)
}
