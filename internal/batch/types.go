package batch

import "strings"

// Task is one unit of work: a single source image paired with the
// directories it is read from and written to. Tasks are built once at
// batch start and never mutated.
type Task struct {
	InputDir   string
	OutputDir  string
	Filename   string
	OutputName string
}

// FailureReason classifies a per-item failure. ReasonNone marks success.
type FailureReason int

const (
	ReasonNone FailureReason = iota
	ReasonNotFound
	ReasonRead
	ReasonEmptyInput
	ReasonSegmentation
	ReasonDecode
	ReasonWrite
	ReasonWriteVerify
)

func (r FailureReason) String() string {
	switch r {
	case ReasonNone:
		return "ok"
	case ReasonNotFound:
		return "not found"
	case ReasonRead:
		return "read"
	case ReasonEmptyInput:
		return "empty input"
	case ReasonSegmentation:
		return "segmentation"
	case ReasonDecode:
		return "decode"
	case ReasonWrite:
		return "write"
	case ReasonWriteVerify:
		return "write verification"
	default:
		return "unknown"
	}
}

// ItemResult is the outcome of processing one Task. The Reason tag is the
// source of truth for success or failure; Detail only carries diagnostics
// for display.
type ItemResult struct {
	Filename   string
	OutputName string
	Reason     FailureReason
	Detail     string
}

// OK reports whether the item succeeded.
func (r ItemResult) OK() bool { return r.Reason == ReasonNone }

// Describe renders the result as a single human-readable line.
func (r ItemResult) Describe() string {
	if r.OK() {
		return r.Filename + " -> " + r.OutputName
	}
	line := r.Filename + ": " + r.Reason.String()
	if r.Detail != "" {
		detail := r.Detail
		if i := strings.IndexByte(detail, '\n'); i >= 0 {
			detail = detail[:i]
		}
		line += ": " + detail
	}
	return line
}

// Summary accumulates the outcome of one batch run.
type Summary struct {
	Succeeded  int
	Failed     int
	Results    []ItemResult
	OutputDir  string
	Sequential bool
}

// ProgressUpdate is a delta message consumed by the progress display.
// Reset tells the display the run restarted on the sequential path and
// prior counts no longer apply.
type ProgressUpdate struct {
	TotalDelta  int
	DoneDelta   int
	FailedDelta int
	Line        string
	Reset       bool
}
