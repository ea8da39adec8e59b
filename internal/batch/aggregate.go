package batch

// Aggregator accumulates ItemResults into counts and an ordered log.
// It is owned by a single collector goroutine and needs no locking.
type Aggregator struct {
	succeeded int
	failed    int
	results   []ItemResult
}

func NewAggregator(capacity int) *Aggregator {
	return &Aggregator{results: make([]ItemResult, 0, capacity)}
}

// Add records one result in arrival order.
func (a *Aggregator) Add(res ItemResult) {
	if res.OK() {
		a.succeeded++
	} else {
		a.failed++
	}
	a.results = append(a.results, res)
}

// Summary returns the final counts and the ordered result log.
func (a *Aggregator) Summary(outputDir string, sequential bool) Summary {
	results := make([]ItemResult, len(a.results))
	copy(results, a.results)
	return Summary{
		Succeeded:  a.succeeded,
		Failed:     a.failed,
		Results:    results,
		OutputDir:  outputDir,
		Sequential: sequential,
	}
}
