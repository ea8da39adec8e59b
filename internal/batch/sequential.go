package batch

import "context"

// RunSequential executes every task in submission order on the calling
// goroutine, emitting one ItemResult per task on results. It is the
// degraded path after a pool failure and cannot itself fail: any per-task
// fault is already captured by the ProcessFunc contract.
func RunSequential(ctx context.Context, tasks []Task, process ProcessFunc, results chan<- ItemResult) {
	for _, task := range tasks {
		results <- process(ctx, task)
	}
}
