package warehouse

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// ScanPool runs independent warehouse queries with bounded parallelism.
// The advisor's analysis path is strictly sequential, so this is only for
// side features like the fraud scan, whose rule queries don't depend on
// each other.
type ScanPool struct {
	maxConcurrent int
	logger        *zap.Logger
}

// NewScanPool creates a pool allowing up to maxConcurrent queries in
// flight (default 4).
func NewScanPool(maxConcurrent int, logger *zap.Logger) *ScanPool {
	if maxConcurrent < 1 {
		maxConcurrent = 4
	}
	return &ScanPool{
		maxConcurrent: maxConcurrent,
		logger:        logger.Named("scan-pool"),
	}
}

// Task is one unit of work to run against the warehouse.
type Task[T any] struct {
	ID      string
	Execute func(ctx context.Context) (T, error)
}

// Outcome is the result of one task.
type Outcome[T any] struct {
	ID     string
	Result T
	Err    error
}

// RunAll executes every task with bounded parallelism and returns outcomes
// in completion order. Individual failures don't stop the remaining tasks;
// callers reassemble by ID.
func RunAll[T any](ctx context.Context, pool *ScanPool, tasks []Task[T]) []Outcome[T] {
	if len(tasks) == 0 {
		return nil
	}

	outcomes := make([]Outcome[T], 0, len(tasks))
	outcomeChan := make(chan Outcome[T], len(tasks))
	sem := make(chan struct{}, pool.maxConcurrent)

	var wg sync.WaitGroup

	for _, task := range tasks {
		wg.Add(1)
		go func(task Task[T]) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				var zero T
				outcomeChan <- Outcome[T]{ID: task.ID, Result: zero, Err: ctx.Err()}
				return
			}

			result, err := task.Execute(ctx)
			outcomeChan <- Outcome[T]{ID: task.ID, Result: result, Err: err}
		}(task)
	}

	go func() {
		wg.Wait()
		close(outcomeChan)
	}()

	for outcome := range outcomeChan {
		if outcome.Err != nil {
			pool.logger.Warn("scan task failed",
				zap.String("task", outcome.ID),
				zap.Error(outcome.Err))
		}
		outcomes = append(outcomes, outcome)
	}

	return outcomes
}
