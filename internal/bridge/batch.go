package bridge

import (
	"context"
	"fmt"
	"sync"
)

// Task is one independent unit of work for the batch runner.
type Task struct {
	Name string
	Fn   func(ctx context.Context) (any, error)
}

// TaskResult captures one task's outcome. Exactly one of Value and Err is
// meaningful.
type TaskResult struct {
	Name  string
	Value any
	Err   error
}

// RunBatched executes tasks in sequential chunks of size concurrency. Within
// a chunk all tasks run concurrently; chunk N+1 does not start until every
// task of chunk N has settled. A task's failure or panic never cancels its
// siblings; every outcome is captured independently.
func RunBatched(ctx context.Context, tasks []Task, concurrency int) []TaskResult {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	results := make([]TaskResult, len(tasks))

	for start := 0; start < len(tasks); start += concurrency {
		end := start + concurrency
		if end > len(tasks) {
			end = len(tasks)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i] = runOne(ctx, tasks[i])
			}(i)
		}
		wg.Wait()
	}
	return results
}

func runOne(ctx context.Context, task Task) (res TaskResult) {
	res.Name = task.Name
	defer func() {
		if r := recover(); r != nil {
			res.Err = fmt.Errorf("task %s panicked: %v", task.Name, r)
		}
	}()
	res.Value, res.Err = task.Fn(ctx)
	return res
}

// runBatched is the Service-level wrapper adding task outcome metrics.
func (s *Service) runBatched(ctx context.Context, tasks []Task) []TaskResult {
	results := RunBatched(ctx, tasks, s.concurrency)
	if s.metrics != nil {
		for _, r := range results {
			if r.Err != nil {
				s.metrics.RecordBatchTask("failed")
			} else {
				s.metrics.RecordBatchTask("succeeded")
			}
		}
	}
	return results
}
