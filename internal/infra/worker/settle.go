// File: internal/infra/worker/settle.go
package worker

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

type Task func(ctx context.Context) error

// SettleAll runs every task to completion and returns each task's error by index.
// One failure never cancels or short-circuits the others. limit <= 0 means no bound.
func SettleAll(ctx context.Context, limit int, tasks []Task) []error {
	errs := make([]error, len(tasks))
	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, task := range tasks {
		if task == nil {
			errs[i] = fmt.Errorf("task %d: nil task", i)
			continue
		}
		g.Go(func() (err error) {
			defer func() {
				if rec := recover(); rec != nil {
					errs[i] = fmt.Errorf("task %d panicked: %v", i, rec)
				}
			}()
			errs[i] = task(ctx)
			return nil
		})
	}
	_ = g.Wait()
	return errs
}

// Failed counts non-nil results.
func Failed(errs []error) int {
	n := 0
	for _, err := range errs {
		if err != nil {
			n++
		}
	}
	return n
}
