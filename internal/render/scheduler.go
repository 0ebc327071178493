package render

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/MrSnakeDoc/staticsite/internal/domain"
)

// Task is one unit of rendering. URI and RelPath are resolved while
// planning so every task is known to own a distinct output file.
type Task struct {
	Route    *domain.RouteDescriptor
	Params   domain.ParamSet
	Language string

	URI      string
	Filename string
	RelPath  string
}

// Scheduler runs tasks with at most Concurrency in flight. The first
// failure cancels the tasks that have not started yet.
type Scheduler struct {
	Concurrency int
}

func (s Scheduler) limit() int {
	if s.Concurrency < 1 {
		return 1
	}
	return s.Concurrency
}

// Run calls fn for every task and returns the collected results in
// completion order.
func (s Scheduler) Run(ctx context.Context, tasks []Task, fn func(context.Context, Task) (string, error)) ([]string, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.limit())

	var (
		mu      sync.Mutex
		results = make([]string, 0, len(tasks))
	)

	for _, task := range tasks {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := fn(gctx, task)
			if err != nil {
				return err
			}
			mu.Lock()
			results = append(results, res)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	// ctx may have been cancelled before any task ran.
	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}
