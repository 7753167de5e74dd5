// Package dispatcher implements a named, concurrency-bounded
// worker-pool fan-out: a priority pool used by validators for parallel
// fan-out of header and transaction checks, and a general pool used by
// ChainFacade to dispatch organize invocations and subscriber
// notifications.
//
// It is a thin wrapper over golang.org/x/sync/errgroup and
// golang.org/x/sync/semaphore.
package dispatcher

import (
	"context"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Pool is a named, concurrency-bounded worker pool.
type Pool struct {
	name string
	sem  *semaphore.Weighted
}

// New returns a Pool that runs at most concurrency tasks at once.
func New(name string, concurrency int64) *Pool {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Pool{
		name: name,
		sem:  semaphore.NewWeighted(concurrency),
	}
}

// Name returns the pool's name, used only for logging.
func (p *Pool) Name() string {
	return p.name
}

// Go schedules fn to run asynchronously on the pool. It returns
// immediately; fn runs once a slot becomes available.
func (p *Pool) Go(fn func()) {
	go func() {
		if err := p.sem.Acquire(context.Background(), 1); err != nil {
			log.Errorf("dispatcher %s: acquire failed: %v", p.name, err)
			return
		}
		defer p.sem.Release(1)
		fn()
	}()
}

// GoAll runs fns concurrently, bounded by the pool's concurrency limit,
// and waits for all of them to finish. It short-circuits and returns
// the first error encountered, cancelling ctx for the remaining tasks.
func (p *Pool) GoAll(ctx context.Context, fns []func(context.Context) error) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, fn := range fns {
		fn := fn
		g.Go(func() error {
			if err := p.sem.Acquire(gctx, 1); err != nil {
				return err
			}
			defer p.sem.Release(1)
			return fn(gctx)
		})
	}
	return g.Wait()
}
