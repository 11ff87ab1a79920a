/*
2019 © Postgres.ai
*/

package responder

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"gitlab.com/postgres-ai/database-lab/pkg/log"
	"golang.org/x/sync/semaphore"
)

// Handler processes a job.
type Handler func(ctx context.Context, job Job)

// Pool runs jobs in the background. Submit never blocks,
// while the number of jobs being handled at the same time is limited.
type Pool struct {
	handle Handler
	sem    *semaphore.Weighted
	wg     sync.WaitGroup
}

// NewPool creates a new Pool.
func NewPool(maxInFlight int64, handle Handler) *Pool {
	return &Pool{
		handle: handle,
		sem:    semaphore.NewWeighted(maxInFlight),
	}
}

// Submit schedules the job. The job is not tied to the caller and cannot be cancelled.
func (p *Pool) Submit(job Job) {
	p.wg.Add(1)

	go func() {
		defer p.wg.Done()

		ctx := context.Background()

		if err := p.sem.Acquire(ctx, 1); err != nil {
			log.Err("Job", job.InvocationID, "is dropped:", err)
			return
		}

		defer p.sem.Release(1)

		p.handle(ctx, job)
	}()
}

// Wait waits for the submitted jobs until the context is done.
func (p *Pool) Wait(ctx context.Context) error {
	done := make(chan struct{})

	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil

	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "jobs are still running")
	}
}
