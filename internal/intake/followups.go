package intake

import (
	"context"
	"errors"
	"sync"

	"github.com/katalux/roofers-landing/internal/leads"
)

const (
	defaultFollowUpWorkers = 2
	defaultFollowUpBacklog = 256
)

var (
	// ErrBacklogFull is returned by Enqueue when every worker is busy and
	// the backlog has no room left.
	ErrBacklogFull = errors.New("intake: follow-up backlog is full")
	// ErrDispatcherClosed is returned by Enqueue after Close.
	ErrDispatcherClosed = errors.New("intake: follow-up dispatcher is closed")
)

type followUpJob struct {
	ctx  context.Context
	lead *leads.Lead
}

// Dispatcher runs lead follow-ups on a fixed set of background workers so
// that the visitor's response does not wait on the database, S3, or email.
type Dispatcher struct {
	process func(context.Context, *leads.Lead)
	jobs    chan followUpJob

	// sendMu guards closed and the jobs channel against send-after-close.
	sendMu sync.RWMutex
	closed bool

	mu      sync.Mutex
	pending int
	idle    *sync.Cond

	workers sync.WaitGroup
}

// NewDispatcher starts workers goroutines that call process for every
// enqueued lead. Non-positive sizes fall back to the defaults.
func NewDispatcher(process func(context.Context, *leads.Lead), workers, backlog int) *Dispatcher {
	if workers <= 0 {
		workers = defaultFollowUpWorkers
	}
	if backlog <= 0 {
		backlog = defaultFollowUpBacklog
	}
	d := &Dispatcher{
		process: process,
		jobs:    make(chan followUpJob, backlog),
	}
	d.idle = sync.NewCond(&d.mu)
	for i := 0; i < workers; i++ {
		d.workers.Add(1)
		go d.work()
	}
	return d
}

// Enqueue hands lead to a worker without blocking. ctx is detached from
// its cancellation so the follow-ups outlive the request that produced them.
func (d *Dispatcher) Enqueue(ctx context.Context, lead *leads.Lead) error {
	d.sendMu.RLock()
	defer d.sendMu.RUnlock()
	if d.closed {
		return ErrDispatcherClosed
	}

	d.mu.Lock()
	d.pending++
	d.mu.Unlock()

	select {
	case d.jobs <- followUpJob{ctx: context.WithoutCancel(ctx), lead: lead}:
		return nil
	default:
		d.finish()
		return ErrBacklogFull
	}
}

// Pending reports leads enqueued but not yet fully processed.
func (d *Dispatcher) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

// Flush waits until every enqueued lead has been processed or ctx is done.
// Enqueue stays open.
func (d *Dispatcher) Flush(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.mu.Lock()
		for d.pending > 0 {
			d.idle.Wait()
		}
		d.mu.Unlock()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting leads and waits for the backlog to drain or for
// ctx to end, whichever comes first. It is safe to call more than once.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.sendMu.Lock()
	if !d.closed {
		d.closed = true
		close(d.jobs)
	}
	d.sendMu.Unlock()

	done := make(chan struct{})
	go func() {
		d.workers.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) work() {
	defer d.workers.Done()
	for job := range d.jobs {
		d.process(job.ctx, job.lead)
		d.finish()
	}
}

func (d *Dispatcher) finish() {
	d.mu.Lock()
	d.pending--
	if d.pending == 0 {
		d.idle.Broadcast()
	}
	d.mu.Unlock()
}
