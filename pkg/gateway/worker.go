package gateway

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
)

var ErrWorkerStopped = errors.New("worker stopped")

type Job func(ctx context.Context) (interface{}, error)

type result struct {
	value interface{}
	err   error
}

type task struct {
	ctx    context.Context
	job    Job
	result chan result
}

// Worker runs jobs for one backend serially on its own goroutine. Each
// submission gets a single-shot result channel.
type Worker struct {
	name  string
	tasks chan task

	stopOnce sync.Once
	stopped  chan struct{}
	done     chan struct{}
}

func NewWorker(name string, queueSize int) *Worker {
	if queueSize <= 0 {
		queueSize = 16
	}
	return &Worker{
		name:    name,
		tasks:   make(chan task, queueSize),
		stopped: make(chan struct{}),
		done:    make(chan struct{}),
	}
}

func (w *Worker) Name() string {
	return w.name
}

// Run consumes jobs until ctx is done or Stop is called.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)
	log.Debug().Str("worker", w.name).Msg("worker started")

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopped:
			return
		case t := <-w.tasks:
			w.execute(t)
		}
	}
}

func (w *Worker) execute(t task) {
	// the caller stopped waiting while this was queued
	if err := t.ctx.Err(); err != nil {
		t.result <- result{err: err}
		return
	}

	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("worker", w.name).Interface("panic", r).Msg("worker job panicked")
			t.result <- result{err: errors.New("worker job panicked")}
		}
	}()

	v, err := t.job(t.ctx)
	t.result <- result{value: v, err: err}
}

// Submit queues job and waits for its result, honouring ctx both while queued
// and while running.
func (w *Worker) Submit(ctx context.Context, job Job) (interface{}, error) {
	t := task{ctx: ctx, job: job, result: make(chan result, 1)}

	select {
	case w.tasks <- t:
	case <-w.stopped:
		return nil, ErrWorkerStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case r := <-t.result:
		return r.value, r.err
	case <-w.stopped:
		return nil, ErrWorkerStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (w *Worker) Stop() {
	w.stopOnce.Do(func() { close(w.stopped) })
}

// Done is closed once Run has returned.
func (w *Worker) Done() <-chan struct{} {
	return w.done
}
