package catalogue

import (
	"context"
	"sync"
)

// The catalogue serializes every store operation through one worker
// goroutine that exclusively owns the database handle. Operations
// issued sequentially by one caller complete in issue order, so an
// upsert is always visible to the query issued after it.

type opResult struct {
	value any
	err   error
}

type op struct {
	fn   func(ctx context.Context) (any, error)
	done chan opResult
}

type queue struct {
	ops chan op
	wg  sync.WaitGroup
}

func newQueue() *queue {
	q := &queue{ops: make(chan op)}
	q.wg.Add(1)
	go q.run()
	return q
}

func (q *queue) run() {
	defer q.wg.Done()
	for o := range q.ops {
		// operations run to completion even when the caller has
		// stopped waiting; writes are never cancellable mid-transaction
		v, err := o.fn(context.Background())
		o.done <- opResult{value: v, err: err}
	}
}

func (q *queue) close() {
	close(q.ops)
	q.wg.Wait()
}

// do dispatches fn to the worker and waits for its result. A caller
// abandoning the wait via ctx leaves the operation running.
func (q *queue) do(ctx context.Context, fn func(ctx context.Context) (any, error)) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	o := op{fn: fn, done: make(chan opResult, 1)}
	select {
	case q.ops <- o:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case res := <-o.done:
		return res.value, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
