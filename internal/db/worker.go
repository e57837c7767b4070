package db

import (
	"context"
	"database/sql"
)

// TxFn runs inside a write transaction owned by the Worker.
type TxFn func(ctx context.Context, tx *sql.Tx) error

type writeRequest struct {
	ctx   context.Context
	fn    TxFn
	reply chan error
}

// Worker serializes all write transactions through a single goroutine.
// SQLite allows one writer at a time; funnelling violation appends and user
// updates through one queue turns SQLITE_BUSY contention into plain queueing.
type Worker struct {
	db      *sql.DB
	queue   chan writeRequest
	stopped chan struct{}
}

func NewWorker(db *sql.DB) *Worker {
	w := &Worker{
		db:      db,
		queue:   make(chan writeRequest, 256),
		stopped: make(chan struct{}),
	}
	go w.run()
	return w
}

// Close drains the queue and stops the write goroutine.  No Do calls may
// follow.
func (w *Worker) Close() {
	close(w.queue)
	<-w.stopped
}

// Do executes fn in a transaction on the write goroutine and returns its
// result.  If ctx expires while the request is queued or running, Do returns
// early; the transaction itself still runs to completion and its result is
// discarded into the buffered reply channel.
func (w *Worker) Do(ctx context.Context, fn TxFn) error {
	req := writeRequest{ctx: ctx, fn: fn, reply: make(chan error, 1)}

	select {
	case w.queue <- req:
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-req.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Worker) run() {
	defer close(w.stopped)
	for req := range w.queue {
		req.reply <- w.transact(req.ctx, req.fn)
	}
}

func (w *Worker) transact(ctx context.Context, fn TxFn) error {
	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(ctx, tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
