package app

import (
	"context"
	"log"
	"sync"

	"github.com/hkarvonen/tickd/internal/mirror"
)

const syncQueueLimit = 128

type opKind int

const (
	opUpsert opKind = iota
	opDelete
	opActivity
)

type syncOp struct {
	kind     opKind
	records  []mirror.Record
	name     string
	activity mirror.ActivityRecord
}

// SyncQueue dispatches mirror operations in the background so lifecycle
// operations never block on the network. Consecutive upserts coalesce: a new
// full-state snapshot replaces a pending one that has not been sent yet.
// Deletes and activity inserts are kept in order relative to upserts.
type SyncQueue struct {
	mirror Mirror
	logger *log.Logger

	mu   sync.Mutex
	ops  []syncOp
	wake chan struct{}
	done chan struct{}
}

func NewSyncQueue(m Mirror, logger *log.Logger) *SyncQueue {
	return &SyncQueue{
		mirror: m,
		logger: logger,
		wake:   make(chan struct{}, 1),
	}
}

func (q *SyncQueue) enabled() bool {
	return q.mirror != nil && q.mirror.PrincipalID() != ""
}

// EnqueueUpsert queues a full-state snapshot for upload, replacing any
// pending snapshot that is still at the tail of the queue.
func (q *SyncQueue) EnqueueUpsert(records []mirror.Record) {
	if !q.enabled() {
		return
	}
	q.mu.Lock()
	if n := len(q.ops); n > 0 && q.ops[n-1].kind == opUpsert {
		q.ops[n-1].records = records
	} else {
		q.push(syncOp{kind: opUpsert, records: records})
	}
	q.mu.Unlock()
	q.signal()
}

// EnqueueDelete queues removal of one remote timer row.
func (q *SyncQueue) EnqueueDelete(name string) {
	if !q.enabled() {
		return
	}
	q.mu.Lock()
	q.push(syncOp{kind: opDelete, name: name})
	q.mu.Unlock()
	q.signal()
}

// EnqueueActivity queues one completed-activity insert.
func (q *SyncQueue) EnqueueActivity(rec mirror.ActivityRecord) {
	if !q.enabled() {
		return
	}
	q.mu.Lock()
	q.push(syncOp{kind: opActivity, activity: rec})
	q.mu.Unlock()
	q.signal()
}

// push appends under q.mu, dropping the oldest op when the bound is hit.
func (q *SyncQueue) push(op syncOp) {
	if len(q.ops) >= syncQueueLimit {
		q.ops = q.ops[1:]
		if q.logger != nil {
			q.logger.Printf("SyncQueue: queue full, dropped oldest op")
		}
	}
	q.ops = append(q.ops, op)
}

func (q *SyncQueue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Start runs the dispatch loop until ctx is cancelled.
func (q *SyncQueue) Start(ctx context.Context) {
	q.mu.Lock()
	q.done = make(chan struct{})
	done := q.done
	q.mu.Unlock()

	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case <-q.wake:
				q.drain(ctx)
			}
		}
	}()
}

// Stop waits for the dispatch loop to exit after its context is cancelled.
func (q *SyncQueue) Stop() {
	q.mu.Lock()
	done := q.done
	q.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Flush dispatches everything queued so far synchronously.
func (q *SyncQueue) Flush(ctx context.Context) {
	q.drain(ctx)
}

func (q *SyncQueue) drain(ctx context.Context) {
	for {
		q.mu.Lock()
		if len(q.ops) == 0 {
			q.mu.Unlock()
			return
		}
		op := q.ops[0]
		q.ops = q.ops[1:]
		q.mu.Unlock()

		q.dispatch(ctx, op)
	}
}

func (q *SyncQueue) dispatch(ctx context.Context, op syncOp) {
	var err error
	switch op.kind {
	case opUpsert:
		err = q.mirror.UpsertTimers(ctx, op.records)
	case opDelete:
		err = q.mirror.DeleteTimer(ctx, op.name)
	case opActivity:
		err = q.mirror.InsertActivity(ctx, op.activity)
	}
	if err != nil && q.logger != nil {
		q.logger.Printf("SyncQueue: dispatch failed: %v", err)
	}
}
