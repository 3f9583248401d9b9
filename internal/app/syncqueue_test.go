package app

import (
	"context"
	"testing"

	"github.com/hkarvonen/tickd/internal/mirror"
)

func TestSyncQueueCoalescesUpserts(t *testing.T) {
	m := &fakeMirror{principal: "p1"}
	q := NewSyncQueue(m, nil)

	q.EnqueueUpsert([]mirror.Record{{TimerName: "a", ElapsedMs: 1}})
	q.EnqueueUpsert([]mirror.Record{{TimerName: "a", ElapsedMs: 2}})
	q.EnqueueUpsert([]mirror.Record{{TimerName: "a", ElapsedMs: 3}})
	q.Flush(context.Background())

	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.upserts) != 1 {
		t.Fatalf("dispatched %d upserts, want 1 (coalesced)", len(m.upserts))
	}
	if m.upserts[0][0].ElapsedMs != 3 {
		t.Errorf("dispatched elapsed = %d, want latest snapshot 3", m.upserts[0][0].ElapsedMs)
	}
}

func TestSyncQueuePreservesOrderAcrossKinds(t *testing.T) {
	m := &fakeMirror{principal: "p1"}
	q := NewSyncQueue(m, nil)

	q.EnqueueUpsert([]mirror.Record{{TimerName: "a", ElapsedMs: 1}})
	q.EnqueueDelete("a")
	// A delete in between must block coalescing with the earlier upsert.
	q.EnqueueUpsert([]mirror.Record{{TimerName: "b", ElapsedMs: 2}})
	q.Flush(context.Background())

	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.upserts) != 2 || len(m.deletes) != 1 {
		t.Fatalf("upserts=%d deletes=%d, want 2/1", len(m.upserts), len(m.deletes))
	}
	if m.upserts[1][0].TimerName != "b" {
		t.Errorf("second upsert = %+v", m.upserts[1])
	}
}

func TestSyncQueueDisabledWithoutPrincipal(t *testing.T) {
	m := &fakeMirror{principal: ""}
	q := NewSyncQueue(m, nil)

	q.EnqueueUpsert([]mirror.Record{{TimerName: "a"}})
	q.EnqueueDelete("a")
	q.Flush(context.Background())

	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.upserts) != 0 || len(m.deletes) != 0 {
		t.Error("disabled queue still dispatched ops")
	}
}

func TestSyncQueueBounded(t *testing.T) {
	m := &fakeMirror{principal: "p1"}
	q := NewSyncQueue(m, nil)

	for i := 0; i < syncQueueLimit+10; i++ {
		q.EnqueueDelete("t")
	}
	q.mu.Lock()
	pending := len(q.ops)
	q.mu.Unlock()
	if pending != syncQueueLimit {
		t.Errorf("pending = %d, want bound %d", pending, syncQueueLimit)
	}
}

func TestSyncQueueStartStop(t *testing.T) {
	m := &fakeMirror{principal: "p1"}
	q := NewSyncQueue(m, nil)

	ctx, cancel := context.WithCancel(context.Background())
	q.Start(ctx)
	q.EnqueueUpsert([]mirror.Record{{TimerName: "a"}})

	// Stop must return once the loop observes cancellation.
	cancel()
	q.Stop()
}
