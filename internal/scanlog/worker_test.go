package scanlog

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joinby-app/qr-gateway/internal/model"
)

type memStore struct {
	mu      sync.Mutex
	events  []model.ScanEvent
	batches int
}

func (m *memStore) RecordScans(_ context.Context, events []model.ScanEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, events...)
	m.batches++
	return nil
}

func (m *memStore) snapshot() ([]model.ScanEvent, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.ScanEvent, len(m.events))
	copy(out, m.events)
	return out, m.batches
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func event(shortID string) model.ScanEvent {
	return model.ScanEvent{
		ShortID:     shortID,
		OwnerUserID: "owner-" + shortID,
		RequestID:   "req-" + shortID,
	}
}

func TestRecorder_FlushOnBatchSize(t *testing.T) {
	store := &memStore{}
	rec := NewRecorder(store, Config{
		WorkerCount:  1,
		BufferSize:   16,
		BatchSize:    3,
		BatchTimeout: time.Hour,
	})
	rec.Start()
	defer rec.Shutdown(time.Second)

	rec.Enqueue(event("a"))
	rec.Enqueue(event("b"))
	rec.Enqueue(event("c"))

	waitFor(t, func() bool {
		events, _ := store.snapshot()
		return len(events) == 3
	})

	events, batches := store.snapshot()
	assert.Len(t, events, 3)
	assert.Equal(t, 1, batches)
}

func TestRecorder_FlushOnTimeout(t *testing.T) {
	store := &memStore{}
	rec := NewRecorder(store, Config{
		WorkerCount:  1,
		BufferSize:   16,
		BatchSize:    100,
		BatchTimeout: 50 * time.Millisecond,
	})
	rec.Start()
	defer rec.Shutdown(time.Second)

	rec.Enqueue(event("only"))

	waitFor(t, func() bool {
		events, _ := store.snapshot()
		return len(events) == 1
	})

	events, _ := store.snapshot()
	require.Len(t, events, 1)
	assert.Equal(t, "only", events[0].ShortID)
	assert.False(t, events[0].OccurredAt.IsZero())
}

func TestRecorder_ShutdownFlushesRemaining(t *testing.T) {
	store := &memStore{}
	rec := NewRecorder(store, Config{
		WorkerCount:  1,
		BufferSize:   16,
		BatchSize:    100,
		BatchTimeout: time.Hour,
	})
	rec.Start()

	rec.Enqueue(event("x"))
	rec.Enqueue(event("y"))

	require.NoError(t, rec.Shutdown(time.Second))

	events, _ := store.snapshot()
	assert.Len(t, events, 2)
}

func TestRecorder_EnqueueNeverBlocks(t *testing.T) {
	store := &memStore{}
	rec := NewRecorder(store, Config{
		WorkerCount:  1,
		BufferSize:   1,
		BatchSize:    100,
		BatchTimeout: time.Hour,
	})
	// workers intentionally not started; the buffer fills immediately

	done := make(chan struct{})
	go func() {
		for i := 0; i < 50; i++ {
			rec.Enqueue(event("overflow"))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Enqueue blocked on a full buffer")
	}
}
