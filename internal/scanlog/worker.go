package scanlog

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/joinby-app/qr-gateway/internal/model"
	"github.com/joinby-app/qr-gateway/internal/pool"
)

// ScanStore persists batches of scan events.
type ScanStore interface {
	RecordScans(ctx context.Context, events []model.ScanEvent) error
}

// Config tunes the recorder worker pool.
type Config struct {
	WorkerCount  int
	BufferSize   int
	BatchSize    int
	BatchTimeout time.Duration
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		WorkerCount:  2,
		BufferSize:   256,
		BatchSize:    32,
		BatchTimeout: 3 * time.Second,
	}
}

type entry struct {
	event model.ScanEvent
}

func (e *entry) Reset() {
	e.event = model.ScanEvent{}
}

// Recorder accepts scan events off the request path and writes them to the
// store in batches. Enqueue never blocks; under pressure events are dropped,
// the redirect always wins over analytics.
type Recorder struct {
	store        ScanStore
	entries      chan *entry
	entryPool    *pool.Pool[*entry]
	batchSize    int
	batchTimeout time.Duration
	workerCount  int
	ctx          context.Context
	cancel       context.CancelFunc
	wg           sync.WaitGroup
	shutdownOnce sync.Once
}

// NewRecorder creates a Recorder writing to store.
func NewRecorder(store ScanStore, config Config) *Recorder {
	ctx, cancel := context.WithCancel(context.Background())

	return &Recorder{
		store:        store,
		entries:      make(chan *entry, config.BufferSize),
		entryPool:    pool.New[*entry](config.BufferSize),
		batchSize:    config.BatchSize,
		batchTimeout: config.BatchTimeout,
		workerCount:  config.WorkerCount,
		ctx:          ctx,
		cancel:       cancel,
	}
}

// Start launches the worker goroutines.
func (r *Recorder) Start() {
	log.Info().
		Int("workers", r.workerCount).
		Int("batchSize", r.batchSize).
		Dur("batchTimeout", r.batchTimeout).
		Msg("Starting scan recorder")

	for i := 0; i < r.workerCount; i++ {
		r.wg.Add(1)
		go r.worker(i)
	}
}

// Enqueue hands a scan event to the workers. Events with no timestamp are
// stamped here so the recorded time is the request time, not the flush time.
func (r *Recorder) Enqueue(event model.ScanEvent) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	e := r.entryPool.Get()
	if e == nil {
		e = &entry{}
	}
	e.event = event

	select {
	case r.entries <- e:
	default:
		r.entryPool.Put(e)
		log.Warn().
			Str("shortId", event.ShortID).
			Msg("Scan buffer full, dropping event")
	}
}

func (r *Recorder) worker(id int) {
	defer r.wg.Done()

	batch := make([]model.ScanEvent, 0, r.batchSize)
	var timer *time.Timer
	var timerC <-chan time.Time

	flush := func() {
		if len(batch) == 0 {
			return
		}

		if err := r.store.RecordScans(context.Background(), batch); err != nil {
			log.Error().
				Err(err).
				Int("workerID", id).
				Int("events", len(batch)).
				Msg("Failed to record scan batch")
		}

		batch = batch[:0]
	}

	startOrResetTimer := func() {
		if timer == nil {
			timer = time.NewTimer(r.batchTimeout)
			timerC = timer.C
			return
		}
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(r.batchTimeout)
		timerC = timer.C
	}

	stopTimer := func() {
		if timer == nil {
			return
		}
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timerC = nil
	}

	for {
		select {
		case <-r.ctx.Done():
			flush()
			stopTimer()
			return

		case e, ok := <-r.entries:
			if !ok {
				flush()
				stopTimer()
				return
			}

			batchWasEmpty := len(batch) == 0
			batch = append(batch, e.event)
			r.entryPool.Put(e)

			if len(batch) >= r.batchSize {
				flush()
				stopTimer()
			} else if batchWasEmpty {
				startOrResetTimer()
			}

		case <-timerC:
			flush()
			stopTimer()
		}
	}
}

// Shutdown flushes pending events and stops the workers, forcing a stop
// after timeout.
func (r *Recorder) Shutdown(timeout time.Duration) error {
	var shutdownErr error

	r.shutdownOnce.Do(func() {
		log.Info().Msg("Shutting down scan recorder")

		close(r.entries)

		done := make(chan struct{})
		go func() {
			r.wg.Wait()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(timeout):
			log.Warn().Msg("Scan recorder shutdown timeout, forcing stop")
			r.cancel()
			<-done
			shutdownErr = context.DeadlineExceeded
		}
	})

	return shutdownErr
}
