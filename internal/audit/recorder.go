// Package audit records leave mutations asynchronously. Entries are buffered
// in a channel and written to the database in batches so request handlers
// never wait on the audit table.
package audit

import (
	"context"
	"sync"
	"time"

	"github.com/kettlegourmet/hrm/internal/models"
	"go.uber.org/zap"
)

type Store interface {
	CreateBatch(ctx context.Context, entries []models.AuditEntry) error
}

type Config struct {
	BufferSize    int           // Default: 1000
	BatchSize     int           // Default: 100
	FlushInterval time.Duration // Default: 5 seconds
}

type Recorder struct {
	store   Store
	logger  *zap.Logger
	entries chan models.AuditEntry

	batchSize     int
	flushInterval time.Duration

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

func NewRecorder(store Store, logger *zap.Logger, cfg Config) *Recorder {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1000
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = 5 * time.Second
	}

	r := &Recorder{
		store:         store,
		logger:        logger,
		entries:       make(chan models.AuditEntry, cfg.BufferSize),
		batchSize:     cfg.BatchSize,
		flushInterval: cfg.FlushInterval,
		done:          make(chan struct{}),
	}

	go r.run()

	return r
}

// Record queues an entry without blocking. Entries are dropped when the
// buffer is full or the recorder is closed.
func (r *Recorder) Record(entry models.AuditEntry) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		r.logger.Warn("Audit recorder closed, dropping entry", zap.String("action", entry.Action))
		return
	}

	select {
	case r.entries <- entry:
	default:
		r.logger.Warn("Audit buffer full, dropping entry",
			zap.String("action", entry.Action),
			zap.String("subject", entry.Subject),
		)
	}
}

// Close stops accepting entries and waits until the buffer is written or ctx expires
func (r *Recorder) Close(ctx context.Context) error {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.entries)
	}
	r.mu.Unlock()

	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Recorder) run() {
	defer close(r.done)

	batch := make([]models.AuditEntry, 0, r.batchSize)
	ticker := time.NewTicker(r.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case entry, ok := <-r.entries:
			if !ok {
				r.flush(batch)
				return
			}

			batch = append(batch, entry)
			if len(batch) >= r.batchSize {
				r.flush(batch)
				batch = make([]models.AuditEntry, 0, r.batchSize)
			}
		case <-ticker.C:
			if len(batch) > 0 {
				r.flush(batch)
				batch = make([]models.AuditEntry, 0, r.batchSize)
			}
		}
	}
}

func (r *Recorder) flush(batch []models.AuditEntry) {
	if len(batch) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := r.store.CreateBatch(ctx, batch); err != nil {
		r.logger.Error("Failed to write audit entries", zap.Int("count", len(batch)), zap.Error(err))
	}
}
