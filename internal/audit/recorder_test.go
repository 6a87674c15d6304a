package audit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/kettlegourmet/hrm/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memoryStore struct {
	mu      sync.Mutex
	batches [][]models.AuditEntry
}

func (m *memoryStore) CreateBatch(ctx context.Context, entries []models.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := make([]models.AuditEntry, len(entries))
	copy(cp, entries)
	m.batches = append(m.batches, cp)
	return nil
}

func (m *memoryStore) total() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, b := range m.batches {
		n += len(b)
	}
	return n
}

func TestRecorder_FlushesFullBatches(t *testing.T) {
	store := &memoryStore{}
	rec := NewRecorder(store, zap.NewNop(), Config{BatchSize: 2, FlushInterval: time.Hour})

	rec.Record(models.AuditEntry{Action: models.AuditTierCreated, Subject: "Gold"})
	rec.Record(models.AuditEntry{Action: models.AuditTierUpdated, Subject: "Gold"})

	assert.Eventually(t, func() bool { return store.total() == 2 }, time.Second, 10*time.Millisecond)

	require.NoError(t, rec.Close(context.Background()))
}

func TestRecorder_FlushesOnTicker(t *testing.T) {
	store := &memoryStore{}
	rec := NewRecorder(store, zap.NewNop(), Config{BatchSize: 100, FlushInterval: 20 * time.Millisecond})
	defer rec.Close(context.Background())

	rec.Record(models.AuditEntry{Action: models.AuditTierDeleted, Subject: "Bronze"})

	assert.Eventually(t, func() bool { return store.total() == 1 }, time.Second, 10*time.Millisecond)
}

func TestRecorder_CloseDrainsBuffer(t *testing.T) {
	store := &memoryStore{}
	rec := NewRecorder(store, zap.NewNop(), Config{BatchSize: 100, FlushInterval: time.Hour})

	for i := 0; i < 5; i++ {
		rec.Record(models.AuditEntry{Action: models.AuditEmployeeQuotaUpdated})
	}

	require.NoError(t, rec.Close(context.Background()))
	assert.Equal(t, 5, store.total())

	// recording after close is a no-op rather than a panic
	rec.Record(models.AuditEntry{Action: models.AuditTierCreated})
	assert.Equal(t, 5, store.total())

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.False(t, store.batches[0][0].Timestamp.IsZero())
}
