package draftstore

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/buildlink/onboarding-api/internal/models"
	"github.com/buildlink/onboarding-api/pkg/metrics"
)

// MemoryStore is an in-process draft store. Used in tests and in offline
// development; drafts do not survive a process restart.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string][]byte)}
}

func memoryKey(sessionID string, key models.SectionKey) string {
	return sessionID + ":" + string(key)
}

func (m *MemoryStore) Load(_ context.Context, sessionID string, key models.SectionKey) (json.RawMessage, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	raw, ok := m.entries[memoryKey(sessionID, key)]
	if !ok {
		metrics.DraftStoreOps.WithLabelValues("load", "miss").Inc()
		return nil, false
	}

	metrics.DraftStoreOps.WithLabelValues("load", "hit").Inc()
	out := make([]byte, len(raw))
	copy(out, raw)
	return out, true
}

func (m *MemoryStore) Save(_ context.Context, sessionID string, key models.SectionKey, raw json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := make([]byte, len(raw))
	copy(stored, raw)
	m.entries[memoryKey(sessionID, key)] = stored
	metrics.DraftStoreOps.WithLabelValues("save", "success").Inc()
	return nil
}

func (m *MemoryStore) Clear(_ context.Context, sessionID string, key models.SectionKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, memoryKey(sessionID, key))
	metrics.DraftStoreOps.WithLabelValues("clear", "success").Inc()
	return nil
}

func (m *MemoryStore) ClearAll(ctx context.Context, sessionID string, keys []models.SectionKey) error {
	for _, key := range keys {
		if err := m.Clear(ctx, sessionID, key); err != nil {
			return err
		}
	}
	return nil
}
