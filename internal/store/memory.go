package store

import (
	"context"
	"sort"
	"sync"

	"github.com/nbcassistant/backend/internal/model/conversation"
)

// Memory keeps the conversation log in process memory. Suitable for
// tests and zero-config runs; nothing survives a restart.
type Memory struct {
	mu      sync.RWMutex
	records map[string][]conversation.Record
}

func NewMemory() *Memory {
	return &Memory{records: make(map[string][]conversation.Record)}
}

func (m *Memory) Append(_ context.Context, rec conversation.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[rec.UserID] = append(m.records[rec.UserID], rec)
	return nil
}

func (m *Memory) ListByUser(_ context.Context, userID string) ([]conversation.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	records := m.records[userID]
	copied := make([]conversation.Record, len(records))
	copy(copied, records)

	// Stable sort keeps append order for equal timestamps.
	sort.SliceStable(copied, func(i, j int) bool {
		return copied[i].CreatedAt.Before(copied[j].CreatedAt)
	})
	return copied, nil
}
