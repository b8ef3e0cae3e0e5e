package storage

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryBackend implements Backend with a map. Intended for tests and
// throwaway sessions; nothing survives the process.
type MemoryBackend struct {
	mu     sync.RWMutex
	slots  map[string]memorySlot
	closed bool
}

type memorySlot struct {
	value     string
	writes    int64
	updatedAt time.Time
}

// NewMemoryBackend creates an empty MemoryBackend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{slots: make(map[string]memorySlot)}
}

func (m *MemoryBackend) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return "", false, ErrUnavailable
	}
	s, ok := m.slots[key]
	return s.value, ok, nil
}

func (m *MemoryBackend) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrUnavailable
	}
	s := m.slots[key]
	s.value = value
	s.writes++
	s.updatedAt = time.Now().UTC()
	m.slots[key] = s
	return nil
}

// Slots lists stored keys in lexical order.
func (m *MemoryBackend) Slots(_ context.Context) ([]Slot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	slots := make([]Slot, 0, len(m.slots))
	for k, s := range m.slots {
		slots = append(slots, Slot{
			Key:       k,
			ByteSize:  int64(len(s.value)),
			Writes:    s.writes,
			UpdatedAt: s.updatedAt,
		})
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i].Key < slots[j].Key })
	return slots, nil
}

// Close marks the backend unavailable. Subsequent calls fail with ErrUnavailable.
func (m *MemoryBackend) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
