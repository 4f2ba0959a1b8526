package store

import (
	"context"
	"sync"
)

// Slot is the single persisted storage cell holding the serialized
// collection. Persistence is an explicit dependency of the store, not
// an ambient global.
type Slot interface {
	// Read returns the slot's current contents, nil when empty.
	Read(ctx context.Context) ([]byte, error)

	// Write replaces the slot's contents.
	Write(ctx context.Context, data []byte) error
}

// MemorySlot is an in-process Slot used in tests.
type MemorySlot struct {
	mu   sync.Mutex
	data []byte
}

func NewMemorySlot() *MemorySlot {
	return &MemorySlot{}
}

func (s *MemorySlot) Read(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return nil, nil
	}
	out := make([]byte, len(s.data))
	copy(out, s.data)
	return out, nil
}

func (s *MemorySlot) Write(ctx context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = make([]byte, len(data))
	copy(s.data, data)
	return nil
}
