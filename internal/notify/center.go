// Package notify holds the transient user-facing messages the page
// renders after each add/remove/subtitle action. Notices expire on
// their own; the store's API stays synchronous and free of timers.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// DefaultTTL matches the page's auto-dismiss delay.
const DefaultTTL = 5 * time.Second

// Notice is one transient message.
type Notice struct {
	ID        string    `json:"id"`
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Center is the in-memory notice queue.
type Center struct {
	mu      sync.Mutex
	notices []*Notice
	ttl     time.Duration
	now     func() time.Time
}

// NewCenter creates a Center whose notices expire after ttl.
func NewCenter(ttl time.Duration) *Center {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Center{
		ttl: ttl,
		now: time.Now,
	}
}

// Push appends a notice and returns it.
func (c *Center) Push(level Level, message string) *Notice {
	now := c.now()
	n := &Notice{
		ID:        uuid.NewString(),
		Level:     level,
		Message:   message,
		CreatedAt: now,
		ExpiresAt: now.Add(c.ttl),
	}

	c.mu.Lock()
	c.notices = append(c.notices, n)
	c.mu.Unlock()

	return n
}

// Active returns the unexpired notices in push order.
func (c *Center) Active() []*Notice {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	active := make([]*Notice, 0, len(c.notices))
	for _, n := range c.notices {
		if n.ExpiresAt.After(now) {
			active = append(active, n)
		}
	}
	return active
}

// Sweep drops expired notices and returns how many were removed.
func (c *Center) Sweep() int {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	kept := c.notices[:0]
	removed := 0
	for _, n := range c.notices {
		if n.ExpiresAt.After(now) {
			kept = append(kept, n)
		} else {
			removed++
		}
	}
	c.notices = kept
	return removed
}
