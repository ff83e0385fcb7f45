// Package mailbox is a single-slot durable handoff for a wallet response
// produced while the requesting app was suspended. The inbound redirect
// handler writes the slot; a polling consumer drains it with
// at-most-once delivery.
package mailbox

import (
	"context"
	"sync"
	"time"

	"rektlink/internal/domain"
)

// Polling defaults: 30 attempts a second apart, matching the signing
// round-trip budget.
const (
	DefaultAttempts = 30
	DefaultInterval = time.Second
)

// Mailbox wraps one named slot of a durable KV store.
type Mailbox struct {
	kv   domain.KVStore
	slot string
	mu   sync.Mutex
}

// New returns a Mailbox over the named slot of kv.
func New(kv domain.KVStore, slot string) *Mailbox {
	return &Mailbox{kv: kv, slot: slot}
}

// Put writes value into the slot, replacing any previous occupant.
func (m *Mailbox) Put(value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.kv.Set(m.slot, value)
}

// Take reads and deletes the slot. The delete happens before the value
// is returned, so a racing consumer or a duplicate redirect observes an
// empty slot: delivery is at most once.
func (m *Mailbox) Take() (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok, err := m.kv.Get(m.slot)
	if err != nil || !ok {
		return "", false, err
	}
	if err := m.kv.Delete(m.slot); err != nil {
		return "", false, err
	}
	return v, true, nil
}

// Poll takes the slot, retrying up to attempts times with interval
// between tries. It returns domain.ErrTimeout once attempts are
// exhausted, and ctx.Err() as soon as the caller is torn down, so an
// orphaned poller never fires after its owner is gone.
func (m *Mailbox) Poll(ctx context.Context, attempts int, interval time.Duration) (string, error) {
	if attempts <= 0 {
		attempts = DefaultAttempts
	}
	if interval <= 0 {
		interval = DefaultInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for i := 0; i < attempts; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		v, ok, err := m.Take()
		if err != nil {
			return "", err
		}
		if ok {
			return v, nil
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
		}
	}
	return "", domain.ErrTimeout
}
