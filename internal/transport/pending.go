package transport

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"rektlink/internal/domain"
)

// signResult is the sealed wallet response handed from the redirect
// handler to the request that is waiting for it.
type signResult struct {
	nonce domain.Nonce
	data  []byte
	err   error
}

type pendingEntry struct {
	ch      chan signResult
	expires time.Time
	done    bool
}

// pendingTable correlates inbound redirects with the in-memory request
// that triggered them. Entries are keyed by request id and expire, so a
// late redirect for an abandoned request is a no-op rather than a
// delivery to the wrong caller. Completion is first-writer-wins: the
// cold-path redirect and the warm-path mailbox poller race for the same
// entry and the loser's write is dropped.
type pendingTable struct {
	mu      sync.Mutex
	entries map[string]*pendingEntry
}

func newPendingTable() *pendingTable {
	return &pendingTable{entries: make(map[string]*pendingEntry)}
}

// register creates an entry and returns its id and result channel.
func (t *pendingTable) register(ttl time.Duration) (string, <-chan signResult) {
	id := uuid.NewString()
	e := &pendingEntry{ch: make(chan signResult, 1), expires: time.Now().Add(ttl)}

	t.mu.Lock()
	t.entries[id] = e
	t.mu.Unlock()
	return id, e.ch
}

// complete delivers res to the entry for id. It reports false when the
// entry is absent, expired, or already completed.
func (t *pendingTable) complete(id string, res signResult) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[id]
	if !ok || e.done || time.Now().After(e.expires) {
		return false
	}
	e.done = true
	e.ch <- res
	delete(t.entries, id)
	return true
}

// cancel drops the entry for id without delivering anything.
func (t *pendingTable) cancel(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.entries, id)
}
