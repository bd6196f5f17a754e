package server

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// AuditEntry is one recorded optimize call, pushed to dashboard clients
// over Server-Sent Events and retained in a bounded ring, grounded on the
// teacher's server/audit.go.
type AuditEntry struct {
	ID        string                 `json:"id"`
	Timestamp string                 `json:"timestamp"`
	Event     string                 `json:"event"`
	Severity  string                 `json:"severity"`
	Details   map[string]interface{} `json:"details"`
}

type auditState struct {
	mu          sync.RWMutex
	entries     []AuditEntry
	capacity    int
	subscribers map[chan AuditEntry]bool
}

func newAuditState(capacity int) *auditState {
	return &auditState{
		capacity:    capacity,
		entries:     make([]AuditEntry, 0, capacity),
		subscribers: make(map[chan AuditEntry]bool),
	}
}

func (a *auditState) append(entry AuditEntry) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp == "" {
		entry.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	if len(a.entries) == a.capacity {
		copy(a.entries[0:], a.entries[1:])
		a.entries[len(a.entries)-1] = entry
	} else {
		a.entries = append(a.entries, entry)
	}
	for ch := range a.subscribers {
		select {
		case ch <- entry:
		default:
		}
	}
}

func (a *auditState) subscribe() chan AuditEntry {
	ch := make(chan AuditEntry, 256)
	a.mu.Lock()
	a.subscribers[ch] = true
	a.mu.Unlock()
	return ch
}

func (a *auditState) unsubscribe(ch chan AuditEntry) {
	a.mu.Lock()
	delete(a.subscribers, ch)
	a.mu.Unlock()
	close(ch)
}

// recent returns up to limit most recent entries, newest last.
func (a *auditState) recent(limit int) []AuditEntry {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if limit <= 0 || limit > len(a.entries) {
		limit = len(a.entries)
	}
	out := make([]AuditEntry, limit)
	copy(out, a.entries[len(a.entries)-limit:])
	return out
}
