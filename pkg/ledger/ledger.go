// Package ledger collects per-post failures during a run and reports them
// when the run ends.
package ledger

import (
	"sort"
	"sync"

	"threadgrab/pkg/tweetid"
)

// Entry is a single failed post
type Entry struct {
	ID     string
	Reason string
}

// Ledger maps post ids to the reason they failed. A later record for the
// same id replaces the earlier one. Safe for concurrent use.
type Ledger struct {
	mu      sync.Mutex
	reasons map[string]string
}

// New creates an empty ledger
func New() *Ledger {
	return &Ledger{reasons: make(map[string]string)}
}

// Record stores reason for id
func (l *Ledger) Record(id, reason string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.reasons == nil {
		l.reasons = make(map[string]string)
	}
	l.reasons[id] = reason
}

// Len returns the number of failed posts
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.reasons)
}

// Reason returns the recorded reason for id
func (l *Ledger) Reason(id string) (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	reason, ok := l.reasons[id]
	return reason, ok
}

// Entries returns a snapshot ordered by numeric id
func (l *Ledger) Entries() []Entry {
	l.mu.Lock()
	entries := make([]Entry, 0, len(l.reasons))
	for id, reason := range l.reasons {
		entries = append(entries, Entry{ID: id, Reason: reason})
	}
	l.mu.Unlock()

	sort.Slice(entries, func(i, j int) bool {
		return tweetid.Compare(entries[i].ID, entries[j].ID) < 0
	})
	return entries
}
