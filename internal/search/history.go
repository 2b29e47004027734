package search

import (
	"sync"
	"sync/atomic"
)

// HistorySize is the number of distinct queries kept in a History.
const HistorySize = 5

// History is the most-recent-first list of distinct queries. It is safe
// for concurrent use.
type History struct {
	mu       sync.Mutex
	entries  []string
	capacity int
}

// NewHistory creates a History holding at most capacity entries. A
// capacity <= 0 means HistorySize.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = HistorySize
	}
	return &History{capacity: capacity}
}

// Add moves query to the front, removing any earlier occurrence, and
// returns the resulting entries.
func (h *History) Add(query string) []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	if query == "" {
		return h.snapshot()
	}

	next := make([]string, 0, h.capacity)
	next = append(next, query)
	for _, q := range h.entries {
		if q == query {
			continue
		}
		if len(next) == h.capacity {
			break
		}
		next = append(next, q)
	}
	h.entries = next
	return h.snapshot()
}

// Entries returns a copy of the history, most recent first.
func (h *History) Entries() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.snapshot()
}

// Restore replaces the history with entries, applying the same dedup and
// capacity rules as Add. entries are most recent first.
func (h *History) Restore(entries []string) {
	h.mu.Lock()
	h.entries = nil
	h.mu.Unlock()

	for i := len(entries) - 1; i >= 0; i-- {
		h.Add(entries[i])
	}
}

// Clear empties the history.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = nil
}

func (h *History) snapshot() []string {
	return append([]string(nil), h.entries...)
}

// Token identifies one issued resolution.
type Token uint64

// Sequencer issues monotonically increasing tokens so that a caller can
// tell whether a finished resolution has been superseded.
type Sequencer struct {
	latest atomic.Uint64
}

// Next issues a new token, superseding every earlier one.
func (s *Sequencer) Next() Token {
	return Token(s.latest.Add(1))
}

// IsLatest reports whether t is the most recently issued token.
func (s *Sequencer) IsLatest(t Token) bool {
	return uint64(t) == s.latest.Load()
}
