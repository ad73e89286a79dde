package store

import "sync"

// BatchedStore buffers exports in memory before they are committed to
// SQLite in a single transaction. Exact duplicate rows are dropped on insert.
//
// Thread safety: the mutex protects the buffer and the duplicate index.
type BatchedStore struct {
	mu      sync.Mutex
	Exports []Export
	seen    map[Export]bool
}

// NewBatchedStore creates an empty BatchedStore.
func NewBatchedStore() *BatchedStore {
	return &BatchedStore{seen: make(map[Export]bool)}
}

// InsertExport buffers a row. It reports whether the row was new.
func (b *BatchedStore) InsertExport(e Export) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.seen[e] {
		return false
	}
	b.seen[e] = true
	b.Exports = append(b.Exports, e)
	return true
}

// Len returns the number of distinct buffered rows.
func (b *BatchedStore) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.Exports)
}
