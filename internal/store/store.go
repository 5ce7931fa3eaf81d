package store

import (
	"bytes"
	"sort"
	"sync"
	"time"
)

// Stats holds store metrics.
type Stats struct {
	// Current state
	Size      int64 // Current size in bytes
	ItemCount int64 // Number of clips held

	// Access metrics
	Hits    int64   // Number of lookups that found a clip
	Misses  int64   // Number of lookups that found nothing
	HitRate float64 // hits / (hits + misses)

	LastAccess time.Time // Last lookup time
}

// Metadata describes a stored clip.
type Metadata struct {
	Key       string    // Clip name
	Size      int64     // Size in bytes
	Timestamp time.Time // When the clip was stored
	Hits      int64     // Number of times looked up
}

// Store maps clip names to their raw payloads. Entries are never evicted;
// they live until overwritten, deleted or cleared.
type Store struct {
	items map[string]*entry
	size  int64

	mu    sync.RWMutex
	stats Stats
}

type entry struct {
	value     []byte
	timestamp time.Time
	hits      int64
}

// New creates an empty store.
func New() *Store {
	return &Store{items: make(map[string]*entry)}
}

// Get returns the payload stored under key. The returned slice must not be
// modified.
func (s *Store) Get(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stats.LastAccess = time.Now()

	e, ok := s.items[key]
	if !ok {
		s.stats.Misses++
		return nil, false
	}

	e.hits++
	s.stats.Hits++
	return e.value, true
}

// Put stores a copy of value under key, replacing any previous payload.
func (s *Store) Put(key string, value []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.items[key]; ok {
		s.size -= int64(len(old.value))
	}

	s.items[key] = &entry{
		value:     bytes.Clone(value),
		timestamp: time.Now(),
	}
	s.size += int64(len(value))
}

// Clear removes every entry.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = make(map[string]*entry)
	s.size = 0
}

// Contains reports whether key is stored without counting a lookup.
func (s *Store) Contains(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.items[key]
	return ok
}

// Len returns the number of stored clips.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.items)
}

// Size returns the total payload size in bytes.
func (s *Store) Size() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.size
}

// Keys returns the stored clip names in sorted order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.items))
	for k := range s.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Metadata returns metadata for key.
func (s *Store) Metadata(key string) (Metadata, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.items[key]
	if !ok {
		return Metadata{}, false
	}
	return Metadata{
		Key:       key,
		Size:      int64(len(e.value)),
		Timestamp: e.timestamp,
		Hits:      e.hits,
	}, true
}

// Stats returns store statistics.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := s.stats
	stats.Size = s.size
	stats.ItemCount = int64(len(s.items))

	if stats.Hits+stats.Misses > 0 {
		stats.HitRate = float64(stats.Hits) / float64(stats.Hits+stats.Misses)
	}

	return stats
}
