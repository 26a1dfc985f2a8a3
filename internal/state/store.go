// Package state holds the collections a client has loaded, shared by every
// view of the process.
package state

import (
	"maps"
	"slices"
	"sync"

	"github.com/MrJamesThe3rd/flora/internal/storage"
)

// Partial is a subset of the collections, as produced by one page load.
type Partial map[storage.Collection][]storage.Record

// Store is the process-wide container for loaded collections. It starts
// empty and only changes through Hydrate.
type Store struct {
	mu      sync.RWMutex
	data    storage.AppData
	version uint64
}

func NewStore() *Store {
	return &Store{data: storage.AppData{}}
}

// Hydrate replaces every collection present in p in a single update.
// Collections absent from p keep their current contents.
func (s *Store) Hydrate(p Partial) {
	if len(p) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for c, records := range p {
		s.data[c] = cloneRecords(records)
	}

	s.version++
}

// Snapshot returns a copy of everything hydrated so far.
func (s *Store) Snapshot() storage.AppData {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(storage.AppData, len(s.data))
	for c, records := range s.data {
		out[c] = cloneRecords(records)
	}

	return out
}

// Collection returns a copy of one collection, or nil if it was never hydrated.
func (s *Store) Collection(c storage.Collection) []storage.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records, ok := s.data[c]
	if !ok {
		return nil
	}

	return cloneRecords(records)
}

// Version counts the hydrations applied so far.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.version
}

// Collections lists the hydrated collection names in layout order.
func (s *Store) Collections() []storage.Collection {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := slices.Collect(maps.Keys(s.data))
	slices.SortFunc(names, func(a, b storage.Collection) int {
		return slices.Index(storage.Collections, a) - slices.Index(storage.Collections, b)
	})

	return names
}

func cloneRecords(records []storage.Record) []storage.Record {
	out := make([]storage.Record, len(records))
	for i, r := range records {
		out[i] = r.Clone()
	}

	return out
}
