package main

import (
	"fmt"
	"strconv"
	"time"
)

// NewStore creates an empty key-value store.
func NewStore() *Store {
	return &Store{entries: make(map[string]*Entry)}
}

// isExpired reports whether e carries a TTL that has passed now.
func isExpired(e *Entry, now int64) bool {
	return e.ExpiresAt != 0 && e.ExpiresAt <= now
}

// evictIfExpired removes key if its entry has expired. Caller must hold mu.
func (s *Store) evictIfExpired(key string, now int64) {
	if e, ok := s.entries[key]; ok && isExpired(e, now) {
		delete(s.entries, key)
	}
}

// Set stores value under key, replacing any existing value. If ttlSeconds
// is non-nil the key expires ttlSeconds from now; otherwise any existing
// expiry is left untouched — SET never clears a prior TTL on its own. This
// mirrors the source behavior exactly: re-SETting a key without EX can
// still expire it under the old deadline.
func (s *Store) Set(key string, value []byte, ttlSeconds *int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		e = &Entry{}
		s.entries[key] = e
	}
	e.Value = value
	if ttlSeconds != nil {
		e.ExpiresAt = time.Now().Unix() + *ttlSeconds
	}
}

// Get returns the value for key, evicting it first if its TTL has passed.
func (s *Store) Get(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().Unix()
	s.evictIfExpired(key, now)

	e, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	return e.Value, true
}

// Delete removes key unconditionally and reports whether it was present.
func (s *Store) Delete(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.entries[key]
	delete(s.entries, key)
	return ok
}

// Flush empties the store.
func (s *Store) Flush() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]*Entry)
}

// MGet resolves each key in order, preserving absents at their position.
func (s *Store) MGet(keys []string) [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().Unix()
	values := make([][]byte, len(keys))
	for i, key := range keys {
		s.evictIfExpired(key, now)
		if e, ok := s.entries[key]; ok {
			values[i] = e.Value
		}
	}
	return values
}

// MSet bulk-assigns alternating key/value pairs with no TTL. An unpaired
// trailing key is dropped.
func (s *Store) MSet(kvs [][]byte) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for i := 0; i+1 < len(kvs); i += 2 {
		key := string(kvs[i])
		e, ok := s.entries[key]
		if !ok {
			e = &Entry{}
			s.entries[key] = e
		}
		e.Value = kvs[i+1]
		count++
	}
	return count
}

// Incr parses the current value as a base-10 int64 (absent ⇒ "0"), adds
// one, and stores the decimal result. On a non-numeric current value the
// stored value is left unchanged and an error is returned.
func (s *Store) Incr(key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().Unix()
	s.evictIfExpired(key, now)

	e, ok := s.entries[key]
	current := "0"
	if ok {
		current = string(e.Value)
	}

	n, err := strconv.ParseInt(current, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("value is not an integer or out of range")
	}
	n++

	next := strconv.FormatInt(n, 10)
	if !ok {
		e = &Entry{}
		s.entries[key] = e
	}
	e.Value = []byte(next)
	return n, nil
}

// DBSize returns the raw count of stored keys, which may include entries
// that have expired but have not yet been touched by a read.
func (s *Store) DBSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Keys returns a snapshot of current keys in implementation-defined order.
func (s *Store) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	return keys
}

// sweepExpired removes every entry whose deadline has passed. It is an
// enrichment over strict lazy eviction — the distilled spec explicitly
// permits an implementation to run periodic sweeps, provided no test
// depends on their timing.
func (s *Store) sweepExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().Unix()
	removed := 0
	for k, e := range s.entries {
		if isExpired(e, now) {
			delete(s.entries, k)
			removed++
		}
	}
	return removed
}
