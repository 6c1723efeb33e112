// Package store persists masking dictionaries.
//
// Two shapes are provided:
//
//   - the mapping artifact (mapping.go) — a JSON file written next to each
//     masked output; it is the handoff that lets a later process or session
//     unmask the document.
//   - Store — an optional cross-run store that keeps placeholders stable
//     for recurring values across documents. Two implementations:
//     memoryStore for tests, boltStore (embedded bbolt database) for real
//     use. Seeding a fresh dictionary from the store and saving it back
//     after masking is the coordinating merge step the engine itself
//     deliberately does not perform.
package store

import (
	"fmt"
	"strconv"

	bolt "go.etcd.io/bbolt"

	"ukr-pii-masker/internal/masker"
)

// Store loads and saves whole dictionaries across runs.
type Store interface {
	// Load rebuilds a dictionary from the persisted state. An empty
	// store yields an empty dictionary, not an error.
	Load() (*masker.Dictionary, error)

	// Save upserts every entry and counter of d into the store.
	Save(d *masker.Dictionary) error

	// Close releases any resources held by the store.
	Close() error
}

// --- memoryStore ----------------------------------------------------------

// memoryStore keeps the persisted state in process memory. Used in tests
// and as a fallback when no database path is configured.
type memoryStore struct {
	entries   map[masker.Category]map[string]string
	spellings map[string]string
	counters  map[masker.Category]int
}

// NewMemory returns an empty in-memory Store.
func NewMemory() Store {
	return &memoryStore{
		entries:   make(map[masker.Category]map[string]string),
		spellings: make(map[string]string),
		counters:  make(map[masker.Category]int),
	}
}

func (s *memoryStore) Load() (*masker.Dictionary, error) {
	return masker.Restore(s.entries, s.spellings, s.counters)
}

func (s *memoryStore) Save(d *masker.Dictionary) error {
	for cat, m := range d.Entries() {
		if s.entries[cat] == nil {
			s.entries[cat] = make(map[string]string, len(m))
		}
		for original, placeholder := range m {
			s.entries[cat][original] = placeholder
		}
	}
	for placeholder, spelling := range d.Spellings() {
		if _, ok := s.spellings[placeholder]; !ok { // first-seen spelling wins
			s.spellings[placeholder] = spelling
		}
	}
	for cat, n := range d.Counters() {
		if n > s.counters[cat] {
			s.counters[cat] = n
		}
	}
	return nil
}

func (s *memoryStore) Close() error { return nil }

// --- boltStore ------------------------------------------------------------

const (
	mappingsBucket  = "mappings"
	spellingsBucket = "spellings"
	countersBucket  = "counters"
)

// boltStore is a Store backed by an embedded bbolt database, so recurring
// values keep their placeholders across process restarts. Mapping keys are
// "category\x00original" in one bucket; first-seen spellings are keyed by
// placeholder in a second bucket; counters live in a third.
type boltStore struct {
	db *bolt.DB
}

// Open opens (or creates) the bbolt database at path and bootstraps the
// buckets.
func Open(path string) (Store, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("open store %q: %w", path, err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{mappingsBucket, spellingsBucket, countersBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		db.Close() //nolint:errcheck // best-effort close on init failure
		return nil, fmt.Errorf("create store buckets: %w", err)
	}
	return &boltStore{db: db}, nil
}

func storeKey(cat masker.Category, original string) []byte {
	return append(append([]byte(cat), 0), original...)
}

func splitStoreKey(k []byte) (masker.Category, string, bool) {
	for i, b := range k {
		if b == 0 {
			return masker.Category(k[:i]), string(k[i+1:]), true
		}
	}
	return "", "", false
}

func (s *boltStore) Load() (*masker.Dictionary, error) {
	entries := make(map[masker.Category]map[string]string)
	spellings := make(map[string]string)
	counters := make(map[masker.Category]int)

	err := s.db.View(func(tx *bolt.Tx) error {
		if b := tx.Bucket([]byte(mappingsBucket)); b != nil {
			if err := b.ForEach(func(k, v []byte) error {
				cat, original, ok := splitStoreKey(k)
				if !ok {
					return nil // unrecognized key, skip
				}
				if entries[cat] == nil {
					entries[cat] = make(map[string]string)
				}
				entries[cat][original] = string(v)
				return nil
			}); err != nil {
				return err
			}
		}
		if b := tx.Bucket([]byte(spellingsBucket)); b != nil {
			if err := b.ForEach(func(k, v []byte) error {
				spellings[string(k)] = string(v)
				return nil
			}); err != nil {
				return err
			}
		}
		if b := tx.Bucket([]byte(countersBucket)); b != nil {
			return b.ForEach(func(k, v []byte) error {
				if n, err := strconv.Atoi(string(v)); err == nil {
					counters[masker.Category(k)] = n
				}
				return nil
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load store: %w", err)
	}
	return masker.Restore(entries, spellings, counters)
}

func (s *boltStore) Save(d *masker.Dictionary) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		mb := tx.Bucket([]byte(mappingsBucket))
		sb := tx.Bucket([]byte(spellingsBucket))
		cb := tx.Bucket([]byte(countersBucket))
		if mb == nil || sb == nil || cb == nil {
			return fmt.Errorf("store buckets missing")
		}
		for cat, m := range d.Entries() {
			for original, placeholder := range m {
				if err := mb.Put(storeKey(cat, original), []byte(placeholder)); err != nil {
					return err
				}
			}
		}
		for placeholder, spelling := range d.Spellings() {
			if sb.Get([]byte(placeholder)) != nil {
				continue // first-seen spelling wins
			}
			if err := sb.Put([]byte(placeholder), []byte(spelling)); err != nil {
				return err
			}
		}
		for cat, n := range d.Counters() {
			prev, _ := strconv.Atoi(string(cb.Get([]byte(cat))))
			if n > prev {
				if err := cb.Put([]byte(cat), []byte(strconv.Itoa(n))); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save store: %w", err)
	}
	return nil
}

func (s *boltStore) Close() error { return s.db.Close() }
