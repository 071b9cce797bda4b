package dataset

import (
	"path/filepath"
	"sync"
	"sync/atomic"
)

// LoaderFunc reads a Dataset from a source sheet. Load is the default.
type LoaderFunc func(source, sheet string) (*Dataset, error)

type storeKey struct {
	source string
	sheet  string
}

type storeEntry struct {
	once sync.Once
	ds   *Dataset
	err  error
}

// Store caches datasets by (source, sheet). The first Get for a key performs
// the read while concurrent callers for the same key wait on it; every later
// caller receives the same *Dataset (or the same error) without touching the
// source again.
type Store struct {
	load    LoaderFunc
	entries sync.Map // storeKey -> *storeEntry
	reads   atomic.Int64
}

// NewStore returns an empty Store. A nil loader means Load.
func NewStore(load LoaderFunc) *Store {
	if load == nil {
		load = Load
	}
	return &Store{load: load}
}

// Get returns the cached Dataset for source and sheet, loading it once.
func (s *Store) Get(source, sheet string) (*Dataset, error) {
	k := storeKey{source: filepath.Clean(source), sheet: sheet}
	v, ok := s.entries.Load(k)
	if !ok {
		v, _ = s.entries.LoadOrStore(k, &storeEntry{})
	}
	e := v.(*storeEntry)
	e.once.Do(func() {
		s.reads.Add(1)
		e.ds, e.err = s.load(source, sheet)
	})
	return e.ds, e.err
}

// Reads reports how many times the underlying loader ran.
func (s *Store) Reads() int64 { return s.reads.Load() }

var (
	defaultOnce  sync.Once
	defaultStore *Store
)

// Default returns the process-wide Store backed by Load.
func Default() *Store {
	defaultOnce.Do(func() {
		defaultStore = NewStore(Load)
	})
	return defaultStore
}
