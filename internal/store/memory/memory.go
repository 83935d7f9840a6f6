package memory

import (
	"context"
	"sort"
	"sync"

	"tracker/internal/core"
	"tracker/internal/store"
)

// Store keeps entries in process memory. Transactions are serialized and
// roll back to a snapshot when fn fails.
type Store struct {
	txMu   sync.Mutex
	mu     sync.Mutex
	nextID int64
	items  map[int64]core.Entry
}

func New() *Store {
	return &Store{items: map[int64]core.Entry{}}
}

// NewWithEntries seeds the store. IDs of seeded entries are kept as given.
func NewWithEntries(entries ...core.Entry) *Store {
	s := New()
	for _, e := range entries {
		if e.ID == 0 {
			s.nextID++
			e.ID = s.nextID
		} else if e.ID > s.nextID {
			s.nextID = e.ID
		}
		s.items[e.ID] = e
	}
	return s
}

// Insert stores e under a fresh id.
func (s *Store) Insert(_ context.Context, e core.Entry) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	e.ID = s.nextID
	s.items[e.ID] = e
	return e.ID, nil
}

func (s *Store) Update(_ context.Context, id int64, f store.Fields) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.items[id]
	if !ok {
		return core.ErrNotFound
	}
	s.items[id] = f.Apply(e)
	return nil
}

func (s *Store) Delete(_ context.Context, f store.Filter) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, e := range s.items {
		if f.Match(e) {
			delete(s.items, id)
			n++
		}
	}
	return n, nil
}

func (s *Store) Query(_ context.Context, f store.Filter, o store.Order) ([]core.Entry, error) {
	s.mu.Lock()
	out := make([]core.Entry, 0, len(s.items))
	for _, e := range s.items {
		if f.Match(e) {
			out = append(out, e)
		}
	}
	s.mu.Unlock()

	sort.Slice(out, less(out, o))
	return out, nil
}

// WithinTx runs fn with exclusive access to the store.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx store.Store) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := make(map[int64]core.Entry, len(s.items))
	for id, e := range s.items {
		snapshot[id] = e
	}
	nextID := s.nextID
	s.mu.Unlock()

	if err := fn(ctx, txStore{s}); err != nil {
		s.mu.Lock()
		s.items = snapshot
		s.nextID = nextID
		s.mu.Unlock()
		return err
	}
	return nil
}

// txStore is handed to WithinTx callbacks. Nested calls join the running transaction.
type txStore struct {
	*Store
}

func (t txStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx store.Store) error) error {
	return fn(ctx, t)
}

// Len returns the number of stored entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func less(out []core.Entry, o store.Order) func(i, j int) bool {
	switch o {
	case store.OrderForDisplay:
		return func(i, j int) bool {
			a, b := out[i], out[j]
			if a.Status != b.Status {
				return a.Status < b.Status
			}
			if a.TaskNumber != b.TaskNumber {
				return a.TaskNumber < b.TaskNumber
			}
			return a.ID > b.ID
		}
	case store.OrderByNumber:
		return func(i, j int) bool {
			if out[i].TaskNumber != out[j].TaskNumber {
				return out[i].TaskNumber < out[j].TaskNumber
			}
			return out[i].ID < out[j].ID
		}
	default:
		return func(i, j int) bool { return out[i].ID < out[j].ID }
	}
}
