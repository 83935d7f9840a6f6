package store

import (
	"context"

	"tracker/internal/core"
)

const (
	// OrderByID lists entries oldest first.
	OrderByID Order = iota
	// OrderForDisplay lists active entries before completed ones, by number, newest first on ties.
	OrderForDisplay
	// OrderByNumber lists entries by task number, oldest first on ties.
	OrderByNumber
)

type (
	Order int

	// Filter selects entries. Zero-valued fields match anything.
	Filter struct {
		ID        int64
		ExcludeID int64
		Category  core.Category
		Subcat    string
		Owner     core.Owner
		Status    *core.Status
	}

	// Fields is a partial update. Nil fields are left unchanged.
	Fields struct {
		Category   *core.Category
		Subcat     *string
		Content    *string
		Owner      *core.Owner
		Status     *core.Status
		TaskNumber *int
	}

	// Store is the record store the tracker core runs on.
	Store interface {
		Insert(ctx context.Context, e core.Entry) (id int64, err error)
		// Update returns core.ErrNotFound when no entry has the given id.
		Update(ctx context.Context, id int64, f Fields) error
		Delete(ctx context.Context, f Filter) (deleted int64, err error)
		Query(ctx context.Context, f Filter, o Order) ([]core.Entry, error)
		// WithinTx runs fn against a store whose writes commit together.
		WithinTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
	}
)

// InPartition matches entries of p in any status.
func InPartition(p core.Partition) Filter {
	return Filter{Category: p.Category, Subcat: p.Subcat}
}

// ActiveIn matches the active entries of p.
func ActiveIn(p core.Partition) Filter {
	f := InPartition(p)
	f.Status = StatusPtr(core.Active)
	return f
}

// ByID matches a single entry.
func ByID(id int64) Filter {
	return Filter{ID: id}
}

func StatusPtr(s core.Status) *core.Status { return &s }

func IntPtr(n int) *int { return &n }

func StringPtr(s string) *string { return &s }

// Match reports whether e satisfies f. Memory-backed stores use it directly.
func (f Filter) Match(e core.Entry) bool {
	if f.ID != 0 && e.ID != f.ID {
		return false
	}
	if f.ExcludeID != 0 && e.ID == f.ExcludeID {
		return false
	}
	if f.Category != "" && e.Category != f.Category {
		return false
	}
	if f.Subcat != "" && e.Subcat != f.Subcat {
		return false
	}
	if f.Owner != "" && e.Owner != f.Owner {
		return false
	}
	if f.Status != nil && e.Status != *f.Status {
		return false
	}
	return true
}

// Apply returns e with the non-nil fields of f applied.
func (f Fields) Apply(e core.Entry) core.Entry {
	if f.Category != nil {
		e.Category = *f.Category
	}
	if f.Subcat != nil {
		e.Subcat = *f.Subcat
	}
	if f.Content != nil {
		e.Content = *f.Content
	}
	if f.Owner != nil {
		e.Owner = *f.Owner
	}
	if f.Status != nil {
		e.Status = *f.Status
	}
	if f.TaskNumber != nil {
		e.TaskNumber = *f.TaskNumber
	}
	return e
}

// Get loads one entry or returns core.ErrNotFound.
func Get(ctx context.Context, s Store, id int64) (core.Entry, error) {
	entries, err := s.Query(ctx, ByID(id), OrderByID)
	if err != nil {
		return core.Entry{}, err
	}
	if len(entries) == 0 {
		return core.Entry{}, core.ErrNotFound
	}
	return entries[0], nil
}
