package services

import (
	"context"
	"fmt"

	"tracker/internal/core"
	applog "tracker/internal/log"
	"tracker/internal/store"
)

// Sequencer keeps the task numbers of active entries within a partition.
// It holds no state; every call receives the store it operates on.
type Sequencer struct {
	logger *applog.Logger
}

func NewSequencer(logger *applog.Logger) *Sequencer {
	if logger == nil {
		logger = applog.Discard()
	}
	return &Sequencer{logger: logger.WithComponent(applog.ComponentSequencer)}
}

// NextNumber returns one past the highest number held by an active entry of p, or 1.
func (s *Sequencer) NextNumber(ctx context.Context, st store.Store, p core.Partition) (int, error) {
	active, err := st.Query(ctx, store.ActiveIn(p), store.OrderByID)
	if err != nil {
		return 0, fmt.Errorf("query active entries of %s: %w", p, err)
	}

	highest := 0
	for _, e := range active {
		if e.TaskNumber > highest {
			highest = e.TaskNumber
		}
	}
	return highest + 1, nil
}

// Compact renumbers the active entries of p to 1..N, oldest first.
// Completed entries keep their numbers. It returns N.
func (s *Sequencer) Compact(ctx context.Context, st store.Store, p core.Partition) (int, error) {
	var count int
	err := st.WithinTx(ctx, func(ctx context.Context, tx store.Store) error {
		active, err := tx.Query(ctx, store.ActiveIn(p), store.OrderByID)
		if err != nil {
			return fmt.Errorf("query active entries of %s: %w", p, err)
		}

		for i, e := range active {
			want := i + 1
			if e.TaskNumber == want {
				continue
			}
			if err := tx.Update(ctx, e.ID, store.Fields{TaskNumber: store.IntPtr(want)}); err != nil {
				return fmt.Errorf("renumber entry %d: %w", e.ID, err)
			}
		}
		count = len(active)
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.DebugContext(ctx, "Partition compacted",
		applog.FieldCategory, p.Category,
		applog.FieldSubcat, p.Subcat,
		applog.FieldCount, count)
	return count, nil
}

// Renumber moves the active entry id to newNumber and shifts the active
// entries between its old and new position by one to keep numbers unique.
// It returns the entry's previous number.
func (s *Sequencer) Renumber(ctx context.Context, st store.Store, id int64, newNumber int) (int, error) {
	if newNumber < 1 {
		return 0, core.ErrInvalidNumber
	}

	var oldNumber int
	err := st.WithinTx(ctx, func(ctx context.Context, tx store.Store) error {
		target, err := store.Get(ctx, tx, id)
		if err != nil {
			return err
		}
		if !target.IsActive() {
			return core.ErrNotFound
		}
		oldNumber = target.TaskNumber
		if oldNumber == newNumber {
			return nil
		}

		// Every shift is decided from this snapshot before the first write
		f := store.ActiveIn(target.Partition())
		f.ExcludeID = id
		others, err := tx.Query(ctx, f, store.OrderByID)
		if err != nil {
			return fmt.Errorf("query partition of entry %d: %w", id, err)
		}

		for _, e := range shiftWindow(others, oldNumber, newNumber) {
			if err := tx.Update(ctx, e.ID, store.Fields{TaskNumber: store.IntPtr(e.TaskNumber)}); err != nil {
				return fmt.Errorf("shift entry %d: %w", e.ID, err)
			}
		}

		if err := tx.Update(ctx, id, store.Fields{TaskNumber: store.IntPtr(newNumber)}); err != nil {
			return fmt.Errorf("renumber entry %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.DebugContext(ctx, "Entry renumbered",
		applog.FieldEntryID, id,
		applog.FieldOldNumber, oldNumber,
		applog.FieldTaskNumber, newNumber)
	return oldNumber, nil
}

// shiftWindow returns the entries whose numbers change when an element moves
// from position from to position to, carrying their new numbers.
func shiftWindow(others []core.Entry, from, to int) []core.Entry {
	var changed []core.Entry
	for _, e := range others {
		n := e.TaskNumber
		switch {
		case to < from && n >= to && n < from:
			e.TaskNumber = n + 1
		case to > from && n > from && n <= to:
			e.TaskNumber = n - 1
		default:
			continue
		}
		changed = append(changed, e)
	}
	return changed
}
