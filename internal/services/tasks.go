package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"tracker/internal/core"
	applog "tracker/internal/log"
	"tracker/internal/store"
)

// RefreshNotifier tells views of the given partitions to redraw.
type RefreshNotifier interface {
	PublishRefresh(ctx context.Context, partitions ...core.Partition) error
}

// NewEntry is the input of TaskService.Add.
type NewEntry struct {
	Partition core.Partition
	Content   string
	Owner     core.Owner
}

// TaskService runs every entry mutation. Numbering changes go through the
// Sequencer inside a single store transaction.
type TaskService struct {
	store        store.Store
	sequencer    *Sequencer
	notifier     RefreshNotifier
	participants core.Participants
	now          func() time.Time
	logger       *applog.Logger
	events       *applog.StructuredLogger
}

// TaskOption configures a TaskService
type TaskOption func(*TaskService)

// WithClock sets the time source used for created_at stamps
func WithClock(now func() time.Time) TaskOption {
	return func(s *TaskService) { s.now = now }
}

// WithNotifier sets where refresh notifications go. Without one none are sent.
func WithNotifier(n RefreshNotifier) TaskOption {
	return func(s *TaskService) { s.notifier = n }
}

func WithLogger(logger *applog.Logger) TaskOption {
	return func(s *TaskService) { s.logger = logger }
}

func NewTaskService(st store.Store, sequencer *Sequencer, participants core.Participants, opts ...TaskOption) *TaskService {
	s := &TaskService{
		store:        st,
		sequencer:    sequencer,
		participants: participants,
		now:          time.Now,
		logger:       applog.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.sequencer == nil {
		s.sequencer = NewSequencer(s.logger)
	}
	s.logger = s.logger.WithComponent(applog.ComponentTasks)
	s.events = applog.NewStructuredLogger(s.logger)
	return s
}

// Participants returns the two people sharing the tracker.
func (s *TaskService) Participants() core.Participants {
	return s.participants
}

// Get loads one entry.
func (s *TaskService) Get(ctx context.Context, id int64) (core.Entry, error) {
	return store.Get(ctx, s.store, id)
}

// Add creates an active entry numbered after the partition's current maximum.
func (s *TaskService) Add(ctx context.Context, in NewEntry) (core.Entry, error) {
	if err := in.Partition.Validate(); err != nil {
		return core.Entry{}, err
	}
	content, err := cleanContent(in.Content)
	if err != nil {
		return core.Entry{}, err
	}
	if !s.participants.ValidOwner(in.Owner) {
		return core.Entry{}, core.ErrInvalidOwner
	}

	e := core.Entry{
		Category:  in.Partition.Category,
		Subcat:    in.Partition.Subcat,
		Content:   content,
		Owner:     in.Owner,
		Status:    core.Active,
		CreatedAt: core.FormatCreatedAt(s.now()),
	}
	err = s.store.WithinTx(ctx, func(ctx context.Context, tx store.Store) error {
		n, err := s.sequencer.NextNumber(ctx, tx, in.Partition)
		if err != nil {
			return err
		}
		e.TaskNumber = n
		e.ID, err = tx.Insert(ctx, e)
		return err
	})
	if err != nil {
		return core.Entry{}, fmt.Errorf("add entry: %w", err)
	}

	s.changed(ctx, applog.OpCreate, e, in.Partition)
	return e, nil
}

// Copy duplicates an entry into its own partition as a new active entry.
func (s *TaskService) Copy(ctx context.Context, id int64) (core.Entry, error) {
	var dup core.Entry
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx store.Store) error {
		src, err := store.Get(ctx, tx, id)
		if err != nil {
			return err
		}
		n, err := s.sequencer.NextNumber(ctx, tx, src.Partition())
		if err != nil {
			return err
		}
		dup = core.Entry{
			Category:   src.Category,
			Subcat:     src.Subcat,
			Content:    src.Content,
			Owner:      src.Owner,
			Status:     core.Active,
			CreatedAt:  core.FormatCreatedAt(s.now()),
			TaskNumber: n,
		}
		dup.ID, err = tx.Insert(ctx, dup)
		return err
	})
	if err != nil {
		return core.Entry{}, fmt.Errorf("copy entry %d: %w", id, err)
	}

	s.changed(ctx, applog.OpCopy, dup, dup.Partition())
	return dup, nil
}

// Move puts an entry at the end of another partition. Numbers left behind
// in the source partition are not touched.
func (s *TaskService) Move(ctx context.Context, id int64, to core.Partition) (core.Entry, error) {
	if err := to.Validate(); err != nil {
		return core.Entry{}, err
	}

	var moved core.Entry
	var from core.Partition
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx store.Store) error {
		e, err := store.Get(ctx, tx, id)
		if err != nil {
			return err
		}
		from = e.Partition()
		moved = e
		if from == to {
			return nil
		}
		n, err := s.sequencer.NextNumber(ctx, tx, to)
		if err != nil {
			return err
		}
		moved.Category, moved.Subcat, moved.TaskNumber = to.Category, to.Subcat, n
		return tx.Update(ctx, id, store.Fields{
			Category:   &moved.Category,
			Subcat:     &moved.Subcat,
			TaskNumber: store.IntPtr(n),
		})
	})
	if err != nil {
		return core.Entry{}, fmt.Errorf("move entry %d: %w", id, err)
	}

	if from != to {
		s.changed(ctx, applog.OpMove, moved, from, to)
	}
	return moved, nil
}

// Toggle flips an entry between active and completed. A reactivated entry
// is numbered after the partition's current maximum rather than getting its
// old number back.
func (s *TaskService) Toggle(ctx context.Context, id int64) (core.Entry, error) {
	var e core.Entry
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx store.Store) error {
		var err error
		e, err = store.Get(ctx, tx, id)
		if err != nil {
			return err
		}
		f := store.Fields{Status: store.StatusPtr(e.Status.Toggle())}
		if e.Status == core.Completed {
			n, err := s.sequencer.NextNumber(ctx, tx, e.Partition())
			if err != nil {
				return err
			}
			f.TaskNumber = store.IntPtr(n)
		}
		if err := tx.Update(ctx, id, f); err != nil {
			return err
		}
		e = f.Apply(e)
		return nil
	})
	if err != nil {
		return core.Entry{}, fmt.Errorf("toggle entry %d: %w", id, err)
	}

	s.changed(ctx, applog.OpToggle, e, e.Partition())
	return e, nil
}

// EditContent replaces the text of an entry.
func (s *TaskService) EditContent(ctx context.Context, id int64, text string) (core.Entry, error) {
	content, err := cleanContent(text)
	if err != nil {
		return core.Entry{}, err
	}

	var e core.Entry
	err = s.store.WithinTx(ctx, func(ctx context.Context, tx store.Store) error {
		if err := tx.Update(ctx, id, store.Fields{Content: &content}); err != nil {
			return err
		}
		var getErr error
		e, getErr = store.Get(ctx, tx, id)
		return getErr
	})
	if err != nil {
		return core.Entry{}, fmt.Errorf("edit entry %d: %w", id, err)
	}

	s.changed(ctx, applog.OpEdit, e, e.Partition())
	return e, nil
}

// Delete removes one entry in any status.
func (s *TaskService) Delete(ctx context.Context, id int64) (core.Entry, error) {
	var e core.Entry
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx store.Store) error {
		var err error
		e, err = store.Get(ctx, tx, id)
		if err != nil {
			return err
		}
		n, err := tx.Delete(ctx, store.ByID(id))
		if err != nil {
			return err
		}
		if n == 0 {
			return core.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return core.Entry{}, fmt.Errorf("delete entry %d: %w", id, err)
	}

	s.changed(ctx, applog.OpDelete, e, e.Partition())
	return e, nil
}

// ClearCompleted deletes the completed entries of p and returns how many went.
func (s *TaskService) ClearCompleted(ctx context.Context, p core.Partition) (int64, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	f := store.InPartition(p)
	f.Status = store.StatusPtr(core.Completed)

	n, err := s.store.Delete(ctx, f)
	if err != nil {
		return 0, fmt.Errorf("clear completed in %s: %w", p, err)
	}

	s.logger.InfoContext(ctx, "Completed entries cleared",
		applog.FieldCategory, p.Category,
		applog.FieldSubcat, p.Subcat,
		applog.FieldCount, n)
	s.publishRefresh(ctx, p)
	return n, nil
}

// Renumber sets an active entry's number, shifting its neighbours.
// It returns the entry with its new number.
func (s *TaskService) Renumber(ctx context.Context, id int64, number int) (core.Entry, error) {
	if number < 1 {
		return core.Entry{}, core.ErrInvalidNumber
	}

	var e core.Entry
	var old int
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx store.Store) error {
		var err error
		if old, err = s.sequencer.Renumber(ctx, tx, id, number); err != nil {
			return err
		}
		e, err = store.Get(ctx, tx, id)
		return err
	})
	if err != nil {
		return core.Entry{}, fmt.Errorf("renumber entry %d: %w", id, err)
	}

	if old != number {
		s.changed(ctx, applog.OpRenumber, e, e.Partition())
	}
	return e, nil
}

// RenumberText parses user input before renumbering.
func (s *TaskService) RenumberText(ctx context.Context, id int64, text string) (core.Entry, error) {
	n, err := core.ParseTaskNumber(text)
	if err != nil {
		return core.Entry{}, err
	}
	return s.Renumber(ctx, id, n)
}

// Compact renumbers the active entries of p densely and returns their count.
func (s *TaskService) Compact(ctx context.Context, p core.Partition) (int, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	n, err := s.sequencer.Compact(ctx, s.store, p)
	if err != nil {
		return 0, fmt.Errorf("compact %s: %w", p, err)
	}

	s.logger.InfoContext(ctx, "Partition compacted",
		applog.FieldCategory, p.Category,
		applog.FieldSubcat, p.Subcat,
		applog.FieldCount, n)
	s.publishRefresh(ctx, p)
	return n, nil
}

func (s *TaskService) changed(ctx context.Context, op string, e core.Entry, partitions ...core.Partition) {
	s.events.LogEntryChanged(ctx, op, e.ID, string(e.Category), e.Subcat, e.TaskNumber)
	s.publishRefresh(ctx, partitions...)
}

// publishRefresh never fails the caller; the change is already stored.
func (s *TaskService) publishRefresh(ctx context.Context, partitions ...core.Partition) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.PublishRefresh(ctx, partitions...); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish refresh", applog.FieldError, err)
	}
}

func cleanContent(text string) (string, error) {
	content := strings.TrimSpace(text)
	if content == "" {
		return "", core.ErrEmptyContent
	}
	if utf8.RuneCountInString(content) > core.MaxContentLength {
		return "", core.ErrContentTooLong
	}
	return content, nil
}
