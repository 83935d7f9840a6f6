// Package session tracks multi-step chat input per user. A step either
// advances the user's state or leaves it in place so the front end can
// prompt again. The task core is only called with fully resolved arguments.
package session

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"tracker/internal/cache"
	"tracker/internal/core"
	applog "tracker/internal/log"
	"tracker/internal/services"
)

const (
	Idle Kind = iota
	AwaitingContent
	AwaitingOwner
	AwaitingNumber
	AwaitingEditText
)

var (
	// ErrNoPendingInput is returned when text arrives while no flow is running.
	ErrNoPendingInput = errors.New("no input expected")

	// ErrUnexpectedStep is returned when a step does not match the current state.
	ErrUnexpectedStep = errors.New("unexpected step for current state")
)

type (
	Kind int

	// State is one user's position in a flow plus the parameters gathered so far.
	State struct {
		Kind      Kind
		Partition core.Partition
		Content   string
		EntryID   int64
	}

	// Outcome is the result of a step.
	Outcome struct {
		State State
		// Entry is set when the flow stored a change or when a flow starts on an existing entry
		Entry *core.Entry
		// Owners lists the choices while awaiting an owner
		Owners []core.Owner
		// Done is set when the flow finished and State is back to Idle
		Done bool
	}

	// Tasks is the part of the task service the flows drive.
	Tasks interface {
		Get(ctx context.Context, id int64) (core.Entry, error)
		Add(ctx context.Context, in services.NewEntry) (core.Entry, error)
		RenumberText(ctx context.Context, id int64, text string) (core.Entry, error)
		EditContent(ctx context.Context, id int64, text string) (core.Entry, error)
		Participants() core.Participants
	}
)

func (k Kind) String() string {
	switch k {
	case AwaitingContent:
		return "awaiting_content"
	case AwaitingOwner:
		return "awaiting_owner"
	case AwaitingNumber:
		return "awaiting_number"
	case AwaitingEditText:
		return "awaiting_edit_text"
	default:
		return "idle"
	}
}

// Manager keeps a State per user in an LRU cache. Abandoned flows expire after the TTL.
type Manager struct {
	states *cache.LRUCache[State]
	tasks  Tasks
	logger *applog.Logger
}

func NewManager(tasks Tasks, capacity int, ttl time.Duration, logger *applog.Logger, opts ...cache.Option) *Manager {
	if logger == nil {
		logger = applog.Discard()
	}
	return &Manager{
		states: cache.NewLRUCache[State](capacity, ttl, opts...),
		tasks:  tasks,
		logger: logger.WithComponent(applog.ComponentSession),
	}
}

// Cache exposes the state cache so it can be swept periodically.
func (m *Manager) Cache() cache.Cleaner {
	return m.states
}

// Current returns the user's state, Idle when none is stored.
func (m *Manager) Current(user int64) State {
	st, ok := m.states.Get(key(user))
	if !ok {
		return State{Kind: Idle}
	}
	return st
}

// BeginAdd starts the add flow for partition p.
func (m *Manager) BeginAdd(user int64, p core.Partition) (Outcome, error) {
	if err := p.Validate(); err != nil {
		return Outcome{}, err
	}
	return m.set(user, State{Kind: AwaitingContent, Partition: p}), nil
}

// BeginRenumber starts the renumber flow for an active entry.
func (m *Manager) BeginRenumber(ctx context.Context, user, id int64) (Outcome, error) {
	e, err := m.tasks.Get(ctx, id)
	if err != nil {
		return Outcome{}, err
	}
	if !e.IsActive() {
		return Outcome{}, core.ErrNotFound
	}
	out := m.set(user, State{Kind: AwaitingNumber, Partition: e.Partition(), EntryID: id})
	out.Entry = &e
	return out, nil
}

// BeginEdit starts the edit-text flow for an entry.
func (m *Manager) BeginEdit(ctx context.Context, user, id int64) (Outcome, error) {
	e, err := m.tasks.Get(ctx, id)
	if err != nil {
		return Outcome{}, err
	}
	out := m.set(user, State{Kind: AwaitingEditText, Partition: e.Partition(), EntryID: id})
	out.Entry = &e
	return out, nil
}

// HandleText feeds free text into the running flow. On a validation error
// the state is kept so the user can answer again.
func (m *Manager) HandleText(ctx context.Context, user int64, text string) (Outcome, error) {
	st := m.Current(user)

	switch st.Kind {
	case AwaitingContent:
		content := strings.TrimSpace(text)
		if content == "" {
			return Outcome{State: st}, core.ErrEmptyContent
		}
		if len([]rune(content)) > core.MaxContentLength {
			return Outcome{State: st}, core.ErrContentTooLong
		}
		st.Kind, st.Content = AwaitingOwner, content
		out := m.set(user, st)
		out.Owners = m.tasks.Participants().Owners()
		return out, nil

	case AwaitingNumber:
		e, err := m.tasks.RenumberText(ctx, st.EntryID, text)
		return m.finish(ctx, user, st, e, err)

	case AwaitingEditText:
		e, err := m.tasks.EditContent(ctx, st.EntryID, text)
		return m.finish(ctx, user, st, e, err)

	case AwaitingOwner:
		return Outcome{State: st, Owners: m.tasks.Participants().Owners()}, ErrUnexpectedStep

	default:
		return Outcome{State: st}, ErrNoPendingInput
	}
}

// ChooseOwner completes the add flow.
func (m *Manager) ChooseOwner(ctx context.Context, user int64, owner core.Owner) (Outcome, error) {
	st := m.Current(user)
	if st.Kind != AwaitingOwner {
		return Outcome{State: st}, ErrUnexpectedStep
	}
	e, err := m.tasks.Add(ctx, services.NewEntry{Partition: st.Partition, Content: st.Content, Owner: owner})
	if err != nil {
		out, _ := m.finish(ctx, user, st, e, err)
		out.Owners = m.tasks.Participants().Owners()
		return out, err
	}
	return m.finish(ctx, user, st, e, nil)
}

// Cancel drops the running flow and returns the state it was in, so the
// caller knows which partition to go back to.
func (m *Manager) Cancel(user int64) State {
	st := m.Current(user)
	m.states.Delete(key(user))
	return st
}

// finish ends a flow on success or on a missing entry. Any other error keeps
// the state for another attempt.
func (m *Manager) finish(ctx context.Context, user int64, st State, e core.Entry, err error) (Outcome, error) {
	switch {
	case err == nil:
		m.states.Delete(key(user))
		m.logger.DebugContext(ctx, "Flow completed",
			applog.FieldUserID, user,
			applog.FieldSession, st.Kind.String(),
			applog.FieldEntryID, e.ID)
		return Outcome{State: State{Kind: Idle, Partition: st.Partition}, Entry: &e, Done: true}, nil
	case errors.Is(err, core.ErrNotFound):
		m.states.Delete(key(user))
		return Outcome{State: State{Kind: Idle, Partition: st.Partition}, Done: true}, err
	default:
		// Refresh the TTL while the user retries
		m.states.Set(key(user), st)
		return Outcome{State: st}, err
	}
}

func (m *Manager) set(user int64, st State) Outcome {
	m.states.Set(key(user), st)
	m.logger.Debug("Flow advanced", applog.FieldUserID, user, applog.FieldSession, st.Kind.String())
	return Outcome{State: st}
}

func key(user int64) string {
	return strconv.FormatInt(user, 10)
}
