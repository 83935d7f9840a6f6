package services

import (
	"context"
	"fmt"

	"tracker/internal/core"
	applog "tracker/internal/log"
	"tracker/internal/store"
)

type (
	// Item is one listed entry with the actions the front end may offer for it.
	Item struct {
		Entry core.Entry
		// ShowNumber is false for completed entries and for entries without a number
		ShowNumber  bool
		Struck      bool
		CanToggle   bool
		CanDelete   bool
		CanRenumber bool
		CanEdit     bool
		CanCopy     bool
		CanMove     bool
	}

	// View is the render data of one partition.
	View struct {
		Partition    core.Partition
		Title        string
		Items        []Item
		HasCompleted bool
		// CanCompact is set when more than one entry is active
		CanCompact bool
		// Ledger is only set for the money category
		Ledger *Report
	}

	// Dashboard summarizes every partition.
	Dashboard struct {
		ActiveByOwner    map[core.Owner]int
		ActiveByCategory map[core.Category]int
		ActivePlans      map[string]int
		CommonBalance    float64
		Totals           map[core.Owner]float64
	}

	// OwnerStatement is a participant's statement with their money entries.
	OwnerStatement struct {
		Statement
		Entries []Item
	}
)

var titles = map[core.Category]string{
	core.Projects: "Projects",
	core.Today:    "Today",
	core.Plans:    "Plans",
	core.Debts:    "Debts",
	core.Notes:    "Notes",
	core.Money:    "Earnings",
}

// Title names a partition for display.
func Title(p core.Partition) string {
	title, ok := titles[p.Category]
	if !ok {
		title = string(p.Category)
	}
	if p.Subcat != core.NoSubcat {
		title += " (" + p.Subcat + ")"
	}
	return title
}

// ViewService builds render data. It only reads from the store.
type ViewService struct {
	store        store.Store
	aggregator   *Aggregator
	participants core.Participants
	logger       *applog.Logger
}

func NewViewService(st store.Store, aggregator *Aggregator, participants core.Participants, logger *applog.Logger) *ViewService {
	if logger == nil {
		logger = applog.Discard()
	}
	return &ViewService{
		store:        st,
		aggregator:   aggregator,
		participants: participants,
		logger:       logger.WithComponent(applog.ComponentViews),
	}
}

// List returns the entries of p, active first by number, newest first on ties.
func (s *ViewService) List(ctx context.Context, p core.Partition) (View, error) {
	if err := p.Validate(); err != nil {
		return View{}, err
	}
	entries, err := s.store.Query(ctx, store.InPartition(p), store.OrderForDisplay)
	if err != nil {
		return View{}, fmt.Errorf("list %s: %w", p, err)
	}

	v := View{
		Partition: p,
		Title:     Title(p),
		Items:     make([]Item, 0, len(entries)),
	}
	active := 0
	for _, e := range entries {
		if e.IsActive() {
			active++
		} else {
			v.HasCompleted = true
		}
		v.Items = append(v.Items, newItem(e))
	}
	v.CanCompact = active > 1

	if p.Category == core.Money {
		report := s.aggregator.Aggregate(entries)
		v.Ledger = &report
	}
	return v, nil
}

// Dashboard counts active entries and totals the money ledger.
func (s *ViewService) Dashboard(ctx context.Context) (Dashboard, error) {
	active, err := s.store.Query(ctx, store.Filter{Status: store.StatusPtr(core.Active)}, store.OrderByID)
	if err != nil {
		return Dashboard{}, fmt.Errorf("load dashboard: %w", err)
	}

	d := Dashboard{
		ActiveByOwner:    map[core.Owner]int{},
		ActiveByCategory: map[core.Category]int{},
		ActivePlans:      map[string]int{},
		Totals:           map[core.Owner]float64{},
	}
	for _, o := range s.participants.Owners() {
		d.ActiveByOwner[o] = 0
	}
	for _, c := range core.Categories() {
		d.ActiveByCategory[c] = 0
	}
	for _, e := range active {
		d.ActiveByOwner[e.Owner]++
		d.ActiveByCategory[e.Category]++
		if e.Category == core.Plans {
			d.ActivePlans[e.Subcat]++
		}
	}

	report := s.aggregator.Aggregate(active)
	d.CommonBalance = report.CommonBalance()
	for _, o := range []core.Owner{s.participants.A, s.participants.B} {
		d.Totals[o] = report.TotalFor(o)
	}
	return d, nil
}

// Statement returns a named participant's earnings and their money entries.
func (s *ViewService) Statement(ctx context.Context, owner core.Owner) (OwnerStatement, error) {
	if !s.participants.Has(owner) {
		return OwnerStatement{}, core.ErrInvalidOwner
	}
	money, err := s.store.Query(ctx, store.Filter{Category: core.Money}, store.OrderForDisplay)
	if err != nil {
		return OwnerStatement{}, fmt.Errorf("load statement for %s: %w", owner, err)
	}

	st := OwnerStatement{Statement: s.aggregator.Aggregate(money).Statement(owner)}
	for _, e := range money {
		if e.Owner == owner {
			st.Entries = append(st.Entries, newItem(e))
		}
	}
	return st, nil
}

func newItem(e core.Entry) Item {
	active := e.IsActive()
	return Item{
		Entry:       e,
		ShowNumber:  active && e.TaskNumber > 0,
		Struck:      !active,
		CanToggle:   true,
		CanDelete:   true,
		CanRenumber: active,
		CanEdit:     active,
		CanCopy:     active,
		CanMove:     active,
	}
}
