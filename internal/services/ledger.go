package services

import (
	"sort"
	"time"

	"tracker/internal/core"
	applog "tracker/internal/log"
)

type (
	// OwnerTotals is what a named participant earned.
	OwnerTotals struct {
		Personal    float64
		CommonShare float64
	}

	// MonthBucket groups amounts by calendar month.
	MonthBucket struct {
		Year  int
		Month int
		// ByOwner holds direct amounts per owner, the common owner included
		ByOwner map[core.Owner]float64
		// CommonShare is the half of this month's common money credited to each participant
		CommonShare float64
		Total       float64
	}

	// Report is the aggregated money ledger.
	Report struct {
		// Direct holds the plain sum of amounts per owner
		Direct       map[core.Owner]float64
		Participants map[core.Owner]OwnerTotals
		// Months is ordered most recent first
		Months []MonthBucket
		Total  float64
		// Counted and Skipped count money entries with and without a readable amount
		Counted int
		Skipped int
	}

	StatementMonth struct {
		Year       int
		Month      int
		Personal   float64
		FromCommon float64
	}

	// Statement is one participant's share of the ledger.
	Statement struct {
		Owner      core.Owner
		Personal   float64
		FromCommon float64
		Months     []StatementMonth
	}
)

func (t OwnerTotals) Total() float64 {
	return t.Personal + t.CommonShare
}

// For returns the month's amounts credited to a named participant.
func (b MonthBucket) For(owner core.Owner) OwnerTotals {
	return OwnerTotals{Personal: b.ByOwner[owner], CommonShare: b.CommonShare}
}

func (m StatementMonth) Total() float64 {
	return m.Personal + m.FromCommon
}

func (s Statement) Total() float64 {
	return s.Personal + s.FromCommon
}

// CommonBalance is the sum of all money owned in common.
func (r Report) CommonBalance() float64 {
	return r.Direct[core.Common]
}

// TotalFor is the participant's own money plus half of the common money.
func (r Report) TotalFor(owner core.Owner) float64 {
	return r.Participants[owner].Total()
}

// Statement extracts the participant's view of the report. Months where the
// participant received nothing are left out.
func (r Report) Statement(owner core.Owner) Statement {
	totals := r.Participants[owner]
	st := Statement{
		Owner:      owner,
		Personal:   totals.Personal,
		FromCommon: totals.CommonShare,
	}
	for _, b := range r.Months {
		t := b.For(owner)
		if t.Personal == 0 && t.CommonShare == 0 {
			continue
		}
		st.Months = append(st.Months, StatementMonth{
			Year:       b.Year,
			Month:      b.Month,
			Personal:   t.Personal,
			FromCommon: t.CommonShare,
		})
	}
	return st
}

// Aggregator computes money reports. The stored timestamps carry no year, so
// every entry is bucketed into the year reported by its clock.
type Aggregator struct {
	participants core.Participants
	now          func() time.Time
	logger       *applog.Logger
}

func NewAggregator(participants core.Participants, now func() time.Time, logger *applog.Logger) *Aggregator {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = applog.Discard()
	}
	return &Aggregator{
		participants: participants,
		now:          now,
		logger:       logger.WithComponent(applog.ComponentLedger),
	}
}

// Aggregate totals the active money entries among entries. Others are ignored.
// An entry whose amount cannot be read is skipped entirely; one whose
// timestamp cannot be read still counts toward the totals but not toward any month.
func (a *Aggregator) Aggregate(entries []core.Entry) Report {
	report := Report{
		Direct:       map[core.Owner]float64{},
		Participants: map[core.Owner]OwnerTotals{a.participants.A: {}, a.participants.B: {}},
	}
	year := a.now().Year()
	months := map[int]*MonthBucket{}

	for _, e := range entries {
		if e.Category != core.Money || !e.IsActive() {
			continue
		}
		amount, ok := core.ParseAmount(e.Content)
		if !ok {
			report.Skipped++
			a.logger.Debug("Money entry without readable amount", applog.FieldEntryID, e.ID)
			continue
		}
		report.Counted++
		report.Total += amount
		report.Direct[e.Owner] += amount

		share := 0.0
		switch {
		case e.Owner == core.Common:
			share = core.SplitShared(amount)
			for _, p := range []core.Owner{a.participants.A, a.participants.B} {
				t := report.Participants[p]
				t.CommonShare += share
				report.Participants[p] = t
			}
		case a.participants.Has(e.Owner):
			t := report.Participants[e.Owner]
			t.Personal += amount
			report.Participants[e.Owner] = t
		}

		month, ok := core.MonthOf(e.CreatedAt)
		if !ok {
			a.logger.Debug("Money entry without readable month", applog.FieldEntryID, e.ID)
			continue
		}
		b, exists := months[month]
		if !exists {
			b = &MonthBucket{Year: year, Month: month, ByOwner: map[core.Owner]float64{}}
			months[month] = b
		}
		b.ByOwner[e.Owner] += amount
		b.CommonShare += share
		b.Total += amount
	}

	report.Months = make([]MonthBucket, 0, len(months))
	for _, b := range months {
		report.Months = append(report.Months, *b)
	}
	sort.Slice(report.Months, func(i, j int) bool {
		if report.Months[i].Year != report.Months[j].Year {
			return report.Months[i].Year > report.Months[j].Year
		}
		return report.Months[i].Month > report.Months[j].Month
	})

	return report
}
