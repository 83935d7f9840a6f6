package services

import (
	"testing"
	"time"

	"tracker/internal/core"
)

var testParticipants = core.Participants{A: "artem", B: "nikita"}

func fixedClock(year int) func() time.Time {
	return func() time.Time { return time.Date(year, time.October, 15, 12, 0, 0, 0, time.UTC) }
}

func money(id int64, owner core.Owner, content, createdAt string) core.Entry {
	return core.Entry{ID: id, Category: core.Money, Subcat: core.NoSubcat, Content: content, Owner: owner, CreatedAt: createdAt}
}

func TestAggregator_CommonSplit(t *testing.T) {
	agg := NewAggregator(testParticipants, fixedClock(2025), nil)

	report := agg.Aggregate([]core.Entry{
		money(1, core.Common, "100", "01.03 10:00"),
		money(2, "artem", "20", "05.03 09:00"),
	})

	if got := report.TotalFor("artem"); got != 70 {
		t.Errorf("artem total = %v, want 70", got)
	}
	if got := report.TotalFor("nikita"); got != 50 {
		t.Errorf("nikita total = %v, want 50", got)
	}
	if got := report.CommonBalance(); got != 100 {
		t.Errorf("common balance = %v, want 100", got)
	}

	if len(report.Months) != 1 {
		t.Fatalf("months = %+v, want one bucket", report.Months)
	}
	b := report.Months[0]
	if b.Year != 2025 || b.Month != 3 {
		t.Errorf("bucket = (%d, %d), want (2025, 3)", b.Year, b.Month)
	}
	if got := b.For("artem"); got.Personal != 20 || got.CommonShare != 50 {
		t.Errorf("artem in March = %+v, want personal 20 common 50", got)
	}
	if got := b.For("nikita"); got.Personal != 0 || got.CommonShare != 50 {
		t.Errorf("nikita in March = %+v, want personal 0 common 50", got)
	}
	if b.Total != 120 {
		t.Errorf("March total = %v, want 120", b.Total)
	}
}

func TestAggregator_SkipsAndFilters(t *testing.T) {
	agg := NewAggregator(testParticipants, fixedClock(2025), nil)

	done := money(5, "artem", "1000", "01.01 10:00")
	done.Status = core.Completed
	task := core.Entry{ID: 6, Category: core.Projects, Subcat: core.NoSubcat, Content: "500", Owner: "artem", CreatedAt: "01.01 10:00"}

	report := agg.Aggregate([]core.Entry{
		money(1, "artem", "$45.50 usd", "02.04 10:00"),
		money(2, "artem", "—", "02.04 10:00"),
		money(3, "nikita", "1.2.3", "02.04 10:00"),
		money(4, "nikita", "30", "garbage"),
		done,
		task,
	})

	if report.Counted != 2 || report.Skipped != 2 {
		t.Errorf("counted/skipped = %d/%d, want 2/2", report.Counted, report.Skipped)
	}
	if got := report.TotalFor("artem"); got != 45.5 {
		t.Errorf("artem total = %v, want 45.5", got)
	}
	// A bad timestamp keeps the amount in the totals
	if got := report.TotalFor("nikita"); got != 30 {
		t.Errorf("nikita total = %v, want 30", got)
	}
	if len(report.Months) != 1 || report.Months[0].Month != 4 || report.Months[0].Total != 45.5 {
		t.Errorf("months = %+v, want only April with 45.5", report.Months)
	}
}

func TestAggregator_AssumesCurrentYear(t *testing.T) {
	agg := NewAggregator(testParticipants, fixedClock(2031), nil)

	// Timestamps carry no year, so December entries land in the clock's year
	report := agg.Aggregate([]core.Entry{
		money(1, "artem", "10", "31.12 23:59"),
		money(2, "artem", "5", "01.01 00:01"),
	})

	if len(report.Months) != 2 {
		t.Fatalf("months = %+v", report.Months)
	}
	for _, b := range report.Months {
		if b.Year != 2031 {
			t.Errorf("bucket %d has year %d, want 2031", b.Month, b.Year)
		}
	}
}

func TestAggregator_MonthsMostRecentFirst(t *testing.T) {
	agg := NewAggregator(testParticipants, fixedClock(2025), nil)

	report := agg.Aggregate([]core.Entry{
		money(1, "artem", "1", "10.02 10:00"),
		money(2, "nikita", "2", "10.11 10:00"),
		money(3, core.Common, "4", "10.07 10:00"),
		money(4, "artem", "8", "11.11 10:00"),
	})

	want := []int{11, 7, 2}
	if len(report.Months) != len(want) {
		t.Fatalf("months = %+v", report.Months)
	}
	for i, m := range want {
		if report.Months[i].Month != m {
			t.Errorf("month[%d] = %d, want %d", i, report.Months[i].Month, m)
		}
	}
	if got := report.Months[0].ByOwner; got["artem"] != 8 || got["nikita"] != 2 {
		t.Errorf("November by owner = %v", got)
	}
}

func TestReport_Statement(t *testing.T) {
	agg := NewAggregator(testParticipants, fixedClock(2025), nil)

	report := agg.Aggregate([]core.Entry{
		money(1, core.Common, "100", "01.03 10:00"),
		money(2, "artem", "20", "05.03 09:00"),
		money(3, "nikita", "7", "05.05 09:00"),
		money(4, "artem", "-5", "06.06 09:00"),
	})

	st := report.Statement("artem")
	if st.Personal != 15 || st.FromCommon != 50 || st.Total() != 65 {
		t.Errorf("statement = %+v, want personal 15 common 50", st)
	}
	// May only holds nikita's money
	if len(st.Months) != 2 {
		t.Fatalf("statement months = %+v, want June and March", st.Months)
	}
	if st.Months[0].Month != 6 || st.Months[0].Total() != -5 {
		t.Errorf("first month = %+v, want June -5", st.Months[0])
	}
	if st.Months[1].Month != 3 || st.Months[1].Total() != 70 {
		t.Errorf("second month = %+v, want March 70", st.Months[1])
	}
}
