package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tracker/internal/core"
	"tracker/internal/store/memory"
)

func newViewService(entries ...core.Entry) *ViewService {
	return NewViewService(memory.NewWithEntries(entries...), NewAggregator(testParticipants, fixedClock(2025), nil), testParticipants, nil)
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Projects", Title(projects))
	assert.Equal(t, "Plans (month)", Title(core.NewPartition(core.Plans, "month")))
	assert.Equal(t, "Earnings", Title(core.NewPartition(core.Money, "")))
}

func TestViewService_List(t *testing.T) {
	ctx := context.Background()
	zero := active(5, projects, 0)
	svc := newViewService(
		completed(1, projects, 1),
		active(2, projects, 2),
		active(3, projects, 1),
		active(4, projects, 1),
		zero,
		active(6, core.NewPartition(core.Notes, ""), 1),
	)

	v, err := svc.List(ctx, projects)
	require.NoError(t, err)
	assert.Equal(t, "Projects", v.Title)
	assert.True(t, v.HasCompleted)
	assert.True(t, v.CanCompact)
	assert.Nil(t, v.Ledger)

	ids := make([]int64, len(v.Items))
	for i, it := range v.Items {
		ids[i] = it.Entry.ID
	}
	assert.Equal(t, []int64{5, 4, 3, 2, 1}, ids)

	first := v.Items[0]
	assert.False(t, first.ShowNumber, "number 0 is hidden")
	assert.True(t, first.CanRenumber)

	last := v.Items[4]
	assert.False(t, last.ShowNumber)
	assert.True(t, last.Struck)
	assert.True(t, last.CanToggle)
	assert.True(t, last.CanDelete)
	assert.False(t, last.CanEdit)
	assert.False(t, last.CanCopy)
	assert.False(t, last.CanMove)
	assert.False(t, last.CanRenumber)

	assert.True(t, v.Items[1].ShowNumber)
}

func TestViewService_ListFlags(t *testing.T) {
	ctx := context.Background()
	svc := newViewService(active(1, projects, 1))

	v, err := svc.List(ctx, projects)
	require.NoError(t, err)
	assert.False(t, v.HasCompleted)
	assert.False(t, v.CanCompact, "a single active entry cannot be compacted")

	empty, err := svc.List(ctx, core.NewPartition(core.Debts, ""))
	require.NoError(t, err)
	assert.Empty(t, empty.Items)

	_, err = svc.List(ctx, core.NewPartition(core.Plans, ""))
	assert.ErrorIs(t, err, core.ErrInvalidSubcat)
}

func TestViewService_ListMoneyCarriesLedger(t *testing.T) {
	svc := newViewService(
		money(1, core.Common, "100", "01.03 10:00"),
		money(2, "artem", "20", "05.03 09:00"),
	)

	v, err := svc.List(context.Background(), core.NewPartition(core.Money, ""))
	require.NoError(t, err)
	require.NotNil(t, v.Ledger)
	assert.Equal(t, 70.0, v.Ledger.TotalFor("artem"))
	assert.Equal(t, 100.0, v.Ledger.CommonBalance())
}

func TestViewService_Dashboard(t *testing.T) {
	week := core.NewPartition(core.Plans, "week")
	done := money(9, "artem", "999", "01.01 10:00")
	done.Status = core.Completed
	svc := newViewService(
		active(1, projects, 1),
		active(2, week, 1),
		completed(3, projects, 2),
		money(4, core.Common, "100", "01.03 10:00"),
		money(5, "nikita", "30", "02.03 10:00"),
		done,
	)

	d, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, d.ActiveByOwner["artem"])
	assert.Equal(t, 1, d.ActiveByOwner["nikita"])
	assert.Equal(t, 1, d.ActiveByOwner[core.Common])
	assert.Equal(t, 1, d.ActiveByCategory[core.Projects])
	assert.Equal(t, 1, d.ActiveByCategory[core.Plans])
	assert.Equal(t, 2, d.ActiveByCategory[core.Money])
	assert.Equal(t, 0, d.ActiveByCategory[core.Notes])
	assert.Equal(t, 1, d.ActivePlans["week"])
	assert.Equal(t, 100.0, d.CommonBalance)
	assert.Equal(t, 50.0, d.Totals["artem"])
	assert.Equal(t, 80.0, d.Totals["nikita"])
}

func TestViewService_Statement(t *testing.T) {
	done := money(3, "artem", "5", "02.03 10:00")
	done.Status = core.Completed
	svc := newViewService(
		money(1, core.Common, "100", "01.03 10:00"),
		money(2, "artem", "20", "05.03 09:00"),
		done,
		money(4, "nikita", "1", "05.03 09:00"),
	)

	st, err := svc.Statement(context.Background(), "artem")
	require.NoError(t, err)
	assert.Equal(t, 20.0, st.Personal)
	assert.Equal(t, 50.0, st.FromCommon)
	assert.Equal(t, 70.0, st.Total())
	require.Len(t, st.Entries, 2, "completed entries are listed but not counted")
	assert.Equal(t, int64(2), st.Entries[0].Entry.ID)

	_, err = svc.Statement(context.Background(), core.Common)
	assert.ErrorIs(t, err, core.ErrInvalidOwner)
}
