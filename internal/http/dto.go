package http

import (
	"tracker/internal/core"
	"tracker/internal/services"
	"tracker/internal/session"
)

// Wire shapes of the API. Services return render-agnostic structs; these add
// JSON names and flatten derived values.
type (
	entryJSON struct {
		ID         int64      `json:"id"`
		Category   string     `json:"category"`
		Subcat     string     `json:"subcat"`
		Content    string     `json:"content"`
		Owner      core.Owner `json:"owner"`
		Status     string     `json:"status"`
		CreatedAt  string     `json:"created_at"`
		TaskNumber int        `json:"task_number"`
	}

	itemJSON struct {
		entryJSON
		ShowNumber bool     `json:"show_number"`
		Struck     bool     `json:"struck"`
		Actions    []string `json:"actions"`
	}

	ownerTotalsJSON struct {
		Personal    float64 `json:"personal"`
		CommonShare float64 `json:"common_share"`
		Total       float64 `json:"total"`
	}

	monthJSON struct {
		Year        int                    `json:"year"`
		Month       int                    `json:"month"`
		ByOwner     map[core.Owner]float64 `json:"by_owner"`
		CommonShare float64                `json:"common_share"`
		Total       float64                `json:"total"`
	}

	reportJSON struct {
		Direct        map[core.Owner]float64         `json:"direct"`
		Participants  map[core.Owner]ownerTotalsJSON `json:"participants"`
		Months        []monthJSON                    `json:"months"`
		CommonBalance float64                        `json:"common_balance"`
		Total         float64                        `json:"total"`
		Counted       int                            `json:"counted"`
		Skipped       int                            `json:"skipped"`
	}

	viewJSON struct {
		Category     string      `json:"category"`
		Subcat       string      `json:"subcat"`
		Title        string      `json:"title"`
		Items        []itemJSON  `json:"items"`
		HasCompleted bool        `json:"has_completed"`
		CanCompact   bool        `json:"can_compact"`
		Ledger       *reportJSON `json:"ledger,omitempty"`
	}

	dashboardJSON struct {
		ActiveByOwner    map[core.Owner]int     `json:"active_by_owner"`
		ActiveByCategory map[core.Category]int  `json:"active_by_category"`
		ActivePlans      map[string]int         `json:"active_plans"`
		CommonBalance    float64                `json:"common_balance"`
		Totals           map[core.Owner]float64 `json:"totals"`
	}

	statementMonthJSON struct {
		Year       int     `json:"year"`
		Month      int     `json:"month"`
		Personal   float64 `json:"personal"`
		FromCommon float64 `json:"from_common"`
		Total      float64 `json:"total"`
	}

	statementJSON struct {
		Owner      core.Owner           `json:"owner"`
		Personal   float64              `json:"personal"`
		FromCommon float64              `json:"from_common"`
		Total      float64              `json:"total"`
		Months     []statementMonthJSON `json:"months"`
		Entries    []itemJSON           `json:"entries"`
	}

	sessionJSON struct {
		State    string       `json:"state"`
		Category string       `json:"category,omitempty"`
		Subcat   string       `json:"subcat,omitempty"`
		Content  string       `json:"content,omitempty"`
		EntryID  int64        `json:"entry_id,omitempty"`
		Owners   []core.Owner `json:"owners,omitempty"`
		Entry    *entryJSON   `json:"entry,omitempty"`
		Done     bool         `json:"done"`
	}

	partitionJSON struct {
		Category string `json:"category"`
		Subcat   string `json:"subcat"`
		Title    string `json:"title"`
	}

	countJSON struct {
		Count int64 `json:"count"`
	}
)

func newEntryJSON(e core.Entry) entryJSON {
	return entryJSON{
		ID:         e.ID,
		Category:   string(e.Category),
		Subcat:     e.Subcat,
		Content:    e.Content,
		Owner:      e.Owner,
		Status:     e.Status.String(),
		CreatedAt:  e.CreatedAt,
		TaskNumber: e.TaskNumber,
	}
}

func newItemJSON(it services.Item) itemJSON {
	out := itemJSON{
		entryJSON:  newEntryJSON(it.Entry),
		ShowNumber: it.ShowNumber,
		Struck:     it.Struck,
		Actions:    []string{},
	}
	flags := []struct {
		on   bool
		name string
	}{
		{it.CanToggle, "toggle"},
		{it.CanDelete, "delete"},
		{it.CanRenumber, "renumber"},
		{it.CanEdit, "edit"},
		{it.CanCopy, "copy"},
		{it.CanMove, "move"},
	}
	for _, f := range flags {
		if f.on {
			out.Actions = append(out.Actions, f.name)
		}
	}
	return out
}

func newItemsJSON(items []services.Item) []itemJSON {
	out := make([]itemJSON, len(items))
	for i, it := range items {
		out[i] = newItemJSON(it)
	}
	return out
}

func newReportJSON(r services.Report) *reportJSON {
	out := &reportJSON{
		Direct:        r.Direct,
		Participants:  make(map[core.Owner]ownerTotalsJSON, len(r.Participants)),
		Months:        make([]monthJSON, len(r.Months)),
		CommonBalance: r.CommonBalance(),
		Total:         r.Total,
		Counted:       r.Counted,
		Skipped:       r.Skipped,
	}
	for owner, t := range r.Participants {
		out.Participants[owner] = ownerTotalsJSON{Personal: t.Personal, CommonShare: t.CommonShare, Total: t.Total()}
	}
	for i, b := range r.Months {
		out.Months[i] = monthJSON{Year: b.Year, Month: b.Month, ByOwner: b.ByOwner, CommonShare: b.CommonShare, Total: b.Total}
	}
	return out
}

func newViewJSON(v services.View) viewJSON {
	out := viewJSON{
		Category:     string(v.Partition.Category),
		Subcat:       v.Partition.Subcat,
		Title:        v.Title,
		Items:        newItemsJSON(v.Items),
		HasCompleted: v.HasCompleted,
		CanCompact:   v.CanCompact,
	}
	if v.Ledger != nil {
		out.Ledger = newReportJSON(*v.Ledger)
	}
	return out
}

func newDashboardJSON(d services.Dashboard) dashboardJSON {
	return dashboardJSON{
		ActiveByOwner:    d.ActiveByOwner,
		ActiveByCategory: d.ActiveByCategory,
		ActivePlans:      d.ActivePlans,
		CommonBalance:    d.CommonBalance,
		Totals:           d.Totals,
	}
}

func newStatementJSON(s services.OwnerStatement) statementJSON {
	out := statementJSON{
		Owner:      s.Owner,
		Personal:   s.Personal,
		FromCommon: s.FromCommon,
		Total:      s.Total(),
		Months:     make([]statementMonthJSON, len(s.Months)),
		Entries:    newItemsJSON(s.Entries),
	}
	for i, m := range s.Months {
		out.Months[i] = statementMonthJSON{Year: m.Year, Month: m.Month, Personal: m.Personal, FromCommon: m.FromCommon, Total: m.Total()}
	}
	return out
}

func newSessionJSON(out session.Outcome) sessionJSON {
	s := sessionJSON{
		State:   out.State.Kind.String(),
		Content: out.State.Content,
		EntryID: out.State.EntryID,
		Owners:  out.Owners,
		Done:    out.Done,
	}
	if out.State.Partition != (core.Partition{}) {
		s.Category = string(out.State.Partition.Category)
		s.Subcat = out.State.Partition.Subcat
	}
	if out.Entry != nil {
		e := newEntryJSON(*out.Entry)
		s.Entry = &e
	}
	return s
}

// partitionsJSON lists every partition in menu order.
func partitionsJSON() []partitionJSON {
	var out []partitionJSON
	for _, c := range core.Categories() {
		subcats := []string{core.NoSubcat}
		if c == core.Plans {
			subcats = core.PlanSubcats()
		}
		for _, sub := range subcats {
			p := core.NewPartition(c, sub)
			out = append(out, partitionJSON{Category: string(c), Subcat: sub, Title: services.Title(p)})
		}
	}
	return out
}
