package commands

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"tracker/internal/core"
	"tracker/internal/services"
	"tracker/internal/store"
)

func newReportCmd(opts *rootOptions) *cobra.Command {
	var owner string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the money ledger, or one participant's statement",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := opts.open()
			if err != nil {
				return err
			}

			if owner != "" {
				st, err := app.Views.Statement(cmd.Context(), core.Owner(owner))
				if err != nil {
					return err
				}
				if opts.jsonOutput {
					return opts.printJSON(cmd.OutOrStdout(), st)
				}
				printStatement(cmd.OutOrStdout(), st.Statement)
				return nil
			}

			money, err := app.Store.Query(cmd.Context(), store.Filter{Category: core.Money}, store.OrderByID)
			if err != nil {
				return err
			}
			agg := services.NewAggregator(app.Config.Participants(), nil, app.Logger)
			report := agg.Aggregate(money)
			if opts.jsonOutput {
				return opts.printJSON(cmd.OutOrStdout(), report)
			}
			printReport(cmd.OutOrStdout(), report)
			return nil
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "print the statement of this participant")
	return cmd
}

func printReport(out io.Writer, r services.Report) {
	fmt.Fprintf(out, "Total: %.2f (%d entries, %d without amount)\n", r.Total, r.Counted, r.Skipped)
	fmt.Fprintf(out, "Common balance: %.2f\n", r.CommonBalance())

	owners := make([]string, 0, len(r.Participants))
	for o := range r.Participants {
		owners = append(owners, string(o))
	}
	sort.Strings(owners)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\nOWNER\tPERSONAL\tFROM COMMON\tTOTAL")
	for _, o := range owners {
		t := r.Participants[core.Owner(o)]
		fmt.Fprintf(w, "%s\t%.2f\t%.2f\t%.2f\n", o, t.Personal, t.CommonShare, t.Total())
	}
	_ = w.Flush()

	if len(r.Months) == 0 {
		return
	}
	w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\nMONTH\tTOTAL\tCOMMON SHARE")
	for _, b := range r.Months {
		fmt.Fprintf(w, "%04d-%02d\t%.2f\t%.2f\n", b.Year, b.Month, b.Total, b.CommonShare)
	}
	_ = w.Flush()
}

func printStatement(out io.Writer, st services.Statement) {
	fmt.Fprintf(out, "Statement for %s\n", st.Owner)
	fmt.Fprintf(out, "Personal: %.2f\nFrom common: %.2f\nTotal: %.2f\n", st.Personal, st.FromCommon, st.Total())
	if len(st.Months) == 0 {
		return
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\nMONTH\tPERSONAL\tFROM COMMON\tTOTAL")
	for _, m := range st.Months {
		fmt.Fprintf(w, "%04d-%02d\t%.2f\t%.2f\t%.2f\n", m.Year, m.Month, m.Personal, m.FromCommon, m.Total())
	}
	_ = w.Flush()
}
