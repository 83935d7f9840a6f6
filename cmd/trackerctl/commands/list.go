package commands

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"tracker/internal/services"
)

func newListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list <category> [subcat]",
		Short: "List the entries of a partition in display order",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := partitionArgs(args)
			if err != nil {
				return err
			}
			app, err := opts.open()
			if err != nil {
				return err
			}
			view, err := app.Views.List(cmd.Context(), p)
			if err != nil {
				return err
			}
			if opts.jsonOutput {
				return opts.printJSON(cmd.OutOrStdout(), view)
			}
			return printView(cmd.OutOrStdout(), view)
		},
	}
}

func printView(out io.Writer, view services.View) error {
	fmt.Fprintf(out, "%s\n\n", view.Title)
	if len(view.Items) == 0 {
		fmt.Fprintln(out, "no entries")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNO\tOWNER\tSTATUS\tCREATED\tCONTENT")
	for _, it := range view.Items {
		number := "-"
		if it.ShowNumber {
			number = fmt.Sprintf("%d", it.Entry.TaskNumber)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			it.Entry.ID, number, it.Entry.Owner, it.Entry.Status, it.Entry.CreatedAt, firstLine(it.Entry.Content))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if view.Ledger != nil {
		fmt.Fprintln(out)
		printReport(out, *view.Ledger)
	}
	return nil
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i] + " ..."
		}
	}
	return s
}
