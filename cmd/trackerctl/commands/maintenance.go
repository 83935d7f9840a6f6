package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"tracker/internal/storage"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := opts.cfg.SQLiteDBPath
			if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
				return fmt.Errorf("create db directory: %w", err)
			}
			before, _, err := storage.MigrationVersion(storage.DSN(path))
			if err != nil {
				return err
			}
			version, dirty, err := migrateVersion(path)
			if err != nil {
				return err
			}
			if opts.jsonOutput {
				return opts.printJSON(cmd.OutOrStdout(), map[string]any{
					"from": before, "version": version, "dirty": dirty,
				})
			}
			if before == version {
				fmt.Fprintf(cmd.OutOrStdout(), "schema is up to date at version %d\n", version)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema migrated from version %d to %d\n", before, version)
			return nil
		},
	}
}

func newCompactCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "compact <category> [subcat]",
		Short: "Renumber the active entries of a partition 1..N",
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
			n, err := app.Tasks.Compact(cmd.Context(), p)
			if err != nil {
				return err
			}
			if opts.jsonOutput {
				return opts.printJSON(cmd.OutOrStdout(), map[string]any{"partition": p.String(), "count": n})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d active entries renumbered\n", p, n)
			return nil
		},
	}
}

func newRenumberCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "renumber <id> <number>",
		Short: "Move an active entry to a new position",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid entry id %q", args[0])
			}
			app, err := opts.open()
			if err != nil {
				return err
			}
			e, err := app.Tasks.RenumberText(cmd.Context(), id, args[1])
			if err != nil {
				return err
			}
			if opts.jsonOutput {
				return opts.printJSON(cmd.OutOrStdout(), e)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "entry %d in %s is now #%d\n", e.ID, e.Partition(), e.TaskNumber)
			return nil
		},
	}
}
