// Package commands implements the trackerctl admin commands.
package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"tracker/internal/cli"
	"tracker/internal/config"
	"tracker/internal/core"
	applog "tracker/internal/log"
	"tracker/internal/storage"
)

// rootOptions is shared by every command. The app is opened lazily so
// migrate can run without it.
type rootOptions struct {
	dbPath     string
	jsonOutput bool
	logOutput  io.Writer

	cfg    *config.Config
	logger *applog.Logger
	app    *cli.App
}

// NewRootCmd builds the trackerctl command tree. Logs go to stderr.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&rootOptions{logOutput: os.Stderr})
}

func newRootCmd(opts *rootOptions) *cobra.Command {
	root := &cobra.Command{
		Use:   "trackerctl",
		Short: "Administer a tracker database",
		Long: `trackerctl inspects and maintains the tracker's SQLite database.

Configuration is read from the environment and an optional .env file,
the same way the server reads it.`,
		PersistentPreRunE:  opts.setup,
		PersistentPostRunE: opts.teardown,
		SilenceUsage:       true,
		SilenceErrors:      true,
	}

	root.PersistentFlags().StringVar(&opts.dbPath, "db", "", "SQLite database path (default $SQLITE_DB_PATH)")
	root.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "print JSON instead of text")

	root.AddCommand(
		newMigrateCmd(opts),
		newListCmd(opts),
		newCompactCmd(opts),
		newRenumberCmd(opts),
		newReportCmd(opts),
		newWatchCmd(opts),
	)
	return root
}

func (o *rootOptions) setup(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := cli.LoadConfig(o.logOutput, func(c *config.Config) {
		if o.dbPath != "" {
			c.SQLiteDBPath = o.dbPath
		}
	})
	if err != nil {
		return err
	}
	o.cfg = cfg
	o.logger = logger.WithComponent(applog.ComponentCLI)
	return nil
}

// open wires the app on the configured database.
func (o *rootOptions) open() (*cli.App, error) {
	if o.app != nil {
		return o.app, nil
	}
	repo, err := cli.InitSQLite(o.logger, o.cfg.SQLiteDBPath)
	if err != nil {
		return nil, err
	}
	o.app = cli.NewApp(o.cfg, o.logger, repo)
	o.app.OnClose(repo.Close)
	return o.app, nil
}

func (o *rootOptions) teardown(_ *cobra.Command, _ []string) error {
	if o.app == nil {
		return nil
	}
	err := o.app.Close()
	o.app = nil
	return err
}

func (o *rootOptions) printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// partitionArgs reads "<category> [subcat]".
func partitionArgs(args []string) (core.Partition, error) {
	sub := ""
	if len(args) > 1 {
		sub = args[1]
	}
	p := core.NewPartition(core.Category(args[0]), sub)
	if err := p.Validate(); err != nil {
		return core.Partition{}, fmt.Errorf("partition %s: %w", p, err)
	}
	return p, nil
}

var errNoBroker = errors.New("AMQP is not configured or unreachable")

func migrateVersion(dbPath string) (uint, bool, error) {
	if err := storage.RunMigrations(storage.DSN(dbPath)); err != nil {
		return 0, false, err
	}
	return storage.MigrationVersion(storage.DSN(dbPath))
}
