package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tracker/internal/amqp"
)

func newWatchCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print refresh notifications as they are published",
		Long: `watch consumes the refresh queue and prints the partitions named by
each message until interrupted. Messages consumed here are not delivered to
other consumers of the same queue.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := opts.open()
			if err != nil {
				return err
			}
			if app.AMQP == nil {
				return errNoBroker
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "watching %s (ctrl-c to stop)\n", opts.cfg.AMQPQueue)
			err = app.AMQP.ConsumeRefresh(cmd.Context(), func(ctx context.Context, msg *amqp.RefreshMessage) error {
				partitions, err := msg.CorePartitions()
				if err != nil {
					// Requeueing would redeliver it forever
					fmt.Fprintf(out, "%s  invalid message: %v\n", msg.Timestamp.Format(time.RFC3339), err)
					return nil
				}
				names := make([]string, len(partitions))
				for i, p := range partitions {
					names[i] = p.String()
				}
				fmt.Fprintf(out, "%s  %s\n", msg.Timestamp.Format(time.RFC3339), strings.Join(names, " "))
				return nil
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}
