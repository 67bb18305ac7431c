package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/saildesk/raceops/internal/race"
)

// NewSignalCommand advances one fleet through its start sequence.
func NewSignalCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "signal <schedule-id> <fleet> <warning|preparatory|one_minute|started|postponed|abandoned>",
		Short: "Record a start-sequence signal for a fleet",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

			ops, closer, err := openOps(opts)
			if err != nil {
				return err
			}
			defer closer()

			entry, err := ops.Signal(cmd.Context(), args[0], args[1], race.StartStatus(args[2]))
			if err != nil {
				out.Failure(err)
				return WrapExitError(ExitFailure, "signal", err)
			}

			return out.Success(entry, func(w io.Writer) {
				fmt.Fprintf(w, "%s -> %s (order %d)\n", entry.FleetID, entry.Status, entry.StartOrder)
			})
		},
	}
}

// NewRecallCommand performs a general recall for a fleet.
func NewRecallCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "recall <schedule-id> <fleet>",
		Short: "General recall: requeue a fleet at the back of the schedule",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

			ops, closer, err := openOps(opts)
			if err != nil {
				return err
			}
			defer closer()

			entry, err := ops.Recall(cmd.Context(), args[0], args[1])
			if err != nil {
				out.Failure(err)
				return WrapExitError(ExitFailure, "recall", err)
			}

			return out.Success(entry, func(w io.Writer) {
				fmt.Fprintf(w, "%s recalled (recall #%d), new order %d, new warning %s\n",
					entry.FleetID, entry.RecallCount, entry.StartOrder,
					entry.PlannedWarning.Format("15:04:05"))
			})
		},
	}
}
