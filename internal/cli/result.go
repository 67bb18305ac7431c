package cli

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/saildesk/raceops/internal/race"
)

// ResultOptions holds flags for the result command.
type ResultOptions struct {
	Finish string
	Status string
}

// NewResultCommand records a boat's finish or status code for a race.
func NewResultCommand(opts *RootOptions) *cobra.Command {
	ro := &ResultOptions{}

	cmd := &cobra.Command{
		Use:   "result <race-id> <boat>",
		Short: "Record a finish time or a non-finishing status for a boat",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
			raceID, boatID := args[0], args[1]

			if (ro.Finish == "") == (ro.Status == "") {
				return NewExitError(ExitCommandError, "exactly one of --finish or --status is required")
			}

			ops, closer, err := openOps(opts)
			if err != nil {
				return err
			}
			defer closer()

			if ro.Finish != "" {
				finish, err := time.Parse(time.RFC3339, ro.Finish)
				if err != nil {
					return WrapExitError(ExitCommandError, "parse --finish", err)
				}
				if err := ops.RecordFinish(cmd.Context(), raceID, boatID, finish); err != nil {
					out.Failure(err)
					return WrapExitError(ExitFailure, "record finish", err)
				}
			} else {
				if err := ops.RecordStatus(cmd.Context(), raceID, boatID, race.ResultStatus(ro.Status)); err != nil {
					out.Failure(err)
					return WrapExitError(ExitFailure, "record status", err)
				}
			}

			return out.Success(map[string]string{"race": raceID, "boat": boatID}, func(w io.Writer) {
				fmt.Fprintf(w, "result recorded for %s in %s\n", boatID, raceID)
			})
		},
	}

	cmd.Flags().StringVar(&ro.Finish, "finish", "", "finish time (RFC 3339)")
	cmd.Flags().StringVar(&ro.Status, "status", "", "non-finishing status (dnf|dns|dnc|retired|dsq|ocs)")
	return cmd
}

// NewRatingCommand applies a new rating certificate for a boat.
func NewRatingCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rating <boat> <system> <rating>",
		Short: "Apply a rating certificate and recompute affected races",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

			rating, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return WrapExitError(ExitCommandError, "parse rating", err)
			}

			ops, closer, err := openOps(opts)
			if err != nil {
				return err
			}
			defer closer()

			if err := ops.ApplyRating(cmd.Context(), args[0], args[1], rating); err != nil {
				out.Failure(err)
				return WrapExitError(ExitFailure, "apply rating", err)
			}

			return out.Success(map[string]any{"boat": args[0], "system": args[1], "rating": rating}, func(w io.Writer) {
				fmt.Fprintf(w, "rating %s applied for %s under %s\n", args[2], args[0], args[1])
			})
		},
	}
}
