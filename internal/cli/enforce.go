package cli

import (
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

// NewEnforceCommand runs the time-limit checker for one race until its
// enforcement is finished or the command is interrupted.
func NewEnforceCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "enforce <race-id>",
		Short: "Run the time-limit checker for a race",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
			raceID := args[0]

			ops, closer, err := openOps(opts)
			if err != nil {
				return err
			}
			defer closer()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if remaining, ok, err := ops.TimeRemaining(ctx, raceID); err == nil && ok {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s remaining\n", remaining.Round(time.Second))
			}

			if err := ops.StartChecker(ctx, raceID); err != nil {
				out.Failure(err)
				return WrapExitError(ExitFailure, "start checker", err)
			}
			defer ops.StopAllCheckers()

			select {
			case <-ctx.Done():
			case <-ops.CheckerDone(raceID):
			}
			return out.Success(map[string]string{"race": raceID}, func(w io.Writer) {
				fmt.Fprintf(w, "checker stopped for %s\n", raceID)
			})
		},
	}
}
