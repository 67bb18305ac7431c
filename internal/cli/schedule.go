package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/saildesk/raceops/internal/engine"
	"github.com/saildesk/raceops/internal/race"
)

// ScheduleOptions holds flags for the schedule command.
type ScheduleOptions struct {
	Regatta      string
	Day          string
	Template     string
	Interval     time.Duration
	FirstWarning string
	Distance     float64
}

// NewScheduleCommand creates a start schedule for a race day.
//
// Each positional argument is one fleet in start order, written as
// "fleet:race-number", e.g. "laser:3".
func NewScheduleCommand(opts *RootOptions) *cobra.Command {
	so := &ScheduleOptions{}

	cmd := &cobra.Command{
		Use:   "schedule <fleet:race>...",
		Short: "Create the start schedule for a race day",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

			firstWarning, err := time.Parse(time.RFC3339, so.FirstWarning)
			if err != nil {
				return WrapExitError(ExitCommandError, "parse --first-warning", err)
			}

			slots := make([]engine.FleetSlot, 0, len(args))
			for _, arg := range args {
				fleetID, raceNum, err := parseSlot(arg)
				if err != nil {
					return WrapExitError(ExitCommandError, "parse fleet argument", err)
				}
				slot := engine.FleetSlot{
					FleetID:    fleetID,
					RaceID:     fmt.Sprintf("%s-%s-r%d", so.Regatta, fleetID, raceNum),
					RaceNumber: raceNum,
				}
				if so.Distance > 0 {
					d := so.Distance
					slot.DistanceNM = &d
				}
				slots = append(slots, slot)
			}

			ops, closer, err := openOps(opts)
			if err != nil {
				return err
			}
			defer closer()

			sched := race.StartSchedule{
				ID:           uuid.Must(uuid.NewV7()).String(),
				RegattaID:    so.Regatta,
				Day:          so.Day,
				Template:     race.SequenceTemplate(so.Template),
				Interval:     so.Interval,
				FirstWarning: firstWarning,
				Active:       true,
			}

			entries, err := ops.ScheduleDay(cmd.Context(), sched, slots)
			if err != nil {
				out.Failure(err)
				return WrapExitError(ExitFailure, "create schedule", err)
			}

			return out.Success(map[string]any{"schedule": sched, "entries": entries}, func(w io.Writer) {
				fmt.Fprintf(w, "schedule %s (%s, %s)\n", sched.ID, sched.Day, sched.Template)
				for _, e := range entries {
					fmt.Fprintf(w, "  %d. %-12s warn %s  start %s\n",
						e.StartOrder, e.FleetID,
						e.PlannedWarning.Format("15:04:05"),
						e.PlannedStart.Format("15:04:05"))
				}
			})
		},
	}

	cmd.Flags().StringVar(&so.Regatta, "regatta", "", "regatta identifier")
	cmd.Flags().StringVar(&so.Day, "day", "", "race day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&so.Template, "template", string(race.Template541), "sequence template (5-4-1-go|3-2-1-go|5-1-go|custom)")
	cmd.Flags().DurationVar(&so.Interval, "interval", 5*time.Minute, "default gap between fleet warnings")
	cmd.Flags().StringVar(&so.FirstWarning, "first-warning", "", "first warning time (RFC 3339)")
	cmd.Flags().Float64Var(&so.Distance, "distance", 0, "course distance in nautical miles")
	cmd.MarkFlagRequired("regatta")
	cmd.MarkFlagRequired("day")
	cmd.MarkFlagRequired("first-warning")

	return cmd
}

func parseSlot(arg string) (fleetID string, raceNum int, err error) {
	parts := strings.SplitN(arg, ":", 2)
	if len(parts) != 2 {
		return "", 0, fmt.Errorf("want fleet:race-number, got %q", arg)
	}
	if _, err := fmt.Sscanf(parts[1], "%d", &raceNum); err != nil {
		return "", 0, fmt.Errorf("race number in %q: %w", arg, err)
	}
	return parts[0], raceNum, nil
}
