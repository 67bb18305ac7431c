package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// NewScoreCommand recomputes and prints a race's corrected results.
func NewScoreCommand(opts *RootOptions) *cobra.Command {
	var system string

	cmd := &cobra.Command{
		Use:   "score <race-id>",
		Short: "Recompute and print corrected times and positions for a race",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
			raceID := args[0]

			ops, closer, err := openOps(opts)
			if err != nil {
				return err
			}
			defer closer()

			if err := ops.RecomputeRace(cmd.Context(), raceID); err != nil {
				out.Failure(err)
				return WrapExitError(ExitFailure, "recompute race", err)
			}

			ranked, err := ops.CorrectedResults(cmd.Context(), raceID, system)
			if err != nil {
				out.Failure(err)
				return WrapExitError(ExitFailure, "load corrected results", err)
			}

			return out.Success(ranked, func(w io.Writer) {
				fmt.Fprintf(w, "%s corrected under %s\n", raceID, system)
				for _, hr := range ranked {
					if hr.Position == 0 {
						fmt.Fprintf(w, "  --  %-12s %s\n", hr.BoatID, hr.Status)
						continue
					}
					tie := ""
					if hr.Tied {
						tie = " ="
					}
					fmt.Fprintf(w, "  %2d%s %-12s corrected %s (+%s)\n",
						hr.Position, tie, hr.BoatID, hr.Corrected, hr.DeltaToLeader)
				}
			})
		},
	}

	cmd.Flags().StringVar(&system, "system", "", "handicap system to print")
	cmd.MarkFlagRequired("system")
	return cmd
}

// NewStandingsCommand recomputes and prints a series' standings.
func NewStandingsCommand(opts *RootOptions) *cobra.Command {
	var (
		system string
		final  bool
	)

	cmd := &cobra.Command{
		Use:   "standings <series-id>",
		Short: "Recompute and print series standings with discards",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

			ops, closer, err := openOps(opts)
			if err != nil {
				return err
			}
			defer closer()

			recompute := ops.RecomputeSeries
			if final {
				recompute = ops.FinalSeries
			}
			standings, err := recompute(cmd.Context(), args[0], system)
			if err != nil {
				out.Failure(err)
				return WrapExitError(ExitFailure, "recompute series", err)
			}

			return out.Success(standings, func(w io.Writer) {
				fmt.Fprintf(w, "standings for %s\n", args[0])
				for _, st := range standings {
					flags := ""
					if st.Tied {
						flags += " tied"
					}
					if st.Provisional {
						flags += " provisional"
					}
					fmt.Fprintf(w, "  %2d. %-12s net %.1f (total %.1f, discarded %.1f)%s\n",
						st.Rank, st.BoatID, st.Net, st.Total, st.Discarded, flags)
				}
			})
		},
	}

	cmd.Flags().StringVar(&system, "system", "", "handicap system to score under")
	cmd.Flags().BoolVar(&final, "final", false, "fail if any series race is still unscored")
	cmd.MarkFlagRequired("system")
	return cmd
}
