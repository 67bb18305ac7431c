package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/saildesk/raceops/internal/config"
)

// NewValidateCommand validates a regatta configuration file.
func NewValidateCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the regatta configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

			cfg, err := config.Load(opts.ConfigPath)
			if err != nil {
				out.Failure(err)
				return WrapExitError(ExitFailure, "configuration invalid", err)
			}

			return out.Success(cfg, func(w io.Writer) {
				fmt.Fprintf(w, "configuration ok: regatta %s, %d systems, %d discard steps\n",
					cfg.ID, len(cfg.Systems), len(cfg.Scoring.Discards))
			})
		},
	}
}
