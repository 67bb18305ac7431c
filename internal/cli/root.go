package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/saildesk/raceops/internal/config"
	"github.com/saildesk/raceops/internal/engine"
	"github.com/saildesk/raceops/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	DBPath     string
	ConfigPath string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the raceops CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "raceops",
		Short: "raceops - regatta race operations",
		Long:  "Start sequencing, time-limit enforcement, handicap correction, and series scoring for club regattas.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			level := slog.LevelWarn
			if opts.Verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", "raceops.db", "path to the race database")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "regatta.cue", "path to the regatta configuration")

	// Add subcommands
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewScheduleCommand(opts))
	cmd.AddCommand(NewSignalCommand(opts))
	cmd.AddCommand(NewRecallCommand(opts))
	cmd.AddCommand(NewResultCommand(opts))
	cmd.AddCommand(NewRatingCommand(opts))
	cmd.AddCommand(NewScoreCommand(opts))
	cmd.AddCommand(NewStandingsCommand(opts))
	cmd.AddCommand(NewEnforceCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// openOps opens the database and configuration and builds the engine.
// The returned closer must be called when the command is done.
func openOps(opts *RootOptions) (*engine.Ops, func() error, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "load configuration", err)
	}
	st, err := store.Open(opts.DBPath)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "open database", err)
	}
	ops := engine.New(st, cfg, engine.WithLogger(slog.Default()))
	return ops, st.Close, nil
}
