package cli

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/plantrace/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string

	// Settings is the loaded configuration file. Nil means config.Default().
	Settings *config.Config
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the plantrace CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "plantrace",
		Short: "plantrace - planner trace metrics",
		Long: `Parse partial-order planner search traces into per-problem metrics,
landmark position distributions and cross-problem summaries.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError, ErrCodeConfig,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}

			slog.SetDefault(opts.logger(cmd))

			cfg, err := config.Load(opts.ConfigPath)
			if err != nil {
				return WrapExitError(ExitCommandError, ErrCodeConfig, "failed to load config", err)
			}
			opts.Settings = &cfg
			slog.Debug("config loaded", "path", opts.ConfigPath, "policy", cfg.Policy, "workers", cfg.Workers)
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to YAML config file")

	// Add subcommands
	cmd.AddCommand(NewMetricsCommand(opts))
	cmd.AddCommand(NewBetweenCommand(opts))
	cmd.AddCommand(NewPositionsCommand(opts))
	cmd.AddCommand(NewEntropyCommand(opts))
	cmd.AddCommand(NewSuccessCommand(opts))
	cmd.AddCommand(NewSummaryCommand(opts))
	cmd.AddCommand(NewCheckCommand(opts))
	cmd.AddCommand(NewRunsCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
