package commands

import (
	"context"

	"github.com/robgonnella/aegis/internal/core"
	"github.com/robgonnella/aegis/internal/ui"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// CoreFactory creates a fully wired core
type CoreFactory func(ctx context.Context) (*core.Core, error)

// CommandProps injected props that can be made available to all commands
type CommandProps struct {
	UI      *ui.UI
	NewCore CoreFactory
}

// Root builds and returns our root command
func Root(props *CommandProps) *cobra.Command {
	var verbose bool
	var silent bool
	var configPath string

	cmd := &cobra.Command{
		Use:   "aegis",
		Short: "Discover, assess and isolate devices on your local network",
		// This runs before all commands and all sub-commands
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// set logging verbosity for all loggers
			zerolog.SetGlobalLevel(zerolog.InfoLevel)

			if verbose {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}

			if silent {
				zerolog.SetGlobalLevel(zerolog.Disabled)
			}

			if configPath != "" {
				viper.Set("config-path", configPath)
			}

			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return props.UI.Launch(cmd.Context())
		},
	}

	// Persistent flags available to all commands
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show debug logs")
	cmd.PersistentFlags().BoolVar(&silent, "silent", false, "disables all logging")
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to yaml config file")

	cmd.AddCommand(scan(props))
	cmd.AddCommand(devices(props))
	cmd.AddCommand(block(props))
	cmd.AddCommand(watch(props))
	cmd.AddCommand(nickname(props))
	cmd.AddCommand(train(props))
	cmd.AddCommand(logs(props))
	cmd.AddCommand(configure())
	cmd.AddCommand(clean())
	cmd.AddCommand(clear())
	cmd.AddCommand(version())

	return cmd
}
