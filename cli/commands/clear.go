package commands

import (
	"github.com/spf13/cobra"
)

/**
 * Command to remove config, classifier model and log files
 */
func clear() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Removes the config, classifier model and log files",
		RunE: func(cmd *cobra.Command, args []string) error {
			return removeRuntimeFiles("config-path", "model-file", "log-file")
		},
	}

	return cmd
}
