package commands

import (
	"github.com/spf13/cobra"
)

// creates and returns the "clean" command
func clean() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Removes the device database and log files",
		RunE: func(cmd *cobra.Command, args []string) error {
			return removeRuntimeFiles("database-file", "log-file")
		},
	}

	return cmd
}
