package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/robgonnella/aegis/internal/activity"
	"github.com/spf13/cobra"
)

func logs(props *CommandProps) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Prints the activity log of scans, blocks and user actions",
		RunE: func(cmd *cobra.Command, args []string) error {
			appCore, err := props.NewCore(cmd.Context())

			if err != nil {
				return err
			}

			defer appCore.Close()

			entries, err := appCore.RecentLogs(limit)

			if err != nil {
				return err
			}

			if len(entries) == 0 {
				fmt.Println("no activity recorded")
				return nil
			}

			for _, e := range entries {
				fmt.Printf(
					"%s  %-7s  %s\n",
					e.Time.Format(time.DateTime),
					strings.ToUpper(string(e.Level)),
					e.Message,
				)
			}

			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", activity.DefaultLimit, "number of entries to show")

	return cmd
}
