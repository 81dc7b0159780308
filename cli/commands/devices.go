package commands

import (
	"fmt"

	"github.com/robgonnella/aegis/internal/classify"
	"github.com/spf13/cobra"
)

func devices(props *CommandProps) *cobra.Command {
	var risky bool

	cmd := &cobra.Command{
		Use:   "devices",
		Short: "Lists stored devices without scanning",
		RunE: func(cmd *cobra.Command, args []string) error {
			appCore, err := props.NewCore(cmd.Context())

			if err != nil {
				return err
			}

			defer appCore.Close()

			devices, err := appCore.Devices()

			if err != nil {
				return err
			}

			thresholds := classify.ThresholdsFromConfig(appCore.Conf().Risk)

			for _, d := range devices {
				if risky && !classify.Evaluate(classify.FeaturesFromDevice(d), thresholds).Harmful {
					continue
				}

				blocked := ""

				if d.Blocked {
					blocked = " [blocked]"
				}

				fmt.Printf("%-17s %-15s %s%s\n", d.MAC, d.IP, classify.Summary(d, thresholds), blocked)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&risky, "risky", false, "only list devices flagged as harmful")

	return cmd
}
