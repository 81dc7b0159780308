package commands

import (
	"fmt"

	"github.com/robgonnella/aegis/internal/classify"
	"github.com/spf13/cobra"
)

func scan(props *CommandProps) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Runs a single scan pass and prints discovered devices",
		RunE: func(cmd *cobra.Command, args []string) error {
			appCore, err := props.NewCore(cmd.Context())

			if err != nil {
				return err
			}

			defer appCore.Close()

			status, err := appCore.ScanNow(force)

			if err != nil {
				return err
			}

			if status.LastError != "" {
				return fmt.Errorf("scan failed: %s", status.LastError)
			}

			devices, err := appCore.Devices()

			if err != nil {
				return err
			}

			thresholds := classify.ThresholdsFromConfig(appCore.Conf().Risk)

			for _, d := range devices {
				fmt.Println(classify.Summary(d, thresholds))
			}

			fmt.Printf("\n%d devices found on %s\n", status.DeviceCount, appCore.NetworkInfo().Cidr)

			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "clear stored devices before scanning")

	return cmd
}
