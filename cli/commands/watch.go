package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robgonnella/aegis/internal/classify"
	"github.com/robgonnella/aegis/internal/device"
	"github.com/robgonnella/aegis/internal/event"
	"github.com/spf13/cobra"
)

func watch(props *CommandProps) *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Scans periodically and prints device updates until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			appCore, err := props.NewCore(ctx)

			if err != nil {
				return err
			}

			defer appCore.Close()

			thresholds := classify.ThresholdsFromConfig(appCore.Conf().Risk)

			updates := make(chan event.Event, 100)
			alerts := make(chan event.Event, 100)
			fatal := make(chan event.Event, 1)

			updateID := appCore.RegisterEventListener(event.DeviceUpdateEventType, updates)
			alertID := appCore.RegisterEventListener(event.AlertEventType, alerts)
			fatalID := appCore.RegisterEventListener(event.FatalErrorEventType, fatal)

			defer appCore.RemoveEventListener(updateID)
			defer appCore.RemoveEventListener(alertID)
			defer appCore.RemoveEventListener(fatalID)

			appCore.StartAutoScan(interval)

			fmt.Printf(
				"scanning %s every %s, press ctrl+c to stop\n",
				appCore.NetworkInfo().Cidr,
				appCore.AutoScanStatus().Interval,
			)

			for {
				select {
				case <-ctx.Done():
					return nil
				case evt := <-updates:
					if d, ok := evt.Payload.(*device.Device); ok {
						fmt.Println(classify.Summary(d, thresholds))
					}
				case evt := <-alerts:
					if d, ok := evt.Payload.(*device.Device); ok {
						fmt.Printf("ALERT: %s (%s) risk %d\n", d.DisplayName, d.IP, d.RiskScore)
					}
				case evt := <-fatal:
					if err, ok := evt.Payload.(error); ok {
						return err
					}
				}
			}
		},
	}

	cmd.Flags().DurationVarP(&interval, "interval", "i", 0, "time between scans (defaults to config)")

	return cmd
}
