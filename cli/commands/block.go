package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/robgonnella/aegis/internal/logger"
	"github.com/spf13/cobra"
)

func block(props *CommandProps) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "block [ip|mac]...",
		Short: "Isolates devices from the network until interrupted",
		Long: "Isolates each target by poisoning its arp cache and the " +
			"gateway's until ctrl+c is pressed, at which point the real " +
			"addresses are restored. Requires raw socket privileges.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !all && len(args) == 0 {
				return fmt.Errorf("at least one target or --all is required")
			}

			log := logger.New()

			appCore, err := props.NewCore(cmd.Context())

			if err != nil {
				return err
			}

			// Close restores every target still isolated
			defer appCore.Close()

			targets := []string{}

			if all {
				started, err := appCore.BlockAll()

				if err != nil {
					log.Error().Err(err).Msg("some devices could not be blocked")
				}

				targets = append(targets, started...)
			}

			for _, target := range args {
				status, err := appCore.Block(target)

				if err != nil {
					return err
				}

				targets = append(targets, status.Target)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			fmt.Printf("blocking %d devices, press ctrl+c to restore\n", len(targets))

			<-ctx.Done()

			fmt.Println("restoring network...")

			for _, ip := range targets {
				appCore.Unblock(ip)
				<-appCore.BlockDone(ip)

				status := appCore.BlockStatus(ip)

				if status.LastError != "" {
					fmt.Printf("%s: %s\n", ip, status.LastError)
				}
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "block every known device except this host and the gateway")

	return cmd
}
