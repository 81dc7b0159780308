package commands

import (
	"fmt"
	"os/exec"

	app_info "github.com/robgonnella/aegis/internal/app-info"
	"github.com/spf13/cobra"
)

func version() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version info",
		Run: func(cmd *cobra.Command, args []string) {
			nmapPath, err := exec.LookPath("nmap")

			if err != nil {
				nmapPath = "not found (connect prober only)"
			}

			fmt.Printf(
				"%s: %s\nnmap: %s\n",
				app_info.NAME,
				app_info.VERSION,
				nmapPath,
			)
		},
	}

	return cmd
}
