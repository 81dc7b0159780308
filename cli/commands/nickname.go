package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func nickname(props *CommandProps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nickname <mac> <nickname>",
		Short: "Sets a label for a stored device",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			appCore, err := props.NewCore(cmd.Context())

			if err != nil {
				return err
			}

			defer appCore.Close()

			d, err := appCore.SetNickname(args[0], args[1])

			if err != nil {
				return err
			}

			fmt.Printf("%s is now %q\n", d.MAC, *d.Nickname)

			return nil
		},
	}

	return cmd
}
