package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func train(props *CommandProps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Trains the device classifier from stored devices",
		RunE: func(cmd *cobra.Command, args []string) error {
			appCore, err := props.NewCore(cmd.Context())

			if err != nil {
				return err
			}

			defer appCore.Close()

			model, err := appCore.Train()

			if err != nil {
				return err
			}

			fmt.Printf(
				"trained on %d devices, %d vendor prefixes learned\nsaved to %s\n",
				model.Samples,
				len(model.Prefixes),
				appCore.Conf().Classifier.ModelFile,
			)

			return nil
		},
	}

	return cmd
}
