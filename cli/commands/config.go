package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/robgonnella/aegis/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func configure() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manages the yaml configuration file",
	}

	cmd.AddCommand(configInit())

	return cmd
}

func configInit() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Writes the default configuration to the config path",
		RunE: func(cmd *cobra.Command, args []string) error {
			confPath, _ := viper.Get("config-path").(string)

			if confPath == "" {
				return fmt.Errorf("no config path set")
			}

			if err := os.MkdirAll(filepath.Dir(confPath), 0755); err != nil {
				return err
			}

			written, err := config.Init(confPath, force)

			if err != nil {
				return err
			}

			if !written {
				fmt.Printf("%s already exists, use --force to replace it\n", confPath)
				return nil
			}

			fmt.Printf("wrote default configuration to %s\n", confPath)

			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "replace an existing config file")

	return cmd
}
