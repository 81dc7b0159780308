package main

import (
	"context"
	"errors"
	"os"
	"path"
	"strings"

	"github.com/robgonnella/aegis/cli/commands"
	app_info "github.com/robgonnella/aegis/internal/app-info"
	"github.com/robgonnella/aegis/internal/core"
	"github.com/robgonnella/aegis/internal/logger"
	"github.com/robgonnella/aegis/internal/ui"
	"github.com/spf13/viper"
)

/**
 * Main entry point for all commands
 * Here we setup environment config via viper
 */

func setRuntimeConfig() error {
	userHomeDir, err := os.UserHomeDir()

	if err != nil {
		return err
	}

	configDir := path.Join(userHomeDir, ".config", app_info.NAME)

	if err := os.MkdirAll(configDir, 0755); err != nil && !errors.Is(err, os.ErrExist) {
		return err
	}

	// share run-time config globally using viper
	viper.SetDefault("log-file", path.Join(configDir, app_info.NAME+".log"))
	viper.SetDefault("config-dir", configDir)
	viper.SetDefault("config-path", path.Join(configDir, app_info.NAME+".yml"))
	viper.SetDefault("database-file", path.Join(configDir, app_info.NAME+".db"))
	viper.SetDefault("model-file", path.Join(configDir, "model.yml"))

	// AEGIS_CONFIG_PATH, AEGIS_DATABASE_FILE etc. override the defaults
	viper.SetEnvPrefix(app_info.NAME)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	return nil
}

// Entry point for the cli
func main() {
	log := logger.New()

	err := setRuntimeConfig()

	if err != nil {
		log.Fatal().Err(err).Msg("")
	}

	appUI := ui.NewUI(core.CreateFromRuntimeConfig)

	// Get the "root" cobra cli command
	cmd := commands.Root(&commands.CommandProps{
		UI:      appUI,
		NewCore: core.CreateFromRuntimeConfig,
	})

	// execute the cobra command and exit with error code if necessary
	err = cmd.ExecuteContext(context.Background())

	if err != nil {
		log.Fatal().Err(err).Msg("")
	}
}
