package ui

import (
	"context"
	"fmt"
	"os"

	"github.com/robgonnella/aegis/internal/core"
	"github.com/robgonnella/aegis/internal/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

var originalStdout = os.Stdout
var originalStderr = os.Stderr

func restoreStdout() {
	os.Stdout = originalStdout
	os.Stderr = originalStderr
}

// CoreFactory creates a fully wired core
type CoreFactory func(ctx context.Context) (*core.Core, error)

// UI the terminal interface
type UI struct {
	newCore CoreFactory
}

// NewUI returns a new instance of UI
func NewUI(newCore CoreFactory) *UI {
	return &UI{newCore: newCore}
}

// Launch sends logs to file, creates the core and runs the interface
// until the user quits
func (u *UI) Launch(ctx context.Context) error {
	log := logger.New()

	if zerolog.GlobalLevel() != zerolog.Disabled {
		logFile, ok := viper.Get("log-file").(string)

		if !ok || logFile == "" {
			log.Error().Err(fmt.Errorf("invalid log file path: %s", logFile)).Msg("disabling logs")
			zerolog.SetGlobalLevel(zerolog.Disabled)
		} else if err := logger.GlobalSetLogFile(logFile); err != nil {
			log.Error().Err(err).Msg("disabling logs")
			zerolog.SetGlobalLevel(zerolog.Disabled)
		}
	}

	appCore, err := u.newCore(ctx)

	if err != nil {
		return err
	}

	v := newView(appCore)

	os.Stdout, _ = os.Open(os.DevNull)
	os.Stderr, _ = os.Open(os.DevNull)

	defer restoreStdout()

	return v.run()
}
