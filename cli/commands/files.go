package commands

import (
	"errors"
	"os"

	"github.com/robgonnella/aegis/internal/logger"
	"github.com/spf13/viper"
)

// removeRuntimeFiles removes the files stored under each viper key.
// Files that do not exist are skipped.
func removeRuntimeFiles(keys ...string) error {
	log := logger.New()

	for _, key := range keys {
		file, ok := viper.Get(key).(string)

		if !ok || file == "" {
			continue
		}

		if err := os.Remove(file); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}

			return err
		}

		log.Info().Str("file", file).Msgf("removed %s", key)
	}

	return nil
}
