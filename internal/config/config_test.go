package config_test

import (
	"os"
	"path"
	"testing"
	"time"

	"github.com/robgonnella/aegis/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestConfig(t *testing.T) {
	dir := t.TempDir()

	t.Run("returns defaults when file is missing", func(st *testing.T) {
		conf, err := config.New(path.Join(dir, "missing.yml"))

		assert.NoError(st, err)
		assert.Equal(st, config.Default(), conf)
	})

	t.Run("merges user config over defaults", func(st *testing.T) {
		confPath := path.Join(dir, "partial.yml")

		raw := []byte(`
discovery:
  cidr: 10.0.0.0/24
scheduler:
  interval: 30s
risk:
  alertThreshold: 60
`)

		err := os.WriteFile(confPath, raw, 0644)

		assert.NoError(st, err)

		conf, err := config.New(confPath)

		assert.NoError(st, err)
		assert.Equal(st, "10.0.0.0/24", conf.Discovery.CIDR)
		assert.Equal(st, 4*time.Second, conf.Discovery.Timeout)
		assert.Equal(st, 2, conf.Discovery.Retries)
		assert.Equal(st, 30*time.Second, conf.Scheduler.Interval)
		assert.Equal(st, 60, conf.Risk.AlertThreshold)
		assert.Equal(st, 50, conf.Risk.HarmfulScore)
		assert.Equal(st, "connect", conf.Probe.Backend)
	})

	t.Run("returns error for malformed yaml", func(st *testing.T) {
		confPath := path.Join(dir, "bad.yml")

		err := os.WriteFile(confPath, []byte("discovery: [\n"), 0644)

		assert.NoError(st, err)

		_, err = config.New(confPath)

		assert.Error(st, err)
	})

	t.Run("init writes defaults once", func(st *testing.T) {
		confPath := path.Join(dir, "init.yml")

		written, err := config.Init(confPath, false)

		assert.NoError(st, err)
		assert.True(st, written)

		loaded, err := config.New(confPath)

		assert.NoError(st, err)
		assert.Equal(st, config.Default(), loaded)

		err = os.WriteFile(confPath, []byte("interface: wlan0\n"), 0644)

		assert.NoError(st, err)

		written, err = config.Init(confPath, false)

		assert.NoError(st, err)
		assert.False(st, written)

		kept, err := config.New(confPath)

		assert.NoError(st, err)
		assert.Equal(st, "wlan0", kept.Interface)
	})

	t.Run("init overwrites when asked", func(st *testing.T) {
		confPath := path.Join(dir, "overwrite.yml")

		err := os.WriteFile(confPath, []byte("interface: wlan0\n"), 0644)

		assert.NoError(st, err)

		written, err := config.Init(confPath, true)

		assert.NoError(st, err)
		assert.True(st, written)

		loaded, err := config.New(confPath)

		assert.NoError(st, err)
		assert.Equal(st, "", loaded.Interface)
	})

	t.Run("writes and reads back config", func(st *testing.T) {
		confPath := path.Join(dir, "written.yml")

		conf := config.Default()
		conf.Interface = "eth0"
		conf.Isolation.RestoreCount = 7

		err := config.Write(confPath, *conf)

		assert.NoError(st, err)

		loaded, err := config.New(confPath)

		assert.NoError(st, err)
		assert.Equal(st, "eth0", loaded.Interface)
		assert.Equal(st, 7, loaded.Isolation.RestoreCount)
		assert.Equal(st, time.Second, loaded.Isolation.Interval)
	})
}
