package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8080", cfg.Server.Addr)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pdfmaster.yaml")
	writeConfig(t, path, `
server:
  addr: ":9000"
  read_timeout: 5s
thumbnail:
  scale: 2
  max_width: 300
session:
  ttl: 10m
logging:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, 5*time.Second, cfg.GetReadTimeout())
	assert.Equal(t, 2.0, cfg.Thumbnail.Scale)
	assert.Equal(t, 300, cfg.Thumbnail.MaxWidth)
	assert.Equal(t, 10*time.Minute, cfg.GetSessionTTL())
	assert.Equal(t, "debug", cfg.Logging.Level)

	// Untouched sections keep their defaults.
	assert.Equal(t, Default().Limits, cfg.Limits)
	assert.Equal(t, 5*time.Minute, cfg.GetSweepInterval())
}

func TestLoadInvalid(t *testing.T) {
	tests := map[string]string{
		"bad yaml":     "server: [",
		"bad duration": "session:\n  ttl: soon\n",
		"bad level":    "logging:\n  level: loud\n",
		"bad format":   "logging:\n  format: xml\n",
		"zero scale":   "thumbnail:\n  scale: -1\n",
		"upload cap":   "server:\n  max_upload_bytes: 10\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "c.yaml")
			writeConfig(t, path, body)
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PDFMASTER_ADDR", "0.0.0.0:1234")
	t.Setenv("PDFMASTER_LOG_LEVEL", "warn")
	t.Setenv("PDFMASTER_MAX_FILE_BYTES", "1048576")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:1234", cfg.Server.Addr)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.EqualValues(t, 1<<20, cfg.Limits.MaxFileBytes)

	t.Run("bad number", func(t *testing.T) {
		t.Setenv("PDFMASTER_MAX_FILE_BYTES", "lots")
		_, err := Load("")
		assert.Error(t, err)
	})
}

func TestDurationFallback(t *testing.T) {
	cfg := &Config{}
	assert.Equal(t, 60*time.Second, cfg.GetReadTimeout())
	assert.Equal(t, 120*time.Second, cfg.GetWriteTimeout())
	assert.Equal(t, 15*time.Second, cfg.GetShutdownTimeout())
	assert.Equal(t, 2*time.Hour, cfg.GetSessionTTL())
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "pdfmaster.yaml")
	cfg := Default()
	cfg.Server.Addr = ":7000"
	require.NoError(t, cfg.Save(path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestWatch(t *testing.T) {
	old := DebounceInterval
	DebounceInterval = 20 * time.Millisecond
	t.Cleanup(func() { DebounceInterval = old })

	dir := t.TempDir()
	path := filepath.Join(dir, "pdfmaster.yaml")
	writeConfig(t, path, "logging:\n  level: info\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan *Config, 8)
	errs := make(chan error, 8)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func(cfg *Config, err error) {
			if err != nil {
				errs <- err
				return
			}
			got <- cfg
		})
	}()

	// The watcher needs a moment to register before the write.
	require.Eventually(t, func() bool {
		writeConfig(t, path, "logging:\n  level: debug\n")
		select {
		case cfg := <-got:
			return cfg.Logging.Level == "debug"
		case <-time.After(100 * time.Millisecond):
			return false
		}
	}, 5*time.Second, 10*time.Millisecond)

	// Other files in the directory are ignored; a broken write reports an error.
	writeConfig(t, filepath.Join(dir, "other.yaml"), "x: 1\n")
	writeConfig(t, path, "logging:\n  level: loud\n")
	select {
	case err := <-errs:
		assert.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload error reported")
	}

	cancel()
	assert.NoError(t, <-done)
}
