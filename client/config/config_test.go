package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gear6io/plvclient/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "localhost:2346", cfg.ServerAddr())
	assert.Equal(t, 16<<20, cfg.Protocol.MaxFrameSize)
	assert.Equal(t, 4096, cfg.Server.ReadBuffer)
	assert.Equal(t, 65536, cfg.Server.MaxReadBuffer)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", FileName)

	cfg := DefaultConfig()
	cfg.Server.Address = "pipeline.local"
	cfg.Server.Port = 9000
	cfg.Server.DialTimeout = 3 * time.Second
	cfg.Viewer.Enabled = true
	cfg.Archive.Bucket = "frames"
	require.NoError(t, cfg.Save(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadFromFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 4000\n"), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 4000, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Server.Address)
	assert.Equal(t, 10*time.Second, cfg.Server.DialTimeout)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadFromFileErrors(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yml"))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, ErrConfigFileReadFailed))

	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("server: [not a map"), 0644))
	_, err = LoadFromFile(path)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, ErrConfigFileParseFailed))
}

func TestLoadSearchesWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	require.NoError(t, os.WriteFile(FileName, []byte("server:\n  address: from-cwd\n"), 0644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from-cwd", cfg.Server.Address)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		code   errors.Code
	}{
		{"empty address", func(c *Config) { c.Server.Address = "" }, ErrServerAddressEmpty},
		{"port zero", func(c *Config) { c.Server.Port = 0 }, ErrServerPortInvalid},
		{"port too large", func(c *Config) { c.Server.Port = 70000 }, ErrServerPortInvalid},
		{"read buffer above max", func(c *Config) { c.Server.ReadBuffer = 1 << 20 }, ErrReadBufferInvalid},
		{"tiny frame size", func(c *Config) { c.Protocol.MaxFrameSize = 4 }, ErrMaxFrameSizeInvalid},
		{"viewer address", func(c *Config) { c.Viewer.Enabled = true; c.Viewer.Address = "nope" }, ErrViewerAddressInvalid},
		{"archive bucket", func(c *Config) { c.Archive.Enabled = true; c.Archive.Bucket = "" }, ErrArchiveIncomplete},
		{"archive every n", func(c *Config) { c.Archive.Enabled = true; c.Archive.EveryN = 0 }, ErrArchiveIncomplete},
		{"log format", func(c *Config) { c.Logging.Format = "xml" }, ErrLogFormatInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, tt.code), "got %v", err)
		})
	}
}

func TestSetServerAddr(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.SetServerAddr("10.0.0.5:7000"))
	assert.Equal(t, "10.0.0.5", cfg.Server.Address)
	assert.Equal(t, 7000, cfg.Server.Port)

	assert.Error(t, cfg.SetServerAddr("no-port"))
	assert.Error(t, cfg.SetServerAddr("host:abc"))
}
