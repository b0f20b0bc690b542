package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, DefaultListenPort, cfg.Web.ListenPort)
	assert.Equal(t, 768, cfg.UI.MobileBreakpoint)
	assert.Equal(t, 2*time.Second, cfg.UI.CopyRevertDelay)
	assert.Equal(t, 0.1, cfg.UI.RevealThreshold)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 10, 15, 20}, cfg.Demo.SampleNumbers)
	assert.Empty(t, cfg.Database.Path)
	require.NoError(t, cfg.Validate())
}

func TestLoadWithoutFile(t *testing.T) {
	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, DefaultListenPort, cfg.Web.ListenPort)
	assert.Equal(t, DefaultAnalysisTTL, cfg.Demo.AnalysisTTL)
}

func TestLoadFromYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "paradigmas.yml")
	content := `
web:
  listen_port: 8088
  dev: true
ui:
  mobile_breakpoint: 1024
  copy_revert_delay: 1500ms
database:
  path: data/views.sq3
demo:
  sample_numbers: [3, 4]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)

	assert.Equal(t, 8088, cfg.Web.ListenPort)
	assert.True(t, cfg.Web.Dev)
	assert.Equal(t, 1024, cfg.UI.MobileBreakpoint)
	assert.Equal(t, 1500*time.Millisecond, cfg.UI.CopyRevertDelay)
	assert.Equal(t, "data/views.sq3", cfg.Database.Path)
	assert.Equal(t, []int{3, 4}, cfg.Demo.SampleNumbers)
	// untouched keys keep defaults
	assert.Equal(t, DefaultRevealThreshold, cfg.UI.RevealThreshold)
	assert.Equal(t, DefaultFlushInterval, cfg.Database.FlushInterval)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("PARADIGMAS_WEB_LISTEN_PORT", "9099")
	t.Setenv("PARADIGMAS_UI_REVEAL_THRESHOLD", "0.5")

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, 9099, cfg.Web.ListenPort)
	assert.Equal(t, 0.5, cfg.UI.RevealThreshold)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "missing.yml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*MainConfig)
	}{
		{"port zero", func(c *MainConfig) { c.Web.ListenPort = 0 }},
		{"port too large", func(c *MainConfig) { c.Web.ListenPort = 70000 }},
		{"ssl without cert", func(c *MainConfig) { c.Web.SSL = true }},
		{"negative max age", func(c *MainConfig) { c.Web.StaticMaxAge = -1 }},
		{"zero breakpoint", func(c *MainConfig) { c.UI.MobileBreakpoint = 0 }},
		{"negative delay", func(c *MainConfig) { c.UI.CopyRevertDelay = -time.Second }},
		{"threshold above one", func(c *MainConfig) { c.UI.RevealThreshold = 1.5 }},
		{"db without flush interval", func(c *MainConfig) {
			c.Database.Path = "x.sq3"
			c.Database.FlushInterval = 0
		}},
		{"negative ttl", func(c *MainConfig) { c.Demo.AnalysisTTL = -time.Second }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestListenAddr(t *testing.T) {
	w := WebConfig{ListenHost: "127.0.0.1", ListenPort: 5000}
	assert.Equal(t, "127.0.0.1:5000", w.ListenAddr())
}
