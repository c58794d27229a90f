package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	assert.Equal(t, ":8080", cfg.GetHTTPAddr())
	assert.False(t, cfg.GetDebug())

	assert.Equal(t, "sqlite", cfg.GetPersistence().GetDriver())
	assert.NotEmpty(t, cfg.GetPersistence().GetDSN())
	assert.Equal(t, 5*time.Second, cfg.GetPersistence().GetPingTimeout())

	auth := cfg.GetAuth()
	assert.Equal(t, 0, auth.GetTokenExpiration())
	assert.Equal(t, 168, auth.GetExtendedTokenDuration())
	assert.Equal(t, "Bearer", auth.GetAuthScheme())
	assert.Equal(t, "header:Authorization", auth.GetTokenLookup())
	assert.Equal(t, "grant", auth.GetContextKey())

	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	t.Run("missing addr", func(t *testing.T) {
		c := *cfg
		c.HTTPAddr = ""
		assert.Error(t, c.Validate())
	})

	t.Run("missing dsn", func(t *testing.T) {
		c := *cfg
		c.Persistence.Server = ""
		assert.Error(t, c.Validate())
	})

	t.Run("bad ping timeout", func(t *testing.T) {
		c := *cfg
		c.Persistence.PingTimeoutExpression = "not a duration"
		assert.Error(t, c.Validate())
	})
}

func TestConfigFilePath(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "no flag", args: []string{"-a", ":9090"}, want: ""},
		{name: "short", args: []string{"-c", "cfg.json"}, want: "cfg.json"},
		{name: "long", args: []string{"-config", "cfg.json"}, want: "cfg.json"},
		{name: "equals", args: []string{"-config=cfg.json"}, want: "cfg.json"},
		{name: "double dash", args: []string{"--config=cfg.json"}, want: "cfg.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, configFilePath(tt.args))
		})
	}
}

func TestLoadConfigOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"http_addr": ":9999",
		"auth": {"token_expiration": 24}
	}`), 0o600))

	origArgs := os.Args
	defer func() { os.Args = origArgs }()
	os.Args = []string{"server", "-c", path}

	cfg, err := LoadConfig()
	require.NoError(t, err)

	// overlaid
	assert.Equal(t, ":9999", cfg.GetHTTPAddr())
	assert.Equal(t, 24, cfg.GetAuth().GetTokenExpiration())

	// untouched defaults survive
	assert.Equal(t, 168, cfg.GetAuth().GetExtendedTokenDuration())
	assert.NotEmpty(t, cfg.GetPersistence().GetDSN())
}

func TestLoadConfigFlagsWin(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"http_addr": ":9999"}`), 0o600))

	origArgs := os.Args
	defer func() { os.Args = origArgs }()
	os.Args = []string{"server", "-c", path, "-a", ":7777", "-r", "72"}

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ":7777", cfg.GetHTTPAddr())
	assert.Equal(t, 72, cfg.GetAuth().GetExtendedTokenDuration())
}
