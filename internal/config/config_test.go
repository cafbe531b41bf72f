package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadClient_Defaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("SALESINTEL_API_URL", "")
	t.Setenv("SALESINTEL_CONFIG_DIR", "")

	c, err := LoadClient()
	require.NoError(t, err)
	require.Equal(t, DefaultAPIURL, c.APIURL)
	require.Equal(t, "warn", c.LogLevel)
	require.Equal(t, 5*time.Minute, c.Timeout)
	require.Equal(t, filepath.Join(dir, "salesintel"), c.ConfigDir)
}

func TestLoadClient_EnvOverride(t *testing.T) {
	t.Setenv("SALESINTEL_API_URL", "https://intel.example.com/api/")
	t.Setenv("SALESINTEL_CONFIG_DIR", "/tmp/si")

	c, err := LoadClient()
	require.NoError(t, err)
	require.Equal(t, "https://intel.example.com/api", c.APIURL)
	require.Equal(t, "/tmp/si", c.ConfigDir)
}

func TestLoadServer(t *testing.T) {
	t.Setenv("SALESINTEL_SERVER_JWT_KEY", "")
	_, err := LoadServer()
	require.Error(t, err, "jwt key is required")

	t.Setenv("SALESINTEL_SERVER_JWT_KEY", "k")
	t.Setenv("SALESINTEL_SERVER_BOOTSTRAP_ADMIN", "admin:supersecret")
	s, err := LoadServer()
	require.NoError(t, err)
	require.Equal(t, ":8000", s.Addr)
	require.Equal(t, 7*24*time.Hour, s.CacheTTL)
	require.Equal(t, 50, s.RecentLimitMax)

	u, p, ok, err := s.BootstrapCredentials()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "admin", u)
	require.Equal(t, "supersecret", p)

	s.BootstrapAdmin = "nocolon"
	_, _, _, err = s.BootstrapCredentials()
	require.Error(t, err)

	s.BootstrapAdmin = ""
	_, _, ok, err = s.BootstrapCredentials()
	require.NoError(t, err)
	require.False(t, ok)
}
