package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFileDefaults(t *testing.T) {
	path := writeConfig(t, "")

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, "http://localhost:3000", cfg.API.BaseURL)
	require.Equal(t, 10*time.Second, cfg.API.Timeout)
	require.Equal(t, 0, cfg.API.Retries)
	require.Equal(t, "dark", cfg.UI.Theme)
	require.Equal(t, "/home", cfg.UI.StartRoute)
	require.Equal(t, 6, cfg.UI.PageSize)
}

func TestLoadFileReadsTOML(t *testing.T) {
	path := writeConfig(t, `
[api]
base_url = "https://study.example.com"
public_url = "https://s.example.com"
timeout = "3s"
retries = 2

[database]
path = "/tmp/deck.db"

[ui]
theme = "light"
start_route = "/settings"
page_size = 8
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, "https://study.example.com", cfg.API.BaseURL)
	require.Equal(t, "https://s.example.com", cfg.API.PublicURL)
	require.Equal(t, 3*time.Second, cfg.API.Timeout)
	require.Equal(t, 2, cfg.API.Retries)
	require.Equal(t, "/tmp/deck.db", cfg.Database.Path)
	require.Equal(t, "light", cfg.UI.Theme)
	require.Equal(t, "/settings", cfg.UI.StartRoute)
	require.Equal(t, 8, cfg.UI.PageSize)
}

func TestLoadFileEnvOverride(t *testing.T) {
	path := writeConfig(t, "[ui]\ntheme = \"light\"\n")
	t.Setenv("STUDYDECK_UI_THEME", "dark")
	t.Setenv("STUDYDECK_API_BASE_URL", "https://env.example.com")

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, "dark", cfg.UI.Theme)
	require.Equal(t, "https://env.example.com", cfg.API.BaseURL)
}

func TestLoadFileRejectsBadTheme(t *testing.T) {
	path := writeConfig(t, "[ui]\ntheme = \"sepia\"\n")

	_, err := LoadFile(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "ui.theme")
}

func TestLoadFileRejectsRelativeStartRoute(t *testing.T) {
	path := writeConfig(t, "[ui]\nstart_route = \"home\"\n")

	_, err := LoadFile(path)
	require.Error(t, err)
}

func TestResolveTokenPrefersEnv(t *testing.T) {
	t.Setenv("DECK_TEST_TOKEN", "from-env")
	c := APIConfig{TokenEnv: "DECK_TEST_TOKEN", Token: "from-file"}
	require.Equal(t, "from-env", c.ResolveToken())

	t.Setenv("DECK_TEST_TOKEN", "")
	require.Equal(t, "from-file", c.ResolveToken())
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	t.Setenv("STUDYDECK_CONFIG", path)

	cfg, err := LoadFile(writeConfig(t, ""))
	require.NoError(t, err)
	cfg.UI.Theme = "light"
	cfg.API.Retries = 1
	require.NoError(t, Save(cfg))

	loaded, err := Load()
	require.NoError(t, err)
	require.Equal(t, "light", loaded.UI.Theme)
	require.Equal(t, 1, loaded.API.Retries)
	require.Equal(t, cfg.API.Timeout, loaded.API.Timeout)
}
