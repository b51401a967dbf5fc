package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/camkeeper/internal/flagx"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	t.Setenv(flagx.ConfigEnvVar, "")

	dir := t.TempDir()
	full := writeTempJSON(t, dir, "full.json", map[string]any{
		"region":            "ap-south-1",
		"client_id":         "abc",
		"client_secret":     "shh",
		"cognito_endpoint":  "http://localhost:9229",
		"auth_timeout":      "20s",
		"database_path":     "x.db",
		"pipeline_url":      "https://pipe",
		"cameras_url":       "https://cams",
		"api_timeout":       int64(3 * time.Second),
		"api_retries":       0,
		"api_retry_backoff": "1s",
		"log_level":         "warn",
	})

	t.Run("loads every field", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", full}
		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, Config{
			Region: "ap-south-1", ClientID: "abc", ClientSecret: "shh",
			CognitoEndpoint: "http://localhost:9229", AuthTimeout: 20 * time.Second,
			DatabasePath: "x.db", PipelineURL: "https://pipe", CamerasURL: "https://cams",
			APITimeout: 3 * time.Second, APIRetries: 0, APIRetryBackoff: time.Second,
			LogLevel: "warn",
		}, *cfg)
	})

	t.Run("absent fields keep defaults", func(t *testing.T) {
		partial := writeTempJSON(t, dir, "partial.json", map[string]any{"client_id": "abc"})
		os.Args = []string{"testbin", "-c", partial}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, "abc", cfg.ClientID)
		assert.Equal(t, 15*time.Second, cfg.AuthTimeout)
		assert.Equal(t, uint64(2), cfg.APIRetries)
	})

	t.Run("env var selects file", func(t *testing.T) {
		os.Args = []string{"testbin"}
		t.Setenv(flagx.ConfigEnvVar, full)

		cfg := &Config{}
		parseJson(cfg)
		assert.Equal(t, "abc", cfg.ClientID)
	})

	t.Run("no file -> no changes", func(t *testing.T) {
		os.Args = []string{"testbin"}
		cfg := &Config{Region: "keep"}
		parseJson(cfg)
		assert.Equal(t, "keep", cfg.Region)
	})

	t.Run("invalid JSON -> panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))
		os.Args = []string{"testbin", "-config", bad}

		require.Panics(t, func() { parseJson(&Config{}) })
	})

	t.Run("missing file -> panics", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", filepath.Join(dir, "nope.json")}
		require.Panics(t, func() { parseJson(&Config{}) })
	})
}
