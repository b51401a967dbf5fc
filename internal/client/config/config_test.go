package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/camkeeper/internal/flagx"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "us-east-1", c.Region)
	assert.Empty(t, c.ClientID)
	assert.Equal(t, 15*time.Second, c.AuthTimeout)
	assert.Equal(t, "camkeeper.db", c.DatabasePath)
	assert.Equal(t, uint64(2), c.APIRetries)
	assert.Equal(t, 500*time.Millisecond, c.APIRetryBackoff)
}

func TestLoadConfig_JSONThenFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	t.Setenv(flagx.ConfigEnvVar, "")

	path := writeTempJSON(t, "", "", map[string]any{
		"client_id":    "from-json",
		"region":       "eu-west-1",
		"auth_timeout": "30s",
	})
	os.Args = []string{"camkeeper", "-c", path, "-p", "from-flag"}

	cfg := LoadConfig()
	require.NotNil(t, cfg)
	assert.Equal(t, "from-flag", cfg.ClientID)
	assert.Equal(t, "eu-west-1", cfg.Region)
	assert.Equal(t, 30*time.Second, cfg.AuthTimeout)
	assert.Equal(t, "camkeeper.db", cfg.DatabasePath)
}
