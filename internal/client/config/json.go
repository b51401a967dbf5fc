package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/camkeeper/internal/flagx"
	"github.com/dmitrijs2005/camkeeper/internal/timex"
)

// JsonConfig is the on-disk form of Config. Durations accept "15s" style
// strings or integer nanoseconds. Absent fields keep their previous value.
type JsonConfig struct {
	Region          string          `json:"region"`
	ClientID        string          `json:"client_id"`
	ClientSecret    string          `json:"client_secret"`
	CognitoEndpoint string          `json:"cognito_endpoint"`
	AuthTimeout     *timex.Duration `json:"auth_timeout"`
	DatabasePath    string          `json:"database_path"`
	PipelineURL     string          `json:"pipeline_url"`
	CamerasURL      string          `json:"cameras_url"`
	APITimeout      *timex.Duration `json:"api_timeout"`
	APIRetries      *uint64         `json:"api_retries"`
	APIRetryBackoff *timex.Duration `json:"api_retry_backoff"`
	LogLevel        string          `json:"log_level"`
}

// parseJson overlays cfg with the file named by -c/-config or
// CAMKEEPER_CONFIG. It panics on read or decode errors.
func parseJson(cfg *Config) {
	path := flagx.ConfigPath(os.Args[1:])
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}
	jc.apply(cfg)
}

func (jc *JsonConfig) apply(cfg *Config) {
	setString(&cfg.Region, jc.Region)
	setString(&cfg.ClientID, jc.ClientID)
	setString(&cfg.ClientSecret, jc.ClientSecret)
	setString(&cfg.CognitoEndpoint, jc.CognitoEndpoint)
	setString(&cfg.DatabasePath, jc.DatabasePath)
	setString(&cfg.PipelineURL, jc.PipelineURL)
	setString(&cfg.CamerasURL, jc.CamerasURL)
	setString(&cfg.LogLevel, jc.LogLevel)

	if jc.AuthTimeout != nil {
		cfg.AuthTimeout = jc.AuthTimeout.Duration
	}
	if jc.APITimeout != nil {
		cfg.APITimeout = jc.APITimeout.Duration
	}
	if jc.APIRetries != nil {
		cfg.APIRetries = *jc.APIRetries
	}
	if jc.APIRetryBackoff != nil {
		cfg.APIRetryBackoff = jc.APIRetryBackoff.Duration
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
