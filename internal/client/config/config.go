package config

import "time"

// Config holds runtime settings for the camkeeper CLI.
type Config struct {
	// Cognito user pool app client.
	Region          string
	ClientID        string
	ClientSecret    string
	CognitoEndpoint string
	AuthTimeout     time.Duration

	DatabasePath string

	// Data APIs.
	PipelineURL     string
	CamerasURL      string
	APITimeout      time.Duration
	APIRetries      uint64
	APIRetryBackoff time.Duration

	LogLevel string
}

// LoadDefaults populates c with defaults. ClientID has no default and must
// be supplied by JSON or flags.
func (c *Config) LoadDefaults() {
	c.Region = "us-east-1"
	c.AuthTimeout = 15 * time.Second
	c.DatabasePath = "camkeeper.db"
	c.PipelineURL = "http://127.0.0.1:8080/v1"
	c.CamerasURL = "http://127.0.0.1:8080/v1"
	c.APITimeout = 20 * time.Second
	c.APIRetries = 2
	c.APIRetryBackoff = 500 * time.Millisecond
	c.LogLevel = "info"
}

// LoadConfig applies defaults, then the JSON file (if any), then flags.
// Later sources take precedence.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
