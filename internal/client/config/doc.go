// Package config loads runtime configuration for the camkeeper CLI.
//
// Sources, in increasing precedence:
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c/-config or CAMKEEPER_CONFIG.
//  3. Command-line flags (see parseFlags).
//
// JSON example:
//
//	{
//	  "region": "eu-west-1",
//	  "client_id": "4t1f...",
//	  "auth_timeout": "15s",
//	  "database_path": "/var/lib/camkeeper/camkeeper.db",
//	  "pipeline_url": "https://api.example.com/v1",
//	  "cameras_url": "https://api.example.com/v1",
//	  "api_retries": 2,
//	  "api_retry_backoff": "500ms"
//	}
package config
