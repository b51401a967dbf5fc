package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/camkeeper/internal/flagx"
)

var knownFlags = []string{"-r", "-p", "-s", "-e", "-d", "-u", "-m", "-t", "-l"}

// parseFlags overlays cfg with command-line flags:
//
//	-r string   AWS region of the user pool
//	-p string   user pool app client id
//	-s string   app client secret
//	-e string   Cognito endpoint override (local emulators)
//	-d string   SQLite database path
//	-u string   pipeline service base URL
//	-m string   camera API base URL
//	-t int      auth call timeout (seconds)
//	-l string   log level: debug, info, warn, error
//
// Unknown flags are filtered out first so other components can share os.Args.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], knownFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.Region, "r", cfg.Region, "AWS region")
	fs.StringVar(&cfg.ClientID, "p", cfg.ClientID, "user pool app client id")
	fs.StringVar(&cfg.ClientSecret, "s", cfg.ClientSecret, "app client secret")
	fs.StringVar(&cfg.CognitoEndpoint, "e", cfg.CognitoEndpoint, "Cognito endpoint override")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "local database path")
	fs.StringVar(&cfg.PipelineURL, "u", cfg.PipelineURL, "pipeline service URL")
	fs.StringVar(&cfg.CamerasURL, "m", cfg.CamerasURL, "camera API URL")
	authTimeout := fs.Int("t", int(cfg.AuthTimeout.Seconds()), "auth call timeout (in seconds)")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.AuthTimeout = time.Duration(*authTimeout) * time.Second
}
