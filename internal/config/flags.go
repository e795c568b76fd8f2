package config

import (
	"flag"
	"os"
	"time"

	"github.com/acuellar/cfdivault/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the remote table store (default from Config)
//	-k string   API key for the remote table store (default from Config)
//	-d string   path of the local SQLite database file (default from Config)
//	-i int      online check interval in seconds (default from Config)
//	-t int      remote request timeout in seconds (default from Config)
//
// Note: The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-k", "-d", "-i", "-t"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.RemoteBaseURL, "a", cfg.RemoteBaseURL, "base URL of the remote table store")
	fs.StringVar(&cfg.RemoteAPIKey, "k", cfg.RemoteAPIKey, "API key for the remote table store")
	fs.StringVar(&cfg.LocalDSN, "d", cfg.LocalDSN, "path of the local database file")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	requestTimeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "remote request timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
	cfg.RequestTimeout = time.Duration(*requestTimeout) * time.Second
}
