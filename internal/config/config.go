package config

import "time"

// Config holds runtime settings for the CFDI vault CLI.
//
// Fields:
//   - RemoteBaseURL: base URL of the remote table store.
//   - RemoteAPIKey: API key sent with every remote request.
//   - LocalDSN: path of the local SQLite database file.
//   - OnlineCheckInterval: how often the client probes remote reachability.
//   - RequestTimeout: per-request timeout for remote calls.
type Config struct {
	RemoteBaseURL       string
	RemoteAPIKey        string
	LocalDSN            string
	OnlineCheckInterval time.Duration
	RequestTimeout      time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.RemoteBaseURL = "http://127.0.0.1:54321"
	c.RemoteAPIKey = ""
	c.LocalDSN = "cfdivault.db"
	c.OnlineCheckInterval = 3 * time.Second
	c.RequestTimeout = 10 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
