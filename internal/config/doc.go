// Package config loads runtime configuration for the CFDI vault CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the remote table store
//	-k string   API key for the remote table store
//	-d string   path of the local SQLite database file
//	-i int      online status check interval (seconds)
//	-t int      remote request timeout (seconds)
//
// # JSON schema
//
// The JSON loader uses timex.Duration for intervals, so values can be either
// strings like "3s" or integer nanoseconds:
//
//	{
//	  "remote_base_url": "https://proyecto.supabase.co",
//	  "remote_api_key": "...",
//	  "local_dsn": "cfdivault.db",
//	  "online_check_interval": "3s",
//	  "request_timeout": "10s"
//	}
//
// Note: This package does not read environment variables directly; use the
// JSON file or flags to configure values.
package config
