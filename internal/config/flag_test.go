package config

import (
	"flag"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {

	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "Test1 OK", args: []string{"cmd", "-a", "https://proyecto.supabase.co", "-k", "clave", "-d", "vault.db", "-i", "10", "-t", "7"}, expectPanic: false,
			expected: &Config{RemoteBaseURL: "https://proyecto.supabase.co", RemoteAPIKey: "clave", LocalDSN: "vault.db", OnlineCheckInterval: 10 * time.Second, RequestTimeout: 7 * time.Second}},
		{name: "Test2 incorrect check interval", args: []string{"cmd", "-a", "https://proyecto.supabase.co", "-i", "abc"}, expectPanic: true, expected: &Config{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.PanicOnError)

			os.Args = tt.args

			config := &Config{}

			if !tt.expectPanic {

				require.NotPanics(t, func() { parseFlags(config) })
				assert.Empty(t, cmp.Diff(config, tt.expected))
			} else {
				require.Panics(t, func() { parseFlags(config) })
			}
		})
	}
}
