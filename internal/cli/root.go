// Package cli implements socialctl, a command-line client for the gateway's
// /api surface. The session token is kept in a local SQLite file between runs.
package cli

import (
	"os"

	"github.com/spf13/cobra"

	"social_gateway/internal/client"
	"social_gateway/internal/config"
)

const (
	envAPIURL = "SOCIALCTL_API_URL"
	envDBPath = "SOCIALCTL_DB"
)

// Exit codes.
const (
	exitOK              = 0
	exitFailure         = 1
	exitSetup           = 2
	exitUnauthenticated = 3
)

var (
	apiURL     string
	dbPath     string
	jsonOutput bool
	verbose    bool
)

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:   "socialctl",
	Short: "Command-line client for the social gateway",
	Long: `socialctl talks to the gateway's /api routes with the same request wrapper the
web pages use. "socialctl login" stores the session token locally; later commands
send it as a bearer token until the backend rejects it or you log out.

Environment Variables:
  SOCIALCTL_API_URL  Gateway API base URL (default: CLIENT_BASE_URL or http://localhost:8080/api)
  SOCIALCTL_DB       Session database file (default: SESSION_DB_PATH or socialctl.db)`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Gateway API base URL (overrides "+envAPIURL+")")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Session database file (overrides "+envDBPath+")")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output JSON instead of human-readable text")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log requests and responses")
}

// loadConfig returns the shared gateway configuration, or nil when it cannot be read.
func loadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		return nil
	}
	return cfg
}

// GetAPIURL returns the API URL from flag, env, config or default (in priority order)
func GetAPIURL() string {
	if apiURL != "" {
		return apiURL
	}
	if v := os.Getenv(envAPIURL); v != "" {
		return v
	}
	if cfg := loadConfig(); cfg != nil && cfg.ClientBaseURL != "" {
		return cfg.ClientBaseURL
	}
	return client.DefaultBaseURL
}

// GetDBPath returns the session database path from flag, env, config or default.
func GetDBPath() string {
	if dbPath != "" {
		return dbPath
	}
	if v := os.Getenv(envDBPath); v != "" {
		return v
	}
	if cfg := loadConfig(); cfg != nil && cfg.SessionDBPath != "" {
		return cfg.SessionDBPath
	}
	return config.DefaultSessionDBPath
}

// IsJSONOutput returns whether JSON output is requested
func IsJSONOutput() bool {
	return jsonOutput
}
