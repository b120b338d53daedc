// ABOUTME: Root command for the spendx CLI
// ABOUTME: Handles global flags and documents configuration

package cmd

import (
	"github.com/spf13/cobra"
)

var jsonOutput bool

// version is overridden at build time with -ldflags "-X ...cmd.version=...".
var version = "dev"

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:     "spendx",
	Short:   "SpendX personal finance from the terminal",
	Version: version,
	Long: `spendx is a command-line client for the SpendX personal finance backend.

Log in once; the session is stored under the config directory and refreshed
automatically when the access token expires.

Environment Variables:
  SPENDX_ENV          development or production (default: production)
  SPENDX_DEV_API_URL  Backend URL in development (default: http://localhost:8000)
  SPENDX_CONFIG_DIR   Where credentials and logs live (default: ~/.config/spendx)
  SPENDX_CACHE_TTL    Seconds to cache summaries and categories (default: 60, 0 disables)
  SPENDX_ALL_PROXY    ssh+socks5://user@host:port?private-key=/path/to/key
  LOG_LEVEL           debug, info, warn, error (default: info)
  LOG_FORMAT          text or json (default: text)
  LOG_FILE            Log to this file instead of stderr

Exit codes:
  0 - Success
  1 - Operation failed (rejected by the backend, not logged in)
  2 - Invalid input, configuration or connection error`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output JSON instead of human-readable text")
}

// IsJSONOutput returns whether JSON output is requested
func IsJSONOutput() bool {
	return jsonOutput
}
