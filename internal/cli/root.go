package cli

import (
	"fmt"
	"time"

	"github.com/gkobilansky/abreport/internal/config"
	"github.com/spf13/cobra"
)

var (
	configPath string
	storeFlag  string
	dbPath     string
	logLevel   string
	logFormat  string
)

// now is the clock reports are rendered against.
var now = time.Now

var rootCmd = &cobra.Command{
	Use:   "abreport",
	Short: "abreport - A/B test results dashboard",
	Long: `abreport shows A/B test definitions and their results as a web dashboard
and on the terminal.

Running without a subcommand starts the server (same as 'abreport serve').`,
	SilenceUsage: true,
	RunE:         runServe, // Default action is to start server
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", getEnvOrDefault("ABR_CONFIG", ""), "path to YAML config file")
	flags.StringVar(&storeFlag, "store", "", "data store: memory or sqlite")
	flags.StringVar(&dbPath, "db", "", "database path for the sqlite store")
	flags.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error")
	flags.StringVar(&logFormat, "log-format", "", "log format: console or json")
}

// loadConfig resolves the effective configuration. Flags the user set win
// over the environment, which wins over the config file.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("store") {
		cfg.Store.Driver = storeFlag
	}
	if flags.Changed("db") {
		cfg.Store.Path = dbPath
		// Naming a database implies using it.
		if !flags.Changed("store") {
			cfg.Store.Driver = config.DriverSQLite
		}
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = logFormat
	}
	if flags.Changed("port") {
		cfg.Server.Port = port
	}
	if flags.Changed("require-token") {
		cfg.Server.RequireToken = requireToken
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
