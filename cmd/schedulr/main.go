package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/saltyorg/schedulr/internal/config"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// CLI flags
var (
	port        int
	bind        string
	allowSubnet string
	dbPath      string
	logFile     string
	verbosity   int

	// Timeout flags (advanced)
	requestTimeout  time.Duration
	shutdownTimeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "schedulr",
		Short:        "Schedulr - user registry and schedule store services",
		Long:         `Schedulr runs two independent JSON/HTTP services backed by SQLite: a user-credential registry (auth) and a per-user task/schedule store (schedules).`,
		SilenceUsage: true,
	}

	defaults := config.DefaultTimeoutConfig()

	// Flags shared by both services; unset flags fall back to SCHEDULR_* env vars
	flags := rootCmd.PersistentFlags()
	flags.IntVarP(&port, "port", "p", 0, "HTTP server port (default 5000 for auth, 5001 for schedules)")
	flags.StringVarP(&bind, "bind", "b", "", "IP address to bind to (e.g., 127.0.0.1, 0.0.0.0)")
	flags.StringVarP(&allowSubnet, "allow-subnet", "a", "", "CIDR subnet allowed to connect (e.g., 192.168.1.0/24)")
	flags.StringVarP(&dbPath, "db", "d", "", "SQLite database path (default ./users.db or ./schedules.db)")
	flags.StringVar(&logFile, "log-file", "", "Log file path (default: next to the database)")
	flags.CountVarP(&verbosity, "verbose", "v", "Increase verbosity (-v debug, -vv trace)")

	// Advanced timeout flags
	flags.DurationVar(&requestTimeout, "request-timeout", defaults.Request, "Maximum time a request handler may run")
	flags.DurationVar(&shutdownTimeout, "shutdown-timeout", defaults.Shutdown, "Maximum time to drain requests on shutdown")

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "auth",
			Short: "Run the user registration/login service",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runService(cmd, config.ServiceAuth)
			},
		},
		&cobra.Command{
			Use:   "schedules",
			Short: "Run the schedule store service",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runService(cmd, config.ServiceSchedules)
			},
		},
		settingsCommand(),
		&cobra.Command{
			Use:   "version",
			Short: "Show version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Printf("schedulr %s (commit: %s, built: %s)\n", version, commit, date)
			},
		},
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
