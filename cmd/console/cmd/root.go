// Package cmd provides the CLI commands for the admin console.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jrsteele09/go-admin-console/internal/app"
	"github.com/jrsteele09/go-admin-console/internal/config"
	"github.com/jrsteele09/go-admin-console/internal/logging"
	"github.com/spf13/cobra"
)

var (
	cfgFile     string
	apiURL      string
	storage     string
	storagePath string
	logLevel    string

	cfg config.Config
)

var rootCmd = &cobra.Command{
	Use:   "console",
	Short: "Restaurant admin console",
	Long: `Admin console for the restaurant platform.

The console holds one authenticated session against the admin REST API and
keeps it on this machine between runs. Expired access tokens are refreshed
automatically; a rejected refresh signs you out.

Configuration:
  Values come from the optional YAML file given with --config, then from
  ADMIN_CONSOLE_* environment variables, then from flags.
  Example: ADMIN_CONSOLE_API_BASE_URL=https://api.example.com

Commands:
  serve       Run the web console
  login       Sign in and store the session
  logout      Sign out and forget the session
  whoami      Show the stored session
  invitation  Accept an invitation
  password    Request or complete a password reset
  version     Print version information`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(cfgFile, flagOverrides(cmd))
		if err != nil {
			return err
		}
		cfg = loaded
		logging.Setup(cfg.GetLogLevel(), cfg.GetEnv())
		return nil
	},
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (YAML)")
	pf.StringVar(&apiURL, "api-url", "", "admin API base URL")
	pf.StringVar(&storage, "storage", "", "session storage: file, sqlite or memory")
	pf.StringVar(&storagePath, "storage-path", "", "session file or database path")
	pf.StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
}

// flagOverrides returns the config keys set explicitly on the command line
func flagOverrides(cmd *cobra.Command) map[string]any {
	overrides := map[string]any{}
	set := func(flag, key, value string) {
		if cmd.Flags().Changed(flag) {
			overrides[key] = value
		}
	}
	set("api-url", "api.base_url", apiURL)
	set("storage", "storage.backend", storage)
	set("storage-path", "storage.path", storagePath)
	set("log-level", "log_level", logLevel)
	return overrides
}

func newApp(opts ...app.Option) (*app.App, error) {
	return app.New(cfg, opts...)
}
