package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-admin-console/internal/app"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

var (
	serveDemo   bool
	serveListen string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web console",
	Long: `Run the web console on the configured listen address.

With --demo an in-process fake of the admin API is started and the console is
pointed at it. Sign in with admin@example.com / secret123. Invitation and
password reset links are written to the log.

Examples:
  console serve
  console serve --demo --listen :8080`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&serveDemo, "demo", false, "start the in-process fake backend")
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "listen address (default from config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	displayAppname(cfg.GetAppName())

	var opts []app.Option
	if serveDemo || cfg.GetDemoBackend() {
		demo, err := app.StartDemo()
		if err != nil {
			return err
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := demo.Close(ctx); err != nil {
				log.Err(err).Msg("demo backend shutdown")
			}
		}()
		opts = append(opts, app.WithBaseURL(demo.URL))
	}

	a, err := newApp(opts...)
	if err != nil {
		return err
	}
	defer a.Close()

	handler, err := a.Server()
	if err != nil {
		return err
	}

	addr := cfg.GetListenAddr()
	if serveListen != "" {
		addr = serveListen
	}
	server := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}

	errs := make(chan error, 1)
	go func() { errs <- listenAndServe(server) }()

	select {
	case err := <-errs:
		return err
	case <-cmd.Context().Done():
	}
	if err := shutdown(server); err != nil {
		return err
	}
	log.Info().Msg("Server stopped")
	return nil
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("Server listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
