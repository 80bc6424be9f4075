// logtower-server exposes the log-tower generator as an HTTP tool endpoint
// for agent frameworks and benchmark harnesses.
//
// Usage:
//
//	logtower-server --port 8080 --threshold 5 --max-degree 12
//
// Tool call endpoint: POST /tool
// Schema endpoint:    GET  /schema
// Health endpoint:    GET  /health
//
// Every flag can also be set through LOGTOWER_<FLAG> (dashes become
// underscores) or a config file passed with --config.
package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "logtower-server",
		Short:         "Serve log-tower polynomial generation over HTTP",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configFile, err := cmd.Flags().GetString("config")
			if err != nil {
				return err
			}
			v, err := newViper(cmd.Flags(), configFile)
			if err != nil {
				return err
			}
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}
			return serve(cfg)
		},
	}
	cmd.Flags().String("config", "", "Config file (yaml, toml or json)")
	bindFlags(cmd.Flags())
	return cmd
}

func serve(cfg config) error {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "logtower",
	})
	logger.SetLevel(cfg.LogLevel)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logger.Info("listening", "addr", addr, "threshold", cfg.Threshold, "max_degree", cfg.MaxDegree)
	logger.Info("routes", "tool", "POST /tool", "schema", "GET /schema", "health", "GET /health")

	srv := &http.Server{
		Addr:              addr,
		Handler:           newServer(cfg, logger).handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.Timeout + 15*time.Second,
		IdleTimeout:       60 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
