package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Nomadcxx/teamsort/internal/api"
	"github.com/Nomadcxx/teamsort/internal/ui"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the local HTTP API",
		Long: `Start a JSON API that runs the reorganizer on request.

Endpoints:
  GET  /api/v1/health       Health check
  GET  /api/v1/presets      Default column names and presets
  POST /api/v1/runs         Start a run
  GET  /api/v1/runs         Recent runs
  GET  /api/v1/runs/{id}    One run with its rows

Set server.token in the config to require "Authorization: Bearer <token>".

Examples:
  teamsort serve
  teamsort serve --addr 127.0.0.1:9000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(false)
			if err != nil {
				return err
			}
			defer a.Close()

			if addr == "" {
				addr = a.cfg.Server.Addr
			}

			server := api.NewServer(a.runner, a.logger)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			ui.InfoMsg(cmd.OutOrStdout(), "API listening on http://%s/api/v1", addr)
			if !server.AuthEnabled() {
				ui.WarningMsg(cmd.OutOrStdout(), "No server.token configured; the API is unauthenticated")
			}
			return server.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "address to listen on (default from config)")

	return cmd
}
