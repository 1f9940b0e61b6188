// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/essay-engine/internal/convert"
	"github.com/pdiddy/essay-engine/internal/export"
	"github.com/pdiddy/essay-engine/internal/metrics"
	"github.com/pdiddy/essay-engine/internal/request"
	"github.com/pdiddy/essay-engine/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve generation and export over HTTP",
	Long: `Serve starts the HTTP API:

  POST /api/generate          run one generation attempt
  POST /api/export/{format}   render an essay as ris, doc, bib or txt
  GET  /healthz               liveness
  GET  /metrics               Prometheus metrics

The server stops gracefully on SIGINT or SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		labels, err := export.LabelsFor(appConfig.Export.Labels)
		if err != nil {
			return err
		}

		m := metrics.New()
		inv, cleanup, err := newInvoker(m)
		if err != nil {
			return err
		}
		defer cleanup()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		srv := server.New(appConfig.Server, request.NewBuilder(appConfig.Writing), inv,
			convert.NewLazy(appConfig.Converter.Image), m, labels, logger)
		return srv.Run(ctx)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default from config, :8080)")
	_ = viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))

	rootCmd.AddCommand(serveCmd)
}
