package main

import (
	"github.com/spf13/cobra"

	"salesconvert.example/sales-convert/internal/health"
	"salesconvert.example/sales-convert/internal/metrics"
	"salesconvert.example/sales-convert/internal/server"
	"salesconvert.example/sales-convert/internal/site"
)

var siteCmd = &cobra.Command{
	Use:   "site",
	Short: "Serve the Sales Convert marketing site",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := bootstrap()
		if err != nil {
			return err
		}
		defer log.Sync()

		h, err := site.NewHandler(log)
		if err != nil {
			return err
		}
		router := site.NewRouter(h, health.NewHealthHandler("site", nil, log), metrics.New("site"), log)

		ctx, stop := signalContext()
		defer stop()
		return server.NewServer(cfg.Server.SiteAddr, router, serverOptions(cfg), log).Run(ctx)
	},
}
