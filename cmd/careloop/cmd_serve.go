package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/elyxlabs/careloop/internal/api"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the QA API over HTTP",
		Long: `Start the HTTP API: POST /ask, GET /roles, GET /. Requires an ingested
vector store and either generator credentials in the environment or --offline.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, _ := cmd.Flags().GetString("addr")

			log, decisions := buildLogger(cmd)
			defer decisions.Close()

			svc, cfg, cleanup, err := buildService(cmd, log, decisions)
			if err != nil {
				return err
			}
			defer cleanup()

			if !cmd.Flags().Changed("addr") && cfg.Addr != "" {
				addr = cfg.Addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return api.NewServer(addr, svc, log).Run(ctx)
		},
	}

	addStoreFlags(cmd)
	cmd.Flags().String("addr", ":8000", "Listen address")
	cmd.Flags().Bool("offline", false, "Answer with the extractive fallback instead of remote generators")

	return cmd
}
