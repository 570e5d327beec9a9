package main

import (
	"github.com/spf13/cobra"

	"github.com/elyxlabs/careloop/internal/mcp"
)

func newMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve careloop tools over MCP stdio",
		Long: `Run the Model Context Protocol server, exposing careloop_ask and
careloop_roles tools over stdio for agent hosts. Requires an ingested
vector store, like 'careloop ask'.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			log, decisions := buildLogger(cmd)
			defer decisions.Close()

			svc, _, cleanup, err := buildService(cmd, log, decisions)
			if err != nil {
				return err
			}
			defer cleanup()

			server := mcp.NewServer(&mcp.Config{Name: "careloop", Version: version}, svc, log)
			return server.Run(cmd.Context())
		},
	}

	addStoreFlags(cmd)
	cmd.Flags().Bool("offline", false, "Answer with the extractive fallback instead of remote generators")

	return cmd
}
