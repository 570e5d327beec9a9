package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/elyxlabs/careloop/internal/rag"
	"github.com/elyxlabs/careloop/internal/store"
)

func newIngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Embed the CSV dataset into the vector store",
		Long: `Load the synthesized dataset, flatten every row into a typed document,
embed each document with the local model, and rebuild the vector index.
Re-running drops and recreates the collection.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			log, decisions := buildLogger(cmd)
			defer decisions.Close()

			cfg, err := loadServiceConfig(cmd)
			if err != nil {
				return err
			}
			dataDir := cfg.DataDir
			dbPath := cfg.ResolveStorePath()

			st, err := store.Open(dbPath)
			if err != nil {
				return fmt.Errorf("opening vector store %s: %w", dbPath, err)
			}
			defer st.Close()

			embedder, embCloser, err := buildEmbedder()
			if err != nil {
				return err
			}
			defer embCloser.Close()

			ing := rag.NewIngestor(st, embedder, log, decisions)
			count, err := ing.Ingest(cmd.Context(), dataDir)
			if err != nil {
				return fmt.Errorf("ingest failed: %w", err)
			}

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
					"collection": rag.CollectionName,
					"documents":  count,
					"db":         dbPath,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d documents into %s (%s)\n", count, rag.CollectionName, dbPath)
			return nil
		},
	}

	addStoreFlags(cmd)
	return cmd
}
