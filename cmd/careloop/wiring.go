package main

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/elyxlabs/careloop/internal/config"
	"github.com/elyxlabs/careloop/internal/llm"
	"github.com/elyxlabs/careloop/internal/logging"
	"github.com/elyxlabs/careloop/internal/rag"
	"github.com/elyxlabs/careloop/internal/setup"
	"github.com/elyxlabs/careloop/internal/store"
	"github.com/elyxlabs/careloop/internal/vectorsearch"
)

const defaultDataDir = "data"

// addStoreFlags registers the flags shared by every command that touches the
// dataset or the vector index.
func addStoreFlags(cmd *cobra.Command) {
	cmd.Flags().String("data", defaultDataDir, "Directory holding the synthesized CSV dataset")
	cmd.Flags().String("db", "", "Path to the SQLite vector store (default: <data>/careloop.db)")
}

// loadServiceConfig resolves service settings: config file, then CARELOOP_*
// environment overrides, then explicit flags.
func loadServiceConfig(cmd *cobra.Command) (*config.Service, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadService(path)
	if err != nil {
		return nil, err
	}
	if v, _ := cmd.Flags().GetString("data"); cmd.Flags().Changed("data") {
		cfg.DataDir = v
	}
	if v, _ := cmd.Flags().GetString("db"); v != "" {
		cfg.StorePath = v
	}
	if v, _ := cmd.Flags().GetBool("offline"); v {
		cfg.Offline = true
	}
	return cfg, nil
}

// buildEmbedder wires the local GGUF embedder detected under the careloop
// home directory. The returned closer frees the llama model.
func buildEmbedder() (*vectorsearch.Embedder, io.Closer, error) {
	installed := setup.DetectInstalled(setup.DefaultCareloopDir())
	local := llm.NewLocalEmbedder(llm.LocalConfig{
		LibPath:   installed.LibPath,
		ModelPath: installed.ModelPath,
	})
	if !local.Available() {
		return nil, nil, fmt.Errorf("embedding runtime not installed; run 'careloop setup' first")
	}
	return vectorsearch.NewEmbedder(local.Embed, filepath.Base(installed.ModelPath)), local, nil
}

// buildGenerator assembles the answer chain: the Gemini pool first, the
// OpenRouter fallback second. Offline mode swaps in the deterministic
// extractive client so no network or credentials are needed.
func buildGenerator(log *slog.Logger, cfg *config.Service) llm.Client {
	if cfg.Offline {
		return llm.NewExtractiveClient()
	}
	log.Debug("generation credentials", "gemini_keys", cfg.RedactedKeys())
	return llm.NewChain(log,
		llm.NewGeminiClient(cfg.GeminiKeyPool(), log),
		llm.NewOpenRouterClient(cfg.OpenRouterAPIKey),
	)
}

// buildService wires the full QA stack from a command's flags and service
// config. The returned cleanup closes the store and the embedding model.
func buildService(cmd *cobra.Command, log *slog.Logger, decisions *logging.DecisionLogger) (*rag.Service, *config.Service, func(), error) {
	cfg, err := loadServiceConfig(cmd)
	if err != nil {
		return nil, nil, nil, err
	}

	ds, err := rag.LoadDataset(cfg.DataDir, log)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("loading dataset from %s: %w", cfg.DataDir, err)
	}

	dbPath := cfg.ResolveStorePath()
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("opening vector store %s: %w", dbPath, err)
	}

	embedder, embCloser, err := buildEmbedder()
	if err != nil {
		st.Close()
		return nil, nil, nil, err
	}

	svc := rag.NewService(ds, st, embedder, buildGenerator(log, cfg), log, decisions)
	cleanup := func() {
		embCloser.Close()
		st.Close()
	}
	return svc, cfg, cleanup, nil
}
