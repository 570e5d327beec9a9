package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/elyxlabs/careloop/internal/setup"
)

func newSetupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Install the local embedding runtime and model",
		Long: `Download the llama.cpp shared libraries and the GGUF embedding model into
the careloop home directory. Pieces that are already present are kept.

Use --status to only print what is installed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			baseDir, _ := cmd.Flags().GetString("dir")
			statusOnly, _ := cmd.Flags().GetBool("status")
			jsonOut, _ := cmd.Flags().GetBool("json")

			if baseDir == "" {
				baseDir = setup.DefaultCareloopDir()
			}
			if baseDir == "" {
				return fmt.Errorf("cannot determine home directory; pass --dir")
			}

			installed := setup.DetectInstalled(baseDir)
			if statusOnly {
				return printSetupStatus(cmd, baseDir, installed, jsonOut)
			}

			out := cmd.OutOrStdout()
			if installed.LibPath == "" {
				libDir := filepath.Join(baseDir, "lib")
				fmt.Fprintf(out, "Downloading llama.cpp libraries to %s ...\n", libDir)
				if err := setup.DownloadLibraries(cmd.Context(), libDir); err != nil {
					return fmt.Errorf("downloading libraries: %w", err)
				}
			} else {
				fmt.Fprintf(out, "Libraries already installed: %s\n", installed.LibPath)
			}

			if installed.ModelPath == "" {
				modelsDir := filepath.Join(baseDir, "models")
				fmt.Fprintf(out, "Downloading embedding model to %s ...\n", modelsDir)
				if err := setup.DownloadEmbeddingModel(cmd.Context(), modelsDir); err != nil {
					return fmt.Errorf("downloading model: %w", err)
				}
			} else {
				fmt.Fprintf(out, "Model already installed: %s\n", installed.ModelPath)
			}

			return printSetupStatus(cmd, baseDir, setup.DetectInstalled(baseDir), jsonOut)
		},
	}

	cmd.Flags().String("dir", "", "Careloop home directory (default: ~/.careloop)")
	cmd.Flags().Bool("status", false, "Only print the detected state, do not download")

	return cmd
}

func printSetupStatus(cmd *cobra.Command, baseDir string, installed setup.EmbeddingSetup, jsonOut bool) error {
	if jsonOut {
		return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
			"dir":        baseDir,
			"lib_path":   installed.LibPath,
			"model_path": installed.ModelPath,
			"available":  installed.Available,
		})
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Careloop home: %s\n", baseDir)
	if installed.LibPath != "" {
		fmt.Fprintf(out, "  Libraries: %s\n", installed.LibPath)
	} else {
		fmt.Fprintln(out, "  Libraries: not installed")
	}
	if installed.ModelPath != "" {
		fmt.Fprintf(out, "  Model:     %s\n", installed.ModelPath)
	} else {
		fmt.Fprintln(out, "  Model:     not installed")
	}
	if installed.Available {
		fmt.Fprintln(out, "Embedding runtime is ready.")
	} else {
		fmt.Fprintln(out, "Embedding runtime is incomplete; run 'careloop setup' to install.")
	}
	return nil
}
