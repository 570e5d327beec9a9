package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/elyxlabs/careloop/internal/logging"
)

var version = "0.1.0-dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "careloop",
		Short: "Careloop - synthetic health dataset and care-team QA",
		Long: `careloop synthesizes a member's longitudinal health dataset and answers
questions over it through a role-scoped, citation-enforced retrieval service.

Typical flow:
  careloop synth --out data          generate the CSV dataset
  careloop ingest --data data        embed and index it
  careloop ask --question "..."      query the care team`,
	}

	rootCmd.PersistentFlags().String("config", "", "Service config YAML (optional; CARELOOP_* env vars override)")
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON (for machine consumption)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().String("decision-dir", "", "Directory for the JSONL decision log (empty = disabled)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newSynthCmd(),
		newIngestCmd(),
		newServeCmd(),
		newAskCmd(),
		newRolesCmd(),
		newSimulateCmd(),
		newSetupCmd(),
		newMCPCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]string{"version": version})
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "careloop version %s\n", version)
			}
		},
	}
}

// buildLogger constructs the slog logger and, when --decision-dir is set,
// the JSONL decision logger (nil otherwise; DecisionLogger is nil-safe).
func buildLogger(cmd *cobra.Command) (*slog.Logger, *logging.DecisionLogger) {
	level, _ := cmd.Flags().GetString("log-level")
	decisionDir, _ := cmd.Flags().GetString("decision-dir")

	log := logging.NewLogger(level, os.Stderr)
	var decisions *logging.DecisionLogger
	if decisionDir != "" {
		decisions = logging.NewDecisionLogger(decisionDir, level)
	}
	return log, decisions
}
