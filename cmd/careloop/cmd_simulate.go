package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/elyxlabs/careloop/internal/models"
	"github.com/elyxlabs/careloop/internal/simchat"
)

func newSimulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Replay a simulated member conversation against the QA stack",
		Long: `Drive the conversation simulator: a seeded wall clock interleaves member
questions, scheduled diagnostics, and team nudges, answering each question
through the QA service and appending the trace to a history CSV.

By default the service runs in-process over --data/--db; with --base-url the
simulator talks to a running careloop API instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			days, _ := cmd.Flags().GetInt("days")
			seed, _ := cmd.Flags().GetInt64("seed")
			out, _ := cmd.Flags().GetString("out")
			startStr, _ := cmd.Flags().GetString("start")
			baseURL, _ := cmd.Flags().GetString("base-url")

			start, err := time.Parse(models.DateLayout, startStr)
			if err != nil {
				return fmt.Errorf("--start must be YYYY-MM-DD: %w", err)
			}

			log, decisions := buildLogger(cmd)
			defer decisions.Close()

			var qa simchat.Answerer
			if baseURL != "" {
				qa = simchat.NewHTTPClient(baseURL)
			} else {
				svc, _, cleanup, err := buildService(cmd, log, decisions)
				if err != nil {
					return err
				}
				defer cleanup()
				qa = svc
			}

			sim := simchat.NewSimulator(qa, simchat.DefaultMember(), start, seed, log)
			rows, err := sim.Run(cmd.Context(), days)
			if err != nil {
				return err
			}
			if err := simchat.WriteHistory(out, rows); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Simulated %d days, %d messages appended to %s\n", days, len(rows), out)
			return nil
		},
	}

	addStoreFlags(cmd)
	cmd.Flags().Int("days", 240, "Number of days to simulate")
	cmd.Flags().Int64("seed", 42, "RNG seed for the conversation timeline")
	cmd.Flags().String("start", "2025-01-01", "First simulated day (YYYY-MM-DD)")
	cmd.Flags().String("out", "chat_history.csv", "History CSV to append the trace to")
	cmd.Flags().String("base-url", "", "Talk to a running API at this base URL instead of in-process")
	cmd.Flags().Bool("offline", false, "Answer with the extractive fallback instead of remote generators")

	return cmd
}
