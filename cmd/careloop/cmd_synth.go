package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/elyxlabs/careloop/internal/config"
	"github.com/elyxlabs/careloop/internal/synth"
)

func newSynthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "synth",
		Short: "Synthesize the member's CSV dataset",
		Long: `Run the deterministic synthesis pipeline: events, daily vitals, quarterly
labs, fitness and body composition, rule-triggered interventions, chats,
monthly KPIs, and the weekly rollup, written as CSVs to the output directory.

The same profile, rules, and seed always produce byte-identical output.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, _ := cmd.Flags().GetString("out")
			profilePath, _ := cmd.Flags().GetString("profile")
			rulesPath, _ := cmd.Flags().GetString("rules")
			seed, _ := cmd.Flags().GetInt64("seed")
			jsonOut, _ := cmd.Flags().GetBool("json")

			log, decisions := buildLogger(cmd)
			defer decisions.Close()

			profile := config.DefaultProfile()
			if profilePath != "" {
				var err error
				profile, err = config.LoadProfile(profilePath)
				if err != nil {
					return err
				}
			}
			if seed != 0 {
				profile.Seed = seed
			}
			if err := profile.Validate(); err != nil {
				return fmt.Errorf("invalid profile: %w", err)
			}

			rules := config.DefaultRules()
			if rulesPath != "" {
				var err error
				rules, err = config.LoadRules(rulesPath)
				if err != nil {
					return err
				}
			}

			gen := synth.NewGenerator(profile, rules, log, decisions)
			result, err := gen.Run(out)
			if err != nil {
				return fmt.Errorf("synthesis failed: %w", err)
			}

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
					"out":           out,
					"seed":          profile.Seed,
					"days":          result.Daily,
					"events":        result.Events,
					"labs":          result.Labs,
					"interventions": result.Interventions,
					"chats":         result.Chats,
					"kpi_months":    result.KPIs,
					"weeks":         result.Weekly,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Dataset written to %s (seed %d):\n", out, profile.Seed)
			fmt.Fprintf(cmd.OutOrStdout(), "  %d daily rows, %d events, %d lab panels\n", result.Daily, result.Events, result.Labs)
			fmt.Fprintf(cmd.OutOrStdout(), "  %d interventions, %d chat messages\n", result.Interventions, result.Chats)
			fmt.Fprintf(cmd.OutOrStdout(), "  %d KPI months, %d weekly rollups\n", result.KPIs, result.Weekly)
			return nil
		},
	}

	cmd.Flags().String("out", defaultDataDir, "Output directory for the CSV dataset")
	cmd.Flags().String("profile", "", "Member profile YAML (default: built-in demo profile)")
	cmd.Flags().String("rules", "", "Simulation rules YAML (default: built-in rules)")
	cmd.Flags().Int64("seed", 0, "Override the profile's RNG seed (0 = keep)")

	return cmd
}
