package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/elyxlabs/careloop/internal/models"
	"github.com/elyxlabs/careloop/internal/rag"
)

func newAskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask",
		Short: "Ask the care team a question",
		Long: `Ask a question over the ingested dataset. With --question a single answer
is printed; without it an interactive loop starts (type "exit" or "quit"
to leave).

Examples:
  careloop ask --question "how is my LDL trending?"
  careloop ask --role "Dr. Warren" --since 2025-03-01`,
		RunE: func(cmd *cobra.Command, args []string) error {
			question, _ := cmd.Flags().GetString("question")
			role, _ := cmd.Flags().GetString("role")
			sinceStr, _ := cmd.Flags().GetString("since")
			jsonOut, _ := cmd.Flags().GetBool("json")

			var since time.Time
			if sinceStr != "" {
				var err error
				since, err = time.Parse(models.DateLayout, sinceStr)
				if err != nil {
					return fmt.Errorf("--since must be YYYY-MM-DD: %w", err)
				}
			}

			log, decisions := buildLogger(cmd)
			defer decisions.Close()

			svc, _, cleanup, err := buildService(cmd, log, decisions)
			if err != nil {
				return err
			}
			defer cleanup()

			if question != "" {
				ans, err := svc.Ask(cmd.Context(), question, role, since)
				if err != nil {
					return err
				}
				return printAnswer(cmd, ans, jsonOut)
			}

			// Interactive loop.
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "careloop interactive mode (type 'exit' or 'quit' to leave)")
			scanner := bufio.NewScanner(cmd.InOrStdin())
			for {
				fmt.Fprint(out, "> ")
				if !scanner.Scan() {
					return scanner.Err()
				}
				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}
				if line == "exit" || line == "quit" {
					return nil
				}
				ans, err := svc.Ask(cmd.Context(), line, role, since)
				if err != nil {
					fmt.Fprintf(out, "error: %v\n", err)
					continue
				}
				if err := printAnswer(cmd, ans, jsonOut); err != nil {
					return err
				}
			}
		},
	}

	addStoreFlags(cmd)
	cmd.Flags().String("question", "", "Question to ask (omit for interactive mode)")
	cmd.Flags().String("role", "", "Explicit persona to address (default: routed from the question)")
	cmd.Flags().String("since", "", "Only retrieve documents on or after this date (YYYY-MM-DD)")
	cmd.Flags().Bool("offline", false, "Answer with the extractive fallback instead of remote generators")

	return cmd
}

func printAnswer(cmd *cobra.Command, ans *rag.Answer, jsonOut bool) error {
	out := cmd.OutOrStdout()
	if jsonOut {
		return json.NewEncoder(out).Encode(ans)
	}
	fmt.Fprintf(out, "[%s] %s\n", ans.Role, ans.Answer)
	if len(ans.Sources) > 0 {
		fmt.Fprintf(out, "Sources: %s\n", strings.Join(ans.Sources, ", "))
	}
	return nil
}

func newRolesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "roles",
		Short: "List the care team personas",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			roles := models.AllRoles()

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
					"available_roles": roles,
					"default_role":    models.DefaultRole,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Care team personas (default: %s):\n", models.DefaultRole)
			for _, r := range roles {
				fmt.Fprintf(cmd.OutOrStdout(), "  - %s\n", r)
			}
			return nil
		},
	}
}
