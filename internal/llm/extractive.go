package llm

import (
	"context"
	"strings"
)

// ExtractiveClient is a deterministic offline generator. It does not call any
// model: it lifts the fact lines out of the prompt and returns them as the
// answer, preserving their inline citations. Used when the service runs with
// no credentials (offline mode) and as the terminal fallback in tests.
type ExtractiveClient struct{}

// NewExtractiveClient creates the offline generator.
func NewExtractiveClient() *ExtractiveClient { return &ExtractiveClient{} }

// Available always returns true; extraction needs no credentials.
func (c *ExtractiveClient) Available() bool { return true }

// Generate extracts the "## FACTS" bullet lines from the prompt and joins
// them into a short answer. When the prompt carries no facts it falls back to
// the first retrieved document line.
func (c *ExtractiveClient) Generate(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	facts := extractSection(prompt, "## FACTS")
	if len(facts) > 0 {
		return "Here is what I have on record. " + strings.Join(facts, " "), nil
	}

	for _, line := range strings.Split(prompt, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "[") && strings.Contains(line, "]: ") {
			return "From the records: " + line, nil
		}
	}
	return "I don't have data on that yet; let me check with the team. [General Context]", nil
}

// extractSection returns the bullet lines under the named markdown header,
// stopping at the next header or blank structural break.
func extractSection(prompt, header string) []string {
	var out []string
	in := false
	for _, line := range strings.Split(prompt, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == header:
			in = true
		case in && strings.HasPrefix(trimmed, "##"):
			return out
		case in && strings.HasPrefix(trimmed, "Question:"):
			return out
		case in && strings.HasPrefix(trimmed, "- "):
			out = append(out, strings.TrimPrefix(trimmed, "- "))
		}
	}
	return out
}
