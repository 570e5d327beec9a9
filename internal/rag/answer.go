package rag

import (
	"regexp"
	"strings"
)

// citationPattern matches inline [token] citations in an answer.
var citationPattern = regexp.MustCompile(`\[([^\[\]]+)\]`)

// generalContextCitation is appended when an answer carries no citation that
// can be traced to the retrieved documents or assembled facts.
const generalContextCitation = " [General Context]"

// EnforceCitations verifies that the answer cites at least one retrieved
// document id or fact citation token. When it does not, the generic citation
// is appended. The check is lenient on purpose: a missing citation is a log
// event, never an error.
func EnforceCitations(answer string, retrievedIDs []string, facts []string) string {
	valid := make(map[string]bool, len(retrievedIDs))
	for _, id := range retrievedIDs {
		valid[id] = true
	}
	for _, f := range facts {
		for _, m := range citationPattern.FindAllStringSubmatch(f, -1) {
			valid[m[1]] = true
		}
	}

	for _, m := range citationPattern.FindAllStringSubmatch(answer, -1) {
		if valid[m[1]] {
			return answer
		}
	}
	return strings.TrimRight(answer, " ") + generalContextCitation
}
