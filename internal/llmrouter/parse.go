package llmrouter

import (
	"encoding/json"
	"strings"

	"github.com/aa-workflow/slopscan/pkg/models"
)

type findingPayload struct {
	File        string `json:"file"`
	Line        int    `json:"line"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
	Suggestion  string `json:"suggestion"`
}

type replyPayload struct {
	Findings []findingPayload `json:"findings"`
	Done     bool              `json:"done"`
}

// stripCodeFence removes one level of ``` or ```json wrapping around a JSON
// body, tolerating the common case where a model wraps its answer in a
// markdown fence despite being asked not to.
func stripCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if idx := strings.Index(trimmed, "```json"); idx >= 0 {
		rest := trimmed[idx+len("```json"):]
		if end := strings.Index(rest, "```"); end >= 0 {
			return strings.TrimSpace(rest[:end])
		}
		return strings.TrimSpace(rest)
	}
	if idx := strings.Index(trimmed, "```"); idx >= 0 {
		rest := trimmed[idx+len("```"):]
		if end := strings.Index(rest, "```"); end >= 0 {
			return strings.TrimSpace(rest[:end])
		}
		return strings.TrimSpace(rest)
	}
	return trimmed
}

// parseReply parses a backend's raw text into findings and a done flag. A
// malformed or non-JSON reply is not an error at this boundary: it yields an
// empty findings list and done=false, with the raw text preserved by the
// caller.
func parseReply(text string) (findings []models.Finding, done bool, ok bool) {
	body := stripCodeFence(text)
	var payload replyPayload
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		return nil, false, false
	}
	out := make([]models.Finding, 0, len(payload.Findings))
	for _, f := range payload.Findings {
		out = append(out, models.Finding{
			File:        f.File,
			Line:        f.Line,
			Category:    models.Category(f.Category),
			Description: f.Description,
			Severity:    models.Severity(f.Severity),
			Suggestion:  f.Suggestion,
		})
	}
	return out, payload.Done, true
}
