// Package llmrouter discovers usable command-line LLM backends, selects one
// by priority, invokes it as a subprocess with a timeout and guaranteed
// process cleanup, retries across backends, and parses the structured JSON
// reply. It is always constructor-injected — unlike the service this was
// ported from, there is no process-wide singleton router.
package llmrouter

import "time"

// backendSpec is the static, compile-time configuration for one LLM CLI.
type backendSpec struct {
	Name           string
	Command        []string
	CheckCmd       []string
	DefaultTimeout time.Duration
}

// priority is the fixed order backends are attempted in when the caller has
// no preference.
var priority = []string{"claude", "gemini", "codex", "opencode"}

var backends = map[string]backendSpec{
	"claude": {
		Name:           "claude",
		Command:        []string{"claude", "--print", "--dangerously-skip-permissions"},
		CheckCmd:       []string{"claude", "--version"},
		DefaultTimeout: 120 * time.Second,
	},
	"gemini": {
		Name:           "gemini",
		Command:        []string{"gemini", "--model", "gemini-2.5-pro", "--output-format", "text"},
		CheckCmd:       []string{"gemini", "--version"},
		DefaultTimeout: 60 * time.Second,
	},
	"codex": {
		Name:           "codex",
		Command:        []string{"codex", "--quiet", "--approval-mode", "full-auto"},
		CheckCmd:       []string{"codex", "--version"},
		DefaultTimeout: 120 * time.Second,
	},
	"opencode": {
		Name:           "opencode",
		Command:        []string{"opencode", "--non-interactive"},
		CheckCmd:       []string{"opencode", "--version"},
		DefaultTimeout: 120 * time.Second,
	},
}
