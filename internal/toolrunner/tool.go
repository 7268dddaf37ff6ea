// Package toolrunner invokes installed external static analyzers on a path
// and parses their output into normalized findings. It never implements an
// analyzer itself; it only knows how to discover, run, and interpret the
// ones named in the static table below.
package toolrunner

import "time"

// languageAny marks a tool that applies regardless of file extension.
const languageAny = ""

// toolSpec is the static, compile-time configuration for one external
// analyzer: its invocation argv, its availability-check argv, the languages
// it applies to (empty slice with languageAny meaning "any"), the categories
// it detects, and its default timeout.
type toolSpec struct {
	Name       string
	Command    []string
	CheckCmd   []string
	Languages  []string // empty means "any"
	Detects    []string
	Timeout    time.Duration
}

// appliesTo reports whether the tool applies to a file written in language.
func (t toolSpec) appliesTo(language string) bool {
	if len(t.Languages) == 0 {
		return true
	}
	for _, l := range t.Languages {
		if l == language {
			return true
		}
	}
	return false
}

// detectsCategory reports whether the tool's Detects list names category.
func (t toolSpec) detectsCategory(category string) bool {
	for _, d := range t.Detects {
		if d == category {
			return true
		}
	}
	return false
}

// extensionLanguage maps a file extension to the language tag used by
// toolSpec.Languages, mirroring the original service's EXTENSION_MAP.
var extensionLanguage = map[string]string{
	".py":  "python",
	".ts":  "typescript",
	".tsx": "tsx",
	".js":  "javascript",
	".jsx": "jsx",
}

// tools is the static table of every analyzer slopscan knows how to run.
// Preserving the exact argv, timeouts, and detected categories here is part
// of the system's contract — callers rely on these mappings being stable.
var tools = map[string]toolSpec{
	"slop-detector": {
		Name:     "slop-detector",
		Command:  []string{"slop-detector", "--format", "json"},
		CheckCmd: []string{"slop-detector", "--version"},
		Languages: []string{"python"},
		Detects:  []string{"placeholder_code", "buzzword_inflation", "docstring_inflation", "hallucinated_deps"},
		Timeout:  300 * time.Second,
	},
	"karpeslop": {
		Name:     "karpeslop",
		Command:  []string{"karpeslop", "--json"},
		CheckCmd: []string{"karpeslop", "--version"},
		Languages: []string{"typescript", "javascript", "tsx", "jsx"},
		Detects:  []string{"hallucinated_imports", "any_type_abuse", "vibe_coding"},
		Timeout:  60 * time.Second,
	},
	"jscpd": {
		Name:     "jscpd",
		Command:  []string{"jscpd", "--reporters", "json", "--silent"},
		CheckCmd: []string{"jscpd", "--version"},
		Languages: nil, // applies to any language
		Detects:  []string{"code_duplication"},
		Timeout:  300 * time.Second,
	},
	"radon": {
		Name:     "radon",
		Command:  []string{"radon", "cc", "-j"},
		CheckCmd: []string{"radon", "--version"},
		Languages: []string{"python"},
		Detects:  []string{"complexity"},
		Timeout:  60 * time.Second,
	},
	"vulture": {
		Name:     "vulture",
		Command:  []string{"vulture"},
		CheckCmd: []string{"vulture", "--version"},
		Languages: []string{"python"},
		Detects:  []string{"dead_code"},
		Timeout:  300 * time.Second,
	},
	"mypy": {
		Name:     "mypy",
		Command:  []string{"mypy", "--no-error-summary"},
		CheckCmd: []string{"mypy", "--version"},
		Languages: []string{"python"},
		Detects:  []string{"type_issues"},
		Timeout:  300 * time.Second,
	},
	"bandit": {
		Name:     "bandit",
		Command:  []string{"bandit", "-f", "json", "-r"},
		CheckCmd: []string{"bandit", "--version"},
		Languages: []string{"python"},
		Detects:  []string{"security"},
		Timeout:  60 * time.Second,
	},
	"ruff": {
		Name:     "ruff",
		Command:  []string{"ruff", "check", "--output-format", "json"},
		CheckCmd: []string{"ruff", "--version"},
		Languages: []string{"python"},
		Detects:  []string{"style_issues"},
		Timeout:  30 * time.Second,
	},
}
