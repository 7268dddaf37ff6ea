package looprunner

import (
	"fmt"
	"strings"

	"github.com/aa-workflow/slopscan/pkg/models"
)

const (
	maxPromptFiles        = 50
	maxPromptHints        = 20
	maxPromptPrevFindings = 10
)

// buildPrompt assembles one iteration's full prompt: the descriptor's task
// framing, the files in scope, any fast-tool hints, what this pass has
// already found, and a fixed set of instructions. Every list is truncated so
// a large codebase or a long-running pass never blows out the prompt size.
func buildPrompt(d models.LoopDescriptor, files []string, hints []models.Finding, prevFindings []models.Finding, iteration, maxIterations int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "## Analysis Task: %s\n\n", d.DisplayName)
	b.WriteString(d.PromptTemplate)
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "## Scope\n\nIteration %d of %d.\n\n", iteration, maxIterations)

	b.WriteString("## Files to Analyze\n\n")
	writeFileList(&b, files)
	b.WriteString("\n")

	b.WriteString("## Fast Tool Hints (pre-filtered)\n\n")
	writeHintList(&b, hints)
	b.WriteString("\n")

	b.WriteString("## Previous Findings This Pass\n\n")
	writePrevFindings(&b, prevFindings)
	b.WriteString("\n")

	b.WriteString("## Instructions\n\n")
	b.WriteString(instructions)

	return b.String()
}

func writeFileList(b *strings.Builder, files []string) {
	shown := files
	truncated := 0
	if len(shown) > maxPromptFiles {
		truncated = len(shown) - maxPromptFiles
		shown = shown[:maxPromptFiles]
	}
	for _, f := range shown {
		fmt.Fprintf(b, "- %s\n", f)
	}
	if truncated > 0 {
		fmt.Fprintf(b, "- ... and %d more files\n", truncated)
	}
}

func writeHintList(b *strings.Builder, hints []models.Finding) {
	if len(hints) == 0 {
		b.WriteString("None\n")
		return
	}
	shown := hints
	truncated := 0
	if len(shown) > maxPromptHints {
		truncated = len(shown) - maxPromptHints
		shown = shown[:maxPromptHints]
	}
	for _, h := range shown {
		fmt.Fprintf(b, "- %s:%d (%s, %s): %s\n", h.File, h.Line, h.Category, h.Severity, h.Description)
	}
	if truncated > 0 {
		fmt.Fprintf(b, "- ... and %d more hints\n", truncated)
	}
}

func writePrevFindings(b *strings.Builder, prevFindings []models.Finding) {
	if len(prevFindings) == 0 {
		b.WriteString("None\n")
		return
	}
	shown := prevFindings
	if len(shown) > maxPromptPrevFindings {
		earlier := len(shown) - maxPromptPrevFindings
		fmt.Fprintf(b, "... %d earlier findings not shown\n", earlier)
		shown = shown[len(shown)-maxPromptPrevFindings:]
	}
	for _, f := range shown {
		fmt.Fprintf(b, "- %s:%d: %s\n", f.File, f.Line, f.Description)
	}
}

const instructions = `1. Report only findings in this loop's category set; do not report unrelated defects.
2. Each finding must cite a specific file and line number.
3. Do not repeat a finding already listed above under "Previous Findings This Pass".
4. Prefer fewer, well-evidenced findings over many speculative ones.
5. If you have exhausted this pass and found nothing further, set "done": true.
6. Respond with nothing but the JSON object described above: no prose before or after it.
7. If a fast tool hint looks like a false positive on inspection, do not repeat it as a finding.
`
