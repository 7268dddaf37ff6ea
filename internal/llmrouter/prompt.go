package llmrouter

import "fmt"

// jsonContract is appended to every caller-supplied prompt. Its wording is
// part of the wire contract with every backend: changing it changes what
// every backend is asked to produce.
const jsonContract = `

## Output Format

Respond with exactly one JSON document of the shape:

{
  "findings": [
    {
      "file": "<relative path>",
      "line": <integer>,
      "category": "<category tag>",
      "description": "<what is wrong>",
      "severity": "critical"|"high"|"medium"|"low",
      "suggestion": "<actionable fix, not \"consider...\">"
    }
  ],
  "done": true|false
}

If no issues found, return: {"findings": [], "done": true}

## Category guidelines

- unused_imports: an import never referenced in the file
- unused_variables: a local variable assigned but never read
- dead_code: a function, branch, or class never reachable from any entry point
- bare_except: a catch-all exception handler with no type filter
- empty_except: an exception handler whose body is a no-op
- security: a vulnerability an attacker could exploit
- race_conditions: unsynchronized access to shared mutable state
- memory_leaks: a resource or allocation never released
`

func buildFullPrompt(task, prompt string) string {
	return fmt.Sprintf("%s%s", prompt, jsonContract)
}
