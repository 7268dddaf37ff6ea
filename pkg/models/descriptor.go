package models

// LoopDescriptor is static configuration for one smell category. It is code,
// not a store row: the full set is fixed at compile time (see
// internal/looprunner.Descriptors) and shared read-only across every
// Orchestrator instance.
type LoopDescriptor struct {
	Name             string
	DisplayName      string
	Task             string
	PrimaryCategory  Category
	AllowedCategories []Category
	Description      string
	FastTools        []string
	MaxIterations    int
	PromptTemplate   string
}

// Allows reports whether c is in the descriptor's allowed category set.
func (d LoopDescriptor) Allows(c Category) bool {
	for _, allowed := range d.AllowedCategories {
		if allowed == c {
			return true
		}
	}
	return false
}

// LLMBackendDescriptor is static configuration for one command-line LLM
// backend.
type LLMBackendDescriptor struct {
	Name          string
	Command       []string
	CheckCommand  []string
	DefaultTimeoutSeconds int
}
