// Package looprunner implements the Analysis Loop: a per-smell, Ralph-style
// iterative controller that fans out to external static analyzers, composes
// a focused prompt, drives the LLM Router, normalizes and category-validates
// findings, and decides when a pass is done.
package looprunner

import "github.com/aa-workflow/slopscan/pkg/models"

// Descriptors is the fixed set of analysis loops, keyed by internal name.
// Every field here is part of the system's contract: the exact primary
// category, allowed-category set, pre-filter tools, and iteration cap for
// each loop must match this table.
var Descriptors = map[string]models.LoopDescriptor{
	"leaky": {
		Name: "leaky", DisplayName: "LEAKY", Task: "memory_leak_analysis",
		PrimaryCategory:   models.CategoryMemoryLeaks,
		AllowedCategories: []models.Category{models.CategoryMemoryLeaks},
		Description:       "Finds resources and allocations that are acquired but never released.",
		FastTools:         []string{"radon"},
		MaxIterations:     5,
		PromptTemplate: `You are hunting for memory leaks. Look specifically for:
1. File handles, sockets, or database connections opened but never closed
2. Caches or dictionaries that grow unbounded with no eviction policy
3. Event listeners or callbacks registered but never unregistered
4. Circular references that prevent garbage collection where it matters
5. Large objects held in module-level or class-level state past their use
6. Background threads or tasks that are started but never joined or cancelled
7. Context managers bypassed in favor of manual acquire/release that can skip the release on an exception path

Ignore every other kind of defect. A finding here must point at a concrete
acquire site with no matching release on some code path.`,
	},
	"zombie": {
		Name: "zombie", DisplayName: "ZOMBIE", Task: "dead_code_analysis",
		PrimaryCategory: models.CategoryDeadCode,
		AllowedCategories: []models.Category{
			models.CategoryDeadCode, models.CategoryUnusedImports,
			models.CategoryUnusedVariables, models.CategoryUnreachableCode,
		},
		Description:   "Finds code that can never execute or is never referenced.",
		FastTools:     []string{"vulture"},
		MaxIterations: 3,
		PromptTemplate: `You are hunting for dead code. Look specifically for:
1. Functions, methods, or classes defined but never called or instantiated anywhere
2. Imports that are never referenced in the file that imports them
3. Local variables assigned but never read afterward
4. Branches that can never be reached (conditions that are always false, code after an unconditional return)
5. Commented-out blocks of code left behind instead of removed

Ignore style, complexity, and duplication. A finding here must name the
specific symbol or branch and why it is unreachable or unused.`,
	},
	"racer": {
		Name: "racer", DisplayName: "RACER", Task: "race_condition_analysis",
		PrimaryCategory:   models.CategoryRaceConditions,
		AllowedCategories: []models.Category{models.CategoryRaceConditions},
		Description:       "Finds unsynchronized access to shared mutable state.",
		FastTools:         nil,
		MaxIterations:     5,
		PromptTemplate: `You are hunting for race conditions. Look specifically for:
1. Shared mutable state (module-level variables, singletons, shared maps) read and written from more than one concurrent path without synchronization
2. Check-then-act sequences on shared state that are not atomic
3. Lazy initialization of shared resources without a lock or idempotency guarantee
4. Iteration over a shared collection concurrently with mutation of that collection

Ignore every other kind of defect. A finding here must identify the shared
state and the two (or more) concurrent access paths that race.`,
	},
	"ghost": {
		Name: "ghost", DisplayName: "GHOST", Task: "hallucinated_import_analysis",
		PrimaryCategory: models.CategoryHallucinatedImports,
		AllowedCategories: []models.Category{
			models.CategoryHallucinatedImports, models.CategoryUnusedImports,
		},
		Description:   "Finds imports of packages, modules, or symbols that do not exist.",
		FastTools:     []string{"slop-detector"},
		MaxIterations: 2,
		PromptTemplate: `You are hunting for hallucinated imports: references to packages,
modules, or symbols that are plausible-sounding but do not actually exist in
the dependency manifest or standard library. Cross-check every import
statement against what is actually declared as a dependency. Ignore
unused-but-real imports unless they also happen to be hallucinated.`,
	},
	"copycat": {
		Name: "copycat", DisplayName: "COPYCAT", Task: "duplication_analysis",
		PrimaryCategory:   models.CategoryCodeDuplication,
		AllowedCategories: []models.Category{models.CategoryCodeDuplication},
		Description:       "Finds near-identical code blocks that should be a shared abstraction.",
		FastTools:         []string{"jscpd"},
		MaxIterations:     2,
		PromptTemplate: `You are hunting for duplicated code: blocks of logic repeated
across two or more locations with only superficial differences (variable
names, literal values). A finding must name every location the duplicate
appears and describe the shared abstraction that would remove the
duplication.`,
	},
	"sloppy": {
		Name: "sloppy", DisplayName: "SLOPPY", Task: "ai_slop_analysis",
		PrimaryCategory: models.CategoryAISlop,
		AllowedCategories: []models.Category{
			models.CategoryAISlop, models.CategoryPlaceholderCode, models.CategoryDocstringInflation,
		},
		Description:   "Finds placeholder code, inflated docstrings, and other signs of unfinished or padded generated code.",
		FastTools:     []string{"slop-detector"},
		MaxIterations: 3,
		PromptTemplate: `You are hunting for AI-generated filler. Look specifically for:
1. Placeholder implementations (TODO stubs, "pass # implement later", functions that only raise NotImplementedError where real logic is expected)
2. Docstrings or comments that are disproportionately long relative to what the code does, padded with generic boilerplate
3. Buzzword-heavy naming or comments that describe intent without substance

A finding must point at the specific function or block and state what is
missing or padded.`,
	},
	"tangled": {
		Name: "tangled", DisplayName: "TANGLED", Task: "complexity_analysis",
		PrimaryCategory:   models.CategoryComplexity,
		AllowedCategories: []models.Category{models.CategoryComplexity},
		Description:       "Finds functions whose branching complexity has grown past what a reader can hold in their head.",
		FastTools:         []string{"radon", "mypy"},
		MaxIterations:     4,
		PromptTemplate: `You are hunting for excessive cyclomatic complexity. Look for
functions with deep nesting, long branching chains, or many independent
conditions combined in one body. A finding must name the function and
describe a concrete decomposition (extracted helper, early return, lookup
table) that would reduce its complexity.`,
	},
	"leaker": {
		Name: "leaker", DisplayName: "LEAKER", Task: "security_analysis",
		PrimaryCategory:   models.CategorySecurity,
		AllowedCategories: []models.Category{models.CategorySecurity},
		Description:       "Finds exploitable security defects.",
		FastTools:         []string{"bandit"},
		MaxIterations:     3,
		PromptTemplate: `You are hunting for security vulnerabilities. Look specifically
for: injection (SQL, command, template), hardcoded credentials or secrets,
insecure deserialization, missing authorization checks on sensitive
operations, and use of known-broken cryptographic primitives. A finding must
describe a concrete exploit scenario, not a theoretical best-practice
deviation.`,
	},
	"swallower": {
		Name: "swallower", DisplayName: "SWALLOWER", Task: "exception_handling_analysis",
		PrimaryCategory: models.CategoryExceptionHandling,
		AllowedCategories: []models.Category{
			models.CategoryExceptionHandling, models.CategoryBareExcept, models.CategoryEmptyExcept,
		},
		Description:   "Finds exception handlers that silently discard errors.",
		FastTools:     []string{"ruff"},
		MaxIterations: 3,
		PromptTemplate: `You are hunting for swallowed exceptions. Look specifically for:
1. Bare except clauses with no type filter
2. Exception handlers whose body is a no-op (pass, or a comment only)
3. Handlers that log at a level too low to ever be noticed, then continue as if nothing happened

A finding must name the handler and what error condition it is hiding.`,
	},
	"drifter": {
		Name: "drifter", DisplayName: "DRIFTER", Task: "verbosity_analysis",
		PrimaryCategory: models.CategoryVerbosity,
		AllowedCategories: []models.Category{
			models.CategoryVerbosity, models.CategoryStyleIssues,
		},
		Description:   "Finds code that has drifted from the codebase's established conventions or is needlessly verbose.",
		FastTools:     nil,
		MaxIterations: 3,
		PromptTemplate: `You are hunting for verbosity and style drift: code that
restates the obvious, over-parameterizes for no caller, or diverges from a
pattern used consistently elsewhere in the codebase. A finding must contrast
the drifted code with the established convention it diverges from.`,
	},
}

// PriorityOrder is the fixed sequence the Orchestrator runs loops in.
var PriorityOrder = []string{
	"leaker", "ghost", "racer", "leaky", "swallower",
	"zombie", "tangled", "copycat", "sloppy", "drifter",
}
