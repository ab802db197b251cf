// Package jobs defines the closed catalog of code-assistance jobs and
// composes their instruction prompts.
//
// A job names one operation the assistant can perform on code (refactor,
// explain, check, add a feature, implement, transpile). Each job owns a
// prompt template and a flag saying whether the job consumes an existing
// block of source code. Both live in a static table that is read-only after
// initialization; looking up an unknown job is always an error, never a
// silent default.
package jobs

import (
	"fmt"
	"strings"
)

// Job identifies one catalog entry. The string value is the external name
// used by the presentation layer; matches are case-sensitive.
type Job string

const (
	// Refactoring rewrites existing code for clarity.
	Refactoring Job = "REFACTORING"
	// Explaining describes what existing code does.
	Explaining Job = "EXPLAINING"
	// Checking looks for potential issues in existing code.
	Checking Job = "CHECKING"
	// Adding extends existing code with a new feature.
	Adding Job = "ADDING"
	// Implementing writes new code from requirements alone.
	Implementing Job = "IMPLEMENTING"
	// Transpiling rewrites existing code in another language.
	Transpiling Job = "TRANSPILING"
)

// jobSpec carries the static data owned by each job variant.
type jobSpec struct {
	templateFile string
	description  string
	required     []string
	requiresCode bool
}

// jobTable is the catalog. Every variant must have a template file and a
// requires-code flag; TestCatalogComplete enforces this against All.
var jobTable = map[Job]jobSpec{
	Refactoring: {
		templateFile: "templates/refactoring.tpl.md",
		description:  "Refactor the code to make it more readable.",
		requiresCode: true,
	},
	Explaining: {
		templateFile: "templates/explaining.tpl.md",
		description:  "Let LLM explain the code.",
		requiresCode: true,
	},
	Checking: {
		templateFile: "templates/checking.tpl.md",
		description:  "Let LLM check the issues in the code.",
		requiresCode: true,
	},
	Adding: {
		templateFile: "templates/adding.tpl.md",
		description:  "Add a new feature to the code, based on the input requirements and code.",
		required:     []string{FieldRequirements},
		requiresCode: true,
	},
	Implementing: {
		templateFile: "templates/implementing.tpl.md",
		description:  "Implement a new feature to the code, based on the input requirements.",
		required:     []string{FieldRequirements, FieldCodeLang},
		requiresCode: false,
	},
	Transpiling: {
		templateFile: "templates/transpiling.tpl.md",
		description:  "Transpile the code to a different language.",
		required:     []string{FieldCodeLang},
		requiresCode: true,
	},
}

// ordered lists the catalog in declaration order for deterministic listings.
var ordered = []Job{
	Refactoring,
	Explaining,
	Checking,
	Adding,
	Implementing,
	Transpiling,
}

// UnsupportedJobError reports an externally supplied job name that is not in
// the catalog. The message lists the valid names.
type UnsupportedJobError struct {
	Name string
}

func (e *UnsupportedJobError) Error() string {
	names := make([]string, len(ordered))
	for i, job := range ordered {
		names[i] = string(job)
	}
	return fmt.Sprintf("unsupported job %q: job must be one of %s", e.Name, strings.Join(names, ", "))
}

// Parse maps an external name to its catalog entry. It returns
// *UnsupportedJobError if the name is not a defined variant.
func Parse(name string) (Job, error) {
	job := Job(name)
	if _, ok := jobTable[job]; !ok {
		return "", &UnsupportedJobError{Name: name}
	}
	return job, nil
}

// RequiresCode reports whether the job consumes an existing source-code
// block. It returns *UnsupportedJobError for unrecognized jobs.
func RequiresCode(job Job) (bool, error) {
	spec, ok := jobTable[job]
	if !ok {
		return false, &UnsupportedJobError{Name: string(job)}
	}
	return spec.requiresCode, nil
}

// String returns the external name.
func (j Job) String() string {
	return string(j)
}

// Description returns a short human description of the job for front-ends.
// Unknown jobs yield the empty string; use Parse to validate names first.
func (j Job) Description() string {
	return jobTable[j].description
}

// All returns the catalog entries in declaration order. The returned slice
// is a copy; mutating it does not affect the catalog.
func All() []Job {
	out := make([]Job, len(ordered))
	copy(out, ordered)
	return out
}
