package jobs

import (
	"fmt"
	"strings"
)

// Field names used in required-parameter validation and error reporting.
const (
	// FieldRequirements is the free-text requirements of an added or newly
	// implemented feature.
	FieldRequirements = "requirements"
	// FieldCodeLang is the target language of implemented or transpiled code.
	FieldCodeLang = "code_lang"
)

// Params carries the per-request free-text inputs consumed by the prompt
// templates. It is an ephemeral record: built by the caller for one request,
// passed by value, and never retained by the composer. Which fields are
// required depends on the job; the rest may stay empty.
type Params struct {
	// Requirements describes the feature to add (ADDING) or the code to
	// implement (IMPLEMENTING). Required by those two jobs.
	Requirements string
	// CodeLang is the target language for IMPLEMENTING and TRANSPILING.
	CodeLang string
	// InputType optionally names the desired input type for IMPLEMENTING.
	InputType string
	// OutputType optionally names the desired output type for IMPLEMENTING.
	OutputType string
}

// MissingParameterError reports job-required fields that are absent or
// blank. Fields holds every missing field name, in the job's declaration
// order, so a caller omitting both IMPLEMENTING fields learns about both at
// once.
type MissingParameterError struct {
	Job    Job
	Fields []string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("job %s is missing required parameter(s): %s", e.Job, strings.Join(e.Fields, ", "))
}

// missingFields returns the job's required fields that are absent or blank.
// A field consisting only of whitespace counts as missing.
func (p Params) missingFields(job Job) []string {
	var missing []string
	for _, field := range jobTable[job].required {
		var value string
		switch field {
		case FieldRequirements:
			value = p.Requirements
		case FieldCodeLang:
			value = p.CodeLang
		}
		if strings.TrimSpace(value) == "" {
			missing = append(missing, field)
		}
	}
	return missing
}
