package jobs

import (
	"bytes"
	"fmt"
	"strings"

	"codeassist/pkg/specs"
)

// specHeader introduces the bulleted specification section appended to a
// job's prompt. It is emitted only when at least one specification was
// selected; an empty selection contributes nothing, not an empty header.
const specHeader = "In addition, the result must obey the specifications:"

// Compose produces the job-specific instruction text.
//
// It validates the job's required parameters before rendering, folds the
// selected specification clauses into the template, and normalizes the
// result so every line is free of leading and trailing whitespace.
// Composition is deterministic: identical inputs yield byte-identical text.
//
// Errors: *UnsupportedJobError for an unrecognized job,
// *MissingParameterError naming every absent required field.
func Compose(job Job, specifications []specs.Specification, params Params) (string, error) {
	if _, ok := jobTable[job]; !ok {
		return "", &UnsupportedJobError{Name: string(job)}
	}
	if missing := params.missingFields(job); len(missing) > 0 {
		return "", &MissingParameterError{Job: job, Fields: missing}
	}

	data := templateData{
		Specs:        specSection(specifications),
		Requirements: params.Requirements,
		CodeLang:     params.CodeLang,
		InputType:    params.InputType,
		OutputType:   params.OutputType,
	}

	var buf bytes.Buffer
	if err := jobTemplates[job].Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s template: %w", job, err)
	}

	return normalize(buf.String()), nil
}

// specSection renders the selected specifications as a bulleted list under
// specHeader, one bullet per clause, preserving selection order. An empty
// selection yields the empty string.
func specSection(selected []specs.Specification) string {
	if len(selected) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(specHeader)
	for _, spec := range selected {
		b.WriteString("\n- ")
		b.WriteString(spec.Clause())
	}
	return b.String()
}

// normalize strips leading and trailing whitespace from every line and
// drops blank lines at either end. The instruction is later embedded
// verbatim into a conversation payload that is sensitive to stray
// indentation, so this is a contract, not cosmetics. Interior blank lines
// survive as paragraph separators.
func normalize(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
