// Package specs defines the catalog of optional output specifications.
//
// A specification is a short clause appended to a job prompt that constrains
// the shape of the model's answer (add comments, add docstrings, answer in
// Japanese, ...). The catalog is static: it is defined at process start and
// never mutated. Callers resolve externally supplied names with Resolve and
// get the clause text with Clause.
package specs

import "fmt"

// Specification identifies one catalog entry. The string value is the
// external name used by the presentation layer; matches are case-sensitive.
type Specification string

const (
	// Comment asks for an explanatory comment on the generated code.
	Comment Specification = "COMMENT"
	// Docstring asks for NumPy-style docstrings on functions and classes.
	Docstring Specification = "DOCSTRING"
	// TypeAnnotation asks for type annotations on the generated code.
	TypeAnnotation Specification = "TYPE_ANNOTATION"
	// NoNaturalLangs forbids any output that is not the code itself.
	NoNaturalLangs Specification = "NO_NATURAL_LANGS"
	// WriteInJapanese asks for all commentary to be written in Japanese.
	WriteInJapanese Specification = "WRITE_IN_JAPANESE"
)

// clauses holds the clause text injected into the prompt for each entry.
// The wording is deliberate: the model sometimes ignores a politely phrased
// specification, so some clauses use a very strong tone.
var clauses = map[Specification]string{
	Comment:         "add a comment to the code to explain what it does, to make it easier to understand.",
	Docstring:       "add a docstring to each functions and classes in **NUMPY STYLE**. You must write NUMPY STYLE DocString, NEVER Google style.",
	TypeAnnotation:  "add type annotations to the code. You can suppose that the code is written in Python 3.10.",
	NoNaturalLangs:  "**YOU MUST NOT OUTPUT ANYTHING ELSE THAT ARE NOT RELATED TO THE CODE ITSELF.**",
	WriteInJapanese: "write the entire comment and explanation in Japanese. In addition, you MUST NOT repeat user's input in Japanese.",
}

// ordered lists the catalog in declaration order. UI listings and tests rely
// on this order being stable.
var ordered = []Specification{
	Comment,
	Docstring,
	TypeAnnotation,
	NoNaturalLangs,
	WriteInJapanese,
}

// UnknownSpecificationError reports an externally supplied specification
// name that is not in the catalog.
type UnknownSpecificationError struct {
	Name string
}

func (e *UnknownSpecificationError) Error() string {
	return fmt.Sprintf("unknown specification %q", e.Name)
}

// Resolve maps an external name to its catalog entry. It returns
// *UnknownSpecificationError if the name is not a defined variant.
func Resolve(name string) (Specification, error) {
	spec := Specification(name)
	if _, ok := clauses[spec]; !ok {
		return "", &UnknownSpecificationError{Name: name}
	}
	return spec, nil
}

// ResolveAll maps a list of external names to catalog entries, preserving
// order. It fails on the first unknown name.
func ResolveAll(names []string) ([]Specification, error) {
	if len(names) == 0 {
		return nil, nil
	}
	out := make([]Specification, 0, len(names))
	for _, name := range names {
		spec, err := Resolve(name)
		if err != nil {
			return nil, err
		}
		out = append(out, spec)
	}
	return out, nil
}

// Clause returns the prompt clause for the entry. Entries constructed
// through Resolve always have a clause; the empty string is returned only
// for values that bypassed the catalog.
func (s Specification) Clause() string {
	return clauses[s]
}

// String returns the external name.
func (s Specification) String() string {
	return string(s)
}

// All returns the catalog entries in declaration order. The returned slice
// is a copy; mutating it does not affect the catalog.
func All() []Specification {
	out := make([]Specification, len(ordered))
	copy(out, ordered)
	return out
}
