package jobs

import (
	"embed"
	"fmt"
	"text/template"
)

//go:embed templates/*.tpl.md
var templateFS embed.FS

// templateData is the value rendered into a job template. Specs is the
// pre-rendered specification section (empty when no specifications were
// selected); the remaining fields come straight from Params.
type templateData struct {
	Specs        string
	Requirements string
	CodeLang     string
	InputType    string
	OutputType   string
}

// jobTemplates holds the parsed instruction template for every job, loaded
// once at package initialization. The templates are embedded assets, so a
// missing or malformed file is a programmer error, not a runtime condition.
var jobTemplates = mustLoadTemplates()

func mustLoadTemplates() map[Job]*template.Template {
	loaded := make(map[Job]*template.Template, len(jobTable))
	for job, spec := range jobTable {
		content, err := templateFS.ReadFile(spec.templateFile)
		if err != nil {
			panic(fmt.Sprintf("failed to read job template %s: %v", spec.templateFile, err))
		}
		tmpl, err := template.New(spec.templateFile).Parse(string(content))
		if err != nil {
			panic(fmt.Sprintf("failed to parse job template %s: %v", spec.templateFile, err))
		}
		loaded[job] = tmpl
	}
	return loaded
}
