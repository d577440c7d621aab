package commands

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// templateFuncs provides utility functions for templates.
var templateFuncs = sprig.TxtFuncMap()

// TemplateData is what command templates see.
type TemplateData struct {
	Player string         // Session's player id
	Room   string         // Short description of the current room
	Verb   string         // Verb as typed
	Args   []string       // Raw arguments
	Text   string         // Arguments joined with spaces
	Inputs map[string]any // Parsed inputs keyed by name
}

// compileTemplate parses tmplStr once so that broken templates fail at load.
func compileTemplate(tmplStr string) (*template.Template, error) {
	tmpl, err := template.New("").Funcs(templateFuncs).Parse(tmplStr)
	if err != nil {
		return nil, fmt.Errorf("parsing template: %w", err)
	}
	return tmpl, nil
}

func execute(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	err := tmpl.Execute(&buf, data)
	if err != nil {
		return "", fmt.Errorf("executing template: %w", err)
	}
	return buf.String(), nil
}
