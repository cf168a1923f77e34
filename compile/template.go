package compile

import (
	"strings"
	"text/template"
)

// compileTemplate parses a transform node's template body. text/template is
// the only templating library anywhere in the reference corpus (see
// DESIGN.md); nothing in this codebase's ecosystem neighborhood ships a
// richer one, so the transform node renders with the standard library.
func compileTemplate(nodeID, body string) (*template.Template, error) {
	return template.New(nodeID).Option("missingkey=zero").Parse(body)
}

func renderTemplate(tmpl *template.Template, data map[string]any) (string, error) {
	var buf strings.Builder
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
