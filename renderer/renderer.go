// Package renderer renders import and reconciliation reports as markdown.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"
)

//go:embed templates/*.md
var templates embed.FS

// ReconcileRenderOptions holds configuration for rendering a reconciliation report.
type ReconcileRenderOptions struct {
	SkipUnmatched bool // Do not list the transactions left unmatched.
}

// RenderReconciliation renders a Reconciliation to a markdown string.
func RenderReconciliation(r *Reconciliation, opts ReconcileRenderOptions) string {
	partials := map[string]string{
		"reconcile_summary":   "reconcile_summary.md",
		"reconcile_matches":   "reconcile_matches.md",
		"reconcile_transfers": "reconcile_transfers.md",
	}
	// An empty file name results in an empty template.
	if !opts.SkipUnmatched {
		partials["reconcile_unmatched"] = "reconcile_unmatched.md"
	} else {
		partials["reconcile_unmatched"] = ""
	}
	return renderTemplate("reconcile", "reconcile.md", partials, r)
}

// renderTemplate is a generic utility to render a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, "templates/"+mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Funcs(template.FuncMap{"cell": cell}).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		var content []byte
		if file != "" {
			var readErr error
			content, readErr = fs.ReadFile(templates, "templates/"+file)
			if readErr != nil {
				return fmt.Sprintf("error reading partial template %q: %v", file, readErr)
			}
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}
