package renderer

import (
	"bytes"
	"io"
	"strings"

	"github.com/etnz/recon"
	md "github.com/nao1215/markdown"
)

// AdaptersMarkdown lists the institution adapters, the built-in ones first
// then the ones declared in configuration.
func AdaptersMarkdown(builtin, configured []*recon.Adapter) string {
	var b strings.Builder
	var buf bytes.Buffer
	b.WriteString(md.NewMarkdown(&buf).H1("Adapters").
		PlainText("Institution exports recognized before the OFX and the generic delimited parsers.").
		H2("Built-in").
		Table(adapterTable(builtin)).
		String())
	b.WriteString("\n")

	ConditionalBlock(&b, func(w io.Writer) bool {
		var buf bytes.Buffer
		io.WriteString(w, "\n"+md.NewMarkdown(&buf).H2("Configured").Table(adapterTable(configured)).String()+"\n")
		return len(configured) > 0
	})
	return b.String()
}

func adapterTable(adapters []*recon.Adapter) md.TableSet {
	rows := make([][]string, 0, len(adapters))
	for _, a := range adapters {
		kind := "text"
		if a.Spreadsheet {
			kind = "spreadsheet"
		}
		hint := a.DateHint.String()
		if hint == "" {
			hint = "any"
		}
		rows = append(rows, []string{a.Institution, kind, hint, a.Currency, cell(strings.Join(a.Signatures, ", "))})
	}
	return md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft,
			md.AlignLeft,
			md.AlignLeft,
			md.AlignLeft,
			md.AlignLeft,
		},
		Header: []string{"Institution", "Format", "Dates", "Currency", "Signatures"},
		Rows:   rows,
	}
}
