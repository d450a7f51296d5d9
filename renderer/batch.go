package renderer

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/etnz/recon"
	md "github.com/nao1215/markdown"
)

// BatchMarkdown renders an import batch: its transactions, then the rows
// that failed and the rows skipped as duplicates.
func BatchMarkdown(source string, b *recon.ImportBatch) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Import of %s", source))
	doc.PlainText(fmt.Sprintf("Read as %s (%s): %d transactions, %d errors, %d duplicates.",
		b.Institution, b.Parser, b.Len(), len(b.Errors), len(b.Duplicates)))

	if b.Len() > 0 {
		doc.H2("Transactions")
		rows := make([][]string, 0, b.Len())
		for _, tx := range b.Transactions {
			rows = append(rows, []string{
				strconv.Itoa(tx.Row),
				tx.Date.String(),
				cell(tx.Description),
				amount(tx.Amount),
				cell(tx.AccountNumber),
				string(tx.Activity),
			})
		}
		doc.Table(md.TableSet{
			Alignment: []md.TableAlignment{md.AlignRight, md.AlignLeft, md.AlignLeft, md.AlignRight, md.AlignLeft, md.AlignLeft},
			Header:    []string{"Row", "Date", "Description", "Amount", "Account", "Activity"},
			Rows:      rows,
		})
	}

	if len(b.Errors) > 0 {
		doc.H2("Errors")
		rows := make([][]string, 0, len(b.Errors))
		for _, e := range b.Errors {
			rows = append(rows, []string{strconv.Itoa(e.Row), e.Field, cell(e.Err.Error())})
		}
		doc.Table(md.TableSet{Header: []string{"Row", "Field", "Error"}, Rows: rows})
	}

	if len(b.Duplicates) > 0 {
		doc.H2("Duplicates")
		rows := make([][]string, 0, len(b.Duplicates))
		for _, d := range b.Duplicates {
			rows = append(rows, []string{strconv.Itoa(d.Row), shortID(d.ImportID), string(d.Scope)})
		}
		doc.Table(md.TableSet{Header: []string{"Row", "Import", "Seen in"}, Rows: rows})
	}

	return doc.String()
}

// DetectionMarkdown renders the confidence of every parser for a source.
func DetectionMarkdown(source string, scores []recon.Score, chosen string) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Format of %s", source))
	if chosen == "" {
		doc.PlainText("No parser recognizes this statement.")
	} else {
		doc.PlainText(fmt.Sprintf("Read by %s.", chosen))
	}
	doc.H2("Confidence")
	rows := make([][]string, 0, len(scores))
	for _, s := range scores {
		name := s.Parser
		if name == chosen {
			name = md.Bold(name)
		}
		rows = append(rows, []string{name, fmt.Sprintf("%.2f", s.Confidence)})
	}
	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{"Parser", "Confidence"},
		Rows:      rows,
	})
	return doc.String()
}
