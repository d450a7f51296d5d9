package renderer

import (
	"errors"
	"strings"
	"testing"

	"github.com/etnz/recon"
	"github.com/etnz/recon/date"
	"github.com/google/go-cmp/cmp"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// outline returns the headings of a markdown document and the number of
// body rows of each table.
func outline(t *testing.T, doc string) (headings []string, tables []int) {
	t.Helper()
	content := []byte(doc)
	p := goldmark.New(goldmark.WithExtensions(extension.Table)).Parser()
	root := p.Parse(text.NewReader(content))
	ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := n.(type) {
		case *ast.Heading:
			headings = append(headings, string(n.Lines().Value(content)))
		case *east.Table:
			rows := 0
			for c := n.FirstChild(); c != nil; c = c.NextSibling() {
				if _, ok := c.(*east.TableRow); ok {
					rows++
				}
			}
			tables = append(tables, rows)
		}
		return ast.WalkContinue, nil
	})
	return headings, tables
}

func tx(id, on, desc, amount string) recon.Transaction {
	m, err := recon.ParseMoney(amount, "USD")
	if err != nil {
		panic(err)
	}
	return recon.Transaction{ImportID: id, Date: date.MustParse(on), Description: desc, Amount: m, AccountNumber: "A"}
}

func TestBatchMarkdown(t *testing.T) {
	b := &recon.ImportBatch{
		Institution:  "chase",
		Parser:       "chase",
		Transactions: []recon.Transaction{tx("1111-2", "2024-03-02", "WIRE TO SAVINGS", "-500.00"), tx("3333-4", "2024-03-03", "COFFEE", "-4.50")},
		Errors:       []*recon.RowParseError{{Row: 4, Field: "date", Err: errors.New("unparseable date")}},
	}
	out := BatchMarkdown("march.csv", b)
	headings, tables := outline(t, out)
	if diff := cmp.Diff([]string{"Import of march.csv", "Transactions", "Errors"}, headings); diff != "" {
		t.Errorf("BatchMarkdown() headings mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{2, 1}, tables); diff != "" {
		t.Errorf("BatchMarkdown() table rows mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(out, "-$500.00") {
		t.Errorf("BatchMarkdown() does not show amounts in their currency:\n%s", out)
	}
}

func TestDetectionMarkdown(t *testing.T) {
	out := DetectionMarkdown("x.csv", []recon.Score{{Parser: "chase", Confidence: 0.95}, {Parser: "delimited", Confidence: 0.8}}, "chase")
	headings, tables := outline(t, out)
	if diff := cmp.Diff([]string{"Format of x.csv", "Confidence"}, headings); diff != "" {
		t.Errorf("DetectionMarkdown() headings mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{2}, tables); diff != "" {
		t.Errorf("DetectionMarkdown() table rows mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(out, "0.95") {
		t.Errorf("DetectionMarkdown() = %s", out)
	}
}

func TestRenderReconciliation(t *testing.T) {
	b := &recon.ImportBatch{Transactions: []recon.Transaction{
		tx("1111-a", "2024-03-02", "WIRE TO SAVINGS", "-500.00"),
		tx("2222-b", "2024-03-03", "FROM CHECKING", "500.00"),
		tx("3333-c", "2024-03-04", "COFFEE", "-4.50"),
		tx("4444-d", "2024-03-05", "RENT", "-1200.00"),
	}}
	b.Transactions[1].AccountNumber = "B"
	matches := []recon.MatchProposal{{ImportID: "4444-d", EntryID: "e9", Basis: recon.Exact, Confidence: 1}}
	transfers := []recon.TransferProposal{{Out: "1111-a", In: "2222-b", OutAccount: "A", InAccount: "B", Amount: b.Transactions[1].Amount, DateDelta: 1, Confidence: 0.9}}
	r := NewReconciliation("march.csv", b, matches, transfers)

	tests := []struct {
		name     string
		opts     ReconcileRenderOptions
		headings []string
		tables   []int
	}{
		{"full", ReconcileRenderOptions{}, []string{"Reconciliation of march.csv", "Matches", "Transfers", "Unmatched"}, []int{1, 1, 1}},
		{"skip unmatched", ReconcileRenderOptions{SkipUnmatched: true}, []string{"Reconciliation of march.csv", "Matches", "Transfers"}, []int{1, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := RenderReconciliation(r, tt.opts)
			headings, tables := outline(t, out)
			if diff := cmp.Diff(tt.headings, headings); diff != "" {
				t.Errorf("RenderReconciliation() headings mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.tables, tables); diff != "" {
				t.Errorf("RenderReconciliation() table rows mismatch (-want +got):\n%s\n%s", diff, out)
			}
		})
	}
	if len(r.Unmatched) != 1 || r.Unmatched[0].ID != "3333" {
		t.Errorf("NewReconciliation().Unmatched = %v, want 3333 only", r.Unmatched)
	}
}

func TestRenderReconciliationEmpty(t *testing.T) {
	out := RenderReconciliation(NewReconciliation("empty.csv", &recon.ImportBatch{}, nil, nil), ReconcileRenderOptions{})
	headings, tables := outline(t, out)
	if diff := cmp.Diff([]string{"Reconciliation of empty.csv"}, headings); diff != "" {
		t.Errorf("RenderReconciliation() headings mismatch (-want +got):\n%s", diff)
	}
	if len(tables) != 0 {
		t.Errorf("RenderReconciliation() has %d tables, want none", len(tables))
	}
}

func TestAdaptersMarkdown(t *testing.T) {
	builtin := recon.BuiltinAdapters()
	tests := []struct {
		name       string
		configured []*recon.Adapter
		headings   []string
		tables     []int
	}{
		{"builtin only", nil, []string{"Adapters", "Built-in"}, []int{len(builtin)}},
		{"configured", []*recon.Adapter{{Institution: "acme", Signatures: []string{"ACME | Bank"}}}, []string{"Adapters", "Built-in", "Configured"}, []int{len(builtin), 1}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out := AdaptersMarkdown(builtin, tc.configured)
			headings, tables := outline(t, out)
			if diff := cmp.Diff(tc.headings, headings); diff != "" {
				t.Errorf("AdaptersMarkdown() headings mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tc.tables, tables); diff != "" {
				t.Errorf("AdaptersMarkdown() table rows mismatch (-want +got):\n%s\n%s", diff, out)
			}
		})
	}
}
