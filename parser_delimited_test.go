package recon

import (
	"testing"

	"github.com/etnz/recon/date"
)

func TestSniffDelimiter(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  rune
	}{
		{"comma", []string{"a,b,c", "1,2,3"}, ','},
		{"semicolon with decimal commas", []string{"Date;Amount", "2024-03-01;-42,10", "2024-03-02;2500,00"}, ';'},
		{"tab", []string{"a\tb", "1\t2"}, '\t'},
		{"pipe", []string{"a|b|c", "1|2|3"}, '|'},
		{"none", []string{"one", "two"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sniffDelimiter(tt.lines); got != tt.want {
				t.Errorf("sniffDelimiter(%q) = %q, want %q", tt.lines, got, tt.want)
			}
		})
	}
}

func TestDelimitedParse(t *testing.T) {
	p := &DelimitedParser{}
	st, err := p.Parse(NewSource([]byte(genericCSV), "export.csv"))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if !st.Context.DecimalComma {
		t.Error("Parse() did not detect the decimal comma")
	}
	want := ColumnMap{Date: "Date", Description: "Description", Amount: "Amount", Currency: "Currency"}
	if st.Context.Columns != want {
		t.Errorf("Parse().Context.Columns = %+v, want %+v", st.Context.Columns, want)
	}
	if len(st.Rows) != 2 {
		t.Fatalf("Parse() has %d rows, want 2", len(st.Rows))
	}

	b := mustImport(t, genericCSV, "export.csv")
	if b.Institution != "generic" || b.Parser != "delimited" {
		t.Errorf("Import() = %s/%s, want generic/delimited", b.Institution, b.Parser)
	}
	for i, w := range []string{"-42.10", "2500.00"} {
		got := b.Transactions[i].Amount
		if got.Exact() != w || got.Currency() != "EUR" {
			t.Errorf("tx[%d].Amount = %s %s, want %s EUR", i, got.Exact(), got.Currency(), w)
		}
	}
}

func TestDelimitedContext(t *testing.T) {
	content := "when|what|debit|credit\n01/03/2024|rent|1200.00|\n02/03/2024|refund||35.10\n"
	p := &DelimitedParser{Context: ImportContext{
		Institution: "mybank",
		Account:     "FR76-1",
		Currency:    "EUR",
		Columns:     ColumnMap{Date: "when", Description: "what", Debit: "debit", Credit: "credit"},
	}}
	// 01/03/2024 is ambiguous without the importer default
	im := &Importer{Parsers: Registry{p}, Seen: IDSet{}, Defaults: ImportContext{DateHint: date.EUSlash}}
	b, err := im.Import(testContext(t), NewSource([]byte(content), ""))
	if err != nil {
		t.Fatalf("Import() error: %v", err)
	}
	if len(b.Transactions) != 2 {
		t.Fatalf("Import() has %d transactions, want 2 (errors %v)", len(b.Transactions), b.Errors)
	}
	tests := []struct {
		date, amount string
	}{
		{"2024-03-01", "-1200.00"},
		{"2024-03-02", "35.10"},
	}
	for i, w := range tests {
		tx := b.Transactions[i]
		if tx.Date.String() != w.date || tx.Amount.Exact() != w.amount {
			t.Errorf("tx[%d] = %s %s, want %s %s", i, tx.Date, tx.Amount.Exact(), w.date, w.amount)
		}
		if tx.Institution != "mybank" || tx.AccountNumber != "FR76-1" || tx.Amount.Currency() != "EUR" {
			t.Errorf("tx[%d] = %s/%s/%s, want mybank/FR76-1/EUR", i, tx.Institution, tx.AccountNumber, tx.Amount.Currency())
		}
	}
}

func TestDelimitedBlankLines(t *testing.T) {
	content := "\n\nDate,Description,Amount\n\n2024-03-01,A,1.00\n,,\n2024-03-02,B,2.00\n\n"
	b := mustImport(t, content, "")
	if len(b.Transactions) != 2 || len(b.Errors) != 0 {
		t.Fatalf("Import() = %d transactions, errors %v, want 2 and none", len(b.Transactions), b.Errors)
	}
	if b.Transactions[0].Row != 5 || b.Transactions[1].Row != 7 {
		t.Errorf("Import() rows = %d, %d, want 5, 7", b.Transactions[0].Row, b.Transactions[1].Row)
	}
}

func TestDelimitedRowErrors(t *testing.T) {
	content := `Date,Description,Amount
2024-03-01,fine,1.00
2024-03-02,bad amount,1.2.3
13/13/2024,bad date,4.00
2024-03-04,missing amount,
2024-03-05,fine again,5.00
`
	b := mustImport(t, content, "")
	if len(b.Transactions) != 2 {
		t.Errorf("Import() has %d transactions, want 2", len(b.Transactions))
	}
	tests := []struct {
		row   int
		field string
	}{
		{3, "amount"},
		{4, "date"},
		{5, "amount"},
	}
	if len(b.Errors) != len(tests) {
		t.Fatalf("Import() errors = %v, want %d", b.Errors, len(tests))
	}
	for i, w := range tests {
		if e := b.Errors[i]; e.Row != w.row || e.Field != w.field {
			t.Errorf("Errors[%d] = row %d field %q, want row %d field %q", i, e.Row, e.Field, w.row, w.field)
		}
	}
}

func TestSniffDecimalComma(t *testing.T) {
	cols := ColumnMap{Amount: "a"}
	rowsOf := func(texts ...string) []RawRow {
		var rows []RawRow
		for _, s := range texts {
			rows = append(rows, RawRow{Cells: map[string]Cell{"a": TextOf(s)}})
		}
		return rows
	}
	tests := []struct {
		name  string
		texts []string
		want  bool
	}{
		{"comma", []string{"-42,10", "1.234,5"}, true},
		{"point", []string{"-42.10", "1,234.5"}, false},
		{"mixed", []string{"-42,10", "3.50"}, false},
		{"integers", []string{"1,234", "12"}, false},
		{"currency suffix", []string{"12,50 €"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sniffDecimalComma(rowsOf(tt.texts...), cols); got != tt.want {
				t.Errorf("sniffDecimalComma(%q) = %v, want %v", tt.texts, got, tt.want)
			}
		})
	}
}
