package recon

import (
	"bytes"
	"path"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/etnz/recon/date"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	xunicode "golang.org/x/text/encoding/unicode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Parser turns the content of a statement into raw rows.
//
// Detect returns a confidence in [0,1] based on the structural signals found
// in the source. Parse is total over well formed input of its own kind:
// offending rows are reported in Statement.Errors, not as an error.
type Parser interface {
	Name() string
	Detect(src *Source) float64
	Parse(src *Source) (*Statement, error)
}

// Statement is the output of a Parser.
type Statement struct {
	Context ImportContext
	Rows    []RawRow
	Errors  []*RowParseError
}

// ImportContext is what the canonicalizer knows about a statement beyond its
// rows.
type ImportContext struct {
	Institution  string
	Account      string // used when rows carry no account
	AccountName  string
	Currency     string // ISO code used when rows carry no currency
	DateHint     date.Convention
	Columns      ColumnMap
	DecimalComma bool
	// Tolerance is the minimum tolerance of the trade check, 0.01 when zero.
	Tolerance decimal.Decimal
}

// merge fills the blank fields of c with the ones in d.
func (c ImportContext) merge(d ImportContext) ImportContext {
	if c.Institution == "" {
		c.Institution = d.Institution
	}
	if c.Account == "" {
		c.Account = d.Account
	}
	if c.AccountName == "" {
		c.AccountName = d.AccountName
	}
	if c.Currency == "" {
		c.Currency = d.Currency
	}
	if c.DateHint == date.NoHint {
		c.DateHint = d.DateHint
	}
	if c.Tolerance.IsZero() {
		c.Tolerance = d.Tolerance
	}
	c.DecimalComma = c.DecimalComma || d.DecimalComma
	return c
}

// ColumnMap names the source column holding each transaction field.
// Blank fields are absent from the source.
type ColumnMap struct {
	Date        string
	Description string
	Amount      string
	Debit       string
	Credit      string
	Sign        string // DEBIT/CREDIT marker
	Account     string
	AccountName string
	OtherParty  string
	Symbol      string
	CUSIP       string
	Quantity    string
	Price       string
	Fees        string
	Activity    string
	Currency    string
}

// IsZero reports whether no column is mapped.
func (m ColumnMap) IsZero() bool { return m == ColumnMap{} }

// roles returns a pointer to each field, by role name.
func (m *ColumnMap) roles() []struct {
	name string
	col  *string
} {
	return []struct {
		name string
		col  *string
	}{
		{"date", &m.Date},
		{"amount", &m.Amount},
		{"debit", &m.Debit},
		{"credit", &m.Credit},
		{"account name", &m.AccountName},
		{"account", &m.Account},
		{"symbol", &m.Symbol},
		{"cusip", &m.CUSIP},
		{"quantity", &m.Quantity},
		{"price", &m.Price},
		{"fees", &m.Fees},
		{"activity", &m.Activity},
		{"sign", &m.Sign},
		{"currency", &m.Currency},
		{"other party", &m.OtherParty},
		{"description", &m.Description},
	}
}

// headerSynonyms lists, per role, the folded header names it is recognized by.
var headerSynonyms = map[string][]string{
	"date":         {"date", "posting date", "transaction date", "trade date", "run date", "booking date", "fecha", "datum", "date operation"},
	"description":  {"description", "transaction description", "security description", "narrative", "details", "memo", "descripcion", "concepto", "libelle", "name"},
	"amount":       {"amount", "amount ($)", "transaction amount", "importe", "montant", "value"},
	"debit":        {"debit", "debits", "withdrawal", "withdrawals", "money out", "debito", "paid out"},
	"credit":       {"credit", "credits", "deposit", "deposits", "money in", "credito", "paid in"},
	"sign":         {"debit/credit", "credit/debit", "dr/cr", "cr/dr", "debit credit indicator"},
	"account":      {"account", "account number", "account no", "account id", "cuenta"},
	"account name": {"account name"},
	"other party":  {"payee", "counterparty", "beneficiary", "merchant"},
	"symbol":       {"symbol", "ticker"},
	"cusip":        {"cusip"},
	"quantity":     {"quantity", "shares", "qty", "units"},
	"price":        {"price", "price ($)", "unit price"},
	"fees":         {"fees", "fees & comm", "fees ($)", "commission", "commission ($)"},
	"activity":     {"action", "activity", "transaction type", "type"},
	"currency":     {"currency", "ccy", "moneda"},
}

// GuessColumns maps header names to column roles using a table of common
// synonyms. Each header is used for at most one role.
func GuessColumns(header []string) ColumnMap {
	var m ColumnMap
	used := make(map[int]bool)
	for _, r := range m.roles() {
		for _, syn := range headerSynonyms[r.name] {
			for i, h := range header {
				if !used[i] && fold(h) == syn {
					*r.col = h
					used[i] = true
					break
				}
			}
			if *r.col != "" {
				break
			}
		}
	}
	// an amount column wins over split debit/credit ones
	if m.Amount != "" {
		m.Debit, m.Credit = "", ""
	}
	return m
}

// fold lowers s, strips accents and collapses blanks, for header and marker comparisons.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.Join(strings.Fields(strings.ToLower(out)), " ")
}

// CellKind is the type of value held by a Cell.
type CellKind int

const (
	TextCell CellKind = iota
	NumberCell
	DateCell
)

// Cell is one field of a raw row. Spreadsheet sources deliver typed cells
// that bypass text normalization.
type Cell struct {
	Kind   CellKind
	Text   string
	Number decimal.Decimal
	Date   date.Date
}

// TextOf returns a text cell.
func TextOf(s string) Cell { return Cell{Kind: TextCell, Text: s} }

// NumberOf returns a typed number cell.
func NumberOf(d decimal.Decimal) Cell { return Cell{Kind: NumberCell, Number: d, Text: exactString(d)} }

// DateOf returns a typed date cell.
func DateOf(d date.Date) Cell { return Cell{Kind: DateCell, Date: d, Text: d.String()} }

// IsBlank reports whether the cell holds nothing.
func (c Cell) IsBlank() bool { return c.Kind == TextCell && strings.TrimSpace(c.Text) == "" }

// String returns the cell as text.
func (c Cell) String() string {
	switch c.Kind {
	case DateCell:
		return c.Date.String()
	case NumberCell:
		if c.Text != "" {
			return c.Text
		}
		return exactString(c.Number)
	}
	return c.Text
}

// typedCell reads a spreadsheet value as a date, a number, or text.
func typedCell(s string) Cell {
	s = strings.TrimSpace(s)
	if s == "" {
		return TextOf("")
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return DateOf(date.Of(t))
	}
	if d, err := date.Parse(s); err == nil && strings.Count(s, "-") == 2 {
		return DateOf(d)
	}
	if d, err := decimal.NewFromString(s); err == nil && plainSigned(s) {
		return Cell{Kind: NumberCell, Number: d, Text: s}
	}
	return TextOf(s)
}

func plainSigned(s string) bool { return plainNumber.MatchString(strings.TrimPrefix(s, "-")) }

// RawRow is one data row of a statement, keyed by column name.
type RawRow struct {
	Ordinal int // 1-based position in the source
	Columns []string
	Cells   map[string]Cell
}

// Cell returns the cell of column name, if any.
func (r RawRow) Cell(name string) (Cell, bool) {
	if name == "" {
		return Cell{}, false
	}
	c, ok := r.Cells[name]
	return c, ok && !c.IsBlank()
}

// Text returns the trimmed text of column name.
func (r RawRow) Text(name string) string {
	c, ok := r.Cell(name)
	if !ok {
		return ""
	}
	return strings.TrimSpace(c.String())
}

// Data returns the row fields as text.
func (r RawRow) Data() map[string]string {
	data := make(map[string]string, len(r.Cells))
	for k, c := range r.Cells {
		data[k] = c.String()
	}
	return data
}

// Source is the raw content of a statement plus a declared hint (file name,
// extension or MIME type). Its text and cell grid are decoded lazily.
type Source struct {
	Content []byte
	Hint    string

	text     *string
	grid     [][]Cell
	gridErr  error
	gridRead bool
}

// NewSource returns a source for content.
func NewSource(content []byte, hint string) *Source {
	return &Source{Content: content, Hint: hint}
}

// GridSource returns a source for an already decoded spreadsheet grid.
func GridSource(grid [][]Cell) *Source {
	return &Source{grid: grid, gridRead: true}
}

// IsEmpty reports whether the source holds nothing but blanks.
func (s *Source) IsEmpty() bool {
	if s.gridRead && s.gridErr == nil {
		return len(s.grid) == 0
	}
	return len(bytes.TrimSpace(s.Content)) == 0
}

// IsSpreadsheet reports whether the source is a spreadsheet: an OLE2 (xls) or
// ZIP (xlsx) container, or a decoded grid.
func (s *Source) IsSpreadsheet() bool {
	if s.Content == nil && s.gridRead {
		return true
	}
	return bytes.HasPrefix(s.Content, []byte{0xD0, 0xCF, 0x11, 0xE0}) || bytes.HasPrefix(s.Content, []byte("PK\x03\x04"))
}

// HasHint reports whether the declared hint names one of the extensions or
// MIME types.
func (s *Source) HasHint(hints ...string) bool {
	h := strings.ToLower(s.Hint)
	ext := path.Ext(h)
	for _, x := range hints {
		if h == x || ext == x {
			return true
		}
	}
	return false
}

// Text returns the content decoded to UTF-8. A byte order mark is honored
// and removed, content that is not valid UTF-8 is read as Windows-1252.
func (s *Source) Text() string {
	if s.text == nil {
		t := decodeText(s.Content)
		s.text = &t
	}
	return *s.text
}

// Lines returns up to n non blank lines of the text.
func (s *Source) Lines(n int) []string {
	var lines []string
	for _, l := range strings.Split(s.Text(), "\n") {
		if len(lines) == n {
			break
		}
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// Grid returns the spreadsheet cells of the first sheet.
func (s *Source) Grid() ([][]Cell, error) {
	if !s.gridRead {
		s.grid, s.gridErr = readSpreadsheet(s.Content)
		s.gridRead = true
	}
	return s.grid, s.gridErr
}

func decodeText(b []byte) string {
	fallback := transform.Transformer(xunicode.UTF8.NewDecoder())
	if !utf8.Valid(b) {
		fallback = charmap.Windows1252.NewDecoder()
	}
	out, _, err := transform.Bytes(xunicode.BOMOverride(fallback), b)
	if err != nil {
		return string(b)
	}
	return strings.ReplaceAll(string(out), "\r\n", "\n")
}
