package recon

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/etnz/recon/date"
)

// CellMode tells whether an adapter keeps the native types of spreadsheet
// cells or reads every cell as text.
type CellMode int

const (
	TextCells CellMode = iota
	NativeCells
)

// Adapter describes the layout of one institution's export. All adapters
// are read by the same loop:
//
//   - SkipRows leading rows are metadata, scanned for the account id with
//     AccountPattern.
//   - Then comes the header row, unless Header is set for headerless exports.
//   - Data rows run until the end or a row starting with one of Footers.
//
// Signatures are texts expected in the leading rows, they drive Detect.
type Adapter struct {
	Institution    string
	Signatures     []string
	Header         []string
	SkipRows       int
	Delimiter      string // sniffed when empty
	AccountPattern string // regexp, its first group (or the match) is the account
	DateHint       date.Convention
	Columns        ColumnMap // guessed from the header when zero
	DecimalComma   bool
	Cells          CellMode
	Footers        []string
	Currency       string
	Spreadsheet    bool
}

func (a *Adapter) Name() string { return a.Institution }

// Validate checks an adapter declared in configuration.
func (a *Adapter) Validate() error {
	if a.Institution == "" {
		return errors.New("adapter has no institution name")
	}
	if utf8.RuneCountInString(a.Delimiter) > 1 {
		return fmt.Errorf("adapter %q: delimiter %q is not a single character", a.Institution, a.Delimiter)
	}
	if _, err := compilePattern(a.AccountPattern); err != nil {
		return fmt.Errorf("adapter %q: invalid account pattern: %w", a.Institution, err)
	}
	if len(a.Signatures) == 0 && a.Header == nil && a.AccountPattern == "" {
		return fmt.Errorf("adapter %q: nothing to detect it by, declare signatures", a.Institution)
	}
	return nil
}

func (a *Adapter) Detect(src *Source) float64 {
	if a.Spreadsheet != src.IsSpreadsheet() {
		return 0
	}
	rows, err := a.sample(src, a.SkipRows+4)
	if err != nil || len(rows) == 0 {
		return 0
	}

	checks, hits := 0, 0
	var lead []string
	for _, r := range rows {
		lead = append(lead, fold(strings.Join(texts(r.cells), " ")))
	}
	leading := strings.Join(lead, "\n")
	for _, s := range a.Signatures {
		checks++
		if strings.Contains(leading, fold(s)) {
			hits++
		}
	}
	if a.AccountPattern != "" && a.SkipRows > 0 {
		checks++
		for _, r := range rows[:min(a.SkipRows, len(rows))] {
			if a.findAccount(r.cells) != "" {
				hits++
				break
			}
		}
	}
	if a.Header != nil {
		checks++
		if a.SkipRows < len(rows) && a.fitsHeader(rows[a.SkipRows].cells) {
			hits++
		}
	}
	if checks == 0 {
		return 0
	}
	return 0.95 * float64(hits) / float64(checks)
}

// fitsHeader reports whether a row has the width of the fixed header and a
// date where the header says.
func (a *Adapter) fitsHeader(cells []Cell) bool {
	if len(cells) != len(a.Header) {
		return false
	}
	for i, h := range a.Header {
		if h != a.Columns.Date {
			continue
		}
		if cells[i].Kind == DateCell {
			return true
		}
		_, err := date.Normalize(cells[i].Text, a.DateHint)
		return err == nil
	}
	return true
}

func (a *Adapter) Parse(src *Source) (*Statement, error) {
	rows, errs, err := a.rows(src)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s statement: %w", a.Institution, err)
	}
	st := a.parseRecords(rows)
	st.Errors = append(errs, st.Errors...)
	log.Debug("statement parsed", "institution", a.Institution, "rows", len(st.Rows), "errors", len(st.Errors))
	return st, nil
}

// rows returns all the non blank rows of the source.
func (a *Adapter) rows(src *Source) ([]gridRow, []*RowParseError, error) {
	if src.IsSpreadsheet() {
		grid, err := src.Grid()
		if err != nil {
			return nil, nil, err
		}
		var rows []gridRow
		for i, cells := range grid {
			if !blankRow(cells) {
				rows = append(rows, gridRow{line: i + 1, cells: cells})
			}
		}
		return rows, nil, nil
	}
	rows, errs := textGrid(src.Text(), a.delimiter(src))
	return rows, errs, nil
}

// sample returns the first n non blank rows.
func (a *Adapter) sample(src *Source, n int) ([]gridRow, error) {
	if src.IsSpreadsheet() {
		rows, _, err := a.rows(src)
		return rows[:min(n, len(rows))], err
	}
	rows, _ := textGrid(strings.Join(src.Lines(n), "\n"), a.delimiter(src))
	return rows, nil
}

func (a *Adapter) delimiter(src *Source) rune {
	if a.Delimiter != "" {
		r, _ := utf8.DecodeRuneInString(a.Delimiter)
		return r
	}
	if d := sniffDelimiter(src.Lines(a.SkipRows + 10)); d != 0 {
		return d
	}
	return ','
}

// parseRecords is the loop shared by every delimited and spreadsheet layout.
func (a *Adapter) parseRecords(rows []gridRow) *Statement {
	st := &Statement{Context: ImportContext{
		Institution:  a.Institution,
		Currency:     a.Currency,
		DateHint:     a.DateHint,
		Columns:      a.Columns,
		DecimalComma: a.DecimalComma,
	}}

	i := 0
	for ; i < len(rows) && i < a.SkipRows; i++ {
		if acct := a.findAccount(rows[i].cells); acct != "" && st.Context.Account == "" {
			st.Context.Account = acct
		}
	}
	header := a.Header
	if header == nil {
		if i >= len(rows) {
			return st
		}
		header = texts(rows[i].cells)
		for len(header) > 0 && header[len(header)-1] == "" {
			header = header[:len(header)-1]
		}
		i++
	}
	if st.Context.Columns.IsZero() {
		st.Context.Columns = GuessColumns(header)
	}

	for _, r := range rows[i:] {
		if a.isFooter(r.cells) {
			log.Debug("statement footer reached", "institution", a.Institution, "row", r.line)
			break
		}
		if len(r.cells) > len(header) && !blankRow(r.cells[len(header):]) {
			st.Errors = append(st.Errors, &RowParseError{
				Row: r.line,
				Err: fmt.Errorf("%d fields, header has %d", len(r.cells), len(header)),
			})
			continue
		}
		raw := RawRow{Ordinal: r.line, Columns: header, Cells: make(map[string]Cell, len(header))}
		for j, name := range header {
			if name == "" {
				continue
			}
			c := TextOf("")
			if j < len(r.cells) {
				c = r.cells[j]
			}
			if a.Cells == TextCells && c.Kind != TextCell {
				c = TextOf(c.String())
			}
			raw.Cells[name] = c
		}
		st.Rows = append(st.Rows, raw)
	}
	return st
}

func (a *Adapter) isFooter(cells []Cell) bool {
	if len(cells) == 0 || len(a.Footers) == 0 {
		return false
	}
	first := fold(cells[0].String())
	for _, f := range a.Footers {
		if strings.HasPrefix(first, fold(f)) {
			return true
		}
	}
	return false
}

// findAccount looks for the account id in the cells of a metadata row.
func (a *Adapter) findAccount(cells []Cell) string {
	if a.AccountPattern == "" {
		return ""
	}
	re, err := compilePattern(a.AccountPattern)
	if err != nil {
		return ""
	}
	for _, c := range cells {
		m := re.FindStringSubmatch(c.String())
		if m == nil {
			continue
		}
		v := m[0]
		if len(m) > 1 {
			v = m[1]
		}
		if acct, err := ExtractAccount(v); err == nil && acct != "" {
			return acct
		}
	}
	return ""
}

// patterns caches the compiled account patterns, adapters are shared
// between concurrent imports.
var patterns sync.Map // string -> *regexp.Regexp

func compilePattern(expr string) (*regexp.Regexp, error) {
	if re, ok := patterns.Load(expr); ok {
		return re.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}
	v, _ := patterns.LoadOrStore(expr, re)
	return v.(*regexp.Regexp), nil
}

var (
	formulaAccount = regexp.MustCompile(`^=\s*(?:[A-Za-z]+\s*\(\s*)?"([^"]*)"\s*\)?$`)
	digitRun       = regexp.MustCompile(`\d{4,}`)
)

// ExtractAccount returns the account id of a cell. Spreadsheet exports wrap
// ids in a formula to keep their leading zeros, like ="0012345" or
// =T("0012345"): the quoted string is extracted, the formula is never
// evaluated.
//
// A formula of any other shape falls back to its only run of at least four
// digits, with a warning. Otherwise an error is returned.
func ExtractAccount(s string) (string, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "=") {
		return s, nil
	}
	if m := formulaAccount.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1]), nil
	}
	if runs := digitRun.FindAllString(s, -1); len(runs) == 1 {
		log.Warn("account extracted from an unexpected formula", "formula", s, "account", runs[0])
		return runs[0], nil
	}
	return "", fmt.Errorf("cannot extract an account from formula %q", s)
}
