package recon

import (
	"encoding/csv"
	"errors"
	"io"
	"regexp"
	"strings"
)

// delimiters are the candidates tried when sniffing, in preference order.
var delimiters = []rune{',', ';', '\t', '|'}

// DelimitedParser reads generic delimited text statements: the first non
// blank row is the header and column roles are guessed from it.
type DelimitedParser struct {
	Delimiter rune     // sniffed when zero
	Header    []string // replaces the header row when set
	Context   ImportContext
}

func (p *DelimitedParser) Name() string { return "delimited" }

func (p *DelimitedParser) Detect(src *Source) float64 {
	lines := src.Lines(10)
	if len(lines) == 0 || strings.HasPrefix(lines[0], "<") || strings.HasPrefix(strings.ToUpper(lines[0]), "OFXHEADER") {
		return 0
	}
	d := p.Delimiter
	if d == 0 {
		d = sniffDelimiter(lines)
	}
	if d == 0 {
		return 0
	}
	rows, _ := textGrid(strings.Join(lines, "\n"), d)
	if len(rows) == 0 {
		return 0
	}
	header := p.Header
	data := rows
	if header == nil {
		header, data = texts(rows[0].cells), rows[1:]
	}
	conf := 0.25
	if len(data) > 0 {
		same := 0
		for _, r := range data {
			if len(r.cells) == len(header) {
				same++
			}
		}
		conf += 0.15 * float64(same) / float64(len(data))
	}
	m := p.Context.Columns
	if m.IsZero() {
		m = GuessColumns(header)
	}
	if m.Date != "" && (m.Amount != "" || m.Debit != "" || m.Credit != "") {
		conf += 0.3
	}
	if m.Description != "" {
		conf += 0.1
	}
	if src.HasHint(".csv", ".tsv", ".txt", "text/csv", "text/tab-separated-values") {
		conf += 0.1
	}
	return conf
}

func (p *DelimitedParser) Parse(src *Source) (*Statement, error) {
	a := &Adapter{
		Institution:  p.Context.Institution,
		Header:       p.Header,
		DateHint:     p.Context.DateHint,
		Columns:      p.Context.Columns,
		DecimalComma: p.Context.DecimalComma,
		Currency:     p.Context.Currency,
	}
	if a.Institution == "" {
		a.Institution = "generic"
	}
	if p.Delimiter != 0 {
		a.Delimiter = string(p.Delimiter)
	}
	st, err := a.Parse(src)
	if err != nil {
		return nil, err
	}
	st.Context = st.Context.merge(p.Context)
	if !st.Context.DecimalComma {
		st.Context.DecimalComma = sniffDecimalComma(st.Rows, st.Context.Columns)
	}
	return st, nil
}

var (
	commaDecimals = regexp.MustCompile(`,\d{1,2}\)?(\s*[\p{L}\p{Sc}]*)?$`)
	pointDecimals = regexp.MustCompile(`\.\d{1,2}\)?(\s*[\p{L}\p{Sc}]*)?$`)
)

// sniffDecimalComma reports whether the amounts use a decimal comma: some
// end with a comma and one or two digits, none with a point and one or two.
func sniffDecimalComma(rows []RawRow, cols ColumnMap) bool {
	comma := false
	for _, r := range rows {
		for _, col := range []string{cols.Amount, cols.Debit, cols.Credit} {
			t := r.Text(col)
			if pointDecimals.MatchString(t) {
				return false
			}
			comma = comma || commaDecimals.MatchString(t)
		}
	}
	return comma
}

// gridRow is a non blank row of cells and its 1-based position in the source.
type gridRow struct {
	line  int
	cells []Cell
}

// sniffDelimiter returns the candidate splitting most lines into the same
// number of fields (at least two), or zero.
func sniffDelimiter(lines []string) rune {
	sample := strings.Join(lines, "\n")
	var best rune
	var bestFreq, bestWidth int
	for _, d := range delimiters {
		rows, _ := textGrid(sample, d)
		counts := make(map[int]int)
		for _, r := range rows {
			counts[len(r.cells)]++
		}
		width, freq := 0, 0
		for w, f := range counts {
			if w > 1 && (f > freq || f == freq && w > width) {
				width, freq = w, f
			}
		}
		if freq > bestFreq || freq == bestFreq && width > bestWidth {
			best, bestFreq, bestWidth = d, freq, width
		}
	}
	if bestFreq == 0 {
		return 0
	}
	return best
}

// textGrid splits delimited text into rows of text cells. Blank and
// delimiter only lines are skipped, unreadable lines are reported.
func textGrid(text string, delim rune) ([]gridRow, []*RowParseError) {
	r := csv.NewReader(strings.NewReader(text))
	r.Comma = delim
	r.LazyQuotes = true
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	var rows []gridRow
	var errs []*RowParseError
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				errs = append(errs, &RowParseError{Row: perr.StartLine, Err: perr.Err})
				continue
			}
			errs = append(errs, &RowParseError{Err: err})
			break
		}
		line, _ := r.FieldPos(0)
		cells := make([]Cell, len(rec))
		for i, f := range rec {
			cells[i] = TextOf(strings.TrimSpace(f))
		}
		if blankRow(cells) {
			continue
		}
		rows = append(rows, gridRow{line: line, cells: cells})
	}
	return rows, errs
}

func blankRow(cells []Cell) bool {
	for _, c := range cells {
		if !c.IsBlank() {
			return false
		}
	}
	return true
}

func texts(cells []Cell) []string {
	s := make([]string, len(cells))
	for i, c := range cells {
		s[i] = strings.TrimSpace(c.String())
	}
	return s
}
