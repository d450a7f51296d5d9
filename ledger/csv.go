package ledger

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/etnz/recon"
	"github.com/etnz/recon/date"
	"github.com/gocarina/gocsv"
)

// csvEntry is a row of a ledger CSV export. Columns are matched by header
// name, in any order; extra columns are ignored.
type csvEntry struct {
	ID          string `csv:"id"`
	Account     string `csv:"account"`
	Date        string `csv:"date"`
	Amount      string `csv:"amount"`
	Currency    string `csv:"currency"`
	Description string `csv:"description"`
}

// DecodeCSV reads a ledger CSV export with an id, account, date, amount,
// currency and description header. Dates are read with the hint; amounts keep
// their scale. Entries without id are identified by their line number.
func DecodeCSV(r io.Reader, hint date.Convention) (*Memory, error) {
	var rows []csvEntry
	err := gocsv.UnmarshalCSV(newCSVReader(r), &rows)
	if err != nil {
		return nil, fmt.Errorf("cannot read ledger csv: %w", err)
	}
	m := NewMemory()
	for i, row := range rows {
		line := i + 2
		e, err := row.entry(hint)
		if err != nil {
			return nil, fmt.Errorf("ledger csv line %d: %w", line, err)
		}
		if e.ID == "" {
			e.ID = strconv.Itoa(line)
		}
		m.Append(e)
	}
	return m, nil
}

func newCSVReader(r io.Reader) gocsv.CSVReader {
	cr := csv.NewReader(r)
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	return cr
}

func (row csvEntry) entry(hint date.Convention) (recon.LedgerEntry, error) {
	on, err := date.Normalize(row.Date, hint)
	if err != nil {
		return recon.LedgerEntry{}, err
	}
	amount, err := recon.ParseAmount(row.Amount)
	if err != nil {
		return recon.LedgerEntry{}, err
	}
	return recon.LedgerEntry{
		ID:          strings.TrimSpace(row.ID),
		Account:     strings.TrimSpace(row.Account),
		Date:        on,
		Amount:      recon.M(amount, strings.ToUpper(strings.TrimSpace(row.Currency))),
		Description: strings.TrimSpace(row.Description),
	}, nil
}
