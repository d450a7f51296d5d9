package recon

import (
	"errors"
	"slices"
	"sort"

	"github.com/etnz/recon/date"
	"github.com/google/uuid"
)

// Result is the outcome of canonicalizing one row.
type Result struct {
	Row int
	Tx  Transaction
	Err error
}

// ImportedIDs is the set of import ids already imported.
type ImportedIDs interface {
	// Claim records id and reports whether it was new.
	Claim(id string) bool
}

// IDSet is an ImportedIDs for a single goroutine.
type IDSet map[string]struct{}

func (s IDSet) Claim(id string) bool {
	if _, ok := s[id]; ok {
		return false
	}
	s[id] = struct{}{}
	return true
}

// ImportBatch is the result of importing one statement: the transactions,
// the rows that failed and the rows skipped as duplicates.
type ImportBatch struct {
	ID           uuid.UUID
	Institution  string
	Parser       string
	Transactions []Transaction
	Errors       []*RowParseError
	Duplicates   []*DuplicateImportError
}

// Assemble builds a batch out of canonicalization results. It never fails:
// failed rows end up in Errors and rows whose import id is repeated in the
// batch, or already claimed in seen, end up in Duplicates. seen may be nil.
func Assemble(results []Result, seen ImportedIDs) *ImportBatch {
	b := &ImportBatch{ID: uuid.New()}
	sorted := slices.Clone(results)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Row < sorted[j].Row })

	inBatch := make(map[string]bool)
	for _, r := range sorted {
		if r.Err != nil {
			var rerr *RowParseError
			if !errors.As(r.Err, &rerr) {
				rerr = &RowParseError{Row: r.Row, Err: r.Err}
			}
			b.Errors = append(b.Errors, rerr)
			continue
		}
		id := r.Tx.ImportID
		switch {
		case inBatch[id]:
			b.Duplicates = append(b.Duplicates, &DuplicateImportError{Row: r.Row, ImportID: id, Scope: ScopeBatch})
		case seen != nil && !seen.Claim(id):
			b.Duplicates = append(b.Duplicates, &DuplicateImportError{Row: r.Row, ImportID: id, Scope: ScopePrevious})
		default:
			inBatch[id] = true
			b.Transactions = append(b.Transactions, r.Tx)
		}
	}
	return b
}

// Len returns the number of transactions.
func (b *ImportBatch) Len() int { return len(b.Transactions) }

// Range returns the dates spanned by the transactions.
func (b *ImportBatch) Range() date.Range {
	var r date.Range
	for _, tx := range b.Transactions {
		r = r.Extend(tx.Date)
	}
	return r
}

// Accounts returns the distinct accounts of the transactions, in order of
// appearance.
func (b *ImportBatch) Accounts() []string {
	var accounts []string
	for _, tx := range b.Transactions {
		if !slices.Contains(accounts, tx.AccountNumber) {
			accounts = append(accounts, tx.AccountNumber)
		}
	}
	return accounts
}
