package recon

import (
	"context"

	"github.com/etnz/recon/date"
)

// LedgerEntry is the read only view of an entry of the ledger that
// statements are reconciled against.
type LedgerEntry struct {
	ID          string
	Account     string
	Date        date.Date
	Amount      Money
	Description string
}

// LedgerReader gives access to the existing ledger entries. Nothing here
// ever writes to the ledger.
type LedgerReader interface {
	// Entries returns the entries of account dated within r, in insertion order.
	Entries(ctx context.Context, account string, r date.Range) ([]LedgerEntry, error)
}
