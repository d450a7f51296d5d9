// Package ledger provides read only views of existing ledgers, to reconcile
// imported statements against: in memory, CSV and JSON exports, and SQL
// databases.
package ledger

import (
	"context"
	"sync"

	"github.com/etnz/recon"
	"github.com/etnz/recon/date"
)

// Memory is a ledger held in memory. It is safe for concurrent use.
type Memory struct {
	mu      sync.RWMutex
	entries []recon.LedgerEntry
}

// NewMemory returns a ledger holding entries, in that order.
func NewMemory(entries ...recon.LedgerEntry) *Memory {
	m := &Memory{}
	m.Append(entries...)
	return m
}

// Append adds entries to the ledger.
func (m *Memory) Append(entries ...recon.LedgerEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entries...)
}

// Len returns the number of entries.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func (m *Memory) Entries(ctx context.Context, account string, r date.Range) ([]recon.LedgerEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var es []recon.LedgerEntry
	for _, e := range m.entries {
		if e.Account == account && r.Contains(e.Date) {
			es = append(es, e)
		}
	}
	return es, nil
}
