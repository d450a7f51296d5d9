package recon

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// Basis is the reason a transaction was matched to a ledger entry.
type Basis string

const (
	Exact      Basis = "exact"              // same account, amount and date
	DateWindow Basis = "amount+date-window" // same account and amount, close dates
	AmountOnly Basis = "amount-only"        // the only entry with that amount
)

func (b Basis) rank() int {
	switch b {
	case Exact:
		return 0
	case DateWindow:
		return 1
	}
	return 2
}

// MatchProposal suggests that an imported transaction is already recorded as
// a ledger entry. It is advice: the ledger decides.
type MatchProposal struct {
	ImportID   string
	EntryID    string
	Account    string
	Basis      Basis
	DateDelta  int // entry date minus transaction date, in days
	Confidence float64
}

func (p MatchProposal) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("kind", "match")
	w.Append("importId", p.ImportID)
	w.Append("entryId", p.EntryID)
	w.Optional("account", p.Account)
	w.Append("basis", p.Basis)
	w.Append("dateDelta", p.DateDelta)
	w.Append("confidence", roundConfidence(p.Confidence))
	return w.MarshalJSON()
}

// MatchOptions tunes Match. Zero values select the defaults.
type MatchOptions struct {
	Window           int // days, 3 by default
	AmountOnlyWindow int // days, 30 by default
}

func (o MatchOptions) withDefaults() MatchOptions {
	if o.Window <= 0 {
		o.Window = 3
	}
	if o.AmountOnlyWindow <= 0 {
		o.AmountOnlyWindow = 30
	}
	if o.AmountOnlyWindow < o.Window {
		o.AmountOnlyWindow = o.Window
	}
	return o
}

type candidate struct {
	tx, entry int
	basis     Basis
	delta     int
}

func (c candidate) abs() int {
	if c.delta < 0 {
		return -c.delta
	}
	return c.delta
}

// Match proposes at most one ledger entry per transaction of the batch.
//
// Candidates share the account, amount and currency of the transaction, a
// missing currency on either side matching any. A
// candidate on the same date is exact, within opts.Window days it is a date
// window match, and further away (up to opts.AmountOnlyWindow) it is only
// kept when it is the account's single entry with that amount.
//
// Assignment is greedy over all candidates, ordered by basis, distance in
// days, transaction order and entry order. An entry is proposed once at most.
// Unmatched transactions are not an error.
func Match(batch *ImportBatch, entries []LedgerEntry, opts MatchOptions) []MatchProposal {
	opts = opts.withDefaults()

	type key struct{ account, amount string }
	pool := make(map[key][]int)
	for i, e := range entries {
		k := key{e.Account, e.Amount.key()}
		pool[k] = append(pool[k], i)
	}

	var cands []candidate
	for ti, tx := range batch.Transactions {
		var same []int
		for _, ei := range pool[key{tx.AccountNumber, tx.Amount.key()}] {
			if tx.Amount.SameCurrency(entries[ei].Amount) {
				same = append(same, ei)
			}
		}
		for _, ei := range same {
			c := candidate{tx: ti, entry: ei, delta: entries[ei].Date.Sub(tx.Date)}
			switch {
			case c.delta == 0:
				c.basis = Exact
			case c.abs() <= opts.Window:
				c.basis = DateWindow
			case len(same) == 1 && c.abs() <= opts.AmountOnlyWindow:
				c.basis = AmountOnly
			default:
				continue
			}
			cands = append(cands, c)
		}
	}
	sort.SliceStable(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if a.basis.rank() != b.basis.rank() {
			return a.basis.rank() < b.basis.rank()
		}
		if a.abs() != b.abs() {
			return a.abs() < b.abs()
		}
		if a.tx != b.tx {
			return a.tx < b.tx
		}
		return a.entry < b.entry
	})

	txClaimed := make([]bool, len(batch.Transactions))
	entryClaimed := make([]bool, len(entries))
	var chosen []candidate
	for _, c := range cands {
		if txClaimed[c.tx] || entryClaimed[c.entry] {
			continue
		}
		txClaimed[c.tx], entryClaimed[c.entry] = true, true
		chosen = append(chosen, c)
	}
	sort.Slice(chosen, func(i, j int) bool { return chosen[i].tx < chosen[j].tx })

	proposals := make([]MatchProposal, 0, len(chosen))
	for _, c := range chosen {
		tx, e := batch.Transactions[c.tx], entries[c.entry]
		proposals = append(proposals, MatchProposal{
			ImportID:   tx.ImportID,
			EntryID:    e.ID,
			Account:    tx.AccountNumber,
			Basis:      c.basis,
			DateDelta:  c.delta,
			Confidence: matchConfidence(c, tx.Description, e.Description),
		})
	}
	log.Debug("reconciliation", "transactions", len(batch.Transactions), "entries", len(entries), "proposals", len(proposals))
	return proposals
}

// matchConfidence scores a match from its basis and distance, plus up to 0.05
// when descriptions look alike.
func matchConfidence(c candidate, a, b string) float64 {
	var conf float64
	switch c.basis {
	case Exact:
		conf = 1
	case DateWindow:
		conf = 0.9 - 0.05*float64(c.abs())
	default:
		conf = 0.5 - 0.005*float64(c.abs())
	}
	return min(conf+0.05*similarity(a, b), 1)
}

// similarity returns the Levenshtein ratio of two descriptions, in [0,1].
func similarity(a, b string) float64 {
	ra := []rune(strings.ToLower(strings.TrimSpace(a)))
	rb := []rune(strings.ToLower(strings.TrimSpace(b)))
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}
	return levenshtein.RatioForStrings(ra, rb, levenshtein.DefaultOptions)
}

func roundConfidence(c float64) float64 { return float64(int(c*1000+0.5)) / 1000 }

// Reconcile reads the ledger entries of the batch accounts around the batch
// dates and matches them.
func Reconcile(ctx context.Context, batch *ImportBatch, reader LedgerReader, opts MatchOptions) ([]MatchProposal, error) {
	if batch.Len() == 0 {
		return nil, nil
	}
	opts = opts.withDefaults()
	r := batch.Range().Expand(opts.AmountOnlyWindow)
	var entries []LedgerEntry
	for _, account := range batch.Accounts() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		es, err := reader.Entries(ctx, account, r)
		if err != nil {
			return nil, fmt.Errorf("cannot read ledger entries of account %q: %w", account, err)
		}
		entries = append(entries, es...)
	}
	return Match(batch, entries, opts), nil
}
