package renderer

import (
	"fmt"

	"github.com/etnz/recon"
)

// Reconciliation is the view of a reconciliation report.
type Reconciliation struct {
	Source       string
	Transactions int
	Matches      []MatchLine
	Transfers    []TransferLine
	Unmatched    []TransactionLine
}

// MatchLine is a match proposal with the transaction it is about.
type MatchLine struct {
	TransactionLine
	EntryID    string
	Basis      string
	DateDelta  int
	Confidence string
}

// TransferLine is a transfer proposal.
type TransferLine struct {
	Out, In               TransactionLine
	OutAccount, InAccount string
	Amount                string
	DateDelta             int
	Confidence            string
}

// TransactionLine is the short form of a transaction in reports.
type TransactionLine struct {
	ID          string
	Date        string
	Description string
	Amount      string
	Account     string
}

func lineOf(tx recon.Transaction) TransactionLine {
	return TransactionLine{
		ID:          shortID(tx.ImportID),
		Date:        tx.Date.String(),
		Description: tx.Description,
		Amount:      amount(tx.Amount),
		Account:     tx.AccountNumber,
	}
}

// NewReconciliation builds the report view of the proposals made for a batch.
// Unmatched lists the transactions in no proposal at all.
func NewReconciliation(source string, b *recon.ImportBatch, matches []recon.MatchProposal, transfers []recon.TransferProposal) *Reconciliation {
	r := &Reconciliation{Source: source, Transactions: b.Len()}
	byID := make(map[string]recon.Transaction, b.Len())
	for _, tx := range b.Transactions {
		byID[tx.ImportID] = tx
	}
	used := make(map[string]bool)
	for _, m := range matches {
		used[m.ImportID] = true
		r.Matches = append(r.Matches, MatchLine{
			TransactionLine: lineOf(byID[m.ImportID]),
			EntryID:         m.EntryID,
			Basis:           string(m.Basis),
			DateDelta:       m.DateDelta,
			Confidence:      fmt.Sprintf("%.2f", m.Confidence),
		})
	}
	for _, t := range transfers {
		used[t.Out], used[t.In] = true, true
		r.Transfers = append(r.Transfers, TransferLine{
			Out:        lineOf(byID[t.Out]),
			In:         lineOf(byID[t.In]),
			OutAccount: t.OutAccount,
			InAccount:  t.InAccount,
			Amount:     t.Amount.String(),
			DateDelta:  t.DateDelta,
			Confidence: fmt.Sprintf("%.2f", t.Confidence),
		})
	}
	for _, tx := range b.Transactions {
		if !used[tx.ImportID] {
			r.Unmatched = append(r.Unmatched, lineOf(tx))
		}
	}
	return r
}
