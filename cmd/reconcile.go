package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/etnz/recon"
	"github.com/etnz/recon/date"
	"github.com/etnz/recon/ledger"
	"github.com/etnz/recon/renderer"
	"github.com/google/subcommands"
	"github.com/google/uuid"
)

type reconcileCmd struct {
	ledgerFile     string
	format         string
	path           string
	table          string
	account        string
	window         int
	amountWindow   int
	transferWindow int
	output         string
	skipUnmatched  bool
}

func (*reconcileCmd) Name() string { return "reconcile" }
func (*reconcileCmd) Synopsis() string {
	return "propose matches between statements and an existing ledger"
}
func (*reconcileCmd) Usage() string {
	return `rcn reconcile -ledger <file> [-format csv|json|sqlite] [-o <file.jsonl>] <statement>...

  Imports the statements, then proposes a ledger entry for each transaction
  and pairs the remaining outflows and inflows that look like transfers
  between accounts. Nothing is written to the ledger, proposals are only
  reported, and exported with -o.

  The ledger is a CSV file with the columns id, account, date, amount,
  currency and description; a JSON document whose entries are selected with
  -path; or a SQLite database with a table of the same columns.

Usage Examples:
$ rcn reconcile -ledger books.csv march.csv
$ rcn reconcile -ledger books.json -path '$.accounts[*].entries[*]' march.ofx
$ rcn reconcile -ledger books.db -table journal -o proposals.jsonl checking.csv savings.csv

`
}

func (c *reconcileCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ledgerFile, "ledger", "", "Ledger to reconcile against.")
	f.StringVar(&c.format, "format", "", "Ledger format (csv, json, sqlite). Defaults to the ledger file extension.")
	f.StringVar(&c.path, "path", ledger.DefaultPath, "JSONPath selecting the entries of a JSON ledger.")
	f.StringVar(&c.table, "table", ledger.DefaultTable, "Table holding the entries of a SQLite ledger.")
	f.StringVar(&c.account, "account", "", "Account of statements that do not name one.")
	f.IntVar(&c.window, "window", 3, "Days between a transaction and its ledger entry.")
	f.IntVar(&c.amountWindow, "amount-window", 30, "Days between a transaction and a ledger entry matched on amount alone.")
	f.IntVar(&c.transferWindow, "transfer-window", 2, "Days between both sides of a transfer.")
	f.StringVar(&c.output, "o", "", "Write the proposals to this JSONL file.")
	f.BoolVar(&c.skipUnmatched, "skip-unmatched", false, "Do not list the transactions left without proposal.")
}

func (c *reconcileCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.ledgerFile == "" {
		fmt.Fprintln(os.Stderr, "Error: -ledger is required")
		return subcommands.ExitUsageError
	}
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: no statement given")
		return subcommands.ExitUsageError
	}

	defaults, err := Defaults()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	reader, closeLedger, err := openLedger(c.ledgerFile, c.format, c.path, c.table, defaults.DateHint)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening ledger %q: %v\n", c.ledgerFile, err)
		return subcommands.ExitFailure
	}
	defer closeLedger()

	im := &importCmd{account: c.account}
	importer, err := im.importer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	batches, err := importAll(ctx, importer, f.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error importing statements: %v\n", err)
		return subcommands.ExitFailure
	}
	batch := mergeBatches(batches)

	matches, err := recon.Reconcile(ctx, batch, reader, recon.MatchOptions{Window: c.window, AmountOnlyWindow: c.amountWindow})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reconciling: %v\n", err)
		return subcommands.ExitFailure
	}
	transfers := recon.MatchTransfers(recon.Unclaimed(batch, matches), recon.TransferOptions{Window: c.transferWindow})

	if c.output != "" {
		if err := writeProposals(c.output, matches, transfers); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %q: %v\n", c.output, err)
			return subcommands.ExitFailure
		}
	}

	r := renderer.NewReconciliation(strings.Join(f.Args(), ", "), batch, matches, transfers)
	printMarkdown(renderer.RenderReconciliation(r, renderer.ReconcileRenderOptions{SkipUnmatched: c.skipUnmatched}))
	return subcommands.ExitSuccess
}

// openLedger opens a ledger file in the given format, or the one its
// extension tells.
func openLedger(name, format, path, table string, hint date.Convention) (recon.LedgerReader, func() error, error) {
	if format == "" {
		switch strings.ToLower(filepath.Ext(name)) {
		case ".csv":
			format = "csv"
		case ".json":
			format = "json"
		case ".db", ".sqlite", ".sqlite3":
			format = "sqlite"
		default:
			return nil, nil, fmt.Errorf("cannot tell the ledger format of %q, use -format", name)
		}
	}
	nop := func() error { return nil }

	switch format {
	case "sqlite":
		db, err := ledger.OpenSQLite(name)
		if err != nil {
			return nil, nil, err
		}
		db.Table = table
		return db, db.Close, nil
	case "csv", "json":
		f, err := os.Open(name)
		if err != nil {
			return nil, nil, err
		}
		defer f.Close()
		var m *ledger.Memory
		if format == "csv" {
			m, err = ledger.DecodeCSV(f, hint)
		} else {
			m, err = ledger.DecodeJSON(f, path, hint)
		}
		if err != nil {
			return nil, nil, err
		}
		return m, nop, nil
	default:
		return nil, nil, fmt.Errorf("unknown ledger format %q", format)
	}
}

// mergeBatches gathers the batches of several statements, to reconcile them
// at once and find the transfers between them.
func mergeBatches(batches []*recon.ImportBatch) *recon.ImportBatch {
	if len(batches) == 1 {
		return batches[0]
	}
	merged := &recon.ImportBatch{ID: uuid.New(), Parser: "mixed"}
	for _, b := range batches {
		merged.Transactions = append(merged.Transactions, b.Transactions...)
		merged.Errors = append(merged.Errors, b.Errors...)
		merged.Duplicates = append(merged.Duplicates, b.Duplicates...)
	}
	return merged
}

func writeProposals(name string, matches []recon.MatchProposal, transfers []recon.TransferProposal) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	if err := recon.EncodeProposals(f, matches, transfers); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
