package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"runtime"

	"github.com/charmbracelet/log"
	"github.com/etnz/recon"
	"github.com/etnz/recon/renderer"
	"github.com/google/subcommands"
	"golang.org/x/sync/errgroup"
)

type importCmd struct {
	output  string
	append  bool
	seen    string
	account string
	workers int
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "import statements into canonical transactions" }
func (*importCmd) Usage() string {
	return `rcn import [-o <file.jsonl> [-append]] [-seen <file.jsonl>] [-account <id>] <statement>...

  Detects the format of each statement, parses and canonicalizes its rows
  and reports the transactions, the rows in error and the duplicates.
  Statements are imported concurrently and share the set of import ids, so
  a row present in two statements is imported once.

  With -seen, transactions exported by a previous import are known already
  and reported as duplicates.

Usage Examples:
$ rcn import march.csv april.csv
$ rcn import -seen imported.jsonl -o imported.jsonl -append may.ofx

`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "", "Write the batches to this JSONL file.")
	f.BoolVar(&c.append, "append", false, "Append to the -o file instead of replacing it.")
	f.StringVar(&c.seen, "seen", "", "JSONL file of transactions imported before.")
	f.StringVar(&c.account, "account", "", "Account of statements that do not name one.")
	f.IntVar(&c.workers, "workers", 0, "Rows canonicalized in parallel per statement. Defaults to the number of CPUs.")
}

func (c *importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: no statement given")
		return subcommands.ExitUsageError
	}
	im, err := c.importer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	batches, err := importAll(ctx, im, f.Args())
	for i, b := range batches {
		if b != nil {
			printMarkdown(renderer.BatchMarkdown(f.Arg(i), b))
		}
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error importing statements: %v\n", err)
		return subcommands.ExitFailure
	}

	if c.output != "" {
		if err := c.write(batches); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %q: %v\n", c.output, err)
			return subcommands.ExitFailure
		}
		fmt.Fprintf(os.Stderr, "Successfully wrote %d batches to %s\n", len(batches), c.output)
	}
	return subcommands.ExitSuccess
}

// importer builds the importer from the global and the command flags.
func (c *importCmd) importer() (*recon.Importer, error) {
	registry, err := Registry()
	if err != nil {
		return nil, err
	}
	defaults, err := Defaults()
	if err != nil {
		return nil, err
	}
	defaults.Account = c.account

	cache := recon.NewIDCache(0)
	if c.seen != "" {
		n, err := preloadSeen(cache, c.seen)
		if err != nil {
			return nil, err
		}
		log.Debug("known import ids", "file", c.seen, "count", n)
	}
	return &recon.Importer{Parsers: registry, Seen: cache, Workers: c.workers, Defaults: defaults}, nil
}

func (c *importCmd) write(batches []*recon.ImportBatch) error {
	mode := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if c.append {
		mode = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}
	f, err := os.OpenFile(c.output, mode, 0644)
	if err != nil {
		return err
	}
	for _, b := range batches {
		if err := recon.EncodeBatch(f, b); err != nil {
			f.Close()
			return err
		}
	}
	return f.Close()
}

// preloadSeen claims the import ids of the transactions in a JSONL file.
// A missing file holds no transaction.
func preloadSeen(seen recon.ImportedIDs, name string) (int, error) {
	f, err := os.Open(name)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	defer f.Close()
	txs, err := recon.DecodeTransactions(f)
	if err != nil {
		return 0, fmt.Errorf("cannot read %q: %w", name, err)
	}
	for _, tx := range txs {
		seen.Claim(tx.ImportID)
	}
	return len(txs), nil
}

// importAll imports the statements concurrently. The batch of a statement
// that fails is nil, the others are imported nonetheless.
func importAll(ctx context.Context, im *recon.Importer, names []string) ([]*recon.ImportBatch, error) {
	batches := make([]*recon.ImportBatch, len(names))
	errs := make([]error, len(names))

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			src, err := readSource(name, "")
			if err != nil {
				errs[i] = err
				return nil
			}
			b, err := im.Import(ctx, src)
			if err != nil {
				errs[i] = fmt.Errorf("cannot import %q: %w", name, err)
				return nil
			}
			log.Debug("statement read", "file", name, "parser", b.Parser)
			batches[i] = b
			return nil
		})
	}
	g.Wait()
	return batches, errors.Join(errs...)
}
