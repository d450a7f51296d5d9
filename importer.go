package recon

import (
	"context"
	"runtime"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
)

// Importer runs the import pipeline of one statement: detection, parsing,
// canonicalization of the rows in parallel and assembly of the batch.
//
// An Importer may import several statements concurrently as long as Seen is
// safe for concurrent use, like an *IDCache.
type Importer struct {
	Parsers  Registry      // DefaultRegistry when nil
	Seen     ImportedIDs   // ids imported before, none when nil
	Workers  int           // parallel canonicalization, GOMAXPROCS when zero
	Defaults ImportContext // fills what the statement does not tell
}

// Import imports src. Only an unrecognized or unreadable statement is an
// error, row level problems are reported in the batch.
func (im *Importer) Import(ctx context.Context, src *Source) (*ImportBatch, error) {
	parsers := im.Parsers
	if parsers == nil {
		parsers = DefaultRegistry()
	}
	p, conf, err := parsers.Detect(src)
	if err != nil {
		return nil, err
	}
	log.Debug("statement format", "parser", p.Name(), "confidence", conf)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	st, err := p.Parse(src)
	if err != nil {
		return nil, err
	}
	st.Context = st.Context.merge(im.Defaults)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	results := make([]Result, len(st.Rows), len(st.Rows)+len(st.Errors))
	workers := im.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, row := range st.Rows {
		i, row := i, row
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			tx, err := Canonicalize(row, st.Context)
			results[i] = Result{Row: row.Ordinal, Tx: tx, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for _, e := range st.Errors {
		results = append(results, Result{Row: e.Row, Err: e})
	}

	batch := Assemble(results, im.Seen)
	batch.Institution = st.Context.Institution
	batch.Parser = p.Name()
	log.Debug("statement imported", "institution", batch.Institution, "transactions", batch.Len(), "errors", len(batch.Errors), "duplicates", len(batch.Duplicates))
	return batch, nil
}
