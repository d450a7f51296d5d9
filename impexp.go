package recon

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// this file contains the JSONL interchange format of batches and proposals.
// One JSON object per line, its "kind" property tells what it is: a
// "transaction", a row "error", a "duplicate", a "match" or a "transfer".
// Amounts are strings that keep their scale.

// EncodeBatch writes the transactions of b, then its row errors and
// duplicates, one per line.
func EncodeBatch(w io.Writer, b *ImportBatch) error {
	for _, tx := range b.Transactions {
		var o jsonObjectWriter
		o.Append("kind", "transaction")
		o.Append("batch", b.ID.String())
		o.EmbedFrom(tx)
		if err := writeLine(w, &o); err != nil {
			return fmt.Errorf("cannot write transaction %s: %w", tx.ImportID, err)
		}
	}
	for _, e := range b.Errors {
		var o jsonObjectWriter
		o.Append("kind", "error")
		o.Append("batch", b.ID.String())
		o.Append("row", e.Row)
		o.Optional("field", e.Field)
		o.Append("error", e.Err.Error())
		if err := writeLine(w, &o); err != nil {
			return fmt.Errorf("cannot write row error: %w", err)
		}
	}
	for _, d := range b.Duplicates {
		var o jsonObjectWriter
		o.Append("kind", "duplicate")
		o.Append("batch", b.ID.String())
		o.Append("row", d.Row)
		o.Append("importId", d.ImportID)
		o.Append("scope", d.Scope)
		if err := writeLine(w, &o); err != nil {
			return fmt.Errorf("cannot write duplicate: %w", err)
		}
	}
	return nil
}

// EncodeProposals writes match then transfer proposals, one per line.
func EncodeProposals(w io.Writer, matches []MatchProposal, transfers []TransferProposal) error {
	enc := json.NewEncoder(w)
	for _, m := range matches {
		if err := enc.Encode(m); err != nil {
			return fmt.Errorf("cannot write match of %s: %w", m.ImportID, err)
		}
	}
	for _, t := range transfers {
		if err := enc.Encode(t); err != nil {
			return fmt.Errorf("cannot write transfer of %s: %w", t.Out, err)
		}
	}
	return nil
}

// DecodeTransactions reads the transactions of a JSONL stream written by
// EncodeBatch, lines of other kinds are skipped.
func DecodeTransactions(r io.Reader) ([]Transaction, error) {
	var txs []Transaction
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	n := 0
	for scanner.Scan() {
		n++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var head struct {
			Kind string `json:"kind"`
		}
		if err := json.Unmarshal(line, &head); err != nil {
			return nil, fmt.Errorf("line %d: %w", n, err)
		}
		if head.Kind != "transaction" {
			continue
		}
		var tx Transaction
		if err := json.Unmarshal(line, &tx); err != nil {
			return nil, fmt.Errorf("line %d: %w", n, err)
		}
		txs = append(txs, tx)
	}
	return txs, scanner.Err()
}

func writeLine(w io.Writer, o *jsonObjectWriter) error {
	b, err := o.MarshalJSON()
	if err != nil {
		return err
	}
	_, err = w.Write(append(b, '\n'))
	return err
}
