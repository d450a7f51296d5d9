package ledger

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/recon"
	"github.com/etnz/recon/date"
)

// DefaultPath selects the entries of a JSON document that is a plain array
// of entries.
const DefaultPath = "$[*]"

// DecodeJSON reads the ledger entries selected by a JSONPath expression in a
// JSON document, like "$.accounts[*].entries[*]". Each entry is an object
// with id, account, date, amount, currency and description properties.
// Amounts may be strings or numbers, their scale is kept either way.
func DecodeJSON(r io.Reader, path string, hint date.Convention) (*Memory, error) {
	if path == "" {
		path = DefaultPath
	}
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("cannot read ledger json: %w", err)
	}
	selected, err := jsonpath.Get(path, doc)
	if err != nil {
		return nil, fmt.Errorf("cannot select %q in ledger json: %w", path, err)
	}
	// a single match may come unwrapped
	list, ok := selected.([]any)
	if !ok {
		list = []any{selected}
	}

	m := NewMemory()
	for i, item := range list {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("ledger json entry %d: not an object", i)
		}
		e, err := jsonEntry(obj, hint)
		if err != nil {
			return nil, fmt.Errorf("ledger json entry %d: %w", i, err)
		}
		if e.ID == "" {
			e.ID = strconv.Itoa(i)
		}
		m.Append(e)
	}
	return m, nil
}

func jsonEntry(obj map[string]any, hint date.Convention) (recon.LedgerEntry, error) {
	text := func(key string) string {
		switch v := obj[key].(type) {
		case string:
			return strings.TrimSpace(v)
		case json.Number:
			return v.String()
		case nil:
			return ""
		default:
			return fmt.Sprint(v)
		}
	}
	on, err := date.Normalize(text("date"), hint)
	if err != nil {
		return recon.LedgerEntry{}, err
	}
	amount, err := recon.ParseAmount(text("amount"))
	if err != nil {
		return recon.LedgerEntry{}, err
	}
	return recon.LedgerEntry{
		ID:          text("id"),
		Account:     text("account"),
		Date:        on,
		Amount:      recon.M(amount, strings.ToUpper(text("currency"))),
		Description: text("description"),
	}, nil
}
