package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	"github.com/charmbracelet/log"
	"github.com/etnz/recon"
	"github.com/etnz/recon/date"
	_ "modernc.org/sqlite"
)

// DefaultTable is the table read by SQL when none is named.
const DefaultTable = "entries"

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQL reads ledger entries from a database table with the columns
//
//	id TEXT, account TEXT, date TEXT (ISO), amount TEXT, currency TEXT, description TEXT
//
// Amounts are stored as text to keep their scale.
type SQL struct {
	DB    *sql.DB
	Table string
}

// OpenSQLite opens the SQLite ledger database at path, read only.
func OpenSQLite(path string) (*SQL, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("cannot open ledger database %q: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("cannot open ledger database %q: %w", path, err)
	}
	return &SQL{DB: db, Table: DefaultTable}, nil
}

// Close closes the database.
func (s *SQL) Close() error { return s.DB.Close() }

func (s *SQL) Entries(ctx context.Context, account string, r date.Range) ([]recon.LedgerEntry, error) {
	table := s.Table
	if table == "" {
		table = DefaultTable
	}
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("invalid ledger table name %q", table)
	}
	query := fmt.Sprintf(`SELECT id, account, date, amount, currency, description FROM %s
		WHERE account = ? AND date >= ? AND date <= ? ORDER BY rowid`, table)
	rows, err := s.DB.QueryContext(ctx, query, account, r.From.String(), r.To.String())
	if err != nil {
		return nil, fmt.Errorf("cannot query ledger entries: %w", err)
	}
	defer rows.Close()

	var es []recon.LedgerEntry
	for rows.Next() {
		var id, acct, on, amount string
		var cur, desc sql.NullString
		if err := rows.Scan(&id, &acct, &on, &amount, &cur, &desc); err != nil {
			return nil, fmt.Errorf("cannot read ledger entry: %w", err)
		}
		d, err := date.Parse(on)
		if err != nil {
			return nil, fmt.Errorf("ledger entry %s: %w", id, err)
		}
		m, err := recon.ParseMoney(amount, cur.String)
		if err != nil {
			return nil, fmt.Errorf("ledger entry %s: %w", id, err)
		}
		es = append(es, recon.LedgerEntry{ID: id, Account: acct, Date: d, Amount: m, Description: desc.String})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("cannot read ledger entries: %w", err)
	}
	log.Debug("ledger entries read", "account", account, "range", r, "entries", len(es))
	return es, nil
}
