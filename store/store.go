// Package store persists the three input collections (broker snapshots,
// other transactions, valuation overrides) and the derived overall ledger in
// a single SQLite file. Dates are stored as MM/DD/YYYY TEXT; every ordered
// read parses them to calendar values first.
package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// ErrDuplicate reports that an insert hit the other_transactions uniqueness
// constraint. For correction transactions this means "already corrected".
var ErrDuplicate = errors.New("store: duplicate transaction")

type Store struct {
	db  *sql.DB
	log *zap.Logger
}

// Open opens (creating if needed) the database at path and applies the
// schema.
func Open(path string, log *zap.Logger) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db, log: log}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// droppable lists the tables the CLI may drop; anything else is refused.
var droppable = map[string]bool{
	"broker":             true,
	"other_transactions": true,
	"valuation_dates":    true,
	"overall":            true,
}

// DropTable removes one of the known tables. Dropping a table that does not
// exist is a no-op.
func (s *Store) DropTable(name string) error {
	if !droppable[name] {
		return fmt.Errorf("table %q cannot be dropped", name)
	}
	if _, err := s.db.Exec(fmt.Sprintf(`DROP TABLE IF EXISTS %q`, name)); err != nil {
		return fmt.Errorf("drop table %s: %w", name, err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var serr sqlite3.Error
	if errors.As(err, &serr) {
		return serr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			serr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// nullable converts a scanned NullFloat64 back to the pointer form used by
// the ledger types.
func nullable(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}

func fromPtr(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}
