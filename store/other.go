package store

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/linksignis/navledger/ledger"
)

// UpsertOtherTransaction inserts the transaction, or — when the
// (date, account, description, amount) tuple already exists — updates its
// flags and note in place. Returns whether a new row was created.
func (s *Store) UpsertOtherTransaction(tx ledger.OtherTransaction) (inserted bool, err error) {
	_, err = s.db.Exec(`
		INSERT INTO other_transactions
		("Date", "Amount", "Account Description", "Transaction Description",
		 "Counted in P&L", "Overnight", "Additional Info")
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		tx.Date.String(), tx.Amount, tx.Account, tx.Description,
		tx.CountedInPL, tx.Overnight, tx.Note,
	)
	if err == nil {
		return true, nil
	}
	if !isUniqueViolation(err) {
		return false, fmt.Errorf("insert other transaction: %w", err)
	}

	_, err = s.db.Exec(`
		UPDATE other_transactions
		SET "Counted in P&L" = ?, "Overnight" = ?, "Additional Info" = ?
		WHERE "Date" = ? AND "Account Description" = ?
		  AND "Transaction Description" = ? AND "Amount" = ?`,
		tx.CountedInPL, tx.Overnight, tx.Note,
		tx.Date.String(), tx.Account, tx.Description, tx.Amount,
	)
	if err != nil {
		return false, fmt.Errorf("update other transaction: %w", err)
	}
	return false, nil
}

// InsertOtherTransaction inserts strictly; hitting the uniqueness constraint
// yields ErrDuplicate. Used for manual entry and for correction
// transactions, where a duplicate means the correction is already in place.
func (s *Store) InsertOtherTransaction(tx ledger.OtherTransaction) error {
	_, err := s.db.Exec(`
		INSERT INTO other_transactions
		("Date", "Amount", "Account Description", "Transaction Description",
		 "Counted in P&L", "Overnight", "Additional Info")
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		tx.Date.String(), tx.Amount, tx.Account, tx.Description,
		tx.CountedInPL, tx.Overnight, tx.Note,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert other transaction: %w", err)
	}
	return nil
}

// OtherTransactions returns every transaction, ordered by calendar date then
// insertion id. Rows with malformed dates are skipped with a warning.
func (s *Store) OtherTransactions() ([]ledger.OtherTransaction, error) {
	rows, err := s.db.Query(`
		SELECT id, "Date", "Amount", "Account Description",
		       "Transaction Description", "Counted in P&L", "Overnight",
		       "Additional Info"
		FROM other_transactions
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query other_transactions: %w", err)
	}
	defer rows.Close()

	var out []ledger.OtherTransaction
	for rows.Next() {
		var (
			tx      ledger.OtherTransaction
			dateStr string
		)
		if err := rows.Scan(&tx.ID, &dateStr, &tx.Amount, &tx.Account,
			&tx.Description, &tx.CountedInPL, &tx.Overnight, &tx.Note); err != nil {
			return nil, err
		}
		date, err := ledger.ParseDate(dateStr)
		if err != nil {
			s.log.Warn("skipping other transaction with malformed date",
				zap.Int64("id", tx.ID), zap.String("date", dateStr), zap.Error(err))
			continue
		}
		tx.Date = date
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sortOtherTransactions(out)
	return out, nil
}

func sortOtherTransactions(txs []ledger.OtherTransaction) {
	// Stable so insertion order (id) is preserved within a day.
	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].Date.Before(txs[j].Date)
	})
}
