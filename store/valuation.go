package store

import (
	"database/sql"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/linksignis/navledger/ledger"
)

// UpsertValuationDate adds date as a user-designated valuation date, or
// updates its fund value if the date is already present. Returns whether a
// new row was created.
func (s *Store) UpsertValuationDate(ov ledger.ValuationOverride) (created bool, err error) {
	existing, err := s.ValuationDate(ov.Date)
	if err != nil {
		return false, err
	}
	if existing != nil {
		_, err = s.db.Exec(`UPDATE valuation_dates SET "Fund Value" = ? WHERE "Date" = ?`,
			fromPtr(ov.FundValue), ov.Date.String())
		if err != nil {
			return false, fmt.Errorf("update valuation date: %w", err)
		}
		return false, nil
	}
	_, err = s.db.Exec(`INSERT INTO valuation_dates ("Date", "Fund Value") VALUES (?, ?)`,
		ov.Date.String(), fromPtr(ov.FundValue))
	if err != nil {
		return false, fmt.Errorf("insert valuation date: %w", err)
	}
	return true, nil
}

// ValuationDate returns the override for date, or nil when none exists.
func (s *Store) ValuationDate(date ledger.Date) (*ledger.ValuationOverride, error) {
	var fv sql.NullFloat64
	err := s.db.QueryRow(`SELECT "Fund Value" FROM valuation_dates WHERE "Date" = ?`,
		date.String()).Scan(&fv)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query valuation date %s: %w", date, err)
	}
	return &ledger.ValuationOverride{Date: date, FundValue: nullable(fv)}, nil
}

// DeleteValuationDate removes the override, reporting whether it existed.
func (s *Store) DeleteValuationDate(date ledger.Date) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM valuation_dates WHERE "Date" = ?`, date.String())
	if err != nil {
		return false, fmt.Errorf("delete valuation date %s: %w", date, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ValuationOverrides returns every override in calendar order, skipping rows
// with malformed dates.
func (s *Store) ValuationOverrides() ([]ledger.ValuationOverride, error) {
	rows, err := s.db.Query(`SELECT "Date", "Fund Value" FROM valuation_dates`)
	if err != nil {
		return nil, fmt.Errorf("query valuation_dates: %w", err)
	}
	defer rows.Close()

	var out []ledger.ValuationOverride
	for rows.Next() {
		var (
			dateStr string
			fv      sql.NullFloat64
		)
		if err := rows.Scan(&dateStr, &fv); err != nil {
			return nil, err
		}
		date, err := ledger.ParseDate(dateStr)
		if err != nil {
			s.log.Warn("skipping valuation date with malformed date",
				zap.String("date", dateStr), zap.Error(err))
			continue
		}
		out = append(out, ledger.ValuationOverride{Date: date, FundValue: nullable(fv)})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}
