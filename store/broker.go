package store

import (
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/linksignis/navledger/ledger"
)

// UpsertBrokerDay inserts or replaces the snapshot for its date. One
// brokerage statement per date; re-ingesting replaces.
func (s *Store) UpsertBrokerDay(rec ledger.BrokerDay) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO broker
		("Date", "P&L", "Reporting Error", "Cumulative P&L", "Mark-to-Market",
		 "Change in Dividend Accruals", "Interest", "Dividends",
		 "Deposits & Withdrawals", "Change in Interest Accruals",
		 "Commissions", "Total Broker")
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Date.String(),
		fromPtr(rec.PL),
		fromPtr(rec.ReportingError),
		fromPtr(rec.CumulativePL),
		fromPtr(rec.MarkToMarket),
		fromPtr(rec.DividendAccrualChange),
		fromPtr(rec.Interest),
		fromPtr(rec.Dividends),
		fromPtr(rec.DepositsWithdrawals),
		fromPtr(rec.InterestAccrualChange),
		fromPtr(rec.Commissions),
		fromPtr(rec.TotalBroker),
	)
	if err != nil {
		return fmt.Errorf("upsert broker day %s: %w", rec.Date, err)
	}
	return nil
}

// BrokerDays returns every snapshot in calendar order. Rows whose date does
// not parse are skipped with a warning rather than aborting the read.
func (s *Store) BrokerDays() ([]ledger.BrokerDay, error) {
	rows, err := s.db.Query(`
		SELECT "Date", "P&L", "Reporting Error", "Cumulative P&L",
		       "Mark-to-Market", "Change in Dividend Accruals", "Interest",
		       "Dividends", "Deposits & Withdrawals",
		       "Change in Interest Accruals", "Commissions", "Total Broker"
		FROM broker`)
	if err != nil {
		return nil, fmt.Errorf("query broker: %w", err)
	}
	defer rows.Close()

	var out []ledger.BrokerDay
	for rows.Next() {
		var (
			dateStr string
			cols    [11]sql.NullFloat64
		)
		if err := rows.Scan(&dateStr,
			&cols[0], &cols[1], &cols[2], &cols[3], &cols[4], &cols[5],
			&cols[6], &cols[7], &cols[8], &cols[9], &cols[10]); err != nil {
			return nil, err
		}
		date, err := ledger.ParseDate(dateStr)
		if err != nil {
			s.log.Warn("skipping broker row with malformed date",
				zap.String("date", dateStr), zap.Error(err))
			continue
		}
		out = append(out, ledger.BrokerDay{
			Date:                  date,
			PL:                    nullable(cols[0]),
			ReportingError:        nullable(cols[1]),
			CumulativePL:          nullable(cols[2]),
			MarkToMarket:          nullable(cols[3]),
			DividendAccrualChange: nullable(cols[4]),
			Interest:              nullable(cols[5]),
			Dividends:             nullable(cols[6]),
			DepositsWithdrawals:   nullable(cols[7]),
			InterestAccrualChange: nullable(cols[8]),
			Commissions:           nullable(cols[9]),
			TotalBroker:           nullable(cols[10]),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sortBrokerDays(out)
	return out, nil
}

func sortBrokerDays(days []ledger.BrokerDay) {
	dates := make([]ledger.Date, len(days))
	byDate := make(map[ledger.Date]ledger.BrokerDay, len(days))
	for i, d := range days {
		dates[i] = d.Date
		byDate[d.Date] = d
	}
	ledger.SortDates(dates)
	for i, d := range dates {
		days[i] = byDate[d]
	}
}
