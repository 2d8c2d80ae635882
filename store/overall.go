package store

import (
	"database/sql"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/linksignis/navledger/ledger"
)

const overallColumns = `"Date", "Broker P&L", "Total Broker", "Other P&L",
	"Total Other", "Total P&L", "Period Starting NAV",
	"Start Fund Value (Accounts Total)", "End Fund Value (Accounts Total)",
	"Start Fund Value (NAV + Cum. P&L)", "End Fund Value (NAV + Cum. P&L)",
	"Daily Return", "Period Cumulative Return"`

// ReplaceOverall swaps the derived ledger wholesale: delete-all then
// insert-all inside one transaction, so readers never observe a partial
// rebuild.
func (s *Store) ReplaceOverall(rows []ledger.Row) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin overall replace: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM overall`); err != nil {
		return fmt.Errorf("clear overall: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO overall (` + overallColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare overall insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		_, err := stmt.Exec(
			r.Date.String(),
			fromPtr(r.BrokerPL),
			fromPtr(r.TotalBroker),
			r.OtherPL,
			r.TotalOther,
			r.TotalPL,
			fromPtr(r.PeriodStartingNAV),
			r.StartFundValue,
			r.EndFundValue,
			fromPtr(r.StartFundValueNAV),
			fromPtr(r.EndFundValueNAV),
			fromPtr(r.DailyReturn),
			fromPtr(r.PeriodReturn),
		)
		if err != nil {
			return fmt.Errorf("insert overall row %s: %w", r.Date, err)
		}
	}
	return tx.Commit()
}

// OverallRows returns the persisted ledger in calendar order.
func (s *Store) OverallRows() ([]ledger.Row, error) {
	dbRows, err := s.db.Query(`SELECT ` + overallColumns + ` FROM overall`)
	if err != nil {
		return nil, fmt.Errorf("query overall: %w", err)
	}
	defer dbRows.Close()

	var out []ledger.Row
	for dbRows.Next() {
		var (
			dateStr                            string
			brokerPL, totalBroker              sql.NullFloat64
			otherPL, totalOther, totalPL       sql.NullFloat64
			periodNAV, startFund, endFund      sql.NullFloat64
			startNAV, endNAV, daily, periodRet sql.NullFloat64
		)
		if err := dbRows.Scan(&dateStr, &brokerPL, &totalBroker, &otherPL,
			&totalOther, &totalPL, &periodNAV, &startFund, &endFund,
			&startNAV, &endNAV, &daily, &periodRet); err != nil {
			return nil, err
		}
		date, err := ledger.ParseDate(dateStr)
		if err != nil {
			s.log.Warn("skipping overall row with malformed date",
				zap.String("date", dateStr), zap.Error(err))
			continue
		}
		out = append(out, ledger.Row{
			Date:              date,
			BrokerPL:          nullable(brokerPL),
			TotalBroker:       nullable(totalBroker),
			OtherPL:           otherPL.Float64,
			TotalOther:        totalOther.Float64,
			TotalPL:           totalPL.Float64,
			PeriodStartingNAV: nullable(periodNAV),
			StartFundValue:    startFund.Float64,
			EndFundValue:      endFund.Float64,
			StartFundValueNAV: nullable(startNAV),
			EndFundValueNAV:   nullable(endNAV),
			DailyReturn:       nullable(daily),
			PeriodReturn:      nullable(periodRet),
		})
	}
	if err := dbRows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// OverallBetween returns ledger rows within [start, end], compared by
// calendar value, never by TEXT order.
func (s *Store) OverallBetween(start, end ledger.Date) ([]ledger.Row, error) {
	all, err := s.OverallRows()
	if err != nil {
		return nil, err
	}
	var out []ledger.Row
	for _, r := range all {
		if r.Date.Before(start) || r.Date.After(end) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// RebuildOverall recomputes the entire derived ledger from the current
// transaction and override data and persists it. Idempotent: rebuilding with
// unchanged inputs rewrites identical rows. Returns the row count.
func (s *Store) RebuildOverall(epoch ledger.Date) (int, error) {
	broker, err := s.BrokerDays()
	if err != nil {
		return 0, err
	}
	other, err := s.OtherTransactions()
	if err != nil {
		return 0, err
	}
	overrides, err := s.ValuationOverrides()
	if err != nil {
		return 0, err
	}

	rows := ledger.Build(ledger.BuildInput{
		Epoch:     epoch,
		Broker:    broker,
		Other:     other,
		Overrides: overrides,
	})
	if len(rows) == 0 {
		s.log.Warn("no broker data, overall ledger left empty")
	}
	if err := s.ReplaceOverall(rows); err != nil {
		return 0, err
	}
	return len(rows), nil
}

// Stats summarizes the persisted ledger for the CLI.
type Stats struct {
	Rows      int
	FirstDate ledger.Date
	LastDate  ledger.Date
	TotalPL   float64
	MinPL     float64
	MaxPL     float64
}

// OverallStats returns summary statistics, or nil when the ledger is empty.
func (s *Store) OverallStats() (*Stats, error) {
	rows, err := s.OverallRows()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	st := &Stats{
		Rows:      len(rows),
		FirstDate: rows[0].Date,
		LastDate:  rows[len(rows)-1].Date,
		MinPL:     rows[0].TotalPL,
		MaxPL:     rows[0].TotalPL,
	}
	for _, r := range rows {
		st.TotalPL += r.TotalPL
		if r.TotalPL < st.MinPL {
			st.MinPL = r.TotalPL
		}
		if r.TotalPL > st.MaxPL {
			st.MaxPL = r.TotalPL
		}
	}
	return st, nil
}
