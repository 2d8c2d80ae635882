package ingest

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/linksignis/navledger/ledger"
	"github.com/linksignis/navledger/reconcile"
)

// Brokerage activity statements are key/value exports: each line carries a
// Statement section name, a Field Name, and a Field Value. The day's figures
// live in the "Change in NAV" section; the statement date is the "Period"
// field.
const (
	colStatement  = "Statement"
	colFieldName  = "Field Name"
	colFieldValue = "Field Value"

	navSection  = "Change in NAV"
	periodField = "Period"
)

// BrokerFile ingests one brokerage statement, reconciling its P&L on the
// way in, and rebuilds the ledger.
func (in *Ingestor) BrokerFile(path string) error {
	stmt, err := in.parseBrokerStatement(path)
	if err != nil {
		return err
	}
	if err := in.Store.UpsertBrokerDay(stmt.BrokerDay(in.Log)); err != nil {
		return err
	}
	in.Log.Info("brokerage statement ingested",
		zap.String("file", filepath.Base(path)),
		zap.Stringer("date", stmt.Date))
	return in.rebuild()
}

// BrokerFolder ingests every CSV statement in dir, rebuilding the ledger
// once at the end. Files that fail to parse are logged and skipped; the
// count of successfully ingested files is returned.
func (in *Ingestor) BrokerFolder(dir string) (int, error) {
	files, err := listCSV(dir)
	if err != nil {
		return 0, err
	}
	if len(files) == 0 {
		return 0, fmt.Errorf("no CSV files in %s", dir)
	}

	loaded := 0
	for _, path := range files {
		stmt, err := in.parseBrokerStatement(path)
		if err != nil {
			in.Log.Warn("skipping statement",
				zap.String("file", filepath.Base(path)), zap.Error(err))
			continue
		}
		if err := in.Store.UpsertBrokerDay(stmt.BrokerDay(in.Log)); err != nil {
			return loaded, err
		}
		loaded++
	}
	if loaded == 0 {
		return 0, fmt.Errorf("no statements could be parsed from %s", dir)
	}
	return loaded, in.rebuild()
}

func (in *Ingestor) parseBrokerStatement(path string) (reconcile.Statement, error) {
	f, err := os.Open(path)
	if err != nil {
		return reconcile.Statement{}, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // statements mix section widths

	records, err := r.ReadAll()
	if err != nil {
		return reconcile.Statement{}, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if len(records) < 2 {
		return reconcile.Statement{}, fmt.Errorf("%s: empty statement", filepath.Base(path))
	}

	idx := map[string]int{}
	for i, name := range records[0] {
		idx[name] = i
	}
	for _, col := range []string{colStatement, colFieldName, colFieldValue} {
		if _, ok := idx[col]; !ok {
			return reconcile.Statement{}, fmt.Errorf("%s: missing column %q", filepath.Base(path), col)
		}
	}
	cell := func(rec []string, col string) (string, bool) {
		i := idx[col]
		if i >= len(rec) {
			return "", false
		}
		return rec[i], true
	}

	var stmt reconcile.Statement
	navRows := 0
	for _, rec := range records[1:] {
		name, ok := cell(rec, colFieldName)
		if !ok {
			continue
		}
		value, ok := cell(rec, colFieldValue)
		if !ok {
			continue
		}

		if name == periodField && stmt.Date.IsZero() {
			d, err := parseFlexibleDate(value)
			if err != nil {
				return reconcile.Statement{}, fmt.Errorf("%s: bad period %q", filepath.Base(path), value)
			}
			stmt.Date = d
			continue
		}

		section, ok := cell(rec, colStatement)
		if !ok || section != navSection {
			continue
		}
		navRows++
		if navRows == 1 {
			// First row of the section is its header line.
			continue
		}

		v, err := parseMoney(value)
		if err != nil {
			in.Log.Warn("unparseable statement value",
				zap.String("file", filepath.Base(path)),
				zap.String("field", name), zap.String("value", value))
			continue
		}

		switch name {
		case "Starting Value":
			stmt.StartingValue = v
		case "Ending Value":
			stmt.EndingValue = v
		case "Deposits & Withdrawals":
			stmt.DepositsWithdrawals = v
		case "Mark-to-Market":
			stmt.MarkToMarket = v
		case "Change in Interest Accruals":
			stmt.InterestAccrualChange = v
		case "Change in Dividend Accruals":
			stmt.DividendAccrualChange = v
		case "Commissions":
			stmt.Commissions = v
		case "Interest":
			stmt.Interest = v
		case "Dividends":
			stmt.Dividends = v
		}
	}

	if stmt.Date == (ledger.Date{}) {
		return reconcile.Statement{}, fmt.Errorf("%s: no %q field found", filepath.Base(path), periodField)
	}
	if navRows == 0 {
		return reconcile.Statement{}, fmt.Errorf("%s: no %q section found", filepath.Base(path), navSection)
	}
	return stmt, nil
}
