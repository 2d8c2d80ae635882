package ingest

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/linksignis/navledger/ledger"
)

var otherColumns = []string{
	"Date", "Amount", "Account Description", "Transaction Description",
	"Counted in P&L", "Overnight", "Additional Info",
}

// OtherResult counts what an other-transactions load did.
type OtherResult struct {
	Inserted int
	Updated  int
	Skipped  int
}

func (r OtherResult) add(o OtherResult) OtherResult {
	return OtherResult{
		Inserted: r.Inserted + o.Inserted,
		Updated:  r.Updated + o.Updated,
		Skipped:  r.Skipped + o.Skipped,
	}
}

// OtherFile ingests one other-transactions CSV and rebuilds the ledger.
func (in *Ingestor) OtherFile(path string) (OtherResult, error) {
	res, err := in.loadOtherFile(path)
	if err != nil {
		return res, err
	}
	return res, in.rebuild()
}

// OtherFolder ingests every CSV in dir, rebuilding the ledger once at the
// end.
func (in *Ingestor) OtherFolder(dir string) (OtherResult, error) {
	files, err := listCSV(dir)
	if err != nil {
		return OtherResult{}, err
	}
	if len(files) == 0 {
		return OtherResult{}, fmt.Errorf("no CSV files in %s", dir)
	}

	var total OtherResult
	for _, path := range files {
		res, err := in.loadOtherFile(path)
		if err != nil {
			in.Log.Warn("skipping file",
				zap.String("file", filepath.Base(path)), zap.Error(err))
			continue
		}
		total = total.add(res)
	}
	return total, in.rebuild()
}

func (in *Ingestor) loadOtherFile(path string) (OtherResult, error) {
	var res OtherResult

	f, err := os.Open(path)
	if err != nil {
		return res, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return res, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if len(records) == 0 {
		return res, fmt.Errorf("%s: empty file", filepath.Base(path))
	}

	idx := map[string]int{}
	for i, name := range records[0] {
		idx[strings.TrimSpace(name)] = i
	}
	var missing []string
	for _, col := range otherColumns {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return res, fmt.Errorf("%s: missing required columns %v", filepath.Base(path), missing)
	}

	cell := func(rec []string, col string) string {
		i := idx[col]
		if i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	for rowNum, rec := range records[1:] {
		date, err := parseFlexibleDate(cell(rec, "Date"))
		if err != nil {
			in.Log.Warn("skipping row with invalid date",
				zap.String("file", filepath.Base(path)),
				zap.Int("row", rowNum+2), zap.Error(err))
			res.Skipped++
			continue
		}

		amount, err := parseMoney(cell(rec, "Amount"))
		if err != nil {
			in.Log.Warn("skipping row with invalid amount",
				zap.String("file", filepath.Base(path)),
				zap.Int("row", rowNum+2), zap.Error(err))
			res.Skipped++
			continue
		}

		tx := ledger.OtherTransaction{
			Date:        date,
			Account:     cell(rec, "Account Description"),
			Description: cell(rec, "Transaction Description"),
			CountedInPL: parseBool(cell(rec, "Counted in P&L")),
			Overnight:   parseBool(cell(rec, "Overnight")),
			Note:        cell(rec, "Additional Info"),
		}
		if amount != nil {
			tx.Amount = *amount
		}

		inserted, err := in.Store.UpsertOtherTransaction(tx)
		if err != nil {
			return res, err
		}
		if inserted {
			res.Inserted++
		} else {
			res.Updated++
		}
	}

	in.Log.Info("other transactions loaded",
		zap.String("file", filepath.Base(path)),
		zap.Int("inserted", res.Inserted),
		zap.Int("updated", res.Updated),
		zap.Int("skipped", res.Skipped))
	return res, nil
}
