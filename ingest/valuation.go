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

// ValuationResult counts what a valuation-dates load did.
type ValuationResult struct {
	Added   int
	Updated int
	Skipped int
}

// ValuationFile ingests a valuation-dates CSV ("Date", "Fund Value") and
// rebuilds the ledger. Dates must be MM/DD/YYYY; the fund value may be
// blank, which still marks the date as a valuation date.
func (in *Ingestor) ValuationFile(path string) (ValuationResult, error) {
	var res ValuationResult

	f, err := os.Open(path)
	if err != nil {
		return res, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = sniffDelimiter(path)
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
	dateIdx, dateOK := idx["Date"]
	valueIdx, valueOK := idx["Fund Value"]
	if !dateOK || !valueOK {
		return res, fmt.Errorf(`%s: must contain "Date" and "Fund Value" columns`, filepath.Base(path))
	}

	for rowNum, rec := range records[1:] {
		var dateStr, valueStr string
		if dateIdx < len(rec) {
			dateStr = strings.TrimSpace(rec[dateIdx])
		}
		if valueIdx < len(rec) {
			valueStr = strings.TrimSpace(rec[valueIdx])
		}
		if dateStr == "" && valueStr == "" {
			continue
		}

		date, err := ledger.ParseDate(dateStr)
		if err != nil {
			in.Log.Warn("skipping row with invalid date, expected MM/DD/YYYY",
				zap.String("file", filepath.Base(path)),
				zap.Int("row", rowNum+2), zap.String("date", dateStr))
			res.Skipped++
			continue
		}

		value, err := parseMoney(valueStr)
		if err != nil {
			in.Log.Warn("ignoring unparseable fund value",
				zap.String("file", filepath.Base(path)),
				zap.Int("row", rowNum+2), zap.String("value", valueStr))
		}

		created, err := in.Store.UpsertValuationDate(ledger.ValuationOverride{
			Date:      date,
			FundValue: value,
		})
		if err != nil {
			return res, err
		}
		if created {
			res.Added++
		} else {
			res.Updated++
		}
	}

	in.Log.Info("valuation dates loaded",
		zap.String("file", filepath.Base(path)),
		zap.Int("added", res.Added),
		zap.Int("updated", res.Updated),
		zap.Int("skipped", res.Skipped))

	if res.Added > 0 || res.Updated > 0 {
		return res, in.rebuild()
	}
	return res, nil
}

// sniffDelimiter inspects the head of the file: exports from some locales
// use semicolons instead of commas.
func sniffDelimiter(path string) rune {
	f, err := os.Open(path)
	if err != nil {
		return ','
	}
	defer f.Close()

	buf := make([]byte, 1024)
	n, _ := f.Read(buf)
	sample := string(buf[:n])

	if strings.ContainsRune(sample, ',') {
		return ','
	}
	if strings.ContainsRune(sample, ';') {
		return ';'
	}
	return ','
}
