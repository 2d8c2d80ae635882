// Package ingest loads brokerage statements and transaction CSVs into the
// store. Parsing is forgiving the way spreadsheet exports require: currency
// symbols and thousands separators are stripped, several date formats are
// accepted, and bad rows are skipped with a warning instead of failing the
// whole file.
package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/linksignis/navledger/ledger"
	"github.com/linksignis/navledger/store"
)

// Ingestor wires file parsing to the store. Every successful load finishes
// with a full ledger rebuild, so the overall table never lags the inputs.
type Ingestor struct {
	Store *store.Store
	Epoch ledger.Date
	Log   *zap.Logger
}

func (in *Ingestor) rebuild() error {
	n, err := in.Store.RebuildOverall(in.Epoch)
	if err != nil {
		return fmt.Errorf("rebuild ledger: %w", err)
	}
	in.Log.Info("ledger rebuilt", zap.Int("rows", n))
	return nil
}

// listCSV returns the CSV files directly inside dir, case-insensitive on the
// extension.
func listCSV(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("folder not found: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			continue
		}
		out = append(out, filepath.Join(dir, e.Name()))
	}
	return out, nil
}
