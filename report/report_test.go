package report

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/linksignis/navledger/ledger"
	"github.com/linksignis/navledger/store"
)

func fp(v float64) *float64 { return &v }

func brokerDay(date string, pl, total float64) ledger.BrokerDay {
	return ledger.BrokerDay{Date: ledger.MustDate(date), PL: fp(pl), TotalBroker: fp(total)}
}

func newReportStore(t *testing.T) *store.Store {
	t.Helper()

	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	days := []ledger.BrokerDay{
		brokerDay("01/19/2023", 500, 100000),
		brokerDay("01/20/2023", -200, 99800),
		brokerDay("02/01/2023", 300, 100100),
	}
	for _, d := range days {
		require.NoError(t, st.UpsertBrokerDay(d))
	}
	require.NoError(t, st.InsertOtherTransaction(ledger.OtherTransaction{
		Date:        ledger.MustDate("01/20/2023"),
		Amount:      -125.5,
		Account:     "Ops",
		Description: "Audit fee",
		CountedInPL: true,
	}))

	_, err = st.RebuildOverall(ledger.MustDate("01/19/2023"))
	require.NoError(t, err)
	return st
}

func TestGenerate(t *testing.T) {
	t.Parallel()

	st := newReportStore(t)
	path := filepath.Join(t.TempDir(), "report.xlsx")

	err := Generate(st, ledger.MustDate("01/01/2023"), ledger.MustDate("12/31/2023"), path, zap.NewNop())
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	assert.ElementsMatch(t, []string{sheetOverall, sheetBroker, sheetOther}, f.GetSheetList())

	date, err := f.GetCellValue(sheetOverall, "A2")
	require.NoError(t, err)
	assert.Equal(t, "01/19/2023", date)

	// Second broker row carries the recomputed P&L as a formula.
	formula, err := f.GetCellFormula(sheetBroker, "B3")
	require.NoError(t, err)
	assert.Equal(t, "L3-L2-I3-H3-G3", formula)

	// First broker row keeps the stored value.
	formula, err = f.GetCellFormula(sheetBroker, "B2")
	require.NoError(t, err)
	assert.Empty(t, formula)

	daily, err := f.GetCellFormula(sheetOverall, "L2")
	require.NoError(t, err)
	assert.Equal(t, "F2/J2", daily)

	period, err := f.GetCellFormula(sheetOverall, "M3")
	require.NoError(t, err)
	assert.Contains(t, period, "IF(G3<>G2")

	counted, err := f.GetCellValue(sheetOther, "E2")
	require.NoError(t, err)
	assert.Equal(t, "Yes", counted)
}

func TestGenerateRangeFiltering(t *testing.T) {
	t.Parallel()

	st := newReportStore(t)
	path := filepath.Join(t.TempDir(), "report.xlsx")

	err := Generate(st, ledger.MustDate("02/01/2023"), ledger.MustDate("02/28/2023"), path, zap.NewNop())
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	rows, err := f.GetRows(sheetBroker)
	require.NoError(t, err)
	require.Len(t, rows, 2) // header + one February day
	assert.Equal(t, "02/01/2023", rows[1][0])

	// The January transaction falls outside the range, so no sheet.
	assert.NotContains(t, f.GetSheetList(), sheetOther)
}

func TestGenerateNoBrokerData(t *testing.T) {
	t.Parallel()

	st := newReportStore(t)
	path := filepath.Join(t.TempDir(), "report.xlsx")

	err := Generate(st, ledger.MustDate("01/01/2024"), ledger.MustDate("12/31/2024"), path, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no broker data")
}

func TestValidateBrokerPL(t *testing.T) {
	t.Parallel()

	days := []ledger.BrokerDay{
		{Date: ledger.MustDate("01/19/2023"), PL: fp(0), TotalBroker: fp(100000)},
		{
			Date:                ledger.MustDate("01/20/2023"),
			PL:                  fp(4700),
			TotalBroker:         fp(105000),
			DepositsWithdrawals: fp(0),
			Dividends:           fp(200),
			Interest:            fp(100),
		},
	}
	assert.Zero(t, ValidateBrokerPL(days, zap.NewNop()))

	days[1].PL = fp(4000)
	assert.Equal(t, 1, ValidateBrokerPL(days, zap.NewNop()))

	// Differences within rounding tolerance pass.
	days[1].PL = fp(4700.005)
	assert.Zero(t, ValidateBrokerPL(days, zap.NewNop()))
}
