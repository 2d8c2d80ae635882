package store

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/linksignis/navledger/ledger"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")

	st, err := Open(path, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	return st, path
}

func fp(v float64) *float64 { return &v }

func TestSchemaCreated(t *testing.T) {
	t.Parallel()

	st, path := newTestStore(t)
	assert.NoError(t, st.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rows, err := db.Query(`SELECT name FROM sqlite_master WHERE type='table'
		AND name IN ('broker','other_transactions','valuation_dates','overall')`)
	require.NoError(t, err)
	defer rows.Close()

	found := map[string]bool{}
	for rows.Next() {
		var name string
		assert.NoError(t, rows.Scan(&name))
		found[name] = true
	}
	assert.NoError(t, rows.Err())

	assert.True(t, found["broker"])
	assert.True(t, found["other_transactions"])
	assert.True(t, found["valuation_dates"])
	assert.True(t, found["overall"])
}

func TestBrokerDayRoundTrip(t *testing.T) {
	t.Parallel()

	st, _ := newTestStore(t)

	rec := ledger.BrokerDay{
		Date:                  ledger.MustDate("03/15/2023"),
		PL:                    fp(1234.56),
		CumulativePL:          fp(5000),
		MarkToMarket:          fp(1200),
		DividendAccrualChange: fp(10),
		Interest:              fp(-3.5),
		Dividends:             fp(25),
		DepositsWithdrawals:   fp(0),
		InterestAccrualChange: fp(2.5),
		Commissions:           fp(-4.44),
		TotalBroker:           fp(250000),
	}
	require.NoError(t, st.UpsertBrokerDay(rec))

	days, err := st.BrokerDays()
	require.NoError(t, err)
	require.Len(t, days, 1)

	got := days[0]
	assert.Equal(t, rec.Date, got.Date)
	assert.InDelta(t, 1234.56, *got.PL, 1e-9)
	assert.Nil(t, got.ReportingError)
	assert.InDelta(t, 250000, *got.TotalBroker, 1e-9)
	assert.InDelta(t, -4.44, *got.Commissions, 1e-9)
}

func TestBrokerDayReplacesOnSameDate(t *testing.T) {
	t.Parallel()

	st, _ := newTestStore(t)

	d := ledger.MustDate("03/15/2023")
	require.NoError(t, st.UpsertBrokerDay(ledger.BrokerDay{Date: d, PL: fp(100), TotalBroker: fp(1000)}))
	require.NoError(t, st.UpsertBrokerDay(ledger.BrokerDay{Date: d, PL: fp(200), TotalBroker: fp(2000), ReportingError: fp(0.5)}))

	days, err := st.BrokerDays()
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.InDelta(t, 200, *days[0].PL, 1e-9)
	assert.InDelta(t, 0.5, *days[0].ReportingError, 1e-9)
}

func TestBrokerDaysCalendarOrder(t *testing.T) {
	t.Parallel()

	st, _ := newTestStore(t)

	// Lexical TEXT order would put 02/01/2023 before 12/30/2022.
	for _, s := range []string{"02/01/2023", "12/30/2022", "01/15/2023"} {
		require.NoError(t, st.UpsertBrokerDay(ledger.BrokerDay{Date: ledger.MustDate(s), PL: fp(1)}))
	}

	days, err := st.BrokerDays()
	require.NoError(t, err)
	require.Len(t, days, 3)
	assert.Equal(t, "12/30/2022", days[0].Date.String())
	assert.Equal(t, "01/15/2023", days[1].Date.String())
	assert.Equal(t, "02/01/2023", days[2].Date.String())
}

func TestOtherTransactionUpsert(t *testing.T) {
	t.Parallel()

	st, _ := newTestStore(t)

	tx := ledger.OtherTransaction{
		Date:        ledger.MustDate("02/01/2023"),
		Amount:      -125.5,
		Account:     "Ops",
		Description: "Audit fee",
		CountedInPL: true,
	}

	inserted, err := st.UpsertOtherTransaction(tx)
	require.NoError(t, err)
	assert.True(t, inserted)

	// Same identity tuple, different flags: updated in place, not duplicated.
	tx.CountedInPL = false
	tx.Overnight = true
	tx.Note = "reclassified"
	inserted, err = st.UpsertOtherTransaction(tx)
	require.NoError(t, err)
	assert.False(t, inserted)

	txs, err := st.OtherTransactions()
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.False(t, txs[0].CountedInPL)
	assert.True(t, txs[0].Overnight)
	assert.Equal(t, "reclassified", txs[0].Note)
}

func TestInsertOtherTransactionDuplicate(t *testing.T) {
	t.Parallel()

	st, _ := newTestStore(t)

	tx := ledger.OtherTransaction{
		Date:        ledger.MustDate("02/01/2023"),
		Amount:      -42,
		Account:     "Correction",
		Description: "Valuation Correction",
		Overnight:   true,
	}
	require.NoError(t, st.InsertOtherTransaction(tx))

	err := st.InsertOtherTransaction(tx)
	assert.ErrorIs(t, err, ErrDuplicate)

	// Same tuple with a different amount is a distinct transaction.
	tx.Amount = -43
	assert.NoError(t, st.InsertOtherTransaction(tx))
}

func TestOtherTransactionsOrderedByDateThenID(t *testing.T) {
	t.Parallel()

	st, _ := newTestStore(t)

	for i, s := range []string{"03/01/2023", "01/01/2023", "03/01/2023"} {
		require.NoError(t, st.InsertOtherTransaction(ledger.OtherTransaction{
			Date:        ledger.MustDate(s),
			Amount:      float64(i + 1),
			Account:     "A",
			Description: "tx",
		}))
	}

	txs, err := st.OtherTransactions()
	require.NoError(t, err)
	require.Len(t, txs, 3)
	assert.Equal(t, "01/01/2023", txs[0].Date.String())
	assert.Equal(t, "03/01/2023", txs[1].Date.String())
	assert.Equal(t, "03/01/2023", txs[2].Date.String())
	// Insertion order within the same day.
	assert.InDelta(t, 1, txs[1].Amount, 1e-9)
	assert.InDelta(t, 3, txs[2].Amount, 1e-9)
}

func TestValuationDateLifecycle(t *testing.T) {
	t.Parallel()

	st, _ := newTestStore(t)

	d := ledger.MustDate("06/30/2023")

	created, err := st.UpsertValuationDate(ledger.ValuationOverride{Date: d})
	require.NoError(t, err)
	assert.True(t, created)

	got, err := st.ValuationDate(d)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Nil(t, got.FundValue)

	created, err = st.UpsertValuationDate(ledger.ValuationOverride{Date: d, FundValue: fp(1500000)})
	require.NoError(t, err)
	assert.False(t, created)

	got, err = st.ValuationDate(d)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.NotNil(t, got.FundValue)
	assert.InDelta(t, 1500000, *got.FundValue, 1e-9)

	existed, err := st.DeleteValuationDate(d)
	require.NoError(t, err)
	assert.True(t, existed)

	existed, err = st.DeleteValuationDate(d)
	require.NoError(t, err)
	assert.False(t, existed)

	got, err = st.ValuationDate(d)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestReplaceOverallIsWholesale(t *testing.T) {
	t.Parallel()

	st, _ := newTestStore(t)

	first := []ledger.Row{
		{Date: ledger.MustDate("01/19/2023"), TotalPL: 10, StartFundValue: 100, EndFundValue: 110},
		{Date: ledger.MustDate("01/20/2023"), TotalPL: -5, StartFundValue: 110, EndFundValue: 105},
	}
	require.NoError(t, st.ReplaceOverall(first))

	second := []ledger.Row{
		{Date: ledger.MustDate("02/01/2023"), TotalPL: 7, StartFundValue: 105, EndFundValue: 112,
			BrokerPL: fp(7), DailyReturn: fp(0.001)},
	}
	require.NoError(t, st.ReplaceOverall(second))

	rows, err := st.OverallRows()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "02/01/2023", rows[0].Date.String())
	require.NotNil(t, rows[0].BrokerPL)
	assert.InDelta(t, 7, *rows[0].BrokerPL, 1e-9)
	require.NotNil(t, rows[0].DailyReturn)
	assert.InDelta(t, 0.001, *rows[0].DailyReturn, 1e-9)
	assert.Nil(t, rows[0].PeriodStartingNAV)
}

func TestOverallBetween(t *testing.T) {
	t.Parallel()

	st, _ := newTestStore(t)

	var rows []ledger.Row
	for _, s := range []string{"12/30/2022", "01/19/2023", "02/01/2023", "03/01/2023"} {
		rows = append(rows, ledger.Row{Date: ledger.MustDate(s)})
	}
	require.NoError(t, st.ReplaceOverall(rows))

	got, err := st.OverallBetween(ledger.MustDate("01/01/2023"), ledger.MustDate("02/28/2023"))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "01/19/2023", got[0].Date.String())
	assert.Equal(t, "02/01/2023", got[1].Date.String())
}

func TestRebuildOverall(t *testing.T) {
	t.Parallel()

	st, _ := newTestStore(t)
	epoch := ledger.MustDate("01/19/2023")

	require.NoError(t, st.UpsertBrokerDay(ledger.BrokerDay{
		Date: epoch, PL: fp(500), TotalBroker: fp(100000),
	}))
	require.NoError(t, st.UpsertBrokerDay(ledger.BrokerDay{
		Date: ledger.MustDate("01/20/2023"), PL: fp(-200), TotalBroker: fp(99800),
	}))
	require.NoError(t, st.InsertOtherTransaction(ledger.OtherTransaction{
		Date: epoch, Amount: 1000, Account: "Bank", Description: "Cash", CountedInPL: false,
	}))

	n, err := st.RebuildOverall(epoch)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	rows, err := st.OverallRows()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.InDelta(t, 101000, rows[0].EndFundValue, 1e-9)
	assert.InDelta(t, 101000, rows[1].StartFundValue, 1e-9)
	assert.InDelta(t, 100800, rows[1].EndFundValue, 1e-9)

	// Rebuilding with unchanged inputs reproduces the same rows.
	n, err = st.RebuildOverall(epoch)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	again, err := st.OverallRows()
	require.NoError(t, err)
	assert.Equal(t, rows, again)
}

func TestRebuildOverallNoBrokerData(t *testing.T) {
	t.Parallel()

	st, _ := newTestStore(t)

	n, err := st.RebuildOverall(ledger.MustDate("01/19/2023"))
	require.NoError(t, err)
	assert.Zero(t, n)

	stats, err := st.OverallStats()
	require.NoError(t, err)
	assert.Nil(t, stats)
}

func TestOverallStats(t *testing.T) {
	t.Parallel()

	st, _ := newTestStore(t)

	require.NoError(t, st.ReplaceOverall([]ledger.Row{
		{Date: ledger.MustDate("01/19/2023"), TotalPL: 100},
		{Date: ledger.MustDate("01/20/2023"), TotalPL: -250},
		{Date: ledger.MustDate("01/23/2023"), TotalPL: 75},
	}))

	stats, err := st.OverallStats()
	require.NoError(t, err)
	require.NotNil(t, stats)
	assert.Equal(t, 3, stats.Rows)
	assert.Equal(t, "01/19/2023", stats.FirstDate.String())
	assert.Equal(t, "01/23/2023", stats.LastDate.String())
	assert.InDelta(t, -75, stats.TotalPL, 1e-9)
	assert.InDelta(t, -250, stats.MinPL, 1e-9)
	assert.InDelta(t, 75, stats.MaxPL, 1e-9)
}

func TestDropTable(t *testing.T) {
	t.Parallel()

	st, _ := newTestStore(t)

	require.NoError(t, st.UpsertBrokerDay(ledger.BrokerDay{Date: ledger.MustDate("01/19/2023")}))
	require.NoError(t, st.DropTable("broker"))

	assert.Error(t, st.DropTable("sqlite_master"))
	assert.Error(t, st.DropTable("trades; DROP TABLE overall"))
}
