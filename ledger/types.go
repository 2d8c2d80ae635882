// Package ledger implements the daily fund-valuation ledger: the data model,
// the valuation-period tracker, and the builder that folds broker snapshots,
// other transactions and valuation overrides into one carry-forward row per
// day.
package ledger

// BrokerDay is one brokerage account snapshot. There is at most one per
// calendar date; re-ingesting a statement replaces the existing record.
// Nil pointers mean the statement did not report that field.
type BrokerDay struct {
	Date                  Date
	PL                    *float64
	ReportingError        *float64
	CumulativePL          *float64
	MarkToMarket          *float64
	DividendAccrualChange *float64
	Interest              *float64
	Dividends             *float64
	DepositsWithdrawals   *float64
	InterestAccrualChange *float64
	Commissions           *float64
	TotalBroker           *float64
}

// OtherTransaction is an ad-hoc cash movement outside the brokerage account.
// (Date, Account, Description, Amount) is unique; re-inserting the same tuple
// updates the flags and note instead of duplicating.
type OtherTransaction struct {
	ID          int64
	Date        Date
	Amount      float64
	Account     string
	Description string
	CountedInPL bool
	Overnight   bool
	Note        string
}

// ValuationOverride marks its date as a valuation date. FundValue, when
// present, replaces the carried-forward start-of-day fund value on that date.
type ValuationOverride struct {
	Date      Date
	FundValue *float64
}

// Row is one derived ledger row. Rows are recomputed in full on every build,
// never patched in place. Nil fields mean "not yet computable" (before the
// first valuation date, or a zero denominator), not an error.
type Row struct {
	Date              Date
	BrokerPL          *float64
	TotalBroker       *float64
	OtherPL           float64
	TotalOther        float64
	TotalPL           float64
	PeriodStartingNAV *float64
	StartFundValue    float64  // accounts total convention
	EndFundValue      float64  // accounts total convention
	StartFundValueNAV *float64 // period NAV + cumulative P&L convention
	EndFundValueNAV   *float64
	DailyReturn       *float64
	PeriodReturn      *float64 // cumulative return since the period start
}
