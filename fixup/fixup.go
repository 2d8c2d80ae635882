// Package fixup detects carry-forward breaks at valuation dates and repairs
// them with offsetting overnight transactions on the prior business day.
package fixup

import (
	"fmt"
	"math"

	"github.com/linksignis/navledger/ledger"
)

// Threshold is the absolute fund-value gap, in account currency, below which
// a valuation-date break is ignored as rounding noise.
const Threshold = 0.10

// Discrepancy is one break in the carry-forward identity at a valuation date:
// the fund value recorded for the date differs from what the previous day's
// close implies.
type Discrepancy struct {
	ValuationDate ledger.Date
	PreviousDate  ledger.Date

	// Expected is the previous day's end value plus its overnight amounts;
	// Recorded is the start value actually on the valuation date.
	Expected float64
	Recorded float64
	Delta    float64 // Expected - Recorded
}

func (d Discrepancy) String() string {
	return fmt.Sprintf("valuation %s: expected %.2f from %s close, recorded %.2f (delta %+.2f)",
		d.ValuationDate, d.Expected, d.PreviousDate, d.Recorded, d.Delta)
}

// Correction returns the transaction that closes the gap. Dated the previous
// day and flagged overnight, it leaves that day's end value untouched and
// shifts only the carry into the valuation date. Not counted in P&L: the gap
// is a valuation adjustment, not a gain or loss.
func (d Discrepancy) Correction(runID string) ledger.OtherTransaction {
	return ledger.OtherTransaction{
		Date:        d.PreviousDate,
		Amount:      -d.Delta,
		Account:     "Correction",
		Description: "Valuation Correction",
		CountedInPL: false,
		Overnight:   true,
		Note:        "Automatic correction for valuation discrepancy (run " + runID + ")",
	}
}

// Detect scans the built ledger for carry-forward breaks at valuation dates.
// The first row is never checked: it has no previous day to carry from.
func Detect(rows []ledger.Row, other []ledger.OtherTransaction, overrides []ledger.ValuationOverride) []Discrepancy {
	if len(rows) < 2 {
		return nil
	}

	dayOvernight := make(map[ledger.Date]float64)
	for _, tx := range other {
		if tx.Overnight {
			dayOvernight[tx.Date] += tx.Amount
		}
	}

	dates := make([]ledger.Date, len(rows))
	for i, r := range rows {
		dates[i] = r.Date
	}
	overrideDates := make([]ledger.Date, len(overrides))
	for i, ov := range overrides {
		overrideDates[i] = ov.Date
	}
	valuation := ledger.ValuationDates(dates, overrideDates)

	var out []Discrepancy
	for i := 1; i < len(rows); i++ {
		if !valuation[rows[i].Date] {
			continue
		}
		prev := rows[i-1]
		expected := prev.EndFundValue + dayOvernight[prev.Date]
		recorded := rows[i].StartFundValue
		if math.Abs(expected-recorded) <= Threshold {
			continue
		}
		out = append(out, Discrepancy{
			ValuationDate: rows[i].Date,
			PreviousDate:  prev.Date,
			Expected:      expected,
			Recorded:      recorded,
			Delta:         expected - recorded,
		})
	}
	return out
}
