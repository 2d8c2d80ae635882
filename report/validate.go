package report

import (
	"math"

	"go.uber.org/zap"

	"github.com/linksignis/navledger/ledger"
)

// plTolerance absorbs rounding differences between the stored P&L and the
// one recomputed from account totals.
const plTolerance = 0.01

// ValidateBrokerPL recomputes each day's P&L from the change in the account
// total, net of deposits, dividends and interest, and compares it with the
// stored figure. Mismatches are logged; the count of discrepant days is
// returned. The first day is skipped since it has no previous total.
func ValidateBrokerPL(days []ledger.BrokerDay, log *zap.Logger) int {
	discrepancies := 0
	for i := 1; i < len(days); i++ {
		d := days[i]
		if d.PL == nil {
			log.Warn("broker day has no stored P&L",
				zap.Stringer("date", d.Date))
			discrepancies++
			continue
		}

		computed := num(d.TotalBroker) - num(days[i-1].TotalBroker) -
			num(d.DepositsWithdrawals) - num(d.Dividends) - num(d.Interest)

		if diff := math.Abs(computed - *d.PL); diff > plTolerance {
			discrepancies++
			log.Warn("stored P&L disagrees with account totals",
				zap.Stringer("date", d.Date),
				zap.Float64("stored", *d.PL),
				zap.Float64("computed", computed),
				zap.Float64("difference", diff))
		}
	}
	return discrepancies
}

func num(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
