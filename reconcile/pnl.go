// Package reconcile cross-checks the P&L reported by a brokerage statement
// using two independent formulas. Disagreements are data, not errors: the
// absolute difference is stored as the day's reporting error and logged, and
// ingestion always succeeds.
package reconcile

import (
	"math"

	"go.uber.org/zap"

	"github.com/linksignis/navledger/ledger"
)

const (
	// Tolerance is the absolute difference between the two P&L methods
	// above which a reporting error is recorded.
	Tolerance = 0.01

	// AccrualTolerance is the relative divergence between a cash
	// transaction and its accrual-change field that triggers the
	// informational accrual warning.
	AccrualTolerance = 0.10
)

// Statement is the per-day "Change in NAV" extract from one brokerage
// statement, before it becomes a BrokerDay. Nil means the statement did not
// report the field.
type Statement struct {
	Date                  ledger.Date
	StartingValue         *float64
	EndingValue           *float64
	DepositsWithdrawals   *float64
	MarkToMarket          *float64
	InterestAccrualChange *float64
	DividendAccrualChange *float64
	Commissions           *float64
	Interest              *float64
	Dividends             *float64
}

// ComponentSum is method A: the sum of the statement's P&L components.
func (s Statement) ComponentSum() float64 {
	return val(s.MarkToMarket) +
		val(s.InterestAccrualChange) +
		val(s.DividendAccrualChange) +
		val(s.Commissions) +
		val(s.Interest) +
		val(s.Dividends)
}

// NAVDelta is method B: ending value minus starting value minus deposits and
// withdrawals. It is nil when either account value is missing.
func (s Statement) NAVDelta() *float64 {
	if s.StartingValue == nil || s.EndingValue == nil {
		return nil
	}
	d := *s.EndingValue - *s.StartingValue - val(s.DepositsWithdrawals)
	return &d
}

// PL reconciles the two methods and returns the authoritative P&L plus the
// reporting error. When method B is not computable the component sum stands
// alone and the reporting error is zero.
func (s Statement) PL(log *zap.Logger) (pl, reportingError float64) {
	methodA := s.ComponentSum()
	methodB := s.NAVDelta()

	if methodB == nil {
		log.Warn("cannot verify P&L via NAV delta, missing account values",
			zap.String("date", s.Date.String()))
		return methodA, 0
	}

	diff := math.Abs(methodA - *methodB)
	if diff > Tolerance {
		log.Warn("P&L discrepancy detected",
			zap.String("date", s.Date.String()),
			zap.Float64("component_sum", methodA),
			zap.Float64("nav_delta", *methodB),
			zap.Float64("difference", diff))
		return methodA, diff
	}
	return methodA, 0
}

// CheckAccruals compares the interest and dividend cash amounts against
// their accrual-change fields. A cash receipt should unwind roughly the same
// accrual, so the change is expected to be the negated transaction amount;
// divergence beyond AccrualTolerance of the transaction is logged.
// Informational only.
func (s Statement) CheckAccruals(log *zap.Logger) {
	checkAccrual(log, s.Date, "interest", s.Interest, s.InterestAccrualChange)
	checkAccrual(log, s.Date, "dividend", s.Dividends, s.DividendAccrualChange)
}

func checkAccrual(log *zap.Logger, date ledger.Date, kind string, txn, accrual *float64) {
	if txn == nil || *txn == 0 || val(accrual) == 0 {
		return
	}
	expected := -*txn
	ratio := math.Abs(*accrual-expected) / math.Abs(*txn)
	if ratio > AccrualTolerance {
		log.Warn("accrual change diverges from transaction",
			zap.String("date", date.String()),
			zap.String("kind", kind),
			zap.Float64("transaction", *txn),
			zap.Float64("accrual_change", *accrual),
			zap.Float64("expected_change", expected),
			zap.Float64("divergence_ratio", ratio))
	}
}

// BrokerDay converts the statement into its persistent record, running both
// reconciliation checks along the way.
func (s Statement) BrokerDay(log *zap.Logger) ledger.BrokerDay {
	pl, reportingError := s.PL(log)
	s.CheckAccruals(log)

	return ledger.BrokerDay{
		Date:                  s.Date,
		PL:                    &pl,
		ReportingError:        &reportingError,
		MarkToMarket:          s.MarkToMarket,
		DividendAccrualChange: s.DividendAccrualChange,
		Interest:              s.Interest,
		Dividends:             s.Dividends,
		DepositsWithdrawals:   s.DepositsWithdrawals,
		InterestAccrualChange: s.InterestAccrualChange,
		Commissions:           s.Commissions,
		TotalBroker:           s.EndingValue,
	}
}

func val(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
