package fixup

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/linksignis/navledger/ledger"
	"github.com/linksignis/navledger/pkg/id"
	"github.com/linksignis/navledger/store"
)

// Storage is the slice of the store the fixup loop needs.
type Storage interface {
	BrokerDays() ([]ledger.BrokerDay, error)
	OtherTransactions() ([]ledger.OtherTransaction, error)
	ValuationOverrides() ([]ledger.ValuationOverride, error)
	InsertOtherTransaction(tx ledger.OtherTransaction) error
	ReplaceOverall(rows []ledger.Row) error
}

type Options struct {
	Epoch         ledger.Date
	MaxIterations int // 0 means DefaultMaxIterations
	Logger        *zap.Logger
}

// DefaultMaxIterations bounds the detect-correct loop. Each applied
// correction can surface at most one new break at a later valuation date, so
// convergence is normally quick; the ceiling guards against corrupted data
// that never settles.
const DefaultMaxIterations = 100

// Result summarizes one fixup run.
type Result struct {
	RunID     string
	Applied   int
	Remaining []Discrepancy // unresolved because the user declined
}

// Run detects valuation discrepancies and applies confirmed corrections
// until the ledger is clean, the user declines, or the iteration ceiling is
// hit. The rebuilt ledger is persisted before returning, whatever the
// outcome, so the overall table always reflects the corrections made.
func Run(st Storage, confirmer Confirmer, opts Options) (Result, error) {
	maxIter := opts.MaxIterations
	if maxIter == 0 {
		maxIter = DefaultMaxIterations
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	res := Result{RunID: id.New()}

	for iter := 0; ; iter++ {
		rows, discrepancies, err := rebuildAndDetect(st, opts.Epoch)
		if err != nil {
			return res, err
		}
		if err := st.ReplaceOverall(rows); err != nil {
			return res, err
		}
		if len(discrepancies) == 0 {
			log.Info("fixup complete",
				zap.String("run", res.RunID), zap.Int("applied", res.Applied))
			return res, nil
		}
		if iter >= maxIter {
			return res, fmt.Errorf("fixup did not converge after %d iterations, %d discrepancies remain",
				maxIter, len(discrepancies))
		}

		d := discrepancies[0]
		log.Info("valuation discrepancy detected",
			zap.String("run", res.RunID),
			zap.Stringer("valuation_date", d.ValuationDate),
			zap.Float64("expected", d.Expected),
			zap.Float64("recorded", d.Recorded),
			zap.Float64("delta", d.Delta))

		ok, err := confirmer.Confirm(d)
		if err != nil {
			return res, err
		}
		if !ok {
			res.Remaining = discrepancies
			log.Info("correction declined, stopping",
				zap.String("run", res.RunID), zap.Int("remaining", len(discrepancies)))
			return res, nil
		}

		corr := d.Correction(res.RunID)
		if err := st.InsertOtherTransaction(corr); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				// An identical correction is already present; the break must
				// come from data changed after it was applied.
				return res, fmt.Errorf("correction for %s already exists but discrepancy persists: %s",
					d.ValuationDate, d)
			}
			return res, err
		}
		res.Applied++
		log.Info("correction applied",
			zap.String("run", res.RunID),
			zap.Stringer("date", corr.Date),
			zap.Float64("amount", corr.Amount))
	}
}

func rebuildAndDetect(st Storage, epoch ledger.Date) ([]ledger.Row, []Discrepancy, error) {
	broker, err := st.BrokerDays()
	if err != nil {
		return nil, nil, err
	}
	other, err := st.OtherTransactions()
	if err != nil {
		return nil, nil, err
	}
	overrides, err := st.ValuationOverrides()
	if err != nil {
		return nil, nil, err
	}
	rows := ledger.Build(ledger.BuildInput{
		Epoch:     epoch,
		Broker:    broker,
		Other:     other,
		Overrides: overrides,
	})
	return rows, Detect(rows, other, overrides), nil
}
