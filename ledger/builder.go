package ledger

// BuildInput carries everything the builder folds into the ledger. Epoch is
// the date on which the running other-transaction total resets to zero,
// passed in explicitly so the builder has no hidden state.
type BuildInput struct {
	Epoch     Date
	Broker    []BrokerDay
	Other     []OtherTransaction
	Overrides []ValuationOverride
}

// Build produces the ordered ledger in a single forward pass over every date
// present in the broker or other-transaction data. With no broker snapshots
// at all it returns an empty ledger; an unpopulated data set is not an error.
//
// Build is deterministic: identical inputs yield identical rows.
func Build(in BuildInput) []Row {
	if len(in.Broker) == 0 {
		return nil
	}

	brokerByDate := make(map[Date]BrokerDay, len(in.Broker))
	for _, b := range in.Broker {
		brokerByDate[b.Date] = b
	}

	daySum := make(map[Date]float64)
	dayPL := make(map[Date]float64)
	dayOvernight := make(map[Date]float64)
	for _, tx := range in.Other {
		daySum[tx.Date] += tx.Amount
		if tx.CountedInPL {
			dayPL[tx.Date] += tx.Amount
		}
		if tx.Overnight {
			dayOvernight[tx.Date] += tx.Amount
		}
	}

	overrideValue := make(map[Date]*float64, len(in.Overrides))
	overrideDates := make([]Date, 0, len(in.Overrides))
	for _, ov := range in.Overrides {
		overrideValue[ov.Date] = ov.FundValue
		overrideDates = append(overrideDates, ov.Date)
	}

	dates := unionDates(brokerByDate, daySum)
	valuation := ValuationDates(dates, overrideDates)

	rows := make([]Row, 0, len(dates))

	var (
		runningOther  float64
		periodNAV     *float64
		cumPL         float64
		prevEnd       *float64
		prevOvernight float64
	)

	for _, d := range dates {
		if d == in.Epoch {
			runningOther = 0
		}
		runningOther += daySum[d]

		overnight := dayOvernight[d]
		row := Row{
			Date:       d,
			OtherPL:    dayPL[d],
			TotalOther: runningOther,
		}

		var brokerPL, totalBroker float64
		if b, ok := brokerByDate[d]; ok {
			row.BrokerPL = b.PL
			row.TotalBroker = b.TotalBroker
			if b.PL != nil {
				brokerPL = *b.PL
			}
			if b.TotalBroker != nil {
				totalBroker = *b.TotalBroker
			}
		}
		row.TotalPL = brokerPL + row.OtherPL

		// Overnight amounts stay in the running total but are excluded
		// from the end-of-day value: they settle into tomorrow's start.
		row.EndFundValue = totalBroker + runningOther - overnight

		if v, ok := overrideValue[d]; ok && v != nil {
			row.StartFundValue = *v
		} else if prevEnd != nil {
			row.StartFundValue = *prevEnd + prevOvernight
		} else {
			row.StartFundValue = row.EndFundValue
		}

		if valuation[d] {
			nav := row.StartFundValue
			periodNAV = &nav
			cumPL = 0
		}

		if periodNAV != nil {
			nav := *periodNAV
			row.PeriodStartingNAV = &nav

			start := nav + cumPL
			end := start + row.TotalPL
			row.StartFundValueNAV = &start
			row.EndFundValueNAV = &end

			if start != 0 {
				r := row.TotalPL / start
				row.DailyReturn = &r
			}
			if nav != 0 {
				r := (cumPL + row.TotalPL) / nav
				row.PeriodReturn = &r
			}
		}

		cumPL += row.TotalPL
		end := row.EndFundValue
		prevEnd = &end
		prevOvernight = overnight

		rows = append(rows, row)
	}

	return rows
}

func unionDates(broker map[Date]BrokerDay, other map[Date]float64) []Date {
	set := make(map[Date]bool, len(broker)+len(other))
	for d := range broker {
		set[d] = true
	}
	for d := range other {
		set[d] = true
	}
	out := make([]Date, 0, len(set))
	for d := range set {
		out = append(out, d)
	}
	SortDates(out)
	return out
}
