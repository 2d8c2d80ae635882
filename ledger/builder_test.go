package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fp(v float64) *float64 { return &v }

func brokerDay(date string, pl, total float64) BrokerDay {
	return BrokerDay{Date: MustDate(date), PL: fp(pl), TotalBroker: fp(total)}
}

func TestBuildEmptyWithoutBrokerData(t *testing.T) {
	t.Parallel()

	rows := Build(BuildInput{
		Epoch: MustDate("01/19/2023"),
		Other: []OtherTransaction{
			{Date: MustDate("01/20/2023"), Amount: 100},
		},
	})
	assert.Empty(t, rows)
}

func TestBuildCarryForwardIdentity(t *testing.T) {
	t.Parallel()

	in := BuildInput{
		Epoch: MustDate("01/19/2023"),
		Broker: []BrokerDay{
			brokerDay("01/19/2023", 100, 100100),
			brokerDay("01/20/2023", -50, 100050),
			brokerDay("01/23/2023", 25, 100075),
		},
		Other: []OtherTransaction{
			{Date: MustDate("01/20/2023"), Amount: -300, Overnight: true},
		},
	}
	rows := Build(in)
	require.Len(t, rows, 3)

	// endFundValue(d1) + overnight(d1) == startFundValue(d2) for consecutive
	// days with no override in between.
	overnight := []float64{0, -300, 0}
	for i := 1; i < len(rows); i++ {
		assert.InDelta(t, rows[i-1].EndFundValue+overnight[i-1], rows[i].StartFundValue, 1e-9,
			"carry-forward broken at %s", rows[i].Date)
	}
}

func TestBuildOtherTransactionAggregation(t *testing.T) {
	t.Parallel()

	in := BuildInput{
		Epoch: MustDate("01/02/2023"),
		Broker: []BrokerDay{
			brokerDay("01/02/2023", 0, 100000),
			brokerDay("01/15/2023", 1000, 101000),
		},
		Other: []OtherTransaction{
			{Date: MustDate("01/15/2023"), Amount: 500, CountedInPL: true},
			{Date: MustDate("01/15/2023"), Amount: -300, Overnight: true},
		},
	}
	rows := Build(in)
	require.Len(t, rows, 2)

	day := rows[1]
	assert.InDelta(t, 500.0, day.OtherPL, 1e-9)
	assert.InDelta(t, 1500.0, day.TotalPL, 1e-9) // broker 1000 + other 500
	// Running total includes both transactions; the overnight amount is
	// backed out of the end-of-day value only.
	assert.InDelta(t, 200.0, day.TotalOther, 1e-9)
	assert.InDelta(t, 101000+200-(-300), day.EndFundValue, 1e-9)
}

func TestBuildEpochResetsRunningOtherTotal(t *testing.T) {
	t.Parallel()

	in := BuildInput{
		Epoch: MustDate("01/19/2023"),
		Broker: []BrokerDay{
			brokerDay("01/18/2023", 0, 100000),
			brokerDay("01/19/2023", 0, 100000),
		},
		Other: []OtherTransaction{
			{Date: MustDate("01/18/2023"), Amount: 9999},
			{Date: MustDate("01/19/2023"), Amount: 250},
		},
	}
	rows := Build(in)
	require.Len(t, rows, 2)

	assert.InDelta(t, 9999.0, rows[0].TotalOther, 1e-9)
	// Pre-epoch accumulation is discarded when the epoch date is reached.
	assert.InDelta(t, 250.0, rows[1].TotalOther, 1e-9)
}

func TestBuildValuationDateResetsPeriod(t *testing.T) {
	t.Parallel()

	in := BuildInput{
		Epoch: MustDate("01/19/2023"),
		Broker: []BrokerDay{
			brokerDay("01/19/2023", 100, 100100),
			brokerDay("01/20/2023", 200, 100300),
			brokerDay("02/01/2023", 50, 100350),
			brokerDay("02/02/2023", -25, 100325),
		},
	}
	rows := Build(in)
	require.Len(t, rows, 4)

	// 01/19 is the first January date, so a valuation date: the period NAV
	// equals that day's start fund value.
	require.NotNil(t, rows[0].PeriodStartingNAV)
	assert.InDelta(t, rows[0].StartFundValue, *rows[0].PeriodStartingNAV, 1e-9)

	// 02/01 starts a new period from pure carry-forward data.
	feb := rows[2]
	require.NotNil(t, feb.PeriodStartingNAV)
	assert.InDelta(t, rows[1].EndFundValue, feb.StartFundValue, 1e-9)
	assert.InDelta(t, feb.StartFundValue, *feb.PeriodStartingNAV, 1e-9)

	// Cumulative P&L resets: the first day of the new period starts the
	// NAV+cum column at the period NAV itself.
	require.NotNil(t, feb.StartFundValueNAV)
	assert.InDelta(t, *feb.PeriodStartingNAV, *feb.StartFundValueNAV, 1e-9)
	require.NotNil(t, rows[3].StartFundValueNAV)
	assert.InDelta(t, *feb.PeriodStartingNAV+feb.TotalPL, *rows[3].StartFundValueNAV, 1e-9)
}

func TestBuildOverrideValueWins(t *testing.T) {
	t.Parallel()

	in := BuildInput{
		Epoch: MustDate("01/19/2023"),
		Broker: []BrokerDay{
			brokerDay("01/19/2023", 0, 100000),
			brokerDay("01/25/2023", 0, 100000),
		},
		Overrides: []ValuationOverride{
			{Date: MustDate("01/25/2023"), FundValue: fp(95000)},
		},
	}
	rows := Build(in)
	require.Len(t, rows, 2)

	assert.InDelta(t, 95000.0, rows[1].StartFundValue, 1e-9)
	// The override date is also a valuation date, so the period NAV follows it.
	require.NotNil(t, rows[1].PeriodStartingNAV)
	assert.InDelta(t, 95000.0, *rows[1].PeriodStartingNAV, 1e-9)
}

func TestBuildOverrideWithoutValueOnlyMarksValuation(t *testing.T) {
	t.Parallel()

	in := BuildInput{
		Epoch: MustDate("01/19/2023"),
		Broker: []BrokerDay{
			brokerDay("01/19/2023", 0, 100000),
			brokerDay("01/25/2023", 0, 100000),
		},
		Overrides: []ValuationOverride{
			{Date: MustDate("01/25/2023")}, // no fund value
		},
	}
	rows := Build(in)
	require.Len(t, rows, 2)

	// Start still carries forward, but the period resets here.
	assert.InDelta(t, rows[0].EndFundValue, rows[1].StartFundValue, 1e-9)
	require.NotNil(t, rows[1].PeriodStartingNAV)
	assert.InDelta(t, rows[1].StartFundValue, *rows[1].PeriodStartingNAV, 1e-9)
}

func TestBuildReturns(t *testing.T) {
	t.Parallel()

	in := BuildInput{
		Epoch: MustDate("01/19/2023"),
		Broker: []BrokerDay{
			brokerDay("01/19/2023", 1000, 101000),
			brokerDay("01/20/2023", 500, 101500),
		},
	}
	rows := Build(in)
	require.Len(t, rows, 2)

	first := rows[0]
	require.NotNil(t, first.DailyReturn)
	assert.InDelta(t, 1000.0/first.StartFundValue, *first.DailyReturn, 1e-12)
	// First day of a period: cumulative return equals the daily return.
	require.NotNil(t, first.PeriodReturn)
	assert.InDelta(t, *first.DailyReturn, *first.PeriodReturn, 1e-12)

	second := rows[1]
	require.NotNil(t, second.StartFundValueNAV)
	assert.InDelta(t, *first.PeriodStartingNAV+1000, *second.StartFundValueNAV, 1e-9)
	require.NotNil(t, second.PeriodReturn)
	assert.InDelta(t, 1500.0/(*first.PeriodStartingNAV), *second.PeriodReturn, 1e-12)
}

func TestBuildZeroDenominatorYieldsNilReturn(t *testing.T) {
	t.Parallel()

	in := BuildInput{
		Epoch: MustDate("01/19/2023"),
		Broker: []BrokerDay{
			brokerDay("01/19/2023", 100, 100),
		},
		Other: []OtherTransaction{
			// Push the start fund value to exactly zero.
			{Date: MustDate("01/19/2023"), Amount: -100},
		},
	}
	rows := Build(in)
	require.Len(t, rows, 1)

	assert.InDelta(t, 0.0, rows[0].StartFundValue, 1e-9)
	assert.Nil(t, rows[0].DailyReturn)
	assert.Nil(t, rows[0].PeriodReturn)
}

func TestBuildFirstRowStartsPeriod(t *testing.T) {
	t.Parallel()

	// The earliest known date is always the first date of its month, so the
	// very first row opens a valuation period.
	in := BuildInput{
		Epoch: MustDate("01/19/2023"),
		Broker: []BrokerDay{
			brokerDay("01/19/2023", 10, 100010),
		},
	}
	rows := Build(in)
	require.Len(t, rows, 1)
	assert.NotNil(t, rows[0].PeriodStartingNAV)
}

func TestBuildDeterministic(t *testing.T) {
	t.Parallel()

	in := BuildInput{
		Epoch: MustDate("01/19/2023"),
		Broker: []BrokerDay{
			brokerDay("01/19/2023", 100, 100100),
			brokerDay("02/01/2023", 200, 100300),
			brokerDay("02/02/2023", -75, 100225),
		},
		Other: []OtherTransaction{
			{Date: MustDate("01/19/2023"), Amount: 500, CountedInPL: true},
			{Date: MustDate("02/01/2023"), Amount: -250, Overnight: true},
		},
		Overrides: []ValuationOverride{
			{Date: MustDate("02/02/2023"), FundValue: fp(100500)},
		},
	}

	first := Build(in)
	second := Build(in)
	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Date, second[i].Date)
		assert.InDelta(t, first[i].EndFundValue, second[i].EndFundValue, 1e-12)
		assert.InDelta(t, first[i].TotalOther, second[i].TotalOther, 1e-12)
	}
}

func TestBuildRowForOtherOnlyDate(t *testing.T) {
	t.Parallel()

	in := BuildInput{
		Epoch: MustDate("01/19/2023"),
		Broker: []BrokerDay{
			brokerDay("01/19/2023", 0, 100000),
		},
		Other: []OtherTransaction{
			{Date: MustDate("01/20/2023"), Amount: 750, CountedInPL: true},
		},
	}
	rows := Build(in)
	require.Len(t, rows, 2)

	day := rows[1]
	assert.Nil(t, day.BrokerPL)
	assert.Nil(t, day.TotalBroker)
	assert.InDelta(t, 750.0, day.OtherPL, 1e-9)
	assert.InDelta(t, 750.0, day.TotalPL, 1e-9)
}
