package taxcalc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taxguard/tax-engine/refdata"
)

func newSimulator() *Simulator {
	return NewSimulator(NewCalculator())
}

func TestSimulateExtra401k(t *testing.T) {
	// GIVEN an $80,000 single filer in the 22% bracket
	p := annualProfile("80000")
	sim := newSimulator()

	// WHEN simulating $5,000 more into the 401(k)
	res, err := sim.Simulate(p, Adjustment{Name: "bump 401k", Extra401k: dec("5000")})
	require.NoError(t, err)

	// THEN the saving is the delta at the marginal rate
	assertMoney(t, "9214.00", res.Baseline.TotalTax, "baseline")
	assertMoney(t, "8114.00", res.Result.TotalTax, "scenario")
	assertMoney(t, "1100.00", res.Difference, "22%% of 5,000")
	assert.True(t, res.Beneficial)
	assertMoney(t, "5000.00", res.Applied.Extra401k, "applied in full")
}

func TestSimulateClampsToHeadroom(t *testing.T) {
	// GIVEN $20,000 already contributed against the $23,500 limit
	p := annualProfile("120000")
	p.Contribution401kYTD = dec("20000")
	sim := newSimulator()

	// WHEN asking for $10,000 more
	res, err := sim.Simulate(p, Adjustment{Extra401k: dec("10000")})
	require.NoError(t, err)

	// THEN only the remaining headroom is applied
	assertMoney(t, "3500.00", res.Applied.Extra401k, "clamped")
	assertMoney(t, "23500.00", res.Result.Adjustments, "at the limit")
}

func TestSimulateZeroHeadroom(t *testing.T) {
	p := annualProfile("120000")
	p.Contribution401kYTD = dec("23500")
	sim := newSimulator()

	res, err := sim.Simulate(p, Adjustment{Extra401k: dec("5000")})
	require.NoError(t, err)

	assertMoney(t, "0.00", res.Applied.Extra401k, "nothing to apply")
	assert.False(t, res.Beneficial)
	assertMoney(t, "0.00", res.Difference, "no change")
}

func TestSimulateNegativeDeltaIgnored(t *testing.T) {
	p := annualProfile("80000")
	sim := newSimulator()

	res, err := sim.Simulate(p, Adjustment{Extra401k: dec("-5000"), ExtraIncome: dec("-100")})
	require.NoError(t, err)

	assertMoney(t, "0.00", res.Applied.Extra401k, "negative contribution dropped")
	assertMoney(t, "0.00", res.Applied.ExtraIncome, "negative income dropped")
}

func TestSimulateExtraIncome(t *testing.T) {
	// GIVEN half the year elapsed so projection doubles YTD
	p := &FinancialProfile{
		ID:                "s1",
		FilingStatus:      refdata.Single,
		PayFrequency:      refdata.Biweekly,
		PayPeriodsElapsed: 13,
		IncomeYTD:         dec("40000"),
		Age:               35,
	}
	sim := newSimulator()

	// WHEN adding $10,000 of annual side income
	res, err := sim.Simulate(p, Adjustment{ExtraIncome: dec("10000")})
	require.NoError(t, err)

	// THEN exactly $10,000 lands on the projected gross
	assertMoney(t, "90000.00", res.Result.GrossIncome, "gross with extra")
	assert.False(t, res.Beneficial)
	assert.True(t, res.Difference.IsNegative(), "more income means more tax")
}

func TestSimulateDoesNotMutateProfile(t *testing.T) {
	p := annualProfile("80000")
	p.ContributionHSAYTD = dec("1000")
	sim := newSimulator()

	_, err := sim.Simulate(p, Adjustment{Extra401k: dec("5000"), ExtraHSA: dec("2000")})
	require.NoError(t, err)

	assertMoney(t, "0.00", p.Contribution401kYTD, "401k untouched")
	assertMoney(t, "1000.00", p.ContributionHSAYTD, "hsa untouched")
}

func TestSimulateHSAAndIRAClamps(t *testing.T) {
	p := annualProfile("90000")
	p.HSACoverage = refdata.HSAFamily
	sim := newSimulator()

	res, err := sim.Simulate(p, Adjustment{ExtraHSA: dec("20000"), ExtraIRA: dec("20000")})
	require.NoError(t, err)

	assertMoney(t, "8550.00", res.Applied.ExtraHSA, "family hsa limit")
	assertMoney(t, "7000.00", res.Applied.ExtraIRA, "ira limit")
}

func TestOptimalSearchOrdering(t *testing.T) {
	// GIVEN a filer with headroom in every account
	p := annualProfile("150000")
	sim := newSimulator()

	results, err := sim.OptimalSearch(p)
	require.NoError(t, err)
	require.NotEmpty(t, results)

	// THEN results come back best saving first
	for i := 1; i < len(results); i++ {
		assert.True(t, results[i-1].Difference.GreaterThanOrEqual(results[i].Difference),
			"result %d out of order", i)
	}

	// full 401(k) headroom is the single largest lever here
	best := results[0]
	assertMoney(t, "23500.00", best.Applied.Extra401k, "best move")
	assert.True(t, best.Beneficial)
}

func TestOptimalSearchSkipsExhaustedAccounts(t *testing.T) {
	// GIVEN every account already at its limit
	p := annualProfile("150000")
	p.Contribution401kYTD = dec("23500")
	p.ContributionHSAYTD = dec("4300")
	p.ContributionIRAYTD = dec("7000")
	sim := newSimulator()

	results, err := sim.OptimalSearch(p)
	require.NoError(t, err)

	assert.Empty(t, results)
}

func TestOptimalSearchValidatesProfile(t *testing.T) {
	p := annualProfile("150000")
	p.FilingStatus = "nope"

	_, err := newSimulator().OptimalSearch(p)
	assert.ErrorIs(t, err, ErrValidation)
}
