package advisor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStrategiesGateOnIncome(t *testing.T) {
	// GIVEN a moderate-income filer
	s := baseSummary()
	recs := NewStrategyRecommender().Applicable(s, Situation{})

	for _, st := range recs {
		assert.False(t, s.GrossIncome.LessThan(st.MinIncome), "%s needs %s income", st.ID, st.MinIncome)
	}
	ids := strategyIDs(recs)
	assert.NotContains(t, ids, "mega-backdoor-roth", "needs 200k income")
	assert.NotContains(t, ids, "relocate-no-tax-state", "needs 250k income")
	assert.Contains(t, ids, "ev-credit", "under the income cap")
}

func TestStrategiesMaxIncomeCap(t *testing.T) {
	s := baseSummary()
	s.GrossIncome = dec("400000")
	s.MarginalRate = dec("0.35")

	ids := strategyIDs(NewStrategyRecommender().Applicable(s, Situation{}))
	assert.NotContains(t, ids, "ev-credit", "over the income cap")
	assert.Contains(t, ids, "relocate-no-tax-state")
	assert.Contains(t, ids, "mega-backdoor-roth")
}

func TestStrategiesBusinessGating(t *testing.T) {
	s := baseSummary()

	t.Run("without a business only the starter play shows", func(t *testing.T) {
		ids := strategyIDs(NewStrategyRecommender().Applicable(s, Situation{}))
		assert.Contains(t, ids, "side-business")
		assert.NotContains(t, ids, "section-179-vehicle")
		assert.NotContains(t, ids, "hire-your-kids")
		assert.NotContains(t, ids, "augusta-rule")
	})

	t.Run("with a business the catalog opens up", func(t *testing.T) {
		ids := strategyIDs(NewStrategyRecommender().Applicable(s, Situation{HasBusiness: true}))
		assert.Contains(t, ids, "section-179-vehicle")
		assert.Contains(t, ids, "hire-your-kids")
		assert.Contains(t, ids, "augusta-rule")
	})
}

func TestStrategiesRealEstateGating(t *testing.T) {
	s := baseSummary()
	s.GrossIncome = dec("200000")

	without := strategyIDs(NewStrategyRecommender().Applicable(s, Situation{}))
	assert.NotContains(t, without, "rental-property")
	assert.NotContains(t, without, "cost-segregation")

	with := strategyIDs(NewStrategyRecommender().Applicable(s, Situation{HasRealEstate: true}))
	assert.Contains(t, with, "rental-property")
	assert.Contains(t, with, "cost-segregation")
	assert.Contains(t, with, "real-estate-professional")
}

func TestStrategiesSelfEmploymentGating(t *testing.T) {
	s := baseSummary()
	s.GrossIncome = dec("120000")

	t.Run("solo 401k stays visible without SE income", func(t *testing.T) {
		ids := strategyIDs(NewStrategyRecommender().Applicable(s, Situation{}))
		assert.Contains(t, ids, "solo-401k")
		assert.NotContains(t, ids, "s-corp-election")
	})

	t.Run("SE income unlocks the S-Corp election", func(t *testing.T) {
		se := s
		se.SelfEmploymentIncome = dec("80000")
		ids := strategyIDs(NewStrategyRecommender().Applicable(se, Situation{}))
		assert.Contains(t, ids, "s-corp-election")
	})
}

func TestStrategiesQCDRequiresAge(t *testing.T) {
	s := baseSummary()
	young := strategyIDs(NewStrategyRecommender().Applicable(s, Situation{}))
	assert.NotContains(t, young, "qcd")

	s.Age = 72
	older := strategyIDs(NewStrategyRecommender().Applicable(s, Situation{}))
	assert.Contains(t, older, "qcd")
}

func TestStrategiesSavingsScaleWithMarginalRate(t *testing.T) {
	// GIVEN the side-business play at a 22% marginal rate
	s := baseSummary()
	recs := NewStrategyRecommender().Applicable(s, Situation{})

	var found bool
	for _, st := range recs {
		if st.ID == "side-business" {
			found = true
			// 10,000 of deductions at 22%
			assert.True(t, st.EstimatedAnnualSavings.Equal(dec("2200.00")),
				"got %s", st.EstimatedAnnualSavings)
		}
	}
	require.True(t, found)
}

func TestStrategiesSortedBySavings(t *testing.T) {
	s := baseSummary()
	s.GrossIncome = dec("300000")
	s.MarginalRate = dec("0.35")
	s.SelfEmploymentIncome = dec("150000")

	recs := NewStrategyRecommender().Applicable(s, Situation{HasBusiness: true, HasRealEstate: true})
	require.NotEmpty(t, recs)
	for i := 1; i < len(recs); i++ {
		prev := recs[i-1].EstimatedAnnualSavings.Add(recs[i-1].OneTimeSavings)
		cur := recs[i].EstimatedAnnualSavings.Add(recs[i].OneTimeSavings)
		assert.False(t, cur.GreaterThan(prev), "strategy %d out of order", i)
	}
}

func TestStrategyReportShape(t *testing.T) {
	s := baseSummary()
	report := NewStrategyRecommender().Report(s, Situation{})

	assert.Equal(t, len(report.All), report.TotalStrategies)
	assert.LessOrEqual(t, len(report.Top), 5)
	assert.LessOrEqual(t, len(report.LifeChanging), 5)
	assert.LessOrEqual(t, len(report.ImmediateActions), 5)
	assert.True(t, report.TotalPotentialSavings.IsPositive())
	for _, st := range report.LifeChanging {
		assert.True(t, st.LifeChanging)
	}
	for _, st := range report.ImmediateActions {
		assert.Equal(t, TimeframeImmediate, st.Timeframe)
	}
}

func strategyIDs(recs []Strategy) []string {
	ids := make([]string, 0, len(recs))
	for _, st := range recs {
		ids = append(ids, st.ID)
	}
	return ids
}
