/*
simulator.go - What-if scenarios over the calculator

PURPOSE:
  Answers "what happens to my liability if I contribute more" without
  touching the stored profile. A scenario clones the profile, applies
  clamped contribution deltas, recomputes, and reports the difference
  against the baseline. OptimalSearch enumerates candidate moves and
  ranks them by savings.

CLAMPING:
  A requested delta never pushes a contribution past its statutory
  ceiling. The applied amount is min(requested, remaining headroom),
  floored at zero, and the result reports what was actually applied so
  the caller can see the clamp.

SEE ALSO:
  - calculator.go: Underlying deterministic computation
  - refdata/tables.go: Contribution ceilings
*/
package taxcalc

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/taxguard/tax-engine/refdata"
)

// =============================================================================
// SCENARIO MODEL
// =============================================================================

// Adjustment describes one what-if scenario as deltas over the profile.
// Contribution deltas are clamped to headroom; income deltas are not.
type Adjustment struct {
	Name        string          `json:"name"`
	Extra401k   decimal.Decimal `json:"extra_401k"`
	ExtraHSA    decimal.Decimal `json:"extra_hsa"`
	ExtraIRA    decimal.Decimal `json:"extra_ira"`
	ExtraIncome decimal.Decimal `json:"extra_income"`
}

// AppliedAdjustment records the post-clamp deltas actually used.
type AppliedAdjustment struct {
	Extra401k   decimal.Decimal `json:"extra_401k"`
	ExtraHSA    decimal.Decimal `json:"extra_hsa"`
	ExtraIRA    decimal.Decimal `json:"extra_ira"`
	ExtraIncome decimal.Decimal `json:"extra_income"`
}

// SimulationResult pairs a scenario computation with its baseline.
type SimulationResult struct {
	Scenario string            `json:"scenario"`
	Applied  AppliedAdjustment `json:"applied"`
	Baseline *Breakdown        `json:"baseline"`
	Result   *Breakdown        `json:"result"`
	// Difference = baseline total - scenario total. Positive means the
	// scenario lowers the liability.
	Difference decimal.Decimal `json:"difference"`
	Beneficial bool            `json:"beneficial"`
}

// =============================================================================
// SIMULATOR
// =============================================================================

// Simulator runs adjustment scenarios through a Calculator. Stateless.
type Simulator struct {
	calc *Calculator
}

func NewSimulator(calc *Calculator) *Simulator {
	return &Simulator{calc: calc}
}

// Headroom401k returns the remaining 401(k) capacity for the profile.
func Headroom401k(p *FinancialProfile) decimal.Decimal {
	return headroom(refdata.Limit401k(p.Age), p.Contribution401kYTD)
}

// HeadroomHSA returns the remaining HSA capacity for the profile.
func HeadroomHSA(p *FinancialProfile) decimal.Decimal {
	return headroom(refdata.LimitHSA(p.HSACoverage, p.Age), p.ContributionHSAYTD)
}

// HeadroomIRA returns the remaining traditional IRA capacity.
func HeadroomIRA(p *FinancialProfile) decimal.Decimal {
	return headroom(refdata.LimitIRA(p.Age), p.ContributionIRAYTD)
}

func headroom(limit, used decimal.Decimal) decimal.Decimal {
	h := limit.Sub(used)
	if h.IsNegative() {
		return decimal.Zero
	}
	return h
}

// Simulate computes the baseline, applies the clamped adjustment to a
// clone, and recomputes. The stored profile is never modified.
func (s *Simulator) Simulate(p *FinancialProfile, adj Adjustment) (*SimulationResult, error) {
	baseline, err := s.calc.Calculate(p)
	if err != nil {
		return nil, err
	}

	applied := AppliedAdjustment{
		Extra401k:   clamp(adj.Extra401k, Headroom401k(p)),
		ExtraHSA:    clamp(adj.ExtraHSA, HeadroomHSA(p)),
		ExtraIRA:    clamp(adj.ExtraIRA, HeadroomIRA(p)),
		ExtraIncome: adj.ExtraIncome,
	}
	if applied.ExtraIncome.IsNegative() {
		applied.ExtraIncome = decimal.Zero
	}

	scenario := p.Clone()
	scenario.Contribution401kYTD = scenario.Contribution401kYTD.Add(applied.Extra401k)
	scenario.ContributionHSAYTD = scenario.ContributionHSAYTD.Add(applied.ExtraHSA)
	scenario.ContributionIRAYTD = scenario.ContributionIRAYTD.Add(applied.ExtraIRA)
	if applied.ExtraIncome.IsPositive() {
		// Extra income is an annual figure. Fold it back into YTD so
		// the projection leaves it at exactly the requested amount.
		scenario.IncomeYTD = scenario.IncomeYTD.Add(applied.ExtraIncome.Div(scenario.projectionFactor()))
	}

	result, err := s.calc.Calculate(scenario)
	if err != nil {
		return nil, err
	}

	diff := baseline.TotalTax.Sub(result.TotalTax)
	return &SimulationResult{
		Scenario:   adj.Name,
		Applied:    applied,
		Baseline:   baseline,
		Result:     result,
		Difference: money(diff),
		Beneficial: diff.IsPositive(),
	}, nil
}

func clamp(requested, limit decimal.Decimal) decimal.Decimal {
	if requested.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	if requested.GreaterThan(limit) {
		return limit
	}
	return requested
}

// =============================================================================
// OPTIMAL SEARCH
// =============================================================================

var searchIncrements = []decimal.Decimal{
	decimal.NewFromInt(2500),
	decimal.NewFromInt(5000),
}

// OptimalSearch enumerates contribution moves (fixed increments plus
// the full remaining headroom for each account) and returns them
// sorted by savings, best first. Scenarios with nothing to apply are
// skipped.
func (s *Simulator) OptimalSearch(p *FinancialProfile) ([]*SimulationResult, error) {
	type axis struct {
		name     string
		headroom decimal.Decimal
		make     func(amount decimal.Decimal) Adjustment
	}
	axes := []axis{
		{"401k", Headroom401k(p), func(a decimal.Decimal) Adjustment { return Adjustment{Extra401k: a} }},
		{"hsa", HeadroomHSA(p), func(a decimal.Decimal) Adjustment { return Adjustment{ExtraHSA: a} }},
		{"ira", HeadroomIRA(p), func(a decimal.Decimal) Adjustment { return Adjustment{ExtraIRA: a} }},
	}

	var results []*SimulationResult
	for _, ax := range axes {
		if ax.headroom.IsZero() {
			continue
		}
		amounts := []decimal.Decimal{ax.headroom}
		for _, inc := range searchIncrements {
			if inc.LessThan(ax.headroom) {
				amounts = append(amounts, inc)
			}
		}
		for _, amount := range amounts {
			adj := ax.make(amount)
			adj.Name = ax.name + " +" + amount.StringFixed(0)
			res, err := s.Simulate(p, adj)
			if err != nil {
				return nil, err
			}
			results = append(results, res)
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Difference.GreaterThan(results[j].Difference)
	})
	return results, nil
}
