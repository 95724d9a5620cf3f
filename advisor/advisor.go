/*
Package advisor produces planning recommendations from a numeric
summary of a computed liability.

PURPOSE:
  Turns a Breakdown into actionable suggestions: fill the 401(k)
  headroom, start quarterly payments, fix the W-4. Two backends exist
  behind one interface: a deterministic rule table and an AI advisor.
  The AI path degrades to the rule table on any failure, silently from
  the caller's point of view.

PII POSTURE:
  A Summary holds numbers and enums only. No names, no free text from
  documents, no tokens. It is the only thing either backend ever sees,
  so the AI prompt is PII-free by construction.

SEE ALSO:
  - rules.go: The deterministic rule table
  - openai.go: AI backend with rule fallback
*/
package advisor

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/taxguard/tax-engine/refdata"
)

// =============================================================================
// MODEL
// =============================================================================

// Summary is the numeric digest an advisor reasons over. Built from a
// Breakdown plus contribution headroom; deliberately free of anything
// identifying.
type Summary struct {
	FilingStatus refdata.FilingStatus `json:"filing_status"`

	GrossIncome   decimal.Decimal `json:"gross_income"`
	AGI           decimal.Decimal `json:"agi"`
	TaxableIncome decimal.Decimal `json:"taxable_income"`
	TotalTax      decimal.Decimal `json:"total_tax"`
	// RefundOrOwed: positive refund, negative balance due.
	RefundOrOwed  decimal.Decimal `json:"refund_or_owed"`
	MarginalRate  decimal.Decimal `json:"marginal_rate"`
	EffectiveRate decimal.Decimal `json:"effective_rate"`

	SelfEmploymentIncome decimal.Decimal `json:"self_employment_income"`
	HasWorkplacePlan     bool            `json:"has_workplace_plan"`
	Age                  int             `json:"age"`
	Dependents           int             `json:"dependents"`

	Headroom401k decimal.Decimal `json:"headroom_401k"`
	HeadroomHSA  decimal.Decimal `json:"headroom_hsa"`
	HeadroomIRA  decimal.Decimal `json:"headroom_ira"`
}

// Priority orders recommendations for display. Lower is more urgent.
type Priority int

const (
	PriorityHigh Priority = iota + 1
	PriorityMedium
	PriorityLow
)

func (p Priority) String() string {
	switch p {
	case PriorityHigh:
		return "high"
	case PriorityMedium:
		return "medium"
	case PriorityLow:
		return "low"
	}
	return "unknown"
}

// Recommendation is one actionable suggestion.
type Recommendation struct {
	Priority Priority `json:"priority"`
	Category string   `json:"category"`
	Title    string   `json:"title"`
	Detail   string   `json:"detail"`
	// EstimatedSavings is zero when no dollar estimate applies.
	EstimatedSavings decimal.Decimal `json:"estimated_savings"`
}

// Advisor turns a Summary into ordered recommendations. Implementations
// must return at least one recommendation for any valid summary.
type Advisor interface {
	Recommend(ctx context.Context, s Summary) ([]Recommendation, error)
}
