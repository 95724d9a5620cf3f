/*
rules.go - Deterministic recommendation rules

PURPOSE:
  A fixed rule table over the Summary numbers. Each rule fires
  independently; results come back ordered by priority. Always
  produces at least one recommendation, so the advisor surface never
  goes blank when the AI backend is down.

SEE ALSO:
  - advisor.go: Summary and Recommendation models
*/
package advisor

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// RuleBased is the deterministic advisor. Stateless.
type RuleBased struct{}

func NewRuleBased() *RuleBased {
	return &RuleBased{}
}

var (
	owedThreshold   = decimal.NewFromInt(1000)
	refundThreshold = decimal.NewFromInt(5000)
	// deferralRate: marginal rate above which pre-tax deferrals get a
	// high-priority push.
	deferralRate = decimal.NewFromFloat(0.22)
)

// Recommend runs the rule table. Never returns an empty slice or an
// error.
func (RuleBased) Recommend(_ context.Context, s Summary) ([]Recommendation, error) {
	var recs []Recommendation

	if s.Headroom401k.IsPositive() {
		prio := PriorityMedium
		if s.MarginalRate.GreaterThanOrEqual(deferralRate) {
			prio = PriorityHigh
		}
		recs = append(recs, Recommendation{
			Priority: prio,
			Category: "retirement",
			Title:    "Increase 401(k) contributions",
			Detail: fmt.Sprintf("You have $%s of 401(k) headroom remaining. Pre-tax deferrals reduce taxable income at your %s%% marginal rate.",
				s.Headroom401k.StringFixed(0), s.MarginalRate.Mul(decimal.NewFromInt(100)).StringFixed(0)),
			EstimatedSavings: s.Headroom401k.Mul(s.MarginalRate).Round(2),
		})
	}

	if s.HeadroomHSA.IsPositive() {
		recs = append(recs, Recommendation{
			Priority: PriorityMedium,
			Category: "health",
			Title:    "Fund your HSA",
			Detail: fmt.Sprintf("You can still contribute $%s to an HSA. Contributions are deductible and qualified withdrawals are never taxed.",
				s.HeadroomHSA.StringFixed(0)),
			EstimatedSavings: s.HeadroomHSA.Mul(s.MarginalRate).Round(2),
		})
	}

	if s.HeadroomIRA.IsPositive() && !s.HasWorkplacePlan {
		recs = append(recs, Recommendation{
			Priority: PriorityMedium,
			Category: "retirement",
			Title:    "Consider a traditional IRA",
			Detail: fmt.Sprintf("Without a workplace plan, up to $%s of IRA contributions is fully deductible.",
				s.HeadroomIRA.StringFixed(0)),
			EstimatedSavings: s.HeadroomIRA.Mul(s.MarginalRate).Round(2),
		})
	}

	if s.RefundOrOwed.IsNegative() && s.RefundOrOwed.Neg().GreaterThan(owedThreshold) {
		recs = append(recs, Recommendation{
			Priority: PriorityHigh,
			Category: "payments",
			Title:    "Make estimated tax payments",
			Detail: fmt.Sprintf("You are on track to owe $%s. Quarterly estimated payments avoid an underpayment penalty.",
				s.RefundOrOwed.Neg().StringFixed(0)),
		})
	}

	if s.RefundOrOwed.GreaterThan(refundThreshold) {
		recs = append(recs, Recommendation{
			Priority: PriorityLow,
			Category: "withholding",
			Title:    "Adjust your W-4",
			Detail: fmt.Sprintf("A projected $%s refund is an interest-free loan to the government. Reducing withholding puts that money in each paycheck.",
				s.RefundOrOwed.StringFixed(0)),
		})
	}

	if s.SelfEmploymentIncome.IsPositive() {
		recs = append(recs, Recommendation{
			Priority: PriorityMedium,
			Category: "self-employment",
			Title:    "Review self-employment deductions",
			Detail:   "Business expenses, the QBI deduction, and a SEP-IRA can all reduce tax on self-employment income.",
		})
	}

	if len(recs) == 0 {
		recs = append(recs, Recommendation{
			Priority: PriorityLow,
			Category: "general",
			Title:    "Your withholding looks on track",
			Detail:   "Projected payments are close to the projected liability. Revisit after any income change.",
		})
	}

	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Priority < recs[j].Priority })
	return recs, nil
}
