/*
calculator.go - Deterministic liability computation

PURPOSE:
  Projects a YTD profile to a full-year estimate and walks it through
  the bracket tables. Pure arithmetic over refdata: no clock, no
  randomness, no network. The Breakdown records every intermediate so
  a client can render the full derivation.

COMPUTATION ORDER:
  1. Project wages, SE income, and withholding to year end
  2. Adjustments: 401(k) + HSA + deductible IRA + half of SE tax
  3. AGI = gross - adjustments
  4. Deduction = max(standard, itemized after SALT cap / medical floor)
  5. Ordinary tax = progressive walk over taxable income
  6. SE tax on 92.35% of SE income (SS capped at wage base)
  7. Child tax credit with $50-per-$1000 phase-out
  8. Total = max(0, ordinary + SE - credit); compare against payments

CONVENTIONS:
  - Contribution YTD fields are treated as the planned annual amounts,
    not projected. Income and withholding are projected.
  - Estimated payments are discrete quarterly events, never projected.
  - All outputs rounded to cents.

SEE ALSO:
  - profile.go: Input model and validation
  - refdata/tables.go: The 2025 constants
*/
package taxcalc

import (
	"github.com/shopspring/decimal"

	"github.com/taxguard/tax-engine/refdata"
)

// =============================================================================
// BREAKDOWN
// =============================================================================

// BracketSegment is one filled slice of the progressive schedule.
// Upper is nil for the top unbounded bracket.
type BracketSegment struct {
	Lower  decimal.Decimal  `json:"lower"`
	Upper  *decimal.Decimal `json:"upper,omitempty"`
	Rate   decimal.Decimal  `json:"rate"`
	Amount decimal.Decimal  `json:"amount"`
	Tax    decimal.Decimal  `json:"tax"`
}

// Breakdown is the complete audit trail of one computation.
type Breakdown struct {
	Year         int                  `json:"year"`
	FilingStatus refdata.FilingStatus `json:"filing_status"`

	GrossIncome       decimal.Decimal `json:"gross_income"`
	SelfEmploymentNet decimal.Decimal `json:"self_employment_net"`
	Adjustments       decimal.Decimal `json:"adjustments"`
	AGI               decimal.Decimal `json:"agi"`

	StandardDeduction decimal.Decimal `json:"standard_deduction"`
	ItemizedDeduction decimal.Decimal `json:"itemized_deduction"`
	DeductionTaken    decimal.Decimal `json:"deduction_taken"`
	Itemizing         bool            `json:"itemizing"`

	TaxableIncome decimal.Decimal  `json:"taxable_income"`
	Segments      []BracketSegment `json:"segments"`
	OrdinaryTax   decimal.Decimal  `json:"ordinary_tax"`

	SelfEmploymentTax decimal.Decimal `json:"self_employment_tax"`
	ChildTaxCredit    decimal.Decimal `json:"child_tax_credit"`
	TotalTax          decimal.Decimal `json:"total_tax"`

	ProjectedWithholding decimal.Decimal `json:"projected_withholding"`
	EstimatedPayments    decimal.Decimal `json:"estimated_payments"`
	TotalPayments        decimal.Decimal `json:"total_payments"`
	// RefundOrOwed is positive for a refund, negative for a balance due.
	RefundOrOwed decimal.Decimal `json:"refund_or_owed"`

	MarginalRate  decimal.Decimal `json:"marginal_rate"`
	EffectiveRate decimal.Decimal `json:"effective_rate"`
}

// =============================================================================
// CALCULATOR
// =============================================================================

// Calculator computes liability from the tables for its Year. Stateless
// and safe for concurrent use.
type Calculator struct {
	Year int
}

// NewCalculator returns a calculator for tax year 2025.
func NewCalculator() *Calculator {
	return &Calculator{Year: 2025}
}

var (
	two      = decimal.NewFromInt(2)
	thousand = decimal.NewFromInt(1000)
	saltCap  = decimal.NewFromInt(10000)
	// medicalFloorRate: medical expenses count only above this share of AGI.
	medicalFloorRate = decimal.NewFromFloat(0.075)
)

// Calculate validates the profile and produces a full Breakdown.
func (c *Calculator) Calculate(p *FinancialProfile) (*Breakdown, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	factor := p.projectionFactor()
	wages := p.IncomeYTD.Mul(factor)
	seIncome := p.SelfEmploymentYTD.Mul(factor)
	gross := wages.Add(seIncome)

	seTax, seNet := c.selfEmploymentTax(p.FilingStatus, seIncome)

	// Above-the-line adjustments. IRA deductibility depends on AGI
	// before the IRA itself, so compute that first.
	preIRA := gross.
		Sub(p.Contribution401kYTD).
		Sub(p.ContributionHSAYTD).
		Sub(seTax.Div(two))
	ira := c.deductibleIRA(p, preIRA)
	adjustments := p.Contribution401kYTD.
		Add(p.ContributionHSAYTD).
		Add(ira).
		Add(seTax.Div(two))

	agi := gross.Sub(adjustments)
	if agi.IsNegative() {
		agi = decimal.Zero
	}

	standard := refdata.StandardDeduction2025[p.FilingStatus]
	itemized := c.itemizedTotal(p, agi)
	deduction := standard
	itemizing := false
	if itemized.GreaterThan(standard) {
		deduction = itemized
		itemizing = true
	}

	taxable := agi.Sub(deduction)
	if taxable.IsNegative() {
		taxable = decimal.Zero
	}

	table := refdata.BracketTables2025[p.FilingStatus]
	segments, ordinary := walkBrackets(table, taxable)

	credit := c.childTaxCredit(p, agi)

	total := ordinary.Add(seTax).Sub(credit)
	if total.IsNegative() {
		total = decimal.Zero
	}

	withholding := p.WithholdingYTD.Mul(factor)
	payments := withholding.Add(p.EstimatedPaymentsYTD)

	b := &Breakdown{
		Year:         c.Year,
		FilingStatus: p.FilingStatus,

		GrossIncome:       money(gross),
		SelfEmploymentNet: money(seNet),
		Adjustments:       money(adjustments),
		AGI:               money(agi),

		StandardDeduction: money(standard),
		ItemizedDeduction: money(itemized),
		DeductionTaken:    money(deduction),
		Itemizing:         itemizing,

		TaxableIncome: money(taxable),
		Segments:      segments,
		OrdinaryTax:   money(ordinary),

		SelfEmploymentTax: money(seTax),
		ChildTaxCredit:    money(credit),
		TotalTax:          money(total),

		ProjectedWithholding: money(withholding),
		EstimatedPayments:    money(p.EstimatedPaymentsYTD),
		TotalPayments:        money(payments),
		RefundOrOwed:         money(payments.Sub(total)),

		MarginalRate:  marginalRate(table, taxable),
		EffectiveRate: effectiveRate(total, gross),
	}
	return b, nil
}

// TaxForTaxable runs just the bracket walk for a taxable income.
// Exposed for table-driven verification against published schedules.
func TaxForTaxable(status refdata.FilingStatus, taxable decimal.Decimal) decimal.Decimal {
	_, tax := walkBrackets(refdata.BracketTables2025[status], taxable)
	return money(tax)
}

// walkBrackets fills the schedule bottom up and records each segment.
func walkBrackets(table refdata.BracketTable, taxable decimal.Decimal) ([]BracketSegment, decimal.Decimal) {
	var segments []BracketSegment
	total := decimal.Zero
	if taxable.LessThanOrEqual(decimal.Zero) {
		return segments, total
	}
	for i, b := range table {
		if taxable.LessThanOrEqual(b.Lower) {
			break
		}
		var upper *decimal.Decimal
		top := taxable
		if i+1 < len(table) {
			next := table[i+1].Lower
			upper = &next
			if next.LessThan(top) {
				top = next
			}
		}
		amount := top.Sub(b.Lower)
		tax := amount.Mul(b.Rate)
		segments = append(segments, BracketSegment{
			Lower:  b.Lower,
			Upper:  upper,
			Rate:   b.Rate,
			Amount: money(amount),
			Tax:    money(tax),
		})
		total = total.Add(tax)
	}
	return segments, total
}

// selfEmploymentTax returns the SE tax and net earnings from SE income.
func (c *Calculator) selfEmploymentTax(status refdata.FilingStatus, seIncome decimal.Decimal) (tax, net decimal.Decimal) {
	se := refdata.SelfEmploymentTax2025
	if seIncome.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, decimal.Zero
	}
	net = seIncome.Mul(se.NetEarningsFactor)

	ssBase := net
	if ssBase.GreaterThan(se.WageBase) {
		ssBase = se.WageBase
	}
	tax = ssBase.Mul(se.SocialSecurityRate).Add(net.Mul(se.MedicareRate))

	threshold := se.AdditionalThresholds[status]
	if net.GreaterThan(threshold) {
		tax = tax.Add(net.Sub(threshold).Mul(se.AdditionalRate))
	}
	return tax, net
}

// deductibleIRA applies the simplified workplace-plan cliff: covered
// filers above the phase-out end get no traditional IRA deduction.
func (c *Calculator) deductibleIRA(p *FinancialProfile, modifiedAGI decimal.Decimal) decimal.Decimal {
	if p.ContributionIRAYTD.IsZero() {
		return decimal.Zero
	}
	if p.HasWorkplacePlan && modifiedAGI.GreaterThan(refdata.IRAPhaseOutEnd2025[p.FilingStatus]) {
		return decimal.Zero
	}
	return p.ContributionIRAYTD
}

// itemizedTotal sums the itemized components after the SALT cap and
// the medical AGI floor. Zero when the profile has no itemized block.
func (c *Calculator) itemizedTotal(p *FinancialProfile, agi decimal.Decimal) decimal.Decimal {
	if p.Itemized == nil {
		return decimal.Zero
	}
	salt := p.Itemized.StateLocalTaxes
	if salt.GreaterThan(saltCap) {
		salt = saltCap
	}
	medical := p.Itemized.MedicalExpenses.Sub(agi.Mul(medicalFloorRate))
	if medical.IsNegative() {
		medical = decimal.Zero
	}
	return salt.Add(p.Itemized.MortgageInterest).Add(p.Itemized.Charitable).Add(medical)
}

// childTaxCredit applies the per-child amount and the AGI phase-out.
func (c *Calculator) childTaxCredit(p *FinancialProfile, agi decimal.Decimal) decimal.Decimal {
	if p.DependentsUnder17 == 0 {
		return decimal.Zero
	}
	ctc := refdata.ChildTaxCredit2025
	credit := ctc.PerChild.Mul(decimal.NewFromInt(int64(p.DependentsUnder17)))
	threshold := ctc.PhaseOutThresholds[p.FilingStatus]
	if agi.GreaterThan(threshold) {
		steps := agi.Sub(threshold).Div(thousand).Ceil()
		credit = credit.Sub(steps.Mul(ctc.ReductionPer1000))
		if credit.IsNegative() {
			credit = decimal.Zero
		}
	}
	return credit
}

func marginalRate(table refdata.BracketTable, taxable decimal.Decimal) decimal.Decimal {
	if taxable.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	rate := table[0].Rate
	for _, b := range table {
		if taxable.GreaterThan(b.Lower) {
			rate = b.Rate
		}
	}
	return rate
}

func effectiveRate(total, gross decimal.Decimal) decimal.Decimal {
	if gross.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return total.Div(gross).Round(4)
}

func money(v decimal.Decimal) decimal.Decimal { return v.Round(2) }
