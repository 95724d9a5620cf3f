/*
dto.go - Request and response data structures

PURPOSE:
  Wire-level types for the HTTP API, kept separate from the domain
  model. Dollar amounts cross the wire as JSON numbers and convert to
  decimals at the boundary; domain types never leak their internals
  into handlers.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

CONVENTIONS:
  - snake_case JSON field names
  - Amounts as numbers (floats on the wire, decimal inside)
  - Enums as strings matching refdata values

VALIDATION:
  Validation is done in the domain model, not in DTOs. DTOs are pure
  data carriers.

SEE ALSO:
  - handlers.go: Handler implementations using these DTOs
  - taxcalc/profile.go: The domain model behind ProfileDTO
*/
package api

import (
	"github.com/shopspring/decimal"

	"github.com/taxguard/tax-engine/advisor"
	"github.com/taxguard/tax-engine/extract"
	"github.com/taxguard/tax-engine/redact"
	"github.com/taxguard/tax-engine/refdata"
	"github.com/taxguard/tax-engine/taxcalc"
)

// =============================================================================
// PROFILE DTOs
// =============================================================================

// ItemizedDTO mirrors taxcalc.ItemizedDeductions on the wire.
type ItemizedDTO struct {
	StateLocalTaxes  float64 `json:"state_local_taxes"`
	MortgageInterest float64 `json:"mortgage_interest"`
	Charitable       float64 `json:"charitable"`
	MedicalExpenses  float64 `json:"medical_expenses"`
}

// ProfileRequest is the create/update payload.
type ProfileRequest struct {
	FilingStatus      string `json:"filing_status"`
	PayFrequency      string `json:"pay_frequency"`
	PayPeriodsElapsed int    `json:"pay_periods_elapsed"`

	IncomeYTD            float64 `json:"income_ytd"`
	WithholdingYTD       float64 `json:"withholding_ytd"`
	EstimatedPaymentsYTD float64 `json:"estimated_payments_ytd"`
	SelfEmploymentYTD    float64 `json:"self_employment_ytd"`

	Contribution401kYTD float64 `json:"contribution_401k_ytd"`
	ContributionHSAYTD  float64 `json:"contribution_hsa_ytd"`
	ContributionIRAYTD  float64 `json:"contribution_ira_ytd"`

	HSACoverage      string `json:"hsa_coverage"`
	HasWorkplacePlan bool   `json:"has_workplace_plan"`

	Age               int `json:"age"`
	DependentsUnder17 int `json:"dependents_under_17"`

	Itemized *ItemizedDTO `json:"itemized,omitempty"`
}

// ProfileDTO is a profile as returned to clients.
type ProfileDTO struct {
	ID string `json:"id"`
	ProfileRequest
}

func (r *ProfileRequest) toDomain(id string) *taxcalc.FinancialProfile {
	p := &taxcalc.FinancialProfile{
		ID:                id,
		FilingStatus:      refdata.FilingStatus(r.FilingStatus),
		PayFrequency:      refdata.PayFrequency(r.PayFrequency),
		PayPeriodsElapsed: r.PayPeriodsElapsed,

		IncomeYTD:            decimal.NewFromFloat(r.IncomeYTD),
		WithholdingYTD:       decimal.NewFromFloat(r.WithholdingYTD),
		EstimatedPaymentsYTD: decimal.NewFromFloat(r.EstimatedPaymentsYTD),
		SelfEmploymentYTD:    decimal.NewFromFloat(r.SelfEmploymentYTD),

		Contribution401kYTD: decimal.NewFromFloat(r.Contribution401kYTD),
		ContributionHSAYTD:  decimal.NewFromFloat(r.ContributionHSAYTD),
		ContributionIRAYTD:  decimal.NewFromFloat(r.ContributionIRAYTD),

		HSACoverage:      refdata.HSACoverage(r.HSACoverage),
		HasWorkplacePlan: r.HasWorkplacePlan,

		Age:               r.Age,
		DependentsUnder17: r.DependentsUnder17,
	}
	if r.Itemized != nil {
		p.Itemized = &taxcalc.ItemizedDeductions{
			StateLocalTaxes:  decimal.NewFromFloat(r.Itemized.StateLocalTaxes),
			MortgageInterest: decimal.NewFromFloat(r.Itemized.MortgageInterest),
			Charitable:       decimal.NewFromFloat(r.Itemized.Charitable),
			MedicalExpenses:  decimal.NewFromFloat(r.Itemized.MedicalExpenses),
		}
	}
	return p
}

func toProfileDTO(p *taxcalc.FinancialProfile) ProfileDTO {
	dto := ProfileDTO{
		ID: p.ID,
		ProfileRequest: ProfileRequest{
			FilingStatus:      string(p.FilingStatus),
			PayFrequency:      string(p.PayFrequency),
			PayPeriodsElapsed: p.PayPeriodsElapsed,

			IncomeYTD:            p.IncomeYTD.InexactFloat64(),
			WithholdingYTD:       p.WithholdingYTD.InexactFloat64(),
			EstimatedPaymentsYTD: p.EstimatedPaymentsYTD.InexactFloat64(),
			SelfEmploymentYTD:    p.SelfEmploymentYTD.InexactFloat64(),

			Contribution401kYTD: p.Contribution401kYTD.InexactFloat64(),
			ContributionHSAYTD:  p.ContributionHSAYTD.InexactFloat64(),
			ContributionIRAYTD:  p.ContributionIRAYTD.InexactFloat64(),

			HSACoverage:      string(p.HSACoverage),
			HasWorkplacePlan: p.HasWorkplacePlan,

			Age:               p.Age,
			DependentsUnder17: p.DependentsUnder17,
		},
	}
	if p.Itemized != nil {
		dto.Itemized = &ItemizedDTO{
			StateLocalTaxes:  p.Itemized.StateLocalTaxes.InexactFloat64(),
			MortgageInterest: p.Itemized.MortgageInterest.InexactFloat64(),
			Charitable:       p.Itemized.Charitable.InexactFloat64(),
			MedicalExpenses:  p.Itemized.MedicalExpenses.InexactFloat64(),
		}
	}
	return dto
}

// =============================================================================
// LIABILITY DTOs
// =============================================================================

// SegmentDTO is one bracket slice in a liability response.
type SegmentDTO struct {
	Lower  float64  `json:"lower"`
	Upper  *float64 `json:"upper,omitempty"`
	Rate   float64  `json:"rate"`
	Amount float64  `json:"amount"`
	Tax    float64  `json:"tax"`
}

// BreakdownDTO is the full liability derivation.
type BreakdownDTO struct {
	Year         int    `json:"year"`
	FilingStatus string `json:"filing_status"`

	GrossIncome       float64 `json:"gross_income"`
	SelfEmploymentNet float64 `json:"self_employment_net"`
	Adjustments       float64 `json:"adjustments"`
	AGI               float64 `json:"agi"`

	StandardDeduction float64 `json:"standard_deduction"`
	ItemizedDeduction float64 `json:"itemized_deduction"`
	DeductionTaken    float64 `json:"deduction_taken"`
	Itemizing         bool    `json:"itemizing"`

	TaxableIncome float64      `json:"taxable_income"`
	Segments      []SegmentDTO `json:"segments"`
	OrdinaryTax   float64      `json:"ordinary_tax"`

	SelfEmploymentTax float64 `json:"self_employment_tax"`
	ChildTaxCredit    float64 `json:"child_tax_credit"`
	TotalTax          float64 `json:"total_tax"`

	ProjectedWithholding float64 `json:"projected_withholding"`
	EstimatedPayments    float64 `json:"estimated_payments"`
	TotalPayments        float64 `json:"total_payments"`
	RefundOrOwed         float64 `json:"refund_or_owed"`

	MarginalRate  float64 `json:"marginal_rate"`
	EffectiveRate float64 `json:"effective_rate"`
}

func toBreakdownDTO(b *taxcalc.Breakdown) BreakdownDTO {
	segments := make([]SegmentDTO, 0, len(b.Segments))
	for _, s := range b.Segments {
		seg := SegmentDTO{
			Lower:  s.Lower.InexactFloat64(),
			Rate:   s.Rate.InexactFloat64(),
			Amount: s.Amount.InexactFloat64(),
			Tax:    s.Tax.InexactFloat64(),
		}
		if s.Upper != nil {
			u := s.Upper.InexactFloat64()
			seg.Upper = &u
		}
		segments = append(segments, seg)
	}
	return BreakdownDTO{
		Year:         b.Year,
		FilingStatus: string(b.FilingStatus),

		GrossIncome:       b.GrossIncome.InexactFloat64(),
		SelfEmploymentNet: b.SelfEmploymentNet.InexactFloat64(),
		Adjustments:       b.Adjustments.InexactFloat64(),
		AGI:               b.AGI.InexactFloat64(),

		StandardDeduction: b.StandardDeduction.InexactFloat64(),
		ItemizedDeduction: b.ItemizedDeduction.InexactFloat64(),
		DeductionTaken:    b.DeductionTaken.InexactFloat64(),
		Itemizing:         b.Itemizing,

		TaxableIncome: b.TaxableIncome.InexactFloat64(),
		Segments:      segments,
		OrdinaryTax:   b.OrdinaryTax.InexactFloat64(),

		SelfEmploymentTax: b.SelfEmploymentTax.InexactFloat64(),
		ChildTaxCredit:    b.ChildTaxCredit.InexactFloat64(),
		TotalTax:          b.TotalTax.InexactFloat64(),

		ProjectedWithholding: b.ProjectedWithholding.InexactFloat64(),
		EstimatedPayments:    b.EstimatedPayments.InexactFloat64(),
		TotalPayments:        b.TotalPayments.InexactFloat64(),
		RefundOrOwed:         b.RefundOrOwed.InexactFloat64(),

		MarginalRate:  b.MarginalRate.InexactFloat64(),
		EffectiveRate: b.EffectiveRate.InexactFloat64(),
	}
}

// =============================================================================
// SIMULATION DTOs
// =============================================================================

// SimulationRequest describes one what-if scenario.
type SimulationRequest struct {
	Name        string  `json:"name"`
	Extra401k   float64 `json:"extra_401k"`
	ExtraHSA    float64 `json:"extra_hsa"`
	ExtraIRA    float64 `json:"extra_ira"`
	ExtraIncome float64 `json:"extra_income"`
}

func (r *SimulationRequest) toDomain() taxcalc.Adjustment {
	return taxcalc.Adjustment{
		Name:        r.Name,
		Extra401k:   decimal.NewFromFloat(r.Extra401k),
		ExtraHSA:    decimal.NewFromFloat(r.ExtraHSA),
		ExtraIRA:    decimal.NewFromFloat(r.ExtraIRA),
		ExtraIncome: decimal.NewFromFloat(r.ExtraIncome),
	}
}

// AppliedDTO reports the post-clamp deltas.
type AppliedDTO struct {
	Extra401k   float64 `json:"extra_401k"`
	ExtraHSA    float64 `json:"extra_hsa"`
	ExtraIRA    float64 `json:"extra_ira"`
	ExtraIncome float64 `json:"extra_income"`
}

// SimulationDTO is one simulation run.
type SimulationDTO struct {
	ID         string       `json:"id,omitempty"`
	Scenario   string       `json:"scenario"`
	Applied    AppliedDTO   `json:"applied"`
	Baseline   BreakdownDTO `json:"baseline"`
	Result     BreakdownDTO `json:"result"`
	Difference float64      `json:"difference"`
	Beneficial bool         `json:"beneficial"`
	CreatedAt  string       `json:"created_at,omitempty"`
}

func toSimulationDTO(res *taxcalc.SimulationResult) SimulationDTO {
	return SimulationDTO{
		Scenario: res.Scenario,
		Applied: AppliedDTO{
			Extra401k:   res.Applied.Extra401k.InexactFloat64(),
			ExtraHSA:    res.Applied.ExtraHSA.InexactFloat64(),
			ExtraIRA:    res.Applied.ExtraIRA.InexactFloat64(),
			ExtraIncome: res.Applied.ExtraIncome.InexactFloat64(),
		},
		Baseline:   toBreakdownDTO(res.Baseline),
		Result:     toBreakdownDTO(res.Result),
		Difference: res.Difference.InexactFloat64(),
		Beneficial: res.Beneficial,
	}
}

// =============================================================================
// DOCUMENT INGEST DTOs
// =============================================================================

// IngestRequest carries raw document text. It is redacted before
// anything else happens to it and is never echoed back.
type IngestRequest struct {
	Text string `json:"text"`
}

// RedactionDTO summarizes what the redactor found.
type RedactionDTO struct {
	RedactedText string            `json:"redacted_text"`
	TokenMap     map[string]string `json:"token_map"`
	PIITypes     []string          `json:"pii_types"`
	Count        int               `json:"redaction_count"`
	Warnings     []string          `json:"warnings,omitempty"`
}

func toRedactionDTO(res redact.Result) RedactionDTO {
	dto := RedactionDTO{
		RedactedText: string(res.Redacted),
		TokenMap:     map[string]string{},
		PIITypes:     []string{},
		Count:        res.Count,
		Warnings:     res.Warnings,
	}
	for token, cat := range res.TokenMap {
		dto.TokenMap[token] = string(cat)
	}
	for _, cat := range res.PIITypes {
		dto.PIITypes = append(dto.PIITypes, string(cat))
	}
	return dto
}

// ExtractedDTO mirrors extract.Fields with present-only keys.
type ExtractedDTO struct {
	FilingStatus         *string  `json:"filing_status,omitempty"`
	PayFrequency         *string  `json:"pay_frequency,omitempty"`
	IncomeYTD            *float64 `json:"income_ytd,omitempty"`
	WithholdingYTD       *float64 `json:"withholding_ytd,omitempty"`
	Contribution401kYTD  *float64 `json:"contribution_401k_ytd,omitempty"`
	ContributionHSAYTD   *float64 `json:"contribution_hsa_ytd,omitempty"`
	SelfEmploymentYTD    *float64 `json:"self_employment_ytd,omitempty"`
	EstimatedPaymentsYTD *float64 `json:"estimated_payments_ytd,omitempty"`
}

func toExtractedDTO(f *extract.Fields) ExtractedDTO {
	dto := ExtractedDTO{}
	if f.FilingStatus != nil {
		s := string(*f.FilingStatus)
		dto.FilingStatus = &s
	}
	if f.PayFrequency != nil {
		s := string(*f.PayFrequency)
		dto.PayFrequency = &s
	}
	fp := func(d *decimal.Decimal) *float64 {
		if d == nil {
			return nil
		}
		v := d.InexactFloat64()
		return &v
	}
	dto.IncomeYTD = fp(f.IncomeYTD)
	dto.WithholdingYTD = fp(f.WithholdingYTD)
	dto.Contribution401kYTD = fp(f.Contribution401kYTD)
	dto.ContributionHSAYTD = fp(f.ContributionHSAYTD)
	dto.SelfEmploymentYTD = fp(f.SelfEmploymentYTD)
	dto.EstimatedPaymentsYTD = fp(f.EstimatedPaymentsYTD)
	return dto
}

// IngestResponse reports the redaction summary, what was extracted,
// and the profile after the merge.
type IngestResponse struct {
	Redaction RedactionDTO `json:"redaction"`
	Extracted ExtractedDTO `json:"extracted"`
	Profile   ProfileDTO   `json:"profile"`
}

// =============================================================================
// RECOMMENDATION DTOs
// =============================================================================

// RecommendationDTO is one advisor suggestion.
type RecommendationDTO struct {
	Priority         string  `json:"priority"`
	Category         string  `json:"category"`
	Title            string  `json:"title"`
	Detail           string  `json:"detail"`
	EstimatedSavings float64 `json:"estimated_savings"`
}

func toRecommendationDTOs(recs []advisor.Recommendation) []RecommendationDTO {
	dtos := make([]RecommendationDTO, 0, len(recs))
	for _, r := range recs {
		dtos = append(dtos, RecommendationDTO{
			Priority:         r.Priority.String(),
			Category:         r.Category,
			Title:            r.Title,
			Detail:           r.Detail,
			EstimatedSavings: r.EstimatedSavings.InexactFloat64(),
		})
	}
	return dtos
}

// =============================================================================
// STRATEGY DTOs
// =============================================================================

// StrategyDTO is one advanced strategy entry.
type StrategyDTO struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Category   string   `json:"category"`
	Complexity string   `json:"complexity"`
	Timeframe  string   `json:"timeframe"`
	Summary    string   `json:"summary"`
	Detail     string   `json:"detail"`
	Steps      []string `json:"steps"`

	EstimatedAnnualSavings float64 `json:"estimated_annual_savings"`
	OneTimeSavings         float64 `json:"one_time_savings"`
	AuditRisk              int     `json:"audit_risk"`
	LifeChanging           bool    `json:"life_changing"`
}

// StrategyReportDTO is the assembled strategy report for a profile.
type StrategyReportDTO struct {
	TotalStrategies       int           `json:"total_strategies"`
	TotalPotentialSavings float64       `json:"total_potential_savings"`
	Top                   []StrategyDTO `json:"top"`
	LifeChanging          []StrategyDTO `json:"life_changing"`
	ImmediateActions      []StrategyDTO `json:"immediate_actions"`
	All                   []StrategyDTO `json:"all"`
}

func toStrategyDTOs(list []advisor.Strategy) []StrategyDTO {
	dtos := make([]StrategyDTO, 0, len(list))
	for _, s := range list {
		dtos = append(dtos, StrategyDTO{
			ID:                     s.ID,
			Title:                  s.Title,
			Category:               string(s.Category),
			Complexity:             string(s.Complexity),
			Timeframe:              string(s.Timeframe),
			Summary:                s.Summary,
			Detail:                 s.Detail,
			Steps:                  s.Steps,
			EstimatedAnnualSavings: s.EstimatedAnnualSavings.InexactFloat64(),
			OneTimeSavings:         s.OneTimeSavings.InexactFloat64(),
			AuditRisk:              s.AuditRisk,
			LifeChanging:           s.LifeChanging,
		})
	}
	return dtos
}

func toStrategyReportDTO(r advisor.StrategyReport) StrategyReportDTO {
	return StrategyReportDTO{
		TotalStrategies:       r.TotalStrategies,
		TotalPotentialSavings: r.TotalPotentialSavings.InexactFloat64(),
		Top:                   toStrategyDTOs(r.Top),
		LifeChanging:          toStrategyDTOs(r.LifeChanging),
		ImmediateActions:      toStrategyDTOs(r.ImmediateActions),
		All:                   toStrategyDTOs(r.All),
	}
}

// =============================================================================
// MISC DTOs
// =============================================================================

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// ReferenceDTO exposes the statutory tables for client display.
type ReferenceDTO struct {
	Year               int                           `json:"year"`
	Brackets           map[string][]SegmentBoundsDTO `json:"brackets"`
	StandardDeductions map[string]float64            `json:"standard_deductions"`
	Limits             map[string]float64            `json:"limits"`
	PayPeriods         map[string]int                `json:"pay_periods_per_year"`
}

// SegmentBoundsDTO is one bracket row of the reference tables.
type SegmentBoundsDTO struct {
	Lower float64 `json:"lower"`
	Rate  float64 `json:"rate"`
}
