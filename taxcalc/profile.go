/*
Package taxcalc is the deterministic federal liability engine.

PURPOSE:
  Everything that turns a financial profile into dollar amounts lives
  here: year-end projection, AGI, deduction choice, progressive bracket
  math, self-employment tax, child tax credit, and the what-if
  simulator built on top of the calculator. No I/O, no randomness, no
  external calls: same profile in, same breakdown out, always.

KEY CONCEPTS:
  - FinancialProfile: sole input. All money fields are YTD figures as
    decimals; projection to year end uses the pay frequency.
  - Breakdown: full audit trail of a computation, segment by segment,
    so a caller can show exactly where each dollar of tax comes from.
  - Income in a profile is gross pay before elective deferrals; the
    calculator subtracts 401(k), HSA, and deductible IRA amounts as
    adjustments. This is what lets contribution scenarios move the
    liability.

SEE ALSO:
  - calculator.go: Calculate and the bracket walk
  - simulator.go: Contribution scenarios and optimal search
  - refdata/: Every statutory number used here
*/
package taxcalc

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/taxguard/tax-engine/refdata"
)

// =============================================================================
// ERRORS
// =============================================================================

// ErrValidation marks profile input the engine refuses to compute on.
// Always a client error, never retryable.
var ErrValidation = errors.New("validation error")

// FieldError reports which profile field failed and why.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Reason)
}

func (e *FieldError) Unwrap() error { return ErrValidation }

func fieldErr(field, reason string) error {
	return &FieldError{Field: field, Reason: reason}
}

// =============================================================================
// FINANCIAL PROFILE
// =============================================================================

// ItemizedDeductions holds the components of an itemized claim. The
// calculator caps state and local taxes and applies the medical AGI
// floor before comparing against the standard deduction.
type ItemizedDeductions struct {
	StateLocalTaxes  decimal.Decimal `json:"state_local_taxes"`
	MortgageInterest decimal.Decimal `json:"mortgage_interest"`
	Charitable       decimal.Decimal `json:"charitable"`
	MedicalExpenses  decimal.Decimal `json:"medical_expenses"`
}

// FinancialProfile is the complete input to a liability computation.
// All dollar fields are year-to-date amounts.
type FinancialProfile struct {
	ID           string               `json:"id"`
	FilingStatus refdata.FilingStatus `json:"filing_status"`
	PayFrequency refdata.PayFrequency `json:"pay_frequency"`
	// PayPeriodsElapsed: how many pay periods the YTD figures cover.
	PayPeriodsElapsed int `json:"pay_periods_elapsed"`

	IncomeYTD            decimal.Decimal `json:"income_ytd"`
	WithholdingYTD       decimal.Decimal `json:"withholding_ytd"`
	EstimatedPaymentsYTD decimal.Decimal `json:"estimated_payments_ytd"`
	SelfEmploymentYTD    decimal.Decimal `json:"self_employment_ytd"`

	Contribution401kYTD decimal.Decimal `json:"contribution_401k_ytd"`
	ContributionHSAYTD  decimal.Decimal `json:"contribution_hsa_ytd"`
	ContributionIRAYTD  decimal.Decimal `json:"contribution_ira_ytd"`

	HSACoverage      refdata.HSACoverage `json:"hsa_coverage"`
	HasWorkplacePlan bool                `json:"has_workplace_plan"`

	Age               int `json:"age"`
	DependentsUnder17 int `json:"dependents_under_17"`

	Itemized *ItemizedDeductions `json:"itemized,omitempty"`
}

// Clone returns a deep copy. The simulator mutates clones only, so a
// stored profile is never changed by a what-if run.
func (p *FinancialProfile) Clone() *FinancialProfile {
	cp := *p
	if p.Itemized != nil {
		it := *p.Itemized
		cp.Itemized = &it
	}
	return &cp
}

// Validate rejects profiles the calculator cannot compute on. Every
// failure wraps ErrValidation and names the offending field.
func (p *FinancialProfile) Validate() error {
	if !p.FilingStatus.Valid() {
		return fieldErr("filing_status", fmt.Sprintf("unknown status %q", p.FilingStatus))
	}
	if !p.PayFrequency.Valid() {
		return fieldErr("pay_frequency", fmt.Sprintf("unknown frequency %q", p.PayFrequency))
	}
	periods := refdata.PayPeriodsPerYear[p.PayFrequency]
	if p.PayPeriodsElapsed < 1 || p.PayPeriodsElapsed > periods {
		return fieldErr("pay_periods_elapsed", fmt.Sprintf("must be between 1 and %d for %s", periods, p.PayFrequency))
	}
	for _, f := range []struct {
		name string
		v    decimal.Decimal
	}{
		{"income_ytd", p.IncomeYTD},
		{"withholding_ytd", p.WithholdingYTD},
		{"estimated_payments_ytd", p.EstimatedPaymentsYTD},
		{"self_employment_ytd", p.SelfEmploymentYTD},
		{"contribution_401k_ytd", p.Contribution401kYTD},
		{"contribution_hsa_ytd", p.ContributionHSAYTD},
		{"contribution_ira_ytd", p.ContributionIRAYTD},
	} {
		if f.v.IsNegative() {
			return fieldErr(f.name, "must not be negative")
		}
	}
	if p.Age < 0 || p.Age > 130 {
		return fieldErr("age", "must be between 0 and 130")
	}
	if p.DependentsUnder17 < 0 {
		return fieldErr("dependents_under_17", "must not be negative")
	}
	// Contributions past the statutory cap would understate the
	// liability if deducted, so they are rejected here, not clamped.
	// Checked after age since the caps depend on it.
	for _, f := range []struct {
		name  string
		v     decimal.Decimal
		limit decimal.Decimal
	}{
		{"contribution_401k_ytd", p.Contribution401kYTD, refdata.Limit401k(p.Age)},
		{"contribution_hsa_ytd", p.ContributionHSAYTD, refdata.LimitHSA(p.HSACoverage, p.Age)},
		{"contribution_ira_ytd", p.ContributionIRAYTD, refdata.LimitIRA(p.Age)},
	} {
		if f.v.GreaterThan(f.limit) {
			return fieldErr(f.name, fmt.Sprintf("exceeds the statutory limit of %s", f.limit))
		}
	}
	if p.Itemized != nil {
		for _, f := range []struct {
			name string
			v    decimal.Decimal
		}{
			{"itemized.state_local_taxes", p.Itemized.StateLocalTaxes},
			{"itemized.mortgage_interest", p.Itemized.MortgageInterest},
			{"itemized.charitable", p.Itemized.Charitable},
			{"itemized.medical_expenses", p.Itemized.MedicalExpenses},
		} {
			if f.v.IsNegative() {
				return fieldErr(f.name, "must not be negative")
			}
		}
	}
	return nil
}

// projectionFactor scales a YTD amount to a full-year estimate.
func (p *FinancialProfile) projectionFactor() decimal.Decimal {
	periods := refdata.PayPeriodsPerYear[p.PayFrequency]
	return decimal.NewFromInt(int64(periods)).Div(decimal.NewFromInt(int64(p.PayPeriodsElapsed)))
}
