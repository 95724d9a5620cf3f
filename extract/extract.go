/*
Package extract pulls structured financial fields out of redacted
document text.

PURPOSE:
  A pasted pay stub or W-2, after redaction, still carries the numbers
  the engine needs: YTD gross, withholding, contribution amounts, pay
  frequency. Extractors read RedactedText only and return the fields
  they could find with any they could not left nil, so the caller
  merges rather than overwrites.

KEY CONCEPTS:
  - Extractor: polymorphic over an AI backend and a regex rule set.
    Callers depend on the interface, never on a concrete backend.
  - PII boundary: every Extractor signature takes redact.RedactedText.
    There is no code path that hands raw text to this package.
  - ErrNoExtraction: the document yielded nothing usable. Distinct
    from ErrExternalService, which means the backend itself failed and
    a retry might succeed.

SEE ALSO:
  - openai.go: The AI-backed extractor
  - rules.go: Regex extraction, also the fallback backend
*/
package extract

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/taxguard/tax-engine/redact"
	"github.com/taxguard/tax-engine/refdata"
)

// =============================================================================
// ERRORS
// =============================================================================

// ErrNoExtraction means the document held nothing the extractor could
// use. Client-visible but not retryable.
var ErrNoExtraction = errors.New("no fields extracted")

// ErrExternalService wraps backend transport or API failures.
// Retryable from the caller's point of view.
var ErrExternalService = errors.New("external service error")

// =============================================================================
// FIELDS
// =============================================================================

// Fields is a partial profile update. Nil means the document did not
// yield that field; present values replace the profile's.
type Fields struct {
	FilingStatus         *refdata.FilingStatus `json:"filing_status,omitempty"`
	PayFrequency         *refdata.PayFrequency `json:"pay_frequency,omitempty"`
	IncomeYTD            *decimal.Decimal      `json:"income_ytd,omitempty"`
	WithholdingYTD       *decimal.Decimal      `json:"withholding_ytd,omitempty"`
	Contribution401kYTD  *decimal.Decimal      `json:"contribution_401k_ytd,omitempty"`
	ContributionHSAYTD   *decimal.Decimal      `json:"contribution_hsa_ytd,omitempty"`
	SelfEmploymentYTD    *decimal.Decimal      `json:"self_employment_ytd,omitempty"`
	EstimatedPaymentsYTD *decimal.Decimal      `json:"estimated_payments_ytd,omitempty"`
}

// Empty reports whether nothing at all was extracted.
func (f *Fields) Empty() bool {
	return f.FilingStatus == nil && f.PayFrequency == nil &&
		f.IncomeYTD == nil && f.WithholdingYTD == nil &&
		f.Contribution401kYTD == nil && f.ContributionHSAYTD == nil &&
		f.SelfEmploymentYTD == nil && f.EstimatedPaymentsYTD == nil
}

// Extractor turns redacted document text into Fields.
type Extractor interface {
	Extract(ctx context.Context, text redact.RedactedText) (*Fields, error)
}

// =============================================================================
// FALLBACK CHAIN
// =============================================================================

// Fallback tries the primary extractor and silently falls back to the
// secondary when the primary fails for any reason. The degradation is
// reported through the logger, never to the client.
type Fallback struct {
	Primary    Extractor
	Secondary  Extractor
	OnFallback func(err error)
}

func (f *Fallback) Extract(ctx context.Context, text redact.RedactedText) (*Fields, error) {
	fields, err := f.Primary.Extract(ctx, text)
	if err == nil {
		return fields, nil
	}
	if f.OnFallback != nil {
		f.OnFallback(err)
	}
	return f.Secondary.Extract(ctx, text)
}
