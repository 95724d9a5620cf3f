/*
validate.go - Structural invariants for the reference tables

PURPOSE:
  Checks that every bracket table is well-formed before the server
  accepts traffic. A table that fails these checks means the binary
  itself is wrong, so callers treat ErrBadReferenceData as fatal.

INVARIANTS CHECKED:
  - Every filing status has a bracket table and a standard deduction
  - First bracket starts at zero
  - Lower bounds strictly increase
  - Rates are in (0, 1] and never decrease
  - Contribution limits and SE constants are positive

SEE ALSO:
  - cmd/server/main.go: Calls Validate at startup and exits on error
*/
package refdata

import (
	"errors"
	"fmt"
)

// ErrBadReferenceData indicates a malformed statutory table. Not
// recoverable at runtime; the process should refuse to start.
var ErrBadReferenceData = errors.New("bad reference data")

// Validate checks the 2025 tables against their structural invariants.
// Returns nil when every table is well-formed.
func Validate() error {
	for _, fs := range FilingStatuses {
		table, ok := BracketTables2025[fs]
		if !ok {
			return fmt.Errorf("%w: no bracket table for %s", ErrBadReferenceData, fs)
		}
		if err := table.Validate(); err != nil {
			return fmt.Errorf("%s: %w", fs, err)
		}
		if _, ok := StandardDeduction2025[fs]; !ok {
			return fmt.Errorf("%w: no standard deduction for %s", ErrBadReferenceData, fs)
		}
		if _, ok := ChildTaxCredit2025.PhaseOutThresholds[fs]; !ok {
			return fmt.Errorf("%w: no CTC threshold for %s", ErrBadReferenceData, fs)
		}
		if _, ok := SelfEmploymentTax2025.AdditionalThresholds[fs]; !ok {
			return fmt.Errorf("%w: no additional medicare threshold for %s", ErrBadReferenceData, fs)
		}
	}

	for name, v := range map[string]interface{ IsPositive() bool }{
		"401k limit":     Limits2025.K401Employee,
		"IRA limit":      Limits2025.IRATraditional,
		"HSA individual": Limits2025.HSAIndividual,
		"HSA family":     Limits2025.HSAFamily,
		"SE wage base":   SelfEmploymentTax2025.WageBase,
	} {
		if !v.IsPositive() {
			return fmt.Errorf("%w: %s must be positive", ErrBadReferenceData, name)
		}
	}
	return nil
}

// Validate checks a single bracket table's shape.
func (t BracketTable) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("%w: empty bracket table", ErrBadReferenceData)
	}
	if !t[0].Lower.IsZero() {
		return fmt.Errorf("%w: first bracket must start at 0, got %s", ErrBadReferenceData, t[0].Lower)
	}
	one := d(1)
	for i, b := range t {
		if !b.Rate.IsPositive() || b.Rate.GreaterThan(one) {
			return fmt.Errorf("%w: bracket %d rate %s out of range", ErrBadReferenceData, i, b.Rate)
		}
		if i == 0 {
			continue
		}
		if !t[i].Lower.GreaterThan(t[i-1].Lower) {
			return fmt.Errorf("%w: bracket %d lower bound %s does not increase", ErrBadReferenceData, i, b.Lower)
		}
		if t[i].Rate.LessThan(t[i-1].Rate) {
			return fmt.Errorf("%w: bracket %d rate %s decreases", ErrBadReferenceData, i, b.Rate)
		}
	}
	return nil
}
