/*
Package refdata holds the 2025 federal tax reference tables.

PURPOSE:
  Single source of truth for every statutory number the engine uses:
  bracket tables, standard deductions, contribution limits, child tax
  credit parameters, self-employment tax constants, pay-period counts.
  All tax math reads from here - nothing else in the codebase hardcodes
  a bracket or a limit, and no external service is ever asked for one.

KEY CONCEPTS:
  - BracketTable: ordered (lower bound, rate) pairs per filing status.
    The upper bound of each segment is implicit from the next entry;
    the last segment is unbounded.
  - Limits: statutory contribution ceilings, with age-based catch-ups
    resolved through lookup helpers (Limit401k, LimitHSA, LimitIRA).

IMMUTABILITY:
  Tables are package-level values initialized once and never written
  after init. There is deliberately no mutation path: requests share
  these structures without synchronization.

VALIDATION:
  Validate() checks the structural invariants (first lower bound zero,
  strictly increasing bounds, non-decreasing rates). A malformed table
  must be fatal at startup - silently producing wrong tax numbers is
  the one failure mode this product cannot absorb.

SEE ALSO:
  - validate.go: Invariant checks and ErrBadReferenceData
  - taxcalc/calculator.go: The only consumer of bracket math
*/
package refdata

import "github.com/shopspring/decimal"

// =============================================================================
// FILING STATUS AND PAY FREQUENCY
// =============================================================================

type FilingStatus string

const (
	Single          FilingStatus = "single"
	MarriedJoint    FilingStatus = "married_joint"
	MarriedSeparate FilingStatus = "married_separate"
	HeadOfHousehold FilingStatus = "head_of_household"
)

// FilingStatuses lists every valid status, in table order.
var FilingStatuses = []FilingStatus{Single, MarriedJoint, MarriedSeparate, HeadOfHousehold}

func (fs FilingStatus) Valid() bool {
	switch fs {
	case Single, MarriedJoint, MarriedSeparate, HeadOfHousehold:
		return true
	}
	return false
}

type PayFrequency string

const (
	Weekly      PayFrequency = "weekly"
	Biweekly    PayFrequency = "biweekly"
	Semimonthly PayFrequency = "semimonthly"
	Monthly     PayFrequency = "monthly"
	Quarterly   PayFrequency = "quarterly"
	Annually    PayFrequency = "annually"
)

// PayPeriodsPerYear maps a pay frequency to the number of pay periods
// in a full calendar year. Used to project YTD figures to year-end.
var PayPeriodsPerYear = map[PayFrequency]int{
	Weekly:      52,
	Biweekly:    26,
	Semimonthly: 24,
	Monthly:     12,
	Quarterly:   4,
	Annually:    1,
}

func (pf PayFrequency) Valid() bool {
	_, ok := PayPeriodsPerYear[pf]
	return ok
}

// =============================================================================
// BRACKET TABLES (2025)
// =============================================================================

// Bracket is one segment of a progressive schedule. Lower is the first
// dollar taxed at Rate; the segment ends where the next bracket begins.
type Bracket struct {
	Lower decimal.Decimal
	Rate  decimal.Decimal
}

// BracketTable is an ordered progressive schedule. Invariants (checked
// by Validate): first Lower is zero, Lowers strictly increase, Rates
// never decrease.
type BracketTable []Bracket

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func rate(s string) decimal.Decimal {
	r, _ := decimal.NewFromString(s)
	return r
}

// BracketTables2025 holds the projected 2025 federal schedules.
var BracketTables2025 = map[FilingStatus]BracketTable{
	Single: {
		{Lower: d(0), Rate: rate("0.10")},
		{Lower: d(11925), Rate: rate("0.12")},
		{Lower: d(48475), Rate: rate("0.22")},
		{Lower: d(103350), Rate: rate("0.24")},
		{Lower: d(197300), Rate: rate("0.32")},
		{Lower: d(250525), Rate: rate("0.35")},
		{Lower: d(626350), Rate: rate("0.37")},
	},
	MarriedJoint: {
		{Lower: d(0), Rate: rate("0.10")},
		{Lower: d(23850), Rate: rate("0.12")},
		{Lower: d(96950), Rate: rate("0.22")},
		{Lower: d(206700), Rate: rate("0.24")},
		{Lower: d(394600), Rate: rate("0.32")},
		{Lower: d(501050), Rate: rate("0.35")},
		{Lower: d(751600), Rate: rate("0.37")},
	},
	MarriedSeparate: {
		{Lower: d(0), Rate: rate("0.10")},
		{Lower: d(11925), Rate: rate("0.12")},
		{Lower: d(48475), Rate: rate("0.22")},
		{Lower: d(103350), Rate: rate("0.24")},
		{Lower: d(197300), Rate: rate("0.32")},
		{Lower: d(250525), Rate: rate("0.35")},
		{Lower: d(375800), Rate: rate("0.37")},
	},
	HeadOfHousehold: {
		{Lower: d(0), Rate: rate("0.10")},
		{Lower: d(17000), Rate: rate("0.12")},
		{Lower: d(64850), Rate: rate("0.22")},
		{Lower: d(103350), Rate: rate("0.24")},
		{Lower: d(197300), Rate: rate("0.32")},
		{Lower: d(250500), Rate: rate("0.35")},
		{Lower: d(626350), Rate: rate("0.37")},
	},
}

// StandardDeduction2025 per filing status.
var StandardDeduction2025 = map[FilingStatus]decimal.Decimal{
	Single:          d(15000),
	MarriedJoint:    d(30000),
	MarriedSeparate: d(15000),
	HeadOfHousehold: d(22500),
}

// =============================================================================
// CONTRIBUTION LIMITS (2025)
// =============================================================================

// HSACoverage distinguishes individual from family HSA limits.
type HSACoverage string

const (
	HSAIndividual HSACoverage = "individual"
	HSAFamily     HSACoverage = "family"
)

// Limits bundles the 2025 statutory contribution ceilings.
type Limits struct {
	K401Employee      decimal.Decimal
	K401CatchUp50     decimal.Decimal
	K401CatchUp60to63 decimal.Decimal
	IRATraditional    decimal.Decimal
	IRACatchUp50      decimal.Decimal
	HSAIndividual     decimal.Decimal
	HSAFamily         decimal.Decimal
	HSACatchUp55      decimal.Decimal
}

var Limits2025 = Limits{
	K401Employee:      d(23500),
	K401CatchUp50:     d(7500),
	K401CatchUp60to63: d(11250),
	IRATraditional:    d(7000),
	IRACatchUp50:      d(1000),
	HSAIndividual:     d(4300),
	HSAFamily:         d(8550),
	HSACatchUp55:      d(1000),
}

// Limit401k returns the elective deferral ceiling for the given age.
// Ages 60-63 get the super catch-up instead of the regular 50+ catch-up.
func Limit401k(age int) decimal.Decimal {
	limit := Limits2025.K401Employee
	switch {
	case age >= 60 && age <= 63:
		limit = limit.Add(Limits2025.K401CatchUp60to63)
	case age >= 50:
		limit = limit.Add(Limits2025.K401CatchUp50)
	}
	return limit
}

// LimitIRA returns the traditional IRA ceiling for the given age.
func LimitIRA(age int) decimal.Decimal {
	limit := Limits2025.IRATraditional
	if age >= 50 {
		limit = limit.Add(Limits2025.IRACatchUp50)
	}
	return limit
}

// LimitHSA returns the HSA ceiling for the given coverage type and age.
// Unknown coverage falls back to the individual limit.
func LimitHSA(coverage HSACoverage, age int) decimal.Decimal {
	limit := Limits2025.HSAIndividual
	if coverage == HSAFamily {
		limit = Limits2025.HSAFamily
	}
	if age >= 55 {
		limit = limit.Add(Limits2025.HSACatchUp55)
	}
	return limit
}

// IRAPhaseOutEnd2025 is the modified AGI above which a traditional IRA
// contribution stops being deductible when the filer is covered by a
// workplace retirement plan. Simplified cliff, matching the projection
// engine's behavior (full deduction below, none above).
var IRAPhaseOutEnd2025 = map[FilingStatus]decimal.Decimal{
	Single:          d(89000),
	MarriedJoint:    d(146000),
	MarriedSeparate: d(10000),
	HeadOfHousehold: d(89000),
}

// =============================================================================
// CHILD TAX CREDIT (2025)
// =============================================================================

type ChildTaxCredit struct {
	PerChild           decimal.Decimal
	PhaseOutThresholds map[FilingStatus]decimal.Decimal
	// ReductionPer1000: credit reduction for each full $1,000 of AGI
	// above the threshold.
	ReductionPer1000 decimal.Decimal
}

var ChildTaxCredit2025 = ChildTaxCredit{
	PerChild: d(2000),
	PhaseOutThresholds: map[FilingStatus]decimal.Decimal{
		Single:          d(200000),
		MarriedJoint:    d(400000),
		MarriedSeparate: d(200000),
		HeadOfHousehold: d(200000),
	},
	ReductionPer1000: d(50),
}

// =============================================================================
// SELF-EMPLOYMENT TAX (2025)
// =============================================================================

type SelfEmploymentTax struct {
	// NetEarningsFactor: portion of gross SE income subject to SE tax.
	NetEarningsFactor decimal.Decimal
	// SocialSecurityRate: combined employee+employer rate, up to WageBase.
	SocialSecurityRate decimal.Decimal
	WageBase           decimal.Decimal
	// MedicareRate: combined rate, uncapped.
	MedicareRate decimal.Decimal
	// AdditionalRate applies above the per-status AdditionalThresholds.
	AdditionalRate       decimal.Decimal
	AdditionalThresholds map[FilingStatus]decimal.Decimal
}

var SelfEmploymentTax2025 = SelfEmploymentTax{
	NetEarningsFactor:  rate("0.9235"),
	SocialSecurityRate: rate("0.124"),
	WageBase:           d(176100),
	MedicareRate:       rate("0.029"),
	AdditionalRate:     rate("0.009"),
	AdditionalThresholds: map[FilingStatus]decimal.Decimal{
		Single:          d(200000),
		MarriedJoint:    d(250000),
		MarriedSeparate: d(125000),
		HeadOfHousehold: d(200000),
	},
}
