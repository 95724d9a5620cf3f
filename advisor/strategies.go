/*
strategies.go - Advanced strategy catalog and recommender

PURPOSE:
  A fixed catalog of higher-leverage planning moves that go past the
  contribution-headroom rules: entity elections, real estate
  depreciation, Roth conversion paths, charitable bunching, credits,
  and relocation. The recommender filters the catalog against a
  Summary plus a few self-reported flags, re-estimates savings at the
  filer's marginal rate, and assembles a report.

  Everything here is deterministic. The catalog never goes through the
  AI path; these are reference plays, not generated text.

SEE ALSO:
  - advisor.go: The Summary these strategies are matched against
  - rules.go: The baseline recommendation table
*/
package advisor

import (
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// STRATEGY MODEL
// =============================================================================

// StrategyCategory groups catalog entries for display.
type StrategyCategory string

const (
	CategoryBusinessFormation  StrategyCategory = "business_formation"
	CategoryRealEstate         StrategyCategory = "real_estate"
	CategoryRetirementAdvanced StrategyCategory = "retirement_advanced"
	CategoryFamily             StrategyCategory = "family_strategies"
	CategoryCharitable         StrategyCategory = "charitable_advanced"
	CategoryCredits            StrategyCategory = "credits_incentives"
	CategoryTiming             StrategyCategory = "timing_strategies"
	CategoryStateOptimization  StrategyCategory = "state_optimization"
)

// Complexity signals how much professional help a strategy needs.
type Complexity string

const (
	ComplexitySimple   Complexity = "simple"
	ComplexityModerate Complexity = "moderate"
	ComplexityAdvanced Complexity = "advanced"
	ComplexityExpert   Complexity = "expert"
)

// Timeframe is when a strategy can realistically start paying off.
type Timeframe string

const (
	TimeframeImmediate Timeframe = "immediate"
	TimeframeYearEnd   Timeframe = "year_end"
	TimeframeNextYear  Timeframe = "next_year"
	TimeframeLongTerm  Timeframe = "long_term"
)

// Strategy is one catalog entry. MinIncome and MaxIncome gate by
// projected gross income; a nil MaxIncome means unbounded.
type Strategy struct {
	ID         string           `json:"id"`
	Title      string           `json:"title"`
	Category   StrategyCategory `json:"category"`
	Complexity Complexity       `json:"complexity"`
	Timeframe  Timeframe        `json:"timeframe"`

	Summary string   `json:"summary"`
	Detail  string   `json:"detail"`
	Steps   []string `json:"steps"`

	EstimatedAnnualSavings decimal.Decimal `json:"estimated_annual_savings"`
	OneTimeSavings         decimal.Decimal `json:"one_time_savings"`

	MinIncome decimal.Decimal  `json:"min_income"`
	MaxIncome *decimal.Decimal `json:"max_income,omitempty"`

	RequiresBusiness       bool `json:"requires_business"`
	RequiresRealEstate     bool `json:"requires_real_estate"`
	RequiresSelfEmployment bool `json:"requires_self_employment"`
	MinAge                 int  `json:"min_age,omitempty"`

	// AuditRisk is a 1-5 scale, 5 being the most scrutinized.
	AuditRisk    int  `json:"audit_risk"`
	LifeChanging bool `json:"life_changing"`
}

// Situation carries the self-reported flags the profile itself does
// not hold. All default to false; absence only hides strategies, it
// never surfaces wrong ones.
type Situation struct {
	HasBusiness   bool `json:"has_business"`
	HasRealEstate bool `json:"has_real_estate"`
	OwnsHome      bool `json:"owns_home"`
}

// StrategyReport is the assembled answer for one profile.
type StrategyReport struct {
	TotalStrategies       int             `json:"total_strategies"`
	TotalPotentialSavings decimal.Decimal `json:"total_potential_savings"`
	Top                   []Strategy      `json:"top"`
	LifeChanging          []Strategy      `json:"life_changing"`
	ImmediateActions      []Strategy      `json:"immediate_actions"`
	All                   []Strategy      `json:"all"`
}

// =============================================================================
// CATALOG
// =============================================================================

func maxIncome(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func strategyCatalog() []Strategy {
	return []Strategy{
		{
			ID:         "side-business",
			Title:      "Start a side business (Schedule C)",
			Category:   CategoryBusinessFormation,
			Complexity: ComplexityModerate,
			Timeframe:  TimeframeImmediate,
			Summary:    "A legitimate side business unlocks deductions that offset W-2 income.",
			Detail: "Even a small business creates real deductions: home office, equipment, " +
				"a share of vehicle costs. Losses can offset wages, and it opens the door to " +
				"a Solo 401(k) and the 20% QBI deduction.",
			Steps: []string{
				"Identify a monetizable skill or hobby",
				"Register the business and get an EIN",
				"Open a separate business bank account",
				"Track every business expense",
			},
			EstimatedAnnualSavings: decimal.NewFromInt(5000),
			AuditRisk:              2,
			LifeChanging:           true,
		},
		{
			ID:         "s-corp-election",
			Title:      "S-Corp election for SE tax savings",
			Category:   CategoryBusinessFormation,
			Complexity: ComplexityAdvanced,
			Timeframe:  TimeframeNextYear,
			Summary:    "Above roughly $50k of profit, an S-Corp election cuts self-employment tax.",
			Detail: "Instead of 15.3% SE tax on every dollar of profit, an S-Corp pays payroll " +
				"tax on a reasonable salary and takes the remainder as distributions.",
			Steps: []string{
				"Confirm profit justifies the overhead",
				"Form an LLC and file Form 2553",
				"Set up payroll and a reasonable salary",
			},
			EstimatedAnnualSavings: decimal.NewFromInt(7500),
			MinIncome:              decimal.NewFromInt(50000),
			RequiresSelfEmployment: true,
			AuditRisk:              3,
		},
		{
			ID:         "section-179-vehicle",
			Title:      "Section 179 vehicle deduction",
			Category:   CategoryBusinessFormation,
			Complexity: ComplexityModerate,
			Timeframe:  TimeframeYearEnd,
			Summary:    "A business vehicle over 6,000 lbs GVWR can be deducted heavily in year one.",
			Detail: "Section 179 lets a business deduct most of a qualifying vehicle's cost " +
				"immediately instead of depreciating it. Requires majority business use and a " +
				"mileage log.",
			Steps: []string{
				"Verify majority business use",
				"Check the vehicle's GVWR",
				"Purchase before December 31 and claim on Form 4562",
			},
			EstimatedAnnualSavings: decimal.NewFromInt(10000),
			RequiresBusiness:       true,
			AuditRisk:              3,
			LifeChanging:           true,
		},
		{
			ID:         "hire-your-kids",
			Title:      "Hire your children in the business",
			Category:   CategoryFamily,
			Complexity: ComplexityModerate,
			Timeframe:  TimeframeImmediate,
			Summary:    "Wages to your children are deductible and often tax-free to them.",
			Detail: "A sole proprietorship paying a child under 18 owes no FICA on those wages, " +
				"the wages are deductible, and the child can fund a Roth IRA with decades of " +
				"tax-free growth ahead.",
			Steps: []string{
				"Document age-appropriate job duties",
				"Pay reasonable wages and keep time records",
				"Open a custodial Roth IRA",
			},
			EstimatedAnnualSavings: decimal.NewFromInt(5000),
			RequiresBusiness:       true,
			AuditRisk:              2,
			LifeChanging:           true,
		},
		{
			ID:         "augusta-rule",
			Title:      "Augusta rule home rental",
			Category:   CategoryBusinessFormation,
			Complexity: ComplexityModerate,
			Timeframe:  TimeframeImmediate,
			Summary:    "Rent your home to your business up to 14 days a year, tax-free to you.",
			Detail: "Section 280A(g) exempts up to 14 days of home rental income. A business " +
				"renting the owner's home for meetings deducts the rent while the owner " +
				"reports none of it.",
			Steps: []string{
				"Document fair market daily rates",
				"Keep minutes for each business event",
				"Pay rent from the business account",
			},
			EstimatedAnnualSavings: decimal.NewFromInt(3000),
			RequiresBusiness:       true,
			AuditRisk:              3,
		},
		{
			ID:         "rental-property",
			Title:      "Rental property depreciation",
			Category:   CategoryRealEstate,
			Complexity: ComplexityAdvanced,
			Timeframe:  TimeframeLongTerm,
			Summary:    "Depreciation creates paper losses while the property builds equity.",
			Detail: "A residential rental depreciates over 27.5 years. Combined with mortgage " +
				"interest, taxes, and repairs, rentals routinely show deductible losses while " +
				"cash flowing.",
			Steps: []string{
				"Research markets and financing",
				"Consider an LLC structure",
				"Evaluate a cost segregation study",
			},
			EstimatedAnnualSavings: decimal.NewFromInt(8000),
			RequiresRealEstate:     true,
			AuditRisk:              2,
			LifeChanging:           true,
		},
		{
			ID:         "real-estate-professional",
			Title:      "Real estate professional status",
			Category:   CategoryRealEstate,
			Complexity: ComplexityExpert,
			Timeframe:  TimeframeLongTerm,
			Summary:    "With 750+ documented hours, rental losses offset all income types.",
			Detail: "Rental losses are normally passive. A taxpayer (or spouse) qualifying as a " +
				"real estate professional converts them to non-passive, letting depreciation " +
				"offset W-2 income. Heavily audited; meticulous records required.",
			Steps: []string{
				"Track all real estate hours",
				"Document material participation per property",
				"Work with a specialist CPA",
			},
			EstimatedAnnualSavings: decimal.NewFromInt(30000),
			MinIncome:              decimal.NewFromInt(150000),
			RequiresRealEstate:     true,
			AuditRisk:              5,
			LifeChanging:           true,
		},
		{
			ID:         "cost-segregation",
			Title:      "Cost segregation study",
			Category:   CategoryRealEstate,
			Complexity: ComplexityExpert,
			Timeframe:  TimeframeImmediate,
			Summary:    "Reclassify building components to 5-15 year lives for front-loaded deductions.",
			Detail: "An engineering study typically reclassifies 20-40% of a building into " +
				"short-life property eligible for bonus depreciation, concentrating years of " +
				"deductions into year one.",
			Steps: []string{
				"Hire a cost segregation firm",
				"Apply bonus depreciation to reclassified assets",
				"Consider amending prior years",
			},
			EstimatedAnnualSavings: decimal.NewFromInt(50000),
			OneTimeSavings:         decimal.NewFromInt(100000),
			MinIncome:              decimal.NewFromInt(100000),
			RequiresRealEstate:     true,
			AuditRisk:              2,
		},
		{
			ID:         "solo-401k",
			Title:      "Solo 401(k) for self-employment income",
			Category:   CategoryRetirementAdvanced,
			Complexity: ComplexityModerate,
			Timeframe:  TimeframeYearEnd,
			Summary:    "Self-employment income allows both employee and employer contributions.",
			Detail: "A Solo 401(k) stacks the employee deferral with an employer contribution " +
				"of up to 25% of net self-employment earnings, far past IRA limits. Must be " +
				"established by December 31.",
			Steps: []string{
				"Establish the plan before year end",
				"Calculate the combined contribution ceiling",
				"Choose a Roth and traditional mix",
			},
			EstimatedAnnualSavings: decimal.NewFromInt(15000),
			RequiresSelfEmployment: true,
			AuditRisk:              1,
			LifeChanging:           true,
		},
		{
			ID:         "backdoor-roth",
			Title:      "Backdoor Roth IRA conversion",
			Category:   CategoryRetirementAdvanced,
			Complexity: ComplexityModerate,
			Timeframe:  TimeframeImmediate,
			Summary:    "High earners can still reach a Roth via a non-deductible contribution.",
			Detail: "Contribute to a traditional IRA without deducting, convert to Roth " +
				"promptly, file Form 8606. Watch the pro-rata rule if other pre-tax IRA " +
				"balances exist.",
			Steps: []string{
				"Check existing traditional IRA balances",
				"Contribute non-deductible, convert within days",
				"File Form 8606",
			},
			EstimatedAnnualSavings: decimal.NewFromInt(2000),
			MinIncome:              decimal.NewFromInt(150000),
			AuditRisk:              1,
		},
		{
			ID:         "mega-backdoor-roth",
			Title:      "Mega backdoor Roth (after-tax 401(k))",
			Category:   CategoryRetirementAdvanced,
			Complexity: ComplexityAdvanced,
			Timeframe:  TimeframeImmediate,
			Summary:    "After-tax 401(k) contributions converted in-plan multiply Roth capacity.",
			Detail: "Plans that allow after-tax contributions plus in-service conversions let a " +
				"participant fill the overall 401(k) limit with Roth dollars beyond the normal " +
				"deferral cap.",
			Steps: []string{
				"Confirm the plan allows after-tax contributions",
				"Confirm in-service conversions",
				"Automate contributions and convert promptly",
			},
			EstimatedAnnualSavings: decimal.NewFromInt(10000),
			MinIncome:              decimal.NewFromInt(200000),
			AuditRisk:              1,
			LifeChanging:           true,
		},
		{
			ID:         "daf-bunching",
			Title:      "Donor advised fund bunching",
			Category:   CategoryCharitable,
			Complexity: ComplexitySimple,
			Timeframe:  TimeframeYearEnd,
			Summary:    "Bunch several years of giving into one year to clear the standard deduction.",
			Detail: "Contribute multiple years of planned donations to a donor advised fund in " +
				"one year, itemize that year, take the standard deduction in the others, and " +
				"grant to charities on your own schedule.",
			Steps: []string{
				"Model whether bunching beats the standard deduction",
				"Open a donor advised fund",
				"Contribute cash or appreciated stock",
			},
			EstimatedAnnualSavings: decimal.NewFromInt(3000),
			AuditRisk:              1,
		},
		{
			ID:         "donate-appreciated-stock",
			Title:      "Donate appreciated stock",
			Category:   CategoryCharitable,
			Complexity: ComplexitySimple,
			Timeframe:  TimeframeYearEnd,
			Summary:    "Donating stock directly deducts full value and skips capital gains tax.",
			Detail: "Transferring long-held appreciated shares to a charity deducts the full " +
				"market value with no capital gains realized, beating a sell-then-donate of " +
				"the same position.",
			Steps: []string{
				"Identify shares held over a year",
				"Transfer directly, never sell first",
				"Deduct full market value",
			},
			EstimatedAnnualSavings: decimal.NewFromInt(2000),
			AuditRisk:              1,
		},
		{
			ID:         "qcd",
			Title:      "Qualified charitable distribution",
			Category:   CategoryCharitable,
			Complexity: ComplexitySimple,
			Timeframe:  TimeframeYearEnd,
			Summary:    "After 70½, IRA money sent straight to charity satisfies the RMD untaxed.",
			Detail: "A direct IRA-to-charity transfer counts toward the required minimum " +
				"distribution without entering taxable income, keeping AGI down for every " +
				"AGI-tested item on the return.",
			Steps: []string{
				"Request the transfer from the IRA custodian",
				"Make the check payable to the charity",
				"Keep the acknowledgment letter",
			},
			EstimatedAnnualSavings: decimal.NewFromInt(5000),
			MinAge:                 70,
			AuditRisk:              1,
		},
		{
			ID:         "ev-credit",
			Title:      "Electric vehicle credit",
			Category:   CategoryCredits,
			Complexity: ComplexitySimple,
			Timeframe:  TimeframeImmediate,
			Summary:    "Qualifying EV purchases carry a credit of up to $7,500, income-limited.",
			Detail: "New EVs can qualify for up to $7,500 and used ones up to $4,000, " +
				"transferable to the dealer as an immediate discount. Income and price caps " +
				"apply.",
			Steps: []string{
				"Confirm the vehicle qualifies",
				"Verify the income limit",
				"Choose dealer transfer or claiming on the return",
			},
			EstimatedAnnualSavings: decimal.NewFromInt(7500),
			OneTimeSavings:         decimal.NewFromInt(7500),
			MaxIncome:              maxIncome(300000),
			AuditRisk:              1,
		},
		{
			ID:         "energy-credits",
			Title:      "Home energy efficiency credits",
			Category:   CategoryCredits,
			Complexity: ComplexitySimple,
			Timeframe:  TimeframeImmediate,
			Summary:    "30% credits for solar, heat pumps, insulation, and windows.",
			Detail: "The efficiency credit covers 30% of qualifying improvements up to annual " +
				"caps, and the clean energy credit covers 30% of solar and battery systems " +
				"with no cap.",
			Steps: []string{
				"Verify efficiency requirements",
				"Keep receipts",
				"File Form 5695",
			},
			EstimatedAnnualSavings: decimal.NewFromInt(3000),
			AuditRisk:              1,
		},
		{
			ID:         "relocate-no-tax-state",
			Title:      "Relocate to a no-income-tax state",
			Category:   CategoryStateOptimization,
			Complexity: ComplexityAdvanced,
			Timeframe:  TimeframeLongTerm,
			Summary:    "For high earners, state income tax can be the largest optional tax paid.",
			Detail: "Nine states levy no income tax. A genuine domicile change eliminates that " +
				"layer entirely, though high-tax states audit departures aggressively.",
			Steps: []string{
				"Weigh cost of living against the savings",
				"Establish true domicile",
				"Prepare for a departure audit from high-tax states",
			},
			EstimatedAnnualSavings: decimal.NewFromInt(30000),
			MinIncome:              decimal.NewFromInt(250000),
			AuditRisk:              4,
			LifeChanging:           true,
		},
		{
			ID:         "income-timing",
			Title:      "Strategic income and deduction timing",
			Category:   CategoryTiming,
			Complexity: ComplexityModerate,
			Timeframe:  TimeframeYearEnd,
			Summary:    "Shifting income and deductions across year boundaries smooths brackets.",
			Detail: "Flexible income such as bonuses and invoicing can be pulled forward or " +
				"deferred, and deductions like property tax prepaid, to keep both years in " +
				"lower brackets.",
			Steps: []string{
				"Project both years' income",
				"Identify flexible income and prepayable deductions",
				"Model the scenarios",
			},
			EstimatedAnnualSavings: decimal.NewFromInt(5000),
			AuditRisk:              1,
		},
	}
}

// =============================================================================
// RECOMMENDER
// =============================================================================

// StrategyRecommender filters and ranks the catalog for one filer.
type StrategyRecommender struct {
	catalog []Strategy
}

// NewStrategyRecommender loads the built-in catalog.
func NewStrategyRecommender() *StrategyRecommender {
	return &StrategyRecommender{catalog: strategyCatalog()}
}

// Applicable returns the catalog entries matching the filer, savings
// re-estimated at the marginal rate, highest combined savings first.
func (r *StrategyRecommender) Applicable(s Summary, sit Situation) []Strategy {
	selfEmployed := s.SelfEmploymentIncome.IsPositive()
	income := s.GrossIncome

	var out []Strategy
	for _, st := range r.catalog {
		if income.LessThan(st.MinIncome) {
			continue
		}
		if st.MaxIncome != nil && income.GreaterThan(*st.MaxIncome) {
			continue
		}
		// The side-business play is the one business strategy pitched
		// to people who do not have a business yet; solo-401k likewise
		// stays visible as the reason to formalize side income.
		if st.RequiresBusiness && !sit.HasBusiness && st.ID != "side-business" {
			continue
		}
		if st.RequiresRealEstate && !sit.HasRealEstate {
			continue
		}
		if st.RequiresSelfEmployment && !selfEmployed &&
			st.ID != "side-business" && st.ID != "solo-401k" {
			continue
		}
		if st.MinAge > 0 && s.Age < st.MinAge {
			continue
		}

		st.EstimatedAnnualSavings = estimateStrategySavings(st, s)
		out = append(out, st)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a := out[i].EstimatedAnnualSavings.Add(out[i].OneTimeSavings)
		b := out[j].EstimatedAnnualSavings.Add(out[j].OneTimeSavings)
		return a.GreaterThan(b)
	})
	return out
}

// estimateStrategySavings replaces the catalog's flat figure with a
// marginal-rate-scaled one where the mechanics allow it.
func estimateStrategySavings(st Strategy, s Summary) decimal.Decimal {
	rate := s.MarginalRate
	income := s.GrossIncome

	switch st.ID {
	case "side-business":
		return decimal.NewFromInt(10000).Mul(rate).Round(2)
	case "s-corp-election":
		if income.GreaterThan(decimal.NewFromInt(100000)) {
			est := income.Sub(decimal.NewFromInt(60000)).
				Mul(decimal.NewFromFloat(0.153)).
				Mul(decimal.NewFromFloat(0.5))
			cap := decimal.NewFromInt(15000)
			if est.GreaterThan(cap) {
				return cap
			}
			return est.Round(2)
		}
		return decimal.NewFromInt(5000)
	case "section-179-vehicle":
		return decimal.NewFromInt(28900).Mul(rate).Round(2)
	case "hire-your-kids":
		wages := decimal.NewFromInt(14600)
		return wages.Mul(rate).Add(wages.Mul(decimal.NewFromFloat(0.153))).Round(2)
	case "solo-401k":
		room := income.Mul(decimal.NewFromFloat(0.25)).Add(decimal.NewFromInt(23500))
		cap := decimal.NewFromInt(69000)
		if room.GreaterThan(cap) {
			room = cap
		}
		return room.Mul(rate).Round(2)
	case "relocate-no-tax-state":
		factor := decimal.NewFromFloat(0.05)
		if income.GreaterThan(decimal.NewFromInt(250000)) {
			factor = decimal.NewFromFloat(0.10)
		}
		return income.Mul(factor).Round(2)
	}
	return st.EstimatedAnnualSavings
}

// Report assembles the full strategy report for one filer.
func (r *StrategyRecommender) Report(s Summary, sit Situation) StrategyReport {
	all := r.Applicable(s, sit)

	total := decimal.Zero
	for i, st := range all {
		if i >= 10 {
			break
		}
		total = total.Add(st.EstimatedAnnualSavings)
	}

	report := StrategyReport{
		TotalStrategies:       len(all),
		TotalPotentialSavings: total.Round(2),
		All:                   all,
	}
	for _, st := range all {
		if len(report.Top) < 5 {
			report.Top = append(report.Top, st)
		}
		if st.LifeChanging && len(report.LifeChanging) < 5 {
			report.LifeChanging = append(report.LifeChanging, st)
		}
		if st.Timeframe == TimeframeImmediate && len(report.ImmediateActions) < 5 {
			report.ImmediateActions = append(report.ImmediateActions, st)
		}
	}
	return report
}
