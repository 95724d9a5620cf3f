/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the database with
	realistic profiles for testing and demos. Each scenario creates a
	profile that demonstrates a specific part of the engine.

AVAILABLE SCENARIOS:

	w2-employee:      Mid-year W-2 employee, standard deduction
	freelancer:       Pure 1099 income with SE tax and quarterly payments
	family-household: Married couple, two kids, itemized deductions
	high-earner:      Top brackets, maxed 401(k), CTC fully phased out

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Create the scenario's profile(s)
 3. Run a first simulation so history is not empty

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "freelancer"}

NOTE:

	Scenarios reset the database. Only use in development/demo
	environments.

SEE ALSO:
  - handlers.go: The Handler these loaders hang off
  - taxcalc/profile.go: The profile model being populated
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/taxguard/tax-engine/refdata"
	"github.com/taxguard/tax-engine/store/sqlite"
	"github.com/taxguard/tax-engine/taxcalc"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

// ScenarioDTO describes one loadable demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest selects a scenario.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

var scenarios = []ScenarioDTO{
	{
		ID:          "w2-employee",
		Name:        "W-2 Employee",
		Description: "Mid-year biweekly employee with withholding and 401(k) headroom",
	},
	{
		ID:          "freelancer",
		Name:        "Freelancer",
		Description: "Pure 1099 income with self-employment tax and quarterly payments",
	},
	{
		ID:          "family-household",
		Name:        "Family Household",
		Description: "Married filing jointly, two children, itemized deductions",
	},
	{
		ID:          "high-earner",
		Name:        "High Earner",
		Description: "Top brackets with maxed 401(k) and a phased-out child tax credit",
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// LoadScenario resets the database and loads one scenario.
// POST /api/scenarios/load
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ctx := r.Context()
	if err := h.Store.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}

	var profile *taxcalc.FinancialProfile
	switch req.ScenarioID {
	case "w2-employee":
		profile = w2EmployeeProfile()
	case "freelancer":
		profile = freelancerProfile()
	case "family-household":
		profile = familyHouseholdProfile()
	case "high-earner":
		profile = highEarnerProfile()
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Unknown scenario: %s", req.ScenarioID), nil)
		return
	}

	if err := h.loadScenarioProfile(ctx, profile); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load scenario", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"scenario_id": req.ScenarioID,
		"profile_id":  profile.ID,
	})
}

// ResetDatabase wipes all data.
// POST /api/scenarios/reset
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// loadScenarioProfile saves the profile and seeds one simulation so
// the history view has something to show.
func (h *Handler) loadScenarioProfile(ctx context.Context, p *taxcalc.FinancialProfile) error {
	if err := h.Store.SaveProfile(ctx, p); err != nil {
		return err
	}

	res, err := h.Sim.Simulate(p, taxcalc.Adjustment{
		Name:      "Add $5,000 to 401(k)",
		Extra401k: decimal.NewFromInt(5000),
	})
	if err != nil {
		return err
	}
	return h.Store.SaveSimulation(ctx, sqlite.SimulationRecord{
		ID:         uuid.NewString(),
		ProfileID:  p.ID,
		Scenario:   res.Scenario,
		Difference: res.Difference,
		Beneficial: res.Beneficial,
		Result:     res,
		CreatedAt:  time.Now().UTC(),
	})
}

// =============================================================================
// SCENARIO PROFILES
// =============================================================================

func w2EmployeeProfile() *taxcalc.FinancialProfile {
	return &taxcalc.FinancialProfile{
		ID:                  uuid.NewString(),
		FilingStatus:        refdata.Single,
		PayFrequency:        refdata.Biweekly,
		PayPeriodsElapsed:   13,
		IncomeYTD:           decimal.NewFromInt(42500),
		WithholdingYTD:      decimal.NewFromInt(5100),
		Contribution401kYTD: decimal.NewFromInt(3200),
		Age:                 31,
	}
}

func freelancerProfile() *taxcalc.FinancialProfile {
	return &taxcalc.FinancialProfile{
		ID:                   uuid.NewString(),
		FilingStatus:         refdata.Single,
		PayFrequency:         refdata.Quarterly,
		PayPeriodsElapsed:    2,
		SelfEmploymentYTD:    decimal.NewFromInt(48000),
		EstimatedPaymentsYTD: decimal.NewFromInt(9000),
		HSACoverage:          refdata.HSAIndividual,
		Age:                  38,
	}
}

func familyHouseholdProfile() *taxcalc.FinancialProfile {
	return &taxcalc.FinancialProfile{
		ID:                  uuid.NewString(),
		FilingStatus:        refdata.MarriedJoint,
		PayFrequency:        refdata.Semimonthly,
		PayPeriodsElapsed:   16,
		IncomeYTD:           decimal.NewFromInt(98000),
		WithholdingYTD:      decimal.NewFromInt(11200),
		Contribution401kYTD: decimal.NewFromInt(8000),
		ContributionHSAYTD:  decimal.NewFromInt(2400),
		HSACoverage:         refdata.HSAFamily,
		HasWorkplacePlan:    true,
		Age:                 41,
		DependentsUnder17:   2,
		Itemized: &taxcalc.ItemizedDeductions{
			StateLocalTaxes:  decimal.NewFromInt(14000),
			MortgageInterest: decimal.NewFromInt(16500),
			Charitable:       decimal.NewFromInt(3000),
		},
	}
}

func highEarnerProfile() *taxcalc.FinancialProfile {
	return &taxcalc.FinancialProfile{
		ID:                  uuid.NewString(),
		FilingStatus:        refdata.MarriedJoint,
		PayFrequency:        refdata.Monthly,
		PayPeriodsElapsed:   8,
		IncomeYTD:           decimal.NewFromInt(320000),
		WithholdingYTD:      decimal.NewFromInt(88000),
		Contribution401kYTD: decimal.NewFromInt(23500),
		HasWorkplacePlan:    true,
		Age:                 47,
		DependentsUnder17:   1,
	}
}
