/*
handlers_test.go - Unit tests for API handlers

Tests for:
- Profile CRUD and validation responses
- Liability, simulation, and optimal search endpoints
- Document ingest and the redaction boundary
- Recommendations and reference tables
*/
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/taxguard/tax-engine/store/sqlite"
)

func newTestHandler(t *testing.T) (*Handler, http.Handler) {
	t.Helper()
	store, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	h := NewHandler(store, zap.NewNop())
	return h, NewRouter(h)
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeAs[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("Failed to decode response: %v\n%s", err, rec.Body.String())
	}
	return v
}

func sampleRequest() ProfileRequest {
	return ProfileRequest{
		FilingStatus:      "single",
		PayFrequency:      "annually",
		PayPeriodsElapsed: 1,
		IncomeYTD:         80000,
		WithholdingYTD:    9000,
		Age:               35,
	}
}

func createProfile(t *testing.T, router http.Handler, req ProfileRequest) ProfileDTO {
	t.Helper()
	rec := doJSON(t, router, "POST", "/api/profiles", req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("Create returned %d: %s", rec.Code, rec.Body.String())
	}
	return decodeAs[ProfileDTO](t, rec)
}

func TestCreateAndGetProfile(t *testing.T) {
	_, router := newTestHandler(t)

	// GIVEN: A created profile
	dto := createProfile(t, router, sampleRequest())
	if dto.ID == "" {
		t.Fatal("Expected a generated profile ID")
	}

	// WHEN: Fetched back
	rec := doJSON(t, router, "GET", "/api/profiles/"+dto.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Get returned %d", rec.Code)
	}
	got := decodeAs[ProfileDTO](t, rec)

	// THEN: Fields round-trip
	if got.IncomeYTD != 80000 {
		t.Errorf("IncomeYTD = %v, want 80000", got.IncomeYTD)
	}
	if got.FilingStatus != "single" {
		t.Errorf("FilingStatus = %q", got.FilingStatus)
	}
}

func TestCreateProfileValidation(t *testing.T) {
	_, router := newTestHandler(t)

	req := sampleRequest()
	req.FilingStatus = "widowed"

	rec := doJSON(t, router, "POST", "/api/profiles", req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rec.Code)
	}
	errResp := decodeAs[ErrorResponse](t, rec)
	if !strings.Contains(errResp.Details, "filing_status") {
		t.Errorf("Details should name the field: %q", errResp.Details)
	}
}

func TestGetProfileNotFound(t *testing.T) {
	_, router := newTestHandler(t)

	rec := doJSON(t, router, "GET", "/api/profiles/nope", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", rec.Code)
	}
}

func TestUpdateProfile(t *testing.T) {
	_, router := newTestHandler(t)
	dto := createProfile(t, router, sampleRequest())

	req := sampleRequest()
	req.IncomeYTD = 95000
	rec := doJSON(t, router, "PUT", "/api/profiles/"+dto.ID, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("Update returned %d: %s", rec.Code, rec.Body.String())
	}

	got := decodeAs[ProfileDTO](t, rec)
	if got.IncomeYTD != 95000 {
		t.Errorf("IncomeYTD = %v, want 95000", got.IncomeYTD)
	}
	if got.ID != dto.ID {
		t.Errorf("ID changed on update: %q vs %q", got.ID, dto.ID)
	}
}

func TestDeleteProfile(t *testing.T) {
	_, router := newTestHandler(t)
	dto := createProfile(t, router, sampleRequest())

	rec := doJSON(t, router, "DELETE", "/api/profiles/"+dto.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Delete returned %d", rec.Code)
	}

	rec = doJSON(t, router, "DELETE", "/api/profiles/"+dto.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("Second delete should 404, got %d", rec.Code)
	}
}

func TestGetLiability(t *testing.T) {
	_, router := newTestHandler(t)
	dto := createProfile(t, router, sampleRequest())

	// WHEN: Computing the liability for a known profile
	rec := doJSON(t, router, "GET", fmt.Sprintf("/api/profiles/%s/liability", dto.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Liability returned %d: %s", rec.Code, rec.Body.String())
	}
	b := decodeAs[BreakdownDTO](t, rec)

	// THEN: 80,000 - 15,000 standard deduction walks to 9,214.00
	if b.TaxableIncome != 65000 {
		t.Errorf("TaxableIncome = %v, want 65000", b.TaxableIncome)
	}
	if b.TotalTax != 9214 {
		t.Errorf("TotalTax = %v, want 9214", b.TotalTax)
	}
	if b.RefundOrOwed != -214 {
		t.Errorf("RefundOrOwed = %v, want -214", b.RefundOrOwed)
	}
	if len(b.Segments) != 3 {
		t.Errorf("Segments = %d, want 3", len(b.Segments))
	}
}

func TestRunAndListSimulations(t *testing.T) {
	_, router := newTestHandler(t)
	dto := createProfile(t, router, sampleRequest())

	// GIVEN: One simulation run
	rec := doJSON(t, router, "POST", fmt.Sprintf("/api/profiles/%s/simulations", dto.ID),
		SimulationRequest{Name: "bump 401k", Extra401k: 5000})
	if rec.Code != http.StatusCreated {
		t.Fatalf("Simulate returned %d: %s", rec.Code, rec.Body.String())
	}
	sim := decodeAs[SimulationDTO](t, rec)

	if sim.Difference != 1100 {
		t.Errorf("Difference = %v, want 1100", sim.Difference)
	}
	if !sim.Beneficial {
		t.Error("Expected beneficial scenario")
	}
	if sim.ID == "" {
		t.Error("Expected persisted simulation ID")
	}

	// WHEN: Listing history
	rec = doJSON(t, router, "GET", fmt.Sprintf("/api/profiles/%s/simulations", dto.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("List returned %d", rec.Code)
	}
	history := decodeAs[[]SimulationDTO](t, rec)
	if len(history) != 1 {
		t.Fatalf("History length = %d, want 1", len(history))
	}
	if history[0].Scenario != "bump 401k" {
		t.Errorf("Scenario = %q", history[0].Scenario)
	}
}

func TestOptimalSearchEndpoint(t *testing.T) {
	_, router := newTestHandler(t)
	dto := createProfile(t, router, sampleRequest())

	rec := doJSON(t, router, "GET", fmt.Sprintf("/api/profiles/%s/optimal", dto.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Optimal returned %d", rec.Code)
	}
	results := decodeAs[[]SimulationDTO](t, rec)
	if len(results) == 0 {
		t.Fatal("Expected at least one candidate move")
	}
	for i := 1; i < len(results); i++ {
		if results[i-1].Difference < results[i].Difference {
			t.Errorf("Results out of order at %d", i)
		}
	}
}

func TestGetRecommendations(t *testing.T) {
	_, router := newTestHandler(t)
	dto := createProfile(t, router, sampleRequest())

	rec := doJSON(t, router, "GET", fmt.Sprintf("/api/profiles/%s/recommendations", dto.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Recommendations returned %d", rec.Code)
	}
	recs := decodeAs[[]RecommendationDTO](t, rec)
	if len(recs) == 0 {
		t.Fatal("Expected at least one recommendation")
	}
	for _, r := range recs {
		if r.Title == "" || r.Priority == "" {
			t.Errorf("Incomplete recommendation: %+v", r)
		}
	}
}

func TestGetStrategyReport(t *testing.T) {
	_, router := newTestHandler(t)
	dto := createProfile(t, router, sampleRequest())
	path := fmt.Sprintf("/api/profiles/%s/strategy", dto.ID)

	t.Run("without flags", func(t *testing.T) {
		rec := doJSON(t, router, "POST", path, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("Strategy report returned %d: %s", rec.Code, rec.Body.String())
		}
		report := decodeAs[StrategyReportDTO](t, rec)
		if report.TotalStrategies == 0 {
			t.Fatal("Expected at least one strategy")
		}
		if len(report.Top) == 0 || len(report.All) != report.TotalStrategies {
			t.Fatalf("Inconsistent report shape: %+v", report)
		}
		for _, s := range report.All {
			if s.ID == "hire-your-kids" {
				t.Error("Business strategy offered without a business")
			}
		}
	})

	t.Run("business flag unlocks business strategies", func(t *testing.T) {
		rec := doJSON(t, router, "POST", path, map[string]bool{"has_business": true})
		if rec.Code != http.StatusOK {
			t.Fatalf("Strategy report returned %d", rec.Code)
		}
		report := decodeAs[StrategyReportDTO](t, rec)
		found := false
		for _, s := range report.All {
			if s.ID == "hire-your-kids" {
				found = true
			}
		}
		if !found {
			t.Error("Expected business strategies once has_business is set")
		}
	})

	t.Run("missing profile", func(t *testing.T) {
		rec := doJSON(t, router, "POST", "/api/profiles/nope/strategy", nil)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("Expected 404, got %d", rec.Code)
		}
	})
}

func TestIngestDocument(t *testing.T) {
	_, router := newTestHandler(t)
	dto := createProfile(t, router, sampleRequest())

	// GIVEN: A pay stub with PII and labeled figures
	text := `Employee: Jane Smith
SSN: 123-45-6789
Pay frequency: biweekly
Gross Pay YTD: $42,500.00
Federal Withholding YTD: $5,100.00`

	rec := doJSON(t, router, "POST", fmt.Sprintf("/api/profiles/%s/documents", dto.ID),
		IngestRequest{Text: text})
	if rec.Code != http.StatusOK {
		t.Fatalf("Ingest returned %d: %s", rec.Code, rec.Body.String())
	}

	// THEN: The raw SSN appears nowhere in the response
	if strings.Contains(rec.Body.String(), "123-45-6789") {
		t.Fatal("Raw SSN leaked into the response")
	}
	resp := decodeAs[IngestResponse](t, rec)

	if resp.Redaction.Count == 0 {
		t.Error("Expected redactions to be reported")
	}
	if !strings.Contains(resp.Redaction.RedactedText, "[SSN_1]") {
		t.Errorf("Redacted text missing SSN token: %q", resp.Redaction.RedactedText)
	}
	if resp.Profile.IncomeYTD != 42500 {
		t.Errorf("Merged IncomeYTD = %v, want 42500", resp.Profile.IncomeYTD)
	}
	if resp.Profile.PayFrequency != "biweekly" {
		t.Errorf("Merged PayFrequency = %q", resp.Profile.PayFrequency)
	}

	// AND: The merge persisted
	rec = doJSON(t, router, "GET", "/api/profiles/"+dto.ID, nil)
	got := decodeAs[ProfileDTO](t, rec)
	if got.IncomeYTD != 42500 {
		t.Errorf("Persisted IncomeYTD = %v, want 42500", got.IncomeYTD)
	}
}

func TestIngestDocumentNothingExtractable(t *testing.T) {
	_, router := newTestHandler(t)
	dto := createProfile(t, router, sampleRequest())

	rec := doJSON(t, router, "POST", fmt.Sprintf("/api/profiles/%s/documents", dto.ID),
		IngestRequest{Text: "a note with no figures at all"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("Expected 422, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestIngestDocumentEmptyText(t *testing.T) {
	_, router := newTestHandler(t)
	dto := createProfile(t, router, sampleRequest())

	rec := doJSON(t, router, "POST", fmt.Sprintf("/api/profiles/%s/documents", dto.ID),
		IngestRequest{Text: ""})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rec.Code)
	}
}

func TestRedactDocumentStateless(t *testing.T) {
	_, router := newTestHandler(t)

	rec := doJSON(t, router, "POST", "/api/documents/redact",
		IngestRequest{Text: "reach me at jane@example.com or 555-123-4567"})
	if rec.Code != http.StatusOK {
		t.Fatalf("Redact returned %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "jane@example.com") {
		t.Fatal("Raw email leaked into the response")
	}
	resp := decodeAs[RedactionDTO](t, rec)
	if resp.Count != 2 {
		t.Errorf("Count = %d, want 2", resp.Count)
	}
	if resp.TokenMap["[EMAIL_1]"] != "EMAIL" {
		t.Errorf("TokenMap = %v", resp.TokenMap)
	}
}

func TestGetReference(t *testing.T) {
	_, router := newTestHandler(t)

	rec := doJSON(t, router, "GET", "/api/reference", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Reference returned %d", rec.Code)
	}
	ref := decodeAs[ReferenceDTO](t, rec)

	if ref.Year != 2025 {
		t.Errorf("Year = %d", ref.Year)
	}
	if len(ref.Brackets["single"]) != 7 {
		t.Errorf("Single brackets = %d, want 7", len(ref.Brackets["single"]))
	}
	if ref.StandardDeductions["married_joint"] != 30000 {
		t.Errorf("MFJ standard deduction = %v", ref.StandardDeductions["married_joint"])
	}
	if ref.PayPeriods["biweekly"] != 26 {
		t.Errorf("Biweekly periods = %v", ref.PayPeriods["biweekly"])
	}
}

func TestHealthz(t *testing.T) {
	_, router := newTestHandler(t)

	rec := doJSON(t, router, "GET", "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz returned %d", rec.Code)
	}
}
