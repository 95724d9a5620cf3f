/*
handlers.go - HTTP API handlers for the tax estimation service

PURPOSE:
  Exposes the estimation engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Profiles:
    GET    /api/profiles                      List all profiles
    POST   /api/profiles                      Create profile
    GET    /api/profiles/{id}                 Get profile
    PUT    /api/profiles/{id}                 Update profile
    DELETE /api/profiles/{id}                 Delete profile

  Estimation:
    GET    /api/profiles/{id}/liability       Full liability breakdown
    POST   /api/profiles/{id}/simulations     Run a what-if scenario
    GET    /api/profiles/{id}/simulations     Simulation history
    GET    /api/profiles/{id}/optimal         Ranked contribution moves
    GET    /api/profiles/{id}/recommendations Advisor suggestions
    POST   /api/profiles/{id}/strategy        Advanced strategy report

  Documents:
    POST   /api/profiles/{id}/documents       Redact, extract, merge
    POST   /api/documents/redact              Stateless redaction preview

  Reference:
    GET    /api/reference                     Statutory tables

REQUEST FLOW:
  1. Parse HTTP request
  2. Call domain logic (redactor, extractor, calculator, advisor)
  3. Serialize response
  4. Handle errors

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Profile not found
  - 422: Document yielded no extractable fields
  - 502: External service failure
  - 500: Internal errors

PII NOTE:
  Raw document text exists only inside IngestDocument and
  RedactDocument, between decode and the redactor call. It is never
  logged, persisted, or echoed in any response.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/taxguard/tax-engine/advisor"
	"github.com/taxguard/tax-engine/extract"
	"github.com/taxguard/tax-engine/redact"
	"github.com/taxguard/tax-engine/refdata"
	"github.com/taxguard/tax-engine/store/sqlite"
	"github.com/taxguard/tax-engine/taxcalc"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store      *sqlite.Store
	Calc       *taxcalc.Calculator
	Sim        *taxcalc.Simulator
	Redactor   *redact.Redactor
	Extractor  extract.Extractor
	Advisor    advisor.Advisor
	Strategies *advisor.StrategyRecommender
	Log        *zap.Logger
}

// NewHandler wires a handler with rule-based AI stand-ins. The caller
// swaps Extractor and Advisor for the AI-backed versions when a key is
// configured.
func NewHandler(store *sqlite.Store, log *zap.Logger) *Handler {
	calc := taxcalc.NewCalculator()
	return &Handler{
		Store:      store,
		Calc:       calc,
		Sim:        taxcalc.NewSimulator(calc),
		Redactor:   redact.New(redact.NewDictionaryRecognizer()),
		Extractor:  extract.NewRuleBased(),
		Advisor:    advisor.NewRuleBased(),
		Strategies: advisor.NewStrategyRecommender(),
		Log:        log,
	}
}

// =============================================================================
// PROFILE ENDPOINTS
// =============================================================================

// ListProfiles returns all profiles.
// GET /api/profiles
func (h *Handler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.Store.ListProfiles(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list profiles", err)
		return
	}

	dtos := make([]ProfileDTO, 0, len(profiles))
	for _, p := range profiles {
		dtos = append(dtos, toProfileDTO(p))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateProfile creates a new profile.
// POST /api/profiles
func (h *Handler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	var req ProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	p := req.toDomain(uuid.NewString())
	if err := p.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid profile", err)
		return
	}

	if err := h.Store.SaveProfile(r.Context(), p); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save profile", err)
		return
	}
	writeJSON(w, http.StatusCreated, toProfileDTO(p))
}

// GetProfile returns one profile.
// GET /api/profiles/{id}
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	p, ok := h.loadProfile(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toProfileDTO(p))
}

// UpdateProfile replaces a profile.
// PUT /api/profiles/{id}
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.loadProfile(w, r)
	if !ok {
		return
	}

	var req ProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	p := req.toDomain(existing.ID)
	if err := p.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid profile", err)
		return
	}

	if err := h.Store.SaveProfile(r.Context(), p); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save profile", err)
		return
	}
	writeJSON(w, http.StatusOK, toProfileDTO(p))
}

// DeleteProfile removes a profile and its simulation history.
// DELETE /api/profiles/{id}
func (h *Handler) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	deleted, err := h.Store.DeleteProfile(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete profile", err)
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "Profile not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": id})
}

// =============================================================================
// ESTIMATION ENDPOINTS
// =============================================================================

// GetLiability computes the full breakdown for a profile.
// GET /api/profiles/{id}/liability
func (h *Handler) GetLiability(w http.ResponseWriter, r *http.Request) {
	p, ok := h.loadProfile(w, r)
	if !ok {
		return
	}

	b, err := h.Calc.Calculate(p)
	if err != nil {
		writeDomainError(w, "Failed to compute liability", err)
		return
	}
	writeJSON(w, http.StatusOK, toBreakdownDTO(b))
}

// RunSimulation runs one what-if scenario and persists the result.
// POST /api/profiles/{id}/simulations
func (h *Handler) RunSimulation(w http.ResponseWriter, r *http.Request) {
	p, ok := h.loadProfile(w, r)
	if !ok {
		return
	}

	var req SimulationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	res, err := h.Sim.Simulate(p, req.toDomain())
	if err != nil {
		writeDomainError(w, "Failed to simulate", err)
		return
	}

	rec := sqlite.SimulationRecord{
		ID:         uuid.NewString(),
		ProfileID:  p.ID,
		Scenario:   res.Scenario,
		Difference: res.Difference,
		Beneficial: res.Beneficial,
		Result:     res,
		CreatedAt:  time.Now().UTC(),
	}
	if err := h.Store.SaveSimulation(r.Context(), rec); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save simulation", err)
		return
	}

	dto := toSimulationDTO(res)
	dto.ID = rec.ID
	dto.CreatedAt = rec.CreatedAt.Format(time.RFC3339)
	writeJSON(w, http.StatusCreated, dto)
}

// ListSimulations returns a profile's simulation history.
// GET /api/profiles/{id}/simulations
func (h *Handler) ListSimulations(w http.ResponseWriter, r *http.Request) {
	p, ok := h.loadProfile(w, r)
	if !ok {
		return
	}

	records, err := h.Store.ListSimulations(r.Context(), p.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list simulations", err)
		return
	}

	dtos := make([]SimulationDTO, 0, len(records))
	for _, rec := range records {
		dto := toSimulationDTO(rec.Result)
		dto.ID = rec.ID
		dto.CreatedAt = rec.CreatedAt.Format(time.RFC3339)
		dtos = append(dtos, dto)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// OptimalSearch returns contribution moves ranked by savings.
// GET /api/profiles/{id}/optimal
func (h *Handler) OptimalSearch(w http.ResponseWriter, r *http.Request) {
	p, ok := h.loadProfile(w, r)
	if !ok {
		return
	}

	results, err := h.Sim.OptimalSearch(p)
	if err != nil {
		writeDomainError(w, "Failed to search scenarios", err)
		return
	}

	dtos := make([]SimulationDTO, 0, len(results))
	for _, res := range results {
		dtos = append(dtos, toSimulationDTO(res))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetRecommendations returns advisor suggestions for a profile.
// GET /api/profiles/{id}/recommendations
func (h *Handler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	p, ok := h.loadProfile(w, r)
	if !ok {
		return
	}

	b, err := h.Calc.Calculate(p)
	if err != nil {
		writeDomainError(w, "Failed to compute liability", err)
		return
	}

	recs, err := h.Advisor.Recommend(r.Context(), buildSummary(p, b))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to build recommendations", err)
		return
	}
	writeJSON(w, http.StatusOK, toRecommendationDTOs(recs))
}

// buildSummary digests a profile and its breakdown into the numeric
// summary the advisor backends work from.
func buildSummary(p *taxcalc.FinancialProfile, b *taxcalc.Breakdown) advisor.Summary {
	return advisor.Summary{
		FilingStatus:         p.FilingStatus,
		GrossIncome:          b.GrossIncome,
		AGI:                  b.AGI,
		TaxableIncome:        b.TaxableIncome,
		TotalTax:             b.TotalTax,
		RefundOrOwed:         b.RefundOrOwed,
		MarginalRate:         b.MarginalRate,
		EffectiveRate:        b.EffectiveRate,
		SelfEmploymentIncome: b.SelfEmploymentNet,
		HasWorkplacePlan:     p.HasWorkplacePlan,
		Age:                  p.Age,
		Dependents:           p.DependentsUnder17,
		Headroom401k:         taxcalc.Headroom401k(p),
		HeadroomHSA:          taxcalc.HeadroomHSA(p),
		HeadroomIRA:          taxcalc.HeadroomIRA(p),
	}
}

// GetStrategyReport returns the advanced strategy report for a
// profile. The optional body carries self-reported flags the profile
// does not hold.
// POST /api/profiles/{id}/strategy
func (h *Handler) GetStrategyReport(w http.ResponseWriter, r *http.Request) {
	p, ok := h.loadProfile(w, r)
	if !ok {
		return
	}

	var sit advisor.Situation
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&sit); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body", err)
			return
		}
	}

	b, err := h.Calc.Calculate(p)
	if err != nil {
		writeDomainError(w, "Failed to compute liability", err)
		return
	}

	report := h.Strategies.Report(buildSummary(p, b), sit)
	writeJSON(w, http.StatusOK, toStrategyReportDTO(report))
}

// =============================================================================
// DOCUMENT ENDPOINTS
// =============================================================================

// IngestDocument redacts pasted text, extracts fields from the
// redacted rendition, merges them into the profile, and saves.
// POST /api/profiles/{id}/documents
func (h *Handler) IngestDocument(w http.ResponseWriter, r *http.Request) {
	p, ok := h.loadProfile(w, r)
	if !ok {
		return
	}

	var req IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "Document text is required", nil)
		return
	}

	redaction := h.Redactor.Redact(redact.RawText(req.Text))
	h.Log.Info("document redacted",
		zap.String("profile_id", p.ID),
		zap.Int("redactions", redaction.Count),
		zap.Int("pii_types", len(redaction.PIITypes)))

	fields, err := h.Extractor.Extract(r.Context(), redaction.Redacted)
	if err != nil {
		writeDomainError(w, "Failed to extract fields", err)
		return
	}

	mergeFields(p, fields)
	if err := p.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "Extracted fields produce an invalid profile", err)
		return
	}
	if err := h.Store.SaveProfile(r.Context(), p); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save profile", err)
		return
	}

	writeJSON(w, http.StatusOK, IngestResponse{
		Redaction: toRedactionDTO(redaction),
		Extracted: toExtractedDTO(fields),
		Profile:   toProfileDTO(p),
	})
}

// RedactDocument runs redaction only, without touching any profile.
// POST /api/documents/redact
func (h *Handler) RedactDocument(w http.ResponseWriter, r *http.Request) {
	var req IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "Document text is required", nil)
		return
	}
	writeJSON(w, http.StatusOK, toRedactionDTO(h.Redactor.Redact(redact.RawText(req.Text))))
}

// mergeFields applies present extracted values over the profile.
func mergeFields(p *taxcalc.FinancialProfile, f *extract.Fields) {
	if f.FilingStatus != nil {
		p.FilingStatus = *f.FilingStatus
	}
	if f.PayFrequency != nil {
		p.PayFrequency = *f.PayFrequency
		if periods := refdata.PayPeriodsPerYear[p.PayFrequency]; p.PayPeriodsElapsed > periods {
			p.PayPeriodsElapsed = periods
		}
	}
	if f.IncomeYTD != nil {
		p.IncomeYTD = *f.IncomeYTD
	}
	if f.WithholdingYTD != nil {
		p.WithholdingYTD = *f.WithholdingYTD
	}
	if f.Contribution401kYTD != nil {
		p.Contribution401kYTD = *f.Contribution401kYTD
	}
	if f.ContributionHSAYTD != nil {
		p.ContributionHSAYTD = *f.ContributionHSAYTD
	}
	if f.SelfEmploymentYTD != nil {
		p.SelfEmploymentYTD = *f.SelfEmploymentYTD
	}
	if f.EstimatedPaymentsYTD != nil {
		p.EstimatedPaymentsYTD = *f.EstimatedPaymentsYTD
	}
}

// =============================================================================
// REFERENCE ENDPOINT
// =============================================================================

// GetReference returns the statutory tables for client display.
// GET /api/reference
func (h *Handler) GetReference(w http.ResponseWriter, r *http.Request) {
	ref := ReferenceDTO{
		Year:               h.Calc.Year,
		Brackets:           map[string][]SegmentBoundsDTO{},
		StandardDeductions: map[string]float64{},
		Limits: map[string]float64{
			"401k":           refdata.Limits2025.K401Employee.InexactFloat64(),
			"ira":            refdata.Limits2025.IRATraditional.InexactFloat64(),
			"hsa_individual": refdata.Limits2025.HSAIndividual.InexactFloat64(),
			"hsa_family":     refdata.Limits2025.HSAFamily.InexactFloat64(),
		},
		PayPeriods: map[string]int{},
	}
	for _, fs := range refdata.FilingStatuses {
		var rows []SegmentBoundsDTO
		for _, b := range refdata.BracketTables2025[fs] {
			rows = append(rows, SegmentBoundsDTO{
				Lower: b.Lower.InexactFloat64(),
				Rate:  b.Rate.InexactFloat64(),
			})
		}
		ref.Brackets[string(fs)] = rows
		ref.StandardDeductions[string(fs)] = refdata.StandardDeduction2025[fs].InexactFloat64()
	}
	for freq, n := range refdata.PayPeriodsPerYear {
		ref.PayPeriods[string(freq)] = n
	}
	writeJSON(w, http.StatusOK, ref)
}

// =============================================================================
// HELPERS
// =============================================================================

// loadProfile fetches the {id} profile or writes the error response.
func (h *Handler) loadProfile(w http.ResponseWriter, r *http.Request) (*taxcalc.FinancialProfile, bool) {
	id := chi.URLParam(r, "id")
	p, err := h.Store.GetProfile(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get profile", err)
		return nil, false
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "Profile not found", nil)
		return nil, false
	}
	return p, true
}

// writeDomainError maps domain error kinds to HTTP statuses.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case errors.Is(err, taxcalc.ErrValidation):
		writeError(w, http.StatusBadRequest, message, err)
	case errors.Is(err, extract.ErrNoExtraction):
		writeError(w, http.StatusUnprocessableEntity, message, err)
	case errors.Is(err, extract.ErrExternalService):
		writeError(w, http.StatusBadGateway, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
