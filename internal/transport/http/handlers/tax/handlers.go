package taxhandler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"takehome/internal/domain/auth"
	"takehome/internal/domain/tax"
	"takehome/internal/platform/metrics"
	"takehome/internal/platform/taxdata"
	"takehome/internal/transport/http/api"
	"takehome/internal/transport/http/middleware"
	"takehome/internal/transport/http/shared"
)

type Handler struct {
	Service *tax.Service
	Store   tax.StoreAPI
	DataDir string
	Metrics *metrics.Collector
	Logger  *zap.Logger

	// RentLimit wraps the routes that reach the rent provider. Nil means unlimited.
	RentLimit func(http.Handler) http.Handler
}

func NewHandler(service *tax.Service, store tax.StoreAPI, dataDir string, logger *zap.Logger, collector *metrics.Collector) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{Service: service, Store: store, DataDir: dataDir, Metrics: collector, Logger: logger}
}

type incomePayload struct {
	Income *float64 `json:"income"`
}

type jurisdictionsResponse struct {
	Year          int                `json:"year"`
	Jurisdictions []tax.Jurisdiction `json:"jurisdictions"`
}

type bracketsResponse struct {
	Year         int              `json:"year"`
	Jurisdiction tax.Jurisdiction `json:"jurisdiction"`
	Brackets     []tax.Bracket    `json:"brackets"`
}

type rentResponse struct {
	State    tax.Jurisdiction `json:"state"`
	City     string           `json:"city"`
	Location string           `json:"location,omitempty"`
	AvgRent  map[string]any   `json:"avgRentForBedrooms"`
}

type importResponse struct {
	Year          int                `json:"year"`
	Jurisdictions []tax.Jurisdiction `json:"jurisdictions"`
	Reloaded      bool               `json:"reloaded"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	limit := h.RentLimit
	if limit == nil {
		limit = func(next http.Handler) http.Handler { return next }
	}

	r.Route("/tax", func(r chi.Router) {
		r.Get("/jurisdictions", h.handleJurisdictions)
		r.Get("/brackets/federal", h.handleFederalBrackets)
		r.Get("/brackets/state", h.handleStateBrackets)
		r.Post("/federal", h.handleFederal)
		r.Post("/state", h.handleState)
		r.Post("/combined", h.handleCombined)
		r.With(limit).Post("/monthly-takehome", h.handleMonthlyTakehome)
		r.Get("/summary.pdf", h.handleSummaryPDF)
	})
	r.With(limit).Get("/rent", h.handleRent)
	r.With(middleware.RequireRole(auth.RoleAdmin)).Post("/admin/tax-data/import", h.handleImport)
}

func (h *Handler) handleJurisdictions(w http.ResponseWriter, r *http.Request) {
	v := shared.NewValidator()
	year := v.OptionalYear("year", r.URL.Query().Get("year"))
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}
	year = h.resolveYear(year)
	api.Success(w, jurisdictionsResponse{Year: year, Jurisdictions: h.Service.Jurisdictions(year)}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleFederalBrackets(w http.ResponseWriter, r *http.Request) {
	h.writeBrackets(w, r, tax.Federal)
}

func (h *Handler) handleStateBrackets(w http.ResponseWriter, r *http.Request) {
	if !h.requireQuery(w, r, "state") {
		return
	}
	state, err := tax.ParseState(r.URL.Query().Get("state"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeBrackets(w, r, state)
}

func (h *Handler) writeBrackets(w http.ResponseWriter, r *http.Request, j tax.Jurisdiction) {
	v := shared.NewValidator()
	year := v.OptionalYear("year", r.URL.Query().Get("year"))
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}
	brackets, err := h.Service.Brackets(year, j)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	api.Success(w, bracketsResponse{Year: h.resolveYear(year), Jurisdiction: j, Brackets: brackets}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleFederal(w http.ResponseWriter, r *http.Request) {
	income, year, ok := h.decodeIncome(w, r)
	if !ok {
		return
	}
	result, err := h.Service.Federal(income, year)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	api.Success(w, result, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleState(w http.ResponseWriter, r *http.Request) {
	if !h.requireQuery(w, r, "state") {
		return
	}
	income, year, ok := h.decodeIncome(w, r)
	if !ok {
		return
	}
	result, err := h.Service.State(income, r.URL.Query().Get("state"), year)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	api.Success(w, result, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCombined(w http.ResponseWriter, r *http.Request) {
	if !h.requireQuery(w, r, "state") {
		return
	}
	income, year, ok := h.decodeIncome(w, r)
	if !ok {
		return
	}
	result, err := h.Service.Combined(income, r.URL.Query().Get("state"), year)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	api.Success(w, result, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleRent(w http.ResponseWriter, r *http.Request) {
	if !h.requireQuery(w, r, "state", "city") {
		return
	}
	query := r.URL.Query()
	data, err := h.Service.FetchRent(r.Context(), query.Get("state"), query.Get("city"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	state, _ := tax.ParseState(query.Get("state"))
	avg := make(map[string]any, len(tax.AllBedrooms))
	for _, b := range tax.AllBedrooms {
		if value, ok := data.AvgRent[b]; ok {
			avg[string(b)] = value
		} else {
			avg[string(b)] = nil
		}
	}
	api.Success(w, rentResponse{State: state, City: query.Get("city"), Location: data.Location, AvgRent: avg}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleMonthlyTakehome(w http.ResponseWriter, r *http.Request) {
	if !h.requireQuery(w, r, "state", "city") {
		return
	}
	query := r.URL.Query()
	income, year, ok := h.decodeIncome(w, r)
	if !ok {
		return
	}
	v := shared.NewValidator()
	occupants, _ := v.Int("numOccupants", query.Get("numOccupants"))
	v.Required("numBedrooms", query.Get("numBedrooms"), "is required")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	result, err := h.Service.ComputeMonthlyTakehome(r.Context(), tax.MonthlyRequest{
		GrossIncome: income,
		State:       query.Get("state"),
		City:        query.Get("city"),
		Bedrooms:    query.Get("numBedrooms"),
		Occupants:   occupants,
		Year:        year,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	api.Success(w, result, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleImport(w http.ResponseWriter, r *http.Request) {
	v := shared.NewValidator()
	year := v.OptionalYear("year", r.URL.Query().Get("year"))
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}
	served := h.Service.Registry().DefaultYear()
	if year == 0 {
		year = served
	}

	imported, err := taxdata.ImportDir(r.Context(), h.Store, h.DataDir, year)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	reloaded := false
	if year == served {
		if err := h.Service.Reload(r.Context(), h.Store, year); err != nil {
			h.writeError(w, r, err)
			return
		}
		reloaded = true
	}
	principal, _ := middleware.GetPrincipal(r.Context())
	h.Logger.Info("tax data imported",
		zap.Int("year", year),
		zap.Int("jurisdictions", len(imported)),
		zap.Bool("reloaded", reloaded),
		zap.String("subject", principal.Subject),
	)
	api.Success(w, importResponse{Year: year, Jurisdictions: imported, Reloaded: reloaded}, middleware.GetRequestID(r.Context()))
}

// decodeIncome reads the {income} body and the optional year query parameter.
func (h *Handler) decodeIncome(w http.ResponseWriter, r *http.Request) (float64, int, bool) {
	requestID := middleware.GetRequestID(r.Context())
	var payload incomePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			api.Fail(w, http.StatusRequestEntityTooLarge, "payload_too_large", "request payload too large", requestID)
			return 0, 0, false
		}
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return 0, 0, false
	}
	v := shared.NewValidator()
	if payload.Income == nil {
		v.Add("income", "is required")
	}
	year := v.OptionalYear("year", r.URL.Query().Get("year"))
	if v.Reject(w, requestID) {
		return 0, 0, false
	}
	return *payload.Income, year, true
}

func (h *Handler) requireQuery(w http.ResponseWriter, r *http.Request, fields ...string) bool {
	v := shared.NewValidator()
	for _, field := range fields {
		v.Required(field, r.URL.Query().Get(field), "is required")
	}
	return !v.Reject(w, middleware.GetRequestID(r.Context()))
}

func (h *Handler) resolveYear(year int) int {
	if year == 0 {
		return h.Service.Registry().DefaultYear()
	}
	return year
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := middleware.GetRequestID(r.Context())
	status, code := classify(err)
	message := err.Error()
	if status >= http.StatusInternalServerError && status != http.StatusBadGateway {
		h.Logger.Error("request failed", zap.String("path", r.URL.Path), zap.String("requestId", requestID), zap.Error(err))
		message = "internal server error"
		if code == "configuration_error" {
			message = "tax tables are misconfigured"
		}
	}
	if code == "rent_data_unavailable" && h.Metrics != nil {
		h.Metrics.RecordRentFailure()
	}
	api.Fail(w, status, code, message, requestID)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, tax.ErrRentUnavailable):
		return http.StatusBadGateway, "rent_data_unavailable"
	case errors.Is(err, tax.ErrInvalidArgument):
		return http.StatusBadRequest, "invalid_argument"
	case errors.Is(err, tax.ErrUnknownJurisdiction):
		return http.StatusNotFound, "unknown_jurisdiction"
	case errors.Is(err, tax.ErrDataNotFound):
		return http.StatusNotFound, "data_not_found"
	case errors.Is(err, tax.ErrNoBracket):
		return http.StatusUnprocessableEntity, "no_applicable_bracket"
	case errors.Is(err, tax.ErrMissingDeduction), errors.Is(err, tax.ErrInvalidTable):
		return http.StatusInternalServerError, "configuration_error"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
