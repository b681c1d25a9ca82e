package taxhandler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap/zaptest"

	"takehome/internal/domain/auth"
	"takehome/internal/domain/tax"
	"takehome/internal/mocks"
	"takehome/internal/platform/metrics"
	taxhandler "takehome/internal/transport/http/handlers/tax"
	"takehome/internal/transport/http/middleware"
)

const testSecret = "handler-secret"

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type fixture struct {
	router    http.Handler
	service   *tax.Service
	provider  *mocks.MockRentProvider
	collector *metrics.Collector
	store     *tax.SQLiteStore
}

func ptr(v float64) *float64 { return &v }

func testRegistry(t *testing.T) *tax.Registry {
	t.Helper()
	federal, err := tax.NewTables(tax.Federal, 2023, []tax.Bracket{
		{Rate: 10, IncomeMin: 0, IncomeMax: ptr(11000), TotalTaxPriorBrackets: 0},
		{Rate: 12, IncomeMin: 11000, IncomeMax: ptr(44725), TotalTaxPriorBrackets: 1100},
		{Rate: 22, IncomeMin: 44725, TotalTaxPriorBrackets: 5147},
	}, map[tax.FilingStatus]float64{tax.FilingStatusSingle: 13850})
	require.NoError(t, err)
	georgia, err := tax.NewTables("GA", 2023, []tax.Bracket{
		{Rate: 1, IncomeMin: 0, IncomeMax: ptr(750), TotalTaxPriorBrackets: 0},
		{Rate: 2, IncomeMin: 750, IncomeMax: ptr(2250), TotalTaxPriorBrackets: 7.5},
		{Rate: 3, IncomeMin: 2250, IncomeMax: ptr(3750), TotalTaxPriorBrackets: 37.5},
		{Rate: 4, IncomeMin: 3750, IncomeMax: ptr(5250), TotalTaxPriorBrackets: 82.5},
		{Rate: 5, IncomeMin: 5250, IncomeMax: ptr(7000), TotalTaxPriorBrackets: 142.5},
		{Rate: 5.75, IncomeMin: 7000, TotalTaxPriorBrackets: 230},
	}, map[tax.FilingStatus]float64{tax.FilingStatusSingle: 5400})
	require.NoError(t, err)
	registry, err := tax.NewRegistry(2023, federal, georgia)
	require.NoError(t, err)
	return registry
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	provider := mocks.NewMockRentProvider(ctrl)
	logger := zaptest.NewLogger(t)

	store, err := tax.OpenSQLite(filepath.Join(t.TempDir(), "tax.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	service := tax.NewService(testRegistry(t), provider, tax.WithLogger(logger), tax.WithRentTimeout(time.Second))
	collector := metrics.New()
	handler := taxhandler.NewHandler(service, store, filepath.Join("..", "..", "..", "..", "..", "taxdata"), logger, collector)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Auth(testSecret))
	r.Route("/api/v1", handler.RegisterRoutes)

	return &fixture{router: r, service: service, provider: provider, collector: collector, store: store}
}

func (f *fixture) do(t *testing.T, method, target, body string, headers ...string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	var env envelope
	if rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func sampleRent() tax.RentData {
	return tax.RentData{
		AvgRent: map[tax.Bedrooms]float64{
			tax.BedroomsStudio: 1450,
			tax.BedroomsOne:    1800,
			tax.BedroomsTwo:    2400,
		},
		Location: "Atlanta, GA",
	}
}

func TestFederalEndpoint(t *testing.T) {
	f := newFixture(t)
	rec, env := f.do(t, http.MethodPost, "/api/v1/tax/federal", `{"income": 60000}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var result tax.Result
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.InDelta(t, 46150.0, result.TaxableIncome, 1e-9)
	assert.InDelta(t, 5460.50, result.TaxAmount, 1e-9)
	assert.InDelta(t, 54539.50, result.TakehomePay, 1e-9)
	assert.Equal(t, 22.0, result.Bracket.Rate)
}

func TestCombinedEndpoint(t *testing.T) {
	f := newFixture(t)
	rec, env := f.do(t, http.MethodPost, "/api/v1/tax/combined?state=ga", `{"income": 60000}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var result tax.CombinedResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, 2023, result.Year)
	assert.Equal(t, tax.Jurisdiction("GA"), result.State)
	assert.InDelta(t, 2967.0, result.StateTax, 1e-9)
	assert.InDelta(t, 51572.50, result.TakehomePay, 1e-9)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		method string
		target string
		body   string
		status int
		code   string
	}{
		{name: "missing income", method: http.MethodPost, target: "/api/v1/tax/federal", body: `{}`, status: http.StatusBadRequest, code: "invalid_argument"},
		{name: "negative income", method: http.MethodPost, target: "/api/v1/tax/federal", body: `{"income": -5}`, status: http.StatusBadRequest, code: "invalid_argument"},
		{name: "malformed body", method: http.MethodPost, target: "/api/v1/tax/federal", body: `{"income":`, status: http.StatusBadRequest, code: "invalid_payload"},
		{name: "bad year", method: http.MethodPost, target: "/api/v1/tax/federal?year=abc", body: `{"income": 1}`, status: http.StatusBadRequest, code: "invalid_argument"},
		{name: "missing state", method: http.MethodPost, target: "/api/v1/tax/state", body: `{"income": 60000}`, status: http.StatusBadRequest, code: "invalid_argument"},
		{name: "federal as state", method: http.MethodPost, target: "/api/v1/tax/state?state=federal", body: `{"income": 60000}`, status: http.StatusBadRequest, code: "invalid_argument"},
		{name: "unknown state", method: http.MethodPost, target: "/api/v1/tax/combined?state=TX", body: `{"income": 60000}`, status: http.StatusNotFound, code: "unknown_jurisdiction"},
		{name: "unloaded year", method: http.MethodPost, target: "/api/v1/tax/federal?year=2019", body: `{"income": 60000}`, status: http.StatusNotFound, code: "data_not_found"},
		{name: "income below deduction", method: http.MethodPost, target: "/api/v1/tax/federal", body: `{"income": 5000}`, status: http.StatusUnprocessableEntity, code: "no_applicable_bracket"},
		{name: "state brackets unknown", method: http.MethodGet, target: "/api/v1/tax/brackets/state?state=ZZ", status: http.StatusNotFound, code: "unknown_jurisdiction"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			rec, env := f.do(t, tc.method, tc.target, tc.body)
			assert.Equal(t, tc.status, rec.Code)
			require.NotNil(t, env.Error)
			assert.False(t, env.Success)
			assert.Equal(t, tc.code, env.Error.Code)
			assert.Empty(t, env.Data)
		})
	}
}

func TestBracketsAndJurisdictions(t *testing.T) {
	f := newFixture(t)

	rec, env := f.do(t, http.MethodGet, "/api/v1/tax/brackets/federal", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var brackets struct {
		Year     int           `json:"year"`
		Brackets []tax.Bracket `json:"brackets"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &brackets))
	assert.Equal(t, 2023, brackets.Year)
	require.Len(t, brackets.Brackets, 3)
	assert.Nil(t, brackets.Brackets[2].IncomeMax)

	rec, env = f.do(t, http.MethodGet, "/api/v1/tax/jurisdictions", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var listing struct {
		Jurisdictions []tax.Jurisdiction `json:"jurisdictions"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &listing))
	assert.Equal(t, []tax.Jurisdiction{tax.Federal, "GA"}, listing.Jurisdictions)
}

func TestRentEndpoint(t *testing.T) {
	f := newFixture(t)
	f.provider.EXPECT().FetchAverageRent(gomock.Any(), tax.Jurisdiction("GA"), "Atlanta").Return(sampleRent(), nil)

	rec, env := f.do(t, http.MethodGet, "/api/v1/rent?state=GA&city=Atlanta", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		AvgRent map[string]*float64 `json:"avgRentForBedrooms"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &body))
	require.NotNil(t, body.AvgRent["2"])
	assert.Equal(t, 2400.0, *body.AvgRent["2"])
	assert.Nil(t, body.AvgRent["3"])
}

func TestRentEndpointUpstreamFailure(t *testing.T) {
	f := newFixture(t)
	f.provider.EXPECT().FetchAverageRent(gomock.Any(), gomock.Any(), gomock.Any()).Return(tax.RentData{}, errors.New("connection refused"))

	rec, env := f.do(t, http.MethodGet, "/api/v1/rent?state=GA&city=Atlanta", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "rent_data_unavailable", env.Error.Code)
	assert.Equal(t, uint64(1), f.collector.Snapshot()["rentFailuresTotal"])
}

func TestMonthlyTakehomeEndpoint(t *testing.T) {
	f := newFixture(t)
	f.provider.EXPECT().FetchAverageRent(gomock.Any(), tax.Jurisdiction("GA"), "atlanta").Return(sampleRent(), nil)

	rec, env := f.do(t, http.MethodPost, "/api/v1/tax/monthly-takehome?state=GA&city=atlanta&numBedrooms=2&numOccupants=2", `{"income": 60000}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var result tax.RentAdjustedResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, 4297.71, result.MonthlySalary)
	assert.Equal(t, 1200.0, result.MonthlyRentPerPerson)
	assert.InDelta(t, 3097.71, result.MonthlyTakehome, 1e-9)
}

func TestMonthlyTakehomeRejectsBeforeFetching(t *testing.T) {
	tests := []struct {
		name   string
		target string
	}{
		{name: "zero occupants", target: "/api/v1/tax/monthly-takehome?state=GA&city=atlanta&numBedrooms=2&numOccupants=0"},
		{name: "missing occupants", target: "/api/v1/tax/monthly-takehome?state=GA&city=atlanta&numBedrooms=2"},
		{name: "bad bedrooms", target: "/api/v1/tax/monthly-takehome?state=GA&city=atlanta&numBedrooms=4&numOccupants=1"},
		{name: "missing city", target: "/api/v1/tax/monthly-takehome?state=GA&numBedrooms=2&numOccupants=1"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			rec, env := f.do(t, http.MethodPost, tc.target, `{"income": 60000}`)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			require.NotNil(t, env.Error)
			assert.Equal(t, "invalid_argument", env.Error.Code)
		})
	}
}

func TestSummaryPDF(t *testing.T) {
	f := newFixture(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/tax/summary.pdf?state=GA&income=60000", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))
}

func TestAdminImportRequiresAdmin(t *testing.T) {
	f := newFixture(t)
	reader, err := auth.GenerateToken(testSecret, auth.Claims{Subject: "viewer", Role: auth.RoleReader}, time.Hour)
	require.NoError(t, err)

	rec, _ := f.do(t, http.MethodPost, "/api/v1/admin/tax-data/import", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = f.do(t, http.MethodPost, "/api/v1/admin/tax-data/import", "", "Authorization", "Bearer "+reader)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminImportReloadsTables(t *testing.T) {
	f := newFixture(t)
	token, err := auth.GenerateToken(testSecret, auth.Claims{Subject: "ops", Role: auth.RoleAdmin}, time.Hour)
	require.NoError(t, err)
	before := f.service.Registry()

	rec, env := f.do(t, http.MethodPost, "/api/v1/admin/tax-data/import", "", "Authorization", "Bearer "+token)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Year          int                `json:"year"`
		Jurisdictions []tax.Jurisdiction `json:"jurisdictions"`
		Reloaded      bool               `json:"reloaded"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &body))
	assert.Equal(t, 2023, body.Year)
	assert.True(t, body.Reloaded)
	assert.Contains(t, body.Jurisdictions, tax.Jurisdiction("MA"))
	assert.NotSame(t, before, f.service.Registry())

	stored, err := f.store.ListJurisdictions(context.Background(), 2023)
	require.NoError(t, err)
	assert.Len(t, stored, len(body.Jurisdictions))

	rec, env = f.do(t, http.MethodPost, "/api/v1/tax/state?state=MA", `{"income": 100000}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var result tax.Result
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.InDelta(t, 4780.0, result.TaxAmount, 1e-9)
}

func TestAdminImportMissingYear(t *testing.T) {
	f := newFixture(t)
	token, err := auth.GenerateToken(testSecret, auth.Claims{Subject: "ops", Role: auth.RoleAdmin}, time.Hour)
	require.NoError(t, err)

	rec, env := f.do(t, http.MethodPost, "/api/v1/admin/tax-data/import?year=1999", "", "Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "data_not_found", env.Error.Code)
}
