package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"triptracks-service/internal/adapters/cache"
	"triptracks-service/internal/adapters/repositories"
	"triptracks-service/internal/api/dto"
	"triptracks-service/internal/domain"
	"triptracks-service/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPlanHandler() *PlanHandler {
	resolver := services.NewDistanceResolver(cache.NewMemoryCache(100, time.Hour), nil, time.Second, nil)
	travelers := repositories.NewMemoryTravelerRepository([]*domain.Traveler{{
		UserID:                "u1",
		Vehicles:              []domain.Vehicle{{ID: "v1", Type: "car", MileagePerLiter: 10, AvgDistancePerDay: 50}},
		AvgDailyFoodExpense:   30,
		AvgNightlyStayExpense: 80,
	}})
	return &PlanHandler{Planner: services.NewPlanner(resolver, travelers, 500, 1.6)}
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","service":"triptracks"}`, rec.Body.String())
}

func TestPlanHandlerPlan(t *testing.T) {
	h := newTestPlanHandler()
	body := `{"source":{"name":"A","lat":0,"lng":0},"destination":{"name":"B","lat":0,"lng":1},"daily_distance_km":50}`

	rec := httptest.NewRecorder()
	h.Plan(rec, httptest.NewRequest(http.MethodPost, "/api/trips/intelligence/plan", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res dto.ItineraryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Len(t, res.Legs, 1)
	assert.Equal(t, 111.19, res.TotalDistanceKm)
	assert.Equal(t, 3, res.EstimatedDays)
	require.Len(t, res.Suggestions, 1)
	assert.Equal(t, "between A and B", res.Suggestions[0].Segment)
}

func TestPlanHandlerCostUsesSavedProfile(t *testing.T) {
	h := newTestPlanHandler()
	body := `{"source":{"name":"A","lat":0,"lng":0},"destination":{"name":"B","lat":0,"lng":1},"traveler_id":"u1"}`

	rec := httptest.NewRecorder()
	h.Cost(rec, httptest.NewRequest(http.MethodPost, "/api/trips/intelligence/cost", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res dto.CostResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, 3, res.EstimatedDays)
	require.Len(t, res.VehicleFuelCosts, 1)
	assert.Equal(t, "v1", res.VehicleFuelCosts[0].VehicleID)
	assert.Equal(t, 17.79, res.EstimatedFuelCost)
	assert.Equal(t, 160.0, res.EstimatedStayCost)
	assert.Equal(t, 90.0, res.EstimatedFoodCost)
	assert.Equal(t, 267.79, res.TotalEstimatedCost)
	assert.Equal(t, 1.6, res.FuelPricePerLiter)
}

func TestPlanHandlerRejectsBadInput(t *testing.T) {
	h := newTestPlanHandler()

	manyStops := make([]string, 26)
	for i := range manyStops {
		manyStops[i] = `{"lat":1,"lng":1}`
	}

	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: `{`},
		{name: "unknown field", body: `{"source":{"lat":0,"lng":0},"destination":{"lat":0,"lng":1},"hub":"x"}`},
		{name: "missing destination", body: `{"source":{"lat":0,"lng":0}}`},
		{name: "missing lng", body: `{"source":{"lat":0},"destination":{"lat":0,"lng":1}}`},
		{name: "latitude out of range", body: `{"source":{"lat":95,"lng":0},"destination":{"lat":0,"lng":1}}`},
		{name: "negative budget", body: `{"source":{"lat":0,"lng":0},"destination":{"lat":0,"lng":1},"daily_distance_km":-1}`},
		{name: "too many stops", body: `{"source":{"lat":0,"lng":0},"destination":{"lat":0,"lng":1},"stops":[` + strings.Join(manyStops, ",") + `]}`},
		{name: "two objects", body: `{"source":{"lat":0,"lng":0},"destination":{"lat":0,"lng":1}}{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.Plan(rec, httptest.NewRequest(http.MethodPost, "/api/trips/intelligence/plan", strings.NewReader(tt.body)))
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

func TestPlanHandlerCostRejectsNegativeRates(t *testing.T) {
	h := newTestPlanHandler()
	body := `{"source":{"lat":0,"lng":0},"destination":{"lat":0,"lng":1},"fuel_price_per_liter":-2}`

	rec := httptest.NewRecorder()
	h.Cost(rec, httptest.NewRequest(http.MethodPost, "/api/trips/intelligence/cost", strings.NewReader(body)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPlanHandlerMethodNotAllowed(t *testing.T) {
	h := newTestPlanHandler()

	rec := httptest.NewRecorder()
	h.Plan(rec, httptest.NewRequest(http.MethodGet, "/api/trips/intelligence/plan", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, http.MethodPost, rec.Header().Get("Allow"))
}

type stubSearcher struct{ places []domain.Location }

func (s stubSearcher) Autocomplete(context.Context, string) []domain.Location { return s.places }

func TestPlaceHandlerAutocomplete(t *testing.T) {
	h := &PlaceHandler{Searcher: stubSearcher{places: []domain.Location{{Name: "Goa, India", Lat: 15.3, Lng: 74.1}}}}

	rec := httptest.NewRecorder()
	h.Autocomplete(rec, httptest.NewRequest(http.MethodGet, "/api/trips/autocomplete?query=goa", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"name":"Goa, India","lat":15.3,"lng":74.1}]`, rec.Body.String())
}

func TestPlaceHandlerEmptyResultIsEmptyArray(t *testing.T) {
	h := &PlaceHandler{Searcher: stubSearcher{}}

	rec := httptest.NewRecorder()
	h.Autocomplete(rec, httptest.NewRequest(http.MethodGet, "/api/trips/autocomplete?query=atlantis", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestPlaceHandlerRequiresQuery(t *testing.T) {
	h := &PlaceHandler{Searcher: stubSearcher{}}

	rec := httptest.NewRecorder()
	h.Autocomplete(rec, httptest.NewRequest(http.MethodGet, "/api/trips/autocomplete?query=%20%20", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatHandlerHistory(t *testing.T) {
	chats := repositories.NewMemoryChatRepository(0)
	ts := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	for _, text := range []string{"one", "two", "three"} {
		require.NoError(t, chats.SaveMessage(context.Background(), domain.Event{
			ID: text, Type: domain.EventChat, TripID: "trip-1", UserID: "u1", Username: "asha", Text: text, Timestamp: ts,
		}))
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/trips/{trip_id}/chat", (&ChatHandler{Chats: chats}).History)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/trips/trip-1/chat?limit=2", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var res dto.ChatHistoryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "trip-1", res.TripID)
	require.Len(t, res.Messages, 2)
	assert.Equal(t, "two", res.Messages[0].Text)
	assert.Equal(t, "three", res.Messages[1].Text)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/trips/trip-1/chat?limit=0", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
