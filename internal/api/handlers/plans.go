package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"triptracks-service/internal/api/dto"
	"triptracks-service/internal/domain"
	"triptracks-service/internal/services"

	"go.uber.org/zap"
)

const maxStops = 25

type PlanHandler struct {
	Planner *services.Planner
}

// Plan resolves the requested waypoints into a multi-day itinerary.
func (h *PlanHandler) Plan(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req dto.PlanRequest
	if !decodeBody(w, r, &req) {
		return
	}

	planReq, err := toPlanRequest(req)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	it, err := h.Planner.Plan(r.Context(), planReq)
	if err != nil {
		zap.L().Error("plan trip failed", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, dto.NewItineraryResponse(it))
}

// Cost resolves the itinerary and attaches fuel, lodging and food estimates.
func (h *PlanHandler) Cost(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req dto.CostRequest
	if !decodeBody(w, r, &req) {
		return
	}

	planReq, err := toPlanRequest(req.PlanRequest)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.FuelPricePerLiter < 0 || req.NightlyStayRate < 0 || req.DailyFoodRate < 0 {
		writeError(w, r, http.StatusBadRequest, "prices and rates must not be negative")
		return
	}

	vehicles := make([]domain.Vehicle, 0, len(req.Vehicles))
	for i, v := range req.Vehicles {
		if v.MileagePerLiter < 0 || v.AvgDistancePerDay < 0 || v.Seats < 0 {
			writeError(w, r, http.StatusBadRequest, fmt.Sprintf("vehicles[%d]: values must not be negative", i))
			return
		}
		vehicles = append(vehicles, domain.Vehicle{
			ID:                v.VehicleID,
			Type:              v.Type,
			Seats:             v.Seats,
			MileagePerLiter:   v.MileagePerLiter,
			AvgDistancePerDay: v.AvgDistancePerDay,
		})
	}

	costed, err := h.Planner.PlanCost(r.Context(), services.CostRequest{
		PlanRequest:       planReq,
		Vehicles:          vehicles,
		FuelPricePerLiter: req.FuelPricePerLiter,
		NightlyStayRate:   req.NightlyStayRate,
		DailyFoodRate:     req.DailyFoodRate,
	})
	if err != nil {
		zap.L().Error("plan trip cost failed", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, dto.NewCostResponse(costed))
}

func toPlanRequest(req dto.PlanRequest) (services.PlanRequest, error) {
	src, err := toLocation("source", req.Source)
	if err != nil {
		return services.PlanRequest{}, err
	}
	dst, err := toLocation("destination", req.Destination)
	if err != nil {
		return services.PlanRequest{}, err
	}

	if len(req.Stops) > maxStops {
		return services.PlanRequest{}, fmt.Errorf("at most %d stops are allowed", maxStops)
	}
	stops := make([]domain.Location, 0, len(req.Stops))
	for i := range req.Stops {
		s, err := toLocation(fmt.Sprintf("stops[%d]", i), &req.Stops[i])
		if err != nil {
			return services.PlanRequest{}, err
		}
		stops = append(stops, s)
	}

	if req.DailyDistanceKm < 0 {
		return services.PlanRequest{}, errors.New("daily_distance_km must not be negative")
	}

	return services.PlanRequest{
		Source:          src,
		Destination:     dst,
		Stops:           stops,
		DailyDistanceKm: req.DailyDistanceKm,
		TravelerID:      strings.TrimSpace(req.TravelerID),
	}, nil
}

func toLocation(field string, l *dto.LocationRequest) (domain.Location, error) {
	if l == nil {
		return domain.Location{}, fmt.Errorf("%s is required", field)
	}
	if l.Lat == nil || l.Lng == nil {
		return domain.Location{}, fmt.Errorf("%s: lat and lng are required", field)
	}

	loc := domain.Location{Name: strings.TrimSpace(l.Name), Lat: *l.Lat, Lng: *l.Lng}
	if !loc.Valid() {
		return domain.Location{}, fmt.Errorf("%s: coordinates out of range", field)
	}
	return loc, nil
}
