package dto

import "triptracks-service/internal/domain"

type LocationRequest struct {
	Name string   `json:"name"`
	Lat  *float64 `json:"lat"`
	Lng  *float64 `json:"lng"`
}

type PlanRequest struct {
	Source          *LocationRequest  `json:"source"`
	Destination     *LocationRequest  `json:"destination"`
	Stops           []LocationRequest `json:"stops"`
	DailyDistanceKm float64           `json:"daily_distance_km"`
	TravelerID      string            `json:"traveler_id"`
}

type VehicleRequest struct {
	VehicleID         string  `json:"vehicle_id"`
	Type              string  `json:"type"`
	Seats             int     `json:"seats"`
	MileagePerLiter   float64 `json:"mileage_per_liter"`
	AvgDistancePerDay float64 `json:"avg_distance_per_day"`
}

type CostRequest struct {
	PlanRequest
	Vehicles          []VehicleRequest `json:"vehicles"`
	FuelPricePerLiter float64          `json:"fuel_price_per_liter"`
	NightlyStayRate   float64          `json:"nightly_stay_rate"`
	DailyFoodRate     float64          `json:"daily_food_rate"`
}

type LegResponse struct {
	DistanceKm        float64 `json:"distance_km"`
	EstimatedTimeMins int     `json:"estimated_time_mins"`
}

type SuggestionResponse struct {
	Segment  string  `json:"segment"`
	Distance float64 `json:"distance"`
	Reason   string  `json:"reason"`
}

type ItineraryResponse struct {
	Legs                   []LegResponse        `json:"legs"`
	TotalDistanceKm        float64              `json:"total_distance_km"`
	TotalEstimatedTimeMins int                  `json:"total_estimated_time_mins"`
	EstimatedDays          int                  `json:"estimated_days"`
	DailyDistanceKm        float64              `json:"daily_distance_km"`
	Suggestions            []SuggestionResponse `json:"suggestions"`
}

type VehicleFuelCostResponse struct {
	VehicleID string  `json:"vehicle_id"`
	Type      string  `json:"type"`
	FuelCost  float64 `json:"fuel_cost"`
}

type CostResponse struct {
	ItineraryResponse
	VehicleFuelCosts   []VehicleFuelCostResponse `json:"vehicle_fuel_costs"`
	EstimatedFuelCost  float64                   `json:"estimated_fuel_cost"`
	EstimatedStayCost  float64                   `json:"estimated_stay_cost"`
	EstimatedFoodCost  float64                   `json:"estimated_food_cost"`
	TotalEstimatedCost float64                   `json:"total_estimated_cost"`
	FuelPricePerLiter  float64                   `json:"fuel_price_per_liter"`
}

func NewItineraryResponse(it domain.Itinerary) ItineraryResponse {
	legs := make([]LegResponse, 0, len(it.Legs))
	for _, l := range it.Legs {
		legs = append(legs, LegResponse{DistanceKm: l.DistanceKm, EstimatedTimeMins: l.EstimatedTimeMins})
	}

	suggestions := make([]SuggestionResponse, 0, len(it.Suggestions))
	for _, s := range it.Suggestions {
		suggestions = append(suggestions, SuggestionResponse{Segment: s.Segment, Distance: s.DistanceKm, Reason: s.Reason})
	}

	return ItineraryResponse{
		Legs:                   legs,
		TotalDistanceKm:        it.TotalDistanceKm,
		TotalEstimatedTimeMins: it.TotalEstimatedTimeMins,
		EstimatedDays:          it.EstimatedDays,
		DailyDistanceKm:        it.DailyDistanceKm,
		Suggestions:            suggestions,
	}
}

func NewCostResponse(c domain.CostedItinerary) CostResponse {
	perVehicle := make([]VehicleFuelCostResponse, 0, len(c.Cost.VehicleFuelCosts))
	for _, v := range c.Cost.VehicleFuelCosts {
		perVehicle = append(perVehicle, VehicleFuelCostResponse{VehicleID: v.VehicleID, Type: v.Type, FuelCost: v.FuelCost})
	}

	return CostResponse{
		ItineraryResponse:  NewItineraryResponse(c.Itinerary),
		VehicleFuelCosts:   perVehicle,
		EstimatedFuelCost:  c.Cost.FuelCost,
		EstimatedStayCost:  c.Cost.StayCost,
		EstimatedFoodCost:  c.Cost.FoodCost,
		TotalEstimatedCost: c.Cost.TotalCost,
		FuelPricePerLiter:  c.Cost.FuelPricePerLiter,
	}
}
