package domain

// Represents one routed segment between two consecutive waypoints.
// Legs are request-scoped values; only their cached form outlives a planning call.
type Leg struct {
	DistanceKm        float64
	EstimatedTimeMins int
}

// A segment flagged because it exceeds the traveler's daily driving budget.
type Suggestion struct {
	Segment    string
	DistanceKm float64
	Reason     string
}

// Represents the full multi-leg plan for a trip.
// Legs are ordered as the waypoints were supplied. EstimatedDays is always >= 1.
type Itinerary struct {
	Legs                   []Leg
	TotalDistanceKm        float64
	TotalEstimatedTimeMins int
	EstimatedDays          int
	DailyDistanceKm        float64
	Suggestions            []Suggestion
}

// Fuel cost for a single vehicle driving the whole itinerary.
type VehicleFuelCost struct {
	VehicleID string
	Type      string
	FuelCost  float64
}

// Cost estimate attached to an itinerary by the trip-cost planner.
type TripCost struct {
	VehicleFuelCosts  []VehicleFuelCost
	FuelCost          float64
	StayCost          float64
	FoodCost          float64
	TotalCost         float64
	FuelPricePerLiter float64
}

// An itinerary together with its cost estimate.
type CostedItinerary struct {
	Itinerary
	Cost TripCost
}
