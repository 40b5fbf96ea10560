package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"triptracks-service/internal/domain"
	"triptracks-service/internal/ports"
)

const (
	DefaultDailyDistanceKm = 500.0

	exceedsDailyLimitReason = "Exceeds your comfortable daily driving limit"

	// Bounds concurrent leg resolutions per plan.
	maxConcurrentLegs = 5
)

// LegResolver resolves the leg between two consecutive waypoints.
// Implementations must not fail; DistanceResolver degrades to a local estimate.
type LegResolver interface {
	ResolveLeg(ctx context.Context, src, dst domain.Location) domain.Leg
}

type PlanRequest struct {
	Source          domain.Location
	Destination     domain.Location
	Stops           []domain.Location
	DailyDistanceKm float64
	TravelerID      string
}

type CostRequest struct {
	PlanRequest
	Vehicles          []domain.Vehicle
	FuelPricePerLiter float64
	NightlyStayRate   float64
	DailyFoodRate     float64
}

// Planner assembles itineraries and trip cost estimates.
type Planner struct {
	resolver         LegResolver
	travelers        ports.TravelerRepository
	defaultDailyKm   float64
	defaultFuelPrice float64
}

// NewPlanner builds a planner. travelers may be nil, in which case no saved
// profile is consulted.
func NewPlanner(
	resolver LegResolver,
	travelers ports.TravelerRepository,
	defaultDailyKm float64,
	defaultFuelPrice float64,
) *Planner {
	if defaultDailyKm <= 0 {
		defaultDailyKm = DefaultDailyDistanceKm
	}
	return &Planner{
		resolver:         resolver,
		travelers:        travelers,
		defaultDailyKm:   defaultDailyKm,
		defaultFuelPrice: defaultFuelPrice,
	}
}

// BuildItinerary chains source, stops and destination into legs and
// aggregates them against a daily distance budget.
//
// Legs are resolved concurrently but kept in waypoint order. A non-positive
// budget yields a one-day plan with no suggestions.
func BuildItinerary(
	ctx context.Context,
	resolver LegResolver,
	source domain.Location,
	destination domain.Location,
	stops []domain.Location,
	dailyDistanceKm float64,
) domain.Itinerary {
	points := make([]domain.Location, 0, len(stops)+2)
	points = append(points, source)
	points = append(points, stops...)
	points = append(points, destination)

	legs := make([]domain.Leg, len(points)-1)

	sem := make(chan struct{}, maxConcurrentLegs)
	var wg sync.WaitGroup
	for i := 0; i < len(points)-1; i++ {
		wg.Add(1)
		go func(i int) {
			sem <- struct{}{}
			defer wg.Done()
			defer func() { <-sem }()

			legs[i] = resolver.ResolveLeg(ctx, points[i], points[i+1])
		}(i)
	}
	wg.Wait()

	totalDistance := 0.0
	totalMinutes := 0
	for _, leg := range legs {
		totalDistance += leg.DistanceKm
		totalMinutes += leg.EstimatedTimeMins
	}

	days := 1
	if dailyDistanceKm > 0 {
		days = int(math.Ceil(totalDistance / dailyDistanceKm))
	}
	// A zero-distance trip still takes a day.
	if days < 1 {
		days = 1
	}

	suggestions := []domain.Suggestion{}
	if dailyDistanceKm > 0 {
		for i, leg := range legs {
			if leg.DistanceKm > dailyDistanceKm {
				suggestions = append(suggestions, domain.Suggestion{
					Segment:    fmt.Sprintf("between %s and %s", points[i].Name, points[i+1].Name),
					DistanceKm: leg.DistanceKm,
					Reason:     exceedsDailyLimitReason,
				})
			}
		}
	}

	return domain.Itinerary{
		Legs:                   legs,
		TotalDistanceKm:        round2(totalDistance),
		TotalEstimatedTimeMins: totalMinutes,
		EstimatedDays:          days,
		DailyDistanceKm:        dailyDistanceKm,
		Suggestions:            suggestions,
	}
}

// Plan builds an itinerary. The daily budget is the request's explicit value,
// else the traveler's best saved vehicle, else the configured default.
func (p *Planner) Plan(ctx context.Context, req PlanRequest) (domain.Itinerary, error) {
	if err := ctx.Err(); err != nil {
		return domain.Itinerary{}, fmt.Errorf("plan trip: %w", err)
	}

	traveler, err := p.lookupTraveler(ctx, req.TravelerID)
	if err != nil {
		return domain.Itinerary{}, fmt.Errorf("plan trip: %w", err)
	}

	budget := firstPositive(req.DailyDistanceKm, traveler.DailyDistance(), p.defaultDailyKm)

	return BuildItinerary(ctx, p.resolver, req.Source, req.Destination, req.Stops, budget), nil
}

// PlanCost builds an itinerary and attaches fuel, stay and food estimates.
//
// The daily budget is the explicit request value, else the best capability
// among supplied vehicles, else among the traveler's saved vehicles, else the
// default. Partial inputs lean toward the shortest trip length.
func (p *Planner) PlanCost(ctx context.Context, req CostRequest) (domain.CostedItinerary, error) {
	if err := ctx.Err(); err != nil {
		return domain.CostedItinerary{}, fmt.Errorf("plan trip cost: %w", err)
	}

	traveler, err := p.lookupTraveler(ctx, req.TravelerID)
	if err != nil {
		return domain.CostedItinerary{}, fmt.Errorf("plan trip cost: %w", err)
	}

	budget := firstPositive(
		req.DailyDistanceKm,
		domain.MaxDailyDistance(req.Vehicles),
		traveler.DailyDistance(),
		p.defaultDailyKm,
	)

	vehicles := req.Vehicles
	if len(vehicles) == 0 && traveler != nil {
		vehicles = traveler.Vehicles
	}

	var savedNightly, savedFood float64
	if traveler != nil {
		savedNightly = traveler.AvgNightlyStayExpense
		savedFood = traveler.AvgDailyFoodExpense
	}

	it := BuildItinerary(ctx, p.resolver, req.Source, req.Destination, req.Stops, budget)
	cost := EstimateCost(
		it,
		vehicles,
		firstPositive(req.FuelPricePerLiter, p.defaultFuelPrice),
		firstPositive(req.NightlyStayRate, savedNightly),
		firstPositive(req.DailyFoodRate, savedFood),
	)

	return domain.CostedItinerary{Itinerary: it, Cost: cost}, nil
}

// EstimateCost prices an itinerary. A d-day trip needs d-1 nights of lodging.
// Vehicles with non-positive mileage are listed with zero fuel cost.
func EstimateCost(
	it domain.Itinerary,
	vehicles []domain.Vehicle,
	fuelPricePerLiter float64,
	nightlyRate float64,
	dailyFoodRate float64,
) domain.TripCost {
	perVehicle := make([]domain.VehicleFuelCost, 0, len(vehicles))
	fuel := 0.0
	for _, v := range vehicles {
		c := 0.0
		if v.MileagePerLiter > 0 {
			c = round2(it.TotalDistanceKm / v.MileagePerLiter * fuelPricePerLiter)
		}
		perVehicle = append(perVehicle, domain.VehicleFuelCost{VehicleID: v.ID, Type: v.Type, FuelCost: c})
		fuel += c
	}
	fuel = round2(fuel)

	stay := round2(nightlyRate * float64(it.EstimatedDays-1))
	food := round2(dailyFoodRate * float64(it.EstimatedDays))

	return domain.TripCost{
		VehicleFuelCosts:  perVehicle,
		FuelCost:          fuel,
		StayCost:          stay,
		FoodCost:          food,
		TotalCost:         round2(fuel + stay + food),
		FuelPricePerLiter: fuelPricePerLiter,
	}
}

// lookupTraveler returns nil without error when no id is given, no repository
// is wired, or the traveler does not exist.
func (p *Planner) lookupTraveler(ctx context.Context, travelerID string) (*domain.Traveler, error) {
	if travelerID == "" || p.travelers == nil {
		return nil, nil
	}

	t, err := p.travelers.GetTraveler(ctx, travelerID)
	if errors.Is(err, ports.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get traveler %q: %w", travelerID, err)
	}

	return t, nil
}

func firstPositive(values ...float64) float64 {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}
