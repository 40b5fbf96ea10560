package domain

// A vehicle saved on a traveler's profile or supplied with a cost request.
// AvgDistancePerDay of zero means the capability is unknown.
type Vehicle struct {
	ID                string
	Type              string
	Seats             int
	MileagePerLiter   float64
	AvgDistancePerDay float64
}

// Traveler profile read by the planner: saved vehicles and daily spending habits.
type Traveler struct {
	UserID                string
	Username              string
	Vehicles              []Vehicle
	AvgDailyFoodExpense   float64
	AvgNightlyStayExpense float64
}

// MaxDailyDistance returns the largest known daily-distance capability
// among the vehicles, or 0 when none is known.
func MaxDailyDistance(vehicles []Vehicle) float64 {
	best := 0.0
	for _, v := range vehicles {
		if v.AvgDistancePerDay > best {
			best = v.AvgDistancePerDay
		}
	}
	return best
}

// Return the traveler's daily driving capability, or 0 when no saved vehicle reports one.
func (t *Traveler) DailyDistance() float64 {
	if t == nil {
		return 0
	}
	return MaxDailyDistance(t.Vehicles)
}
