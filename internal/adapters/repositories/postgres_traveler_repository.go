package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"triptracks-service/internal/domain"
	"triptracks-service/internal/platform/obs"
	"triptracks-service/internal/ports"
)

// Postgres-backed implementation of the TravelerRepository port.
type PostgresTravelerRepository struct{ DB *sql.DB }

func NewPostgresTravelerRepository(db *sql.DB) *PostgresTravelerRepository {
	return &PostgresTravelerRepository{DB: db}
}

// Return the traveler with its saved vehicles, or ports.ErrNotFound.
func (p *PostgresTravelerRepository) GetTraveler(ctx context.Context, userID string) (_ *domain.Traveler, err error) {
	defer obs.Time(ctx, "traveler.repo.GetTraveler")(&err)

	if p.DB == nil {
		return nil, errors.New("postgres traveler repository: DB is nil")
	}

	travelerQuery := `
	SELECT user_id, username, avg_daily_food_expense, avg_nightly_stay_expense
	FROM travelers
	WHERE user_id = $1;
	`
	t := &domain.Traveler{}
	err = p.DB.QueryRowContext(ctx, travelerQuery, userID).
		Scan(&t.UserID, &t.Username, &t.AvgDailyFoodExpense, &t.AvgNightlyStayExpense)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get traveler user_id=%q: %w", userID, ports.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get traveler: query travelers table: %w", err)
	}

	vehiclesQuery := `
	SELECT vehicle_id, type, seats, mileage_per_liter, avg_distance_per_day
	FROM vehicles
	WHERE user_id = $1
	ORDER BY vehicle_id;
	`
	rows, err := p.DB.QueryContext(ctx, vehiclesQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("get traveler: query vehicles table: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var v domain.Vehicle
		if err := rows.Scan(&v.ID, &v.Type, &v.Seats, &v.MileagePerLiter, &v.AvgDistancePerDay); err != nil {
			return nil, fmt.Errorf("get traveler: scan vehicle row: %w", err)
		}
		t.Vehicles = append(t.Vehicles, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get traveler: vehicle row iteration: %w", err)
	}

	return t, nil
}
