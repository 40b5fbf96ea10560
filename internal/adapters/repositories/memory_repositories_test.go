package repositories

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
	"triptracks-service/internal/domain"
	"triptracks-service/internal/ports"
)

func TestMemoryChatRepositoryListsMostRecentOldestFirst(t *testing.T) {
	repo := NewMemoryChatRepository(0)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		ev := domain.Event{
			ID:        fmt.Sprintf("m%d", i),
			Type:      domain.EventChat,
			TripID:    "trip-1",
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		}
		if err := repo.SaveMessage(ctx, ev); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if err := repo.SaveMessage(ctx, domain.Event{ID: "other", TripID: "trip-2"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := repo.ListMessages(ctx, "trip-1", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(got))
	}
	for i, want := range []string{"m2", "m3", "m4"} {
		if got[i].ID != want {
			t.Fatalf("message %d: expected %q, got %q", i, want, got[i].ID)
		}
	}
}

func TestMemoryChatRepositoryCapsHistory(t *testing.T) {
	repo := NewMemoryChatRepository(2)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		_ = repo.SaveMessage(ctx, domain.Event{ID: id, TripID: "t"})
	}

	got, _ := repo.ListMessages(ctx, "t", 10)
	if len(got) != 2 || got[0].ID != "b" || got[1].ID != "c" {
		t.Fatalf("expected [b c], got %+v", got)
	}
}

func TestMemoryTravelerRepository(t *testing.T) {
	repo := NewMemoryTravelerRepository([]*domain.Traveler{
		{UserID: "u1", Username: "asha", Vehicles: []domain.Vehicle{{ID: "v1", AvgDistancePerDay: 400}}},
	})

	got, err := repo.GetTraveler(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Username != "asha" || len(got.Vehicles) != 1 {
		t.Fatalf("unexpected traveler %+v", got)
	}

	got.Vehicles[0].AvgDistancePerDay = 1
	again, _ := repo.GetTraveler(context.Background(), "u1")
	if again.Vehicles[0].AvgDistancePerDay != 400 {
		t.Fatalf("stored traveler was mutated through a returned value")
	}

	_, err = repo.GetTraveler(context.Background(), "missing")
	if !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestParseTravelerSeeds(t *testing.T) {
	raw := []byte(`[
		{"user_id": "u1", "username": " asha ", "avg_daily_food_expense": 25,
		 "vehicles": [{"vehicle_id": "v1", "type": "car", "seats": 4, "mileage_per_liter": 14, "avg_distance_per_day": 450}]},
		{"user_id": "u2", "username": "ben"}
	]`)

	got, err := ParseTravelerSeeds(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 travelers, got %d", len(got))
	}
	if got[0].Username != "asha" {
		t.Fatalf("expected trimmed username, got %q", got[0].Username)
	}
	if len(got[0].Vehicles) != 1 || got[0].Vehicles[0].MileagePerLiter != 14 {
		t.Fatalf("unexpected vehicles %+v", got[0].Vehicles)
	}
}

func TestParseTravelerSeedsInvalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "not json", raw: `{`},
		{name: "empty user id", raw: `[{"user_id": " "}]`},
		{name: "duplicate user id", raw: `[{"user_id": "u1"}, {"user_id": "u1"}]`},
		{name: "negative expense", raw: `[{"user_id": "u1", "avg_nightly_stay_expense": -1}]`},
		{name: "empty vehicle id", raw: `[{"user_id": "u1", "vehicles": [{"type": "car"}]}]`},
		{name: "negative mileage", raw: `[{"user_id": "u1", "vehicles": [{"vehicle_id": "v", "mileage_per_liter": -2}]}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseTravelerSeeds([]byte(tt.raw)); err == nil {
				t.Fatalf("expected an error")
			}
		})
	}
}

func TestLoadTravelerSeedsMissingFile(t *testing.T) {
	_, err := LoadTravelerSeeds(filepath.Join(t.TempDir(), "nope.json"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}
