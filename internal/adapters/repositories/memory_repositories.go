package repositories

import (
	"context"
	"fmt"
	"sync"
	"triptracks-service/internal/domain"
	"triptracks-service/internal/ports"
)

// In-memory ChatRepository used when no database is configured.
// History is kept per trip in arrival order and capped at maxPerTrip.
type MemoryChatRepository struct {
	mu         sync.Mutex
	byTrip     map[string][]domain.Event
	maxPerTrip int
}

func NewMemoryChatRepository(maxPerTrip int) *MemoryChatRepository {
	if maxPerTrip <= 0 {
		maxPerTrip = 1000
	}
	return &MemoryChatRepository{byTrip: make(map[string][]domain.Event), maxPerTrip: maxPerTrip}
}

func (m *MemoryChatRepository) SaveMessage(ctx context.Context, msg domain.Event) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("save message: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	history := append(m.byTrip[msg.TripID], msg)
	if len(history) > m.maxPerTrip {
		history = history[len(history)-m.maxPerTrip:]
	}
	m.byTrip[msg.TripID] = history
	return nil
}

func (m *MemoryChatRepository) ListMessages(ctx context.Context, tripID string, limit int) ([]domain.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	if limit <= 0 {
		limit = defaultChatHistoryLimit
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	history := m.byTrip[tripID]
	if len(history) > limit {
		history = history[len(history)-limit:]
	}

	out := make([]domain.Event, len(history))
	copy(out, history)
	return out, nil
}

// In-memory TravelerRepository, typically loaded from the seed file.
type MemoryTravelerRepository struct {
	mu        sync.RWMutex
	travelers map[string]*domain.Traveler
}

func NewMemoryTravelerRepository(travelers []*domain.Traveler) *MemoryTravelerRepository {
	m := &MemoryTravelerRepository{travelers: make(map[string]*domain.Traveler, len(travelers))}
	for _, t := range travelers {
		m.Put(t)
	}
	return m
}

// Put inserts or replaces a traveler.
func (m *MemoryTravelerRepository) Put(t *domain.Traveler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.travelers[t.UserID] = cloneTraveler(t)
}

func (m *MemoryTravelerRepository) GetTraveler(ctx context.Context, userID string) (*domain.Traveler, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.travelers[userID]
	if !ok {
		return nil, fmt.Errorf("get traveler user_id=%q: %w", userID, ports.ErrNotFound)
	}
	return cloneTraveler(t), nil
}

func cloneTraveler(t *domain.Traveler) *domain.Traveler {
	c := *t
	c.Vehicles = append([]domain.Vehicle(nil), t.Vehicles...)
	return &c
}
