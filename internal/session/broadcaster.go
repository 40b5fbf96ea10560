package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
	"triptracks-service/internal/domain"
	"triptracks-service/internal/platform/metrics"
	"triptracks-service/internal/ports"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrConnectionInUse is returned by Join when the connection is already
// registered under a different trip.
var ErrConnectionInUse = errors.New("connection already joined to another trip")

const defaultSendTimeout = 5 * time.Second

// Conn is one live transport endpoint bound to a user.
// Send must be safe for concurrent use.
type Conn interface {
	ID() string
	UserID() string
	Username() string
	Send(ctx context.Context, ev domain.Event) error
}

// Inbound is a frame received from a member. An empty or unknown Type is
// treated as chat.
type Inbound struct {
	Type string
	Text string
	Lat  *float64
	Lng  *float64
}

// Broadcaster keeps the per-trip registry of live connections and fans
// events out to every member of a trip.
//
// One mutex guards the registry. It is never held while sending.
type Broadcaster struct {
	mu       sync.Mutex
	sessions map[string]map[string]Conn
	tripOf   map[string]string

	chats       ports.ChatRepository
	sendTimeout time.Duration
	metrics     *metrics.Metrics

	now   func() time.Time
	newID func() string
}

// NewBroadcaster builds an empty registry. chats may be nil, in which case
// chat history is not persisted.
func NewBroadcaster(chats ports.ChatRepository, sendTimeout time.Duration, m *metrics.Metrics) *Broadcaster {
	if sendTimeout <= 0 {
		sendTimeout = defaultSendTimeout
	}

	return &Broadcaster{
		sessions:    make(map[string]map[string]Conn),
		tripOf:      make(map[string]string),
		chats:       chats,
		sendTimeout: sendTimeout,
		metrics:     m,
		now:         func() time.Time { return time.Now().UTC() },
		newID:       uuid.NewString,
	}
}

// Join registers conn under tripID and announces it to all members,
// including the joiner. Joining the same trip twice is a no-op.
func (b *Broadcaster) Join(ctx context.Context, tripID string, conn Conn) error {
	b.mu.Lock()
	if current, ok := b.tripOf[conn.ID()]; ok {
		b.mu.Unlock()
		if current == tripID {
			return nil
		}
		return fmt.Errorf("join trip %q: %w", tripID, ErrConnectionInUse)
	}

	members, ok := b.sessions[tripID]
	if !ok {
		members = make(map[string]Conn)
		b.sessions[tripID] = members
	}
	members[conn.ID()] = conn
	b.tripOf[conn.ID()] = tripID
	recipients := snapshot(members)
	active := len(b.sessions)
	b.mu.Unlock()

	b.metrics.SetLiveSessions(active)
	zap.L().Info("live session joined",
		zap.String("trip_id", tripID), zap.String("user_id", conn.UserID()), zap.Int("members", len(recipients)))

	b.fanOut(ctx, recipients, b.systemEvent(tripID, conn.Username()+" joined the trip live view"))
	return nil
}

// Relay stamps an inbound frame from conn and broadcasts it to every member
// of tripID. Chat events are persisted first; a persistence failure is
// returned after the event has still been broadcast.
func (b *Broadcaster) Relay(ctx context.Context, tripID string, conn Conn, in Inbound) error {
	ev := domain.Event{
		ID:        b.newID(),
		TripID:    tripID,
		UserID:    conn.UserID(),
		Username:  conn.Username(),
		Timestamp: b.now(),
	}

	var saveErr error
	switch domain.EventType(in.Type) {
	case domain.EventLocation:
		ev.Type = domain.EventLocation
		ev.Lat = in.Lat
		ev.Lng = in.Lng
	default:
		ev.Type = domain.EventChat
		ev.Text = in.Text
		if b.chats != nil {
			if err := b.chats.SaveMessage(ctx, ev); err != nil {
				zap.L().Error("persist chat message",
					zap.String("trip_id", tripID), zap.String("event_id", ev.ID), zap.Error(err))
				saveErr = fmt.Errorf("relay chat: save message: %w", err)
			}
		}
	}

	b.fanOut(ctx, b.Members(tripID), ev)
	return saveErr
}

// Leave deregisters conn and announces the departure to the remaining
// members. Leaving a trip the connection is not part of does nothing.
func (b *Broadcaster) Leave(ctx context.Context, tripID string, conn Conn) {
	b.mu.Lock()
	members, ok := b.sessions[tripID]
	if !ok {
		b.mu.Unlock()
		return
	}
	if _, ok := members[conn.ID()]; !ok {
		b.mu.Unlock()
		return
	}

	delete(members, conn.ID())
	delete(b.tripOf, conn.ID())
	if len(members) == 0 {
		delete(b.sessions, tripID)
	}
	recipients := snapshot(members)
	active := len(b.sessions)
	b.mu.Unlock()

	b.metrics.SetLiveSessions(active)
	zap.L().Info("live session left",
		zap.String("trip_id", tripID), zap.String("user_id", conn.UserID()), zap.Int("members", len(recipients)))

	if len(recipients) > 0 {
		b.fanOut(ctx, recipients, b.systemEvent(tripID, conn.Username()+" left the trip live view"))
	}
}

// Members returns the connections currently registered under tripID.
func (b *Broadcaster) Members(tripID string) []Conn {
	b.mu.Lock()
	defer b.mu.Unlock()
	return snapshot(b.sessions[tripID])
}

// ActiveTrips returns the trips with at least one connection.
func (b *Broadcaster) ActiveTrips() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	trips := make([]string, 0, len(b.sessions))
	for id := range b.sessions {
		trips = append(trips, id)
	}
	return trips
}

func (b *Broadcaster) systemEvent(tripID, message string) domain.Event {
	return domain.Event{
		ID:        b.newID(),
		Type:      domain.EventSystem,
		TripID:    tripID,
		Timestamp: b.now(),
		Message:   message,
	}
}

// fanOut sends ev to every recipient concurrently and waits for all sends.
// A failing recipient is logged and does not affect the others.
func (b *Broadcaster) fanOut(ctx context.Context, recipients []Conn, ev domain.Event) {
	b.metrics.EventBroadcast(string(ev.Type))

	var wg sync.WaitGroup
	for _, c := range recipients {
		wg.Add(1)
		go func(c Conn) {
			defer wg.Done()

			sctx, cancel := context.WithTimeout(ctx, b.sendTimeout)
			defer cancel()

			if err := c.Send(sctx, ev); err != nil {
				b.metrics.BroadcastFailed()
				zap.L().Warn("live event send failed",
					zap.String("trip_id", ev.TripID), zap.String("conn_id", c.ID()),
					zap.String("type", string(ev.Type)), zap.Error(err))
			}
		}(c)
	}
	wg.Wait()
}

func snapshot(members map[string]Conn) []Conn {
	out := make([]Conn, 0, len(members))
	for _, c := range members {
		out = append(out, c)
	}
	return out
}
