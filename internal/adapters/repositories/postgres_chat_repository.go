package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"triptracks-service/internal/domain"
	"triptracks-service/internal/platform/obs"
)

const defaultChatHistoryLimit = 50

// Postgres-backed implementation of the ChatRepository port.
type PostgresChatRepository struct{ DB *sql.DB }

func NewPostgresChatRepository(db *sql.DB) *PostgresChatRepository {
	return &PostgresChatRepository{DB: db}
}

// Persist one chat event.
func (p *PostgresChatRepository) SaveMessage(ctx context.Context, msg domain.Event) (err error) {
	defer obs.Time(ctx, "chat.repo.SaveMessage")(&err)

	if p.DB == nil {
		return errors.New("postgres chat repository: DB is nil")
	}
	if msg.TripID == "" || msg.ID == "" {
		return errors.New("save message: trip id and message id are required")
	}

	query := `
	INSERT INTO trip_chats (
		message_id,
		trip_id,
		user_id,
		username,
		text,
		sent_at
	)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (message_id) DO NOTHING;
	`
	if _, err := p.DB.ExecContext(ctx, query,
		msg.ID, msg.TripID, msg.UserID, msg.Username, msg.Text, msg.Timestamp); err != nil {
		return fmt.Errorf("save message trip_id=%q: %w", msg.TripID, err)
	}

	return nil
}

// Return the most recent chat events for the trip, oldest first.
func (p *PostgresChatRepository) ListMessages(ctx context.Context, tripID string, limit int) (_ []domain.Event, err error) {
	defer obs.Time(ctx, "chat.repo.ListMessages")(&err)

	if p.DB == nil {
		return nil, errors.New("postgres chat repository: DB is nil")
	}
	if limit <= 0 {
		limit = defaultChatHistoryLimit
	}

	query := `
	SELECT message_id, trip_id, user_id, username, text, sent_at
	FROM (
		SELECT message_id, trip_id, user_id, username, text, sent_at
		FROM trip_chats
		WHERE trip_id = $1
		ORDER BY sent_at DESC, message_id DESC
		LIMIT $2
	) recent
	ORDER BY sent_at, message_id;
	`
	rows, err := p.DB.QueryContext(ctx, query, tripID, limit)
	if err != nil {
		return nil, fmt.Errorf("list messages: query trip_chats table: %w", err)
	}
	defer rows.Close()

	events := make([]domain.Event, 0, limit)
	for rows.Next() {
		ev := domain.Event{Type: domain.EventChat}
		if err := rows.Scan(&ev.ID, &ev.TripID, &ev.UserID, &ev.Username, &ev.Text, &ev.Timestamp); err != nil {
			return nil, fmt.Errorf("list messages: scan row: %w", err)
		}
		ev.Timestamp = ev.Timestamp.UTC()
		events = append(events, ev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list messages: row iteration: %w", err)
	}

	return events, nil
}
