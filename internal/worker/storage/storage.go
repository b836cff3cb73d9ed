package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/tmgnisc/zen-edu-hub-job-portal-sub000/internal/events"
	"github.com/tmgnisc/zen-edu-hub-job-portal-sub000/internal/worker/domain"
)

// Storage handles the portal_events table
type Storage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStorage creates a new Storage instance
func NewStorage(db *sqlx.DB, logger *slog.Logger) *Storage {
	return &Storage{db: db, logger: logger}
}

func nullableInt(v int) *int {
	if v == 0 {
		return nil
	}
	return &v
}

// RecordEvent inserts event once. A second insert of the same event_id
// returns domain.ErrEventAlreadyRecorded.
func (s *Storage) RecordEvent(ctx context.Context, event events.Event) error {
	payload, err := json.Marshal(event.Attributes)
	if err != nil {
		return fmt.Errorf("failed to encode event attributes: %w", err)
	}

	record := domain.EventRecord{
		EventID:    event.ID,
		EventType:  string(event.Type),
		SessionID:  event.SessionID,
		UserID:     nullableInt(event.UserID),
		JobID:      nullableInt(event.JobID),
		Email:      event.Email,
		Payload:    string(payload),
		OccurredAt: event.OccurredAt,
		RecordedAt: time.Now().UTC(),
	}

	query := `
		INSERT INTO portal_events
			(event_id, event_type, session_id, user_id, job_id, email, payload, occurred_at, recorded_at)
		VALUES
			(:event_id, :event_type, :session_id, :user_id, :job_id, :email, :payload, :occurred_at, :recorded_at)
		ON CONFLICT (event_id) DO NOTHING
	`

	result, err := s.db.NamedExecContext(ctx, query, record)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrEventAlreadyRecorded
	}

	s.logger.Debug("Event recorded",
		slog.String("event_id", event.ID),
		slog.String("event_type", string(event.Type)),
	)
	return nil
}

// CountByType returns how many events of each type occurred since the given time
func (s *Storage) CountByType(ctx context.Context, since time.Time) (map[string]int, error) {
	query := `
		SELECT event_type, COUNT(*) AS total
		FROM portal_events
		WHERE occurred_at >= $1
		GROUP BY event_type
	`

	var rows []struct {
		EventType string `db:"event_type"`
		Total     int    `db:"total"`
	}
	if err := s.db.SelectContext(ctx, &rows, query, since); err != nil {
		return nil, fmt.Errorf("failed to count events: %w", err)
	}

	counts := make(map[string]int, len(rows))
	for _, r := range rows {
		counts[r.EventType] = r.Total
	}
	return counts, nil
}
