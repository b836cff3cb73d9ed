package domain

import (
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/tmgnisc/zen-edu-hub-job-portal-sub000/internal/events"
)

// EventMessage is a decoded delivery waiting for a pool goroutine
type EventMessage struct {
	Event    events.Event
	Delivery amqp.Delivery
}

// EventRecord is a stored event row
type EventRecord struct {
	EventID    string    `db:"event_id"`
	EventType  string    `db:"event_type"`
	SessionID  string    `db:"session_id"`
	UserID     *int      `db:"user_id"`
	JobID      *int      `db:"job_id"`
	Email      string    `db:"email"`
	Payload    string    `db:"payload"`
	OccurredAt time.Time `db:"occurred_at"`
	RecordedAt time.Time `db:"recorded_at"`
}
