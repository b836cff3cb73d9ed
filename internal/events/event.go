// Package events publishes portal activity (sign-ins, registrations,
// applications) for the events-worker to record.
package events

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Type names an activity
type Type string

const (
	ApplicationSubmitted   Type = "application.submitted"
	UserRegistered         Type = "user.registered"
	UserLoggedIn           Type = "user.logged_in"
	UserLoggedOut          Type = "user.logged_out"
	PasswordResetCompleted Type = "password.reset_completed"
	ProfileUpdated         Type = "profile.updated"
)

var knownTypes = map[Type]bool{
	ApplicationSubmitted:   true,
	UserRegistered:         true,
	UserLoggedIn:           true,
	UserLoggedOut:          true,
	PasswordResetCompleted: true,
	ProfileUpdated:         true,
}

// Known reports whether t is an activity the portal emits
func (t Type) Known() bool {
	return knownTypes[t]
}

// ErrInvalidEvent is wrapped by Validate failures
var ErrInvalidEvent = errors.New("invalid event")

// Event is one portal activity
type Event struct {
	ID         string            `json:"event_id"`
	Type       Type              `json:"event_type"`
	OccurredAt time.Time         `json:"occurred_at"`
	SessionID  string            `json:"session_id,omitempty"`
	UserID     int               `json:"user_id,omitempty"`
	Email      string            `json:"email,omitempty"`
	JobID      int               `json:"job_id,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// New creates an event with a fresh ID
func New(t Type, now time.Time) Event {
	return Event{ID: uuid.NewString(), Type: t, OccurredAt: now.UTC()}
}

// Validate checks the fields every consumer relies on
func (e Event) Validate() error {
	if _, err := uuid.Parse(e.ID); err != nil {
		return fmt.Errorf("%w: event_id %q is not a UUID", ErrInvalidEvent, e.ID)
	}
	if !e.Type.Known() {
		return fmt.Errorf("%w: unknown event_type %q", ErrInvalidEvent, e.Type)
	}
	if e.OccurredAt.IsZero() {
		return fmt.Errorf("%w: occurred_at is required", ErrInvalidEvent)
	}
	if e.Type == ApplicationSubmitted && e.JobID == 0 {
		return fmt.Errorf("%w: job_id is required for %s", ErrInvalidEvent, e.Type)
	}
	return nil
}
