package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tmgnisc/zen-edu-hub-job-portal-sub000/internal/domain"
)

// ChangeKind identifies a sign-in change
type ChangeKind string

const (
	LoggedIn       ChangeKind = "logged_in"
	LoggedOut      ChangeKind = "logged_out"
	ProfileUpdated ChangeKind = "profile_updated"
)

// Change is delivered to listeners after a sign-in change was saved
type Change struct {
	Kind      ChangeKind
	SessionID string
	User      domain.User
}

// Listener receives session changes. It runs synchronously on the request
// goroutine and must not block.
type Listener func(ctx context.Context, change Change)

// Manager reads and writes sessions and notifies listeners of changes
type Manager struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time

	mu        sync.RWMutex
	listeners map[int]Listener
	nextID    int
}

// NewManager creates a manager on top of store
func NewManager(store Store, logger *slog.Logger) *Manager {
	return &Manager{
		store:     store,
		logger:    logger,
		now:       time.Now,
		listeners: make(map[int]Listener),
	}
}

// ErrSessionEnded is returned when a change targets a session that was
// deleted after it was loaded, typically by a logout on another request
var ErrSessionEnded error = &domain.AuthError{Reason: "session ended"}

// Get returns the session with id, or a new unsaved session when id is empty,
// unknown or expired
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	if id != "" {
		sess, err := m.store.Load(ctx, id)
		if err == nil {
			sess.stored = true
			return sess, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("failed to get session: %w", err)
		}
	}

	now := m.now().UTC()
	return &Session{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now}, nil
}

// Modify applies fn to the stored copy of sess and refreshes sess with the
// result, so fields fn leaves alone keep what other requests wrote meanwhile.
// A session that was never saved is created with fn applied. A session that
// was deleted since it was loaded stays deleted and ErrSessionEnded is
// returned. fn may run more than once.
func (m *Manager) Modify(ctx context.Context, sess *Session, fn func(*Session) error) error {
	now := m.now().UTC()
	var rejected error
	change := func(s *Session) error {
		if err := fn(s); err != nil {
			rejected = err
			return err
		}
		s.UpdatedAt = now
		return nil
	}

	if !sess.stored {
		fresh := *sess
		if err := change(&fresh); err != nil {
			return err
		}
		err := m.store.Create(ctx, &fresh)
		if err == nil {
			fresh.stored = true
			*sess = fresh
			return nil
		}
		if !errors.Is(err, ErrExists) {
			return fmt.Errorf("failed to save session: %w", err)
		}
	}

	updated, err := m.store.Modify(ctx, sess.ID, change)
	if err != nil {
		switch {
		case rejected != nil && errors.Is(err, rejected):
			return rejected
		case errors.Is(err, ErrNotFound):
			return ErrSessionEnded
		}
		return fmt.Errorf("failed to save session: %w", err)
	}
	updated.stored = true
	*sess = *updated
	return nil
}

// Login stores the token and user in sess. Any sign-up or reset in progress
// is finished by signing in, so it is dropped. Signing in on a session that
// a concurrent logout removed starts it again under the same id.
func (m *Manager) Login(ctx context.Context, sess *Session, token string, user domain.User) error {
	if token == "" {
		return errors.New("login requires a token")
	}

	signIn := func(s *Session) error {
		s.Token = token
		s.User = &user
		s.AppliedJobs = nil
		s.Registration = nil
		s.PasswordReset = nil
		return nil
	}
	err := m.Modify(ctx, sess, signIn)
	if errors.Is(err, ErrSessionEnded) {
		sess.clear()
		sess.JobsView = nil
		sess.stored = false
		err = m.Modify(ctx, sess, signIn)
	}
	if err != nil {
		return err
	}

	m.notify(ctx, Change{Kind: LoggedIn, SessionID: sess.ID, User: user})
	return nil
}

// Logout clears everything held by sess and removes it from the store
func (m *Manager) Logout(ctx context.Context, sess *Session) error {
	var user domain.User
	wasAuthenticated := sess.Authenticated()
	if wasAuthenticated {
		user = *sess.User
	}

	sess.clear()
	if err := m.store.Delete(ctx, sess.ID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	sess.stored = false

	if wasAuthenticated {
		m.notify(ctx, Change{Kind: LoggedOut, SessionID: sess.ID, User: user})
	}
	return nil
}

// MarkApplied records that the user applied to jobID during this session
func (m *Manager) MarkApplied(ctx context.Context, sess *Session, jobID int) error {
	if sess.HasApplied(jobID) {
		return nil
	}
	return m.Modify(ctx, sess, func(s *Session) error {
		s.markApplied(jobID)
		return nil
	})
}

// UpdateUser replaces the stored profile of a signed-in session
func (m *Manager) UpdateUser(ctx context.Context, sess *Session, user domain.User) error {
	if !sess.Authenticated() {
		return &domain.AuthError{Reason: "no signed-in user"}
	}

	err := m.Modify(ctx, sess, func(s *Session) error {
		if !s.Authenticated() {
			return &domain.AuthError{Reason: "signed out"}
		}
		s.User = &user
		return nil
	})
	if err != nil {
		return err
	}

	m.notify(ctx, Change{Kind: ProfileUpdated, SessionID: sess.ID, User: user})
	return nil
}

// Subscribe registers l and returns a func that removes it
func (m *Manager) Subscribe(l Listener) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	m.listeners[id] = l

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.listeners, id)
	}
}

func (m *Manager) notify(ctx context.Context, change Change) {
	m.mu.RLock()
	listeners := make([]Listener, 0, len(m.listeners))
	for _, l := range m.listeners {
		listeners = append(listeners, l)
	}
	m.mu.RUnlock()

	m.logger.Debug("Session changed",
		slog.String("kind", string(change.Kind)),
		slog.String("session_id", change.SessionID),
		slog.Int("user_id", change.User.ID),
	)

	for _, l := range listeners {
		l(ctx, change)
	}
}
