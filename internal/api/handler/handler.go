package handler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tmgnisc/zen-edu-hub-job-portal-sub000/internal/backend"
	"github.com/tmgnisc/zen-edu-hub-job-portal-sub000/internal/domain"
	"github.com/tmgnisc/zen-edu-hub-job-portal-sub000/internal/events"
	"github.com/tmgnisc/zen-edu-hub-job-portal-sub000/internal/jobfilter"
	"github.com/tmgnisc/zen-edu-hub-job-portal-sub000/internal/session"
	"github.com/tmgnisc/zen-edu-hub-job-portal-sub000/internal/workflow"
)

// Backend is the recruitment API as used by the portal handlers
type Backend interface {
	workflow.Applier
	workflow.HistoryFetcher
	workflow.Authenticator
	workflow.Registrar
	workflow.PasswordResetter

	ListJobs(ctx context.Context) ([]domain.Job, error)
	GetJob(ctx context.Context, id int) (*domain.Job, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
	GetProfile(ctx context.Context, token string) (*domain.User, error)
	UpdateProfile(ctx context.Context, token string, update backend.ProfileUpdate) (*domain.User, error)
}

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Logger      *slog.Logger
	Backend     Backend
	Sessions    *session.Manager
	Events      *events.Emitter
	Submissions *workflow.Submissions

	JobsPageSize   int
	HomePageSize   int
	MaxUploadBytes int64

	// Now defaults to time.Now
	Now func() time.Time
}

// base is shared by every handler
type base struct {
	logger         *slog.Logger
	backend        Backend
	sessions       *session.Manager
	events         *events.Emitter
	submissions    *workflow.Submissions
	jobsPageSize   int
	homePageSize   int
	maxUploadBytes int64
	now            func() time.Time
}

func newBase(deps *Dependencies) base {
	b := base{
		logger:         deps.Logger,
		backend:        deps.Backend,
		sessions:       deps.Sessions,
		events:         deps.Events,
		submissions:    deps.Submissions,
		jobsPageSize:   deps.JobsPageSize,
		homePageSize:   deps.HomePageSize,
		maxUploadBytes: deps.MaxUploadBytes,
		now:            deps.Now,
	}
	if b.now == nil {
		b.now = time.Now
	}
	if b.jobsPageSize <= 0 {
		b.jobsPageSize = jobfilter.JobsPageSize
	}
	if b.homePageSize <= 0 {
		b.homePageSize = jobfilter.HomePageSize
	}
	if b.maxUploadBytes <= 0 {
		b.maxUploadBytes = 2*workflow.MaxDocumentSize + 1<<20
	}
	if b.submissions == nil {
		b.submissions = workflow.NewSubmissions()
	}
	return b
}

func (b *base) logCall(c *gin.Context, name string) {
	b.logger.Info(name+" called",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
	)
}

// emit publishes an activity event for sess. It never blocks the request.
func (b *base) emit(t events.Type, sess *session.Session, fill func(*events.Event)) {
	if b.events == nil {
		return
	}
	event := b.events.NewEvent(t)
	event.SessionID = sess.ID
	if sess.User != nil {
		event.UserID = sess.User.ID
		event.Email = sess.User.Email
	}
	if fill != nil {
		fill(&event)
	}
	b.events.Emit(event)
}

// save applies change to the stored session and refreshes sess. A failure is
// logged but does not fail the request; a session ended by a concurrent
// logout is left ended.
func (b *base) save(ctx context.Context, sess *session.Session, change func(*session.Session)) {
	err := b.sessions.Modify(ctx, sess, func(s *session.Session) error {
		change(s)
		return nil
	})
	if errors.Is(err, session.ErrSessionEnded) {
		b.logger.Warn("Session ended before save",
			slog.String("session_id", sess.ID),
		)
		return
	}
	if err != nil {
		b.logger.Error("Failed to save session",
			slog.String("session_id", sess.ID),
			slog.Any("error", err),
		)
	}
}

const sessionKey = "portal.session"

// SetSession attaches sess to the request
func SetSession(c *gin.Context, sess *session.Session) {
	c.Set(sessionKey, sess)
}

// CurrentSession returns the session attached by the session middleware.
// Requests that bypassed it get an empty anonymous session.
func CurrentSession(c *gin.Context) *session.Session {
	if v, ok := c.Get(sessionKey); ok {
		if sess, ok := v.(*session.Session); ok {
			return sess
		}
	}
	return &session.Session{}
}
