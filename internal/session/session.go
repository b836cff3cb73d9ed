// Package session keeps the per-browser portal state: the API token, the
// signed-in user, the jobs applied to during the session and any sign-up or
// password reset in progress. Sessions live in a Store and are changed
// through a Manager, which notifies subscribers of sign-in changes.
package session

import (
	"slices"
	"time"

	"github.com/tmgnisc/zen-edu-hub-job-portal-sub000/internal/domain"
	"github.com/tmgnisc/zen-edu-hub-job-portal-sub000/internal/jobfilter"
	"github.com/tmgnisc/zen-edu-hub-job-portal-sub000/internal/workflow"
)

// Session is the state of one browser session
type Session struct {
	ID            string                  `json:"id"`
	Token         string                  `json:"token,omitempty"`
	User          *domain.User            `json:"user,omitempty"`
	AppliedJobs   []int                   `json:"applied_jobs,omitempty"`
	JobsView      *jobfilter.ViewState    `json:"jobs_view,omitempty"`
	Registration  *workflow.Registration  `json:"registration,omitempty"`
	PasswordReset *workflow.PasswordReset `json:"password_reset,omitempty"`
	CreatedAt     time.Time               `json:"created_at"`
	UpdatedAt     time.Time               `json:"updated_at"`

	// stored is set once the session was loaded from or written to the store
	stored bool
}

// Authenticated reports whether the session holds a token and a user
func (s *Session) Authenticated() bool {
	return s != nil && s.Token != "" && s.User != nil
}

// Applicant returns the signed-in applicant, or nil for anonymous sessions
func (s *Session) Applicant() *workflow.Applicant {
	if !s.Authenticated() {
		return nil
	}
	return &workflow.Applicant{Token: s.Token, User: *s.User}
}

// HasApplied reports whether jobID was applied to during this session
func (s *Session) HasApplied(jobID int) bool {
	return slices.Contains(s.AppliedJobs, jobID)
}

func (s *Session) markApplied(jobID int) {
	if !s.HasApplied(jobID) {
		s.AppliedJobs = append(s.AppliedJobs, jobID)
	}
}

func (s *Session) clear() {
	s.Token = ""
	s.User = nil
	s.AppliedJobs = nil
	s.Registration = nil
	s.PasswordReset = nil
}
