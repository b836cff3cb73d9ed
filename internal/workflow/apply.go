package workflow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/tmgnisc/zen-edu-hub-job-portal-sub000/internal/backend"
	"github.com/tmgnisc/zen-edu-hub-job-portal-sub000/internal/domain"
)

// MaxDocumentSize is the largest resume or cover letter accepted for upload
const MaxDocumentSize = 5 << 20

// AllowedDocumentExtensions lists the accepted document file types
var AllowedDocumentExtensions = []string{".pdf", ".doc", ".docx"}

var (
	// ErrLoginRequired means the user must sign in before applying
	ErrLoginRequired = errors.New("login required to apply")

	// ErrAlreadyApplied means the user has an application for this job
	ErrAlreadyApplied = errors.New("already applied to this job")

	// ErrJobClosed means the job no longer accepts applications
	ErrJobClosed = errors.New("job is closed")

	// ErrSubmitInFlight means a submission for the same job is still running
	ErrSubmitInFlight = errors.New("application submission already in progress")
)

// ApplicationStep is the state of an application for one job
type ApplicationStep string

const (
	ApplicationIdle       ApplicationStep = "idle"
	ApplicationModalOpen  ApplicationStep = "modal_open"
	ApplicationSubmitting ApplicationStep = "submitting"
	ApplicationSuccess    ApplicationStep = "success"
	ApplicationFailure    ApplicationStep = "failure"
)

// Applier submits applications
type Applier interface {
	ApplyToJob(ctx context.Context, token string, jobID int, form backend.ApplicationForm) (*domain.Application, error)
}

// HistoryFetcher returns the application history of a user
type HistoryFetcher interface {
	ApplicationHistory(ctx context.Context, token string) ([]domain.Application, error)
}

// Upload is a document chosen by the applicant
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}

// Documents are the files attached to an application
type Documents struct {
	Resume      *Upload
	CoverLetter *Upload
}

// Requirements lists which documents a job asks for
type Requirements struct {
	Resume      bool `json:"resume"`
	CoverLetter bool `json:"cover_letter"`
}

// Applicant is the signed-in user applying
type Applicant struct {
	Token string
	User  domain.User
}

// Application drives a single job application. It is safe for concurrent use;
// a second Submit while one is running fails with ErrSubmitInFlight.
type Application struct {
	mu      sync.Mutex
	job     domain.Job
	step    ApplicationStep
	lastErr error
}

// NewApplication creates an idle application for job
func NewApplication(job domain.Job) *Application {
	return &Application{job: job, step: ApplicationIdle}
}

// Step returns the current step
func (a *Application) Step() ApplicationStep {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.step
}

// Err returns the error of the last failed submission
func (a *Application) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastErr
}

// Requirements returns the documents the job requires
func (a *Application) Requirements() Requirements {
	return Requirements{Resume: a.job.ResumeRequired, CoverLetter: a.job.CoverLetterRequired}
}

// Open moves Idle to ModalOpen. A missing applicant never opens the modal.
func (a *Application) Open(applicant *Applicant, applied bool, today time.Time) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.step != ApplicationIdle && a.step != ApplicationFailure {
		return &TransitionError{Flow: "application", Step: string(a.step), Action: "open"}
	}
	switch {
	case applicant == nil || applicant.Token == "":
		return ErrLoginRequired
	case applied:
		return ErrAlreadyApplied
	case a.job.IsClosed(today):
		return ErrJobClosed
	}

	a.step = ApplicationModalOpen
	a.lastErr = nil
	return nil
}

// Submit validates docs and sends the application. Validation failures keep
// the modal open without calling api; API failures return to ModalOpen so the
// user can retry.
func (a *Application) Submit(ctx context.Context, api Applier, applicant *Applicant, docs Documents) (*domain.Application, error) {
	a.mu.Lock()
	switch a.step {
	case ApplicationSubmitting:
		a.mu.Unlock()
		return nil, ErrSubmitInFlight
	case ApplicationModalOpen:
	default:
		step := a.step
		a.mu.Unlock()
		return nil, &TransitionError{Flow: "application", Step: string(step), Action: "submit"}
	}

	if applicant == nil || applicant.Token == "" {
		a.mu.Unlock()
		return nil, &domain.AuthError{Reason: "session expired"}
	}

	form, err := a.buildForm(applicant, docs)
	if err != nil {
		a.lastErr = err
		a.mu.Unlock()
		return nil, err
	}
	a.step = ApplicationSubmitting
	a.mu.Unlock()

	app, err := api.ApplyToJob(ctx, applicant.Token, a.job.ID, form)

	a.mu.Lock()
	defer a.mu.Unlock()
	if err != nil {
		a.step = ApplicationModalOpen
		a.lastErr = err
		return nil, err
	}
	a.step = ApplicationSuccess
	a.lastErr = nil
	return app, nil
}

// Close abandons an open modal
func (a *Application) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.step == ApplicationModalOpen {
		a.step = ApplicationIdle
		a.lastErr = nil
	}
}

// buildForm attaches only the documents the job requires
func (a *Application) buildForm(applicant *Applicant, docs Documents) (backend.ApplicationForm, error) {
	form := backend.ApplicationForm{ApplicantID: applicant.User.ID, JobID: a.job.ID}

	if a.job.ResumeRequired {
		if docs.Resume == nil {
			return form, domain.NewValidationError("resume", "resume required")
		}
		if err := checkUpload("resume", docs.Resume); err != nil {
			return form, err
		}
		form.Resume = docs.Resume.document()
	}
	if a.job.CoverLetterRequired {
		if docs.CoverLetter == nil {
			return form, domain.NewValidationError("cover_letter", "cover letter required")
		}
		if err := checkUpload("cover_letter", docs.CoverLetter); err != nil {
			return form, err
		}
		form.CoverLetter = docs.CoverLetter.document()
	}
	return form, nil
}

func checkUpload(field string, u *Upload) error {
	ext := strings.ToLower(filepath.Ext(u.Filename))
	allowed := false
	for _, e := range AllowedDocumentExtensions {
		if ext == e {
			allowed = true
			break
		}
	}
	if !allowed {
		return domain.NewValidationError(field, fmt.Sprintf("%s must be a PDF or Word document", label(field)))
	}
	if u.Size > MaxDocumentSize {
		return domain.NewValidationError(field, fmt.Sprintf("%s must be smaller than %d MB", label(field), MaxDocumentSize>>20))
	}
	return nil
}

func label(field string) string {
	if field == "cover_letter" {
		return "Cover letter"
	}
	return "Resume"
}

func (u *Upload) document() *backend.Document {
	return &backend.Document{Filename: u.Filename, ContentType: u.ContentType, Content: u.Content}
}

// DetectApplied reports whether the token's user already applied to jobID.
// It is best-effort: any failure reads as not applied.
func DetectApplied(ctx context.Context, api HistoryFetcher, token string, jobID int) bool {
	if token == "" {
		return false
	}
	history, err := api.ApplicationHistory(ctx, token)
	if err != nil {
		return false
	}
	return domain.HasApplied(history, jobID)
}

// Submissions tracks application submissions running across requests so a
// double-clicked submit for the same session and job is rejected.
type Submissions struct {
	mu     sync.Mutex
	active map[string]struct{}
}

// NewSubmissions creates an empty tracker
func NewSubmissions() *Submissions {
	return &Submissions{active: make(map[string]struct{})}
}

// Begin registers a submission. The returned func must be called when it ends.
func (s *Submissions) Begin(sessionID string, jobID int) (func(), error) {
	key := fmt.Sprintf("%s/%d", sessionID, jobID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.active[key]; ok {
		return nil, ErrSubmitInFlight
	}
	s.active[key] = struct{}{}

	return func() {
		s.mu.Lock()
		delete(s.active, key)
		s.mu.Unlock()
	}, nil
}
