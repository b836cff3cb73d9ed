package workflow

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmgnisc/zen-edu-hub-job-portal-sub000/internal/domain"
)

var today = time.Date(2024, 5, 10, 15, 0, 0, 0, time.UTC)

func openJob() domain.Job {
	return domain.Job{
		ID:             7,
		Title:          "Staff Nurse",
		IsActive:       true,
		Deadline:       domain.NewDate(today.AddDate(0, 0, 3)),
		ResumeRequired: true,
	}
}

func applicant() *Applicant {
	return &Applicant{Token: "tok", User: domain.User{ID: 12, Email: "maya@example.com"}}
}

func pdf(name, content string) *Upload {
	return &Upload{Filename: name, ContentType: "application/pdf", Size: int64(len(content)), Content: strings.NewReader(content)}
}

func TestApplication_Open(t *testing.T) {
	closed := openJob()
	closed.IsActive = false

	tests := []struct {
		name      string
		job       domain.Job
		applicant *Applicant
		applied   bool
		wantErr   error
		wantStep  ApplicationStep
	}{
		{name: "opens modal", job: openJob(), applicant: applicant(), wantStep: ApplicationModalOpen},
		{name: "no session", job: openJob(), applicant: nil, wantErr: ErrLoginRequired, wantStep: ApplicationIdle},
		{name: "empty token", job: openJob(), applicant: &Applicant{}, wantErr: ErrLoginRequired, wantStep: ApplicationIdle},
		{name: "already applied", job: openJob(), applicant: applicant(), applied: true, wantErr: ErrAlreadyApplied, wantStep: ApplicationIdle},
		{name: "closed job", job: closed, applicant: applicant(), wantErr: ErrJobClosed, wantStep: ApplicationIdle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := NewApplication(tt.job)
			err := app.Open(tt.applicant, tt.applied, today)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantStep, app.Step())
		})
	}
}

func TestApplication_SubmitMissingDocumentNeverCallsAPI(t *testing.T) {
	job := openJob()
	job.CoverLetterRequired = true

	tests := []struct {
		name      string
		docs      Documents
		wantField string
		wantMsg   string
	}{
		{name: "no resume", docs: Documents{CoverLetter: pdf("cl.pdf", "x")}, wantField: "resume", wantMsg: "resume required"},
		{name: "no cover letter", docs: Documents{Resume: pdf("cv.pdf", "x")}, wantField: "cover_letter", wantMsg: "cover letter required"},
		{name: "wrong extension", docs: Documents{Resume: pdf("cv.exe", "x"), CoverLetter: pdf("cl.pdf", "x")}, wantField: "resume", wantMsg: "Resume must be a PDF or Word document"},
		{
			name:      "too large",
			docs:      Documents{Resume: pdf("cv.pdf", "x"), CoverLetter: &Upload{Filename: "cl.docx", Size: MaxDocumentSize + 1, Content: strings.NewReader("")}},
			wantField: "cover_letter",
			wantMsg:   "Cover letter must be smaller than 5 MB",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeAPI{}
			app := NewApplication(job)
			require.NoError(t, app.Open(applicant(), false, today))

			_, err := app.Submit(context.Background(), api, applicant(), tt.docs)

			var validationErr *domain.ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tt.wantField, validationErr.Field)
			assert.Equal(t, tt.wantMsg, validationErr.Message)
			assert.Empty(t, api.called())
			assert.Equal(t, ApplicationModalOpen, app.Step())
		})
	}
}

func TestApplication_SubmitSendsOnlyRequiredDocuments(t *testing.T) {
	api := &fakeAPI{}
	app := NewApplication(openJob())
	require.NoError(t, app.Open(applicant(), false, today))

	result, err := app.Submit(context.Background(), api, applicant(), Documents{
		Resume:      pdf("cv.PDF", "resume body"),
		CoverLetter: pdf("cl.pdf", "not required"),
	})
	require.NoError(t, err)

	assert.Equal(t, 7, result.Job.ID)
	assert.Equal(t, ApplicationSuccess, app.Step())
	assert.Equal(t, 12, api.applyForm.ApplicantID)
	assert.Equal(t, 7, api.applyForm.JobID)
	assert.Equal(t, "resume body", api.resume)
	assert.Nil(t, api.applyForm.CoverLetter)
}

func TestApplication_SubmitFailureAllowsRetry(t *testing.T) {
	api := &fakeAPI{applyErr: &domain.APIError{Status: 400, Message: "You have already applied"}}
	app := NewApplication(openJob())
	require.NoError(t, app.Open(applicant(), false, today))

	_, err := app.Submit(context.Background(), api, applicant(), Documents{Resume: pdf("cv.pdf", "a")})
	require.Error(t, err)
	assert.Equal(t, ApplicationModalOpen, app.Step())
	assert.Equal(t, "You have already applied", domain.UserMessage(app.Err()))

	api.applyErr = nil
	_, err = app.Submit(context.Background(), api, applicant(), Documents{Resume: pdf("cv.pdf", "a")})
	require.NoError(t, err)
	assert.Equal(t, ApplicationSuccess, app.Step())
	assert.Nil(t, app.Err())
}

func TestApplication_SubmitWhileSubmitting(t *testing.T) {
	api := &fakeAPI{applyBlock: make(chan struct{})}
	app := NewApplication(openJob())
	require.NoError(t, app.Open(applicant(), false, today))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = app.Submit(context.Background(), api, applicant(), Documents{Resume: pdf("cv.pdf", "a")})
	}()

	require.Eventually(t, func() bool { return app.Step() == ApplicationSubmitting }, time.Second, time.Millisecond)

	_, err := app.Submit(context.Background(), api, applicant(), Documents{Resume: pdf("cv.pdf", "a")})
	assert.ErrorIs(t, err, ErrSubmitInFlight)

	close(api.applyBlock)
	wg.Wait()
	assert.Equal(t, ApplicationSuccess, app.Step())
	assert.Len(t, api.called(), 1)
}

func TestApplication_SubmitBeforeOpen(t *testing.T) {
	app := NewApplication(openJob())
	_, err := app.Submit(context.Background(), &fakeAPI{}, applicant(), Documents{})

	var transitionErr *TransitionError
	require.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, "submit", transitionErr.Action)
}

func TestApplication_Close(t *testing.T) {
	app := NewApplication(openJob())
	require.NoError(t, app.Open(applicant(), false, today))
	app.Close()
	assert.Equal(t, ApplicationIdle, app.Step())
	assert.Equal(t, Requirements{Resume: true}, app.Requirements())
}

func TestSubmissions(t *testing.T) {
	subs := NewSubmissions()

	done, err := subs.Begin("s1", 7)
	require.NoError(t, err)

	_, err = subs.Begin("s1", 7)
	assert.ErrorIs(t, err, ErrSubmitInFlight)

	other, err := subs.Begin("s1", 8)
	require.NoError(t, err)
	other()

	done()
	again, err := subs.Begin("s1", 7)
	require.NoError(t, err)
	again()
}

func TestDetectApplied(t *testing.T) {
	history := []domain.Application{{ID: 1, Job: domain.ApplicationJob{ID: 7}}}

	tests := []struct {
		name  string
		api   *fakeAPI
		token string
		want  bool
		calls int
	}{
		{name: "in history", api: &fakeAPI{history: history}, token: "tok", want: true, calls: 1},
		{name: "not in history", api: &fakeAPI{history: []domain.Application{{Job: domain.ApplicationJob{ID: 2}}}}, token: "tok", calls: 1},
		{name: "history fails", api: &fakeAPI{historyErr: errors.New("boom")}, token: "tok", calls: 1},
		{name: "anonymous", api: &fakeAPI{history: history}, calls: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectApplied(context.Background(), tt.api, tt.token, 7))
			assert.Len(t, tt.api.called(), tt.calls)
		})
	}
}
