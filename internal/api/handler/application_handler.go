package handler

import (
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tmgnisc/zen-edu-hub-job-portal-sub000/internal/api/dto"
	"github.com/tmgnisc/zen-edu-hub-job-portal-sub000/internal/domain"
	"github.com/tmgnisc/zen-edu-hub-job-portal-sub000/internal/events"
	"github.com/tmgnisc/zen-edu-hub-job-portal-sub000/internal/session"
	"github.com/tmgnisc/zen-edu-hub-job-portal-sub000/internal/workflow"
)

// ApplicationHandler serves job applications
type ApplicationHandler struct {
	base
}

// NewApplicationHandler creates a new ApplicationHandler instance
func NewApplicationHandler(deps *Dependencies) *ApplicationHandler {
	return &ApplicationHandler{base: newBase(deps)}
}

// OpenApplication handles GET /api/v1/jobs/:id/apply
// Opens the application form, or tells the browser to sign in first
func (h *ApplicationHandler) OpenApplication(c *gin.Context) {
	h.logCall(c, "OpenApplication")
	sess := CurrentSession(c)

	app, job, err := h.open(c, sess)
	if err != nil {
		h.fail(c, sess, err)
		return
	}

	c.JSON(http.StatusOK, dto.ApplyFormResponse{
		JobID:        job.ID,
		JobTitle:     job.Title,
		Step:         string(app.Step()),
		Requirements: app.Requirements(),
		Accept:       workflow.AllowedDocumentExtensions,
		MaxFileBytes: workflow.MaxDocumentSize,
	})
}

func (h *ApplicationHandler) open(c *gin.Context, sess *session.Session) (*workflow.Application, *domain.Job, error) {
	id, err := jobID(c)
	if err != nil {
		return nil, nil, err
	}
	if !sess.Authenticated() {
		return nil, nil, workflow.ErrLoginRequired
	}

	job, err := h.backend.GetJob(c.Request.Context(), id)
	if err != nil {
		return nil, nil, err
	}

	app := workflow.NewApplication(*job)
	if err := app.Open(sess.Applicant(), h.applied(c, sess, id), h.now()); err != nil {
		return nil, nil, err
	}
	return app, job, nil
}

// SubmitApplication handles POST /api/v1/jobs/:id/apply
// Accepts a multipart form with the resume and cover_letter files the job requires
func (h *ApplicationHandler) SubmitApplication(c *gin.Context) {
	h.logCall(c, "SubmitApplication")
	sess := CurrentSession(c)
	ctx := c.Request.Context()

	id, err := jobID(c)
	if err != nil {
		h.fail(c, sess, err)
		return
	}
	if !sess.Authenticated() {
		h.fail(c, sess, workflow.ErrLoginRequired)
		return
	}

	done, err := h.submissions.Begin(sess.ID, id)
	if err != nil {
		h.fail(c, sess, err)
		return
	}
	defer done()

	app, job, err := h.open(c, sess)
	if err != nil {
		h.fail(c, sess, err)
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	resume, closeResume, err := formUpload(c, "resume")
	if err != nil {
		h.fail(c, sess, err)
		return
	}
	defer closeResume()
	coverLetter, closeCover, err := formUpload(c, "cover_letter")
	if err != nil {
		h.fail(c, sess, err)
		return
	}
	defer closeCover()

	submitted, err := app.Submit(ctx, h.backend, sess.Applicant(), workflow.Documents{
		Resume:      resume,
		CoverLetter: coverLetter,
	})
	if err != nil {
		h.fail(c, sess, err)
		return
	}

	if err := h.sessions.MarkApplied(ctx, sess, id); err != nil {
		h.logger.Error("Failed to mark job applied",
			slog.Int("job_id", id),
			slog.Any("error", err),
		)
	}

	h.emit(events.ApplicationSubmitted, sess, func(e *events.Event) {
		e.JobID = id
		e.Attributes = map[string]string{
			"job_title": job.Title,
			"company":   job.Company.Name,
		}
		if submitted != nil {
			e.Attributes["application_id"] = strconv.Itoa(submitted.ID)
		}
	})

	h.logger.Info("Application submitted",
		slog.Int("job_id", id),
		slog.String("session_id", sess.ID),
	)

	resp := dto.ApplicationDTO{JobID: id, JobTitle: job.Title, Status: domain.ApplicationStatusPending}
	if submitted != nil {
		resp = dto.NewApplication(*submitted)
		if resp.JobID == 0 {
			resp.JobID = id
		}
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":     "Application submitted successfully",
		"application": resp,
	})
}

// formUpload opens the uploaded file field name. A missing field is nil.
func formUpload(c *gin.Context, name string) (*workflow.Upload, func(), error) {
	noop := func() {}

	header, err := c.FormFile(name)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, noop, nil
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return nil, noop, domain.NewValidationError(name, "Uploaded files are too large")
	}
	if err != nil {
		return nil, noop, domain.NewValidationError(name, "Could not read the uploaded file")
	}

	file, err := header.Open()
	if err != nil {
		return nil, noop, domain.NewValidationError(name, "Could not read the uploaded file")
	}
	return upload(header, file), func() { _ = file.Close() }, nil
}

func upload(header *multipart.FileHeader, file multipart.File) *workflow.Upload {
	return &workflow.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Content:     file,
	}
}

// History handles GET /api/v1/applications
func (h *ApplicationHandler) History(c *gin.Context) {
	h.logCall(c, "History")
	sess := CurrentSession(c)

	history, err := h.backend.ApplicationHistory(c.Request.Context(), sess.Token)
	if err != nil {
		h.fail(c, sess, err)
		return
	}

	out := make([]dto.ApplicationDTO, 0, len(history))
	for _, app := range history {
		out = append(out, dto.NewApplication(app))
	}
	c.JSON(http.StatusOK, gin.H{
		"applications": out,
		"total":        len(out),
	})
}
