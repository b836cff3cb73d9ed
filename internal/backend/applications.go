package backend

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/tmgnisc/zen-edu-hub-job-portal-sub000/internal/domain"
)

// ApplicationForm is the multipart payload of an application. Only the
// documents the job requires are set.
type ApplicationForm struct {
	ApplicantID int
	JobID       int
	Resume      *Document
	CoverLetter *Document
}

// ApplyToJob submits an application for jobID on behalf of the token's user
func (c *Client) ApplyToJob(ctx context.Context, token string, jobID int, form ApplicationForm) (*domain.Application, error) {
	if token == "" {
		return nil, &domain.AuthError{Reason: "no session token for apply"}
	}

	body := newMultipartBody()
	if err := body.field("job", strconv.Itoa(jobID)); err != nil {
		return nil, err
	}
	if form.ApplicantID != 0 {
		if err := body.field("applicant", strconv.Itoa(form.ApplicantID)); err != nil {
			return nil, err
		}
	}
	if err := body.file("resume", form.Resume); err != nil {
		return nil, err
	}
	if err := body.file("cover_letter", form.CoverLetter); err != nil {
		return nil, err
	}
	reader, contentType, err := body.close()
	if err != nil {
		return nil, err
	}

	var app domain.Application
	err = c.do(ctx, request{
		op:          "apply to job",
		method:      http.MethodPost,
		path:        fmt.Sprintf("/jobs/%d/apply/", jobID),
		token:       token,
		auth:        true,
		body:        reader,
		contentType: contentType,
	}, &app)
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// ApplicationHistory returns the applications of the token's user
func (c *Client) ApplicationHistory(ctx context.Context, token string) ([]domain.Application, error) {
	var apps []domain.Application
	err := c.do(ctx, request{
		op:     "application history",
		method: http.MethodGet,
		path:   "/applications/history/",
		token:  token,
		auth:   true,
	}, &apps)
	if err != nil {
		return nil, err
	}
	return apps, nil
}
