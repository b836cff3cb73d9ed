package dto

import (
	"github.com/tmgnisc/zen-edu-hub-job-portal-sub000/internal/domain"
	"github.com/tmgnisc/zen-edu-hub-job-portal-sub000/internal/workflow"
)

// ApplyFormResponse opens the application modal
type ApplyFormResponse struct {
	JobID        int                   `json:"job_id"`
	JobTitle     string                `json:"job_title"`
	Step         string                `json:"step"`
	Requirements workflow.Requirements `json:"requirements"`
	Accept       []string              `json:"accept"`
	MaxFileBytes int64                 `json:"max_file_bytes"`
}

// ApplicationDTO is one application in the history or a submit response
type ApplicationDTO struct {
	ID          int         `json:"id"`
	JobID       int         `json:"job_id"`
	JobTitle    string      `json:"job_title,omitempty"`
	CompanyName string      `json:"company_name,omitempty"`
	Status      string      `json:"status"`
	AppliedDate domain.Date `json:"applied_date"`
	AppliedOn   string      `json:"applied_on"`
	Resume      string      `json:"resume,omitempty"`
	CoverLetter string      `json:"cover_letter,omitempty"`
}

// NewApplication converts an API application
func NewApplication(app domain.Application) ApplicationDTO {
	out := ApplicationDTO{
		ID:          app.ID,
		JobID:       app.Job.ID,
		JobTitle:    app.Job.Title,
		CompanyName: app.Job.CompanyName,
		Status:      app.Status,
		AppliedDate: app.AppliedDate,
		Resume:      app.Resume,
		CoverLetter: app.CoverLetter,
	}
	if !app.AppliedDate.IsZero() {
		out.AppliedOn = app.AppliedDate.Format("Jan 2, 2006")
	}
	return out
}

// ProfileUpdateRequest lists the editable profile fields
type ProfileUpdateRequest struct {
	FirstName string `form:"first_name" binding:"omitempty,max=150"`
	LastName  string `form:"last_name" binding:"omitempty,max=150"`
	Phone     string `form:"phone" binding:"omitempty,max=20"`
	Location  string `form:"location" binding:"omitempty,max=255"`
	Bio       string `form:"bio" binding:"omitempty,max=2000"`
}
