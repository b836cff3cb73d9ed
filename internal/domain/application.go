package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Application status values. Status is only ever changed by the backend.
const (
	ApplicationStatusPending  = "pending"
	ApplicationStatusAccepted = "accepted"
	ApplicationStatusRejected = "rejected"
)

// ApplicationJob is the job reference carried by an application. The API
// sends either a bare job id or an embedded job summary.
type ApplicationJob struct {
	ID          int    `json:"id"`
	Title       string `json:"title,omitempty"`
	CompanyName string `json:"company_name,omitempty"`
}

func (j *ApplicationJob) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*j = ApplicationJob{}
		return nil
	}
	if len(data) > 0 && data[0] != '{' {
		var id int
		if err := json.Unmarshal(data, &id); err != nil {
			return fmt.Errorf("invalid job reference: %w", err)
		}
		*j = ApplicationJob{ID: id}
		return nil
	}

	var full struct {
		ID          int     `json:"id"`
		Title       string  `json:"title"`
		CompanyName string  `json:"company_name"`
		Company     Company `json:"company"`
	}
	if err := json.Unmarshal(data, &full); err != nil {
		return fmt.Errorf("invalid job reference: %w", err)
	}
	*j = ApplicationJob{ID: full.ID, Title: full.Title, CompanyName: full.CompanyName}
	if j.CompanyName == "" {
		j.CompanyName = full.Company.Name
	}
	return nil
}

// Application links the current user to a job
type Application struct {
	ID          int            `json:"id"`
	Job         ApplicationJob `json:"job"`
	Status      string         `json:"status"`
	AppliedDate Date           `json:"applied_date"`
	Resume      string         `json:"resume,omitempty"`
	CoverLetter string         `json:"cover_letter,omitempty"`
}

// HasApplied reports whether history contains an application for jobID
func HasApplied(history []Application, jobID int) bool {
	for _, app := range history {
		if app.Job.ID == jobID {
			return true
		}
	}
	return false
}
