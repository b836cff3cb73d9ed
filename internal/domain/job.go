package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Job type values as sent by the recruitment API
const (
	JobTypeFullTime = "full_time"
	JobTypePartTime = "part_time"
)

// DateLayout is the wire format of date-only fields
const DateLayout = "2006-01-02"

// Date is a calendar date without time-of-day. The zero value means "not set".
type Date struct {
	time.Time
}

// NewDate takes t's calendar date in its own location and returns it as a
// UTC midnight
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseDate accepts "2006-01-02" and RFC3339 timestamps
func ParseDate(s string) (Date, error) {
	if s == "" {
		return Date{}, nil
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return NewDate(t), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return NewDate(t), nil
}

// Before reports whether d is strictly earlier than other, comparing dates only
func (d Date) Before(other Date) bool {
	return d.Time.Before(other.Time)
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(DateLayout))
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Company owns a job posting. It is embedded in every job, not normalized.
type Company struct {
	Name        string `json:"name"`
	Location    string `json:"location"`
	Logo        string `json:"logo"`
	Description string `json:"description"`
}

// Category groups jobs. JobCount is computed by the server.
type Category struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	JobCount int    `json:"job_count"`
}

// Job is a recruitment posting. It is read-only to the portal.
type Job struct {
	ID                  int      `json:"id"`
	Title               string   `json:"title"`
	Description         string   `json:"description"`
	JobType             string   `json:"job_type"`
	SalaryRange         string   `json:"salary_range"`
	Deadline            Date     `json:"deadline"`
	IsActive            bool     `json:"is_active"`
	IsNew               bool     `json:"is_new"`
	IsHot               bool     `json:"is_hot"`
	ResumeRequired      bool     `json:"resume_required"`
	CoverLetterRequired bool     `json:"cover_letter_required"`
	ApplicantsCount     int      `json:"applicants_count"`
	Company             Company  `json:"company"`
	Category            Category `json:"category"`
}

// IsClosed reports whether the job no longer accepts applications: it is
// inactive, or its deadline lies before today. Only dates are compared.
func (j Job) IsClosed(today time.Time) bool {
	if !j.IsActive {
		return true
	}
	if j.Deadline.IsZero() {
		return false
	}
	return j.Deadline.Before(NewDate(today))
}
