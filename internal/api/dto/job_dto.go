package dto

import (
	"time"

	"github.com/tmgnisc/zen-edu-hub-job-portal-sub000/internal/domain"
	"github.com/tmgnisc/zen-edu-hub-job-portal-sub000/internal/jobfilter"
	"github.com/tmgnisc/zen-edu-hub-job-portal-sub000/internal/textutil"
)

const excerptLength = 160

// ListJobsRequest is the query of the jobs board
type ListJobsRequest struct {
	Search   string `form:"search" binding:"max=200"`
	Category string `form:"category"`
	Location string `form:"location"`
	Status   string `form:"status"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
}

// Criteria converts the query into filter criteria
func (r ListJobsRequest) Criteria() jobfilter.Criteria {
	return jobfilter.Criteria{
		Search:   r.Search,
		Category: r.Category,
		Location: r.Location,
		Status:   r.Status,
	}.Normalize()
}

// JobSummaryDTO is a job card
type JobSummaryDTO struct {
	ID              int    `json:"id"`
	Title           string `json:"title"`
	CompanyName     string `json:"company_name"`
	CompanyLogo     string `json:"company_logo,omitempty"`
	Location        string `json:"location"`
	Category        string `json:"category"`
	JobType         string `json:"job_type"`
	JobTypeLabel    string `json:"job_type_label"`
	SalaryRange     string `json:"salary_range,omitempty"`
	Deadline        string `json:"deadline,omitempty"`
	DeadlineLabel   string `json:"deadline_label,omitempty"`
	DaysLeft        int    `json:"days_left"`
	IsClosed        bool   `json:"is_closed"`
	IsNew           bool   `json:"is_new"`
	IsHot           bool   `json:"is_hot"`
	ApplicantsCount int    `json:"applicants_count"`
	Excerpt         string `json:"excerpt"`
	Applied         bool   `json:"applied"`
}

// JobDetailDTO is the job detail page
type JobDetailDTO struct {
	JobSummaryDTO
	Description         string `json:"description"`
	DescriptionText     string `json:"description_text"`
	CompanyDescription  string `json:"company_description,omitempty"`
	ResumeRequired      bool   `json:"resume_required"`
	CoverLetterRequired bool   `json:"cover_letter_required"`
	CanApply            bool   `json:"can_apply"`
}

// FiltersDTO lists the drop-down options of the jobs board
type FiltersDTO struct {
	Categories []string `json:"categories"`
	Locations  []string `json:"locations"`
	Statuses   []string `json:"statuses"`
}

// PageDTO describes the current page
type PageDTO struct {
	Number     int  `json:"page"`
	Size       int  `json:"page_size"`
	TotalItems int  `json:"total_items"`
	TotalPages int  `json:"total_pages"`
	HasPrev    bool `json:"has_prev"`
	HasNext    bool `json:"has_next"`
}

// ListJobsResponse is one page of the jobs board
type ListJobsResponse struct {
	Jobs      []JobSummaryDTO    `json:"jobs"`
	Page      PageDTO            `json:"pagination"`
	Criteria  jobfilter.Criteria `json:"criteria"`
	Filters   FiltersDTO         `json:"filters"`
	NoResults bool               `json:"no_results"`
}

// CategoryDTO is a category with its job count
type CategoryDTO struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	JobCount int    `json:"job_count"`
}

// NewJobSummary builds a job card; applied marks jobs applied to this session
func NewJobSummary(job domain.Job, today time.Time, applied bool) JobSummaryDTO {
	closed := job.IsClosed(today)
	summary := JobSummaryDTO{
		ID:              job.ID,
		Title:           job.Title,
		CompanyName:     job.Company.Name,
		CompanyLogo:     job.Company.Logo,
		Location:        job.Company.Location,
		Category:        job.Category.Name,
		JobType:         job.JobType,
		JobTypeLabel:    textutil.JobTypeLabel(job.JobType),
		SalaryRange:     job.SalaryRange,
		Deadline:        job.Deadline.String(),
		DeadlineLabel:   textutil.FormatDate(job.Deadline),
		IsClosed:        closed,
		IsNew:           job.IsNew,
		IsHot:           job.IsHot,
		ApplicantsCount: job.ApplicantsCount,
		Excerpt:         textutil.Excerpt(job.Description, excerptLength),
		Applied:         applied,
	}
	if !closed && !job.Deadline.IsZero() {
		summary.DaysLeft = textutil.DaysLeft(job.Deadline, today)
	}
	return summary
}

// NewJobDetail builds the detail view of a job
func NewJobDetail(job domain.Job, today time.Time, applied bool) JobDetailDTO {
	summary := NewJobSummary(job, today, applied)
	return JobDetailDTO{
		JobSummaryDTO:       summary,
		Description:         job.Description,
		DescriptionText:     textutil.StripHTML(job.Description),
		CompanyDescription:  textutil.StripHTML(job.Company.Description),
		ResumeRequired:      job.ResumeRequired,
		CoverLetterRequired: job.CoverLetterRequired,
		CanApply:            !summary.IsClosed && !applied,
	}
}

// NewPage copies the pagination fields of p
func NewPage(p jobfilter.Page) PageDTO {
	return PageDTO{
		Number:     p.Number,
		Size:       p.Size,
		TotalItems: p.TotalItems,
		TotalPages: p.TotalPages,
		HasPrev:    p.HasPrev,
		HasNext:    p.HasNext,
	}
}
