package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/tmgnisc/zen-edu-hub-job-portal-sub000/internal/api/dto"
	"github.com/tmgnisc/zen-edu-hub-job-portal-sub000/internal/domain"
	"github.com/tmgnisc/zen-edu-hub-job-portal-sub000/internal/jobfilter"
	"github.com/tmgnisc/zen-edu-hub-job-portal-sub000/internal/session"
	"github.com/tmgnisc/zen-edu-hub-job-portal-sub000/internal/workflow"
)

// JobHandler serves the job board
type JobHandler struct {
	base
}

// NewJobHandler creates a new JobHandler instance
func NewJobHandler(deps *Dependencies) *JobHandler {
	return &JobHandler{base: newBase(deps)}
}

// ListJobs handles GET /api/v1/jobs
// Filters every job with the query criteria and returns one page. Changing a
// criterion since the previous request of the session resets to page 1.
func (h *JobHandler) ListJobs(c *gin.Context) {
	h.logCall(c, "ListJobs")
	sess := CurrentSession(c)
	ctx := c.Request.Context()

	var req dto.ListJobsRequest
	if err := bind(c, &req, binding.Query); err != nil {
		h.fail(c, sess, err)
		return
	}

	jobs, err := h.backend.ListJobs(ctx)
	if err != nil {
		h.fail(c, sess, err)
		return
	}

	categories, err := h.backend.ListCategories(ctx)
	if err != nil {
		h.logger.Warn("Failed to load categories for filters", slog.Any("error", err))
	}

	view := h.restoreView(sess, req)
	today := h.now()
	page := view.Render(jobs, today)

	state := view.State()
	state.Page = page.Number
	h.save(ctx, sess, func(s *session.Session) { s.JobsView = &state })

	summaries := make([]dto.JobSummaryDTO, 0, len(page.Items))
	for _, job := range page.Items {
		summaries = append(summaries, dto.NewJobSummary(job, today, sess.HasApplied(job.ID)))
	}

	c.JSON(http.StatusOK, dto.ListJobsResponse{
		Jobs:     summaries,
		Page:     dto.NewPage(page),
		Criteria: view.Criteria(),
		Filters: dto.FiltersDTO{
			Categories: jobfilter.CategoryNames(categories),
			Locations:  jobfilter.Locations(jobs),
			Statuses:   jobfilter.Statuses(),
		},
		NoResults: page.NoResults(),
	})
}

func (h *JobHandler) restoreView(sess *session.Session, req dto.ListJobsRequest) *jobfilter.View {
	if sess.JobsView == nil {
		view := jobfilter.NewView(h.jobsPageSize)
		view.SetCriteria(req.Criteria())
		view.GoTo(req.Page)
		return view
	}

	view := jobfilter.RestoreView(*sess.JobsView, h.jobsPageSize)
	previous := view.Criteria()
	view.SetCriteria(req.Criteria())
	if view.Criteria() == previous && req.Page > 0 {
		view.GoTo(req.Page)
	}
	return view
}

// Featured handles GET /api/v1/jobs/featured
// Returns the open jobs shown on the home page
func (h *JobHandler) Featured(c *gin.Context) {
	h.logCall(c, "Featured")
	sess := CurrentSession(c)

	jobs, err := h.backend.ListJobs(c.Request.Context())
	if err != nil {
		h.fail(c, sess, err)
		return
	}

	today := h.now()
	open := jobfilter.Filter(jobs, jobfilter.Criteria{Status: jobfilter.StatusActive}, today)
	page := jobfilter.Paginate(open, 1, h.homePageSize)

	summaries := make([]dto.JobSummaryDTO, 0, len(page.Items))
	for _, job := range page.Items {
		summaries = append(summaries, dto.NewJobSummary(job, today, sess.HasApplied(job.ID)))
	}
	c.JSON(http.StatusOK, gin.H{
		"jobs":       summaries,
		"total_open": page.TotalItems,
	})
}

// GetJob handles GET /api/v1/jobs/:id
func (h *JobHandler) GetJob(c *gin.Context) {
	h.logCall(c, "GetJob")
	sess := CurrentSession(c)

	id, err := jobID(c)
	if err != nil {
		h.fail(c, sess, err)
		return
	}

	job, err := h.backend.GetJob(c.Request.Context(), id)
	if err != nil {
		h.fail(c, sess, err)
		return
	}

	applied := h.applied(c, sess, id)
	c.JSON(http.StatusOK, dto.NewJobDetail(*job, h.now(), applied))
}

// applied checks the session first, then the application history. A match
// found in the history is remembered in the session.
func (b *base) applied(c *gin.Context, sess *session.Session, id int) bool {
	if sess.HasApplied(id) {
		return true
	}
	if !sess.Authenticated() {
		return false
	}

	ctx := c.Request.Context()
	if !workflow.DetectApplied(ctx, b.backend, sess.Token, id) {
		return false
	}
	if err := b.sessions.MarkApplied(ctx, sess, id); err != nil {
		b.logger.Warn("Failed to remember applied job",
			slog.Int("job_id", id),
			slog.Any("error", err),
		)
	}
	return true
}

// ListCategories handles GET /api/v1/categories
func (h *JobHandler) ListCategories(c *gin.Context) {
	h.logCall(c, "ListCategories")

	categories, err := h.backend.ListCategories(c.Request.Context())
	if err != nil {
		h.fail(c, CurrentSession(c), err)
		return
	}

	out := make([]dto.CategoryDTO, 0, len(categories))
	for _, category := range categories {
		out = append(out, dto.CategoryDTO{ID: category.ID, Name: category.Name, JobCount: category.JobCount})
	}
	c.JSON(http.StatusOK, gin.H{"categories": out})
}

func jobID(c *gin.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError("id", "Invalid job id")
	}
	return id, nil
}
