package backend

import (
	"context"
	"fmt"
	"net/http"

	"github.com/tmgnisc/zen-edu-hub-job-portal-sub000/internal/domain"
)

// ListJobs returns every job. Filtering happens in the portal, not the API.
func (c *Client) ListJobs(ctx context.Context) ([]domain.Job, error) {
	var jobs []domain.Job
	err := c.do(ctx, request{op: "list jobs", method: http.MethodGet, path: "/jobs/"}, &jobs)
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

// GetJob returns a single job; a missing job is an APIError with status 404
func (c *Client) GetJob(ctx context.Context, id int) (*domain.Job, error) {
	var job domain.Job
	err := c.do(ctx, request{op: "get job", method: http.MethodGet, path: fmt.Sprintf("/jobs/%d/", id)}, &job)
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// ListCategories returns categories with their server-computed job counts
func (c *Client) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var categories []domain.Category
	err := c.do(ctx, request{op: "list categories", method: http.MethodGet, path: "/job-categories/count/"}, &categories)
	if err != nil {
		return nil, err
	}
	return categories, nil
}
