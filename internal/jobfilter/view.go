package jobfilter

import (
	"time"

	"github.com/tmgnisc/zen-edu-hub-job-portal-sub000/internal/domain"
)

// View is the state of one job list on screen: its criteria, its current
// page and its fixed page size. Changing any criterion returns to page 1.
type View struct {
	criteria Criteria
	page     int
	pageSize int
}

// NewView creates a view with no active criteria on page 1
func NewView(pageSize int) *View {
	if pageSize <= 0 {
		pageSize = JobsPageSize
	}
	return &View{
		criteria: Criteria{}.Normalize(),
		page:     1,
		pageSize: pageSize,
	}
}

// Criteria returns the current criteria
func (v *View) Criteria() Criteria {
	return v.criteria
}

// Page returns the requested page number
func (v *View) Page() int {
	return v.page
}

// PageSize returns the fixed page size of the view
func (v *View) PageSize() int {
	return v.pageSize
}

// SetSearch changes the search text and resets to page 1
func (v *View) SetSearch(search string) {
	v.criteria.Search = search
	v.apply()
}

// SetCategory changes the category and resets to page 1
func (v *View) SetCategory(category string) {
	v.criteria.Category = category
	v.apply()
}

// SetLocation changes the location and resets to page 1
func (v *View) SetLocation(location string) {
	v.criteria.Location = location
	v.apply()
}

// SetStatus changes the status and resets to page 1
func (v *View) SetStatus(status string) {
	v.criteria.Status = status
	v.apply()
}

// SetCriteria replaces all criteria. The page is reset to 1 if anything changed.
func (v *View) SetCriteria(c Criteria) {
	c = c.Normalize()
	if c == v.criteria {
		return
	}
	v.criteria = c
	v.page = 1
}

// Reset clears every criterion
func (v *View) Reset() {
	v.SetCriteria(Criteria{})
}

// GoTo moves to page n. Values below 1 are treated as 1; the upper bound is
// applied when rendering.
func (v *View) GoTo(n int) {
	if n < 1 {
		n = 1
	}
	v.page = n
}

// Render filters jobs with the current criteria and returns the current page
func (v *View) Render(jobs []domain.Job, today time.Time) Page {
	return Paginate(Filter(jobs, v.criteria, today), v.page, v.pageSize)
}

func (v *View) apply() {
	v.criteria = v.criteria.Normalize()
	v.page = 1
}

// ViewState is the stored form of a View
type ViewState struct {
	Criteria Criteria `json:"criteria"`
	Page     int      `json:"page"`
}

// State returns the criteria and page of the view
func (v *View) State() ViewState {
	return ViewState{Criteria: v.criteria, Page: v.page}
}

// RestoreView rebuilds a view from a stored state
func RestoreView(state ViewState, pageSize int) *View {
	v := NewView(pageSize)
	v.criteria = state.Criteria.Normalize()
	v.GoTo(state.Page)
	return v
}
