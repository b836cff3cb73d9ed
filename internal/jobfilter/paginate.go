package jobfilter

import "github.com/tmgnisc/zen-edu-hub-job-portal-sub000/internal/domain"

// Default page sizes per presentation context
const (
	JobsPageSize = 9
	HomePageSize = 6
)

// Page is one page of a filtered job list
type Page struct {
	Items      []domain.Job `json:"items"`
	Number     int          `json:"page"`
	Size       int          `json:"page_size"`
	TotalItems int          `json:"total_items"`
	TotalPages int          `json:"total_pages"`
	HasPrev    bool         `json:"has_prev"`
	HasNext    bool         `json:"has_next"`
}

// NoResults reports the "nothing matched" state, which is not an error
func (p Page) NoResults() bool {
	return p.TotalItems == 0
}

// Paginate slices jobs into the 1-indexed page number of the given size.
// Out-of-range page numbers are clamped to the first or last page.
func Paginate(jobs []domain.Job, number, size int) Page {
	if size <= 0 {
		size = JobsPageSize
	}

	total := len(jobs)
	pages := (total + size - 1) / size
	if pages == 0 {
		pages = 1
	}

	if number < 1 {
		number = 1
	}
	if number > pages {
		number = pages
	}

	start := (number - 1) * size
	end := start + size
	if end > total {
		end = total
	}

	items := make([]domain.Job, end-start)
	copy(items, jobs[start:end])

	return Page{
		Items:      items,
		Number:     number,
		Size:       size,
		TotalItems: total,
		TotalPages: pages,
		HasPrev:    number > 1,
		HasNext:    number < pages,
	}
}
