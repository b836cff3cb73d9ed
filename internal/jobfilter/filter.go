// Package jobfilter derives the visible job list from the authoritative list
// fetched from the API. Every function here is a pure projection: the input
// slice is never modified.
package jobfilter

import (
	"sort"
	"strings"
	"time"

	"github.com/tmgnisc/zen-edu-hub-job-portal-sub000/internal/domain"
	"github.com/tmgnisc/zen-edu-hub-job-portal-sub000/internal/textutil"
)

// Sentinel values that disable a criterion
const (
	AllCategories = "All Categories"
	AllLocations  = "All Locations"
	AllStatuses   = "All Jobs"
)

// Status criterion values
const (
	StatusActive = "Active Jobs"
	StatusClosed = "Closed Jobs"
)

// Criteria is the transient filter state of a job list view
type Criteria struct {
	Search   string `form:"search" json:"search"`
	Category string `form:"category" json:"category"`
	Location string `form:"location" json:"location"`
	Status   string `form:"status" json:"status"`
}

// Normalize trims input and replaces empty values with their sentinels
func (c Criteria) Normalize() Criteria {
	c.Search = strings.TrimSpace(c.Search)
	c.Category = strings.TrimSpace(c.Category)
	c.Location = strings.TrimSpace(c.Location)
	c.Status = strings.TrimSpace(c.Status)

	if c.Category == "" {
		c.Category = AllCategories
	}
	if c.Location == "" {
		c.Location = AllLocations
	}
	if c.Status == "" {
		c.Status = AllStatuses
	}
	return c
}

// Active reports whether any criterion narrows the list
func (c Criteria) Active() bool {
	c = c.Normalize()
	return c.Search != "" ||
		c.Category != AllCategories ||
		c.Location != AllLocations ||
		c.Status != AllStatuses
}

// Matches reports whether job satisfies every active criterion
func (c Criteria) Matches(job domain.Job, today time.Time) bool {
	c = c.Normalize()

	if c.Search != "" && !matchesSearch(job, strings.ToLower(c.Search)) {
		return false
	}
	if c.Category != AllCategories && job.Category.Name != c.Category {
		return false
	}
	if c.Location != AllLocations && !containsFold(job.Company.Location, c.Location) {
		return false
	}

	switch c.Status {
	case StatusActive:
		return !job.IsClosed(today)
	case StatusClosed:
		return job.IsClosed(today)
	default:
		return true
	}
}

func matchesSearch(job domain.Job, needle string) bool {
	return strings.Contains(strings.ToLower(job.Title), needle) ||
		strings.Contains(strings.ToLower(job.Company.Name), needle) ||
		strings.Contains(strings.ToLower(textutil.StripHTML(job.Description)), needle)
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// Filter returns the jobs matching criteria, open jobs first and closed jobs
// last. Relative order inside each group is the order of jobs.
func Filter(jobs []domain.Job, criteria Criteria, today time.Time) []domain.Job {
	criteria = criteria.Normalize()

	open := make([]domain.Job, 0, len(jobs))
	var closed []domain.Job
	for _, job := range jobs {
		if !criteria.Matches(job, today) {
			continue
		}
		if job.IsClosed(today) {
			closed = append(closed, job)
		} else {
			open = append(open, job)
		}
	}

	return append(open, closed...)
}

// Locations lists the distinct company locations of jobs for a location
// drop-down, sorted, with the AllLocations sentinel first
func Locations(jobs []domain.Job) []string {
	seen := make(map[string]bool)
	var locations []string
	for _, job := range jobs {
		loc := strings.TrimSpace(job.Company.Location)
		if loc == "" || seen[strings.ToLower(loc)] {
			continue
		}
		seen[strings.ToLower(loc)] = true
		locations = append(locations, loc)
	}
	sort.Strings(locations)
	return append([]string{AllLocations}, locations...)
}

// CategoryNames lists category names for a category drop-down, sorted, with
// the AllCategories sentinel first
func CategoryNames(categories []domain.Category) []string {
	seen := make(map[string]bool)
	var names []string
	for _, category := range categories {
		if category.Name == "" || seen[category.Name] {
			continue
		}
		seen[category.Name] = true
		names = append(names, category.Name)
	}
	sort.Strings(names)
	return append([]string{AllCategories}, names...)
}

// Statuses lists the status drop-down values
func Statuses() []string {
	return []string{AllStatuses, StatusActive, StatusClosed}
}
