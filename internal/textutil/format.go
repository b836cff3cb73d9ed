// Package textutil holds the presentation helpers shared by every portal view:
// job type labels, dates and plain-text rendering of rich descriptions.
package textutil

import (
	"io"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/html"

	"github.com/tmgnisc/zen-edu-hub-job-portal-sub000/internal/domain"
)

// DisplayDateLayout is how dates are shown to candidates
const DisplayDateLayout = "Jan 2, 2006"

var jobTypeLabels = map[string]string{
	domain.JobTypeFullTime: "Full Time",
	domain.JobTypePartTime: "Part Time",
}

// JobTypeLabel turns an API job type such as "full_time" into "Full Time"
func JobTypeLabel(jobType string) string {
	if label, ok := jobTypeLabels[jobType]; ok {
		return label
	}
	if jobType == "" {
		return "Other"
	}

	words := strings.FieldsFunc(jobType, func(r rune) bool {
		return r == '_' || r == '-' || unicode.IsSpace(r)
	})
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + strings.ToLower(w[size:])
	}
	return strings.Join(words, " ")
}

// FormatDate renders d for display, or "" when d is unset
func FormatDate(d domain.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DisplayDateLayout)
}

// DaysLeft is the number of whole days from today until the deadline.
// It is negative once the deadline has passed.
func DaysLeft(deadline domain.Date, today time.Time) int {
	if deadline.IsZero() {
		return 0
	}
	diff := deadline.Sub(domain.NewDate(today).Time)
	return int(diff.Hours() / 24)
}

var blockElements = map[string]bool{
	"p": true, "br": true, "div": true, "li": true, "ul": true, "ol": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"tr": true, "td": true, "th": true, "section": true, "article": true,
}

// StripHTML returns the visible text of a rich-text fragment with entities
// decoded and whitespace collapsed. Script and style content is dropped.
func StripHTML(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return strings.Join(strings.Fields(fragment), " ")
	}

	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(fragment))
	skip := 0
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if z.Err() != io.EOF {
				return strings.Join(strings.Fields(fragment), " ")
			}
			return strings.Join(strings.Fields(b.String()), " ")
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if tag == "script" || tag == "style" {
				if tt == html.StartTagToken {
					skip++
				} else if tt == html.EndTagToken && skip > 0 {
					skip--
				}
				continue
			}
			if blockElements[tag] {
				b.WriteByte(' ')
			}
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		}
	}
}

// Excerpt returns at most limit runes of the plain text of fragment, cut at a
// word boundary and suffixed with an ellipsis when shortened
func Excerpt(fragment string, limit int) string {
	text := StripHTML(fragment)
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text
	}

	runes := []rune(text)
	cut := string(runes[:limit])
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,.;:") + "…"
}
