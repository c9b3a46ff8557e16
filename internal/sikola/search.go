package sikola

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"sikola-tools/pkg/htmlutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	report_session_search_courses = "session.search-courses"
	report_session_pages_scanned  = "session.pages-scanned"
)

// CourseRef is a course found in the session catalogue.
type CourseRef struct {
	Title string
	// Href is the absolute link of the course card, empty if the card had none.
	Href string
	// Page is the catalogue page the course is listed on, starting from 1.
	Page int
	// PageUrl is the absolute url of that catalogue page.
	PageUrl string
}

// CourseRecorder is handed every course seen during a search.
type CourseRecorder interface {
	Record(ctx context.Context, courses []CourseRef) error
}

// PageError is a catalogue page that was skipped because it could not be parsed.
type PageError struct {
	Page int
	Err  error
}

type SearchOptions struct {
	// OnPage is called after every catalogue page is processed.
	OnPage func(page, total int)
	// SkipMalformedPages skips catalogue pages whose course list cannot be
	// parsed instead of failing the whole search. The page count on the
	// first page is always required.
	SkipMalformedPages bool
	// Recorder, if set, receives the courses of every scanned page.
	Recorder CourseRecorder
	// MaxSuggestions is the number of similar titles returned when nothing
	// matches, zero means 3 and a negative value disables suggestions.
	MaxSuggestions int
}

type SearchResult struct {
	Query string
	// Course is the first match in ascending page order, nil if nothing matched.
	Course       *CourseRef
	TotalPages   int
	PagesScanned int
	// Suggestions are similar titles, only filled when nothing matched.
	Suggestions []Suggestion
	Skipped     []PageError
}

func (r SearchResult) Found() bool {
	return r.Course != nil
}

// MatchesQuery reports whether `query` is a case-insensitive substring of `title`.
func MatchesQuery(title, query string) bool {
	return strings.Contains(strings.ToLower(title), strings.ToLower(query))
}

// ParsePageCount reads the number of catalogue pages from the last item of the pagination element.
func ParsePageCount(doc *goquery.Document, pageUrl string) (int, error) {
	pagination := doc.Find(SelectorPagination).First()
	if pagination.Length() == 0 {
		return 0, &MissingElementError{Page: pageUrl, Selector: SelectorPagination}
	}
	last := pagination.Children().Last()
	if last.Length() == 0 {
		return 0, &StructureError{Page: pageUrl, Detail: "pagination has no items"}
	}

	text := strings.TrimSpace(last.Text())
	count, err := strconv.Atoi(text)
	if err != nil {
		return 0, &StructureError{
			Page:   pageUrl,
			Detail: fmt.Sprintf("last pagination item %q is not a page number", text),
			Err:    err,
		}
	}
	if count < 1 {
		return 0, &StructureError{Page: pageUrl, Detail: fmt.Sprintf("page count %d is not positive", count)}
	}
	return count, nil
}

// ParseCourses reads every course card on a catalogue page.
func ParseCourses(doc *goquery.Document, page int, pageUrl string) ([]CourseRef, error) {
	content := doc.Find(SelectorContent).First()
	if content.Length() == 0 {
		return nil, &MissingElementError{Page: pageUrl, Selector: SelectorContent}
	}

	base, _ := url.Parse(pageUrl)

	var courses []CourseRef
	var parseErr error
	content.Find(SelectorCourseTitle).EachWithBreak(func(i int, title *goquery.Selection) bool {
		anchor := title.Find(SelectorCourseAnchor).First()
		if anchor.Length() == 0 {
			parseErr = &StructureError{
				Page:   pageUrl,
				Detail: fmt.Sprintf("course title #%d has no %q", i+1, SelectorCourseAnchor),
			}
			return false
		}
		name, ok := anchor.Attr(AttrCourseName)
		if !ok {
			parseErr = &StructureError{
				Page:   pageUrl,
				Detail: fmt.Sprintf("course anchor #%d has no %q attribute", i+1, AttrCourseName),
			}
			return false
		}

		ref := CourseRef{
			Title:   name,
			Page:    page,
			PageUrl: pageUrl,
		}
		if href, ok := anchor.Attr("href"); ok && href != "" {
			ref.Href = htmlutil.Resolve(base, href)
		}
		courses = append(courses, ref)
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return courses, nil
}

// SearchCourses scans the session catalogue page by page and returns the
// first course whose title contains `query`, ignoring case.
func (s *Session) SearchCourses(ctx context.Context, query string, opts SearchOptions) (SearchResult, error) {
	if s == nil {
		return SearchResult{}, ErrNotLoggedIn
	}

	ctx, span := tracer.Start(ctx, "session:SearchCourses")
	defer span.End()
	span.SetAttributes(attribute.String("query", query))

	result := SearchResult{Query: query}
	fail := func(err error) (SearchResult, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.tel.ReportBroken(report_session_search_courses, err)
		return result, err
	}

	first, firstUrl, err := s.fetchListing(ctx, 1)
	if err != nil {
		return fail(err)
	}
	total, err := ParsePageCount(first, firstUrl)
	if err != nil {
		return fail(err)
	}
	result.TotalPages = total
	span.SetAttributes(attribute.Int("total_pages", total))

	var seen []CourseRef
	for page := 1; page <= total; page++ {
		doc, pageUrl := first, firstUrl
		if page > 1 {
			doc, pageUrl, err = s.fetchListing(ctx, page)
			if err != nil {
				return fail(err)
			}
		}

		courses, err := ParseCourses(doc, page, pageUrl)
		if err != nil {
			if !opts.SkipMalformedPages || !IsMarkupError(err) {
				return fail(err)
			}
			s.tel.ReportWarning(report_session_search_courses, "skipped page", page, err)
			result.Skipped = append(result.Skipped, PageError{Page: page, Err: err})
		}

		result.PagesScanned++
		if opts.Recorder != nil && len(courses) > 0 {
			err := opts.Recorder.Record(ctx, courses)
			if err != nil {
				s.tel.ReportWarning(report_session_search_courses, "record courses", err)
			}
		}
		if opts.OnPage != nil {
			opts.OnPage(page, total)
		}

		for _, c := range courses {
			if MatchesQuery(c.Title, query) {
				found := c
				result.Course = &found
				s.tel.ReportCount(report_session_pages_scanned, int64(result.PagesScanned))
				return result, nil
			}
		}
		seen = append(seen, courses...)
	}

	s.tel.ReportCount(report_session_pages_scanned, int64(result.PagesScanned))

	maxSuggestions := opts.MaxSuggestions
	if maxSuggestions == 0 {
		maxSuggestions = 3
	}
	if maxSuggestions > 0 {
		result.Suggestions = Suggest(query, seen, maxSuggestions)
	}
	return result, nil
}
