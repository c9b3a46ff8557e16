package sikola

import (
	"context"
	"errors"
	"strings"
	"testing"

	"sikola-tools/internal/components/telemetry"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"
)

func parseDoc(t testing.TB, html string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

type memoryRecorder struct {
	courses []CourseRef
	err     error
}

func (m *memoryRecorder) Record(ctx context.Context, courses []CourseRef) error {
	m.courses = append(m.courses, courses...)
	return m.err
}

func TestParsePageCount(t *testing.T) {
	count, err := ParsePageCount(parseDoc(t, coursesPage1), "page1")
	require.NoError(t, err)
	require.Equal(t, 3, count)

	_, err = ParsePageCount(parseDoc(t, coursesNoPagination), "page1")
	var missing *MissingElementError
	require.ErrorAs(t, err, &missing)
	require.Equal(t, SelectorPagination, missing.Selector)

	table := []string{
		`<ul class="pagination"></ul>`,
		`<ul class="pagination"><li>1</li><li>&raquo;</li></ul>`,
		`<ul class="pagination"><li>0</li></ul>`,
	}
	for _, html := range table {
		_, err := ParsePageCount(parseDoc(t, html), "page1")
		var structure *StructureError
		require.ErrorAs(t, err, &structure, html)
	}
}

func TestParseCourses(t *testing.T) {
	pageUrl := "https://sikola.unhas.ac.id/main/auth/courses.php?pageCurrent=2"
	courses, err := ParseCourses(parseDoc(t, coursesPage2), 2, pageUrl)
	require.NoError(t, err)

	expected := []CourseRef{
		{
			Title:   "Algoritma dan Pemrograman A",
			Href:    "https://sikola.unhas.ac.id/session/algoritma-dan-pemrograman-a/about/",
			Page:    2,
			PageUrl: pageUrl,
		},
		{
			Title:   "Struktur Data B",
			Href:    "https://sikola.unhas.ac.id/session/struktur-data-b/about/",
			Page:    2,
			PageUrl: pageUrl,
		},
		{
			Title:   "Basis Data C",
			Href:    "https://sikola.unhas.ac.id/session/basis-data-c/about/",
			Page:    2,
			PageUrl: pageUrl,
		},
	}
	if diff := cmp.Diff(expected, courses); diff != "" {
		t.Fatal("unexpected courses (-want +got):\n", diff)
	}

	_, err = ParseCourses(parseDoc(t, coursesMalformed), 2, pageUrl)
	var structure *StructureError
	require.ErrorAs(t, err, &structure)

	_, err = ParseCourses(parseDoc(t, loginPage), 2, pageUrl)
	var missing *MissingElementError
	require.ErrorAs(t, err, &missing)
	require.Equal(t, SelectorContent, missing.Selector)

	_, err = ParseCourses(parseDoc(t, `<div id="cm-content"><h4 class="title"><a href="/x">x</a></h4></div>`), 1, pageUrl)
	require.ErrorAs(t, err, &structure)
}

func TestMatchesQuery(t *testing.T) {
	table := []struct {
		title    string
		query    string
		expected bool
	}{
		{title: "Basis Data C", query: "basis data", expected: true},
		{title: "Basis Data C", query: "DATA c", expected: true},
		{title: "Basis Data C", query: "", expected: true},
		{title: "Basis Data C", query: "jaringan", expected: false},
	}
	for _, row := range table {
		require.Equal(t, row.expected, MatchesQuery(row.title, row.query), row)
	}
}

func TestSearchFirstMatch(t *testing.T) {
	fake := newFakePortal(t)
	session := fake.login(t, telemetry.NewTestAPI())

	var progress [][2]int
	recorder := &memoryRecorder{}
	result, err := session.SearchCourses(context.Background(), "BASIS data", SearchOptions{
		OnPage: func(page, total int) {
			progress = append(progress, [2]int{page, total})
		},
		Recorder: recorder,
	})
	require.NoError(t, err)

	// page 3 also has a matching course, the first page in order wins
	require.True(t, result.Found())
	require.Equal(t, "Basis Data C", result.Course.Title)
	require.Equal(t, 2, result.Course.Page)
	require.Equal(t, session.ListingUrl(2), result.Course.PageUrl)
	require.Equal(t, 3, result.TotalPages)
	require.Equal(t, 2, result.PagesScanned)
	require.Empty(t, result.Suggestions)

	require.Equal(t, [][2]int{{1, 3}, {2, 3}}, progress)
	require.Len(t, recorder.courses, 6)

	require.Equal(t, 1, fake.pageHits(1))
	require.Equal(t, 1, fake.pageHits(2))
	require.Equal(t, 0, fake.pageHits(3))
}

func TestSearchNoMatch(t *testing.T) {
	fake := newFakePortal(t)
	tel := telemetry.NewTestAPI()
	session := fake.login(t, tel)

	result, err := session.SearchCourses(context.Background(), "Basis Data Lanjutan", SearchOptions{})
	require.NoError(t, err)
	require.False(t, result.Found())
	require.Equal(t, 3, result.PagesScanned)

	require.NotEmpty(t, result.Suggestions)
	require.LessOrEqual(t, len(result.Suggestions), 3)
	require.Equal(t, "Basis Data Lanjut A", result.Suggestions[0].Course.Title)

	counts := tel.Reports(telemetry.KindCount)
	require.NotEmpty(t, counts)
	require.Equal(t, int64(3), counts[len(counts)-1].Params[0])
}

func TestSearchNoSuggestions(t *testing.T) {
	fake := newFakePortal(t)
	session := fake.login(t, telemetry.NewTestAPI())

	result, err := session.SearchCourses(context.Background(), "Basis Data Lanjutan", SearchOptions{MaxSuggestions: -1})
	require.NoError(t, err)
	require.False(t, result.Found())
	require.Nil(t, result.Suggestions)
}

func TestSearchMalformedPage(t *testing.T) {
	fake := newFakePortal(t)
	fake.setPage(2, coursesMalformed)
	tel := telemetry.NewTestAPI()
	session := fake.login(t, tel)

	_, err := session.SearchCourses(context.Background(), "jaringan", SearchOptions{})
	var structure *StructureError
	require.ErrorAs(t, err, &structure)
	require.NotEmpty(t, tel.Reports(telemetry.KindBroken))

	result, err := session.SearchCourses(context.Background(), "jaringan", SearchOptions{SkipMalformedPages: true})
	require.NoError(t, err)
	require.True(t, result.Found())
	require.Equal(t, 3, result.Course.Page)
	require.Len(t, result.Skipped, 1)
	require.Equal(t, 2, result.Skipped[0].Page)
	require.True(t, IsMarkupError(result.Skipped[0].Err))
	require.NotEmpty(t, tel.Reports(telemetry.KindWarning))
}

func TestSearchMissingPaginationIsFatal(t *testing.T) {
	fake := newFakePortal(t)
	fake.setPage(1, coursesNoPagination)
	session := fake.login(t, telemetry.NewTestAPI())

	_, err := session.SearchCourses(context.Background(), "kalkulus", SearchOptions{SkipMalformedPages: true})
	var missing *MissingElementError
	require.ErrorAs(t, err, &missing)
	require.Equal(t, SelectorPagination, missing.Selector)
}

func TestSearchStatusError(t *testing.T) {
	fake := newFakePortal(t)
	fake.mu.Lock()
	delete(fake.pages, 2)
	fake.mu.Unlock()
	session := fake.login(t, telemetry.NewTestAPI())

	// a missing page is a transport problem, not markup, so it is never skipped
	_, err := session.SearchCourses(context.Background(), "jaringan", SearchOptions{SkipMalformedPages: true})
	var status *StatusError
	require.ErrorAs(t, err, &status)
	require.Equal(t, 404, status.Status)
}

func TestSearchUsesPageCache(t *testing.T) {
	fake := newFakePortal(t)
	tel := telemetry.NewTestAPI()
	session := fake.login(t, tel)

	for i := 0; i < 2; i++ {
		result, err := session.SearchCourses(context.Background(), "jaringan", SearchOptions{})
		require.NoError(t, err)
		require.True(t, result.Found())
	}
	for page := 1; page <= 3; page++ {
		require.Equal(t, 1, fake.pageHits(page), page)
	}

	var hits int
	for _, r := range tel.Reports(telemetry.KindDebug) {
		if strings.HasSuffix(r.Id, "listing cache hit") {
			hits++
		}
	}
	require.Equal(t, 3, hits)
}

func TestSearchRecorderFailureIsNotFatal(t *testing.T) {
	fake := newFakePortal(t)
	tel := telemetry.NewTestAPI()
	session := fake.login(t, tel)

	recorder := &memoryRecorder{err: errors.New("disk full")}
	result, err := session.SearchCourses(context.Background(), "kalkulus", SearchOptions{Recorder: recorder})
	require.NoError(t, err)
	require.True(t, result.Found())
	require.NotEmpty(t, tel.Reports(telemetry.KindWarning))
}

func TestSearchNotLoggedIn(t *testing.T) {
	var session *Session
	_, err := session.SearchCourses(context.Background(), "x", SearchOptions{})
	require.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestSuggest(t *testing.T) {
	courses := []CourseRef{
		{Title: "Basis Data C", Page: 2},
		{Title: "basis data c", Page: 4},
		{Title: "Basis Data Lanjut A", Page: 3},
		{Title: "Jaringan Komputer B", Page: 3},
	}

	result := Suggest("basis data lanjutan", courses, 5)
	titles := make([]string, len(result))
	for i, s := range result {
		titles[i] = s.Course.Title
	}
	if diff := cmp.Diff([]string{"Basis Data Lanjut A", "Basis Data C"}, titles); diff != "" {
		t.Fatal("unexpected suggestions (-want +got):\n", diff)
	}
	require.Greater(t, result[0].Score, result[1].Score)

	require.Empty(t, Suggest("", courses, 3))
	require.Empty(t, Suggest("x", courses, 0))

	expected := []Suggestion{
		{Course: CourseRef{Title: "Basis Data Lanjut A", Page: 3}},
	}
	if diff := cmp.Diff(expected, Suggest("basis data lanjutan", courses, 1), cmpopts.IgnoreFields(Suggestion{}, "Score")); diff != "" {
		t.Fatal("unexpected suggestions (-want +got):\n", diff)
	}
}
