package sikola

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strconv"

	"sikola-tools/internal/components/telemetry"

	"github.com/PuerkitoBio/goquery"
	"github.com/PuerkitoBio/purell"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	report_session_fetch_listing = "session.fetch-listing"
)

// Session is a logged in portal session. It is only created by Portal.Login
// and is not safe for concurrent use.
type Session struct {
	// Name is the display name the portal greeted the user with.
	Name string

	portal *Portal
	http   *resty.Client
	tel    telemetry.API
	pages  *expirable.LRU[string, *goquery.Document]
}

func newSession(portal *Portal, client *resty.Client, name string) *Session {
	return &Session{
		Name:   name,
		portal: portal,
		http:   client,
		tel:    portal.tel,
		pages:  expirable.NewLRU[string, *goquery.Document](256, nil, portal.opts.PageCacheTTL),
	}
}

// ListingUrl is the absolute url of a page of the session catalogue.
func (s *Session) ListingUrl(page int) string {
	return s.portal.ListingUrl(page)
}

// ListingUrl is the absolute url of a page of the session catalogue.
func (p *Portal) ListingUrl(page int) string {
	query := url.Values{
		"action":        {"display_sessions"},
		"category_code": {p.opts.CategoryCode},
		"hidden_links":  {""},
		"pageCurrent":   {strconv.Itoa(page)},
		"pageLength":    {strconv.Itoa(p.opts.PageLength)},
	}
	return p.url(p.opts.ListingPath) + "?" + query.Encode()
}

func cacheKey(rawUrl string) string {
	normalized, err := purell.NormalizeURLString(
		rawUrl,
		purell.FlagsSafe|
			purell.FlagRemoveDirectoryIndex|
			purell.FlagRemoveFragment|
			purell.FlagSortQuery,
	)
	if err != nil {
		return rawUrl
	}
	return normalized
}

// fetchListing returns the parsed catalogue page, reusing a cached copy when
// the page was fetched recently in this session.
func (s *Session) fetchListing(ctx context.Context, page int) (*goquery.Document, string, error) {
	endpoint := s.ListingUrl(page)
	key := cacheKey(endpoint)

	if doc, hit := s.pages.Get(key); hit {
		s.tel.ReportDebug("listing cache hit", page)
		return doc, endpoint, nil
	}

	res, err := s.http.R().
		SetContext(ctx).
		Get(endpoint)
	if err != nil {
		s.tel.ReportBroken(report_session_fetch_listing, fmt.Errorf("fetch: %w", err), endpoint)
		return nil, endpoint, &NetworkError{Op: "fetch listing page", Url: endpoint, Err: err}
	}
	if res.IsError() {
		s.tel.ReportBroken(report_session_fetch_listing, "status", res.StatusCode(), endpoint)
		return nil, endpoint, &StatusError{Op: "fetch listing page", Url: endpoint, Status: res.StatusCode()}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		s.tel.ReportBroken(report_session_fetch_listing, fmt.Errorf("parse: %w", err), endpoint)
		return nil, endpoint, &StructureError{Page: endpoint, Detail: "parse html", Err: err}
	}

	s.pages.Add(key, doc)
	return doc, endpoint, nil
}
