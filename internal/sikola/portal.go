package sikola

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"sikola-tools/internal/components/assert"
	"sikola-tools/internal/components/telemetry"
	"sikola-tools/pkg/htmlutil"
	"sikola-tools/pkg/restyutil"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"
)

var tracer = otel.Tracer("sikola")

const (
	report_portal_login = "portal.login"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

type PortalOptions struct {
	// Default: DefaultBaseUrl
	BaseUrl string
	// Default: DefaultLoginPath
	LoginPath string
	// Default: DefaultListingPath
	ListingPath string
	// category_code query parameter of the session catalogue, empty lists every category
	CategoryCode string
	// Default: DefaultPageLength
	PageLength int
	// Default: 30s
	Timeout time.Duration
	// RequestsPerSecond caps the request rate, zero means the default of 2,
	// a negative value disables the limit.
	RequestsPerSecond float64
	// DisableCloudflareBypass keeps the stock transport.
	DisableCloudflareBypass bool
	// HttpDump receives every exchange when set.
	HttpDump restyutil.MessageOutput
	// PageCacheTTL is how long a fetched catalogue page is reused within a session.
	// Default: 5m
	PageCacheTTL time.Duration
}

func (o PortalOptions) withDefaults() PortalOptions {
	if o.BaseUrl == "" {
		o.BaseUrl = DefaultBaseUrl
	}
	if o.LoginPath == "" {
		o.LoginPath = DefaultLoginPath
	}
	if o.ListingPath == "" {
		o.ListingPath = DefaultListingPath
	}
	if o.PageLength <= 0 {
		o.PageLength = DefaultPageLength
	}
	if o.Timeout <= 0 {
		o.Timeout = time.Second * 30
	}
	if o.RequestsPerSecond == 0 {
		o.RequestsPerSecond = 2
	}
	if o.PageCacheTTL <= 0 {
		o.PageCacheTTL = time.Minute * 5
	}
	return o
}

// Portal is the logged out side of the site. Every Login starts from a fresh
// cookie jar, so sessions never share state with each other.
type Portal struct {
	BaseUrl *url.URL
	opts    PortalOptions
	tel     telemetry.API
}

func NewPortal(opts PortalOptions, tel telemetry.API) (*Portal, error) {
	assert.NotNil(tel)

	opts = opts.withDefaults()
	baseUrl, err := url.Parse(strings.TrimSuffix(opts.BaseUrl, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if baseUrl.Scheme == "" || baseUrl.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", opts.BaseUrl)
	}

	return &Portal{
		BaseUrl: baseUrl,
		opts:    opts,
		tel:     telemetry.NewScopedAPI("sikola", tel),
	}, nil
}

func (p *Portal) Options() PortalOptions {
	return p.opts
}

func (p *Portal) newHttpClient() (*resty.Client, error) {
	client := resty.New()
	client.SetBaseURL(p.BaseUrl.String())
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	if !p.opts.DisableCloudflareBypass {
		client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	}

	client.SetHeader("user-agent", userAgent)
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(p.BaseUrl.Hostname()))
	client.SetTimeout(p.opts.Timeout)

	if p.opts.RequestsPerSecond > 0 {
		burst := int(math.Ceil(p.opts.RequestsPerSecond))
		rateLimiter := rate.NewLimiter(rate.Limit(p.opts.RequestsPerSecond), burst)
		client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return rateLimiter.Wait(req.Context())
		})
	}

	telemetry.InstrumentResty(client, "sikola/http", p.tel, p.opts.HttpDump)
	return client, nil
}

func (p *Portal) url(path string) string {
	return p.BaseUrl.String() + path
}

// Login submits the login form and returns a session if the portal greets the user.
func (p *Portal) Login(ctx context.Context, provider CredentialsProvider) (*Session, error) {
	ctx, span := tracer.Start(ctx, "portal:Login")
	defer span.End()

	fail := func(err error) (*Session, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	client, err := p.newHttpClient()
	if err != nil {
		return fail(err)
	}
	loginUrl := p.url(p.opts.LoginPath)

	// the first visit hands out the session cookie the form post is checked against
	res, err := client.R().
		SetContext(ctx).
		Get(p.opts.LoginPath)
	if err != nil {
		p.tel.ReportBroken(report_portal_login, fmt.Errorf("fetch login page: %w", err))
		return fail(&NetworkError{Op: "fetch login page", Url: loginUrl, Err: err})
	}
	if res.IsError() {
		p.tel.ReportBroken(report_portal_login, "login page status", res.StatusCode())
		return fail(&StatusError{Op: "fetch login page", Url: loginUrl, Status: res.StatusCode()})
	}

	creds, err := provider.Credentials(ctx)
	if err != nil {
		return fail(fmt.Errorf("get credentials: %w", err))
	}
	span.SetAttributes(attribute.String("username", creds.Username))

	res, err = client.R().
		SetContext(ctx).
		SetHeader("Referer", loginUrl).
		SetFormData(map[string]string{
			formFieldLogin:    creds.Username,
			formFieldPassword: creds.Password,
			formFieldToken:    "",
		}).
		Post(p.opts.LoginPath)
	if err != nil {
		p.tel.ReportBroken(report_portal_login, fmt.Errorf("post login form: %w", err))
		return fail(&NetworkError{Op: "post login form", Url: loginUrl, Err: err})
	}
	if res.StatusCode() >= 500 {
		p.tel.ReportBroken(report_portal_login, "login form status", res.StatusCode())
		return fail(&StatusError{Op: "post login form", Url: loginUrl, Status: res.StatusCode()})
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		p.tel.ReportBroken(report_portal_login, fmt.Errorf("parse login response: %w", err))
		return fail(&StructureError{Page: loginUrl, Detail: "parse login response", Err: err})
	}

	name, ok := WelcomeName(doc)
	if !ok {
		rejected := &LoginRejectedError{
			Status:  res.StatusCode(),
			Message: AlertMessage(doc),
		}
		p.tel.ReportWarning(report_portal_login, rejected)
		return fail(rejected)
	}

	p.tel.ReportDebug("logged in", creds.Username)
	return newSession(p, client, name), nil
}

// WelcomeName returns the text of the logged in user's name element,
// ok is false when the element is not on the page.
func WelcomeName(doc *goquery.Document) (name string, ok bool) {
	sel := doc.Find(SelectorWelcomeName).First()
	if sel.Length() == 0 {
		return "", false
	}
	return htmlutil.GetText(sel.Get(0)), true
}

// AlertMessage returns the text of the first alert banner on the page with
// its whitespace trimmed and collapsed, or an empty string if there is none.
func AlertMessage(doc *goquery.Document) string {
	sel := doc.Find(SelectorAlert).First()
	if sel.Length() == 0 {
		return ""
	}
	return htmlutil.Normalize(htmlutil.GetText(sel.Get(0)))
}
