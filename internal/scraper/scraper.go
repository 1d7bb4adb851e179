package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/cfp-events/internal/cfp"
	"github.com/pfrederiksen/cfp-events/internal/logger"
	"github.com/pfrederiksen/cfp-events/internal/query"
)

const (
	ListingURL = "https://sessionize.com/linux-foundation-events?opencfs=true"
	SiteOrigin = "https://sessionize.com"
	UserAgent  = "cfp-events/1.0 (github.com/pfrederiksen/cfp-events)"
	Timeout    = 20 * time.Second
)

// ErrUnexpectedStatus is returned when a page responds with a non-200 status
var ErrUnexpectedStatus = errors.New("unexpected status code")

// Scraper handles fetching and parsing Sessionize CFP pages
type Scraper struct {
	client     *http.Client
	timeout    time.Duration
	listingURL string
	origin     string
	userAgent  string
}

// Option configures a Scraper
type Option func(*Scraper)

// WithClient replaces the HTTP client. The client is used as given unless
// WithTimeout is also passed, in which case a copy carries the timeout.
func WithClient(c *http.Client) Option {
	return func(s *Scraper) { s.client = c }
}

// WithTimeout sets the timeout of every request
func WithTimeout(d time.Duration) Option {
	return func(s *Scraper) { s.timeout = d }
}

// WithListingURL sets the listing page to fetch
func WithListingURL(u string) Option {
	return func(s *Scraper) { s.listingURL = u }
}

// WithOrigin sets the origin prefixed to path-only entry links
func WithOrigin(origin string) Option {
	return func(s *Scraper) { s.origin = origin }
}

// WithUserAgent sets the User-Agent header sent with every request
func WithUserAgent(ua string) Option {
	return func(s *Scraper) { s.userAgent = ua }
}

// New creates a new Scraper instance
func New(opts ...Option) *Scraper {
	s := &Scraper{
		listingURL: ListingURL,
		origin:     SiteOrigin,
		userAgent:  UserAgent,
	}
	for _, opt := range opts {
		opt(s)
	}

	switch {
	case s.client == nil:
		timeout := s.timeout
		if timeout == 0 {
			timeout = Timeout
		}
		s.client = &http.Client{Timeout: timeout}
	case s.timeout != 0:
		client := *s.client
		client.Timeout = s.timeout
		s.client = &client
	}
	return s
}

// ListingURL returns the listing page this scraper fetches
func (s *Scraper) ListingURL() string {
	return s.listingURL
}

// FetchDocument fetches url and parses the response body
func (s *Scraper) FetchDocument(ctx context.Context, url string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	return query.Parse(resp.Body)
}

// FetchListing fetches the listing page and extracts every open CFP on it
func (s *Scraper) FetchListing(ctx context.Context) ([]*cfp.Event, error) {
	start := time.Now()
	logger.IncrCounter("listing.fetches")

	doc, err := s.FetchDocument(ctx, s.listingURL)
	if err != nil {
		logger.IncrCounter("listing.errors")
		return nil, err
	}

	events := ExtractListing(doc.Selection, s.origin)

	logger.RecordTiming("listing.fetch", time.Since(start))
	logger.AddCounter("listing.entries", int64(len(events)))
	logger.Debug("Fetched listing", logger.Fields{
		"url":      s.listingURL,
		"entries":  len(events),
		"duration": time.Since(start).String(),
	})

	return events, nil
}

// FetchDetail fetches one event page and extracts its detail record
func (s *Scraper) FetchDetail(ctx context.Context, link string) (*cfp.Detail, error) {
	if link == "" {
		return nil, errors.New("event has no link")
	}

	start := time.Now()
	logger.IncrCounter("detail.fetches")

	doc, err := s.FetchDocument(ctx, link)
	if err != nil {
		logger.IncrCounter("detail.errors")
		return nil, err
	}

	detail := ExtractDetail(doc.Selection)
	missing := detail.MissingFields()

	logger.RecordTiming("detail.fetch", time.Since(start))
	logger.AddCounter("detail.fields_missing", int64(len(missing)))
	logger.Debug("Fetched detail", logger.Fields{
		"url":      link,
		"missing":  missing,
		"duration": time.Since(start).String(),
	})

	return detail, nil
}
