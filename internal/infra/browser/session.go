// Package browser provides the live browser session the scraping core
// runs against. Two drivers implement the same interface: go-rod
// (primary) and chromedp.
package browser

import "context"

// Capture is one API response body intercepted while a page loads.
type Capture struct {
	URL  string
	Body []byte
}

// ScrapeResult is the outcome of navigating to a page: its rendered
// HTML plus any intercepted API responses.
type ScrapeResult struct {
	HTML     string
	Captures []Capture
}

// ScrapeOptions tunes one page navigation.
type ScrapeOptions struct {
	// WaitSelector is waited for before the HTML is read.
	WaitSelector string
	// CapturePatterns are URL patterns ("*/api/comment/list/*") whose
	// response bodies are collected while the page loads.
	CapturePatterns []string
	// Scroll settings, to coax the page into loading more content.
	ScrollTimes          int
	StandardSleepSeconds int
	RandomDelaySeconds   int
}

// Session is the read-mostly browser dependency the core consumes. It
// owns the browser process; iterators and clients only borrow it.
type Session interface {
	// UserAgent opens a short-lived page, reads navigator.userAgent
	// and closes the page again.
	UserAgent(ctx context.Context) (string, error)
	// Fetch runs a GET for url inside a live page, with the page's
	// cookies and the site's request hooks applied, and returns the
	// raw response body.
	Fetch(ctx context.Context, url string) ([]byte, error)
	// Scrape navigates to url and returns the page HTML together
	// with any captured API responses.
	Scrape(ctx context.Context, url string, opts ScrapeOptions) (*ScrapeResult, error)
	// Cookie reads a named cookie from the session, reporting whether
	// it was present.
	Cookie(ctx context.Context, name string) (string, bool, error)
	Close()
}
