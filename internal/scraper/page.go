package scraper

import (
	"context"
	"time"
)

// Page is the read surface of a rendered listing page. The playwright
// adapter implements it for real runs; tests provide fakes.
type Page interface {
	// URL returns the address the page currently shows.
	URL() string
	// WaitFor blocks until selector matches something or the timeout expires.
	WaitFor(selector string, timeout time.Duration) error
	// Text returns the trimmed text content of the first match of selector.
	Text(selector string) (string, error)
	// TextByLabel locates a label-like node whose text case-insensitively
	// contains label and returns the adjacent value node's text.
	TextByLabel(label string) (string, error)
	// PlainText returns the rendered text of the whole page.
	PlainText() (string, error)
	// HTML returns the full page markup.
	HTML() (string, error)
	// Links returns the href attributes of all matches of selector.
	Links(selector string) ([]string, error)
}

// Browser navigates the single tab owned by a scrape run.
type Browser interface {
	Open(ctx context.Context, url string, timeout time.Duration) (Page, error)
}
