// Package scrape fetches candidate pages for classification.
package scrape

import "context"

// Page is the lightweight view of a fetched page the classifier needs.
type Page struct {
	URL        string
	HTML       string
	Title      string
	SiteName   string
	StatusCode int
}

// Fetcher retrieves a single URL.
type Fetcher interface {
	FetchLight(ctx context.Context, url string) (*Page, error)
}
