// Package browser abstracts the automation engine the scrapers drive.
// Sources only need an isolated session, navigation, and the rendered HTML
// back; everything else stays behind this interface so tests can substitute
// a fake.
package browser

import "context"

// Engine owns the underlying browser process.
type Engine interface {
	// NewSession creates an isolated browsing context. The caller must Close
	// it on every exit path.
	NewSession(ctx context.Context) (Session, error)
	Close() error
}

// Session is an isolated browsing context (cookies, cache, storage).
type Session interface {
	NewPage() (Page, error)
	Close() error
}

// Page fetches rendered documents.
type Page interface {
	// Content navigates to url and returns the rendered HTML.
	Content(ctx context.Context, url string) (string, error)
	Close() error
}
