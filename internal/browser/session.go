// Package browser defines the browser session the application strategies drive,
// and a chromedp-backed implementation of it.
package browser

import (
	"context"
	"time"
)

// Session is one browser tab owned by the orchestrator and lent to a strategy
// for the duration of a single application.
//
// Wait methods report presence as a boolean: a timeout means "not there",
// never an error.
type Session interface {
	// Navigate loads url and waits for the document body.
	Navigate(ctx context.Context, url string) error
	// CurrentURL returns the URL of the loaded document.
	CurrentURL(ctx context.Context) (string, error)
	// WaitPresent reports whether selector matches an element within timeout.
	WaitPresent(ctx context.Context, selector string, timeout time.Duration) bool
	// WaitClickable reports whether selector matches a visible, enabled element within timeout.
	WaitClickable(ctx context.Context, selector string, timeout time.Duration) bool
	// Click clicks the first element matching selector.
	Click(ctx context.Context, selector string) error
	// Fill types value into the first element matching selector.
	Fill(ctx context.Context, selector, value string) error
	// Upload attaches the file at path to the first file input matching selector.
	Upload(ctx context.Context, selector, path string) error
	// OuterHTML returns the markup of the first element matching selector.
	OuterHTML(ctx context.Context, selector string) (string, error)
	// OuterHTMLAll returns the markup of every element matching selector, in document order.
	OuterHTMLAll(ctx context.Context, selector string) ([]string, error)
}
