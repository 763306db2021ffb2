// Package browser abstracts the headless-browser driver behind small
// interfaces so portal workflows can be exercised without a real browser.
// Each launched Page owns an isolated browser instance; Close releases the
// page, its context, and the browser in one call.
package browser

import (
	"context"
	"errors"
	"time"
)

// ErrTimeout reports that a wait operation exceeded its deadline.
var ErrTimeout = errors.New("browser: wait timed out")

// Cookie is a single cookie to inject into a browser context, scoped to URL.
type Cookie struct {
	Name  string
	Value string
	URL   string
}

// ClickOptions adjusts click dispatch behavior.
type ClickOptions struct {
	// Force bypasses actionability checks (visibility, overlays).
	Force bool
	// Timeout bounds the click attempt; zero uses the driver default.
	Timeout time.Duration
}

// Launcher starts isolated headless browser sessions.
type Launcher interface {
	Launch(ctx context.Context) (Page, error)
}

// Page drives a single page in an isolated browser context.
type Page interface {
	// AddCookies injects cookies into the page's browser context.
	AddCookies(cookies []Cookie) error

	// Cookies returns all cookies from the page's browser context.
	Cookies() (map[string]string, error)

	// Navigate loads the URL and waits for network idle within timeout.
	Navigate(url string, timeout time.Duration) error

	// URL returns the page's current URL.
	URL() string

	// Fill sets the value of the first element matching selector.
	Fill(selector, value string) error

	// Click clicks the first element matching selector.
	Click(selector string, opts ClickOptions) error

	// WaitForSelector blocks until an element matching selector is visible,
	// returning ErrTimeout when the deadline passes first.
	WaitForSelector(selector string, timeout time.Duration) error

	// WaitForNetworkIdle blocks until the page reaches network idle.
	WaitForNetworkIdle(timeout time.Duration) error

	// IsVisible reports whether the first match of selector is visible.
	// Lookup failures count as not visible.
	IsVisible(selector string) bool

	// InnerText returns the rendered text of the first match of selector.
	InnerText(selector string) (string, error)

	// AllInnerTexts returns the rendered text of every match of selector.
	AllInnerTexts(selector string) ([]string, error)

	// GetAttribute returns the named attribute of the first match of selector.
	GetAttribute(selector, name string) (string, error)

	// Evaluate runs a JavaScript expression against the first match of selector.
	Evaluate(selector, expression string) error

	// ScrollIntoView scrolls the first match of selector into the viewport.
	ScrollIntoView(selector string) error

	// BodyText returns the rendered text of the page body.
	BodyText() (string, error)

	// Close releases the page, its browsing context, and the owning browser.
	Close() error
}
