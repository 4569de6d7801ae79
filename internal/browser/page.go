package browser

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when an element does not show up within the
// allotted time.
var ErrNotFound = errors.New("element not found")

// Page is the single browser page a run drives. Every wait is bounded by
// the timeout argument or, when zero, by the session's action timeout.
type Page interface {
	Navigate(ctx context.Context, url string) error
	Reload(ctx context.Context) error

	Click(ctx context.Context, selector string, timeout time.Duration) error
	// ClickText clicks a button or link whose visible text equals text.
	ClickText(ctx context.Context, text string, timeout time.Duration) error
	SelectOption(ctx context.Context, selector, value string) error
	Check(ctx context.Context, selector string) error
	Fill(ctx context.Context, selector, value string) error

	WaitVisible(ctx context.Context, selector string, timeout time.Duration) error
	// WaitAny returns the first selector, in argument order, that is visible
	// within timeout, or ErrNotFound.
	WaitAny(ctx context.Context, selectors []string, timeout time.Duration) (string, error)

	InnerHTML(ctx context.Context, selector string) (string, error)
	Screenshot(ctx context.Context, selector string) ([]byte, error)
	// RenderPDF prints a standalone HTML document to PDF without disturbing
	// the current page.
	RenderPDF(ctx context.Context, html string) ([]byte, error)

	Close() error
}

// Launcher opens the session for a run.
type Launcher interface {
	Open(ctx context.Context) (Page, error)
}

// Options configures a Chrome session.
type Options struct {
	Headless      bool
	ChromePath    string
	CDPURL        string
	UserDataDir   string
	SlowMotion    time.Duration
	ActionTimeout time.Duration
	WindowWidth   int
	WindowHeight  int
}

func (o Options) timeoutOrDefault(timeout time.Duration) time.Duration {
	if timeout > 0 {
		return timeout
	}
	if o.ActionTimeout > 0 {
		return o.ActionTimeout
	}
	return 60 * time.Second
}
