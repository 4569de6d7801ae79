package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/sirupsen/logrus"
)

const pollInterval = 100 * time.Millisecond

// ChromeLauncher starts a local Chrome or attaches to a remote one over CDP.
type ChromeLauncher struct {
	opts Options
	log  logrus.FieldLogger
}

// NewChromeLauncher creates a ChromeLauncher.
func NewChromeLauncher(opts Options, log logrus.FieldLogger) *ChromeLauncher {
	return &ChromeLauncher{opts: opts, log: log}
}

// Open starts the browser and returns its single tab. The caller owns the
// returned page and must Close it.
func (l *ChromeLauncher) Open(ctx context.Context) (Page, error) {
	baseCtx := context.Background()

	var allocCtx context.Context
	var allocCancel context.CancelFunc
	if cdpURL := strings.TrimSpace(l.opts.CDPURL); cdpURL != "" {
		l.log.WithField("cdp_url", cdpURL).Debug("Attaching to remote browser")
		allocCtx, allocCancel = chromedp.NewRemoteAllocator(baseCtx, cdpURL)
	} else {
		opts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", l.opts.Headless),
			chromedp.Flag("disable-gpu", l.opts.Headless),
		)
		if l.opts.WindowWidth > 0 && l.opts.WindowHeight > 0 {
			opts = append(opts, chromedp.WindowSize(l.opts.WindowWidth, l.opts.WindowHeight))
		}
		if path := strings.TrimSpace(l.opts.ChromePath); path != "" {
			opts = append(opts, chromedp.ExecPath(path))
		}
		if dir := strings.TrimSpace(l.opts.UserDataDir); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err == nil {
				opts = append(opts, chromedp.UserDataDir(dir))
			}
		}
		allocCtx, allocCancel = chromedp.NewExecAllocator(baseCtx, opts...)
	}

	tabCtx, tabCancel := chromedp.NewContext(allocCtx, chromedp.WithErrorf(l.log.Debugf))
	s := &ChromeSession{
		opts:        l.opts,
		log:         l.log,
		ctx:         tabCtx,
		cancel:      tabCancel,
		allocCancel: allocCancel,
	}

	// The first Run allocates the browser; it must use the tab context itself
	// so the browser is not tied to a short-lived deadline.
	started := make(chan error, 1)
	go func() { started <- chromedp.Run(tabCtx) }()
	select {
	case err := <-started:
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("start browser: %w", err)
		}
	case <-ctx.Done():
		s.Close()
		return nil, ctx.Err()
	}
	return s, nil
}

// ChromeSession is a Page backed by one chromedp tab.
type ChromeSession struct {
	opts        Options
	log         logrus.FieldLogger
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	closeOnce   sync.Once
}

var _ Page = (*ChromeSession)(nil)

// run executes actions on the tab, bounded by timeout and by the caller's ctx.
func (s *ChromeSession) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithTimeout(s.ctx, s.opts.timeoutOrDefault(timeout))
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	return chromedp.Run(runCtx, actions...)
}

// pace applies the configured slow-motion delay before an interaction.
func (s *ChromeSession) pace(ctx context.Context) error {
	if s.opts.SlowMotion <= 0 {
		return nil
	}
	t := time.NewTimer(s.opts.SlowMotion)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// notFound maps a deadline hit while waiting for selector to ErrNotFound,
// unless the caller's own context ended.
func notFound(ctx context.Context, err error, selector string, timeout time.Duration) error {
	if err == nil {
		return nil
	}
	if ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s not visible within %s: %w", selector, timeout, ErrNotFound)
	}
	return err
}

func (s *ChromeSession) Navigate(ctx context.Context, url string) error {
	s.log.WithField("url", url).Debug("Navigating")
	return s.run(ctx, 0, chromedp.Navigate(url))
}

func (s *ChromeSession) Reload(ctx context.Context) error {
	s.log.Debug("Reloading page")
	return s.run(ctx, 0, chromedp.Reload())
}

func (s *ChromeSession) Click(ctx context.Context, selector string, timeout time.Duration) error {
	if err := s.pace(ctx); err != nil {
		return err
	}
	timeout = s.opts.timeoutOrDefault(timeout)
	err := s.run(ctx, timeout, chromedp.Click(selector, chromedp.ByQuery, chromedp.NodeVisible))
	return notFound(ctx, err, selector, timeout)
}

func (s *ChromeSession) ClickText(ctx context.Context, text string, timeout time.Duration) error {
	if err := s.pace(ctx); err != nil {
		return err
	}
	timeout = s.opts.timeoutOrDefault(timeout)
	err := s.run(ctx, timeout, chromedp.Click(textButtonXPath(text), chromedp.BySearch, chromedp.NodeVisible))
	return notFound(ctx, err, fmt.Sprintf("button %q", text), timeout)
}

func (s *ChromeSession) SelectOption(ctx context.Context, selector, value string) error {
	return s.setValue(ctx, selector, value)
}

func (s *ChromeSession) Fill(ctx context.Context, selector, value string) error {
	return s.setValue(ctx, selector, value)
}

func (s *ChromeSession) setValue(ctx context.Context, selector, value string) error {
	if err := s.pace(ctx); err != nil {
		return err
	}
	var ok bool
	err := s.run(ctx, 0,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.Evaluate(setValueScript(selector, value), &ok),
	)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s did not accept value %q", selector, value)
	}
	return nil
}

func (s *ChromeSession) Check(ctx context.Context, selector string) error {
	if err := s.pace(ctx); err != nil {
		return err
	}
	var checked bool
	if err := s.run(ctx, 0,
		chromedp.WaitReady(selector, chromedp.ByQuery),
		chromedp.Evaluate(isCheckedScript(selector), &checked),
	); err != nil {
		return err
	}
	if checked {
		return nil
	}
	return s.run(ctx, 0, chromedp.Click(selector, chromedp.ByQuery, chromedp.NodeVisible))
}

func (s *ChromeSession) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	timeout = s.opts.timeoutOrDefault(timeout)
	err := s.run(ctx, timeout, chromedp.WaitVisible(selector, chromedp.ByQuery))
	return notFound(ctx, err, selector, timeout)
}

func (s *ChromeSession) WaitAny(ctx context.Context, selectors []string, timeout time.Duration) (string, error) {
	timeout = s.opts.timeoutOrDefault(timeout)
	deadline := time.Now().Add(timeout)
	script := visibleIndexScript(selectors)

	for {
		idx := -1
		if err := s.run(ctx, pollInterval*10, chromedp.Evaluate(script, &idx)); err != nil && ctx.Err() == nil {
			s.log.WithError(err).Debug("Visibility probe failed")
		}
		if idx >= 0 && idx < len(selectors) {
			return selectors[idx], nil
		}
		if time.Now().After(deadline) {
			return "", fmt.Errorf("none of %s visible within %s: %w", strings.Join(selectors, ", "), timeout, ErrNotFound)
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}

func (s *ChromeSession) InnerHTML(ctx context.Context, selector string) (string, error) {
	var html string
	if err := s.run(ctx, 0, chromedp.InnerHTML(selector, &html, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return html, nil
}

func (s *ChromeSession) Screenshot(ctx context.Context, selector string) ([]byte, error) {
	var buf []byte
	if err := s.run(ctx, 0, chromedp.Screenshot(selector, &buf, chromedp.NodeVisible, chromedp.ByQuery)); err != nil {
		return nil, err
	}
	return buf, nil
}

// RenderPDF loads html into a scratch tab of the same browser and prints it.
func (s *ChromeSession) RenderPDF(ctx context.Context, html string) ([]byte, error) {
	tabCtx, cancel := chromedp.NewContext(s.ctx)
	defer cancel()
	if err := chromedp.Run(tabCtx); err != nil {
		return nil, fmt.Errorf("open render tab: %w", err)
	}

	runCtx, runCancel := context.WithTimeout(tabCtx, s.opts.timeoutOrDefault(0))
	defer runCancel()
	stop := context.AfterFunc(ctx, runCancel)
	defer stop()

	var pdf []byte
	err := chromedp.Run(runCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, html).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdf, _, err = page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, err
	}
	return pdf, nil
}

// Close shuts the browser down. It is safe to call more than once.
func (s *ChromeSession) Close() error {
	var err error
	s.closeOnce.Do(func() {
		if s.ctx != nil {
			if cerr := chromedp.Cancel(s.ctx); cerr != nil && !errors.Is(cerr, context.Canceled) {
				err = cerr
			}
		}
		if s.cancel != nil {
			s.cancel()
		}
		if s.allocCancel != nil {
			s.allocCancel()
		}
	})
	return err
}
