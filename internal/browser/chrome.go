package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

const (
	// DefaultWaitTimeout bounds every single browser call.
	DefaultWaitTimeout = 5 * time.Second
	// DefaultSettleDelay is the pause after navigation and clicks so scripts can render.
	DefaultSettleDelay = 3 * time.Second
)

// Options configures a ChromeSession.
type Options struct {
	Headless    bool
	UserAgent   string
	WaitTimeout time.Duration
	SettleDelay time.Duration
}

// DefaultOptions returns headless defaults.
func DefaultOptions() Options {
	return Options{
		Headless:    true,
		WaitTimeout: DefaultWaitTimeout,
		SettleDelay: DefaultSettleDelay,
	}
}

// ChromeSession is a Session backed by a single chromedp tab.
// It is not safe for concurrent use.
type ChromeSession struct {
	browserCtx  context.Context
	cancelAlloc context.CancelFunc
	cancelTab   context.CancelFunc
	waitTimeout time.Duration
	settleDelay time.Duration
	logger      *zap.Logger
}

// NewChromeSession starts a browser process and opens one tab.
// Requires Chrome/Chromium to be installed on the system.
func NewChromeSession(ctx context.Context, opts Options, logger *zap.Logger) (*ChromeSession, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.WaitTimeout <= 0 {
		opts.WaitTimeout = DefaultWaitTimeout
	}
	if opts.SettleDelay < 0 {
		opts.SettleDelay = 0
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
	)
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	browserCtx, cancelTab := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(logger.Sugar().Debugf),
	)

	// Running with no actions launches the browser.
	if err := chromedp.Run(browserCtx); err != nil {
		cancelTab()
		cancelAlloc()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	logger.Info("browser started", zap.Bool("headless", opts.Headless))

	return &ChromeSession{
		browserCtx:  browserCtx,
		cancelAlloc: cancelAlloc,
		cancelTab:   cancelTab,
		waitTimeout: opts.WaitTimeout,
		settleDelay: opts.SettleDelay,
		logger:      logger,
	}, nil
}

// Close shuts down the tab and the browser process.
func (s *ChromeSession) Close() error {
	s.cancelTab()
	s.cancelAlloc()
	return nil
}

// callCtx derives a per-call context from the browser context, bounded by
// timeout and cancelled together with ctx.
func (s *ChromeSession) callCtx(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	callCtx, cancel := context.WithTimeout(s.browserCtx, timeout)
	stop := context.AfterFunc(ctx, cancel)
	return callCtx, func() {
		stop()
		cancel()
	}
}

func (s *ChromeSession) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	callCtx, cancel := s.callCtx(ctx, timeout)
	defer cancel()
	return chromedp.Run(callCtx, actions...)
}

// Navigate loads url, waits for the body, then lets scripts settle.
func (s *ChromeSession) Navigate(ctx context.Context, url string) error {
	s.logger.Debug("navigate", zap.String("url", url))
	err := s.run(ctx, s.waitTimeout+s.settleDelay+30*time.Second,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(s.settleDelay),
	)
	if err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

// CurrentURL returns the location of the tab.
func (s *ChromeSession) CurrentURL(ctx context.Context) (string, error) {
	var location string
	if err := s.run(ctx, s.waitTimeout, chromedp.Location(&location)); err != nil {
		return "", fmt.Errorf("failed to read location: %w", err)
	}
	return location, nil
}

// WaitPresent reports whether selector is in the DOM within timeout.
func (s *ChromeSession) WaitPresent(ctx context.Context, selector string, timeout time.Duration) bool {
	return s.run(ctx, timeout, chromedp.WaitReady(selector, chromedp.ByQuery)) == nil
}

// WaitClickable reports whether selector is visible and enabled within timeout.
func (s *ChromeSession) WaitClickable(ctx context.Context, selector string, timeout time.Duration) bool {
	return s.run(ctx, timeout,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.WaitEnabled(selector, chromedp.ByQuery),
	) == nil
}

// Click clicks selector and lets the page settle.
func (s *ChromeSession) Click(ctx context.Context, selector string) error {
	s.logger.Debug("click", zap.String("selector", selector))
	err := s.run(ctx, s.waitTimeout+s.settleDelay,
		chromedp.Click(selector, chromedp.ByQuery, chromedp.NodeVisible),
		chromedp.Sleep(s.settleDelay),
	)
	if err != nil {
		return fmt.Errorf("failed to click %s: %w", selector, err)
	}
	return nil
}

// Fill clears selector and types value into it.
func (s *ChromeSession) Fill(ctx context.Context, selector, value string) error {
	err := s.run(ctx, s.waitTimeout,
		chromedp.Clear(selector, chromedp.ByQuery, chromedp.NodeVisible),
		chromedp.SendKeys(selector, value, chromedp.ByQuery, chromedp.NodeVisible),
	)
	if err != nil {
		return fmt.Errorf("failed to fill %s: %w", selector, err)
	}
	return nil
}

// Upload sets the files of a file input.
func (s *ChromeSession) Upload(ctx context.Context, selector, path string) error {
	err := s.run(ctx, s.waitTimeout,
		chromedp.SetUploadFiles(selector, []string{path}, chromedp.ByQuery, chromedp.NodeReady),
	)
	if err != nil {
		return fmt.Errorf("failed to upload %s to %s: %w", path, selector, err)
	}
	return nil
}

// OuterHTML returns the markup of the first match of selector.
func (s *ChromeSession) OuterHTML(ctx context.Context, selector string) (string, error) {
	var html string
	if err := s.run(ctx, s.waitTimeout, chromedp.OuterHTML(selector, &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("failed to read html of %s: %w", selector, err)
	}
	return html, nil
}

// OuterHTMLAll returns the markup of every match of selector. No match yields an empty slice.
func (s *ChromeSession) OuterHTMLAll(ctx context.Context, selector string) ([]string, error) {
	quoted, err := json.Marshal(selector)
	if err != nil {
		return nil, fmt.Errorf("failed to quote selector: %w", err)
	}
	script := fmt.Sprintf(`Array.from(document.querySelectorAll(%s)).map(e => e.outerHTML)`, quoted)

	var out []string
	if err := s.run(ctx, s.waitTimeout, chromedp.Evaluate(script, &out)); err != nil {
		return nil, fmt.Errorf("failed to read html of %s: %w", selector, err)
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}

var _ Session = (*ChromeSession)(nil)
