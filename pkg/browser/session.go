package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/browser"
	"github.com/chromedp/chromedp"

	"sriscraper/pkg/config"
	"sriscraper/pkg/errors"
	"sriscraper/pkg/logger"
)

// Session owns one Chrome instance for the duration of a run: launch,
// navigation, element interaction and teardown all go through it.
type Session struct {
	cfg        config.BrowserConfig
	navTimeout time.Duration
	logger     logger.Logger

	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	started     bool
}

// NewSession creates a Session; the browser is not launched until Start
func NewSession(cfg *config.Config, log logger.Logger) *Session {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Session{
		cfg:        cfg.Browser,
		navTimeout: cfg.Timing.NavTimeout,
		logger:     log,
	}
}

// Start launches Chrome with download preferences applied: downloads
// are accepted without prompting and land in the configured download
// directory. Start is idempotent for the life of the session.
func (s *Session) Start(ctx context.Context) error {
	if s.started {
		return nil
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", s.cfg.Headless),
		chromedp.UserAgent(s.cfg.UserAgent),
		chromedp.Flag("window-size", s.cfg.WindowSize),
		chromedp.Flag("safebrowsing-disable-download-protection", true),
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.NoSandbox,
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, cancel := chromedp.NewContext(allocCtx)

	// Launch eagerly so a missing or broken Chrome surfaces here
	if err := chromedp.Run(browserCtx); err != nil {
		cancel()
		allocCancel()
		return errors.Wrap(errors.ErrorTypeNavigation, "failed to launch browser", err)
	}

	if err := chromedp.Run(browserCtx,
		browser.SetDownloadBehavior(browser.SetDownloadBehaviorBehaviorAllow).
			WithDownloadPath(s.cfg.DownloadDir).
			WithEventsEnabled(true),
	); err != nil {
		cancel()
		allocCancel()
		return errors.Wrap(errors.ErrorTypeNavigation, "failed to set download behavior", err)
	}

	s.ctx = browserCtx
	s.cancel = cancel
	s.allocCancel = allocCancel
	s.started = true

	s.logger.WithField("download_dir", s.cfg.DownloadDir).Info("Browser session started")
	return nil
}

// Navigate loads the given URL and waits for the document to be ready
func (s *Session) Navigate(url string) error {
	ctx, cancel := context.WithTimeout(s.ctx, s.navTimeout)
	defer cancel()

	if err := chromedp.Run(ctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	); err != nil {
		return errors.Wrap(errors.ErrorTypeNavigation, fmt.Sprintf("failed to load %s", url), err)
	}
	return nil
}

// PageHTML returns the rendered document's outer HTML
func (s *Session) PageHTML() (string, error) {
	var html string
	if err := chromedp.Run(s.ctx, chromedp.OuterHTML("html", &html)); err != nil {
		return "", errors.Wrap(errors.ErrorTypeNavigation, "failed to read page HTML", err)
	}
	return html, nil
}

// ElementActionable reports whether the element with the given id is
// both visible and enabled. A missing element is reported as a
// classified element-not-found error, not a hard failure.
func (s *Session) ElementActionable(id string) (bool, error) {
	script := fmt.Sprintf(`(function() {
		const el = document.getElementById(%q);
		if (!el) {
			return 'notfound';
		}
		const style = window.getComputedStyle(el);
		const visible = el.offsetParent !== null && style.visibility !== 'hidden' && style.display !== 'none';
		const enabled = !el.hasAttribute('disabled') && !el.classList.contains('ui-state-disabled');
		return (visible && enabled) ? 'actionable' : 'inactive';
	})()`, id)

	var result string
	if err := chromedp.Run(s.ctx, chromedp.Evaluate(script, &result)); err != nil {
		return false, errors.Wrap(errors.ErrorTypeNavigation, "element state check failed", err)
	}

	switch result {
	case "actionable":
		return true, nil
	case "inactive":
		return false, nil
	default:
		return false, errors.New(errors.ErrorTypeElementNotFound, fmt.Sprintf("element %s not found", id))
	}
}

// ClickID invokes a programmatic click on the element with the given id
func (s *Session) ClickID(id string) error {
	script := fmt.Sprintf(`(function() {
		const el = document.getElementById(%q);
		if (!el) {
			return 'notfound';
		}
		el.click();
		return 'clicked';
	})()`, id)

	var result string
	if err := chromedp.Run(s.ctx, chromedp.Evaluate(script, &result)); err != nil {
		return errors.Wrap(errors.ErrorTypeNavigation, "click failed", err)
	}
	if result != "clicked" {
		return errors.New(errors.ErrorTypeElementNotFound, fmt.Sprintf("element %s not found", id))
	}
	return nil
}

// ClickNext clicks the first "next page" control not carrying the
// disabled class. It reports whether anything was clicked; a page with
// no enabled control is the normal end of pagination, not an error.
func (s *Session) ClickNext(selector, disabledClass string) (bool, error) {
	script := fmt.Sprintf(`(function() {
		const controls = document.querySelectorAll(%q);
		for (const el of controls) {
			const classes = el.getAttribute('class') || '';
			if (!classes.includes(%q)) {
				el.click();
				return 'clicked';
			}
		}
		return 'notfound';
	})()`, selector, disabledClass)

	var result string
	if err := chromedp.Run(s.ctx, chromedp.Evaluate(script, &result)); err != nil {
		return false, errors.Wrap(errors.ErrorTypeNavigation, "pagination click failed", err)
	}
	return result == "clicked", nil
}

// Close tears the browser down. Safe to call whether or not Start
// succeeded, and meant to run via defer so the session is closed even
// on an unhandled failure.
func (s *Session) Close() {
	if s.cancel != nil {
		s.cancel()
	}
	if s.allocCancel != nil {
		s.allocCancel()
	}
	if s.started {
		s.logger.Info("Browser session closed")
	}
	s.started = false
}
