// Package browser drives a headless Chrome to render category pages.
//
// A Session owns one browser process and one tab. Pages are loaded
// sequentially in that tab; the session must be closed when the run ends.
package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog"

	"plp-monitor/internal/config"
)

const (
	defaultNavigationTimeout = 60 * time.Second
	defaultSelectorTimeout   = 30 * time.Second
)

// Session is a headless browser with a single reusable tab.
type Session struct {
	cfg      config.BrowserConfig
	selector string
	logger   zerolog.Logger

	tabCtx        context.Context
	cancelTab     context.CancelFunc
	cancelAllocer context.CancelFunc
}

// NewSession creates a Session that waits for selector on every page.
// Zero timeouts fall back to 60s for page settle and 30s for the selector.
func NewSession(cfg config.BrowserConfig, selector string, logger zerolog.Logger) *Session {
	if cfg.NavigationTimeout <= 0 {
		cfg.NavigationTimeout = defaultNavigationTimeout
	}
	if cfg.SelectorTimeout <= 0 {
		cfg.SelectorTimeout = defaultSelectorTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = config.DefaultUserAgent
	}
	return &Session{
		cfg:      cfg,
		selector: selector,
		logger:   logger.With().Str("component", "browser").Logger(),
	}
}

// Open starts the browser and its tab. Errors here mean the browser
// engine is unavailable and are fatal to the run.
func (s *Session) Open(ctx context.Context) error {
	if s.tabCtx != nil {
		return nil
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", s.cfg.Headless),
		chromedp.WindowSize(s.cfg.ViewportWidth, s.cfg.ViewportHeight),
		chromedp.UserAgent(s.cfg.UserAgent),
	)
	if s.cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(s.cfg.ExecPath))
	}
	if s.cfg.NoSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx,
		chromedp.WithErrorf(func(format string, args ...interface{}) {
			s.logger.Debug().Msgf(format, args...)
		}),
	)

	// The first Run launches the browser and opens the tab.
	err := chromedp.Run(tabCtx,
		page.SetLifecycleEventsEnabled(true),
		chromedp.EmulateViewport(int64(s.cfg.ViewportWidth), int64(s.cfg.ViewportHeight)),
	)
	if err != nil {
		cancelTab()
		cancelAlloc()
		return fmt.Errorf("failed to start browser: %w", err)
	}

	s.tabCtx = tabCtx
	s.cancelTab = cancelTab
	s.cancelAllocer = cancelAlloc

	s.logger.Debug().
		Bool("headless", s.cfg.Headless).
		Int("viewport_width", s.cfg.ViewportWidth).
		Int("viewport_height", s.cfg.ViewportHeight).
		Msg("browser session opened")
	return nil
}

// Close closes the tab and shuts the browser down. It is safe to call
// more than once.
func (s *Session) Close() {
	if s.cancelTab != nil {
		s.cancelTab()
		s.cancelTab = nil
	}
	if s.cancelAllocer != nil {
		s.cancelAllocer()
		s.cancelAllocer = nil
	}
	if s.tabCtx != nil {
		s.tabCtx = nil
		s.logger.Debug().Msg("browser session closed")
	}
}

// Fetch loads url, waits for the network to settle and for at least one
// element matching the selector to become visible, then returns the
// rendered markup. Failures are returned as *FetchError.
func (s *Session) Fetch(ctx context.Context, url string) (string, error) {
	if s.tabCtx == nil {
		return "", &FetchError{URL: url, Kind: KindFetch, Stage: "opening page", Err: ErrNotOpen}
	}

	start := time.Now()

	navCtx, cancelNav := s.boundedContext(ctx, s.cfg.NavigationTimeout)
	defer cancelNav()
	if err := s.navigate(navCtx, url); err != nil {
		return "", newFetchError(url, "loading page", navCtx, err)
	}

	selCtx, cancelSel := s.boundedContext(ctx, s.cfg.SelectorTimeout)
	defer cancelSel()
	var html string
	err := chromedp.Run(selCtx,
		chromedp.WaitVisible(s.selector, chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", newFetchError(url, "waiting for selector", selCtx, err)
	}

	s.logger.Debug().
		Str("url", url).
		Int("bytes", len(html)).
		Dur("duration", time.Since(start)).
		Msg("page rendered")
	return html, nil
}

// boundedContext derives a context from the tab with the given timeout
// that is also cancelled when parent is.
func (s *Session) boundedContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(s.tabCtx, timeout)
	stop := context.AfterFunc(parent, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

// navigate loads url and blocks until the main frame reports network idle.
func (s *Session) navigate(ctx context.Context, url string) error {
	idle := make(chan struct{})

	// Lifecycle events are delivered on a single goroutine, so the
	// listener's own state needs no locking.
	var mainFrame cdp.FrameID
	closed := false
	listenCtx, stopListening := context.WithCancel(ctx)
	defer stopListening()
	chromedp.ListenTarget(listenCtx, func(ev interface{}) {
		e, ok := ev.(*page.EventLifecycleEvent)
		if !ok || closed {
			return
		}
		switch e.Name {
		case "init":
			if mainFrame == "" {
				mainFrame = e.FrameID
			}
		case "networkIdle":
			if mainFrame != "" && e.FrameID == mainFrame {
				closed = true
				close(idle)
			}
		}
	})

	if err := chromedp.Run(ctx, chromedp.Navigate(url)); err != nil {
		return err
	}

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
