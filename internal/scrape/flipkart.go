package scrape

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/ankitdev/price-radar/internal/browser"
	"github.com/ankitdev/price-radar/internal/models"
	"github.com/ankitdev/price-radar/internal/parser"
	"github.com/playwright-community/playwright-go"
)

const (
	flipkartResultSelector = "div[data-id]"
	flipkartCloseSelector  = "button:has-text(\"✕\")"
)

type FlipkartConfig struct {
	BaseURL     string
	WaitTimeout time.Duration
	// OverlayWait bounds the check for the login interstitial; the
	// overlay not showing up is the normal case, not an error.
	OverlayWait time.Duration
}

func DefaultFlipkartConfig() FlipkartConfig {
	return FlipkartConfig{
		BaseURL:     "https://www.flipkart.com",
		WaitTimeout: 15 * time.Second,
		OverlayWait: 3 * time.Second,
	}
}

type FlipkartExtractor struct {
	browser *browser.Browser
	parser  parser.Parser
	cfg     FlipkartConfig
	logger  *slog.Logger
}

func NewFlipkartExtractor(b *browser.Browser, cfg FlipkartConfig, logger *slog.Logger) *FlipkartExtractor {
	defaults := DefaultFlipkartConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaults.BaseURL
	}
	if cfg.WaitTimeout == 0 {
		cfg.WaitTimeout = defaults.WaitTimeout
	}
	if cfg.OverlayWait == 0 {
		cfg.OverlayWait = defaults.OverlayWait
	}
	return &FlipkartExtractor{
		browser: b,
		parser:  parser.NewFlipkartParser(),
		cfg:     cfg,
		logger:  logger.With("component", "flipkart_extractor"),
	}
}

func (e *FlipkartExtractor) Source() models.Source {
	return models.SourceFlipkart
}

func (e *FlipkartExtractor) Extract(ctx context.Context, target models.ScrapeTarget) (*models.RawExtraction, error) {
	session, err := e.browser.NewSession()
	if err != nil {
		return nil, ErrSession{Err: err}
	}
	defer session.Close()
	stop := closeOnCancel(ctx, session)
	defer stop()

	searchURL := fmt.Sprintf("%s/search?q=%s", e.cfg.BaseURL, url.QueryEscape(target.ProductName))
	e.logger.Info("extracting", "target", target.ProductName, "url", searchURL)

	if err := session.Navigate(searchURL); err != nil {
		return nil, ErrSession{Err: err}
	}

	page := session.Page()
	e.dismissLoginOverlay(page)

	if _, err := page.WaitForSelector(flipkartResultSelector, playwright.PageWaitForSelectorOptions{
		Timeout: playwright.Float(float64(e.cfg.WaitTimeout.Milliseconds())),
	}); err != nil {
		if ctx.Err() != nil {
			return nil, ErrTimeout{Err: ctx.Err()}
		}
		return nil, ErrNotFound{Err: fmt.Errorf("search results did not appear: %w", err)}
	}

	node := page.Locator(flipkartResultSelector).First()
	html, err := node.InnerHTML()
	if err != nil {
		return nil, ErrSession{Err: fmt.Errorf("failed to read result node: %w", err)}
	}

	// Flipkart never hard-fails on sub-fields; whatever was found is
	// returned and the normalizer models the rest as absent.
	raw, err := e.parser.ParseResultNode(html)
	if err != nil {
		return nil, ErrParse{Err: err}
	}

	return raw, nil
}

// dismissLoginOverlay closes the login popup when Flipkart shows it on
// first navigation. Absence of the popup is expected.
func (e *FlipkartExtractor) dismissLoginOverlay(page playwright.Page) {
	closeButton := page.Locator(flipkartCloseSelector).First()

	if err := closeButton.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(float64(e.cfg.OverlayWait.Milliseconds())),
	}); err != nil {
		return
	}

	if err := closeButton.Click(); err != nil {
		e.logger.Debug("failed to dismiss login overlay", "error", err)
	}
}
