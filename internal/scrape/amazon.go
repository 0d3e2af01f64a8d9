package scrape

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/ankitdev/price-radar/internal/browser"
	"github.com/ankitdev/price-radar/internal/models"
	"github.com/ankitdev/price-radar/internal/parser"
	"github.com/playwright-community/playwright-go"
)

const amazonResultSelector = "[data-component-type='s-search-result']"

// AmazonConfig is the per-deployment configuration of the Amazon
// extractor. AssumedRating, when set, fills in a rating for results
// that do not expose one; it is nil (disabled) by default so a
// constant never masquerades as scraped data.
type AmazonConfig struct {
	BaseURL       string
	WaitTimeout   time.Duration
	AssumedRating *float64
}

func DefaultAmazonConfig() AmazonConfig {
	return AmazonConfig{
		BaseURL:     "https://www.amazon.in",
		WaitTimeout: 15 * time.Second,
	}
}

type AmazonExtractor struct {
	browser *browser.Browser
	parser  parser.Parser
	cfg     AmazonConfig
	logger  *slog.Logger
}

func NewAmazonExtractor(b *browser.Browser, cfg AmazonConfig, logger *slog.Logger) *AmazonExtractor {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultAmazonConfig().BaseURL
	}
	if cfg.WaitTimeout == 0 {
		cfg.WaitTimeout = DefaultAmazonConfig().WaitTimeout
	}
	return &AmazonExtractor{
		browser: b,
		parser:  parser.NewAmazonParser(),
		cfg:     cfg,
		logger:  logger.With("component", "amazon_extractor"),
	}
}

func (e *AmazonExtractor) Source() models.Source {
	return models.SourceAmazon
}

func (e *AmazonExtractor) Extract(ctx context.Context, target models.ScrapeTarget) (*models.RawExtraction, error) {
	session, err := e.browser.NewSession()
	if err != nil {
		return nil, ErrSession{Err: err}
	}
	defer session.Close()
	stop := closeOnCancel(ctx, session)
	defer stop()

	searchURL := fmt.Sprintf("%s/s?k=%s", e.cfg.BaseURL, url.QueryEscape(target.ProductName))
	e.logger.Info("extracting", "target", target.ProductName, "url", searchURL)

	if err := session.Navigate(searchURL); err != nil {
		return nil, ErrSession{Err: err}
	}

	page := session.Page()
	if _, err := page.WaitForSelector(amazonResultSelector, playwright.PageWaitForSelectorOptions{
		Timeout: playwright.Float(float64(e.cfg.WaitTimeout.Milliseconds())),
	}); err != nil {
		if ctx.Err() != nil {
			return nil, ErrTimeout{Err: ctx.Err()}
		}
		return nil, ErrNotFound{Err: fmt.Errorf("search results did not appear: %w", err)}
	}

	node := page.Locator(amazonResultSelector).First()
	html, err := node.InnerHTML()
	if err != nil {
		return nil, ErrSession{Err: fmt.Errorf("failed to read result node: %w", err)}
	}

	raw, err := e.parser.ParseResultNode(html)
	if err != nil {
		// Title and price are required on Amazon.
		return nil, ErrNotFound{Err: err}
	}

	if _, ok := raw.Get(models.FieldRating); !ok && e.cfg.AssumedRating != nil {
		raw.Set(models.FieldRating, strconv.FormatFloat(*e.cfg.AssumedRating, 'f', 1, 64))
		e.logger.Warn("using configured assumed rating",
			"target", target.ProductName,
			"rating", *e.cfg.AssumedRating)
	}

	return raw, nil
}
