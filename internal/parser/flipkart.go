package parser

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ankitdev/price-radar/internal/models"
)

// FlipkartParser reads fields from one Flipkart search-result node
// (div[data-id]). Result markup varies across product categories, so
// every sub-field is individually optional: a missing field is left
// out of the extraction instead of failing the attempt.
type FlipkartParser struct {
	titleSelectors  []string
	priceSelectors  []string
	ratingSelectors []string
}

func NewFlipkartParser() *FlipkartParser {
	return &FlipkartParser{
		titleSelectors: []string{
			"div._4rR01T",
			"a.IRpwTa",
			"a.s1Q9rs",
		},
		priceSelectors: []string{
			"div._30jeq3",
		},
		ratingSelectors: []string{
			"div._3LWZlK",
		},
	}
}

func (p *FlipkartParser) Source() models.Source {
	return models.SourceFlipkart
}

func (p *FlipkartParser) ParseResultNode(html string) (*models.RawExtraction, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	raw := models.NewRawExtraction(models.SourceFlipkart)

	if title := p.firstText(doc, p.titleSelectors); title != "" {
		raw.Set(models.FieldTitle, title)
	}

	// Price text carries the rupee symbol and thousands separators,
	// e.g. "₹49,999". Stripping is the normalizer's job.
	if price := p.firstText(doc, p.priceSelectors); price != "" {
		raw.Set(models.FieldPrice, price)
	}

	if rating := p.firstText(doc, p.ratingSelectors); rating != "" {
		raw.Set(models.FieldRating, rating)
	}

	return raw, nil
}

func (p *FlipkartParser) firstText(doc *goquery.Document, selectors []string) string {
	for _, selector := range selectors {
		text := strings.TrimSpace(doc.Find(selector).First().Text())
		if text != "" {
			return text
		}
	}
	return ""
}
