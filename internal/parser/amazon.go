package parser

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ankitdev/price-radar/internal/models"
)

// AmazonParser reads fields from one Amazon search-result node
// ([data-component-type='s-search-result']). Title and price are
// required on Amazon; their absence fails the whole attempt rather
// than yielding a partial record.
type AmazonParser struct {
	titleSelectors  []string
	priceSelectors  []string
	ratingSelectors []string
}

func NewAmazonParser() *AmazonParser {
	return &AmazonParser{
		titleSelectors: []string{
			"h2 span",
			"h2 a span",
			".a-text-normal",
		},
		priceSelectors: []string{
			".a-price-whole",
		},
		ratingSelectors: []string{
			".a-icon-alt",
			"i.a-icon-star-small span",
		},
	}
}

func (p *AmazonParser) Source() models.Source {
	return models.SourceAmazon
}

func (p *AmazonParser) ParseResultNode(html string) (*models.RawExtraction, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	raw := models.NewRawExtraction(models.SourceAmazon)

	title := p.firstText(doc, p.titleSelectors)
	if title == "" {
		return nil, fmt.Errorf("title not found in result node")
	}
	raw.Set(models.FieldTitle, title)

	// Price text is the whole part only: thousands-separated digits,
	// no currency symbol, no fraction.
	price := p.firstText(doc, p.priceSelectors)
	if price == "" {
		return nil, fmt.Errorf("price not found in result node")
	}
	raw.Set(models.FieldPrice, price)

	if rating := p.firstText(doc, p.ratingSelectors); rating != "" {
		raw.Set(models.FieldRating, rating)
	}

	if strings.Contains(doc.Text(), "Currently unavailable") {
		raw.Set(models.FieldAvailability, "Unavailable")
	} else {
		raw.Set(models.FieldAvailability, "Available")
	}

	return raw, nil
}

func (p *AmazonParser) firstText(doc *goquery.Document, selectors []string) string {
	for _, selector := range selectors {
		text := strings.TrimSpace(doc.Find(selector).First().Text())
		if text != "" {
			return text
		}
	}
	return ""
}
