package normalize

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/ankitdev/price-radar/internal/models"
)

// AvailabilityUnknown is recorded when the source gave no availability
// signal. It is distinct from "Available" and "Unavailable".
const AvailabilityUnknown = "unknown"

// Config fixes the deployment-level normalization choices. Currency is
// a per-source constant, not auto-detected from page text.
type Config struct {
	Currencies map[models.Source]string
	// TitleFallbackToTarget substitutes the input product name when a
	// source returned no title. Off by default: substitution is an
	// explicit operator choice, never silent behavior.
	TitleFallbackToTarget bool
}

func DefaultConfig() Config {
	return Config{
		Currencies: map[models.Source]string{
			models.SourceAmazon:   "INR",
			models.SourceFlipkart: "INR",
		},
	}
}

// Normalizer converts raw source-specific field text into the
// canonical record shape. Normalize is total and side-effect-free
// apart from logging.
type Normalizer struct {
	cfg    Config
	logger *slog.Logger
}

func New(cfg Config, logger *slog.Logger) *Normalizer {
	if len(cfg.Currencies) == 0 {
		cfg.Currencies = DefaultConfig().Currencies
	}
	return &Normalizer{
		cfg:    cfg,
		logger: logger.With("component", "normalizer"),
	}
}

// Normalize builds the canonical record for one extraction. A missing
// or unparsable optional field becomes an explicit absence; a record
// that cannot carry a title is rejected.
func (n *Normalizer) Normalize(raw *models.RawExtraction, target models.ScrapeTarget) (*models.NormalizedRecord, error) {
	title, ok := raw.Get(models.FieldTitle)
	if !ok || strings.TrimSpace(title) == "" {
		if !n.cfg.TitleFallbackToTarget {
			return nil, fmt.Errorf("no title extracted for %q from %s", target.ProductName, raw.Source)
		}
		title = target.ProductName
		n.logger.Warn("substituting target name for missing title",
			"target", target.ProductName, "source", raw.Source)
	}

	record := &models.NormalizedRecord{
		ProductName:  target.ProductName,
		Source:       raw.Source,
		Title:        strings.TrimSpace(title),
		Currency:     n.cfg.Currencies[raw.Source],
		Availability: AvailabilityUnknown,
	}

	if text, ok := raw.Get(models.FieldPrice); ok {
		record.Price = n.parsePrice(text, target.ProductName)
	}

	if text, ok := raw.Get(models.FieldRating); ok {
		record.Rating = n.parseRating(text, target.ProductName)
	}

	if availability, ok := raw.Get(models.FieldAvailability); ok && strings.TrimSpace(availability) != "" {
		record.Availability = strings.TrimSpace(availability)
	}

	return record, nil
}

// parsePrice strips locale separators and currency symbols and parses
// a non-negative amount. Unparsable text yields absence, never a
// default or fallback number.
func (n *Normalizer) parsePrice(text, target string) *float64 {
	cleaned := strings.TrimSpace(text)
	for _, symbol := range []string{"₹", "Rs.", "Rs", "INR", "$", "€", "£"} {
		cleaned = strings.ReplaceAll(cleaned, symbol, "")
	}
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.TrimSpace(cleaned)

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || value < 0 {
		n.logger.Warn("unparsable price text", "target", target, "text", text)
		return nil
	}

	return &value
}

// parseRating parses the leading numeric token of rating text such as
// "4.5" or "4.5 out of 5 stars". Values outside [0,5] are rejected,
// not clamped.
func (n *Normalizer) parseRating(text, target string) *float64 {
	token := strings.TrimSpace(text)
	if i := strings.IndexByte(token, ' '); i > 0 {
		token = token[:i]
	}

	value, err := strconv.ParseFloat(token, 64)
	if err != nil {
		n.logger.Warn("unparsable rating text", "target", target, "text", text)
		return nil
	}
	if value < 0 || value > 5 {
		n.logger.Warn("rating out of range", "target", target, "value", value)
		return nil
	}

	return &value
}
