package parser

import (
	"github.com/ankitdev/price-radar/internal/models"
)

// Parser extracts the raw field bag from one search-result node's HTML.
// Locator sets are internal per-source configuration; the pipeline only
// ever sees the Parser contract.
type Parser interface {
	Source() models.Source
	ParseResultNode(html string) (*models.RawExtraction, error)
}
