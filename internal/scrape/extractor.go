package scrape

import (
	"context"

	"github.com/ankitdev/price-radar/internal/models"
)

// Extractor drives one source's search page for a target and returns
// the raw field bag from the best-ranked result. Each call owns an
// isolated single-use browser session, torn down unconditionally
// before returning. Failures carry the taxonomy from errors.go.
type Extractor interface {
	Source() models.Source
	Extract(ctx context.Context, target models.ScrapeTarget) (*models.RawExtraction, error)
}
