package input

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/ankitdev/price-radar/internal/models"
)

// Loader reads scrape targets from a CSV file. The file must carry a
// header row with a product_name column; every other column is ignored.
type Loader struct {
	logger *slog.Logger
}

func NewLoader(logger *slog.Logger) *Loader {
	return &Loader{
		logger: logger.With("component", "input"),
	}
}

// Load reads the file at path and returns one target per usable row.
// Malformed rows and rows with an empty product name are skipped, not
// fatal; an unreadable file or missing header column is an error.
func (l *Loader) Load(path string) ([]models.ScrapeTarget, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer f.Close()

	targets, err := l.parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	l.logger.Info("loaded scrape targets", "path", path, "count", len(targets))
	return targets, nil
}

func (l *Loader) parse(r io.Reader) ([]models.ScrapeTarget, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	nameCol := -1
	for i, col := range header {
		if strings.EqualFold(strings.TrimSpace(col), "product_name") {
			nameCol = i
			break
		}
	}
	if nameCol < 0 {
		return nil, fmt.Errorf("header has no product_name column")
	}

	targets := make([]models.ScrapeTarget, 0)
	line := 1
	for {
		line++
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			l.logger.Warn("skipping malformed row", "line", line, "error", err)
			continue
		}
		if nameCol >= len(row) {
			l.logger.Warn("skipping short row", "line", line)
			continue
		}

		name := strings.TrimSpace(row[nameCol])
		if name == "" {
			l.logger.Warn("skipping row with empty product name", "line", line)
			continue
		}

		targets = append(targets, models.ScrapeTarget{ProductName: name})
	}

	return targets, nil
}
