package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/ankitdev/price-radar/internal/database"
	"github.com/ankitdev/price-radar/internal/models"
)

// RecordReader is the read-only slice of the record store the query
// surface needs.
type RecordReader interface {
	List(ctx context.Context) ([]*models.NormalizedRecord, error)
	Search(ctx context.Context, name string) ([]*models.NormalizedRecord, error)
	Compare(ctx context.Context, name string) ([]database.Comparison, error)
}

// OutboxStats reports relay backlog for the health endpoint.
type OutboxStats interface {
	GetPendingCount(ctx context.Context) (int64, error)
	GetDeadLetterCount(ctx context.Context) (int64, error)
}

type Handlers struct {
	records RecordReader
	outbox  OutboxStats
	logger  *slog.Logger
}

func NewHandlers(records RecordReader, outbox OutboxStats, logger *slog.Logger) *Handlers {
	return &Handlers{
		records: records,
		outbox:  outbox,
		logger:  logger.With("component", "api"),
	}
}

// ListProducts handles GET /products
func (h *Handlers) ListProducts(w http.ResponseWriter, r *http.Request) {
	records, err := h.records.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list records", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to list products")
		return
	}

	h.respondJSON(w, http.StatusOK, records)
}

// SearchProducts handles GET /products/search?name=
func (h *Handlers) SearchProducts(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")

	records, err := h.records.Search(r.Context(), name)
	if err != nil {
		h.logger.Error("failed to search records", "error", err, "name", name)
		h.respondError(w, http.StatusInternalServerError, "failed to search products")
		return
	}

	h.respondJSON(w, http.StatusOK, records)
}

// CompareProducts handles GET /products/compare?name=
func (h *Handlers) CompareProducts(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")

	comparisons, err := h.records.Compare(r.Context(), name)
	if err != nil {
		h.logger.Error("failed to compare records", "error", err, "name", name)
		h.respondError(w, http.StatusInternalServerError, "failed to compare products")
		return
	}

	h.respondJSON(w, http.StatusOK, comparisons)
}

// Health handles GET /health, including outbox backlog status.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	health := map[string]interface{}{
		"status": "ok",
	}
	status := http.StatusOK

	if h.outbox != nil {
		pendingCount, _ := h.outbox.GetPendingCount(r.Context())
		deadLetterCount, _ := h.outbox.GetDeadLetterCount(r.Context())

		health["outbox"] = map[string]interface{}{
			"pending":     pendingCount,
			"dead_letter": deadLetterCount,
		}

		if pendingCount > 1000 {
			health["status"] = "warning"
			health["message"] = "High number of pending outbox events"
		}
		if deadLetterCount > 100 {
			health["status"] = "error"
			health["message"] = "High number of dead letter events"
			status = http.StatusServiceUnavailable
		}
	}

	h.respondJSON(w, status, health)
}

func (h *Handlers) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
