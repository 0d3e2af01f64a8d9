package models

import (
	"time"
)

// Source identifies the marketplace a record was scraped from.
type Source string

const (
	SourceAmazon   Source = "amazon"
	SourceFlipkart Source = "flipkart"
)

// Field names a single sub-field read from a search result node.
type Field string

const (
	FieldTitle        Field = "title"
	FieldPrice        Field = "price"
	FieldRating       Field = "rating"
	FieldAvailability Field = "availability"
)

// ScrapeTarget is one product name to search for across all sources.
type ScrapeTarget struct {
	ProductName string `json:"product_name"`
}

// RawExtraction is the untyped field bag read from one search result
// node. Absent fields are simply missing keys; extractors never write
// placeholder values. A RawExtraction is owned by the pipeline unit
// that produced it and is discarded after normalization.
type RawExtraction struct {
	Source Source
	Fields map[Field]string
}

func NewRawExtraction(source Source) *RawExtraction {
	return &RawExtraction{
		Source: source,
		Fields: make(map[Field]string),
	}
}

func (r *RawExtraction) Set(f Field, value string) {
	r.Fields[f] = value
}

func (r *RawExtraction) Get(f Field) (string, bool) {
	v, ok := r.Fields[f]
	return v, ok
}

// NormalizedRecord is the canonical shape handed to the store. Price
// and Rating are nil when the source gave no parsable value.
type NormalizedRecord struct {
	ID           int64     `json:"id,omitempty"`
	ProductName  string    `json:"product_name"`
	Source       Source    `json:"source_site"`
	Title        string    `json:"title"`
	Price        *float64  `json:"price"`
	Currency     string    `json:"currency"`
	Availability string    `json:"availability"`
	Rating       *float64  `json:"rating"`
	ScrapedAt    time.Time `json:"scraped_at,omitempty"`
}

// Validate reports the canonical-shape violations for a record.
func (r *NormalizedRecord) Validate() []string {
	var problems []string

	if r.ProductName == "" {
		problems = append(problems, "product_name is required")
	}
	if r.Title == "" {
		problems = append(problems, "title is required")
	}
	if r.Price != nil && *r.Price < 0 {
		problems = append(problems, "price must be non-negative")
	}
	if r.Rating != nil && (*r.Rating < 0 || *r.Rating > 5) {
		problems = append(problems, "rating must be within [0,5]")
	}

	return problems
}

// OutcomeState is the terminal state of one (target, source) attempt.
type OutcomeState string

const (
	OutcomeStored OutcomeState = "stored"
	OutcomeFailed OutcomeState = "failed"
)

// Outcome reports the result of one (target, source) pipeline unit.
// Outcomes exist for logging and metrics only; they are not persisted.
type Outcome struct {
	Target      ScrapeTarget
	Source      Source
	State       OutcomeState
	FailureKind string
	Err         error
	Record      *NormalizedRecord
	Duration    time.Duration
}
