package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ankitdev/price-radar/internal/models"
	"github.com/ankitdev/price-radar/internal/normalize"
	"github.com/ankitdev/price-radar/internal/scrape"
)

// Store is the append path for successfully normalized records. It
// must be safe under concurrent writers. Implementations own their
// transaction boundaries; a returned error means nothing was
// committed for this record.
type Store interface {
	Insert(ctx context.Context, rec *models.NormalizedRecord) error
}

type Config struct {
	// Workers bounds the number of concurrent (target, source) units.
	Workers int
	// AttemptTimeout is the wait budget for one unit; a unit exceeding
	// it is abandoned and reported as a timeout failure.
	AttemptTimeout time.Duration
	// CacheSize bounds the within-run extraction memo, so a product
	// name repeated in the input list is scraped once per source.
	CacheSize int
}

func DefaultConfig() Config {
	return Config{
		Workers:        2,
		AttemptTimeout: 45 * time.Second,
		CacheSize:      256,
	}
}

// Pipeline fans every target out to every configured extractor as
// independent units of work. Units share no mutable state; a failure
// on one unit never prevents the others from being attempted.
type Pipeline struct {
	extractors []scrape.Extractor
	normalizer *normalize.Normalizer
	store      Store
	metrics    *Metrics
	logger     *slog.Logger
	cfg        Config
	memo       *lru.Cache[string, *models.RawExtraction]
}

func New(extractors []scrape.Extractor, normalizer *normalize.Normalizer, store Store, metrics *Metrics, logger *slog.Logger, cfg Config) *Pipeline {
	defaults := DefaultConfig()
	if cfg.Workers <= 0 {
		cfg.Workers = defaults.Workers
	}
	if cfg.AttemptTimeout <= 0 {
		cfg.AttemptTimeout = defaults.AttemptTimeout
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = defaults.CacheSize
	}

	memo, _ := lru.New[string, *models.RawExtraction](cfg.CacheSize)

	return &Pipeline{
		extractors: extractors,
		normalizer: normalizer,
		store:      store,
		metrics:    metrics,
		logger:     logger.With("component", "pipeline"),
		cfg:        cfg,
		memo:       memo,
	}
}

type unit struct {
	target    models.ScrapeTarget
	extractor scrape.Extractor
}

// Run processes every (target, source) pair to a terminal state and
// returns one outcome per pair. Ordering of outcomes across pairs is
// not defined; the store is append-ordered by arrival.
func (p *Pipeline) Run(ctx context.Context, targets []models.ScrapeTarget) []models.Outcome {
	total := len(targets) * len(p.extractors)
	outcomes := make([]models.Outcome, 0, total)
	if total == 0 {
		return outcomes
	}

	jobs := make(chan unit)
	results := make(chan models.Outcome)

	var wg sync.WaitGroup
	for i := 0; i < p.cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for u := range jobs {
				results <- p.processUnit(ctx, u)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, target := range targets {
			for _, extractor := range p.extractors {
				select {
				case <-ctx.Done():
					return
				case jobs <- unit{target: target, extractor: extractor}:
				}
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	for outcome := range results {
		outcomes = append(outcomes, outcome)
	}

	return outcomes
}

func (p *Pipeline) processUnit(ctx context.Context, u unit) models.Outcome {
	source := u.extractor.Source()
	start := time.Now()

	outcome := models.Outcome{
		Target: u.target,
		Source: source,
	}

	raw, err := p.extract(ctx, u)
	if err != nil {
		return p.fail(outcome, start, err)
	}

	record, err := p.normalizer.Normalize(raw, u.target)
	if err != nil {
		return p.fail(outcome, start, scrape.ErrParse{Err: err})
	}
	if problems := record.Validate(); len(problems) > 0 {
		return p.fail(outcome, start, scrape.ErrParse{
			Err: fmt.Errorf("record failed validation: %v", problems),
		})
	}

	if err := p.store.Insert(ctx, record); err != nil {
		return p.fail(outcome, start, scrape.ErrStore{Err: err})
	}

	outcome.State = models.OutcomeStored
	outcome.Record = record
	outcome.Duration = time.Since(start)

	p.metrics.IncAttempt(string(source), "stored")
	p.metrics.IncStored()
	p.metrics.ObserveDuration(outcome.Duration)

	p.logger.Info("unit stored",
		"target", u.target.ProductName,
		"source", source,
		"duration", outcome.Duration)

	return outcome
}

// extract runs one bounded extraction attempt, consulting the
// within-run memo first.
func (p *Pipeline) extract(ctx context.Context, u unit) (*models.RawExtraction, error) {
	key := string(u.extractor.Source()) + "\x00" + u.target.ProductName
	if raw, ok := p.memo.Get(key); ok {
		p.logger.Debug("extraction memo hit", "target", u.target.ProductName, "source", u.extractor.Source())
		return raw, nil
	}

	attemptCtx, cancel := context.WithTimeout(ctx, p.cfg.AttemptTimeout)
	defer cancel()

	raw, err := u.extractor.Extract(attemptCtx, u.target)
	if err != nil {
		if attemptCtx.Err() == context.DeadlineExceeded {
			return nil, scrape.ErrTimeout{Err: attemptCtx.Err()}
		}
		return nil, err
	}

	p.memo.Add(key, raw)
	return raw, nil
}

func (p *Pipeline) fail(outcome models.Outcome, start time.Time, err error) models.Outcome {
	source := string(outcome.Source)
	kind := scrape.FailureLabel(err)

	outcome.State = models.OutcomeFailed
	outcome.FailureKind = kind
	outcome.Err = err
	outcome.Duration = time.Since(start)

	p.metrics.IncAttempt(source, "failed")
	p.metrics.IncFailure(source, kind)
	p.metrics.ObserveDuration(outcome.Duration)

	p.logger.Error("unit failed",
		"target", outcome.Target.ProductName,
		"source", outcome.Source,
		"kind", kind,
		"error", err)

	return outcome
}
