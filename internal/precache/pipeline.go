// Package precache populates the article cache ahead of demand: it walks an
// ordered candidate list one at a time, fetching and reducing each article
// through the normal cache write path. Every failure is per-candidate; the
// pipeline itself never fails.
package precache

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"readcache/internal/extractors"
	"readcache/internal/feed"
)

// minRawLength is the plausibility floor for fetched pages; shorter responses
// are error pages or stubs.
const minRawLength = 100

// ContentCache is the slice of the cache engine the pipeline writes through.
type ContentCache interface {
	Get(ctx context.Context, url string) (string, bool)
	Put(ctx context.Context, url, content, title string) error
}

// Fetcher retrieves raw page HTML.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Pipeline pre-fetches candidates sequentially, with a fixed delay between
// candidates to throttle outbound requests.
type Pipeline struct {
	cache      ContentCache
	fetcher    Fetcher
	extractors *extractors.Registry
	delay      time.Duration
	log        *zap.Logger

	// sleep is swapped out in tests
	sleep func(ctx context.Context, d time.Duration)
}

func New(cache ContentCache, fetcher Fetcher, reg *extractors.Registry, delay time.Duration, log *zap.Logger) *Pipeline {
	return &Pipeline{
		cache:      cache,
		fetcher:    fetcher,
		extractors: reg,
		delay:      delay,
		log:        log,
		sleep:      sleepCtx,
	}
}

// Run processes candidates in order, one at a time. Cancellation is checked
// between candidates; an in-flight fetch finishes or times out on its own.
func (p *Pipeline) Run(ctx context.Context, candidates []feed.Candidate) {
	log := p.log.With(zap.String("run_id", uuid.NewString()))
	log.Info("pre-cache run starting", zap.Int("candidates", len(candidates)))

	cached := 0
	for _, c := range candidates {
		if ctx.Err() != nil {
			log.Info("pre-cache run cancelled", zap.Int("cached", cached))
			return
		}
		if p.process(ctx, log, c) {
			cached++
		}
		p.sleep(ctx, p.delay)
	}
	log.Info("pre-cache run complete", zap.Int("cached", cached))
}

// process handles one candidate; returns true when it was written to the
// cache.
func (p *Pipeline) process(ctx context.Context, log *zap.Logger, c feed.Candidate) bool {
	if _, ok := p.cache.Get(ctx, c.URL); ok {
		log.Debug("already cached, skipping", zap.String("url", c.URL))
		return false
	}

	raw, err := p.fetcher.Fetch(ctx, c.URL)
	if err != nil {
		log.Warn("pre-cache fetch failed", zap.String("url", c.URL), zap.Error(err))
		return false
	}
	if len(raw) <= minRawLength {
		log.Warn("fetched content implausibly short",
			zap.String("url", c.URL), zap.Int("length", len(raw)))
		return false
	}

	content, err := p.extractors.ForURL(c.URL).Extract(raw, c.URL)
	if err != nil {
		log.Warn("pre-cache extraction failed", zap.String("url", c.URL), zap.Error(err))
		return false
	}

	if err := p.cache.Put(ctx, c.URL, content, c.Title); err != nil {
		log.Warn("pre-cache write failed", zap.String("url", c.URL), zap.Error(err))
		return false
	}
	return true
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
