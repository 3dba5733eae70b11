// Package feed turns RSS/Atom feeds into pre-cache candidate lists.
package feed

import (
	"context"
	"fmt"

	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"
)

// Candidate is one article to pre-cache.
type Candidate struct {
	URL   string
	Title string
}

// Source parses feeds into ordered candidate lists.
type Source struct {
	parser *gofeed.Parser
	filter *FilterRegistry
	log    *zap.Logger
}

func NewSource(userAgent string, filter *FilterRegistry, log *zap.Logger) *Source {
	p := gofeed.NewParser()
	p.UserAgent = userAgent
	return &Source{parser: p, filter: filter, log: log}
}

// Candidates fetches and parses feedURL, returning at most limit candidates
// in feed order. Items without a link, and items rejected by the filter, are
// skipped.
func (s *Source) Candidates(ctx context.Context, feedURL string, limit int) ([]Candidate, error) {
	parsed, err := s.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", feedURL, err)
	}

	var out []Candidate
	for _, item := range parsed.Items {
		if limit > 0 && len(out) >= limit {
			break
		}
		if item.Link == "" {
			s.log.Debug("skipping feed item without link", zap.String("title", item.Title))
			continue
		}
		if s.filter != nil && !s.filter.ShouldProcess(item.Link) {
			s.log.Debug("skipping filtered feed item", zap.String("url", item.Link))
			continue
		}
		out = append(out, Candidate{URL: item.Link, Title: item.Title})
	}
	return out, nil
}
