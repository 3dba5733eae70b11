package extractors

import "strings"

// Extractor reduces raw page HTML to article-relevant HTML. The source URL is
// used to absolutize relative links.
type Extractor interface {
	Extract(rawHTML, sourceURL string) (string, error)
}

// Registry holds domain-specific extractors and a default fallback.
type Registry struct {
	byDomain         map[string]Extractor
	defaultExtractor Extractor
}

func NewRegistry() *Registry {
	return &Registry{byDomain: make(map[string]Extractor)}
}

func (r *Registry) RegisterDefault(e Extractor) {
	r.defaultExtractor = e
}

// RegisterDomain binds an extractor to a host suffix, e.g. "example.com".
func (r *Registry) RegisterDomain(domain string, e Extractor) {
	r.byDomain[domain] = e
}

// ForURL returns the extractor registered for the URL's domain, or the
// default.
func (r *Registry) ForURL(url string) Extractor {
	for domain, e := range r.byDomain {
		if strings.Contains(url, domain) {
			return e
		}
	}
	return r.defaultExtractor
}
