package feed

import "strings"

// URLFilter defines per-domain path rules for candidate URLs.
type URLFilter struct {
	Domain       string
	AllowedPaths []string // If empty, allow all paths
	BlockedPaths []string // Takes priority over AllowedPaths
}

// FilterRegistry holds URL filtering rules.
type FilterRegistry struct {
	filters []URLFilter
}

func NewFilterRegistry() *FilterRegistry {
	return &FilterRegistry{}
}

// Register adds a filter.
func (r *FilterRegistry) Register(filter URLFilter) {
	r.filters = append(r.filters, filter)
}

// ShouldProcess reports whether a URL passes the registered rules. URLs whose
// domain has no filter are allowed.
func (r *FilterRegistry) ShouldProcess(urlStr string) bool {
	var matched *URLFilter
	for i := range r.filters {
		if strings.Contains(urlStr, r.filters[i].Domain) {
			matched = &r.filters[i]
			break
		}
	}
	if matched == nil {
		return true
	}

	for _, blocked := range matched.BlockedPaths {
		if strings.Contains(urlStr, blocked) {
			return false
		}
	}

	if len(matched.AllowedPaths) == 0 {
		return true
	}
	for _, allowed := range matched.AllowedPaths {
		if strings.Contains(urlStr, allowed) {
			return true
		}
	}
	return false
}
