package extractors

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
)

// ErrNoContent is returned when nothing article-like could be extracted.
var ErrNoContent = errors.New("no main article content found")

// candidate containers, tried in order before falling back to the body
var containerSelectors = []string{
	"article",
	"main",
	".article-body",
	".post-content",
	".entry-content",
	".content",
	".story-body",
}

const junkSelectors = "script, iframe, style, nav, .ad, .advertisement, .promo, .related, .share"

// DefaultExtractor runs go-readability first and falls back to a goquery walk
// over known content containers.
type DefaultExtractor struct{}

func NewDefaultExtractor() *DefaultExtractor {
	return &DefaultExtractor{}
}

// Extract reduces rawHTML to readable article HTML. Root-relative and
// protocol-relative links are rewritten to absolute ones using sourceURL's
// origin.
func (d *DefaultExtractor) Extract(rawHTML, sourceURL string) (string, error) {
	base, err := url.Parse(sourceURL)
	if err != nil {
		return "", fmt.Errorf("parse source url: %w", err)
	}

	if art, err := readability.FromReader(strings.NewReader(rawHTML), base); err == nil {
		if content := cleanFragment(art.Content, base); content != "" {
			return content, nil
		}
	}

	return extractWithSelectors(rawHTML, base)
}

// cleanFragment runs the junk-strip and URL rewrite pass over an already
// reduced HTML fragment.
func cleanFragment(fragment string, base *url.URL) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return ""
	}
	body := doc.Find("body").First()
	if body.Length() == 0 {
		return ""
	}
	return reduceSelection(body, base)
}

// extractWithSelectors picks the first matching content container, strips
// navigation/ad/script noise, and absolutizes links within it.
func extractWithSelectors(rawHTML string, base *url.URL) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return "", err
	}

	for _, sel := range containerSelectors {
		if s := doc.Find(sel).First(); s.Length() > 0 {
			if content := reduceSelection(s, base); content != "" {
				return content, nil
			}
		}
	}

	// Last resort: the whole document body.
	if body := doc.Find("body").First(); body.Length() > 0 {
		if content := reduceSelection(body, base); content != "" {
			return content, nil
		}
	}

	return "", ErrNoContent
}

func reduceSelection(s *goquery.Selection, base *url.URL) string {
	s.Find(junkSelectors).Remove()
	absolutizeURLs(s, base)
	htmlStr, err := s.Html()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(htmlStr)
}

// absolutizeURLs rewrites relative href/src attributes against the base URL.
func absolutizeURLs(s *goquery.Selection, base *url.URL) {
	rewrite := func(sel *goquery.Selection, attr string) {
		val, ok := sel.Attr(attr)
		if !ok || val == "" || strings.HasPrefix(val, "data:") {
			return
		}
		ref, err := url.Parse(val)
		if err != nil || ref.IsAbs() {
			return
		}
		sel.SetAttr(attr, base.ResolveReference(ref).String())
	}

	s.Find("a[href]").Each(func(_ int, sel *goquery.Selection) { rewrite(sel, "href") })
	s.Find("img[src]").Each(func(_ int, sel *goquery.Selection) { rewrite(sel, "src") })
}
