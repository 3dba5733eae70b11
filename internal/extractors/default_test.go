package extractors

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const articlePage = `<!DOCTYPE html>
<html>
<head><title>Story</title></head>
<body>
<nav><a href="/home">Home</a></nav>
<article>
<h1>Big News</h1>
<p>Something genuinely newsworthy happened today in the harbor district.</p>
<p>Witnesses described the scene in considerable detail to our reporter.</p>
<script>trackPageView("evil-marker")</script>
<div class="ad">Buy things</div>
<img src="/img/harbor.jpg" alt="harbor">
<a href="/related/story-2">More coverage</a>
</article>
<footer>© News</footer>
</body>
</html>`

func TestExtractKeepsArticleText(t *testing.T) {
	e := NewDefaultExtractor()

	out, err := e.Extract(articlePage, "https://news.test/story/1")
	require.NoError(t, err)
	assert.Contains(t, out, "newsworthy happened today")
	assert.Contains(t, out, "considerable detail")
}

func TestExtractStripsScriptsAndAds(t *testing.T) {
	e := NewDefaultExtractor()

	out, err := e.Extract(articlePage, "https://news.test/story/1")
	require.NoError(t, err)
	assert.NotContains(t, out, "evil-marker")
	assert.NotContains(t, out, "Buy things")
}

func TestExtractAbsolutizesRelativeURLs(t *testing.T) {
	e := NewDefaultExtractor()

	out, err := e.Extract(articlePage, "https://news.test/story/1")
	require.NoError(t, err)
	assert.Contains(t, out, "https://news.test/img/harbor.jpg")
	assert.NotContains(t, out, `src="/img/harbor.jpg"`)
}

func TestExtractSelectorFallbackOrder(t *testing.T) {
	// No <article>; the first matching candidate container should win.
	page := `<html><body>
<div class="content">generic container text</div>
<div class="post-content"><p>the actual post body lives here</p></div>
</body></html>`

	out, err := extractWithSelectors(page, mustParse(t, "https://news.test/p/1"))
	require.NoError(t, err)
	assert.Contains(t, out, "actual post body")
	assert.NotContains(t, out, "generic container")
}

func TestExtractFallsBackToBody(t *testing.T) {
	page := `<html><body><p>bare page with nothing but paragraphs</p></body></html>`

	out, err := extractWithSelectors(page, mustParse(t, "https://news.test/p/1"))
	require.NoError(t, err)
	assert.Contains(t, out, "bare page with nothing")
}

func TestExtractRejectsEmptyDocument(t *testing.T) {
	e := NewDefaultExtractor()

	_, err := e.Extract("", "https://news.test/p/1")
	assert.Error(t, err)
}

func TestExtractRejectsBadSourceURL(t *testing.T) {
	e := NewDefaultExtractor()

	_, err := e.Extract(articlePage, "://not-a-url")
	assert.Error(t, err)
}

func TestRegistryPrefersDomainExtractor(t *testing.T) {
	reg := NewRegistry()
	def := NewDefaultExtractor()
	custom := stubExtractor{content: "custom"}
	reg.RegisterDefault(def)
	reg.RegisterDomain("special.test", custom)

	assert.Equal(t, custom, reg.ForURL("https://special.test/a"))
	assert.Equal(t, def, reg.ForURL("https://other.test/a"))
}

type stubExtractor struct{ content string }

func (s stubExtractor) Extract(_, _ string) (string, error) { return s.content, nil }

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}
