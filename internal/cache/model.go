package cache

import (
	"encoding/base64"
	"encoding/json"
	"errors"
)

// Article is one cached unit of reduced article HTML.
//
// Size is the byte length of Content computed once at write time; it is the
// unit the metadata accounting tracks and is never recomputed implicitly.
// Timestamp is the write time in epoch milliseconds.
type Article struct {
	Key       string `json:"key"`
	URL       string `json:"url"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Size      int64  `json:"size"`
	Timestamp int64  `json:"timestamp"`
}

// Metadata is the single global accounting record: a best-effort running
// total, reconciled against the actual stored entries by the periodic sweep.
type Metadata struct {
	TotalSize    int64 `json:"total_size"`
	ArticleCount int64 `json:"article_count"`
	LastCleanup  int64 `json:"last_cleanup"`
}

var errCorrupt = errors.New("corrupt cache entry")

// Key derives the cache key for a URL: deterministic, reversible, and
// collision-free across distinct URLs.
func Key(url string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(url))
}

// KeyURL reverses Key.
func KeyURL(key string) (string, error) {
	b, err := base64.RawURLEncoding.DecodeString(key)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func encodeArticle(a Article) ([]byte, error) {
	return json.Marshal(a)
}

// decodeArticle parses a stored entry. Unknown fields are ignored; anything
// that does not parse into a minimally complete record is reported as corrupt
// so the sweep can drop it.
func decodeArticle(data []byte) (Article, error) {
	var a Article
	if err := json.Unmarshal(data, &a); err != nil {
		return Article{}, errCorrupt
	}
	if a.URL == "" || a.Timestamp <= 0 || a.Size < 0 {
		return Article{}, errCorrupt
	}
	if a.Key == "" {
		a.Key = Key(a.URL)
	}
	return a, nil
}

func encodeMetadata(m Metadata) ([]byte, error) {
	return json.Marshal(m)
}

func decodeMetadata(data []byte) (Metadata, error) {
	var m Metadata
	if err := json.Unmarshal(data, &m); err != nil {
		return Metadata{}, errCorrupt
	}
	return m, nil
}
