// Package cache implements the two-tier article content cache: a volatile
// in-memory index in front of a durable key-value store, with TTL, size and
// count based eviction, best-effort metadata accounting, and a periodic
// maintenance sweep that reconciles the accounting against what is actually
// stored.
package cache

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	// TTL after which an entry is treated as absent.
	TTL = 24 * time.Hour
	// MaxCacheSize is the total content size that triggers a sweep.
	MaxCacheSize = int64(50 << 20) // 50 MiB
	// MaxArticles is the entry count that triggers a sweep; sweeps also trim
	// the valid set down to this many newest entries.
	MaxArticles = 100
	// CleanupInterval is the maintenance scheduler period.
	CleanupInterval = 6 * time.Hour
	// CleanupBackoff is the retry delay after a failed sweep.
	CleanupBackoff = 1 * time.Hour

	entryPrefix = "article:"
	metadataKey = "article-meta"
)

// Engine is the article content cache. A single instance is shared across the
// process; all metadata mutations go through its mutex.
type Engine struct {
	store Store
	mem   *memIndex
	clock Clock
	log   *zap.Logger

	// mu serializes metadata read-modify-write cycles and the sweep against
	// each other. Entry reads and writes are not serialized by it.
	mu sync.Mutex
}

// New creates an Engine on the given store using the system clock.
func New(store Store, log *zap.Logger) *Engine {
	return NewWithClock(store, log, SystemClock())
}

// NewWithClock creates an Engine with an injected clock.
func NewWithClock(store Store, log *zap.Logger, clock Clock) *Engine {
	return &Engine{
		store: store,
		mem:   newMemIndex(),
		clock: clock,
		log:   log,
	}
}

func (e *Engine) nowMillis() int64 {
	return e.clock.Now().UnixMilli()
}

func (e *Engine) fresh(a Article) bool {
	return e.nowMillis()-a.Timestamp < TTL.Milliseconds()
}

func storeKey(key string) string {
	return entryPrefix + key
}

// Get returns the cached content for url, or ok=false when the entry is
// absent or expired. Store read failures are logged and reported as a miss.
func (e *Engine) Get(ctx context.Context, url string) (string, bool) {
	key := Key(url)

	if a, ok := e.mem.get(key); ok && e.fresh(a) {
		return a.Content, true
	}

	data, err := e.store.Get(ctx, storeKey(key))
	if errors.Is(err, ErrNotFound) {
		return "", false
	}
	if err != nil {
		e.log.Warn("cache read failed", zap.String("url", url), zap.Error(err))
		return "", false
	}

	a, err := decodeArticle(data)
	if err != nil {
		// Unparsable entries are treated like expired ones.
		e.deleteEntry(ctx, key)
		return "", false
	}

	if !e.fresh(a) {
		e.removeArticle(ctx, a)
		return "", false
	}

	e.mem.set(a)
	return a.Content, true
}

// Put caches extracted content for url. It ensures space first, writes the
// memory index and then the store, and updates metadata. The store write is
// the durability boundary: on store failure the memory index is rolled back
// and an error is returned.
func (e *Engine) Put(ctx context.Context, url, content, title string) error {
	size := int64(len(content))
	e.ensureSpaceAvailable(ctx, size)

	key := Key(url)
	a := Article{
		Key:       key,
		URL:       url,
		Title:     title,
		Content:   content,
		Size:      size,
		Timestamp: e.nowMillis(),
	}

	// A second write to the same URL replaces the counted entry; remember the
	// previous size so the totals move by the delta instead of double counting.
	prev, replaced := e.lookup(ctx, key)

	prevMem, hadMem := e.mem.get(key)
	e.mem.set(a)

	data, err := encodeArticle(a)
	if err == nil {
		err = e.store.Set(ctx, storeKey(key), data)
	}
	if err != nil {
		if hadMem {
			e.mem.set(prevMem)
		} else {
			e.mem.delete(key)
		}
		e.log.Error("cache write failed", zap.String("url", url), zap.Error(err))
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	meta := e.loadMetadata(ctx)
	if replaced {
		meta.TotalSize = clamp(meta.TotalSize + size - prev.Size)
	} else {
		meta.TotalSize += size
		meta.ArticleCount++
	}
	e.saveMetadata(ctx, meta)
	return nil
}

// Remove deletes the entry for url from both tiers and decrements the
// metadata by the entry's recorded size. Absent entries are a no-op; deletes
// are best-effort.
func (e *Engine) Remove(ctx context.Context, url string) {
	key := Key(url)
	a, found := e.lookup(ctx, key)
	if !found {
		return
	}
	e.removeArticle(ctx, a)
}

// Clear drops every namespaced entry and resets the metadata to zero.
func (e *Engine) Clear(ctx context.Context) error {
	keys, err := e.store.ListKeys(ctx, entryPrefix)
	if err != nil {
		return err
	}
	if err := e.store.DeleteMany(ctx, keys); err != nil {
		return err
	}
	e.mem.reset()

	e.mu.Lock()
	defer e.mu.Unlock()
	e.saveMetadata(ctx, Metadata{})
	return nil
}

// Stats returns the current metadata record.
func (e *Engine) Stats(ctx context.Context) Metadata {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loadMetadata(ctx)
}

// ensureSpaceAvailable runs a full sweep when the pending write would push
// the running totals over the size cap, or the count cap is already reached.
// The write itself proceeds unconditionally afterwards.
func (e *Engine) ensureSpaceAvailable(ctx context.Context, requiredSize int64) {
	e.mu.Lock()
	meta := e.loadMetadata(ctx)
	e.mu.Unlock()

	if meta.TotalSize+requiredSize > MaxCacheSize || meta.ArticleCount >= MaxArticles {
		if err := e.Sweep(ctx); err != nil {
			e.log.Warn("pre-write sweep failed", zap.Error(err))
		}
	}
}

// Sweep enumerates every stored entry, deletes unparsable ones on sight,
// evicts expired entries plus the oldest entries beyond the count cap, and
// rewrites the metadata from the retained set.
func (e *Engine) Sweep(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	keys, err := e.store.ListKeys(ctx, entryPrefix)
	if err != nil {
		return err
	}

	var valid []Article
	var expired []Article
	corrupt := 0
	for _, sk := range keys {
		data, err := e.store.Get(ctx, sk)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			e.log.Warn("sweep read failed", zap.String("key", sk), zap.Error(err))
			continue
		}
		a, err := decodeArticle(data)
		if err != nil {
			// Corruption counts as already expired: drop it on the spot.
			if derr := e.store.Delete(ctx, sk); derr != nil {
				e.log.Warn("sweep corrupt delete failed", zap.String("key", sk), zap.Error(derr))
			}
			e.mem.delete(strings.TrimPrefix(sk, entryPrefix))
			corrupt++
			continue
		}
		if e.fresh(a) {
			valid = append(valid, a)
		} else {
			expired = append(expired, a)
		}
	}

	// Oldest first; ties keep enumeration order.
	sort.SliceStable(valid, func(i, j int) bool {
		return valid[i].Timestamp < valid[j].Timestamp
	})

	remove := expired
	retained := valid
	if len(valid) > MaxArticles {
		remove = append(remove, valid[:len(valid)-MaxArticles]...)
		retained = valid[len(valid)-MaxArticles:]
	}

	if len(remove) > 0 {
		removeKeys := make([]string, len(remove))
		memKeys := make([]string, len(remove))
		for i, a := range remove {
			removeKeys[i] = storeKey(a.Key)
			memKeys[i] = a.Key
		}
		if err := e.store.DeleteMany(ctx, removeKeys); err != nil {
			return err
		}
		e.mem.deleteMany(memKeys)
	}

	meta := Metadata{LastCleanup: e.nowMillis()}
	for _, a := range retained {
		meta.TotalSize += a.Size
	}
	meta.ArticleCount = int64(len(retained))

	data, err := encodeMetadata(meta)
	if err == nil {
		err = e.store.Set(ctx, metadataKey, data)
	}
	if err != nil {
		return err
	}

	e.log.Info("cache sweep complete",
		zap.Int("retained", len(retained)),
		zap.Int("evicted", len(remove)),
		zap.Int("corrupt", corrupt),
		zap.Int64("total_size", meta.TotalSize))
	return nil
}

// lookup finds the current entry for key in the memory index or the store
// without touching TTL or metadata.
func (e *Engine) lookup(ctx context.Context, key string) (Article, bool) {
	if a, ok := e.mem.get(key); ok {
		return a, true
	}
	data, err := e.store.Get(ctx, storeKey(key))
	if err != nil {
		return Article{}, false
	}
	a, err := decodeArticle(data)
	if err != nil {
		return Article{}, false
	}
	return a, true
}

// removeArticle drops a known entry from both tiers and decrements metadata
// by its recorded size, clamped at zero.
func (e *Engine) removeArticle(ctx context.Context, a Article) {
	e.deleteEntry(ctx, a.Key)

	e.mu.Lock()
	defer e.mu.Unlock()
	meta := e.loadMetadata(ctx)
	meta.TotalSize = clamp(meta.TotalSize - a.Size)
	meta.ArticleCount = clamp(meta.ArticleCount - 1)
	e.saveMetadata(ctx, meta)
}

// deleteEntry removes a key from both tiers without metadata accounting.
func (e *Engine) deleteEntry(ctx context.Context, key string) {
	e.mem.delete(key)
	if err := e.store.Delete(ctx, storeKey(key)); err != nil {
		e.log.Warn("cache delete failed", zap.String("key", key), zap.Error(err))
	}
}

// loadMetadata reads the metadata record, falling back to a zero record when
// it is absent or unreadable. Callers hold e.mu.
func (e *Engine) loadMetadata(ctx context.Context) Metadata {
	data, err := e.store.Get(ctx, metadataKey)
	if errors.Is(err, ErrNotFound) {
		return Metadata{}
	}
	if err != nil {
		e.log.Warn("metadata read failed", zap.Error(err))
		return Metadata{}
	}
	meta, err := decodeMetadata(data)
	if err != nil {
		e.log.Warn("metadata corrupt, resetting", zap.Error(err))
		return Metadata{}
	}
	return meta
}

// saveMetadata persists the metadata record; failures are logged, not
// propagated, since the next sweep rebuilds the record from the stored
// entries anyway. Callers hold e.mu.
func (e *Engine) saveMetadata(ctx context.Context, meta Metadata) {
	data, err := encodeMetadata(meta)
	if err == nil {
		err = e.store.Set(ctx, metadataKey, data)
	}
	if err != nil {
		e.log.Warn("metadata write failed", zap.Error(err))
	}
}

func clamp(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}
