package cache

import "sync"

// memIndex is the volatile fast path: a map from cache key to Article,
// authoritative only for entries seen during the current process lifetime.
// All operations are synchronous and never touch the store.
type memIndex struct {
	mu    sync.RWMutex
	items map[string]Article
}

func newMemIndex() *memIndex {
	return &memIndex{items: make(map[string]Article)}
}

func (m *memIndex) get(key string) (Article, bool) {
	m.mu.RLock()
	a, ok := m.items[key]
	m.mu.RUnlock()
	return a, ok
}

func (m *memIndex) set(a Article) {
	m.mu.Lock()
	m.items[a.Key] = a
	m.mu.Unlock()
}

func (m *memIndex) delete(key string) {
	m.mu.Lock()
	delete(m.items, key)
	m.mu.Unlock()
}

func (m *memIndex) deleteMany(keys []string) {
	m.mu.Lock()
	for _, k := range keys {
		delete(m.items, k)
	}
	m.mu.Unlock()
}

func (m *memIndex) reset() {
	m.mu.Lock()
	m.items = make(map[string]Article)
	m.mu.Unlock()
}

func (m *memIndex) len() int {
	m.mu.RLock()
	n := len(m.items)
	m.mu.RUnlock()
	return n
}
