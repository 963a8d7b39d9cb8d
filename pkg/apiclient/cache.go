package apiclient

import (
	"strconv"
	"sync"
)

// Cache tags. Detail entries also carry TagShopItems, so invalidating the
// list drops them too.
const (
	TagShopItems = "shop-items"
	TagOrders    = "orders"
)

// TagShopItem is the tag of one item's detail entry.
func TagShopItem(id uint) string {
	return "shop-item:" + strconv.FormatUint(uint64(id), 10)
}

type cacheEntry struct {
	body []byte
	tags []string
}

// tagCache holds raw response bodies so every hit decodes into a fresh value.
type tagCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
}

func newTagCache() *tagCache {
	return &tagCache{entries: make(map[string]cacheEntry)}
}

func (t *tagCache) get(key string) ([]byte, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[key]
	return e.body, ok
}

func (t *tagCache) put(key string, body []byte, tags ...string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries[key] = cacheEntry{body: append([]byte(nil), body...), tags: tags}
}

func (t *tagCache) invalidate(tags ...string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for key, e := range t.entries {
		if hasAny(e.tags, tags) {
			delete(t.entries, key)
		}
	}
}

func (t *tagCache) clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = make(map[string]cacheEntry)
}

func (t *tagCache) len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

func hasAny(have, want []string) bool {
	for _, h := range have {
		for _, w := range want {
			if h == w {
				return true
			}
		}
	}
	return false
}

// Invalidate drops every cached query carrying one of tags.
func (c *Client) Invalidate(tags ...string) {
	c.cache.invalidate(tags...)
}
