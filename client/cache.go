package client

import (
	"encoding/json"
	"strings"
	"sync"
)

// Resource keys. A key names the logical identity of a cached read result;
// every mutation invalidates the keys whose contents it could change.
const (
	KeyPosts         = "posts"
	KeyNotifications = "notifications"
	KeyMe            = "me"
)

func KeyUserPosts(username string) string { return "posts:user:" + username }
func KeyComments(postID string) string    { return "comments:post:" + postID }
func KeyUser(username string) string      { return "user:" + username }

type cacheEntry struct {
	data  json.RawMessage
	stale bool
}

// resourceCache holds read results under their resource keys. Entries are
// marked stale rather than evicted so a bound view keeps showing the old
// data until the re-fetch lands.
type resourceCache struct {
	mu      sync.RWMutex
	entries map[string]*cacheEntry
}

func newResourceCache() *resourceCache {
	return &resourceCache{entries: make(map[string]*cacheEntry)}
}

// get returns the cached data and whether it is present and fresh.
func (c *resourceCache) get(key string) (json.RawMessage, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok || entry.stale {
		return nil, false
	}
	return entry.data, true
}

func (c *resourceCache) put(key string, data json.RawMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = &cacheEntry{data: data}
}

// invalidate marks every key matching one of the selectors as stale and
// returns the keys it touched. A selector ending in ":" matches by prefix
// ("posts:user:" hits every cached user feed), anything else matches
// exactly. Unknown keys are recorded as stale so a later get misses.
func (c *resourceCache) invalidate(selectors ...string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	touched := []string{}
	for _, sel := range selectors {
		if strings.HasSuffix(sel, ":") {
			for key, entry := range c.entries {
				if strings.HasPrefix(key, sel) && !entry.stale {
					entry.stale = true
					touched = append(touched, key)
				}
			}
			continue
		}
		if entry, ok := c.entries[sel]; ok {
			if !entry.stale {
				entry.stale = true
				touched = append(touched, sel)
			}
		} else {
			c.entries[sel] = &cacheEntry{stale: true}
			touched = append(touched, sel)
		}
	}
	return touched
}
