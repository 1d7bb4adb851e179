package cfp

import (
	"strings"
	"time"
)

// DefaultCacheTTL is how long a fetched detail record stays fresh
const DefaultCacheTTL = 24 * time.Hour

// CachedDetail is a detail record and the time it was fetched
type CachedDetail struct {
	Detail    *Detail   `json:"detail"`
	FetchedAt time.Time `json:"fetched_at"`
}

// DetailCache holds detail records keyed by normalized event link.
// A TTL of zero disables the cache.
type DetailCache struct {
	Entries map[string]*CachedDetail `json:"entries"`
	TTL     time.Duration            `json:"-"`
}

// NewDetailCache creates an empty cache with the default TTL
func NewDetailCache() *DetailCache {
	return &DetailCache{
		Entries: make(map[string]*CachedDetail),
		TTL:     DefaultCacheTTL,
	}
}

// CacheKey normalizes an event link so that spellings of the same page
// share one entry: surrounding space, the fragment and trailing slashes are
// dropped and the scheme and host are lower-cased.
func CacheKey(link string) string {
	key := strings.TrimSpace(link)
	key, _, _ = strings.Cut(key, "#")
	key = strings.TrimRight(key, "/")

	scheme, rest, ok := strings.Cut(key, "://")
	if !ok {
		return key
	}
	host, path, _ := strings.Cut(rest, "/")
	key = strings.ToLower(scheme) + "://" + strings.ToLower(host)
	if path != "" {
		key += "/" + path
	}
	return key
}

// Empty reports whether the record carries no field at all, which is what
// a page outside the expected layout extracts to
func (d *Detail) Empty() bool {
	return len(d.MissingFields()) == len(detailFieldNames)
}

// Get returns the fresh detail cached for link, or nil. Expired entries
// are evicted.
func (c *DetailCache) Get(link string) *Detail {
	key := CacheKey(link)
	entry, ok := c.Entries[key]
	if !ok {
		return nil
	}
	if c.expired(entry, time.Now()) {
		delete(c.Entries, key)
		return nil
	}
	return entry.Detail
}

// Set caches d for link. Nil and empty records are not cached so that the
// page is fetched again next time.
func (c *DetailCache) Set(link string, d *Detail) {
	if d == nil || d.Empty() {
		return
	}
	c.Entries[CacheKey(link)] = &CachedDetail{Detail: d, FetchedAt: time.Now()}
}

// CleanExpired removes expired and unusable entries and returns how many
// were removed
func (c *DetailCache) CleanExpired() int {
	now := time.Now()
	removed := 0
	for key, entry := range c.Entries {
		if c.expired(entry, now) {
			delete(c.Entries, key)
			removed++
		}
	}
	return removed
}

// Size returns the number of cached entries
func (c *DetailCache) Size() int {
	return len(c.Entries)
}

func (c *DetailCache) expired(entry *CachedDetail, now time.Time) bool {
	if entry == nil || entry.Detail == nil || entry.Detail.Empty() {
		return true
	}
	return now.Sub(entry.FetchedAt) >= c.TTL
}
