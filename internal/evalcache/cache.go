// Package evalcache memoizes filter decisions per item. An entry is reused
// only while both the item's fingerprint and the settings version are
// unchanged.
package evalcache

import (
	"container/list"
	"math"
	"strconv"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/jonesrussell/north-cloud/deal-filter/internal/domain"
)

// DefaultMaxEntries bounds the cache when New receives a non-positive size.
const DefaultMaxEntries = 5000

// EvaluateFunc computes a fresh decision.
type EvaluateFunc func(domain.Item) domain.Decision

// Stats is a point-in-time view of cache activity.
type Stats struct {
	Hits      uint64 `json:"hits"`
	Misses    uint64 `json:"misses"`
	Evictions uint64 `json:"evictions"`
	Size      int    `json:"size"`
}

type entry struct {
	key             string
	fingerprint     uint64
	settingsVersion string
	decision        domain.Decision
	pass            uint64
}

// Cache is a bounded map keyed by stable item id. Entries whose id was not
// seen during the latest pass are dropped by EndPass; when full, the least
// recently used entry is evicted.
type Cache struct {
	mu         sync.Mutex
	maxEntries int
	entries    map[string]*list.Element
	order      *list.List
	pass       uint64
	stats      Stats
}

// New returns an empty cache holding at most maxEntries entries.
func New(maxEntries int) *Cache {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Cache{
		maxEntries: maxEntries,
		entries:    make(map[string]*list.Element),
		order:      list.New(),
	}
}

// Fingerprint hashes the fields that can change a decision: display title,
// price, score, source id and author.
func Fingerprint(item domain.Item) uint64 {
	d := xxhash.New()
	writeField(d, item.Title())
	writeField(d, formatNumber(item.Price))
	writeField(d, formatNumber(item.Score))
	writeField(d, item.SourceID)
	writeField(d, item.Author)
	return d.Sum64()
}

func writeField(d *xxhash.Digest, s string) {
	_, _ = d.WriteString(strconv.Itoa(len(s)))
	_, _ = d.WriteString(":")
	_, _ = d.WriteString(s)
}

func formatNumber(v *float64) string {
	if v == nil || math.IsNaN(*v) {
		return "null"
	}
	return strconv.FormatFloat(*v, 'g', -1, 64)
}

// GetOrEvaluate returns the cached decision for key when the fingerprint of
// item and settingsVersion both match the stored entry. Otherwise it calls
// eval and stores the result. The second return value reports a cache hit.
func (c *Cache) GetOrEvaluate(key string, item domain.Item, settingsVersion string, eval EvaluateFunc) (domain.Decision, bool) {
	fp := Fingerprint(item)

	c.mu.Lock()
	if el, ok := c.entries[key]; ok {
		e := el.Value.(*entry)
		e.pass = c.pass
		c.order.MoveToFront(el)
		if e.fingerprint == fp && e.settingsVersion == settingsVersion {
			c.stats.Hits++
			decision := e.decision
			c.mu.Unlock()
			return decision, true
		}
	}
	c.stats.Misses++
	c.mu.Unlock()

	// eval runs unlocked; a panic here leaves the cache untouched.
	decision := eval(item)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.storeLocked(key, fp, settingsVersion, decision)
	return decision, false
}

func (c *Cache) storeLocked(key string, fp uint64, version string, decision domain.Decision) {
	if el, ok := c.entries[key]; ok {
		e := el.Value.(*entry)
		e.fingerprint = fp
		e.settingsVersion = version
		e.decision = decision
		e.pass = c.pass
		c.order.MoveToFront(el)
		return
	}

	for c.order.Len() >= c.maxEntries {
		c.removeLocked(c.order.Back())
	}

	e := &entry{key: key, fingerprint: fp, settingsVersion: version, decision: decision, pass: c.pass}
	c.entries[key] = c.order.PushFront(e)
}

func (c *Cache) removeLocked(el *list.Element) {
	if el == nil {
		return
	}
	e := el.Value.(*entry)
	c.order.Remove(el)
	delete(c.entries, e.key)
	c.stats.Evictions++
}

// Lookup returns the stored decision for key regardless of freshness.
func (c *Cache) Lookup(key string) (domain.Decision, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.entries[key]
	if !ok {
		return domain.Decision{}, false
	}
	return el.Value.(*entry).decision, true
}

// BeginPass starts a new evaluation pass.
func (c *Cache) BeginPass() {
	c.mu.Lock()
	c.pass++
	c.mu.Unlock()
}

// EndPass evicts every entry not touched since the matching BeginPass and
// returns how many were removed.
func (c *Cache) EndPass() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for el := c.order.Back(); el != nil; {
		prev := el.Prev()
		if el.Value.(*entry).pass != c.pass {
			c.removeLocked(el)
			removed++
		}
		el = prev
	}
	return removed
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Stats returns counters and the current size.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Size = c.order.Len()
	return s
}

// Reset drops every entry. Counters are kept.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*list.Element)
	c.order.Init()
}
