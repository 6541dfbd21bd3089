package app

import (
	"container/list"
	"sync"

	"vibecheck/internal/engine/scoring"

	"github.com/cespare/xxhash/v2"
)

const defaultScoreCacheSize = 2048

type scoreKey struct {
	path string
	sum  uint64
}

type scoreEntry struct {
	key   scoreKey
	score scoring.FileScore
}

// scoreCache remembers file scores by path and content hash so a watch
// session does not re-parse files whose bytes did not change. Least recently
// used entries are evicted once capacity is reached.
type scoreCache struct {
	mu       sync.Mutex
	capacity int
	items    map[scoreKey]*list.Element
	order    *list.List // front is most recent
}

func newScoreCache(capacity int) *scoreCache {
	if capacity <= 0 {
		capacity = defaultScoreCacheSize
	}
	return &scoreCache{
		capacity: capacity,
		items:    make(map[scoreKey]*list.Element, capacity),
		order:    list.New(),
	}
}

func keyFor(path string, content []byte) scoreKey {
	return scoreKey{path: path, sum: xxhash.Sum64(content)}
}

func (c *scoreCache) get(key scoreKey) (scoring.FileScore, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.items[key]
	if !ok {
		return scoring.FileScore{}, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*scoreEntry).score, true
}

func (c *scoreCache) put(key scoreKey, score scoring.FileScore) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		c.order.MoveToFront(el)
		el.Value.(*scoreEntry).score = score
		return
	}
	if c.order.Len() >= c.capacity {
		if back := c.order.Back(); back != nil {
			c.order.Remove(back)
			delete(c.items, back.Value.(*scoreEntry).key)
		}
	}
	c.items[key] = c.order.PushFront(&scoreEntry{key: key, score: score})
}

func (c *scoreCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
