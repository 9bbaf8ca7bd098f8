package mimeparser

import "github.com/mailchannels/gomime/lru"

// compiledBoundary holds the two byte forms a boundary string needs to
// be checked against on every candidate line: the plain delimiter and
// the close-delimiter, pre-concatenated so matching is a single
// bytes.Equal rather than a fresh string-concat on every line.
type compiledBoundary struct {
	delim      []byte // "--boundary"
	closeDelim []byte // "--boundary--"
}

// boundaryCache memoizes compiledBoundary by boundary string across a
// deeply nested multipart tree (or across many messages sharing a
// mail-client-generated boundary format), memoized in an LRU cache.
// Bounded rather than unbounded since an adversarial message could
// otherwise declare an unbounded number of distinct boundary strings.
type boundaryCache struct {
	cache *lru.Cache
}

func newBoundaryCache(capacity int) *boundaryCache {
	return &boundaryCache{cache: lru.New(capacity, nil)}
}

func (c *boundaryCache) get(boundary string) *compiledBoundary {
	if v, ok := c.cache.Get(boundary); ok {
		return v.(*compiledBoundary)
	}
	cb := &compiledBoundary{
		delim:      append([]byte("--"), boundary...),
		closeDelim: append([]byte("--"+boundary), "--"...),
	}
	c.cache.Put(boundary, cb)
	return cb
}
