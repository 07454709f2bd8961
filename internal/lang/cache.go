package lang

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/minio/highwayhash"
)

// Parse results are immutable by convention, so identical sources can share
// one result. The key hashes the source with HighwayHash-64 instead of
// storing the full text; at cache scale the collision risk is negligible.
var cacheHashKey = []byte("recalc.parse.cache.hash.key.v1.0")

type cacheKey struct {
	mode ParseMode
	sum  uint64
}

// CachedParser decorates a Parser with a bounded LRU over parse results.
// Repeated updates re-parse the same statements constantly; the cache keeps
// that off the hot path.
type CachedParser struct {
	inner Parser
	cache *lru.Cache[cacheKey, ParseResult]
}

// NewCachedParser wraps inner with an LRU of the given size.
func NewCachedParser(inner Parser, size int) (*CachedParser, error) {
	cache, err := lru.New[cacheKey, ParseResult](size)
	if err != nil {
		return nil, fmt.Errorf("creating parse cache: %w", err)
	}
	return &CachedParser{inner: inner, cache: cache}, nil
}

// Parse returns the cached result when the same source and mode were seen
// before, otherwise delegates to the inner parser and caches the outcome.
func (p *CachedParser) Parse(source string, mode ParseMode) ParseResult {
	key := cacheKey{mode: mode, sum: highwayhash.Sum64([]byte(source), cacheHashKey)}
	if res, ok := p.cache.Get(key); ok {
		return res
	}
	res := p.inner.Parse(source, mode)
	p.cache.Add(key, res)
	return res
}

// Len returns the number of cached results.
func (p *CachedParser) Len() int {
	return p.cache.Len()
}
