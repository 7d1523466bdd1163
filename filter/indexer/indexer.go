// Package indexer derives the bit-array positions for an element.
//
// The canonical mode computes SHA-256 over the element's canonical form
// concatenated with a decimal salt, reads the digest as a big integer and
// reduces it mod the array size. Re-salting one hash family this way is the
// standard substitute for hash_count independent hash functions. Results
// are memoized in a bounded LRU cache.
package indexer

import (
	"crypto/sha256"
	"math/big"
	"strconv"
	"time"

	lrucache "github.com/cognusion/go-cache-lru"

	"github.com/rag-nar1/DiskFilters/filter"
)

// CacheFraction sizes the memo relative to the filter: a filter at designed
// capacity produces about size*hashCount distinct (element, salt) pairs.
const CacheFraction = 0.05

type Indexer struct {
	size   uint64
	family filter.Hash // nil selects canonical SHA-256 indexing
	cache  *lrucache.Cache
}

// New returns a canonical indexer for a filter of size cells and hashCount
// salts. The cache capacity is purely a performance knob; a smaller or
// absent cache never changes the derived positions.
func New(size, hashCount int) *Indexer {
	return newIndexer(size, hashCount, nil)
}

// NewFast returns an indexer backed by a fast hash family instead of the
// canonical digest. Positions stay deterministic across restarts but the
// element bytes are indexed as-is, without the canonical-form guarantee.
func NewFast(size, hashCount int, family filter.Hash) *Indexer {
	return newIndexer(size, hashCount, family)
}

func newIndexer(size, hashCount int, family filter.Hash) *Indexer {
	x := &Indexer{size: uint64(size), family: family}
	if family != nil {
		return x
	}
	maxEntries := int(CacheFraction * float64(size) * float64(hashCount))
	if maxEntries > 0 {
		x.cache = lrucache.NewWithLRU(lrucache.NoExpiration, 1*time.Minute, maxEntries)
	}
	return x
}

// Positions derives hashCount indexes in [0, size) for the canonical
// element form elem. Deterministic for a fixed (elem, size).
func (x *Indexer) Positions(elem string, hashCount int) []int {
	if x.family != nil {
		return x.family([]byte(elem), x.size, hashCount)
	}
	hashedIdx := make([]int, hashCount)
	for i := range hashedIdx {
		hashedIdx[i] = x.position(elem, i)
	}
	return hashedIdx
}

func (x *Indexer) position(elem string, i int) int {
	salted := elem + strconv.Itoa(i)
	if x.cache != nil {
		if v, ok := x.cache.Get(salted); ok {
			return v.(int)
		}
	}

	digest := sha256.Sum256([]byte(salted))
	n := new(big.Int).SetBytes(digest[:])
	pos := int(n.Mod(n, new(big.Int).SetUint64(x.size)).Uint64())

	if x.cache != nil {
		x.cache.Set(salted, pos, lrucache.NoExpiration)
	}
	return pos
}
