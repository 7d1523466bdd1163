// Package bloom is a durable bloom filter shared by concurrent readers and
// writers. The bit array lives in a memory-mapped file, the sizing
// parameters in a sidecar record, and every Add or Contains passes through
// a first-come-first-served admission protocol.
package bloom

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/rag-nar1/DiskFilters/filter"
	"github.com/rag-nar1/DiskFilters/filter/fcfs"
	"github.com/rag-nar1/DiskFilters/filter/indexer"
	"github.com/rag-nar1/DiskFilters/filter/store"
)

// MaxErrorRate bounds the target false positive rate; at 0.48 and above
// the derivation yields a degenerate array.
const MaxErrorRate = 0.48

// params is the sizing snapshot every operation reads. A reload swaps the
// whole triple through an atomic pointer, so concurrent readers observing
// an externally rewritten sidecar never see a half-updated pair or an
// indexer sized for the wrong array.
type params struct {
	m   int // size of bit-array
	k   int // number of hash-functions
	idx *indexer.Indexer
}

type BloomFilter struct {
	path   string
	bits   *store.BitStore
	lock   fcfs.ReadWriter
	family filter.Hash
	log    *logrus.Logger
	cur    atomic.Pointer[params]

	// guarded by the writer side of lock
	closed    bool // handle released, no further operations
	destroyed bool // files removed as well
}

type config struct {
	log    *logrus.Logger
	strict bool
	family filter.Hash
}

type Option func(*config)

// WithLogger routes operation logs to l. The default logger discards
// everything.
func WithLogger(l *logrus.Logger) Option {
	return func(c *config) { c.log = l }
}

// WithStrictFCFS admits readers and writers in strict arrival order
// instead of the cheaper default gate.
func WithStrictFCFS() Option {
	return func(c *config) { c.strict = true }
}

// WithFastFamily indexes elements with a fast hash family instead of the
// canonical SHA-256 derivation. Elements of different types may then share
// positions if their byte forms coincide.
func WithFastFamily(family filter.Hash) Option {
	return func(c *config) { c.family = family }
}

// Params derives the bit-array length and hash count:
//
//	m = int(-n * ln(p) / ln(2)^2), truncated
//	k = floor(m/n * ln 2), minimum 1
//
// For (100, 0.1) this gives m=479, k=3.
func Params(n int, p float64) (m, k int, err error) {
	if n <= 0 {
		return 0, 0, fmt.Errorf("%w: expected elements %d", filter.ErrConstruction, n)
	}
	if p <= 0 || p >= MaxErrorRate {
		return 0, 0, fmt.Errorf("%w: target error rate %v not in (0, %v)",
			filter.ErrConstruction, p, MaxErrorRate)
	}
	m = int(-float64(n) * math.Log(p) / (math.Log(2) * math.Log(2)))
	k = int(float64(m) / float64(n) * math.Log(2))
	if k < 1 {
		k = 1
	}
	return m, k, nil
}

// New creates a filter at path sized for n expected elements at target
// false positive rate p. Any previous store at path is discarded along
// with its sidecar.
func New(n int, p float64, path string, opts ...Option) (*BloomFilter, error) {
	m, k, err := Params(n, p)
	if err != nil {
		return nil, err
	}
	for _, stale := range []string{path, path + store.MetaSuffix, path + store.MetaSuffix + ".tmp"} {
		if err := os.Remove(stale); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %v", filter.ErrStorage, err)
		}
	}
	bits, err := store.Open(path, m)
	if err != nil {
		return nil, err
	}
	if err := store.SaveMetadata(path, store.Metadata{Size: m, HashCount: k}); err != nil {
		bits.Close()
		return nil, err
	}
	return assemble(path, m, k, bits, opts)
}

// Open attaches to a filter previously created at path, recovering its
// parameters from the sidecar record. The bit array is kept as-is.
func Open(path string, opts ...Option) (*BloomFilter, error) {
	md, err := store.LoadMetadata(path)
	if err != nil {
		return nil, err
	}
	bits, err := store.Attach(path, md.Size)
	if err != nil {
		return nil, err
	}
	return assemble(path, md.Size, md.HashCount, bits, opts)
}

func assemble(path string, m, k int, bits *store.BitStore, opts []Option) (*BloomFilter, error) {
	cfg := config{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.log == nil {
		cfg.log = logrus.New()
		cfg.log.SetOutput(io.Discard)
	}
	bf := &BloomFilter{
		path:   path,
		bits:   bits,
		family: cfg.family,
		log:    cfg.log,
	}
	if cfg.strict {
		bf.lock = fcfs.NewStrict()
	} else {
		bf.lock = fcfs.New()
	}
	bf.cur.Store(bf.newParams(m, k))
	return bf, nil
}

// M is the bit-array length.
func (bf *BloomFilter) M() int { return bf.cur.Load().m }

// K is the number of hash functions.
func (bf *BloomFilter) K() int { return bf.cur.Load().k }

func (bf *BloomFilter) newParams(m, k int) *params {
	p := &params{m: m, k: k}
	if bf.family != nil {
		p.idx = indexer.NewFast(m, k, bf.family)
	} else {
		p.idx = indexer.New(m, k)
	}
	return p
}

// reload refreshes the parameters from the sidecar record so a store
// produced concurrently or by a restarted process is read with its own
// sizing. Caller holds an admission; the swap is a single atomic store of
// an immutable triple, so concurrent readers on the mutation branch only
// race over which complete snapshot wins.
func (bf *BloomFilter) reload() (*params, error) {
	md, err := store.LoadMetadata(bf.path)
	if err != nil {
		return nil, err
	}
	cur := bf.cur.Load()
	if md.Size == cur.m && md.HashCount == cur.k {
		return cur, nil
	}
	next := bf.newParams(md.Size, md.HashCount) // memoized positions are stale
	bf.cur.Store(next)
	return next, nil
}

// Add inserts an element, entering as a writer.
func (bf *BloomFilter) Add(elem any) error {
	bf.lock.Lock()
	defer bf.lock.Unlock()

	if bf.closed {
		return filter.ErrDestroyed
	}
	par, err := bf.reload()
	if err != nil {
		return err
	}

	canon := filter.Canonical(elem)
	for _, idx := range par.idx.Positions(canon, par.k) {
		if err := bf.bits.Set(idx); err != nil {
			return err
		}
	}
	if err := bf.bits.Flush(); err != nil {
		return err
	}
	bf.log.WithFields(logrus.Fields{"elem": canon}).Debug("added")
	return nil
}

// Contains reports whether elem may have been added, entering as a reader.
// False means definitely absent; true may be a false positive at the
// configured rate.
func (bf *BloomFilter) Contains(elem any) (bool, error) {
	bf.lock.RLock()
	defer bf.lock.RUnlock()

	if bf.closed {
		return false, filter.ErrDestroyed
	}
	par, err := bf.reload()
	if err != nil {
		return false, err
	}

	canon := filter.Canonical(elem)
	for _, idx := range par.idx.Positions(canon, par.k) {
		set, err := bf.bits.Get(idx)
		if err != nil {
			return false, err
		}
		if !set {
			return false, nil
		}
	}
	return true, nil
}

// Close releases the mapping and file handle, keeping the store on disk
// for a later Open or a Destroy. Closing twice is a no-op.
func (bf *BloomFilter) Close() error {
	bf.lock.Lock()
	defer bf.lock.Unlock()

	if bf.closed {
		return nil
	}
	bf.closed = true
	return bf.bits.Close()
}

// Destroy removes the bit array and its sidecar record, releasing the
// handle first if it is still open. The filter is invalid afterwards;
// further operations fail with ErrDestroyed.
func (bf *BloomFilter) Destroy() error {
	bf.lock.Lock()
	defer bf.lock.Unlock()

	if bf.destroyed {
		return filter.ErrDestroyed
	}

	var err error
	if !bf.closed {
		err = bf.bits.Close()
	}
	bf.closed = true
	bf.destroyed = true

	if rmErr := store.Remove(bf.path); err == nil {
		err = rmErr
	}
	if rmErr := store.RemoveMetadata(bf.path); err == nil {
		err = rmErr
	}
	if err == nil {
		bf.log.WithFields(logrus.Fields{"path": bf.path}).Debug("destroyed")
	}
	return err
}
