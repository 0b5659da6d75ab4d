// Package dispatch runs the narrow phase for candidate pairs. It creates
// algorithms through a collision configuration, accounts for them in the
// configuration's pools and caches one algorithm and manifold per pair.
package dispatch

import (
	"errors"
	"fmt"
	"sync"
	"unsafe"

	"narrowphase/internal/algorithm"
	"narrowphase/internal/alloc"
	"narrowphase/internal/collision"
	"narrowphase/internal/shape"

	"go.uber.org/zap"
)

// Resolver is the part of a collision configuration the dispatcher uses
type Resolver interface {
	Resolve(a, b shape.Type) algorithm.Factory
	RequiredPoolBlockSize() int
	CollisionAlgorithmPool() collision.Resource[*alloc.PoolAllocator]
	PersistentManifoldPool() collision.Resource[*alloc.PoolAllocator]
	StackAllocator() collision.Scratch
}

// Pair is a pointer-ordered object pair, so (a, b) and (b, a) share a key
type Pair struct {
	A, B *algorithm.Object
}

// MakePair orders a and b by address
func MakePair(a, b *algorithm.Object) Pair {
	ptrA, ptrB := uintptr(unsafe.Pointer(a)), uintptr(unsafe.Pointer(b))
	if ptrA > ptrB {
		return Pair{A: b, B: a}
	}
	return Pair{A: a, B: b}
}

type pairState struct {
	alg      algorithm.Algorithm
	manifold *algorithm.Manifold
	block    alloc.Block
}

// Stats reports pool usage
type Stats struct {
	Pairs               int
	PooledAlgorithms    int
	HeapAlgorithms      int
	PooledManifolds     int
	HeapManifolds       int
	FreeAlgorithmBlocks int
}

// Dispatcher implements algorithm.Dispatcher on top of a Resolver.
// FindAlgorithm and ReleaseAlgorithm are safe for concurrent use. The pair
// cache methods are meant for a single step loop.
type Dispatcher struct {
	resolver  Resolver
	logger    *zap.Logger
	blockSize int

	algorithms *alloc.PoolAllocator
	manifolds  *alloc.PoolAllocator
	scratch    *alloc.StackAllocator

	mu     sync.Mutex
	blocks map[algorithm.Algorithm]alloc.Block
	heap   map[algorithm.Algorithm]struct{}

	pairMu sync.Mutex
	pairs  map[Pair]*pairState
}

type Option func(*Dispatcher)

func WithLogger(logger *zap.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

func New(resolver Resolver, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		resolver:   resolver,
		logger:     zap.NewNop(),
		blockSize:  resolver.RequiredPoolBlockSize(),
		algorithms: resolver.CollisionAlgorithmPool().Value(),
		manifolds:  resolver.PersistentManifoldPool().Value(),
		scratch:    resolver.StackAllocator().Value(),
		blocks:     make(map[algorithm.Algorithm]alloc.Block),
		heap:       make(map[algorithm.Algorithm]struct{}),
		pairs:      make(map[Pair]*pairState),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// FindAlgorithm creates the algorithm for (a, b) in that order. Its block
// comes from the algorithm pool, or the heap once the pool runs out.
// A kind whose footprint exceeds the pool block size panics: the
// configuration was built without that kind.
func (d *Dispatcher) FindAlgorithm(a, b *algorithm.Object) algorithm.Algorithm {
	f := d.resolver.Resolve(a.Type(), b.Type())
	size, ok := algorithm.Footprint(f.Kind())
	if !ok {
		panic(fmt.Sprintf("dispatch: algorithm kind %s has no footprint", f.Kind()))
	}
	if size > d.blockSize {
		panic(fmt.Sprintf("dispatch: %s needs %d bytes but pool blocks hold %d", f.Kind(), size, d.blockSize))
	}

	block, err := d.algorithms.Allocate(size)
	alg := f.Create(algorithm.CreateInfo{Dispatcher: d, Scratch: d.scratch}, a, b)

	d.mu.Lock()
	defer d.mu.Unlock()
	if err != nil {
		d.heap[alg] = struct{}{}
		d.logger.Debug("algorithm pool unavailable, using heap",
			zap.Stringer("kind", f.Kind()),
			zap.Error(err),
		)
		return alg
	}
	d.blocks[alg] = block
	return alg
}

// ReleaseAlgorithm releases alg and its children and returns its block.
// Algorithms this dispatcher did not create, or already released, are ignored.
func (d *Dispatcher) ReleaseAlgorithm(alg algorithm.Algorithm) {
	if alg == nil {
		return
	}

	d.mu.Lock()
	block, pooled := d.blocks[alg]
	_, onHeap := d.heap[alg]
	delete(d.blocks, alg)
	delete(d.heap, alg)
	d.mu.Unlock()

	if !pooled && !onHeap {
		d.logger.Debug("ignoring release of unknown algorithm", zap.Stringer("kind", alg.Kind()))
		return
	}
	alg.Release()

	if pooled {
		if err := d.algorithms.Free(block); err != nil && !errors.Is(err, alloc.ErrDestroyed) {
			d.logger.Warn("failed to free algorithm block", zap.Stringer("kind", alg.Kind()), zap.Error(err))
		}
	}
}

// ProcessPair runs the cached algorithm of the pair, creating it on first
// use, and returns the refreshed manifold. The pair is resolved in address
// order, whatever order a and b are given in.
func (d *Dispatcher) ProcessPair(a, b *algorithm.Object) *algorithm.Manifold {
	key := MakePair(a, b)

	d.pairMu.Lock()
	state, ok := d.pairs[key]
	if !ok {
		state = d.newPairState(key)
		d.pairs[key] = state
	}
	d.pairMu.Unlock()

	state.manifold.Clear()
	state.alg.Process(key.A, key.B, algorithm.NewResult(state.manifold))
	return state.manifold
}

func (d *Dispatcher) newPairState(key Pair) *pairState {
	state := &pairState{
		alg:      d.FindAlgorithm(key.A, key.B),
		manifold: algorithm.NewManifold(key.A, key.B),
	}
	block, err := d.manifolds.Allocate(algorithm.ManifoldFootprint)
	if err != nil {
		d.logger.Debug("manifold pool unavailable, using heap", zap.Error(err))
		return state
	}
	state.block = block
	return state
}

// RemovePair drops the cached algorithm and manifold of the pair
func (d *Dispatcher) RemovePair(a, b *algorithm.Object) bool {
	key := MakePair(a, b)

	d.pairMu.Lock()
	state, ok := d.pairs[key]
	delete(d.pairs, key)
	d.pairMu.Unlock()

	if !ok {
		return false
	}
	d.releasePair(state)
	return true
}

func (d *Dispatcher) releasePair(state *pairState) {
	d.ReleaseAlgorithm(state.alg)
	if state.block.Valid() {
		if err := d.manifolds.Free(state.block); err != nil && !errors.Is(err, alloc.ErrDestroyed) {
			d.logger.Warn("failed to free manifold block", zap.Error(err))
		}
	}
}

// Pairs lists the cached pairs
func (d *Dispatcher) Pairs() []Pair {
	d.pairMu.Lock()
	defer d.pairMu.Unlock()
	out := make([]Pair, 0, len(d.pairs))
	for key := range d.pairs {
		out = append(out, key)
	}
	return out
}

// Algorithm returns the cached algorithm of the pair
func (d *Dispatcher) Algorithm(a, b *algorithm.Object) (algorithm.Algorithm, bool) {
	d.pairMu.Lock()
	defer d.pairMu.Unlock()
	state, ok := d.pairs[MakePair(a, b)]
	if !ok {
		return nil, false
	}
	return state.alg, true
}

func (d *Dispatcher) Stats() Stats {
	d.pairMu.Lock()
	s := Stats{Pairs: len(d.pairs)}
	for _, state := range d.pairs {
		if state.block.Valid() {
			s.PooledManifolds++
		} else {
			s.HeapManifolds++
		}
	}
	d.pairMu.Unlock()

	d.mu.Lock()
	s.PooledAlgorithms = len(d.blocks)
	s.HeapAlgorithms = len(d.heap)
	d.mu.Unlock()

	s.FreeAlgorithmBlocks = d.algorithms.FreeCount()
	return s
}

// Close releases every cached pair
func (d *Dispatcher) Close() {
	d.pairMu.Lock()
	pairs := d.pairs
	d.pairs = make(map[Pair]*pairState)
	d.pairMu.Unlock()

	for _, state := range pairs {
		d.releasePair(state)
	}
	d.logger.Debug("dispatcher closed", zap.Int("released_pairs", len(pairs)))
}
