package collision

import (
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"narrowphase/internal/algorithm"
	"narrowphase/internal/alloc"
	"narrowphase/internal/shape"
	"narrowphase/internal/solver"

	"go.uber.org/zap"
)

// Configuration owns the factories, shared solvers and allocators used by the
// narrow phase. After New returns, Resolve is safe for concurrent use;
// SetMultipointIterations and Close must not run alongside it.
type Configuration struct {
	logger *zap.Logger

	simplexSolver *solver.VoronoiSimplexSolver
	pdSolver      solver.PenetrationDepthSolver

	base  *DefaultRules
	chain []RuleSet
	empty algorithm.Factory

	blockSize int

	scratch       Scratch
	manifoldPool  Resource[*alloc.PoolAllocator]
	algorithmPool Resource[*alloc.PoolAllocator]

	closed    atomic.Bool
	closeOnce sync.Once
}

// New builds a configuration. Extension rule sets given through WithRuleSet
// are consulted before the base rules.
func New(info ConstructionInfo, opts ...Option) (*Configuration, error) {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	if err := info.validate(); err != nil {
		return nil, err
	}

	c := &Configuration{
		logger:        o.logger,
		simplexSolver: solver.NewVoronoiSimplexSolver(),
		empty:         algorithm.NewEmptyFactory(),
	}
	if info.UseEpaPenetrationAlgorithm {
		c.pdSolver = solver.NewEpaSolver()
	} else {
		c.pdSolver = solver.NewMinkowskiSolver()
	}

	c.base = NewDefaultRules(c.simplexSolver, c.pdSolver, info.EnableSphereBox)
	c.chain = append(o.rules, c.base)

	if err := checkDeclaredKinds(c.chain); err != nil {
		c.closeRules()
		return nil, err
	}

	blockSize, err := requiredBlockSize(info.CustomCollisionAlgorithmMaxElementSize, c.chain)
	if err != nil {
		c.closeRules()
		return nil, err
	}
	c.blockSize = blockSize

	if err := c.initAllocators(info); err != nil {
		c.closeRules()
		c.releaseAllocators()
		return nil, err
	}

	c.logger.Info("collision configuration created",
		zap.String("penetration_solver", c.pdSolver.Name()),
		zap.Strings("rule_sets", c.ruleSetNames()),
		zap.Int("pool_block_size", c.blockSize),
		zap.Bool("sphere_box", info.EnableSphereBox),
		zap.Bool("owns_stack_allocator", c.scratch.Owned()),
		zap.Bool("owns_manifold_pool", c.manifoldPool.Owned()),
		zap.Bool("owns_algorithm_pool", c.algorithmPool.Owned()),
	)
	return c, nil
}

// requiredBlockSize is the largest footprint of any kind the chain can
// create, the empty fallback, or the custom floor
func requiredBlockSize(custom int, chain []RuleSet) (int, error) {
	size := custom
	kinds := []algorithm.Kind{algorithm.KindEmpty}
	for _, r := range chain {
		kinds = append(kinds, r.Kinds()...)
	}
	for _, k := range kinds {
		fp, ok := algorithm.Footprint(k)
		if !ok {
			return 0, fmt.Errorf("kind %d: %w", int(k), ErrUnregisteredKind)
		}
		size = max(size, fp)
	}
	return size, nil
}

// checkDeclaredKinds resolves every ordered pair against every rule set and
// fails when a factory's kind is not listed by that rule set's Kinds, since
// the pool block size is derived from those lists
func checkDeclaredKinds(chain []RuleSet) error {
	types := shape.Types()
	for _, r := range chain {
		declared := r.Kinds()
		for _, a := range types {
			for _, b := range types {
				f, ok := r.TryResolve(a, b)
				if !ok {
					continue
				}
				if !slices.Contains(declared, f.Kind()) {
					return fmt.Errorf("rule set %q resolves %s x %s to %s: %w", r.Name(), a, b, f.Kind(), ErrUndeclaredKind)
				}
			}
		}
	}
	return nil
}

func (c *Configuration) initAllocators(info ConstructionInfo) error {
	if info.StackAllocator != nil {
		c.scratch = NewBorrowed(info.StackAllocator)
	} else {
		stack, err := alloc.NewStackAllocator(info.DefaultStackAllocatorSize)
		if err != nil {
			return fmt.Errorf("failed to create stack allocator: %w", err)
		}
		c.scratch = ownedStack(stack)
	}

	if info.PersistentManifoldPool != nil {
		c.manifoldPool = NewBorrowed(info.PersistentManifoldPool)
	} else {
		pool, err := alloc.NewPoolAllocator(algorithm.ManifoldFootprint, info.DefaultMaxPersistentManifoldPoolSize)
		if err != nil {
			return fmt.Errorf("failed to create manifold pool: %w", err)
		}
		c.manifoldPool = ownedPool(pool)
	}

	if info.CollisionAlgorithmPool != nil {
		if info.CollisionAlgorithmPool.ElementSize() < c.blockSize {
			return fmt.Errorf("%d < %d bytes: %w", info.CollisionAlgorithmPool.ElementSize(), c.blockSize, ErrPoolBlockTooSmall)
		}
		c.algorithmPool = NewBorrowed(info.CollisionAlgorithmPool)
	} else {
		pool, err := alloc.NewPoolAllocator(c.blockSize, info.DefaultMaxCollisionAlgorithmPoolSize)
		if err != nil {
			return fmt.Errorf("failed to create algorithm pool: %w", err)
		}
		c.algorithmPool = ownedPool(pool)
	}
	return nil
}

// Resolve returns the factory for the ordered pair (a, b). It never returns
// nil: pairs no rule set supports get the empty factory.
func (c *Configuration) Resolve(a, b shape.Type) algorithm.Factory {
	f, _ := c.resolve(a, b)
	return f
}

func (c *Configuration) resolve(a, b shape.Type) (algorithm.Factory, string) {
	if c.closed.Load() {
		return c.empty, ""
	}
	for _, r := range c.chain {
		if f, ok := r.TryResolve(a, b); ok {
			return f, r.Name()
		}
	}
	return c.empty, ""
}

// SetMultipointIterations tunes perturbation for algorithms created after the
// call. The plane kind updates both argument orders.
func (c *Configuration) SetMultipointIterations(kind PairKind, iterations, threshold int) error {
	if c.closed.Load() {
		return ErrClosed
	}
	if iterations < 0 || threshold < 0 {
		return fmt.Errorf("%s iterations=%d threshold=%d: %w", kind, iterations, threshold, ErrInvalidMultipoint)
	}
	mp := algorithm.Multipoint{Iterations: iterations, MinimumPointsThreshold: threshold}
	if err := c.base.setMultipoint(kind, mp); err != nil {
		return fmt.Errorf("%s: %w", kind, err)
	}
	c.logger.Debug("multipoint updated",
		zap.Stringer("pair_kind", kind),
		zap.Int("iterations", iterations),
		zap.Int("threshold", threshold),
	)
	return nil
}

// Multipoint reads the current settings of kind
func (c *Configuration) Multipoint(kind PairKind) (algorithm.Multipoint, error) {
	if c.closed.Load() {
		return algorithm.Multipoint{}, ErrClosed
	}
	return c.base.multipoint(kind)
}

// RequiredPoolBlockSize is the smallest pool block able to hold any algorithm
// this configuration can create
func (c *Configuration) RequiredPoolBlockSize() int {
	return c.blockSize
}

func (c *Configuration) SimplexSolver() *solver.VoronoiSimplexSolver {
	return c.simplexSolver
}

func (c *Configuration) PenetrationSolver() solver.PenetrationDepthSolver {
	return c.pdSolver
}

func (c *Configuration) StackAllocator() Scratch {
	return c.scratch
}

func (c *Configuration) PersistentManifoldPool() Resource[*alloc.PoolAllocator] {
	return c.manifoldPool
}

func (c *Configuration) CollisionAlgorithmPool() Resource[*alloc.PoolAllocator] {
	return c.algorithmPool
}

// Kinds lists every algorithm kind reachable through the chain, including
// the empty fallback, in ascending order
func (c *Configuration) Kinds() []algorithm.Kind {
	kinds := []algorithm.Kind{algorithm.KindEmpty}
	for _, r := range c.chain {
		kinds = append(kinds, r.Kinds()...)
	}
	slices.Sort(kinds)
	return slices.Compact(kinds)
}

// Entry is one cell of the dispatch matrix
type Entry struct {
	A, B    shape.Type
	Kind    algorithm.Kind
	Swapped bool
	// RuleSet names the rule set that matched, empty for the fallback
	RuleSet string
}

// Matrix resolves every ordered pair of concrete shape types
func (c *Configuration) Matrix() []Entry {
	types := shape.Types()
	out := make([]Entry, 0, len(types)*len(types))
	for _, a := range types {
		for _, b := range types {
			f, name := c.resolve(a, b)
			out = append(out, Entry{A: a, B: b, Kind: f.Kind(), Swapped: f.Swapped(), RuleSet: name})
		}
	}
	return out
}

// Close drops every factory and destroys the allocators the configuration
// owns. Later calls do nothing.
func (c *Configuration) Close() error {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		c.closeRules()
		c.releaseAllocators()
		c.logger.Info("collision configuration closed")
	})
	return nil
}

func (c *Configuration) closeRules() {
	for _, r := range c.chain {
		r.Close()
	}
}

func (c *Configuration) releaseAllocators() {
	type releaser interface{ release() bool }
	resources := []struct {
		name string
		r    releaser
	}{
		{"stack_allocator", c.scratch},
		{"manifold_pool", c.manifoldPool},
		{"algorithm_pool", c.algorithmPool},
	}
	for _, res := range resources {
		if res.r != nil && res.r.release() {
			c.logger.Debug("released owned allocator", zap.String("allocator", res.name))
		}
	}
}

func (c *Configuration) ruleSetNames() []string {
	names := make([]string, 0, len(c.chain))
	for _, r := range c.chain {
		names = append(names, r.Name())
	}
	return names
}
