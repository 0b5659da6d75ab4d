// Package collision builds the narrow-phase collision configuration: the
// factory registry, the ordered dispatch chain that picks a factory for every
// pair of shape types, the pool block size derived from it, and the scratch
// allocator shared by algorithms.
package collision

import (
	"errors"
	"fmt"
	"strings"

	"narrowphase/internal/alloc"

	"go.uber.org/zap"
)

var (
	ErrInvalidStackSize  = errors.New("collision: stack allocator size must be positive")
	ErrInvalidPoolSize   = errors.New("collision: pool size must be positive")
	ErrUnknownPairKind   = errors.New("collision: unknown pair kind")
	ErrInvalidMultipoint = errors.New("collision: multipoint values must not be negative")
	ErrUnregisteredKind  = errors.New("collision: algorithm kind has no registered footprint")
	ErrPoolBlockTooSmall = errors.New("collision: algorithm pool blocks smaller than required size")
	ErrUndeclaredKind    = errors.New("collision: rule set resolves a kind missing from its Kinds")
	ErrClosed            = errors.New("collision: configuration closed")
)

// PairKind selects the tunable factory family for SetMultipointIterations
type PairKind int

const (
	PairConvexConvex PairKind = iota
	PairConvexPlane
)

func (k PairKind) String() string {
	switch k {
	case PairConvexConvex:
		return "convex-convex"
	case PairConvexPlane:
		return "convex-plane"
	}
	return fmt.Sprintf("PairKind(%d)", int(k))
}

// ParsePairKind accepts the names printed by PairKind.String
func ParsePairKind(name string) (PairKind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "convex-convex", "convexconvex":
		return PairConvexConvex, nil
	case "convex-plane", "convexplane":
		return PairConvexPlane, nil
	}
	return 0, fmt.Errorf("%q: %w", name, ErrUnknownPairKind)
}

const (
	DefaultStackAllocatorSize = 5 * 1024 * 1024
	DefaultMaxPoolSize        = 4096
)

// ConstructionInfo holds the construction options of a Configuration.
// Allocators left nil are created and owned by the configuration; non-nil
// allocators are borrowed and never destroyed by it.
type ConstructionInfo struct {
	UseEpaPenetrationAlgorithm bool

	StackAllocator            *alloc.StackAllocator
	DefaultStackAllocatorSize int

	PersistentManifoldPool               *alloc.PoolAllocator
	DefaultMaxPersistentManifoldPoolSize int

	CollisionAlgorithmPool               *alloc.PoolAllocator
	DefaultMaxCollisionAlgorithmPoolSize int

	// CustomCollisionAlgorithmMaxElementSize raises the pool block size for
	// algorithm kinds created outside the registry
	CustomCollisionAlgorithmMaxElementSize int

	// EnableSphereBox turns on the dedicated sphere-box rule
	EnableSphereBox bool
}

func DefaultConstructionInfo() ConstructionInfo {
	return ConstructionInfo{
		UseEpaPenetrationAlgorithm:           true,
		DefaultStackAllocatorSize:            DefaultStackAllocatorSize,
		DefaultMaxPersistentManifoldPoolSize: DefaultMaxPoolSize,
		DefaultMaxCollisionAlgorithmPoolSize: DefaultMaxPoolSize,
	}
}

func (info ConstructionInfo) validate() error {
	if info.StackAllocator == nil && info.DefaultStackAllocatorSize <= 0 {
		return fmt.Errorf("%d bytes: %w", info.DefaultStackAllocatorSize, ErrInvalidStackSize)
	}
	if info.PersistentManifoldPool == nil && info.DefaultMaxPersistentManifoldPoolSize <= 0 {
		return fmt.Errorf("manifold pool of %d: %w", info.DefaultMaxPersistentManifoldPoolSize, ErrInvalidPoolSize)
	}
	if info.CollisionAlgorithmPool == nil && info.DefaultMaxCollisionAlgorithmPoolSize <= 0 {
		return fmt.Errorf("algorithm pool of %d: %w", info.DefaultMaxCollisionAlgorithmPoolSize, ErrInvalidPoolSize)
	}
	if info.CustomCollisionAlgorithmMaxElementSize < 0 {
		return fmt.Errorf("custom element size %d: %w", info.CustomCollisionAlgorithmMaxElementSize, ErrInvalidPoolSize)
	}
	return nil
}

type options struct {
	logger *zap.Logger
	rules  []RuleSet
}

// Option configures New
type Option func(*options)

func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithRuleSet adds an extension rule set ahead of everything added before it
func WithRuleSet(r RuleSet) Option {
	return func(o *options) {
		if r != nil {
			o.rules = append([]RuleSet{r}, o.rules...)
		}
	}
}
