package algorithm

import (
	"fmt"
	"sort"
	"sync"
)

// Kind identifies a concrete narrow-phase algorithm type
type Kind int

const (
	KindEmpty Kind = iota
	KindSphereSphere
	KindSphereBox
	KindSphereTriangle
	KindBoxBox
	KindConvexPlane
	KindConvexConvex
	KindConvexConcave
	KindCompound

	numBaseKinds
)

// BaseKinds lists every kind defined in this package
func BaseKinds() []Kind {
	kinds := make([]Kind, 0, numBaseKinds)
	for k := KindEmpty; k < numBaseKinds; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

func (k Kind) String() string {
	if name := KindName(k); name != "" {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

type footprint struct {
	name string
	size int
}

// Footprint table. Every algorithm type registers the pool block size it needs
// from init() in the file that defines it.
var (
	footprintMu sync.RWMutex
	footprints  = map[Kind]footprint{}
	nextKind    = numBaseKinds
)

// RegisterFootprint records the pool block size required by kind.
// Registering a kind twice or with a non-positive size panics.
func RegisterFootprint(kind Kind, name string, size int) {
	footprintMu.Lock()
	defer footprintMu.Unlock()
	registerLocked(kind, name, size)
}

// RegisterKind allocates a new kind for an extension algorithm type and
// records its footprint.
func RegisterKind(name string, size int) Kind {
	footprintMu.Lock()
	defer footprintMu.Unlock()

	for _, fp := range footprints {
		if fp.name == name {
			panic(fmt.Sprintf("algorithm kind %q already registered", name))
		}
	}
	kind := nextKind
	nextKind++
	registerLocked(kind, name, size)
	return kind
}

func registerLocked(kind Kind, name string, size int) {
	if _, exists := footprints[kind]; exists {
		panic(fmt.Sprintf("footprint for algorithm kind %d (%s) already registered", int(kind), name))
	}
	if size <= 0 {
		panic(fmt.Sprintf("footprint for algorithm kind %s must be positive, got %d", name, size))
	}
	footprints[kind] = footprint{name: name, size: size}
}

// Footprint returns the registered block size of kind
func Footprint(kind Kind) (int, bool) {
	footprintMu.RLock()
	defer footprintMu.RUnlock()
	fp, ok := footprints[kind]
	return fp.size, ok
}

// KindName returns the registered name of kind, or "" if unregistered
func KindName(kind Kind) string {
	footprintMu.RLock()
	defer footprintMu.RUnlock()
	return footprints[kind].name
}

// FootprintEntry is one row of the footprint table
type FootprintEntry struct {
	Kind Kind
	Name string
	Size int
}

// Footprints returns the whole table ordered by kind
func Footprints() []FootprintEntry {
	footprintMu.RLock()
	defer footprintMu.RUnlock()

	out := make([]FootprintEntry, 0, len(footprints))
	for k, fp := range footprints {
		out = append(out, FootprintEntry{Kind: k, Name: fp.name, Size: fp.size})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Kind < out[j].Kind })
	return out
}
