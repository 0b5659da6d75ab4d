package collision

import "narrowphase/internal/alloc"

// Resource is a collaborator the configuration either owns or borrows.
// Only Owned resources are destroyed at teardown.
type Resource[T any] interface {
	Value() T
	Owned() bool
	release() bool
}

// Owned is created by the configuration and destroyed exactly once on Close
type Owned[T any] struct {
	value    T
	destroy  func(T)
	released bool
}

func NewOwned[T any](value T, destroy func(T)) *Owned[T] {
	return &Owned[T]{value: value, destroy: destroy}
}

func (o *Owned[T]) Value() T    { return o.value }
func (o *Owned[T]) Owned() bool { return true }

func (o *Owned[T]) release() bool {
	if o.released {
		return false
	}
	o.released = true
	if o.destroy != nil {
		o.destroy(o.value)
	}
	return true
}

// Borrowed was supplied by the caller, who keeps responsibility for it
type Borrowed[T any] struct {
	value T
}

func NewBorrowed[T any](value T) Borrowed[T] {
	return Borrowed[T]{value: value}
}

func (b Borrowed[T]) Value() T      { return b.value }
func (b Borrowed[T]) Owned() bool   { return false }
func (b Borrowed[T]) release() bool { return false }

// Scratch is the stack allocator shared by algorithms for transient buffers
type Scratch = Resource[*alloc.StackAllocator]

func ownedStack(s *alloc.StackAllocator) *Owned[*alloc.StackAllocator] {
	return NewOwned(s, (*alloc.StackAllocator).Destroy)
}

func ownedPool(p *alloc.PoolAllocator) *Owned[*alloc.PoolAllocator] {
	return NewOwned(p, (*alloc.PoolAllocator).Destroy)
}
