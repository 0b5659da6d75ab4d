// Package alloc provides the fixed-capacity allocators behind a collision
// configuration: a scratch stack for transient per-query buffers and a
// fixed-block pool for algorithm instances and persistent manifolds.
package alloc

import "errors"

var (
	ErrInvalidSize     = errors.New("alloc: size must be positive")
	ErrOutOfMemory     = errors.New("alloc: stack allocator capacity exceeded")
	ErrElementTooLarge = errors.New("alloc: request exceeds pool element size")
	ErrPoolExhausted   = errors.New("alloc: pool exhausted")
	ErrDoubleFree      = errors.New("alloc: block already free")
	ErrForeignBlock    = errors.New("alloc: block does not belong to this pool")
	ErrDestroyed       = errors.New("alloc: allocator destroyed")
)

const stackAlignment = 16

func alignUp(n int) int {
	return (n + stackAlignment - 1) &^ (stackAlignment - 1)
}
