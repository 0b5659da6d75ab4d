package alloc

import (
	"fmt"
	"sync"
)

// Block is one fixed-size element reserved from a PoolAllocator
type Block struct {
	pool  *PoolAllocator
	index int
	// Bytes is the element storage, sized to the pool element size
	Bytes []byte
}

// Valid reports whether b refers to a pool element
func (b Block) Valid() bool {
	return b.pool != nil
}

// PoolAllocator manages maxElements blocks of elemSize bytes each
type PoolAllocator struct {
	mu        sync.Mutex
	elemSize  int
	buf       []byte
	free      []int
	inUse     []bool
	destroyed bool
}

func NewPoolAllocator(elemSize, maxElements int) (*PoolAllocator, error) {
	if elemSize <= 0 || maxElements <= 0 {
		return nil, fmt.Errorf("pool of %d x %d bytes: %w", maxElements, elemSize, ErrInvalidSize)
	}
	p := &PoolAllocator{
		elemSize: elemSize,
		buf:      make([]byte, elemSize*maxElements),
		free:     make([]int, maxElements),
		inUse:    make([]bool, maxElements),
	}
	// lowest index is handed out first
	for i := range p.free {
		p.free[i] = maxElements - 1 - i
	}
	return p, nil
}

// Allocate reserves one element able to hold size bytes
func (p *PoolAllocator) Allocate(size int) (Block, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.destroyed {
		return Block{}, ErrDestroyed
	}
	if size > p.elemSize {
		return Block{}, fmt.Errorf("allocate %d bytes from %d byte blocks: %w", size, p.elemSize, ErrElementTooLarge)
	}
	if len(p.free) == 0 {
		return Block{}, ErrPoolExhausted
	}
	idx := p.free[len(p.free)-1]
	p.free = p.free[:len(p.free)-1]
	p.inUse[idx] = true

	start := idx * p.elemSize
	bytes := p.buf[start : start+p.elemSize : start+p.elemSize]
	clear(bytes)
	return Block{pool: p, index: idx, Bytes: bytes}, nil
}

// Free returns b to the pool
func (p *PoolAllocator) Free(b Block) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if b.pool != p {
		return ErrForeignBlock
	}
	if p.destroyed {
		return ErrDestroyed
	}
	if !p.inUse[b.index] {
		return ErrDoubleFree
	}
	p.inUse[b.index] = false
	p.free = append(p.free, b.index)
	return nil
}

// Validate reports whether b was allocated from p and is still live
func (p *PoolAllocator) Validate(b Block) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return b.pool == p && !p.destroyed && p.inUse[b.index]
}

func (p *PoolAllocator) ElementSize() int {
	return p.elemSize
}

func (p *PoolAllocator) MaxElements() int {
	return len(p.inUse)
}

func (p *PoolAllocator) FreeCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.free)
}

// Destroy drops the backing storage
func (p *PoolAllocator) Destroy() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.buf = nil
	p.free = nil
	p.destroyed = true
}

func (p *PoolAllocator) Destroyed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.destroyed
}
