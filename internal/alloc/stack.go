package alloc

import "fmt"

// StackAllocator hands out 16-byte aligned slices from one preallocated
// buffer. Memory is reclaimed by unwinding to a mark taken with BeginBlock.
// It is not safe for concurrent use.
type StackAllocator struct {
	buf       []byte
	used      int
	peak      int
	destroyed bool
}

func NewStackAllocator(size int) (*StackAllocator, error) {
	if size <= 0 {
		return nil, fmt.Errorf("stack allocator of %d bytes: %w", size, ErrInvalidSize)
	}
	return &StackAllocator{buf: make([]byte, size)}, nil
}

// Allocate reserves size bytes and returns them zeroed
func (s *StackAllocator) Allocate(size int) ([]byte, error) {
	if s.destroyed {
		return nil, ErrDestroyed
	}
	if size <= 0 {
		return nil, ErrInvalidSize
	}
	start := alignUp(s.used)
	end := start + size
	if end > len(s.buf) {
		return nil, fmt.Errorf("allocate %d bytes with %d free: %w", size, len(s.buf)-start, ErrOutOfMemory)
	}
	out := s.buf[start:end:end]
	clear(out)
	s.used = end
	s.peak = max(s.peak, end)
	return out, nil
}

// BeginBlock returns a mark to unwind to with EndBlock
func (s *StackAllocator) BeginBlock() int {
	return s.used
}

// EndBlock releases everything allocated since mark
func (s *StackAllocator) EndBlock(mark int) {
	if mark < 0 || mark > s.used {
		panic(fmt.Sprintf("alloc: invalid stack mark %d (used %d)", mark, s.used))
	}
	s.used = mark
}

func (s *StackAllocator) Capacity() int {
	return len(s.buf)
}

func (s *StackAllocator) Used() int {
	return s.used
}

// Peak is the highest Used value reached since creation
func (s *StackAllocator) Peak() int {
	return s.peak
}

// Destroy drops the backing buffer. Further allocations fail.
func (s *StackAllocator) Destroy() {
	s.buf = nil
	s.used = 0
	s.destroyed = true
}

func (s *StackAllocator) Destroyed() bool {
	return s.destroyed
}
