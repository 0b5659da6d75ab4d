package algorithm

import "unsafe"

func init() {
	RegisterFootprint(KindEmpty, "Empty", int(unsafe.Sizeof(EmptyAlgorithm{})))
}

// EmptyAlgorithm reports no contacts. It backs every pair no rule supports.
type EmptyAlgorithm struct {
	pairBase
}

func NewEmptyFactory() Factory {
	return NewCreateFunc(KindEmpty, false, func(CreateInfo, *Object, *Object, bool) Algorithm {
		return &EmptyAlgorithm{pairBase{kind: KindEmpty}}
	})
}

func (*EmptyAlgorithm) Process(*Object, *Object, Result) {}
func (*EmptyAlgorithm) Release()                         {}
