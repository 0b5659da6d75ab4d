package algorithm

// Factory creates algorithm instances for one dispatch rule. A swapped factory
// creates algorithms that expect their arguments reversed from lookup order;
// those algorithms undo the reversal themselves so callers always pass
// lookup order.
type Factory interface {
	Kind() Kind
	Swapped() bool
	Create(info CreateInfo, a, b *Object) Algorithm
}

// Multipoint tunes manifold refinement by perturbation. When a pair has fewer
// than MinimumPointsThreshold contacts after the regular query, the query is
// repeated Iterations times with the first shape slightly rotated.
type Multipoint struct {
	Iterations             int
	MinimumPointsThreshold int
}

// Tunable factories expose their multipoint settings
type Tunable interface {
	Factory
	Multipoint() Multipoint
	SetMultipoint(Multipoint)
}

// NewFunc builds one algorithm instance
type NewFunc func(info CreateInfo, a, b *Object, swapped bool) Algorithm

// CreateFunc is the generic factory: a kind, an argument order and a constructor
type CreateFunc struct {
	kind    Kind
	swapped bool
	newFn   NewFunc
}

func NewCreateFunc(kind Kind, swapped bool, fn NewFunc) *CreateFunc {
	return &CreateFunc{kind: kind, swapped: swapped, newFn: fn}
}

func (f *CreateFunc) Kind() Kind    { return f.kind }
func (f *CreateFunc) Swapped() bool { return f.swapped }

func (f *CreateFunc) Create(info CreateInfo, a, b *Object) Algorithm {
	return f.newFn(info, a, b, f.swapped)
}

// MultipointCreateFunc is a CreateFunc with perturbation settings. Settings are
// copied into each algorithm at creation, so tuning affects later creations
// only.
type MultipointCreateFunc struct {
	CreateFunc
	multipoint Multipoint
	newMp      func(info CreateInfo, a, b *Object, swapped bool, mp Multipoint) Algorithm
}

func (f *MultipointCreateFunc) Multipoint() Multipoint { return f.multipoint }

func (f *MultipointCreateFunc) SetMultipoint(mp Multipoint) {
	f.multipoint = mp
}

func (f *MultipointCreateFunc) Create(info CreateInfo, a, b *Object) Algorithm {
	return f.newMp(info, a, b, f.swapped, f.multipoint)
}
