package ir

// SparseMap translates an index in one component (the "underlying") to the
// corresponding freshly-allocated index in another (the "base"), the side
// table a rebuilding pass threads through as it walks a component (spec
// §4.C "a second flavour of visitor rebuilds a component... threads side
// maps").
type SparseMap[T any] struct {
	m map[int]Index[T]
}

func NewSparseMap[T any]() *SparseMap[T] {
	return &SparseMap[T]{m: make(map[int]Index[T])}
}

func (s *SparseMap[T]) Set(underlying, base Index[T]) {
	s.m[underlying.raw()] = base
}

func (s *SparseMap[T]) Get(underlying Index[T]) (Index[T], bool) {
	base, ok := s.m[underlying.raw()]
	return base, ok
}

// MustGet panics if underlying has no mapping yet; used where the rebuild
// order guarantees the dependency was already visited.
func (s *SparseMap[T]) MustGet(underlying Index[T]) Index[T] {
	base, ok := s.Get(underlying)
	if !ok {
		panic("ir: sparse map miss, rebuild visited a reference before its definition")
	}
	return base
}
