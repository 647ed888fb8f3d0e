package regex

// ToLiteral succeeds iff r is equivalent to a concrete sequence of
// single-character OneOf nodes with singleton bitsets chained by Sequence
// (or the empty Succeed), returning the implied ordered byte sequence.
func ToLiteral(r Regex) ([]byte, bool) {
	switch n := r.(type) {
	case Succeed:
		return []byte{}, true
	case OneOf:
		v, ok := n.Set.Singleton()
		if !ok {
			return nil, false
		}
		return []byte{v}, true
	case Sequence:
		l, ok := ToLiteral(n.L)
		if !ok {
			return nil, false
		}
		rr, ok := ToLiteral(n.R)
		if !ok {
			return nil, false
		}
		return append(l, rr...), true
	default:
		return nil, false
	}
}
