package value

import "maps"

// Record maps port names to values.
type Record map[string]Value

// Clone returns a shallow copy, which is a full copy since values are immutable.
func (r Record) Clone() Record {
	if r == nil {
		return Record{}
	}
	return maps.Clone(r)
}

// Merge returns a copy of r with every entry of other written over it.
func (r Record) Merge(other Record) Record {
	out := r.Clone()
	maps.Copy(out, other)
	return out
}

// Equal compares both records key by key.
func (r Record) Equal(other Record) bool {
	return maps.EqualFunc(r, other, Value.Equal)
}
