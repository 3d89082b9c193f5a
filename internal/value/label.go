package value

import "slices"

// Label names a port and declares the type of values it holds.
type Label struct {
	Type Type   `json:"_tag" msgpack:"tag"`
	Name string `json:"value" msgpack:"name"`
}

// NewLabel is shorthand for a label with the given name and type members.
func NewLabel(name string, tags ...Tag) Label {
	return Label{Type: TypeOf(tags...), Name: name}
}

// Equal compares name and type.
func (l Label) Equal(other Label) bool {
	return l.Name == other.Name && l.Type.Equal(other.Type)
}

// Labels is an ordered port set.
type Labels []Label

// Find returns the label with the given name.
func (ls Labels) Find(name string) (Label, bool) {
	for _, l := range ls {
		if l.Name == name {
			return l, true
		}
	}
	return Label{}, false
}

// Names lists the port names in order.
func (ls Labels) Names() []string {
	names := make([]string, len(ls))
	for i, l := range ls {
		names[i] = l.Name
	}
	return names
}

// Equal compares both sets element by element, order included.
func (ls Labels) Equal(other Labels) bool {
	return slices.EqualFunc(ls, other, Label.Equal)
}

// Clone returns a deep copy.
func (ls Labels) Clone() Labels {
	if ls == nil {
		return nil
	}
	out := make(Labels, len(ls))
	for i, l := range ls {
		out[i] = Label{Type: slices.Clone(l.Type), Name: l.Name}
	}
	return out
}

// Duplicate returns the first port name that appears more than once.
func (ls Labels) Duplicate() (string, bool) {
	seen := make(map[string]struct{}, len(ls))
	for _, l := range ls {
		if _, ok := seen[l.Name]; ok {
			return l.Name, true
		}
		seen[l.Name] = struct{}{}
	}
	return "", false
}
