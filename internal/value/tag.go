package value

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// Tag identifies a primitive value type.
type Tag string

const (
	String   Tag = "string"
	Number   Tag = "number"
	ImageURL Tag = "imageUrl"
)

// AllTags lists every primitive tag in canonical order.
var AllTags = []Tag{String, Number, ImageURL}

// Valid reports whether t is one of the known primitive tags.
func (t Tag) Valid() bool {
	return slices.Contains(AllTags, t)
}

// Type is the declared type of a port. A single tag is the common case; more
// than one tag makes it a widened union that accepts any of its members.
type Type []Tag

// TypeOf builds a Type from the given tags.
func TypeOf(tags ...Tag) Type {
	return Type(tags)
}

// AnyType accepts every primitive tag.
func AnyType() Type {
	return slices.Clone(Type(AllTags))
}

// Accepts reports whether a value of tag t may be stored in a port of this type.
func (ty Type) Accepts(t Tag) bool {
	return slices.Contains(ty, t)
}

// Primary returns the first member of the type, or "" for an empty type.
func (ty Type) Primary() Tag {
	if len(ty) == 0 {
		return ""
	}
	return ty[0]
}

// IsUnion reports whether the type has more than one member.
func (ty Type) IsUnion() bool {
	return len(ty) > 1
}

// Equal reports whether both types list the same tags in the same order.
func (ty Type) Equal(other Type) bool {
	return slices.Equal(ty, other)
}

func (ty Type) String() string {
	parts := make([]string, len(ty))
	for i, t := range ty {
		parts[i] = string(t)
	}
	return strings.Join(parts, "|")
}

// MarshalJSON encodes a single-tag type as a plain string and a union as an array.
func (ty Type) MarshalJSON() ([]byte, error) {
	if len(ty) == 1 {
		return json.Marshal(string(ty[0]))
	}
	tags := make([]string, len(ty))
	for i, t := range ty {
		tags[i] = string(t)
	}
	return json.Marshal(tags)
}

func (ty *Type) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*ty = Type{Tag(single)}
		return ty.validate()
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("type must be a tag or a list of tags: %w", err)
	}
	out := make(Type, len(many))
	for i, s := range many {
		out[i] = Tag(s)
	}
	*ty = out
	return ty.validate()
}

func (ty Type) validate() error {
	for _, t := range ty {
		if !t.Valid() {
			return fmt.Errorf("unknown value tag %q", t)
		}
	}
	return nil
}
