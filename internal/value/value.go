package value

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Value is a concrete tagged datum. The zero Value is null, used for absent
// inputs and outputs.
type Value struct {
	Tag Tag     `msgpack:"t"`
	Str string  `msgpack:"s,omitempty"`
	Num float64 `msgpack:"n,omitempty"`
}

// StringValue returns a string-tagged value.
func StringValue(s string) Value {
	return Value{Tag: String, Str: s}
}

// NumberValue returns a number-tagged value.
func NumberValue(n float64) Value {
	return Value{Tag: Number, Num: n}
}

// ImageURLValue returns an imageUrl-tagged value.
func ImageURLValue(u string) Value {
	return Value{Tag: ImageURL, Str: u}
}

// IsNull reports whether v carries no data.
func (v Value) IsNull() bool {
	return v.Tag == ""
}

// Equal compares tag and payload. NaN numbers are equal to each other so that
// repeated evaluations of the same unparsable input compare unchanged.
func (v Value) Equal(other Value) bool {
	if v.Tag != other.Tag {
		return false
	}
	if v.Tag == Number {
		if math.IsNaN(v.Num) && math.IsNaN(other.Num) {
			return true
		}
		return v.Num == other.Num
	}
	return v.Str == other.Str
}

func (v Value) String() string {
	switch v.Tag {
	case "":
		return "null"
	case Number:
		return strconv.FormatFloat(v.Num, 'g', -1, 64)
	default:
		return v.Str
	}
}

type wireValue struct {
	Tag   Type            `json:"_tag"`
	Value json.RawMessage `json:"value"`
}

// MarshalJSON encodes the value as {"_tag": ..., "value": ...}. Null encodes
// as JSON null and NaN or infinite numbers encode their payload as null.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.IsNull() {
		return []byte("null"), nil
	}
	var payload any
	switch v.Tag {
	case Number:
		if math.IsNaN(v.Num) || math.IsInf(v.Num, 0) {
			payload = nil
		} else {
			payload = v.Num
		}
	default:
		payload = v.Str
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(wireValue{Tag: Type{v.Tag}, Value: raw})
}

// UnmarshalJSON accepts both concrete and union-tagged values. A union tag is
// narrowed to the concrete member implied by the JSON type of the payload.
func (v *Value) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = Value{}
		return nil
	}
	var w wireValue
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("decoding value: %w", err)
	}
	out, err := FromRaw(w.Tag, w.Value)
	if err != nil {
		return err
	}
	*v = out
	return nil
}

// FromRaw builds a concrete value from a declared type and a raw JSON payload.
func FromRaw(ty Type, raw json.RawMessage) (Value, error) {
	if len(ty) == 0 {
		return Value{}, fmt.Errorf("value has no tag")
	}
	var payload any
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &payload); err != nil {
			return Value{}, fmt.Errorf("decoding value payload: %w", err)
		}
	}
	return FromAny(ty, payload)
}

// FromAny builds a concrete value from a declared type and a decoded payload.
func FromAny(ty Type, payload any) (Value, error) {
	if err := ty.validate(); err != nil {
		return Value{}, err
	}
	switch p := payload.(type) {
	case nil:
		if ty.Accepts(Number) {
			return NumberValue(math.NaN()), nil
		}
		return Value{Tag: ty.Primary()}, nil
	case string:
		switch {
		case ty.Accepts(String):
			return StringValue(p), nil
		case ty.Accepts(ImageURL):
			return ImageURLValue(p), nil
		}
	case float64:
		if ty.Accepts(Number) {
			return NumberValue(p), nil
		}
	case int64:
		if ty.Accepts(Number) {
			return NumberValue(float64(p)), nil
		}
	case int:
		if ty.Accepts(Number) {
			return NumberValue(float64(p)), nil
		}
	}
	return Value{}, fmt.Errorf("payload %v does not fit type %s", payload, ty)
}
