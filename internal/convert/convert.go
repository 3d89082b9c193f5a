// Package convert implements the coercion matrix between value tags. Every
// (from, to) pair is either supported or reported as a ValueConversionError;
// conversion never panics.
package convert

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/vk/promptgrid/internal/value"
)

// ValueConversionError reports a value that cannot be represented in the
// requested tag.
type ValueConversionError struct {
	From  value.Tag
	To    value.Tag
	Value value.Value
}

func (e *ValueConversionError) Error() string {
	return fmt.Sprintf("cannot convert %s value %q to %s", e.From, e.Value.String(), e.To)
}

// Convert re-tags v, which is declared as from, into tag to.
func Convert(v value.Value, from, to value.Tag) (value.Value, error) {
	if from == to {
		return v, nil
	}
	fail := &ValueConversionError{From: from, To: to, Value: v}

	switch from {
	case value.Number:
		if to == value.String {
			return value.StringValue(FormatNumber(v.Num)), nil
		}
	case value.String:
		switch to {
		case value.Number:
			return value.NumberValue(ParseNumber(v.Str)), nil
		case value.ImageURL:
			if strings.HasPrefix(v.Str, "http") {
				return value.ImageURLValue(v.Str), nil
			}
		}
	case value.ImageURL:
		if to == value.String {
			return value.StringValue(v.Str), nil
		}
	}
	return value.Value{}, fail
}

// ToType coerces v into a port of the given type. A value whose tag the type
// already accepts is returned unchanged; otherwise the members are tried in
// order and the first successful conversion wins.
func ToType(v value.Value, ty value.Type) (value.Value, error) {
	if v.IsNull() || ty.Accepts(v.Tag) {
		return v, nil
	}
	var firstErr error
	for _, t := range ty {
		out, err := Convert(v, v.Tag, t)
		if err == nil {
			return out, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	if firstErr == nil {
		firstErr = &ValueConversionError{From: v.Tag, To: ty.Primary(), Value: v}
	}
	return value.Value{}, firstErr
}

// FormatNumber renders a number the way a browser would print it.
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}
	abs := math.Abs(f)
	if abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	s := strconv.FormatFloat(f, 'e', -1, 64)
	// 1e+21 keeps its sign, but the exponent loses leading zeros: 1e-07 -> 1e-7.
	mant, exp, _ := strings.Cut(s, "e")
	sign := exp[:1]
	digits := strings.TrimLeft(exp[1:], "0")
	return mant + "e" + sign + digits
}

// radixLiteral splits an unsigned 0x, 0o or 0b literal into its base and
// digits.
func radixLiteral(s string) (int, string, bool) {
	if len(s) < 2 || s[0] != '0' {
		return 0, "", false
	}
	if len(s) > 2 && (s[2] == '+' || s[2] == '-') {
		return 0, "", true
	}
	switch s[1] {
	case 'x', 'X':
		return 16, s[2:], true
	case 'o', 'O':
		return 8, s[2:], true
	case 'b', 'B':
		return 2, s[2:], true
	}
	return 0, "", false
}

// ParseNumber converts text to a number. Surrounding whitespace is ignored,
// blank text is zero, unsigned integer literals may carry a 0x, 0o or 0b prefix, and
// anything else unparsable yields NaN.
func ParseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	switch s {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	lower := strings.ToLower(s)
	if strings.Contains(lower, "inf") || strings.Contains(lower, "nan") || strings.Contains(s, "_") {
		return math.NaN()
	}
	if base, digits, ok := radixLiteral(s); ok {
		n, ok := new(big.Int).SetString(digits, base)
		if !ok {
			return math.NaN()
		}
		f, _ := new(big.Float).SetInt(n).Float64()
		return f
	}
	// Signed radix literals and hex floats are not numbers.
	if strings.HasPrefix(lower[1:], "0x") {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(s, 64)
	if err == nil || errors.Is(err, strconv.ErrRange) {
		return f
	}
	return math.NaN()
}
