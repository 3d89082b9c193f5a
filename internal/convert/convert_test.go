package convert

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/promptgrid/internal/value"
)

func TestConvert_Matrix(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		in      value.Value
		to      value.Tag
		want    value.Value
		wantErr bool
	}{
		{name: "string identity", in: value.StringValue("a"), to: value.String, want: value.StringValue("a")},
		{name: "number identity", in: value.NumberValue(1.5), to: value.Number, want: value.NumberValue(1.5)},
		{name: "image identity", in: value.ImageURLValue("http://a"), to: value.ImageURL, want: value.ImageURLValue("http://a")},
		{name: "number to string", in: value.NumberValue(42), to: value.String, want: value.StringValue("42")},
		{name: "fraction to string", in: value.NumberValue(0.5), to: value.String, want: value.StringValue("0.5")},
		{name: "string to number", in: value.StringValue(" 12.5 "), to: value.Number, want: value.NumberValue(12.5)},
		{name: "empty string to number", in: value.StringValue(""), to: value.Number, want: value.NumberValue(0)},
		{name: "hex string to number", in: value.StringValue("0x10"), to: value.Number, want: value.NumberValue(16)},
		{name: "http string to image", in: value.StringValue("https://x/y.png"), to: value.ImageURL, want: value.ImageURLValue("https://x/y.png")},
		{name: "plain string to image", in: value.StringValue("not-a-url"), to: value.ImageURL, wantErr: true},
		{name: "image to string", in: value.ImageURLValue("http://a"), to: value.String, want: value.StringValue("http://a")},
		{name: "number to image", in: value.NumberValue(1), to: value.ImageURL, wantErr: true},
		{name: "image to number", in: value.ImageURLValue("http://a"), to: value.Number, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := Convert(tc.in, tc.in.Tag, tc.to)
			if tc.wantErr {
				var convErr *ValueConversionError
				require.True(t, errors.As(err, &convErr))
				assert.Equal(t, tc.in.Tag, convErr.From)
				assert.Equal(t, tc.to, convErr.To)
				return
			}
			require.NoError(t, err)
			assert.True(t, tc.want.Equal(got), "got %v want %v", got, tc.want)
		})
	}
}

func TestConvert_TotalOverAllPairs(t *testing.T) {
	t.Parallel()

	samples := []value.Value{
		value.StringValue("hello"),
		value.StringValue("http://img"),
		value.NumberValue(math.NaN()),
		value.NumberValue(-3),
		value.ImageURLValue("http://img"),
	}
	for _, v := range samples {
		for _, to := range value.AllTags {
			assert.NotPanics(t, func() {
				out, err := Convert(v, v.Tag, to)
				if err == nil {
					assert.Equal(t, to, out.Tag)
				}
			})
		}
	}
}

func TestConvert_RoundTrips(t *testing.T) {
	t.Parallel()

	for _, n := range []float64{0, 1, -7, 3.25, 1e21, 1e-7, 123456789} {
		s, err := Convert(value.NumberValue(n), value.Number, value.String)
		require.NoError(t, err)
		back, err := Convert(s, value.String, value.Number)
		require.NoError(t, err)
		assert.Equal(t, n, back.Num, "round trip of %v via %q", n, s.Str)
	}

	u := value.ImageURLValue("http://example.com/a.png")
	s, err := Convert(u, value.ImageURL, value.String)
	require.NoError(t, err)
	back, err := Convert(s, value.String, value.ImageURL)
	require.NoError(t, err)
	assert.Equal(t, u, back)
}

func TestFormatNumber(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "NaN", FormatNumber(math.NaN()))
	assert.Equal(t, "Infinity", FormatNumber(math.Inf(1)))
	assert.Equal(t, "-Infinity", FormatNumber(math.Inf(-1)))
	assert.Equal(t, "1e+21", FormatNumber(1e21))
	assert.Equal(t, "1e-7", FormatNumber(1e-7))
	assert.Equal(t, "0.000001", FormatNumber(1e-6))
	assert.Equal(t, "-2.5", FormatNumber(-2.5))
}

func TestParseNumber(t *testing.T) {
	t.Parallel()

	assert.True(t, math.IsNaN(ParseNumber("abc")))
	assert.True(t, math.IsNaN(ParseNumber("1_000")))
	assert.True(t, math.IsNaN(ParseNumber("nan")))
	assert.Equal(t, 5.0, ParseNumber("0b101"))
	assert.Equal(t, 15.0, ParseNumber("0o17"))
	assert.Equal(t, 255.0, ParseNumber("0XFF"))
	assert.Equal(t, 1.2089258196146292e+24, ParseNumber("0xffffffffffffffffffff"))
	for _, s := range []string{"0x1p-2", "0X1P3", "0x", "0x-1", "-0x10", "+0x1p1", "0b12"} {
		assert.True(t, math.IsNaN(ParseNumber(s)), "expected NaN for %q", s)
	}
	assert.Equal(t, math.Inf(1), ParseNumber("Infinity"))
	assert.Equal(t, 0.0, ParseNumber("   "))
}

func TestToType(t *testing.T) {
	t.Parallel()

	got, err := ToType(value.NumberValue(7), value.TypeOf(value.String, value.ImageURL))
	require.NoError(t, err)
	assert.Equal(t, value.StringValue("7"), got)

	got, err = ToType(value.StringValue("x"), value.AnyType())
	require.NoError(t, err)
	assert.Equal(t, value.StringValue("x"), got)

	_, err = ToType(value.NumberValue(7), value.TypeOf(value.ImageURL))
	require.Error(t, err)

	got, err = ToType(value.Value{}, value.TypeOf(value.Number))
	require.NoError(t, err)
	assert.True(t, got.IsNull())
}
