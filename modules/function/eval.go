package function

import (
	"fmt"
	"math"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/promptgrid/internal/value"
	"github.com/zclconf/go-cty/cty"
	ctyfunction "github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// functions are the built-ins a function body may call.
var functions = map[string]ctyfunction.Function{
	"abs":       stdlib.AbsoluteFunc,
	"ceil":      stdlib.CeilFunc,
	"chomp":     stdlib.ChompFunc,
	"floor":     stdlib.FloorFunc,
	"format":    stdlib.FormatFunc,
	"join":      stdlib.JoinFunc,
	"length":    stdlib.LengthFunc,
	"log":       stdlib.LogFunc,
	"lower":     stdlib.LowerFunc,
	"max":       stdlib.MaxFunc,
	"min":       stdlib.MinFunc,
	"parseint":  stdlib.ParseIntFunc,
	"pow":       stdlib.PowFunc,
	"replace":   stdlib.ReplaceFunc,
	"signum":    stdlib.SignumFunc,
	"split":     stdlib.SplitFunc,
	"strlen":    stdlib.StrlenFunc,
	"substr":    stdlib.SubstrFunc,
	"trimspace": stdlib.TrimSpaceFunc,
	"upper":     stdlib.UpperFunc,
}

// Call evaluates the body with args bound to the given values.
func (d *Definition) Call(args value.Record) (value.Value, error) {
	vars := make(map[string]cty.Value, len(d.Args))
	for _, name := range d.Args {
		vars[name] = toCty(args[name])
	}
	out, diags := d.Body.Value(&hcl.EvalContext{Variables: vars, Functions: functions})
	if diags.HasErrors() {
		return value.Value{}, fmt.Errorf("function %s failed: %w", d.Name, diags)
	}
	return fromCty(out)
}

func toCty(v value.Value) cty.Value {
	switch v.Tag {
	case value.Number:
		if math.IsNaN(v.Num) {
			return cty.NullVal(cty.Number)
		}
		return cty.NumberFloatVal(v.Num)
	case value.String, value.ImageURL:
		return cty.StringVal(v.Str)
	default:
		return cty.NullVal(cty.DynamicPseudoType)
	}
}

func fromCty(v cty.Value) (value.Value, error) {
	if v.IsNull() {
		return value.Value{}, nil
	}
	if !v.IsWhollyKnown() {
		return value.Value{}, fmt.Errorf("function result is unknown")
	}
	switch v.Type() {
	case cty.String:
		return value.StringValue(v.AsString()), nil
	case cty.Number:
		f, _ := v.AsBigFloat().Float64()
		return value.NumberValue(f), nil
	case cty.Bool:
		if v.True() {
			return value.StringValue("true"), nil
		}
		return value.StringValue("false"), nil
	}
	raw, err := ctyjson.Marshal(v, v.Type())
	if err != nil {
		return value.Value{}, fmt.Errorf("encoding function result: %w", err)
	}
	return value.StringValue(string(raw)), nil
}
