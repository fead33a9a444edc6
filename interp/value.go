package interp

import (
	"strconv"
	"strings"

	"github.com/pontaoski/gox/types"
)

// Value is a tagged union of the runtime values a program can hold. Int, char
// and bool share the integer slot.
type Value struct {
	Type types.DataType
	i    int32
	f    float64
	s    string
}

var Void = Value{Type: types.Void}

func IntValue(v int32) Value     { return Value{Type: types.Int, i: v} }
func FloatValue(v float64) Value { return Value{Type: types.Float, f: v} }
func CharValue(v byte) Value     { return Value{Type: types.Char, i: int32(v)} }
func StringValue(v string) Value { return Value{Type: types.String, s: v} }

func BoolValue(v bool) Value {
	if v {
		return Value{Type: types.Bool, i: 1}
	}
	return Value{Type: types.Bool}
}

// Int returns the value as a 32-bit integer. Floats truncate toward zero.
func (v Value) Int() int32 {
	if v.Type == types.Float {
		return int32(v.f)
	}
	return v.i
}

func (v Value) Float() float64 {
	if v.Type == types.Float {
		return v.f
	}
	return float64(v.i)
}

func (v Value) Bool() bool {
	if v.Type == types.Float {
		return v.f != 0
	}
	return v.i != 0
}

func (v Value) Char() byte {
	return byte(v.Int())
}

func (v Value) Str() string {
	return v.s
}

// String formats v the way print shows it.
func (v Value) String() string {
	switch v.Type {
	case types.Int:
		return strconv.FormatInt(int64(v.i), 10)
	case types.Float:
		s := strconv.FormatFloat(v.f, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eEnN") {
			s += ".0"
		}
		return s
	case types.Bool:
		return strconv.FormatBool(v.i != 0)
	case types.Char:
		return string(rune(byte(v.i)))
	case types.String:
		return v.s
	}
	return ""
}

// Convert returns v as a value of type to. Conversions are defined between
// all members of the promotion lattice; strings only convert to themselves.
func Convert(v Value, to types.DataType) (Value, bool) {
	if v.Type == to {
		return v, true
	}
	if !to.InLattice() {
		return v, to == types.Void || to == types.Unknown || to == types.Error
	}
	if !v.Type.InLattice() {
		return v, false
	}

	switch to {
	case types.Int:
		return IntValue(v.Int()), true
	case types.Float:
		return FloatValue(v.Float()), true
	case types.Char:
		return CharValue(v.Char()), true
	case types.Bool:
		return BoolValue(v.Bool()), true
	}
	return v, false
}

// Zero is the value a declaration without an initializer starts with.
func Zero(t types.DataType) Value {
	switch t {
	case types.Int:
		return IntValue(0)
	case types.Float:
		return FloatValue(0)
	case types.Bool:
		return BoolValue(false)
	case types.Char:
		return CharValue(0)
	case types.String:
		return StringValue("")
	}
	return Void
}
