package interp

import (
	"fmt"

	"github.com/pontaoski/gox/types"
)

type DivisionByZero struct {
	Op string
}

func (e DivisionByZero) Error() string {
	if e.Op == "%" {
		return "integer modulo by zero"
	}
	return "division by zero"
}

type InvalidOperation struct {
	Op          string
	Left, Right types.DataType
}

func (e InvalidOperation) Error() string {
	if e.Left == types.Unknown {
		return fmt.Sprintf("invalid operation: %s%s", e.Op, e.Right)
	}
	return fmt.Sprintf("invalid operation: %s %s %s", e.Left, e.Op, e.Right)
}

// Binary applies op to two evaluated operands. The operand kinds pick the
// arithmetic: any string operand means string operations, any float operand
// means float operations, anything else is 32-bit integer arithmetic with
// truncating division.
func Binary(op string, l, r Value) (Value, error) {
	bad := InvalidOperation{Op: op, Left: l.Type, Right: r.Type}

	switch {
	case l.Type == types.String || r.Type == types.String:
		if l.Type != r.Type {
			return Void, bad
		}
		switch op {
		case "+":
			return StringValue(l.s + r.s), nil
		case "==":
			return BoolValue(l.s == r.s), nil
		case "!=":
			return BoolValue(l.s != r.s), nil
		}
		return Void, bad
	case !l.Type.InLattice() || !r.Type.InLattice():
		return Void, bad
	}

	switch op {
	case "&&":
		return BoolValue(l.Bool() && r.Bool()), nil
	case "||":
		return BoolValue(l.Bool() || r.Bool()), nil
	}

	if l.Type == types.Float || r.Type == types.Float {
		return floatBinary(op, l.Float(), r.Float(), bad)
	}
	return intBinary(op, l.Int(), r.Int(), bad)
}

func floatBinary(op string, a, b float64, bad error) (Value, error) {
	switch op {
	case "+":
		return FloatValue(a + b), nil
	case "-":
		return FloatValue(a - b), nil
	case "*":
		return FloatValue(a * b), nil
	case "/":
		if b == 0 {
			return Void, DivisionByZero{Op: op}
		}
		return FloatValue(a / b), nil
	}
	return compare(op, a < b, a == b, bad)
}

func intBinary(op string, a, b int32, bad error) (Value, error) {
	switch op {
	case "+":
		return IntValue(a + b), nil
	case "-":
		return IntValue(a - b), nil
	case "*":
		return IntValue(a * b), nil
	case "/", "%":
		if b == 0 {
			return Void, DivisionByZero{Op: op}
		}
		if op == "/" {
			return IntValue(a / b), nil
		}
		return IntValue(a % b), nil
	}
	return compare(op, a < b, a == b, bad)
}

func compare(op string, less, equal bool, bad error) (Value, error) {
	switch op {
	case "<":
		return BoolValue(less), nil
	case "<=":
		return BoolValue(less || equal), nil
	case ">":
		return BoolValue(!less && !equal), nil
	case ">=":
		return BoolValue(!less), nil
	case "==":
		return BoolValue(equal), nil
	case "!=":
		return BoolValue(!equal), nil
	}
	return Void, bad
}

// Unary applies +, - or ! to an evaluated operand. The memory operator ^ needs
// the interpreter and is handled there.
func Unary(op string, v Value) (Value, error) {
	switch {
	case op == "!" && v.Type.InLattice():
		return BoolValue(!v.Bool()), nil
	case op == "+" && v.Type.IsNumeric():
		return v, nil
	case op == "-" && v.Type == types.Float:
		return FloatValue(-v.f), nil
	case op == "-" && v.Type.IsNumeric():
		return IntValue(-v.Int()), nil
	}
	return Void, InvalidOperation{Op: op, Right: v.Type}
}
