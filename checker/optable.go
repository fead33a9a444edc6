package checker

import "github.com/pontaoski/gox/types"

type binKey struct {
	left  types.DataType
	op    string
	right types.DataType
}

type unaryKey struct {
	op      string
	operand types.DataType
}

var binOps = map[binKey]types.DataType{}

var unaryOps = map[unaryKey]types.DataType{
	{"+", types.Int}:   types.Int,
	{"-", types.Int}:   types.Int,
	{"+", types.Float}: types.Float,
	{"-", types.Float}: types.Float,
	{"!", types.Bool}:  types.Bool,
	{"^", types.Int}:   types.Int,
}

func addBin(result types.DataType, ops []string, pairs ...[2]types.DataType) {
	for _, op := range ops {
		for _, p := range pairs {
			binOps[binKey{p[0], op, p[1]}] = result
		}
	}
}

func init() {
	ii := [2]types.DataType{types.Int, types.Int}
	ff := [2]types.DataType{types.Float, types.Float}
	ifl := [2]types.DataType{types.Int, types.Float}
	fi := [2]types.DataType{types.Float, types.Int}
	cc := [2]types.DataType{types.Char, types.Char}
	bb := [2]types.DataType{types.Bool, types.Bool}
	ss := [2]types.DataType{types.String, types.String}

	arith := []string{"+", "-", "*", "/"}
	addBin(types.Int, arith, ii)
	addBin(types.Float, arith, ff, ifl, fi)
	addBin(types.Int, []string{"%"}, ii)
	addBin(types.String, []string{"+"}, ss)

	addBin(types.Bool, []string{"<", "<=", ">", ">="}, ii, ff, ifl, fi, cc)
	addBin(types.Bool, []string{"==", "!="}, ii, ff, ifl, fi, cc, bb, ss)
	addBin(types.Bool, []string{"&&", "||"}, bb)
}

// BinaryResult looks up the result type of left op right. Mixed int and
// float operands promote to float.
func BinaryResult(op string, left, right types.DataType) (types.DataType, bool) {
	t, ok := binOps[binKey{left, op, right}]
	return t, ok
}

func UnaryResult(op string, operand types.DataType) (types.DataType, bool) {
	t, ok := unaryOps[unaryKey{op, operand}]
	return t, ok
}
