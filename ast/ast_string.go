package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// ExprString renders an expression with every binary and unary operation
// fully parenthesised, so grouping is visible.
func ExprString(e Expression) string {
	switch v := e.(type) {
	case *IntLiteral:
		return strconv.FormatInt(int64(v.Value), 10)
	case *FloatLiteral:
		s := strconv.FormatFloat(v.Value, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eEn") {
			s += ".0"
		}
		return s
	case *BoolLiteral:
		return strconv.FormatBool(v.Value)
	case *StringLiteral:
		return strconv.Quote(v.Value)
	case *CharLiteral:
		return strconv.QuoteRuneToASCII(rune(v.Value))
	case *Binary:
		return fmt.Sprintf("(%s %s %s)", ExprString(v.Left), v.Op, ExprString(v.Right))
	case *Unary:
		return fmt.Sprintf("(%s%s)", v.Op, ExprString(v.Operand))
	case *Ident:
		return v.Name
	case *Call:
		args := make([]string, 0, len(v.Args))
		for _, arg := range v.Args {
			args = append(args, ExprString(arg))
		}
		return fmt.Sprintf("%s(%s)", v.Name, strings.Join(args, ", "))
	case *Cast:
		return fmt.Sprintf("%s(%s)", v.Target, ExprString(v.Expr))
	case *MemoryRead:
		return fmt.Sprintf("`(%s)", ExprString(v.Addr))
	case *Deref:
		return "`" + ExprString(v.Operand)
	case nil:
		return "<nil>"
	}

	panic(fmt.Sprintf("unhandled expression %T", e))
}

func paramsString(params []Param) string {
	var args []string
	for _, p := range params {
		args = append(args, p.Name+" "+p.Type.String())
	}
	return strings.Join(args, ", ")
}

func (f *FuncDecl) String() string {
	return fmt.Sprintf("func %s(%s) %s", f.Name, paramsString(f.Params), f.Returns)
}

func (f *ExternDecl) String() string {
	return fmt.Sprintf("import func %s(%s) %s;", f.Name, paramsString(f.Params), f.Returns)
}
