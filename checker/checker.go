package checker

import (
	"fmt"

	"github.com/coreos/pkg/capnslog"
	"github.com/pontaoski/gox/ast"
	"github.com/pontaoski/gox/errors"
	"github.com/pontaoski/gox/symtab"
	"github.com/pontaoski/gox/types"
)

var plog = capnslog.NewPackageLogger("github.com/pontaoski/gox", "checker")

type Checker struct {
	tab     *symtab.Table
	errs    errors.List
	returns []types.DataType
	loops   int
}

// Check type-checks prog in a fresh global scope, annotating every expression
// with its resolved type. All problems are collected; the pass always covers
// the whole program.
func Check(prog *ast.Program) errors.List {
	_, errs := CheckWithTable(prog)
	return errs
}

// CheckWithTable is Check that also returns the scope tree it built.
func CheckWithTable(prog *ast.Program) (*symtab.Table, errors.List) {
	c := &Checker{tab: symtab.New()}
	for _, s := range prog.Statements {
		c.stmt(s, symtab.Global)
	}
	plog.Debugf("checked %d statements, %d scopes, %d diagnostics", len(prog.Statements), c.tab.Len(), len(c.errs))
	return c.tab, c.errs
}

func (c *Checker) errorf(n ast.Node, format string, args ...interface{}) {
	c.errs.Add(errors.Semantic, n.Position(), format, args...)
}

func (c *Checker) declare(n ast.Node, h symtab.Handle, sym *symtab.Symbol) {
	sym.Line = n.Position()
	sym.Node = n
	if err := c.tab.Add(h, sym); err != nil {
		c.errorf(n, "%s", err)
	}
}

func (c *Checker) block(b *ast.Block, parent symtab.Handle, name string) {
	h := c.tab.Open(parent, name)
	for _, s := range b.Statements {
		c.stmt(s, h)
	}
}

func (c *Checker) condition(what string, e ast.Expression, h symtab.Handle) {
	t := c.expr(e, h)
	if t != types.Bool && t != types.Error {
		c.errorf(e, "%s condition must be bool, got %s", what, t)
	}
}

func (c *Checker) stmt(s ast.Statement, h symtab.Handle) {
	switch v := s.(type) {
	case *ast.VarDecl:
		if v.DeclType == types.Void {
			c.errorf(v, "variable '%s' cannot have type void", v.Name)
		}
		if v.Init != nil {
			t := c.expr(v.Init, h)
			if t != types.Error && !types.Assignable(v.DeclType, t) {
				c.errorf(v, "cannot assign %s to variable '%s' of type %s", t, v.Name, v.DeclType)
			}
		}
		c.declare(v, h, &symtab.Symbol{Name: v.Name, Kind: symtab.Var, Type: v.DeclType})
	case *ast.ConstDecl:
		t := c.expr(v.Value, h)
		if t == types.Void {
			c.errorf(v, "constant '%s' cannot have type void", v.Name)
		}
		c.declare(v, h, &symtab.Symbol{Name: v.Name, Kind: symtab.Const, Type: t})
	case *ast.FuncDecl:
		c.declare(v, h, &symtab.Symbol{Name: v.Name, Kind: symtab.Func, Type: v.Returns, Params: v.Params})

		fh := c.tab.Open(h, "func_"+v.Name)
		for _, p := range v.Params {
			if p.Type == types.Void {
				c.errorf(v, "parameter '%s' of '%s' cannot have type void", p.Name, v.Name)
			}
			c.declare(v, fh, &symtab.Symbol{Name: p.Name, Kind: symtab.Param, Type: p.Type})
		}

		outerLoops := c.loops
		c.loops = 0
		c.returns = append(c.returns, v.Returns)
		for _, st := range v.Body.Statements {
			c.stmt(st, fh)
		}
		c.returns = c.returns[:len(c.returns)-1]
		c.loops = outerLoops
	case *ast.ExternDecl:
		c.declare(v, h, &symtab.Symbol{Name: v.Name, Kind: symtab.Extern, Type: v.Returns, Params: v.Params})
	case *ast.Assignment:
		c.assignment(v, h)
	case *ast.Print:
		if t := c.expr(v.Value, h); t == types.Void {
			c.errorf(v, "cannot print a void value")
		}
	case *ast.If:
		c.condition("if", v.Cond, h)
		c.block(v.Then, h, "if_then")
		if v.Else != nil {
			c.block(v.Else, h, "if_else")
		}
	case *ast.While:
		c.condition("while", v.Cond, h)
		c.loops++
		c.block(v.Body, h, "while")
		c.loops--
	case *ast.Return:
		t := types.Void
		if v.Value != nil {
			t = c.expr(v.Value, h)
		}
		if len(c.returns) == 0 {
			c.errorf(v, "return outside of a function")
			return
		}
		want := c.returns[len(c.returns)-1]
		if t != types.Error && !types.Assignable(want, t) {
			c.errorf(v, "return type mismatch: expected %s, got %s", want, t)
		}
	case *ast.Break:
		if c.loops == 0 {
			c.errorf(v, "break outside of a loop")
		}
	case *ast.Continue:
		if c.loops == 0 {
			c.errorf(v, "continue outside of a loop")
		}
	case *ast.Block:
		c.block(v, h, "block")
	case *ast.ExprStmt:
		c.expr(v.Expr, h)
	default:
		panic(fmt.Sprintf("unhandled statement %T", s))
	}
}

func (c *Checker) assignment(v *ast.Assignment, h symtab.Handle) {
	vt := c.expr(v.Value, h)

	switch target := v.Target.(type) {
	case *ast.Ident:
		sym, err := c.tab.Lookup(h, target.Name)
		if err != nil {
			c.errorf(v, "cannot assign to undeclared name '%s'", target.Name)
			target.SetType(types.Error)
			return
		}
		target.SetType(sym.Type)
		switch {
		case sym.Kind == symtab.Const:
			c.errorf(v, "cannot assign to constant '%s'", target.Name)
		case sym.IsCallable():
			c.errorf(v, "cannot assign to function '%s'", target.Name)
		case vt != types.Error && sym.Type != types.Error && !types.Assignable(sym.Type, vt):
			c.errorf(v, "cannot assign %s to variable '%s' of type %s", vt, target.Name, sym.Type)
		}
	case *ast.MemoryRead, *ast.Deref:
		c.expr(target, h)
		if vt != types.Error && !vt.InLattice() {
			c.errorf(v, "cannot store a %s value in memory", vt)
		}
	default:
		c.errorf(v, "cannot assign to %s", ast.ExprString(v.Target))
	}
}

func (c *Checker) expr(e ast.Expression, h symtab.Handle) types.DataType {
	t := c.resolve(e, h)
	e.SetType(t)
	return t
}

func (c *Checker) address(e ast.Expression, h symtab.Handle) {
	if t := c.expr(e, h); t != types.Int && t != types.Error {
		c.errorf(e, "memory address must be int, got %s", t)
	}
}

func (c *Checker) resolve(e ast.Expression, h symtab.Handle) types.DataType {
	switch v := e.(type) {
	case *ast.IntLiteral:
		return types.Int
	case *ast.FloatLiteral:
		return types.Float
	case *ast.BoolLiteral:
		return types.Bool
	case *ast.StringLiteral:
		return types.String
	case *ast.CharLiteral:
		return types.Char
	case *ast.Binary:
		lt := c.expr(v.Left, h)
		rt := c.expr(v.Right, h)
		if lt == types.Error || rt == types.Error {
			return types.Error
		}
		t, ok := BinaryResult(v.Op, lt, rt)
		if !ok {
			c.errorf(v, "invalid operation: %s %s %s", lt, v.Op, rt)
			return types.Error
		}
		return t
	case *ast.Unary:
		ot := c.expr(v.Operand, h)
		if ot == types.Error {
			return types.Error
		}
		t, ok := UnaryResult(v.Op, ot)
		if !ok {
			c.errorf(v, "invalid operation: %s%s", v.Op, ot)
			return types.Error
		}
		return t
	case *ast.Ident:
		sym, err := c.tab.Lookup(h, v.Name)
		if err != nil {
			c.errorf(v, "%s", err)
			return types.Error
		}
		if sym.IsCallable() {
			c.errorf(v, "function '%s' used as a value", v.Name)
			return types.Error
		}
		return sym.Type
	case *ast.Call:
		return c.call(v, h)
	case *ast.Cast:
		ot := c.expr(v.Expr, h)
		if !v.Target.InLattice() {
			c.errorf(v, "cannot cast to %s", v.Target)
			return types.Error
		}
		if ot != types.Error && !ot.InLattice() {
			c.errorf(v, "cannot cast %s to %s", ot, v.Target)
		}
		return v.Target
	case *ast.MemoryRead:
		c.address(v.Addr, h)
		return types.Int
	case *ast.Deref:
		c.address(v.Operand, h)
		return types.Int
	}

	panic(fmt.Sprintf("unhandled expression %T", e))
}

func (c *Checker) call(v *ast.Call, h symtab.Handle) types.DataType {
	argTypes := make([]types.DataType, len(v.Args))
	for i, arg := range v.Args {
		argTypes[i] = c.expr(arg, h)
	}

	sym, err := c.tab.Lookup(h, v.Name)
	if err != nil {
		c.errorf(v, "undefined function '%s'", v.Name)
		return types.Error
	}
	if !sym.IsCallable() {
		c.errorf(v, "'%s' is not a function", v.Name)
		return types.Error
	}
	if len(v.Args) != len(sym.Params) {
		c.errorf(v, "function '%s' expects %d arguments, got %d", v.Name, len(sym.Params), len(v.Args))
		return sym.Type
	}
	for i, p := range sym.Params {
		if argTypes[i] != types.Error && !types.Assignable(p.Type, argTypes[i]) {
			c.errorf(v.Args[i], "argument %d of '%s': expected %s, got %s", i+1, v.Name, p.Type, argTypes[i])
		}
	}
	return sym.Type
}
