// Package interp executes checked programs by walking the tree.
//
// Top-level declarations run in order against the global frame. Afterwards a
// zero-parameter function named main, if there is one, is called and its
// value becomes the result of the run.
package interp

import (
	"fmt"
	"io"

	"github.com/coreos/pkg/capnslog"
	"github.com/pontaoski/gox/ast"
	"github.com/pontaoski/gox/symtab"
	"github.com/pontaoski/gox/types"
)

var plog = capnslog.NewPackageLogger("github.com/pontaoski/gox", "interp")

// DefaultMaxDepth bounds the call stack.
const DefaultMaxDepth = 4096

type completion int

const (
	normal completion = iota
	returning
	breaking
	continuing
)

func (c completion) String() string {
	switch c {
	case normal:
		return "normal"
	case returning:
		return "return"
	case breaking:
		return "break"
	case continuing:
		return "continue"
	}
	return fmt.Sprintf("completion(%d)", int(c))
}

type Option func(*Interpreter)

// WithOutput sends print output to w. Without it output is discarded.
func WithOutput(w io.Writer) Option {
	return func(in *Interpreter) {
		in.out = w
	}
}

// WithExtern binds the `import func` declaration called name to fn,
// replacing any builtin of that name.
func WithExtern(name string, fn HostFunc) Option {
	return func(in *Interpreter) {
		in.hosts[name] = fn
	}
}

func WithMaxDepth(n int) Option {
	return func(in *Interpreter) {
		in.maxDepth = n
	}
}

type Interpreter struct {
	mem      *Memory
	env      *env
	funcs    *symtab.Table
	hosts    map[string]HostFunc
	out      io.Writer
	calls    int
	maxDepth int
}

func New(opts ...Option) *Interpreter {
	in := &Interpreter{
		mem:      NewMemory(),
		env:      newEnv(),
		funcs:    symtab.New(),
		hosts:    Builtins(),
		out:      io.Discard,
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

func (in *Interpreter) Memory() *Memory {
	return in.mem
}

// Global returns the current value of a global variable or constant.
func (in *Interpreter) Global(name string) (Value, bool) {
	b, ok := in.env.frames[0].names[name]
	if !ok {
		return Void, false
	}
	return b.val, true
}

// Run executes prog and then its main function. The result is Void when
// there is no main or main returns nothing. A fatal error stops the run and
// is returned wrapped with a stack trace; see AsRuntimeError.
func (in *Interpreter) Run(prog *ast.Program) (result Value, err error) {
	defer recoverRuntime(&err)

	in.topLevel(prog)

	sym, ok := in.funcs.LookupLocal(symtab.Global, "main")
	if !ok {
		plog.Debugf("no main function")
		return Void, nil
	}
	if fn, ok := sym.Node.(*ast.FuncDecl); ok && len(fn.Params) == 0 {
		return in.call(fn.Position(), "main", nil), nil
	}
	return Void, nil
}

// Eval executes the top level of prog against the existing globals without
// calling main. It is what the REPL feeds each input through.
func (in *Interpreter) Eval(prog *ast.Program) (err error) {
	defer recoverRuntime(&err)
	in.topLevel(prog)
	return nil
}

func (in *Interpreter) topLevel(prog *ast.Program) {
	for _, s := range prog.Statements {
		switch c, _ := in.exec(s); c {
		case normal:
		case returning:
			plog.Debugf("return at top level on line %d ends the program", s.Position())
			return
		default:
			fail(s.Position(), "%s outside of a loop", c)
		}
	}
}

func (in *Interpreter) exec(s ast.Statement) (completion, Value) {
	switch v := s.(type) {
	case *ast.VarDecl:
		val := Zero(v.DeclType)
		if v.Init != nil {
			val = in.convert(v.Position(), in.eval(v.Init), v.DeclType)
		}
		in.env.declare(v.Name, v.DeclType, val)
	case *ast.ConstDecl:
		val := in.eval(v.Value)
		in.env.declare(v.Name, val.Type, val)
	case *ast.FuncDecl:
		in.register(v, &symtab.Symbol{Name: v.Name, Kind: symtab.Func, Type: v.Returns, Params: v.Params})
	case *ast.ExternDecl:
		in.register(v, &symtab.Symbol{Name: v.Name, Kind: symtab.Extern, Type: v.Returns, Params: v.Params})
	case *ast.Assignment:
		in.assign(v)
	case *ast.Print:
		fmt.Fprintln(in.out, in.eval(v.Value))
	case *ast.If:
		if in.eval(v.Cond).Bool() {
			return in.block(v.Then)
		}
		if v.Else != nil {
			return in.block(v.Else)
		}
	case *ast.While:
		for in.eval(v.Cond).Bool() {
			switch c, val := in.block(v.Body); c {
			case breaking:
				return normal, Void
			case returning:
				return c, val
			}
		}
	case *ast.Return:
		if v.Value == nil {
			return returning, Void
		}
		return returning, in.eval(v.Value)
	case *ast.Break:
		return breaking, Void
	case *ast.Continue:
		return continuing, Void
	case *ast.Block:
		return in.block(v)
	case *ast.ExprStmt:
		in.eval(v.Expr)
	default:
		panic(fmt.Sprintf("unhandled statement %T", s))
	}
	return normal, Void
}

func (in *Interpreter) statements(stmts []ast.Statement) (completion, Value) {
	for _, s := range stmts {
		if c, val := in.exec(s); c != normal {
			return c, val
		}
	}
	return normal, Void
}

// block runs b in its own frame.
func (in *Interpreter) block(b *ast.Block) (completion, Value) {
	in.env.push(false)
	defer in.env.pop()
	return in.statements(b.Statements)
}

func (in *Interpreter) register(n ast.Node, sym *symtab.Symbol) {
	sym.Line = n.Position()
	sym.Node = n
	if err := in.funcs.Add(symtab.Global, sym); err != nil {
		plog.Debugf("keeping first declaration: %s", err)
	}
}

func (in *Interpreter) convert(line int, v Value, to types.DataType) Value {
	out, ok := Convert(v, to)
	if !ok {
		fail(line, "cannot convert %s to %s", v.Type, to)
	}
	return out
}

func (in *Interpreter) assign(a *ast.Assignment) {
	val := in.eval(a.Value)
	line := a.Position()

	switch target := a.Target.(type) {
	case *ast.Ident:
		b := in.env.lookup(target.Name)
		if b == nil {
			fail(line, "assignment to undefined variable '%s'", target.Name)
		}
		b.val = in.convert(line, val, b.typ)
	case *ast.MemoryRead:
		in.store(line, in.eval(target.Addr), val)
	case *ast.Deref:
		in.store(line, in.eval(target.Operand), val)
	default:
		fail(line, "cannot assign to %s", ast.ExprString(a.Target))
	}
}

func (in *Interpreter) address(line int, addr Value) int32 {
	if addr.Type != types.Int {
		fail(line, "memory address must be int, got %s", addr.Type)
	}
	return addr.Int()
}

func (in *Interpreter) store(line int, addr Value, val Value) {
	if !val.Type.InLattice() {
		fail(line, "cannot store a %s value in memory", val.Type)
	}
	if err := in.mem.StoreWord(in.address(line, addr), val.Int()); err != nil {
		fail(line, "%s", err)
	}
}

func (in *Interpreter) load(line int, addr Value) Value {
	w, err := in.mem.LoadWord(in.address(line, addr))
	if err != nil {
		fail(line, "%s", err)
	}
	return IntValue(w)
}

func (in *Interpreter) eval(e ast.Expression) Value {
	line := e.Position()

	switch v := e.(type) {
	case *ast.IntLiteral:
		return IntValue(v.Value)
	case *ast.FloatLiteral:
		return FloatValue(v.Value)
	case *ast.BoolLiteral:
		return BoolValue(v.Value)
	case *ast.StringLiteral:
		return StringValue(v.Value)
	case *ast.CharLiteral:
		return CharValue(v.Value)
	case *ast.Binary:
		l := in.eval(v.Left)
		switch {
		case v.Op == "&&" && !l.Bool():
			return BoolValue(false)
		case v.Op == "||" && l.Bool():
			return BoolValue(true)
		}
		res, err := Binary(v.Op, l, in.eval(v.Right))
		if err != nil {
			fail(line, "%s", err)
		}
		return res
	case *ast.Unary:
		operand := in.eval(v.Operand)
		if v.Op == "^" {
			addr, err := in.mem.Grow(in.address(line, operand))
			if err != nil {
				fail(line, "%s", err)
			}
			return IntValue(addr)
		}
		res, err := Unary(v.Op, operand)
		if err != nil {
			fail(line, "%s", err)
		}
		return res
	case *ast.Ident:
		b := in.env.lookup(v.Name)
		if b == nil {
			fail(line, "undefined variable '%s'", v.Name)
		}
		return b.val
	case *ast.Call:
		args := make([]Value, len(v.Args))
		for i, arg := range v.Args {
			args[i] = in.eval(arg)
		}
		return in.call(line, v.Name, args)
	case *ast.Cast:
		return in.convert(line, in.eval(v.Expr), v.Target)
	case *ast.MemoryRead:
		return in.load(line, in.eval(v.Addr))
	case *ast.Deref:
		return in.load(line, in.eval(v.Operand))
	}

	panic(fmt.Sprintf("unhandled expression %T", e))
}

func (in *Interpreter) call(line int, name string, args []Value) Value {
	sym, ok := in.funcs.LookupLocal(symtab.Global, name)
	if !ok {
		fail(line, "call to undefined function '%s'", name)
	}
	if len(args) != len(sym.Params) {
		fail(line, "function '%s' expects %d arguments, got %d", name, len(sym.Params), len(args))
	}
	for i, p := range sym.Params {
		args[i] = in.convert(line, args[i], p.Type)
	}

	if in.calls >= in.maxDepth {
		fail(line, "call stack exhausted calling '%s' (depth %d)", name, in.calls)
	}
	in.calls++
	defer func() { in.calls-- }()
	plog.Tracef("call %s%v at line %d", name, args, line)

	switch fn := sym.Node.(type) {
	case *ast.ExternDecl:
		host, ok := in.hosts[name]
		if !ok {
			fail(line, "no host binding for extern function '%s'", name)
		}
		res, err := host(&Host{Mem: in.mem, Out: in.out}, args)
		if err != nil {
			fail(line, "%s: %s", name, err)
		}
		if fn.Returns == types.Void {
			return Void
		}
		return in.convert(line, res, fn.Returns)
	case *ast.FuncDecl:
		return in.invoke(fn, args)
	default:
		panic(fmt.Sprintf("unhandled callable %T", sym.Node))
	}
}

func (in *Interpreter) invoke(fn *ast.FuncDecl, args []Value) Value {
	in.env.push(true)
	defer in.env.pop()

	for i, p := range fn.Params {
		in.env.declare(p.Name, p.Type, args[i])
	}

	c, val := in.statements(fn.Body.Statements)
	switch c {
	case returning:
		if fn.Returns == types.Void {
			return Void
		}
		return in.convert(fn.Position(), val, fn.Returns)
	case breaking, continuing:
		fail(fn.Position(), "%s outside of a loop in '%s'", c, fn.Name)
	}
	if fn.Returns != types.Void {
		fail(fn.Position(), "function '%s' ended without returning a %s", fn.Name, fn.Returns)
	}
	return Void
}
