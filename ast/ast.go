package ast

import "github.com/pontaoski/gox/types"

// Node is implemented by every syntax tree variant. The set is closed: the
// marker methods are only satisfied by the types in this file.
type Node interface {
	is_Node()
	Position() int
}

type Expression interface {
	Node
	is_Expression()
	Type() types.DataType
	SetType(types.DataType)
}

type Statement interface {
	Node
	is_Statement()
}

type Pos struct {
	Line int
}

func (p Pos) Position() int { return p.Line }
func (p Pos) is_Node()      {}

// Typed carries the type tag written by the checker.
type Typed struct {
	Pos
	DType types.DataType
}

func (t *Typed) Type() types.DataType     { return t.DType }
func (t *Typed) SetType(d types.DataType) { t.DType = d }
func (t *Typed) is_Expression()           {}

// At returns an untyped tag for an expression found on line.
func At(line int) Typed {
	return Typed{Pos: Pos{Line: line}}
}

type IntLiteral struct {
	Typed
	Value int32
}

type FloatLiteral struct {
	Typed
	Value float64
}

type BoolLiteral struct {
	Typed
	Value bool
}

type StringLiteral struct {
	Typed
	Value string
}

type CharLiteral struct {
	Typed
	Value byte
}

type Binary struct {
	Typed
	Op    string
	Left  Expression
	Right Expression
}

type Unary struct {
	Typed
	Op      string
	Operand Expression
}

type Ident struct {
	Typed
	Name string
}

type Call struct {
	Typed
	Name string
	Args []Expression
}

type Cast struct {
	Typed
	Target types.DataType
	Expr   Expression
}

// MemoryRead is `(addr): a 4-byte read at a computed address.
type MemoryRead struct {
	Typed
	Addr Expression
}

// Deref is `operand: a 4-byte read at the address an operand evaluates to.
type Deref struct {
	Typed
	Operand Expression
}

type Param struct {
	Name string
	Type types.DataType
}

type VarDecl struct {
	Pos
	Name     string
	DeclType types.DataType
	Init     Expression
}

type ConstDecl struct {
	Pos
	Name  string
	Value Expression
}

type FuncDecl struct {
	Pos
	Name    string
	Params  []Param
	Returns types.DataType
	Body    *Block
}

// ExternDecl is an `import func` signature. The body lives outside the program.
type ExternDecl struct {
	Pos
	Name    string
	Params  []Param
	Returns types.DataType
}

// Assignment targets an *Ident, a *MemoryRead or a *Deref.
type Assignment struct {
	Pos
	Target Expression
	Value  Expression
}

type Print struct {
	Pos
	Value Expression
}

type If struct {
	Pos
	Cond Expression
	Then *Block
	Else *Block
}

type While struct {
	Pos
	Cond Expression
	Body *Block
}

type Return struct {
	Pos
	Value Expression
}

type Break struct {
	Pos
}

type Continue struct {
	Pos
}

type Block struct {
	Pos
	Statements []Statement
}

type ExprStmt struct {
	Pos
	Expr Expression
}

type Program struct {
	Pos
	Statements []Statement
}

func (v *VarDecl) is_Statement()    {}
func (v *ConstDecl) is_Statement()  {}
func (v *FuncDecl) is_Statement()   {}
func (v *ExternDecl) is_Statement() {}
func (v *Assignment) is_Statement() {}
func (v *Print) is_Statement()      {}
func (v *If) is_Statement()         {}
func (v *While) is_Statement()      {}
func (v *Return) is_Statement()     {}
func (v *Break) is_Statement()      {}
func (v *Continue) is_Statement()   {}
func (v *Block) is_Statement()      {}
func (v *ExprStmt) is_Statement()   {}
