package ast

import (
	"encoding/json"
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/pontaoski/gox/types"
)

// Tree is the generic record form of a node: {"type": kind, ...fields}.
type Tree = map[string]interface{}

// Export converts a node and all of its children into generic records that
// any self-describing format can serialise.
func Export(n Node) Tree {
	t := Tree{"type": kindOf(n), "line": n.Position()}
	if e, ok := n.(Expression); ok && e.Type() != types.Unknown {
		t["dtype"] = e.Type().String()
	}

	switch v := n.(type) {
	case *IntLiteral:
		t["value"] = int64(v.Value)
	case *FloatLiteral:
		t["value"] = v.Value
	case *BoolLiteral:
		t["value"] = v.Value
	case *StringLiteral:
		t["value"] = v.Value
	case *CharLiteral:
		t["value"] = string(rune(v.Value))
	case *Binary:
		t["op"] = v.Op
		t["left"] = Export(v.Left)
		t["right"] = Export(v.Right)
	case *Unary:
		t["op"] = v.Op
		t["operand"] = Export(v.Operand)
	case *Ident:
		t["name"] = v.Name
	case *Call:
		t["name"] = v.Name
		t["args"] = exportExprs(v.Args)
	case *Cast:
		t["target"] = v.Target.String()
		t["expr"] = Export(v.Expr)
	case *MemoryRead:
		t["addr"] = Export(v.Addr)
	case *Deref:
		t["operand"] = Export(v.Operand)
	case *VarDecl:
		t["name"] = v.Name
		t["declType"] = v.DeclType.String()
		if v.Init != nil {
			t["init"] = Export(v.Init)
		}
	case *ConstDecl:
		t["name"] = v.Name
		t["value"] = Export(v.Value)
	case *FuncDecl:
		t["name"] = v.Name
		t["params"] = exportParams(v.Params)
		t["returns"] = v.Returns.String()
		t["body"] = Export(v.Body)
	case *ExternDecl:
		t["name"] = v.Name
		t["params"] = exportParams(v.Params)
		t["returns"] = v.Returns.String()
	case *Assignment:
		t["target"] = Export(v.Target)
		t["value"] = Export(v.Value)
	case *Print:
		t["value"] = Export(v.Value)
	case *If:
		t["cond"] = Export(v.Cond)
		t["then"] = Export(v.Then)
		if v.Else != nil {
			t["else"] = Export(v.Else)
		}
	case *While:
		t["cond"] = Export(v.Cond)
		t["body"] = Export(v.Body)
	case *Return:
		if v.Value != nil {
			t["value"] = Export(v.Value)
		}
	case *Break, *Continue:
	case *Block:
		t["statements"] = exportStmts(v.Statements)
	case *ExprStmt:
		t["expr"] = Export(v.Expr)
	case *Program:
		t["statements"] = exportStmts(v.Statements)
	default:
		panic(fmt.Sprintf("unhandled node %T", n))
	}
	return t
}

func kindOf(n Node) string {
	return fmt.Sprintf("%T", n)[len("*ast."):]
}

func exportExprs(es []Expression) []interface{} {
	out := make([]interface{}, 0, len(es))
	for _, e := range es {
		out = append(out, Export(e))
	}
	return out
}

func exportStmts(ss []Statement) []interface{} {
	out := make([]interface{}, 0, len(ss))
	for _, s := range ss {
		out = append(out, Export(s))
	}
	return out
}

func exportParams(ps []Param) []interface{} {
	out := make([]interface{}, 0, len(ps))
	for _, p := range ps {
		out = append(out, Tree{"name": p.Name, "type": p.Type.String()})
	}
	return out
}

// ToJSON exports n and encodes it with indentation.
func ToJSON(n Node) ([]byte, error) {
	return json.MarshalIndent(Export(n), "", "    ")
}

// FromJSON decodes a tree written by ToJSON.
func FromJSON(data []byte) (Node, error) {
	var t Tree
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, err
	}
	return Import(t)
}

type TreeError struct {
	Kind string
	Msg  string
}

func (e TreeError) Error() string {
	if e.Kind == "" {
		return "bad tree: " + e.Msg
	}
	return fmt.Sprintf("bad %s record: %s", e.Kind, e.Msg)
}

// Import rebuilds nodes from records produced by Export, after a trip through
// JSON or YAML. Type tags present in the records are restored.
func Import(t Tree) (n Node, err error) {
	defer func() {
		if r := recover(); r != nil {
			terr, ok := r.(TreeError)
			if !ok {
				panic(r)
			}
			err = terr
		}
	}()
	return importNode(normalize(t).(Tree)), nil
}

// normalize turns the map[interface{}]interface{} values YAML produces into
// string-keyed records.
func normalize(v interface{}) interface{} {
	switch m := v.(type) {
	case map[interface{}]interface{}:
		out := Tree{}
		for k, val := range m {
			out[fmt.Sprint(k)] = normalize(val)
		}
		return out
	case Tree:
		out := Tree{}
		for k, val := range m {
			out[k] = normalize(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(m))
		for i, val := range m {
			out[i] = normalize(val)
		}
		return out
	}
	return v
}

type record struct {
	kind string
	t    Tree
}

func (r record) fail(format string, args ...interface{}) {
	panic(TreeError{Kind: r.kind, Msg: fmt.Sprintf(format, args...)})
}

func (r record) has(key string) bool {
	v, ok := r.t[key]
	return ok && v != nil
}

func (r record) str(key string) string {
	s, ok := r.t[key].(string)
	if !ok {
		r.fail("field %q is not a string", key)
	}
	return s
}

func (r record) integer(key string) int64 {
	switch v := r.t[key].(type) {
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case int64:
		return v
	case uint64:
		return int64(v)
	case float64:
		if v != math.Trunc(v) {
			r.fail("field %q is not an integer", key)
		}
		return int64(v)
	}
	r.fail("field %q is not a number", key)
	return 0
}

func (r record) float(key string) float64 {
	switch v := r.t[key].(type) {
	case float64:
		return v
	case int, int32, int64, uint64:
		return float64(r.integer(key))
	}
	r.fail("field %q is not a number", key)
	return 0
}

func (r record) boolean(key string) bool {
	b, ok := r.t[key].(bool)
	if !ok {
		r.fail("field %q is not a boolean", key)
	}
	return b
}

func (r record) dataType(key string) types.DataType {
	d, ok := types.ParseDataType(r.str(key))
	if !ok {
		r.fail("unknown type %q", r.str(key))
	}
	return d
}

func (r record) list(key string) []interface{} {
	if !r.has(key) {
		return nil
	}
	l, ok := r.t[key].([]interface{})
	if !ok {
		r.fail("field %q is not a list", key)
	}
	return l
}

func (r record) child(key string) Node {
	sub, ok := r.t[key].(Tree)
	if !ok {
		r.fail("field %q is not a record", key)
	}
	return importNode(sub)
}

func (r record) expr(key string) Expression {
	e, ok := r.child(key).(Expression)
	if !ok {
		r.fail("field %q is not an expression", key)
	}
	return e
}

func (r record) optExpr(key string) Expression {
	if !r.has(key) {
		return nil
	}
	return r.expr(key)
}

func (r record) block(key string) *Block {
	b, ok := r.child(key).(*Block)
	if !ok {
		r.fail("field %q is not a block", key)
	}
	return b
}

func (r record) exprs(key string) []Expression {
	var out []Expression
	for _, item := range r.list(key) {
		sub, ok := item.(Tree)
		if !ok {
			r.fail("field %q holds a non-record", key)
		}
		e, ok := importNode(sub).(Expression)
		if !ok {
			r.fail("field %q holds a non-expression", key)
		}
		out = append(out, e)
	}
	return out
}

func (r record) stmts(key string) []Statement {
	var out []Statement
	for _, item := range r.list(key) {
		sub, ok := item.(Tree)
		if !ok {
			r.fail("field %q holds a non-record", key)
		}
		s, ok := importNode(sub).(Statement)
		if !ok {
			r.fail("field %q holds a non-statement", key)
		}
		out = append(out, s)
	}
	return out
}

func (r record) params(key string) []Param {
	var out []Param
	for _, item := range r.list(key) {
		sub, ok := item.(Tree)
		if !ok {
			r.fail("field %q holds a non-record", key)
		}
		p := record{kind: "param", t: sub}
		out = append(out, Param{Name: p.str("name"), Type: p.dataType("type")})
	}
	return out
}

func importNode(t Tree) Node {
	kind, _ := t["type"].(string)
	r := record{kind: kind, t: t}

	line := 0
	if r.has("line") {
		line = int(r.integer("line"))
	}
	pos := Pos{Line: line}
	typed := At(line)
	if r.has("dtype") {
		d, ok := types.ParseDataType(r.str("dtype"))
		if !ok && r.str("dtype") == types.Error.String() {
			d, ok = types.Error, true
		}
		if !ok {
			r.fail("unknown dtype %q", r.str("dtype"))
		}
		typed.DType = d
	}

	switch kind {
	case "IntLiteral":
		v := r.integer("value")
		if v > math.MaxInt32 || v < math.MinInt32 {
			r.fail("value %d overflows int", v)
		}
		return &IntLiteral{Typed: typed, Value: int32(v)}
	case "FloatLiteral":
		return &FloatLiteral{Typed: typed, Value: r.float("value")}
	case "BoolLiteral":
		return &BoolLiteral{Typed: typed, Value: r.boolean("value")}
	case "StringLiteral":
		return &StringLiteral{Typed: typed, Value: r.str("value")}
	case "CharLiteral":
		c, size := utf8.DecodeRuneInString(r.str("value"))
		if size == 0 || c > 0xff || size != len(r.str("value")) {
			r.fail("value %q is not a single byte character", r.str("value"))
		}
		return &CharLiteral{Typed: typed, Value: byte(c)}
	case "Binary":
		return &Binary{Typed: typed, Op: r.str("op"), Left: r.expr("left"), Right: r.expr("right")}
	case "Unary":
		return &Unary{Typed: typed, Op: r.str("op"), Operand: r.expr("operand")}
	case "Ident":
		return &Ident{Typed: typed, Name: r.str("name")}
	case "Call":
		return &Call{Typed: typed, Name: r.str("name"), Args: r.exprs("args")}
	case "Cast":
		return &Cast{Typed: typed, Target: r.dataType("target"), Expr: r.expr("expr")}
	case "MemoryRead":
		return &MemoryRead{Typed: typed, Addr: r.expr("addr")}
	case "Deref":
		return &Deref{Typed: typed, Operand: r.expr("operand")}
	case "VarDecl":
		return &VarDecl{Pos: pos, Name: r.str("name"), DeclType: r.dataType("declType"), Init: r.optExpr("init")}
	case "ConstDecl":
		return &ConstDecl{Pos: pos, Name: r.str("name"), Value: r.expr("value")}
	case "FuncDecl":
		return &FuncDecl{Pos: pos, Name: r.str("name"), Params: r.params("params"), Returns: r.dataType("returns"), Body: r.block("body")}
	case "ExternDecl":
		return &ExternDecl{Pos: pos, Name: r.str("name"), Params: r.params("params"), Returns: r.dataType("returns")}
	case "Assignment":
		return &Assignment{Pos: pos, Target: r.expr("target"), Value: r.expr("value")}
	case "Print":
		return &Print{Pos: pos, Value: r.expr("value")}
	case "If":
		n := &If{Pos: pos, Cond: r.expr("cond"), Then: r.block("then")}
		if r.has("else") {
			n.Else = r.block("else")
		}
		return n
	case "While":
		return &While{Pos: pos, Cond: r.expr("cond"), Body: r.block("body")}
	case "Return":
		return &Return{Pos: pos, Value: r.optExpr("value")}
	case "Break":
		return &Break{Pos: pos}
	case "Continue":
		return &Continue{Pos: pos}
	case "Block":
		return &Block{Pos: pos, Statements: r.stmts("statements")}
	case "ExprStmt":
		return &ExprStmt{Pos: pos, Expr: r.expr("expr")}
	case "Program":
		return &Program{Pos: pos, Statements: r.stmts("statements")}
	}

	panic(TreeError{Msg: fmt.Sprintf("unknown node type %q", kind)})
}
