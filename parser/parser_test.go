package parser

import (
	"strings"
	"testing"

	"github.com/alecthomas/repr"
	"github.com/pontaoski/gox/ast"
	"github.com/pontaoski/gox/errors"
	"github.com/pontaoski/gox/lexer"
	"github.com/pontaoski/gox/types"
)

func parse(t *testing.T, src string) (*ast.Program, errors.List) {
	t.Helper()
	toks, lexErrs := lexer.Tokenize(src)
	if len(lexErrs) != 0 {
		t.Fatalf("lexical errors: %v", lexErrs)
	}
	return Parse(toks)
}

func mustParse(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, errs := parse(t, src)
	if len(errs) != 0 {
		t.Fatalf("syntax errors for %q:\n%v", src, errs)
	}
	return prog
}

func printed(t *testing.T, src string) string {
	t.Helper()
	prog := mustParse(t, "print "+src+";")
	return ast.ExprString(prog.Statements[0].(*ast.Print).Value)
}

func TestPrecedence(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"1 + 2 * 3", "(1 + (2 * 3))"},
		{"2 * 3 + 1", "((2 * 3) + 1)"},
		{"1 - 2 - 3", "((1 - 2) - 3)"},
		{"8 / 4 % 3", "((8 / 4) % 3)"},
		{"(1 + 2) * 3", "((1 + 2) * 3)"},
		{"a < b == c > d", "((a < b) == (c > d))"},
		{"a == b && c != d || e", "(((a == b) && (c != d)) || e)"},
		{"1 + 2 < 3 * 4", "((1 + 2) < (3 * 4))"},
		{"-x * y", "((-x) * y)"},
		{"!a && b", "((!a) && b)"},
		{"- -1", "(-(-1))"},
		{"`p + 1", "(`p + 1)"},
		{"`(p + 1) * 2", "(`((p + 1)) * 2)"},
		{"^16", "(^16)"},
	}
	for _, tt := range tests {
		if got := printed(t, tt.src); got != tt.want {
			t.Errorf("%s: got %s, want %s", tt.src, got, tt.want)
		}
	}
}

func TestCallsAndIdentifiers(t *testing.T) {
	if got := printed(t, "f(1, g(x), y) + z"); got != "(f(1, g(x), y) + z)" {
		t.Fatalf("got %s", got)
	}
	prog := mustParse(t, "print x;")
	if _, ok := prog.Statements[0].(*ast.Print).Value.(*ast.Ident); !ok {
		t.Fatalf("plain identifier parsed as %s", repr.String(prog.Statements[0]))
	}
	prog = mustParse(t, "print f();")
	call, ok := prog.Statements[0].(*ast.Print).Value.(*ast.Call)
	if !ok || len(call.Args) != 0 {
		t.Fatalf("f() parsed as %s", repr.String(prog.Statements[0]))
	}
}

func TestCasts(t *testing.T) {
	prog := mustParse(t, "print float(x) + int(2.5);")
	bin := prog.Statements[0].(*ast.Print).Value.(*ast.Binary)
	if c, ok := bin.Left.(*ast.Cast); !ok || c.Target != types.Float {
		t.Fatalf("left: %s", repr.String(bin.Left))
	}
	if c, ok := bin.Right.(*ast.Cast); !ok || c.Target != types.Int {
		t.Fatalf("right: %s", repr.String(bin.Right))
	}
}

func TestLiterals(t *testing.T) {
	prog := mustParse(t, `print 0x10; print 0b11; print 2.5; print 'a'; print '\xff'; print "a\tb"; print true;`)
	values := make([]ast.Expression, 0, len(prog.Statements))
	for _, s := range prog.Statements {
		values = append(values, s.(*ast.Print).Value)
	}
	if v := values[0].(*ast.IntLiteral).Value; v != 16 {
		t.Errorf("hex = %d", v)
	}
	if v := values[1].(*ast.IntLiteral).Value; v != 3 {
		t.Errorf("binary = %d", v)
	}
	if v := values[2].(*ast.FloatLiteral).Value; v != 2.5 {
		t.Errorf("float = %v", v)
	}
	if v := values[3].(*ast.CharLiteral).Value; v != 'a' {
		t.Errorf("char = %v", v)
	}
	if v := values[4].(*ast.CharLiteral).Value; v != 0xff {
		t.Errorf("escaped char = %v", v)
	}
	if v := values[5].(*ast.StringLiteral).Value; v != "a\tb" {
		t.Errorf("string = %q", v)
	}
	if v := values[6].(*ast.BoolLiteral).Value; !v {
		t.Errorf("bool = %v", v)
	}
}

func TestDeclarationsAndStatements(t *testing.T) {
	src := `
import func put_image(base int, width int, height int) int;
const limit = 10;
var total float = 0.0;
func add(a int, b int) int {
	var c int = a + b;
	return c;
}
func main() {
	var i int;
	while i < limit {
		if i % 2 == 0 { continue; } else if i == 7 { break; } else { total = total + 1; }
		i = i + 1;
	}
	` + "`" + `(4) = 1;
	` + "`" + `i = 2;
	add(1, 2);
	{ print total; }
	return;
}
`
	prog := mustParse(t, src)
	if len(prog.Statements) != 5 {
		t.Fatalf("got %d top-level statements", len(prog.Statements))
	}
	ext := prog.Statements[0].(*ast.ExternDecl)
	if ext.Name != "put_image" || len(ext.Params) != 3 || ext.Returns != types.Int {
		t.Fatalf("extern: %s", ext)
	}
	add := prog.Statements[3].(*ast.FuncDecl)
	if add.String() != "func add(a int, b int) int" {
		t.Fatalf("add: %s", add)
	}
	main := prog.Statements[4].(*ast.FuncDecl)
	if main.Returns != types.Void || len(main.Body.Statements) != 7 {
		t.Fatalf("main: %s", repr.String(main))
	}
	loop := main.Body.Statements[1].(*ast.While)
	ifs := loop.Body.Statements[0].(*ast.If)
	nested, ok := ifs.Else.Statements[0].(*ast.If)
	if !ok || nested.Else == nil {
		t.Fatalf("else-if chain: %s", repr.String(ifs))
	}
	if _, ok := main.Body.Statements[2].(*ast.Assignment).Target.(*ast.MemoryRead); !ok {
		t.Fatalf("memory assignment target: %s", repr.String(main.Body.Statements[2]))
	}
	if _, ok := main.Body.Statements[3].(*ast.Assignment).Target.(*ast.Deref); !ok {
		t.Fatalf("deref assignment target: %s", repr.String(main.Body.Statements[3]))
	}
	if _, ok := main.Body.Statements[4].(*ast.ExprStmt); !ok {
		t.Fatalf("call statement: %s", repr.String(main.Body.Statements[4]))
	}
	if ret := main.Body.Statements[6].(*ast.Return); ret.Value != nil {
		t.Fatalf("bare return carries %s", repr.String(ret.Value))
	}
}

func TestRecoveryReportsManyErrors(t *testing.T) {
	src := `var a int = 1
var b int = (2 + 3;
print a;
var c int = ;
print b;
`
	prog, errs := parse(t, src)
	if len(errs) != 3 {
		t.Fatalf("want 3 syntax errors, got %v", errs)
	}
	wantLines := []int{2, 2, 4}
	for i, d := range errs {
		if d.Phase != errors.Syntax || d.Line != wantLines[i] {
			t.Errorf("error %d: %v, want line %d", i, d, wantLines[i])
		}
	}
	var prints int
	for _, s := range prog.Statements {
		if _, ok := s.(*ast.Print); ok {
			prints++
		}
	}
	if prints != 2 {
		t.Fatalf("both print statements should survive recovery, got %s", repr.String(prog))
	}
}

func TestRecoveryInsideBlocks(t *testing.T) {
	src := `func f() int {
	print 1
	return 2;
}
print 3;`
	prog, errs := parse(t, src)
	if len(errs) != 1 || errs[0].Line != 3 {
		t.Fatalf("got %v", errs)
	}
	fn := prog.Statements[0].(*ast.FuncDecl)
	if len(fn.Body.Statements) != 1 {
		t.Fatalf("body: %s", repr.String(fn.Body))
	}
	if len(prog.Statements) != 2 {
		t.Fatalf("print after the function is lost: %s", repr.String(prog))
	}
}

func TestTrailingInput(t *testing.T) {
	_, errs := parse(t, "print 1; }")
	if len(errs) != 1 || !strings.Contains(errs[0].Message, "trailing input") {
		t.Fatalf("got %v", errs)
	}
}

func TestNestedFunctionIsRejected(t *testing.T) {
	prog, errs := parse(t, "func outer() { func inner() { } }")
	if len(errs) != 1 || !strings.Contains(errs[0].Message, "top level") {
		t.Fatalf("got %v", errs)
	}
	if body := prog.Statements[0].(*ast.FuncDecl).Body; len(body.Statements) != 0 {
		t.Fatalf("inner function kept: %s", repr.String(body))
	}
}

func TestBadLiterals(t *testing.T) {
	_, errs := parse(t, "print 99999999999; print 'ab'; print 1;")
	if len(errs) != 2 {
		t.Fatalf("got %v", errs)
	}
}

func TestEmptyInput(t *testing.T) {
	prog, errs := Parse(nil)
	if prog == nil || len(prog.Statements) != 0 || len(errs) != 0 {
		t.Fatalf("got %v %v", prog, errs)
	}
}
