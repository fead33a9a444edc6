package interp

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/pontaoski/gox/ast"
	"github.com/pontaoski/gox/checker"
	"github.com/pontaoski/gox/lexer"
	"github.com/pontaoski/gox/parser"
	"github.com/pontaoski/gox/types"
)

func compile(t *testing.T, src string, checked bool) *ast.Program {
	t.Helper()
	toks, lexErrs := lexer.Tokenize(src)
	if len(lexErrs) != 0 {
		t.Fatalf("lexical errors: %v", lexErrs)
	}
	prog, errs := parser.Parse(toks)
	if len(errs) != 0 {
		t.Fatalf("syntax errors: %v", errs)
	}
	if checked {
		if errs := checker.Check(prog); len(errs) != 0 {
			t.Fatalf("semantic errors: %v", errs)
		}
	}
	return prog
}

func run(t *testing.T, src string, opts ...Option) (Value, string) {
	t.Helper()
	var out bytes.Buffer
	in := New(append([]Option{WithOutput(&out)}, opts...)...)
	v, err := in.Run(compile(t, src, true))
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	return v, out.String()
}

func runFails(t *testing.T, src string, checked bool, fragment string) *RuntimeError {
	t.Helper()
	_, err := New().Run(compile(t, src, checked))
	if err == nil {
		t.Fatalf("%q: run succeeded, want a runtime error", src)
	}
	rt, ok := AsRuntimeError(err)
	if !ok {
		t.Fatalf("not a runtime error: %T %v", err, err)
	}
	if !strings.Contains(rt.Message, fragment) {
		t.Fatalf("error %q does not mention %q", rt.Message, fragment)
	}
	return rt
}

func TestBreakLeavesLoop(t *testing.T) {
	v, _ := run(t, `
func f() int { var i int = 0; while i < 5 { i = i + 1; if i == 3 { break; } } return i; }
func main() int { return f(); }`)
	if v.Type != types.Int || v.Int() != 3 {
		t.Fatalf("got %v (%s), want 3", v, v.Type)
	}
}

func TestContinue(t *testing.T) {
	v, _ := run(t, `
func main() int {
	var i int = 0;
	var sum int = 0;
	while i < 10 {
		i = i + 1;
		if i % 2 == 1 { continue; }
		sum = sum + i;
	}
	return sum;
}`)
	if v.Int() != 30 {
		t.Fatalf("sum of evens = %v", v)
	}
}

func TestReturnUnwindsNestedBlocks(t *testing.T) {
	v, out := run(t, `
func find(limit int) int {
	var i int = 0;
	while true {
		{
			if i * i > limit { return i; }
		}
		i = i + 1;
	}
	print "unreachable";
	return -1;
}
func main() int { print find(50); return find(10); }`)
	if v.Int() != 4 || out != "8\n" {
		t.Fatalf("got %v, output %q", v, out)
	}
}

func TestPrintFormatting(t *testing.T) {
	_, out := run(t, `
print 7 / 2;
print 7.0 / 2;
print 3.0;
print true;
print 'g';
print "a" + "b";
print -7 / 2;
print 7 % 3;
print 1 < 2 && 2.5 >= 2;
var f float = 2;
print f;`)
	want := "3\n3.5\n3.0\ntrue\ng\nab\n-3\n1\ntrue\n2.0\n"
	if out != want {
		t.Fatalf("output:\n%q\nwant:\n%q", out, want)
	}
}

func TestNoMain(t *testing.T) {
	v, out := run(t, `var x int = 2; print x * 21;`)
	if v.Type != types.Void || out != "42\n" {
		t.Fatalf("got %v %q", v, out)
	}
	v, _ = run(t, `func main() { print 1; }`)
	if v.Type != types.Void {
		t.Fatalf("void main returned %v", v)
	}
}

func TestMainWithParamsIsNotEntry(t *testing.T) {
	v, out := run(t, `func main(n int) int { print n; return n; }`)
	if v.Type != types.Void || out != "" {
		t.Fatalf("main(n) was invoked: %v %q", v, out)
	}
}

func TestRecursion(t *testing.T) {
	v, _ := run(t, `
func fact(n int) int { if n <= 1 { return 1; } return n * fact(n - 1); }
func fib(n int) int { if n < 2 { return n; } return fib(n - 1) + fib(n - 2); }
func main() int { return fact(10) + fib(15); }`)
	if v.Int() != 3628800+610 {
		t.Fatalf("got %v", v)
	}
}

func TestShadowing(t *testing.T) {
	_, out := run(t, `
var x int = 1;
if true {
	var x int = 2;
	x = x + 10;
	print x;
}
print x;
if true { x = 5; }
print x;`)
	if out != "12\n1\n5\n" {
		t.Fatalf("output %q", out)
	}
}

func TestCalleeSeesGlobalsNotCallerLocals(t *testing.T) {
	_, out := run(t, `
var x int = 1;
func show() { print x; }
func main() {
	var x int = 99;
	show();
	print x;
}`)
	if out != "1\n99\n" {
		t.Fatalf("output %q", out)
	}
}

func TestLoopBodyFrameIsFresh(t *testing.T) {
	_, out := run(t, `
var i int = 0;
while i < 3 {
	var seen int;
	print seen;
	seen = 7;
	i = i + 1;
}`)
	if out != "0\n0\n0\n" {
		t.Fatalf("output %q", out)
	}
}

func TestConversions(t *testing.T) {
	v, out := run(t, `
func half(x float) float { return x / 2; }
func code(c char) int { return c; }
func main() float {
	print int(3.9);
	print char(104);
	print bool(0);
	print code('A');
	return half(5);
}`)
	if v.Type != types.Float || v.Float() != 2.5 {
		t.Fatalf("half(5) = %v", v)
	}
	if out != "3\nh\nfalse\n65\n" {
		t.Fatalf("output %q", out)
	}
}

func TestShortCircuit(t *testing.T) {
	_, out := run(t, `
func noisy() bool { print "called"; return true; }
print false && noisy();
print true || noisy();
print true && noisy();`)
	if out != "false\ntrue\ncalled\ntrue\n" {
		t.Fatalf("output %q", out)
	}
}

func TestMemoryProgram(t *testing.T) {
	v, _ := run(t, "func main() int {\n"+
		"var a int = ^8;\n"+
		"var b int = ^4;\n"+
		"`a = -123456;\n"+
		"`(a + 4) = 2.9;\n"+
		"`b = 'z';\n"+
		"return `a + `(a + 4) + b;\n"+
		"}")
	if v.Int() != -123456+2+8 {
		t.Fatalf("got %v", v)
	}
}

func TestMemoryOutOfBounds(t *testing.T) {
	rt := runFails(t, "var p int = 1048573;\n`p = 1;", true, "out of bounds")
	if rt.Line != 2 {
		t.Fatalf("line = %d", rt.Line)
	}
	runFails(t, "print `(-4);", true, "out of bounds")
	runFails(t, "print ^2000000;", true, "cannot grow memory")
}

func TestDivisionByZero(t *testing.T) {
	runFails(t, "var z int = 0; print 1 / z;", true, "division by zero")
	runFails(t, "var z int = 0; print 1 % z;", true, "modulo by zero")
	runFails(t, "var z float = 0.0; print 1.0 / z;", true, "division by zero")
}

func TestRuntimeErrorStopsRun(t *testing.T) {
	var out bytes.Buffer
	_, err := New(WithOutput(&out)).Run(compile(t, `
print 1;
var z int = 0;
print 1 / z;
print 2;`, true))
	if err == nil || out.String() != "1\n" {
		t.Fatalf("err %v, output %q", err, out.String())
	}
}

func TestUncheckedFailures(t *testing.T) {
	runFails(t, "print nope(1);", false, "undefined function 'nope'")
	runFails(t, "print y;", false, "undefined variable 'y'")
	runFails(t, `print 1 + "s";`, false, "invalid operation")
	runFails(t, "func f() int { } print f();", false, "without returning")
}

func TestCallDepthLimit(t *testing.T) {
	_, err := New(WithMaxDepth(50)).Run(compile(t, `
func down(n int) int { return down(n + 1); }
func main() int { return down(0); }`, true))
	rt, ok := AsRuntimeError(err)
	if !ok || !strings.Contains(rt.Message, "call stack exhausted") {
		t.Fatalf("got %v", err)
	}
}

func TestExtern(t *testing.T) {
	var got []int32
	record := func(h *Host, args []Value) (Value, error) {
		got = append(got, args[0].Int())
		return FloatValue(float64(len(got)) + 0.5), nil
	}
	v, _ := run(t, `
import func record(n int) int;
func main() int { record('a'); return record(5) + record(6); }`, WithExtern("record", record))
	if v.Int() != 5 || len(got) != 3 || got[0] != 97 {
		t.Fatalf("result %v, calls %v", v, got)
	}

	fails := func(h *Host, args []Value) (Value, error) {
		return Void, fmt.Errorf("device busy")
	}
	_, err := New(WithExtern("dev", fails)).Run(compile(t, "import func dev() int; print dev();", true))
	if rt, ok := AsRuntimeError(err); !ok || !strings.Contains(rt.Message, "device busy") {
		t.Fatalf("got %v", err)
	}

	runFails(t, "import func missing() int; print missing();", true, "no host binding")
}

func TestBuiltins(t *testing.T) {
	v, out := run(t, `
import func putc(c char) int;
import func puti(n int) int;
import func poke(addr int, b int) int;
import func peek(addr int) int;
import func brk() int;
func main() int {
	putc('h'); putc('i'); puti(-12); putc('\n');
	var p int = ^4;
	poke(p + 1, 0x1ff);
	return `+"`p"+` + peek(p + 1) + brk();
}`)
	if out != "hi-12\n" {
		t.Fatalf("output %q", out)
	}
	if v.Int() != 0xff00+0xff+4 {
		t.Fatalf("got %d", v.Int())
	}
}

func TestBuiltinsDeclaredWithWrongArity(t *testing.T) {
	tests := []struct {
		decl string
		call string
	}{
		{"putc() int", "putc()"},
		{"putc(a char, b char) int", "putc('a', 'b')"},
		{"puti() int", "puti()"},
		{"peek() int", "peek()"},
		{"peek(a int, b int) int", "peek(1, 2)"},
		{"poke(addr int) int", "poke(1)"},
		{"memsize(n int) int", "memsize(1)"},
		{"brk(n int) int", "brk(1)"},
	}
	for _, tt := range tests {
		src := "import func " + tt.decl + ";\nfunc main() int { return " + tt.call + "; }"
		rt := runFails(t, src, true, "declared with")
		if rt.Line != 2 {
			t.Errorf("%s: line %d, want 2", tt.decl, rt.Line)
		}
	}
}

func TestEvalKeepsState(t *testing.T) {
	var out bytes.Buffer
	in := New(WithOutput(&out))
	if err := in.Eval(compile(t, "var x int = 2; func double(n int) int { return n * 2; }", true)); err != nil {
		t.Fatal(err)
	}
	if err := in.Eval(compile(t, "x = double(x); print x;", false)); err != nil {
		t.Fatal(err)
	}
	if v, ok := in.Global("x"); !ok || v.Int() != 4 || out.String() != "4\n" {
		t.Fatalf("x = %v, output %q", v, out.String())
	}
	if err := in.Eval(compile(t, "func main() int { return 1; }", true)); err != nil {
		t.Fatal(err)
	}
	if out.String() != "4\n" {
		t.Fatal("Eval called main")
	}
}
