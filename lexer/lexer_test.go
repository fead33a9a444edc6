package lexer

import (
	"reflect"
	"testing"

	"github.com/pontaoski/gox/errors"
	"github.com/pontaoski/gox/types"
)

func kinds(toks []types.Token) []types.TokenKind {
	out := make([]types.TokenKind, 0, len(toks))
	for _, t := range toks {
		if t.Kind == types.EOF {
			break
		}
		out = append(out, t.Kind)
	}
	return out
}

func wantKinds(t *testing.T, src string, want ...types.TokenKind) []types.Token {
	t.Helper()
	toks, errs := Tokenize(src)
	if len(errs) != 0 {
		t.Fatalf("unexpected lexical errors for %q: %v", src, errs)
	}
	if got := kinds(toks); !reflect.DeepEqual(got, want) {
		t.Fatalf("source %q\nwant %v\ngot  %v", src, want, got)
	}
	return toks
}

func TestLexer(t *testing.T) {
	toks := wantKinds(t, "var x int = 10;",
		types.VAR, types.IDENT, types.INT, types.ASSIGN, types.INTLIT, types.EOS)
	if toks[1].Lexeme != "x" || toks[4].Lexeme != "10" {
		t.Fatalf("bad lexemes: %v", toks)
	}
	if last := toks[len(toks)-1]; last.Kind != types.EOF {
		t.Fatalf("stream must end with EOF, got %v", last)
	}
}

func TestKeywordsAreNeverIdentifiers(t *testing.T) {
	for word, kind := range types.Keywords {
		toks, errs := Tokenize(word)
		if len(errs) != 0 || len(toks) != 2 {
			t.Fatalf("%q: got %v %v", word, toks, errs)
		}
		if toks[0].Kind != kind {
			t.Errorf("%q tokenized as %s, want %s", word, toks[0].Kind, kind)
		}
	}
	if len(types.Keywords) != 19 {
		t.Fatalf("keyword table has %d entries, want 19", len(types.Keywords))
	}
}

func TestIdentifierShapes(t *testing.T) {
	for _, word := range []string{"x", "_", "printer", "iff", "var1", "Int", "while_", "_const", "voids"} {
		toks, errs := Tokenize(word)
		if len(errs) != 0 || toks[0].Kind != types.IDENT || toks[0].Lexeme != word {
			t.Errorf("%q: got %v %v", word, toks, errs)
		}
	}
}

func TestLongestMatch(t *testing.T) {
	wantKinds(t, "a <= b < c >= d > e == f != g = !h && i || j",
		types.IDENT, types.LE, types.IDENT, types.LT, types.IDENT, types.GE, types.IDENT,
		types.GT, types.IDENT, types.EQ, types.IDENT, types.NE, types.IDENT, types.ASSIGN,
		types.NOT, types.IDENT, types.LAND, types.IDENT, types.LOR, types.IDENT)
	wantKinds(t, "a / b /* c */ % d ^ `e",
		types.IDENT, types.DIVIDE, types.IDENT, types.MOD, types.IDENT, types.CARET,
		types.BACKTICK, types.IDENT)
}

func TestNumbers(t *testing.T) {
	toks := wantKinds(t, "12 3.5 1. .25 0x1F 0b101",
		types.INTLIT, types.FLOATLIT, types.FLOATLIT, types.FLOATLIT, types.INTLIT, types.INTLIT)
	want := []string{"12", "3.5", "1.", ".25", "0x1F", "0b101"}
	for i, w := range want {
		if toks[i].Lexeme != w {
			t.Errorf("token %d: lexeme %q, want %q", i, toks[i].Lexeme, w)
		}
	}
}

func TestMalformedPrefixedNumbers(t *testing.T) {
	for _, src := range []string{"0b", "0b12", "0x", "0x1g"} {
		toks, errs := Tokenize(src)
		if got := kinds(toks); !reflect.DeepEqual(got, []types.TokenKind{types.INTLIT}) {
			t.Errorf("%q: tokens %v", src, got)
		}
		if toks[0].Lexeme != src {
			t.Errorf("%q: lexeme %q", src, toks[0].Lexeme)
		}
		if len(errs) != 1 || errs[0].Phase != errors.Lexical {
			t.Errorf("%q: errors %v", src, errs)
		}
	}
}

func TestCharAndString(t *testing.T) {
	toks := wantKinds(t, `'a' '\n' '\xff' "hi \"there\""`,
		types.CHARLIT, types.CHARLIT, types.CHARLIT, types.STRINGLIT)
	if toks[2].Lexeme != `'\xff'` || toks[3].Lexeme != `"hi \"there\""` {
		t.Fatalf("lexemes kept verbatim: %v", toks)
	}
}

func TestComments(t *testing.T) {
	toks := wantKinds(t, "a // line comment\n/* outer /* inner */ still\n comment */ b",
		types.IDENT, types.IDENT)
	if toks[1].Line != 3 {
		t.Fatalf("b should be on line 3, got %d", toks[1].Line)
	}
}

func TestUnterminatedBlockComment(t *testing.T) {
	toks, errs := Tokenize("a /* /* */ never closed\n\n")
	if len(toks) != 2 || toks[0].Kind != types.IDENT || toks[1].Kind != types.EOF {
		t.Fatalf("scanning must still reach EOF, got %v", toks)
	}
	if len(errs) != 1 || errs[0].Phase != errors.Lexical || errs[0].Line != 1 {
		t.Fatalf("want one lexical error on line 1, got %v", errs)
	}
	if toks[1].Line != 3 {
		t.Fatalf("EOF line = %d, want 3", toks[1].Line)
	}
}

func TestIllegalCharactersAreSkipped(t *testing.T) {
	toks, errs := Tokenize("x = 1 @ $ 2;\n&")
	if got := kinds(toks); !reflect.DeepEqual(got, []types.TokenKind{
		types.IDENT, types.ASSIGN, types.INTLIT, types.INTLIT, types.EOS,
	}) {
		t.Fatalf("got %v", got)
	}
	if len(errs) != 3 {
		t.Fatalf("want 3 errors, got %v", errs)
	}
	if errs[2].Line != 2 {
		t.Fatalf("'&' is on line 2, got %d", errs[2].Line)
	}
}

func TestLineNumbers(t *testing.T) {
	toks, _ := Tokenize("var a int;\n\nprint \"two\nlines\";\nb")
	var lines []int
	for _, tok := range toks {
		lines = append(lines, tok.Line)
	}
	want := []int{1, 1, 1, 1, 3, 3, 4, 5, 5}
	if !reflect.DeepEqual(lines, want) {
		t.Fatalf("lines %v, want %v", lines, want)
	}
}
