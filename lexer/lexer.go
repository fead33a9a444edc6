package lexer

import (
	"bufio"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/coreos/pkg/capnslog"
	"github.com/pontaoski/gox/errors"
	"github.com/pontaoski/gox/types"
)

var plog = capnslog.NewPackageLogger("github.com/pontaoski/gox", "lexer")

type Lexer struct {
	line   int
	reader *bufio.Reader
	last   rune
	errs   errors.List
}

func NewLexer(reader io.Reader) *Lexer {
	return &Lexer{
		line:   1,
		reader: bufio.NewReader(reader),
	}
}

// Tokenize scans the whole source. It never fails: illegal input is reported
// in the returned list and skipped. The token slice always ends with EOF.
func Tokenize(src string) ([]types.Token, errors.List) {
	l := NewLexer(strings.NewReader(src))
	var toks []types.Token
	for {
		tok := l.Lex()
		toks = append(toks, tok)
		if tok.Kind == types.EOF {
			break
		}
	}
	plog.Debugf("scanned %d tokens, %d errors", len(toks), len(l.errs))
	return toks, l.errs
}

// Errors returns the lexical errors found so far.
func (l *Lexer) Errors() errors.List {
	return l.errs
}

func (l *Lexer) read() (rune, bool) {
	r, _, err := l.reader.ReadRune()
	if err != nil {
		if err == io.EOF {
			l.last = 0
			return 0, false
		}
		panic(err)
	}
	l.last = r
	if r == '\n' {
		l.line++
	}
	return r, true
}

func (l *Lexer) backup() {
	if err := l.reader.UnreadRune(); err != nil {
		panic(err)
	}
	if l.last == '\n' {
		l.line--
	}
	l.last = 0
}

func (l *Lexer) peek() rune {
	byt, err := l.reader.Peek(1)
	if err != nil {
		if err == io.EOF {
			return 0
		}
		panic(err)
	}
	return rune(byt[0])
}

// accept consumes the next rune if it equals want.
func (l *Lexer) accept(want rune) bool {
	if l.peek() == want {
		l.read()
		return true
	}
	return false
}

func (l *Lexer) kinded(t types.TokenKind, lexeme string, line int) types.Token {
	return types.Token{
		Kind:   t,
		Lexeme: lexeme,
		Line:   line,
	}
}

func (l *Lexer) errorf(line int, format string, args ...interface{}) {
	l.errs.Add(errors.Lexical, line, format, args...)
}

func firstChar(r rune) bool {
	return r == '_' || (r < utf8.RuneSelf && unicode.IsLetter(r))
}

func otherChar(r rune) bool {
	return firstChar(r) || isDigit(r)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isHexDigit(r rune) bool {
	return isDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func (l *Lexer) lexWhile(first string, pred func(rune) bool) string {
	var sb strings.Builder
	sb.WriteString(first)
	for {
		r, ok := l.read()
		if !ok {
			return sb.String()
		}
		if !pred(r) {
			l.backup()
			return sb.String()
		}
		sb.WriteRune(r)
	}
}

// lexRadix scans a prefixed literal after its '0'. Trailing letters and
// digits belong to the literal, so "0b12" is one malformed token.
func (l *Lexer) lexRadix(line int, name string, digit func(rune) bool) types.Token {
	prefix, _ := l.read()
	lit := l.lexWhile("0"+string(prefix), digit)
	digits := len(lit) - 2
	lit = l.lexWhile(lit, otherChar)
	if digits == 0 || len(lit) != digits+2 {
		l.errorf(line, "malformed %s literal %q", name, lit)
	}
	return l.kinded(types.INTLIT, lit, line)
}

func (l *Lexer) lexNumber(first rune) types.Token {
	line := l.line

	if first == '0' && (l.peek() == 'x' || l.peek() == 'X') {
		return l.lexRadix(line, "hexadecimal", isHexDigit)
	}
	if first == '0' && (l.peek() == 'b' || l.peek() == 'B') {
		return l.lexRadix(line, "binary", func(r rune) bool { return r == '0' || r == '1' })
	}

	lit := ""
	if first != '.' {
		lit = l.lexWhile(string(first), isDigit)
		if !l.accept('.') {
			return l.kinded(types.INTLIT, lit, line)
		}
	}
	lit = l.lexWhile(lit+".", isDigit)
	return l.kinded(types.FLOATLIT, lit, line)
}

// lexQuoted reads a char or string literal body up to the closing quote,
// keeping escapes verbatim. The returned lexeme includes both quotes.
func (l *Lexer) lexQuoted(quote rune) (string, bool) {
	var sb strings.Builder
	sb.WriteRune(quote)
	for {
		r, ok := l.read()
		if !ok {
			return sb.String(), false
		}
		if quote == '\'' && r == '\n' {
			l.backup()
			return sb.String(), false
		}
		sb.WriteRune(r)
		switch r {
		case '\\':
			esc, ok := l.read()
			if !ok {
				return sb.String(), false
			}
			sb.WriteRune(esc)
		case quote:
			return sb.String(), true
		}
	}
}

func (l *Lexer) skipLineComment() {
	for {
		r, ok := l.read()
		if !ok || r == '\n' {
			return
		}
	}
}

func (l *Lexer) skipBlockComment(line int) {
	depth := 1
	for depth > 0 {
		r, ok := l.read()
		if !ok {
			l.errorf(line, "unterminated block comment")
			return
		}
		switch {
		case r == '/' && l.peek() == '*':
			l.read()
			depth++
		case r == '*' && l.peek() == '/':
			l.read()
			depth--
		}
	}
}

var singles = map[rune]types.TokenKind{
	'(': types.LPAREN,
	')': types.RPAREN,
	'{': types.LBRACKET,
	'}': types.RBRACKET,
	',': types.COMMA,
	';': types.EOS,
	'`': types.BACKTICK,
	'+': types.PLUS,
	'-': types.MINUS,
	'*': types.TIMES,
	'%': types.MOD,
	'^': types.CARET,
}

// doubles holds operators whose first rune may be followed by '='
// or by itself to form a longer operator.
var doubles = map[rune]struct {
	alone  types.TokenKind
	second rune
	pair   types.TokenKind
}{
	'<': {types.LT, '=', types.LE},
	'>': {types.GT, '=', types.GE},
	'=': {types.ASSIGN, '=', types.EQ},
	'!': {types.NOT, '=', types.NE},
	'&': {types.ILLEGAL, '&', types.LAND},
	'|': {types.ILLEGAL, '|', types.LOR},
}

func (l *Lexer) Lex() types.Token {
	for {
		r, ok := l.read()
		if !ok {
			return l.kinded(types.EOF, "", l.line)
		}
		line := l.line
		if r == '\n' {
			line--
		}

		switch {
		case unicode.IsSpace(r):
			continue
		case r == '/':
			switch l.peek() {
			case '/':
				l.skipLineComment()
				continue
			case '*':
				l.read()
				l.skipBlockComment(line)
				continue
			}
			return l.kinded(types.DIVIDE, "/", line)
		case isDigit(r), r == '.' && isDigit(l.peek()):
			return l.lexNumber(r)
		case firstChar(r):
			lit := l.lexWhile(string(r), otherChar)
			if kind, ok := types.Keywords[lit]; ok {
				return l.kinded(kind, lit, line)
			}
			return l.kinded(types.IDENT, lit, line)
		case r == '\'':
			lit, closed := l.lexQuoted('\'')
			if !closed {
				l.errorf(line, "unterminated character literal %s", lit)
				continue
			}
			return l.kinded(types.CHARLIT, lit, line)
		case r == '"':
			lit, closed := l.lexQuoted('"')
			if !closed {
				l.errorf(line, "unterminated string literal")
				continue
			}
			return l.kinded(types.STRINGLIT, lit, line)
		}

		if kind, ok := singles[r]; ok {
			return l.kinded(kind, string(r), line)
		}

		if d, ok := doubles[r]; ok {
			if l.accept(d.second) {
				return l.kinded(d.pair, string(r)+string(d.second), line)
			}
			if d.alone != types.ILLEGAL {
				return l.kinded(d.alone, string(r), line)
			}
		}

		plog.Tracef("illegal character %q at line %d", r, line)
		l.errorf(line, "illegal character %q", r)
	}
}
