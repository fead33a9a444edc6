package errors

import (
	"fmt"
	"strings"

	"github.com/pontaoski/gox/types"
)

type Phase int

const (
	Lexical Phase = iota
	Syntax
	Semantic
	Runtime
)

func (p Phase) String() string {
	switch p {
	case Lexical:
		return "lexical"
	case Syntax:
		return "syntax"
	case Semantic:
		return "semantic"
	case Runtime:
		return "runtime"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// Diagnostic is a non-fatal problem found while lexing, parsing or checking.
// Runtime failures are reported with the same shape once they have stopped
// the interpreter.
type Diagnostic struct {
	Phase   Phase
	Line    int
	Message string
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("line %d: %s error: %s", d.Line, d.Phase, d.Message)
}

// List accumulates diagnostics in the order they were found.
type List []Diagnostic

func (l *List) Add(phase Phase, line int, format string, args ...interface{}) {
	*l = append(*l, Diagnostic{
		Phase:   phase,
		Line:    line,
		Message: fmt.Sprintf(format, args...),
	})
}

func (l *List) Extend(other List) {
	*l = append(*l, other...)
}

func (l List) Of(phase Phase) List {
	var out List
	for _, d := range l {
		if d.Phase == phase {
			out = append(out, d)
		}
	}
	return out
}

func (l List) Messages() []string {
	out := make([]string, 0, len(l))
	for _, d := range l {
		out = append(out, d.Message)
	}
	return out
}

func (l List) Error() string {
	lines := make([]string, 0, len(l))
	for _, d := range l {
		lines = append(lines, d.Error())
	}
	return strings.Join(lines, "\n")
}

// Err returns the list as an error, or nil when it is empty.
func (l List) Err() error {
	if len(l) == 0 {
		return nil
	}
	return l
}

type ExpectedOneOfKindGotKind struct {
	Expected []types.TokenKind
	Got      types.Token
}

func (e ExpectedOneOfKindGotKind) Error() string {
	if len(e.Expected) == 1 {
		return fmt.Sprintf("expected %s, got %s %q", e.Expected[0], e.Got.Kind, e.Got.Lexeme)
	}
	return fmt.Sprintf("expected one of %s, got %s %q", e.Expected, e.Got.Kind, e.Got.Lexeme)
}

type UnexpectedToken struct {
	Context string
	Got     types.Token
}

func (e UnexpectedToken) Error() string {
	if e.Got.Kind == types.EOF {
		return fmt.Sprintf("unexpected end of input in %s", e.Context)
	}
	return fmt.Sprintf("unexpected %s %q in %s", e.Got.Kind, e.Got.Lexeme, e.Context)
}

type BadLiteral struct {
	Lexeme string
	Reason string
	Line   int
}

func (e BadLiteral) Error() string {
	return fmt.Sprintf("malformed literal %s: %s", e.Lexeme, e.Reason)
}

type AlreadyDeclared struct {
	Name  string
	Scope string
	Line  int
}

func (e AlreadyDeclared) Error() string {
	return fmt.Sprintf("'%s' already declared in scope %s (line %d)", e.Name, e.Scope, e.Line)
}

type TypeConflict struct {
	Name     string
	Existing types.DataType
	New      types.DataType
}

func (e TypeConflict) Error() string {
	return fmt.Sprintf("type conflict for '%s': declared %s, redeclared %s", e.Name, e.Existing, e.New)
}

type NotFound struct {
	Name string
}

func (e NotFound) Error() string {
	return fmt.Sprintf("undeclared name '%s'", e.Name)
}
