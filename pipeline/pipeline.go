// Package pipeline runs source text through every stage: tokens, tree,
// checked tree and finally the interpreter.
package pipeline

import (
	"fmt"

	"github.com/coreos/pkg/capnslog"
	"github.com/pontaoski/gox/ast"
	"github.com/pontaoski/gox/checker"
	"github.com/pontaoski/gox/errors"
	"github.com/pontaoski/gox/interp"
	"github.com/pontaoski/gox/lexer"
	"github.com/pontaoski/gox/parser"
	"github.com/pontaoski/gox/symtab"
	"github.com/pontaoski/gox/types"
)

var plog = capnslog.NewPackageLogger("github.com/pontaoski/gox", "pipeline")

// Policy decides whether a unit with diagnostics may still be interpreted.
type Policy int

const (
	// Strict refuses to interpret a unit with any diagnostic.
	Strict Policy = iota
	// Permissive interprets whatever tree the parser produced.
	Permissive
)

// ErrHasDiagnostics is returned by Run under Strict when compilation
// reported problems.
type ErrHasDiagnostics struct {
	Count int
}

func (e ErrHasDiagnostics) Error() string {
	return fmt.Sprintf("refusing to run: %d problem(s) found", e.Count)
}

// Unit is one compiled source text.
type Unit struct {
	Name        string
	Tokens      []types.Token
	Program     *ast.Program
	Scopes      *symtab.Table
	Diagnostics errors.List
}

// Compile tokenizes, parses and checks src. It never fails; everything that
// went wrong is in the unit's diagnostics, in phase order.
func Compile(name, src string) *Unit {
	u := &Unit{Name: name}

	toks, lexErrs := lexer.Tokenize(src)
	u.Tokens = toks
	u.Diagnostics.Extend(lexErrs)

	prog, synErrs := parser.Parse(toks)
	u.Program = prog
	u.Diagnostics.Extend(synErrs)

	scopes, semErrs := checker.CheckWithTable(prog)
	u.Scopes = scopes
	u.Diagnostics.Extend(semErrs)

	plog.Debugf("%s: %d tokens, %d statements, %d lexical, %d syntax, %d semantic diagnostics",
		name, len(toks), len(prog.Statements), len(lexErrs), len(synErrs), len(semErrs))
	return u
}

func (u *Unit) OK() bool {
	return len(u.Diagnostics) == 0
}

// Run interprets the unit with a fresh interpreter built from opts.
func Run(u *Unit, policy Policy, opts ...interp.Option) (interp.Value, error) {
	if policy == Strict && !u.OK() {
		return interp.Void, ErrHasDiagnostics{Count: len(u.Diagnostics)}
	}
	if !u.OK() {
		plog.Warningf("%s: running despite %d diagnostic(s)", u.Name, len(u.Diagnostics))
	}
	return interp.New(opts...).Run(u.Program)
}

// Diagnostics returns every problem in the unit plus the runtime error in
// err, if there is one.
func Diagnostics(u *Unit, err error) errors.List {
	out := append(errors.List(nil), u.Diagnostics...)
	if rt, ok := interp.AsRuntimeError(err); ok {
		out = append(out, rt.Diagnostic())
	}
	return out
}
