package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/pontaoski/gox/ast"
	"github.com/pontaoski/gox/errors"
	"github.com/pontaoski/gox/interp"
	"github.com/pontaoski/gox/lexer"
	"github.com/pontaoski/gox/pipeline"
	"github.com/pontaoski/gox/symtab"
	"github.com/pontaoski/gox/types"
	"github.com/urfave/cli/v2"
)

const (
	historyFile = ".gox_history"
	promptMain  = "gox> "
	promptCont  = "...> "
)

// session is the REPL state. Every input is checked together with all the
// inputs accepted before it, so earlier declarations stay visible, and only
// the new statements are executed.
type session struct {
	out   io.Writer
	in    *interp.Interpreter
	src   strings.Builder
	lines int
	stmts int
	last  *pipeline.Unit
}

func newSession(out io.Writer) *session {
	return &session{out: out, in: interp.New(interp.WithOutput(out))}
}

// feed runs one input. Diagnostic lines are relative to the input.
func (s *session) feed(input string) errors.List {
	input = terminate(input)

	u := pipeline.Compile("repl", s.src.String()+input+"\n")
	s.last = u
	if !u.OK() {
		return s.relative(u.Diagnostics)
	}

	// A runtime error still leaves the statements before it in effect, so
	// the input is committed either way and the next check sees them.
	fresh := &ast.Program{Statements: u.Program.Statements[s.stmts:]}
	err := s.in.Eval(fresh)
	var diags errors.List
	if err != nil {
		rt, ok := interp.AsRuntimeError(err)
		if !ok {
			rt = &interp.RuntimeError{Line: s.lines + 1, Message: err.Error()}
		}
		diags = s.relative(errors.List{rt.Diagnostic()})
	}

	s.src.WriteString(input + "\n")
	s.lines += strings.Count(input, "\n") + 1
	s.stmts = len(u.Program.Statements)
	return diags
}

func (s *session) relative(diags errors.List) errors.List {
	out := make(errors.List, len(diags))
	for i, d := range diags {
		d.Line -= s.lines
		out[i] = d
	}
	return out
}

func (s *session) scopes() error {
	if s.last == nil {
		return nil
	}
	return s.last.Scopes.Dump(s.out, symtab.Global)
}

// terminate adds the ';' a single statement typed without one is missing.
func terminate(input string) string {
	trimmed := strings.TrimSpace(input)
	toks, _ := lexer.Tokenize(trimmed)
	if len(toks) < 2 {
		return input
	}
	switch toks[len(toks)-2].Kind {
	case types.EOS, types.RBRACKET:
		return input
	}

	// A trailing line comment swallows a ';' on the same line.
	toks, _ = lexer.Tokenize(trimmed + ";")
	if len(toks) < 2 || toks[len(toks)-2].Kind != types.EOS {
		return trimmed + "\n;"
	}
	return trimmed + ";"
}

// incomplete reports whether src has an unclosed brace.
func incomplete(src string) bool {
	toks, _ := lexer.Tokenize(src)
	depth := 0
	for _, tok := range toks {
		switch tok.Kind {
		case types.LBRACKET:
			depth++
		case types.RBRACKET:
			depth--
		}
	}
	return depth > 0
}

func readInput(ln *liner.State) (string, bool) {
	var b strings.Builder

	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if err == io.EOF {
			return "", false
		}
		if err != nil {
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		if !incomplete(b.String()) {
			return b.String(), true
		}
	}
}

func runRepl(c *cli.Context, s *settings) error {
	w := c.App.Writer
	fmt.Fprintln(w, "gox repl. :scopes dumps the scope tree, :reset starts over, :quit exits.")

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		ln.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			ln.WriteHistory(f)
			f.Close()
		}
	}()

	sess := newSession(w)
	for {
		code, ok := readInput(ln)
		if !ok {
			fmt.Fprintln(w)
			return nil
		}

		switch strings.TrimSpace(code) {
		case "":
			continue
		case ":quit":
			return nil
		case ":reset":
			sess = newSession(w)
			continue
		case ":scopes":
			if err := sess.scopes(); err != nil {
				return err
			}
			continue
		}

		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))
		diags := sess.feed(code)
		if len(diags) == 0 {
			continue
		}
		report(c.App.ErrWriter, "repl", diags)
		if err := writeErrorLog(s.errorLog, "repl", diags); err != nil {
			return err
		}
	}
}
