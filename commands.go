package main

import (
	"fmt"
	"io"
	"io/ioutil"
	"os"

	"github.com/alecthomas/repr"
	"github.com/pontaoski/gox/ast"
	"github.com/pontaoski/gox/errors"
	"github.com/pontaoski/gox/interp"
	"github.com/pontaoski/gox/lexer"
	"github.com/pontaoski/gox/pipeline"
	"github.com/pontaoski/gox/symtab"
	"github.com/pontaoski/gox/types"
	"github.com/urfave/cli/v2"
	"github.com/ztrue/tracerr"
	"gopkg.in/yaml.v2"
)

func readSource(c *cli.Context) (string, string, error) {
	file := c.Args().First()
	if file == "" {
		return "", "", cli.Exit("no source file provided", 2)
	}
	data, err := ioutil.ReadFile(file)
	if err != nil {
		return "", "", err
	}
	return file, string(data), nil
}

func report(w io.Writer, file string, diags errors.List) {
	for _, d := range diags {
		fmt.Fprintf(w, "%s: %s\n", file, d)
	}
}

// writeErrorLog replaces the log at path with diags, one per line. An empty
// path disables the log.
func writeErrorLog(path, file string, diags errors.List) error {
	if path == "" {
		return nil
	}
	fi, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating error log: %w", err)
	}
	defer fi.Close()

	report(fi, file, diags)
	plog.Debugf("wrote %d diagnostic(s) to %s", len(diags), path)
	return nil
}

func policyOf(s *settings) pipeline.Policy {
	if s.strict {
		return pipeline.Strict
	}
	return pipeline.Permissive
}

func runFile(c *cli.Context, s *settings) error {
	file, src, err := readSource(c)
	if err != nil {
		return err
	}

	u := pipeline.Compile(file, src)
	report(c.App.ErrWriter, file, u.Diagnostics)

	v, err := pipeline.Run(u, policyOf(s), interp.WithOutput(c.App.Writer))
	if lerr := writeErrorLog(s.errorLog, file, pipeline.Diagnostics(u, err)); lerr != nil {
		return lerr
	}

	if herr, ok := err.(pipeline.ErrHasDiagnostics); ok {
		return cli.Exit(herr.Error(), 1)
	}
	if rt, ok := interp.AsRuntimeError(err); ok {
		if s.trace {
			tracerr.PrintSourceColor(err)
		}
		report(c.App.ErrWriter, file, errors.List{rt.Diagnostic()})
		return cli.Exit("", 1)
	}
	if err != nil {
		return err
	}

	if v.Type != types.Void {
		plog.Infof("main returned %s %s", v.Type, v)
	}
	return nil
}

func checkFile(c *cli.Context, s *settings) error {
	file, src, err := readSource(c)
	if err != nil {
		return err
	}

	u := pipeline.Compile(file, src)
	report(c.App.ErrWriter, file, u.Diagnostics)
	if err := writeErrorLog(s.errorLog, file, u.Diagnostics); err != nil {
		return err
	}

	if c.Bool("scopes") {
		if err := u.Scopes.Dump(c.App.Writer, symtab.Global); err != nil {
			return err
		}
	}
	if !u.OK() {
		return cli.Exit(fmt.Sprintf("%s: %d problem(s)", file, len(u.Diagnostics)), 1)
	}
	fmt.Fprintf(c.App.Writer, "%s: ok\n", file)
	return nil
}

func dumpTokens(c *cli.Context, s *settings) error {
	file, src, err := readSource(c)
	if err != nil {
		return err
	}

	toks, errs := lexer.Tokenize(src)
	for _, tok := range toks {
		fmt.Fprintln(c.App.Writer, tok)
	}
	report(c.App.ErrWriter, file, errs)
	if err := writeErrorLog(s.errorLog, file, errs); err != nil {
		return err
	}
	if len(errs) != 0 {
		return cli.Exit("", 1)
	}
	return nil
}

func writeTree(w io.Writer, prog *ast.Program, format string) error {
	switch format {
	case "json":
		data, err := ast.ToJSON(prog)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "yaml":
		data, err := yaml.Marshal(ast.Export(prog))
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	case "repr":
		_, err := fmt.Fprintln(w, repr.String(prog, repr.Indent("  ")))
		return err
	}
	return cli.Exit(fmt.Sprintf("unknown format %q, want json, yaml or repr", format), 2)
}

func dumpAST(c *cli.Context, s *settings) error {
	file, src, err := readSource(c)
	if err != nil {
		return err
	}

	u := pipeline.Compile(file, src)
	report(c.App.ErrWriter, file, u.Diagnostics)
	if err := writeErrorLog(s.errorLog, file, u.Diagnostics); err != nil {
		return err
	}
	return writeTree(c.App.Writer, u.Program, c.String("format"))
}
