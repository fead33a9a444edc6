package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/coreos/pkg/capnslog"
	"github.com/urfave/cli/v2"
	"github.com/ztrue/tracerr"
)

var plog = capnslog.NewPackageLogger("github.com/pontaoski/gox", "main")

func setupLogging(w io.Writer, level string) error {
	lvl, err := capnslog.ParseLevel(strings.ToUpper(level))
	if err != nil {
		return fmt.Errorf("bad log level %q: %w", level, err)
	}
	capnslog.SetFormatter(capnslog.NewPrettyFormatter(w, lvl >= capnslog.DEBUG))
	capnslog.SetGlobalLogLevel(lvl)
	return nil
}

func newApp(stdout, stderr io.Writer, configPath string) *cli.App {
	s := defaultSettings()

	return &cli.App{
		Name:      "gox",
		Usage:     "GoxLang checker and interpreter",
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "capnslog level: critical, error, warning, notice, info, debug, trace",
			},
			&cli.BoolFlag{
				Name:  "trace",
				Usage: "print a stack trace for runtime errors",
			},
			&cli.BoolFlag{
				Name:  "permissive",
				Usage: "interpret programs even when they have diagnostics",
			},
			&cli.StringFlag{
				Name:  "error-log",
				Usage: "write diagnostics to this file",
			},
		},
		Before: func(c *cli.Context) error {
			mod, err := loadModule(configPath)
			if err != nil {
				return err
			}
			s = mod.apply(defaultSettings())

			if c.IsSet("log-level") {
				s.logLevel = c.String("log-level")
			}
			if c.Bool("permissive") {
				s.strict = false
			}
			if c.IsSet("error-log") {
				s.errorLog = c.String("error-log")
			}
			s.trace = c.Bool("trace")

			return setupLogging(c.App.ErrWriter, s.logLevel)
		},
		Commands: []*cli.Command{
			{
				Name:      "init",
				Usage:     "write a " + configFile + " for a new project",
				ArgsUsage: "NAME",
				Action: func(c *cli.Context) error {
					name := c.Args().First()
					if name == "" {
						return cli.Exit("no project name provided", 2)
					}
					return writeModule(configPath, name)
				},
			},
			{
				Name:      "run",
				Usage:     "check and run a program",
				ArgsUsage: "FILE",
				Action: func(c *cli.Context) error {
					return runFile(c, &s)
				},
			},
			{
				Name:      "check",
				Usage:     "report lexical, syntax and semantic problems",
				ArgsUsage: "FILE",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "scopes",
						Usage: "dump the scope tree",
					},
				},
				Action: func(c *cli.Context) error {
					return checkFile(c, &s)
				},
			},
			{
				Name:      "tokens",
				Usage:     "print the token stream",
				ArgsUsage: "FILE",
				Action: func(c *cli.Context) error {
					return dumpTokens(c, &s)
				},
			},
			{
				Name:      "ast",
				Usage:     "print the checked syntax tree",
				ArgsUsage: "FILE",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "format",
						Value: "json",
						Usage: "json, yaml or repr",
					},
				},
				Action: func(c *cli.Context) error {
					return dumpAST(c, &s)
				},
			},
			{
				Name:  "repl",
				Usage: "read, check and evaluate statements interactively",
				Action: func(c *cli.Context) error {
					return runRepl(c, &s)
				},
			},
		},
	}
}

func main() {
	app := newApp(os.Stdout, os.Stderr, configFile)
	app.ExitErrHandler = func(c *cli.Context, err error) {
		if err == nil {
			return
		}
		if coder, ok := err.(cli.ExitCoder); ok {
			if msg := err.Error(); msg != "" {
				fmt.Fprintln(os.Stderr, msg)
			}
			os.Exit(coder.ExitCode())
		}
		if c.Bool("trace") {
			tracerr.PrintSourceColor(err)
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
	if err := app.Run(os.Args); err != nil {
		plog.Debugf("exit: %s", err)
		os.Exit(1)
	}
}
