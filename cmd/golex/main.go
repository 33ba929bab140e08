// Command golex tokenizes text with a declarative rule set.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
)

// Globals are flags shared by every command.
type Globals struct {
	Config  string `help:"Path to YAML config file" type:"path"`
	Newline string `help:"Newline for newline rules and text output: lf, crlf or cr"`
}

type cli struct {
	Globals

	Tokenize tokenizeCmd `cmd:"" help:"Tokenize a file or standard input."`
	Check    checkCmd    `cmd:"" help:"Validate a rule-set file."`
}

// env carries the process streams so commands can be run from tests.
type env struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func main() {
	e := &env{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr}
	if err := run(os.Args[1:], e); err != nil {
		fmt.Fprintf(os.Stderr, "golex: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, e *env) error {
	var params cli
	parser, err := kong.New(&params,
		kong.Name("golex"),
		kong.Description("Pattern-driven tokenizer."),
		kong.Writers(e.stdout, e.stderr),
		kong.UsageOnError(),
	)
	if err != nil {
		return err
	}
	ctx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	return ctx.Run(&params.Globals, e)
}
