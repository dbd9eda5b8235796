package main

import (
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/chazu/pyrecon/decompiler"
	"github.com/chazu/pyrecon/pkg/pyast"
)

// ---------------------------------------------------------------------------
// pyrecon decompile
// ---------------------------------------------------------------------------

func (e *env) cmdDecompile(args []string) int {
	fs := flag.NewFlagSet("decompile", flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	trace := fs.Bool("trace", false, "Log every dispatched instruction")
	isCBOR := fs.Bool("cbor", false, "Input is a CBOR listing")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	path, err := oneFile("decompile", fs.Args())
	if err != nil {
		fmt.Fprintln(e.stderr, err)
		return 2
	}

	e.configureLogging(*trace || e.manifest.Decompile.Trace)

	instrs, err := e.loadInstructions(path, *isCBOR)
	if err != nil {
		fmt.Fprintf(e.stderr, "Error: %v\n", err)
		return 1
	}

	opts := e.manifest.Options()
	opts.Trace = opts.Trace || *trace
	res, err := decompiler.New(opts).Decompile(instrs)
	if err != nil {
		e.reportDecompileError(err)
		return 1
	}

	printResult(e.stdout, res)
	return 0
}

func printResult(w io.Writer, res *decompiler.Result) {
	for _, n := range res.Body {
		fmt.Fprintln(w, pyast.SExpr(n))
	}
	if res.SeenYield {
		fmt.Fprintln(w, "; generator")
	}
}

func (e *env) reportDecompileError(err error) {
	e.log.Errorf("%s", err)
	printDecompileError(e.stderr, err)
}

// printDecompileError prints the failure and, for engine errors, the stack
// at the point of failure.
func printDecompileError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %v\n", err)
	var derr *decompiler.Error
	if errors.As(err, &derr) && len(derr.Stack) > 0 {
		fmt.Fprintf(w, "stack:\n%s", derr.StackDump())
	}
}
