// pyrecon CLI - decompile Python 2 bytecode listings into AST s-expressions
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/chazu/pyrecon/manifest"
)

// env is what every command runs against.
type env struct {
	stdin    io.Reader
	stdout   io.Writer
	stderr   io.Writer
	manifest *manifest.Manifest
	log      commonlog.Logger
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		usage(stderr)
		return 2
	}

	wd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	m, err := manifest.FindAndLoad(wd)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if m == nil {
		m = manifest.Default()
		m.Dir = wd
	}

	e := &env{
		stdin:    stdin,
		stdout:   stdout,
		stderr:   stderr,
		manifest: m,
		log:      commonlog.GetLogger("pyrecon.cli"),
	}

	switch args[0] {
	case "decompile":
		return e.cmdDecompile(args[1:])
	case "names":
		return e.cmdNames(args[1:])
	case "encode":
		return e.cmdEncode(args[1:])
	case "repl":
		return e.cmdRepl(args[1:])
	case "help", "-h", "--help":
		usage(stdout)
		return 0
	}
	fmt.Fprintf(stderr, "unknown command %q\n\n", args[0])
	usage(stderr)
	return 2
}

func usage(w io.Writer) {
	fmt.Fprintf(w, "Usage: pyrecon <command> [options] <file>\n\n")
	fmt.Fprintf(w, "Decompiles straight-line Python 2 bytecode listings.\n")
	fmt.Fprintf(w, "A file of \"-\" reads standard input.\n\n")
	fmt.Fprintf(w, "Commands:\n")
	fmt.Fprintf(w, "  decompile [-trace] [-cbor] <file>  Print the statements as s-expressions\n")
	fmt.Fprintf(w, "  names [-cbor] [-no-cache] <file>   Print the names the block reads, writes and deletes\n")
	fmt.Fprintf(w, "  encode [-d] -o <out> <file>        Convert a text listing to CBOR (-d: CBOR to text)\n")
	fmt.Fprintf(w, "  repl                               Enter listings interactively\n")
	fmt.Fprintf(w, "\nConfiguration is read from the nearest %s.\n", manifest.FileName)
}

// configureLogging sets up the commonlog backend. Tracing needs debug
// verbosity to be visible.
func (e *env) configureLogging(trace bool) {
	verbosity := e.manifest.Log.Verbosity
	if trace {
		verbosity = max(verbosity, 2)
	}
	var path *string
	if f := e.manifest.LogFile(); f != "" {
		path = &f
	}
	commonlog.Configure(verbosity, path)
}
