package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/chazu/pyrecon/pkg/bytecode"
	"github.com/chazu/pyrecon/wire"
)

// ---------------------------------------------------------------------------
// pyrecon encode
// ---------------------------------------------------------------------------

func (e *env) cmdEncode(args []string) int {
	fs := flag.NewFlagSet("encode", flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	out := fs.String("o", "", "Output file (required)")
	decode := fs.Bool("d", false, "Convert a CBOR listing back to text")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	path, err := oneFile("encode", fs.Args())
	if err != nil {
		fmt.Fprintln(e.stderr, err)
		return 2
	}
	if *out == "" {
		fmt.Fprintln(e.stderr, "encode: -o is required")
		return 2
	}

	e.configureLogging(false)

	instrs, err := e.loadInstructions(path, *decode)
	if err != nil {
		fmt.Fprintf(e.stderr, "Error: %v\n", err)
		return 1
	}

	var data []byte
	if *decode {
		data = []byte(bytecode.FormatListing(instrs))
	} else {
		data, err = wire.MarshalListing(instrs)
		if err != nil {
			fmt.Fprintf(e.stderr, "Error: %v\n", err)
			return 1
		}
	}

	if err := os.WriteFile(*out, data, 0o644); err != nil {
		fmt.Fprintf(e.stderr, "Error: cannot write %s: %v\n", *out, err)
		return 1
	}
	e.log.Infof("wrote %d instructions to %s", len(instrs), *out)
	return 0
}
