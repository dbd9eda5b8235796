package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/chazu/pyrecon/analysis"
	"github.com/chazu/pyrecon/cache"
	"github.com/chazu/pyrecon/decompiler"
)

// ---------------------------------------------------------------------------
// pyrecon names
// ---------------------------------------------------------------------------

func (e *env) cmdNames(args []string) int {
	fs := flag.NewFlagSet("names", flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	isCBOR := fs.Bool("cbor", false, "Input is a CBOR listing")
	noCache := fs.Bool("no-cache", false, "Do not read or write the summary cache")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	path, err := oneFile("names", fs.Args())
	if err != nil {
		fmt.Fprintln(e.stderr, err)
		return 2
	}

	e.configureLogging(e.manifest.Decompile.Trace)

	instrs, err := e.loadInstructions(path, *isCBOR)
	if err != nil {
		fmt.Fprintf(e.stderr, "Error: %v\n", err)
		return 1
	}
	d := decompiler.New(e.manifest.Options())

	dbPath := e.manifest.CachePath()
	if *noCache || dbPath == "" {
		res, err := d.Decompile(instrs)
		if err != nil {
			e.reportDecompileError(err)
			return 1
		}
		fmt.Fprintln(e.stdout, analysis.Analyze(res.Body).SExpr())
		return 0
	}

	ctx := context.Background()
	store, err := cache.Open(ctx, dbPath)
	if err != nil {
		fmt.Fprintf(e.stderr, "Error: %v\n", err)
		return 1
	}
	defer store.Close()

	sum, hit, err := store.Summarize(ctx, d, instrs)
	if err != nil {
		e.reportDecompileError(err)
		return 1
	}
	e.log.Infof("%s: cache hit=%t", path, hit)
	fmt.Fprintln(e.stdout, sum.Names().SExpr())
	return 0
}
