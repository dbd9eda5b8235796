package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/peterh/liner"

	"github.com/chazu/pyrecon/analysis"
	"github.com/chazu/pyrecon/decompiler"
	"github.com/chazu/pyrecon/pkg/bytecode"
)

// ---------------------------------------------------------------------------
// pyrecon repl
// ---------------------------------------------------------------------------

const (
	historyFile = ".pyrecon_history"
	promptMain  = "pyrecon> "
	promptCont  = "     ... "
)

func (e *env) cmdRepl(args []string) int {
	if len(args) != 0 {
		fmt.Fprintln(e.stderr, "usage: pyrecon repl")
		return 2
	}
	e.configureLogging(e.manifest.Decompile.Trace)

	fmt.Fprintln(e.stdout, "Enter a listing; a blank line decompiles it. :help for commands.")

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	done := make(chan struct{})
	defer close(done)
	watchSignals(sigc, done, func() {
		ln.Close()
		os.Exit(130)
	})

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	r := &repl{d: decompiler.New(e.manifest.Options()), out: e.stdout, errOut: e.stderr}
	for {
		src, ok := readListing(ln)
		if !ok {
			fmt.Fprintln(e.stdout)
			return 0
		}
		if r.command(src) {
			return 0
		}
	}
}

// watchSignals runs onSignal if a signal arrives before done is closed.
// The returned channel is closed when the watcher exits.
func watchSignals(sigc <-chan os.Signal, done <-chan struct{}, onSignal func()) <-chan struct{} {
	exited := make(chan struct{})
	go func() {
		defer close(exited)
		select {
		case <-sigc:
			onSignal()
		case <-done:
		}
	}()
	return exited
}

// readListing prompts until a blank line ends the listing. A line starting
// with ':' is returned on its own.
func readListing(ln *liner.State) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			if b.Len() > 0 {
				return b.String(), true
			}
			return "", false
		}
		if err != nil {
			return "", false
		}

		trimmed := strings.TrimSpace(line)
		if b.Len() == 0 && strings.HasPrefix(trimmed, ":") {
			ln.AppendHistory(trimmed)
			return trimmed, true
		}
		if trimmed == "" {
			if b.Len() == 0 {
				continue
			}
			return b.String(), true
		}
		ln.AppendHistory(line)
		b.WriteString(line)
		b.WriteByte('\n')
	}
}

// repl holds the session state between listings.
type repl struct {
	d      *decompiler.Decompiler
	out    io.Writer
	errOut io.Writer
	names  bool
}

// command handles one input and reports whether the session should end.
func (r *repl) command(src string) (exit bool) {
	switch strings.ToLower(strings.TrimSpace(src)) {
	case ":quit", ":q":
		return true
	case ":help", ":h", ":?":
		fmt.Fprintln(r.out, "  <listing> + blank line   decompile")
		fmt.Fprintln(r.out, "  :names                   toggle read/write/delete output")
		fmt.Fprintln(r.out, "  :quit                    exit")
		return false
	case ":names":
		r.names = !r.names
		fmt.Fprintf(r.out, "names output %s\n", onOff(r.names))
		return false
	}
	if strings.HasPrefix(strings.TrimSpace(src), ":") {
		fmt.Fprintln(r.out, "unknown command. Type :help for commands.")
		return false
	}
	r.eval(src)
	return false
}

// eval decompiles one listing and prints the result.
func (r *repl) eval(src string) {
	instrs, err := bytecode.ParseListing(src)
	if err != nil {
		fmt.Fprintf(r.errOut, "Error: %v\n", err)
		return
	}
	res, err := r.d.Decompile(instrs)
	if err != nil {
		printDecompileError(r.errOut, err)
		return
	}
	printResult(r.out, res)
	if r.names {
		fmt.Fprintln(r.out, analysis.Analyze(res.Body).SExpr())
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
