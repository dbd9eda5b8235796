package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/nalgeon/be"

	"github.com/chazu/pyrecon/decompiler"
)

const assignListing = `
1 LOAD_NAME a
  LOAD_CONST 1
  BINARY_ADD
  STORE_NAME b
`

// workspace chdirs into a fresh directory holding a pyrecon.toml.
func workspace(t *testing.T, config string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "pyrecon.toml"), []byte(config), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)
	return dir
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func runCLI(t *testing.T, stdin string, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = run(args, strings.NewReader(stdin), &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestDecompileFile(t *testing.T) {
	dir := workspace(t, "[log]\nverbosity = 0\n")
	path := writeFile(t, dir, "block.lst", assignListing)

	code, out, _ := runCLI(t, "", "decompile", path)
	be.Equal(t, code, 0)
	be.Equal(t, out, "(assign (targets (name \"b\" store)) (binop add (name \"a\" load) 1))\n")
}

func TestDecompileStdin(t *testing.T) {
	workspace(t, "")
	code, out, _ := runCLI(t, "LOAD_NAME x\nYIELD_VALUE\nPOP_TOP\n", "decompile", "-")
	be.Equal(t, code, 0)
	be.Equal(t, out, "(expr (yield (name \"x\" load)))\n; generator\n")
}

func TestDecompileError(t *testing.T) {
	dir := workspace(t, "")
	path := writeFile(t, dir, "bad.lst", "4 LOAD_NAME xs\n  GET_ITER\n")

	code, out, errOut := runCLI(t, "", "decompile", path)
	be.Equal(t, code, 1)
	be.Equal(t, out, "")
	be.True(t, strings.Contains(errOut, "unsupported opcode: GET_ITER at line 4"))
	be.True(t, strings.Contains(errOut, "stack:\n  0  (name \"xs\" load)"))
}

func TestDecompileTrace(t *testing.T) {
	dir := workspace(t, "")
	path := writeFile(t, dir, "block.lst", assignListing)

	code, out, _ := runCLI(t, "", "decompile", "-trace", path)
	be.Equal(t, code, 0)
	be.True(t, strings.HasPrefix(out, "(assign"))
}

func TestEncodeRoundTrip(t *testing.T) {
	dir := workspace(t, "")
	src := writeFile(t, dir, "block.lst", assignListing)
	bin := filepath.Join(dir, "block.cbor")
	back := filepath.Join(dir, "back.lst")

	code, _, _ := runCLI(t, "", "encode", "-o", bin, src)
	be.Equal(t, code, 0)

	code, out, _ := runCLI(t, "", "decompile", "-cbor", bin)
	be.Equal(t, code, 0)
	be.Equal(t, out, "(assign (targets (name \"b\" store)) (binop add (name \"a\" load) 1))\n")

	code, _, _ = runCLI(t, "", "encode", "-d", "-o", back, bin)
	be.Equal(t, code, 0)
	text, err := os.ReadFile(back)
	be.Err(t, err, nil)
	be.True(t, strings.Contains(string(text), "STORE_NAME"))

	code, out, _ = runCLI(t, "", "decompile", back)
	be.Equal(t, code, 0)
	be.True(t, strings.HasPrefix(out, "(assign"))
}

func TestNamesWithCache(t *testing.T) {
	dir := workspace(t, "[cache]\npath = \"state/cache.db\"\n")
	path := writeFile(t, dir, "block.lst", assignListing)

	for range 2 {
		code, out, _ := runCLI(t, "", "names", path)
		be.Equal(t, code, 0)
		be.Equal(t, out, "(reads \"a\") (writes \"b\") (deletes)\n")
	}
	_, err := os.Stat(filepath.Join(dir, "state", "cache.db"))
	be.Err(t, err, nil)
}

func TestNamesWithoutCache(t *testing.T) {
	dir := workspace(t, "[cache]\npath = \"\"\n")
	path := writeFile(t, dir, "block.lst", "DELETE_NAME gone\n")

	code, out, _ := runCLI(t, "", "names", path)
	be.Equal(t, code, 0)
	be.Equal(t, out, "(reads) (writes) (deletes \"gone\")\n")

	code, _, _ = runCLI(t, "", "names", "-no-cache", path)
	be.Equal(t, code, 0)
	_, err := os.Stat(filepath.Join(dir, ".pyrecon"))
	be.True(t, os.IsNotExist(err))
}

func TestUsageErrors(t *testing.T) {
	workspace(t, "")
	tests := []struct {
		name string
		args []string
		code int
	}{
		{"no command", nil, 2},
		{"unknown command", []string{"frob"}, 2},
		{"missing file", []string{"decompile"}, 2},
		{"bad flag", []string{"decompile", "-nope", "x"}, 2},
		{"encode without output", []string{"encode", "x.lst"}, 2},
		{"unreadable file", []string{"decompile", "does-not-exist.lst"}, 1},
		{"repl arguments", []string{"repl", "extra"}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, _ := runCLI(t, "", tt.args...)
			be.Equal(t, code, tt.code)
		})
	}

	code, out, _ := runCLI(t, "", "help")
	be.Equal(t, code, 0)
	be.True(t, strings.Contains(out, "Usage: pyrecon"))
}

func TestBadManifest(t *testing.T) {
	workspace(t, "[decompile]\nmax-depth = -3\n")
	code, _, errOut := runCLI(t, "", "decompile", "-")
	be.Equal(t, code, 1)
	be.True(t, strings.Contains(errOut, "max-depth must not be negative"))
}

func TestReplCommands(t *testing.T) {
	var out, errOut bytes.Buffer
	r := &repl{d: decompiler.New(decompiler.Options{}), out: &out, errOut: &errOut}

	be.True(t, !r.command("LOAD_NAME x\nSTORE_NAME y\n"))
	be.Equal(t, out.String(), "(assign (targets (name \"y\" store)) (name \"x\" load))\n")

	out.Reset()
	be.True(t, !r.command(":names"))
	be.True(t, !r.command("LOAD_NAME x\nSTORE_NAME y\n"))
	be.Equal(t, out.String(), "names output on\n"+
		"(assign (targets (name \"y\" store)) (name \"x\" load))\n"+
		"(reads \"x\") (writes \"y\") (deletes)\n")

	be.True(t, !r.command("BINARY_ADD\n"))
	be.True(t, strings.Contains(errOut.String(), "stack underflow"))

	errOut.Reset()
	be.True(t, !r.command("FROB\n"))
	be.True(t, strings.Contains(errOut.String(), "unknown opcode"))

	out.Reset()
	be.True(t, !r.command(":what"))
	be.True(t, strings.Contains(out.String(), "unknown command"))

	be.True(t, r.command(":quit"))
}

func TestWatchSignals(t *testing.T) {
	t.Run("done", func(t *testing.T) {
		done := make(chan struct{})
		called := false
		exited := watchSignals(make(chan os.Signal), done, func() { called = true })
		close(done)
		select {
		case <-exited:
		case <-time.After(time.Second):
			t.Fatal("watcher still running after done was closed")
		}
		be.True(t, !called)
	})

	t.Run("signal", func(t *testing.T) {
		sigc := make(chan os.Signal, 1)
		called := false
		exited := watchSignals(sigc, make(chan struct{}), func() { called = true })
		sigc <- syscall.SIGTERM
		select {
		case <-exited:
		case <-time.After(time.Second):
			t.Fatal("watcher ignored the signal")
		}
		be.True(t, called)
	})
}
