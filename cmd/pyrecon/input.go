package main

import (
	"fmt"
	"io"
	"os"

	"github.com/chazu/pyrecon/pkg/bytecode"
	"github.com/chazu/pyrecon/wire"
)

// readInput reads the named file, or standard input for "-".
func (e *env) readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(e.stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	return data, nil
}

// loadInstructions reads a text or CBOR listing.
func (e *env) loadInstructions(path string, isCBOR bool) ([]bytecode.Instruction, error) {
	data, err := e.readInput(path)
	if err != nil {
		return nil, err
	}
	if isCBOR {
		instrs, err := wire.UnmarshalListing(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return instrs, nil
	}
	instrs, err := bytecode.ParseListing(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return instrs, nil
}

// oneFile checks a command received exactly one input argument.
func oneFile(cmd string, args []string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("usage: pyrecon %s [options] <file>", cmd)
	}
	return args[0], nil
}
