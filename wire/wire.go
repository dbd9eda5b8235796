// Package wire is the CBOR interchange format for instruction listings and
// decompiled block summaries. Encoding is canonical, so equal listings
// produce equal bytes and equal content hashes.
package wire

import (
	"crypto/sha256"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/chazu/pyrecon/analysis"
	"github.com/chazu/pyrecon/decompiler"
	"github.com/chazu/pyrecon/pkg/bytecode"
	"github.com/chazu/pyrecon/pkg/pyast"
)

// Version is written into every listing and summary.
const Version = 1

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("wire: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// ArgKind tags the dynamic type of an encoded argument.
type ArgKind uint8

const (
	ArgNone ArgKind = iota
	ArgString
	ArgInt
	ArgFloat
	ArgComplex
	ArgTuple
)

// Arg is an instruction argument. CBOR has no complex numbers and decodes
// untyped integers and floats ambiguously, so the kind is explicit.
type Arg struct {
	Kind  ArgKind `cbor:"1,keyasint"`
	Str   string  `cbor:"2,keyasint,omitempty"`
	Int   int64   `cbor:"3,keyasint,omitempty"`
	Real  float64 `cbor:"4,keyasint,omitempty"`
	Imag  float64 `cbor:"5,keyasint,omitempty"`
	Elems []Arg   `cbor:"6,keyasint,omitempty"`
}

// Instruction is the encoded form of a bytecode.Instruction. Offsets are
// implied by position.
type Instruction struct {
	Op    uint8  `cbor:"1,keyasint"`
	Name  string `cbor:"2,keyasint"`
	Arg   Arg    `cbor:"3,keyasint"`
	Oparg uint32 `cbor:"4,keyasint,omitempty"`
	Line  int    `cbor:"5,keyasint,omitempty"`
}

// Listing is one block of instructions.
type Listing struct {
	Version      uint8         `cbor:"1,keyasint"`
	Instructions []Instruction `cbor:"2,keyasint"`
}

// Summary is what the CLI prints and the cache stores for one block.
type Summary struct {
	Version   uint8    `cbor:"1,keyasint"`
	Hash      [32]byte `cbor:"2,keyasint"`
	SExpr     string   `cbor:"3,keyasint"`
	Reads     []string `cbor:"4,keyasint,omitempty"`
	Writes    []string `cbor:"5,keyasint,omitempty"`
	Deletes   []string `cbor:"6,keyasint,omitempty"`
	SeenYield bool     `cbor:"7,keyasint,omitempty"`
}

// EncodeArg converts a decoded argument to its wire form.
func EncodeArg(v any) (Arg, error) {
	switch v := v.(type) {
	case nil:
		return Arg{Kind: ArgNone}, nil
	case string:
		return Arg{Kind: ArgString, Str: v}, nil
	case int64:
		return Arg{Kind: ArgInt, Int: v}, nil
	case float64:
		return Arg{Kind: ArgFloat, Real: v}, nil
	case complex128:
		return Arg{Kind: ArgComplex, Real: real(v), Imag: imag(v)}, nil
	case []any:
		elems := make([]Arg, len(v))
		for i, e := range v {
			a, err := EncodeArg(e)
			if err != nil {
				return Arg{}, err
			}
			elems[i] = a
		}
		return Arg{Kind: ArgTuple, Elems: elems}, nil
	}
	return Arg{}, fmt.Errorf("wire: unsupported argument type %T", v)
}

// Value converts a wire argument back to the decoded form.
func (a Arg) Value() (any, error) {
	switch a.Kind {
	case ArgNone:
		return nil, nil
	case ArgString:
		return a.Str, nil
	case ArgInt:
		return a.Int, nil
	case ArgFloat:
		return a.Real, nil
	case ArgComplex:
		return complex(a.Real, a.Imag), nil
	case ArgTuple:
		out := make([]any, len(a.Elems))
		for i, e := range a.Elems {
			v, err := e.Value()
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	}
	return nil, fmt.Errorf("wire: unknown argument kind %d", a.Kind)
}

// NewListing converts instructions to their wire form.
func NewListing(instrs []bytecode.Instruction) (*Listing, error) {
	l := &Listing{Version: Version, Instructions: make([]Instruction, len(instrs))}
	for i, in := range instrs {
		arg, err := EncodeArg(in.Arg)
		if err != nil {
			return nil, fmt.Errorf("wire: instruction %d (%s): %w", i, in.Name, err)
		}
		l.Instructions[i] = Instruction{
			Op:    uint8(in.Op),
			Name:  in.Op.String(),
			Arg:   arg,
			Oparg: in.Oparg,
			Line:  in.Line,
		}
	}
	return l, nil
}

// Decode converts the listing back to instructions. Offsets are assigned
// by position.
func (l *Listing) Decode() ([]bytecode.Instruction, error) {
	if l.Version != Version {
		return nil, fmt.Errorf("wire: unsupported listing version %d", l.Version)
	}
	out := make([]bytecode.Instruction, len(l.Instructions))
	for i, w := range l.Instructions {
		op, ok := bytecode.Lookup(w.Name)
		if !ok || op != bytecode.Opcode(w.Op) {
			return nil, fmt.Errorf("wire: instruction %d: opcode %d does not match name %q", i, w.Op, w.Name)
		}
		arg, err := w.Arg.Value()
		if err != nil {
			return nil, fmt.Errorf("wire: instruction %d (%s): %w", i, w.Name, err)
		}
		out[i] = bytecode.Instruction{
			Op:     op,
			Name:   op.String(),
			Arg:    arg,
			Oparg:  w.Oparg,
			Line:   w.Line,
			Offset: i,
		}
	}
	return out, nil
}

// MarshalListing serializes instructions to CBOR bytes.
func MarshalListing(instrs []bytecode.Instruction) ([]byte, error) {
	l, err := NewListing(instrs)
	if err != nil {
		return nil, err
	}
	return cborEncMode.Marshal(l)
}

// UnmarshalListing deserializes instructions from CBOR bytes.
func UnmarshalListing(data []byte) ([]bytecode.Instruction, error) {
	var l Listing
	if err := cbor.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("wire: unmarshal listing: %w", err)
	}
	return l.Decode()
}

// Hash returns the content hash of a listing: the SHA-256 of its
// canonical encoding.
func Hash(instrs []bytecode.Instruction) ([32]byte, error) {
	data, err := MarshalListing(instrs)
	if err != nil {
		return [32]byte{}, err
	}
	return sha256.Sum256(data), nil
}

// Summarize builds the summary of a decompiled block.
func Summarize(hash [32]byte, res *decompiler.Result) *Summary {
	names := analysis.Analyze(res.Body)
	return &Summary{
		Version:   Version,
		Hash:      hash,
		SExpr:     pyast.SExprBlock(res.Body),
		Reads:     names.Reads,
		Writes:    names.Writes,
		Deletes:   names.Deletes,
		SeenYield: res.SeenYield,
	}
}

// Names returns the summary's name sets.
func (s *Summary) Names() analysis.Names {
	return analysis.Names{
		Reads:   nonNil(s.Reads),
		Writes:  nonNil(s.Writes),
		Deletes: nonNil(s.Deletes),
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// MarshalSummary serializes a Summary to CBOR bytes.
func MarshalSummary(s *Summary) ([]byte, error) {
	return cborEncMode.Marshal(s)
}

// UnmarshalSummary deserializes a Summary from CBOR bytes.
func UnmarshalSummary(data []byte) (*Summary, error) {
	var s Summary
	if err := cbor.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("wire: unmarshal summary: %w", err)
	}
	if s.Version != Version {
		return nil, fmt.Errorf("wire: unsupported summary version %d", s.Version)
	}
	return &s, nil
}
