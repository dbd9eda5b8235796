package wire

import (
	"reflect"
	"strings"
	"testing"

	"github.com/fxamacker/cbor/v2"

	"github.com/chazu/pyrecon/decompiler"
	"github.com/chazu/pyrecon/pkg/bytecode"
)

const sample = `
1 LOAD_CONST None
  LOAD_CONST 'text'
  LOAD_CONST -7
  LOAD_CONST 2.5
  LOAD_CONST 1+2j
  LOAD_CONST (1, ('a', None), 3.0)
  BUILD_TUPLE 6
  STORE_NAME t
2 LOAD_NAME t
  LOAD_NAME u
  COMPARE_OP not in
  POP_TOP
`

func mustListing(t *testing.T, src string) []bytecode.Instruction {
	t.Helper()
	instrs, err := bytecode.ParseListing(src)
	if err != nil {
		t.Fatalf("ParseListing: %v", err)
	}
	return instrs
}

func TestListing_CBORRoundTrip(t *testing.T) {
	instrs := mustListing(t, sample)

	data, err := MarshalListing(instrs)
	if err != nil {
		t.Fatalf("MarshalListing: %v", err)
	}
	got, err := UnmarshalListing(data)
	if err != nil {
		t.Fatalf("UnmarshalListing: %v", err)
	}

	if !reflect.DeepEqual(got, instrs) {
		t.Errorf("round trip mismatch:\ngot  %v\nwant %v", got, instrs)
	}
	if got[10].Oparg != instrs[10].Oparg {
		t.Errorf("COMPARE_OP oparg: got %d, want %d", got[10].Oparg, instrs[10].Oparg)
	}
}

func TestEncodeArg_Kinds(t *testing.T) {
	tests := []struct {
		value any
		kind  ArgKind
	}{
		{nil, ArgNone},
		{"x", ArgString},
		{int64(0), ArgInt},
		{float64(0), ArgFloat},
		{complex(0, 1), ArgComplex},
		{[]any{}, ArgTuple},
	}
	for _, tt := range tests {
		a, err := EncodeArg(tt.value)
		if err != nil {
			t.Fatalf("EncodeArg(%v): %v", tt.value, err)
		}
		if a.Kind != tt.kind {
			t.Errorf("EncodeArg(%v).Kind = %d, want %d", tt.value, a.Kind, tt.kind)
		}
		v, err := a.Value()
		if err != nil {
			t.Fatalf("Value: %v", err)
		}
		if !reflect.DeepEqual(v, tt.value) {
			t.Errorf("Value() = %#v, want %#v", v, tt.value)
		}
	}

	// zero values must not collapse into another kind
	a, _ := EncodeArg(int64(0))
	data, err := cborEncMode.Marshal(a)
	if err != nil {
		t.Fatal(err)
	}
	var back Arg
	if err := cbor.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if v, _ := back.Value(); v != int64(0) {
		t.Errorf("decoded zero int = %#v", v)
	}
}

func TestEncodeArg_Unsupported(t *testing.T) {
	if _, err := EncodeArg(true); err == nil {
		t.Error("expected error for bool argument")
	}
	if _, err := EncodeArg([]any{"ok", struct{}{}}); err == nil {
		t.Error("expected error for nested unsupported argument")
	}
	if _, err := (Arg{Kind: 99}).Value(); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestHash(t *testing.T) {
	a := mustListing(t, sample)
	b := mustListing(t, sample)

	ha, err := Hash(a)
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	hb, err := Hash(b)
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if ha != hb {
		t.Error("equal listings hash differently")
	}

	b[0] = bytecode.MustNew("LOAD_CONST", int64(0))
	hc, err := Hash(b)
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if ha == hc {
		t.Error("different listings hash equal")
	}
}

func TestUnmarshalListing_Errors(t *testing.T) {
	good, err := NewListing(mustListing(t, "LOAD_NAME x\n"))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		mutate func(l *Listing)
		want   string
	}{
		{"version", func(l *Listing) { l.Version = 9 }, "unsupported listing version 9"},
		{"opcode mismatch", func(l *Listing) { l.Instructions[0].Op = uint8(bytecode.StoreName) }, "does not match name"},
		{"unknown name", func(l *Listing) { l.Instructions[0].Name = "FROB" }, "does not match name"},
		{"arg kind", func(l *Listing) { l.Instructions[0].Arg.Kind = 42 }, "unknown argument kind"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := *good
			l.Instructions = append([]Instruction(nil), good.Instructions...)
			tt.mutate(&l)
			data, err := cborEncMode.Marshal(&l)
			if err != nil {
				t.Fatal(err)
			}
			_, err = UnmarshalListing(data)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want %q", err, tt.want)
			}
		})
	}

	if _, err := UnmarshalListing([]byte{0xff, 0x00}); err == nil {
		t.Error("expected error for garbage input")
	}
}

func TestSummary_CBORRoundTrip(t *testing.T) {
	instrs := mustListing(t, `
1 LOAD_NAME x
  YIELD_VALUE
  STORE_NAME y
2 DELETE_NAME z
`)
	res, err := decompiler.Decompile(instrs)
	if err != nil {
		t.Fatalf("Decompile: %v", err)
	}
	hash, err := Hash(instrs)
	if err != nil {
		t.Fatal(err)
	}

	s := Summarize(hash, res)
	if s.SExpr != "(assign (targets (name \"y\" store)) (yield (name \"x\" load)))\n(delete (name \"z\" del))" {
		t.Errorf("SExpr = %q", s.SExpr)
	}
	if !s.SeenYield {
		t.Error("SeenYield = false, want true")
	}

	data, err := MarshalSummary(s)
	if err != nil {
		t.Fatalf("MarshalSummary: %v", err)
	}
	got, err := UnmarshalSummary(data)
	if err != nil {
		t.Fatalf("UnmarshalSummary: %v", err)
	}
	if !reflect.DeepEqual(got, s) {
		t.Errorf("summary mismatch:\ngot  %+v\nwant %+v", got, s)
	}

	names := got.Names()
	if !reflect.DeepEqual(names.Reads, []string{"x"}) ||
		!reflect.DeepEqual(names.Writes, []string{"y"}) ||
		!reflect.DeepEqual(names.Deletes, []string{"z"}) {
		t.Errorf("names = %+v", names)
	}
}

func TestSummary_EmptyNames(t *testing.T) {
	res, err := decompiler.Decompile(nil)
	if err != nil {
		t.Fatal(err)
	}
	data, err := MarshalSummary(Summarize([32]byte{}, res))
	if err != nil {
		t.Fatal(err)
	}
	got, err := UnmarshalSummary(data)
	if err != nil {
		t.Fatal(err)
	}
	names := got.Names()
	if names.Reads == nil || names.Writes == nil || names.Deletes == nil {
		t.Errorf("names should be non-nil: %+v", names)
	}
	if got.SExpr != "" {
		t.Errorf("SExpr = %q, want empty", got.SExpr)
	}
}
