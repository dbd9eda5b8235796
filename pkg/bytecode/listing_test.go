package bytecode

import (
	"math"
	"reflect"
	"strings"
	"testing"
)

func TestParseListing(t *testing.T) {
	src := `
# x = a + 1
3  LOAD_NAME     a
   LOAD_CONST    1
   BINARY_ADD
   STORE_NAME    x      # trailing comment
4  LOAD_CONST    'it''s'
`
	_, err := ParseListing(src)
	if err == nil {
		t.Fatalf("expected error for malformed string argument")
	}

	src = `
# x = a + 1
3  LOAD_NAME     a
   LOAD_CONST    1
   BINARY_ADD
   STORE_NAME    x      # trailing comment
4  LOAD_CONST    "a # b"
`
	instrs, err := ParseListing(src)
	if err != nil {
		t.Fatalf("ParseListing: %v", err)
	}
	if len(instrs) != 5 {
		t.Fatalf("got %d instructions, want 5", len(instrs))
	}

	tests := []struct {
		op    Opcode
		arg   any
		oparg uint32
		line  int
	}{
		{LoadName, "a", 0, 3},
		{LoadConst, int64(1), 1, 3},
		{BinaryAdd, nil, 0, 3},
		{StoreName, "x", 0, 3},
		{LoadConst, "a # b", 0, 4},
	}
	for i, tt := range tests {
		got := instrs[i]
		if got.Op != tt.op || !reflect.DeepEqual(got.Arg, tt.arg) || got.Oparg != tt.oparg || got.Line != tt.line {
			t.Errorf("instr %d = %+v, want op=%s arg=%#v oparg=%d line=%d", i, got, tt.op, tt.arg, tt.oparg, tt.line)
		}
		if got.Offset != i {
			t.Errorf("instr %d offset = %d", i, got.Offset)
		}
	}
}

func TestParseArguments(t *testing.T) {
	tests := []struct {
		text string
		want any
	}{
		{"LOAD_CONST None", nil},
		{"LOAD_CONST 'None'", "None"},
		{"LOAD_CONST -7", int64(-7)},
		{"LOAD_CONST 2.5", 2.5},
		{"LOAD_CONST 2j", complex(0, 2)},
		{"LOAD_CONST 1-3j", complex(1, -3)},
		{"LOAD_CONST ()", []any{}},
		{"LOAD_CONST ('a', 1, (None,))", []any{"a", int64(1), []any{nil}}},
		{"LOAD_CONST 'tab\\there'", "tab\there"},
		{"IMPORT_NAME os.path", "os.path"},
		{"COMPARE_OP not in", "not in"},
		{"SLICE+2", nil},
	}
	for _, tt := range tests {
		instrs, err := ParseListing(tt.text)
		if err != nil {
			t.Errorf("ParseListing(%q): %v", tt.text, err)
			continue
		}
		if !reflect.DeepEqual(instrs[0].Arg, tt.want) {
			t.Errorf("ParseListing(%q).Arg = %#v, want %#v", tt.text, instrs[0].Arg, tt.want)
		}
	}
}

func TestParseCompareOparg(t *testing.T) {
	instrs, err := ParseListing("COMPARE_OP is not")
	if err != nil {
		t.Fatal(err)
	}
	if instrs[0].Oparg != 9 {
		t.Errorf("oparg = %d, want 9", instrs[0].Oparg)
	}
	if _, err := ParseListing("COMPARE_OP ~="); err == nil {
		t.Errorf("expected error for unknown comparison")
	}
}

func TestParseListingErrors(t *testing.T) {
	tests := []string{
		"FROB x",
		"12",
		"LOAD_CONST (1, 2",
		"LOAD_CONST 'open",
		"LOAD_CONST 1 2",
		"LOAD_CONST 1.2.3",
	}
	for _, src := range tests {
		if _, err := ParseListing(src); err == nil {
			t.Errorf("ParseListing(%q) should fail", src)
		} else if !strings.Contains(err.Error(), "line 1") {
			t.Errorf("ParseListing(%q) error %q should name the line", src, err)
		}
	}
}

func TestFormatListingRoundTrip(t *testing.T) {
	instrs := []Instruction{
		MustNew("LOAD_CONST", "None").At(1),
		MustNew("LOAD_CONST", nil).At(1),
		MustNew("LOAD_CONST", []any{"x", int64(2), 1.0, complex(1, -2)}).At(1),
		MustNew("LOAD_CONST", []any{"solo"}).At(1),
		MustNew("COMPARE_OP", "not in").At(2),
		MustNew("LOAD_ATTR", "path").At(2),
		MustNew("SLICE+1", nil).At(2),
		MustNew("CALL_FUNCTION", 0x0102).At(3),
	}
	text := FormatListing(instrs)
	back, err := ParseListing(text)
	if err != nil {
		t.Fatalf("ParseListing(FormatListing(...)): %v\n%s", err, text)
	}
	if len(back) != len(instrs) {
		t.Fatalf("got %d instructions back, want %d", len(back), len(instrs))
	}
	for i := range instrs {
		want := instrs[i]
		want.Offset = i
		if !reflect.DeepEqual(back[i], want) {
			t.Errorf("instr %d = %+v, want %+v", i, back[i], want)
		}
	}
}

func TestInfiniteConstantsRoundTrip(t *testing.T) {
	instrs := []Instruction{
		MustNew("LOAD_CONST", math.Inf(1)),
		MustNew("LOAD_CONST", math.Inf(-1)),
		MustNew("LOAD_CONST", complex(math.Inf(1), 2)),
	}
	text := FormatListing(instrs)
	back, err := ParseListing(text)
	if err != nil {
		t.Fatalf("ParseListing(FormatListing(...)): %v\n%s", err, text)
	}
	for i := range instrs {
		if !reflect.DeepEqual(back[i].Arg, instrs[i].Arg) {
			t.Errorf("instr %d arg = %#v, want %#v\n%s", i, back[i].Arg, instrs[i].Arg, text)
		}
	}
}

func TestNaNConstantRejected(t *testing.T) {
	for _, arg := range []any{math.NaN(), complex(1, math.NaN()), []any{math.NaN()}} {
		if _, err := New("LOAD_CONST", arg); err == nil {
			t.Errorf("New(LOAD_CONST, %v): expected error", arg)
		}
	}
}

func TestInstructionString(t *testing.T) {
	tests := []struct {
		ins  Instruction
		want string
	}{
		{MustNew("POP_TOP", nil), "POP_TOP"},
		{MustNew("LOAD_NAME", "x"), "LOAD_NAME x"},
		{MustNew("LOAD_CONST", "x"), `LOAD_CONST "x"`},
		{MustNew("LOAD_CONST", nil), "LOAD_CONST None"},
		{MustNew("BUILD_TUPLE", 0), "BUILD_TUPLE 0"},
	}
	for _, tt := range tests {
		if got := tt.ins.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
