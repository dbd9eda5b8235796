package bytecode

import (
	"strings"
	"testing"
)

func TestAllOpcodesHaveMetadata(t *testing.T) {
	for _, op := range AllOpcodes() {
		info := GetOpcodeInfo(op)
		if info.Name == "" || strings.HasPrefix(info.Name, "UNKNOWN") {
			t.Errorf("Opcode %d has no metadata", op)
		}
	}
}

func TestOpcodeCount(t *testing.T) {
	count := OpcodeCount()
	if count < 110 {
		t.Errorf("Expected at least 110 opcodes, got %d", count)
	}
}

func TestOpcodeString(t *testing.T) {
	tests := []struct {
		op   Opcode
		want string
	}{
		{PopTop, "POP_TOP"},
		{RotTwo, "ROT_TWO"},
		{BinaryAdd, "BINARY_ADD"},
		{Slice2, "SLICE_2"},
		{StoreSlice3, "STORE_SLICE_3"},
		{StoreMap, "STORE_MAP"},
		{PrintItemTo, "PRINT_ITEM_TO"},
		{StoreName, "STORE_NAME"},
		{CompareOp, "COMPARE_OP"},
		{CallFunctionVarKw, "CALL_FUNCTION_VAR_KW"},
		{MapAdd, "MAP_ADD"},
	}

	for _, tt := range tests {
		got := tt.op.String()
		if got != tt.want {
			t.Errorf("Opcode(%d).String() = %q, want %q", tt.op, got, tt.want)
		}
	}
}

func TestUnknownOpcodeString(t *testing.T) {
	op := Opcode(200)
	got := op.String()
	if !strings.HasPrefix(got, "UNKNOWN") {
		t.Errorf("Unknown opcode should return UNKNOWN, got %q", got)
	}
}

func TestLookupNormalizesSliceNames(t *testing.T) {
	tests := []struct {
		name string
		want Opcode
	}{
		{"SLICE+0", Slice0},
		{"SLICE+3", Slice3},
		{"STORE_SLICE+1", StoreSlice1},
		{"delete_slice+2", DeleteSlice2},
		{"LOAD_FAST", LoadFast},
	}
	for _, tt := range tests {
		got, ok := Lookup(tt.name)
		if !ok || got != tt.want {
			t.Errorf("Lookup(%q) = %v, %v; want %v", tt.name, got, ok, tt.want)
		}
	}
	if _, ok := Lookup("JUMP_IF_MAYBE"); ok {
		t.Errorf("Lookup of an unknown mnemonic should fail")
	}
}

func TestNamesRoundTrip(t *testing.T) {
	for _, op := range AllOpcodes() {
		got, ok := Lookup(op.String())
		if !ok || got != op {
			t.Errorf("Lookup(%q) = %v, want %v", op.String(), got, op)
		}
	}
}

func TestHasArg(t *testing.T) {
	if PrintNewline.HasArg() {
		t.Errorf("PRINT_NEWLINE should not take an argument")
	}
	if !StoreName.HasArg() {
		t.Errorf("STORE_NAME should take an argument")
	}
}

func TestStackEffect(t *testing.T) {
	tests := []struct {
		op    Opcode
		oparg uint32
		pop   int
		push  int
	}{
		{BinaryAdd, 0, 2, 1},
		{InplaceAdd, 0, 2, 1},
		{BuildTuple, 3, 3, 1},
		{BuildSlice, 2, 2, 1},
		{UnpackSequence, 4, 1, 4},
		{DupTopX, 2, 2, 4},
		{CallFunction, 0x0102, 1 + 2 + 2, 1},
		{CallFunctionVarKw, 1, 3 + 1, 1},
		{RaiseVarargs, 3, 3, 0},
		{StoreSubscr, 0, 3, 0},
		{Slice3, 0, 3, 1},
	}
	for _, tt := range tests {
		pop, push := StackEffect(tt.op, tt.oparg)
		if pop != tt.pop || push != tt.push {
			t.Errorf("StackEffect(%s, %d) = (%d, %d), want (%d, %d)", tt.op, tt.oparg, pop, push, tt.pop, tt.push)
		}
	}
}

func TestCompareIndex(t *testing.T) {
	tests := []struct {
		mnemonic string
		want     uint32
	}{
		{"<", 0},
		{"==", 2},
		{"!=", 3},
		{"in", 6},
		{"not in", 7},
		{"is not", 9},
	}
	for _, tt := range tests {
		got, ok := CompareIndex(tt.mnemonic)
		if !ok || got != tt.want {
			t.Errorf("CompareIndex(%q) = %d, want %d", tt.mnemonic, got, tt.want)
		}
	}
}
