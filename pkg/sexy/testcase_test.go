package sexy

import (
	"testing"

	"github.com/nalgeon/be"
)

const fence = "```"

func TestExtractTestCases_BasicTest(t *testing.T) {
	markdown := `# Stores

## Test: assign constant
` + fence + `listing
1 LOAD_CONST 'hello'
  STORE_NAME y
` + fence + `
` + fence + `ast
(assign (targets (name "y" store)) "hello")
` + fence + `
` + fence + `names
(reads) (writes "y") (deletes)
` + fence + `

## Test: unknown opcode
` + fence + `listing
FROB
` + fence + `
` + fence + `error
unknown opcode
` + fence

	testCases, err := ExtractTestCases(markdown)
	be.Err(t, err, nil)
	be.Equal(t, len(testCases), 2)

	tc1 := testCases[0]
	be.Equal(t, tc1.Name, "assign constant")
	be.Equal(t, tc1.Input, "1 LOAD_CONST 'hello'\n  STORE_NAME y")
	be.Equal(t, tc1.InputType, InputTypeListing)
	be.Equal(t, len(tc1.Assertions), 2)
	be.Equal(t, tc1.Assertions[0].Type, AssertionTypeAST)
	be.Equal(t, tc1.Assertions[0].Parsed[0].String(), `(assign (targets (name "y" store)) "hello")`)
	be.Equal(t, tc1.Assertions[1].Type, AssertionTypeNames)
	be.Equal(t, len(tc1.Assertions[1].Parsed), 3)

	tc2 := testCases[1]
	be.Equal(t, tc2.Assertions[0].Type, AssertionTypeError)
	be.Equal(t, tc2.Assertions[0].Content, "unknown opcode")
	be.True(t, tc2.Assertions[0].Parsed == nil)
}

func TestExtractTestCases_NoTestCases(t *testing.T) {
	testCases, err := ExtractTestCases("# Notes\n\nJust prose.\n")
	be.Err(t, err, nil)
	be.Equal(t, len(testCases), 0)
}

func TestExtractTestCases_Errors(t *testing.T) {
	tests := []struct {
		name     string
		markdown string
		want     string
	}{
		{"fence outside test", fence + "listing\nNOP\n" + fence, "outside of test case"},
		{"missing input", "## Test: x\n" + fence + "ast\n(expr 1)\n" + fence, "has no input fence"},
		{"missing assertion", "## Test: x\n" + fence + "listing\nNOP\n" + fence, "has no assertion fences"},
		{"unknown fence", "## Test: x\n" + fence + "python\nx = 1\n" + fence, "unknown fence language"},
		{"bad sexpr", "## Test: x\n" + fence + "listing\nNOP\n" + fence + "\n" + fence + "ast\n(expr\n" + fence, "failed to parse assertion"},
		{"two inputs", "## Test: x\n" + fence + "listing\nNOP\n" + fence + "\n" + fence + "listing\nNOP\n" + fence, "multiple input fences"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ExtractTestCases(tt.markdown)
			be.Err(t, err, tt.want)
		})
	}
}

func TestExtractTestCases_UntaggedFenceIsCommentary(t *testing.T) {
	markdown := "## Test: x\n" + fence + "\nx = 1\n" + fence + "\n" + fence + "listing\nNOP\n" + fence + "\n" + fence + "ast\n...\n" + fence
	testCases, err := ExtractTestCases(markdown)
	be.Err(t, err, nil)
	be.Equal(t, testCases[0].Input, "NOP")
}
