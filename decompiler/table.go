package decompiler

import (
	"github.com/chazu/pyrecon/pkg/bytecode"
	"github.com/chazu/pyrecon/pkg/pyast"
)

// handler folds one instruction into the state.
type handler func(s *state, in bytecode.Instruction)

// handlers is indexed by opcode. It is filled once by init and read-only
// afterwards. A nil entry is an unsupported opcode.
var handlers [256]handler

// binaryOps maps the BINARY_* and INPLACE_* families to their operator.
var binaryOps = map[bytecode.Opcode]pyast.Operator{
	bytecode.BinaryAdd:         pyast.Add,
	bytecode.BinarySubtract:    pyast.Sub,
	bytecode.BinaryMultiply:    pyast.Mult,
	bytecode.BinaryDivide:      pyast.Div,
	bytecode.BinaryTrueDivide:  pyast.Div,
	bytecode.BinaryFloorDivide: pyast.FloorDiv,
	bytecode.BinaryModulo:      pyast.Mod,
	bytecode.BinaryPower:       pyast.Pow,
	bytecode.BinaryLshift:      pyast.LShift,
	bytecode.BinaryRshift:      pyast.RShift,
	bytecode.BinaryAnd:         pyast.BitAnd,
	bytecode.BinaryOr:          pyast.BitOr,
	bytecode.BinaryXor:         pyast.BitXor,
}

var inplaceOps = map[bytecode.Opcode]pyast.Operator{
	bytecode.InplaceAdd:         pyast.Add,
	bytecode.InplaceSubtract:    pyast.Sub,
	bytecode.InplaceMultiply:    pyast.Mult,
	bytecode.InplaceDivide:      pyast.Div,
	bytecode.InplaceTrueDivide:  pyast.Div,
	bytecode.InplaceFloorDivide: pyast.FloorDiv,
	bytecode.InplaceModulo:      pyast.Mod,
	bytecode.InplacePower:       pyast.Pow,
	bytecode.InplaceLshift:      pyast.LShift,
	bytecode.InplaceRshift:      pyast.RShift,
	bytecode.InplaceAnd:         pyast.BitAnd,
	bytecode.InplaceOr:          pyast.BitOr,
	bytecode.InplaceXor:         pyast.BitXor,
}

var unaryOps = map[bytecode.Opcode]pyast.UnaryOperator{
	bytecode.UnaryNot:      pyast.Not,
	bytecode.UnaryNegative: pyast.USub,
	bytecode.UnaryPositive: pyast.UAdd,
	bytecode.UnaryInvert:   pyast.Invert,
}

// compareOps maps COMPARE_OP mnemonics to comparison operators.
// "exception match" has no expression form and is left out.
var compareOps = map[string]pyast.CmpOp{
	">=":     pyast.GtE,
	"<=":     pyast.LtE,
	">":      pyast.Gt,
	"<":      pyast.Lt,
	"==":     pyast.Eq,
	"!=":     pyast.NotEq,
	"in":     pyast.In,
	"not in": pyast.NotIn,
	"is":     pyast.Is,
	"is not": pyast.IsNot,
}

func init() {
	for op, operator := range binaryOps {
		handlers[op] = binary(operator)
	}
	for op, operator := range inplaceOps {
		handlers[op] = inplace(operator)
	}
	for op, operator := range unaryOps {
		handlers[op] = unary(operator)
	}

	register := func(h handler, ops ...bytecode.Opcode) {
		for _, op := range ops {
			handlers[op] = h
		}
	}

	// Expressions
	register(compareOp, bytecode.CompareOp)
	register(unaryConvert, bytecode.UnaryConvert)
	register(loadConst, bytecode.LoadConst)
	register(loadName, bytecode.LoadName, bytecode.LoadFast, bytecode.LoadGlobal, bytecode.LoadDeref)
	register(loadClosure, bytecode.LoadClosure)
	register(loadAttr, bytecode.LoadAttr)
	register(binarySubscr, bytecode.BinarySubscr)
	register(slice0, bytecode.Slice0)
	register(slice1, bytecode.Slice1)
	register(slice2, bytecode.Slice2)
	register(slice3, bytecode.Slice3)
	register(buildSlice, bytecode.BuildSlice)
	register(callFunction, bytecode.CallFunction)
	register(callFunctionVar, bytecode.CallFunctionVar)
	register(callFunctionKw, bytecode.CallFunctionKw)
	register(callFunctionVarKw, bytecode.CallFunctionVarKw)
	register(buildList, bytecode.BuildList)
	register(buildTuple, bytecode.BuildTuple)
	register(buildSet, bytecode.BuildSet)
	register(buildMap, bytecode.BuildMap)
	register(yieldValue, bytecode.YieldValue)

	// Targets
	register(storeName, bytecode.StoreName, bytecode.StoreFast, bytecode.StoreGlobal, bytecode.StoreDeref)
	register(storeAttr, bytecode.StoreAttr)
	register(storeSubscr, bytecode.StoreSubscr)
	register(storeSlice0, bytecode.StoreSlice0)
	register(storeSlice1, bytecode.StoreSlice1)
	register(storeSlice2, bytecode.StoreSlice2)
	register(storeSlice3, bytecode.StoreSlice3)
	register(deleteName, bytecode.DeleteName, bytecode.DeleteFast, bytecode.DeleteGlobal)
	register(deleteAttr, bytecode.DeleteAttr)
	register(deleteSubscr, bytecode.DeleteSubscr)
	register(deleteSlice0, bytecode.DeleteSlice0)
	register(deleteSlice1, bytecode.DeleteSlice1)
	register(deleteSlice2, bytecode.DeleteSlice2)
	register(deleteSlice3, bytecode.DeleteSlice3)
	register(unpackSequence, bytecode.UnpackSequence)

	// Imports
	register(importName, bytecode.ImportName)
	register(importFrom, bytecode.ImportFrom)
	register(importStar, bytecode.ImportStar)

	// Statements
	register(popTop, bytecode.PopTop)
	register(returnValue, bytecode.ReturnValue)
	register(printItem, bytecode.PrintItem)
	register(printNewline, bytecode.PrintNewline)
	register(printItemTo, bytecode.PrintItemTo)
	register(printNewlineTo, bytecode.PrintNewlineTo)
	register(raiseVarargs, bytecode.RaiseVarargs)
	register(execStmt, bytecode.ExecStmt)

	// Stack shuffles
	register(rotTwo, bytecode.RotTwo)
	register(rotThree, bytecode.RotThree)
	register(rotFour, bytecode.RotFour)
	register(dupTop, bytecode.DupTop)
	register(dupTopX, bytecode.DupTopX)
	register(nop, bytecode.Nop)
}

// Supported reports whether op has a handler.
func Supported(op bytecode.Opcode) bool {
	return handlers[op] != nil
}
