// Package mir defines the optimiser's output: HIR with builtins split
// into binary/ternary operation kinds, and room for operands to be
// folded directly into instructions ("immediates") rather than left on
// the stack (§3, §4.4).
package mir

import (
	"github.com/samuelsleight/catastrophic-go/internal/ast"
	"github.com/samuelsleight/catastrophic-go/internal/span"
)

// BinOp is a builtin that consumes exactly two operands.
type BinOp int

const (
	BinOpPlus BinOp = iota
	BinOpMinus
	BinOpMultiply
	BinOpDivide
	BinOpEquals
	BinOpGreaterThan
	BinOpLessThan
	BinOpRandom
)

// TriOp is a builtin that consumes exactly three operands.
type TriOp int

const (
	TriOpIfThenElse TriOp = iota
)

// FunctionKind discriminates Function.
type FunctionKind int

const (
	FunctionBlock FunctionKind = iota
	FunctionBinOp
	FunctionTriOp
)

// Function is a callable value, generalised from hir.Function with
// builtins split by arity.
type Function struct {
	Kind  FunctionKind
	Block int
	Bin   BinOp
	Tri   TriOp
}

func BlockFunction(idx int) Function { return Function{Kind: FunctionBlock, Block: idx} }
func BinFunction(op BinOp) Function  { return Function{Kind: FunctionBinOp, Bin: op} }
func TriFunction(op TriOp) Function  { return Function{Kind: FunctionTriOp, Tri: op} }

// ValueKind discriminates Value.
type ValueKind int

const (
	ValueArg ValueKind = iota
	ValueNumber
	ValueFunction
	ValueImmediateBinOp
	ValueImmediateTriOp
)

// Value generalises hir.Value with the two immediate-operation forms
// the optimiser's fixed-point pass introduces.
type Value struct {
	Kind     ValueKind
	Arg      int
	Number   int64
	Function Function

	Bin      BinOp
	Tri      TriOp
	Operands []*Value
}

func ArgValue(i int) Value           { return Value{Kind: ValueArg, Arg: i} }
func NumberValue(n int64) Value      { return Value{Kind: ValueNumber, Number: n} }
func FunctionValue(f Function) Value { return Value{Kind: ValueFunction, Function: f} }

// ImmediateBinOpValue folds a two-operand call into its operands.
func ImmediateBinOpValue(op BinOp, a, b Value) Value {
	return Value{Kind: ValueImmediateBinOp, Bin: op, Operands: []*Value{&a, &b}}
}

// ImmediateTriOpValue folds a three-operand call into its operands.
func ImmediateTriOpValue(op TriOp, a, b, c Value) Value {
	return Value{Kind: ValueImmediateTriOp, Tri: op, Operands: []*Value{&a, &b, &c}}
}

// InstrKind discriminates Instr.
type InstrKind int

const (
	InstrCommand InstrKind = iota
	InstrPush
	InstrImmediateCall
	InstrImmediateConditionalCall
)

// Instr generalises hir.Instr with the two fused call forms the
// optimiser's passes introduce (§4.4).
type Instr struct {
	Kind    InstrKind
	Command ast.Command
	Value   Value
	Call    Function

	// ImmediateConditionalCall fields.
	Cond *Value
	Then Function
	Else Function
}

func CommandInstr(c ast.Command) Instr { return Instr{Kind: InstrCommand, Command: c} }
func PushInstr(v Value) Instr          { return Instr{Kind: InstrPush, Value: v} }
func ImmediateCallInstr(f Function) Instr {
	return Instr{Kind: InstrImmediateCall, Call: f}
}
func ImmediateConditionalCallInstr(cond Value, then, els Function) Instr {
	return Instr{Kind: InstrImmediateConditionalCall, Cond: &cond, Then: then, Else: els}
}

// Block is one entry of the flat, optimised program.
type Block struct {
	Offset int
	Args   int
	Instrs []span.Span[Instr]
}
