// Package optimiser lowers HIR to MIR and runs the ordered, optionally
// skippable pass pipeline described in §4.4: immediate calls, immediate
// operations (to a fixed point) and immediate conditional calls.
package optimiser

import (
	"github.com/samuelsleight/catastrophic-go/internal/ast"
	"github.com/samuelsleight/catastrophic-go/internal/hir"
	"github.com/samuelsleight/catastrophic-go/internal/mir"
	"github.com/samuelsleight/catastrophic-go/internal/span"
)

// PassName identifies one optimiser pass for --skip-pass / --list passes.
type PassName string

const (
	PassImmediateCalls            PassName = "immediate-calls"
	PassImmediateOperations       PassName = "immediate-operations"
	PassImmediateConditionalCalls PassName = "immediate-conditional-calls"
)

// Passes is the ordered list the pipeline exposes for introspection.
var Passes = []PassName{
	PassImmediateCalls,
	PassImmediateOperations,
	PassImmediateConditionalCalls,
}

// Level selects whether any pass runs at all.
type Level int

const (
	LevelAll Level = iota
	LevelNone
)

// Options configures which passes run; Skip names passes to omit even
// under LevelAll (§4.4 "optionally skippable by name").
type Options struct {
	Level Level
	Skip  map[PassName]bool
}

// Default runs every pass.
func Default() Options { return Options{Level: LevelAll, Skip: make(map[PassName]bool)} }

func (o Options) enabled(name PassName) bool {
	if o.Level == LevelNone {
		return false
	}
	return !o.Skip[name]
}

// convertBuiltin maps a HIR builtin to its MIR operator kind.
func convertBuiltin(b ast.Builtin) mir.Function {
	switch b {
	case ast.BuiltinIfThenElse:
		return mir.TriFunction(mir.TriOpIfThenElse)
	default:
		return mir.BinFunction(convertBinOp(b))
	}
}

func convertBinOp(b ast.Builtin) mir.BinOp {
	switch b {
	case ast.BuiltinPlus:
		return mir.BinOpPlus
	case ast.BuiltinMinus:
		return mir.BinOpMinus
	case ast.BuiltinMultiply:
		return mir.BinOpMultiply
	case ast.BuiltinDivide:
		return mir.BinOpDivide
	case ast.BuiltinEquals:
		return mir.BinOpEquals
	case ast.BuiltinGreaterThan:
		return mir.BinOpGreaterThan
	case ast.BuiltinLessThan:
		return mir.BinOpLessThan
	case ast.BuiltinRandom:
		return mir.BinOpRandom
	default:
		panic("optimiser: not a binary builtin")
	}
}

func convertFunction(f hir.Function) mir.Function {
	if f.Kind == hir.FunctionBlock {
		return mir.BlockFunction(f.Block)
	}
	return convertBuiltin(f.Builtin)
}

func convertValue(v hir.Value) mir.Value {
	switch v.Kind {
	case hir.ValueArg:
		return mir.ArgValue(v.Arg)
	case hir.ValueNumber:
		return mir.NumberValue(v.Number)
	case hir.ValueFunction:
		return mir.FunctionValue(convertFunction(v.Function))
	default:
		panic("optimiser: unreachable value kind")
	}
}

func convertInstr(i hir.Instr) mir.Instr {
	switch i.Kind {
	case hir.InstrCommand:
		return mir.CommandInstr(i.Command)
	case hir.InstrPush:
		return mir.PushInstr(convertValue(i.Value))
	default:
		panic("optimiser: unreachable instr kind")
	}
}

// Convert lowers a flat HIR program to MIR, 1:1 per instruction, without
// running any pass.
func Convert(blocks []*hir.Block) []*mir.Block {
	out := make([]*mir.Block, len(blocks))
	for i, b := range blocks {
		instrs := make([]span.Span[mir.Instr], len(b.Instrs))
		for j, instr := range b.Instrs {
			instrs[j] = span.With(instr, convertInstr(instr.Data))
		}
		out[i] = &mir.Block{Offset: b.Offset, Args: b.Args, Instrs: instrs}
	}
	return out
}

// Optimise converts HIR to MIR and runs the enabled passes over each
// block's instruction list.
func Optimise(blocks []*hir.Block, opts Options) []*mir.Block {
	out := Convert(blocks)
	for _, b := range out {
		b.Instrs = runPasses(b.Instrs, opts)
	}
	return out
}

func runPasses(instrs []span.Span[mir.Instr], opts Options) []span.Span[mir.Instr] {
	if opts.enabled(PassImmediateCalls) {
		instrs = immediateCalls(instrs)
	}
	if opts.enabled(PassImmediateOperations) {
		instrs = immediateOperations(instrs)
	}
	if opts.enabled(PassImmediateConditionalCalls) {
		instrs = immediateConditionalCalls(instrs)
	}
	return instrs
}

func joinSpan(a, b span.Span[struct{}]) span.Span[struct{}] {
	return span.Span[struct{}]{Start: a.Start, End: b.End}
}

func pushedFunction(i mir.Instr) (mir.Function, bool) {
	if i.Kind == mir.InstrPush && i.Value.Kind == mir.ValueFunction {
		return i.Value.Function, true
	}
	return mir.Function{}, false
}

func isCall(i mir.Instr) bool {
	return i.Kind == mir.InstrCommand && i.Command == ast.CommandCall
}

// immediateCalls fuses `Push(Function(f)); Call` into `ImmediateCall(f)`.
func immediateCalls(instrs []span.Span[mir.Instr]) []span.Span[mir.Instr] {
	out := make([]span.Span[mir.Instr], 0, len(instrs))
	for _, instr := range instrs {
		if isCall(instr.Data) && len(out) > 0 {
			prev := out[len(out)-1]
			if f, ok := pushedFunction(prev.Data); ok {
				out[len(out)-1] = span.With(joinSpan(prev.Void(), instr.Void()), mir.ImmediateCallInstr(f))
				continue
			}
		}
		out = append(out, instr)
	}
	return out
}

func pushedValue(i mir.Instr) (mir.Value, bool) {
	if i.Kind == mir.InstrPush {
		return i.Value, true
	}
	return mir.Value{}, false
}

// immediateOperations folds `Push(v1); Push(v2); ImmediateCall(BinOp)` and
// the three-operand TriOp analogue into a single Push(Immediate*Op), to a
// fixed point: each rewrite may expose a new fusable triple.
func immediateOperations(instrs []span.Span[mir.Instr]) []span.Span[mir.Instr] {
	for {
		next, changed := immediateOperationsPass(instrs)
		instrs = next
		if !changed {
			return instrs
		}
	}
}

func immediateOperationsPass(instrs []span.Span[mir.Instr]) ([]span.Span[mir.Instr], bool) {
	out := make([]span.Span[mir.Instr], 0, len(instrs))
	changed := false

	for _, instr := range instrs {
		if instr.Data.Kind == mir.InstrImmediateCall && len(out) >= 2 {
			call := instr.Data.Call
			if call.Kind == mir.FunctionBinOp {
				p2 := out[len(out)-1]
				p1 := out[len(out)-2]
				v1, ok1 := pushedValue(p1.Data)
				v2, ok2 := pushedValue(p2.Data)
				if ok1 && ok2 {
					sp := joinSpan(joinSpan(p1.Void(), p2.Void()), instr.Void())
					out = out[:len(out)-2]
					out = append(out, span.With(sp, mir.PushInstr(mir.ImmediateBinOpValue(call.Bin, v1, v2))))
					changed = true
					continue
				}
			}
		}

		if instr.Data.Kind == mir.InstrImmediateCall && len(out) >= 3 {
			call := instr.Data.Call
			if call.Kind == mir.FunctionTriOp {
				p3 := out[len(out)-1]
				p2 := out[len(out)-2]
				p1 := out[len(out)-3]
				v1, ok1 := pushedValue(p1.Data)
				v2, ok2 := pushedValue(p2.Data)
				v3, ok3 := pushedValue(p3.Data)
				if ok1 && ok2 && ok3 {
					sp := joinSpan(joinSpan(p1.Void(), p3.Void()), instr.Void())
					out = out[:len(out)-3]
					out = append(out, span.With(sp, mir.PushInstr(mir.ImmediateTriOpValue(call.Tri, v1, v2, v3))))
					changed = true
					continue
				}
			}
		}

		out = append(out, instr)
	}

	return out, changed
}

// immediateConditionalCalls fuses `Push(ImmediateTriOp(IfThenElse, cond,
// Function(a), Function(b))); Call` into `ImmediateConditionalCall(cond,
// a, b)`.
func immediateConditionalCalls(instrs []span.Span[mir.Instr]) []span.Span[mir.Instr] {
	out := make([]span.Span[mir.Instr], 0, len(instrs))
	for _, instr := range instrs {
		if isCall(instr.Data) && len(out) > 0 {
			prev := out[len(out)-1]
			if v, ok := pushedValue(prev.Data); ok && v.Kind == mir.ValueImmediateTriOp && v.Tri == mir.TriOpIfThenElse {
				cond := *v.Operands[0]
				thenVal := *v.Operands[1]
				elseVal := *v.Operands[2]
				if thenVal.Kind == mir.ValueFunction && elseVal.Kind == mir.ValueFunction {
					sp := joinSpan(prev.Void(), instr.Void())
					out[len(out)-1] = span.With(sp, mir.ImmediateConditionalCallInstr(cond, thenVal.Function, elseVal.Function))
					continue
				}
			}
		}
		out = append(out, instr)
	}
	return out
}
