// Package pretty renders AST, HIR and MIR programs as indented text for
// the --pretty/--debug driver flags, following the teacher's formatter
// indent-tracking idiom (internal/formatter in the teacher repo) rather
// than Go's %#v dumps.
package pretty

import (
	"fmt"
	"strings"

	"github.com/samuelsleight/catastrophic-go/internal/ast"
	"github.com/samuelsleight/catastrophic-go/internal/hir"
	"github.com/samuelsleight/catastrophic-go/internal/mir"
)

// printer accumulates output with tracked indentation, mirroring the
// teacher's Formatter type.
type printer struct {
	out    strings.Builder
	indent int
}

func (p *printer) writeIndent() {
	p.out.WriteString(strings.Repeat("    ", p.indent))
}

func (p *printer) line(format string, args ...interface{}) {
	p.writeIndent()
	fmt.Fprintf(&p.out, format, args...)
	p.out.WriteString("\n")
}

// AST renders a parsed block tree.
func AST(top *ast.Block) string {
	p := &printer{}
	p.astBlock(top)
	return p.out.String()
}

func (p *printer) astBlock(b *ast.Block) {
	args := make([]string, len(b.Args))
	for i, a := range b.Args {
		args[i] = a.Data
	}
	p.line("block(%s) {", strings.Join(args, ", "))
	p.indent++

	for _, instr := range b.Instrs {
		p.astInstr(instr.Data)
	}

	p.indent--
	p.line("}")
}

func (p *printer) astInstr(i ast.Instruction) {
	switch i.Kind {
	case ast.InstructionCommand:
		p.line("%s", commandName(i.Command))
	case ast.InstructionPush:
		switch i.Value.Kind {
		case ast.InstrValueNumber:
			p.line("push %d", i.Value.Number)
		case ast.InstrValueIdent:
			p.line("push %s", i.Value.Ident)
		case ast.InstrValueBuiltin:
			p.line("push builtin(%s)", i.Value.Builtin)
		case ast.InstrValueBlock:
			p.line("push")
			p.indent++
			p.astBlock(i.Value.Block)
			p.indent--
		}
	}
}

func commandName(c ast.Command) string {
	switch c {
	case ast.CommandCall:
		return "call"
	case ast.CommandOutputChar:
		return "output_char"
	case ast.CommandOutputNumber:
		return "output_number"
	case ast.CommandInputChar:
		return "input_char"
	case ast.CommandInputNumber:
		return "input_number"
	default:
		return "command?"
	}
}

// HIR renders a flat, analysed HIR program.
func HIR(blocks []*hir.Block) string {
	p := &printer{}
	for i, b := range blocks {
		p.line("block %d (offset=%d, args=%d) {", i, b.Offset, b.Args)
		p.indent++
		for _, instr := range b.Instrs {
			p.hirInstr(instr.Data)
		}
		p.indent--
		p.line("}")
	}
	return p.out.String()
}

func (p *printer) hirInstr(i hir.Instr) {
	switch i.Kind {
	case hir.InstrCommand:
		p.line("%s", commandName(i.Command))
	case hir.InstrPush:
		p.line("push %s", hirValue(i.Value))
	}
}

func hirValue(v hir.Value) string {
	switch v.Kind {
	case hir.ValueArg:
		return fmt.Sprintf("arg(%d)", v.Arg)
	case hir.ValueNumber:
		return fmt.Sprintf("%d", v.Number)
	case hir.ValueFunction:
		return hirFunction(v.Function)
	default:
		return "?"
	}
}

func hirFunction(f hir.Function) string {
	if f.Kind == hir.FunctionBlock {
		return fmt.Sprintf("block(%d)", f.Block)
	}
	return fmt.Sprintf("builtin(%s)", f.Builtin)
}

// MIR renders an optimised MIR program, including the fused immediate
// forms the optimiser passes introduce.
func MIR(blocks []*mir.Block) string {
	p := &printer{}
	for i, b := range blocks {
		p.line("block %d (offset=%d, args=%d) {", i, b.Offset, b.Args)
		p.indent++
		for _, instr := range b.Instrs {
			p.mirInstr(instr.Data)
		}
		p.indent--
		p.line("}")
	}
	return p.out.String()
}

func (p *printer) mirInstr(i mir.Instr) {
	switch i.Kind {
	case mir.InstrCommand:
		p.line("%s", commandName(i.Command))
	case mir.InstrPush:
		p.line("push %s", mirValue(i.Value))
	case mir.InstrImmediateCall:
		p.line("immediate_call %s", mirFunction(i.Call))
	case mir.InstrImmediateConditionalCall:
		p.line("immediate_conditional_call %s ? %s : %s", mirValue(*i.Cond), mirFunction(i.Then), mirFunction(i.Else))
	}
}

func mirValue(v mir.Value) string {
	switch v.Kind {
	case mir.ValueArg:
		return fmt.Sprintf("arg(%d)", v.Arg)
	case mir.ValueNumber:
		return fmt.Sprintf("%d", v.Number)
	case mir.ValueFunction:
		return mirFunction(v.Function)
	case mir.ValueImmediateBinOp:
		return fmt.Sprintf("(%s %s %s)", mirValue(*v.Operands[0]), binOpName(v.Bin), mirValue(*v.Operands[1]))
	case mir.ValueImmediateTriOp:
		return fmt.Sprintf("(%s ? %s : %s)", mirValue(*v.Operands[0]), mirValue(*v.Operands[1]), mirValue(*v.Operands[2]))
	default:
		return "?"
	}
}

func mirFunction(f mir.Function) string {
	switch f.Kind {
	case mir.FunctionBlock:
		return fmt.Sprintf("block(%d)", f.Block)
	case mir.FunctionBinOp:
		return fmt.Sprintf("builtin(%s)", binOpName(f.Bin))
	default:
		return "builtin(?)"
	}
}

func binOpName(b mir.BinOp) string {
	switch b {
	case mir.BinOpPlus:
		return "+"
	case mir.BinOpMinus:
		return "-"
	case mir.BinOpMultiply:
		return "*"
	case mir.BinOpDivide:
		return "/"
	case mir.BinOpEquals:
		return "="
	case mir.BinOpGreaterThan:
		return ">"
	case mir.BinOpLessThan:
		return "<"
	case mir.BinOpRandom:
		return "random"
	default:
		return "?"
	}
}
