package pretty

import (
	"strings"
	"testing"

	"github.com/samuelsleight/catastrophic-go/internal/ast"
	"github.com/samuelsleight/catastrophic-go/internal/hir"
	"github.com/samuelsleight/catastrophic-go/internal/mir"
	"github.com/samuelsleight/catastrophic-go/internal/span"
)

func loc() span.Location { return span.Location{} }

func astInstr(i ast.Instruction) span.Span[ast.Instruction] {
	return span.New(loc(), loc(), i)
}

func TestASTRendersPushAndCommand(t *testing.T) {
	block := &ast.Block{
		Instrs: []span.Span[ast.Instruction]{
			astInstr(ast.PushInstr(ast.NumberValue(2))),
			astInstr(ast.PushInstr(ast.NumberValue(3))),
			astInstr(ast.PushInstr(ast.BuiltinValue(ast.BuiltinPlus))),
			astInstr(ast.CommandInstr(ast.CommandCall)),
		},
	}

	out := AST(block)
	for _, want := range []string{"push 2", "push 3", "push builtin(+)", "call"} {
		if !strings.Contains(out, want) {
			t.Errorf("AST() output missing %q, got:\n%s", want, out)
		}
	}
}

func hirInstr(i hir.Instr) span.Span[hir.Instr] { return span.New(loc(), loc(), i) }

func TestHIRRendersBlockHeaderAndArgs(t *testing.T) {
	blocks := []*hir.Block{
		{
			Offset: 0,
			Args:   1,
			Instrs: []span.Span[hir.Instr]{
				hirInstr(hir.PushInstr(hir.ArgValue(0))),
				hirInstr(hir.CommandInstr(ast.CommandOutputNumber)),
			},
		},
	}

	out := HIR(blocks)
	for _, want := range []string{"block 0 (offset=0, args=1)", "push arg(0)", "output_number"} {
		if !strings.Contains(out, want) {
			t.Errorf("HIR() output missing %q, got:\n%s", want, out)
		}
	}
}

func mirInstr(i mir.Instr) span.Span[mir.Instr] { return span.New(loc(), loc(), i) }

func TestMIRRendersImmediateForms(t *testing.T) {
	bin := mir.ImmediateBinOpValue(mir.BinOpPlus, mir.NumberValue(2), mir.NumberValue(3))
	cond := mir.NumberValue(1)

	blocks := []*mir.Block{
		{
			Offset: 0,
			Args:   0,
			Instrs: []span.Span[mir.Instr]{
				mirInstr(mir.PushInstr(bin)),
				mirInstr(mir.ImmediateConditionalCallInstr(cond, mir.BlockFunction(1), mir.BlockFunction(2))),
			},
		},
	}

	out := MIR(blocks)
	for _, want := range []string{"(2 + 3)", "immediate_conditional_call", "block(1)", "block(2)"} {
		if !strings.Contains(out, want) {
			t.Errorf("MIR() output missing %q, got:\n%s", want, out)
		}
	}
}
