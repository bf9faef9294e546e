package parser

import (
	"testing"

	"github.com/samuelsleight/catastrophic-go/internal/ast"
	"github.com/samuelsleight/catastrophic-go/internal/lexer"
	"github.com/samuelsleight/catastrophic-go/internal/span"
)

func parseSource(t *testing.T, src string) (*ast.Block, []error) {
	t.Helper()
	toks, err := lexer.New([]byte(src)).Tokenize()
	if err != nil {
		t.Fatalf("Tokenize(%q): %v", src, err)
	}
	return Parse(toks, false)
}

func TestParseSimpleAddition(t *testing.T) {
	block, errs := parseSource(t, "2 3 + () .")
	if len(errs) != 0 {
		t.Fatalf("errs = %v, want none", errs)
	}
	// The parser's operand stack is drained top-to-bottom when a block
	// closes, so the AST's instruction list ends up in the reverse of
	// source order (§9 "Reverse instruction emission").
	want := []ast.InstructionKind{ast.InstructionCommand, ast.InstructionCommand, ast.InstructionPush, ast.InstructionPush, ast.InstructionPush}
	if len(block.Instrs) != len(want) {
		t.Fatalf("Instrs = %+v, want %d entries", block.Instrs, len(want))
	}
	for i, k := range want {
		if block.Instrs[i].Data.Kind != k {
			t.Errorf("Instrs[%d].Kind = %v, want %v", i, block.Instrs[i].Data.Kind, k)
		}
	}
	if block.Instrs[0].Data.Command != ast.CommandOutputNumber {
		t.Errorf("Instrs[0].Command = %v, want CommandOutputNumber", block.Instrs[0].Data.Command)
	}
	if block.Instrs[1].Data.Command != ast.CommandCall {
		t.Errorf("Instrs[1].Command = %v, want CommandCall", block.Instrs[1].Data.Command)
	}
	if block.Instrs[2].Data.Value.Kind != ast.InstrValueBuiltin || block.Instrs[2].Data.Value.Builtin != ast.BuiltinPlus {
		t.Errorf("Instrs[2] = %+v, want Push(Builtin(+))", block.Instrs[2].Data)
	}
}

func TestParseRandomIdentBecomesBuiltin(t *testing.T) {
	block, errs := parseSource(t, "1 10 random")
	if len(errs) != 0 {
		t.Fatalf("errs = %v", errs)
	}
	// The AST list is in reverse source order, so the last-read token
	// ("random") is reduced first and ends up at index 0.
	first := block.Instrs[0]
	if first.Data.Kind != ast.InstructionPush || first.Data.Value.Kind != ast.InstrValueBuiltin || first.Data.Value.Builtin != ast.BuiltinRandom {
		t.Errorf("first instr = %+v, want Push(Builtin(random))", first.Data)
	}
}

func TestParseBlockWithArgsAndLabel(t *testing.T) {
	block, errs := parseSource(t, "double: x-> { x x + }")
	if len(errs) != 0 {
		t.Fatalf("errs = %v", errs)
	}
	sym, ok := block.Symbols["double"]
	if !ok {
		t.Fatal("expected symbol \"double\"")
	}
	if sym.Value.Data.Kind != ast.SymbolValueBlock {
		t.Fatalf("symbol kind = %v, want SymbolValueBlock", sym.Value.Data.Kind)
	}
	inner := sym.Value.Data.Block
	if len(inner.Args) != 1 || inner.Args[0].Data != "x" {
		t.Errorf("inner.Args = %+v, want [x]", inner.Args)
	}
}

func TestParseDuplicateSymbolSpans(t *testing.T) {
	_, errs := parseSource(t, "a: 5\na: 6")
	if len(errs) != 1 {
		t.Fatalf("errs = %v, want exactly one DuplicateSymbolError", errs)
	}
	dsErr, ok := errs[0].(*ast.DuplicateSymbolError)
	if !ok {
		t.Fatalf("errs[0] = %#v, want *ast.DuplicateSymbolError", errs[0])
	}
	if dsErr.First.Start != (span.Location{Line: 0, Column: 0}) {
		t.Errorf("First.Start = %v, want 0:0", dsErr.First.Start)
	}
	if dsErr.Duplicate.Start != (span.Location{Line: 1, Column: 0}) {
		t.Errorf("Duplicate.Start = %v, want 1:0", dsErr.Duplicate.Start)
	}
}

func TestParseArrowWithoutArg(t *testing.T) {
	_, errs := parseSource(t, "5 -> { }")
	if len(errs) != 1 {
		t.Fatalf("errs = %v, want one ArrowWithoutArg error", errs)
	}
	perr, ok := errs[0].(*Error)
	if !ok || perr.Kind != "ArrowWithoutArg" {
		t.Errorf("errs[0] = %#v, want ArrowWithoutArg", errs[0])
	}
}

func TestParseLabelWithoutName(t *testing.T) {
	_, errs := parseSource(t, "5 :")
	if len(errs) != 1 {
		t.Fatalf("errs = %v, want one LabelWithoutName error", errs)
	}
	if perr, ok := errs[0].(*Error); !ok || perr.Kind != "LabelWithoutName" {
		t.Errorf("errs[0] = %#v, want LabelWithoutName", errs[0])
	}
}

func TestParseBlockWithoutClosing(t *testing.T) {
	_, errs := parseSource(t, "x-> { x")
	if len(errs) != 1 {
		t.Fatalf("errs = %v, want one BlockWithoutClosing error", errs)
	}
	if perr, ok := errs[0].(*Error); !ok || perr.Kind != "BlockWithoutClosing" {
		t.Errorf("errs[0] = %#v, want BlockWithoutClosing", errs[0])
	}
}

func TestParseBlockClosedWithoutOpening(t *testing.T) {
	_, errs := parseSource(t, "}")
	if len(errs) != 1 {
		t.Fatalf("errs = %v, want one BlockClosedWithoutOpening error", errs)
	}
	if perr, ok := errs[0].(*Error); !ok || perr.Kind != "BlockClosedWithoutOpening" {
		t.Errorf("errs[0] = %#v, want BlockClosedWithoutOpening", errs[0])
	}
}

func TestParsePermissiveReturnsPartialBlock(t *testing.T) {
	toks, err := lexer.New([]byte("5 :")).Tokenize()
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	block, errs := Parse(toks, true)
	if block == nil {
		t.Fatal("permissive Parse returned a nil block")
	}
	if len(errs) == 0 {
		t.Fatal("expected errors alongside the partial block")
	}
}
