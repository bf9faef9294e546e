package mir

import "testing"

func TestImmediateBinOpValueHoldsOperands(t *testing.T) {
	v := ImmediateBinOpValue(BinOpPlus, NumberValue(2), NumberValue(3))

	if v.Kind != ValueImmediateBinOp || v.Bin != BinOpPlus {
		t.Fatalf("v = %+v, want ValueImmediateBinOp/Plus", v)
	}
	if len(v.Operands) != 2 {
		t.Fatalf("Operands = %v, want 2 entries", v.Operands)
	}
	if v.Operands[0].Number != 2 || v.Operands[1].Number != 3 {
		t.Errorf("Operands = [%v, %v], want [2, 3]", v.Operands[0], v.Operands[1])
	}
}

func TestImmediateTriOpValueHoldsOperands(t *testing.T) {
	v := ImmediateTriOpValue(TriOpIfThenElse, NumberValue(1), NumberValue(2), NumberValue(3))

	if v.Kind != ValueImmediateTriOp || v.Tri != TriOpIfThenElse {
		t.Fatalf("v = %+v, want ValueImmediateTriOp/IfThenElse", v)
	}
	if len(v.Operands) != 3 {
		t.Fatalf("Operands = %v, want 3 entries", v.Operands)
	}
}

func TestImmediateConditionalCallInstrPreservesCondByValue(t *testing.T) {
	cond := NumberValue(1)
	instr := ImmediateConditionalCallInstr(cond, BlockFunction(1), BlockFunction(2))

	cond.Number = 99 // mutating the local after the call must not alias instr.Cond
	if instr.Cond.Number != 1 {
		t.Errorf("instr.Cond.Number = %d, want 1 (copied, not aliased)", instr.Cond.Number)
	}
	if instr.Then.Block != 1 || instr.Else.Block != 2 {
		t.Errorf("Then/Else = %d/%d, want 1/2", instr.Then.Block, instr.Else.Block)
	}
}
