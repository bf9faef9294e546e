// Package ast defines the block tree the parser assembles: a strict
// tree of lexical scopes carrying symbols, arguments and spanned
// instructions, consumed only by the analyser.
package ast

import "github.com/samuelsleight/catastrophic-go/internal/span"

// Builtin enumerates the first-class operations the language exposes
// without a user-defined block.
type Builtin int

const (
	BuiltinPlus Builtin = iota
	BuiltinMinus
	BuiltinMultiply
	BuiltinDivide
	BuiltinEquals
	BuiltinGreaterThan
	BuiltinLessThan
	BuiltinRandom
	BuiltinIfThenElse
)

func (b Builtin) String() string {
	switch b {
	case BuiltinPlus:
		return "+"
	case BuiltinMinus:
		return "-"
	case BuiltinMultiply:
		return "*"
	case BuiltinDivide:
		return "/"
	case BuiltinEquals:
		return "="
	case BuiltinGreaterThan:
		return ">"
	case BuiltinLessThan:
		return "<"
	case BuiltinRandom:
		return "random"
	case BuiltinIfThenElse:
		return "?"
	default:
		return "builtin?"
	}
}

// Command enumerates side-effecting, non-pushing instructions.
type Command int

const (
	CommandCall Command = iota
	CommandOutputChar
	CommandOutputNumber
	CommandInputChar
	CommandInputNumber
)

// InstrValueKind discriminates the InstrValue union.
type InstrValueKind int

const (
	InstrValueNumber InstrValueKind = iota
	InstrValueIdent
	InstrValueBlock
	InstrValueBuiltin
)

// InstrValue is a value that can be pushed by an instruction.
type InstrValue struct {
	Kind    InstrValueKind
	Number  int64
	Ident   string
	Block   *Block
	Builtin Builtin
}

func NumberValue(n int64) InstrValue    { return InstrValue{Kind: InstrValueNumber, Number: n} }
func IdentValue(name string) InstrValue { return InstrValue{Kind: InstrValueIdent, Ident: name} }
func BlockValue(b *Block) InstrValue    { return InstrValue{Kind: InstrValueBlock, Block: b} }
func BuiltinValue(b Builtin) InstrValue { return InstrValue{Kind: InstrValueBuiltin, Builtin: b} }

// InstructionKind discriminates the Instruction union.
type InstructionKind int

const (
	InstructionCommand InstructionKind = iota
	InstructionPush
)

// Instruction is either a side-effecting Command or a Push of a value.
type Instruction struct {
	Kind    InstructionKind
	Command Command
	Value   InstrValue
}

func CommandInstr(c Command) Instruction { return Instruction{Kind: InstructionCommand, Command: c} }
func PushInstr(v InstrValue) Instruction { return Instruction{Kind: InstructionPush, Value: v} }

// SymbolValueKind discriminates SymbolValue.
type SymbolValueKind int

const (
	SymbolValueNumber SymbolValueKind = iota
	SymbolValueBlock
	SymbolValueBuiltin
)

// SymbolValue is the right-hand side of a `name: value` declaration.
type SymbolValue struct {
	Kind    SymbolValueKind
	Number  int64
	Block   *Block
	Builtin Builtin
}

func SymbolNumber(n int64) SymbolValue    { return SymbolValue{Kind: SymbolValueNumber, Number: n} }
func SymbolBlock(b *Block) SymbolValue    { return SymbolValue{Kind: SymbolValueBlock, Block: b} }
func SymbolBuiltin(b Builtin) SymbolValue { return SymbolValue{Kind: SymbolValueBuiltin, Builtin: b} }

// Symbol is a named declaration inside a block, recording the span of
// its name (for duplicate-definition diagnostics) alongside its value.
type Symbol struct {
	NameSpan span.Span[struct{}]
	Value    span.Span[SymbolValue]
}

// Block is a lexical scope: an ordered parameter list, a name->Symbol
// table (names unique within the block), an ordered instruction list and
// any comments collected while the block was open.
type Block struct {
	Args     []span.Span[string]
	Symbols  map[string]Symbol
	Instrs   []span.Span[Instruction]
	Comments []span.Span[string]
}

// NewBlock builds an empty block with the given formal parameters.
func NewBlock(args []span.Span[string]) *Block {
	return &Block{
		Args:    args,
		Symbols: make(map[string]Symbol),
	}
}

// DuplicateSymbolError is returned by AddSymbol when name was already
// declared in this block; First is the span of the earlier declaration's
// name.
type DuplicateSymbolError struct {
	Name      string
	First     span.Span[struct{}]
	Duplicate span.Span[struct{}]
}

func (e *DuplicateSymbolError) Error() string {
	return "duplicate symbol " + e.Name
}

// Span implements diag.Spanned.
func (e *DuplicateSymbolError) Span() span.Span[struct{}] { return e.Duplicate }

// FirstSpan supports diag.Reporter.ReportAll's "first declared here" note.
func (e *DuplicateSymbolError) FirstSpan() (span.Span[struct{}], bool) { return e.First, true }

// AddSymbol inserts name -> value, or returns DuplicateSymbolError if the
// name already exists in this block (§3 invariant 1).
func (b *Block) AddSymbol(name span.Span[string], value span.Span[SymbolValue]) error {
	if existing, ok := b.Symbols[name.Data]; ok {
		return &DuplicateSymbolError{
			Name:      name.Data,
			First:     existing.NameSpan,
			Duplicate: name.Void(),
		}
	}
	b.Symbols[name.Data] = Symbol{NameSpan: name.Void(), Value: value}
	return nil
}

// PushInstruction appends instr to the block's instruction list.
func (b *Block) PushInstruction(instr span.Span[Instruction]) {
	b.Instrs = append(b.Instrs, instr)
}

// PushComment appends a comment span, kept separately from instructions.
func (b *Block) PushComment(c span.Span[string]) {
	b.Comments = append(b.Comments, c)
}
