// Package analyser lowers an AST block tree into a flat slice of HIR
// blocks, resolving lexical names to env indices and numbering nested
// blocks with a breadth-first expansion queue (§4.3). The shape follows
// the reference analyser's FIFO-over-a-deque state machine.
package analyser

import (
	"fmt"
	"sort"

	"github.com/samuelsleight/catastrophic-go/internal/ast"
	"github.com/samuelsleight/catastrophic-go/internal/hir"
	"github.com/samuelsleight/catastrophic-go/internal/span"
)

// UndefinedSymbolError is raised when a Push(Ident(name)) instruction
// cannot be resolved in its block's symbol table.
type UndefinedSymbolError struct {
	Name string
	At   span.Span[struct{}]
}

func (e *UndefinedSymbolError) Error() string {
	return fmt.Sprintf("undefined symbol %q at %s", e.Name, e.At)
}

// Span implements diag.Spanned.
func (e *UndefinedSymbolError) Span() span.Span[struct{}] { return e.At }

type queuedBlock struct {
	block     *ast.Block
	parent    int
	hasParent bool
}

type state struct {
	queue []queuedBlock
	out   []*hir.Block
	errs  []error
}

// Analyse lowers top into a flat HIR program, or returns the errors
// collected along the way. Block 0 of the result is always top.
func Analyse(top *ast.Block) ([]*hir.Block, []error) {
	s := &state{queue: []queuedBlock{{block: top}}}

	for len(s.queue) > 0 {
		qb := s.queue[0]
		s.queue = s.queue[1:]

		block := s.analyseBlock(qb)
		s.out = append(s.out, block)
	}

	if len(s.errs) > 0 {
		return nil, s.errs
	}
	return s.out, nil
}

// queueBlock schedules b for later analysis as a child of parent,
// returning the index it will occupy once processed. Indices are
// assigned eagerly so forward references (a block referring to a
// sibling not yet analysed) resolve to a stable number. Blocks are
// appended to the back of the queue and Analyse consumes the front,
// giving FIFO (breadth-first) expansion order, matching the reference
// analyser's deque pushed at the front and popped at the back.
func (s *state) queueBlock(b *ast.Block, parent int) int {
	s.queue = append(s.queue, queuedBlock{block: b, parent: parent, hasParent: true})
	return len(s.queue) + len(s.out)
}

func (s *state) analyseBlock(qb queuedBlock) *hir.Block {
	var parent *hir.Block
	if qb.hasParent {
		parent = s.out[qb.parent]
	}

	index := len(s.out)
	block := hir.NewBlock(qb.block.Args, parent)

	// Declaration order between symbols is not otherwise observable (the
	// AST keeps them in a map, as does the reference implementation), so
	// iterate in name order for a reproducible block numbering instead of
	// leaning on Go's randomised map iteration.
	names := make([]string, 0, len(qb.block.Symbols))
	for name := range qb.block.Symbols {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		sym := qb.block.Symbols[name]
		var value hir.Value
		switch sym.Value.Data.Kind {
		case ast.SymbolValueNumber:
			value = hir.NumberValue(sym.Value.Data.Number)
		case ast.SymbolValueBlock:
			value = hir.FunctionValue(hir.BlockFunction(s.queueBlock(sym.Value.Data.Block, index)))
		case ast.SymbolValueBuiltin:
			value = hir.FunctionValue(hir.BuiltinFunction(sym.Value.Data.Builtin))
		}
		block.PushSymbol(name, value)
	}

	// The parser leaves the AST's instruction list in reverse source
	// order (it pops its operand stack to build it); walking that list
	// from the back appends the HIR instructions in source order, which
	// is the order the interpreter executes them in.
	for i := len(qb.block.Instrs) - 1; i >= 0; i-- {
		instr := qb.block.Instrs[i]

		switch instr.Data.Kind {
		case ast.InstructionCommand:
			block.PushInstr(span.With(instr, hir.CommandInstr(instr.Data.Command)))

		case ast.InstructionPush:
			v := instr.Data.Value
			switch v.Kind {
			case ast.InstrValueNumber:
				block.PushInstr(span.With(instr, hir.PushInstr(hir.NumberValue(v.Number))))
			case ast.InstrValueBuiltin:
				block.PushInstr(span.With(instr, hir.PushInstr(hir.FunctionValue(hir.BuiltinFunction(v.Builtin)))))
			case ast.InstrValueBlock:
				fn := hir.FunctionValue(hir.BlockFunction(s.queueBlock(v.Block, index)))
				block.PushInstr(span.With(instr, hir.PushInstr(fn)))
			case ast.InstrValueIdent:
				value, ok := block.Lookup(v.Ident)
				if !ok {
					s.errs = append(s.errs, &UndefinedSymbolError{Name: v.Ident, At: instr.Void()})
					value = hir.NumberValue(0)
				}
				block.PushInstr(span.With(instr, hir.PushInstr(value)))
			}
		}
	}

	return block
}
