// Package parser assembles a spanned token sequence into the AST's
// top-level Block using a shift/reduce-style operand stack, following
// the same push/absorb/reduce shape as the teacher's internal/parser
// state machine but built around the language's block-nesting grammar
// instead of an expression-tree grammar.
package parser

import (
	"fmt"

	"github.com/samuelsleight/catastrophic-go/internal/ast"
	"github.com/samuelsleight/catastrophic-go/internal/span"
	"github.com/samuelsleight/catastrophic-go/internal/token"
)

// Error is the parse-time diagnostic taxonomy from §4.6.
type Error struct {
	Kind string
	At   span.Span[struct{}]
	// First is never set by this package: duplicate symbols are reported
	// as *ast.DuplicateSymbolError, which carries both spans itself.
	First *span.Span[struct{}]
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s at %s", e.Kind, e.At)
}

// Span implements diag.Spanned.
func (e *Error) Span() span.Span[struct{}] { return e.At }

func newError(kind string, at span.Span[struct{}]) error {
	return &Error{Kind: kind, At: at}
}

type itemKind int

const (
	itemOpenBlock itemKind = iota
	itemCommand
	itemIdent
	itemNumber
	itemBuiltin
	itemLabel
	itemArg
	itemComment
	itemBlock
)

type stackItem struct {
	kind    itemKind
	command ast.Command
	ident   string
	number  int64
	builtin ast.Builtin
	block   *ast.Block
}

// Parser holds the operand stack and the stack of currently-open AST
// blocks described in §4.2.
type Parser struct {
	stack      []span.Span[stackItem]
	blocks     []*ast.Block
	errs       []error
	permissive bool
}

// New creates a Parser seeded with an empty top-level block.
func New() *Parser {
	return &Parser{blocks: []*ast.Block{ast.NewBlock(nil)}}
}

// Permissive enables the optional mode in which finish returns a partial
// AST alongside the accumulated errors instead of failing outright.
func (p *Parser) Permissive(v bool) *Parser {
	p.permissive = v
	return p
}

// Parse feeds every token through the state machine and returns the
// finished top-level block. In strict mode (the default) a non-empty
// error slice means the returned block should be discarded; in
// permissive mode the partial block is always meaningful.
func Parse(tokens []span.Span[token.Token], permissive bool) (*ast.Block, []error) {
	p := New().Permissive(permissive)
	for _, tok := range tokens {
		p.process(tok)
	}
	return p.finish()
}

func (p *Parser) process(tok span.Span[token.Token]) {
	void := tok.Void()

	switch tok.Data.Kind {
	case token.Ident:
		if tok.Data.Ident == "random" {
			p.processBuiltin(ast.BuiltinRandom, void)
		} else {
			p.push(void, stackItem{kind: itemIdent, ident: tok.Data.Ident})
		}
	case token.String:
		p.processString(tok.Data.Ident, void)
	case token.Integer:
		p.processNumber(tok.Data.Integer, void)
	case token.Comment:
		p.push(void, stackItem{kind: itemComment, ident: tok.Data.Ident})
	case token.Arrow:
		p.processArrow(void)
	case token.Parens:
		p.push(void, stackItem{kind: itemCommand, command: ast.CommandCall})
	case token.Plus:
		p.processBuiltin(ast.BuiltinPlus, void)
	case token.Minus:
		p.processBuiltin(ast.BuiltinMinus, void)
	case token.Multiply:
		p.processBuiltin(ast.BuiltinMultiply, void)
	case token.Divide:
		p.processBuiltin(ast.BuiltinDivide, void)
	case token.Equals:
		p.processBuiltin(ast.BuiltinEquals, void)
	case token.GreaterThan:
		p.processBuiltin(ast.BuiltinGreaterThan, void)
	case token.LessThan:
		p.processBuiltin(ast.BuiltinLessThan, void)
	case token.Dot:
		p.push(void, stackItem{kind: itemCommand, command: ast.CommandOutputNumber})
	case token.Comma:
		p.push(void, stackItem{kind: itemCommand, command: ast.CommandOutputChar})
	case token.Ampersand:
		p.push(void, stackItem{kind: itemCommand, command: ast.CommandInputNumber})
	case token.Tilde:
		p.push(void, stackItem{kind: itemCommand, command: ast.CommandInputChar})
	case token.Colon:
		p.processColon(void)
	case token.Question:
		p.processBuiltin(ast.BuiltinIfThenElse, void)
	case token.LCurly:
		p.processOpenBlock(void)
	case token.RCurly:
		p.processCloseBlock(void)
	case token.Unexpected:
		p.errs = append(p.errs, newError("UnexpectedChar", void))
	}
}

func (p *Parser) push(sp span.Span[struct{}], item stackItem) {
	p.stack = append(p.stack, span.With(sp, item))
}

func (p *Parser) pop() (span.Span[stackItem], bool) {
	if len(p.stack) == 0 {
		return span.Span[stackItem]{}, false
	}
	top := p.stack[len(p.stack)-1]
	p.stack = p.stack[:len(p.stack)-1]
	return top, true
}

// processString expands a string literal's raw bytes into Number stack
// items pushed in reverse order, per §4.2 and §9 ("String literal
// lowering"): the leftmost byte ends up pushed last, so it is the first
// one reduced when the enclosing block is later finalised.
func (p *Parser) processString(raw string, sp span.Span[struct{}]) {
	for i := len(raw) - 1; i >= 0; i-- {
		p.processNumber(int64(raw[i]), sp)
	}
}

// processNumber implements the absorb-into-label-or-push rule shared by
// numeric literals and string-expanded bytes.
func (p *Parser) processNumber(value int64, sp span.Span[struct{}]) {
	item, ok := p.pop()
	if !ok {
		p.push(sp, stackItem{kind: itemNumber, number: value})
		return
	}
	if item.Data.kind == itemLabel {
		p.pushSymbol(span.With(item, item.Data.ident), span.With(sp, ast.SymbolNumber(value)))
		return
	}
	p.stack = append(p.stack, item)
	p.push(sp, stackItem{kind: itemNumber, number: value})
}

func (p *Parser) processBuiltin(b ast.Builtin, sp span.Span[struct{}]) {
	item, ok := p.pop()
	if !ok {
		p.push(sp, stackItem{kind: itemBuiltin, builtin: b})
		return
	}
	if item.Data.kind == itemLabel {
		p.pushSymbol(span.With(item, item.Data.ident), span.With(sp, ast.SymbolBuiltin(b)))
		return
	}
	p.stack = append(p.stack, item)
	p.push(sp, stackItem{kind: itemBuiltin, builtin: b})
}

func (p *Parser) processArrow(sp span.Span[struct{}]) {
	item, ok := p.pop()
	if !ok {
		p.errs = append(p.errs, newError("ArrowWithoutArg", sp))
		return
	}
	if item.Data.kind != itemIdent {
		p.stack = append(p.stack, item)
		p.errs = append(p.errs, newError("ArrowWithoutArg", sp))
		return
	}
	p.stack = append(p.stack, span.With(item, stackItem{kind: itemArg, ident: item.Data.ident}))
}

func (p *Parser) processColon(sp span.Span[struct{}]) {
	item, ok := p.pop()
	if !ok {
		p.errs = append(p.errs, newError("LabelWithoutName", sp))
		return
	}
	if item.Data.kind != itemIdent {
		p.stack = append(p.stack, item)
		p.errs = append(p.errs, newError("LabelWithoutName", sp))
		return
	}
	p.stack = append(p.stack, span.With(item, stackItem{kind: itemLabel, ident: item.Data.ident}))
}

func (p *Parser) processOpenBlock(sp span.Span[struct{}]) {
	var args []span.Span[string]
	for {
		item, ok := p.pop()
		if !ok || item.Data.kind != itemArg {
			if ok {
				p.stack = append(p.stack, item)
			}
			break
		}
		args = append(args, span.With(item, item.Data.ident))
	}
	// args were collected in reverse declaration order; restore lexical order.
	for i, j := 0, len(args)-1; i < j; i, j = i+1, j-1 {
		args[i], args[j] = args[j], args[i]
	}

	p.blocks = append(p.blocks, ast.NewBlock(args))
	p.push(sp, stackItem{kind: itemOpenBlock})
}

type termination int

const (
	terminationEOF termination = iota
	terminationCurly
)

func (p *Parser) terminateBlock() (*ast.Block, termination, span.Span[struct{}]) {
	block := p.blocks[len(p.blocks)-1]
	p.blocks = p.blocks[:len(p.blocks)-1]

	for {
		item, ok := p.pop()
		if !ok {
			return block, terminationEOF, span.Span[struct{}]{}
		}

		switch item.Data.kind {
		case itemOpenBlock:
			return block, terminationCurly, item.Void()
		case itemCommand:
			block.PushInstruction(span.With(item, ast.CommandInstr(item.Data.command)))
		case itemIdent:
			block.PushInstruction(span.With(item, ast.PushInstr(ast.IdentValue(item.Data.ident))))
		case itemNumber:
			block.PushInstruction(span.With(item, ast.PushInstr(ast.NumberValue(item.Data.number))))
		case itemBuiltin:
			block.PushInstruction(span.With(item, ast.PushInstr(ast.BuiltinValue(item.Data.builtin))))
		case itemBlock:
			block.PushInstruction(span.With(item, ast.PushInstr(ast.BlockValue(item.Data.block))))
		case itemComment:
			block.PushComment(span.With(item, item.Data.ident))
		case itemLabel:
			p.errs = append(p.errs, newError("LabelWithoutValue", item.Void()))
		case itemArg:
			p.errs = append(p.errs, newError("ArrowWithoutBlock", item.Void()))
		}
	}
}

func (p *Parser) processCloseBlock(sp span.Span[struct{}]) {
	block, term, markerSpan := p.terminateBlock()

	if term == terminationEOF {
		p.blocks = append(p.blocks, block)
		p.errs = append(p.errs, newError("BlockClosedWithoutOpening", sp))
		return
	}

	fullSpan := span.Span[struct{}]{Start: markerSpan.Start, End: sp.End}

	item, ok := p.pop()
	if ok && item.Data.kind == itemLabel {
		p.pushSymbol(span.With(item, item.Data.ident), span.With(fullSpan, ast.SymbolBlock(block)))
		return
	}
	if ok {
		p.stack = append(p.stack, item)
	}
	p.push(fullSpan, stackItem{kind: itemBlock, block: block})
}

func (p *Parser) pushSymbol(name span.Span[string], value span.Span[ast.SymbolValue]) {
	current := p.blocks[len(p.blocks)-1]
	if err := current.AddSymbol(name, value); err != nil {
		p.errs = append(p.errs, err)
	}
}

func (p *Parser) finish() (*ast.Block, []error) {
	block, term, markerSpan := p.terminateBlock()

	if term == terminationCurly {
		p.errs = append(p.errs, newError("BlockWithoutClosing", markerSpan))
	}

	if len(p.errs) == 0 {
		return block, nil
	}
	if p.permissive {
		return block, p.errs
	}
	return nil, p.errs
}
