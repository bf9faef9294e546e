// Package interp executes a flat HIR program directly, without going
// through the optimiser, over an operand stack and a closure table
// (§4.5). It is a straight port of the reference interpreter's
// Env/Stack/Closures state machine, arguments and all: the pop-order
// convention on Call (and the resulting operand order fed to builtins)
// is non-obvious and is preserved exactly rather than "fixed".
package interp

import (
	"bufio"
	"fmt"
	"io"
	"math/rand"
	"strconv"
	"strings"

	"github.com/samuelsleight/catastrophic-go/internal/ast"
	"github.com/samuelsleight/catastrophic-go/internal/hir"
	"github.com/samuelsleight/catastrophic-go/internal/span"
)

// RuntimeError is the §4.6 runtime diagnostic taxonomy. CalledEmptyStack
// and InsufficientArgsForFunction are carried for parity with the
// reference error enum but are unreachable here: Stack.pop is total
// (it yields Number(0) rather than failing) and Call always pops its
// builtin/closure's fixed, statically-known arity.
type RuntimeError struct {
	Kind    string
	At      span.Span[struct{}]
	Builtin ast.Builtin
}

func (e *RuntimeError) Error() string {
	if e.Kind == "InvalidArgsForBuiltin" {
		return fmt.Sprintf("invalid args for builtin %s at %s", e.Builtin, e.At)
	}
	return fmt.Sprintf("%s at %s", e.Kind, e.At)
}

func errAt(kind string, at span.Span[struct{}]) error {
	return &RuntimeError{Kind: kind, At: at}
}

// Span implements diag.Spanned.
func (e *RuntimeError) Span() span.Span[struct{}] { return e.At }

type valueKind int

const (
	valueBuiltin valueKind = iota
	valueClosure
	valueNumber
)

type value struct {
	kind    valueKind
	builtin ast.Builtin
	closure int
	number  int64
}

func numberValue(n int64) value        { return value{kind: valueNumber, number: n} }
func builtinValue(b ast.Builtin) value { return value{kind: valueBuiltin, builtin: b} }
func closureValue(idx int) value       { return value{kind: valueClosure, closure: idx} }

type closure struct {
	block int
	args  []value
}

// stack is an operand stack where popping past the bottom yields
// Number(0) instead of failing, matching the reference Stack::pop.
type stack struct {
	values []value
}

func (s *stack) push(v value) {
	s.values = append(s.values, v)
}

func (s *stack) pop() value {
	if len(s.values) == 0 {
		return numberValue(0)
	}
	top := s.values[len(s.values)-1]
	s.values = s.values[:len(s.values)-1]
	return top
}

type closures struct {
	table []closure
}

func (c *closures) push(block int, args []value) int {
	idx := len(c.table)
	c.table = append(c.table, closure{block: block, args: args})
	return idx
}

func (c *closures) get(idx int) (closure, bool) {
	if idx < 0 || idx >= len(c.table) {
		return closure{}, false
	}
	return c.table[idx], true
}

// IO bundles the interpreter's side-effecting ends; Stdin/Stdout default
// to os.Stdin/os.Stdout in the cmd driver but are threaded explicitly so
// tests can substitute buffers.
type IO struct {
	Stdin  io.Reader
	Stdout io.Writer
}

// env is one activation of a block: its resolved argument vector and a
// cursor into its instruction list, holding shared references to the
// whole program, the operand stack and the closure table exactly as
// the reference Env does.
type env struct {
	blocks   []*hir.Block
	stack    *stack
	closures *closures
	stdin    *bufio.Reader
	stdout   io.Writer
	args     []value
	block    int
}

// Run interprets blocks starting at block 0 with no arguments (the
// top-level program), per §4.5. stdin is wrapped once in a shared
// buffered reader so InputNumber's line-oriented reads and
// InputChar's byte reads interleave correctly across nested calls.
func Run(blocks []*hir.Block, rw IO) error {
	e := &env{
		blocks:   blocks,
		stack:    &stack{},
		closures: &closures{},
		stdin:    bufio.NewReader(rw.Stdin),
		stdout:   rw.Stdout,
		args:     nil,
		block:    0,
	}
	return e.run()
}

func (e *env) run() error {
	block := e.blocks[e.block]
	for instr := 0; instr < len(block.Instrs); instr++ {
		spanned := block.Instrs[instr]
		at := spanned.Void()

		switch spanned.Data.Kind {
		case hir.InstrCommand:
			switch spanned.Data.Command {
			case ast.CommandCall:
				if err := e.call(at); err != nil {
					return err
				}
			case ast.CommandOutputChar:
				if err := e.outputChar(at); err != nil {
					return err
				}
			case ast.CommandOutputNumber:
				if err := e.outputNumber(at); err != nil {
					return err
				}
			case ast.CommandInputChar:
				if err := e.inputChar(); err != nil {
					return err
				}
			case ast.CommandInputNumber:
				if err := e.inputNumber(); err != nil {
					return err
				}
			}

		case hir.InstrPush:
			if err := e.push(at, spanned.Data.Value); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *env) push(at span.Span[struct{}], v hir.Value) error {
	switch v.Kind {
	case hir.ValueArg:
		e.stack.push(e.args[v.Arg])
	case hir.ValueNumber:
		e.stack.push(numberValue(v.Number))
	case hir.ValueFunction:
		switch v.Function.Kind {
		case hir.FunctionBuiltin:
			e.stack.push(builtinValue(v.Function.Builtin))
		case hir.FunctionBlock:
			idx := v.Function.Block
			target, ok := blockAt(e.blocks, idx)
			if !ok {
				return errAt("CalledInvalidBlock", at)
			}
			captured := append([]value(nil), e.args[:min(target.Offset, len(e.args))]...)
			e.stack.push(closureValue(e.closures.push(idx, captured)))
		}
	}
	return nil
}

func blockAt(blocks []*hir.Block, idx int) (*hir.Block, bool) {
	if idx < 0 || idx >= len(blocks) {
		return nil, false
	}
	return blocks[idx], true
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// call pops the callee, assembles its argument vector and either
// invokes a builtin or recurses into the callee block. The argument
// vector is parent-captured-args followed by freshly popped values, in
// pop order (top of stack first) -- this is the reference convention
// and is intentionally not reordered into "natural" left-to-right form.
func (e *env) call(at span.Span[struct{}]) error {
	fn := e.stack.pop()

	var parentArgs []value
	var arity int
	var builtin ast.Builtin
	var isBuiltin bool
	var blockIdx int

	switch fn.kind {
	case valueNumber:
		return errAt("CalledNumber", at)
	case valueBuiltin:
		isBuiltin = true
		builtin = fn.builtin
		arity = builtinArity(builtin)
	case valueClosure:
		c, ok := e.closures.get(fn.closure)
		if !ok {
			return errAt("CalledInvalidBlock", at)
		}
		target, ok := blockAt(e.blocks, c.block)
		if !ok {
			return errAt("CalledInvalidBlock", at)
		}
		parentArgs = c.args
		arity = target.Args
		blockIdx = c.block
	}

	args := append([]value(nil), parentArgs...)
	for i := 0; i < arity; i++ {
		args = append(args, e.stack.pop())
	}

	if isBuiltin {
		return e.callBuiltin(at, builtin, args)
	}

	child := &env{
		blocks:   e.blocks,
		stack:    e.stack,
		closures: e.closures,
		stdin:    e.stdin,
		stdout:   e.stdout,
		args:     args,
		block:    blockIdx,
	}
	return child.run()
}

func builtinArity(b ast.Builtin) int {
	if b == ast.BuiltinIfThenElse {
		return 3
	}
	return 2
}

// callBuiltin mirrors the reference's destructuring match: args[0] is
// the value popped first (the operand or condition nearest the top of
// the stack at Call time), args[1] the next, and so on.
func (e *env) callBuiltin(at span.Span[struct{}], b ast.Builtin, args []value) error {
	switch b {
	case ast.BuiltinIfThenElse:
		if len(args) != 3 || args[0].kind != valueNumber {
			return &RuntimeError{Kind: "InvalidArgsForBuiltin", At: at, Builtin: b}
		}
		if args[0].number == 0 {
			e.stack.push(args[2])
		} else {
			e.stack.push(args[1])
		}
		return nil
	}

	if len(args) != 2 || args[0].kind != valueNumber || args[1].kind != valueNumber {
		return &RuntimeError{Kind: "InvalidArgsForBuiltin", At: at, Builtin: b}
	}
	a, bb := args[0].number, args[1].number

	boolNum := func(v bool) int64 {
		if v {
			return 1
		}
		return 0
	}

	switch b {
	case ast.BuiltinPlus:
		e.stack.push(numberValue(a + bb))
	case ast.BuiltinMinus:
		e.stack.push(numberValue(a - bb))
	case ast.BuiltinMultiply:
		e.stack.push(numberValue(a * bb))
	case ast.BuiltinDivide:
		if bb == 0 {
			e.stack.push(numberValue(0))
		} else {
			e.stack.push(numberValue(a / bb))
		}
	case ast.BuiltinLessThan:
		e.stack.push(numberValue(boolNum(a < bb)))
	case ast.BuiltinGreaterThan:
		e.stack.push(numberValue(boolNum(a > bb)))
	case ast.BuiltinEquals:
		e.stack.push(numberValue(boolNum(a == bb)))
	case ast.BuiltinRandom:
		lo, hi := a, bb
		if hi < lo {
			lo, hi = hi, lo
		}
		e.stack.push(numberValue(lo + rand.Int63n(hi-lo+1)))
	default:
		return &RuntimeError{Kind: "InvalidArgsForBuiltin", At: at, Builtin: b}
	}
	return nil
}

func (e *env) outputChar(at span.Span[struct{}]) error {
	v := e.stack.pop()
	if v.kind != valueNumber {
		return errAt("OutputFunction", at)
	}
	_, err := e.stdout.Write([]byte{byte(v.number)})
	return err
}

func (e *env) outputNumber(at span.Span[struct{}]) error {
	v := e.stack.pop()
	if v.kind != valueNumber {
		return errAt("OutputFunction", at)
	}
	_, err := fmt.Fprintf(e.stdout, "%d", v.number)
	return err
}

func (e *env) flushStdout() {
	if f, ok := e.stdout.(interface{ Flush() error }); ok {
		_ = f.Flush()
	}
}

func (e *env) inputChar() error {
	e.flushStdout()
	b, err := e.stdin.ReadByte()
	if err != nil {
		e.stack.push(numberValue(0))
		return nil
	}
	e.stack.push(numberValue(int64(b)))
	return nil
}

func (e *env) inputNumber() error {
	e.flushStdout()
	line, _ := e.stdin.ReadString('\n')
	n, err := strconv.ParseInt(strings.TrimSpace(line), 10, 64)
	if err != nil {
		n = 0
	}
	e.stack.push(numberValue(n))
	return nil
}
