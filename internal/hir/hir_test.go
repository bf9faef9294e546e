package hir

import (
	"testing"

	"github.com/samuelsleight/catastrophic-go/internal/span"
)

func argSpan(name string) span.Span[string] {
	loc := span.Location{}
	return span.New(loc, loc, name)
}

func TestNewBlockRootHasNoOffset(t *testing.T) {
	b := NewBlock([]span.Span[string]{argSpan("x"), argSpan("y")}, nil)

	if b.Offset != 0 {
		t.Errorf("Offset = %d, want 0", b.Offset)
	}
	if b.Args != 2 {
		t.Errorf("Args = %d, want 2", b.Args)
	}
	for i, name := range []string{"x", "y"} {
		v, ok := b.Lookup(name)
		if !ok || v.Kind != ValueArg || v.Arg != i {
			t.Errorf("Lookup(%q) = %+v, ok=%v, want ArgValue(%d)", name, v, ok, i)
		}
	}
}

func TestNewBlockInheritsParentOffsetAndSymbols(t *testing.T) {
	parent := NewBlock([]span.Span[string]{argSpan("a"), argSpan("b")}, nil)
	parent.PushSymbol("k", NumberValue(7))

	child := NewBlock([]span.Span[string]{argSpan("c")}, parent)

	if child.Offset != 2 {
		t.Errorf("child.Offset = %d, want 2 (parent.Offset + parent.Args)", child.Offset)
	}
	if v, ok := child.Lookup("c"); !ok || v.Kind != ValueArg || v.Arg != 2 {
		t.Errorf("Lookup(c) = %+v, ok=%v, want ArgValue(2)", v, ok)
	}
	if v, ok := child.Lookup("k"); !ok || v.Kind != ValueNumber || v.Number != 7 {
		t.Errorf("inherited symbol k = %+v, ok=%v, want NumberValue(7)", v, ok)
	}
	if v, ok := child.Lookup("a"); !ok || v.Arg != 0 {
		t.Errorf("inherited arg a = %+v, ok=%v, want ArgValue(0)", v, ok)
	}
}

func TestLookupUndefined(t *testing.T) {
	b := NewBlock(nil, nil)
	if _, ok := b.Lookup("nope"); ok {
		t.Error("Lookup(nope) = ok, want not found")
	}
}

func TestPushSymbolShadowsEnvIndex(t *testing.T) {
	b := NewBlock(nil, nil)
	b.PushSymbol("x", NumberValue(1))
	b.PushSymbol("x", NumberValue(2))

	v, ok := b.Lookup("x")
	if !ok || v.Number != 2 {
		t.Errorf("Lookup(x) = %+v, want the later binding (2)", v)
	}
}
