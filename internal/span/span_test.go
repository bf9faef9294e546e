package span

import "testing"

func TestLocationAdvance(t *testing.T) {
	l := Location{Line: 2, Column: 5}

	if got := l.Advance('x'); got != (Location{Line: 2, Column: 6}) {
		t.Errorf("Advance('x') = %v, want {2 6}", got)
	}
	if got := l.Advance('\n'); got != (Location{Line: 3, Column: 0}) {
		t.Errorf("Advance('\\n') = %v, want {3 0}", got)
	}
}

func TestLocationLess(t *testing.T) {
	cases := []struct {
		a, b Location
		want bool
	}{
		{Location{0, 0}, Location{0, 1}, true},
		{Location{0, 1}, Location{0, 0}, false},
		{Location{0, 5}, Location{1, 0}, true},
		{Location{1, 0}, Location{0, 5}, false},
		{Location{2, 2}, Location{2, 2}, false},
	}
	for _, c := range cases {
		if got := c.a.Less(c.b); got != c.want {
			t.Errorf("%v.Less(%v) = %v, want %v", c.a, c.b, got, c.want)
		}
	}
}

func TestVoidDropsPayload(t *testing.T) {
	s := New(Location{0, 0}, Location{0, 3}, "payload")
	v := s.Void()

	if v.Start != s.Start || v.End != s.End {
		t.Errorf("Void() changed extent: got %+v, want start/end of %+v", v, s)
	}
}

func TestWithRebuildsPayload(t *testing.T) {
	s := New(Location{1, 0}, Location{1, 4}, 42)
	w := With(s, "forty-two")

	if w.Start != s.Start || w.End != s.End {
		t.Errorf("With() changed extent: got %+v", w)
	}
	if w.Data != "forty-two" {
		t.Errorf("With() Data = %q, want %q", w.Data, "forty-two")
	}
}

func TestLocationString(t *testing.T) {
	if got := (Location{Line: 3, Column: 7}).String(); got != "3:7" {
		t.Errorf("String() = %q, want %q", got, "3:7")
	}
}
