package playlist

import "testing"

func TestNextAdvancesThroughList(t *testing.T) {
	p := New()
	p.Add("a")
	p.Add("b")
	p.Add("c")

	if cur, ok := p.Current(); !ok || cur != "a" {
		t.Fatalf("Current() = (%q, %v), want (a, true)", cur, ok)
	}
	if next, ok := p.Next(); !ok || next != "b" {
		t.Fatalf("Next() = (%q, %v), want (b, true)", next, ok)
	}
	if next, ok := p.Next(); !ok || next != "c" {
		t.Fatalf("Next() = (%q, %v), want (c, true)", next, ok)
	}
	if _, ok := p.Next(); ok {
		t.Fatalf("Next() past the end with LoopNone should report false")
	}
}

func TestNextLoopsListWhenConfigured(t *testing.T) {
	p := New()
	p.SetLoopMode(LoopList)
	p.Add("a")
	p.Add("b")
	p.Next() // -> b
	next, ok := p.Next()
	if !ok || next != "a" {
		t.Fatalf("Next() wrapping = (%q, %v), want (a, true)", next, ok)
	}
}

func TestNextRepeatsCurrentWithLoopSingle(t *testing.T) {
	p := New()
	p.SetLoopMode(LoopSingle)
	p.Add("a")
	p.Add("b")
	next, ok := p.Next()
	if !ok || next != "a" {
		t.Fatalf("Next() under LoopSingle = (%q, %v), want (a, true)", next, ok)
	}
}

func TestPrevAtStartStopsWithoutLoop(t *testing.T) {
	p := New()
	p.Add("a")
	p.Add("b")
	if _, ok := p.Prev(); ok {
		t.Fatalf("Prev() at the start with LoopNone should report false")
	}
}

func TestSkipToOutOfRangeFails(t *testing.T) {
	p := New()
	p.Add("a")
	if _, ok := p.SkipTo(5); ok {
		t.Fatalf("SkipTo(5) on a 1-item list should report false")
	}
}

func TestClearResetsCursor(t *testing.T) {
	p := New()
	p.Add("a")
	p.Add("b")
	p.Clear()
	if !p.IsEmpty() {
		t.Fatalf("expected playlist to be empty after Clear")
	}
	if _, ok := p.Current(); ok {
		t.Fatalf("expected Current() to report false on an empty playlist")
	}
}

func TestShuffleKeepsCurrentItemFirst(t *testing.T) {
	p := New()
	for _, s := range []string{"a", "b", "c", "d", "e"} {
		p.Add(s)
	}
	p.SkipTo(2) // current = "c"
	p.Shuffle()
	if cur, _ := p.Current(); cur != "c" {
		t.Fatalf("Current() after Shuffle = %q, want the pre-shuffle current item c", cur)
	}
	if len(p.items) != 5 {
		t.Fatalf("Shuffle must not change the item count, got %d", len(p.items))
	}
}
