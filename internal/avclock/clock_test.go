package avclock

import "testing"

func TestGetSetReset(t *testing.T) {
	c := New()
	if c.Get() != 0 {
		t.Fatalf("new clock = %v, want 0", c.Get())
	}
	c.Set(12.5)
	if c.Get() != 12.5 {
		t.Fatalf("get = %v, want 12.5", c.Get())
	}
	c.Reset()
	if c.Get() != 0 {
		t.Fatalf("get after reset = %v, want 0", c.Get())
	}
}
