package strstore

import "testing"

func TestInternAndGet(t *testing.T) {
	var s Store
	h1 := s.Intern("hello")
	h2 := s.Intern("world")
	h3 := s.Intern("hello") // duplicate: a fresh handle, no dedup required by contract

	if s.Get(h1) != "hello" {
		t.Fatalf("h1 = %q", s.Get(h1))
	}
	if s.Get(h2) != "world" {
		t.Fatalf("h2 = %q", s.Get(h2))
	}
	if s.Get(h3) != "hello" {
		t.Fatalf("h3 = %q", s.Get(h3))
	}
	if h1 == h3 {
		t.Fatalf("expected distinct handles for repeated Intern calls")
	}
	if s.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", s.Len())
	}
}
