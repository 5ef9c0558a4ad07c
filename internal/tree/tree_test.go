package tree

import (
	"reflect"
	"testing"
)

func TestAddChildAndPathToRoot(t *testing.T) {
	tr := New("root")
	a := AddChild(tr.Root, "A")
	b := AddChild(a, "B")
	c := AddChild(b, "C")

	got := PathToRoot(c)
	want := []string{"root", "A", "B", "C"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("PathToRoot = %v, want %v", got, want)
	}
}

func TestFindAncestorDetectsCycle(t *testing.T) {
	tr := New("A")
	b := AddChild(tr.Root, "B")
	c := AddChild(b, "C")

	// Evaluating C encounters a reference back to A: ascend C's ancestors.
	found, ok := FindAncestor(c, func(v string) bool { return v == "A" })
	if !ok || found != tr.Root {
		t.Fatalf("expected to find root ancestor A, ok=%v found=%v", ok, found)
	}

	_, ok = FindAncestor(c, func(v string) bool { return v == "Z" })
	if ok {
		t.Fatalf("did not expect to find unrelated node Z")
	}
}

func TestMultipleChildrenPreserveOrder(t *testing.T) {
	tr := New(0)
	AddChild(tr.Root, 1)
	AddChild(tr.Root, 2)
	third := AddChild(tr.Root, 3)

	if third.Parent() != tr.Root {
		t.Fatalf("expected third's parent to be root")
	}

	var siblings []int
	for n := tr.Root.firstChild; n != nil; n = n.nextSibling {
		siblings = append(siblings, n.Value)
	}
	if !reflect.DeepEqual(siblings, []int{1, 2, 3}) {
		t.Fatalf("siblings = %v, want [1 2 3]", siblings)
	}
}
