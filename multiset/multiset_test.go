package multiset_test

import (
	"sort"
	"testing"

	"github.com/katalvlaran/routefind/multiset"
)

func TestAddCountLen(t *testing.T) {
	m := multiset.New[string]()
	m.Add("a")
	m.Add("a")
	m.AddN("b", 3)
	m.AddN("c", 0) // no-op
	m.AddN("c", -2)

	if m.Count("a") != 2 || m.Count("b") != 3 || m.Count("c") != 0 {
		t.Fatalf("counts = a:%d b:%d c:%d", m.Count("a"), m.Count("b"), m.Count("c"))
	}
	if m.Len() != 5 {
		t.Fatalf("Len = %d, want 5", m.Len())
	}
}

func TestFromSliceAndDistinct(t *testing.T) {
	m := multiset.FromSlice([]int{1, 2, 2, 3, 3, 3})
	if m.Len() != 6 {
		t.Fatalf("Len = %d, want 6", m.Len())
	}
	d := m.Distinct()
	sort.Ints(d)
	if len(d) != 3 || d[0] != 1 || d[1] != 2 || d[2] != 3 {
		t.Fatalf("Distinct = %v", d)
	}
}

func TestRemove(t *testing.T) {
	m := multiset.FromSlice([]string{"x", "x"})

	if !m.Remove("x") || m.Count("x") != 1 {
		t.Fatal("first Remove must succeed and leave one occurrence")
	}
	if !m.Remove("x") || m.Count("x") != 0 {
		t.Fatal("second Remove must drain the element")
	}
	if m.Remove("x") {
		t.Fatal("Remove of an absent element must report false")
	}
	if m.Len() != 0 {
		t.Fatalf("Len = %d, want 0", m.Len())
	}
}

func TestRemoveMany_Clamps(t *testing.T) {
	m := multiset.New[int]()
	m.AddN(7, 2)

	if m.RemoveMany(7, 5) {
		t.Fatal("removing more occurrences than held must report false")
	}
	if m.Count(7) != 0 || m.Len() != 0 {
		t.Fatalf("count/len after over-remove = %d/%d, want 0/0", m.Count(7), m.Len())
	}
	if !m.RemoveMany(7, 0) {
		t.Fatal("removing zero occurrences is vacuously complete")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	m := multiset.FromSlice([]string{"a", "b"})
	c := m.Clone()
	c.Add("a")
	c.Remove("b")

	if m.Count("a") != 1 || m.Count("b") != 1 {
		t.Fatal("mutating a clone leaked into the original")
	}
	if c.Count("a") != 2 || c.Count("b") != 0 {
		t.Fatal("clone mutations lost")
	}
}

func TestEqual(t *testing.T) {
	a := multiset.FromSlice([]int{1, 1, 2})
	b := multiset.FromSlice([]int{2, 1, 1})
	if !a.Equal(b) {
		t.Fatal("order-independent equality expected")
	}
	b.Add(1)
	if a.Equal(b) {
		t.Fatal("differing counts must compare unequal")
	}
	if a.Equal(multiset.FromSlice([]int{1, 2, 3})) {
		t.Fatal("differing elements must compare unequal")
	}
}
