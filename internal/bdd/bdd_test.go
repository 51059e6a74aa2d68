// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package bdd

import "testing"

// id dereferences a Node for equality comparison. Node is a *int; two Nodes
// returned from separate retnode calls for the same underlying table entry
// are different pointers, so every comparison in this package (and its
// callers) must go through this, never ==.
func id(n Node) int { return *n }

func mustNew(tb testing.TB, varnum int) *BDD {
	b, err := New(varnum)
	if err != nil {
		tb.Fatal(err)
	}
	return b
}

func TestIthvarNIthvar(t *testing.T) {
	b := mustNew(t, 3)
	for i := 0; i < 3; i++ {
		pos := b.Ithvar(i)
		neg := b.NIthvar(i)
		if id(pos) == id(neg) {
			t.Errorf("Ithvar(%d) and NIthvar(%d) must differ", i, i)
		}
		if b.Var(pos) != i {
			t.Errorf("Var(Ithvar(%d)) = %d, want %d", i, b.Var(pos), i)
		}
		if id(b.High(pos)) != id(b.True()) || id(b.Low(pos)) != id(b.False()) {
			t.Errorf("Ithvar(%d) should branch true on high, false on low", i)
		}
		if id(b.High(neg)) != id(b.False()) || id(b.Low(neg)) != id(b.True()) {
			t.Errorf("NIthvar(%d) should branch false on high, true on low", i)
		}
	}
}

func TestApplyAnd(t *testing.T) {
	b := mustNew(t, 2)
	x0, x1 := b.Ithvar(0), b.Ithvar(1)
	and := b.Apply(x0, x1, OPand)
	if id(and) == id(b.False()) {
		t.Fatal("x0 & x1 must be satisfiable")
	}
	nand := b.Apply(and, and, OPnand)
	if id(nand) != id(b.Apply(b.Not(and), b.Not(and), OPor)) {
		t.Errorf("nand(f,f) should equal or(not f, not f)")
	}
	// x0 & x1 & ~x0 is unsatisfiable.
	unsat := b.Apply(and, b.NIthvar(0), OPand)
	if id(unsat) != id(b.False()) {
		t.Errorf("x0 & x1 & ~x0 should be False, got node %d", id(unsat))
	}
}

func TestApplyOrImpBiimp(t *testing.T) {
	b := mustNew(t, 2)
	x0, x1 := b.Ithvar(0), b.Ithvar(1)
	or := b.Apply(x0, x1, OPor)
	if id(or) == id(b.False()) {
		t.Fatal("x0 | x1 must be satisfiable")
	}
	// x0 => x0 | x1 is a tautology.
	imp := b.Apply(x0, or, OPimp)
	if id(imp) != id(b.True()) {
		t.Errorf("x0 => (x0|x1) should be True, got node %d", id(imp))
	}
	// x0 <=> x0 is a tautology.
	biimp := b.Apply(x0, x0, OPbiimp)
	if id(biimp) != id(b.True()) {
		t.Errorf("x0 <=> x0 should be True, got node %d", id(biimp))
	}
}

func TestNotInvolution(t *testing.T) {
	b := mustNew(t, 2)
	f := b.Apply(b.Ithvar(0), b.NIthvar(1), OPor)
	if id(b.Not(b.Not(f))) != id(f) {
		t.Error("not(not(f)) must equal f")
	}
}

func TestIte(t *testing.T) {
	b := mustNew(t, 3)
	x0, x1, x2 := b.Ithvar(0), b.Ithvar(1), b.Ithvar(2)
	// ite(x0, x1, x2) == (x0 & x1) | (~x0 & x2)
	ite := b.Ite(x0, x1, x2)
	expected := b.Apply(
		b.Apply(x0, x1, OPand),
		b.Apply(b.Not(x0), x2, OPand),
		OPor,
	)
	if id(ite) != id(expected) {
		t.Errorf("Ite(x0,x1,x2) = %d, want %d", id(ite), id(expected))
	}
}

func TestSatcount(t *testing.T) {
	b := mustNew(t, 2)
	x0, x1 := b.Ithvar(0), b.Ithvar(1)
	// exactly one of the 4 valuations of (x0,x1) falsifies x0|x1.
	or := b.Apply(x0, x1, OPor)
	count := b.Satcount(or)
	if count.Int64() != 3 {
		t.Errorf("Satcount(x0|x1) = %s, want 3", count)
	}
	if b.Satcount(b.True()).Int64() != 4 {
		t.Errorf("Satcount(True) over 2 vars = %s, want 4", b.Satcount(b.True()))
	}
	if b.Satcount(b.False()).Int64() != 0 {
		t.Errorf("Satcount(False) = %s, want 0", b.Satcount(b.False()))
	}
}

func TestSatoneAndSatoneR(t *testing.T) {
	b := mustNew(t, 3)
	x0, x1, x2 := b.Ithvar(0), b.Ithvar(1), b.Ithvar(2)
	f := b.Apply(b.Apply(x0, x1, OPor), x2, OPand)

	cube := b.Satone(f)
	if id(b.Apply(cube, f, OPdiff)) != id(b.False()) {
		t.Error("Satone(f) must imply f (cube diff f must be False)")
	}
	if b.Satcount(cube).Int64() != 1 {
		t.Errorf("Satone should pick exactly one valuation per unconstrained var, got count %s", b.Satcount(cube))
	}

	cubeR := b.SatoneR(f)
	if id(b.Apply(cubeR, f, OPdiff)) != id(b.False()) {
		t.Error("SatoneR(f) must imply f")
	}
}

func TestSupport(t *testing.T) {
	b := mustNew(t, 3)
	x0, x2 := b.Ithvar(0), b.Ithvar(2)
	f := b.Apply(x0, x2, OPand)
	sup := b.Support(f)
	if b.Var(sup) != 0 {
		t.Fatalf("Support(x0&x2) should test var 0 first, got %d", b.Var(sup))
	}
	// variable 1 never appears in f, so it must not appear in its support.
	seen := make(map[int]bool)
	n := sup
	for id(n) >= 2 {
		seen[b.Var(n)] = true
		n = b.High(n)
	}
	if seen[1] {
		t.Error("Support(x0&x2) must not mention variable 1")
	}
	if !seen[0] || !seen[2] {
		t.Error("Support(x0&x2) must mention variables 0 and 2")
	}
}

func TestExistAndAppEx(t *testing.T) {
	b := mustNew(t, 2)
	x0, x1 := b.Ithvar(0), b.Ithvar(1)
	f := b.Apply(x0, x1, OPand)
	varset := b.Makeset([]int{0})
	exist := b.Exist(f, varset)
	// exists x0. (x0 & x1) == x1
	if id(exist) != id(x1) {
		t.Errorf("Exist(x0&x1, {x0}) = %d, want x1 (%d)", id(exist), id(x1))
	}
	appex := b.AppEx(x0, x1, OPand, varset)
	if id(appex) != id(x1) {
		t.Errorf("AppEx(x0,x1,and,{x0}) = %d, want x1 (%d)", id(appex), id(x1))
	}
}

func TestReplace(t *testing.T) {
	b := mustNew(t, 2)
	x0, x1 := b.Ithvar(0), b.Ithvar(1)
	r, err := b.NewReplacer([]int{0}, []int{1})
	if err != nil {
		t.Fatal(err)
	}
	replaced := b.Replace(x0, r)
	if id(replaced) != id(x1) {
		t.Errorf("Replace(x0, 0->1) = %d, want x1 (%d)", id(replaced), id(x1))
	}
}

func TestAllsat(t *testing.T) {
	b := mustNew(t, 2)
	x0, x1 := b.Ithvar(0), b.Ithvar(1)
	f := b.Apply(x0, x1, OPor)
	var profiles [][]int
	err := b.Allsat(f, func(p []int) error {
		cp := make([]int, len(p))
		copy(cp, p)
		profiles = append(profiles, cp)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(profiles) == 0 {
		t.Error("Allsat(x0|x1) should report at least one satisfying profile")
	}
}

func TestErrorOnOutOfRangeVariable(t *testing.T) {
	b := mustNew(t, 2)
	if n := b.Ithvar(5); n != nil {
		t.Errorf("Ithvar out of range should return nil, got %v", n)
	}
	if !b.Errored() {
		t.Error("manager should record an error after an out-of-range Ithvar")
	}
}
