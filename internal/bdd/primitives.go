package bdd

// Var, Low, High, Satone and Support give a caller direct access to a node's
// raw decomposition. The teacher package only ever combines whole BDDs
// through Apply/Ite/Exist; the tableau saturator needs to walk a single
// satisfying path and read off which variables it touches, so these
// primitives expose the same level/low/high triplet that makenode already
// keys on, through the public Node handle instead of a raw table index.

// Var returns the variable (0-based level) tested at the root of n, or -1
// if n is a terminal (0 or 1).
func (b *BDD) Var(n Node) int {
	if b.checkptr(n) != nil || *n < 2 {
		return -1
	}
	return int(b.level(*n))
}

// Low returns the false-branch child of n. Low of a terminal is itself.
func (b *BDD) Low(n Node) Node {
	if b.checkptr(n) != nil {
		return b.seterror("wrong operand in Low")
	}
	if *n < 2 {
		return n
	}
	return b.retnode(b.low(*n))
}

// High returns the true-branch child of n. High of a terminal is itself.
func (b *BDD) High(n Node) Node {
	if b.checkptr(n) != nil {
		return b.seterror("wrong operand in High")
	}
	if *n < 2 {
		return n
	}
	return b.retnode(b.high(*n))
}

// Satone returns one satisfying cube of n as a BDD (a conjunction of
// literals), following the low branch whenever it isn't the false
// constant, the high branch otherwise. It returns False if n is
// unsatisfiable.
func (b *BDD) Satone(n Node) Node {
	if b.checkptr(n) != nil {
		return b.seterror("wrong operand in Satone")
	}
	b.initref()
	b.pushref(*n)
	res := b.satone(*n)
	b.popref(1)
	return b.retnode(res)
}

func (b *BDD) satone(n int) int {
	if n < 2 {
		return n
	}
	if b.low(n) == 0 {
		high := b.pushref(b.satone(b.high(n)))
		res, _ := b.makenode(b.level(n), 0, high, b.refstack)
		b.popref(1)
		return res
	}
	low := b.pushref(b.satone(b.low(n)))
	res, _ := b.makenode(b.level(n), low, 0, b.refstack)
	b.popref(1)
	return res
}

// SatoneR is the right-to-left mirror of Satone (the -rtol flag's valuation
// selection): it follows the high branch whenever it isn't the false
// constant, the low branch otherwise, the opposite preference of Satone.
func (b *BDD) SatoneR(n Node) Node {
	if b.checkptr(n) != nil {
		return b.seterror("wrong operand in SatoneR")
	}
	b.initref()
	b.pushref(*n)
	res := b.satoneR(*n)
	b.popref(1)
	return b.retnode(res)
}

func (b *BDD) satoneR(n int) int {
	if n < 2 {
		return n
	}
	if b.high(n) == 0 {
		low := b.pushref(b.satoneR(b.low(n)))
		res, _ := b.makenode(b.level(n), low, 0, b.refstack)
		b.popref(1)
		return res
	}
	high := b.pushref(b.satoneR(b.high(n)))
	res, _ := b.makenode(b.level(n), 0, high, b.refstack)
	b.popref(1)
	return res
}

// Support returns the cube (conjunction of positive literals) of every
// variable occurring in n, suitable for use as a Makeset varset in Exist or
// AppEx.
func (b *BDD) Support(n Node) Node {
	if b.checkptr(n) != nil {
		return b.seterror("wrong operand in Support")
	}
	seen := make(map[int]bool)
	var walk func(int)
	walk = func(m int) {
		if m < 2 || seen[m] {
			return
		}
		seen[m] = true
		walk(b.low(m))
		walk(b.high(m))
	}
	walk(*n)
	levels := make([]int, 0, len(seen))
	for m := range seen {
		levels = append(levels, int(b.level(m)))
	}
	return b.Makeset(levels)
}
