// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package bdd

import "math/big"

// Scanset returns the variables found by following the high branch of n,
// in ascending level order. It is the dual of Makeset.
func (b *BDD) Scanset(n Node) []int {
	if b.checkptr(n) != nil || *n < 2 {
		return nil
	}
	res := []int{}
	for i := *n; i > 1; i = b.high(i) {
		res = append(res, int(b.level(i)))
	}
	return res
}

// Makeset returns the cube (conjunction) of the positive literals of
// varset, such that Scanset(Makeset(a)) == a.
func (b *BDD) Makeset(varset []int) Node {
	res := bddone
	for _, level := range varset {
		tmp := b.Apply(res, b.Ithvar(level), OPand)
		if b.err != nil {
			return bddzero
		}
		res = tmp
	}
	return res
}

// Not returns the negation of n.
func (b *BDD) Not(n Node) Node {
	if b.checkptr(n) != nil {
		return b.seterror("wrong operand in Not (%v)", n)
	}
	b.initref()
	b.pushref(*n)
	res := b.not(*n)
	b.popref(1)
	return b.retnode(res)
}

func (b *BDD) not(n int) int {
	if n == 0 {
		return 1
	}
	if n == 1 {
		return 0
	}
	if res := b.applycache.matchnot(n); res >= 0 {
		return res
	}
	low := b.pushref(b.not(b.low(n)))
	high := b.pushref(b.not(b.high(n)))
	res, _ := b.makenode(b.level(n), low, high, b.refstack)
	b.popref(2)
	return b.applycache.setnot(n, res)
}

// Apply computes the binary operation op over n1 and n2 (see Operator).
func (b *BDD) Apply(n1, n2 Node, op Operator) Node {
	if b.checkptr(n1) != nil {
		return b.seterror("wrong left operand in Apply %s", op)
	}
	if b.checkptr(n2) != nil {
		return b.seterror("wrong right operand in Apply %s", op)
	}
	b.applycache.op = int(op)
	b.initref()
	b.pushref(*n1)
	b.pushref(*n2)
	res := b.apply(*n1, *n2)
	b.popref(2)
	return b.retnode(res)
}

func (b *BDD) apply(left, right int) int {
	switch Operator(b.applycache.op) {
	case OPand:
		if left == right {
			return left
		}
		if left == 0 || right == 0 {
			return 0
		}
		if left == 1 {
			return right
		}
		if right == 1 {
			return left
		}
	case OPor:
		if left == right {
			return left
		}
		if left == 1 || right == 1 {
			return 1
		}
		if left == 0 {
			return right
		}
		if right == 0 {
			return left
		}
	case OPxor:
		if left == right {
			return 0
		}
		if left == 0 {
			return right
		}
		if right == 0 {
			return left
		}
	case OPnand:
		if left == 0 || right == 0 {
			return 1
		}
	case OPnor:
		if left == 1 || right == 1 {
			return 0
		}
	case OPimp:
		if left == 0 {
			return 1
		}
		if left == 1 {
			return right
		}
		if right == 1 || left == right {
			return 1
		}
	case OPbiimp:
		if left == right {
			return 1
		}
		if left == 1 {
			return right
		}
		if right == 1 {
			return left
		}
	case OPdiff:
		if left == right {
			return 0
		}
		if right == 1 {
			return 0
		}
		if left == 0 {
			return 0
		}
	case OPless:
		if left == right || left == 1 {
			return 0
		}
		if left == 0 {
			return right
		}
	case OPinvimp:
		if right == 0 {
			return 1
		}
		if right == 1 {
			return left
		}
		if left == 1 || left == right {
			return 1
		}
	default:
		b.seterror("unauthorized operation (%s) in apply", Operator(b.applycache.op))
		return -1
	}

	if left < 0 || right < 0 {
		return -1
	}
	if left < 2 && right < 2 {
		return opres[b.applycache.op][left][right]
	}
	if res := b.applycache.matchapply(left, right); res >= 0 {
		return res
	}
	leftlvl := b.level(left)
	rightlvl := b.level(right)
	var res int
	switch {
	case leftlvl == rightlvl:
		low := b.pushref(b.apply(b.low(left), b.low(right)))
		high := b.pushref(b.apply(b.high(left), b.high(right)))
		res, _ = b.makenode(leftlvl, low, high, b.refstack)
	case leftlvl < rightlvl:
		low := b.pushref(b.apply(b.low(left), right))
		high := b.pushref(b.apply(b.high(left), right))
		res, _ = b.makenode(leftlvl, low, high, b.refstack)
	default:
		low := b.pushref(b.apply(left, b.low(right)))
		high := b.pushref(b.apply(left, b.high(right)))
		res, _ = b.makenode(rightlvl, low, high, b.refstack)
	}
	b.popref(2)
	return b.applycache.setapply(left, right, res)
}

// Ite computes (f & g) | (!f & h) in one pass.
func (b *BDD) Ite(f, g, h Node) Node {
	if b.checkptr(f) != nil || b.checkptr(g) != nil || b.checkptr(h) != nil {
		return b.seterror("wrong operand in Ite")
	}
	b.initref()
	b.pushref(*f)
	b.pushref(*g)
	b.pushref(*h)
	res := b.ite(*f, *g, *h)
	b.popref(3)
	return b.retnode(res)
}

func iteLow(p, q, r int32, n, low int) int {
	if p > q || p > r {
		return n
	}
	return low
}

func iteHigh(p, q, r int32, n, high int) int {
	if p > q || p > r {
		return n
	}
	return high
}

func min3(p, q, r int32) int32 {
	if p <= q {
		if p <= r {
			return p
		}
		return r
	}
	if q <= r {
		return q
	}
	return r
}

func (b *BDD) ite(f, g, h int) int {
	switch {
	case f == 1:
		return g
	case f == 0:
		return h
	case g == h:
		return g
	case g == 1 && h == 0:
		return f
	case g == 0 && h == 1:
		return b.not(f)
	}
	if res := b.itecache.matchite(f, g, h); res >= 0 {
		return res
	}
	p, q, r := b.level(f), b.level(g), b.level(h)
	low := b.pushref(b.ite(iteLow(p, q, r, f, b.low(f)), iteLow(q, p, r, g, b.low(g)), iteLow(r, p, q, h, b.low(h))))
	high := b.pushref(b.ite(iteHigh(p, q, r, f, b.high(f)), iteHigh(q, p, r, g, b.high(g)), iteHigh(r, p, q, h, b.high(h))))
	res, _ := b.makenode(min3(p, q, r), low, high, b.refstack)
	b.popref(2)
	return b.itecache.setite(f, g, h, res)
}

// Exist existentially quantifies n over the variables in varset (built with
// Makeset).
func (b *BDD) Exist(n, varset Node) Node {
	if b.checkptr(n) != nil || b.checkptr(varset) != nil {
		return b.seterror("wrong operand in Exist")
	}
	if err := b.quantset2cache(*varset); err != nil {
		if *varset >= 2 {
			return nil
		}
	}
	if *varset < 2 {
		return n
	}
	b.quantcache.id = cacheidEXIST
	b.applycache.op = int(OPor)
	b.initref()
	b.pushref(*n)
	b.pushref(*varset)
	res := b.quant(*n, *varset)
	b.popref(2)
	return b.retnode(res)
}

func (b *BDD) quant(n, varset int) int {
	if n < 2 || b.level(n) > b.quantlast {
		return n
	}
	if res := b.quantcache.matchquant(n, varset); res >= 0 {
		return res
	}
	low := b.pushref(b.quant(b.low(n), varset))
	high := b.pushref(b.quant(b.high(n), varset))
	var res int
	if b.quantset[b.level(n)] == b.quantsetID {
		res = b.apply(low, high)
	} else {
		res, _ = b.makenode(b.level(n), low, high, b.refstack)
	}
	b.popref(2)
	return b.quantcache.setquant(n, varset, res)
}

// AppEx computes (∃ varset . n1 op n2) without materializing the full
// Apply result first.
func (b *BDD) AppEx(n1, n2 Node, op Operator, varset Node) Node {
	if int(op) > 4 {
		return b.seterror("operator %s not supported in AppEx", op)
	}
	if b.checkptr(varset) != nil {
		return b.seterror("wrong varset in AppEx")
	}
	if *varset < 2 {
		return b.Apply(n1, n2, op)
	}
	if b.checkptr(n1) != nil || b.checkptr(n2) != nil {
		return b.seterror("wrong operand in AppEx %s", op)
	}
	if err := b.quantset2cache(*varset); err != nil {
		return nil
	}
	b.applycache.op = int(OPor)
	b.appexcache.op = int(op)
	b.appexcache.id = (*varset << 2) | b.appexcache.op
	b.quantcache.id = (b.appexcache.id << 3) | cacheidAPPEX
	b.initref()
	b.pushref(*n1)
	b.pushref(*n2)
	b.pushref(*varset)
	res := b.appquant(*n1, *n2, *varset)
	b.popref(3)
	return b.retnode(res)
}

func (b *BDD) appquant(left, right, varset int) int {
	switch Operator(b.appexcache.op) {
	case OPand:
		if left == 0 || right == 0 {
			return 0
		}
		if left == right {
			return b.quant(left, varset)
		}
		if left == 1 {
			return b.quant(right, varset)
		}
		if right == 1 {
			return b.quant(left, varset)
		}
	case OPor:
		if left == 1 || right == 1 {
			return 1
		}
		if left == right {
			return b.quant(left, varset)
		}
		if left == 0 {
			return b.quant(right, varset)
		}
		if right == 0 {
			return b.quant(left, varset)
		}
	case OPxor:
		if left == right {
			return 0
		}
		if left == 0 {
			return b.quant(right, varset)
		}
		if right == 0 {
			return b.quant(left, varset)
		}
	case OPnand:
		if left == 0 || right == 0 {
			return 1
		}
	case OPnor:
		if left == 1 || right == 1 {
			return 0
		}
	default:
		b.seterror("unauthorized operation in AppEx")
		return -1
	}
	if left < 0 || right < 0 {
		return -1
	}
	if left < 2 && right < 2 {
		return opres[b.appexcache.op][left][right]
	}
	if b.level(left) > b.quantlast && b.level(right) > b.quantlast {
		oldop := b.applycache.op
		b.applycache.op = b.appexcache.op
		res := b.apply(left, right)
		b.applycache.op = oldop
		return res
	}
	if res := b.appexcache.matchappex(left, right); res >= 0 {
		return res
	}
	leftlvl, rightlvl := b.level(left), b.level(right)
	var res int
	switch {
	case leftlvl == rightlvl:
		low := b.pushref(b.appquant(b.low(left), b.low(right), varset))
		high := b.pushref(b.appquant(b.high(left), b.high(right), varset))
		if b.quantset[leftlvl] == b.quantsetID {
			res = b.apply(low, high)
		} else {
			res, _ = b.makenode(leftlvl, low, high, b.refstack)
		}
	case leftlvl < rightlvl:
		low := b.pushref(b.appquant(b.low(left), right, varset))
		high := b.pushref(b.appquant(b.high(left), right, varset))
		if b.quantset[leftlvl] == b.quantsetID {
			res = b.apply(low, high)
		} else {
			res, _ = b.makenode(leftlvl, low, high, b.refstack)
		}
	default:
		low := b.pushref(b.appquant(left, b.low(right), varset))
		high := b.pushref(b.appquant(left, b.high(right), varset))
		if b.quantset[rightlvl] == b.quantsetID {
			res = b.apply(low, high)
		} else {
			res, _ = b.makenode(rightlvl, low, high, b.refstack)
		}
	}
	b.popref(2)
	return b.appexcache.setappex(left, right, res)
}

// Replace substitutes variables in n according to r (see NewReplacer).
func (b *BDD) Replace(n Node, r Replacer) Node {
	if b.checkptr(n) != nil {
		return b.seterror("wrong operand in Replace")
	}
	b.initref()
	b.pushref(*n)
	b.replacecache.id = r.ID()
	res := b.retnode(b.replace(*n, r))
	b.popref(1)
	return res
}

func (b *BDD) replace(n int, r Replacer) int {
	image, ok := r.Replace(b.level(n))
	if !ok {
		return n
	}
	if res := b.replacecache.matchreplace(n); res >= 0 {
		return res
	}
	low := b.pushref(b.replace(b.low(n), r))
	high := b.pushref(b.replace(b.high(n), r))
	res := b.correctify(image, low, high)
	b.popref(2)
	return b.replacecache.setreplace(n, res)
}

func (b *BDD) correctify(level int32, low, high int) int {
	if level < b.level(low) && level < b.level(high) {
		res, _ := b.makenode(level, low, high, b.refstack)
		return res
	}
	if level == b.level(low) || level == b.level(high) {
		b.seterror("error in replace level %d", level)
		return -1
	}
	if b.level(low) == b.level(high) {
		left := b.pushref(b.correctify(level, b.low(low), b.low(high)))
		right := b.pushref(b.correctify(level, b.high(low), b.high(high)))
		res, _ := b.makenode(b.level(low), left, right, b.refstack)
		b.popref(2)
		return res
	}
	if b.level(low) < b.level(high) {
		left := b.pushref(b.correctify(level, b.low(low), high))
		right := b.pushref(b.correctify(level, b.high(low), high))
		res, _ := b.makenode(b.level(low), left, right, b.refstack)
		b.popref(2)
		return res
	}
	left := b.pushref(b.correctify(level, low, b.low(high)))
	right := b.pushref(b.correctify(level, low, b.high(high)))
	res, _ := b.makenode(b.level(high), left, right, b.refstack)
	b.popref(2)
	return res
}

// Satcount counts the satisfying assignments of n, using arbitrary
// precision arithmetic.
func (b *BDD) Satcount(n Node) *big.Int {
	res := big.NewInt(0)
	if b.checkptr(n) != nil {
		b.seterror("wrong operand in Satcount")
		return res
	}
	res.SetBit(res, int(b.level(*n)), 1)
	satc := make(map[int]*big.Int)
	return res.Mul(res, b.satcount(*n, satc))
}

func (b *BDD) satcount(n int, satc map[int]*big.Int) *big.Int {
	if n < 2 {
		return big.NewInt(int64(n))
	}
	if res, ok := satc[n]; ok {
		return res
	}
	level := b.level(n)
	low, high := b.low(n), b.high(n)
	res := big.NewInt(0)
	two := big.NewInt(0)
	two.SetBit(two, int(b.level(low)-level-1), 1)
	res.Add(res, two.Mul(two, b.satcount(low, satc)))
	two = big.NewInt(0)
	two.SetBit(two, int(b.level(high)-level-1), 1)
	res.Add(res, two.Mul(two, b.satcount(high, satc)))
	satc[n] = res
	return res
}

// Allsat calls f on every satisfying assignment of n, as a []int of length
// Varnum with 0/1/-1 (don't care) per variable.
func (b *BDD) Allsat(n Node, f func([]int) error) error {
	if b.checkptr(n) != nil {
		return errOutOfRange
	}
	prof := make([]int, b.varnum)
	for k := range prof {
		prof[k] = -1
	}
	return b.allsat(*n, prof, f)
}

func (b *BDD) allsat(n int, prof []int, f func([]int) error) error {
	if n == 1 {
		return f(prof)
	}
	if n == 0 {
		return nil
	}
	if low := b.low(n); low != 0 {
		prof[b.level(n)] = 0
		for v := b.level(low) - 1; v > b.level(n); v-- {
			prof[v] = -1
		}
		if err := b.allsat(low, prof, f); err != nil {
			return err
		}
	}
	if high := b.high(n); high != 0 {
		prof[b.level(n)] = 1
		for v := b.level(high) - 1; v > b.level(n); v-- {
			prof[v] = -1
		}
		if err := b.allsat(high, prof, f); err != nil {
			return err
		}
	}
	return nil
}

// Allnodes calls f for every node reachable from n (or every active node if
// n is empty).
func (b *BDD) Allnodes(f func(id, level, low, high int) error, n ...Node) error {
	for _, v := range n {
		if b.checkptr(v) != nil {
			return errOutOfRange
		}
	}
	if len(n) == 0 {
		return b.allnodes(f)
	}
	return b.allnodesfrom(f, n)
}
