package formula

// ToBoxNNF rewrites f into BoxNNF (§3, §9): diamonds and implications are
// eliminated by the standard polarity-pushing NNF transform, specialized so
// that the only modality surviving is BOX — a diamond <r>g becomes
// NOT(BOX(r, NNF(NOT g))), i.e. ¬[r]¬g — and NOT appears only directly above
// an AP or a BOX, matching the invariant in §3. Memoized per (Ref, polarity)
// since the arena already shares identical subformulas.
func ToBoxNNF(s *Store, f Ref) Ref {
	c := &nnfConverter{s: s, pos: make(map[Ref]Ref), neg: make(map[Ref]Ref)}
	return c.pos_(f)
}

type nnfConverter struct {
	s        *Store
	pos, neg map[Ref]Ref
}

func (c *nnfConverter) pos_(f Ref) Ref {
	if r, ok := c.pos[f]; ok {
		return r
	}
	n := c.s.at(f)
	var r Ref
	switch n.op {
	case OpTrue:
		r = c.s.True()
	case OpFalse:
		r = c.s.False()
	case OpAP:
		r = c.s.AP(n.name)
	case OpNot:
		r = c.neg_(n.left)
	case OpAnd:
		r = c.s.And(c.pos_(n.left), c.pos_(n.right))
	case OpOr:
		r = c.s.Or(c.pos_(n.left), c.pos_(n.right))
	case OpImp:
		r = c.s.Or(c.neg_(n.left), c.pos_(n.right))
	case OpEqu:
		r = c.s.And(
			c.s.Or(c.neg_(n.left), c.pos_(n.right)),
			c.s.Or(c.neg_(n.right), c.pos_(n.left)),
		)
	case OpBox:
		r = c.s.Box(n.name, c.pos_(n.left))
	case OpDia:
		r = c.s.Not(c.s.Box(n.name, c.neg_(n.left)))
	}
	c.pos[f] = r
	return r
}

func (c *nnfConverter) neg_(f Ref) Ref {
	if r, ok := c.neg[f]; ok {
		return r
	}
	n := c.s.at(f)
	var r Ref
	switch n.op {
	case OpTrue:
		r = c.s.False()
	case OpFalse:
		r = c.s.True()
	case OpAP:
		r = c.s.Not(c.s.AP(n.name))
	case OpNot:
		r = c.pos_(n.left)
	case OpAnd:
		r = c.s.Or(c.neg_(n.left), c.neg_(n.right))
	case OpOr:
		r = c.s.And(c.neg_(n.left), c.neg_(n.right))
	case OpImp:
		r = c.s.And(c.pos_(n.left), c.neg_(n.right))
	case OpEqu:
		r = c.s.Or(
			c.s.And(c.pos_(n.left), c.neg_(n.right)),
			c.s.And(c.neg_(n.left), c.pos_(n.right)),
		)
	case OpBox:
		r = c.s.Not(c.s.Box(n.name, c.pos_(n.left)))
	case OpDia:
		r = c.s.Box(n.name, c.neg_(n.left))
	}
	c.neg[f] = r
	return r
}
