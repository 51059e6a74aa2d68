package tableau

import (
	"github.com/jasonjli/bddtab/internal/bdd"
	"github.com/jasonjli/bddtab/internal/formula"
	"github.com/jasonjli/bddtab/internal/registry"
)

// monoShortcut reports whether the existsDia sentinel is wired in this run
// (§3, §4.1, §9): only in mono-modal K with no inverse role ever named.
// Resolves spec's Open Question 1 against the literal source: toBDD's plain
// AP/BOX case never conjoins existsDia; only a negated-box (diamond)
// literal in toBDD, and a positive-box literal in toNotBDD, do — both gated
// on this same condition.
func (e *Engine) monoShortcut() bool {
	return !e.Cfg.S4 && e.numRoles <= 1 && !e.Roles.AnyInverse()
}

func (e *Engine) litVar(f formula.Ref) int {
	return e.Reg.CanonicalVar(e.Reg.VarOf(f))
}

// ToBDD mirrors the BoxNNF grammar (§4.2): AP/BOX become a literal of their
// assigned variable; NOT AP / NOT BOX become the negative literal (with
// existsDia conjoined for the diamond case, per monoShortcut); AND/OR
// recurse; TRUE/FALSE are the BDD constants.
func (e *Engine) ToBDD(f formula.Ref) bdd.Node {
	switch e.S.Op(f) {
	case formula.OpTrue:
		return e.B.True()
	case formula.OpFalse:
		return e.B.False()
	case formula.OpAP, formula.OpBox:
		return e.B.Ithvar(e.litVar(f))
	case formula.OpNot:
		child := e.S.Left(f)
		lit := e.B.NIthvar(e.litVar(child))
		if e.S.Op(child) == formula.OpBox && e.monoShortcut() {
			lit = e.B.Apply(lit, e.B.Ithvar(registry.ExistsDia), bdd.OPand)
		}
		return lit
	case formula.OpAnd:
		return e.B.Apply(e.ToBDD(e.S.Left(f)), e.ToBDD(e.S.Right(f)), bdd.OPand)
	case formula.OpOr:
		return e.B.Apply(e.ToBDD(e.S.Left(f)), e.ToBDD(e.S.Right(f)), bdd.OPor)
	}
	return e.B.False()
}

// ToNotBDD computes BDD(¬f) directly by De Morgan at the tree level (§4.2),
// rather than building ToBDD(f) and negating the whole BDD: the positive-box
// leaf case this reaches conjoins existsDia under monoShortcut, mirroring
// the diamond case in ToBDD.
func (e *Engine) ToNotBDD(f formula.Ref) bdd.Node {
	switch e.S.Op(f) {
	case formula.OpTrue:
		return e.B.False()
	case formula.OpFalse:
		return e.B.True()
	case formula.OpAP:
		return e.B.NIthvar(e.litVar(f))
	case formula.OpBox:
		lit := e.B.NIthvar(e.litVar(f))
		if e.monoShortcut() {
			lit = e.B.Apply(lit, e.B.Ithvar(registry.ExistsDia), bdd.OPand)
		}
		return lit
	case formula.OpNot:
		child := e.S.Left(f)
		return e.B.Ithvar(e.litVar(child))
	case formula.OpAnd:
		return e.B.Apply(e.ToNotBDD(e.S.Left(f)), e.ToNotBDD(e.S.Right(f)), bdd.OPor)
	case formula.OpOr:
		return e.B.Apply(e.ToNotBDD(e.S.Left(f)), e.ToNotBDD(e.S.Right(f)), bdd.OPand)
	}
	return e.B.True()
}

// ToBDDS4Unbox eagerly strips surface boxes reachable through only
// conjunctions (§4.2, used by S4's greedy surface unboxing): a BOX recurses
// straight into its subformula with no literal emitted for the box itself;
// an AND recurses on both sides; anything else (including OR) falls back to
// the ordinary ToBDD, which treats inner boxes as atomic again.
func (e *Engine) ToBDDS4Unbox(f formula.Ref) bdd.Node {
	switch e.S.Op(f) {
	case formula.OpAnd:
		return e.B.Apply(e.ToBDDS4Unbox(e.S.Left(f)), e.ToBDDS4Unbox(e.S.Right(f)), bdd.OPand)
	case formula.OpBox:
		return e.ToBDDS4Unbox(e.S.Left(f))
	default:
		return e.ToBDD(f)
	}
}

// subformulaOfVar returns the immediate subformula of the box formula
// registered at variable v.
func (e *Engine) subformulaOfVar(v int) formula.Ref {
	f := e.Reg.Formula(v)
	return e.S.Left(f)
}

// unbox returns BDD(subformula of box var v), memoized. The hit/miss
// counters follow the source's odd-but-exact bookkeeping (§9): every call
// increments UnboxCacheHits once; a miss additionally bumps CachedUnboxings
// and nets UnboxCacheHits back down before the final unconditional bump, so
// UnboxCacheHits ends up counting every call while CachedUnboxings counts
// only the misses.
func (e *Engine) unbox(v int) bdd.Node {
	e.Stats.UnboxCacheHits++
	if n, ok := e.unboxCache[v]; ok {
		return n
	}
	e.Stats.CachedUnboxings++
	e.Stats.UnboxCacheHits--
	n := e.ToBDD(e.subformulaOfVar(v))
	e.unboxCache[v] = n
	e.Stats.UnboxCacheHits++
	return n
}

// undiamond returns BDD(¬ subformula of box var v), memoized, with the same
// counter discipline as unbox.
func (e *Engine) undiamond(v int) bdd.Node {
	e.Stats.UndiamondCacheHits++
	if n, ok := e.undiamondCache[v]; ok {
		return n
	}
	e.Stats.CachedUndiamonds++
	e.Stats.UndiamondCacheHits--
	n := e.ToNotBDD(e.subformulaOfVar(v))
	e.undiamondCache[v] = n
	e.Stats.UndiamondCacheHits++
	return n
}

// unboxS4 returns ToBDDS4Unbox(subformula of box var v), memoized, with the
// same counter discipline as unbox.
func (e *Engine) unboxS4(v int) bdd.Node {
	e.Stats.UnboxS4CacheHits++
	if n, ok := e.unboxS4Cache[v]; ok {
		return n
	}
	e.Stats.CachedUnboxS4s++
	e.Stats.UnboxS4CacheHits--
	n := e.ToBDDS4Unbox(e.subformulaOfVar(v))
	e.unboxS4Cache[v] = n
	e.Stats.UnboxS4CacheHits++
	return n
}
