package tableau

import "github.com/jasonjli/bddtab/internal/bdd"

// IsSatS4 is the S4 engine entry point (§4.8).
func (e *Engine) IsSatS4(b bdd.Node) (sat bool, responsibleVars []int) {
	if e.everAssumedSatBDDs == nil {
		e.everAssumedSatBDDs = make(map[int]bool)
	}
	sat, responsibleVars, _ = e.isSatS4(b, e.B.True(), map[int]bool{})
	return sat, responsibleVars
}

func copyBoolMap(m map[int]bool) map[int]bool {
	out := make(map[int]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// isSatS4 implements §4.8: K's structure plus permanent facts and greedy
// surface unboxing. permanentFacts/permanentBoxVars are carried per
// recursive call rather than mutated in place, since each world's
// accumulation must not leak back to a sibling branch.
func (e *Engine) isSatS4(b bdd.Node, permanentFacts bdd.Node, permanentBoxVars map[int]bool) (bool, []int, map[int]bool) {
	e.Stats.Calls++
	bid := id(b)

	if e.satCache.Has(bid) {
		e.Stats.SatCacheHits++
		return true, nil, nil
	}
	if vars, ok := e.unsatCache.LookupSaturation(b); ok {
		e.Stats.UnsatCacheHits++
		return false, vars, nil
	}
	if bid == id(e.B.True()) {
		return true, nil, nil
	}
	if bid == id(e.B.False()) {
		return false, nil, nil
	}

	sigma := e.satoneFor(b)
	boxVars, diaVars := e.extractModalVars(sigma)

	var newBoxVars []int
	for _, bv := range boxVars {
		if !permanentBoxVars[bv] {
			newBoxVars = append(newBoxVars, bv)
		}
	}

	e.dependentBDDs[bid] = true
	assumedLocal := make(map[int]bool)

	if len(newBoxVars) > 0 {
		satValWithUnboxed := sigma
		newPermanentFacts := permanentFacts
		newPermanentBoxVars := copyBoolMap(permanentBoxVars)
		wentFalse := false
		for _, bv := range newBoxVars {
			u := e.unboxS4(bv)
			satValWithUnboxed = e.B.Apply(satValWithUnboxed, u, bdd.OPand)
			newPermanentFacts = e.B.Apply(newPermanentFacts, u, bdd.OPand)
			newPermanentFacts = e.B.Apply(newPermanentFacts, e.B.Ithvar(bv), bdd.OPand)
			newPermanentBoxVars[bv] = true
			if id(satValWithUnboxed) == id(e.B.False()) {
				wentFalse = true
				break
			}
		}

		if wentFalse {
			minVars, unsatBDD := e.minimizeBoxesS4(sigma, newBoxVars)
			delete(e.dependentBDDs, bid)
			sat, resp, _ := e.refineAndRecurseS4(b, unsatBDD, minVars, permanentFacts, permanentBoxVars)
			return e.finish(b, sat, resp, assumedLocal)
		}

		sub, postRes, postAssumed := e.isSatS4(satValWithUnboxed, newPermanentFacts, newPermanentBoxVars)
		if !sub {
			resp := e.closeResponsible(appendAll(filterVars(postRes, e.cubeVars(sigma)), newBoxVars...), boxVars, diaVars)
			unsatBDD := e.buildUnsatBDDFromCube(resp, sigma)
			delete(e.dependentBDDs, bid)
			sat, resp2, _ := e.refineAndRecurseS4(b, unsatBDD, resp, permanentFacts, permanentBoxVars)
			return e.finish(b, sat, resp2, assumedLocal)
		}
		for k := range postAssumed {
			assumedLocal[k] = true
		}
		permanentFacts = newPermanentFacts
		permanentBoxVars = newPermanentBoxVars
	}

	if len(diaVars) == 0 {
		delete(e.dependentBDDs, bid)
		return e.finish(b, true, nil, assumedLocal)
	}

	// No outer per-role loop here, unlike K's: the reflexive-transitive
	// semantics already swept every role's box obligations into
	// permanentFacts during the greedy-unboxing phase above, so a diamond
	// of any role can jump directly against the same accumulated context.
	for _, d := range diaVars {
		e.Stats.ModalJumps++
		unboxed := e.gammaBDD
		if g := e.unsatCache.Global(); g != nil {
			unboxed = e.B.Apply(unboxed, g, bdd.OPand)
		}
		unboxed = e.B.Apply(unboxed, permanentFacts, bdd.OPand)
		m := e.B.Apply(unboxed, e.undiamond(d), bdd.OPand)
		if id(m) == id(e.B.False()) {
			minVars, unsatBDD := e.minimizeDiaS4(permanentFacts, d)
			delete(e.dependentBDDs, bid)
			sat, resp, _ := e.refineAndRecurseS4(b, unsatBDD, minVars, permanentFacts, permanentBoxVars)
			return e.finish(b, sat, resp, assumedLocal)
		}
		mid := id(m)
		if e.dependentBDDs[mid] {
			assumedLocal[mid] = true
			e.everAssumedSatBDDs[mid] = true
			e.Stats.CycleAssumptions++
			continue
		}
		refined, cacheResVars := e.unsatCache.Apply(e.B, m)
		if id(refined) == id(e.B.False()) {
			resp := e.closeResponsible(appendAll(cacheResVars, d), boxVars, diaVars)
			unsatBDD := e.buildUnsatBDD(filterVars(resp, boxVars), d)
			delete(e.dependentBDDs, bid)
			sat, resp2, _ := e.refineAndRecurseS4(b, unsatBDD, resp, permanentFacts, permanentBoxVars)
			return e.finish(b, sat, resp2, assumedLocal)
		}
		sub, postRes, postAssumed := e.isSatS4(refined, permanentFacts, permanentBoxVars)
		if !sub {
			resp := e.closeResponsible(appendAll(appendAll(cacheResVars, postRes...), d), boxVars, diaVars)
			unsatBDD := e.buildUnsatBDD(filterVars(resp, boxVars), d)
			delete(e.dependentBDDs, bid)
			sat, resp2, _ := e.refineAndRecurseS4(b, unsatBDD, resp, permanentFacts, permanentBoxVars)
			return e.finish(b, sat, resp2, assumedLocal)
		}
		for k := range postAssumed {
			assumedLocal[k] = true
		}
	}

	delete(e.dependentBDDs, bid)
	return e.finish(b, true, nil, assumedLocal)
}

// refineAndRecurseS4 is §4.5's refine-and-recurse, carrying permanent facts
// through the recursive call.
func (e *Engine) refineAndRecurseS4(b bdd.Node, unsatBDD bdd.Node, responsibleVars []int, permanentFacts bdd.Node, permanentBoxVars map[int]bool) (bool, []int, map[int]bool) {
	e.Stats.Refinements++
	e.unsatCache.Insert(e.B, responsibleVars, unsatBDD)
	refined := e.B.Apply(b, unsatBDD, bdd.OPand)
	if id(refined) == id(e.B.False()) {
		return false, responsibleVars, nil
	}
	rid := id(refined)
	if e.dependentBDDs[rid] {
		e.Stats.CycleAssumptions++
		e.everAssumedSatBDDs[rid] = true
		return true, nil, map[int]bool{rid: true}
	}
	return e.isSatS4(refined, permanentFacts, permanentBoxVars)
}

// cubeVars returns every variable occurring in cube n, of either polarity.
func (e *Engine) cubeVars(n bdd.Node) []int {
	var out []int
	for {
		v := e.B.Var(n)
		if v < 0 {
			break
		}
		out = append(out, v)
		high := e.B.High(n)
		if id(high) != id(e.B.False()) {
			n = high
		} else {
			n = e.B.Low(n)
		}
	}
	return out
}

// buildUnsatBDDFromCube builds the negation of the conjunction of vars'
// literals as they actually appear (polarity) in cube sigma.
func (e *Engine) buildUnsatBDDFromCube(vars []int, sigma bdd.Node) bdd.Node {
	polarity := make(map[int]bool)
	n := sigma
	for {
		v := e.B.Var(n)
		if v < 0 {
			break
		}
		high := e.B.High(n)
		pos := id(high) != id(e.B.False())
		polarity[v] = pos
		if pos {
			n = high
		} else {
			n = e.B.Low(n)
		}
	}
	clause := e.B.True()
	for _, v := range vars {
		if polarity[v] {
			clause = e.B.Apply(clause, e.B.Ithvar(v), bdd.OPand)
		} else {
			clause = e.B.Apply(clause, e.B.NIthvar(v), bdd.OPand)
		}
	}
	return e.B.Not(clause)
}

// minimizeBoxesS4 minimizes the new-box unboxS4 sequence against the fixed
// satisfying-valuation context and returns that minimal set followed by
// every other variable of sigma, together with the no-good over all of them
// in their sigma polarity. The valuation's own literals are kept whole
// rather than re-scanned one by one for minimality, which stays sound: the
// no-good asserts the whole valuation, which together with the minimal
// boxes is known to be unsatisfiable.
func (e *Engine) minimizeBoxesS4(sigma bdd.Node, newBoxVars []int) ([]int, bdd.Node) {
	minimal, _ := e.minimizeSequence(sigma, newBoxVars, func(v int) bdd.Node { return e.unboxS4(v) })
	inMin := make(map[int]bool, len(minimal))
	for _, v := range minimal {
		inMin[v] = true
	}
	vars := minimal
	for _, v := range e.cubeVars(sigma) {
		if !inMin[v] {
			vars = append(vars, v)
		}
	}
	return vars, e.buildUnsatBDDFromCube(vars, sigma)
}

// minimizeDiaS4 is minimizeDia's S4 analogue: context is permanentFacts ∧ Γ
// instead of gammaBDD ∧ unsat_cache_bdd alone, matching the successor
// formula used at S4 modal jumps (§4.8).
func (e *Engine) minimizeDiaS4(permanentFacts bdd.Node, d int) ([]int, bdd.Node) {
	ctx := e.contextBDD()
	ctx = e.B.Apply(ctx, permanentFacts, bdd.OPand)
	minimal, _ := e.minimizeSequence(ctx, []int{d}, func(v int) bdd.Node { return e.undiamond(v) })
	return minimal, e.buildUnsatBDD(nil, d)
}
