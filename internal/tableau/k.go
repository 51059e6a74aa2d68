package tableau

import (
	"sort"

	"github.com/jasonjli/bddtab/internal/bdd"
	"github.com/jasonjli/bddtab/internal/registry"
)

// IsSatK is the K engine entry point (§4.4): decides whether b is
// satisfiable. responsibleVars is meaningful only when the result is false.
func (e *Engine) IsSatK(b bdd.Node) (sat bool, responsibleVars []int) {
	if e.everAssumedSatBDDs == nil {
		e.everAssumedSatBDDs = make(map[int]bool)
	}
	sat, responsibleVars, _ = e.isSatK(b)
	return sat, responsibleVars
}

func (e *Engine) satoneFor(b bdd.Node) bdd.Node {
	if e.Cfg.RTOL {
		return e.B.SatoneR(b)
	}
	return e.B.Satone(b)
}

// isSatK implements §4.4 steps 1-8.
func (e *Engine) isSatK(b bdd.Node) (bool, []int, map[int]bool) {
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
	if len(diaVars) == 0 {
		return true, nil, nil
	}

	e.dependentBDDs[bid] = true
	assumedLocal := make(map[int]bool)

	for role := 1; role <= e.numRoles; role++ {
		unboxed := e.gammaBDD
		if g := e.unsatCache.Global(); g != nil {
			unboxed = e.B.Apply(unboxed, g, bdd.OPand)
		}
		var pickedBoxes []int
		wentFalse := false
		for _, bv := range boxVars {
			if e.Reg.Role(bv) != role {
				continue
			}
			pickedBoxes = append(pickedBoxes, bv)
			unboxed = e.B.Apply(unboxed, e.unbox(bv), bdd.OPand)
			if id(unboxed) == id(e.B.False()) {
				wentFalse = true
				break
			}
		}
		if wentFalse {
			minVars, unsatBDD := e.minimizeBoxes(pickedBoxes)
			delete(e.dependentBDDs, bid)
			sat, resp, _ := e.refineAndRecurseK(b, unsatBDD, minVars)
			return e.finish(b, sat, resp, assumedLocal)
		}

		for _, d := range diaVars {
			if e.Reg.Role(d) != role {
				continue
			}
			e.Stats.ModalJumps++
			m := e.B.Apply(unboxed, e.undiamond(d), bdd.OPand)
			if id(m) == id(e.B.False()) {
				minVars, unsatBDD := e.minimizeDia(pickedBoxes, d)
				delete(e.dependentBDDs, bid)
				sat, resp, _ := e.refineAndRecurseK(b, unsatBDD, minVars)
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
				unsatBDD := e.buildUnsatBDD(filterVars(resp, pickedBoxes), d)
				delete(e.dependentBDDs, bid)
				sat, resp2, _ := e.refineAndRecurseK(b, unsatBDD, resp)
				return e.finish(b, sat, resp2, assumedLocal)
			}
			sub, postRes, postAssumed := e.isSatK(refined)
			if !sub {
				resp := e.closeResponsible(appendAll(appendAll(cacheResVars, postRes...), d), boxVars, diaVars)
				unsatBDD := e.buildUnsatBDD(filterVars(resp, pickedBoxes), d)
				delete(e.dependentBDDs, bid)
				sat, resp2, _ := e.refineAndRecurseK(b, unsatBDD, resp)
				return e.finish(b, sat, resp2, assumedLocal)
			}
			for k := range postAssumed {
				assumedLocal[k] = true
			}
		}
	}

	delete(e.dependentBDDs, bid)
	return e.finish(b, true, nil, assumedLocal)
}

func appendAll(base []int, more ...int) []int {
	out := make([]int, 0, len(base)+len(more))
	out = append(out, base...)
	out = append(out, more...)
	return out
}

func filterVars(vars []int, allowed []int) []int {
	ok := make(map[int]bool, len(allowed))
	for _, v := range allowed {
		ok[v] = true
	}
	var out []int
	for _, v := range vars {
		if ok[v] {
			out = append(out, v)
		}
	}
	return out
}

// extractModalVars walks a satone cube (§4.4 step 4): variables mapping to
// a registered BOX go to boxVars if asserted positively, diaVars if
// negatively; existsDia and plain propositional atoms are skipped.
func (e *Engine) extractModalVars(sigma bdd.Node) (boxVars, diaVars []int) {
	n := sigma
	for {
		v := e.B.Var(n)
		if v < 0 {
			break
		}
		high := e.B.High(n)
		positive := id(high) != id(e.B.False())
		if v != registry.ExistsDia && e.Reg.IsBox(v) {
			if positive {
				boxVars = append(boxVars, v)
			} else {
				diaVars = append(diaVars, v)
			}
		}
		if positive {
			n = high
		} else {
			n = e.B.Low(n)
		}
	}
	return boxVars, diaVars
}

// refineAndRecurseK implements §4.5.
func (e *Engine) refineAndRecurseK(b bdd.Node, unsatBDD bdd.Node, responsibleVars []int) (bool, []int, map[int]bool) {
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
	return e.isSatK(refined)
}

// finish applies §4.6's cycle-assumption discipline and cache writes at the
// exit of a recursive frame for bid = id(b).
func (e *Engine) finish(b bdd.Node, sat bool, responsibleVars []int, assumedLocal map[int]bool) (bool, []int, map[int]bool) {
	bid := id(b)
	if sat {
		delete(assumedLocal, bid)
		if e.everAssumedSatBDDs[bid] {
			e.confirm(bid)
			e.Stats.Confirms++
		}
		if len(assumedLocal) == 0 {
			e.satCache.Add(bid)
			return true, nil, nil
		}
		e.condSatCache = append(e.condSatCache, &condEntry{bddID: bid, assumptions: assumedLocal})
		return true, nil, assumedLocal
	}
	if e.everAssumedSatBDDs[bid] {
		e.reject(bid)
		e.Stats.Rejects++
	}
	e.unsatCache.InsertSaturation(b, responsibleVars)
	return false, responsibleVars, nil
}

// confirm promotes every cond_sat_cache entry whose assumptions become
// empty once bid is erased from them, into sat_cache (§4.6).
func (e *Engine) confirm(bid int) {
	kept := e.condSatCache[:0]
	for _, ce := range e.condSatCache {
		delete(ce.assumptions, bid)
		if len(ce.assumptions) == 0 {
			e.satCache.Add(ce.bddID)
		} else {
			kept = append(kept, ce)
		}
	}
	e.condSatCache = kept
}

// reject discards every cond_sat_cache entry whose assumptions mention bid
// (§4.6): bid was assumed sat somewhere on this path and turned out unsat.
func (e *Engine) reject(bid int) {
	kept := e.condSatCache[:0]
	for _, ce := range e.condSatCache {
		if !ce.assumptions[bid] {
			kept = append(kept, ce)
		}
	}
	e.condSatCache = kept
}

// minimizeBoxes implements §4.7 over the sequence of unbox(bv) BDDs for this
// role's box_vars, returning the minimal responsible subset and a learned
// no-good phrased as the negation of (⋀ box literals ∧ existsDia) — the
// literal form is reusable at any ancestor world without recomputing unbox.
func (e *Engine) minimizeBoxes(boxVars []int) (minimalVars []int, unsatBDD bdd.Node) {
	context := e.contextBDD()
	minimalVars, _ = e.minimizeSequence(context, boxVars, func(v int) bdd.Node { return e.unbox(v) })
	return minimalVars, e.buildUnsatBDD(minimalVars, 0)
}

// minimizeDia is minimizeBoxes extended with d's undiamond as the final,
// triggering BDD (§4.4 step 7b, "minimize including d").
func (e *Engine) minimizeDia(boxVars []int, d int) (minimalVars []int, unsatBDD bdd.Node) {
	context := e.contextBDD()
	allVars := appendAll(boxVars, d)
	bddOf := func(v int) bdd.Node {
		if v == d {
			return e.undiamond(v)
		}
		return e.unbox(v)
	}
	minimalVars, _ = e.minimizeSequence(context, allVars, bddOf)
	// d is always vars[len(vars)-1], so minimizeSequence always seeds
	// minimal with d first; boxVars is whatever else survived minimization.
	boxPart := filterVars(minimalVars, boxVars)
	return minimalVars, e.buildUnsatBDD(boxPart, d)
}

func (e *Engine) contextBDD() bdd.Node {
	ctx := e.gammaBDD
	if g := e.unsatCache.Global(); g != nil {
		ctx = e.B.Apply(ctx, g, bdd.OPand)
	}
	return ctx
}

// minimizeSequence is §4.7's minimization procedure: vars' last element is
// assumed to be the one that just triggered falsity together with context.
func (e *Engine) minimizeSequence(context bdd.Node, vars []int, bddOf func(int) bdd.Node) ([]int, bdd.Node) {
	if len(vars) == 0 {
		return nil, context
	}
	last := vars[len(vars)-1]
	minimalBDD := e.B.Apply(context, bddOf(last), bdd.OPand)
	minimal := []int{last}
	remaining := vars[:len(vars)-1]
	for id(minimalBDD) != id(e.B.False()) {
		running := minimalBDD
		found := -1
		for i, v := range remaining {
			running = e.B.Apply(running, bddOf(v), bdd.OPand)
			if id(running) == id(e.B.False()) {
				found = i
				break
			}
		}
		if found < 0 {
			break
		}
		minimal = append(minimal, remaining[found])
		minimalBDD = running
		remaining = remaining[found+1:]
	}
	return minimal, minimalBDD
}

// buildUnsatBDD builds ¬(⋀ Ithvar(boxVars) ∧ [NIthvar(d) if d>0] ∧
// [Ithvar(existsDia) unless S4]) — the learned no-good phrased purely in
// terms of (outer) literals, per §4.4 steps 7a/7b. Under K, existsDia is
// conjoined regardless of role count or inverse roles: isSatisfiableK's
// learned no-goods conjoin it unconditionally in the source
// (bddtab.cpp:1152,1212,1320). Under S4, which never asserts existsDia, the
// conjunct is left out.
func (e *Engine) buildUnsatBDD(boxVars []int, d int) bdd.Node {
	clause := e.B.True()
	for _, v := range boxVars {
		clause = e.B.Apply(clause, e.B.Ithvar(v), bdd.OPand)
	}
	if d > 0 {
		clause = e.B.Apply(clause, e.B.NIthvar(d), bdd.OPand)
	}
	if !e.Cfg.S4 {
		clause = e.B.Apply(clause, e.B.Ithvar(registry.ExistsDia), bdd.OPand)
	}
	return e.B.Not(clause)
}

// closeResponsible computes the fixed point described in §9's resolution of
// the diaIt open question: repeatedly add any box/dia var from this world
// whose children() intersects the growing responsible set, re-checking
// every variable on every pass (including ones already present) rather than
// only when a new box triggers re-entry.
func (e *Engine) closeResponsible(seed []int, boxVars, diaVars []int) []int {
	respSet := make(map[int]bool, len(seed))
	for _, v := range seed {
		respSet[v] = true
	}
	changed := true
	for changed {
		changed = false
		for _, bv := range boxVars {
			if respSet[bv] {
				continue
			}
			if intersectsSet(e.Reg.Children(bv), respSet) {
				respSet[bv] = true
				changed = true
			}
		}
		for _, d := range diaVars {
			if respSet[d] {
				continue
			}
			if intersectsSet(e.Reg.Children(d), respSet) {
				respSet[d] = true
				changed = true
			}
		}
	}
	out := make([]int, 0, len(respSet))
	for v := range respSet {
		out = append(out, v)
	}
	sort.Ints(out)
	return out
}

func intersectsSet(vars []int, set map[int]bool) bool {
	for _, v := range vars {
		if set[v] {
			return true
		}
	}
	return false
}
