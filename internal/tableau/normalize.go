package tableau

import "github.com/jasonjli/bddtab/internal/bdd"

// Normalize implements the optional -norm pass (§4.1): iterate registered
// boxes in reverse order, compute unbox(v) for each, and alias v to an
// earlier-seen variable whenever its unbox BDD is identical — collapsing
// semantically identical boxes like [r](a∧b) and [r](b∧a) to one variable.
// Must run before SetGamma/ToBDD are used to build the decision's BDDs,
// since later literal lookups go through Registry.CanonicalVar.
//
// Under S4, the box-coalescing unboxings computed here always use plain
// (K-style) unbox, not unbox_s4 — stepping past surface boxes would make
// two genuinely different S4 successors look identical. Once the pass
// finishes, every unbox/unboxS4 cache entry is discarded, since the S4
// engine's own unboxing semantics differ and must not reuse values
// computed for this syntactic dedup pass.
func Normalize(e *Engine) {
	boxVars := e.Reg.BoxVars()
	seen := make(map[int]int)
	for i := len(boxVars) - 1; i >= 0; i-- {
		v := boxVars[i]
		u := e.unbox(v)
		uid := id(u)
		if canon, ok := seen[uid]; ok {
			e.Reg.Alias(v, canon)
		} else {
			seen[uid] = v
		}
	}
	if e.Cfg.S4 {
		e.unboxCache = make(map[int]bdd.Node)
		e.unboxS4Cache = make(map[int]bdd.Node)
		e.Stats.UnboxCacheHits = 0
		e.Stats.CachedUnboxings = 0
		e.Stats.UnboxS4CacheHits = 0
		e.Stats.CachedUnboxS4s = 0
	}
}
