package tableau

import "fmt"

// Summary renders the engine's counters in the shape -v prints them
// (§6, "statistics (see source for exact key list) follow in parentheses").
// The !S4-only Ig[]/Ig<>/IgGen triplet is printed from Stats.IgBox/IgDia/
// IgGen, which nothing in the engine increments, so it always reads zero.
func (e *Engine) Summary() string {
	s := e.Stats
	out := fmt.Sprintf(
		"(Calls:%d SatHits:%d UnsatHits:%d Jumps:%d Refine:%d Cycles:%d Confirm:%d Reject:%d "+
			"Unbox[hits:%d miss:%d] Undia[hits:%d miss:%d]",
		s.Calls, s.SatCacheHits, s.UnsatCacheHits, s.ModalJumps, s.Refinements,
		s.CycleAssumptions, s.Confirms, s.Rejects,
		s.UnboxCacheHits, s.CachedUnboxings, s.UndiamondCacheHits, s.CachedUndiamonds,
	)
	if e.Cfg.S4 {
		out += fmt.Sprintf(" UnboxS4[hits:%d miss:%d]", s.UnboxS4CacheHits, s.CachedUnboxS4s)
	} else {
		out += fmt.Sprintf(" Ig[]:%d Ig<>:%d IgGen:%d", s.IgBox, s.IgDia, s.IgGen)
	}
	out += ")"
	return out
}
