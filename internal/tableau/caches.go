package tableau

import "github.com/jasonjli/bddtab/internal/bdd"

// fifoSet is a FIFO-bounded set of BDD ids, backing sat_cache (§3, §5).
type fifoSet struct {
	max   int
	order []int
	set   map[int]bool
}

func newFIFOSet(max int) *fifoSet {
	return &fifoSet{max: max, set: make(map[int]bool)}
}

func (f *fifoSet) Has(id int) bool { return f.set[id] }

func (f *fifoSet) Add(id int) {
	if f.set[id] {
		return
	}
	if len(f.order) >= f.max {
		oldest := f.order[0]
		f.order = f.order[1:]
		delete(f.set, oldest)
	}
	f.order = append(f.order, id)
	f.set[id] = true
}

func (f *fifoSet) Remove(id int) { delete(f.set, id) }

// condEntry is one entry of cond_sat_cache (§3, §4.6): a BDD known sat only
// if every id in assumptions is independently confirmed sat.
type condEntry struct {
	bddID       int
	assumptions map[int]bool
}

// unsatCache implements §3's unsat-cache family behind the -buc/-suc/-nuc
// flags. The three flavors are mutually exclusive alternatives, not layers:
// -buc accumulates a single global BDD (the conjunction of every learned
// no-good's negation) and conjoins it into `unboxed` at every modal jump
// (§4.4 step 7a); the default flavor instead keeps a support-keyed list for
// the targeted per-diamond subset lookup in step 7b; -suc skips both of
// those and relies solely on the saturation-level LookupSaturation/
// InsertSaturation pair. -nuc switches every one of these off: refinement
// still works, it just never benefits from a previous branch's learned
// no-good.
type unsatCache struct {
	cfg Config

	global bdd.Node // conjunction of every learned no-good's negation

	entries    []unsatEntry // default flavor, FIFO bounded
	maxEntries int

	suc      map[int][]int // -suc: bdd id -> responsible vars
	sucOrder []int
}

type unsatEntry struct {
	vars    []int
	learned bdd.Node
}

func newUnsatCache(cfg Config) *unsatCache {
	return &unsatCache{
		cfg:        cfg,
		maxEntries: cfg.MaxCacheSize,
		suc:        make(map[int][]int),
	}
}

// Global returns the running conjunction of learned no-goods, or nil if the
// engine's BDD manager hasn't initialized it yet (the caller conjoins it
// only after checking for nil, treating nil as bddtrue).
func (c *unsatCache) Global() bdd.Node { return c.global }

// Insert records a learned no-good: vars is its responsible-variable
// support, learned is the BDD to conjoin into future worlds (the negation
// of the offending conjunction of literals, per §4.7).
func (c *unsatCache) Insert(b *bdd.BDD, vars []int, learned bdd.Node) {
	if c.cfg.NUC {
		return
	}
	if c.cfg.BUC {
		if c.global == nil {
			c.global = b.True()
		}
		c.global = b.Apply(c.global, learned, bdd.OPand)
		return
	}
	c.entries = append(c.entries, unsatEntry{vars: vars, learned: learned})
	if len(c.entries) > c.maxEntries {
		c.entries = c.entries[1:]
	}
}

// Apply conjoins into M every default-flavor entry whose variable support is
// a subset of M's own support, collecting the union of those vars into
// resVars (§4.4 step 7b). Only the default flavor runs this lookup: -buc and
// -suc each rely on their own mechanism instead (Global's unconditional
// conjunction, LookupSaturation's entry-point check).
func (c *unsatCache) Apply(b *bdd.BDD, m bdd.Node) (refined bdd.Node, resVars []int) {
	refined = m
	if c.cfg.NUC || c.cfg.BUC || c.cfg.SUC {
		return refined, nil
	}
	support := b.Scanset(b.Support(m))
	supportSet := make(map[int]bool, len(support))
	for _, v := range support {
		supportSet[v] = true
	}
	for _, e := range c.entries {
		if isSubset(e.vars, supportSet) {
			refined = b.Apply(refined, e.learned, bdd.OPand)
			resVars = append(resVars, e.vars...)
			if id(refined) == id(b.False()) {
				return refined, resVars
			}
		}
	}
	return refined, resVars
}

// LookupSaturation implements the -suc flavor's entry-point check (§4.4
// step 1, §3): a BDD already known unsat by a previous pass skips recursion
// entirely.
func (c *unsatCache) LookupSaturation(m bdd.Node) ([]int, bool) {
	if !c.cfg.SUC {
		return nil, false
	}
	vars, ok := c.suc[id(m)]
	return vars, ok
}

// InsertSaturation records an unsat result under the -suc flavor.
func (c *unsatCache) InsertSaturation(m bdd.Node, vars []int) {
	if !c.cfg.SUC {
		return
	}
	key := id(m)
	if _, ok := c.suc[key]; !ok {
		c.sucOrder = append(c.sucOrder, key)
		if len(c.sucOrder) > c.maxEntries {
			old := c.sucOrder[0]
			c.sucOrder = c.sucOrder[1:]
			delete(c.suc, old)
		}
	}
	c.suc[key] = vars
}

func isSubset(small []int, big map[int]bool) bool {
	for _, v := range small {
		if !big[v] {
			return false
		}
	}
	return true
}
