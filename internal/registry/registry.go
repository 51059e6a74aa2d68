// Package registry implements the atom/variable registry (§3, §4.1): a
// breadth-first walk of Γ and ¬ψ that assigns each propositional atom and
// each boxed subformula a dense BDD variable index, and answers "children"
// queries used by the tableau's modal-jump and S4 surface-unboxing logic.
package registry

import (
	"sort"

	"github.com/jasonjli/bddtab/internal/formula"
)

// ExistsDia is the reserved sentinel variable (§3, §4.1): never itself a
// registered atom, asserted only by the K saturator's mono-modal shortcut.
const ExistsDia = 0

// Registry holds the variable assignment and derived children sets for one
// decision. It is built once per query from (Γ-NNF, ¬ψ-NNF) and is
// thereafter read-only except for the optional -norm aliasing pass.
type Registry struct {
	s        *formula.Store
	atoms    []formula.Ref // atoms[v-1] is the formula registered at var v
	refToVar map[formula.Ref]int
	alias    map[int]int // var -> canonical var, set by the -norm pass

	childCache   map[int][]int
	childCacheS4 map[int][]int
}

// New builds a registry by breadth-first walking gamma (may be the zero Ref
// if there is no Γ) then notPsi, per §4.1: AND/OR push both children to the
// back of the queue; NOT is transparent and its child continues at the
// front (it never becomes a queue entry of its own); BOX registers itself as
// an atomic unit and pushes its subformula to the back to be explored for
// further atoms.
func New(s *formula.Store, gamma, notPsi formula.Ref) *Registry {
	reg := &Registry{
		s:            s,
		refToVar:     make(map[formula.Ref]int),
		childCache:   make(map[int][]int),
		childCacheS4: make(map[int][]int),
	}
	queue := make([]formula.Ref, 0, 16)
	if gamma != 0 {
		queue = append(queue, gamma)
	}
	queue = append(queue, notPsi)
	for len(queue) > 0 {
		r := queue[0]
		queue = queue[1:]
		switch s.Op(r) {
		case formula.OpTrue, formula.OpFalse:
		case formula.OpAP:
			reg.register(r)
		case formula.OpBox:
			reg.register(r)
			queue = append(queue, s.Left(r))
		case formula.OpNot:
			queue = append([]formula.Ref{s.Left(r)}, queue...)
		case formula.OpAnd, formula.OpOr:
			queue = append(queue, s.Left(r), s.Right(r))
		}
	}
	return reg
}

func (reg *Registry) register(r formula.Ref) int {
	if v, ok := reg.refToVar[r]; ok {
		return v
	}
	v := len(reg.atoms) + 1
	reg.atoms = append(reg.atoms, r)
	reg.refToVar[r] = v
	reg.s.SetVar(r, v)
	return v
}

// NumVars returns the dense variable space size, including ExistsDia.
func (reg *Registry) NumVars() int { return len(reg.atoms) + 1 }

// VarOf returns the variable assigned to a registered formula, or -1.
func (reg *Registry) VarOf(r formula.Ref) int {
	v, ok := reg.refToVar[r]
	if !ok {
		return -1
	}
	return v
}

// Formula returns the formula registered at variable v.
func (reg *Registry) Formula(v int) formula.Ref { return reg.atoms[v-1] }

// IsBox reports whether v was registered for a BOX subformula (as opposed to
// a plain propositional atom).
func (reg *Registry) IsBox(v int) bool {
	return reg.s.Op(reg.atoms[v-1]) == formula.OpBox
}

// Role returns the interned role id of a box variable.
func (reg *Registry) Role(v int) int { return reg.s.Role(reg.atoms[v-1]) }

// CanonicalVar follows the -norm alias chain, returning v itself if it was
// never aliased.
func (reg *Registry) CanonicalVar(v int) int {
	for {
		c, ok := reg.alias[v]
		if !ok || c == v {
			return v
		}
		v = c
	}
}

// Alias records that v's box is semantically identical to canonical's (the
// -norm pass, §4.1): every future CanonicalVar(v) resolves to canonical.
func (reg *Registry) Alias(v, canonical int) {
	if reg.alias == nil {
		reg.alias = make(map[int]int)
	}
	reg.alias[v] = canonical
}

// APVars returns every registered plain propositional-atom variable
// (excluding ExistsDia and every box variable) — the classifier's domain
// (§4.9).
func (reg *Registry) APVars() []int {
	var out []int
	for v := 1; v < reg.NumVars(); v++ {
		if !reg.IsBox(v) {
			out = append(out, v)
		}
	}
	return out
}

// Name returns the AP name registered at v.
func (reg *Registry) Name(v int) string { return reg.s.Name(reg.atoms[v-1]) }

// BoxVars returns every registered box variable, in registration order —
// the order -norm iterates in reverse (§4.1).
func (reg *Registry) BoxVars() []int {
	var out []int
	for v := 1; v < reg.NumVars(); v++ {
		if reg.IsBox(v) {
			out = append(out, v)
		}
	}
	return out
}

// collectAtoms walks r (not itself a registered atom — r is the immediate
// subformula of some box, or the whole of Γ/¬ψ) collecting every AP/BOX var
// reached without crossing a further box.
func (reg *Registry) collectAtoms(r formula.Ref) []int {
	seen := make(map[int]bool)
	var walk func(formula.Ref)
	walk = func(r formula.Ref) {
		switch reg.s.Op(r) {
		case formula.OpTrue, formula.OpFalse:
		case formula.OpAP, formula.OpBox:
			seen[reg.refToVar[r]] = true
		case formula.OpNot:
			walk(reg.s.Left(r))
		case formula.OpAnd, formula.OpOr:
			walk(reg.s.Left(r))
			walk(reg.s.Right(r))
		}
	}
	walk(r)
	return sortedKeys(seen)
}

// collectAtomsS4 is the S4 variant (§3, "children set"): it additionally
// steps past a surface box reached through a conjunction, since S4's greedy
// unboxing means such a box's content is reachable from the same world too.
// OR and NOT fall back to the plain walk (matching computeChildrenBoxS4:
// only the AND spine gets the stepping-past treatment).
func (reg *Registry) collectAtomsS4(r formula.Ref) []int {
	seen := make(map[int]bool)
	var walk func(formula.Ref)
	walk = func(r formula.Ref) {
		switch reg.s.Op(r) {
		case formula.OpTrue, formula.OpFalse:
		case formula.OpAP:
			seen[reg.refToVar[r]] = true
		case formula.OpBox:
			seen[reg.refToVar[r]] = true
			walk(reg.s.Left(r))
		case formula.OpAnd:
			walk(reg.s.Left(r))
			walk(reg.s.Right(r))
		case formula.OpOr, formula.OpNot:
			for _, v := range reg.collectAtoms(r) {
				seen[v] = true
			}
		}
	}
	walk(r)
	return sortedKeys(seen)
}

func sortedKeys(m map[int]bool) []int {
	out := make([]int, 0, len(m))
	for v := range m {
		out = append(out, v)
	}
	sort.Ints(out)
	return out
}

func (reg *Registry) subformulaOf(v int) formula.Ref {
	r := reg.atoms[v-1]
	if reg.s.Op(r) != formula.OpBox {
		return 0
	}
	return reg.s.Left(r)
}

// Children returns children(v) (§3): the K-mode reachability set, cached
// after first computation.
func (reg *Registry) Children(v int) []int {
	if c, ok := reg.childCache[v]; ok {
		return c
	}
	var c []int
	if sub := reg.subformulaOf(v); sub != 0 {
		c = reg.collectAtoms(sub)
	}
	reg.childCache[v] = c
	return c
}

// ChildrenS4 returns the S4 variant of children(v).
func (reg *Registry) ChildrenS4(v int) []int {
	if c, ok := reg.childCacheS4[v]; ok {
		return c
	}
	var c []int
	if sub := reg.subformulaOf(v); sub != 0 {
		c = reg.collectAtomsS4(sub)
	}
	reg.childCacheS4[v] = c
	return c
}
