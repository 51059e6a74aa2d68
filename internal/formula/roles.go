package formula

import "strings"

// Roles interns accessibical-relation names into a dense integer space
// (§2.3, "Role interner"). Role 0 is never assigned to a real box; ids start
// at 1, matching the registry's reservation of variable 0 for existsDia
// staying out of the role space entirely.
type Roles struct {
	ids     map[string]int
	names   []string
	inverse map[string]bool
}

// NewRoles returns an empty role interner.
func NewRoles() *Roles {
	return &Roles{ids: make(map[string]int), names: []string{""}}
}

// Intern returns the id for name, assigning a fresh one on first sight. A
// leading '-' marks an inverse role (§6); the '-' is stripped before
// interning so "-r" and "r" share one id, and the role is flagged inverse.
func (r *Roles) Intern(name string) int {
	base := name
	inv := false
	if strings.HasPrefix(name, "-") {
		inv = true
		base = name[1:]
	}
	id, ok := r.ids[base]
	if !ok {
		r.names = append(r.names, base)
		id = len(r.names) - 1
		r.ids[base] = id
	}
	if inv {
		if r.inverse == nil {
			r.inverse = make(map[string]bool)
		}
		r.inverse[base] = true
	}
	return id
}

// IsInverse reports whether role id was ever named with a leading '-'
// anywhere in the input. Per §6/§7, inverse roles are parsed but not
// supported by the decision engine.
func (r *Roles) IsInverse(id int) bool {
	if id <= 0 || id >= len(r.names) {
		return false
	}
	return r.inverse[r.names[id]]
}

// Name returns the (un-prefixed) role name for id.
func (r *Roles) Name(id int) string { return r.names[id] }

// AnyInverse reports whether any role anywhere in the input was named with a
// leading '-'. Gates the `existsDia` mono-modal shortcut (§4.2): the source
// only wires it when !S4 && numRoles<=1 && !inverseRoles.
func (r *Roles) AnyInverse() bool { return len(r.inverse) > 0 }

// NumRoles returns the number of distinct roles interned so far.
func (r *Roles) NumRoles() int { return len(r.names) - 1 }

// AssignRoles walks every BOX node reachable from f (the formula must
// already be in BoxNNF; DIA no longer occurs) and attaches an interned role
// id to it. Safe to call on Γ and ¬ψ in turn with the same Roles and a fresh
// visited set each time, since Store.SetRole tolerates being called twice
// with the same value.
func AssignRoles(s *Store, roles *Roles, f Ref) {
	seen := make(map[Ref]bool)
	var walk func(Ref)
	walk = func(r Ref) {
		if seen[r] {
			return
		}
		seen[r] = true
		switch s.Op(r) {
		case OpBox:
			id := roles.Intern(s.Name(r))
			s.SetRole(r, id)
			walk(s.Left(r))
		case OpNot, OpDia:
			walk(s.Left(r))
		case OpAnd, OpOr, OpImp, OpEqu:
			walk(s.Left(r))
			walk(s.Right(r))
		}
	}
	walk(f)
}
