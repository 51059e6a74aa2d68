// Package formula implements the modal-logic formula AST (§3, §9): a tagged
// variant interned into an arena keyed by structural equality, so that two
// syntactically-equal subformulas always share one Ref and "equal" collapses
// to comparing two ints. This is the Go answer to the original's
// reference-counted KFormula* with a custom comparator/map: hash-consing
// gives us structural equality and a total order (by Ref) for free, so there
// is no separate compare() routine to port.
package formula

import "fmt"

// Op is the formula constructor tag.
type Op int

const (
	OpTrue Op = iota
	OpFalse
	OpAP
	OpBox
	OpDia // accepted only at parse time; eliminated by ToBoxNNF
	OpNot
	OpImp // accepted only at parse time; eliminated by ToBoxNNF
	OpEqu // accepted only at parse time; eliminated by ToBoxNNF
	OpAnd
	OpOr
)

// Ref is an index into a Store's arena. The zero value is not a valid
// reference; Store.intern never returns 0.
type Ref int32

// node is one arena entry. Var and Role are write-once fields, attached
// after construction by the registry and role interner respectively (§9:
// "mutation is a once-per-node, monotone write").
type node struct {
	op          Op
	name        string // AP name, or role name for Box/Dia
	left, right Ref    // children; right unused for unary/leaf ops

	role    int // interned role id for Box/Dia, 0 until assigned
	roleSet bool
	v       int // assigned BDD variable index plus one, 0 until assigned
}

// Store is an arena of interned formula nodes.
type Store struct {
	nodes []node
	index map[string]Ref
}

// NewStore returns an empty arena.
func NewStore() *Store {
	return &Store{index: make(map[string]Ref)}
}

func (s *Store) intern(n node) Ref {
	key := internKey(n)
	if r, ok := s.index[key]; ok {
		return r
	}
	s.nodes = append(s.nodes, n)
	r := Ref(len(s.nodes)) // 1-based so the zero Ref is invalid
	s.index[key] = r
	return r
}

func internKey(n node) string {
	return fmt.Sprintf("%d|%s|%d|%d", n.op, n.name, n.left, n.right)
}

func (s *Store) at(r Ref) *node {
	return &s.nodes[r-1]
}

// Op returns the constructor tag of r.
func (s *Store) Op(r Ref) Op { return s.at(r).op }

// Name returns the AP name, or the role name for a Box/Dia node.
func (s *Store) Name(r Ref) string { return s.at(r).name }

// Left returns the first (or only) child of r.
func (s *Store) Left(r Ref) Ref { return s.at(r).left }

// Right returns the second child of r (AND/OR only).
func (s *Store) Right(r Ref) Ref { return s.at(r).right }

// Var returns the BDD variable index assigned to r, or -1 if unassigned.
func (s *Store) Var(r Ref) int {
	n := s.at(r)
	if n.v == 0 {
		return -1
	}
	return n.v - 1
}

// SetVar attaches a BDD variable index to r. It is a write-once operation;
// calling it twice with different values indicates a registry bug.
func (s *Store) SetVar(r Ref, v int) {
	n := s.at(r)
	if n.v != 0 && n.v-1 != v {
		panic(fmt.Sprintf("formula: variable already assigned to %v (%d, wanted %d)", r, n.v-1, v))
	}
	n.v = v + 1
}

// Role returns the interned role id of a Box/Dia node, or -1 if unassigned.
func (s *Store) Role(r Ref) int {
	n := s.at(r)
	if !n.roleSet {
		return -1
	}
	return n.role
}

// SetRole attaches an interned role id to a Box/Dia node.
func (s *Store) SetRole(r Ref, role int) {
	n := s.at(r)
	if n.roleSet && n.role != role {
		panic(fmt.Sprintf("formula: role already assigned to %v (%d, wanted %d)", r, n.role, role))
	}
	n.role = role
	n.roleSet = true
}

// Constructors. Each interns its node and returns the canonical Ref.

func (s *Store) True() Ref  { return s.intern(node{op: OpTrue}) }
func (s *Store) False() Ref { return s.intern(node{op: OpFalse}) }

func (s *Store) AP(name string) Ref {
	return s.intern(node{op: OpAP, name: name})
}

func (s *Store) Box(role string, f Ref) Ref {
	return s.intern(node{op: OpBox, name: role, left: f})
}

func (s *Store) Dia(role string, f Ref) Ref {
	return s.intern(node{op: OpDia, name: role, left: f})
}

func (s *Store) Not(f Ref) Ref {
	return s.intern(node{op: OpNot, left: f})
}

func (s *Store) And(l, r Ref) Ref {
	return s.intern(node{op: OpAnd, left: l, right: r})
}

func (s *Store) Or(l, r Ref) Ref {
	return s.intern(node{op: OpOr, left: l, right: r})
}

func (s *Store) Imp(l, r Ref) Ref {
	return s.intern(node{op: OpImp, left: l, right: r})
}

func (s *Store) Equ(l, r Ref) Ref {
	return s.intern(node{op: OpEqu, left: l, right: r})
}

// Size returns the number of distinct interned nodes reachable from f. Since
// nodes are hash-consed, this is the DAG size, not the tree size the C++
// source's recursive KFormula::size() would have reported for an
// un-shared tree; shared subformulas are counted once.
func (s *Store) Size(f Ref) int {
	seen := make(map[Ref]bool)
	var walk func(Ref)
	walk = func(r Ref) {
		if seen[r] {
			return
		}
		seen[r] = true
		n := s.at(r)
		if n.left != 0 {
			walk(n.left)
		}
		if n.right != 0 {
			walk(n.right)
		}
	}
	walk(f)
	return len(seen)
}
