package formula

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInternSharesStructurallyEqualNodes(t *testing.T) {
	s := NewStore()
	p := s.AP("p")
	q := s.AP("q")
	a := s.And(p, q)
	b := s.And(s.AP("p"), s.AP("q"))
	require.Equal(t, a, b, "structurally identical formulas must share one Ref")
	require.Equal(t, 3, s.Size(a), "p, q and their conjunction: three distinct nodes")
}

func TestVarAndRoleWriteOnce(t *testing.T) {
	s := NewStore()
	p := s.AP("p")
	require.Equal(t, -1, s.Var(p))
	s.SetVar(p, 4)
	require.Equal(t, 4, s.Var(p))
	require.NotPanics(t, func() { s.SetVar(p, 4) }, "re-setting the same value is allowed")
	require.Panics(t, func() { s.SetVar(p, 5) }, "re-setting a different value is a bug")

	box := s.Box("r", p)
	require.Equal(t, -1, s.Role(box))
	s.SetRole(box, 2)
	require.Equal(t, 2, s.Role(box))
	require.Panics(t, func() { s.SetRole(box, 3) })
}

func TestParseBasicConnectives(t *testing.T) {
	s, f, err := Parse("p & q | ~r => p <=> True")
	require.NoError(t, err)
	require.NotZero(t, f)
	require.NotEmpty(t, s.String(f))
}

func TestParseModalities(t *testing.T) {
	s, f, err := Parse("[r] p & <s> q & [] x & <> y")
	require.NoError(t, err)
	require.Equal(t, OpAnd, s.Op(f))
}

func TestParseEmptyIsTrue(t *testing.T) {
	s, f, err := Parse("   ")
	require.NoError(t, err)
	require.Equal(t, s.True(), f)
	require.True(t, IsEmpty("   "))
	require.False(t, IsEmpty("p"))
}

func TestParseRejectsTrailingGarbage(t *testing.T) {
	_, _, err := Parse("p &")
	require.Error(t, err)
	_, _, err = Parse("p q")
	require.Error(t, err)
}

func TestParseIntoSharesOneStore(t *testing.T) {
	s := NewStore()
	psi, err := ParseInto(s, "p & q")
	require.NoError(t, err)
	gamma, err := ParseInto(s, "p | q")
	require.NoError(t, err)
	// both refs must resolve against the same arena: the "p" atom is shared.
	require.Equal(t, s.AP("p"), s.Left(psi))
	require.Equal(t, s.AP("p"), s.Left(gamma))
}

func TestToBoxNNFEliminatesDiamondAndImp(t *testing.T) {
	s, f, err := Parse("<r> p => q")
	require.NoError(t, err)
	nnf := ToBoxNNF(s, f)
	var walk func(Ref)
	walk = func(r Ref) {
		op := s.Op(r)
		require.NotEqual(t, OpDia, op, "BoxNNF must not contain DIA")
		require.NotEqual(t, OpImp, op, "BoxNNF must not contain IMP")
		require.NotEqual(t, OpEqu, op, "BoxNNF must not contain EQU")
		if s.Left(r) != 0 {
			walk(s.Left(r))
		}
		if s.Right(r) != 0 {
			walk(s.Right(r))
		}
	}
	walk(nnf)
}

func TestToBoxNNFDoubleNegationOfBoxAndAtom(t *testing.T) {
	s := NewStore()
	p := s.AP("p")
	notnot := s.Not(s.Not(p))
	require.Equal(t, p, ToBoxNNF(s, notnot), "NNF(~~p) must collapse back to p")

	box := s.Box("r", p)
	notnotbox := s.Not(s.Not(box))
	require.Equal(t, ToBoxNNF(s, box), ToBoxNNF(s, notnotbox))
}

func TestToBoxNNFDualityOfDiaAndBox(t *testing.T) {
	// <r>p in NNF is exactly Not(Box(r, Not(p))): this is the duality
	// invariant §3/§8 requires the rest of the engine to rely on.
	s, f, err := Parse("<r> p")
	require.NoError(t, err)
	nnf := ToBoxNNF(s, f)
	require.Equal(t, OpNot, s.Op(nnf))
	boxed := s.Left(nnf)
	require.Equal(t, OpBox, s.Op(boxed))
	require.Equal(t, OpNot, s.Op(s.Left(boxed)))
	require.Equal(t, s.AP("p"), s.Left(s.Left(boxed)))
}

func TestRolesInternAndInverse(t *testing.T) {
	r := NewRoles()
	a := r.Intern("friend")
	b := r.Intern("friend")
	require.Equal(t, a, b, "repeated names must share an id")
	require.False(t, r.IsInverse(a))
	require.False(t, r.AnyInverse())

	c := r.Intern("-enemy")
	require.True(t, r.IsInverse(c))
	require.True(t, r.AnyInverse())
	require.Equal(t, "enemy", r.Name(c))

	// "-enemy" and "enemy" share the underlying role id.
	d := r.Intern("enemy")
	require.Equal(t, c, d)
	require.Equal(t, 2, r.NumRoles())
}

func TestAssignRolesWalksBoxNodesOnly(t *testing.T) {
	s, f, err := Parse("[r] p & [s] q")
	require.NoError(t, err)
	nnf := ToBoxNNF(s, f)
	roles := NewRoles()
	AssignRoles(s, roles, nnf)
	require.Equal(t, 2, roles.NumRoles())

	and := nnf
	require.Equal(t, OpAnd, s.Op(and))
	leftBox, rightBox := s.Left(and), s.Right(and)
	require.NotEqual(t, -1, s.Role(leftBox))
	require.NotEqual(t, -1, s.Role(rightBox))
}

func TestAssignRolesIsIdempotentAcrossPsiAndGamma(t *testing.T) {
	s := NewStore()
	psi, err := ParseInto(s, "[r] p")
	require.NoError(t, err)
	gamma, err := ParseInto(s, "[r] q")
	require.NoError(t, err)
	psiNNF := ToBoxNNF(s, psi)
	gammaNNF := ToBoxNNF(s, gamma)

	roles := NewRoles()
	AssignRoles(s, roles, psiNNF)
	AssignRoles(s, roles, gammaNNF)
	require.Equal(t, 1, roles.NumRoles(), "psi and gamma share one role, named 'r' in one arena")
}
