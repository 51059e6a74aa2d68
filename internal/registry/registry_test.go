package registry

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jasonjli/bddtab/internal/formula"
)

func build(t *testing.T, psi string, gamma string) (*formula.Store, *Registry) {
	t.Helper()
	s := formula.NewStore()
	var gammaNNF formula.Ref
	if gamma != "" {
		g, err := formula.ParseInto(s, gamma)
		require.NoError(t, err)
		gammaNNF = formula.ToBoxNNF(s, g)
	}
	p, err := formula.ParseInto(s, psi)
	require.NoError(t, err)
	psiNNF := formula.ToBoxNNF(s, p)
	return s, New(s, gammaNNF, psiNNF)
}

func TestNewReservesExistsDiaAtZero(t *testing.T) {
	_, reg := build(t, "p", "")
	require.Equal(t, 0, ExistsDia)
	require.Equal(t, -1, reg.VarOf(0))
}

func TestRegisterAssignsDenseVars(t *testing.T) {
	_, reg := build(t, "p & q", "")
	require.Equal(t, 3, reg.NumVars()) // ExistsDia + p + q
	require.ElementsMatch(t, []int{1, 2}, reg.APVars())
	require.Empty(t, reg.BoxVars())
}

func TestRegisterSharesOneVarForRepeatedAtom(t *testing.T) {
	_, reg := build(t, "p & p", "")
	require.Equal(t, 2, reg.NumVars(), "p registered once despite appearing twice")
}

func TestBoxRegisteredAsAtomicUnit(t *testing.T) {
	_, reg := build(t, "[r] p & q", "")
	require.Len(t, reg.BoxVars(), 1)
	boxVar := reg.BoxVars()[0]
	require.True(t, reg.IsBox(boxVar))
	require.Contains(t, reg.APVars(), reg.VarOf(findAP(t, reg, "q")))
}

func findAP(t *testing.T, reg *Registry, name string) formula.Ref {
	t.Helper()
	for v := 1; v < reg.NumVars(); v++ {
		if !reg.IsBox(v) && reg.Name(v) == name {
			return reg.Formula(v)
		}
	}
	t.Fatalf("no AP named %q registered", name)
	return 0
}

func TestGammaAndPsiShareAtomsAcrossOneRegistry(t *testing.T) {
	_, reg := build(t, "p", "p | q")
	// gamma is walked first, so p gets registered while building gamma;
	// psi's "p" must resolve to the same variable, not a fresh one.
	require.Equal(t, 3, reg.NumVars()) // ExistsDia + p + q
}

func TestChildrenOfBoxCollectsAtomsWithoutCrossingFurtherBox(t *testing.T) {
	_, reg := build(t, "[r] (p & [s] q)", "")
	boxVar := reg.BoxVars()[0]
	children := reg.Children(boxVar)
	require.Len(t, children, 2, "p and the nested [s]q box, but not q itself")
	for _, c := range children {
		require.NotEqual(t, reg.Name(c), "q", "collectAtoms must not cross the inner box")
	}
}

func TestChildrenOfNonBoxIsEmpty(t *testing.T) {
	_, reg := build(t, "p", "")
	apVar := reg.APVars()[0]
	require.Empty(t, reg.Children(apVar))
}

func TestChildrenCachedAcrossCalls(t *testing.T) {
	_, reg := build(t, "[r] p", "")
	boxVar := reg.BoxVars()[0]
	first := reg.Children(boxVar)
	second := reg.Children(boxVar)
	require.Equal(t, first, second)
}

func TestChildrenS4StepsPastSurfaceBoxUnderAnd(t *testing.T) {
	_, reg := build(t, "[r] ([s] p & q)", "")
	boxVar := reg.BoxVars()[0]
	k := reg.Children(boxVar)
	s4 := reg.ChildrenS4(boxVar)
	require.Less(t, len(k), len(s4), "S4 additionally steps into the nested box's content under AND")
}

func TestChildrenS4DoesNotStepPastBoxUnderOr(t *testing.T) {
	_, reg := build(t, "[r] ([s] p | q)", "")
	boxVar := reg.BoxVars()[0]
	k := reg.Children(boxVar)
	s4 := reg.ChildrenS4(boxVar)
	require.ElementsMatch(t, k, s4, "OR falls back to the plain walk in both modes")
}

func TestAliasAndCanonicalVar(t *testing.T) {
	_, reg := build(t, "[r] p & [r] p", "")
	boxVar := reg.BoxVars()[0]
	require.Equal(t, boxVar, reg.CanonicalVar(boxVar), "unaliased var is its own canonical form")
	reg.Alias(boxVar, boxVar)
	require.Equal(t, boxVar, reg.CanonicalVar(boxVar))
}

func TestCanonicalVarFollowsAliasChain(t *testing.T) {
	_, reg := build(t, "[r] p & [s] p & [t] p", "")
	boxVars := reg.BoxVars()
	require.Len(t, boxVars, 3)
	reg.Alias(boxVars[1], boxVars[0])
	reg.Alias(boxVars[2], boxVars[1])
	require.Equal(t, boxVars[0], reg.CanonicalVar(boxVars[2]), "alias chain must fully resolve")
}
