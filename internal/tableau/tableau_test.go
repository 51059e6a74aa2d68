package tableau

import (
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"

	"github.com/jasonjli/bddtab/internal/bdd"
	"github.com/jasonjli/bddtab/internal/formula"
	"github.com/jasonjli/bddtab/internal/registry"
)

// decide runs one full psi/gamma decision through the same pipeline
// cmd/bddtab drives: parse into a shared store, BoxNNF, role assignment,
// registry, BDD manager, engine. It returns whether notPsi&Gamma is
// satisfiable (true => psi is not provable from gamma).
func decide(t *testing.T, s4 bool, psi, gamma string) (sat bool, e *Engine) {
	t.Helper()
	st := formula.NewStore()
	var gammaNNF formula.Ref
	if gamma != "" {
		g, err := formula.ParseInto(st, gamma)
		require.NoError(t, err)
		gammaNNF = formula.ToBoxNNF(st, g)
	}
	p, err := formula.ParseInto(st, psi)
	require.NoError(t, err)
	notPsiNNF := formula.ToBoxNNF(st, st.Not(p))

	roles := formula.NewRoles()
	formula.AssignRoles(st, roles, notPsiNNF)
	if gammaNNF != 0 {
		formula.AssignRoles(st, roles, gammaNNF)
	}

	reg := registry.New(st, gammaNNF, notPsiNNF)
	b, err := bdd.New(reg.NumVars())
	require.NoError(t, err)

	cfg := Config{S4: s4}
	e = New(b, st, roles, reg, cfg, hclog.NewNullLogger())
	e.SetGamma(gammaNNF)

	notPsiAndGamma := b.Apply(e.GammaBDD(), e.ToBDD(notPsiNNF), bdd.OPand)
	if s4 {
		sat, _ = e.IsSatS4(notPsiAndGamma)
	} else {
		sat, _ = e.IsSatK(notPsiAndGamma)
	}
	return sat, e
}

func TestKPropositionalTautologyIsProvable(t *testing.T) {
	sat, _ := decide(t, false, "p | ~p", "")
	require.False(t, sat, "a tautology's negation must be unsatisfiable")
}

func TestKPropositionalContingentFormulaIsNotProvable(t *testing.T) {
	sat, _ := decide(t, false, "p", "")
	require.True(t, sat, "p is not a tautology: ~p is satisfiable")
}

func TestKBoxDistributesOverAnd(t *testing.T) {
	// [] (p & q) => ([]p & []q) is valid in K.
	sat, _ := decide(t, false, "[r] (p & q) => ([r] p & [r] q)", "")
	require.False(t, sat)
}

func TestKBoxDoesNotDistributeOverOr(t *testing.T) {
	// []p | []q => [](p|q) is valid, but the converse is not: a world with
	// two successors, one satisfying p and the other q, witnesses it.
	sat, _ := decide(t, false, "[r] (p | q) => ([r] p | [r] q)", "")
	require.True(t, sat, "[](p|q) does not imply []p|[]q in K")
}

func TestKBoxFalseIsVacuouslyTrue(t *testing.T) {
	// []False is satisfiable in K (a world with no r-successors).
	sat, _ := decide(t, false, "~[r] False", "")
	require.True(t, sat)
}

func TestKDiamondTrueNeedsASuccessor(t *testing.T) {
	// <r>True is not a K tautology: a world with no r-successor falsifies it.
	sat, _ := decide(t, false, "<r> True", "")
	require.True(t, sat)
}

func TestS4BoxIsReflexive(t *testing.T) {
	// []p => p is valid in S4 (reflexivity) but not in plain K.
	satK, _ := decide(t, false, "[r] p => p", "")
	require.True(t, satK, "reflexivity is not a K validity")

	satS4, _ := decide(t, true, "[r] p => p", "")
	require.False(t, satS4, "reflexivity must hold in S4")
}

func TestS4BoxIsTransitive(t *testing.T) {
	// []p => [][]p is valid in S4 (transitivity) but not in plain K.
	satK, _ := decide(t, false, "[r] p => [r] [r] p", "")
	require.True(t, satK)

	satS4, _ := decide(t, true, "[r] p => [r] [r] p", "")
	require.False(t, satS4)
}

func TestGammaRestrictsSatisfiability(t *testing.T) {
	// ~psi = p is satisfiable alone, but not jointly with Gamma = ~p.
	sat, _ := decide(t, false, "~p", "~p")
	require.False(t, sat, "psi is vacuously provable once Gamma is unsatisfiable with its negation")
}

func TestMonotonicityOfGamma(t *testing.T) {
	// Strengthening Gamma can only shrink the set of psi it proves, i.e.
	// can only turn a "not provable" into "provable", never the reverse.
	satWeak, _ := decide(t, false, "q", "p")
	satStrong, _ := decide(t, false, "q", "p & (p => q)")
	require.True(t, satWeak, "q does not follow from p alone")
	require.False(t, satStrong, "q follows once Gamma also asserts p=>q")
}

func TestIdempotenceOfRepeatedDecision(t *testing.T) {
	s := formula.NewStore()
	p, err := formula.ParseInto(s, "[r] p => p")
	require.NoError(t, err)
	notPsiNNF := formula.ToBoxNNF(s, s.Not(p))
	roles := formula.NewRoles()
	formula.AssignRoles(s, roles, notPsiNNF)
	reg := registry.New(s, 0, notPsiNNF)
	b, err := bdd.New(reg.NumVars())
	require.NoError(t, err)
	e := New(b, s, roles, reg, Config{S4: true}, hclog.NewNullLogger())
	e.SetGamma(0)
	notPsiBDD := e.ToBDD(notPsiNNF)

	sat1, _ := e.IsSatS4(notPsiBDD)
	sat2, _ := e.IsSatS4(notPsiBDD)
	require.Equal(t, sat1, sat2, "deciding the same BDD twice must agree")
}

func TestClassifyDetectsUnsatisfiableOntology(t *testing.T) {
	_, e := decide(t, false, "True", "p & ~p")
	result := e.Classify()
	require.True(t, result.GammaUnsat)
}

func TestClassifyDetectsEmptyClass(t *testing.T) {
	_, e := decide(t, false, "True", "~p")
	result := e.Classify()
	require.False(t, result.GammaUnsat)
	require.Contains(t, result.EmptyClasses, "p")
	require.Len(t, result.Findings.WrappedErrors(), 1, "the empty class must also appear in Findings")
}

func TestClassifyDetectsSubsumption(t *testing.T) {
	_, e := decide(t, false, "True", "p => q")
	result := e.Classify()
	require.False(t, result.GammaUnsat)
	require.Contains(t, result.Subsumptions, [2]string{"p", "q"})
	require.NotEmpty(t, result.Findings.WrappedErrors())
}

func TestMultiModalRolesStayIndependentInK(t *testing.T) {
	// [r]p is unrelated to [s]p: asserting one says nothing about the other.
	sat, _ := decide(t, false, "[r] p => [s] p", "")
	require.True(t, sat)
}

func TestNormalizeDoesNotChangeDecision(t *testing.T) {
	const psi = "[r] p => p"
	satBefore, _ := decide(t, true, psi, "")

	s := formula.NewStore()
	p := mustParse(t, s, psi)
	notPsiNNF := formula.ToBoxNNF(s, s.Not(p))
	roles := formula.NewRoles()
	formula.AssignRoles(s, roles, notPsiNNF)
	reg := registry.New(s, 0, notPsiNNF)
	b, err := bdd.New(reg.NumVars())
	require.NoError(t, err)
	e := New(b, s, roles, reg, Config{S4: true}, hclog.NewNullLogger())
	Normalize(e)
	e.SetGamma(0)

	satAfter, _ := e.IsSatS4(e.B.Apply(e.GammaBDD(), e.ToBDD(notPsiNNF), bdd.OPand))
	require.Equal(t, satBefore, satAfter, "normalize must be a soundness-preserving no-op on the decision")
}

func mustParse(t *testing.T, s *formula.Store, src string) formula.Ref {
	t.Helper()
	r, err := formula.ParseInto(s, src)
	require.NoError(t, err)
	return r
}
