package tableau

import (
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/jasonjli/bddtab/internal/bdd"
)

// decideSat dispatches to the configured engine.
func (e *Engine) decideSat(b bdd.Node) (bool, []int) {
	if e.Cfg.S4 {
		return e.IsSatS4(b)
	}
	return e.IsSatK(b)
}

// ClassifyResult is the outcome of a classification run (§4.9).
type ClassifyResult struct {
	GammaUnsat   bool
	EmptyClasses []string
	Subsumptions [][2]string // {subclass, superclass}

	// Findings aggregates EmptyClasses and Subsumptions as one
	// human-readable list (§7 expansion): these are the classifier's
	// actual output, not diagnostics, so they are collected with
	// go-multierror and always printed in full regardless of log level.
	Findings *multierror.Error
}

// Classify implements §4.9: sat-check Γ, then every atomic proposition
// alone, then every ordered pair. Caches persist across all three phases,
// which is exactly what makes classification cheap after the first query:
// every learned no-good from one sat-check remains valid for the next.
//
// Variable reordering is disabled unconditionally before the scan begins,
// independent of -reorder/-onlygamma: every query below shares Γ's BDD and
// its already-cached unbox/undiamond entries, and a mid-run reorder would
// invalidate the variable-order assumptions those entries were built under.
func (e *Engine) Classify() ClassifyResult {
	e.B.ClearVarBlocks()
	e.B.DisableReorder()
	if sat, _ := e.decideSat(e.gammaBDD); !sat {
		return ClassifyResult{GammaUnsat: true}
	}
	apVars := e.Reg.APVars()
	var res ClassifyResult
	for _, c := range apVars {
		q := e.B.Apply(e.gammaBDD, e.B.Ithvar(c), bdd.OPand)
		if sat, _ := e.decideSat(q); !sat {
			name := e.Reg.Name(c)
			res.EmptyClasses = append(res.EmptyClasses, name)
			res.Findings = multierror.Append(res.Findings, errors.Errorf("%s is an empty class", name))
		}
	}
	for _, c := range apVars {
		for _, d := range apVars {
			if c == d {
				continue
			}
			q := e.B.Apply(e.B.Apply(e.gammaBDD, e.B.Ithvar(c), bdd.OPand), e.B.NIthvar(d), bdd.OPand)
			if sat, _ := e.decideSat(q); !sat {
				sub, sup := e.Reg.Name(c), e.Reg.Name(d)
				res.Subsumptions = append(res.Subsumptions, [2]string{sub, sup})
				res.Findings = multierror.Append(res.Findings, errors.Errorf("%s [= %s", sub, sup))
			}
		}
	}
	return res
}
