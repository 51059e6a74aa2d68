// Command bddtab decides satisfiability/validity of a modal formula in K or
// S4, or classifies an ontology, per spec.md §6's external interface.
package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/hashicorp/go-hclog"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"

	"github.com/jasonjli/bddtab/internal/bdd"
	"github.com/jasonjli/bddtab/internal/config"
	"github.com/jasonjli/bddtab/internal/formula"
	"github.com/jasonjli/bddtab/internal/registry"
	"github.com/jasonjli/bddtab/internal/tableau"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, in *os.File, out, errw *os.File) int {
	cfg, err := config.ParseArgs(args)
	if err != nil {
		fmt.Fprintln(errw, err)
		fmt.Fprint(errw, config.Usage())
		return 1
	}
	if cfg.ConfigFile != "" {
		data, rerr := os.ReadFile(cfg.ConfigFile)
		if rerr != nil {
			fmt.Fprintln(errw, errors.Wrap(rerr, "reading -configfile"))
			return 1
		}
		overlay := config.Default()
		if yerr := config.LoadYAML(&overlay, data); yerr != nil {
			fmt.Fprintln(errw, yerr)
			return 1
		}
		overlay.ConfigFile = cfg.ConfigFile
		flagOverrides := cfg
		cfg = overlay
		applyFlagOverrides(&cfg, flagOverrides)
	}

	log := newLogger(cfg, errw)
	col := newColorer(out)

	psiLine, gammaLine, rerr := readInput(in, cfg.Gamma)
	if rerr != nil {
		fmt.Fprintln(errw, errors.Wrap(rerr, "reading stdin"))
		return 1
	}

	if formula.IsEmpty(psiLine) && !cfg.Gamma {
		fmt.Fprintln(out, "Empty formula is provable.")
		return 1
	}

	s := formula.NewStore()
	psiRaw, perr := parseNonEmpty(s, psiLine)
	if perr != nil {
		fmt.Fprintln(errw, errors.Wrap(perr, "parsing psi"))
		return 1
	}
	var gammaRaw formula.Ref
	if cfg.Gamma {
		g, gerr := parseNonEmpty(s, gammaLine)
		if gerr != nil {
			fmt.Fprintln(errw, errors.Wrap(gerr, "parsing gamma"))
			return 1
		}
		gammaRaw = g
	}

	notPsiNNF := formula.ToBoxNNF(s, s.Not(psiRaw))
	var gammaNNF formula.Ref
	if gammaRaw != 0 {
		gammaNNF = formula.ToBoxNNF(s, gammaRaw)
	}

	roles := formula.NewRoles()
	formula.AssignRoles(s, roles, notPsiNNF)
	if gammaNNF != 0 {
		formula.AssignRoles(s, roles, gammaNNF)
	}
	// §7: inverse roles are parsed but any query that would actually exercise
	// one is a fatal unsupported-construct error, not a silent unsat.
	for id := 1; id <= roles.NumRoles(); id++ {
		if roles.IsInverse(id) {
			fmt.Fprintf(errw, "unsupported construct: inverse role %q\n", roles.Name(id))
			return 1
		}
	}

	reg := registry.New(s, gammaNNF, notPsiNNF)
	b, berr := bdd.New(reg.NumVars())
	if berr != nil {
		fmt.Fprintln(errw, errors.Wrap(berr, "allocating BDD manager"))
		return 1
	}
	b.SetLogger(log.Named("bdd"))

	if cfg.Reorder || cfg.OnlyGamma {
		b.EnableReorder()
	}

	e := tableau.New(b, s, roles, reg, toEngineConfig(cfg), log.Named("engine"))
	if cfg.Norm {
		tableau.Normalize(e)
	}
	e.SetGamma(gammaNNF)
	if cfg.OnlyGamma {
		b.DisableReorder()
	}

	if cfg.Classify {
		// Classify itself disables reordering unconditionally before its
		// scan (§4.9 supplemented feature); see internal/tableau.Classify.
		result := e.Classify()
		return printClassify(out, col, cfg, e, result)
	}

	notPsiAndGamma := b.Apply(e.GammaBDD(), e.ToBDD(notPsiNNF), bdd.OPand)
	var sat bool
	if cfg.S4 {
		sat, _ = e.IsSatS4(notPsiAndGamma)
	} else {
		sat, _ = e.IsSatK(notPsiAndGamma)
	}
	return printDecision(out, col, cfg, e, sat)
}

// parseNonEmpty parses line into the shared Store s — psi and gamma must
// land in one arena so the registry can compare their atoms by Ref equality.
func parseNonEmpty(s *formula.Store, line string) (formula.Ref, error) {
	return formula.ParseInto(s, line)
}

func readInput(in *os.File, wantGamma bool) (psi, gamma string, err error) {
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 64*1024), 1<<20)
	if sc.Scan() {
		psi = sc.Text()
	} else if err = sc.Err(); err != nil {
		return "", "", err
	}
	if wantGamma {
		if sc.Scan() {
			gamma = sc.Text()
		} else if err = sc.Err(); err != nil {
			return "", "", err
		}
	}
	return psi, gamma, nil
}

func toEngineConfig(c config.Config) tableau.Config {
	return tableau.Config{
		S4:           c.S4,
		Verbose:      c.Verbose,
		BUC:          c.BUC,
		NUC:          c.NUC,
		SUC:          c.SUC,
		RTOL:         c.RTOL,
		Reorder:      c.Reorder,
		OnlyGamma:    c.OnlyGamma,
		Norm:         c.Norm,
		Classify:     c.Classify,
		MaxCacheSize: c.MaxCacheSize,
	}
}

// applyFlagOverrides lets command-line flags win over a loaded -configfile
// (SPEC_FULL.md §3): any flag explicitly set to true on the command line is
// copied over the file's value, and a non-empty -loglevel replaces the
// file's level. The file can turn a flag on that no CLI flag mentioned, but
// a CLI flag always wins when both set one.
func applyFlagOverrides(base *config.Config, flags config.Config) {
	if flags.Gamma {
		base.Gamma = true
	}
	if flags.Verbose {
		base.Verbose = true
	}
	if flags.S4 {
		base.S4 = true
	}
	if flags.BUC {
		base.BUC = true
	}
	if flags.NUC {
		base.NUC = true
	}
	if flags.SUC {
		base.SUC = true
	}
	if flags.RTOL {
		base.RTOL = true
	}
	if flags.Reorder {
		base.Reorder = true
	}
	if flags.OnlyGamma {
		base.OnlyGamma = true
	}
	if flags.Norm {
		base.Norm = true
	}
	if flags.Classify {
		base.Classify = true
	}
	if flags.LogLevel != "" {
		base.LogLevel = flags.LogLevel
	}
}

func newLogger(cfg config.Config, errw *os.File) hclog.Logger {
	level := hclog.Warn
	if cfg.Verbose {
		level = hclog.Debug
	}
	if cfg.LogLevel != "" {
		level = hclog.LevelFromString(cfg.LogLevel)
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   "bddtab",
		Level:  level,
		Output: errw,
	})
}

type colorer struct {
	sat, unsat, info func(format string, a ...interface{}) string
}

func newColorer(out *os.File) colorer {
	enabled := isatty.IsTerminal(out.Fd()) || isatty.IsCygwinTerminal(out.Fd())
	if !enabled {
		plain := func(format string, a ...interface{}) string { return fmt.Sprintf(format, a...) }
		return colorer{sat: plain, unsat: plain, info: plain}
	}
	return colorer{
		sat:   color.New(color.FgGreen).SprintfFunc(),
		unsat: color.New(color.FgRed).SprintfFunc(),
		info:  color.New(color.FgYellow).SprintfFunc(),
	}
}

func enginePrefix(cfg config.Config) string {
	if cfg.S4 {
		return "S4:"
	}
	return "K:"
}

func printDecision(out *os.File, col colorer, cfg config.Config, e *tableau.Engine, sat bool) int {
	prefix := enginePrefix(cfg)
	var line string
	if sat {
		line = col.unsat("%s Psi is Not provable from Gamma [Not-psi and Gamma is Satisfiable].", prefix)
	} else {
		line = col.sat("%s Psi is Provable from Gamma [Not-psi and Gamma is Unsatisfiable].", prefix)
	}
	fmt.Fprintln(out, line)
	if cfg.Verbose {
		fmt.Fprintln(out, col.info("%s", e.Summary()))
	}
	return 0
}

// printClassify prints every finding in result.Findings as a flat list,
// unconditionally — these are the classifier's actual output, not
// diagnostics, so -loglevel never hides them (§7 expansion).
func printClassify(out *os.File, col colorer, cfg config.Config, e *tableau.Engine, result tableau.ClassifyResult) int {
	if result.GammaUnsat {
		fmt.Fprintln(out, col.unsat("Ontology (Gamma) is unsatisfiable."))
		return 1
	}
	for i, err := range result.Findings.WrappedErrors() {
		if i < len(result.EmptyClasses) {
			fmt.Fprintln(out, col.unsat("%s!", err))
			continue
		}
		fmt.Fprintln(out, col.sat("%s", err))
	}
	if cfg.Verbose {
		fmt.Fprintln(out, col.info("%s", e.Summary()))
	}
	return 0
}
