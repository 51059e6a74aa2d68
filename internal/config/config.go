// Package config implements bddtab's run configuration: the engine
// parameters from spec.md §6's CLI flags, plus the two purely additive
// flags SPEC_FULL.md §6 layers on top (-configfile, -loglevel), and the
// optional YAML overlay those feed from.
//
// Flag matching reproduces the historical CLI's long-prefix (strncmp-style)
// semantics rather than Go's flag package: each known flag is matched by
// comparing only its own fixed length against the front of the argument, in
// a fixed priority order, so "-classify" and "-classifyme" are both accepted
// and the first flag in matchOrder whose prefix matches wins ties.
package config

import (
	"fmt"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

// maxArgs mirrors the original CLI's hard cap on argument count.
const maxArgs = 9

// Config is the fully resolved set of engine/CLI parameters for one run.
type Config struct {
	Gamma     bool // -g: read a second stdin line as Γ
	Verbose   bool // -v: print statistics
	S4        bool // -s4: use the S4 engine instead of K
	BUC       bool // -buc: single-BDD unsat cache
	NUC       bool // -nuc: disable the unsat cache
	SUC       bool // -suc: saturation-keyed unsat cache
	RTOL      bool // -rtol: right-to-left satone valuation
	Reorder   bool // -reorder: leave BDD reordering enabled for the whole run
	OnlyGamma bool // -onlygamma: reorder only while Γ is built
	Norm      bool // -norm: BDD-normalize registered boxes
	Classify  bool // -classify: classification mode instead of one decision

	MaxCacheSize int // FIFO bound for sat/unsat/cond-sat/saturation-unsat caches

	ConfigFile string // -configfile <path>: optional YAML overlay, applied before flags
	LogLevel   string // -loglevel <level>: trace|debug|info|warn|error
}

// Default returns the engine's baseline configuration before any flag or
// YAML overlay is applied.
func Default() Config {
	return Config{MaxCacheSize: 10000}
}

type flagSpec struct {
	name    string
	takesArg bool
	apply   func(c *Config, arg string) error
}

// matchOrder is checked front-to-back; longer, more specific flags are
// listed before shorter ones they could otherwise be mistaken as a prefix
// extension of (e.g. -onlygamma before -g would never collide since -g's
// own compare length is 2, but ordering single-letter/ambiguous-looking
// flags first keeps the table readable and matches the historical if-chain
// style of dispatch).
var matchOrder = []flagSpec{
	{"-classify", false, func(c *Config, _ string) error { c.Classify = true; return nil }},
	{"-onlygamma", false, func(c *Config, _ string) error { c.OnlyGamma = true; return nil }},
	{"-reorder", false, func(c *Config, _ string) error { c.Reorder = true; return nil }},
	{"-configfile", true, func(c *Config, v string) error { c.ConfigFile = v; return nil }},
	{"-loglevel", true, func(c *Config, v string) error { c.LogLevel = v; return nil }},
	{"-rtol", false, func(c *Config, _ string) error { c.RTOL = true; return nil }},
	{"-norm", false, func(c *Config, _ string) error { c.Norm = true; return nil }},
	{"-buc", false, func(c *Config, _ string) error { c.BUC = true; return nil }},
	{"-nuc", false, func(c *Config, _ string) error { c.NUC = true; return nil }},
	{"-suc", false, func(c *Config, _ string) error { c.SUC = true; return nil }},
	{"-s4", false, func(c *Config, _ string) error { c.S4 = true; return nil }},
	{"-g", false, func(c *Config, _ string) error { c.Gamma = true; return nil }},
	{"-v", false, func(c *Config, _ string) error { c.Verbose = true; return nil }},
}

func lookup(arg string) (flagSpec, bool) {
	for _, f := range matchOrder {
		if len(arg) >= len(f.name) && arg[:len(f.name)] == f.name {
			return f, true
		}
	}
	return flagSpec{}, false
}

// ParseArgs parses os.Args[1:]-style arguments into a Config seeded by
// Default(). Unknown flags, a missing value for -configfile/
// -loglevel, or more than maxArgs arguments are fatal usage errors (§7).
func ParseArgs(args []string) (Config, error) {
	cfg := Default()
	if len(args) > maxArgs {
		return cfg, errors.Errorf("too many arguments (%d, max %d)", len(args), maxArgs)
	}
	var errs *multierror.Error
	for i := 0; i < len(args); i++ {
		a := args[i]
		spec, ok := lookup(a)
		if !ok {
			errs = multierror.Append(errs, errors.Errorf("unknown flag %q", a))
			continue
		}
		if spec.takesArg {
			i++
			if i >= len(args) {
				errs = multierror.Append(errs, errors.Errorf("flag %q requires an argument", spec.name))
				break
			}
			if err := spec.apply(&cfg, args[i]); err != nil {
				errs = multierror.Append(errs, errors.WithMessagef(err, "flag %q", spec.name))
			}
			continue
		}
		if err := spec.apply(&cfg, ""); err != nil {
			errs = multierror.Append(errs, errors.WithMessagef(err, "flag %q", spec.name))
		}
	}
	if errs.ErrorOrNil() != nil {
		return cfg, errs.ErrorOrNil()
	}
	return cfg, nil
}

// LoadYAML unmarshals a YAML overlay on top of cfg in place (flags are
// applied to the result afterward by the caller, so flags always win —
// see SPEC_FULL.md §3 Configuration).
func LoadYAML(cfg *Config, data []byte) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return errors.Wrap(err, "parsing config file")
	}
	return nil
}

// Usage renders the flag summary for a usage error message.
func Usage() string {
	var b strings.Builder
	fmt.Fprintln(&b, "usage: bddtab [flags] < input")
	fmt.Fprintln(&b, "flags (an argument beginning with a flag's full name selects that flag):")
	for _, f := range matchOrder {
		fmt.Fprintf(&b, "  %s\n", f.name)
	}
	return b.String()
}
