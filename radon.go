// Package radon obfuscates compiled JVM classes.
//
// A run takes the classes of an application, already decoded into
// bytecode.ClassUnit values, and applies the configured passes in order:
// InvokeDynamic hides field and method accesses behind invokedynamic call
// sites, StringEncryption replaces string literals with encrypted ones that
// are decrypted at run time. Classes synthesized by a pass are appended to
// the result.
package radon

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/gofrs/uuid"

	"github.com/deepnoodle-ai/radon/bytecode"
	"github.com/deepnoodle-ai/radon/config"
	"github.com/deepnoodle-ai/radon/names"
	"github.com/deepnoodle-ai/radon/transform"
	"github.com/deepnoodle-ai/radon/transform/indy"
	"github.com/deepnoodle-ai/radon/transform/strenc"
)

// PassResult is the outcome of one pass.
type PassResult struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Result is the outcome of a run.
type Result struct {
	RunID  uuid.UUID             `json:"run_id"`
	Passes []PassResult          `json:"passes"`
	Units  []*bytecode.ClassUnit `json:"-"`
}

// Count returns the number of elements rewritten by the named pass.
func (r *Result) Count(pass string) int {
	for _, p := range r.Passes {
		if p.Name == pass {
			return p.Count
		}
	}
	return 0
}

// Obfuscator runs the configured passes.
type Obfuscator struct {
	cfg *options
}

// New returns an Obfuscator. Without WithConfig the default configuration
// is used.
func New(opts ...Option) *Obfuscator {
	return &Obfuscator{cfg: collectOptions(opts...)}
}

// Run applies every configured pass to units and returns the transformed
// classes. The given units are modified in place.
func (o *Obfuscator) Run(units []*bytecode.ClassUnit) (*Result, error) {
	cfg := o.cfg.config
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	rng := o.cfg.rand
	if rng == nil {
		seed := cfg.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		rng = rand.New(rand.NewSource(seed))
	}
	sessionOpts := []transform.SessionOption{
		transform.WithLogger(o.cfg.logger),
		transform.WithRand(rng),
		transform.WithMaxCodeSize(cfg.MaxCodeSize),
	}
	exempter := o.cfg.exempter
	if exempter == nil {
		m, err := cfg.Exempter()
		if err != nil {
			return nil, err
		}
		exempter = m
	}
	sessionOpts = append(sessionOpts, transform.WithExempter(exempter))
	if o.cfg.namer != nil {
		sessionOpts = append(sessionOpts, transform.WithNamer(o.cfg.namer))
	}
	s := transform.NewSession(units, sessionOpts...)
	if o.cfg.namer == nil {
		g := names.New(cfg.Characters(), cfg.NameLength, rng)
		g.Reserve(s.Identifiers()...)
		s.Namer = g
	}

	result := &Result{RunID: s.ID}
	for _, name := range cfg.Passes {
		t, err := passFor(name, cfg)
		if err != nil {
			return nil, err
		}
		result.Passes = append(result.Passes, PassResult{Name: name, Count: transform.Run(s, t)})
	}
	result.Units = s.Units
	return result, nil
}

func passFor(name string, cfg *config.Config) (transform.Transformer, error) {
	switch name {
	case config.InvokeDynamic:
		return indy.New(), nil
	case config.StringEncryption:
		return strenc.New(strenc.WithSpigotMode(cfg.SpigotMode)), nil
	default:
		return nil, fmt.Errorf("unknown pass %q", name)
	}
}

// Run applies the passes of the given options to units.
func Run(units []*bytecode.ClassUnit, opts ...Option) (*Result, error) {
	return New(opts...).Run(units)
}
