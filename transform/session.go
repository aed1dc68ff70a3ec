// Package transform provides the machinery shared by the rewriting passes: a
// Session owning the classes being transformed and the services the passes
// consult, and helpers to walk and rewrite method bodies.
package transform

import (
	"math/rand"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog"

	"github.com/deepnoodle-ai/radon/bytecode"
	"github.com/deepnoodle-ai/radon/names"
)

// DefaultMaxCodeSize is the code size at which a pass stops rewriting a
// method. It leaves room below bytecode.MaxCodeSize for later passes.
const DefaultMaxCodeSize = 60000

// MaxRewriteGrowth is the most a single rewrite adds to a method: an ldc
// replaced by ldc, four stack instructions, an int push and an invokestatic.
const MaxRewriteGrowth = 10

// MaxCodeSizeLimit is the highest usable size ceiling. Walk may rewrite one
// instruction at the ceiling, so the result stays within
// bytecode.MaxCodeSize.
const MaxCodeSizeLimit = bytecode.MaxCodeSize - MaxRewriteGrowth

// Exempter decides whether a pass must leave an element untouched.
type Exempter interface {
	IsExempt(name, pass string) bool
}

// Namer generates identifiers for synthesized classes and members.
type Namer interface {
	RandomIdentifier() string
	RandomClassName() string
	RandomExistingClass(classes []string) string
}

// Session owns the classes of one run. Passes mutate the classes in place
// and register new classes with AddClass.
type Session struct {
	// ID identifies the run in log lines.
	ID          uuid.UUID
	Units       []*bytecode.ClassUnit
	Exempter    Exempter
	Namer       Namer
	Logger      zerolog.Logger
	Rand        *rand.Rand
	MaxCodeSize int

	pending []*bytecode.ClassUnit
	classes map[string]*bytecode.ClassUnit
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithExempter sets the exemption service.
func WithExempter(e Exempter) SessionOption {
	return func(s *Session) {
		s.Exempter = e
	}
}

// WithNamer sets the name service.
func WithNamer(n Namer) SessionOption {
	return func(s *Session) {
		s.Namer = n
	}
}

// WithLogger sets the log sink.
func WithLogger(l zerolog.Logger) SessionOption {
	return func(s *Session) {
		s.Logger = l
	}
}

// WithRand sets the random source used for keys and name selection.
func WithRand(r *rand.Rand) SessionOption {
	return func(s *Session) {
		s.Rand = r
	}
}

// WithMaxCodeSize sets the code size at which rewriting of a method stops.
func WithMaxCodeSize(n int) SessionOption {
	return func(s *Session) {
		s.MaxCodeSize = n
	}
}

// NewSession returns a session over the given classes. Without options it
// exempts nothing, logs nowhere and draws alphabetic names.
func NewSession(units []*bytecode.ClassUnit, opts ...SessionOption) *Session {
	s := &Session{
		ID:          uuid.Must(uuid.NewV4()),
		Units:       units,
		Logger:      zerolog.Nop(),
		MaxCodeSize: DefaultMaxCodeSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.Rand == nil {
		s.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if s.MaxCodeSize > MaxCodeSizeLimit {
		s.MaxCodeSize = MaxCodeSizeLimit
	}
	s.classes = make(map[string]*bytecode.ClassUnit, len(units))
	for _, c := range units {
		s.classes[c.Name] = c
	}
	if s.Exempter == nil {
		s.Exempter = nothingExempt{}
	}
	if s.Namer == nil {
		g := names.New(names.Alphabetic, 4, s.Rand)
		g.Reserve(s.Identifiers()...)
		s.Namer = g
	}
	return s
}

type nothingExempt struct{}

func (nothingExempt) IsExempt(string, string) bool { return false }

// AddClass registers a class created during a pass. It joins Units when the
// pass completes.
func (s *Session) AddClass(c *bytecode.ClassUnit) {
	s.pending = append(s.pending, c)
	s.classes[c.Name] = c
}

// Pending returns the classes added since the last Commit.
func (s *Session) Pending() []*bytecode.ClassUnit {
	return s.pending
}

// Commit moves the pending classes into Units.
func (s *Session) Commit() {
	s.Units = append(s.Units, s.pending...)
	s.pending = nil
}

// ClassNames returns the internal names of all classes, pending ones
// included.
func (s *Session) ClassNames() []string {
	out := make([]string, 0, len(s.Units)+len(s.pending))
	for _, c := range s.Units {
		out = append(out, c.Name)
	}
	for _, c := range s.pending {
		out = append(out, c.Name)
	}
	return out
}

// Identifiers returns every class, field and method name of the session.
// Generated names must avoid them.
func (s *Session) Identifiers() []string {
	out := s.ClassNames()
	for _, c := range s.Units {
		for _, f := range c.Fields {
			out = append(out, f.Name)
		}
		for _, m := range c.Methods {
			out = append(out, m.Name)
		}
	}
	return out
}

// Class returns the class with the given internal name, or nil.
func (s *Session) Class(name string) *bytecode.ClassUnit {
	if c, ok := s.classes[name]; ok {
		return c
	}
	for _, c := range s.Units {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// IsFinalField returns true if owner is one of the session's classes and
// declares name as a final field.
func (s *Session) IsFinalField(owner, name string) bool {
	c := s.Class(owner)
	if c == nil {
		return false
	}
	f := c.Field(name)
	return f != nil && f.Access.Has(bytecode.AccFinal)
}

// PassLogger returns the session logger tagged with the run and pass.
func (s *Session) PassLogger(pass string) zerolog.Logger {
	return s.Logger.With().Str("run", s.ID.String()).Str("pass", pass).Logger()
}
