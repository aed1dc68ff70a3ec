package transform

import (
	"time"

	"github.com/deepnoodle-ai/radon/bytecode"
	"github.com/deepnoodle-ai/radon/op"
)

// Transformer is a rewriting pass.
type Transformer interface {
	// Name is the pass tag used for exemptions and log lines.
	Name() string

	// Transform rewrites the session's classes and returns the number of
	// rewritten elements.
	Transform(s *Session) int
}

// Run executes t against the session, logs its start and end, and commits
// the classes it added.
func Run(s *Session, t Transformer) int {
	log := s.PassLogger(t.Name())
	start := time.Now()
	log.Info().Msgf("Started %s transformer", t.Name())
	n := t.Transform(s)
	s.Commit()
	log.Info().Dur("elapsed", time.Since(start)).Msg("Finished.")
	return n
}

// MemberName returns the qualified name of a method used for exemptions,
// e.g. "com/example/Main.run()V".
func MemberName(c *bytecode.ClassUnit, m *bytecode.MethodUnit) string {
	return c.Name + "." + m.Name + m.Desc
}

// ShouldSkip returns true if pass must leave the named element untouched.
func (s *Session) ShouldSkip(pass, name string) bool {
	return s.Exempter.IsExempt(name, pass)
}

// Methods returns the methods of c that pass may rewrite: those that are
// not exempt and have a body.
func (s *Session) Methods(pass string, c *bytecode.ClassUnit) []*bytecode.MethodUnit {
	var out []*bytecode.MethodUnit
	for _, m := range c.Methods {
		if !m.HasInstructions() || s.ShouldSkip(pass, MemberName(c, m)) {
			continue
		}
		out = append(out, m)
	}
	return out
}

// Walk calls visit for every instruction of a snapshot of m's body, so
// rewrites made by visit do not change which instructions are visited.
// Before each instruction the running code size of m is compared with the
// session limit; once the limit is exceeded the walk stops and the remaining
// instructions are left as they are. visit returns true when it rewrote
// the instruction. Walk returns the number of rewrites and whether it
// stopped early.
func (s *Session) Walk(m *bytecode.MethodUnit, visit func(bytecode.Instruction) bool) (int, bool) {
	count := 0
	for _, insn := range m.Instructions.Snapshot() {
		if CodeSize(m) > s.MaxCodeSize {
			return count, true
		}
		if visit(insn) {
			count++
		}
	}
	return count, false
}

// CodeSize returns the largest encoded size of m's code. The list keeps the
// total up to date as it is edited.
func CodeSize(m *bytecode.MethodUnit) int {
	return m.CodeSize()
}

// Replace substitutes replacement for old in m's body. It panics if old is
// not part of the body.
func Replace(m *bytecode.MethodUnit, old, replacement bytecode.Instruction) {
	m.Instructions.Set(old, replacement)
}

// InsertAfter inserts insns right after anchor in m's body.
func InsertAfter(m *bytecode.MethodUnit, anchor bytecode.Instruction, insns ...bytecode.Instruction) {
	m.Instructions.InsertAfter(anchor, insns...)
}

// InsertBefore inserts insns right before anchor in m's body.
func InsertBefore(m *bytecode.MethodUnit, anchor bytecode.Instruction, insns ...bytecode.Instruction) {
	m.Instructions.InsertBefore(anchor, insns...)
}

// NeedsCoercion returns true if a value of type t loses its static type
// when it passes through a generic call site.
func NeedsCoercion(t bytecode.Type) bool {
	return t.IsArray()
}

// Coerce inserts a checkcast to t after insn when t needs one. It returns
// the inserted instruction, or nil.
func Coerce(m *bytecode.MethodUnit, insn bytecode.Instruction, t bytecode.Type) bytecode.Instruction {
	if !NeedsCoercion(t) {
		return nil
	}
	cast := &bytecode.TypeInsn{Op: op.Checkcast, Desc: t.InternalName()}
	InsertAfter(m, insn, cast)
	return cast
}
