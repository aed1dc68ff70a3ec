// Package strenc encrypts string constants.
//
// Every ldc of a string in an eligible method is replaced by an ldc of the
// encrypted string followed by a call to a synthesized decryption routine.
// Four of the five key components are hashes of names the routine recovers
// at run time from its own class name and the caller's stack frame; only
// the fifth is pushed at the call site.
package strenc

import (
	"strings"

	"github.com/deepnoodle-ai/radon/bytecode"
	"github.com/deepnoodle-ai/radon/op"
	"github.com/deepnoodle-ai/radon/transform"
)

// Name is the pass tag of the transformer.
const Name = "StringEncryption"

// Placeholders are substituted into plugin jars by the Spigot resource
// site after obfuscation. Literals containing one are kept in spigot mode.
var Placeholders = []string{"%%__USER__%%", "%%__RESOURCE__%%", "%%__NONCE__%%"}

// Transformer is the string encryption pass.
type Transformer struct {
	// SpigotMode keeps literals that contain a placeholder.
	SpigotMode bool
}

// Option configures a Transformer.
type Option func(*Transformer)

// WithSpigotMode keeps literals that contain one of the Placeholders.
func WithSpigotMode(enabled bool) Option {
	return func(t *Transformer) {
		t.SpigotMode = enabled
	}
}

// New returns the string encryption pass.
func New(opts ...Option) *Transformer {
	t := &Transformer{}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Name returns the pass tag.
func (t *Transformer) Name() string {
	return Name
}

// Transform encrypts the string constants of every eligible method. When at
// least one literal was encrypted, the decryptor class is added to the
// session.
func (t *Transformer) Transform(s *transform.Session) int {
	log := s.PassLogger(Name)
	decryptor := s.Namer.RandomClassName()
	decrypt := s.Namer.RandomIdentifier()

	count := 0
	for _, c := range s.Units {
		if s.ShouldSkip(Name, c.Name) {
			continue
		}
		for _, m := range s.Methods(Name, c) {
			r := &site{
				t:       t,
				session: s,
				method:  m,
				call: &bytecode.MethodInsn{
					Op:    op.Invokestatic,
					Owner: decryptor,
					Name:  decrypt,
					Desc:  DecryptDesc,
				},
				keys: ContextKeys(bytecode.DottedName(decryptor), c.DottedName(), m.Name, 0),
			}
			n, stopped := s.Walk(m, r.rewrite)
			count += n
			if stopped {
				log.Debug().Str("class", c.Name).Str("method", m.Name+m.Desc).Msg("Code size limit reached")
			}
		}
	}

	if count > 0 {
		s.AddClass(decryptorClass(decryptor, decrypt, s.Namer.RandomIdentifier(), s.Namer.RandomIdentifier()))
	}
	log.Info().Msgf("Encrypted %d strings.", count)
	return count
}

// Keep returns true if a literal must stay in plain text.
func (t *Transformer) Keep(literal string) bool {
	if !t.SpigotMode {
		return false
	}
	for _, p := range Placeholders {
		if strings.Contains(literal, p) {
			return true
		}
	}
	return false
}

type site struct {
	t       *Transformer
	session *transform.Session
	method  *bytecode.MethodUnit
	call    *bytecode.MethodInsn
	keys    Keys
}

func (s *site) rewrite(insn bytecode.Instruction) bool {
	ldc, ok := insn.(*bytecode.LdcInsn)
	if !ok {
		return false
	}
	literal, ok := ldc.Value.(string)
	if !ok || s.t.Keep(literal) {
		return false
	}
	keys := s.keys
	keys.Random = int32(s.session.Rand.Uint32())

	encrypted := &bytecode.LdcInsn{Value: Encrypt(literal, keys)}
	transform.Replace(s.method, ldc, encrypted)
	// [payload] -> [payload, null] -> [null, payload, null]
	// -> [null, payload] -> [payload, null] -> [payload, null, k5]
	call := *s.call
	transform.InsertAfter(s.method, encrypted,
		&bytecode.Insn{Op: op.AconstNull},
		&bytecode.Insn{Op: op.DupX1},
		&bytecode.Insn{Op: op.Pop},
		&bytecode.Insn{Op: op.Swap},
		bytecode.PushInt(keys.Random),
		&call,
	)
	return true
}
