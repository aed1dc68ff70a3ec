// Package indy hides field and method accesses behind invokedynamic call
// sites.
//
// Every getfield, getstatic, putfield, putstatic, invokevirtual,
// invokeinterface and invokestatic instruction of an eligible method is
// replaced by an invokedynamic instruction bound to one bootstrap method.
// The owner, name and descriptor of the original target travel as XOR
// encoded bootstrap arguments; the bootstrap method decodes them, looks the
// target up reflectively and links the call site to it.
package indy

import (
	"strings"

	"github.com/deepnoodle-ai/radon/bytecode"
	"github.com/deepnoodle-ai/radon/op"
	"github.com/deepnoodle-ai/radon/transform"
)

// Name is the pass tag of the transformer.
const Name = "InvokeDynamic"

// Kinds of access, the first bootstrap argument.
const (
	FieldKind  = 0
	MethodKind = 1
)

// Modes of a field access, the second bootstrap argument.
const (
	VirtualGetter = 0
	StaticGetter  = 1
	VirtualSetter = 2
	StaticSetter  = 3
)

// Modes of a method call, the second bootstrap argument. Interface calls
// use VirtualMethod.
const (
	VirtualMethod = 0
	StaticMethod  = 1
)

// Transformer is the invokedynamic pass.
type Transformer struct{}

// New returns the invokedynamic pass.
func New() *Transformer {
	return &Transformer{}
}

// Name returns the pass tag.
func (t *Transformer) Name() string {
	return Name
}

// host is the class that receives the bootstrap method.
type host struct {
	class *bytecode.ClassUnit
	// synthesized is true when no existing class could host the bootstrap
	// method and a new one was created.
	synthesized bool
}

// Transform rewrites the accesses of every eligible method. When at least
// one site was rewritten, the bootstrap method and its decode helper are
// added to the host class and the host is made public.
func (t *Transformer) Transform(s *transform.Session) int {
	log := s.PassLogger(Name)
	h := selectHost(s)
	bsm := bytecode.Handle{
		Kind:  bytecode.HandleInvokeStatic,
		Owner: h.class.Name,
		Name:  s.Namer.RandomIdentifier(),
		Desc:  BootstrapDesc,
	}

	count := 0
	for _, c := range s.Units {
		if c.Version < bytecode.Java7 || s.ShouldSkip(Name, c.Name) {
			continue
		}
		for _, m := range s.Methods(Name, c) {
			r := &rewriter{session: s, method: m, bsm: bsm}
			n, stopped := s.Walk(m, r.rewrite)
			count += n
			if stopped {
				log.Debug().Str("class", c.Name).Str("method", m.Name+m.Desc).Msg("Code size limit reached")
			}
		}
	}

	if count > 0 {
		decodeName := s.Namer.RandomIdentifier()
		h.class.AddMethod(bootstrapMethod(h.class.Name, bsm.Name, decodeName))
		h.class.AddMethod(decodeMethod(decodeName))
		h.class.Access = bytecode.FixAccess(h.class.Access)
		if h.synthesized {
			s.AddClass(h.class)
		}
	}
	log.Info().Msgf("Hid %d field and/or method accesses with invokedynamics.", count)
	return count
}

// selectHost picks a random existing class that may host the bootstrap
// method, or creates a new one.
func selectHost(s *transform.Session) host {
	var candidates []string
	for _, c := range s.Units {
		if c.IsInterface() || c.Version < bytecode.Java7 || s.ShouldSkip(Name, c.Name) {
			continue
		}
		candidates = append(candidates, c.Name)
	}
	if name := s.Namer.RandomExistingClass(candidates); name != "" {
		return host{class: s.Class(name)}
	}
	return host{
		class: &bytecode.ClassUnit{
			Name:      s.Namer.RandomClassName(),
			Version:   bytecode.Java8,
			Access:    bytecode.AccPublic | bytecode.AccSuper | bytecode.AccSynthetic,
			SuperName: "java/lang/Object",
		},
		synthesized: true,
	}
}

type rewriter struct {
	session *transform.Session
	method  *bytecode.MethodUnit
	bsm     bytecode.Handle
}

func (r *rewriter) rewrite(insn bytecode.Instruction) bool {
	switch insn := insn.(type) {
	case *bytecode.MethodInsn:
		return r.rewriteMethod(insn)
	case *bytecode.FieldInsn:
		return r.rewriteField(insn)
	default:
		return false
	}
}

func (r *rewriter) rewriteMethod(insn *bytecode.MethodInsn) bool {
	var mode int32
	desc := insn.Desc
	switch insn.Op {
	case op.Invokestatic:
		mode = StaticMethod
	case op.Invokevirtual, op.Invokeinterface:
		mode = VirtualMethod
		desc = strings.Replace(desc, "(", "("+bytecode.ObjectDescriptor, 1)
	default:
		return false
	}
	indy := r.callSite(desc, MethodKind, mode, insn.Owner, insn.Name, insn.Desc)
	transform.Replace(r.method, insn, indy)
	transform.Coerce(r.method, indy, bytecode.ReturnTypeOf(insn.Desc))
	return true
}

func (r *rewriter) rewriteField(insn *bytecode.FieldInsn) bool {
	if r.session.IsFinalField(insn.Owner, insn.Name) {
		return false
	}
	var mode int32
	var desc string
	switch insn.Op {
	case op.Getfield:
		mode, desc = VirtualGetter, "("+bytecode.ObjectDescriptor+")"+insn.Desc
	case op.Getstatic:
		mode, desc = StaticGetter, "()"+insn.Desc
	case op.Putfield:
		mode, desc = VirtualSetter, "("+bytecode.ObjectDescriptor+insn.Desc+")V"
	case op.Putstatic:
		mode, desc = StaticSetter, "("+insn.Desc+")V"
	default:
		return false
	}
	fieldType := bytecode.TypeOf(insn.Desc)
	indy := r.callSite(desc, FieldKind, mode, insn.Owner, insn.Name, fieldType.ClassName())
	transform.Replace(r.method, insn, indy)
	if mode == VirtualGetter || mode == StaticGetter {
		transform.Coerce(r.method, indy, fieldType)
	}
	return true
}

func (r *rewriter) callSite(desc string, kind, mode int32, owner, name, targetDesc string) *bytecode.InvokeDynamicInsn {
	return bytecode.NewInvokeDynamic(
		r.session.Namer.RandomIdentifier(),
		desc,
		r.bsm,
		kind,
		mode,
		Encode(bytecode.DottedName(owner), OwnerKey),
		Encode(name, NameKey),
		Encode(targetDesc, DescKey),
	)
}
