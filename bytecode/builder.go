package bytecode

import "github.com/deepnoodle-ai/radon/op"

// Builder appends instructions to a list. It is used to synthesize method
// bodies.
type Builder struct {
	list *InsnList
}

// NewBuilder returns a builder with an empty list.
func NewBuilder() *Builder {
	return &Builder{list: NewInsnList()}
}

// List returns the instructions built so far.
func (b *Builder) List() *InsnList {
	return b.list
}

// Op appends an instruction without operands.
func (b *Builder) Op(codes ...op.Code) *Builder {
	for _, c := range codes {
		b.list.Add(&Insn{Op: c})
	}
	return b
}

// Int appends the shortest instruction that pushes v.
func (b *Builder) Int(v int32) *Builder {
	b.list.Add(PushInt(v))
	return b
}

// Ldc appends a constant load.
func (b *Builder) Ldc(v any) *Builder {
	b.list.Add(&LdcInsn{Value: v})
	return b
}

// Var appends a local variable load or store.
func (b *Builder) Var(c op.Code, index int) *Builder {
	b.list.Add(&VarInsn{Op: c, Var: index})
	return b
}

// Type appends new, anewarray, checkcast or instanceof.
func (b *Builder) Type(c op.Code, desc string) *Builder {
	b.list.Add(&TypeInsn{Op: c, Desc: desc})
	return b
}

// Field appends a field access.
func (b *Builder) Field(c op.Code, owner, name, desc string) *Builder {
	b.list.Add(&FieldInsn{Op: c, Owner: owner, Name: name, Desc: desc})
	return b
}

// Invoke appends a method call. invokeinterface calls are flagged as
// interface calls.
func (b *Builder) Invoke(c op.Code, owner, name, desc string) *Builder {
	b.list.Add(&MethodInsn{
		Op:        c,
		Owner:     owner,
		Name:      name,
		Desc:      desc,
		Interface: c == op.Invokeinterface,
	})
	return b
}

// Jump appends a branch to target.
func (b *Builder) Jump(c op.Code, target *Label) *Builder {
	b.list.Add(&JumpInsn{Op: c, Target: target})
	return b
}

// Mark places label at the current position.
func (b *Builder) Mark(label *Label) *Builder {
	b.list.Add(label)
	return b
}

// Iinc appends a local variable increment.
func (b *Builder) Iinc(index, incr int) *Builder {
	b.list.Add(&IincInsn{Var: index, Incr: incr})
	return b
}
