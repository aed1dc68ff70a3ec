package bytecode

import (
	"fmt"
	"math"

	"github.com/deepnoodle-ai/radon/op"
)

// Instruction is one element of a method body. The set of implementations is
// closed: every variant is declared in this file.
type Instruction interface {
	// Opcode returns the opcode of the instruction. Labels return op.Nop.
	Opcode() op.Code

	// Size returns the largest number of bytes the instruction can occupy
	// in an encoded code array.
	Size() int

	instruction()
}

// HandleInvokeStatic is the reference kind of a method handle to a static
// method.
const HandleInvokeStatic = 6

// MaxBootstrapArgs is the largest number of static arguments an
// InvokeDynamicInsn may carry.
const MaxBootstrapArgs = 8

// Handle is a method handle constant used as the bootstrap method of an
// invokedynamic call site.
type Handle struct {
	Kind      int
	Owner     string
	Name      string
	Desc      string
	Interface bool
}

// String returns the handle in "Owner.NameDesc" form.
func (h Handle) String() string {
	return h.Owner + "." + h.Name + h.Desc
}

// Insn is an instruction without operands, e.g. dup, swap or areturn.
type Insn struct {
	Op op.Code
}

// IntInsn is bipush, sipush or newarray with its immediate operand.
type IntInsn struct {
	Op      op.Code
	Operand int
}

// VarInsn loads or stores a local variable.
type VarInsn struct {
	Op  op.Code
	Var int
}

// TypeInsn is new, anewarray, checkcast or instanceof. Desc is an internal
// name, or an array descriptor.
type TypeInsn struct {
	Op   op.Code
	Desc string
}

// FieldInsn is getstatic, putstatic, getfield or putfield.
type FieldInsn struct {
	Op    op.Code
	Owner string
	Name  string
	Desc  string
}

// MethodInsn is invokevirtual, invokespecial, invokestatic or
// invokeinterface.
type MethodInsn struct {
	Op        op.Code
	Owner     string
	Name      string
	Desc      string
	Interface bool
}

// InvokeDynamicInsn is an indirect call site bound to a bootstrap method.
// Args holds the static bootstrap arguments; each is an int32, int64,
// float32, float64 or string.
type InvokeDynamicInsn struct {
	Name      string
	Desc      string
	Bootstrap Handle
	Args      []any
}

// JumpInsn is a conditional or unconditional branch to a Label.
type JumpInsn struct {
	Op     op.Code
	Target *Label
}

// Label marks a position in the instruction list. It is not encoded.
type Label struct {
	_ byte // labels must have distinct addresses
}

// LdcInsn pushes a constant pool value. Value is an int32, int64, float32,
// float64, string or Type.
type LdcInsn struct {
	Value any
}

// IincInsn increments a local int variable by a constant.
type IincInsn struct {
	Var  int
	Incr int
}

// Opaque is any instruction the engine does not interpret. Its operand
// bytes are carried untouched.
type Opaque struct {
	Op       op.Code
	Operands []byte
}

func (*Insn) instruction()              {}
func (*IntInsn) instruction()           {}
func (*VarInsn) instruction()           {}
func (*TypeInsn) instruction()          {}
func (*FieldInsn) instruction()         {}
func (*MethodInsn) instruction()        {}
func (*InvokeDynamicInsn) instruction() {}
func (*JumpInsn) instruction()          {}
func (*Label) instruction()             {}
func (*LdcInsn) instruction()           {}
func (*IincInsn) instruction()          {}
func (*Opaque) instruction()            {}

func (i *Insn) Opcode() op.Code              { return i.Op }
func (i *IntInsn) Opcode() op.Code           { return i.Op }
func (i *VarInsn) Opcode() op.Code           { return i.Op }
func (i *TypeInsn) Opcode() op.Code          { return i.Op }
func (i *FieldInsn) Opcode() op.Code         { return i.Op }
func (i *MethodInsn) Opcode() op.Code        { return i.Op }
func (i *InvokeDynamicInsn) Opcode() op.Code { return op.Invokedynamic }
func (i *JumpInsn) Opcode() op.Code          { return i.Op }
func (i *Label) Opcode() op.Code             { return op.Nop }
func (i *IincInsn) Opcode() op.Code          { return op.Iinc }
func (i *Opaque) Opcode() op.Code            { return i.Op }

func (i *LdcInsn) Opcode() op.Code {
	switch i.Value.(type) {
	case int64, float64:
		return op.Ldc2W
	default:
		return op.Ldc
	}
}

func (i *Insn) Size() int { return 1 }

func (i *IntInsn) Size() int {
	if i.Op == op.Sipush {
		return 3
	}
	return 2
}

func (i *VarInsn) Size() int {
	switch {
	case i.Var < 4 && i.Op != op.Ret:
		return 1
	case i.Var < 256:
		return 2
	default:
		return 4
	}
}

func (i *TypeInsn) Size() int  { return 3 }
func (i *FieldInsn) Size() int { return 3 }

func (i *MethodInsn) Size() int {
	if i.Op == op.Invokeinterface {
		return 5
	}
	return 3
}

func (i *InvokeDynamicInsn) Size() int { return 5 }

// Size assumes the branch may need the wide form: goto_w and jsr_w for
// unconditional jumps, an inverted branch around goto_w otherwise.
func (i *JumpInsn) Size() int {
	if i.Op == op.Goto || i.Op == op.Jsr || i.Op == op.GotoW || i.Op == op.JsrW {
		return 5
	}
	return 8
}

func (i *Label) Size() int { return 0 }

// Size assumes ldc_w, since the constant pool index is only known once the
// class is written.
func (i *LdcInsn) Size() int { return 3 }

func (i *IincInsn) Size() int {
	if i.Var > 255 || i.Incr > math.MaxInt8 || i.Incr < math.MinInt8 {
		return 6
	}
	return 3
}

func (i *Opaque) Size() int { return 1 + len(i.Operands) }

// NewInvokeDynamic returns an invokedynamic call site. It panics if more
// than MaxBootstrapArgs arguments are given or if an argument has an
// unsupported type.
func NewInvokeDynamic(name, desc string, bsm Handle, args ...any) *InvokeDynamicInsn {
	if len(args) > MaxBootstrapArgs {
		panic(fmt.Sprintf("bytecode: %d bootstrap arguments exceed the limit of %d", len(args), MaxBootstrapArgs))
	}
	for _, arg := range args {
		switch arg.(type) {
		case int32, int64, float32, float64, string:
		default:
			panic(fmt.Sprintf("bytecode: unsupported bootstrap argument type %T", arg))
		}
	}
	return &InvokeDynamicInsn{Name: name, Desc: desc, Bootstrap: bsm, Args: args}
}

// PushInt returns the shortest instruction that pushes v.
func PushInt(v int32) Instruction {
	switch {
	case v >= -1 && v <= 5:
		return &Insn{Op: op.Code(int32(op.Iconst0) + v)}
	case v >= math.MinInt8 && v <= math.MaxInt8:
		return &IntInsn{Op: op.Bipush, Operand: int(v)}
	case v >= math.MinInt16 && v <= math.MaxInt16:
		return &IntInsn{Op: op.Sipush, Operand: int(v)}
	default:
		return &LdcInsn{Value: v}
	}
}
