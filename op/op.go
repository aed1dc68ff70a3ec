// Package op defines the JVM opcodes understood by the rewriting engine.
package op

// Code is a single-byte JVM opcode.
type Code uint8

const (
	// Constants
	Nop        Code = 0x00
	AconstNull Code = 0x01
	IconstM1   Code = 0x02
	Iconst0    Code = 0x03
	Iconst1    Code = 0x04
	Iconst2    Code = 0x05
	Iconst3    Code = 0x06
	Iconst4    Code = 0x07
	Iconst5    Code = 0x08
	Lconst0    Code = 0x09
	Lconst1    Code = 0x0a
	Fconst0    Code = 0x0b
	Fconst1    Code = 0x0c
	Fconst2    Code = 0x0d
	Dconst0    Code = 0x0e
	Dconst1    Code = 0x0f
	Bipush     Code = 0x10
	Sipush     Code = 0x11
	Ldc        Code = 0x12
	LdcW       Code = 0x13
	Ldc2W      Code = 0x14

	// Loads
	Iload  Code = 0x15
	Lload  Code = 0x16
	Fload  Code = 0x17
	Dload  Code = 0x18
	Aload  Code = 0x19
	Iaload Code = 0x2e
	Laload Code = 0x2f
	Faload Code = 0x30
	Daload Code = 0x31
	Aaload Code = 0x32
	Baload Code = 0x33
	Caload Code = 0x34
	Saload Code = 0x35

	// Stores
	Istore  Code = 0x36
	Lstore  Code = 0x37
	Fstore  Code = 0x38
	Dstore  Code = 0x39
	Astore  Code = 0x3a
	Iastore Code = 0x4f
	Lastore Code = 0x50
	Fastore Code = 0x51
	Dastore Code = 0x52
	Aastore Code = 0x53
	Bastore Code = 0x54
	Castore Code = 0x55
	Sastore Code = 0x56

	// Stack
	Pop    Code = 0x57
	Pop2   Code = 0x58
	Dup    Code = 0x59
	DupX1  Code = 0x5a
	DupX2  Code = 0x5b
	Dup2   Code = 0x5c
	Dup2X1 Code = 0x5d
	Dup2X2 Code = 0x5e
	Swap   Code = 0x5f

	// Math
	Iadd  Code = 0x60
	Isub  Code = 0x64
	Imul  Code = 0x68
	Idiv  Code = 0x6c
	Irem  Code = 0x70
	Ineg  Code = 0x74
	Ishl  Code = 0x78
	Ishr  Code = 0x7a
	Iushr Code = 0x7c
	Iand  Code = 0x7e
	Ior   Code = 0x80
	Ixor  Code = 0x82
	Iinc  Code = 0x84

	// Conversions
	I2c Code = 0x92

	// Comparisons
	Ifeq     Code = 0x99
	Ifne     Code = 0x9a
	Iflt     Code = 0x9b
	Ifge     Code = 0x9c
	Ifgt     Code = 0x9d
	Ifle     Code = 0x9e
	IfIcmpeq Code = 0x9f
	IfIcmpne Code = 0xa0
	IfIcmplt Code = 0xa1
	IfIcmpge Code = 0xa2
	IfIcmpgt Code = 0xa3
	IfIcmple Code = 0xa4
	IfAcmpeq Code = 0xa5
	IfAcmpne Code = 0xa6

	// Control
	Goto         Code = 0xa7
	Jsr          Code = 0xa8
	Ret          Code = 0xa9
	Tableswitch  Code = 0xaa
	Lookupswitch Code = 0xab
	Ireturn      Code = 0xac
	Lreturn      Code = 0xad
	Freturn      Code = 0xae
	Dreturn      Code = 0xaf
	Areturn      Code = 0xb0
	Return       Code = 0xb1

	// References
	Getstatic       Code = 0xb2
	Putstatic       Code = 0xb3
	Getfield        Code = 0xb4
	Putfield        Code = 0xb5
	Invokevirtual   Code = 0xb6
	Invokespecial   Code = 0xb7
	Invokestatic    Code = 0xb8
	Invokeinterface Code = 0xb9
	Invokedynamic   Code = 0xba
	New             Code = 0xbb
	Newarray        Code = 0xbc
	Anewarray       Code = 0xbd
	Arraylength     Code = 0xbe
	Athrow          Code = 0xbf
	Checkcast       Code = 0xc0
	Instanceof      Code = 0xc1
	Monitorenter    Code = 0xc2
	Monitorexit     Code = 0xc3

	// Extended
	Wide           Code = 0xc4
	Multianewarray Code = 0xc5
	Ifnull         Code = 0xc6
	Ifnonnull      Code = 0xc7
	GotoW          Code = 0xc8
	JsrW           Code = 0xc9
)

// Variable marks an opcode whose operand length depends on its position in
// the code array or on a following opcode (tableswitch, lookupswitch, wide).
const Variable = -1

// Info contains information about an opcode.
type Info struct {
	Code Code
	Name string
	// Operands is the number of operand bytes following the opcode, or
	// Variable.
	Operands int
}

// Valid returns true if the opcode is defined by the instruction set.
func (i Info) Valid() bool {
	return i.Name != ""
}

// Size returns the encoded length of the opcode and its operands, or
// Variable.
func (i Info) Size() int {
	if i.Operands == Variable {
		return Variable
	}
	return 1 + i.Operands
}

var infos = make([]Info, 256)

var names = []string{
	"nop", "aconst_null", "iconst_m1", "iconst_0", "iconst_1", "iconst_2", "iconst_3", "iconst_4", "iconst_5",
	"lconst_0", "lconst_1", "fconst_0", "fconst_1", "fconst_2", "dconst_0", "dconst_1", "bipush", "sipush",
	"ldc", "ldc_w", "ldc2_w", "iload", "lload", "fload", "dload", "aload", "iload_0", "iload_1", "iload_2",
	"iload_3", "lload_0", "lload_1", "lload_2", "lload_3", "fload_0", "fload_1", "fload_2", "fload_3",
	"dload_0", "dload_1", "dload_2", "dload_3", "aload_0", "aload_1", "aload_2", "aload_3", "iaload",
	"laload", "faload", "daload", "aaload", "baload", "caload", "saload", "istore", "lstore", "fstore",
	"dstore", "astore", "istore_0", "istore_1", "istore_2", "istore_3", "lstore_0", "lstore_1", "lstore_2",
	"lstore_3", "fstore_0", "fstore_1", "fstore_2", "fstore_3", "dstore_0", "dstore_1", "dstore_2",
	"dstore_3", "astore_0", "astore_1", "astore_2", "astore_3", "iastore", "lastore", "fastore", "dastore",
	"aastore", "bastore", "castore", "sastore", "pop", "pop2", "dup", "dup_x1", "dup_x2", "dup2", "dup2_x1",
	"dup2_x2", "swap", "iadd", "ladd", "fadd", "dadd", "isub", "lsub", "fsub", "dsub", "imul", "lmul",
	"fmul", "dmul", "idiv", "ldiv", "fdiv", "ddiv", "irem", "lrem", "frem", "drem", "ineg", "lneg", "fneg",
	"dneg", "ishl", "lshl", "ishr", "lshr", "iushr", "lushr", "iand", "land", "ior", "lor", "ixor", "lxor",
	"iinc", "i2l", "i2f", "i2d", "l2i", "l2f", "l2d", "f2i", "f2l", "f2d", "d2i", "d2l", "d2f", "i2b", "i2c",
	"i2s", "lcmp", "fcmpl", "fcmpg", "dcmpl", "dcmpg", "ifeq", "ifne", "iflt", "ifge", "ifgt", "ifle",
	"if_icmpeq", "if_icmpne", "if_icmplt", "if_icmpge", "if_icmpgt", "if_icmple", "if_acmpeq", "if_acmpne",
	"goto", "jsr", "ret", "tableswitch", "lookupswitch", "ireturn", "lreturn", "freturn", "dreturn",
	"areturn", "return", "getstatic", "putstatic", "getfield", "putfield", "invokevirtual",
	"invokespecial", "invokestatic", "invokeinterface", "invokedynamic", "new", "newarray", "anewarray",
	"arraylength", "athrow", "checkcast", "instanceof", "monitorenter", "monitorexit", "wide",
	"multianewarray", "ifnull", "ifnonnull", "goto_w", "jsr_w",
}

func init() {
	for i, name := range names {
		infos[i] = Info{
			Code:     Code(i),
			Name:     name,
			Operands: operandCount(Code(i)),
		}
	}
}

func operandCount(c Code) int {
	switch {
	case c == Bipush, c == Ldc, c == Newarray, c == Ret:
		return 1
	case c >= Iload && c <= Aload, c >= Istore && c <= Astore:
		return 1
	case c == Sipush, c == LdcW, c == Ldc2W, c == Iinc:
		return 2
	case c >= Ifeq && c <= Jsr, c == Ifnull, c == Ifnonnull:
		return 2
	case c >= Getstatic && c <= Invokestatic:
		return 2
	case c == New, c == Anewarray, c == Checkcast, c == Instanceof:
		return 2
	case c == Multianewarray:
		return 3
	case c == Invokeinterface, c == Invokedynamic, c == GotoW, c == JsrW:
		return 4
	case c == Tableswitch, c == Lookupswitch, c == Wide:
		return Variable
	default:
		return 0
	}
}

// GetInfo returns information about the given opcode.
func GetInfo(op Code) Info {
	return infos[op]
}

// String returns the mnemonic of the opcode, e.g. "invokestatic".
func (c Code) String() string {
	if name := infos[c].Name; name != "" {
		return name
	}
	return "invalid"
}

// IsJump returns true for the opcodes that take a branch offset operand.
func (c Code) IsJump() bool {
	return (c >= Ifeq && c <= Jsr) || c == Ifnull || c == Ifnonnull || c == GotoW || c == JsrW
}
