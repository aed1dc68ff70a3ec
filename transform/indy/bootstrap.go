package indy

import (
	"strings"

	"github.com/deepnoodle-ai/radon/bytecode"
	"github.com/deepnoodle-ai/radon/op"
)

// BootstrapDesc is the descriptor of the bootstrap method. The JVM adapts
// the lookup, name, call site type and the five static arguments to Object.
var BootstrapDesc = "(" + strings.Repeat(bytecode.ObjectDescriptor, 8) + ")" + bytecode.ObjectDescriptor

const decodeDesc = "(Ljava/lang/String;I)Ljava/lang/String;"

const (
	lookupClass     = "java/lang/invoke/MethodHandles$Lookup"
	methodTypeClass = "java/lang/invoke/MethodType"
	methodTypeDesc  = "Ljava/lang/invoke/MethodType;"
	handleClass     = "java/lang/invoke/MethodHandle"
	handleDesc      = "Ljava/lang/invoke/MethodHandle;"
	callSiteClass   = "java/lang/invoke/ConstantCallSite"
	stringClass     = "java/lang/String"
	integerClass    = "java/lang/Integer"
	classDesc       = "Ljava/lang/Class;"
)

// Local variables of the bootstrap method. Slots 0 to 7 hold the
// arguments: lookup, name, call site type, kind, mode, owner, name and
// descriptor.
const (
	argLookup = 0
	argType   = 2
	argKind   = 3
	argMode   = 4
	argOwner  = 5
	argName   = 6
	argDesc   = 7

	locOwner      = 8
	locName       = 9
	locDesc       = 10
	locHandle     = 11
	locLookup     = 12
	locMethodType = 13
	locMode       = 14
)

// bootstrapMethod returns the bootstrap method. It decodes the owner, name
// and descriptor, resolves the target with the lookup and binds it to a
// constant call site of the requested type.
func bootstrapMethod(host, name, decodeName string) *bytecode.MethodUnit {
	field := &bytecode.Label{}
	virtual := &bytecode.Label{}
	staticGetter := &bytecode.Label{}
	virtualSetter := &bytecode.Label{}
	staticSetter := &bytecode.Label{}
	done := &bytecode.Label{}

	b := bytecode.NewBuilder()
	b.Var(op.Aload, argLookup).Type(op.Checkcast, lookupClass).Var(op.Astore, locLookup)
	decodeArg(b, host, decodeName, argOwner, OwnerKey)
	b.Invoke(op.Invokestatic, "java/lang/Class", "forName", "(Ljava/lang/String;)"+classDesc).
		Var(op.Astore, locOwner)
	decodeArg(b, host, decodeName, argName, NameKey)
	b.Var(op.Astore, locName)
	decodeArg(b, host, decodeName, argDesc, DescKey)
	b.Var(op.Astore, locDesc)

	intArg(b, argKind)
	b.Int(MethodKind).Jump(op.IfIcmpne, field)

	// Methods: resolve the descriptor against the owner's class loader.
	b.Var(op.Aload, locDesc).
		Var(op.Aload, locOwner).
		Invoke(op.Invokevirtual, "java/lang/Class", "getClassLoader", "()Ljava/lang/ClassLoader;").
		Invoke(op.Invokestatic, methodTypeClass, "fromMethodDescriptorString",
			"(Ljava/lang/String;Ljava/lang/ClassLoader;)"+methodTypeDesc).
		Var(op.Astore, locMethodType)
	intArg(b, argMode)
	b.Int(StaticMethod).Jump(op.IfIcmpne, virtual)
	findMethod(b, "findStatic")
	b.Jump(op.Goto, done).Mark(virtual)
	findMethod(b, "findVirtual")
	b.Jump(op.Goto, done)

	// Fields: the field type is the return type of a getter call site and
	// the last parameter type of a setter call site.
	b.Mark(field)
	intArg(b, argMode)
	b.Var(op.Istore, locMode)
	b.Var(op.Iload, locMode).Int(VirtualGetter).Jump(op.IfIcmpne, staticGetter)
	findField(b, "findGetter", -1)
	b.Jump(op.Goto, done).Mark(staticGetter)
	b.Var(op.Iload, locMode).Int(StaticGetter).Jump(op.IfIcmpne, virtualSetter)
	findField(b, "findStaticGetter", -1)
	b.Jump(op.Goto, done).Mark(virtualSetter)
	b.Var(op.Iload, locMode).Int(VirtualSetter).Jump(op.IfIcmpne, staticSetter)
	findField(b, "findSetter", 1)
	b.Jump(op.Goto, done).Mark(staticSetter)
	findField(b, "findStaticSetter", 0)

	b.Mark(done).
		Type(op.New, callSiteClass).
		Op(op.Dup).
		Var(op.Aload, locHandle).
		Var(op.Aload, argType).
		Type(op.Checkcast, methodTypeClass).
		Invoke(op.Invokevirtual, handleClass, "asType", "("+methodTypeDesc+")"+handleDesc).
		Invoke(op.Invokespecial, callSiteClass, "<init>", "("+handleDesc+")V").
		Op(op.Areturn)

	m := &bytecode.MethodUnit{
		Name:         name,
		Desc:         BootstrapDesc,
		Access:       bytecode.AccPublic | bytecode.AccStatic | bytecode.AccSynthetic,
		Instructions: b.List(),
		MaxStack:     6,
		MaxLocals:    15,
	}
	return m
}

// decodeArg pushes the decoded value of a String argument.
func decodeArg(b *bytecode.Builder, host, decodeName string, slot int, key uint16) {
	b.Var(op.Aload, slot).
		Type(op.Checkcast, stringClass).
		Int(int32(key)).
		Invoke(op.Invokestatic, host, decodeName, decodeDesc)
}

// intArg pushes the value of an Integer argument.
func intArg(b *bytecode.Builder, slot int) {
	b.Var(op.Aload, slot).
		Type(op.Checkcast, integerClass).
		Invoke(op.Invokevirtual, integerClass, "intValue", "()I")
}

func findMethod(b *bytecode.Builder, finder string) {
	b.Var(op.Aload, locLookup).
		Var(op.Aload, locOwner).
		Var(op.Aload, locName).
		Var(op.Aload, locMethodType).
		Invoke(op.Invokevirtual, lookupClass, finder,
			"("+classDesc+bytecode.StringDescriptor+methodTypeDesc+")"+handleDesc).
		Var(op.Astore, locHandle)
}

// findField resolves a field handle. The field type is taken from the call
// site type: its return type when param is negative, otherwise the given
// parameter type.
func findField(b *bytecode.Builder, finder string, param int32) {
	b.Var(op.Aload, locLookup).
		Var(op.Aload, locOwner).
		Var(op.Aload, locName).
		Var(op.Aload, argType).
		Type(op.Checkcast, methodTypeClass)
	if param < 0 {
		b.Invoke(op.Invokevirtual, methodTypeClass, "returnType", "()"+classDesc)
	} else {
		b.Int(param).Invoke(op.Invokevirtual, methodTypeClass, "parameterType", "(I)"+classDesc)
	}
	b.Invoke(op.Invokevirtual, lookupClass, finder,
		"("+classDesc+bytecode.StringDescriptor+classDesc+")"+handleDesc).
		Var(op.Astore, locHandle)
}

// decodeMethod returns the helper that reverses Encode:
//
//	static String decode(String s, int key) {
//	    char[] cs = s.toCharArray();
//	    for (int i = 0; i < cs.length; i++) cs[i] = (char) (cs[i] ^ key);
//	    return new String(cs);
//	}
func decodeMethod(name string) *bytecode.MethodUnit {
	loop := &bytecode.Label{}
	end := &bytecode.Label{}
	b := bytecode.NewBuilder()
	b.Var(op.Aload, 0).
		Invoke(op.Invokevirtual, stringClass, "toCharArray", "()[C").
		Var(op.Astore, 2).
		Int(0).
		Var(op.Istore, 3).
		Mark(loop).
		Var(op.Iload, 3).
		Var(op.Aload, 2).
		Op(op.Arraylength).
		Jump(op.IfIcmpge, end).
		Var(op.Aload, 2).
		Var(op.Iload, 3).
		Var(op.Aload, 2).
		Var(op.Iload, 3).
		Op(op.Caload).
		Var(op.Iload, 1).
		Op(op.Ixor, op.I2c, op.Castore).
		Iinc(3, 1).
		Jump(op.Goto, loop).
		Mark(end).
		Type(op.New, stringClass).
		Op(op.Dup).
		Var(op.Aload, 2).
		Invoke(op.Invokespecial, stringClass, "<init>", "([C)V").
		Op(op.Areturn)

	return &bytecode.MethodUnit{
		Name:         name,
		Desc:         decodeDesc,
		Access:       bytecode.AccPrivate | bytecode.AccStatic | bytecode.AccSynthetic,
		Instructions: b.List(),
		MaxStack:     5,
		MaxLocals:    4,
	}
}
