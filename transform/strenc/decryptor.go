package strenc

import (
	"github.com/deepnoodle-ai/radon/bytecode"
	"github.com/deepnoodle-ai/radon/op"
)

// DecryptDesc is the descriptor of the decryption routine: payload,
// context marker and random key.
const DecryptDesc = "(Ljava/lang/Object;Ljava/lang/Object;I)Ljava/lang/String;"

const (
	keyAtDesc = "(IIIII)I"
	rotrDesc  = "(II)I"

	stringClass       = "java/lang/String"
	throwableClass    = "java/lang/Throwable"
	stackElementClass = "java/lang/StackTraceElement"
)

// Local variables of the decryption routine.
const (
	argPayload = 0
	argRandom  = 2

	locStack  = 3
	locK1     = 4
	locK2     = 5
	locK3     = 6
	locK4     = 7
	locChars  = 8
	locIndex  = 9
	locMix    = 10
	numLocals = 11
)

// decryptorClass returns the class holding the decryption routine and its
// helpers. Its methods are the Java equivalent of Decrypt.
func decryptorClass(name, decryptName, keyAtName, rotrName string) *bytecode.ClassUnit {
	return &bytecode.ClassUnit{
		Name:      name,
		Version:   bytecode.Java8,
		Access:    bytecode.AccPublic | bytecode.AccFinal | bytecode.AccSuper | bytecode.AccSynthetic,
		SuperName: "java/lang/Object",
		Methods: []*bytecode.MethodUnit{
			decryptMethod(name, decryptName, keyAtName, rotrName),
			keyAtMethod(keyAtName),
			rotrMethod(rotrName),
		},
	}
}

// decryptMethod returns the decryption routine:
//
//	public static String decrypt(Object payload, Object ctx, int k5) {
//	    StackTraceElement[] st = new Throwable().getStackTrace();
//	    int k1 = st[0].getClassName().hashCode();
//	    int k2 = "<clinit>".hashCode();
//	    int k3 = st[1].getClassName().hashCode();
//	    int k4 = st[1].getMethodName().hashCode();
//	    char[] cs = ((String) payload).toCharArray();
//	    int mix = (k5 ^ (k5 >>> 16)) & 0xFFFF;
//	    for (int i = 0; i < cs.length; i++)
//	        cs[i] = (char) (rotr(cs[i] ^ mix, (k5 + i) & 15) ^ keyAt(i, k1, k2, k3, k4));
//	    return new String(cs);
//	}
func decryptMethod(owner, name, keyAtName, rotrName string) *bytecode.MethodUnit {
	loop := &bytecode.Label{}
	end := &bytecode.Label{}
	b := bytecode.NewBuilder()
	b.Type(op.New, throwableClass).
		Op(op.Dup).
		Invoke(op.Invokespecial, throwableClass, "<init>", "()V").
		Invoke(op.Invokevirtual, throwableClass, "getStackTrace", "()[L"+stackElementClass+";").
		Var(op.Astore, locStack)
	frameHash(b, 0, "getClassName")
	b.Var(op.Istore, locK1).
		Ldc("<clinit>").
		Invoke(op.Invokevirtual, stringClass, "hashCode", "()I").
		Var(op.Istore, locK2)
	frameHash(b, 1, "getClassName")
	b.Var(op.Istore, locK3)
	frameHash(b, 1, "getMethodName")
	b.Var(op.Istore, locK4)

	b.Var(op.Aload, argPayload).
		Type(op.Checkcast, stringClass).
		Invoke(op.Invokevirtual, stringClass, "toCharArray", "()[C").
		Var(op.Astore, locChars)
	b.Var(op.Iload, argRandom).
		Var(op.Iload, argRandom).
		Int(16).
		Op(op.Iushr, op.Ixor).
		Int(0xFFFF).
		Op(op.Iand).
		Var(op.Istore, locMix)

	b.Int(0).Var(op.Istore, locIndex).
		Mark(loop).
		Var(op.Iload, locIndex).
		Var(op.Aload, locChars).
		Op(op.Arraylength).
		Jump(op.IfIcmpge, end)
	b.Var(op.Aload, locChars).
		Var(op.Iload, locIndex).
		// rotr(cs[i] ^ mix, (k5 + i) & 15)
		Var(op.Aload, locChars).
		Var(op.Iload, locIndex).
		Op(op.Caload).
		Var(op.Iload, locMix).
		Op(op.Ixor).
		Var(op.Iload, argRandom).
		Var(op.Iload, locIndex).
		Op(op.Iadd).
		Int(15).
		Op(op.Iand).
		Invoke(op.Invokestatic, owner, rotrName, rotrDesc).
		// keyAt(i, k1, k2, k3, k4)
		Var(op.Iload, locIndex).
		Var(op.Iload, locK1).
		Var(op.Iload, locK2).
		Var(op.Iload, locK3).
		Var(op.Iload, locK4).
		Invoke(op.Invokestatic, owner, keyAtName, keyAtDesc).
		Op(op.Ixor, op.I2c, op.Castore).
		Iinc(locIndex, 1).
		Jump(op.Goto, loop)

	b.Mark(end).
		Type(op.New, stringClass).
		Op(op.Dup).
		Var(op.Aload, locChars).
		Invoke(op.Invokespecial, stringClass, "<init>", "([C)V").
		Op(op.Areturn)

	return &bytecode.MethodUnit{
		Name:         name,
		Desc:         DecryptDesc,
		Access:       bytecode.AccPublic | bytecode.AccStatic | bytecode.AccSynthetic,
		Instructions: b.List(),
		MaxStack:     8,
		MaxLocals:    numLocals,
	}
}

// frameHash pushes the hash of a name taken from a stack trace element.
func frameHash(b *bytecode.Builder, frame int32, getter string) {
	b.Var(op.Aload, locStack).
		Int(frame).
		Op(op.Aaload).
		Invoke(op.Invokevirtual, stackElementClass, getter, "()Ljava/lang/String;").
		Invoke(op.Invokevirtual, stringClass, "hashCode", "()I")
}

// keyAtMethod returns the helper selecting the context key of a position:
//
//	private static int keyAt(int i, int k1, int k2, int k3, int k4) {
//	    int m = i % 4;
//	    if (m == 0) return k1;
//	    if (m == 1) return k2;
//	    if (m == 2) return k3;
//	    return k4;
//	}
func keyAtMethod(name string) *bytecode.MethodUnit {
	const m = 5
	next := []*bytecode.Label{{}, {}, {}}
	b := bytecode.NewBuilder()
	b.Var(op.Iload, 0).Int(4).Op(op.Irem).Var(op.Istore, m)
	for i, label := range next {
		b.Var(op.Iload, m).
			Int(int32(i)).
			Jump(op.IfIcmpne, label).
			Var(op.Iload, i+1).
			Op(op.Ireturn).
			Mark(label)
	}
	b.Var(op.Iload, 4).Op(op.Ireturn)

	return &bytecode.MethodUnit{
		Name:         name,
		Desc:         keyAtDesc,
		Access:       bytecode.AccPrivate | bytecode.AccStatic | bytecode.AccSynthetic,
		Instructions: b.List(),
		MaxStack:     2,
		MaxLocals:    6,
	}
}

// rotrMethod returns the helper rotating a 16 bit value right:
//
//	private static int rotr(int c, int r) {
//	    return ((c >>> r) | (c << (16 - r))) & 0xFFFF;
//	}
func rotrMethod(name string) *bytecode.MethodUnit {
	b := bytecode.NewBuilder()
	b.Var(op.Iload, 0).
		Var(op.Iload, 1).
		Op(op.Iushr).
		Var(op.Iload, 0).
		Int(16).
		Var(op.Iload, 1).
		Op(op.Isub, op.Ishl, op.Ior).
		Int(0xFFFF).
		Op(op.Iand, op.Ireturn)

	return &bytecode.MethodUnit{
		Name:         name,
		Desc:         rotrDesc,
		Access:       bytecode.AccPrivate | bytecode.AccStatic | bytecode.AccSynthetic,
		Instructions: b.List(),
		MaxStack:     4,
		MaxLocals:    2,
	}
}
