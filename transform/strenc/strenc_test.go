package strenc

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/deepnoodle-ai/radon/bytecode"
	"github.com/deepnoodle-ai/radon/exclusion"
	"github.com/deepnoodle-ai/radon/op"
	"github.com/deepnoodle-ai/radon/transform"
)

func newSession(units []*bytecode.ClassUnit, opts ...transform.SessionOption) *transform.Session {
	opts = append([]transform.SessionOption{transform.WithRand(rand.New(rand.NewSource(7)))}, opts...)
	return transform.NewSession(units, opts...)
}

func class(name string, methods ...*bytecode.MethodUnit) *bytecode.ClassUnit {
	return &bytecode.ClassUnit{Name: name, Version: bytecode.Java8, SuperName: "java/lang/Object", Methods: methods}
}

func method(name string, insns ...bytecode.Instruction) *bytecode.MethodUnit {
	return bytecode.NewMethod(bytecode.AccPublic|bytecode.AccStatic, name, "()V", insns...)
}

func ldc(v any) *bytecode.LdcInsn {
	return &bytecode.LdcInsn{Value: v}
}

// pushedInt returns the value pushed by an instruction built by PushInt.
func pushedInt(t *testing.T, insn bytecode.Instruction) int32 {
	t.Helper()
	switch insn := insn.(type) {
	case *bytecode.Insn:
		return int32(insn.Op) - int32(op.Iconst0)
	case *bytecode.IntInsn:
		return int32(insn.Operand)
	case *bytecode.LdcInsn:
		return insn.Value.(int32)
	}
	t.Fatalf("%s does not push an int", insn.Opcode())
	return 0
}

// javaDecrypt follows the int arithmetic of the synthesized decryptor.
func javaDecrypt(payload string, k Keys) string {
	keyAt := func(i int32) int32 {
		switch i % 4 {
		case 0:
			return k.Decryptor
		case 1:
			return k.Clinit
		case 2:
			return k.Class
		}
		return k.Method
	}
	rotr := func(c, r int32) int32 {
		return (int32(uint32(c)>>uint32(r)) | c<<uint32(16-r)) & 0xFFFF
	}
	k5 := k.Random
	mix := (k5 ^ int32(uint32(k5)>>16)) & 0xFFFF
	cs := bytecode.Chars(payload)
	for i := range cs {
		idx := int32(i)
		cs[i] = uint16(rotr(int32(cs[i])^mix, (k5+idx)&15) ^ keyAt(idx))
	}
	return bytecode.FromChars(cs)
}

func TestCipherRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	plaintexts := []string{"", "a", "hello, world", "token=%%__USER__%%", "日本語テキスト", "\U0001F600 emoji", "\x00￿"}
	for _, p := range plaintexts {
		for i := 0; i < 50; i++ {
			k := Keys{
				Decryptor: int32(rng.Uint32()),
				Clinit:    int32(rng.Uint32()),
				Class:     int32(rng.Uint32()),
				Method:    int32(rng.Uint32()),
				Random:    int32(rng.Uint32()),
			}
			encrypted := Encrypt(p, k)
			require.Equal(t, len(bytecode.Chars(p)), len(bytecode.Chars(encrypted)))
			require.Equal(t, p, Decrypt(encrypted, k))
			require.Equal(t, p, javaDecrypt(encrypted, k))
		}
	}
}

func TestCipherDependsOnContext(t *testing.T) {
	k := ContextKeys("a.Decryptor", "com.example.Main", "run", 12345)
	encrypted := Encrypt("secret value", k)
	require.NotEqual(t, "secret value", encrypted)

	other := ContextKeys("a.Decryptor", "com.example.Other", "run", 12345)
	require.NotEqual(t, "secret value", Decrypt(encrypted, other))
}

func TestContextKeys(t *testing.T) {
	k := ContextKeys("com.example.Main", "com.example.Main", "main", -5)
	require.Equal(t, int32(812767018), k.Decryptor)
	require.Equal(t, int32(-1944711511), k.Clinit)
	require.Equal(t, int32(812767018), k.Class)
	require.Equal(t, int32(3343801), k.Method)
	require.Equal(t, int32(-5), k.Random)
}

func TestEncryptLiteral(t *testing.T) {
	literal := ldc("hello")
	m := method("run", literal, &bytecode.Insn{Op: op.Pop})
	s := newSession([]*bytecode.ClassUnit{class("com/example/Main", m)})

	require.Equal(t, 1, transform.Run(s, New()))
	require.Len(t, s.Units, 2)
	decryptor := s.Units[1]

	insns := m.Instructions.Snapshot()
	require.Len(t, insns, 8)
	require.Equal(t, []op.Code{op.AconstNull, op.DupX1, op.Pop, op.Swap},
		[]op.Code{insns[1].Opcode(), insns[2].Opcode(), insns[3].Opcode(), insns[4].Opcode()})
	call := insns[6].(*bytecode.MethodInsn)
	require.Equal(t, op.Invokestatic, call.Op)
	require.Equal(t, decryptor.Name, call.Owner)
	require.Equal(t, DecryptDesc, call.Desc)
	require.Equal(t, op.Pop, insns[7].Opcode())

	payload := insns[0].(*bytecode.LdcInsn).Value.(string)
	require.NotEqual(t, "hello", payload)
	keys := ContextKeys(decryptor.DottedName(), "com.example.Main", "run", pushedInt(t, insns[5]))
	require.Equal(t, "hello", Decrypt(payload, keys))
}

func TestPlaceholderGuard(t *testing.T) {
	for _, literal := range []string{"token=%%__USER__%%", "%%__RESOURCE__%%", "n=%%__NONCE__%%"} {
		t.Run(literal, func(t *testing.T) {
			guarded := ldc(literal)
			m := method("run", guarded)
			s := newSession([]*bytecode.ClassUnit{class("a/B", m)})
			require.Equal(t, 0, transform.Run(s, New(WithSpigotMode(true))))
			require.Equal(t, 1, m.Instructions.Len())
			require.Same(t, guarded, m.Instructions.At(0))
			require.Len(t, s.Units, 1)

			m = method("run", ldc(literal))
			s = newSession([]*bytecode.ClassUnit{class("a/B", m)})
			require.Equal(t, 1, transform.Run(s, New(WithSpigotMode(false))))
			require.Equal(t, 7, m.Instructions.Len())
		})
	}
	require.False(t, New(WithSpigotMode(true)).Keep("plain"))
}

func TestOtherConstantsAreKept(t *testing.T) {
	insns := []bytecode.Instruction{
		ldc(int32(70000)),
		ldc(int64(1)),
		ldc(float32(1.5)),
		ldc(bytecode.ObjectType("java/lang/String")),
		&bytecode.IntInsn{Op: op.Bipush, Operand: 9},
	}
	m := method("run", insns...)
	s := newSession([]*bytecode.ClassUnit{class("a/B", m)})
	require.Equal(t, 0, transform.Run(s, New()))
	require.Equal(t, insns, m.Instructions.Snapshot())
	require.Len(t, s.Units, 1)
}

func TestSingleDecryptorClass(t *testing.T) {
	var units []*bytecode.ClassUnit
	for _, name := range []string{"a/A", "a/B", "a/C"} {
		units = append(units, class(name,
			method("one", ldc("x"), ldc("y")),
			method("two", ldc("z")),
		))
	}
	s := newSession(units)
	require.Equal(t, 9, transform.Run(s, New()))
	require.Len(t, s.Units, 4)
	decryptor := s.Units[3]
	require.True(t, decryptor.Access.Has(bytecode.AccPublic|bytecode.AccFinal))
	require.Equal(t, bytecode.Java8, decryptor.Version)

	require.Len(t, decryptor.Methods, 3)
	decrypt := decryptor.Methods[0]
	require.Equal(t, DecryptDesc, decrypt.Desc)
	require.True(t, decrypt.IsStatic())
	require.Equal(t, keyAtDesc, decryptor.Methods[1].Desc)
	require.Equal(t, rotrDesc, decryptor.Methods[2].Desc)

	for _, c := range units[:3] {
		for _, m := range c.Methods {
			for _, insn := range m.Instructions.Snapshot() {
				if call, ok := insn.(*bytecode.MethodInsn); ok {
					require.Equal(t, decryptor.Name, call.Owner)
					require.Equal(t, decrypt.Name, call.Name)
				}
			}
		}
	}
}

func TestExemptMethodIsUntouched(t *testing.T) {
	ex, err := exclusion.New(`StringEncryption:^a/B\.keep\(\)V$`)
	require.NoError(t, err)
	keep := method("keep", ldc("kept"))
	other := method("other", ldc("encrypted"))
	before := keep.Instructions.Snapshot()
	s := newSession([]*bytecode.ClassUnit{class("a/B", keep, other)}, transform.WithExempter(ex))

	require.Equal(t, 1, transform.Run(s, New()))
	require.Equal(t, before, keep.Instructions.Snapshot())
	require.Equal(t, 7, other.Instructions.Len())
}

func TestCodeSizeLimit(t *testing.T) {
	insns := []bytecode.Instruction{&bytecode.Opaque{Op: op.Nop, Operands: make([]byte, 59949)}}
	var literals []*bytecode.LdcInsn
	for i := 0; i < 10; i++ {
		l := ldc("s")
		literals = append(literals, l)
		insns = append(insns, l)
	}
	m := method("run", insns...)
	require.Equal(t, 59980, m.CodeSize())
	s := newSession([]*bytecode.ClassUnit{class("a/B", m)})

	n := transform.Run(s, New())
	require.GreaterOrEqual(t, n, 2)
	require.Less(t, n, 10)
	for i, l := range literals {
		require.Equal(t, i >= n, m.Instructions.Contains(l), "literal %d", i)
	}
	require.LessOrEqual(t, m.CodeSize(), bytecode.MaxCodeSize)
}

func TestFormatMaximumIsNeverExceeded(t *testing.T) {
	for _, size := range []int{transform.MaxCodeSizeLimit, bytecode.MaxCodeSize} {
		literal := ldc("s")
		padding := &bytecode.Opaque{Op: op.Nop, Operands: make([]byte, size-4)}
		m := method("run", padding, literal)
		require.Equal(t, size, m.CodeSize())
		s := newSession([]*bytecode.ClassUnit{class("a/B", m)}, transform.WithMaxCodeSize(bytecode.MaxCodeSize))
		require.Equal(t, transform.MaxCodeSizeLimit, s.MaxCodeSize)

		n := transform.Run(s, New())
		require.LessOrEqual(t, m.CodeSize(), bytecode.MaxCodeSize, "size %d", size)
		if size == transform.MaxCodeSizeLimit {
			require.Equal(t, 1, n)
			require.Equal(t, bytecode.MaxCodeSize, m.CodeSize())
		} else {
			require.Zero(t, n)
			require.True(t, m.Instructions.Contains(literal))
		}
	}
}
