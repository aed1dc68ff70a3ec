package strenc

import (
	"math/bits"

	"github.com/deepnoodle-ai/radon/bytecode"
)

// Keys holds the five key components of an encrypted literal.
type Keys struct {
	// Decryptor is the hash of the decryptor class name.
	Decryptor int32
	// Clinit is the hash of "<clinit>".
	Clinit int32
	// Class is the hash of the name of the class holding the literal.
	Class int32
	// Method is the hash of the name of the method holding the literal.
	Method int32
	// Random is carried next to the payload at the call site.
	Random int32
}

// ContextKeys derives the keys that the decryptor can rebuild from its own
// name and the caller's stack frame. Names are binary names with dots.
func ContextKeys(decryptor, class, method string, random int32) Keys {
	return Keys{
		Decryptor: bytecode.HashCode(decryptor),
		Clinit:    bytecode.HashCode("<clinit>"),
		Class:     bytecode.HashCode(class),
		Method:    bytecode.HashCode(method),
		Random:    random,
	}
}

func (k Keys) at(i int) uint16 {
	switch i % 4 {
	case 0:
		return uint16(k.Decryptor)
	case 1:
		return uint16(k.Clinit)
	case 2:
		return uint16(k.Class)
	default:
		return uint16(k.Method)
	}
}

func (k Keys) rotation(i int) int {
	return int((k.Random + int32(i)) & 15)
}

func (k Keys) mix() uint16 {
	return uint16(k.Random ^ int32(uint32(k.Random)>>16))
}

// Encrypt encrypts every UTF-16 unit of plaintext: it is XORed with one of
// the four context keys, rotated left by a position dependent amount and
// XORed with a mask derived from the random key.
func Encrypt(plaintext string, k Keys) string {
	units := bytecode.Chars(plaintext)
	mix := k.mix()
	for i, c := range units {
		units[i] = bits.RotateLeft16(c^k.at(i), k.rotation(i)) ^ mix
	}
	return bytecode.FromChars(units)
}

// Decrypt reverses Encrypt.
func Decrypt(payload string, k Keys) string {
	units := bytecode.Chars(payload)
	mix := k.mix()
	for i, c := range units {
		units[i] = bits.RotateLeft16(c^mix, -k.rotation(i)) ^ k.at(i)
	}
	return bytecode.FromChars(units)
}
