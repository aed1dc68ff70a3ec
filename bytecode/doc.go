// Package bytecode provides the in-memory model of compiled JVM classes that
// the rewriting passes operate on.
//
// # Key Types
//
//   - [ClassUnit]: A compiled class with its version, fields and methods
//   - [FieldUnit]: A field declaration (name, descriptor, access flags)
//   - [MethodUnit]: A method declaration with a mutable [InsnList]
//   - [Instruction]: A closed set of instruction variants
//   - [Type]: A parsed type descriptor
//
// # Instructions
//
// Instructions are pointers and are compared by identity. A method body is an
// ordered [InsnList]; rewriting code takes a snapshot of the list and then
// replaces or inserts around instructions of the snapshot in the live list:
//
//	for _, insn := range method.Instructions.Snapshot() {
//	    if f, ok := insn.(*FieldInsn); ok {
//	        method.Instructions.Set(f, replacement)
//	    }
//	}
//
// The package never assigns constant pool indexes and never encodes branch
// offsets. [Instruction.Size] reports the largest encoded length an
// instruction can take, which is what code size checks need.
//
// # Strings
//
// JVM strings are sequences of UTF-16 code units. [Chars] and [FromChars]
// convert between Go strings and code units without losing unpaired
// surrogates, and [HashCode] computes the value of java.lang.String#hashCode.
package bytecode
