package bytecode

import (
	"fmt"
	"slices"
)

// InsnList is the ordered, mutable instruction sequence of a method. It
// keeps a running total of the encoded sizes, so instructions must not be
// modified once they are in a list.
type InsnList struct {
	insns []Instruction
	size  int
	// hint is where the last lookup found its instruction. Rewrites move
	// forward through a method, so lookups start there.
	hint int
}

// NewInsnList returns a list holding the given instructions in order.
func NewInsnList(insns ...Instruction) *InsnList {
	l := &InsnList{insns: slices.Clone(insns)}
	l.size = sizeOf(insns)
	return l
}

func sizeOf(insns []Instruction) int {
	size := 0
	for _, insn := range insns {
		size += insn.Size()
	}
	return size
}

// Len returns the number of instructions, labels included.
func (l *InsnList) Len() int {
	if l == nil {
		return 0
	}
	return len(l.insns)
}

// At returns the instruction at the given index.
func (l *InsnList) At(index int) Instruction {
	return l.insns[index]
}

// Snapshot returns a copy of the current sequence. Later changes to the list
// do not affect the snapshot.
func (l *InsnList) Snapshot() []Instruction {
	if l == nil {
		return nil
	}
	return slices.Clone(l.insns)
}

// IndexOf returns the position of insn, or -1 if it is not in the list.
func (l *InsnList) IndexOf(insn Instruction) int {
	if l == nil {
		return -1
	}
	start := min(l.hint, len(l.insns))
	if i := slices.Index(l.insns[start:], insn); i >= 0 {
		l.hint = start + i
		return l.hint
	}
	if i := slices.Index(l.insns[:start], insn); i >= 0 {
		l.hint = i
		return i
	}
	return -1
}

// Contains returns true if insn is in the list.
func (l *InsnList) Contains(insn Instruction) bool {
	return l.IndexOf(insn) >= 0
}

// Add appends instructions to the end of the list.
func (l *InsnList) Add(insns ...Instruction) {
	l.insns = append(l.insns, insns...)
	l.size += sizeOf(insns)
}

// Set replaces old with replacement.
func (l *InsnList) Set(old, replacement Instruction) {
	l.insns[l.mustIndex(old)] = replacement
	l.size += replacement.Size() - old.Size()
}

// InsertAfter inserts instructions immediately after anchor, keeping their
// order.
func (l *InsnList) InsertAfter(anchor Instruction, insns ...Instruction) {
	l.insns = slices.Insert(l.insns, l.mustIndex(anchor)+1, insns...)
	l.size += sizeOf(insns)
}

// InsertBefore inserts instructions immediately before anchor, keeping their
// order.
func (l *InsnList) InsertBefore(anchor Instruction, insns ...Instruction) {
	l.insns = slices.Insert(l.insns, l.mustIndex(anchor), insns...)
	l.size += sizeOf(insns)
}

// Size returns the sum of the encoded sizes of the instructions.
func (l *InsnList) Size() int {
	if l == nil {
		return 0
	}
	return l.size
}

func (l *InsnList) mustIndex(insn Instruction) int {
	index := l.IndexOf(insn)
	if index < 0 {
		panic(fmt.Sprintf("bytecode: %s instruction is not in the list", insn.Opcode()))
	}
	return index
}
