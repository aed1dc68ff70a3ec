// Package dis renders method bodies as a readable instruction listing.
package dis

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/deepnoodle-ai/radon/bytecode"
)

var (
	opcodeColor = color.New(color.FgCyan).SprintFunc()
	labelColor  = color.New(color.FgYellow).SprintFunc()
)

// Instruction is one row of a listing.
type Instruction struct {
	Offset   int
	Opcode   string
	Operands []string
	// Label is set for label rows, which take no space in the code array.
	Label string
}

// Disassemble lists the instructions of a method body. Offsets assume the
// encoding sizes reported by each instruction.
func Disassemble(insns *bytecode.InsnList) []Instruction {
	labels := map[*bytecode.Label]string{}
	name := func(l *bytecode.Label) string {
		if n, ok := labels[l]; ok {
			return n
		}
		n := "L" + strconv.Itoa(len(labels))
		labels[l] = n
		return n
	}
	var result []Instruction
	offset := 0
	for _, insn := range insns.Snapshot() {
		row := Instruction{Offset: offset, Opcode: insn.Opcode().String()}
		switch insn := insn.(type) {
		case *bytecode.Label:
			row = Instruction{Offset: offset, Label: name(insn)}
		case *bytecode.IntInsn:
			row.Operands = []string{strconv.Itoa(insn.Operand)}
		case *bytecode.VarInsn:
			row.Operands = []string{strconv.Itoa(insn.Var)}
		case *bytecode.TypeInsn:
			row.Operands = []string{insn.Desc}
		case *bytecode.FieldInsn:
			row.Operands = []string{insn.Owner + "." + insn.Name, insn.Desc}
		case *bytecode.MethodInsn:
			row.Operands = []string{insn.Owner + "." + insn.Name, insn.Desc}
		case *bytecode.InvokeDynamicInsn:
			row.Operands = []string{insn.Name, insn.Desc, insn.Bootstrap.String()}
			for _, arg := range insn.Args {
				row.Operands = append(row.Operands, constant(arg))
			}
		case *bytecode.JumpInsn:
			row.Operands = []string{name(insn.Target)}
		case *bytecode.LdcInsn:
			row.Operands = []string{constant(insn.Value)}
		case *bytecode.IincInsn:
			row.Operands = []string{strconv.Itoa(insn.Var), strconv.Itoa(insn.Incr)}
		case *bytecode.Opaque:
			if len(insn.Operands) > 0 {
				row.Operands = []string{fmt.Sprintf("% x", insn.Operands)}
			}
		}
		result = append(result, row)
		offset += insn.Size()
	}
	return result
}

func constant(v any) string {
	switch v := v.(type) {
	case string:
		return strconv.Quote(v)
	case bytecode.Type:
		return v.Descriptor() + ".class"
	default:
		return fmt.Sprint(v)
	}
}

// Print writes a listing as aligned columns.
func Print(instructions []Instruction, writer io.Writer) error {
	w := tabwriter.NewWriter(writer, 0, 0, 2, ' ', 0)
	for _, insn := range instructions {
		if insn.Label != "" {
			fmt.Fprintf(w, "%s:\t\t\n", labelColor(insn.Label))
			continue
		}
		fmt.Fprintf(w, "%6d\t%s\t%s\n", insn.Offset, opcodeColor(insn.Opcode), strings.Join(insn.Operands, " "))
	}
	return w.Flush()
}
