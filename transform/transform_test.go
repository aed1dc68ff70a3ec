package transform

import (
	"bytes"
	"encoding/json"
	"math/rand"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/deepnoodle-ai/radon/bytecode"
	"github.com/deepnoodle-ai/radon/exclusion"
	"github.com/deepnoodle-ai/radon/op"
)

func nops(n int) []bytecode.Instruction {
	out := make([]bytecode.Instruction, n)
	for i := range out {
		out[i] = &bytecode.Insn{Op: op.Nop}
	}
	return out
}

func TestWalkVisitsSnapshot(t *testing.T) {
	m := bytecode.NewMethod(bytecode.AccStatic, "run", "()V", nops(3)...)
	s := NewSession(nil)

	visited := 0
	n, stopped := s.Walk(m, func(insn bytecode.Instruction) bool {
		visited++
		InsertAfter(m, insn, &bytecode.Insn{Op: op.Pop})
		return true
	})
	require.Equal(t, 3, visited)
	require.Equal(t, 3, n)
	require.False(t, stopped)
	require.Equal(t, 6, m.Instructions.Len())
}

func TestWalkStopsAtCodeSizeLimit(t *testing.T) {
	m := bytecode.NewMethod(bytecode.AccStatic, "run", "()V", nops(10)...)
	s := NewSession(nil, WithMaxCodeSize(14))

	// Each rewrite grows the method by 2 bytes: 10, 12, 14, 16 -> stop.
	n, stopped := s.Walk(m, func(insn bytecode.Instruction) bool {
		InsertAfter(m, insn, &bytecode.Insn{Op: op.Nop}, &bytecode.Insn{Op: op.Nop})
		return true
	})
	require.True(t, stopped)
	require.Equal(t, 3, n)
	require.Equal(t, 16, CodeSize(m))
}

func TestWalkCountsOnlyRewrites(t *testing.T) {
	m := bytecode.NewMethod(bytecode.AccStatic, "run", "()V",
		&bytecode.Insn{Op: op.Nop},
		&bytecode.Insn{Op: op.Pop},
		&bytecode.Insn{Op: op.Nop},
	)
	s := NewSession(nil)
	n, _ := s.Walk(m, func(insn bytecode.Instruction) bool {
		if insn.Opcode() != op.Pop {
			return false
		}
		Replace(m, insn, &bytecode.Insn{Op: op.Pop2})
		return true
	})
	require.Equal(t, 1, n)
	require.Equal(t, op.Pop2, m.Instructions.At(1).Opcode())
}

func TestMethodsRespectsExemptions(t *testing.T) {
	ex, err := exclusion.New(`Test:\.skip\(\)V$`)
	require.NoError(t, err)
	c := &bytecode.ClassUnit{
		Name: "a/B",
		Methods: []*bytecode.MethodUnit{
			bytecode.NewMethod(0, "keep", "()V", nops(1)...),
			bytecode.NewMethod(0, "skip", "()V", nops(1)...),
			bytecode.NewMethod(bytecode.AccAbstract, "empty", "()V"),
		},
	}
	s := NewSession([]*bytecode.ClassUnit{c}, WithExempter(ex))

	methods := s.Methods("Test", c)
	require.Len(t, methods, 1)
	require.Equal(t, "keep", methods[0].Name)
	require.Len(t, s.Methods("Other", c), 2)
}

func TestIsFinalField(t *testing.T) {
	units := []*bytecode.ClassUnit{
		{Name: "a/B", Fields: []*bytecode.FieldUnit{
			{Name: "x", Desc: "I", Access: bytecode.AccFinal | bytecode.AccStatic},
			{Name: "y", Desc: "I"},
		}},
		{Name: "c/D", Fields: []*bytecode.FieldUnit{
			{Name: "z", Desc: "J", Access: bytecode.AccFinal},
		}},
	}
	s := NewSession(units)
	require.True(t, s.IsFinalField("a/B", "x"))
	require.False(t, s.IsFinalField("a/B", "y"))
	require.True(t, s.IsFinalField("c/D", "z"))
	require.False(t, s.IsFinalField("c/D", "x"))
	require.False(t, s.IsFinalField("java/lang/System", "out"))
}

func TestIdentifiersIncludeMembers(t *testing.T) {
	units := []*bytecode.ClassUnit{{
		Name:    "a/B",
		Fields:  []*bytecode.FieldUnit{{Name: "count", Desc: "I"}},
		Methods: []*bytecode.MethodUnit{bytecode.NewMethod(0, "run", "()V")},
	}}
	s := NewSession(units)
	require.ElementsMatch(t, []string{"a/B", "count", "run"}, s.Identifiers())
}

func TestCoerce(t *testing.T) {
	call := &bytecode.Insn{Op: op.Nop}
	m := bytecode.NewMethod(0, "run", "()V", call)

	require.Nil(t, Coerce(m, call, bytecode.TypeOf("I")))
	require.Nil(t, Coerce(m, call, bytecode.TypeOf("Ljava/lang/String;")))

	cast := Coerce(m, call, bytecode.TypeOf("[[Ljava/lang/String;"))
	require.NotNil(t, cast)
	require.Equal(t, 1, m.Instructions.IndexOf(cast))
	require.Equal(t, "[[Ljava/lang/String;", cast.(*bytecode.TypeInsn).Desc)
}

type addClassPass struct{}

func (addClassPass) Name() string { return "Test" }

func (addClassPass) Transform(s *Session) int {
	s.AddClass(&bytecode.ClassUnit{Name: s.Namer.RandomClassName()})
	log := s.PassLogger("Test")
	log.Info().Msg("Did 1 thing.")
	return 1
}

func TestRunLogsAndCommits(t *testing.T) {
	var buf bytes.Buffer
	s := NewSession(
		[]*bytecode.ClassUnit{{Name: "a/B"}},
		WithLogger(zerolog.New(&buf)),
		WithRand(rand.New(rand.NewSource(1))),
	)
	require.Equal(t, 1, Run(s, addClassPass{}))
	require.Len(t, s.Units, 2)
	require.Empty(t, s.Pending())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	var messages []string
	for _, line := range lines {
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		require.Equal(t, s.ID.String(), entry["run"])
		require.Equal(t, "Test", entry["pass"])
		messages = append(messages, entry["message"].(string))
	}
	require.Equal(t, []string{"Started Test transformer", "Did 1 thing.", "Finished."}, messages)
	require.Contains(t, lines[2], `"elapsed"`)
}

func TestClassLookupIncludesPending(t *testing.T) {
	s := NewSession([]*bytecode.ClassUnit{{Name: "a/B"}})
	s.AddClass(&bytecode.ClassUnit{Name: "c/D"})
	require.NotNil(t, s.Class("a/B"))
	require.NotNil(t, s.Class("c/D"))
	require.Nil(t, s.Class("e/F"))
	require.Equal(t, []string{"a/B", "c/D"}, s.ClassNames())
}
