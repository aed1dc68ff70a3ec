package radon

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/deepnoodle-ai/radon/bytecode"
	"github.com/deepnoodle-ai/radon/config"
	"github.com/deepnoodle-ai/radon/op"
	"github.com/deepnoodle-ai/radon/transform/indy"
	"github.com/deepnoodle-ai/radon/transform/strenc"
)

func sampleUnits() []*bytecode.ClassUnit {
	body := bytecode.NewBuilder().
		Field(op.Getstatic, "a/Main", "count", "I").
		Op(op.Pop).
		Ldc("secret").
		Op(op.Pop).
		Op(op.Return).
		List()
	main := &bytecode.ClassUnit{
		Name:      "a/Main",
		Version:   bytecode.Java8,
		SuperName: "java/lang/Object",
		Fields:    []*bytecode.FieldUnit{{Name: "count", Desc: "I", Access: bytecode.AccStatic}},
		Methods: []*bytecode.MethodUnit{{
			Name:         "run",
			Desc:         "()V",
			Access:       bytecode.AccPublic | bytecode.AccStatic,
			Instructions: body,
		}},
	}
	return []*bytecode.ClassUnit{main}
}

func literals(units []*bytecode.ClassUnit, value string) int {
	n := 0
	for _, c := range units {
		for _, m := range c.Methods {
			for _, insn := range m.Instructions.Snapshot() {
				if ldc, ok := insn.(*bytecode.LdcInsn); ok && ldc.Value == value {
					n++
				}
			}
		}
	}
	return n
}

func TestPassNamesMatchConfig(t *testing.T) {
	require.Equal(t, config.InvokeDynamic, indy.Name)
	require.Equal(t, config.StringEncryption, strenc.Name)
}

func TestRunAllPasses(t *testing.T) {
	result, err := Run(sampleUnits(), WithRand(rand.New(rand.NewSource(3))))
	require.NoError(t, err)
	require.Len(t, result.Passes, 2)
	require.Equal(t, "InvokeDynamic", result.Passes[0].Name)
	require.Equal(t, 1, result.Count("InvokeDynamic"))
	require.Equal(t, 1, result.Count("StringEncryption"))
	require.Len(t, result.Units, 2)
	require.Zero(t, literals(result.Units, "secret"))

	run := result.Units[0].Method("run", "()V")
	first := run.Instructions.At(0)
	require.IsType(t, &bytecode.InvokeDynamicInsn{}, first)
}

func TestRunSelectedPass(t *testing.T) {
	cfg := config.Default()
	cfg.Passes = []string{config.StringEncryption}
	result, err := Run(sampleUnits(), WithConfig(cfg), WithRand(rand.New(rand.NewSource(3))))
	require.NoError(t, err)
	require.Equal(t, []PassResult{{Name: "StringEncryption", Count: 1}}, result.Passes)
	require.Zero(t, result.Count("InvokeDynamic"))
	run := result.Units[0].Method("run", "()V")
	require.IsType(t, &bytecode.FieldInsn{}, run.Instructions.At(0))
}

func TestRunHonorsExemptions(t *testing.T) {
	cfg := config.Default()
	cfg.Exemptions = []string{"^a/Main$"}
	result, err := Run(sampleUnits(), WithConfig(cfg))
	require.NoError(t, err)
	require.Equal(t, 0, result.Count("InvokeDynamic"))
	require.Equal(t, 0, result.Count("StringEncryption"))
	require.Len(t, result.Units, 1)
	require.Equal(t, 1, literals(result.Units, "secret"))
}

func TestRunIsReproducibleWithSeed(t *testing.T) {
	cfg := config.Default()
	cfg.Seed = 42
	first, err := Run(sampleUnits(), WithConfig(cfg))
	require.NoError(t, err)
	second, err := Run(sampleUnits(), WithConfig(cfg))
	require.NoError(t, err)
	require.Equal(t, first.Units[len(first.Units)-1].Name, second.Units[len(second.Units)-1].Name)
	require.NotEqual(t, first.RunID, second.RunID)
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Passes = []string{"Renamer"}
	_, err := Run(sampleUnits(), WithConfig(cfg))
	require.ErrorContains(t, err, `unknown pass "Renamer"`)
}

func TestGeneratedNamesAvoidExistingMembers(t *testing.T) {
	cfg := config.Default()
	cfg.Dictionary = "ab"
	cfg.NameLength = 1
	units := sampleUnits()
	units[0].Methods = append(units[0].Methods, bytecode.NewMethod(bytecode.AccStatic, "a", "()V", &bytecode.Insn{Op: op.Return}))

	result, err := Run(units, WithConfig(cfg), WithRand(rand.New(rand.NewSource(5))))
	require.NoError(t, err)
	require.Equal(t, 1, result.Count("InvokeDynamic"))

	seen := map[string]bool{}
	for _, m := range result.Units[0].Methods {
		require.False(t, seen[m.Name], "method name %q generated twice", m.Name)
		seen[m.Name] = true
	}
	for _, c := range result.Units[1:] {
		require.NotEqual(t, "a", c.Name)
		require.NotEqual(t, "run", c.Name)
	}
}
