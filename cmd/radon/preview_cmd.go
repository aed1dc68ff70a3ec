package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/deepnoodle-ai/radon"
	"github.com/deepnoodle-ai/radon/bytecode"
	"github.com/deepnoodle-ai/radon/dis"
	"github.com/deepnoodle-ai/radon/op"
)

var heading = color.New(color.Bold).SprintFunc()

// previewUnits returns a small class exercising every rewritten construct.
func previewUnits() []*bytecode.ClassUnit {
	body := bytecode.NewBuilder().
		Field(op.Getstatic, "java/lang/System", "out", "Ljava/io/PrintStream;").
		Ldc("Hello, %%__USER__%%!").
		Invoke(op.Invokevirtual, "java/io/PrintStream", "println", "(Ljava/lang/String;)V").
		Field(op.Getstatic, "demo/Main", "greetings", "[Ljava/lang/String;").
		Op(op.Pop).
		Ldc("done").
		Op(op.Pop).
		Op(op.Return).
		List()
	return []*bytecode.ClassUnit{{
		Name:      "demo/Main",
		Version:   bytecode.Java8,
		Access:    bytecode.AccPublic | bytecode.AccSuper,
		SuperName: "java/lang/Object",
		Fields:    []*bytecode.FieldUnit{{Name: "greetings", Desc: "[Ljava/lang/String;", Access: bytecode.AccStatic}},
		Methods: []*bytecode.MethodUnit{
			bytecode.NewMethod(bytecode.AccPublic|bytecode.AccStatic, "main", "([Ljava/lang/String;)V", body.Snapshot()...),
		},
	}}
}

func newPreviewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "preview",
		Short: "Run the configured passes on a sample class and show the result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			units := previewUnits()
			out := cmd.OutOrStdout()
			if err := printMethod(out, "before", units[0], units[0].Methods[0]); err != nil {
				return err
			}
			result, err := radon.Run(units, radon.WithConfig(cfg), radon.WithLogger(newLogger()))
			if err != nil {
				return err
			}
			for _, p := range result.Passes {
				fmt.Fprintf(out, "%s: %d\n", p.Name, p.Count)
			}
			class := result.Units[0]
			if err := printMethod(out, "after", class, class.Method("main", "([Ljava/lang/String;)V")); err != nil {
				return err
			}
			for _, c := range result.Units[1:] {
				fmt.Fprintf(out, "\n%s %s\n", heading("synthesized"), c.Name)
			}
			return nil
		},
	}
}

func printMethod(w io.Writer, title string, c *bytecode.ClassUnit, m *bytecode.MethodUnit) error {
	fmt.Fprintf(w, "\n%s %s.%s%s\n", heading(title), c.Name, m.Name, m.Desc)
	return dis.Print(dis.Disassemble(m.Instructions), w)
}
