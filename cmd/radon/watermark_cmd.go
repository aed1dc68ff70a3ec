package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/deepnoodle-ai/radon/bytecode"
	"github.com/deepnoodle-ai/radon/classfile"
	"github.com/deepnoodle-ai/radon/watermark"
)

func newWatermarkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watermark",
		Short: "Embed and recover watermark IDs",
	}
	cmd.PersistentFlags().StringP("key", "k", "", "Watermark key (defaults to watermark.key of the configuration)")
	cmd.AddCommand(newScanCmd(), newEmbedCmd())
	return cmd
}

func newScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan <jar>",
		Short: "List the watermark IDs found in an archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := watermarkKey(cmd)
			if err != nil {
				return err
			}
			archive, err := watermark.OpenZip(args[0])
			if err != nil {
				return err
			}
			defer archive.Close()

			logger := newLogger()
			report := watermark.NewScanner(key, watermark.WithLogger(logger)).Scan(archive)
			if report.Skipped != nil {
				logger.Warn().Int("entries", len(report.Skipped.Errors)).Msg("Some entries could not be read")
			}
			format, _ := cmd.Flags().GetString("output")
			output, err := getOutput(newScanResult(report), format)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), output)
			return nil
		},
	}
	cmd.Flags().StringP("output", "o", "text", "Output format (json or text)")
	cmd.RegisterFlagCompletionFunc("output", cobra.FixedCompletions(outputFormatsCompletion, cobra.ShellCompDirectiveNoFileComp))
	return cmd
}

func newEmbedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "embed <output.class>",
		Short: "Write a class file carrying a watermark ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := watermarkKey(cmd)
			if err != nil {
				return err
			}
			id, _ := cmd.Flags().GetString("id")
			if id == "" {
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				id = cfg.Watermark.ID
			}
			if id == "" {
				return errors.New("no watermark id given")
			}
			name, _ := cmd.Flags().GetString("class")
			mark, err := watermark.Mark(id, key)
			if err != nil {
				return err
			}
			skeleton := &classfile.Skeleton{Name: name, Version: bytecode.Java8}
			if asSignature, _ := cmd.Flags().GetBool("signature"); asSignature {
				skeleton.Signature = mark
			} else {
				skeleton.Texts = []string{mark}
			}
			if err := os.WriteFile(args[0], skeleton.Bytes(), 0o644); err != nil {
				return err
			}
			log := newLogger()
			log.Info().Str("class", name).Str("file", args[0]).Msg("Embedded watermark.")
			return nil
		},
	}
	cmd.Flags().String("id", "", "Watermark ID (defaults to watermark.id of the configuration)")
	cmd.Flags().String("class", "META-INF/versions/Build", "Internal name of the written class")
	cmd.Flags().Bool("signature", false, "Store the watermark as the class signature")
	return cmd
}

func watermarkKey(cmd *cobra.Command) (string, error) {
	if key, _ := cmd.Flags().GetString("key"); key != "" {
		return key, nil
	}
	if key := viper.GetString("watermark-key"); key != "" {
		return key, nil
	}
	cfg, err := loadConfig()
	if err != nil {
		return "", err
	}
	if cfg.Watermark.Key == "" {
		return "", errors.New("no watermark key given")
	}
	return cfg.Watermark.Key, nil
}

type findingResult struct {
	Entry  string `json:"entry"`
	Source string `json:"source"`
	Index  int    `json:"index,omitempty"`
	ID     string `json:"id"`
}

type scanResult struct {
	Findings []findingResult `json:"findings"`
	Skipped  []string        `json:"skipped,omitempty"`
	text     []string
}

func newScanResult(report *watermark.Report) *scanResult {
	result := &scanResult{Findings: []findingResult{}}
	for _, f := range report.Findings {
		source := "constant_pool"
		if f.Source == watermark.ClassSignature {
			source = "class_signature"
		}
		result.Findings = append(result.Findings, findingResult{Entry: f.Entry, Source: source, Index: f.Index, ID: f.ID})
		result.text = append(result.text, f.String())
	}
	if report.Skipped != nil {
		for _, err := range report.Skipped.Errors {
			result.Skipped = append(result.Skipped, err.Error())
		}
	}
	return result
}

func (r *scanResult) String() string {
	if len(r.text) == 0 {
		return "no watermark found"
	}
	return strings.Join(r.text, "\n")
}
