package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deepnoodle-ai/radon/names"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			data, err := cfg.Marshal()
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), string(data))
			if list, _ := cmd.Flags().GetBool("dictionaries"); list {
				fmt.Fprintf(cmd.OutOrStdout(), "# built-in dictionaries: %v\n", names.Dictionaries())
			}
			return nil
		},
	}
	cmd.Flags().Bool("dictionaries", false, "Also list the built-in dictionaries")
	return cmd
}
