package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "radon",
		Short:         "Obfuscate JVM classes and trace leaked builds by watermark",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return processGlobalFlags()
		},
	}
	flags := root.PersistentFlags()
	flags.String("config", "", "Path to a YAML configuration file")
	flags.Bool("no-color", false, "Disable colored output")
	flags.BoolP("verbose", "v", false, "Log pass details")
	viper.BindPFlag("config", flags.Lookup("config"))
	viper.BindPFlag("no-color", flags.Lookup("no-color"))
	viper.BindPFlag("verbose", flags.Lookup("verbose"))

	root.AddCommand(
		newWatermarkCmd(),
		newConfigCmd(),
		newPreviewCmd(),
		newVersionCmd(),
	)
	return root
}

func main() {
	viper.SetEnvPrefix("radon")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	if os.Getenv("NO_COLOR") != "" {
		viper.SetDefault("no-color", true)
	}
	if err := newRootCmd().Execute(); err != nil {
		fatal(fmt.Sprintf("error: %s", err))
	}
}
