package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/hokaccha/go-prettyjson"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/deepnoodle-ai/radon/config"
)

var red = color.New(color.FgRed).SprintFunc()

func fatal(msg interface{}) {
	var s string
	switch msg := msg.(type) {
	case string:
		s = msg
	case error:
		s = msg.Error()
	default:
		s = fmt.Sprintf("%v", msg)
	}
	fmt.Fprintf(os.Stderr, "%s\n", red(s))
	os.Exit(1)
}

func isTerminalIO() bool {
	stdout := os.Stdout.Fd()
	return isatty.IsTerminal(stdout) || isatty.IsCygwinTerminal(stdout)
}

var outputFormatsCompletion = []string{"json", "text"}

// getOutput renders result as JSON, or with its String method for text.
func getOutput(result fmt.Stringer, format string) (string, error) {
	switch strings.ToLower(format) {
	case "", "text":
		return result.String(), nil
	case "json":
		output, err := getOutputJSON(result)
		if err != nil {
			return "", err
		}
		return string(output), nil
	default:
		return "", fmt.Errorf("unknown output format: %s", format)
	}
}

func getOutputJSON(result any) ([]byte, error) {
	if viper.GetBool("no-color") || !isTerminalIO() {
		return json.MarshalIndent(result, "", "  ")
	}
	return prettyjson.Marshal(result)
}

// Reads global flags from Viper and adjusts the environment accordingly.
func processGlobalFlags() error {
	if viper.GetBool("no-color") {
		color.NoColor = true
	}
	return nil
}

func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if viper.GetBool("verbose") {
		level = zerolog.DebugLevel
	}
	w := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen, NoColor: color.NoColor}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// loadConfig returns the file given with --config, or the defaults.
func loadConfig() (*config.Config, error) {
	if path := viper.GetString("config"); path != "" {
		return config.Load(path)
	}
	return config.Default(), nil
}
