package radon

import (
	"math/rand"

	"github.com/rs/zerolog"

	"github.com/deepnoodle-ai/radon/config"
	"github.com/deepnoodle-ai/radon/transform"
)

// Option describes a function used to configure an obfuscation run.
type Option func(*options)

type options struct {
	config   *config.Config
	logger   zerolog.Logger
	exempter transform.Exempter
	namer    transform.Namer
	rand     *rand.Rand
}

func collectOptions(opts ...Option) *options {
	o := &options{config: config.Default(), logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithConfig sets the configuration of the run.
func WithConfig(cfg *config.Config) Option {
	return func(o *options) {
		o.config = cfg
	}
}

// WithLogger sets the logger that records the progress of each pass.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithExempter replaces the exemptions compiled from the configuration.
func WithExempter(e transform.Exempter) Option {
	return func(o *options) {
		o.exempter = e
	}
}

// WithNamer replaces the name generator built from the configured
// dictionary.
func WithNamer(n transform.Namer) Option {
	return func(o *options) {
		o.namer = n
	}
}

// WithRand sets the random source. It takes precedence over the configured
// seed.
func WithRand(r *rand.Rand) Option {
	return func(o *options) {
		o.rand = r
	}
}
