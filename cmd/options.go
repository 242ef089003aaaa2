// Copyright © 2024 The ELPS authors

package cmd

import (
	"github.com/coimbrox/progress-4gl-formatter/formatter"
	"go.opentelemetry.io/otel/trace"
)

// Option configures an exported command factory (LSPCommand).
type Option func(*cmdConfig)

type cmdConfig struct {
	formatter      *formatter.Formatter
	tracerProvider trace.TracerProvider
}

// WithFormatter injects the formatter used by the command instead of one
// built from the configuration file, environment and flags.
func WithFormatter(f *formatter.Formatter) Option {
	return func(c *cmdConfig) { c.formatter = f }
}

// WithTracerProvider sets the provider of the spans the language server
// opens around formatting requests. The global provider is used otherwise.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *cmdConfig) { c.tracerProvider = tp }
}

func newCmdConfig(opts ...Option) *cmdConfig {
	var cfg cmdConfig
	for _, o := range opts {
		o(&cfg)
	}
	return &cfg
}

// resolveFormatter returns the injected formatter, or one built from the
// effective configuration.
func (c *cmdConfig) resolveFormatter() (*formatter.Formatter, error) {
	if c.formatter != nil {
		return c.formatter, nil
	}
	return newFormatter()
}
