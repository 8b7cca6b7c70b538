package internal

import (
	"io"

	"github.com/starford/codeboost/internal/site"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config    *Config
	build     site.BuildOptions
	logOutput io.Writer
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithBuildOptions sets the options of the build command.
func WithBuildOptions(opts site.BuildOptions) Option {
	return func(a *application) {
		a.build = opts
	}
}

// WithLogOutput redirects the JSON log stream. The MCP command logs to
// stderr because stdout carries the protocol.
func WithLogOutput(w io.Writer) Option {
	return func(a *application) {
		a.logOutput = w
	}
}
