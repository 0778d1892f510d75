// Package logging constructs the process-wide logger.
package logging

import (
	"os"

	"github.com/hashicorp/go-hclog"
)

// Opts are optional logger arguments.
type Opts struct {
	Name     string
	LogLevel string
	JSON     bool
}

// New returns a configured hclog logger writing to stderr so log lines
// never interleave with backend build output or generated summaries on
// stdout. The level comes from Opts.LogLevel, then the VMSELECTOR_LOG
// environment variable, then "info".
func New(opts Opts) hclog.Logger {
	level := opts.LogLevel
	if level == "" {
		level = os.Getenv("VMSELECTOR_LOG")
	}
	if level == "" {
		level = "info"
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:       opts.Name,
		Level:      hclog.LevelFromString(level),
		Output:     os.Stderr,
		Color:      hclog.AutoColor,
		JSONFormat: opts.JSON,
	})
}
