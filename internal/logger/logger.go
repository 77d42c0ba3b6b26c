// Package logger sets up the default logger of the command line tools.
package logger

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// New gets a logger writing to w with timestamps, at debug level when
// verbose.
func New(w io.Writer, verbose bool) *log.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Level:           level,
	})
}

// Setup installs a stderr logger as the package-level default.
func Setup(verbose bool) {
	log.SetDefault(New(os.Stderr, verbose))
}
