package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/pterm/pterm"
)

var logLevels = map[string]pterm.LogLevel{
	"trace":    pterm.LogLevelTrace,
	"debug":    pterm.LogLevelDebug,
	"info":     pterm.LogLevelInfo,
	"warn":     pterm.LogLevelWarn,
	"error":    pterm.LogLevelError,
	"disabled": pterm.LogLevelDisabled,
}

// NewLogger returns a structured logger writing to w. Logs go to stderr in
// the CLI so stdout only carries the report itself.
func NewLogger(level string, w io.Writer) (*pterm.Logger, error) {
	lvl, ok := logLevels[strings.ToLower(level)]
	if !ok {
		return nil, fmt.Errorf("invalid log level: %s", level)
	}
	if lvl == pterm.LogLevelDisabled {
		w = io.Discard
	}
	return pterm.DefaultLogger.WithLevel(lvl).WithWriter(w), nil
}
