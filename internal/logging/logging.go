// Package logging builds the console logger shared by the command and the
// analyzers.
package logging

import (
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mabhi256/migration-analyzer/utils"
)

// New returns a console logger writing to w at level. Unknown or empty
// levels fall back to info. Colors are used only when w is a terminal.
func New(level string, w io.Writer) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	writer := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
		NoColor:    !utils.IsTerminal(w),
	}
	return zerolog.New(writer).Level(lvl).With().Timestamp().Logger()
}
