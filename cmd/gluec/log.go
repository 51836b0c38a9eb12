package main

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// debugLogger builds the compiler's debug sink. Without streams it
// discards everything; with any stream named it writes console-formatted
// debug lines to stderr, tagged with the selection.
func debugLogger(streams string) zerolog.Logger {
	streams = strings.TrimSpace(streams)
	if streams == "" {
		return zerolog.Nop()
	}
	out := zerolog.ConsoleWriter{Out: os.Stderr}
	return zerolog.New(out).Level(zerolog.DebugLevel).
		With().Timestamp().Str("streams", streams).Logger()
}
