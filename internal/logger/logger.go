// Package logger configures the global zerolog logger once at startup.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init sets the global log level and output format. With json=false the
// output is the human console writer; with json=true it is one JSON object
// per line, suited for collection. Unknown levels fall back to info.
func Init(level string, json bool) {
	lvl := zerolog.InfoLevel
	if l, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level))); err == nil && level != "" {
		lvl = l
	}
	zerolog.SetGlobalLevel(lvl)

	var w io.Writer = os.Stderr
	if !json {
		w = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	}

	log.Logger = zerolog.New(w).With().Timestamp().Logger()
}
