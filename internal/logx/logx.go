// Package logx bootstraps the global zerolog logger.
package logx

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitFromEnv configures zerolog from the environment.
//   - LOG_LEVEL  : trace|debug|info|warn|error (default: info)
//   - LOG_FORMAT : json|console                (default: json)
func InitFromEnv() {
	Init(os.Stdout, getenv("LOG_LEVEL", "info"), getenv("LOG_FORMAT", "json"))
}

// Init configures the global logger with an explicit sink, which tests
// use to capture output.
func Init(w io.Writer, level, format string) {
	// UTC RFC3339 timestamps across all sinks.
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.TimestampFunc = func() time.Time { return time.Now().UTC() }

	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	if strings.EqualFold(format, "console") {
		w = zerolog.NewConsoleWriter(func(cw *zerolog.ConsoleWriter) {
			cw.Out = w
			cw.TimeFormat = time.RFC3339
		})
	}
	log.Logger = zerolog.New(w).With().Timestamp().Logger()
}

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && strings.TrimSpace(v) != "" {
		return v
	}
	return def
}
