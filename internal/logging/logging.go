package logging

import (
	"os"
	"regexp"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init initializes the global logger
func Init(level, format, environment string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	if format == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	}

	redactEnabled = environment != "development"
}

// Get returns the global logger
func Get() zerolog.Logger {
	return log.Logger
}

var (
	redactEnabled bool

	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	uuidPattern  = regexp.MustCompile(`[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`)
	tokenPattern = regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9\-_.]+|eyJ[A-Za-z0-9\-_]+\.[A-Za-z0-9\-_]+\.[A-Za-z0-9\-_]+`)
)

// Sanitize redacts emails, UUIDs and tokens from a string before it is
// logged. Redaction is disabled in development so local logs stay readable.
func Sanitize(s string) string {
	if !redactEnabled {
		return s
	}
	s = tokenPattern.ReplaceAllString(s, "[token]")
	s = emailPattern.ReplaceAllString(s, "[email]")
	s = uuidPattern.ReplaceAllString(s, "[id]")
	return s
}

// SetRedaction toggles redaction directly. Exported for tests.
func SetRedaction(on bool) {
	redactEnabled = on
}
