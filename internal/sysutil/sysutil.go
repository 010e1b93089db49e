// Package sysutil holds process-level helpers shared by the entrypoint and
// the observability setup.
package sysutil

import (
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// ParseLogLevel maps a LOG_LEVEL value to a zerolog level. Matching ignores
// case and surrounding space, "warning" is accepted for warn, and anything
// unrecognized (including "") yields info.
func ParseLogLevel(lvl string) zerolog.Level {
	s := strings.ToLower(strings.TrimSpace(lvl))
	if s == "warning" {
		s = "warn"
	}
	l, err := zerolog.ParseLevel(s)
	if err != nil || l == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return l
}

// SetLogLevel applies ParseLogLevel(lvl) as the global zerolog level.
func SetLogLevel(lvl string) {
	zerolog.SetGlobalLevel(ParseLogLevel(lvl))
}

// IsTruthy reports whether a one-shot switch such as MIGRATE_ONLY is on.
// Anything strconv.ParseBool accepts as true counts, plus "yes", "y" and "on".
func IsTruthy(v string) bool {
	s := strings.ToLower(strings.TrimSpace(v))
	switch s {
	case "yes", "y", "on":
		return true
	}
	b, err := strconv.ParseBool(s)
	return err == nil && b
}

// FirstNonEmpty returns the first value that is not blank, trimmed, or "".
func FirstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
