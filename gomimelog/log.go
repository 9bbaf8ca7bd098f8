// Package gomimelog provides the structured-logging front door the rest
// of this module uses to report non-fatal parsing and conversion
// events, mirroring go-guerrilla's log.Logger/HookedLogger wrapper around
// logrus but scoped down to what a library (not a long-running daemon)
// needs: no log-file reopening or destination cache, just a
// logrus.FieldLogger with a couple of module-specific convenience
// methods.
package gomimelog

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is the type of options.Options.Logger, so callers can supply
// their own logrus.FieldLogger
// (pre-configured with their own hooks/formatter) instead of the
// package default.
type Logger interface {
	logrus.FieldLogger
}

// defaultLogger is used wherever a caller doesn't supply one explicitly.
var defaultLogger Logger = newDefault()

func newDefault() *logrus.Logger {
	l := logrus.New()
	l.Out = os.Stderr
	l.Level = logrus.WarnLevel
	return l
}

// Default returns the package-wide default Logger.
func Default() Logger { return defaultLogger }

// SetDefault replaces the package-wide default Logger, the hook point an
// embedding application uses to redirect this module's diagnostics into
// its own logging pipeline.
func SetDefault(l Logger) {
	if l != nil {
		defaultLogger = l
	}
}

// WarnOffset logs a parsing warning with its byte offset and code name
// as structured fields, the common shape mimeparser's warning path
// reports through in addition to invoking options.WarningFunc.
func WarnOffset(l Logger, offset int64, code string, item []byte) {
	if l == nil {
		l = defaultLogger
	}
	fields := logrus.Fields{"offset": offset, "code": code}
	if len(item) > 0 {
		fields["item"] = string(item)
	}
	l.WithFields(fields).Warn("mime parse warning")
}
