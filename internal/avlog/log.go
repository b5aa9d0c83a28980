// Package avlog provides the package-wide logging seam. The engine never
// writes to stdout directly; every stage logs through a Logger so a host
// application can redirect, buffer, or silence it.
package avlog

import (
	"io"
	"log"
)

// Logger is the minimal surface the engine needs. *log.Logger satisfies it.
type Logger interface {
	Printf(format string, v ...any)
}

var pkgLogger Logger = log.Default()

// SetLogger redirects all engine logging to logger. Passing nil restores
// the standard library default logger.
func SetLogger(logger Logger) {
	if logger == nil {
		pkgLogger = log.Default()
		return
	}
	pkgLogger = logger
}

// New builds a *log.Logger writing to w with the given flags, mirroring
// the debug-log + stdout fan-out a host CLI typically wants.
func New(w io.Writer, flags int) *log.Logger {
	return log.New(w, "", flags)
}

// Warnf logs a recoverable, soft condition (§7 kinds 3, 6, 7, 9).
func Warnf(format string, v ...any) {
	pkgLogger.Printf("WARN: "+format, v...)
}

// Errorf logs a terminal-for-the-thread condition (§7 kind 5).
func Errorf(format string, v ...any) {
	pkgLogger.Printf("ERROR: "+format, v...)
}
