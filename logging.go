// SPDX-License-Identifier: MIT
// Source: github.com/woozymasta/msixread

package msixread

import (
	"sync/atomic"

	"github.com/rs/zerolog"
)

// pkgLogger holds the package-wide logger behind an atomic pointer so
// SetLogger can be called concurrently with in-flight operations.
var pkgLogger atomic.Pointer[zerolog.Logger]

func init() {
	nop := zerolog.Nop()
	pkgLogger.Store(&nop)
}

// SetLogger installs l as the package-wide logger used for lifecycle
// events (package open, unpack start/finish, unpack failures).
// This package never logs on its hot read path; logging here is
// purely operational visibility, never control flow — the typed
// *Error values returned by every operation are the real error
// context. The default logger discards everything.
func SetLogger(l zerolog.Logger) {
	pkgLogger.Store(&l)
}

// logger returns the currently installed package logger.
func logger() *zerolog.Logger {
	return pkgLogger.Load()
}
