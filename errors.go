// SPDX-License-Identifier: MIT
// Source: github.com/woozymasta/msixread

package msixread

import (
	"errors"
	"fmt"
)

// Kind identifies the design-level category of an Error.
type Kind int

// Error kinds, one per failure category named by the core specification.
const (
	KindUnexpected Kind = iota
	KindFileOpen
	KindFileRead
	KindFileSeek
	KindFileWrite
	KindFileNotFound
	KindZipMalformed
	KindUnsupportedCompression
	KindInflateCorrupt
	KindBlockMapSemanticError
	KindBlockHashMismatch
	KindInvalidParameter
	KindNotImplemented
)

// String renders the kind name used in error messages.
func (k Kind) String() string {
	switch k {
	case KindFileOpen:
		return "FileOpen"
	case KindFileRead:
		return "FileRead"
	case KindFileSeek:
		return "FileSeek"
	case KindFileWrite:
		return "FileWrite"
	case KindFileNotFound:
		return "FileNotFound"
	case KindZipMalformed:
		return "ZipMalformed"
	case KindUnsupportedCompression:
		return "UnsupportedCompression"
	case KindInflateCorrupt:
		return "InflateCorrupt"
	case KindBlockMapSemanticError:
		return "BlockMapSemanticError"
	case KindBlockHashMismatch:
		return "BlockHashMismatch"
	case KindInvalidParameter:
		return "InvalidParameter"
	case KindNotImplemented:
		return "NotImplemented"
	default:
		return "Unexpected"
	}
}

// Error is the single error type returned by every operation in this
// package. It carries a Kind (for errors.Is against the sentinels below)
// plus a short human message. Causes are not chained at this layer, per
// the core specification's error handling design.
type Error struct {
	Kind    Kind
	Message string
}

// Error implements error.
func (e *Error) Error() string {
	return fmt.Sprintf("msixread: %s: %s", e.Kind, e.Message)
}

// Is reports whether target is the sentinel for e's Kind, so callers can
// write errors.Is(err, msixread.ErrBlockHashMismatch).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// newErr builds an *Error with a formatted message.
func newErr(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Sentinel errors, one per Kind, for use with errors.Is. Comparing an
// operational error against these only checks Kind; Message may differ.
var (
	ErrUnexpected             = &Error{Kind: KindUnexpected, Message: "unexpected error"}
	ErrFileOpen               = &Error{Kind: KindFileOpen, Message: "file open failed"}
	ErrFileRead               = &Error{Kind: KindFileRead, Message: "file read failed"}
	ErrFileSeek               = &Error{Kind: KindFileSeek, Message: "file seek failed"}
	ErrFileWrite              = &Error{Kind: KindFileWrite, Message: "file write failed"}
	ErrFileNotFound           = &Error{Kind: KindFileNotFound, Message: "file not found"}
	ErrZipMalformed           = &Error{Kind: KindZipMalformed, Message: "zip container malformed"}
	ErrUnsupportedCompression = &Error{Kind: KindUnsupportedCompression, Message: "unsupported compression method"}
	ErrInflateCorrupt         = &Error{Kind: KindInflateCorrupt, Message: "inflate stream corrupt"}
	ErrBlockMapSemanticError  = &Error{Kind: KindBlockMapSemanticError, Message: "block map semantic error"}
	ErrBlockHashMismatch      = &Error{Kind: KindBlockHashMismatch, Message: "block hash mismatch"}
	ErrInvalidParameter       = &Error{Kind: KindInvalidParameter, Message: "invalid parameter"}
	ErrNotImplemented         = &Error{Kind: KindNotImplemented, Message: "not implemented"}
)

// IsKind reports whether err is a *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}
