// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pdf

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies an error against the taxonomy: I/O and Format errors are
// always Fatal, Soft format errors are Recoverable, Unsupported-encryption
// errors are Fatal only on encrypted documents, and Crypto failures are
// Fatal once propagated past authentication.
type Kind int

const (
	// KindFatal aborts the whole operation: missing startxref, unreadable
	// trailer, zero-page save, unsupported encryption on an encrypted file.
	KindFatal Kind = iota
	// KindRecoverable substitutes null and continues: dangling reference,
	// missing endobj/endstream, malformed xref row.
	KindRecoverable
	// KindCommand is a failure in the editor collaborator: unknown
	// command, bad argument type, unknown paper or font name.
	KindCommand
	// KindCrypto is an authentication failure: wrong password, unsupported
	// revision.
	KindCrypto
)

func (k Kind) String() string {
	switch k {
	case KindFatal:
		return "fatal"
	case KindRecoverable:
		return "recoverable"
	case KindCommand:
		return "command"
	case KindCrypto:
		return "crypto"
	default:
		return "unknown"
	}
}

// Error wraps an underlying cause with the Kind it belongs to and the
// operation during which it happened, so a caller one layer removed from
// the parser can still tell whether to abort or to log and continue.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("pdf: %s: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Fatalf builds a KindFatal error, prefixing err's message with op via
// pkg/errors.WithMessage (no stack trace is recorded).
func Fatalf(op string, err error) error {
	return &Error{Kind: KindFatal, Op: op, Err: errors.WithMessage(err, op)}
}

// Recoverablef builds a KindRecoverable error. Callers log it through a
// *Logger and substitute a null object, they never propagate it as a failure.
func Recoverablef(op string, err error) error {
	return &Error{Kind: KindRecoverable, Op: op, Err: errors.WithMessage(err, op)}
}

// Commandf builds a KindCommand error for the editor collaborator.
func Commandf(op string, format string, args ...interface{}) error {
	return &Error{Kind: KindCommand, Op: op, Err: fmt.Errorf(format, args...)}
}

// Cryptof builds a KindCrypto error.
func Cryptof(op string, err error) error {
	return &Error{Kind: KindCrypto, Op: op, Err: err}
}

// IsFatal reports whether err (or anything it wraps) is a KindFatal Error.
func IsFatal(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindFatal
}

// Sentinel causes used throughout the core, one per failure class.
var (
	ErrNoStartxref        = errors.New("missing startxref")
	ErrTrailerNotDict     = errors.New("trailer is not a dictionary")
	ErrZeroPages          = errors.New("document has zero pages")
	ErrUnsupportedCrypto  = errors.New("unsupported security handler (AES or revision >= 4)")
	ErrWrongPassword      = errors.New("wrong password")
	ErrUnsupportedVersion = errors.New("unsupported PDF version")
)
