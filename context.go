// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pdf

import "sync/atomic"

// A Context carries the process-wide state shared across commands and
// documents: the XObject name revision counter and the quiet/repair
// flags. It is passed explicitly rather than held in package globals.
//
// The engine is single-threaded and synchronous; Context's atomic
// counter exists only so that a Context may be safely reused across
// multiple Documents opened in sequence within one process, not to
// support concurrent access to one Document.
type Context struct {
	Logger     *Logger
	RepairMode bool

	revision uint64
}

// NewContext builds a Context with quiet and repair-mode flags set once
// at startup.
func NewContext(quiet, repair bool) *Context {
	return &Context{
		Logger:     NewLogger(quiet),
		RepairMode: repair,
	}
}

// nextRevision returns the next value of the process-wide XObject-name
// counter, used to keep "/xoN" names unique when content streams from
// distinct pages are concatenated. It wraps silently past 2^64, which
// for any real batch is unreachable.
func (c *Context) nextRevision() uint64 {
	return atomic.AddUint64(&c.revision, 1)
}
