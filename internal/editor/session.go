// Copyright 2014 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package editor

import (
	"fmt"
	"io"

	"github.com/ksharindam/pdfcook"
	"github.com/ksharindam/pdfcook/internal/paper"
)

// A Session carries everything a running command program needs besides
// the document itself: where "info" writes its report, the pdf.Context
// used to open files "read" merges in, and the paper-size table "spaper"
// extends at runtime. One Session is built per CLI invocation; the CLI
// merges every input file named on the command line into one document
// and runs the command program against it once.
type Session struct {
	Stdout io.Writer
	Ctx    *pdf.Context
	Papers *paper.Table
}

// NewSession builds a Session with the standard paper table preloaded.
func NewSession(ctx *pdf.Context, stdout io.Writer) *Session {
	return &Session{Stdout: stdout, Ctx: ctx, Papers: paper.NewTable()}
}

// Run parses src as a command program and executes it against d in two
// passes: every command is first looked up and its arguments bound
// against its declared parameters (no mutation), and only if every
// command in the program validates does the second pass run them in
// order against the live document. An unknown command or a missing or
// mistyped argument therefore stops the batch before any change; value
// checks made by the commands themselves (an unknown paper name, an
// unsupported rotation angle) fail in the second pass, after the
// earlier commands have already run.
func (s *Session) Run(src string, d *pdf.Document) error {
	cmds, err := newParser(src).parseProgram()
	if err != nil {
		return fmt.Errorf("parse error: %w", err)
	}

	bound := make([][]bound, len(cmds))
	defs := make([]*cmdDef, len(cmds))
	for i, cmd := range cmds {
		def, ok := commandTable[cmd.name]
		if !ok {
			return fmt.Errorf("command %q: unknown command", cmd.name)
		}
		b, err := bindArgs(cmd.name, def.params, cmd.args)
		if err != nil {
			return err
		}
		defs[i] = def
		bound[i] = b
	}

	for i, cmd := range cmds {
		if err := defs[i].exec(s, d, bound[i], cmd); err != nil {
			return fmt.Errorf("command %q: %w", cmd.name, err)
		}
	}
	return nil
}
