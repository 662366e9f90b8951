// Copyright 2014 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package editor

import (
	"fmt"

	"github.com/ksharindam/pdfcook/internal/paper"
)

func unitValue(name string) (float64, bool) { return paper.UnitValue(name) }

type argKind int

const (
	argInt argKind = iota
	argReal
	argMeasure
	argIdent
	argString
)

// argValue is one parsed (possibly named) argument, still in source
// form — not yet checked against a command's parameter list.
type argValue struct {
	paramName string // set when written as "name = value"; "" for positional
	kind      argKind
	i         int64
	f         float64
	s         string
}

// command is one parsed command invocation: its name, source position,
// argument list and page-range set.
type command struct {
	name      string
	line, col int
	args      []argValue
	pages     pageSet
}

// parser turns lexer tokens into a command list.
type parser struct {
	lex     *lexer
	tok     token
	primed  bool
}

func newParser(src string) *parser {
	return &parser{lex: newLexer(src)}
}

func (p *parser) advance() token {
	if p.primed {
		p.primed = false
		return p.tok
	}
	return p.lex.next()
}

func (p *parser) peek() token {
	if !p.primed {
		p.tok = p.lex.next()
		p.primed = true
	}
	return p.tok
}

// parseProgram parses every command up to EOF.
func (p *parser) parseProgram() ([]*command, error) {
	var cmds []*command
	for p.peek().kind == tIdent {
		tok := p.advance()
		cmd := &command{name: tok.str, line: tok.line, col: tok.col, pages: pageSet{ranges: []pageRange{allPages}}}
		if err := p.parseArgs(cmd); err != nil {
			return nil, err
		}
		if err := p.parsePageRanges(cmd); err != nil {
			return nil, err
		}
		cmds = append(cmds, cmd)
	}
	if p.peek().kind != tEOF {
		t := p.peek()
		return nil, fmt.Errorf("syntax error at line %d column %d", t.line, t.col)
	}
	return cmds, nil
}

// parseArgs consumes an optional "(...)" argument list.
func (p *parser) parseArgs(cmd *command) error {
	if p.peek().kind != tLParen {
		return nil
	}
	p.advance()
	if p.peek().kind == tRParen {
		p.advance()
		return nil
	}
	for {
		arg, err := p.parseOneArg(cmd.name)
		if err != nil {
			return err
		}
		cmd.args = append(cmd.args, arg)
		switch p.peek().kind {
		case tComma:
			p.advance()
			continue
		case tRParen:
			p.advance()
			return nil
		default:
			t := p.peek()
			return fmt.Errorf("command %q: expected ',' or ')' at line %d column %d", cmd.name, t.line, t.col)
		}
	}
}

// parseOneArg parses one "[name =] value [unit]" argument.
func (p *parser) parseOneArg(cmdName string) (argValue, error) {
	var v argValue

	if p.peek().kind == tIdent {
		ident := p.advance()
		if p.peek().kind == tEq {
			p.advance()
			val, err := p.parseValue(cmdName)
			if err != nil {
				return val, err
			}
			val.paramName = ident.str
			return val, nil
		}
		// Not a named argument after all: the identifier itself is the
		// value (a paper/font/orientation name, or a unitless measure
		// base that the caller rejects).
		v.kind = argIdent
		v.s = ident.str
		return v, nil
	}
	return p.parseValue(cmdName)
}

// parseValue parses a bare value: optional '-', then int/real/ident/string,
// with an immediately following unit ident folding int/real into a measure.
func (p *parser) parseValue(cmdName string) (argValue, error) {
	var v argValue
	neg := false
	if p.peek().kind == tMinus {
		p.advance()
		neg = true
	}
	t := p.advance()
	switch t.kind {
	case tInt:
		v.kind, v.i = argInt, t.i
		if neg {
			v.i = -v.i
		}
	case tReal:
		v.kind, v.f = argReal, t.f
		if neg {
			v.f = -v.f
		}
	case tString:
		if neg {
			return v, fmt.Errorf("command %q: unexpected '-' before string at line %d column %d", cmdName, t.line, t.col)
		}
		v.kind, v.s = argString, t.str
	case tIdent:
		if neg {
			return v, fmt.Errorf("command %q: unexpected '-' before identifier at line %d column %d", cmdName, t.line, t.col)
		}
		v.kind, v.s = argIdent, t.str
	default:
		return v, fmt.Errorf("command %q: expected a value at line %d column %d", cmdName, t.line, t.col)
	}

	if v.kind == argInt || v.kind == argReal {
		if p.peek().kind == tIdent {
			unitTok := p.peek()
			if unit, ok := unitValue(unitTok.str); ok {
				p.advance()
				f := v.f
				if v.kind == argInt {
					f = float64(v.i)
				}
				v.kind, v.f = argMeasure, f*unit
			}
		}
	}
	return v, nil
}

// parsePageRanges consumes an optional "{...}" page-range set.
func (p *parser) parsePageRanges(cmd *command) error {
	if p.peek().kind != tLBrace {
		return nil
	}
	p.advance()
	cmd.pages = pageSet{}
	for {
		neg := false
		t := p.advance()
		if t.kind == tMinus {
			neg = true
			t = p.advance()
		}
		switch t.kind {
		case tRBrace:
			return nil
		case tInt, tDollar:
			begin, end := t.i, t.i
			save := p.peek()
			if save.kind == tDotDot {
				p.advance()
				et := p.advance()
				if et.kind != tInt && et.kind != tDollar {
					return fmt.Errorf("command %q: expected page number after '..' at line %d column %d", cmd.name, et.line, et.col)
				}
				end = et.i
			}
			cmd.pages.ranges = append(cmd.pages.ranges, pageRange{kind: setRange, begin: begin, end: end, negative: neg})
		case tOdd:
			cmd.pages.ranges = append(cmd.pages.ranges, pageRange{kind: setOdd})
		case tEven:
			cmd.pages.ranges = append(cmd.pages.ranges, pageRange{kind: setEven})
		default:
			return fmt.Errorf("command %q: malformed page range at line %d column %d", cmd.name, t.line, t.col)
		}
	}
}
