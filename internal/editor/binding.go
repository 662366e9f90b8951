// Copyright 2014 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package editor

import "fmt"

// paramKind is a command parameter's declared type.
type paramKind int

const (
	pInt paramKind = iota
	pReal
	pMeasure
	pIdent
	pString
)

// paramSpec is one declared parameter of a command. A spec with
// hasDefault false must be supplied by the caller; a zero value is never
// silently assumed.
type paramSpec struct {
	name       string
	kind       paramKind
	hasDefault bool
	defInt     int64
	defReal    float64
	defStr     string
}

// bound is one resolved argument, coerced to its spec's kind.
type bound struct {
	kind paramKind
	i    int64
	f    float64
	s    string
}

func (b bound) Int() int64     { return b.i }
func (b bound) Real() float64  { return b.f }
func (b bound) String() string { return b.s }

// bindArgs matches cmd's parsed argument list against specs, positional
// arguments first (in order, stopping at the first named one), then named
// arguments matched by name in any order, then defaults filling anything
// left unset.
func bindArgs(cmdName string, specs []paramSpec, args []argValue) ([]bound, error) {
	vals := make([]bound, len(specs))
	set := make([]bool, len(specs))

	i := 0
	for ; i < len(args) && args[i].paramName == ""; i++ {
		if i >= len(specs) {
			return nil, fmt.Errorf("command %q: too many positional arguments", cmdName)
		}
		v, err := coerce(cmdName, specs[i].name, specs[i].kind, args[i])
		if err != nil {
			return nil, err
		}
		vals[i], set[i] = v, true
	}

	for ; i < len(args); i++ {
		a := args[i]
		if a.paramName == "" {
			return nil, fmt.Errorf("command %q: positional argument after named argument", cmdName)
		}
		idx := -1
		for j, sp := range specs {
			if sp.name == a.paramName {
				idx = j
				break
			}
		}
		if idx == -1 {
			return nil, fmt.Errorf("command %q: unknown parameter %q", cmdName, a.paramName)
		}
		v, err := coerce(cmdName, specs[idx].name, specs[idx].kind, a)
		if err != nil {
			return nil, err
		}
		vals[idx], set[idx] = v, true
	}

	for j, sp := range specs {
		if set[j] {
			continue
		}
		if !sp.hasDefault {
			return nil, fmt.Errorf("command %q: value of param %q must be set", cmdName, sp.name)
		}
		vals[j] = bound{kind: sp.kind, i: sp.defInt, f: sp.defReal, s: sp.defStr}
	}
	return vals, nil
}

// coerce widens a parsed argValue to the kind a paramSpec declares: int
// widens to real/measure, and a bare number is accepted wherever a
// measure is expected.
func coerce(cmdName, paramName string, kind paramKind, a argValue) (bound, error) {
	switch kind {
	case pInt:
		if a.kind != argInt {
			return bound{}, fmt.Errorf("command %q: param %q is not an integer", cmdName, paramName)
		}
		return bound{kind: pInt, i: a.i}, nil
	case pReal:
		switch a.kind {
		case argInt:
			return bound{kind: pReal, f: float64(a.i)}, nil
		case argReal:
			return bound{kind: pReal, f: a.f}, nil
		default:
			return bound{}, fmt.Errorf("command %q: param %q is not a number", cmdName, paramName)
		}
	case pMeasure:
		switch a.kind {
		case argInt:
			return bound{kind: pMeasure, f: float64(a.i)}, nil
		case argReal, argMeasure:
			return bound{kind: pMeasure, f: a.f}, nil
		default:
			return bound{}, fmt.Errorf("command %q: param %q is not a measure", cmdName, paramName)
		}
	case pIdent:
		if a.kind != argIdent {
			return bound{}, fmt.Errorf("command %q: param %q is not an identifier", cmdName, paramName)
		}
		return bound{kind: pIdent, s: a.s}, nil
	case pString:
		if a.kind != argString {
			return bound{}, fmt.Errorf("command %q: param %q is not a quoted string", cmdName, paramName)
		}
		return bound{kind: pString, s: a.s}, nil
	default:
		return bound{}, fmt.Errorf("command %q: param %q has an unknown type", cmdName, paramName)
	}
}
