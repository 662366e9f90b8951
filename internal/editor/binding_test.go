// Copyright 2014 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package editor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func rotateSpecs() []paramSpec {
	return []paramSpec{
		{name: "angle", kind: pInt, hasDefault: true, defInt: 0},
	}
}

func TestBindArgsPositional(t *testing.T) {
	args := []argValue{{kind: argInt, i: 90}}
	bound, err := bindArgs("rotate", rotateSpecs(), args)
	require.NoError(t, err)
	require.Equal(t, int64(90), bound[0].Int())
}

func TestBindArgsNamed(t *testing.T) {
	args := []argValue{{paramName: "angle", kind: argInt, i: 180}}
	bound, err := bindArgs("rotate", rotateSpecs(), args)
	require.NoError(t, err)
	require.Equal(t, int64(180), bound[0].Int())
}

func TestBindArgsFillsDefault(t *testing.T) {
	bound, err := bindArgs("rotate", rotateSpecs(), nil)
	require.NoError(t, err)
	require.Equal(t, int64(0), bound[0].Int())
}

func TestBindArgsMissingRequiredParam(t *testing.T) {
	specs := []paramSpec{{name: "angle", kind: pInt, hasDefault: false}}
	_, err := bindArgs("rotate", specs, nil)
	require.Error(t, err)
}

func TestBindArgsUnknownNamedParam(t *testing.T) {
	args := []argValue{{paramName: "bogus", kind: argInt, i: 1}}
	_, err := bindArgs("rotate", rotateSpecs(), args)
	require.Error(t, err)
}

func TestBindArgsTooManyPositional(t *testing.T) {
	args := []argValue{{kind: argInt, i: 1}, {kind: argInt, i: 2}}
	_, err := bindArgs("rotate", rotateSpecs(), args)
	require.Error(t, err)
}

func TestBindArgsPositionalAfterNamedRejected(t *testing.T) {
	args := []argValue{
		{paramName: "angle", kind: argInt, i: 90},
		{kind: argInt, i: 5},
	}
	specs := []paramSpec{
		{name: "angle", kind: pInt, hasDefault: true},
		{name: "other", kind: pInt, hasDefault: true},
	}
	_, err := bindArgs("rotate", specs, args)
	require.Error(t, err)
}

func TestCoerceIntWidensToReal(t *testing.T) {
	b, err := coerce("scale", "factor", pReal, argValue{kind: argInt, i: 2})
	require.NoError(t, err)
	require.Equal(t, 2.0, b.Real())
}

func TestCoerceIntWidensToMeasure(t *testing.T) {
	b, err := coerce("crop", "left", pMeasure, argValue{kind: argInt, i: 10})
	require.NoError(t, err)
	require.Equal(t, 10.0, b.Real())
}

func TestCoerceRejectsWrongKind(t *testing.T) {
	_, err := coerce("rotate", "angle", pInt, argValue{kind: argString, s: "ninety"})
	require.Error(t, err)
}

func TestCoerceStringAndIdent(t *testing.T) {
	b, err := coerce("text", "value", pString, argValue{kind: argString, s: "hi"})
	require.NoError(t, err)
	require.Equal(t, "hi", b.String())

	b, err = coerce("paper", "name", pIdent, argValue{kind: argIdent, s: "a4"})
	require.NoError(t, err)
	require.Equal(t, "a4", b.String())
}
