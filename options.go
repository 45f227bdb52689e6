// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package xjson

import (
	"github.com/creachadair/xjson/internal/escape"

	"go4.org/mem"
)

// Options is a precomputed set of candidate strings for SelectName and
// SelectString. Precomputing lets the scanner try to match the option
// directly against buffered bytes (Source.Select) before falling back to a
// full decode, avoiding an allocation on the common case of a name or
// string drawn from a small, fixed vocabulary (an enum, a set of known
// object keys).
//
// Grounded on the original's Options/findName/findString
// (original_source/moshi/.../JsonUtf8Reader.java), generalized to a
// standalone type instead of a method table on the reader.
type Options struct {
	strings []string
	quoted  [][]byte // each entry: the escaped form followed by the closing '"'
}

// NewOptions builds an Options set from literal, unescaped strings.
func NewOptions(strs ...string) *Options {
	o := &Options{strings: append([]string(nil), strs...)}
	o.quoted = make([][]byte, len(strs))
	for i, s := range strs {
		o.quoted[i] = append(escape.Quote(mem.S(s)), '"')
	}
	return o
}

func (o *Options) find(s string) int {
	for i, cand := range o.strings {
		if cand == s {
			return i
		}
	}
	return -1
}
