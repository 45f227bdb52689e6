// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

// Package xjson implements a streaming, lenient UTF-8 JSON reader.
//
// # Structured decoding
//
// Construct a Reader from an io.Reader and pull values off it; every read
// has a dedicated typed accessor:
//
//	r := xjson.NewReader(input)
//	r.BeginObject()
//	for {
//	    has, _ := r.HasNext()
//	    if !has {
//	        break
//	    }
//	    name, _ := r.NextName()
//	    switch name {
//	    case "id":
//	        id, _ := r.NextLong()
//	    default:
//	        r.SkipValue()
//	    }
//	}
//	r.EndObject()
//
// Peek reports the kind of the next token without consuming it:
//
//	if kind, _ := r.Peek(); kind == xjson.Null {
//	    r.NextNull()
//	}
//
// # Passthrough streaming
//
// StreamValue copies the exact bytes of the next JSON value — however
// deeply nested — into a sink, without reformatting:
//
//	r.BeginObject()
//	name, _ := r.NextName()
//	if name == "payload" {
//	    r.StreamValue(w) // w receives the verbatim bytes of the value
//	} else {
//	    r.SkipValue()
//	}
//	r.EndObject()
//
// StreamDoubleQuotedStringUnescape writes a canonical quoted form of the
// next string: the surrounding double quotes are preserved but escape
// sequences are decoded.
//
// # Lenient mode
//
// By default the reader is strict RFC 8259 JSON. Call SetLenient(true) to
// additionally accept //, /* */ and # comments, single-quoted and unquoted
// names and strings, = or => in place of :, ; in place of a comma, a comma
// immediately followed by ] or another comma standing for null, and
// NaN/Infinity numeric literals.
//
// # Errors
//
// Every operation reports one of three error types: *SyntaxError for
// malformed input, *DataError for well-formed input of the wrong shape, and
// *StateError for misuse of the reader itself (operating on a closed reader,
// exceeding the nesting limit, and so on). All three carry the reader's
// current path, rendered as a JSONPath-like expression such as
// "$.users[3].name".
package xjson
