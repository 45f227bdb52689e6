// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package xjson

import "io"

// readValue copies the next value verbatim to w, however deeply nested,
// leaving the reader positioned just past it. Whitespace and comments
// inside the value are copied too, once the value's own braces or brackets
// have opened; the whitespace and the ',' or ':' separator between the
// reader's cursor and the value's first byte are never written.
//
// Grounded on the depth-tracking recursion of the teacher's
// Stream.parseElement/parseMembers/parseElements (stream.go, now absorbed
// here), generalized from "dispatch to a Handler" to "write the consumed
// bytes to w".
func (r *Reader) readValue(w io.Writer) {
	count := 0
	for {
		// A token already cached by Peek or HasNext was taken off the wire
		// without being written to w, so its leading bytes are replayed here.
		p := r.peeked
		if p == peekedNone {
			p = r.doPeek(w, count != 0)
		} else if p == peekedLong || p == peekedNumber {
			r.writeOrPanic(w, r.currentValueText(p))
		} else {
			r.writeOrPanic(w, map[peekToken]string{
				peekedBeginObject: "{", peekedBeginArray: "[", peekedTrue: "true", peekedFalse: "false",
				peekedNull: "null", peekedDoubleQuoted: `"`, peekedDoubleQuotedName: `"`,
				peekedSingleQuoted: "'", peekedSingleQuotedName: "'",
			}[p])
		}
		switch p {
		case peekedBeginArray:
			count++
			r.peeked = peekedNone
			r.scopes.push(scopeEmptyArray)
		case peekedBeginObject:
			count++
			r.peeked = peekedNone
			r.scopes.push(scopeEmptyObject)
		case peekedEndArray, peekedEndObject:
			count--
			if count < 0 {
				panic(r.syntaxErr("unbalanced %v while streaming a value", p))
			}
			r.scopes.pop()
			r.peeked = peekedNone
			if count == 0 {
				r.afterValue()
				return
			}
		case peekedEOF:
			panic(r.syntaxErr("unexpected end of input while streaming a value"))
		default:
			r.consumePeekedBody(w, p)
			r.peeked = peekedNone
			if count == 0 {
				r.afterValue()
				return
			}
		}
	}
}

// consumePeekedBody writes the remaining bytes of the currently peeked
// token to w. doPeek has already written any opening quote, brace, or
// bracket; keywords and numbers are fully written by peekKeyword/peekNumber
// themselves, so only quoted and unquoted text need draining here.
func (r *Reader) consumePeekedBody(w io.Writer, p peekToken) {
	switch p {
	case peekedDoubleQuoted, peekedDoubleQuotedName:
		r.skipQuotedValue('"', w)
	case peekedSingleQuoted, peekedSingleQuotedName:
		r.skipQuotedValue('\'', w)
	case peekedUnquoted, peekedUnquotedName:
		r.skipUnquotedValue(w)
	case peekedBuffered, peekedBufferedName:
		// A name promoted by PromoteNameToValue is already off the wire; its
		// original quoting is lost, so it is re-quoted canonically.
		if _, err := io.WriteString(w, Quote(r.peekedString)); err != nil {
			panic(err)
		}
	case peekedTrue, peekedFalse, peekedNull, peekedLong, peekedNumber:
		// peekKeyword/peekNumber already wrote every byte of the token.
	default:
		panic(r.syntaxErr("unexpected token %v while streaming a value", p))
	}
}

// StreamValue copies the next value verbatim to w. Unlike NextSource, the
// copy happens eagerly and the reader is immediately usable again once it
// returns.
func (r *Reader) StreamValue(w io.Writer) (err error) {
	defer r.recoverErr(&err)
	r.readValue(w)
	return nil
}

// ValueSink is the minimal contract a sibling JSON writer must satisfy to
// receive a streamed value directly: an io.Writer to copy the value's bytes
// into, plus a BeforeValue hook the router calls once, before the value's
// first byte, so the writer can insert whatever separator, indentation, or
// newline its own pretty-print state calls for.
type ValueSink interface {
	io.Writer

	// BeforeValue is invoked once, immediately before the streamed value's
	// first byte is written to the sink.
	BeforeValue() error
}

// StreamValueTo behaves like StreamValue, except the destination is a
// ValueSink rather than a bare io.Writer: sink.BeforeValue() is invoked once
// before any of the value's bytes are copied, letting an adjacent
// pretty-printing writer stay in sync with the reader's own passthrough
// output.
func (r *Reader) StreamValueTo(sink ValueSink) (err error) {
	defer r.recoverErr(&err)
	if err := sink.BeforeValue(); err != nil {
		panic(err)
	}
	r.readValue(sink)
	return nil
}
