// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package xjson

import (
	"io"
	"unicode/utf8"
)

// StreamDoubleQuotedStringUnescape decodes the next double-quoted string or
// name token, writing it to sink with its escapes resolved rather than
// building a Go string. The surrounding double quotes are preserved in the
// output; only the escape sequences between them are unescaped. It exists
// for callers that want to relay a large string value without holding the
// whole decoded value in memory at once.
//
// Unlike the structured NextString/NextName path, this path combines a lone
// high surrogate immediately followed by a \u-escaped low surrogate into one
// rune (readEscapeCharacterCombining in scanner.go) rather than leaving the
// two code units unpaired.
func (r *Reader) StreamDoubleQuotedStringUnescape(sink io.Writer) (err error) {
	defer r.recoverErr(&err)
	switch p := r.peek(); p {
	case peekedDoubleQuoted, peekedDoubleQuotedName:
	default:
		panic(r.dataErr("expected a double-quoted string but found %v", p.kind()))
	}
	r.writeOrPanic(sink, `"`)
	r.streamQuotedValueUnescaped('"', sink)
	r.peeked = peekedNone
	r.afterValue()
	return nil
}

func (r *Reader) streamQuotedValueUnescaped(quote byte, sink io.Writer) {
	var buf [utf8.UTFMax]byte
	terms := []byte{quote, '\\'}
	for {
		idx := r.source.IndexOfElement(terms)
		if idx < 0 {
			panic(r.syntaxErr("unterminated string"))
		}
		if idx > 0 {
			r.writeOrPanic(sink, r.source.ReadUTF8(int(idx)))
		}
		c := r.source.ReadByte()
		if c == quote {
			r.writeOrPanic(sink, string(quote))
			return
		}
		n := utf8.EncodeRune(buf[:], r.readEscapeCharacterCombining())
		r.writeOrPanic(sink, string(buf[:n]))
	}
}

func (r *Reader) writeOrPanic(w io.Writer, s string) {
	if _, err := io.WriteString(w, s); err != nil {
		panic(err)
	}
}
