// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

package escape

import (
	"unicode/utf8"

	"go4.org/mem"
)

var controlEsc = [...]byte{
	'\b': 'b',
	'\f': 'f',
	'\n': 'n',
	'\r': 'r',
	'\t': 't',
	' ':  ' ', // sentinel
}

var hexDigit = []byte("0123456789abcdef")

// Quote encodes the runes of src as the body of a double-quoted JSON string;
// the surrounding quotes are the caller's responsibility (see Unquote and
// the public Quote wrapper in encoding.go). Control bytes, the backslash and
// double-quote, the Unicode replacement rune, and the two line/paragraph
// separators U+2028/U+2029 are escaped; everything else is copied through.
func Quote(src mem.RO) []byte {
	buf := make([]byte, 0, src.Len())
	for src.Len() > 0 {
		r, n := mem.DecodeRune(src)
		src = src.SliceFrom(n)

		if r < utf8.RuneSelf {
			switch {
			case r < ' ':
				if b := controlEsc[r]; b != 0 {
					buf = append(buf, '\\', b)
				} else {
					buf = append(buf, '\\', 'u', '0', '0', hexDigit[r>>4], hexDigit[r&15])
				}
			case r == '\\' || r == '"':
				buf = append(buf, '\\', byte(r))
			default:
				buf = append(buf, byte(r))
			}
			continue
		}

		switch r {
		case '\ufffd', '\u2028', '\u2029':
			buf = append(buf, '\\', 'u')
			buf = append(buf, hexDigit[(r>>12)&15], hexDigit[(r>>8)&15], hexDigit[(r>>4)&15], hexDigit[r&15])
		default:
			var rbuf [utf8.UTFMax]byte
			buf = append(buf, rbuf[:utf8.EncodeRune(rbuf[:], r)]...)
		}
	}
	return buf
}
