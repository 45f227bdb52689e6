// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package xjson

import (
	"io"
	"math"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// This file is the dual-sink lexical scanner (component D, spec.md §4.D):
// unexported methods on *Reader that classify and consume bytes directly
// from the reader's Source, optionally copying what they consume to a
// passthrough sink. It is grounded on
// original_source/moshi/.../JsonUtf8Reader.java's doPeek/peekKeyword/
// peekNumber/nextNonWhitespace/nextQuotedValue family, kept as a single
// monolithic scanner over *Reader (rather than a standalone Scanner type)
// to mirror that source's shape more closely than the teacher's separate
// rune-based Scanner this file used to define.

var unquotedTerminals = []byte("{}[]:, \n\t\r\f/\\;#=")

// consume reads n already-buffered bytes and, if w is not the blackhole,
// copies them to w. Every byte the scanner advances past — structural
// punctuation, whitespace, comments, string and literal bodies — flows
// through this one chokepoint, which is what lets StreamValue reproduce the
// input exactly.
func (r *Reader) consume(w io.Writer, n int) string {
	if n == 0 {
		return ""
	}
	s := r.source.ReadUTF8(n)
	if w != nil && w != io.Discard {
		if _, err := io.WriteString(w, s); err != nil {
			panic(err)
		}
	}
	return s
}

func (r *Reader) checkLenient() {
	if !r.lenient {
		panic(r.syntaxErr("use of lenient JSON syntax when not lenient"))
	}
}

// isLiteral reports whether c can appear inside an unquoted literal. The
// five lenient-only punctuation bytes are never literal, but encountering
// one outside lenient mode is itself a syntax error, not merely "not a
// literal character" — checkLenient's panic is deliberate here.
func (r *Reader) isLiteral(c byte) bool {
	switch c {
	case '/', '\\', ';', '#', '=':
		r.checkLenient()
		return false
	case '{', '}', '[', ']', ':', ',', ' ', '\t', '\f', '\r', '\n':
		return false
	default:
		return true
	}
}

// nextNonWhitespace skips whitespace and (in lenient mode) comments,
// copying everything it skips to sink, and reports the next unconsumed
// byte. It never consumes that byte itself. If the source ends first, it
// panics when throwOnEOF is set and otherwise reports ok = false.
func (r *Reader) nextNonWhitespace(throwOnEOF bool, sink io.Writer) (c byte, ok bool) {
	for {
		if !r.source.Request(1) {
			if throwOnEOF {
				panic(r.syntaxErr("unexpected end of input"))
			}
			return 0, false
		}
		b := r.source.GetByte(0)
		switch b {
		case ' ', '\t', '\r', '\n':
			r.consume(sink, 1)
		case '/':
			r.checkLenient()
			r.consume(sink, 1)
			if !r.source.Request(1) {
				panic(r.syntaxErr("unterminated comment"))
			}
			switch r.source.GetByte(0) {
			case '*':
				r.consume(sink, 1)
				if !r.skipToEndOfBlockComment(sink) {
					panic(r.syntaxErr("unterminated comment"))
				}
			case '/':
				r.consume(sink, 1)
				r.skipToEndOfLine(sink)
			default:
				panic(r.syntaxErr("expected comment"))
			}
		case '#':
			r.checkLenient()
			r.consume(sink, 1)
			r.skipToEndOfLine(sink)
		default:
			return b, true
		}
	}
}

// dryRunLookahead looks past the fixed separator set PeekDryRun uses to
// find the start of the next value: whitespace plus the structural ':' and
// ',' bytes a value may be sitting right behind (e.g. immediately after a
// name's colon, before BeginObject/NextName's own scanning would normally
// consume it). It only inspects buffered bytes by index and never calls
// Skip, so it consumes nothing: PeekDryRun is documented as idempotent and
// must not disturb the colon/comma bookkeeping the scope-aware doPeek path
// still needs to do when the caller goes on to call a real Next* method.
// It also never skips comments and never panics on lenient-only syntax or
// on EOF, unlike nextNonWhitespace: it is a passive classification hint,
// not a validating scan.
func (r *Reader) dryRunLookahead() (c byte, ok bool) {
	for i := 0; ; i++ {
		if !r.source.Request(i + 1) {
			return 0, false
		}
		switch b := r.source.GetByte(i); b {
		case ' ', '\t', '\r', '\n', ':', ',':
			// keep looking
		default:
			return b, true
		}
	}
}

func (r *Reader) skipToEndOfLine(sink io.Writer) {
	idx := r.source.IndexOfElement([]byte("\n\r"))
	if idx < 0 {
		r.consume(sink, r.source.Size())
		return
	}
	r.consume(sink, int(idx)+1)
}

func (r *Reader) skipToEndOfBlockComment(sink io.Writer) bool {
	idx := r.source.IndexOf([]byte("*/"))
	if idx < 0 {
		r.consume(sink, r.source.Size())
		return false
	}
	r.consume(sink, int(idx)+2)
	return true
}

// doPeek is the heart of the scanner: it classifies the next token given
// the current scope, consuming whatever bytes that classification requires
// (separators, opening quotes, brackets) and stashing any value the token
// itself carries (peekedLong, peekedString). The bytes of the token itself
// (brackets, braces, opening quotes, keywords, numbers) always go to w. The
// whitespace, comments and separators in front of it (',' or ';' between
// elements, ':', '=' or '=>' after a name) go to w only when
// writeIntermediates is set, otherwise to the blackhole.
//
// So the first call into StreamValue writes neither the separator nor the
// whitespace in front of the value, while every call inside the value
// (where writeIntermediates is set) copies them, keeping the copy
// byte-identical to the input.
func (r *Reader) doPeek(w io.Writer, writeIntermediates bool) peekToken {
	intermediates := io.Writer(io.Discard)
	if writeIntermediates {
		intermediates = w
	}

	idx := r.scopes.depth() - 1
	scope := r.scopes.at(idx)

	arrayElision := false

	switch scope {
	case scopeStreamingValue:
		if err := r.value.discard(); err != nil {
			panic(r.syntaxErr("unterminated value: %v", err))
		}
		r.value = nil
		r.scopes.pop()
		return r.doPeek(io.Discard, false)

	case scopeEmptyArray:
		r.scopes.setTop(scopeNonemptyArray)
		arrayElision = true

	case scopeNonemptyArray:
		c, _ := r.nextNonWhitespace(true, intermediates)
		switch c {
		case ']':
			r.consume(w, 1)
			r.peeked = peekedEndArray
			return r.peeked
		case ';':
			r.checkLenient()
			r.consume(intermediates, 1)
		case ',':
			r.consume(intermediates, 1)
		default:
			panic(r.syntaxErr("unterminated array"))
		}
		arrayElision = true

	case scopeEmptyObject, scopeNonemptyObject:
		r.scopes.setTop(scopeDanglingName)
		if scope == scopeNonemptyObject {
			c, _ := r.nextNonWhitespace(true, intermediates)
			switch c {
			case '}':
				r.consume(w, 1)
				r.peeked = peekedEndObject
				return r.peeked
			case ';':
				r.checkLenient()
				r.consume(intermediates, 1)
			case ',':
				r.consume(intermediates, 1)
			default:
				panic(r.syntaxErr("unterminated object"))
			}
		}
		c, _ := r.nextNonWhitespace(true, intermediates)
		switch {
		case c == '"':
			r.consume(w, 1)
			r.peeked = peekedDoubleQuotedName
		case c == '\'':
			r.checkLenient()
			r.consume(w, 1)
			r.peeked = peekedSingleQuotedName
		case c == '}' && scope == scopeEmptyObject:
			r.consume(w, 1)
			r.peeked = peekedEndObject
		case r.isLiteral(c):
			r.checkLenient()
			r.peeked = peekedUnquotedName
		default:
			panic(r.syntaxErr("expected name"))
		}
		return r.peeked

	case scopeDanglingName:
		r.scopes.setTop(scopeNonemptyObject)
		c, _ := r.nextNonWhitespace(true, intermediates)
		switch c {
		case ':':
			r.consume(intermediates, 1)
		case '=':
			r.checkLenient()
			r.consume(intermediates, 1)
			if r.source.Request(1) && r.source.GetByte(0) == '>' {
				r.consume(intermediates, 1)
			}
		default:
			panic(r.syntaxErr("expected ':'"))
		}

	case scopeEmptyDocument, scopeNonemptyDocument:
		// handled uniformly below

	case scopeClosed:
		panic(r.stateErr("reader is closed"))

	default:
		panic(r.stateErr("unreachable scope"))
	}

	throwEOF := scope != scopeEmptyDocument && scope != scopeNonemptyDocument
	c, ok := r.nextNonWhitespace(throwEOF, intermediates)
	if !ok {
		r.peeked = peekedEOF
		return r.peeked
	}
	if scope == scopeNonemptyDocument {
		r.checkLenient() // a second top-level value is a lenient extension
	}
	if scope == scopeEmptyDocument {
		r.scopes.setTop(scopeNonemptyDocument)
	}

	if arrayElision {
		if c == ']' && scope == scopeEmptyArray {
			r.consume(w, 1)
			r.peeked = peekedEndArray
			return r.peeked
		}
		switch c {
		case ']', ',', ';':
			r.checkLenient()
			r.peeked = peekedNull
			return r.peeked
		}
	}

	switch c {
	case '\'':
		r.checkLenient()
		r.consume(w, 1)
		r.peeked = peekedSingleQuoted
		return r.peeked
	case '"':
		r.consume(w, 1)
		r.peeked = peekedDoubleQuoted
		return r.peeked
	case '[':
		r.consume(w, 1)
		r.peeked = peekedBeginArray
		return r.peeked
	case '{':
		r.consume(w, 1)
		r.peeked = peekedBeginObject
		return r.peeked
	}

	if t := r.peekKeyword(w); t != peekedNone {
		r.peeked = t
		return t
	}
	if t := r.peekNumber(w); t != peekedNone {
		r.peeked = t
		return t
	}
	if !r.isLiteral(c) {
		panic(r.syntaxErr("unexpected character %q", c))
	}
	r.checkLenient()
	r.peeked = peekedUnquoted
	return r.peeked
}

func lowerByte(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + ('a' - 'A')
	}
	return b
}

// peekKeyword matches "true", "false" or "null" case-insensitively,
// rejecting a match immediately followed by another literal character (so
// "trues" and "nullsoft" are unquoted strings, not keywords).
func (r *Reader) peekKeyword(w io.Writer) peekToken {
	if !r.source.Request(1) {
		return peekedNone
	}
	var word string
	var result peekToken
	switch r.source.GetByte(0) {
	case 't', 'T':
		word, result = "true", peekedTrue
	case 'f', 'F':
		word, result = "false", peekedFalse
	case 'n', 'N':
		word, result = "null", peekedNull
	default:
		return peekedNone
	}
	n := len(word)
	if !r.source.Request(n) {
		return peekedNone
	}
	for i := 1; i < n; i++ {
		if lowerByte(r.source.GetByte(i)) != word[i] {
			return peekedNone
		}
	}
	if r.source.Request(n+1) && r.isLiteral(r.source.GetByte(n)) {
		return peekedNone
	}
	r.consume(w, n)
	return result
}

// numberState is the number-literal grammar's 8-state machine, grounded on
// the original's NUMBER_CHAR_* constants.
type numberState int

const (
	numNone numberState = iota
	numSign
	numDigit
	numDecimal
	numFractionDigit
	numExpE
	numExpSign
	numExpDigit
)

// minIncompleteInteger is the largest magnitude a running negative
// accumulation can hold before one more digit might overflow int64; past
// this point the fast integer path gives up and falls back to peekedNumber
// (decoded later with strconv).
const minIncompleteInteger = math.MinInt64 / 10

var lenientSpecialNumbers = []string{"-Infinity", "Infinity", "NaN"}

func (r *Reader) matchLiteral(lit string) bool {
	if !r.source.Request(len(lit)) {
		return false
	}
	for i := 0; i < len(lit); i++ {
		if r.source.GetByte(i) != lit[i] {
			return false
		}
	}
	return true
}

// peekNumber classifies a JSON number, or in lenient mode, NaN and
// (-)Infinity. It reports peekedLong when the value is an integer literal
// that fits in an int64, peekedNumber (with the raw text stashed in
// peekedString) otherwise, or peekedNone if the input at the cursor is not
// a number at all.
func (r *Reader) peekNumber(w io.Writer) peekToken {
	if r.lenient {
		for _, lit := range lenientSpecialNumbers {
			if r.matchLiteral(lit) {
				r.peekedString = r.consume(w, len(lit))
				return peekedNumber
			}
		}
	}

	var (
		value       int64
		negative    bool
		fitsLong    = true
		state       = numNone
		i           int
		intDigits   int
		leadingZero bool
	)

loop:
	for {
		if !r.source.Request(i + 1) {
			break
		}
		c := r.source.GetByte(i)
		switch c {
		case '-':
			switch state {
			case numNone:
				state, negative = numSign, true
			case numExpE:
				state = numExpSign
			default:
				break loop
			}
		case '+':
			if state != numExpE {
				break loop
			}
			state = numExpSign
		case '.':
			if state != numDigit {
				break loop
			}
			state = numDecimal
		case 'e', 'E':
			if state != numDigit && state != numFractionDigit {
				break loop
			}
			state = numExpE
		default:
			if c < '0' || c > '9' {
				break loop
			}
			switch state {
			case numNone, numSign:
				state = numDigit
				value = -int64(c - '0')
				intDigits = 1
				leadingZero = c == '0'
			case numDigit:
				intDigits++
				newValue := value*10 - int64(c-'0')
				// The pre-digit accumulator alone isn't enough: when value
				// sits exactly at minIncompleteInteger, value*10 lands 8
				// above math.MinInt64 (integer division truncates toward
				// zero), so digits 0-8 still fit but 9 wraps past it. Catch
				// that wrap by also checking that applying the digit kept
				// moving away from zero.
				if value < minIncompleteInteger || (value == minIncompleteInteger && newValue > value) {
					fitsLong = false
				}
				value = newValue
			case numDecimal:
				state = numFractionDigit
			case numExpE, numExpSign:
				state = numExpDigit
			case numFractionDigit, numExpDigit:
				// extra digits, state unchanged
			default:
				break loop
			}
		}
		i++
	}

	// A leading zero followed by more integer digits is octal-ambiguous and
	// rejected outright, matching the teacher's hasExtraLeadingZeroes check
	// (scanner.go) adapted from a rune scan to this digit-run count.
	if leadingZero && intDigits > 1 {
		panic(r.syntaxErr("invalid number: extra leading zero"))
	}

	switch state {
	case numDigit:
		result := value
		if !negative {
			result = -value
			if result < 0 {
				fitsLong = false // "-value" overflowed back to negative
			}
		}
		// Moshi's doPeek guards PEEKED_LONG the same way: negative zero is a
		// number, not a long, so that -0 round-trips as "-0" rather than "0".
		if fitsLong && !(negative && value == 0) {
			r.peekedLong = result
			r.consume(w, i)
			return peekedLong
		}
		r.peekedString = r.consume(w, i)
		return peekedNumber
	case numFractionDigit, numExpDigit:
		r.peekedString = r.consume(w, i)
		return peekedNumber
	default:
		return peekedNone
	}
}

func hexValue(c byte) (int, bool) {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0'), true
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10, true
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10, true
	default:
		return 0, false
	}
}

func (r *Reader) readUnicodeEscape() rune {
	if !r.source.Request(4) {
		panic(r.syntaxErr("incomplete unicode escape"))
	}
	var v rune
	for i := 0; i < 4; i++ {
		d, ok := hexValue(r.source.GetByte(i))
		if !ok {
			panic(r.syntaxErr("invalid unicode escape"))
		}
		v = v<<4 | rune(d)
	}
	r.source.Skip(4)
	return v
}

// peekUnicodeEscapeSurrogate looks (without consuming) for a "\uXXXX" escape
// encoding a low surrogate immediately at the cursor.
func (r *Reader) peekUnicodeEscapeSurrogate() (rune, bool) {
	if !r.source.Request(6) {
		return 0, false
	}
	if r.source.GetByte(0) != '\\' || r.source.GetByte(1) != 'u' {
		return 0, false
	}
	var v rune
	for i := 0; i < 4; i++ {
		d, ok := hexValue(r.source.GetByte(2 + i))
		if !ok {
			return 0, false
		}
		v = v<<4 | rune(d)
	}
	if v < 0xDC00 || v > 0xDFFF {
		return 0, false
	}
	return v, true
}

// readEscapeCharacter decodes one escape sequence for the structured decode
// path (NextString/NextName). A "\u" escape yields exactly the one 16-bit
// code unit it encodes, even when that unit is a surrogate half — the
// structured path never looks ahead for a matching low surrogate. See
// readEscapeCharacterCombining for the unescape-to-sink path, which does.
func (r *Reader) readEscapeCharacter() rune {
	if !r.source.Request(1) {
		panic(r.syntaxErr("unterminated escape sequence"))
	}
	c := r.source.ReadByte()
	switch c {
	case 'u':
		return r.readUnicodeEscape()
	case 't':
		return '\t'
	case 'b':
		return '\b'
	case 'n':
		return '\n'
	case 'r':
		return '\r'
	case 'f':
		return '\f'
	case '\'', '"', '\\', '/':
		return rune(c)
	default:
		panic(r.syntaxErr("invalid escape sequence \\%c", c))
	}
}

// readEscapeCharacterCombining decodes one escape sequence for the
// unescape-to-sink path (StreamDoubleQuotedStringUnescape), combining a
// high surrogate with an immediately following low-surrogate escape into a
// single rune. This is the same combination internal/escape/unquote.go
// performs for the static Unquote helper, duplicated here because the
// scanner reads directly from Source rather than a buffered mem.RO.
func (r *Reader) readEscapeCharacterCombining() rune {
	if !r.source.Request(1) {
		panic(r.syntaxErr("unterminated escape sequence"))
	}
	if r.source.GetByte(0) != 'u' {
		return r.readEscapeCharacter()
	}
	r.source.Skip(1)
	hi := r.readUnicodeEscape()
	if utf16.IsSurrogate(hi) {
		if lo, ok := r.peekUnicodeEscapeSurrogate(); ok {
			if combined := utf16.DecodeRune(hi, lo); combined != utf8.RuneError {
				r.source.Skip(6)
				return combined
			}
		}
		return utf8.RuneError
	}
	return hi
}

// nextQuotedValue decodes a quoted value up to and including its closing
// quote, resolving escapes.
func (r *Reader) nextQuotedValue(quote byte) string {
	var b strings.Builder
	terms := []byte{quote, '\\'}
	for {
		idx := r.source.IndexOfElement(terms)
		if idx < 0 {
			panic(r.syntaxErr("unterminated string"))
		}
		if idx > 0 {
			b.WriteString(r.source.ReadUTF8(int(idx)))
		}
		c := r.source.ReadByte()
		if c == quote {
			return b.String()
		}
		b.WriteRune(r.readEscapeCharacter())
	}
}

// skipQuotedValue discards a quoted value up to and including its closing
// quote without resolving escapes, copying every consumed byte to sink
// verbatim.
func (r *Reader) skipQuotedValue(quote byte, sink io.Writer) {
	terms := []byte{quote, '\\'}
	for {
		idx := r.source.IndexOfElement(terms)
		if idx < 0 {
			panic(r.syntaxErr("unterminated string"))
		}
		r.consume(sink, int(idx))
		c := r.source.GetByte(0)
		r.consume(sink, 1)
		if c == quote {
			return
		}
		if !r.source.Request(1) {
			panic(r.syntaxErr("unterminated escape sequence"))
		}
		if r.source.GetByte(0) == 'u' {
			r.consume(sink, 1)
			if !r.source.Request(4) {
				panic(r.syntaxErr("incomplete unicode escape"))
			}
			r.consume(sink, 4)
		} else {
			r.consume(sink, 1)
		}
	}
}

func (r *Reader) nextUnquotedValue() string {
	idx := r.source.IndexOfElement(unquotedTerminals)
	if idx < 0 {
		idx = int64(r.source.Size())
	}
	return r.source.ReadUTF8(int(idx))
}

func (r *Reader) skipUnquotedValue(sink io.Writer) {
	idx := r.source.IndexOfElement(unquotedTerminals)
	if idx < 0 {
		idx = int64(r.source.Size())
	}
	r.consume(sink, int(idx))
}
