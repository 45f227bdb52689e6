// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package xjson

import (
	"io"
	"math"
	"math/big"
	"strconv"
)

// Reader is a pull-based JSON reader (component E, spec.md §4.E). Every
// operation either advances the reader by exactly one token or reports an
// error; there is no tree, and no lookahead beyond a single cached token.
//
// Reader's public methods are grounded on the teacher's single-cached-token
// idiom (Scanner.tok / Scanner.Next in the old scanner.go this file
// replaces) and its SyntaxError/posError shape (stream.go), generalized
// from "advance the scanner and inspect Token()" to the pull surface
// spec.md §4.E specifies (BeginObject/NextName/SkipValue/...).
//
// A Reader is not safe for concurrent use.
type Reader struct {
	source Source
	scopes *scopeStack

	peeked       peekToken
	peekedLong   int64
	peekedString string

	lenient       bool
	failOnUnknown bool

	value *valueSource // non-nil while the top scope is scopeStreamingValue

	closed bool
}

// NewReader returns a Reader that consumes input from r.
func NewReader(r io.Reader) *Reader {
	return NewReaderSource(NewSource(r))
}

// NewReaderSource returns a Reader over an already-constructed Source, for
// callers who need control over buffering or want to share a Source
// between readers (see PeekJSON).
func NewReaderSource(source Source) *Reader {
	return &Reader{source: source, scopes: newScopeStack()}
}

// SetLenient configures whether r accepts the lenient JSON superset
// described in the package doc comment. The default is strict RFC 8259.
func (r *Reader) SetLenient(v bool) { r.lenient = v }

// Lenient reports whether r is in lenient mode.
func (r *Reader) Lenient() bool { return r.lenient }

// SetFailOnUnknown configures r to reject SkipName and SkipValue, forcing
// every name and value in the input to be consumed by a typed accessor.
func (r *Reader) SetFailOnUnknown(v bool) { r.failOnUnknown = v }

// FailOnUnknown reports whether r rejects SkipName/SkipValue.
func (r *Reader) FailOnUnknown() bool { return r.failOnUnknown }

// Path renders r's current position as a JSONPath-like expression, e.g.
// "$.users[3].name".
func (r *Reader) Path() string { return r.scopes.path() }

func (r *Reader) syntaxErr(format string, args ...any) *SyntaxError {
	return syntaxErrorf(r.scopes.path(), -1, format, args...)
}

func (r *Reader) dataErr(format string, args ...any) *DataError {
	return dataErrorf(r.scopes.path(), format, args...)
}

func (r *Reader) stateErr(format string, args ...any) *StateError {
	return stateErrorf(r.scopes.path(), format, args...)
}

// recoverErr is the panic/error boundary every exported method installs:
// internal helpers panic with one of *SyntaxError, *DataError, *StateError,
// or a plain error from a failed sink write, and the boundary turns
// whichever of those occurred into a normal return, grounded on the
// teacher's Stream.recoverParseError (stream.go, since replaced) and the
// same idiom encoding/json uses internally.
func (r *Reader) recoverErr(errp *error) {
	if v := recover(); v != nil {
		if err, ok := v.(error); ok {
			*errp = err
			return
		}
		panic(v)
	}
}

// peek ensures a token is cached and returns it.
func (r *Reader) peek() peekToken {
	if r.peeked == peekedNone {
		r.doPeek(io.Discard, false)
	}
	return r.peeked
}

// afterValue updates the path once a value at the current scope has been
// fully consumed: array scopes advance their index, object scopes revert
// their recorded name to "null" until the next NextName call sets a real
// one.
func (r *Reader) afterValue() {
	if r.scopes.depth() == 0 {
		return
	}
	switch r.scopes.top() {
	case scopeNonemptyArray:
		r.scopes.bumpIndex()
	case scopeNonemptyObject:
		r.scopes.stampNullName()
	}
}

// Peek reports the kind of the next token without consuming it.
func (r *Reader) Peek() (kind Kind, err error) {
	defer r.recoverErr(&err)
	return r.peek().kind(), nil
}

// HasNext reports whether the current object or array has another element,
// or whether the document has another top-level value in lenient mode.
func (r *Reader) HasNext() (has bool, err error) {
	defer r.recoverErr(&err)
	p := r.peek()
	return p != peekedEndObject && p != peekedEndArray && p != peekedEOF, nil
}

func (r *Reader) beginObject() {
	if r.closed {
		panic(r.stateErr("reader is closed"))
	}
	if p := r.peek(); p != peekedBeginObject {
		panic(r.dataErr("expected BEGIN_OBJECT but found %v", p.kind()))
	}
	r.scopes.push(scopeEmptyObject)
	r.peeked = peekedNone
}

// BeginObject consumes the "{" that begins an object.
func (r *Reader) BeginObject() (err error) {
	defer r.recoverErr(&err)
	r.beginObject()
	return nil
}

func (r *Reader) endObject() {
	if p := r.peek(); p != peekedEndObject {
		panic(r.dataErr("expected END_OBJECT but found %v", p.kind()))
	}
	r.scopes.pop()
	r.peeked = peekedNone
	r.afterValue()
}

// EndObject consumes the "}" that ends the current object.
func (r *Reader) EndObject() (err error) {
	defer r.recoverErr(&err)
	r.endObject()
	return nil
}

func (r *Reader) beginArray() {
	if p := r.peek(); p != peekedBeginArray {
		panic(r.dataErr("expected BEGIN_ARRAY but found %v", p.kind()))
	}
	r.scopes.push(scopeEmptyArray)
	r.peeked = peekedNone
}

// BeginArray consumes the "[" that begins an array.
func (r *Reader) BeginArray() (err error) {
	defer r.recoverErr(&err)
	r.beginArray()
	return nil
}

func (r *Reader) endArray() {
	if p := r.peek(); p != peekedEndArray {
		panic(r.dataErr("expected END_ARRAY but found %v", p.kind()))
	}
	r.scopes.pop()
	r.peeked = peekedNone
	r.afterValue()
}

// EndArray consumes the "]" that ends the current array.
func (r *Reader) EndArray() (err error) {
	defer r.recoverErr(&err)
	r.endArray()
	return nil
}

func (r *Reader) nextName() string {
	p := r.peek()
	var result string
	switch p {
	case peekedDoubleQuotedName:
		result = r.nextQuotedValue('"')
	case peekedSingleQuotedName:
		result = r.nextQuotedValue('\'')
	case peekedUnquotedName:
		result = r.nextUnquotedValue()
	case peekedBufferedName:
		result = r.peekedString
	default:
		panic(r.dataErr("expected NAME but found %v", p.kind()))
	}
	r.peeked = peekedNone
	r.scopes.setName(result)
	return result
}

// NextName consumes and decodes the next object member name.
func (r *Reader) NextName() (name string, err error) {
	defer r.recoverErr(&err)
	return r.nextName(), nil
}

// SelectName consumes the next object member name if it matches one of
// opts, reporting its index; otherwise it consumes nothing and returns -1.
// When the token is double-quoted, matching is attempted directly against
// buffered bytes before falling back to a full decode.
func (r *Reader) SelectName(opts *Options) (index int, err error) {
	defer r.recoverErr(&err)
	p := r.peek()
	if p == peekedDoubleQuotedName {
		if i := r.source.Select(opts.quoted); i >= 0 {
			r.peeked = peekedNone
			r.scopes.setName(opts.strings[i])
			return i, nil
		}
	}
	if !p.isName() {
		panic(r.dataErr("expected NAME but found %v", p.kind()))
	}
	prev := r.scopes.name()
	name := r.nextName()
	i := opts.find(name)
	if i < 0 {
		// Keep the decoded name as the pending token and restore the path.
		r.peekedString, r.peeked = name, peekedBufferedName
		r.scopes.names[len(r.scopes.names)-1] = prev
	}
	return i, nil
}

// SkipName discards the next object member name without decoding it. It
// panics (as a *DataError, recovered into a normal error) if FailOnUnknown
// is set.
func (r *Reader) SkipName() (err error) {
	defer r.recoverErr(&err)
	if r.failOnUnknown {
		panic(r.dataErr("SkipName forbidden: FailOnUnknown is set"))
	}
	switch p := r.peek(); p {
	case peekedDoubleQuotedName:
		r.skipQuotedValue('"', io.Discard)
	case peekedSingleQuotedName:
		r.skipQuotedValue('\'', io.Discard)
	case peekedUnquotedName:
		r.skipUnquotedValue(io.Discard)
	case peekedBufferedName:
		// Already off the wire; nothing left to discard.
	default:
		panic(r.dataErr("expected NAME but found %v", p.kind()))
	}
	r.peeked = peekedNone
	r.scopes.stampNullName()
	return nil
}

// currentValueText returns the textual form of the current token without
// resetting r.peeked or advancing the path; callers finish that themselves.
func (r *Reader) currentValueText(p peekToken) string {
	switch p {
	case peekedNumber, peekedBuffered:
		return r.peekedString
	case peekedLong:
		return strconv.FormatInt(r.peekedLong, 10)
	case peekedDoubleQuoted:
		return r.nextQuotedValue('"')
	case peekedSingleQuoted:
		return r.nextQuotedValue('\'')
	case peekedUnquoted:
		return r.nextUnquotedValue()
	default:
		panic(r.dataErr("expected a value but found %v", p.kind()))
	}
}

func (r *Reader) nextString() string {
	p := r.peek()
	s := r.currentValueText(p)
	r.peeked = peekedNone
	r.afterValue()
	return s
}

// NextString consumes and decodes the next string value. As a lenient
// coercion, a number token is also accepted and returned in its textual
// form.
func (r *Reader) NextString() (s string, err error) {
	defer r.recoverErr(&err)
	return r.nextString(), nil
}

// SelectString mirrors SelectName for string values.
func (r *Reader) SelectString(opts *Options) (index int, err error) {
	defer r.recoverErr(&err)
	p := r.peek()
	if p == peekedDoubleQuoted {
		if i := r.source.Select(opts.quoted); i >= 0 {
			r.peeked = peekedNone
			r.afterValue()
			return i, nil
		}
	}
	if !p.isString() {
		panic(r.dataErr("expected STRING but found %v", p.kind()))
	}
	s := r.currentValueText(p)
	i := opts.find(s)
	if i < 0 {
		// Keep the decoded string as the pending token; the path is untouched.
		r.peekedString, r.peeked = s, peekedBuffered
		return -1, nil
	}
	r.peeked = peekedNone
	r.afterValue()
	return i, nil
}

func (r *Reader) nextBoolean() bool {
	p := r.peek()
	var result bool
	switch p {
	case peekedTrue:
		result = true
	case peekedFalse:
		result = false
	default:
		panic(r.dataErr("expected BOOLEAN but found %v", p.kind()))
	}
	r.peeked = peekedNone
	r.afterValue()
	return result
}

// NextBoolean consumes and decodes the next boolean value.
func (r *Reader) NextBoolean() (b bool, err error) {
	defer r.recoverErr(&err)
	return r.nextBoolean(), nil
}

// NextNull consumes the next null value.
func (r *Reader) NextNull() (err error) {
	defer r.recoverErr(&err)
	if p := r.peek(); p != peekedNull {
		panic(r.dataErr("expected NULL but found %v", p.kind()))
	}
	r.peeked = peekedNone
	r.afterValue()
	return nil
}

// NextLong consumes the next number value as a 64-bit integer. A value
// that is not integral (or does not fit) is a *DataError.
func (r *Reader) NextLong() (v int64, err error) {
	defer r.recoverErr(&err)
	p := r.peek()
	if p == peekedLong {
		v = r.peekedLong
		r.peeked = peekedNone
		r.afterValue()
		return v, nil
	}
	s := r.currentValueText(p)
	v, perr := strconv.ParseInt(s, 10, 64)
	if perr != nil {
		bi := decimalToInteger(r, s)
		if !bi.IsInt64() {
			panic(r.dataErr("value %q does not fit in an int64", s))
		}
		v = bi.Int64()
	}
	r.peeked = peekedNone
	r.afterValue()
	return v, nil
}

// decimalToInteger parses s (a JSON number's raw text, including exponent
// forms like "9223372036854775807e0") as an exact arbitrary-precision
// decimal and demands that it denote a whole number, matching the
// BigDecimal semantics integer coercion needs near the int64/int32
// boundary, where a float64 round trip through strconv.ParseFloat loses
// precision.
func decimalToInteger(r *Reader, s string) *big.Int {
	rat, ok := new(big.Rat).SetString(s)
	if !ok || !rat.IsInt() {
		panic(r.dataErr("value %q is not an integer", s))
	}
	return new(big.Int).Set(rat.Num())
}

// NextInt consumes the next number value as a 32-bit integer.
func (r *Reader) NextInt() (v int, err error) {
	defer r.recoverErr(&err)
	p := r.peek()
	if p == peekedLong {
		lv := r.peekedLong
		if lv < math.MinInt32 || lv > math.MaxInt32 {
			panic(r.dataErr("value %d does not fit in a 32-bit int", lv))
		}
		r.peeked = peekedNone
		r.afterValue()
		return int(lv), nil
	}
	s := r.currentValueText(p)
	iv, perr := strconv.ParseInt(s, 10, 32)
	if perr != nil {
		bi := decimalToInteger(r, s)
		if !bi.IsInt64() || bi.Int64() < math.MinInt32 || bi.Int64() > math.MaxInt32 {
			panic(r.dataErr("value %q does not fit in a 32-bit int", s))
		}
		iv = bi.Int64()
	}
	r.peeked = peekedNone
	r.afterValue()
	return int(iv), nil
}

// NextDouble consumes the next number value as a float64. NaN and
// infinities are only accepted in lenient mode.
func (r *Reader) NextDouble() (f float64, err error) {
	defer r.recoverErr(&err)
	p := r.peek()
	if p == peekedLong {
		v := r.peekedLong
		r.peeked = peekedNone
		r.afterValue()
		return float64(v), nil
	}
	s := r.currentValueText(p)
	f, perr := strconv.ParseFloat(s, 64)
	if perr != nil {
		panic(r.dataErr("value %q is not a number", s))
	}
	if !r.lenient && (math.IsNaN(f) || math.IsInf(f, 0)) {
		panic(r.dataErr("NaN and infinities not permitted unless lenient"))
	}
	r.peeked = peekedNone
	r.afterValue()
	return f, nil
}

// SkipValue discards the next value, of any kind and however deeply
// nested. It panics (recovered into a normal error) if FailOnUnknown is
// set.
func (r *Reader) SkipValue() (err error) {
	defer r.recoverErr(&err)
	if r.failOnUnknown {
		panic(r.dataErr("SkipValue forbidden: FailOnUnknown is set"))
	}
	r.readValue(io.Discard)
	return nil
}

// PromoteNameToValue treats the next object member name as if it were a
// bare string value instead, for callers that need to read a name in a
// context that otherwise expects a value.
func (r *Reader) PromoteNameToValue() (err error) {
	defer r.recoverErr(&err)
	has, herr := r.HasNext()
	if herr != nil {
		return herr
	}
	if has {
		r.peekedString = r.nextName()
		r.peeked = peekedBuffered
	}
	return nil
}

// NextSource returns an io.Reader over the exact bytes of the next value,
// without decoding it. The reader suspends normal operation until the
// returned source is fully drained (io.EOF); any other Reader method
// called first will drain it automatically.
func (r *Reader) NextSource() (src io.Reader, err error) {
	defer r.recoverErr(&err)
	return r.nextSource(), nil
}

func (r *Reader) nextSource() io.Reader {
	p := r.peek()
	var prefix []byte
	var state valueSourceState
	var depth int

	switch p {
	case peekedBeginObject:
		prefix, state, depth = []byte{'{'}, vsJSON, 1
	case peekedBeginArray:
		prefix, state, depth = []byte{'['}, vsJSON, 1
	case peekedDoubleQuoted:
		prefix, state = []byte{'"'}, vsDoubleQuoted
	case peekedSingleQuoted:
		prefix, state = []byte{'\''}, vsSingleQuoted
	case peekedTrue:
		prefix, state = []byte("true"), vsEndOfJSON
	case peekedFalse:
		prefix, state = []byte("false"), vsEndOfJSON
	case peekedNull:
		prefix, state = []byte("null"), vsEndOfJSON
	case peekedLong:
		prefix, state = []byte(strconv.FormatInt(r.peekedLong, 10)), vsEndOfJSON
	case peekedNumber:
		prefix, state = []byte(r.peekedString), vsEndOfJSON
	case peekedBuffered:
		prefix, state = []byte(Quote(r.peekedString)), vsEndOfJSON
	case peekedUnquoted:
		prefix, state = []byte(r.nextUnquotedValue()), vsEndOfJSON
	default:
		panic(r.stateErr("cannot take a value source at %v", p.kind()))
	}

	r.peeked = peekedNone
	r.afterValue()
	r.scopes.push(scopeStreamingValue)
	vs := newValueSource(r.source, prefix, state, depth)
	r.value = vs
	return vs
}

// PeekJSON returns an independent Reader positioned at the same point in
// the input, sharing the same underlying bytes without consuming them from
// r. It is used for speculative lookahead: read from the returned Reader,
// discard it, and r is unaffected.
func (r *Reader) PeekJSON() (fork *Reader, err error) {
	defer r.recoverErr(&err)
	if r.scopes.depth() > 0 && r.scopes.top() == scopeStreamingValue {
		panic(r.stateErr("cannot PeekJSON while a value source is open"))
	}
	return &Reader{
		source:        r.source.Peek(),
		scopes:        r.scopes.clone(),
		peeked:        r.peeked,
		peekedLong:    r.peekedLong,
		peekedString:  r.peekedString,
		lenient:       r.lenient,
		failOnUnknown: r.failOnUnknown,
	}, nil
}

// PeekDryRun offers a fast, unvalidated classification of the byte at the
// cursor, looking past whitespace and the ':'/',' separators a value may
// sit directly behind: a leading '"' reports DryRunString, a leading 'n'/'N'
// reports DryRunNull without checking the remaining letters, anything else
// (including EOF) reports DryRunOther. It is a hint for callers deciding how
// to dispatch, never a substitute for the validation NextNull or NextString
// perform, and unlike Peek it never consumes lenient-only syntax, never
// panics, and never advances the cursor: it only inspects already-buffered
// or freshly requested bytes by index, so a colon left dangling after a
// name is still there for the scope-aware scanner to consume normally on
// the next real Next* call.
func (r *Reader) PeekDryRun() (kind DryRunKind, err error) {
	defer r.recoverErr(&err)
	c, ok := r.dryRunLookahead()
	if !ok {
		return DryRunOther, nil
	}
	switch c {
	case '"':
		return DryRunString, nil
	case 'n', 'N':
		return DryRunNull, nil
	default:
		return DryRunOther, nil
	}
}

// NextValueIsNullDryRun reports PeekDryRun's fast null hint.
func (r *Reader) NextValueIsNullDryRun() (isNull bool, err error) {
	defer r.recoverErr(&err)
	k, kerr := r.PeekDryRun()
	if kerr != nil {
		return false, kerr
	}
	return k == DryRunNull, nil
}

// Close releases the underlying Source. It reports a *StateError if a
// value source obtained from NextSource is still open.
func (r *Reader) Close() (err error) {
	defer r.recoverErr(&err)
	if r.scopes.depth() > 0 && r.scopes.top() == scopeStreamingValue {
		panic(r.stateErr("cannot close while a value source is open"))
	}
	r.closed = true
	r.scopes.setTop(scopeClosed)
	return r.source.Close()
}
