// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package xjson

// peekToken is the scanner's single cached look-ahead classification. It is
// monotone: once set by doPeek, it is cleared only by a consuming operation.
type peekToken int

const (
	peekedNone peekToken = iota
	peekedBeginObject
	peekedEndObject
	peekedBeginArray
	peekedEndArray
	peekedTrue
	peekedFalse
	peekedNull
	peekedSingleQuoted
	peekedDoubleQuoted
	peekedUnquoted
	peekedBuffered // string value stashed in peekedString

	peekedSingleQuotedName
	peekedDoubleQuotedName
	peekedUnquotedName
	peekedBufferedName // string value stashed in peekedString

	peekedLong // value stashed in peekedLong
	peekedNumber
	peekedEOF
)

var peekTokenStr = [...]string{
	peekedNone:             "none",
	peekedBeginObject:      "BEGIN_OBJECT",
	peekedEndObject:        "END_OBJECT",
	peekedBeginArray:       "BEGIN_ARRAY",
	peekedEndArray:         "END_ARRAY",
	peekedTrue:             "true",
	peekedFalse:            "false",
	peekedNull:             "null",
	peekedSingleQuoted:     "single-quoted string",
	peekedDoubleQuoted:     "double-quoted string",
	peekedUnquoted:         "unquoted string",
	peekedBuffered:         "buffered string",
	peekedSingleQuotedName: "single-quoted name",
	peekedDoubleQuotedName: "double-quoted name",
	peekedUnquotedName:     "unquoted name",
	peekedBufferedName:     "buffered name",
	peekedLong:             "integer",
	peekedNumber:           "number",
	peekedEOF:              "END_DOCUMENT",
}

func (p peekToken) String() string {
	if int(p) < len(peekTokenStr) {
		return peekTokenStr[p]
	}
	return "invalid token"
}

func (p peekToken) isName() bool {
	return p >= peekedSingleQuotedName && p <= peekedBufferedName
}

func (p peekToken) isString() bool {
	switch p {
	case peekedSingleQuoted, peekedDoubleQuoted, peekedUnquoted, peekedBuffered:
		return true
	}
	return false
}

// Kind is the public token kind a caller sees from Reader.Peek.
type Kind int

// Constants defining the valid Kind values.
const (
	InvalidKind Kind = iota
	BeginObject
	EndObject
	BeginArray
	EndArray
	Name
	String
	Number
	Boolean
	Null
	EndDocument
)

var kindStr = [...]string{
	InvalidKind: "invalid",
	BeginObject: "BEGIN_OBJECT",
	EndObject:   "END_OBJECT",
	BeginArray:  "BEGIN_ARRAY",
	EndArray:    "END_ARRAY",
	Name:        "NAME",
	String:      "STRING",
	Number:      "NUMBER",
	Boolean:     "BOOLEAN",
	Null:        "NULL",
	EndDocument: "END_DOCUMENT",
}

func (k Kind) String() string {
	if int(k) < len(kindStr) {
		return kindStr[k]
	}
	return "invalid"
}

// kind maps an internal peek token to its public Kind, or panics if p is not
// a settled token (peekedNone is never observable by a caller).
func (p peekToken) kind() Kind {
	switch p {
	case peekedBeginObject:
		return BeginObject
	case peekedEndObject:
		return EndObject
	case peekedBeginArray:
		return BeginArray
	case peekedEndArray:
		return EndArray
	case peekedSingleQuotedName, peekedDoubleQuotedName, peekedUnquotedName, peekedBufferedName:
		return Name
	case peekedTrue, peekedFalse:
		return Boolean
	case peekedNull:
		return Null
	case peekedSingleQuoted, peekedDoubleQuoted, peekedUnquoted, peekedBuffered:
		return String
	case peekedLong, peekedNumber:
		return Number
	case peekedEOF:
		return EndDocument
	default:
		panic("xjson: unreachable peek token")
	}
}

// DryRunKind is the coarse classification returned by Reader.PeekDryRun. It
// is a fast hint over already-buffered bytes, not a validated token.
type DryRunKind int

// Constants defining the valid DryRunKind values.
const (
	DryRunOther DryRunKind = iota
	DryRunNull
	DryRunString
)
