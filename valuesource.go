// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package xjson

import "io"

// valueSourceState is the 4-case state machine driving a valueSource
// (component G, spec.md §3/§4.G).
type valueSourceState int

const (
	vsJSON valueSourceState = iota
	vsDoubleQuoted
	vsSingleQuoted
	vsEndOfJSON
)

// valueSource is the byte stream handed to callers by Reader.NextSource. It
// shares the reader's underlying Source: only one of the reader and the
// valueSource may advance the shared position at a time, which is why the
// reader suspends itself (scopeStreamingValue) until the valueSource is
// drained.
//
// There is no direct teacher analogue for this component; it is grounded on
// the "never consume past what is needed" discipline of the teacher's
// Scanner.unrune/require pair (scanner.go), applied to the state machine
// spec.md §4.G describes for the original's JsonValueSource.
type valueSource struct {
	source Source
	prefix []byte // bytes the reader already consumed before creating this source
	state  valueSourceState
	depth  int // nested {[ counter; 0 for a bare top-level string or primitive
	escape bool
}

func newValueSource(source Source, prefix []byte, state valueSourceState, depth int) *valueSource {
	return &valueSource{source: source, prefix: prefix, state: state, depth: depth}
}

// Read implements io.Reader.
func (v *valueSource) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) && len(v.prefix) > 0 {
		p[n] = v.prefix[0]
		v.prefix = v.prefix[1:]
		n++
	}
	for n < len(p) {
		if v.state == vsEndOfJSON {
			break
		}
		if !v.source.Request(1) {
			return n, io.ErrUnexpectedEOF
		}
		b := v.source.GetByte(0)
		v.source.Skip(1)
		v.step(b)
		p[n] = b
		n++
	}
	if n == 0 && v.state == vsEndOfJSON {
		return 0, io.EOF
	}
	return n, nil
}

// step advances the state machine by one consumed byte.
func (v *valueSource) step(b byte) {
	switch v.state {
	case vsJSON:
		switch b {
		case '{', '[':
			v.depth++
		case '}', ']':
			v.depth--
			if v.depth == 0 {
				v.state = vsEndOfJSON
			}
		case '"':
			v.state = vsDoubleQuoted
		case '\'':
			v.state = vsSingleQuoted
		}
	case vsDoubleQuoted, vsSingleQuoted:
		quote := byte('"')
		if v.state == vsSingleQuoted {
			quote = '\''
		}
		switch {
		case v.escape:
			v.escape = false
		case b == '\\':
			v.escape = true
		case b == quote:
			if v.depth == 0 {
				v.state = vsEndOfJSON
			} else {
				v.state = vsJSON
			}
		}
	}
}

// discard drains the remainder of the value without returning it to a
// caller, used when a reader operation forces the value sub-source to
// finish. A truncated value surfaces as io.ErrUnexpectedEOF.
func (v *valueSource) discard() error {
	var buf [512]byte
	for {
		_, err := v.Read(buf[:])
		if err == io.EOF {
			return nil
		} else if err != nil {
			return err
		}
	}
}
