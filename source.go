// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package xjson

// Source is the byte-source contract the scanner requires from any
// refillable buffered byte stream (component A, spec.md §4.A). The scanner
// never owns a transport directly; it only ever talks to a Source.
//
// This is deliberately narrower than io.Reader: apart from the searching
// methods, every method either peeks at already-buffered bytes or consumes
// a number of bytes the caller has already confirmed (via Request) are
// buffered. Only Request, IndexOfElement, IndexOf and Select refill from
// the underlying transport, so only they can block.
type Source interface {
	// Request ensures at least n bytes are buffered, growing the buffer by
	// reading from the underlying transport as needed, and reports whether
	// that many bytes are now available. A false result means EOF; check
	// Err to distinguish a clean EOF from a transport error.
	Request(n int) bool

	// GetByte returns the i-th buffered byte without consuming it. The
	// caller must have called Request(i+1) (or more) successfully first.
	GetByte(i int) byte

	// ReadByte consumes and returns the first buffered byte.
	ReadByte() byte

	// ReadUTF8 consumes and returns the first n buffered bytes as a string.
	ReadUTF8(n int) string

	// Skip discards the first n buffered bytes.
	Skip(n int)

	// IndexOfElement returns the offset, relative to the current position,
	// of the first buffered byte belonging to set, refilling as necessary.
	// It returns -1 if the source is exhausted with no match.
	IndexOfElement(set []byte) int64

	// IndexOf returns the offset, relative to the current position, of the
	// first occurrence of seq, refilling as necessary. It returns -1 if the
	// source is exhausted with no match.
	IndexOf(seq []byte) int64

	// Select matches the longest of options against the buffered bytes,
	// consumes it, and returns its index, or returns -1 and consumes
	// nothing if none match. Each option must end with its own terminator
	// byte (see Options).
	Select(options [][]byte) int

	// Peek returns an independent view over the same underlying bytes,
	// positioned at the current offset. Consuming from the returned Source
	// does not advance s, and vice versa, but bytes fetched by either from
	// the underlying transport are visible to both.
	Peek() Source

	// Size reports the number of bytes currently buffered ahead of the
	// current position.
	Size() int

	// Err reports the first non-EOF error encountered while refilling, if
	// any occurred.
	Err() error

	// Close releases the underlying transport, if this Source owns one.
	Close() error
}
