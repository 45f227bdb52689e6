// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package xjson

import (
	"bytes"
	"io"
)

// sourceArena is the shared growable buffer behind a byteSource and any
// forks obtained from its Peek method. Grounded on the teacher's
// *bufio.Reader-backed Scanner (scanner.go), generalized from a rune cursor
// with a single position to a byte buffer shared by multiple cursors.
type sourceArena struct {
	r    io.Reader
	data []byte
	err  error // sticky, non-EOF only
	eof  bool
	fork int // count of live peek forks; trimming pauses while > 0
}

const fillChunk = 4096

func (a *sourceArena) fill() {
	if a.err != nil || a.eof {
		return
	}
	buf := make([]byte, fillChunk)
	n, err := a.r.Read(buf)
	if n > 0 {
		a.data = append(a.data, buf[:n]...)
	}
	if err != nil {
		if err == io.EOF {
			a.eof = true
		} else {
			a.err = err
		}
	}
}

// byteSource is the concrete Source implementation over an io.Reader.
type byteSource struct {
	arena *sourceArena
	pos   int
	fork  bool
}

// NewSource returns a Source that reads from r, growing its buffer on
// demand. r is closed (if it implements io.Closer) when the returned
// Source's Close method is called, unless the Source is itself a fork
// obtained from Peek.
func NewSource(r io.Reader) Source {
	return &byteSource{arena: &sourceArena{r: r}}
}

func (s *byteSource) Request(n int) bool {
	for len(s.arena.data)-s.pos < n {
		if s.arena.err != nil || s.arena.eof {
			return len(s.arena.data)-s.pos >= n
		}
		s.arena.fill()
	}
	return true
}

func (s *byteSource) GetByte(i int) byte { return s.arena.data[s.pos+i] }

func (s *byteSource) ReadByte() byte {
	b := s.arena.data[s.pos]
	s.pos++
	s.trim()
	return b
}

func (s *byteSource) ReadUTF8(n int) string {
	str := string(s.arena.data[s.pos : s.pos+n])
	s.pos += n
	s.trim()
	return str
}

func (s *byteSource) Skip(n int) {
	s.pos += n
	s.trim()
}

func (s *byteSource) IndexOfElement(set []byte) int64 {
	start := 0
	for {
		if idx := bytes.IndexAny(s.arena.data[s.pos+start:], string(set)); idx >= 0 {
			return int64(start + idx)
		}
		start = len(s.arena.data) - s.pos
		if s.arena.err != nil || s.arena.eof {
			return -1
		}
		s.arena.fill()
	}
}

func (s *byteSource) IndexOf(seq []byte) int64 {
	for {
		if idx := bytes.Index(s.arena.data[s.pos:], seq); idx >= 0 {
			return int64(idx)
		}
		if s.arena.err != nil || s.arena.eof {
			return -1
		}
		prevLen := len(s.arena.data)
		s.arena.fill()
		if len(s.arena.data) == prevLen {
			return -1 // fill made no progress and reported no error; avoid spinning
		}
	}
}

// Select matches the longest of options against the buffered bytes and
// consumes it, per spec.md §4.D and §12's longest-match requirement.
func (s *byteSource) Select(options [][]byte) int {
	best, bestLen := -1, -1
	for i, opt := range options {
		if !s.Request(len(opt)) {
			continue
		}
		if bytes.Equal(s.arena.data[s.pos:s.pos+len(opt)], opt) && len(opt) > bestLen {
			best, bestLen = i, len(opt)
		}
	}
	if best >= 0 {
		s.Skip(bestLen)
	}
	return best
}

func (s *byteSource) Peek() Source {
	s.arena.fork++
	return &byteSource{arena: s.arena, pos: s.pos, fork: true}
}

func (s *byteSource) Size() int { return len(s.arena.data) - s.pos }

func (s *byteSource) Err() error { return s.arena.err }

func (s *byteSource) Close() error {
	if s.fork {
		s.arena.fork--
		return nil
	}
	if c, ok := s.arena.r.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// trim discards bytes already consumed by every live cursor. It is only
// safe to shrink the shared buffer while no fork is outstanding, since a
// fork's position is only meaningful relative to the current data slice.
func (s *byteSource) trim() {
	if s.fork || s.arena.fork > 0 || s.pos == 0 {
		return
	}
	s.arena.data = append(s.arena.data[:0], s.arena.data[s.pos:]...)
	s.pos = 0
}
