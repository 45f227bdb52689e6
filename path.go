// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package xjson

import (
	"fmt"
	"strings"
)

// scopeKind is a frame on the reader's nesting stack, enumerating where in
// the grammar the parser currently sits. See spec.md §3.
type scopeKind int

const (
	scopeEmptyDocument scopeKind = iota
	scopeNonemptyDocument
	scopeEmptyObject
	scopeNonemptyObject
	scopeDanglingName
	scopeEmptyArray
	scopeNonemptyArray
	scopeStreamingValue
	scopeClosed
)

func (k scopeKind) String() string {
	switch k {
	case scopeEmptyDocument:
		return "empty document"
	case scopeNonemptyDocument:
		return "nonempty document"
	case scopeEmptyObject:
		return "empty object"
	case scopeNonemptyObject:
		return "nonempty object"
	case scopeDanglingName:
		return "dangling name"
	case scopeEmptyArray:
		return "empty array"
	case scopeNonemptyArray:
		return "nonempty array"
	case scopeStreamingValue:
		return "streaming value"
	case scopeClosed:
		return "closed"
	default:
		return "invalid scope"
	}
}

// maxDepth bounds the nesting the scope stack will accept. Exceeding it is a
// structural error, not an out-of-memory condition: it catches runaway or
// adversarial input long before the process actually runs out of stack or
// heap.
const maxDepth = 256

// A scopeStack tracks the reader's nesting, the current object key or array
// index at each level, and the streaming-value frame pushed by NextSource.
//
// It is grounded on the arena-copy value stack of the teacher's
// ast/parser.go parseHandler (deleted, see DESIGN.md), generalized here from
// a stack of parsed values to a stack of scope kinds with parallel path
// state.
type scopeStack struct {
	kinds   []scopeKind
	names   []*string // valid for object/dangling-name scopes; nil = unknown
	indices []int     // valid for array scopes
}

func newScopeStack() *scopeStack {
	s := &scopeStack{
		kinds:   make([]scopeKind, 0, 16),
		names:   make([]*string, 0, 16),
		indices: make([]int, 0, 16),
	}
	s.kinds = append(s.kinds, scopeEmptyDocument)
	s.names = append(s.names, nil)
	s.indices = append(s.indices, 0)
	return s
}

// push reserves a new path slot and adds a scope frame of kind k.
// It panics with a *StateError if doing so would exceed maxDepth; callers
// at the Reader boundary recover this into a normal returned error.
func (s *scopeStack) push(k scopeKind) {
	if len(s.kinds) >= maxDepth {
		panic(stateErrorf(s.path(), "nesting too deep (limit %d)", maxDepth))
	}
	s.kinds = append(s.kinds, k)
	s.names = append(s.names, nil)
	s.indices = append(s.indices, 0)
}

// pop discards the top scope frame.
func (s *scopeStack) pop() {
	n := len(s.kinds) - 1
	s.kinds = s.kinds[:n]
	s.names = s.names[:n]
	s.indices = s.indices[:n]
}

func (s *scopeStack) depth() int          { return len(s.kinds) }
func (s *scopeStack) top() scopeKind      { return s.kinds[len(s.kinds)-1] }
func (s *scopeStack) setTop(k scopeKind)  { s.kinds[len(s.kinds)-1] = k }
func (s *scopeStack) index() int          { return s.indices[len(s.indices)-1] }
func (s *scopeStack) setIndex(i int)      { s.indices[len(s.indices)-1] = i }
func (s *scopeStack) bumpIndex()          { s.indices[len(s.indices)-1]++ }
func (s *scopeStack) setName(name string) { s.names[len(s.names)-1] = &name }

// stampNullName sets the current path name to the literal string "null", as
// required after skipName and after a streamed/skipped value completes at
// object scope (spec.md §3 invariants).
func (s *scopeStack) stampNullName() {
	null := "null"
	s.names[len(s.names)-1] = &null
}

// name returns the current path name, or nil if it is unknown.
func (s *scopeStack) name() *string { return s.names[len(s.names)-1] }

// at/setKindAt/setNameAt/bumpIndexAt address a specific frame by its index
// in the stack; doPeek reads the top frame through at.
func (s *scopeStack) at(i int) scopeKind           { return s.kinds[i] }
func (s *scopeStack) setKindAt(i int, k scopeKind) { s.kinds[i] = k }
func (s *scopeStack) setNameAt(i int, name string) { s.names[i] = &name }
func (s *scopeStack) bumpIndexAt(i int)            { s.indices[i]++ }

// path renders a JSONPath-like string per spec.md §4.B: object frames
// contribute ".<name>" (or ".null" when the name is unknown or skipped),
// array frames contribute "[<index>]", the document root contributes "$".
func (s *scopeStack) path() string {
	var b strings.Builder
	b.WriteByte('$')
	for i, k := range s.kinds {
		switch k {
		case scopeEmptyObject, scopeNonemptyObject, scopeDanglingName:
			b.WriteByte('.')
			if n := s.names[i]; n != nil {
				b.WriteString(*n)
			} else {
				b.WriteString("null")
			}
		case scopeEmptyArray, scopeNonemptyArray, scopeStreamingValue:
			// A streaming-value frame inherits the index of its parent array,
			// so it renders as if the value were already in place.
			if k == scopeStreamingValue {
				continue
			}
			fmt.Fprintf(&b, "[%d]", s.indices[i])
		}
	}
	return b.String()
}

// clone returns an independent deep copy of the stack, used by Reader.PeekJSON.
func (s *scopeStack) clone() *scopeStack {
	c := &scopeStack{
		kinds:   append([]scopeKind(nil), s.kinds...),
		names:   append([]*string(nil), s.names...),
		indices: append([]int(nil), s.indices...),
	}
	for i, n := range c.names {
		if n != nil {
			cp := *n
			c.names[i] = &cp
		}
	}
	return c
}
