// Package stack implements the machine's persistent operand stack: a
// singly-linked sequence of words where push, pop and peek share the
// unchanged suffix across forks, giving each fork of a machine state an
// O(1) clone.
package stack

import (
	"fmt"

	"github.com/williamberman/symbolic-stack-machines/val"
)

type node struct {
	val  val.Word
	next *node
	len  int
}

// Stack is an immutable operand stack. The zero value is the empty
// stack.
type Stack struct {
	top *node
}

// New returns an empty stack.
func New() Stack { return Stack{} }

// Len reports the number of words on the stack.
func (s Stack) Len() int {
	if s.top == nil {
		return 0
	}
	return s.top.len
}

// Push returns a new stack with w on top. The receiver is unmodified;
// the new stack shares its entire suffix with it.
func (s Stack) Push(w val.Word) Stack {
	n := &node{val: w, next: s.top, len: s.Len() + 1}
	return Stack{top: n}
}

// Pop returns the top word and the stack beneath it. Popping an empty
// stack is a programmer error: it panics.
func (s Stack) Pop() (val.Word, Stack) {
	if s.top == nil {
		panic(fmt.Errorf("stack: pop of empty stack"))
	}
	return s.top.val, Stack{top: s.top.next}
}

// Peek returns the top word without removing it.
func (s Stack) Peek() val.Word {
	return s.PeekN(0)
}

// PeekN returns the word k positions from the top (0 is the top).
// Underflowing is a programmer error: it panics.
func (s Stack) PeekN(k int) val.Word {
	n := s.nodeAt(k)
	return n.val
}

// Set returns a new stack with the word k positions from the top
// replaced by w, sharing every node below the replaced position.
func (s Stack) Set(k int, w val.Word) Stack {
	path := make([]*node, 0, k+1)
	n := s.top
	for i := 0; i <= k; i++ {
		if n == nil {
			panic(fmt.Errorf("stack: set out of range at depth %d", k))
		}
		path = append(path, n)
		n = n.next
	}

	cur := &node{val: w, next: path[k].next, len: path[k].len}
	for i := k - 1; i >= 0; i-- {
		cur = &node{val: path[i].val, next: cur, len: path[i].len}
	}
	return Stack{top: cur}
}

func (s Stack) nodeAt(k int) *node {
	n := s.top
	for i := 0; i < k; i++ {
		if n == nil {
			panic(fmt.Errorf("stack: peek out of range at depth %d", k))
		}
		n = n.next
	}
	if n == nil {
		panic(fmt.Errorf("stack: peek out of range at depth %d", k))
	}
	return n
}

// Words returns the stack contents top-first, mainly for debugging and
// tests.
func (s Stack) Words() []val.Word {
	out := make([]val.Word, 0, s.Len())
	for n := s.top; n != nil; n = n.next {
		out = append(out, n.val)
	}
	return out
}
