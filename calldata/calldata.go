// Package calldata models the immutable input buffer a call carries:
// a fixed byte sequence, any mix of concrete and symbolic bytes, plus
// an optional name for each symbolic byte so a rendered solution can
// report which input variable produced which concrete value.
package calldata

import (
	"fmt"

	"github.com/williamberman/symbolic-stack-machines/val"
)

// Calldata is an immutable byte sequence read word-at-a-time during
// execution, zero-padded past its end the way CALLDATALOAD is defined
// to behave.
type Calldata struct {
	bytes []val.Byte
}

// Empty is the zero-length calldata buffer.
func Empty() Calldata { return Calldata{} }

// Concrete builds calldata from a raw byte slice.
func Concrete(raw []byte) Calldata {
	bytes := make([]val.Byte, len(raw))
	for i, b := range raw {
		bytes[i] = val.ConcreteByte(b)
	}
	return Calldata{bytes: bytes}
}

// Symbolic builds n bytes of calldata where byte i is a free variable
// named fmt.Sprintf("calldata[%d]", i), except that the first 4 bytes
// (the function selector) are fixed to selector when selector != nil.
// This naming is stable across runs so a path's solved model can be
// read back against the same variable names used in any dumped
// SMT-LIB2 script.
func Symbolic(selector []byte, n int) Calldata {
	bytes := make([]val.Byte, n)
	for i := 0; i < n; i++ {
		if selector != nil && i < len(selector) {
			bytes[i] = val.ConcreteByte(selector[i])
			continue
		}
		bytes[i] = val.SymbolicByte(fmt.Sprintf("calldata[%d]", i))
	}
	return Calldata{bytes: bytes}
}

// New builds calldata directly from a byte-expression slice, the most
// general constructor: each element may be concrete, a free byte
// variable, or a slice of some other symbolic word. Used to lay out
// calldata where an argument is a single named 32-byte word (e.g.
// ABI-decoded uint256 parameters) rather than per-byte variables, by
// passing val.SliceByte(&w, i) for i in 0..32.
func New(bytes []val.Byte) Calldata {
	out := make([]val.Byte, len(bytes))
	copy(out, bytes)
	return Calldata{bytes: out}
}

// NamedArg names a single 32-byte ABI argument living at a byte offset
// within calldata (the standard layout: 4-byte selector, then each
// word-sized argument back to back).
type NamedArg struct {
	Name   string
	Offset int
}

// SymbolicVars builds calldata with a concrete selector followed by one
// or more 32-byte arguments, each backed by a single named free Word
// rather than 32 independently named bytes -- so a path constraint can
// refer to the whole argument (e.g. x.Eq(y)) instead of reassembling it
// from individual byte variables. Any gap between arguments is
// zero-filled. Returns the calldata alongside a name-to-Word lookup
// for building constraints against the same variables.
func SymbolicVars(selector []byte, args []NamedArg) (Calldata, map[string]val.Word) {
	size := len(selector)
	for _, a := range args {
		if end := a.Offset + val.BytesInWord; end > size {
			size = end
		}
	}
	bytes := make([]val.Byte, size)
	for i := range bytes {
		bytes[i] = val.ZeroByte
	}
	for i, b := range selector {
		bytes[i] = val.ConcreteByte(b)
	}

	vars := make(map[string]val.Word, len(args))
	for _, a := range args {
		w := val.Sym(a.Name)
		vars[a.Name] = w
		for i := 0; i < val.BytesInWord; i++ {
			bytes[a.Offset+i] = val.SliceByte(&w, i)
		}
	}
	return New(bytes), vars
}

// Size is the number of bytes in the buffer.
func (c Calldata) Size() int { return len(c.bytes) }

// ReadWord loads the 32-byte big-endian word starting at offset,
// zero-padding any portion that runs past the end of the buffer, which
// matches the EVM's CALLDATALOAD semantics exactly.
func (c Calldata) ReadWord(offset val.Word) val.Word {
	o := offset.AsUsize()
	var bytes [32]val.Byte
	for i := 0; i < val.BytesInWord; i++ {
		idx := o + i
		if idx < len(c.bytes) {
			bytes[i] = c.bytes[idx]
		} else {
			bytes[i] = val.ZeroByte
		}
	}
	return val.Concat(bytes)
}

// Bytes returns a copy of the raw underlying byte expressions, mainly
// for rendering and selector/signature inspection.
func (c Calldata) Bytes() []val.Byte {
	out := make([]val.Byte, len(c.bytes))
	copy(out, c.bytes)
	return out
}
