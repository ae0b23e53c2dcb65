// Package memory implements the machine's byte-addressed memory: a
// sequence that auto-extends on word writes and returns either a
// concrete word or a Concat of per-byte expressions on read, depending
// on whether every covered byte happens to be concrete.
package memory

import (
	"fmt"

	"github.com/williamberman/symbolic-stack-machines/val"
)

// Memory is an immutable byte sequence. The zero value is empty memory.
// Writes clone the backing slice (see spec.md "Design Notes": a plain
// vector with full clone is an explicitly sanctioned alternative to a
// persistent tree when the target language lacks one; this package
// takes that option since Go's standard library has no persistent
// vector and bringing in a third-party one is unwarranted for a single
// byte array).
type Memory struct {
	bytes []val.Byte
}

// New returns empty memory.
func New() Memory { return Memory{} }

// Len is the current byte length of memory.
func (m Memory) Len() int { return len(m.bytes) }

// ReadWord loads the 32-byte big-endian word starting at offset. Every
// covered byte must already exist; reading past the current length is a
// programmer error (memory is not auto-extended on read).
func (m Memory) ReadWord(offset val.Word) val.Word {
	o := offset.AsUsize()
	if o+val.BytesInWord > len(m.bytes) {
		panic(fmt.Errorf("memory: read out of bounds at offset %d (len %d)", o, len(m.bytes)))
	}
	var bytes [32]val.Byte
	copy(bytes[:], m.bytes[o:o+val.BytesInWord])
	return val.Concat(bytes)
}

// WriteWord stores value as 32 big-endian bytes starting at offset,
// zero-extending memory first if needed. Per spec.md section 4.8, bytes
// are written most-significant-first: byte o+i becomes byte index i of
// value (0 = most significant).
func (m Memory) WriteWord(offset, value val.Word) Memory {
	o := offset.AsUsize()
	need := o + val.BytesInWord

	newLen := len(m.bytes)
	if need > newLen {
		newLen = need
	}
	newBytes := make([]val.Byte, newLen) // zero value of val.Byte is the concrete zero byte
	copy(newBytes, m.bytes)

	if value.IsConcrete() {
		for i := 0; i < val.BytesInWord; i++ {
			newBytes[o+i] = val.ConcreteByte(value.ByteAt(i))
		}
	} else {
		v := value
		for i := 0; i < val.BytesInWord; i++ {
			newBytes[o+i] = val.SliceByte(&v, i)
		}
	}

	return Memory{bytes: newBytes}
}

// ReadBytes returns a raw, unaltered copy of length bytes starting at
// offset. Reading past the current length is a programmer error.
func (m Memory) ReadBytes(offset, length int) []val.Byte {
	if offset < 0 || length < 0 || offset+length > len(m.bytes) {
		panic(fmt.Errorf("memory: byte read out of bounds [%d:%d] (len %d)", offset, offset+length, len(m.bytes)))
	}
	out := make([]val.Byte, length)
	copy(out, m.bytes[offset:offset+length])
	return out
}
