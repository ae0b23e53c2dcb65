// Package val implements the symbolic value algebra: 8-bit Bytes and
// 256-bit Words, with constant folding applied at construction time so
// that concrete operands never produce a symbolic node.
package val

import "fmt"

// ByteKind tags the variant of a Byte.
type ByteKind uint8

const (
	// ByteConcrete is a literal byte, optionally carrying a stable label
	// used to bind it to a declaration in a dumped SMT-LIB2 script.
	ByteConcrete ByteKind = iota
	// ByteSymbolic is an opaque free variable named by a string.
	ByteSymbolic
	// ByteSlice is the byte at big-endian index Index within Word.
	ByteSlice
)

// Byte is a symbolic 8-bit value: a literal, a free variable, or a slice
// of a Word produced when a symbolic word is written to memory and later
// read back byte-wise.
type Byte struct {
	Kind  ByteKind
	Val   uint8
	Label string // ByteConcrete only; "" means unlabeled
	Name  string // ByteSymbolic only
	Word  *Word  // ByteSlice only
	Index int    // ByteSlice only, 0..31, big-endian
}

// ZeroByte is the canonical concrete zero byte.
var ZeroByte = Byte{Kind: ByteConcrete, Val: 0}

// ConcreteByte constructs an unlabeled literal byte.
func ConcreteByte(v uint8) Byte {
	return Byte{Kind: ByteConcrete, Val: v}
}

// LabeledByte constructs a literal byte tagged with a stable label.
func LabeledByte(v uint8, label string) Byte {
	return Byte{Kind: ByteConcrete, Val: v, Label: label}
}

// SymbolicByte constructs a free byte-wide variable.
func SymbolicByte(name string) Byte {
	return Byte{Kind: ByteSymbolic, Name: name}
}

// SliceByte constructs the byte expression referencing byte index idx
// (0 is most significant) of w.
func SliceByte(w *Word, idx int) Byte {
	if idx < 0 || idx > 31 {
		panic(fmt.Errorf("val: byte slice index out of range: %d", idx))
	}
	return Byte{Kind: ByteSlice, Word: w, Index: idx}
}

// AsUint8 coerces a Concrete byte to its literal value. Coercing any
// other variant is a programmer error: it panics, matching the
// "conversion to u8 succeeds only on the Concrete variant" invariant.
func (b Byte) AsUint8() uint8 {
	if b.Kind != ByteConcrete {
		panic(fmt.Errorf("val: cannot coerce non-concrete byte %s to uint8", b))
	}
	return b.Val
}

// IsConcrete reports whether b is a literal byte.
func (b Byte) IsConcrete() bool {
	return b.Kind == ByteConcrete
}

// Equal reports structural equality: variant tags and payloads match
// exactly. Labels participate in equality for Concrete bytes because
// they are part of the payload.
func (b Byte) Equal(o Byte) bool {
	if b.Kind != o.Kind {
		return false
	}
	switch b.Kind {
	case ByteConcrete:
		return b.Val == o.Val && b.Label == o.Label
	case ByteSymbolic:
		return b.Name == o.Name
	case ByteSlice:
		return b.Index == o.Index && b.Word.Equal(*o.Word)
	default:
		return false
	}
}

func (b Byte) String() string {
	switch b.Kind {
	case ByteConcrete:
		if b.Label != "" {
			return fmt.Sprintf("0x%02x<%s>", b.Val, b.Label)
		}
		return fmt.Sprintf("0x%02x", b.Val)
	case ByteSymbolic:
		return b.Name
	case ByteSlice:
		return fmt.Sprintf("slice(%s, %d)", b.Word, b.Index)
	default:
		return "<bad byte>"
	}
}
