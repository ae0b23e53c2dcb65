package val

import (
	"fmt"
	"math/big"
)

// WordKind tags the variant of a Word.
type WordKind uint8

const (
	WordConcrete WordKind = iota
	WordSymbol
	WordAdd
	WordMul
	WordSub
	WordDiv
	WordBitAnd
	WordBitOr
	WordShr
	WordLt
	WordLtEq
	WordGt
	WordSlt
	WordIte
	WordConcat
)

// BytesInWord is the width of a Word in bytes (256 bits).
const BytesInWord = 32

// Word is a symbolic 256-bit value, deeply structural, with constant
// folding applied by the constructors below whenever both operands of a
// binary op are concrete.
type Word struct {
	Kind WordKind
	C    *big.Int // WordConcrete: always in [0, 2^256)
	Name string   // WordSymbol
	L, R *Word    // binary arithmetic/bitwise/comparison ops
	Cond *Constraint
	Then *Word
	Else *Word   // WordIte
	Bytes *[32]Byte // WordConcat; index 0 is most significant byte
}

var (
	wordModulus = new(big.Int).Lsh(big.NewInt(1), 256)
	wordMax     = new(big.Int).Sub(wordModulus, big.NewInt(1))
	signBit     = new(big.Int).Lsh(big.NewInt(1), 255)
)

func normalize(x *big.Int) *big.Int {
	y := new(big.Int).Mod(x, wordModulus)
	if y.Sign() < 0 {
		y.Add(y, wordModulus)
	}
	return y
}

// C constructs a concrete word from an arbitrary-precision integer,
// wrapping modulo 2^256 (EVM words are unsigned 256-bit wraps).
func C(x *big.Int) Word {
	return Word{Kind: WordConcrete, C: normalize(x)}
}

// CUint64 constructs a concrete word from a uint64.
func CUint64(x uint64) Word {
	return C(new(big.Int).SetUint64(x))
}

// Zero is the concrete word 0.
func Zero() Word { return CUint64(0) }

// One is the concrete word 1.
func One() Word { return CUint64(1) }

// FalseWord and TrueWord are the EVM encodings of boolean results.
func FalseWord() Word { return Zero() }
func TrueWord() Word  { return One() }

// Sym constructs a free 256-bit variable.
func Sym(name string) Word {
	return Word{Kind: WordSymbol, Name: name}
}

func mkBinary(k WordKind, l, r Word) Word {
	lc, rc := l, r
	return *Shared(Word{Kind: k, L: &lc, R: &rc})
}

// IsConcrete reports whether w folded to a literal.
func (w Word) IsConcrete() bool { return w.Kind == WordConcrete }

// AsBigInt coerces a concrete word to its integer value. Coercing a
// symbolic word is a programmer error (e.g. jumping to a symbolic
// destination) and panics.
func (w Word) AsBigInt() *big.Int {
	if w.Kind != WordConcrete {
		panic(fmt.Errorf("val: cannot coerce symbolic word %s to a concrete integer", w))
	}
	return w.C
}

// AsUsize coerces a concrete word to a machine-sized offset/pc.
func (w Word) AsUsize() int {
	bi := w.AsBigInt()
	if !bi.IsUint64() {
		panic(fmt.Errorf("val: concrete word %s overflows a machine offset", w))
	}
	return int(bi.Uint64())
}

// ByteAt returns the byte at big-endian index i (0 = most significant)
// of a concrete word. Symbolic words have no byte decomposition; callers
// that need per-byte access to a symbolic word use SliceByte instead.
func (w Word) ByteAt(i int) uint8 {
	bi := w.AsBigInt()
	shift := uint(8 * (31 - i))
	shifted := new(big.Int).Rsh(bi, shift)
	return uint8(shifted.Uint64() & 0xff)
}

// Add folds to a concrete sum, wrapping mod 2^256, when both operands
// are concrete; otherwise it builds a symbolic Add node.
func Add(l, r Word) Word {
	if l.IsConcrete() && r.IsConcrete() {
		return C(new(big.Int).Add(l.C, r.C))
	}
	return mkBinary(WordAdd, l, r)
}

// Mul is the wrapping 256-bit product.
func Mul(l, r Word) Word {
	if l.IsConcrete() && r.IsConcrete() {
		return C(new(big.Int).Mul(l.C, r.C))
	}
	return mkBinary(WordMul, l, r)
}

// Sub is the wrapping 256-bit difference.
func Sub(l, r Word) Word {
	if l.IsConcrete() && r.IsConcrete() {
		return C(new(big.Int).Sub(l.C, r.C))
	}
	return mkBinary(WordSub, l, r)
}

// Div is unsigned integer division; division by (concrete) zero folds
// to zero per the EVM rule rather than panicking or folding to an error.
func Div(l, r Word) Word {
	if l.IsConcrete() && r.IsConcrete() {
		if r.C.Sign() == 0 {
			return Zero()
		}
		return C(new(big.Int).Div(l.C, r.C))
	}
	return mkBinary(WordDiv, l, r)
}

// BitAnd is bitwise AND.
func BitAnd(l, r Word) Word {
	if l.IsConcrete() && r.IsConcrete() {
		return C(new(big.Int).And(l.C, r.C))
	}
	return mkBinary(WordBitAnd, l, r)
}

// BitOr is bitwise OR.
func BitOr(l, r Word) Word {
	if l.IsConcrete() && r.IsConcrete() {
		return C(new(big.Int).Or(l.C, r.C))
	}
	return mkBinary(WordBitOr, l, r)
}

// Shr is the logical right shift. A shift of 256 or more folds to zero.
// When the shift amount is concrete and byte-aligned and value is a
// Concat whose surviving (high) bytes are all concrete, the result
// folds to a concrete word even though value itself is not fully
// concrete -- this is what lets a partially-symbolic CALLDATALOAD
// followed by `SHR 224` recover a concrete function selector.
func Shr(value, shift Word) Word {
	if shift.IsConcrete() && shift.C.Cmp(big.NewInt(256)) >= 0 {
		return Zero()
	}
	if value.IsConcrete() && shift.IsConcrete() {
		s := shift.C.Uint64()
		return C(new(big.Int).Rsh(value.C, uint(s)))
	}
	if shift.IsConcrete() && value.Kind == WordConcat {
		s := shift.C.Uint64()
		if s < 256 && s%8 == 0 {
			if folded, ok := foldShrConcat(*value.Bytes, int(s/8)); ok {
				return folded
			}
		}
	}
	return mkBinary(WordShr, value, shift)
}

func foldShrConcat(bytes [32]Byte, nDroppedBytes int) (Word, bool) {
	kept := 32 - nDroppedBytes
	for i := 0; i < kept; i++ {
		if !bytes[i].IsConcrete() {
			return Word{}, false
		}
	}
	var buf [32]byte
	for i := 0; i < kept; i++ {
		buf[nDroppedBytes+i] = bytes[i].AsUint8()
	}
	return C(new(big.Int).SetBytes(buf[:])), true
}

// Lt is unsigned less-than, folding to the 1/0 result word.
func Lt(l, r Word) Word {
	if l.IsConcrete() && r.IsConcrete() {
		return boolWord(l.C.Cmp(r.C) < 0)
	}
	return mkBinary(WordLt, l, r)
}

// LtEq is unsigned less-than-or-equal.
func LtEq(l, r Word) Word {
	if l.IsConcrete() && r.IsConcrete() {
		return boolWord(l.C.Cmp(r.C) <= 0)
	}
	return mkBinary(WordLtEq, l, r)
}

// Gt is unsigned greater-than.
func Gt(l, r Word) Word {
	if l.IsConcrete() && r.IsConcrete() {
		return boolWord(l.C.Cmp(r.C) > 0)
	}
	return mkBinary(WordGt, l, r)
}

// Slt is signed (two's complement) less-than.
func Slt(l, r Word) Word {
	if l.IsConcrete() && r.IsConcrete() {
		return boolWord(signed(l.C).Cmp(signed(r.C)) < 0)
	}
	return mkBinary(WordSlt, l, r)
}

func signed(x *big.Int) *big.Int {
	if x.Cmp(signBit) < 0 {
		return x
	}
	return new(big.Int).Sub(x, wordModulus)
}

func boolWord(b bool) Word {
	if b {
		return One()
	}
	return Zero()
}

// mkIte constructs the raw Ite node; callers go through Constraint.Ite
// so that the nested-ite rewrites in constraint.go apply.
func mkIte(cond Constraint, then, els Word) Word {
	t, e := then, els
	return *Shared(Word{Kind: WordIte, Cond: &cond, Then: &t, Else: &e})
}

// Concat assembles a word from 32 independent byte expressions, folding
// to a concrete word when every byte is concrete.
func Concat(bytes [32]Byte) Word {
	for _, b := range bytes {
		if !b.IsConcrete() {
			cp := bytes
			return *Shared(Word{Kind: WordConcat, Bytes: &cp})
		}
	}
	var buf [32]byte
	for i, b := range bytes {
		buf[i] = b.Val
	}
	return C(new(big.Int).SetBytes(buf[:]))
}

// Eq builds the word-equality constraint.
func (w Word) Eq(o Word) Constraint {
	return Constraint{Kind: ConstraintEq, L: &w, R: &o}
}

// EqWord is the EVM EQ opcode's result-as-word: it short-circuits to the
// 1/0 literal when both operands are identical or both concrete,
// otherwise builds an Ite around an equality constraint.
func EqWord(l, r Word) Word {
	if l.Equal(r) {
		return One()
	}
	if l.IsConcrete() && r.IsConcrete() {
		return boolWord(l.C.Cmp(r.C) == 0)
	}
	return l.Eq(r).Ite(One(), Zero())
}

// Equal is deep structural equality.
func (w Word) Equal(o Word) bool {
	if w.Kind != o.Kind {
		return false
	}
	switch w.Kind {
	case WordConcrete:
		return w.C.Cmp(o.C) == 0
	case WordSymbol:
		return w.Name == o.Name
	case WordAdd, WordMul, WordSub, WordDiv, WordBitAnd, WordBitOr, WordShr,
		WordLt, WordLtEq, WordGt, WordSlt:
		return w.L.Equal(*o.L) && w.R.Equal(*o.R)
	case WordIte:
		return w.Cond.Equal(*o.Cond) && w.Then.Equal(*o.Then) && w.Else.Equal(*o.Else)
	case WordConcat:
		for i := range w.Bytes {
			if !w.Bytes[i].Equal(o.Bytes[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func (w Word) String() string {
	switch w.Kind {
	case WordConcrete:
		return fmt.Sprintf("0x%x", w.C)
	case WordSymbol:
		return w.Name
	case WordAdd:
		return fmt.Sprintf("(%s + %s)", w.L, w.R)
	case WordMul:
		return fmt.Sprintf("(%s * %s)", w.L, w.R)
	case WordSub:
		return fmt.Sprintf("(%s - %s)", w.L, w.R)
	case WordDiv:
		return fmt.Sprintf("(%s / %s)", w.L, w.R)
	case WordBitAnd:
		return fmt.Sprintf("(%s & %s)", w.L, w.R)
	case WordBitOr:
		return fmt.Sprintf("(%s | %s)", w.L, w.R)
	case WordShr:
		return fmt.Sprintf("(%s >> %s)", w.L, w.R)
	case WordLt:
		return fmt.Sprintf("(%s < %s)", w.L, w.R)
	case WordLtEq:
		return fmt.Sprintf("(%s <= %s)", w.L, w.R)
	case WordGt:
		return fmt.Sprintf("(%s > %s)", w.L, w.R)
	case WordSlt:
		return fmt.Sprintf("(%s s< %s)", w.L, w.R)
	case WordIte:
		return fmt.Sprintf("(ite %s %s %s)", w.Cond, w.Then, w.Else)
	case WordConcat:
		return fmt.Sprintf("(concat %v)", w.Bytes[:])
	default:
		return "<bad word>"
	}
}
