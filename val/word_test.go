package val

import (
	"math/big"
	"testing"
)

func big256(lo uint64) *big.Int { return new(big.Int).SetUint64(lo) }

func TestConstantFolding(t *testing.T) {
	pairs := [][2]uint64{{0, 0}, {1, 0}, {0, 1}, {5, 3}, {3, 5}, {1000, 7}}

	for _, p := range pairs {
		a, b := CUint64(p[0]), CUint64(p[1])

		if got := Add(a, b); !got.IsConcrete() || got.AsBigInt().Uint64() != p[0]+p[1] {
			t.Errorf("Add(%d,%d) = %s, want concrete %d", p[0], p[1], got, p[0]+p[1])
		}
		if got := Mul(a, b); !got.IsConcrete() || got.AsBigInt().Uint64() != p[0]*p[1] {
			t.Errorf("Mul(%d,%d) = %s, want concrete %d", p[0], p[1], got, p[0]*p[1])
		}
		if got := Sub(a, b); !got.IsConcrete() {
			t.Errorf("Sub(%d,%d) = %s, want concrete", p[0], p[1], got)
		}
		if got := Div(a, b); !got.IsConcrete() {
			t.Errorf("Div(%d,%d) = %s, want concrete", p[0], p[1], got)
		}
	}
}

func TestDivByZeroFoldsToZero(t *testing.T) {
	got := Div(CUint64(42), Zero())
	if !got.Equal(Zero()) {
		t.Fatalf("Div(42,0) = %s, want 0", got)
	}
}

func TestSubWraps(t *testing.T) {
	got := Sub(Zero(), One())
	want := C(new(big.Int).Sub(wordModulus, big.NewInt(1)))
	if !got.Equal(want) {
		t.Fatalf("0-1 = %s, want %s", got, want)
	}
}

func TestShrFoldsShiftOf256OrMore(t *testing.T) {
	got := Shr(Sym("x"), CUint64(256))
	if !got.Equal(Zero()) {
		t.Fatalf("Shr(x, 256) = %s, want 0", got)
	}
	got = Shr(Sym("x"), CUint64(1000))
	if !got.Equal(Zero()) {
		t.Fatalf("Shr(x, 1000) = %s, want 0", got)
	}
}

func TestShrConcreteFolds(t *testing.T) {
	got := Shr(CUint64(256), CUint64(4))
	want := CUint64(16)
	if !got.Equal(want) {
		t.Fatalf("Shr(256,4) = %s, want %s", got, want)
	}
}

// Scenario 6: SHR constant-folding across a partially-concrete Concat.
func TestShrFoldsConcatWithConcreteTopBytes(t *testing.T) {
	var bytes [32]Byte
	bytes[0] = ConcreteByte(0x01)
	bytes[1] = ConcreteByte(0x02)
	bytes[2] = ConcreteByte(0x03)
	bytes[3] = ConcreteByte(0x04)
	for i := 4; i < 32; i++ {
		bytes[i] = SymbolicByte("calldata")
	}
	word := Concat(bytes)
	if word.IsConcrete() {
		t.Fatalf("expected Concat with symbolic tail to stay symbolic")
	}

	got := Shr(word, CUint64(224))
	want := CUint64(0x01020304)
	if !got.Equal(want) {
		t.Fatalf("Shr(concat, 224) = %s, want %s (16909060)", got, want)
	}
}

func TestSignedLessThan(t *testing.T) {
	negOne := C(new(big.Int).Sub(wordModulus, big.NewInt(1))) // 2^256 - 1, i.e. -1
	cases := []struct {
		l, r Word
		want bool
	}{
		{l: negOne, r: Zero(), want: true},     // -1 < 0
		{l: Zero(), r: negOne, want: false},    // 0 < -1 is false
		{l: CUint64(1), r: CUint64(2), want: true},
	}

	for _, c := range cases {
		got := Slt(c.l, c.r)
		want := boolWord(c.want)
		if !got.Equal(want) {
			t.Errorf("Slt(%s,%s) = %s, want %s", c.l, c.r, got, want)
		}
	}
}

func TestEqWordShortCircuits(t *testing.T) {
	x := Sym("x")
	if got := EqWord(x, x); !got.Equal(One()) {
		t.Fatalf("EqWord(x,x) = %s, want 1", got)
	}
	if got := EqWord(CUint64(3), CUint64(3)); !got.Equal(One()) {
		t.Fatalf("EqWord(3,3) = %s, want 1", got)
	}
	if got := EqWord(CUint64(3), CUint64(4)); !got.Equal(Zero()) {
		t.Fatalf("EqWord(3,4) = %s, want 0", got)
	}
	// Distinct symbolic operands build an Ite node, not a 1/0 literal.
	got := EqWord(Sym("x"), Sym("y"))
	if got.Kind != WordIte {
		t.Fatalf("EqWord(x,y) = %s, want an Ite node", got)
	}
}

func TestConcatFoldsWhenAllBytesConcrete(t *testing.T) {
	var bytes [32]Byte
	for i := range bytes {
		bytes[i] = ConcreteByte(uint8(i))
	}
	got := Concat(bytes)
	if !got.IsConcrete() {
		t.Fatalf("Concat of all-concrete bytes should fold, got %s", got)
	}
}

func TestByteAtIsBigEndian(t *testing.T) {
	w := CUint64(0x0102)
	if w.ByteAt(31) != 0x02 {
		t.Fatalf("ByteAt(31) = %x, want 0x02 (least significant)", w.ByteAt(31))
	}
	if w.ByteAt(30) != 0x01 {
		t.Fatalf("ByteAt(30) = %x, want 0x01", w.ByteAt(30))
	}
	if w.ByteAt(0) != 0x00 {
		t.Fatalf("ByteAt(0) = %x, want 0x00 (most significant, unset)", w.ByteAt(0))
	}
}
