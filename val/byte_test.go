package val

import "testing"

func TestByteEquality(t *testing.T) {
	if !ConcreteByte(5).Equal(ConcreteByte(5)) {
		t.Fatal("equal concrete bytes should compare equal")
	}
	if ConcreteByte(5).Equal(ConcreteByte(6)) {
		t.Fatal("different concrete bytes should not compare equal")
	}
	if !SymbolicByte("x").Equal(SymbolicByte("x")) {
		t.Fatal("same-named symbolic bytes should compare equal")
	}
	if SymbolicByte("x").Equal(SymbolicByte("y")) {
		t.Fatal("differently-named symbolic bytes should not compare equal")
	}

	w := Sym("w")
	if !SliceByte(&w, 3).Equal(SliceByte(&w, 3)) {
		t.Fatal("slices at the same index of equal words should compare equal")
	}
	if SliceByte(&w, 3).Equal(SliceByte(&w, 4)) {
		t.Fatal("slices at different indices should not compare equal")
	}
}

func TestConcreteByteCoercion(t *testing.T) {
	if ConcreteByte(9).AsUint8() != 9 {
		t.Fatal("concrete coercion should round-trip")
	}
}

func TestSymbolicByteCoercionPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("coercing a symbolic byte should panic")
		}
	}()
	SymbolicByte("x").AsUint8()
}
