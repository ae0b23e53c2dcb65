// Package smt translates the value algebra to bit-vector formulas,
// invokes Z3 to check path feasibility, and optionally archives every
// invocation as an SMT-LIB2 script.
package smt

import (
	"fmt"

	z3 "github.com/aclements/go-z3/z3"

	"github.com/williamberman/symbolic-stack-machines/val"
)

const (
	wordBits = 256
	byteBits = 8
)

// translator caches a Z3 bit-vector per distinct free variable name so
// that two references to the same symbolic word or byte produce the
// same Z3 constant rather than two independently-named ones.
type translator struct {
	ctx      *z3.Context
	wordVars map[string]z3.BV
	byteVars map[string]z3.BV
}

func newTranslator(ctx *z3.Context) *translator {
	return &translator{
		ctx:      ctx,
		wordVars: map[string]z3.BV{},
		byteVars: map[string]z3.BV{},
	}
}

func (tr *translator) word(w val.Word) z3.BV {
	switch w.Kind {
	case val.WordConcrete:
		return wordConst(tr.ctx, w)
	case val.WordSymbol:
		if bv, ok := tr.wordVars[w.Name]; ok {
			return bv
		}
		bv := tr.ctx.Const(w.Name, tr.ctx.BVSort(wordBits)).(z3.BV)
		tr.wordVars[w.Name] = bv
		return bv
	case val.WordAdd:
		return tr.word(*w.L).Add(tr.word(*w.R))
	case val.WordMul:
		return tr.word(*w.L).Mul(tr.word(*w.R))
	case val.WordSub:
		return tr.word(*w.L).Sub(tr.word(*w.R))
	case val.WordDiv:
		return tr.word(*w.L).UDiv(tr.word(*w.R))
	case val.WordBitAnd:
		return tr.word(*w.L).And(tr.word(*w.R))
	case val.WordBitOr:
		return tr.word(*w.L).Or(tr.word(*w.R))
	case val.WordShr:
		return tr.word(*w.L).URsh(tr.word(*w.R))
	case val.WordLt:
		return tr.boolToBV(tr.word(*w.L).ULT(tr.word(*w.R)))
	case val.WordGt:
		return tr.boolToBV(tr.word(*w.R).ULT(tr.word(*w.L)))
	case val.WordLtEq:
		return tr.boolToBV(tr.word(*w.R).ULT(tr.word(*w.L)).Not())
	case val.WordSlt:
		return tr.boolToBV(tr.word(*w.L).SLT(tr.word(*w.R)))
	case val.WordIte:
		return tr.constraint(*w.Cond).IfThenElse(tr.word(*w.Then), tr.word(*w.Else)).(z3.BV)
	case val.WordConcat:
		var acc z3.BV
		for i, b := range w.Bytes {
			bv := tr.byte(b)
			if i == 0 {
				acc = bv
			} else {
				acc = acc.Concat(bv)
			}
		}
		return acc
	default:
		panic(fmt.Errorf("smt: unhandled word kind %v", w.Kind))
	}
}

func (tr *translator) byte(b val.Byte) z3.BV {
	switch b.Kind {
	case val.ByteConcrete:
		return tr.ctx.FromInt(int64(b.Val), tr.ctx.BVSort(byteBits)).(z3.BV)
	case val.ByteSymbolic:
		if bv, ok := tr.byteVars[b.Name]; ok {
			return bv
		}
		bv := tr.ctx.Const(b.Name, tr.ctx.BVSort(byteBits)).(z3.BV)
		tr.byteVars[b.Name] = bv
		return bv
	case val.ByteSlice:
		// byte index i (0 = most significant) of a 256-bit word assembled
		// MSB-first corresponds to bits [255-8i, 248-8i].
		bv := tr.word(*b.Word)
		high := 255 - 8*b.Index
		low := 248 - 8*b.Index
		return bv.Extract(high, low)
	default:
		panic(fmt.Errorf("smt: unhandled byte kind %v", b.Kind))
	}
}

func (tr *translator) constraint(c val.Constraint) z3.Bool {
	switch c.Kind {
	case val.ConstraintEq:
		return tr.word(*c.L).Eq(tr.word(*c.R))
	case val.ConstraintNot:
		return tr.constraint(*c.Inner).Not()
	default:
		panic(fmt.Errorf("smt: unhandled constraint kind %v", c.Kind))
	}
}

func (tr *translator) boolToBV(b z3.Bool) z3.BV {
	one := tr.ctx.FromInt(1, tr.ctx.BVSort(wordBits)).(z3.BV)
	zero := tr.ctx.FromInt(0, tr.ctx.BVSort(wordBits)).(z3.BV)
	return b.IfThenElse(one, zero).(z3.BV)
}

// wordConst builds a 256-bit literal from four 64-bit limbs, matching
// the original implementation's big-endian-limb concatenation.
func wordConst(ctx *z3.Context, w val.Word) z3.BV {
	var buf [32]byte
	w.C.FillBytes(buf[:])
	sort64 := ctx.BVSort(64)
	limb := func(b []byte) z3.BV {
		var v uint64
		for _, x := range b {
			v = v<<8 | uint64(x)
		}
		return ctx.FromInt(int64(v), sort64).(z3.BV)
	}
	return limb(buf[0:8]).Concat(limb(buf[8:16])).Concat(limb(buf[16:24])).Concat(limb(buf[24:32]))
}
