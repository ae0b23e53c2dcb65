package smt

import (
	"time"

	z3 "github.com/aclements/go-z3/z3"

	"github.com/williamberman/symbolic-stack-machines/internal/xlog"
	"github.com/williamberman/symbolic-stack-machines/val"
)

// Results is the model extracted from a satisfiable solver check: one
// concrete value per requested word, one per requested byte.
type Results struct {
	Words map[string]val.Word
	Bytes map[string]uint8
}

// Config controls solver invocation. The zero value sets no solver
// timeout and disables script dumping; DefaultConfig supplies the
// 60-second timeout.
type Config struct {
	Timeout      time.Duration
	DumpScript   bool
	DumpDir      string
	DumpCompress bool
}

// DefaultConfig matches the 60-second default timeout called out in
// the design notes.
func DefaultConfig() Config {
	return Config{Timeout: 60 * time.Second}
}

// Solve checks the conjunction of constraints for satisfiability and,
// on SAT, evaluates the model for every requested word/byte. It
// returns (nil, false) on UNSAT or timeout.
func Solve(cfg Config, constraints []val.Constraint, words []val.Word, bytes []val.Byte) (*Results, bool) {
	zcfg := z3.NewContextConfig()
	if cfg.Timeout > 0 {
		zcfg.SetUint("timeout", uint(cfg.Timeout.Milliseconds()))
	}
	ctx := z3.NewContext(zcfg)
	solver := z3.NewSolver(ctx)

	tr := newTranslator(ctx)

	var dump *scriptWriter
	if cfg.DumpScript {
		var err error
		dump, err = newScriptWriter(cfg.DumpDir)
		if err != nil {
			xlog.Logf("smt: could not open dump file: %v", err)
		} else if cfg.DumpCompress {
			if err := dump.withCompression(); err != nil {
				xlog.Logf("smt: could not enable zstd compression: %v", err)
			}
		}
	}

	for _, c := range constraints {
		zc := tr.constraint(c)
		if dump != nil {
			dump.writeAssert(zc)
		}
		solver.Assert(zc)
	}
	if dump != nil {
		dump.close()
	}

	start := time.Now()
	sat, err := solver.Check()
	xlog.Logf("smt: solved %d constraints in %s, result=%v, err=%v", len(constraints), time.Since(start), sat, err)

	if !sat || err != nil {
		return nil, false
	}

	model := solver.Model()

	wordResults := make(map[string]val.Word, len(words))
	for _, w := range words {
		wordResults[w.Name] = evalWord(model, tr.word(w))
	}
	byteResults := make(map[string]uint8, len(bytes))
	for _, b := range bytes {
		byteResults[b.Name] = evalByte(model, tr.byte(b))
	}

	return &Results{Words: wordResults, Bytes: byteResults}, true
}

func evalWord(model *z3.Model, bv z3.BV) val.Word {
	v := model.Eval(bv, true).(z3.BV)
	bi, _ := v.AsBigUnsigned()
	return val.C(bi)
}

func evalByte(model *z3.Model, bv z3.BV) uint8 {
	v := model.Eval(bv, true).(z3.BV)
	i, _, _ := v.AsInt64()
	return uint8(i)
}

// Feasible is a convenience wrapper used by the path explorer: does
// this constraint set have any satisfying assignment at all, without
// collecting a model.
func Feasible(cfg Config, constraints []val.Constraint) bool {
	_, ok := Solve(cfg, constraints, nil, nil)
	return ok
}
