package main

import (
	"fmt"

	"github.com/williamberman/symbolic-stack-machines/config"
	"github.com/williamberman/symbolic-stack-machines/examples"
	"github.com/williamberman/symbolic-stack-machines/explorer"
	"github.com/williamberman/symbolic-stack-machines/internal/xlog"
	"github.com/williamberman/symbolic-stack-machines/machine"
	"github.com/williamberman/symbolic-stack-machines/postcondition"
	"github.com/williamberman/symbolic-stack-machines/render"
	"github.com/williamberman/symbolic-stack-machines/smt"
	"github.com/williamberman/symbolic-stack-machines/val"
)

// runSafeAdd mirrors original_source/src/main.rs's safe_add_example:
// it seeds the path with an explicit overflow guard (x <= x+y) rather
// than relying on bytecode to enforce it, then asks whether any
// explored, non-overflowing path returns something other than x+y.
func runSafeAdd(cfg config.Config) error {
	pgm := examples.SafeAddProgram()
	cd, vars := examples.SafeAddCalldata()
	x, y := vars["x"], vars["y"]

	start := machine.New(pgm, cd, val.Zero())
	start.Constraints = append(start.Constraints, val.EqC(val.LtEq(x, val.Add(x, y)), val.One()))

	smtCfg := smtConfig(cfg)
	result := explorer.Run(start, explorerStrategy(cfg.Strategy), smtCfg)
	xlog.Logf("symrun: safe-add leaves=%d pruned=%d", len(result.Leaves), len(result.Pruned))

	violated := postcondition.Violated(smtCfg, result.Leaves,
		func(m machine.Machine) bool { return m.ReturnPtr != nil },
		func(m machine.Machine) []val.Constraint {
			returned := returnedWord(m)
			return []val.Constraint{returned.Eq(val.Add(x, y))}
		},
	)

	fmt.Printf("safe-add: post condition violated: %v\n", violated)
	if violated && printSolutions {
		printCounterexample(smtCfg, result.Leaves, x, y)
	}
	return nil
}

// returnedWord reads the returned 32-byte word straight out of memory;
// both offset and length are concrete by construction in this example.
func returnedWord(m machine.Machine) val.Word {
	bytes := render.ReturnBytes(m)
	var arr [32]val.Byte
	copy(arr[:], bytes)
	return val.Concat(arr)
}

func printCounterexample(cfg smt.Config, leaves []machine.Machine, x, y val.Word) {
	for _, m := range leaves {
		if m.ReturnPtr == nil {
			continue
		}
		violation := returnedWord(m).Eq(val.Add(x, y)).Not()
		constraints := append([]val.Constraint{violation}, m.Constraints...)
		res, ok := smt.Solve(cfg, constraints, []val.Word{x, y}, nil)
		if !ok {
			continue
		}
		solved := &machine.SolveResults{Words: res.Words}
		fmt.Print("  counterexample:")
		for _, name := range render.SortedWordNames(solved) {
			fmt.Printf(" %s=%s", name, res.Words[name])
		}
		fmt.Println()
		return
	}
}
