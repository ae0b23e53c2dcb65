package main

import (
	"fmt"

	"github.com/williamberman/symbolic-stack-machines/config"
	"github.com/williamberman/symbolic-stack-machines/examples"
	"github.com/williamberman/symbolic-stack-machines/explorer"
	"github.com/williamberman/symbolic-stack-machines/internal/xlog"
	"github.com/williamberman/symbolic-stack-machines/machine"
	"github.com/williamberman/symbolic-stack-machines/render"
	"github.com/williamberman/symbolic-stack-machines/val"
)

// runPrimality mirrors original_source/src/main.rs's
// primality_check_example: explore every path, narrow the leaves down
// to the ones that reverted with a Solidity assertion failure, then
// solve for a concrete calldata string that reaches one.
func runPrimality(cfg config.Config) error {
	pgm := examples.PrimalityProgram()
	cd, _ := examples.PrimalityCalldata()

	start := machine.New(pgm, cd, val.Zero())
	smtCfg := smtConfig(cfg)

	result := explorer.RunFilteredByAssertion(start, explorer.DefaultAssertions, smtCfg)
	xlog.Logf("symrun: primality leaves=%d pruned=%d", len(result.Leaves), len(result.Pruned))

	if len(result.Leaves) == 0 {
		fmt.Println("primality: no path reverted with an assertion failure")
		return nil
	}

	leaf := result.Leaves[0]
	concreteCalldata, err := render.Calldata(cd, leaf.SolveResults)
	if err != nil {
		return fmt.Errorf("rendering the counterexample calldata: %w", err)
	}
	fmt.Printf("primality: concrete_calldata=%s\n", concreteCalldata)
	return nil
}
