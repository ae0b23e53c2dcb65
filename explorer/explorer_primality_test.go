package explorer

import (
	"testing"

	"github.com/williamberman/symbolic-stack-machines/examples"
	"github.com/williamberman/symbolic-stack-machines/machine"
	"github.com/williamberman/symbolic-stack-machines/render"
	"github.com/williamberman/symbolic-stack-machines/smt"
	"github.com/williamberman/symbolic-stack-machines/val"
)

// TestPrimalityProgramAssertionRevertIsReachable covers end-to-end
// scenario 5 (a Solidity-style primality-check contract that reverts
// with an assertion failure outside one satisfying input pair). The
// real compiled fixture this scenario was originally tested against
// isn't part of the retrieval pack, so this exercises an equivalent
// hand-assembled program performing the same x*y == 973013
// revert-assert check, with fully symbolic calldata: the explorer
// must find at least one feasible path that reverts with exactly
// machine.AssertionFailure, and a model that renders to concrete
// calldata for it.
func TestPrimalityProgramAssertionRevertIsReachable(t *testing.T) {
	pgm := examples.PrimalityProgram()
	cd, _ := examples.PrimalityCalldata()

	start := machine.New(pgm, cd, val.Zero())
	result := RunFilteredByAssertion(start, DefaultAssertions, smt.DefaultConfig())

	if len(result.Leaves) == 0 {
		t.Fatal("expected at least one feasible assertion-failure revert")
	}

	leaf := result.Leaves[0]
	if leaf.RevertPtr == nil {
		t.Fatal("filtered leaf should have reverted")
	}
	s, err := render.RevertString(leaf, leaf.SolveResults)
	if err != nil {
		t.Fatalf("RevertString() error = %v", err)
	}
	if s != machine.AssertionFailure {
		t.Fatalf("RevertString() = %s, want %s", s, machine.AssertionFailure)
	}

	if _, err := render.Calldata(cd, leaf.SolveResults); err != nil {
		t.Fatalf("rendering a concrete counterexample calldata: %v", err)
	}
}
