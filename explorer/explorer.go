// Package explorer drives the path explorer: a DFS frontier over
// machine states that applies machine.Step and, on every fork,
// consults the SMT solver according to one of three strategies.
package explorer

import (
	"github.com/williamberman/symbolic-stack-machines/internal/xlog"
	"github.com/williamberman/symbolic-stack-machines/machine"
	"github.com/williamberman/symbolic-stack-machines/render"
	"github.com/williamberman/symbolic-stack-machines/smt"
	"github.com/williamberman/symbolic-stack-machines/val"
)

// DefaultAssertions is the default revert-string allowlist used to
// filter leaves down to assertion-failure reverts when solving only
// for interesting counterexamples (see SolveAtEnd's revert filter in
// the design notes).
var DefaultAssertions = []string{machine.AssertionFailure}

// Result bundles the explorer's terminal classification of every path:
// Leaves are halted machines whose path constraints are satisfiable
// (each carries a populated SolveResults); Pruned are machines dropped
// because their constraints were proven unsatisfiable.
type Result struct {
	Leaves []machine.Machine
	Pruned []machine.Machine
}

// Strategy names one of the three feasibility-checking disciplines
// from the design notes. They all share the same fork semantics
// (machine.Step) and differ only in when the solver is consulted.
type Strategy int

const (
	// SolveAtEachBranch checks satisfiability immediately whenever a
	// fork grows a machine's constraint list, pruning infeasible
	// successors before they are ever stepped again.
	SolveAtEachBranch Strategy = iota
	// SolveAtEnd runs every fork to completion with no solver
	// interaction, then classifies each halted leaf in one pass.
	SolveAtEnd
	// Incremental solves each successor of a fork, like
	// SolveAtEachBranch, but walks straight-line code through a single
	// "current" machine and keeps fork siblings on a separate work
	// stack. Each check opens a fresh solver and asserts the full
	// constraint list; no solver context or push/pop level is kept
	// between checks.
	Incremental
)

// Run explores every path reachable from start using strategy,
// invoking the solver per smtCfg. It terminates when the DFS queue is
// empty; callers must depth-bound programs with unbounded loops
// externally.
func Run(start machine.Machine, strategy Strategy, smtCfg smt.Config) Result {
	switch strategy {
	case SolveAtEnd:
		return runSolveAtEnd(start, smtCfg)
	case Incremental:
		return runIncremental(start, smtCfg)
	default:
		return runSolveAtEachBranch(start, smtCfg)
	}
}

func runSolveAtEachBranch(start machine.Machine, smtCfg smt.Config) Result {
	queue := []machine.Machine{start}
	var result Result

	for len(queue) > 0 {
		m := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		if !m.CanContinue() {
			result.Leaves = append(result.Leaves, m)
			continue
		}

		nConstraints := len(m.Constraints)
		successors := machine.Step(m)

		for _, s := range successors {
			grew := len(s.Constraints) != nConstraints
			if !grew || len(s.Constraints) == 0 {
				queue = pushLeafOrQueue(queue, &result, s)
				continue
			}
			res, ok := smt.Solve(smtCfg, s.Constraints, nil, nil)
			if !ok {
				result.Pruned = append(result.Pruned, s)
				continue
			}
			s.SolveResults = toMachineResults(res)
			queue = pushLeafOrQueue(queue, &result, s)
		}
		xlog.Logf("explorer: queue=%d leaves=%d pruned=%d", len(queue), len(result.Leaves), len(result.Pruned))
	}

	return result
}

func runSolveAtEnd(start machine.Machine, smtCfg smt.Config) Result {
	complete := runToCompletion(start)

	var result Result
	for _, m := range complete {
		if len(m.Constraints) == 0 {
			result.Leaves = append(result.Leaves, m)
			continue
		}
		res, ok := smt.Solve(smtCfg, m.Constraints, nil, nil)
		if !ok {
			result.Pruned = append(result.Pruned, m)
			continue
		}
		m.SolveResults = toMachineResults(res)
		result.Leaves = append(result.Leaves, m)
	}
	return result
}

// RunFilteredByAssertion runs SolveAtEnd to completion, then restricts
// solving to leaves that reverted with one of the given revert-string
// hex encodings (DefaultAssertions if assertions is nil) -- useful for
// narrowing a search to "which inputs trigger this specific assertion"
// without paying the solver cost for every other revert reason.
// Halted machines that did not revert with an allowed string are put
// in Pruned alongside the unsatisfiable ones. Each leaf's SolveResults
// holds model values for the free bytes and named words of start's
// calldata.
func RunFilteredByAssertion(start machine.Machine, assertions []string, smtCfg smt.Config) Result {
	if assertions == nil {
		assertions = DefaultAssertions
	}
	allowed := make(map[string]bool, len(assertions))
	for _, a := range assertions {
		allowed[a] = true
	}
	var words []val.Word
	var bytes []val.Byte
	for _, b := range start.Calldata.Bytes() {
		switch {
		case b.Kind == val.ByteSymbolic:
			bytes = append(bytes, b)
		case b.Kind == val.ByteSlice && b.Word.Kind == val.WordSymbol:
			words = append(words, *b.Word)
		}
	}

	complete := runToCompletion(start)

	var result Result
	for _, m := range complete {
		if m.RevertPtr == nil {
			result.Pruned = append(result.Pruned, m)
			continue
		}
		s, err := render.RevertString(m, nil)
		if err != nil || !allowed[s] {
			result.Pruned = append(result.Pruned, m)
			continue
		}
		res, ok := smt.Solve(smtCfg, m.Constraints, words, bytes)
		if !ok {
			result.Pruned = append(result.Pruned, m)
			continue
		}
		m.SolveResults = toMachineResults(res)
		result.Leaves = append(result.Leaves, m)
	}
	return result
}

func runToCompletion(start machine.Machine) []machine.Machine {
	queue := []machine.Machine{start}
	var complete []machine.Machine
	for len(queue) > 0 {
		m := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		if !m.CanContinue() {
			complete = append(complete, m)
			continue
		}
		queue = append(queue, machine.Step(m)...)
	}
	return complete
}

// runIncremental keeps a single "current" machine plus a sibling work
// stack, matching the original's cur/work_stack split. Every check is
// a from-scratch smt.Solve over the machine's full constraint list: no
// solver context or push/pop level survives between checks, so the
// shared constraint prefix is re-asserted each time. What gets pruned
// is the same as for SolveAtEachBranch.
func runIncremental(start machine.Machine, smtCfg smt.Config) Result {
	var cur *machine.Machine
	c := start
	cur = &c
	var workStack []machine.Machine
	var result Result

	for cur != nil || len(workStack) > 0 {
		if cur != nil {
			m := *cur
			if !m.CanContinue() {
				result.Leaves = append(result.Leaves, m)
				cur = nil
				continue
			}
			successors := machine.Step(m)
			if len(successors) == 1 && len(successors[0].Constraints) == len(m.Constraints) {
				next := successors[0]
				cur = &next
				continue
			}
			cur = nil
			workStack = append(workStack, successors...)
			continue
		}

		m := workStack[len(workStack)-1]
		workStack = workStack[:len(workStack)-1]

		if len(m.Constraints) == 0 {
			next := m
			cur = &next
			continue
		}
		res, ok := smt.Solve(smtCfg, m.Constraints, nil, nil)
		if !ok {
			result.Pruned = append(result.Pruned, m)
			continue
		}
		m.SolveResults = toMachineResults(res)
		next := m
		cur = &next
	}

	return result
}

func pushLeafOrQueue(queue []machine.Machine, result *Result, m machine.Machine) []machine.Machine {
	if !m.CanContinue() {
		result.Leaves = append(result.Leaves, m)
		return queue
	}
	return append(queue, m)
}

func toMachineResults(r *smt.Results) *machine.SolveResults {
	if r == nil {
		return nil
	}
	return &machine.SolveResults{Words: r.Words, Bytes: r.Bytes}
}
