// Package postcondition checks whether any explored machine state
// violates a caller-supplied invariant: for each candidate machine, it
// asks the solver whether the machine's path constraints are
// satisfiable together with the negation of the post-condition. A
// single SAT answer is a counterexample.
package postcondition

import (
	"github.com/williamberman/symbolic-stack-machines/machine"
	"github.com/williamberman/symbolic-stack-machines/smt"
	"github.com/williamberman/symbolic-stack-machines/val"
)

// Filter selects which machines a post-condition check applies to
// (e.g. only machines that reverted with a particular message).
type Filter func(m machine.Machine) bool

// PostCondition maps a machine to the constraints that must hold for
// it to be considered correct; Violated negates all of them.
type PostCondition func(m machine.Machine) []val.Constraint

// Violated reports whether any machine passing filter has a feasible
// path whose path constraints hold while every post-condition
// constraint is false at once (the negations are asserted together)
// -- i.e. a counterexample exists.
func Violated(cfg smt.Config, machines []machine.Machine, filter Filter, post PostCondition) bool {
	for _, m := range machines {
		if filter != nil && !filter(m) {
			continue
		}

		negated := post(m)
		constraints := make([]val.Constraint, 0, len(negated)+len(m.Constraints))
		for _, c := range negated {
			constraints = append(constraints, c.Not())
		}
		constraints = append(constraints, m.Constraints...)

		if smt.Feasible(cfg, constraints) {
			return true
		}
	}
	return false
}
