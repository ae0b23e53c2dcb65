// Package machine implements the interpreter's execution state and its
// single-step semantics: the bundle of stack, memory, program counter
// and path constraints that the path explorer forks and steps.
package machine

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/williamberman/symbolic-stack-machines/calldata"
	"github.com/williamberman/symbolic-stack-machines/instructions"
	"github.com/williamberman/symbolic-stack-machines/memory"
	"github.com/williamberman/symbolic-stack-machines/stack"
	"github.com/williamberman/symbolic-stack-machines/val"
)

// Fault marks a programmer error: stepping a halted machine, jumping to
// a symbolic destination, stack underflow surfacing past the stack
// package, or any other violation of a machine invariant that a
// well-formed program never triggers. It is always raised by panic, not
// returned, matching the rest of the core's "invariant violations
// panic, recoverable infeasibility is a value" split (see
// internal/xlog for the companion logging convention).
type Fault struct {
	Msg string
}

func (f Fault) Error() string { return f.Msg }

func fault(format string, args ...any) {
	panic(Fault{Msg: fmt.Sprintf(format, args...)})
}

var nextID atomic.Int64

// AssertionFailure is the hex-encoded revert string Solidity emits for
// a failed `assert` / compiler-inserted check: the Panic(uint256)
// selector (4e487b71) followed by the 32-byte panic code 0x01
// (assertion failed), zero-padded. Computed independently by
// render.PanicSelector(); kept as a literal here so that callers
// filtering reverted paths (e.g. explorer.DefaultAssertions) don't
// need to depend on the render package just to compare strings.
var AssertionFailure = "4e487b71" + strings.Repeat("0", 62) + "01"

// MemPtr is an offset+length slice of memory captured at RETURN/REVERT.
type MemPtr struct {
	Offset val.Word
	Length val.Word
}

// SolveResults is the model the explorer records once a machine's path
// constraints are proven satisfiable: concrete values for every named
// free word and byte the solve touched.
type SolveResults struct {
	Words map[string]val.Word
	Bytes map[string]uint8
}

// Machine is one execution state: a point in the path tree. Forking
// (via Step's symbolic JumpI branch) produces two Machines that share
// every inner structure by value or structural sharing except for the
// fields that actually differ between the branches.
type Machine struct {
	ID int64

	Stack    stack.Stack
	Memory   memory.Memory
	PC       int
	Halt     bool
	Pgm      []instructions.Instruction // shared immutable; never mutated in place
	Calldata calldata.Calldata          // shared immutable

	Constraints []val.Constraint // append-only; see appendConstraint

	CallValue val.Word

	ReturnPtr *MemPtr
	RevertPtr *MemPtr

	SolveResults *SolveResults
}

// New builds the initial machine state for a program, ready to execute
// from pc 0 with empty stack and memory.
func New(pgm []instructions.Instruction, cd calldata.Calldata, callValue val.Word) Machine {
	return Machine{
		ID:        nextID.Add(1),
		Stack:     stack.New(),
		Memory:    memory.New(),
		PC:        0,
		Pgm:       pgm,
		Calldata:  cd,
		CallValue: callValue,
	}
}

// CanContinue reports whether the machine has neither halted nor run
// off the end of its program.
func (m Machine) CanContinue() bool {
	return !m.Halt && m.PC >= 0 && m.PC < len(m.Pgm)
}

func appendConstraint(cs []val.Constraint, c val.Constraint) []val.Constraint {
	out := make([]val.Constraint, len(cs)+1)
	copy(out, cs)
	out[len(cs)] = c
	return out
}

// fork returns a copy of m with a fresh ID; every inner field is
// either a value type with structural sharing (Stack, Memory) or an
// immutable shared slice (Pgm, Calldata's backing bytes), so the copy
// itself is O(1).
func (m Machine) fork() Machine {
	m2 := m
	m2.ID = nextID.Add(1)
	return m2
}

// Step executes the instruction at the current pc and returns the
// successor machine(s): one for every opcode except a JumpI whose
// condition is symbolic, which forks into exactly two -- the
// falls-through successor first, the taken-branch successor second
// (see "Branch discipline" in the design notes). Stepping a halted or
// out-of-range machine is a programmer error.
func Step(m Machine) []Machine {
	if !m.CanContinue() {
		fault("machine: step called on a machine that cannot continue (halt=%v pc=%d len(pgm)=%d)", m.Halt, m.PC, len(m.Pgm))
	}

	ins := m.Pgm[m.PC]

	switch ins.Op {
	case instructions.Stop:
		m.Halt = true
		return []Machine{m}

	case instructions.Add:
		return []Machine{binaryOp(m, val.Add)}
	case instructions.Mul:
		return []Machine{binaryOp(m, val.Mul)}
	case instructions.Sub:
		return []Machine{binaryOp(m, val.Sub)}
	case instructions.Div:
		return []Machine{binaryOp(m, val.Div)}
	case instructions.Lt:
		return []Machine{binaryOp(m, val.Lt)}
	case instructions.Gt:
		return []Machine{binaryOp(m, val.Gt)}
	case instructions.Slt:
		return []Machine{binaryOp(m, val.Slt)}
	case instructions.Eq:
		return []Machine{binaryOp(m, val.EqWord)}
	case instructions.And:
		return []Machine{binaryOp(m, val.BitAnd)}

	case instructions.IsZero:
		a, rest := m.Stack.Pop()
		m.Stack = rest.Push(val.EqWord(a, val.Zero()))
		m.PC++
		return []Machine{m}

	case instructions.Shr:
		shift, rest := m.Stack.Pop()
		value, rest2 := rest.Pop()
		m.Stack = rest2.Push(val.Shr(value, shift))
		m.PC++
		return []Machine{m}

	case instructions.CallValue:
		m.Stack = m.Stack.Push(m.CallValue)
		m.PC++
		return []Machine{m}

	case instructions.CallDataLoad:
		offset, rest := m.Stack.Pop()
		m.Stack = rest.Push(m.Calldata.ReadWord(offset))
		m.PC++
		return []Machine{m}

	case instructions.CallDataSize:
		m.Stack = m.Stack.Push(val.CUint64(uint64(m.Calldata.Size())))
		m.PC++
		return []Machine{m}

	case instructions.Pop:
		_, rest := m.Stack.Pop()
		m.Stack = rest
		m.PC++
		return []Machine{m}

	case instructions.MLoad:
		offset, rest := m.Stack.Pop()
		m.Stack = rest.Push(m.Memory.ReadWord(offset))
		m.PC++
		return []Machine{m}

	case instructions.MStore:
		offset, rest := m.Stack.Pop()
		value, rest2 := rest.Pop()
		m.Memory = m.Memory.WriteWord(offset, value)
		m.Stack = rest2
		m.PC++
		return []Machine{m}

	case instructions.Jump:
		dest, rest := m.Stack.Pop()
		m.Stack = rest
		if !dest.IsConcrete() {
			fault("machine: JUMP to a symbolic destination %s", dest)
		}
		m.PC = dest.AsUsize()
		return []Machine{m}

	case instructions.JumpI:
		return stepJumpI(m)

	case instructions.JumpDest:
		m.PC++
		return []Machine{m}

	case instructions.Push:
		n := int(ins.N)
		var bytes [32]val.Byte
		for i := 0; i < n; i++ {
			lit := m.Pgm[m.PC+1+i]
			if lit.Op != instructions.Lit {
				fault("machine: PUSH%d immediate at pc %d is not a data byte", n, m.PC+1+i)
			}
			bytes[32-n+i] = val.ConcreteByte(lit.LitByte)
		}
		m.Stack = m.Stack.Push(val.Concat(bytes))
		m.PC += n + 1
		return []Machine{m}

	case instructions.Dup:
		m.Stack = m.Stack.Push(m.Stack.PeekN(int(ins.N) - 1))
		m.PC++
		return []Machine{m}

	case instructions.Swap:
		k := int(ins.N)
		top := m.Stack.PeekN(0)
		other := m.Stack.PeekN(k)
		m.Stack = m.Stack.Set(0, other).Set(k, top)
		m.PC++
		return []Machine{m}

	case instructions.Return:
		offset, rest := m.Stack.Pop()
		length, rest2 := rest.Pop()
		m.Stack = rest2
		m.ReturnPtr = &MemPtr{Offset: offset, Length: length}
		m.Halt = true
		return []Machine{m}

	case instructions.Revert:
		offset, rest := m.Stack.Pop()
		length, rest2 := rest.Pop()
		m.Stack = rest2
		m.RevertPtr = &MemPtr{Offset: offset, Length: length}
		m.Halt = true
		return []Machine{m}

	case instructions.Assert:
		top := m.Stack.Peek()
		m.Constraints = appendConstraint(m.Constraints, top.Eq(ins.AssertWord))
		m.PC++
		return []Machine{m}

	case instructions.Lit:
		fault("machine: Lit(%#02x) stepped as an instruction -- pc landed inside a PUSH immediate", ins.LitByte)
	}

	fault("machine: unhandled opcode %s", ins)
	panic("unreachable")
}

// binaryOp pops two operands (b popped first, then a, matching the
// source order of every arithmetic/comparison opcode in §4.1) and
// pushes op(a, b). op is always one of val's constructors (val.Add,
// val.Mul, ...), each of which already short-circuits to native
// math/big arithmetic when both operands are concrete rather than
// building a symbolic node -- the hybrid concrete/symbolic split that
// original_source/src/instructions/hybrid.rs implements as two
// separate instruction variants.
func binaryOp(m Machine, op func(a, b val.Word) val.Word) Machine {
	b, rest := m.Stack.Pop()
	a, rest2 := rest.Pop()
	m.Stack = rest2.Push(op(a, b))
	m.PC++
	return m
}

// stepJumpI implements §4.3: a concrete condition takes or falls
// through without forking; a symbolic condition forks into two
// machines, each carrying the opposite path constraint. The
// destination must always be concrete.
func stepJumpI(m Machine) []Machine {
	dest, rest := m.Stack.Pop()
	cond, rest2 := rest.Pop()
	m.Stack = rest2

	if !dest.IsConcrete() {
		fault("machine: JUMPI to a symbolic destination %s", dest)
	}

	if cond.IsConcrete() {
		if cond.AsBigInt().Sign() != 0 {
			m.PC = dest.AsUsize()
		} else {
			m.PC++
		}
		return []Machine{m}
	}

	fallsThrough := m
	takesTarget := m.fork()

	fallsThroughCond := cond.Eq(val.Zero())
	takesTargetCond := fallsThroughCond.Not()

	fallsThrough.Constraints = appendConstraint(fallsThrough.Constraints, fallsThroughCond)
	takesTarget.Constraints = appendConstraint(takesTarget.Constraints, takesTargetCond)

	fallsThrough.PC++
	takesTarget.PC = dest.AsUsize()

	return []Machine{fallsThrough, takesTarget}
}
