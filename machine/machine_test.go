package machine

import (
	"testing"

	"github.com/williamberman/symbolic-stack-machines/calldata"
	"github.com/williamberman/symbolic-stack-machines/instructions"
	"github.com/williamberman/symbolic-stack-machines/val"
)

func run(t *testing.T, program []instructions.Instruction) Machine {
	t.Helper()
	m := New(program, calldata.Empty(), val.Zero())
	for m.CanContinue() {
		next := Step(m)
		if len(next) != 1 {
			t.Fatalf("unexpected fork in a concrete-only program at pc %d", m.PC)
		}
		m = next[0]
	}
	return m
}

func TestAddPushesSum(t *testing.T) {
	program := []instructions.Instruction{}
	program = append(program, instructions.PushWord(1, val.CUint64(2))...)
	program = append(program, instructions.PushWord(1, val.CUint64(3))...)
	program = append(program, instructions.Instruction{Op: instructions.Add})
	program = append(program, instructions.Instruction{Op: instructions.Stop})

	m := run(t, program)
	if !m.Stack.Peek().Equal(val.CUint64(5)) {
		t.Fatalf("top of stack = %s, want 5", m.Stack.Peek())
	}
}

func TestJumpIConcreteConditionDoesNotFork(t *testing.T) {
	// PUSH1 1 (dest placeholder unused); JUMPI with concrete cond=1 to pc 0
	program := []instructions.Instruction{
		{Op: instructions.JumpDest}, // pc 0
	}
	program = append(program, instructions.PushWord(1, val.CUint64(1))...) // cond = 1
	program = append(program, instructions.PushWord(1, val.Zero())...)    // dest = 0 (top)
	program = append(program, instructions.Instruction{Op: instructions.JumpI})

	m := New(program, calldata.Empty(), val.Zero())
	m.PC = 1 // start past the JumpDest; the taken jump loops back to it
	// PUSH1, PUSH1, JUMPI: stop right after the jump, before the loop repeats.
	for i := 0; i < 3 && m.CanContinue(); i++ {
		next := Step(m)
		if len(next) != 1 {
			t.Fatalf("concrete JUMPI should not fork")
		}
		m = next[0]
	}
	if m.PC != 0 {
		t.Fatalf("PC = %d, want 0 (jump taken)", m.PC)
	}
}

func TestJumpISymbolicConditionForksWithOppositeConstraints(t *testing.T) {
	program := []instructions.Instruction{
		{Op: instructions.JumpDest}, // pc 0: taken target
		{Op: instructions.JumpI},    // pc 1
	}

	m := New(program, calldata.Empty(), val.Zero())
	m.PC = 1
	// stack built directly: condition below, destination (concrete, pc 0) on top.
	m.Stack = m.Stack.Push(val.Sym("cond")).Push(val.Zero())

	forks := Step(m)
	if len(forks) != 2 {
		t.Fatalf("symbolic JUMPI should fork into 2, got %d", len(forks))
	}
	fallsThrough, takesTarget := forks[0], forks[1]

	if fallsThrough.PC != m.PC+1 {
		t.Fatalf("falls-through PC = %d, want %d", fallsThrough.PC, m.PC+1)
	}
	if takesTarget.PC != 0 {
		t.Fatalf("taken-branch PC = %d, want 0", takesTarget.PC)
	}
	if len(fallsThrough.Constraints) != 1 || len(takesTarget.Constraints) != 1 {
		t.Fatalf("both forks should carry exactly one new constraint")
	}
	if fallsThrough.ID == takesTarget.ID {
		t.Fatal("forks must have distinct machine IDs")
	}
}

func TestStepOnHaltedMachinePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("stepping a halted machine should panic")
		}
	}()
	m := New([]instructions.Instruction{{Op: instructions.Stop}}, calldata.Empty(), val.Zero())
	m.Halt = true
	Step(m)
}

func TestDupAndSwap(t *testing.T) {
	program := []instructions.Instruction{}
	program = append(program, instructions.PushWord(1, val.CUint64(1))...)
	program = append(program, instructions.PushWord(1, val.CUint64(2))...)
	program = append(program, instructions.Instruction{Op: instructions.Dup, N: 2}) // dup the 1
	program = append(program, instructions.Instruction{Op: instructions.Swap, N: 2})
	program = append(program, instructions.Instruction{Op: instructions.Stop})

	m := run(t, program)
	words := m.Stack.Words()
	if len(words) != 3 {
		t.Fatalf("stack depth = %d, want 3", len(words))
	}
}

func TestReturnSetsReturnPtrAndHalts(t *testing.T) {
	program := []instructions.Instruction{}
	program = append(program, instructions.PushWord(1, val.CUint64(32))...) // length
	program = append(program, instructions.PushWord(1, val.CUint64(0))...)  // offset
	program = append(program, instructions.Instruction{Op: instructions.Return})

	m := run(t, program)
	if m.ReturnPtr == nil {
		t.Fatal("ReturnPtr should be set")
	}
	if m.RevertPtr != nil {
		t.Fatal("RevertPtr must stay nil when RETURN was taken")
	}
	if !m.Halt {
		t.Fatal("RETURN should halt")
	}
}
