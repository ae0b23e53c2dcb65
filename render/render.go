// Package render materializes a satisfying model into the concrete
// artifacts a caller actually wants: hex calldata, revert/return byte
// strings, and the Solidity Panic(uint256) selector used to recognize
// assertion-failure reverts.
package render

import (
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/sha3"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/williamberman/symbolic-stack-machines/calldata"
	"github.com/williamberman/symbolic-stack-machines/machine"
	"github.com/williamberman/symbolic-stack-machines/val"
)

// SortedWordNames returns the names of every word results solved for,
// in a deterministic order -- map iteration order would otherwise
// vary a printed solution's field order from run to run, the way
// ion/symtab.go orders symbols before writing them rather than
// iterating the symbol map directly.
func SortedWordNames(results *machine.SolveResults) []string {
	if results == nil {
		return nil
	}
	names := maps.Keys(results.Words)
	slices.Sort(names)
	return names
}

// Selector returns the first 4 bytes of keccak256(signature), the same
// selector computation Solidity's ABI encoder uses, e.g.
// Selector("transfer(address,uint256)").
func Selector(signature string) [4]byte {
	sum := sha3.NewLegacyKeccak256()
	sum.Write([]byte(signature))
	digest := sum.Sum(nil)
	var out [4]byte
	copy(out[:], digest[:4])
	return out
}

// PanicSelector is the selector for Solidity's built-in
// Panic(uint256) revert, emitted for assertion failures, arithmetic
// overflow, and other compiler-inserted checks.
func PanicSelector() [4]byte { return Selector("Panic(uint256)") }

// RevertBytes slices m.Memory using m.RevertPtr. Both offset and
// length must be concrete (they are computed at REVERT time from
// already-executed, usually-constant, code paths); panics otherwise.
func RevertBytes(m machine.Machine) []val.Byte {
	if m.RevertPtr == nil {
		panic(fmt.Errorf("render: machine has no revert pointer"))
	}
	return sliceMemory(m, m.RevertPtr)
}

// ReturnBytes is RevertBytes's RETURN-side counterpart.
func ReturnBytes(m machine.Machine) []val.Byte {
	if m.ReturnPtr == nil {
		panic(fmt.Errorf("render: machine has no return pointer"))
	}
	return sliceMemory(m, m.ReturnPtr)
}

func sliceMemory(m machine.Machine, ptr *machine.MemPtr) []val.Byte {
	return m.Memory.ReadBytes(ptr.Offset.AsUsize(), ptr.Length.AsUsize())
}

// RevertString hex-encodes RevertBytes, resolving any symbolic byte
// against results first. It is typically matched against
// machine.AssertionFailure to recognize a Solidity assertion revert.
func RevertString(m machine.Machine, results *machine.SolveResults) (string, error) {
	return renderBytes(RevertBytes(m), results)
}

// ReturnString is RevertString's RETURN-side counterpart.
func ReturnString(m machine.Machine, results *machine.SolveResults) (string, error) {
	return renderBytes(ReturnBytes(m), results)
}

// Calldata materializes a fully concrete hex calldata string for a
// symbolic Calldata buffer, resolving every symbolic/sliced byte
// against a satisfying model.
func Calldata(cd calldata.Calldata, results *machine.SolveResults) (string, error) {
	return renderBytes(cd.Bytes(), results)
}

func renderBytes(bytes []val.Byte, results *machine.SolveResults) (string, error) {
	out := make([]byte, len(bytes))
	for i, b := range bytes {
		v, err := resolveByte(b, results)
		if err != nil {
			return "", fmt.Errorf("render: byte %d: %w", i, err)
		}
		out[i] = v
	}
	return hex.EncodeToString(out), nil
}

func resolveByte(b val.Byte, results *machine.SolveResults) (byte, error) {
	switch {
	case b.IsConcrete():
		return b.AsUint8(), nil
	case results == nil:
		return 0, fmt.Errorf("no solve results available to resolve %s", b)
	case b.Kind == val.ByteSymbolic:
		v, ok := results.Bytes[b.Name]
		if !ok {
			return 0, fmt.Errorf("no model value for symbolic byte %q", b.Name)
		}
		return v, nil
	case b.Kind == val.ByteSlice:
		if b.Word.Kind != val.WordSymbol {
			return 0, fmt.Errorf("cannot resolve a slice of a non-variable word %s", b.Word)
		}
		w, ok := results.Words[b.Word.Name]
		if !ok {
			return 0, fmt.Errorf("no model value for word %q", b.Word.Name)
		}
		return w.ByteAt(b.Index), nil
	default:
		return 0, fmt.Errorf("unresolvable byte %s", b)
	}
}
