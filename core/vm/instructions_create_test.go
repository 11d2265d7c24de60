package vm

import (
	"bytes"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"

	"github.com/coreevm/coreevm/core/types"
)

// outerFrame builds a bare Frame standing in for the contract currently
// executing CREATE/CREATE2, with initCode staged in memory at offset 0.
func outerFrame(self types.Address, initCode []byte, gas uint64) *Frame {
	f := &Frame{Self: self, Stack: NewStack(), Memory: NewMemory(), Gas: gas}
	if _, err := f.Memory.EnsureSize(uint64(len(initCode))); err != nil {
		panic(err)
	}
	f.Memory.Set(0, uint64(len(initCode)), initCode)
	return f
}

// TestOpCreateDeploysAndPushesAddress checks that CREATE deploys the init
// code's return value and pushes the resulting address onto the stack.
func TestOpCreateDeploysAndPushesAddress(t *testing.T) {
	evm, statedb := newTestEVM(t)

	caller := types.Address{0x01}
	statedb.CreateAccount(caller)
	statedb.AddBalance(caller, uint256.NewInt(1<<32))

	// PUSH1 0xfe, PUSH1 0, MSTORE8, PUSH1 1, PUSH1 0, RETURN
	initCode := []byte{
		byte(PUSH1), 0xfe,
		byte(PUSH1), 0,
		byte(MSTORE8),
		byte(PUSH1), 1,
		byte(PUSH1), 0,
		byte(RETURN),
	}

	f := outerFrame(caller, initCode, 1_000_000)
	// CREATE pops value, then offset, then size (top to bottom): push size,
	// offset, value so value ends up on top.
	if err := f.Stack.Push(wordFromUint64(uint64(len(initCode)))); err != nil {
		t.Fatalf("push size: %v", err)
	}
	if err := f.Stack.Push(wordFromUint64(0)); err != nil {
		t.Fatalf("push offset: %v", err)
	}
	if err := f.Stack.Push(newWord()); err != nil {
		t.Fatalf("push value: %v", err)
	}

	wantAddr := createAddress(caller, statedb.GetNonce(caller))
	var pc uint64
	if _, err := opCreate(&pc, evm, f); err != nil {
		t.Fatalf("opCreate: %v", err)
	}

	pushed, err := f.Stack.Peek()
	if err != nil {
		t.Fatalf("Peek: %v", err)
	}
	gotAddr := wordToAddress(pushed)
	if gotAddr != wantAddr {
		t.Fatalf("pushed address = %x, want %x", gotAddr, wantAddr)
	}
	if got := statedb.GetCode(gotAddr); !bytes.Equal(got, []byte{0xfe}) {
		t.Fatalf("deployed runtime code = %x, want [fe]", got)
	}
}

// TestOpCreatePushesZeroOnFailure checks that a failed CREATE (here, an
// init-code size over the limit) pushes zero rather than propagating an
// error out of the opcode handler -- CREATE failures are reported on the
// stack, not as execution errors.
func TestOpCreatePushesZeroOnFailure(t *testing.T) {
	evm, statedb := newTestEVM(t)

	caller := types.Address{0x01}
	statedb.CreateAccount(caller)
	statedb.AddBalance(caller, uint256.NewInt(1<<32))

	initCode := make([]byte, MaxInitCodeSize+1)
	f := outerFrame(caller, initCode, 10_000_000)
	if err := f.Stack.Push(wordFromUint64(uint64(len(initCode)))); err != nil {
		t.Fatalf("push size: %v", err)
	}
	if err := f.Stack.Push(wordFromUint64(0)); err != nil {
		t.Fatalf("push offset: %v", err)
	}
	if err := f.Stack.Push(newWord()); err != nil {
		t.Fatalf("push value: %v", err)
	}

	var pc uint64
	if _, err := opCreate(&pc, evm, f); err != nil {
		t.Fatalf("opCreate returned an error instead of pushing zero: %v", err)
	}
	pushed, err := f.Stack.Peek()
	if err != nil {
		t.Fatalf("Peek: %v", err)
	}
	if !pushed.IsZero() {
		t.Fatalf("pushed value = %s, want zero after an oversized init code", pushed.String())
	}
}

// TestOpCreate2AddressIsSaltDependent checks that CREATE2's deployed address
// depends on the salt, matching create2Address's own derivation.
func TestOpCreate2AddressIsSaltDependent(t *testing.T) {
	evm, statedb := newTestEVM(t)

	caller := types.Address{0x01}
	statedb.CreateAccount(caller)
	statedb.AddBalance(caller, uint256.NewInt(1<<32))

	initCode := []byte{
		byte(PUSH1), 0xfe,
		byte(PUSH1), 0,
		byte(MSTORE8),
		byte(PUSH1), 1,
		byte(PUSH1), 0,
		byte(RETURN),
	}
	salt := wordFromUint64(42)

	f := outerFrame(caller, initCode, 1_000_000)
	// CREATE2 pops value, offset, size, salt (top to bottom): push salt,
	// size, offset, value so value ends up on top.
	if err := f.Stack.Push(salt); err != nil {
		t.Fatalf("push salt: %v", err)
	}
	if err := f.Stack.Push(wordFromUint64(uint64(len(initCode)))); err != nil {
		t.Fatalf("push size: %v", err)
	}
	if err := f.Stack.Push(wordFromUint64(0)); err != nil {
		t.Fatalf("push offset: %v", err)
	}
	if err := f.Stack.Push(newWord()); err != nil {
		t.Fatalf("push value: %v", err)
	}

	initCodeHash := crypto.Keccak256(initCode)
	wantAddr := create2Address(caller, salt, initCodeHash)

	var pc uint64
	if _, err := opCreate2(&pc, evm, f); err != nil {
		t.Fatalf("opCreate2: %v", err)
	}
	pushed, err := f.Stack.Peek()
	if err != nil {
		t.Fatalf("Peek: %v", err)
	}
	if gotAddr := wordToAddress(pushed); gotAddr != wantAddr {
		t.Fatalf("pushed address = %x, want %x", gotAddr, wantAddr)
	}
}
