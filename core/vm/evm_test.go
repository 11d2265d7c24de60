package vm

import (
	"bytes"
	"testing"

	"github.com/holiman/uint256"

	"github.com/coreevm/coreevm/core/types"
)

// newTestEVM wires a MemoryStateDB into a fresh EVM with deterministic block
// and transaction context, enough to run a self-contained bytecode program
// with no external state dependencies.
func newTestEVM(t *testing.T) (*EVM, *MemoryStateDB) {
	t.Helper()
	statedb := NewMemoryStateDB()
	blockCtx := BlockContext{
		GetHash:     func(uint64) types.Hash { return types.Hash{} },
		BlockNumber: 1,
		GasLimit:    30_000_000,
		BaseFee:     uint256.NewInt(1),
	}
	txCtx := TxContext{
		GasPrice: uint256.NewInt(1),
		ChainID:  1,
	}
	evm := NewEVM(blockCtx, txCtx, statedb, Config{})
	return evm, statedb
}

// TestEVMCallAddAndReturn runs PUSH1 1, PUSH1 2, ADD, PUSH1 0, MSTORE,
// PUSH1 32, PUSH1 0, RETURN and checks that it returns the 32-byte
// big-endian encoding of 3.
func TestEVMCallAddAndReturn(t *testing.T) {
	evm, statedb := newTestEVM(t)

	caller := types.Address{0x01}
	to := types.Address{0x02}
	statedb.CreateAccount(caller)
	statedb.AddBalance(caller, uint256.NewInt(1<<32))
	statedb.CreateAccount(to)

	code := []byte{
		byte(PUSH1), 1,
		byte(PUSH1), 2,
		byte(ADD),
		byte(PUSH1), 0,
		byte(MSTORE),
		byte(PUSH1), 32,
		byte(PUSH1), 0,
		byte(RETURN),
	}
	statedb.SetCode(to, code)
	evm.PreWarmAccessList(caller, &to, nil)

	ret, gasLeft, err := evm.Call(caller, to, nil, 100_000, uint256.NewInt(0), false)
	if err != nil {
		t.Fatalf("Call returned error: %v", err)
	}
	if gasLeft == 0 {
		t.Fatal("gasLeft = 0, want some gas remaining after a cheap program")
	}

	want := make([]byte, 32)
	want[31] = 3
	if !bytes.Equal(ret, want) {
		t.Fatalf("return data = %x, want %x", ret, want)
	}
}

// TestEVMCallRevertRestoresState checks that a REVERT both propagates
// ErrExecutionReverted and rolls back state mutated before the revert (here,
// an SSTORE).
func TestEVMCallRevertRestoresState(t *testing.T) {
	evm, statedb := newTestEVM(t)

	caller := types.Address{0x01}
	to := types.Address{0x02}
	statedb.CreateAccount(caller)
	statedb.AddBalance(caller, uint256.NewInt(1<<32))
	statedb.CreateAccount(to)

	// PUSH1 1, PUSH1 0, SSTORE, PUSH1 0, PUSH1 0, REVERT
	code := []byte{
		byte(PUSH1), 1,
		byte(PUSH1), 0,
		byte(SSTORE),
		byte(PUSH1), 0,
		byte(PUSH1), 0,
		byte(REVERT),
	}
	statedb.SetCode(to, code)
	evm.PreWarmAccessList(caller, &to, nil)

	_, _, err := evm.Call(caller, to, nil, 100_000, uint256.NewInt(0), false)
	if err != ErrExecutionReverted {
		t.Fatalf("err = %v, want ErrExecutionReverted", err)
	}

	got := statedb.GetState(to, types.Hash{})
	if got != (types.Hash{}) {
		t.Fatalf("storage slot 0 = %x after revert, want zero (SSTORE must have been undone)", got)
	}
}

// TestEVMCallOutOfGas checks that a program whose block-prologue gas check
// exceeds the supplied gas limit fails with ErrOutOfGas rather than running
// any instructions.
func TestEVMCallOutOfGas(t *testing.T) {
	evm, statedb := newTestEVM(t)

	caller := types.Address{0x01}
	to := types.Address{0x02}
	statedb.CreateAccount(caller)
	statedb.CreateAccount(to)

	code := []byte{byte(PUSH1), 1, byte(PUSH1), 2, byte(ADD)}
	statedb.SetCode(to, code)
	evm.PreWarmAccessList(caller, &to, nil)

	_, gasLeft, err := evm.Call(caller, to, nil, 1, uint256.NewInt(0), false)
	if err != ErrOutOfGas {
		t.Fatalf("err = %v, want ErrOutOfGas", err)
	}
	if gasLeft != 0 {
		t.Fatalf("gasLeft = %d, want 0 after an out-of-gas failure", gasLeft)
	}
}

// TestEVMCallInvalidJumpDest checks that jumping into PUSH immediate data is
// rejected even when the immediate byte equals the JUMPDEST opcode value.
func TestEVMCallInvalidJumpDest(t *testing.T) {
	evm, statedb := newTestEVM(t)

	caller := types.Address{0x01}
	to := types.Address{0x02}
	statedb.CreateAccount(caller)
	statedb.CreateAccount(to)

	// PUSH1 4, JUMP, PUSH1 JUMPDEST(0x5b), STOP -- the jump target (pc=4,
	// the second PUSH1's immediate) holds the byte value 0x5b but is not a
	// real JUMPDEST.
	code := []byte{byte(PUSH1), 4, byte(JUMP), byte(PUSH1), byte(JUMPDEST), byte(STOP)}
	statedb.SetCode(to, code)
	evm.PreWarmAccessList(caller, &to, nil)

	_, _, err := evm.Call(caller, to, nil, 100_000, uint256.NewInt(0), false)
	if err != ErrInvalidJump {
		t.Fatalf("err = %v, want ErrInvalidJump", err)
	}
}

// TestEVMCallStaticCallWriteProtection checks that SSTORE inside a
// STATICCALL fails with ErrWriteProtection.
func TestEVMCallStaticCallWriteProtection(t *testing.T) {
	evm, statedb := newTestEVM(t)

	caller := types.Address{0x01}
	to := types.Address{0x02}
	statedb.CreateAccount(caller)
	statedb.CreateAccount(to)

	code := []byte{byte(PUSH1), 1, byte(PUSH1), 0, byte(SSTORE)}
	statedb.SetCode(to, code)
	evm.PreWarmAccessList(caller, &to, nil)

	_, _, err := evm.StaticCall(caller, to, nil, 100_000)
	if err != ErrWriteProtection {
		t.Fatalf("err = %v, want ErrWriteProtection", err)
	}
}

// TestEVMCreateDeploysCode checks that CREATE deploys the init code's return
// value as the new account's runtime code, at the deterministic
// caller/nonce-derived address.
func TestEVMCreateDeploysCode(t *testing.T) {
	evm, statedb := newTestEVM(t)

	caller := types.Address{0x01}
	statedb.CreateAccount(caller)
	statedb.AddBalance(caller, uint256.NewInt(1<<32))

	// Init code that returns a single-byte runtime program: PUSH1 0xfe,
	// PUSH1 0, MSTORE8, PUSH1 1, PUSH1 0, RETURN.
	initCode := []byte{
		byte(PUSH1), 0xfe,
		byte(PUSH1), 0,
		byte(MSTORE8),
		byte(PUSH1), 1,
		byte(PUSH1), 0,
		byte(RETURN),
	}

	wantAddr := createAddress(caller, statedb.GetNonce(caller))
	ret, addr, _, err := evm.Create(caller, initCode, 1_000_000, uint256.NewInt(0))
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if addr != wantAddr {
		t.Fatalf("deployed address = %x, want %x", addr, wantAddr)
	}
	if !bytes.Equal(ret, []byte{0xfe}) {
		t.Fatalf("init code return value = %x, want [fe]", ret)
	}
	if got := statedb.GetCode(addr); !bytes.Equal(got, []byte{0xfe}) {
		t.Fatalf("deployed runtime code = %x, want [fe]", got)
	}
	if statedb.GetNonce(caller) != 1 {
		t.Fatalf("caller nonce = %d, want 1 after CREATE", statedb.GetNonce(caller))
	}
}
