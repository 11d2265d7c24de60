package vm

// instructions_call.go implements the CALL family (CALL, CALLCODE,
// DELEGATECALL, STATICCALL) and SELFDESTRUCT. Adapted from the teacher's
// opCall..opStaticCall and opSelfdestruct (core/vm/instructions.go). Gas
// forwarding follows the EIP-150 63/64 rule via ForwardGas (frame.go):
// the stack's gas argument is a request, not a guarantee, capped at what
// the calling frame can actually spare.

func callArgs(frame *Frame) (gasHint *Word, addr *Word, argsOffset, argsSize, retOffset, retSize *Word) {
	gasHint, _ = frame.Stack.Pop()
	addr, _ = frame.Stack.Pop()
	argsOffset, _ = frame.Stack.Pop()
	argsSize, _ = frame.Stack.Pop()
	retOffset, _ = frame.Stack.Pop()
	retSize, _ = frame.Stack.Pop()
	return
}

func requestedGas(hint *Word, available uint64) uint64 {
	if !hint.IsUint64() || hint.Uint64() > available {
		return available
	}
	return hint.Uint64()
}

// writeCallResult copies the child's output into the caller's return-data
// buffer and, clipped to whatever was actually returned, into memory at
// retOffset, then pushes the success flag.
func writeCallResult(frame *Frame, ret []byte, retOffset, retSize *Word, callErr error) ([]byte, error) {
	frame.ReturnData.Set(ret)
	if n := retSize.Uint64(); n > 0 && len(ret) > 0 {
		if uint64(len(ret)) < n {
			n = uint64(len(ret))
		}
		frame.Memory.Set(retOffset.Uint64(), n, ret[:n])
	}
	if callErr != nil {
		return nil, frame.Stack.Push(newWord())
	}
	return nil, frame.Stack.Push(wordFromUint64(1))
}

func opCall(pc *uint64, evm *EVM, frame *Frame) ([]byte, error) {
	gasHint, _ := frame.Stack.Pop()
	addrWord, _ := frame.Stack.Pop()
	value, _ := frame.Stack.Pop()
	argsOffset, _ := frame.Stack.Pop()
	argsSize, _ := frame.Stack.Pop()
	retOffset, _ := frame.Stack.Pop()
	retSize, _ := frame.Stack.Pop()
	addr := wordToAddress(addrWord)

	// A value-transferring CALL from a static frame is not the soft
	// zero-and-continue failure the callee's own errors get: like SSTORE,
	// it is a hard write-protection violation that terminates this frame
	// and burns its remaining gas, so it must propagate as a real error
	// rather than route through writeCallResult.
	if frame.ReadOnly && !value.IsZero() {
		return nil, ErrWriteProtection
	}

	args := frame.Memory.GetCopy(argsOffset.Uint64(), argsSize.Uint64())

	childGas, deduction := ForwardGas(frame.Gas, requestedGas(gasHint, frame.Gas), !value.IsZero())
	if !frame.UseGas(deduction) {
		return nil, ErrOutOfGas
	}
	ret, gasLeft, err := evm.Call(frame.Self, addr, args, childGas, value, frame.ReadOnly)
	frame.Gas += gasLeft
	return writeCallResult(frame, ret, retOffset, retSize, err)
}

func opCallCode(pc *uint64, evm *EVM, frame *Frame) ([]byte, error) {
	gasHint, _ := frame.Stack.Pop()
	addrWord, _ := frame.Stack.Pop()
	value, _ := frame.Stack.Pop()
	argsOffset, _ := frame.Stack.Pop()
	argsSize, _ := frame.Stack.Pop()
	retOffset, _ := frame.Stack.Pop()
	retSize, _ := frame.Stack.Pop()
	addr := wordToAddress(addrWord)

	if frame.ReadOnly && !value.IsZero() {
		return nil, ErrWriteProtection
	}

	args := frame.Memory.GetCopy(argsOffset.Uint64(), argsSize.Uint64())

	childGas, deduction := ForwardGas(frame.Gas, requestedGas(gasHint, frame.Gas), !value.IsZero())
	if !frame.UseGas(deduction) {
		return nil, ErrOutOfGas
	}
	ret, gasLeft, err := evm.CallCode(frame.Self, addr, args, childGas, value, frame.ReadOnly)
	frame.Gas += gasLeft
	return writeCallResult(frame, ret, retOffset, retSize, err)
}

func opDelegateCall(pc *uint64, evm *EVM, frame *Frame) ([]byte, error) {
	gasHint, addrWord, argsOffset, argsSize, retOffset, retSize := callArgs(frame)
	addr := wordToAddress(addrWord)
	args := frame.Memory.GetCopy(argsOffset.Uint64(), argsSize.Uint64())

	childGas, deduction := ForwardGas(frame.Gas, requestedGas(gasHint, frame.Gas), false)
	if !frame.UseGas(deduction) {
		return nil, ErrOutOfGas
	}
	ret, gasLeft, err := evm.DelegateCall(frame.Caller, frame.Self, frame.Value, addr, args, childGas)
	frame.Gas += gasLeft
	return writeCallResult(frame, ret, retOffset, retSize, err)
}

func opStaticCall(pc *uint64, evm *EVM, frame *Frame) ([]byte, error) {
	gasHint, addrWord, argsOffset, argsSize, retOffset, retSize := callArgs(frame)
	addr := wordToAddress(addrWord)
	args := frame.Memory.GetCopy(argsOffset.Uint64(), argsSize.Uint64())

	childGas, deduction := ForwardGas(frame.Gas, requestedGas(gasHint, frame.Gas), false)
	if !frame.UseGas(deduction) {
		return nil, ErrOutOfGas
	}
	ret, gasLeft, err := evm.StaticCall(frame.Self, addr, args, childGas)
	frame.Gas += gasLeft
	return writeCallResult(frame, ret, retOffset, retSize, err)
}

// opSelfDestruct implements SELFDESTRUCT per EIP-6780 (Cancun): balance is
// always swept to the beneficiary, but account deletion only actually takes
// effect if the contract was created earlier in the same transaction, a
// fact only the host's StateDB implementation can track across calls.
// SelfDestruct here only records the intent; HasSelfDestructed lets the
// host's end-of-transaction commit decide.
func opSelfDestruct(pc *uint64, evm *EVM, frame *Frame) ([]byte, error) {
	beneficiaryWord, _ := frame.Stack.Pop()
	beneficiary := wordToAddress(beneficiaryWord)

	balance := evm.StateDB.GetBalance(frame.Self)
	if !balance.IsZero() {
		evm.StateDB.AddBalance(beneficiary, balance)
		evm.StateDB.SubBalance(frame.Self, balance)
	}
	evm.StateDB.SelfDestruct(frame.Self)
	return nil, nil
}
