package vm

// instructions_storage.go implements persistent and transient storage
// access: SLOAD, SSTORE, TLOAD, TSTORE. Adapted from the teacher's
// opSload/opSstore/opTload/opTstore (core/vm/instructions.go). The EIP-2929
// cold/warm surcharge and the EIP-2200/3529 SSTORE refund are computed in
// gasSstore/gasSload (gas_dynamic.go), which run before these handlers as
// the operation's dynamicGas step; by the time opSstore executes, gas has
// already been charged and the refund already applied.

func opSload(pc *uint64, evm *EVM, frame *Frame) ([]byte, error) {
	loc, _ := frame.Stack.Peek()
	key := wordToHash(loc)
	val := evm.StateDB.GetState(frame.Self, key)
	loc.Set(hashToWord(val))
	return nil, nil
}

func opSstore(pc *uint64, evm *EVM, frame *Frame) ([]byte, error) {
	loc, _ := frame.Stack.Pop()
	val, _ := frame.Stack.Pop()
	key := wordToHash(loc)
	value := wordToHash(val)
	evm.StateDB.SetState(frame.Self, key, value)
	return nil, nil
}

func opTload(pc *uint64, evm *EVM, frame *Frame) ([]byte, error) {
	loc, _ := frame.Stack.Peek()
	key := wordToHash(loc)
	val := evm.StateDB.GetTransientState(frame.Self, key)
	loc.Set(hashToWord(val))
	return nil, nil
}

func opTstore(pc *uint64, evm *EVM, frame *Frame) ([]byte, error) {
	loc, _ := frame.Stack.Pop()
	val, _ := frame.Stack.Pop()
	key := wordToHash(loc)
	value := wordToHash(val)
	evm.StateDB.SetTransientState(frame.Self, key, value)
	return nil, nil
}
