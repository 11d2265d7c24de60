package vm

// instructions_flow.go implements control flow and termination: JUMP,
// JUMPI, PC, JUMPDEST, STOP, RETURN, REVERT, and INVALID. Adapted from the
// teacher's opJump..opInvalid (core/vm/instructions.go); jump-target
// validity is checked via Frame.ValidJumpdest, which consults the cached
// bytecode analysis rather than the teacher's Contract.validJumpdest linear
// scan.

func opJump(pc *uint64, evm *EVM, frame *Frame) ([]byte, error) {
	dest, _ := frame.Stack.Pop()
	if !frame.ValidJumpdest(dest) {
		return nil, ErrInvalidJump
	}
	*pc = dest.Uint64()
	return nil, nil
}

func opJumpi(pc *uint64, evm *EVM, frame *Frame) ([]byte, error) {
	dest, _ := frame.Stack.Pop()
	cond, _ := frame.Stack.Pop()
	if cond.IsZero() {
		*pc++
		return nil, nil
	}
	if !frame.ValidJumpdest(dest) {
		return nil, ErrInvalidJump
	}
	*pc = dest.Uint64()
	return nil, nil
}

func opPC(pc *uint64, evm *EVM, frame *Frame) ([]byte, error) {
	return nil, frame.Stack.Push(wordFromUint64(*pc))
}

func opJumpdest(pc *uint64, evm *EVM, frame *Frame) ([]byte, error) {
	return nil, nil
}

func opStop(pc *uint64, evm *EVM, frame *Frame) ([]byte, error) {
	return nil, nil
}

func opReturn(pc *uint64, evm *EVM, frame *Frame) ([]byte, error) {
	offset, _ := frame.Stack.Pop()
	size, _ := frame.Stack.Pop()
	return frame.Memory.GetCopy(offset.Uint64(), size.Uint64()), nil
}

func opRevert(pc *uint64, evm *EVM, frame *Frame) ([]byte, error) {
	offset, _ := frame.Stack.Pop()
	size, _ := frame.Stack.Pop()
	return frame.Memory.GetCopy(offset.Uint64(), size.Uint64()), ErrExecutionReverted
}

func opInvalid(pc *uint64, evm *EVM, frame *Frame) ([]byte, error) {
	return nil, ErrInvalidOpcode
}
