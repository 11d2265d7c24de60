package vm

// instructions_create.go implements CREATE and CREATE2. Adapted from the
// teacher's opCreate/opCreate2 (core/vm/instructions.go). Unlike the CALL
// family, a CREATE forwards its entire remaining gas (capped by the same
// EIP-150 63/64 rule, applied inside EVM.create) rather than reading a
// caller-supplied gas hint, since the opcode has no gas argument on the
// stack.

func opCreate(pc *uint64, evm *EVM, frame *Frame) ([]byte, error) {
	value, _ := frame.Stack.Pop()
	offset, _ := frame.Stack.Pop()
	size, _ := frame.Stack.Pop()
	initCode := frame.Memory.GetCopy(offset.Uint64(), size.Uint64())

	gas := frame.Gas
	frame.Gas = 0
	ret, addr, gasLeft, err := evm.Create(frame.Self, initCode, gas, value)
	frame.Gas = gasLeft
	frame.ReturnData.Set(ret)

	if err != nil {
		return nil, frame.Stack.Push(newWord())
	}
	return nil, frame.Stack.Push(addressToWord(addr))
}

func opCreate2(pc *uint64, evm *EVM, frame *Frame) ([]byte, error) {
	value, _ := frame.Stack.Pop()
	offset, _ := frame.Stack.Pop()
	size, _ := frame.Stack.Pop()
	salt, _ := frame.Stack.Pop()
	initCode := frame.Memory.GetCopy(offset.Uint64(), size.Uint64())

	gas := frame.Gas
	frame.Gas = 0
	ret, addr, gasLeft, err := evm.Create2(frame.Self, initCode, gas, value, salt)
	frame.Gas = gasLeft
	frame.ReturnData.Set(ret)

	if err != nil {
		return nil, frame.Stack.Push(newWord())
	}
	return nil, frame.Stack.Push(addressToWord(addr))
}
