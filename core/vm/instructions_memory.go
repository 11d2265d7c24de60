package vm

// instructions_memory.go implements memory/stack-manipulation opcodes: POP,
// MLOAD/MSTORE/MSTORE8, MSIZE, MCOPY, PUSH0..PUSH32, DUP1..DUP16, and
// SWAP1..SWAP16. Adapted from the teacher's opPop..opMstore8 and
// makePush/makeDup/makeSwap (core/vm/instructions.go).

func opPop(pc *uint64, evm *EVM, frame *Frame) ([]byte, error) {
	_, _ = frame.Stack.Pop()
	return nil, nil
}

func opMload(pc *uint64, evm *EVM, frame *Frame) ([]byte, error) {
	offset, _ := frame.Stack.Peek()
	off := offset.Uint64()
	offset.SetBytes(frame.Memory.GetPtr(off, 32))
	return nil, nil
}

func opMstore(pc *uint64, evm *EVM, frame *Frame) ([]byte, error) {
	offset, _ := frame.Stack.Pop()
	val, _ := frame.Stack.Pop()
	frame.Memory.Set32(offset.Uint64(), val)
	return nil, nil
}

func opMstore8(pc *uint64, evm *EVM, frame *Frame) ([]byte, error) {
	offset, _ := frame.Stack.Pop()
	val, _ := frame.Stack.Pop()
	frame.Memory.Set(offset.Uint64(), 1, []byte{byte(val.Uint64())})
	return nil, nil
}

func opMsize(pc *uint64, evm *EVM, frame *Frame) ([]byte, error) {
	return nil, frame.Stack.Push(wordFromUint64(uint64(frame.Memory.Len())))
}

func opGas(pc *uint64, evm *EVM, frame *Frame) ([]byte, error) {
	return nil, frame.Stack.Push(wordFromUint64(frame.Gas))
}

func opMcopy(pc *uint64, evm *EVM, frame *Frame) ([]byte, error) {
	dst, _ := frame.Stack.Pop()
	src, _ := frame.Stack.Pop()
	size, _ := frame.Stack.Pop()
	l := size.Uint64()
	if l == 0 {
		return nil, nil
	}
	frame.Memory.Copy(dst.Uint64(), src.Uint64(), l)
	return nil, nil
}

func opPush0(pc *uint64, evm *EVM, frame *Frame) ([]byte, error) {
	return nil, frame.Stack.Push(newWord())
}

// makePush returns an executionFunc pushing the n big-endian immediate
// bytes following the PUSH opcode, zero-padded if code ends early.
func makePush(n int) executionFunc {
	return func(pc *uint64, evm *EVM, frame *Frame) ([]byte, error) {
		start := *pc + 1
		codeLen := uint64(len(frame.Code))

		data := make([]byte, n)
		if start < codeLen {
			end := start + uint64(n)
			if end > codeLen {
				end = codeLen
			}
			copy(data, frame.Code[start:end])
		}
		w := newWord().SetBytes(data)
		*pc += uint64(n)
		return nil, frame.Stack.Push(w)
	}
}

// makeDup returns an executionFunc duplicating the nth stack item
// (1 = top, matching DUP1..DUP16).
func makeDup(n int) executionFunc {
	return func(pc *uint64, evm *EVM, frame *Frame) ([]byte, error) {
		return nil, frame.Stack.Dup(n)
	}
}

// makeSwap returns an executionFunc exchanging the top item with the nth
// item from the top (1 = second-from-top, matching SWAP1..SWAP16).
func makeSwap(n int) executionFunc {
	return func(pc *uint64, evm *EVM, frame *Frame) ([]byte, error) {
		return nil, frame.Stack.Swap(n)
	}
}
