package vm

// instructions_environment.go implements the opcodes that read transaction,
// block, and account environment values: ADDRESS through BLOBBASEFEE, the
// EXTCODE* family, and RETURNDATASIZE/RETURNDATACOPY/RETURNDATALOAD.
// Adapted from the teacher's opAddress..opBlockhash (core/vm/instructions.go).

func opAddress(pc *uint64, evm *EVM, frame *Frame) ([]byte, error) {
	return nil, frame.Stack.Push(addressToWord(frame.Self))
}

func opBalance(pc *uint64, evm *EVM, frame *Frame) ([]byte, error) {
	w, _ := frame.Stack.Peek()
	addr := wordToAddress(w)
	w.Set(evm.StateDB.GetBalance(addr))
	return nil, nil
}

func opOrigin(pc *uint64, evm *EVM, frame *Frame) ([]byte, error) {
	return nil, frame.Stack.Push(addressToWord(evm.TxContext.Origin))
}

func opCaller(pc *uint64, evm *EVM, frame *Frame) ([]byte, error) {
	return nil, frame.Stack.Push(addressToWord(frame.Caller))
}

func opCallValue(pc *uint64, evm *EVM, frame *Frame) ([]byte, error) {
	return nil, frame.Stack.Push(frame.Value)
}

func opCalldataLoad(pc *uint64, evm *EVM, frame *Frame) ([]byte, error) {
	x, _ := frame.Stack.Peek()
	offset := x.Uint64()
	data := make([]byte, 32)
	if x.IsUint64() && offset < uint64(len(frame.Input)) {
		copy(data, frame.Input[offset:])
	}
	x.SetBytes(data)
	return nil, nil
}

func opCalldataSize(pc *uint64, evm *EVM, frame *Frame) ([]byte, error) {
	return nil, frame.Stack.Push(wordFromUint64(uint64(len(frame.Input))))
}

func opCalldataCopy(pc *uint64, evm *EVM, frame *Frame) ([]byte, error) {
	memOffset, _ := frame.Stack.Pop()
	dataOffset, _ := frame.Stack.Pop()
	length, _ := frame.Stack.Pop()
	copyFromSource(frame, memOffset, dataOffset, length, frame.Input)
	return nil, nil
}

func opCodeSize(pc *uint64, evm *EVM, frame *Frame) ([]byte, error) {
	return nil, frame.Stack.Push(wordFromUint64(uint64(len(frame.Code))))
}

func opCodeCopy(pc *uint64, evm *EVM, frame *Frame) ([]byte, error) {
	memOffset, _ := frame.Stack.Pop()
	codeOffset, _ := frame.Stack.Pop()
	length, _ := frame.Stack.Pop()
	copyFromSource(frame, memOffset, codeOffset, length, frame.Code)
	return nil, nil
}

// copyFromSource implements the shared *_COPY semantics: zero-extend reads
// that fall past the end of src rather than erroring, per CALLDATACOPY's
// and CODECOPY's Yellow Paper definitions.
func copyFromSource(frame *Frame, memOffset, srcOffset, length *Word, src []byte) {
	l := length.Uint64()
	if l == 0 {
		return
	}
	data := make([]byte, l)
	if srcOffset.IsUint64() {
		so := srcOffset.Uint64()
		if so < uint64(len(src)) {
			copy(data, src[so:])
		}
	}
	frame.Memory.Set(memOffset.Uint64(), l, data)
}

func opGasPrice(pc *uint64, evm *EVM, frame *Frame) ([]byte, error) {
	return nil, frame.Stack.Push(evm.TxContext.GasPrice)
}

func opExtCodeSize(pc *uint64, evm *EVM, frame *Frame) ([]byte, error) {
	w, _ := frame.Stack.Peek()
	addr := wordToAddress(w)
	w.SetUint64(uint64(evm.StateDB.GetCodeSize(addr)))
	return nil, nil
}

func opExtCodeCopy(pc *uint64, evm *EVM, frame *Frame) ([]byte, error) {
	addrWord, _ := frame.Stack.Pop()
	memOffset, _ := frame.Stack.Pop()
	codeOffset, _ := frame.Stack.Pop()
	length, _ := frame.Stack.Pop()
	code := evm.StateDB.GetCode(wordToAddress(addrWord))
	copyFromSource(frame, memOffset, codeOffset, length, code)
	return nil, nil
}

func opReturnDataSize(pc *uint64, evm *EVM, frame *Frame) ([]byte, error) {
	return nil, frame.Stack.Push(wordFromUint64(uint64(frame.ReturnData.Size())))
}

func opReturnDataCopy(pc *uint64, evm *EVM, frame *Frame) ([]byte, error) {
	memOffset, _ := frame.Stack.Pop()
	dataOffset, _ := frame.Stack.Pop()
	length, _ := frame.Stack.Pop()
	if !dataOffset.IsUint64() {
		return nil, ErrReturnDataOutOfBounds
	}
	data, err := frame.ReturnData.Get(dataOffset.Uint64(), length.Uint64())
	if err != nil {
		return nil, err
	}
	frame.Memory.Set(memOffset.Uint64(), length.Uint64(), data)
	return nil, nil
}

// opReturnDataLoad implements RETURNDATALOAD (EIP-7069): loads 32 bytes
// from the return-data buffer at the given offset, zero-extending past the
// end rather than erroring (unlike RETURNDATACOPY, which bounds-checks).
func opReturnDataLoad(pc *uint64, evm *EVM, frame *Frame) ([]byte, error) {
	w, _ := frame.Stack.Peek()
	if !w.IsUint64() {
		w.Clear()
		return nil, nil
	}
	w.SetBytes(frame.ReturnData.Load32(w.Uint64()))
	return nil, nil
}

func opExtCodeHash(pc *uint64, evm *EVM, frame *Frame) ([]byte, error) {
	w, _ := frame.Stack.Peek()
	addr := wordToAddress(w)
	if !evm.StateDB.Exist(addr) || evm.StateDB.Empty(addr) {
		w.Clear()
		return nil, nil
	}
	w.Set(hashToWord(evm.StateDB.GetCodeHash(addr)))
	return nil, nil
}

func opBlockHash(pc *uint64, evm *EVM, frame *Frame) ([]byte, error) {
	w, _ := frame.Stack.Peek()
	num := w.Uint64()
	upper := evm.Context.BlockNumber
	var lower uint64
	if upper > 256 {
		lower = upper - 256
	}
	if w.IsUint64() && num >= lower && num < upper && evm.Context.GetHash != nil {
		w.Set(hashToWord(evm.Context.GetHash(num)))
		return nil, nil
	}
	w.Clear()
	return nil, nil
}

func opCoinbase(pc *uint64, evm *EVM, frame *Frame) ([]byte, error) {
	return nil, frame.Stack.Push(addressToWord(evm.Context.Coinbase))
}

func opTimestamp(pc *uint64, evm *EVM, frame *Frame) ([]byte, error) {
	return nil, frame.Stack.Push(wordFromUint64(evm.Context.Time))
}

func opNumber(pc *uint64, evm *EVM, frame *Frame) ([]byte, error) {
	return nil, frame.Stack.Push(wordFromUint64(evm.Context.BlockNumber))
}

func opPrevRandao(pc *uint64, evm *EVM, frame *Frame) ([]byte, error) {
	return nil, frame.Stack.Push(hashToWord(evm.Context.PrevRandao))
}

func opGasLimit(pc *uint64, evm *EVM, frame *Frame) ([]byte, error) {
	return nil, frame.Stack.Push(wordFromUint64(evm.Context.GasLimit))
}

func opChainID(pc *uint64, evm *EVM, frame *Frame) ([]byte, error) {
	return nil, frame.Stack.Push(wordFromUint64(evm.TxContext.ChainID))
}

func opSelfBalance(pc *uint64, evm *EVM, frame *Frame) ([]byte, error) {
	return nil, frame.Stack.Push(evm.StateDB.GetBalance(frame.Self))
}

func opBaseFee(pc *uint64, evm *EVM, frame *Frame) ([]byte, error) {
	return nil, frame.Stack.Push(evm.Context.BaseFee)
}

func opBlobHash(pc *uint64, evm *EVM, frame *Frame) ([]byte, error) {
	w, _ := frame.Stack.Peek()
	if w.IsUint64() {
		i := w.Uint64()
		if i < uint64(len(evm.TxContext.BlobHashes)) {
			w.Set(hashToWord(evm.TxContext.BlobHashes[i]))
			return nil, nil
		}
	}
	w.Clear()
	return nil, nil
}

func opBlobBaseFee(pc *uint64, evm *EVM, frame *Frame) ([]byte, error) {
	return nil, frame.Stack.Push(evm.Context.BlobBaseFee)
}
