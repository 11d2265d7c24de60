package vm

import "github.com/ethereum/go-ethereum/crypto"

// instructions_arithmetic.go implements the 256-bit arithmetic, comparison,
// bitwise, and KECCAK256 opcode groups. Adapted from the teacher's
// opAdd..opKeccak256 (core/vm/instructions.go), which operate on math/big
// and mask to 256 bits after every step; Word's uint256.Int representation
// does that wraparound internally, so the toU256/toS256/fromS256 helpers
// the teacher needs disappear entirely here.
//
// Every handler below pops and pushes through the Frame's Stack without
// checking Pop/Peek's error return: the bytecode analyzer already verified,
// once per basic block, that the block's net stack effect cannot underflow
// or overflow (see analysis.go), so no single instruction inside a
// validated block can fail these operations.

func opAdd(pc *uint64, evm *EVM, frame *Frame) ([]byte, error) {
	x, _ := frame.Stack.Pop()
	y, _ := frame.Stack.Peek()
	y.Add(x, y)
	return nil, nil
}

func opMul(pc *uint64, evm *EVM, frame *Frame) ([]byte, error) {
	x, _ := frame.Stack.Pop()
	y, _ := frame.Stack.Peek()
	y.Mul(x, y)
	return nil, nil
}

func opSub(pc *uint64, evm *EVM, frame *Frame) ([]byte, error) {
	x, _ := frame.Stack.Pop()
	y, _ := frame.Stack.Peek()
	y.Sub(x, y)
	return nil, nil
}

func opDiv(pc *uint64, evm *EVM, frame *Frame) ([]byte, error) {
	x, _ := frame.Stack.Pop()
	y, _ := frame.Stack.Peek()
	y.Div(x, y)
	return nil, nil
}

func opSdiv(pc *uint64, evm *EVM, frame *Frame) ([]byte, error) {
	x, _ := frame.Stack.Pop()
	y, _ := frame.Stack.Peek()
	y.SDiv(x, y)
	return nil, nil
}

func opMod(pc *uint64, evm *EVM, frame *Frame) ([]byte, error) {
	x, _ := frame.Stack.Pop()
	y, _ := frame.Stack.Peek()
	y.Mod(x, y)
	return nil, nil
}

func opSmod(pc *uint64, evm *EVM, frame *Frame) ([]byte, error) {
	x, _ := frame.Stack.Pop()
	y, _ := frame.Stack.Peek()
	y.SMod(x, y)
	return nil, nil
}

func opAddmod(pc *uint64, evm *EVM, frame *Frame) ([]byte, error) {
	x, _ := frame.Stack.Pop()
	y, _ := frame.Stack.Pop()
	z, _ := frame.Stack.Peek()
	if z.IsZero() {
		z.Clear()
	} else {
		z.AddMod(x, y, z)
	}
	return nil, nil
}

func opMulmod(pc *uint64, evm *EVM, frame *Frame) ([]byte, error) {
	x, _ := frame.Stack.Pop()
	y, _ := frame.Stack.Pop()
	z, _ := frame.Stack.Peek()
	if z.IsZero() {
		z.Clear()
	} else {
		z.MulMod(x, y, z)
	}
	return nil, nil
}

func opExp(pc *uint64, evm *EVM, frame *Frame) ([]byte, error) {
	base, _ := frame.Stack.Pop()
	exponent, _ := frame.Stack.Peek()
	exponent.Exp(base, exponent)
	return nil, nil
}

func opSignExtend(pc *uint64, evm *EVM, frame *Frame) ([]byte, error) {
	back, _ := frame.Stack.Pop()
	num, _ := frame.Stack.Peek()
	num.ExtendSign(num, back)
	return nil, nil
}

func opLt(pc *uint64, evm *EVM, frame *Frame) ([]byte, error) {
	x, _ := frame.Stack.Pop()
	y, _ := frame.Stack.Peek()
	if x.Lt(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return nil, nil
}

func opGt(pc *uint64, evm *EVM, frame *Frame) ([]byte, error) {
	x, _ := frame.Stack.Pop()
	y, _ := frame.Stack.Peek()
	if x.Gt(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return nil, nil
}

func opSlt(pc *uint64, evm *EVM, frame *Frame) ([]byte, error) {
	x, _ := frame.Stack.Pop()
	y, _ := frame.Stack.Peek()
	if x.Slt(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return nil, nil
}

func opSgt(pc *uint64, evm *EVM, frame *Frame) ([]byte, error) {
	x, _ := frame.Stack.Pop()
	y, _ := frame.Stack.Peek()
	if x.Sgt(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return nil, nil
}

func opEq(pc *uint64, evm *EVM, frame *Frame) ([]byte, error) {
	x, _ := frame.Stack.Pop()
	y, _ := frame.Stack.Peek()
	if x.Eq(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return nil, nil
}

func opIsZero(pc *uint64, evm *EVM, frame *Frame) ([]byte, error) {
	x, _ := frame.Stack.Peek()
	if x.IsZero() {
		x.SetOne()
	} else {
		x.Clear()
	}
	return nil, nil
}

func opAnd(pc *uint64, evm *EVM, frame *Frame) ([]byte, error) {
	x, _ := frame.Stack.Pop()
	y, _ := frame.Stack.Peek()
	y.And(x, y)
	return nil, nil
}

func opOr(pc *uint64, evm *EVM, frame *Frame) ([]byte, error) {
	x, _ := frame.Stack.Pop()
	y, _ := frame.Stack.Peek()
	y.Or(x, y)
	return nil, nil
}

func opXor(pc *uint64, evm *EVM, frame *Frame) ([]byte, error) {
	x, _ := frame.Stack.Pop()
	y, _ := frame.Stack.Peek()
	y.Xor(x, y)
	return nil, nil
}

func opNot(pc *uint64, evm *EVM, frame *Frame) ([]byte, error) {
	x, _ := frame.Stack.Peek()
	x.Not(x)
	return nil, nil
}

func opByte(pc *uint64, evm *EVM, frame *Frame) ([]byte, error) {
	th, _ := frame.Stack.Pop()
	val, _ := frame.Stack.Peek()
	val.Byte(th)
	return nil, nil
}

func opShl(pc *uint64, evm *EVM, frame *Frame) ([]byte, error) {
	shift, _ := frame.Stack.Pop()
	value, _ := frame.Stack.Peek()
	if shift.LtUint64(256) {
		value.Lsh(value, uint(shift.Uint64()))
	} else {
		value.Clear()
	}
	return nil, nil
}

func opShr(pc *uint64, evm *EVM, frame *Frame) ([]byte, error) {
	shift, _ := frame.Stack.Pop()
	value, _ := frame.Stack.Peek()
	if shift.LtUint64(256) {
		value.Rsh(value, uint(shift.Uint64()))
	} else {
		value.Clear()
	}
	return nil, nil
}

func opSar(pc *uint64, evm *EVM, frame *Frame) ([]byte, error) {
	shift, _ := frame.Stack.Pop()
	value, _ := frame.Stack.Peek()
	if shift.GtUint64(256) {
		if value.Sign() >= 0 {
			value.Clear()
		} else {
			value.SetAllOne()
		}
		return nil, nil
	}
	value.SRsh(value, uint(shift.Uint64()))
	return nil, nil
}

func opKeccak256(pc *uint64, evm *EVM, frame *Frame) ([]byte, error) {
	offset, _ := frame.Stack.Pop()
	size, _ := frame.Stack.Peek()
	data := frame.Memory.GetPtr(offset.Uint64(), size.Uint64())
	hash := crypto.Keccak256(data)
	size.SetBytes(hash)
	return nil, nil
}
