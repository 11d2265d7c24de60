package vm

import (
	"github.com/coreevm/coreevm/core/types"
)

// FrameKind enumerates the instruction that opened a Frame. Adapted from the
// teacher's CallFrameType (core/vm/call_frame.go).
type FrameKind uint8

const (
	FrameCall FrameKind = iota
	FrameStaticCall
	FrameDelegateCall
	FrameCallCode
	FrameCreate
	FrameCreate2
)

func (k FrameKind) String() string {
	switch k {
	case FrameCall:
		return "CALL"
	case FrameStaticCall:
		return "STATICCALL"
	case FrameDelegateCall:
		return "DELEGATECALL"
	case FrameCallCode:
		return "CALLCODE"
	case FrameCreate:
		return "CREATE"
	case FrameCreate2:
		return "CREATE2"
	default:
		return "UNKNOWN"
	}
}

// IsCreate reports whether this frame is deploying a new contract.
func (k FrameKind) IsCreate() bool { return k == FrameCreate || k == FrameCreate2 }

// Frame is one level of the EVM call stack: the merged equivalent of the
// teacher's Contract (core/vm/contract.go) and CallFrame
// (core/vm/call_frame.go), which coreevm folds into a single type since
// every field of CallFrame is either redundant with Contract or is local
// bookkeeping the interpreter can hold directly.
type Frame struct {
	Kind FrameKind

	Caller types.Address
	Self   types.Address // executing account (ADDRESS, storage); under DELEGATECALL/CALLCODE it is the calling contract, not the account the code came from
	Code   []byte
	CodeHash types.Hash
	analysis *codeAnalysis

	Input []byte
	Value *Word

	Gas      uint64
	GasStart uint64

	Depth      int
	ReadOnly   bool
	SnapshotID int

	Stack      *Stack
	Memory     *Memory
	ReturnData ReturnData

	pc uint64
}

// NewFrame constructs a Frame ready to begin execution at pc 0.
func NewFrame(kind FrameKind, caller, self types.Address, code []byte, codeHash types.Hash, input []byte, value *Word, gas uint64, depth int, readOnly bool) *Frame {
	if value == nil {
		value = newWord()
	}
	return &Frame{
		Kind:     kind,
		Caller:   caller,
		Self:     self,
		Code:     code,
		CodeHash: codeHash,
		analysis: analyze(code),
		Input:    input,
		Value:    value,
		Gas:      gas,
		GasStart: gas,
		Depth:    depth,
		ReadOnly: readOnly,
		Stack:    NewStack(),
		Memory:   NewMemory(),
	}
}

// PC returns the current program counter.
func (f *Frame) PC() uint64 { return f.pc }

// SetPC sets the program counter, used by JUMP/JUMPI.
func (f *Frame) SetPC(pc uint64) { f.pc = pc }

// GasUsed returns how much gas this frame has consumed so far.
func (f *Frame) GasUsed() uint64 { return f.GasStart - f.Gas }

// GetOp returns the opcode at position n, or STOP past the end of code (the
// Yellow Paper's implicit-STOP-padding convention).
func (f *Frame) GetOp(n uint64) OpCode {
	if n < uint64(len(f.Code)) {
		return OpCode(f.Code[n])
	}
	return STOP
}

// UseGas attempts to deduct gas from the frame; reports false (without
// mutating Gas) if insufficient.
func (f *Frame) UseGas(gas uint64) bool {
	if f.Gas < gas {
		return false
	}
	f.Gas -= gas
	return true
}

// ValidJumpdest reports whether dest is a JUMPDEST opcode reachable outside
// of PUSH immediate data, using the Frame's cached bytecode analysis.
func (f *Frame) ValidJumpdest(dest *Word) bool {
	if dest.BitLen() > 63 {
		return false
	}
	udest := dest.Uint64()
	return f.analysis.isJumpdest(udest)
}

// ForwardGas computes the gas to forward to a child call under the EIP-150
// 63/64 rule, adding the call stipend when value is transferred. Grounded on
// the teacher's ForwardGas (core/vm/call_frame.go).
func ForwardGas(available, requested uint64, transfersValue bool) (childGas, callerDeduction uint64) {
	retained := available / CallGasFraction
	maxForward := available - retained
	if requested > maxForward {
		requested = maxForward
	}
	callerDeduction = requested
	if transfersValue {
		requested = safeAdd(requested, CallStipend)
	}
	return requested, callerDeduction
}
