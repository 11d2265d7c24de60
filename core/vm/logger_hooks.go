package vm

import "github.com/coreevm/coreevm/core/types"

// EVMLogger receives read-only notifications of execution progress. It
// exists so a shadow/debug tracer can observe every step without being able
// to influence it: no hook method returns a value the interpreter consults.
// Grounded on the teacher's Config.Tracer field (core/vm/interpreter.go),
// narrowed to the four events that matter at the frame/instruction level
// named in scope (transaction-level tracing concerns stay with the host).
type EVMLogger interface {
	// CaptureStart fires once, when the top-level call begins.
	CaptureStart(from, to types.Address, create bool, input []byte, gas uint64, value *Word)
	// CaptureState fires before each instruction executes.
	CaptureState(pc uint64, op OpCode, gas, cost uint64, frame *Frame, depth int, err error)
	// CaptureEnter fires when a child frame (CALL/CREATE family) is entered.
	CaptureEnter(kind FrameKind, from, to types.Address, input []byte, gas uint64, value *Word)
	// CaptureExit fires when a frame (top-level or child) returns.
	CaptureExit(output []byte, gasUsed uint64, err error)
}
