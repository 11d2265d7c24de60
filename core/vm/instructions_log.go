package vm

import "github.com/coreevm/coreevm/core/types"

// instructions_log.go implements LOG0..LOG4. Adapted from the teacher's
// makeLog (core/vm/instructions.go); read-only enforcement now happens at
// the jump-table level (operation.writes), so the handler itself no longer
// checks evm.readOnly.
func makeLog(n int) executionFunc {
	return func(pc *uint64, evm *EVM, frame *Frame) ([]byte, error) {
		offset, _ := frame.Stack.Pop()
		size, _ := frame.Stack.Pop()
		topics := make([]types.Hash, n)
		for i := 0; i < n; i++ {
			t, _ := frame.Stack.Pop()
			topics[i] = wordToHash(t)
		}
		data := frame.Memory.GetCopy(offset.Uint64(), size.Uint64())
		evm.StateDB.AddLog(&types.Log{
			Address: frame.Self,
			Topics:  topics,
			Data:    data,
		})
		return nil, nil
	}
}
