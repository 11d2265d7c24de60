package vm

import "github.com/holiman/uint256"

// stackLimit is the maximum number of items the operand stack may hold.
const stackLimit = 1024

// Stack is the EVM operand stack: up to 1024 256-bit words, last in first
// out. Adapted from the teacher's EVMStack (core/vm/stack_impl.go), which
// backs the stack with a fixed array of *big.Int to avoid a slice-growth
// allocation on every push; coreevm keeps that shape but stores Word values
// (uint256.Int) directly rather than pointers, so a push never allocates.
type Stack struct {
	data [stackLimit]uint256.Int
	top  int
}

// NewStack returns a new, empty Stack.
func NewStack() *Stack { return &Stack{} }

// Len returns the number of items currently on the stack.
func (s *Stack) Len() int { return s.top }

// Push pushes val onto the stack. The caller retains ownership of val; Push
// copies it in.
func (s *Stack) Push(val *Word) error {
	if s.top >= stackLimit {
		return ErrStackOverflow
	}
	s.data[s.top].Set(val)
	s.top++
	return nil
}

// Pop removes and returns the top element. The returned pointer aliases
// stack-internal storage and is only valid until the next Push.
func (s *Stack) Pop() (*Word, error) {
	if s.top == 0 {
		return nil, ErrStackUnderflow
	}
	s.top--
	return &s.data[s.top], nil
}

// Peek returns the top element without removing it.
func (s *Stack) Peek() (*Word, error) {
	if s.top == 0 {
		return nil, ErrStackUnderflow
	}
	return &s.data[s.top-1], nil
}

// Back returns the nth element from the top (0 = top) without removing it.
func (s *Stack) Back(n int) (*Word, error) {
	if n >= s.top {
		return nil, ErrStackUnderflow
	}
	return &s.data[s.top-1-n], nil
}

// Dup duplicates the nth element from the top (1 = top, matching DUP1..
// DUP16) and pushes the copy.
func (s *Stack) Dup(n int) error {
	if s.top < n {
		return ErrStackUnderflow
	}
	if s.top >= stackLimit {
		return ErrStackOverflow
	}
	s.data[s.top].Set(&s.data[s.top-n])
	s.top++
	return nil
}

// Swap exchanges the top element with the nth element from the top (1 =
// second-from-top, matching SWAP1..SWAP16).
func (s *Stack) Swap(n int) error {
	if s.top < n+1 {
		return ErrStackUnderflow
	}
	s.data[s.top-1], s.data[s.top-1-n] = s.data[s.top-1-n], s.data[s.top-1]
	return nil
}

// Require returns an error if the stack does not currently hold at least n
// items.
func (s *Stack) Require(n int) error {
	if s.top < n {
		return ErrStackUnderflow
	}
	return nil
}

// Reset empties the stack. Used when recycling a Stack between frames.
func (s *Stack) Reset() { s.top = 0 }
