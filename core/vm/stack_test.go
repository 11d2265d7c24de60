package vm

import (
	"errors"
	"testing"

	"github.com/holiman/uint256"
)

func TestStackPushPop(t *testing.T) {
	s := NewStack()
	one := uint256.NewInt(1)
	two := uint256.NewInt(2)

	if err := s.Push(one); err != nil {
		t.Fatalf("Push(1): %v", err)
	}
	if err := s.Push(two); err != nil {
		t.Fatalf("Push(2): %v", err)
	}
	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}

	top, err := s.Pop()
	if err != nil {
		t.Fatalf("Pop(): %v", err)
	}
	if !top.Eq(two) {
		t.Fatalf("Pop() = %v, want 2", top)
	}
	if s.Len() != 1 {
		t.Fatalf("Len() after pop = %d, want 1", s.Len())
	}
}

func TestStackPushIsCopied(t *testing.T) {
	s := NewStack()
	v := uint256.NewInt(42)
	if err := s.Push(v); err != nil {
		t.Fatalf("Push: %v", err)
	}
	v.SetUint64(99)

	top, _ := s.Peek()
	if top.Uint64() != 42 {
		t.Fatalf("Push did not copy value: top = %d, want 42 (mutating caller's value after Push should not affect stack)", top.Uint64())
	}
}

func TestStackUnderflow(t *testing.T) {
	s := NewStack()
	if _, err := s.Pop(); !errors.Is(err, ErrStackUnderflow) {
		t.Fatalf("Pop() on empty stack: err = %v, want ErrStackUnderflow", err)
	}
	if _, err := s.Peek(); !errors.Is(err, ErrStackUnderflow) {
		t.Fatalf("Peek() on empty stack: err = %v, want ErrStackUnderflow", err)
	}
	if _, err := s.Back(0); !errors.Is(err, ErrStackUnderflow) {
		t.Fatalf("Back(0) on empty stack: err = %v, want ErrStackUnderflow", err)
	}
}

func TestStackOverflow(t *testing.T) {
	s := NewStack()
	for i := 0; i < stackLimit; i++ {
		if err := s.Push(uint256.NewInt(uint64(i))); err != nil {
			t.Fatalf("Push #%d: %v", i, err)
		}
	}
	if err := s.Push(uint256.NewInt(0)); !errors.Is(err, ErrStackOverflow) {
		t.Fatalf("Push beyond limit: err = %v, want ErrStackOverflow", err)
	}
}

func TestStackDup(t *testing.T) {
	s := NewStack()
	s.Push(uint256.NewInt(10))
	s.Push(uint256.NewInt(20))

	if err := s.Dup(2); err != nil {
		t.Fatalf("Dup(2): %v", err)
	}
	top, _ := s.Peek()
	if top.Uint64() != 10 {
		t.Fatalf("Dup(2) pushed %v, want 10", top)
	}
	if s.Len() != 3 {
		t.Fatalf("Len() after Dup = %d, want 3", s.Len())
	}
}

func TestStackSwap(t *testing.T) {
	s := NewStack()
	s.Push(uint256.NewInt(1))
	s.Push(uint256.NewInt(2))
	s.Push(uint256.NewInt(3))

	if err := s.Swap(2); err != nil {
		t.Fatalf("Swap(2): %v", err)
	}

	top, _ := s.Back(0)
	bottom, _ := s.Back(2)
	if top.Uint64() != 1 || bottom.Uint64() != 3 {
		t.Fatalf("Swap(2) produced top=%v bottom=%v, want top=1 bottom=3", top, bottom)
	}
}

func TestStackReset(t *testing.T) {
	s := NewStack()
	s.Push(uint256.NewInt(1))
	s.Push(uint256.NewInt(2))
	s.Reset()
	if s.Len() != 0 {
		t.Fatalf("Len() after Reset = %d, want 0", s.Len())
	}
	if _, err := s.Pop(); !errors.Is(err, ErrStackUnderflow) {
		t.Fatalf("Pop() after Reset: err = %v, want ErrStackUnderflow", err)
	}
}
