package vm

import (
	"github.com/holiman/uint256"

	"github.com/coreevm/coreevm/core/types"
)

// Word is the EVM's native 256-bit value. The teacher's core/vm package
// operates on math/big throughout; coreevm uses the fixed-width
// holiman/uint256 representation instead, since every EVM word is exactly
// 256 bits and uint256.Int gives wraparound (mod 2^256) arithmetic, in-place
// mutation, and stack allocation for free instead of arbitrary-precision
// big.Int's heap-allocated, dynamically-sized limbs.
type Word = uint256.Int

// newWord returns a zero-valued Word.
func newWord() *Word { return new(uint256.Int) }

// wordFromUint64 returns a Word with the given uint64 value.
func wordFromUint64(v uint64) *Word { return new(uint256.Int).SetUint64(v) }

// wordToAddress truncates a Word to its low 160 bits, the representation
// CALL-family opcodes use for addresses taken off the stack.
func wordToAddress(w *Word) types.Address {
	var addr types.Address
	b := w.Bytes20()
	copy(addr[:], b[:])
	return addr
}

// addressToWord left-pads an address into a 256-bit Word.
func addressToWord(a types.Address) *Word {
	return new(uint256.Int).SetBytes(a.Bytes())
}

// wordToHash renders a Word as a 32-byte big-endian Hash.
func wordToHash(w *Word) types.Hash {
	return types.Hash(w.Bytes32())
}

// hashToWord reinterprets a 32-byte Hash as a Word.
func hashToWord(h types.Hash) *Word {
	return new(uint256.Int).SetBytes(h.Bytes())
}
