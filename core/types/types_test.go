package types

import (
	"bytes"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
)

func TestBytesToAddressLeftPads(t *testing.T) {
	got := BytesToAddress([]byte{0xaa, 0xbb})
	want := Address{18: 0xaa, 19: 0xbb}
	if got != want {
		t.Fatalf("BytesToAddress({0xaa,0xbb}) = %x, want %x", got, want)
	}
}

func TestBytesToHashLeftPads(t *testing.T) {
	got := BytesToHash([]byte{0x01})
	want := Hash{31: 0x01}
	if got != want {
		t.Fatalf("BytesToHash({0x01}) = %x, want %x", got, want)
	}
}

func TestEmptyCodeHashIsKeccak256OfNil(t *testing.T) {
	want := crypto.Keccak256(nil)
	if !bytes.Equal(EmptyCodeHash[:], want) {
		t.Fatalf("EmptyCodeHash = %x, want keccak256(nil) = %x", EmptyCodeHash, want)
	}
}
