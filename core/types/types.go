// Package types defines the address, hash, and log primitives shared by the
// execution engine. Address and Hash are the same 20-byte/32-byte values used
// throughout go-ethereum; aliasing them keeps coreevm interoperable with the
// wider ecosystem (ABI tooling, RPC layers, block explorers) without pulling
// in go-ethereum's block, transaction, or RLP machinery, none of which this
// module needs.
package types

import (
	"github.com/ethereum/go-ethereum/common"
)

// Address is a 20-byte account address.
type Address = common.Address

// Hash is a 32-byte value, typically a storage key or a keccak256 digest.
type Hash = common.Hash

// BytesToAddress left-pads b with zeros and returns it as an Address.
func BytesToAddress(b []byte) Address {
	return common.BytesToAddress(b)
}

// BytesToHash left-pads b with zeros and returns it as a Hash.
func BytesToHash(b []byte) Hash {
	return common.BytesToHash(b)
}

// EmptyCodeHash is keccak256(nil), the code hash of an account with no code.
var EmptyCodeHash = Hash{0xc5, 0xd2, 0x46, 0x01, 0x86, 0xf7, 0x23, 0x3c, 0x92, 0x7e, 0x7d, 0xb2, 0xdc, 0xc7, 0x03, 0xc0,
	0xe5, 0x00, 0xb6, 0x53, 0xca, 0x82, 0x27, 0x3b, 0x7b, 0xfa, 0xd8, 0x04, 0x5d, 0x85, 0xa4, 0x70}

// AccessTuple is one entry of an EIP-2930 access list: an address plus the
// storage keys within it that should be pre-warmed.
type AccessTuple struct {
	Address     Address
	StorageKeys []Hash
}

// AccessList is an EIP-2930 transaction access list.
type AccessList []AccessTuple

// Log is a single LOG0-LOG4 event emitted during execution.
type Log struct {
	Address Address
	Topics  []Hash
	Data    []byte
}
