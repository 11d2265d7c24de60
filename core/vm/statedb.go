package vm

import (
	"github.com/coreevm/coreevm/core/types"
)

// StateDB is the external account/storage view the interpreter reads and
// writes as it executes. coreevm does not implement a trie or a database
// itself -- per its scope, persistence is someone else's problem -- so this
// interface names exactly the operations the interpreter needs, grounded on
// the subset of the teacher's state.StateDB that core/vm actually calls.
// A host embedding coreevm supplies the implementation (a trie-backed
// StateDB, an in-memory map for testing, a fork-mode RPC proxy, and so on).
//
// Warm/cold access-list tracking is deliberately absent here: it is not a
// property of the account database, it is core engine state scoped to a
// single transaction (see AccessList in access_list.go), owned by the EVM
// and never rolled back by RevertToSnapshot.
type StateDB interface {
	CreateAccount(types.Address)

	SubBalance(types.Address, *Word)
	AddBalance(types.Address, *Word)
	GetBalance(types.Address) *Word

	GetNonce(types.Address) uint64
	SetNonce(types.Address, uint64)

	GetCodeHash(types.Address) types.Hash
	GetCode(types.Address) []byte
	SetCode(types.Address, []byte)
	GetCodeSize(types.Address) int

	AddRefund(uint64)
	SubRefund(uint64)
	GetRefund() uint64

	GetCommittedState(types.Address, types.Hash) types.Hash
	GetState(types.Address, types.Hash) types.Hash
	SetState(types.Address, types.Hash, types.Hash)

	GetTransientState(types.Address, types.Hash) types.Hash
	SetTransientState(types.Address, types.Hash, types.Hash)

	SelfDestruct(types.Address)
	HasSelfDestructed(types.Address) bool

	Exist(types.Address) bool
	Empty(types.Address) bool

	RevertToSnapshot(int)
	Snapshot() int

	AddLog(*types.Log)

	AddPreimage(types.Hash, []byte)
}
