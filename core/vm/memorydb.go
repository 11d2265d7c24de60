package vm

import (
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/coreevm/coreevm/core/types"
)

// account holds one address's in-memory state. Transient storage lives
// separately, in the MemoryStateDB's single TransientStorage, since its
// revert semantics are transaction-scoped rather than per-account.
type account struct {
	nonce      uint64
	balance    *Word
	code       []byte
	codeHash   types.Hash
	storage    map[types.Hash]types.Hash
	destructed bool
}

func newAccount() *account {
	return &account{
		balance:  newWord(),
		storage:  make(map[types.Hash]types.Hash),
		codeHash: types.EmptyCodeHash,
	}
}

// snapshot is a copy of every account's mutable fields plus the refund
// counter, enough to undo a RevertToSnapshot without a full journal.
type snapshot struct {
	accounts map[types.Address]account
	refund   uint64
}

// MemoryStateDB is a map-backed StateDB, generalized from the per-test
// fixtures the teacher hand-writes in each core/vm test file
// (evm_create_test.go's createTestStateDB and its siblings) into one
// reusable implementation. It has no persistence and no trie -- it exists
// for the command-line driver and for tests that want a real StateDB
// instead of a bespoke mock.
type MemoryStateDB struct {
	accounts  map[types.Address]*account
	refund    uint64
	history   []snapshot
	transient *TransientStorage
	preimages map[types.Hash][]byte
	logs      []*types.Log
}

// NewMemoryStateDB returns an empty MemoryStateDB.
func NewMemoryStateDB() *MemoryStateDB {
	return &MemoryStateDB{
		accounts:  make(map[types.Address]*account),
		transient: NewTransientStorage(),
		preimages: make(map[types.Hash][]byte),
	}
}

func (m *MemoryStateDB) get(addr types.Address) *account {
	a, ok := m.accounts[addr]
	if !ok {
		a = newAccount()
		m.accounts[addr] = a
	}
	return a
}

func (m *MemoryStateDB) CreateAccount(addr types.Address) {
	if _, ok := m.accounts[addr]; !ok {
		m.accounts[addr] = newAccount()
	}
}

func (m *MemoryStateDB) SubBalance(addr types.Address, amount *Word) {
	a := m.get(addr)
	a.balance.Sub(a.balance, amount)
}

func (m *MemoryStateDB) AddBalance(addr types.Address, amount *Word) {
	a := m.get(addr)
	a.balance.Add(a.balance, amount)
}

func (m *MemoryStateDB) GetBalance(addr types.Address) *Word {
	return new(Word).Set(m.get(addr).balance)
}

func (m *MemoryStateDB) GetNonce(addr types.Address) uint64 {
	return m.get(addr).nonce
}

func (m *MemoryStateDB) SetNonce(addr types.Address, n uint64) {
	m.get(addr).nonce = n
}

func (m *MemoryStateDB) GetCodeHash(addr types.Address) types.Hash {
	return m.get(addr).codeHash
}

func (m *MemoryStateDB) GetCode(addr types.Address) []byte {
	return m.get(addr).code
}

func (m *MemoryStateDB) SetCode(addr types.Address, code []byte) {
	a := m.get(addr)
	a.code = code
	a.codeHash = types.BytesToHash(crypto.Keccak256(code))
}

func (m *MemoryStateDB) GetCodeSize(addr types.Address) int {
	return len(m.get(addr).code)
}

func (m *MemoryStateDB) AddRefund(gas uint64) { m.refund += gas }

func (m *MemoryStateDB) SubRefund(gas uint64) {
	if gas > m.refund {
		m.refund = 0
		return
	}
	m.refund -= gas
}

func (m *MemoryStateDB) GetRefund() uint64 { return m.refund }

func (m *MemoryStateDB) GetCommittedState(addr types.Address, key types.Hash) types.Hash {
	return m.get(addr).storage[key]
}

func (m *MemoryStateDB) GetState(addr types.Address, key types.Hash) types.Hash {
	return m.get(addr).storage[key]
}

func (m *MemoryStateDB) SetState(addr types.Address, key, value types.Hash) {
	m.get(addr).storage[key] = value
}

func (m *MemoryStateDB) GetTransientState(addr types.Address, key types.Hash) types.Hash {
	return m.transient.Get(addr, key)
}

func (m *MemoryStateDB) SetTransientState(addr types.Address, key, value types.Hash) {
	m.transient.Set(addr, key, value)
}

func (m *MemoryStateDB) SelfDestruct(addr types.Address) {
	m.get(addr).destructed = true
}

func (m *MemoryStateDB) HasSelfDestructed(addr types.Address) bool {
	return m.get(addr).destructed
}

func (m *MemoryStateDB) Exist(addr types.Address) bool {
	_, ok := m.accounts[addr]
	return ok
}

func (m *MemoryStateDB) Empty(addr types.Address) bool {
	a, ok := m.accounts[addr]
	if !ok {
		return true
	}
	return a.nonce == 0 && a.balance.IsZero() && len(a.code) == 0
}

// Snapshot captures the full account set (for balances, nonces, code, and
// persistent storage) and, in lockstep, a TransientStorage mark -- the two
// snapshot IDs always advance together so RevertToSnapshot can undo both
// kinds of state with one id, even though they roll back by different
// mechanisms (account copy vs. journal replay).
func (m *MemoryStateDB) Snapshot() int {
	accts := make(map[types.Address]account, len(m.accounts))
	for addr, a := range m.accounts {
		cp := *a
		cp.balance = new(Word).Set(a.balance)
		cp.storage = make(map[types.Hash]types.Hash, len(a.storage))
		for k, v := range a.storage {
			cp.storage[k] = v
		}
		accts[addr] = cp
	}
	m.transient.Snapshot()
	m.history = append(m.history, snapshot{accounts: accts, refund: m.refund})
	return len(m.history) - 1
}

func (m *MemoryStateDB) RevertToSnapshot(id int) {
	if id < 0 || id >= len(m.history) {
		return
	}
	snap := m.history[id]
	m.accounts = make(map[types.Address]*account, len(snap.accounts))
	for addr, a := range snap.accounts {
		cp := a
		m.accounts[addr] = &cp
	}
	m.refund = snap.refund
	m.transient.RevertToSnapshot(id)
	m.history = m.history[:id]
}

func (m *MemoryStateDB) AddLog(log *types.Log) {
	m.logs = append(m.logs, log)
}

// Logs returns every log recorded so far, oldest first.
func (m *MemoryStateDB) Logs() []*types.Log { return m.logs }

func (m *MemoryStateDB) AddPreimage(hash types.Hash, preimage []byte) {
	if _, ok := m.preimages[hash]; ok {
		return
	}
	m.preimages[hash] = append([]byte(nil), preimage...)
}
