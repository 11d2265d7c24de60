package vm

import (
	"testing"

	"github.com/coreevm/coreevm/core/types"
)

func TestMemoryStateDBCreateAccountAndExist(t *testing.T) {
	db := NewMemoryStateDB()
	addr := types.Address{1}
	if db.Exist(addr) {
		t.Fatal("a never-created address reports Exist = true")
	}
	db.CreateAccount(addr)
	if !db.Exist(addr) {
		t.Fatal("Exist = false right after CreateAccount")
	}
}

func TestMemoryStateDBBalanceRoundTrip(t *testing.T) {
	db := NewMemoryStateDB()
	addr := types.Address{1}
	db.AddBalance(addr, wordFromUint64(100))
	db.SubBalance(addr, wordFromUint64(40))
	if got := db.GetBalance(addr).Uint64(); got != 60 {
		t.Fatalf("balance = %d, want 60", got)
	}
}

func TestMemoryStateDBGetBalanceDoesNotAliasInternalState(t *testing.T) {
	db := NewMemoryStateDB()
	addr := types.Address{1}
	db.AddBalance(addr, wordFromUint64(100))
	got := db.GetBalance(addr)
	got.Add(got, wordFromUint64(1))
	if db.GetBalance(addr).Uint64() != 100 {
		t.Fatal("mutating a GetBalance result changed the account's internal balance")
	}
}

func TestMemoryStateDBNonce(t *testing.T) {
	db := NewMemoryStateDB()
	addr := types.Address{1}
	if db.GetNonce(addr) != 0 {
		t.Fatal("GetNonce on an untouched address != 0")
	}
	db.SetNonce(addr, 7)
	if db.GetNonce(addr) != 7 {
		t.Fatalf("GetNonce = %d, want 7", db.GetNonce(addr))
	}
}

func TestMemoryStateDBSetCodeUpdatesHash(t *testing.T) {
	db := NewMemoryStateDB()
	addr := types.Address{1}
	if db.GetCodeHash(addr) != types.EmptyCodeHash {
		t.Fatal("GetCodeHash on an untouched address is not the empty-code hash")
	}
	db.SetCode(addr, []byte{0x60, 0x01})
	if db.GetCodeHash(addr) == types.EmptyCodeHash {
		t.Fatal("GetCodeHash unchanged after SetCode with non-empty code")
	}
	if db.GetCodeSize(addr) != 2 {
		t.Fatalf("GetCodeSize = %d, want 2", db.GetCodeSize(addr))
	}
}

func TestMemoryStateDBRefundClampsAtZero(t *testing.T) {
	db := NewMemoryStateDB()
	db.AddRefund(100)
	db.SubRefund(150)
	if db.GetRefund() != 0 {
		t.Fatalf("GetRefund = %d, want 0 (SubRefund must clamp, not underflow)", db.GetRefund())
	}
}

func TestMemoryStateDBStorageRoundTrip(t *testing.T) {
	db := NewMemoryStateDB()
	addr := types.Address{1}
	key := types.Hash{2}
	val := types.Hash{3}

	if db.GetState(addr, key) != (types.Hash{}) {
		t.Fatal("GetState on an unset slot is not zero")
	}
	db.SetState(addr, key, val)
	if db.GetState(addr, key) != val {
		t.Fatal("GetState after SetState did not return the stored value")
	}
}

func TestMemoryStateDBTransientStorageIndependentOfPersistent(t *testing.T) {
	db := NewMemoryStateDB()
	addr := types.Address{1}
	key := types.Hash{2}

	db.SetState(addr, key, types.Hash{0xaa})
	db.SetTransientState(addr, key, types.Hash{0xbb})

	if db.GetState(addr, key) != (types.Hash{0xaa}) {
		t.Fatal("persistent storage was affected by a transient-storage write to the same key")
	}
	if db.GetTransientState(addr, key) != (types.Hash{0xbb}) {
		t.Fatal("transient storage did not retain the value just written")
	}
}

func TestMemoryStateDBSnapshotRevertRestoresBalanceAndStorage(t *testing.T) {
	db := NewMemoryStateDB()
	addr := types.Address{1}
	key := types.Hash{2}

	db.AddBalance(addr, wordFromUint64(100))
	db.SetState(addr, key, types.Hash{1})
	db.AddRefund(5)

	id := db.Snapshot()

	db.AddBalance(addr, wordFromUint64(50))
	db.SetState(addr, key, types.Hash{2})
	db.AddRefund(10)

	db.RevertToSnapshot(id)

	if got := db.GetBalance(addr).Uint64(); got != 100 {
		t.Fatalf("balance after revert = %d, want 100", got)
	}
	if db.GetState(addr, key) != (types.Hash{1}) {
		t.Fatal("storage after revert did not return to its pre-snapshot value")
	}
	if db.GetRefund() != 5 {
		t.Fatalf("refund after revert = %d, want 5", db.GetRefund())
	}
}

func TestMemoryStateDBSnapshotRevertAlsoUndoesTransientStorage(t *testing.T) {
	db := NewMemoryStateDB()
	addr := types.Address{1}
	key := types.Hash{2}

	db.SetTransientState(addr, key, types.Hash{1})
	id := db.Snapshot()
	db.SetTransientState(addr, key, types.Hash{2})
	db.RevertToSnapshot(id)

	if db.GetTransientState(addr, key) != (types.Hash{1}) {
		t.Fatal("transient storage was not rolled back by RevertToSnapshot")
	}
}

func TestMemoryStateDBSelfDestruct(t *testing.T) {
	db := NewMemoryStateDB()
	addr := types.Address{1}
	db.CreateAccount(addr)
	if db.HasSelfDestructed(addr) {
		t.Fatal("HasSelfDestructed = true before SelfDestruct was called")
	}
	db.SelfDestruct(addr)
	if !db.HasSelfDestructed(addr) {
		t.Fatal("HasSelfDestructed = false after SelfDestruct")
	}
}

func TestMemoryStateDBEmpty(t *testing.T) {
	db := NewMemoryStateDB()
	addr := types.Address{1}

	if !db.Empty(addr) {
		t.Fatal("Empty = false for a never-touched address")
	}
	db.CreateAccount(addr)
	if !db.Empty(addr) {
		t.Fatal("Empty = false for a freshly created account with no balance, nonce, or code")
	}
	db.SetNonce(addr, 1)
	if db.Empty(addr) {
		t.Fatal("Empty = true for an account with a non-zero nonce")
	}
}

func TestMemoryStateDBAddLogAndLogs(t *testing.T) {
	db := NewMemoryStateDB()
	l1 := &types.Log{Address: types.Address{1}}
	l2 := &types.Log{Address: types.Address{2}}
	db.AddLog(l1)
	db.AddLog(l2)

	logs := db.Logs()
	if len(logs) != 2 || logs[0] != l1 || logs[1] != l2 {
		t.Fatalf("Logs() = %v, want [%v %v] in insertion order", logs, l1, l2)
	}
}

func TestMemoryStateDBAddPreimageDeduplicates(t *testing.T) {
	db := NewMemoryStateDB()
	hash := types.Hash{1}
	db.AddPreimage(hash, []byte("first"))
	db.AddPreimage(hash, []byte("second"))
	if got := string(db.preimages[hash]); got != "first" {
		t.Fatalf("preimage = %q, want %q (first write wins)", got, "first")
	}
}
