package vm

import "github.com/coreevm/coreevm/core/types"

// SStoreGas computes the gas cost and refund for an SSTORE, per EIP-2200
// (net-metered SSTORE) as amended by EIP-3529 (reduced refunds). Adapted
// from the teacher's DynamicGasCalculator.CalcSStoreGas and
// GasTableExt.SstoreGasEIP2200 (core/vm/dynamic_gas.go,
// core/vm/gas_table_ext.go), which duplicate this logic across two structs;
// coreevm keeps one copy.
//
//   - current: value presently in the slot
//   - original: value at the start of the transaction
//   - newVal: value being written
//   - cold: true if this is the slot's first access this transaction
//
// The returned refund may be negative (undoing a refund granted earlier in
// the same transaction when a dirty slot is written back to a non-original,
// non-zero value).
func SStoreGas(current, original, newVal types.Hash, cold bool) (gas uint64, refund int64) {
	if cold {
		gas = ColdSloadCost
	}

	if current == newVal {
		return gas + WarmStorageReadCost, 0
	}

	zero := types.Hash{}

	if original == current {
		if original == zero {
			return gas + GasSstoreSet, 0
		}
		gas += GasSstoreReset
		if newVal == zero {
			refund = int64(SstoreClearsScheduleRefund)
		}
		return gas, refund
	}

	// Dirty slot: original != current, i.e. this transaction already wrote
	// to it at least once.
	gas += WarmStorageReadCost

	if original != zero {
		if current == zero && newVal != zero {
			refund -= int64(SstoreClearsScheduleRefund)
		} else if current != zero && newVal == zero {
			refund += int64(SstoreClearsScheduleRefund)
		}
	}

	if original == newVal {
		if original == zero {
			refund += int64(GasSstoreSet - WarmStorageReadCost)
		} else {
			refund += int64(GasSstoreReset - WarmStorageReadCost)
		}
	}

	return gas, refund
}

// TransientStorage implements EIP-1153 transient storage: a per-transaction
// key-value store that, unlike persistent storage, is never committed to
// the state trie and is fully discarded at the end of the transaction.
// Unlike the AccessList, transient values ARE rolled back when a call
// reverts, so writes are journaled against the same snapshot IDs the
// StateDB hands out for balances and persistent storage.
type TransientStorage struct {
	values  map[types.Address]map[types.Hash]types.Hash
	journal []transientChange
	marks   []int
}

type transientChange struct {
	addr types.Address
	slot types.Hash
	prev types.Hash
	had  bool
}

// NewTransientStorage returns an empty TransientStorage.
func NewTransientStorage() *TransientStorage {
	return &TransientStorage{values: make(map[types.Address]map[types.Hash]types.Hash)}
}

// Get returns the transient value at (addr, slot), or the zero Hash if
// unset.
func (ts *TransientStorage) Get(addr types.Address, slot types.Hash) types.Hash {
	slots, ok := ts.values[addr]
	if !ok {
		return types.Hash{}
	}
	return slots[slot]
}

// Set writes val to (addr, slot), recording the previous value so a later
// RevertToSnapshot can restore it.
func (ts *TransientStorage) Set(addr types.Address, slot types.Hash, val types.Hash) {
	slots, ok := ts.values[addr]
	if !ok {
		slots = make(map[types.Hash]types.Hash)
		ts.values[addr] = slots
	}
	prev, had := slots[slot]
	ts.journal = append(ts.journal, transientChange{addr: addr, slot: slot, prev: prev, had: had})
	slots[slot] = val
}

// Snapshot records the current journal length and returns an ID usable with
// RevertToSnapshot.
func (ts *TransientStorage) Snapshot() int {
	ts.marks = append(ts.marks, len(ts.journal))
	return len(ts.marks) - 1
}

// RevertToSnapshot undoes every Set recorded since the given snapshot.
func (ts *TransientStorage) RevertToSnapshot(id int) {
	if id < 0 || id >= len(ts.marks) {
		return
	}
	mark := ts.marks[id]
	for i := len(ts.journal) - 1; i >= mark; i-- {
		c := ts.journal[i]
		if c.had {
			ts.values[c.addr][c.slot] = c.prev
		} else if slots, ok := ts.values[c.addr]; ok {
			delete(slots, c.slot)
		}
	}
	ts.journal = ts.journal[:mark]
	ts.marks = ts.marks[:id]
}
