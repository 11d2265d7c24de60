package vm

import "github.com/coreevm/coreevm/core/types"

// AccessList tracks EIP-2929 warm/cold status for addresses and storage
// slots over the lifetime of a single transaction.
//
// Adapted from the teacher's AccessListTracker (core/vm/access_list_tracker.go),
// which journals every warming so RevertToSnapshot can undo it. That
// journal is deliberately dropped here: per EIP-2929, once an address or
// slot is warmed it stays warm for the rest of the transaction even if the
// call that warmed it later reverts (only storage values, balances, and
// logs are undone by a revert -- access-list state is not). Coupling warmth
// to the StateDB snapshot stack, as the teacher does, would incorrectly
// re-cool a slot touched by a call that failed and was retried deeper in
// the same transaction.
type AccessList struct {
	addresses map[types.Address]struct{}
	slots     map[types.Address]map[types.Hash]struct{}
}

// NewAccessList returns an empty AccessList.
func NewAccessList() *AccessList {
	return &AccessList{
		addresses: make(map[types.Address]struct{}),
		slots:     make(map[types.Address]map[types.Hash]struct{}),
	}
}

// PrePopulate warms the sender, the recipient (if any), the precompile
// address range 0x01-0x0a, and every entry of an EIP-2930 access list, all
// before execution starts -- these touches are never charged cold-access
// gas.
func (al *AccessList) PrePopulate(sender types.Address, to *types.Address, list types.AccessList) {
	al.AddAddress(sender)
	if to != nil {
		al.AddAddress(*to)
	}
	for i := 1; i <= 0x0a; i++ {
		al.AddAddress(types.BytesToAddress([]byte{byte(i)}))
	}
	for _, tuple := range list {
		al.AddAddress(tuple.Address)
		for _, key := range tuple.StorageKeys {
			al.AddSlot(tuple.Address, key)
		}
	}
}

// AddAddress unconditionally marks addr warm.
func (al *AccessList) AddAddress(addr types.Address) {
	al.addresses[addr] = struct{}{}
}

// AddSlot unconditionally marks the (addr, slot) pair warm, and addr itself
// warm.
func (al *AccessList) AddSlot(addr types.Address, slot types.Hash) {
	al.AddAddress(addr)
	slots, ok := al.slots[addr]
	if !ok {
		slots = make(map[types.Hash]struct{})
		al.slots[addr] = slots
	}
	slots[slot] = struct{}{}
}

// IsAddressWarm reports whether addr has been touched before.
func (al *AccessList) IsAddressWarm(addr types.Address) bool {
	_, ok := al.addresses[addr]
	return ok
}

// IsSlotWarm reports whether the (addr, slot) pair has been touched before.
func (al *AccessList) IsSlotWarm(addr types.Address, slot types.Hash) bool {
	slots, ok := al.slots[addr]
	if !ok {
		return false
	}
	_, ok = slots[slot]
	return ok
}

// TouchAddress warms addr if cold and reports whether it was already warm.
func (al *AccessList) TouchAddress(addr types.Address) (wasWarm bool) {
	wasWarm = al.IsAddressWarm(addr)
	al.AddAddress(addr)
	return wasWarm
}

// TouchSlot warms (addr, slot) if cold and reports whether the slot (not
// just the address) was already warm.
func (al *AccessList) TouchSlot(addr types.Address, slot types.Hash) (wasWarm bool) {
	wasWarm = al.IsSlotWarm(addr, slot)
	al.AddSlot(addr, slot)
	return wasWarm
}

// AddressAccessGas returns the EIP-2929 dynamic gas surcharge for accessing
// addr: 0 if it was already warm, otherwise ColdAccountAccessCost minus the
// WarmStorageReadCost the opcode's constant gas already covers.
func (al *AccessList) AddressAccessGas(addr types.Address) uint64 {
	if al.TouchAddress(addr) {
		return 0
	}
	return ColdAccountAccessCost - WarmStorageReadCost
}

// SlotAccessGas returns the EIP-2929 dynamic gas surcharge for accessing
// (addr, slot): 0 if already warm, otherwise ColdSloadCost minus
// WarmStorageReadCost.
func (al *AccessList) SlotAccessGas(addr types.Address, slot types.Hash) uint64 {
	if al.TouchSlot(addr, slot) {
		return 0
	}
	return ColdSloadCost - WarmStorageReadCost
}

// AccessListGas computes the EIP-2930 upfront intrinsic gas charge for
// declaring an access list in a transaction.
func AccessListGas(list types.AccessList) uint64 {
	var gas uint64
	for _, tuple := range list {
		gas = safeAdd(gas, AccessListAddressCost)
		gas = safeAdd(gas, safeMul(uint64(len(tuple.StorageKeys)), AccessListStorageCost))
	}
	return gas
}
