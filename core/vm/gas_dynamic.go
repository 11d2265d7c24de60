package vm

// gas_dynamic.go implements the per-opcode dynamic gas surcharges
// referenced from jump_table.go's operation table: the data-dependent costs
// the bytecode analyzer cannot fold into a block's static gas because they
// depend on stack values or account state observed at run time (cold/warm
// access, copy word count, SSTORE's tri-state rule, CALL/CREATE pricing).
// Grounded on the teacher's GasTableExt (core/vm/gas_table_ext.go), which
// bundles the same costs per fork; coreevm keeps one current-schedule copy
// (see gas_table.go) rather than re-deriving a table per fork.

func gasExp(evm *EVM, frame *Frame) (uint64, error) {
	exponent, _ := frame.Stack.Back(1)
	byteLen := (exponent.BitLen() + 7) / 8
	return safeMul(uint64(byteLen), GasExpByte), nil
}

func gasKeccak256(evm *EVM, frame *Frame) (uint64, error) {
	size, _ := frame.Stack.Back(1)
	if !size.IsUint64() {
		return 0, ErrGasUintOverflow
	}
	return safeMul(toWordSize(size.Uint64()), GasKeccak256Word), nil
}

// gasAccountAccess returns a dynamicGasFunc charging the EIP-2929 cold/warm
// surcharge for the address found at stack position n (BALANCE,
// EXTCODESIZE, EXTCODEHASH all take their single address argument at the
// top of the stack, n=0).
func gasAccountAccess(n int) dynamicGasFunc {
	return func(evm *EVM, frame *Frame) (uint64, error) {
		w, _ := frame.Stack.Back(n)
		addr := wordToAddress(w)
		return evm.AccessList.AddressAccessGas(addr), nil
	}
}

// gasCopy returns a dynamicGasFunc charging GasCopy per 32-byte word of the
// length argument found at stack position idx.
func gasCopy(idx int) dynamicGasFunc {
	return func(evm *EVM, frame *Frame) (uint64, error) {
		size, _ := frame.Stack.Back(idx)
		if !size.IsUint64() {
			return 0, ErrGasUintOverflow
		}
		return safeMul(toWordSize(size.Uint64()), GasCopy), nil
	}
}

func gasExtCodeCopy(evm *EVM, frame *Frame) (uint64, error) {
	addrWord, _ := frame.Stack.Back(0)
	size, _ := frame.Stack.Back(3)
	if !size.IsUint64() {
		return 0, ErrGasUintOverflow
	}
	addr := wordToAddress(addrWord)
	cost := safeMul(toWordSize(size.Uint64()), GasCopy)
	cost = safeAdd(cost, evm.AccessList.AddressAccessGas(addr))
	return cost, nil
}

func gasSload(evm *EVM, frame *Frame) (uint64, error) {
	slot, _ := frame.Stack.Back(0)
	key := wordToHash(slot)
	if evm.AccessList.TouchSlot(frame.Self, key) {
		return WarmStorageReadCost, nil
	}
	return ColdSloadCost, nil
}

// gasSstore charges SSTORE's full EIP-2200/2929/3529 cost and applies the
// resulting refund (positive or negative) directly to the StateDB refund
// counter, since the refund is inseparable from the cost calculation here.
// Per EIP-1706, an SSTORE with 2300 gas or less remaining fails outright
// (the call stipend forwarded with a value-transfer is never enough by
// itself to cover a state write) before any cost is charged or state
// mutated.
func gasSstore(evm *EVM, frame *Frame) (uint64, error) {
	if frame.Gas <= SstoreSentryGas {
		return 0, ErrOutOfGas
	}

	slot, _ := frame.Stack.Back(0)
	newWordVal, _ := frame.Stack.Back(1)

	key := wordToHash(slot)
	newVal := wordToHash(newWordVal)
	current := evm.StateDB.GetState(frame.Self, key)
	original := evm.StateDB.GetCommittedState(frame.Self, key)
	cold := !evm.AccessList.TouchSlot(frame.Self, key)

	gas, refund := SStoreGas(current, original, newVal, cold)
	if refund > 0 {
		evm.StateDB.AddRefund(uint64(refund))
	} else if refund < 0 {
		evm.StateDB.SubRefund(uint64(-refund))
	}
	return gas, nil
}

func gasLog(n int) dynamicGasFunc {
	return func(evm *EVM, frame *Frame) (uint64, error) {
		size, _ := frame.Stack.Back(1)
		if !size.IsUint64() {
			return 0, ErrGasUintOverflow
		}
		cost := safeAdd(GasLog, safeMul(uint64(n), GasLogTopic))
		cost = safeAdd(cost, safeMul(size.Uint64(), GasLogData))
		return cost, nil
	}
}

// gasCreate charges EIP-3860's per-word init-code cost, plus CREATE2's
// additional per-word hashing cost for address derivation.
func gasCreate(evm *EVM, frame *Frame) (uint64, error) {
	size, _ := frame.Stack.Back(2)
	if !size.IsUint64() {
		return 0, ErrGasUintOverflow
	}
	words := toWordSize(size.Uint64())
	gas := safeMul(words, InitCodeWordGas)
	if frame.GetOp(frame.PC()) == CREATE2 {
		gas = safeAdd(gas, safeMul(words, GasKeccak256Word))
	}
	return gas, nil
}

// gasCall charges CALL's base cost plus the EIP-2929 target-address
// surcharge, plus the value-transfer and new-account surcharges when value
// is actually being sent.
func gasCall(evm *EVM, frame *Frame) (uint64, error) {
	addrWord, _ := frame.Stack.Back(1)
	value, _ := frame.Stack.Back(2)
	addr := wordToAddress(addrWord)

	gas := safeAdd(GasCall, evm.AccessList.AddressAccessGas(addr))
	if !value.IsZero() {
		gas = safeAdd(gas, CallValueTransferGas)
		if !evm.StateDB.Exist(addr) {
			gas = safeAdd(gas, CallNewAccountGas)
		}
	}
	return gas, nil
}

// gasCallCode charges CALL's base cost and target surcharge the same as
// gasCall, but never a new-account surcharge: CALLCODE executes in the
// caller's own address and storage, so the account the value nominally
// moves to is the caller itself, which by definition already exists.
func gasCallCode(evm *EVM, frame *Frame) (uint64, error) {
	addrWord, _ := frame.Stack.Back(1)
	value, _ := frame.Stack.Back(2)
	addr := wordToAddress(addrWord)

	gas := safeAdd(GasCall, evm.AccessList.AddressAccessGas(addr))
	if !value.IsZero() {
		gas = safeAdd(gas, CallValueTransferGas)
	}
	return gas, nil
}

// gasCallNoValue prices DELEGATECALL and STATICCALL, neither of which can
// transfer value.
func gasCallNoValue(evm *EVM, frame *Frame) (uint64, error) {
	addrWord, _ := frame.Stack.Back(1)
	addr := wordToAddress(addrWord)
	return safeAdd(GasCall, evm.AccessList.AddressAccessGas(addr)), nil
}

// gasSelfDestruct charges the base SELFDESTRUCT cost plus, per EIP-2929, a
// cold-access surcharge for the beneficiary address, plus a new-account
// surcharge if the beneficiary does not yet exist and the contract has a
// non-zero balance to move.
func gasSelfDestruct(evm *EVM, frame *Frame) (uint64, error) {
	beneficiaryWord, _ := frame.Stack.Back(0)
	beneficiary := wordToAddress(beneficiaryWord)

	gas := SelfdestructGas
	if !evm.AccessList.TouchAddress(beneficiary) {
		gas = safeAdd(gas, ColdAccountAccessCost)
	}
	if !evm.StateDB.Exist(beneficiary) && !evm.StateDB.GetBalance(frame.Self).IsZero() {
		gas = safeAdd(gas, CreateBySelfdestructGas)
	}
	return gas, nil
}
