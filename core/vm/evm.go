package vm

import (
	"errors"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/coreevm/coreevm/core/types"
)

// GetHashFunc resolves a historical block number to its hash, backing the
// BLOCKHASH opcode's 256-block lookback window.
type GetHashFunc func(uint64) types.Hash

// BlockContext carries the block-level values opcodes read, per the
// "Block / transaction context" contract in the external interfaces. It is
// immutable for the lifetime of one EVM.
type BlockContext struct {
	GetHash     GetHashFunc
	Coinbase    types.Address
	BlockNumber uint64
	Time        uint64
	GasLimit    uint64
	BaseFee     *Word
	PrevRandao  types.Hash
	BlobBaseFee *Word
}

// TxContext carries transaction-level values.
type TxContext struct {
	Origin     types.Address
	GasPrice   *Word
	ChainID    uint64
	BlobHashes []types.Hash
}

// Config bundles optional cross-cutting collaborators: a read-only tracer
// and an ambient metrics sink. Both may be nil.
type Config struct {
	Tracer  EVMLogger
	Metrics *Metrics
}

// EVM is one transaction's execution environment: the entry point that
// turns Call/Create requests into frames and runs them through the
// interpreter. Adapted from the teacher's EVM (core/vm/interpreter.go),
// generalized to Word-based values and a single Cancun-era jump table
// rather than the teacher's thirteen per-fork table constructors (gas_table.go
// documents why coreevm collapses that hierarchy).
type EVM struct {
	Context   BlockContext
	TxContext TxContext
	Config    Config

	StateDB    StateDB
	AccessList *AccessList

	jumpTable   JumpTable
	precompiles PrecompiledContracts

	depth    int
	readOnly bool
}

// NewEVM constructs an EVM ready to run a single transaction. The access
// list starts empty; call PreWarmAccessList before the first Call/Create.
func NewEVM(blockCtx BlockContext, txCtx TxContext, statedb StateDB, config Config) *EVM {
	return &EVM{
		Context:     blockCtx,
		TxContext:   txCtx,
		Config:      config,
		StateDB:     statedb,
		AccessList:  NewAccessList(),
		jumpTable:   NewCancunJumpTable(),
		precompiles: PrecompiledContractsCancun,
	}
}

// PreWarmAccessList warms the sender, recipient, precompiles, and any
// EIP-2930 access list entries before the transaction's top-level call
// begins.
func (evm *EVM) PreWarmAccessList(sender types.Address, to *types.Address, list types.AccessList) {
	evm.AccessList.PrePopulate(sender, to, list)
}

func (evm *EVM) precompile(addr types.Address) (PrecompiledContract, bool) {
	return evm.precompiles.Lookup(addr)
}

func runPrecompile(p PrecompiledContract, input []byte, gas uint64) ([]byte, uint64, error) {
	cost := p.RequiredGas(input)
	if gas < cost {
		return nil, 0, ErrOutOfGas
	}
	out, err := p.Run(input)
	return out, gas - cost, err
}

// run is the threaded interpreter (C8): it walks frame.Code by program
// counter, charging each basic block's aggregated static gas and validating
// its stack bounds exactly once at the block's first instruction (the
// "prologue"), then dispatches each instruction via the jump table.
// Grounded on the teacher's EVM.Run (core/vm/interpreter.go), restructured
// around coreevm's block-level analyzer output instead of a flat per-opcode
// loop.
func (evm *EVM) run(frame *Frame) ([]byte, error) {
	if evm.Config.Metrics != nil {
		evm.Config.Metrics.observeFrame(frame.Depth)
	}
	for {
		pc := frame.PC()

		if block, ok := frame.analysis.blockStartingAt(pc); ok {
			if frame.Gas < block.staticGas {
				return nil, ErrOutOfGas
			}
			if frame.Stack.Len() < block.stackMinReq {
				return nil, ErrStackUnderflow
			}
			if frame.Stack.Len()+block.stackMaxGrowth > stackLimit {
				return nil, ErrStackOverflow
			}
			frame.Gas -= block.staticGas
		}

		op := frame.GetOp(pc)
		def := evm.jumpTable[op]
		if def == nil || def.execute == nil {
			return nil, ErrInvalidOpcode
		}
		if frame.ReadOnly && def.writes {
			return nil, ErrWriteProtection
		}

		if def.memorySize != nil {
			size, overflow := def.memorySize(frame.Stack)
			if overflow {
				return nil, ErrGasUintOverflow
			}
			if size > 0 {
				rounded := toWordSize(size) * 32
				cost, err := frame.Memory.EnsureSize(rounded)
				if err != nil {
					return nil, err
				}
				if !frame.UseGas(cost) {
					return nil, ErrOutOfGas
				}
			}
		}

		if def.dynamicGas != nil {
			cost, err := def.dynamicGas(evm, frame)
			if err != nil {
				return nil, err
			}
			if !frame.UseGas(cost) {
				return nil, ErrOutOfGas
			}
		}

		if evm.Config.Tracer != nil {
			evm.Config.Tracer.CaptureState(pc, op, frame.Gas, 0, frame, frame.Depth, nil)
		}
		if evm.Config.Metrics != nil {
			evm.Config.Metrics.observeOp(op)
		}

		ret, err := def.execute(&pc, evm, frame)
		if err != nil {
			if errors.Is(err, ErrExecutionReverted) {
				return ret, err
			}
			return nil, err
		}
		if def.halts {
			return ret, nil
		}
		if !def.jumps {
			pc++
		}
		frame.SetPC(pc)
	}
}

// Call executes a message call per the CALL opcode's contract: value
// transfer, cold/warm surcharge already applied by the caller's dynamic gas
// function, then either a precompile invocation or a child frame run.
// Grounded on the teacher's EVM.Call (core/vm/interpreter.go).
func (evm *EVM) Call(caller types.Address, addr types.Address, input []byte, gas uint64, value *Word, readOnly bool) ([]byte, uint64, error) {
	if evm.depth >= MaxCallDepth {
		return nil, gas, ErrDepth
	}
	if value != nil && !value.IsZero() {
		if readOnly {
			return nil, gas, ErrWriteProtection
		}
		if evm.StateDB.GetBalance(caller).Cmp(value) < 0 {
			return nil, gas, nil
		}
	}

	snapshot := evm.StateDB.Snapshot()

	if p, ok := evm.precompile(addr); ok {
		if value != nil && !value.IsZero() {
			evm.StateDB.SubBalance(caller, value)
			evm.StateDB.AddBalance(addr, value)
		}
		ret, gasLeft, err := runPrecompile(p, input, gas)
		if err != nil {
			evm.StateDB.RevertToSnapshot(snapshot)
		}
		return ret, gasLeft, err
	}

	if !evm.StateDB.Exist(addr) {
		if value == nil || value.IsZero() {
			return nil, gas, nil
		}
		evm.StateDB.CreateAccount(addr)
	}

	if value != nil && !value.IsZero() {
		evm.StateDB.SubBalance(caller, value)
		evm.StateDB.AddBalance(addr, value)
	}

	code := evm.StateDB.GetCode(addr)
	if len(code) == 0 {
		return nil, gas, nil
	}

	if evm.Config.Tracer != nil {
		if evm.depth == 0 {
			evm.Config.Tracer.CaptureStart(caller, addr, false, input, gas, value)
		} else {
			evm.Config.Tracer.CaptureEnter(FrameCall, caller, addr, input, gas, value)
		}
	}

	frame := NewFrame(FrameCall, caller, addr, code, evm.StateDB.GetCodeHash(addr), input, value, gas, evm.depth+1, readOnly || evm.readOnly)

	evm.depth++
	prevReadOnly := evm.readOnly
	evm.readOnly = frame.ReadOnly
	ret, err := evm.run(frame)
	evm.readOnly = prevReadOnly
	evm.depth--

	gasLeft := frame.Gas
	if haltsWithoutRevert(err) {
		evm.StateDB.RevertToSnapshot(snapshot)
		gasLeft = 0
	} else if errors.Is(err, ErrExecutionReverted) {
		evm.StateDB.RevertToSnapshot(snapshot)
	}

	if evm.Config.Tracer != nil {
		evm.Config.Tracer.CaptureExit(ret, gas-gasLeft, err)
	}
	if evm.Config.Metrics != nil {
		evm.Config.Metrics.observeGas(gas - gasLeft)
		if err != nil {
			evm.Config.Metrics.observeRevert()
		}
	}

	return ret, gasLeft, err
}

// CallCode runs addr's code in the caller's own storage/address context,
// per the CALLCODE opcode. Like CALL, it pops a value argument and is
// subject to the same write-protection and balance-sufficiency checks even
// though the value never actually leaves the caller's own account.
func (evm *EVM) CallCode(caller types.Address, addr types.Address, input []byte, gas uint64, value *Word, readOnly bool) ([]byte, uint64, error) {
	if evm.depth >= MaxCallDepth {
		return nil, gas, ErrDepth
	}
	if value != nil && !value.IsZero() {
		if readOnly {
			return nil, gas, ErrWriteProtection
		}
		if evm.StateDB.GetBalance(caller).Cmp(value) < 0 {
			return nil, gas, nil
		}
	}
	if p, ok := evm.precompile(addr); ok {
		return runPrecompile(p, input, gas)
	}

	snapshot := evm.StateDB.Snapshot()
	code := evm.StateDB.GetCode(addr)
	if len(code) == 0 {
		return nil, gas, nil
	}

	frame := NewFrame(FrameCallCode, caller, caller, code, evm.StateDB.GetCodeHash(addr), input, value, gas, evm.depth+1, readOnly || evm.readOnly)

	evm.depth++
	ret, err := evm.run(frame)
	evm.depth--

	gasLeft := frame.Gas
	if haltsWithoutRevert(err) {
		evm.StateDB.RevertToSnapshot(snapshot)
		gasLeft = 0
	} else if errors.Is(err, ErrExecutionReverted) {
		evm.StateDB.RevertToSnapshot(snapshot)
	}
	return ret, gasLeft, err
}

// DelegateCall runs addr's code preserving the current frame's caller and
// value, per the DELEGATECALL opcode.
func (evm *EVM) DelegateCall(currentCaller, currentSelf types.Address, value *Word, addr types.Address, input []byte, gas uint64) ([]byte, uint64, error) {
	if evm.depth >= MaxCallDepth {
		return nil, gas, ErrDepth
	}
	if p, ok := evm.precompile(addr); ok {
		return runPrecompile(p, input, gas)
	}

	snapshot := evm.StateDB.Snapshot()
	code := evm.StateDB.GetCode(addr)
	if len(code) == 0 {
		return nil, gas, nil
	}

	frame := NewFrame(FrameDelegateCall, currentCaller, currentSelf, code, evm.StateDB.GetCodeHash(addr), input, value, gas, evm.depth+1, evm.readOnly)

	evm.depth++
	ret, err := evm.run(frame)
	evm.depth--

	gasLeft := frame.Gas
	if haltsWithoutRevert(err) {
		evm.StateDB.RevertToSnapshot(snapshot)
		gasLeft = 0
	} else if errors.Is(err, ErrExecutionReverted) {
		evm.StateDB.RevertToSnapshot(snapshot)
	}
	return ret, gasLeft, err
}

// StaticCall runs addr's code in a read-only frame, per STATICCALL.
func (evm *EVM) StaticCall(caller types.Address, addr types.Address, input []byte, gas uint64) ([]byte, uint64, error) {
	if evm.depth >= MaxCallDepth {
		return nil, gas, ErrDepth
	}

	snapshot := evm.StateDB.Snapshot()

	if p, ok := evm.precompile(addr); ok {
		ret, gasLeft, err := runPrecompile(p, input, gas)
		if err != nil {
			evm.StateDB.RevertToSnapshot(snapshot)
		}
		return ret, gasLeft, err
	}

	code := evm.StateDB.GetCode(addr)
	if len(code) == 0 {
		return nil, gas, nil
	}

	prevReadOnly := evm.readOnly
	evm.readOnly = true
	frame := NewFrame(FrameStaticCall, caller, addr, code, evm.StateDB.GetCodeHash(addr), input, newWord(), gas, evm.depth+1, true)

	evm.depth++
	ret, err := evm.run(frame)
	evm.depth--
	evm.readOnly = prevReadOnly

	gasLeft := frame.Gas
	if haltsWithoutRevert(err) {
		evm.StateDB.RevertToSnapshot(snapshot)
		gasLeft = 0
	} else if errors.Is(err, ErrExecutionReverted) {
		evm.StateDB.RevertToSnapshot(snapshot)
	}
	return ret, gasLeft, err
}

// createAddress computes the CREATE contract address: keccak256(rlp([sender,
// nonce]))[12:]. Unlike the teacher's hand-rolled RLP encoder
// (core/vm/interpreter.go), coreevm uses go-ethereum's rlp package directly.
func createAddress(caller types.Address, nonce uint64) types.Address {
	data, _ := rlp.EncodeToBytes([]interface{}{caller, nonce})
	hash := crypto.Keccak256(data)
	return types.BytesToAddress(hash[12:])
}

// create2Address computes the CREATE2 contract address: keccak256(0xff ++
// sender ++ salt ++ keccak256(init_code))[12:].
func create2Address(caller types.Address, salt *Word, initCodeHash []byte) types.Address {
	saltBytes := salt.Bytes32()
	data := make([]byte, 0, 85)
	data = append(data, 0xff)
	data = append(data, caller[:]...)
	data = append(data, saltBytes[:]...)
	data = append(data, initCodeHash...)
	hash := crypto.Keccak256(data)
	return types.BytesToAddress(hash[12:])
}

// Create deploys a new contract via CREATE.
func (evm *EVM) Create(caller types.Address, code []byte, gas uint64, value *Word) ([]byte, types.Address, uint64, error) {
	if evm.readOnly {
		return nil, types.Address{}, gas, ErrWriteProtection
	}
	nonce := evm.StateDB.GetNonce(caller)
	evm.StateDB.SetNonce(caller, nonce+1)
	return evm.create(caller, code, gas, value, createAddress(caller, nonce))
}

// Create2 deploys a new contract via CREATE2.
func (evm *EVM) Create2(caller types.Address, code []byte, gas uint64, value *Word, salt *Word) ([]byte, types.Address, uint64, error) {
	if evm.readOnly {
		return nil, types.Address{}, gas, ErrWriteProtection
	}
	initCodeHash := crypto.Keccak256(code)
	return evm.create(caller, code, gas, value, create2Address(caller, salt, initCodeHash))
}

// create is the shared CREATE/CREATE2 implementation (C10). Grounded on the
// teacher's EVM.create (core/vm/interpreter.go).
func (evm *EVM) create(caller types.Address, code []byte, gas uint64, value *Word, contractAddr types.Address) ([]byte, types.Address, uint64, error) {
	if evm.depth >= MaxCallDepth {
		return nil, types.Address{}, gas, ErrDepth
	}
	if len(code) > MaxInitCodeSize {
		return nil, types.Address{}, gas, ErrMaxInitCodeSizeExceeded
	}

	contractHash := evm.StateDB.GetCodeHash(contractAddr)
	if evm.StateDB.GetNonce(contractAddr) != 0 ||
		(contractHash != (types.Hash{}) && contractHash != types.EmptyCodeHash) {
		return nil, types.Address{}, 0, ErrContractAddressCollision
	}

	// EIP-2929: warm the new address before the snapshot, so a reverted
	// creation does not re-cool it.
	evm.AccessList.AddAddress(contractAddr)

	snapshot := evm.StateDB.Snapshot()

	if !evm.StateDB.Exist(contractAddr) {
		evm.StateDB.CreateAccount(contractAddr)
	}
	evm.StateDB.SetNonce(contractAddr, 1)

	if value != nil && !value.IsZero() {
		if evm.StateDB.GetBalance(caller).Cmp(value) < 0 {
			return nil, types.Address{}, gas, ErrInsufficientBalance
		}
		evm.StateDB.SubBalance(caller, value)
		evm.StateDB.AddBalance(contractAddr, value)
	}

	callGas, _ := ForwardGas(gas, gas, false)
	gas -= callGas

	if evm.Config.Tracer != nil {
		if evm.depth == 0 {
			evm.Config.Tracer.CaptureStart(caller, contractAddr, true, code, callGas, value)
		} else {
			evm.Config.Tracer.CaptureEnter(FrameCreate, caller, contractAddr, code, callGas, value)
		}
	}

	frame := NewFrame(FrameCreate, caller, contractAddr, code, types.Hash{}, nil, value, callGas, evm.depth+1, evm.readOnly)

	evm.depth++
	ret, err := evm.run(frame)
	evm.depth--

	if err != nil {
		evm.StateDB.RevertToSnapshot(snapshot)
		if evm.Config.Tracer != nil {
			evm.Config.Tracer.CaptureExit(ret, callGas-frame.Gas, err)
		}
		if !errors.Is(err, ErrExecutionReverted) {
			return ret, types.Address{}, gas, err
		}
		gas += frame.Gas
		return ret, types.Address{}, gas, err
	}
	gas += frame.Gas

	if len(ret) > 0 {
		if len(ret) > MaxCodeSize || (len(ret) > 0 && ret[0] == 0xef) {
			evm.StateDB.RevertToSnapshot(snapshot)
			if evm.Config.Tracer != nil {
				evm.Config.Tracer.CaptureExit(nil, callGas-frame.Gas, ErrMaxCodeSizeExceeded)
			}
			return nil, types.Address{}, 0, ErrMaxCodeSizeExceeded
		}
		depositCost := uint64(len(ret)) * CreateDataGas
		if gas < depositCost {
			evm.StateDB.RevertToSnapshot(snapshot)
			if evm.Config.Tracer != nil {
				evm.Config.Tracer.CaptureExit(nil, callGas, ErrOutOfGas)
			}
			return nil, types.Address{}, 0, ErrOutOfGas
		}
		gas -= depositCost
		evm.StateDB.SetCode(contractAddr, ret)
	}

	if evm.Config.Tracer != nil {
		evm.Config.Tracer.CaptureExit(ret, callGas-frame.Gas, nil)
	}
	return ret, contractAddr, gas, nil
}
