package vm

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"math/big"

	"github.com/coreevm/coreevm/core/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/crypto/bn256"
	"github.com/ethereum/go-ethereum/crypto/kzg4844"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // required for the 0x03 precompile's exact historical digest
)

// PrecompiledContract is a native, address-dispatched alternative to running
// bytecode. coreevm ships the standard set that the CALL family must
// recognize by address alone (0x01 through 0x0a); a host may extend the
// table with chain-specific precompiles by constructing its own map using
// the same interface.
type PrecompiledContract interface {
	// RequiredGas returns the gas the call costs given its input, before
	// Run is invoked.
	RequiredGas(input []byte) uint64
	// Run executes the precompile and returns its output, or an error if
	// the input is malformed for this contract.
	Run(input []byte) ([]byte, error)
}

// PrecompiledContracts is the address -> implementation table active for a
// given fork. Grounded on the teacher's runPrecompile dispatch
// (core/vm/evm_call_handlers.go), which looks a precompile up by address
// before falling back to ordinary code execution.
type PrecompiledContracts map[types.Address]PrecompiledContract

func precompileAddress(b byte) types.Address {
	return types.BytesToAddress([]byte{b})
}

// PrecompiledContractsCancun is the precompile set active from the Cancun
// upgrade onward: the Berlin/Istanbul set plus the EIP-4844 point
// evaluation precompile at 0x0a.
var PrecompiledContractsCancun = PrecompiledContracts{
	precompileAddress(0x01): &ecrecoverPrecompile{},
	precompileAddress(0x02): &sha256Precompile{},
	precompileAddress(0x03): &ripemd160Precompile{},
	precompileAddress(0x04): &identityPrecompile{},
	precompileAddress(0x05): &modexpPrecompile{},
	precompileAddress(0x06): &bn256AddPrecompile{},
	precompileAddress(0x07): &bn256ScalarMulPrecompile{},
	precompileAddress(0x08): &bn256PairingPrecompile{},
	precompileAddress(0x09): &blake2FPrecompile{},
	precompileAddress(0x0A): &kzgPointEvaluationPrecompile{},
}

// Lookup returns the precompile registered at addr, if any.
func (p PrecompiledContracts) Lookup(addr types.Address) (PrecompiledContract, bool) {
	c, ok := p[addr]
	return c, ok
}

// getData returns data[start:start+size], right-padded with zero bytes,
// clamped to data's bounds. Shared by every precompile that reads
// fixed-width fields out of an input shorter than the field layout
// requires (EVM calldata is never implicitly length-checked).
func getData(data []byte, start, size uint64) []byte {
	length := uint64(len(data))
	if start > length {
		start = length
	}
	end := start + size
	if end > length {
		end = length
	}
	return common.RightPadBytes(data[start:end], int(size))
}

type identityPrecompile struct{}

func (identityPrecompile) RequiredGas(input []byte) uint64 {
	return GasBase + GasCopy*uint64(toWordSize(uint64(len(input))))
}

func (identityPrecompile) Run(input []byte) ([]byte, error) {
	return common.CopyBytes(input), nil
}

type sha256Precompile struct{}

func (sha256Precompile) RequiredGas(input []byte) uint64 {
	return 60 + 12*toWordSize(uint64(len(input)))
}

func (sha256Precompile) Run(input []byte) ([]byte, error) {
	h := sha256.Sum256(input)
	return h[:], nil
}

type ripemd160Precompile struct{}

func (ripemd160Precompile) RequiredGas(input []byte) uint64 {
	return 600 + 120*toWordSize(uint64(len(input)))
}

func (ripemd160Precompile) Run(input []byte) ([]byte, error) {
	h := ripemd160.New()
	h.Write(input)
	return common.LeftPadBytes(h.Sum(nil), 32), nil
}

// ecrecoverPrecompile recovers the signing address from a (hash, v, r, s)
// tuple, per the yellow paper's ECDSARECOVER. Grounded on the teacher's
// ecrecover precompile (core/vm/precompile_crypto.go), backed by
// go-ethereum/crypto rather than a hand-rolled secp256k1 implementation.
type ecrecoverPrecompile struct{}

func (ecrecoverPrecompile) RequiredGas([]byte) uint64 { return 3000 }

func (ecrecoverPrecompile) Run(input []byte) ([]byte, error) {
	const inputLen = 128
	input = common.RightPadBytes(input, inputLen)

	r := new(big.Int).SetBytes(input[64:96])
	s := new(big.Int).SetBytes(input[96:128])
	v := input[63] - 27

	if !allZero(input[32:63]) || !crypto.ValidateSignatureValues(v, r, s, false) {
		return nil, nil
	}
	sig := make([]byte, 65)
	copy(sig, input[64:128])
	sig[64] = v

	pubKey, err := crypto.Ecrecover(input[:32], sig)
	if err != nil {
		return nil, nil
	}
	return common.LeftPadBytes(crypto.Keccak256(pubKey[1:])[12:], 32), nil
}

func allZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}

// modexpPrecompile implements EIP-198/2565's big-integer modular
// exponentiation. Grounded on the teacher's bigModExp
// (core/vm/precompile_bignum.go); gas uses the EIP-2565 schedule
// (ceil(max(baseLen,modLen)/8)^2 scaled by the adjusted exponent length).
type modexpPrecompile struct{}

var (
	big1  = big.NewInt(1)
	big3  = big.NewInt(3)
	big7  = big.NewInt(7)
	big8  = big.NewInt(8)
	big32 = big.NewInt(32)
)

func (modexpPrecompile) RequiredGas(input []byte) uint64 {
	var (
		baseLen = new(big.Int).SetBytes(getData(input, 0, 32))
		expLen  = new(big.Int).SetBytes(getData(input, 32, 32))
		modLen  = new(big.Int).SetBytes(getData(input, 64, 32))
	)
	if len(input) > 96 {
		input = input[96:]
	} else {
		input = input[:0]
	}

	var expHead *big.Int
	if big.NewInt(int64(len(input))).Cmp(baseLen) <= 0 {
		expHead = new(big.Int)
	} else if expLen.Cmp(big32) > 0 {
		expHead = new(big.Int).SetBytes(getData(input, baseLen.Uint64(), 32))
	} else {
		expHead = new(big.Int).SetBytes(getData(input, baseLen.Uint64(), expLen.Uint64()))
	}

	var msb int
	if bitlen := expHead.BitLen(); bitlen > 0 {
		msb = bitlen - 1
	}
	adjExpLen := new(big.Int)
	if expLen.Cmp(big32) > 0 {
		adjExpLen.Sub(expLen, big32)
		adjExpLen.Mul(big8, adjExpLen)
	}
	adjExpLen.Add(adjExpLen, big.NewInt(int64(msb)))

	maxLen := baseLen
	if modLen.Cmp(maxLen) > 0 {
		maxLen = modLen
	}
	gas := new(big.Int).Add(maxLen, big7)
	gas.Div(gas, big8)
	gas.Mul(gas, gas)

	adj := adjExpLen
	if adj.Cmp(big1) < 0 {
		adj = big1
	}
	gas.Mul(gas, adj)
	gas.Div(gas, big3)

	if gas.BitLen() > 64 {
		return ^uint64(0)
	}
	if gas.Uint64() < 200 {
		return 200
	}
	return gas.Uint64()
}

func (modexpPrecompile) Run(input []byte) ([]byte, error) {
	var (
		baseLen = new(big.Int).SetBytes(getData(input, 0, 32)).Uint64()
		expLen  = new(big.Int).SetBytes(getData(input, 32, 32)).Uint64()
		modLen  = new(big.Int).SetBytes(getData(input, 64, 32)).Uint64()
	)
	if len(input) > 96 {
		input = input[96:]
	} else {
		input = input[:0]
	}
	if baseLen == 0 && modLen == 0 {
		return []byte{}, nil
	}

	base := new(big.Int).SetBytes(getData(input, 0, baseLen))
	exp := new(big.Int).SetBytes(getData(input, baseLen, expLen))
	mod := new(big.Int).SetBytes(getData(input, baseLen+expLen, modLen))

	var v []byte
	switch {
	case mod.BitLen() == 0:
		return common.LeftPadBytes([]byte{}, int(modLen)), nil
	case base.BitLen() == 1:
		v = base.Mod(base, mod).Bytes()
	default:
		v = base.Exp(base, exp, mod).Bytes()
	}
	return common.LeftPadBytes(v, int(modLen)), nil
}

var errInvalidCurvePoint = errors.New("vm: invalid bn256 curve point")

func newCurvePoint(blob []byte) (*bn256.G1, error) {
	p := new(bn256.G1)
	if _, err := p.Unmarshal(blob); err != nil {
		return nil, errInvalidCurvePoint
	}
	return p, nil
}

func newTwistPoint(blob []byte) (*bn256.G2, error) {
	p := new(bn256.G2)
	if _, err := p.Unmarshal(blob); err != nil {
		return nil, errInvalidCurvePoint
	}
	return p, nil
}

// bn256AddPrecompile implements BN256 curve point addition (EIP-196).
// Grounded on the teacher's bn256Add (core/vm/precompile_crypto.go),
// backed by go-ethereum/crypto/bn256 rather than a second elliptic-curve
// implementation.
type bn256AddPrecompile struct{}

func (bn256AddPrecompile) RequiredGas([]byte) uint64 { return 150 }

func (bn256AddPrecompile) Run(input []byte) ([]byte, error) {
	x, err := newCurvePoint(getData(input, 0, 64))
	if err != nil {
		return nil, err
	}
	y, err := newCurvePoint(getData(input, 64, 64))
	if err != nil {
		return nil, err
	}
	res := new(bn256.G1)
	res.Add(x, y)
	return res.Marshal(), nil
}

type bn256ScalarMulPrecompile struct{}

func (bn256ScalarMulPrecompile) RequiredGas([]byte) uint64 { return 6000 }

func (bn256ScalarMulPrecompile) Run(input []byte) ([]byte, error) {
	p, err := newCurvePoint(getData(input, 0, 64))
	if err != nil {
		return nil, err
	}
	res := new(bn256.G1)
	res.ScalarMult(p, new(big.Int).SetBytes(getData(input, 64, 32)))
	return res.Marshal(), nil
}

var (
	bn256PairingTrue  = append(make([]byte, 31), 1)
	bn256PairingFalse = make([]byte, 32)
	errBadPairingSize = errors.New("vm: bad bn256 pairing input size")
)

type bn256PairingPrecompile struct{}

func (bn256PairingPrecompile) RequiredGas(input []byte) uint64 {
	const pointGas, baseGas = 34000, 45000
	return baseGas + uint64(len(input)/192)*pointGas
}

func (bn256PairingPrecompile) Run(input []byte) ([]byte, error) {
	if len(input)%192 != 0 {
		return nil, errBadPairingSize
	}
	var curves []*bn256.G1
	var twists []*bn256.G2
	for i := 0; i < len(input); i += 192 {
		c, err := newCurvePoint(input[i : i+64])
		if err != nil {
			return nil, err
		}
		t, err := newTwistPoint(input[i+64 : i+192])
		if err != nil {
			return nil, err
		}
		curves = append(curves, c)
		twists = append(twists, t)
	}
	if bn256.PairingCheck(curves, twists) {
		return bn256PairingTrue, nil
	}
	return bn256PairingFalse, nil
}

const (
	blake2FInputLength    = 213
	blake2FFinalBlockByte = byte(1)
)

var (
	errBlake2FInvalidLength = errors.New("vm: invalid blake2f input length")
	errBlake2FInvalidFinal  = errors.New("vm: invalid blake2f final-block flag")
)

// blake2FPrecompile implements EIP-152's raw BLAKE2b compression function
// F, exposed so off-chain BLAKE2b state can be verified on-chain.
// Grounded on the teacher's blake2F (core/vm/precompile_hash.go);
// golang.org/x/crypto/blake2b exports F precisely for this purpose.
type blake2FPrecompile struct{}

func (blake2FPrecompile) RequiredGas(input []byte) uint64 {
	if len(input) != blake2FInputLength {
		return 0
	}
	return uint64(binary.BigEndian.Uint32(input[0:4]))
}

func (blake2FPrecompile) Run(input []byte) ([]byte, error) {
	if len(input) != blake2FInputLength {
		return nil, errBlake2FInvalidLength
	}
	if input[212] != 0 && input[212] != blake2FFinalBlockByte {
		return nil, errBlake2FInvalidFinal
	}

	rounds := binary.BigEndian.Uint32(input[0:4])
	final := input[212] == blake2FFinalBlockByte

	var h [8]uint64
	var m [16]uint64
	var t [2]uint64
	for i := 0; i < 8; i++ {
		h[i] = binary.LittleEndian.Uint64(input[4+i*8 : 12+i*8])
	}
	for i := 0; i < 16; i++ {
		m[i] = binary.LittleEndian.Uint64(input[68+i*8 : 76+i*8])
	}
	t[0] = binary.LittleEndian.Uint64(input[196:204])
	t[1] = binary.LittleEndian.Uint64(input[204:212])

	blake2b.F(&h, m, t, final, rounds)

	out := make([]byte, 64)
	for i := 0; i < 8; i++ {
		binary.LittleEndian.PutUint64(out[i*8:i*8+8], h[i])
	}
	return out, nil
}

const (
	blobVerifyInputLength        = 192
	blobCommitmentVersionKZG     = 0x01
	blobPrecompileReturnFieldLen = 32
)

var (
	errBlobInvalidLength  = errors.New("vm: invalid point evaluation input length")
	errBlobMismatchedHash = errors.New("vm: versioned hash mismatch")
	errBlobInvalidProof   = errors.New("vm: invalid kzg proof")

	// blobPrecompileReturnValue is FIELD_ELEMENTS_PER_BLOB (big-endian
	// uint64, left-padded to 32 bytes) followed by BLS_MODULUS (32 bytes),
	// the fixed success output defined by EIP-4844.
	blobPrecompileReturnValue = func() []byte {
		out := make([]byte, 64)
		binary.BigEndian.PutUint64(out[24:32], 4096)
		copy(out[32:], []byte{
			0x73, 0xed, 0xa7, 0x53, 0x29, 0x9d, 0x7d, 0x48,
			0x33, 0x39, 0xd8, 0x08, 0x09, 0xa1, 0xd8, 0x05,
			0x53, 0xbd, 0xa4, 0x02, 0xff, 0xfe, 0x5b, 0xfe,
			0xff, 0xff, 0xff, 0xff, 0x00, 0x00, 0x00, 0x01,
		})
		return out
	}()
)

// kzgPointEvaluationPrecompile implements EIP-4844's point evaluation
// precompile at 0x0a: it proves that a KZG commitment opens to a claimed
// value at a point, and that the commitment matches the given versioned
// hash. Grounded on the teacher's kzgPointEvaluation
// (core/vm/precompile_blob.go), backed by go-ethereum/crypto/kzg4844.
type kzgPointEvaluationPrecompile struct{}

func (kzgPointEvaluationPrecompile) RequiredGas([]byte) uint64 { return 50000 }

func (kzgPointEvaluationPrecompile) Run(input []byte) ([]byte, error) {
	if len(input) != blobVerifyInputLength {
		return nil, errBlobInvalidLength
	}

	var versionedHash types.Hash
	copy(versionedHash[:], input[:32])

	var point kzg4844.Point
	copy(point[:], input[32:64])
	var claim kzg4844.Claim
	copy(claim[:], input[64:96])

	var commitment kzg4844.Commitment
	copy(commitment[:], input[96:144])
	if kzgToVersionedHash(commitment) != versionedHash {
		return nil, errBlobMismatchedHash
	}

	var proof kzg4844.Proof
	copy(proof[:], input[144:192])
	if err := kzg4844.VerifyProof(commitment, point, claim, proof); err != nil {
		return nil, errBlobInvalidProof
	}
	return blobPrecompileReturnValue, nil
}

func kzgToVersionedHash(commitment kzg4844.Commitment) types.Hash {
	h := sha256.Sum256(commitment[:])
	h[0] = blobCommitmentVersionKZG
	return types.Hash(h)
}
