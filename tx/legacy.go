package tx

import (
	"math/big"

	"github.com/branehq/brane/braneerr"
	"github.com/branehq/brane/rlp"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// LegacyTx is a pre-EIP-2718 transaction. Its chain id is not carried as a
// field — it is folded into the signature's v value (EIP-155) and only
// recoverable from a signed envelope.
type LegacyTx struct {
	Nonce    uint64
	GasPrice *big.Int
	GasLimit uint64
	To       *common.Address // nil means contract creation
	Value    *big.Int
	Data     []byte
}

func (t *LegacyTx) Kind() Kind { return KindLegacy }

func (t *LegacyTx) validate() error {
	if t.GasLimit == 0 {
		return braneerr.RlpInvalid(errZeroGasLimit)
	}
	return nil
}

func (t *LegacyTx) toAddrBytes() []byte {
	if t.To == nil {
		return nil
	}
	return t.To.Bytes()
}

// SigningPreimage returns rlp([nonce, gasPrice, gasLimit, to, value, data,
// chainId, 0, 0]), the EIP-155 preimage whose keccak256 is signed.
func (t *LegacyTx) SigningPreimage(chainID *big.Int) ([]byte, error) {
	if err := t.validate(); err != nil {
		return nil, err
	}
	if chainID == nil || chainID.Sign() <= 0 {
		return nil, braneerr.RlpInvalid(errZeroChainID)
	}
	item := rlp.List(
		rlp.AsUint(t.Nonce),
		rlp.AsBigUint(t.GasPrice),
		rlp.AsUint(t.GasLimit),
		rlp.AsBytes(t.toAddrBytes()),
		rlp.AsBigUint(t.Value),
		rlp.AsBytes(t.Data),
		rlp.AsBigUint(chainID),
		rlp.AsUint(0),
		rlp.AsUint(0),
	)
	return rlp.Encode(item), nil
}

// Envelope returns rlp([nonce, gasPrice, gasLimit, to, value, data, v, r, s])
// where v carries the full EIP-155 value. sig.V must already equal
// chainId*2 + 35 + yParity — callers sign the preimage and adjust v
// themselves before calling Envelope, matching how a signer assembles the
// EIP-155 v byte from a raw secp256k1 recovery id.
func (t *LegacyTx) Envelope(sig Signature) ([]byte, error) {
	if err := t.validate(); err != nil {
		return nil, err
	}
	v, err := sig.legacyV()
	if err != nil {
		return nil, err
	}
	item := rlp.List(
		rlp.AsUint(t.Nonce),
		rlp.AsBigUint(t.GasPrice),
		rlp.AsUint(t.GasLimit),
		rlp.AsBytes(t.toAddrBytes()),
		rlp.AsBigUint(t.Value),
		rlp.AsBytes(t.Data),
		rlp.AsBigUint(v),
		rlp.AsBigUint(sig.R),
		rlp.AsBigUint(sig.S),
	)
	return rlp.Encode(item), nil
}

// ChainID recovers the chain id implied by a signed envelope's v value.
func (t *LegacyTx) ChainID(sig Signature) (*big.Int, error) {
	v, err := sig.legacyV()
	if err != nil {
		return nil, err
	}
	return chainIDFromLegacyV(v), nil
}

// Hash returns keccak256 of the signed envelope, the transaction id used to
// track a submitted transaction and to key it in eth_getTransactionReceipt.
func (t *LegacyTx) Hash(sig Signature) ([32]byte, error) {
	env, err := t.Envelope(sig)
	if err != nil {
		return [32]byte{}, err
	}
	return crypto.Keccak256Hash(env), nil
}
