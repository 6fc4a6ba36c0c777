package tx

import (
	"math/big"

	"github.com/branehq/brane/braneerr"
	"github.com/branehq/brane/rlp"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// DynamicFeeTx is an EIP-1559 transaction (envelope type 0x02): gas price is
// replaced by a priority-fee/max-fee pair and the transaction carries its
// chain id and an access list directly.
type DynamicFeeTx struct {
	ChainID    *big.Int
	Nonce      uint64
	GasTipCap  *big.Int // maxPriorityFeePerGas
	GasFeeCap  *big.Int // maxFeePerGas
	GasLimit   uint64
	To         *common.Address
	Value      *big.Int
	Data       []byte
	AccessList AccessList
}

func (t *DynamicFeeTx) Kind() Kind { return KindDynamicFee }

func (t *DynamicFeeTx) validate() error {
	if t.ChainID == nil || t.ChainID.Sign() <= 0 {
		return braneerr.RlpInvalid(errZeroChainID)
	}
	if t.GasLimit == 0 {
		return braneerr.RlpInvalid(errZeroGasLimit)
	}
	return nil
}

func (t *DynamicFeeTx) toAddrBytes() []byte {
	if t.To == nil {
		return nil
	}
	return t.To.Bytes()
}

func (t *DynamicFeeTx) fields() []rlp.Item {
	return []rlp.Item{
		rlp.AsBigUint(t.ChainID),
		rlp.AsUint(t.Nonce),
		rlp.AsBigUint(t.GasTipCap),
		rlp.AsBigUint(t.GasFeeCap),
		rlp.AsUint(t.GasLimit),
		rlp.AsBytes(t.toAddrBytes()),
		rlp.AsBigUint(t.Value),
		rlp.AsBytes(t.Data),
		t.AccessList.Canonicalize().rlpItem(),
	}
}

// SigningPreimage returns 0x02 || rlp([chainId, nonce, maxPriorityFeePerGas,
// maxFeePerGas, gasLimit, to, value, data, accessList]).
func (t *DynamicFeeTx) SigningPreimage() ([]byte, error) {
	if err := t.validate(); err != nil {
		return nil, err
	}
	body := rlp.Encode(rlp.List(t.fields()...))
	out := make([]byte, 0, 1+len(body))
	out = append(out, 0x02)
	return append(out, body...), nil
}

// Envelope returns 0x02 || rlp([…same fields…, yParity, r, s]).
func (t *DynamicFeeTx) Envelope(sig Signature) ([]byte, error) {
	if err := t.validate(); err != nil {
		return nil, err
	}
	yParity, err := sig.yParity()
	if err != nil {
		return nil, err
	}
	fields := append(t.fields(),
		rlp.AsUint(uint64(yParity)),
		rlp.AsBigUint(sig.R),
		rlp.AsBigUint(sig.S),
	)
	body := rlp.Encode(rlp.List(fields...))
	out := make([]byte, 0, 1+len(body))
	out = append(out, 0x02)
	return append(out, body...), nil
}

// Hash returns keccak256 of the signed envelope.
func (t *DynamicFeeTx) Hash(sig Signature) ([32]byte, error) {
	env, err := t.Envelope(sig)
	if err != nil {
		return [32]byte{}, err
	}
	return crypto.Keccak256Hash(env), nil
}
