package tx

import (
	"math/big"

	"github.com/branehq/brane/braneerr"
	"github.com/branehq/brane/rlp"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// BlobVersionedHashVersion is the single version byte every EIP-4844 blob
// commitment hash must start with: 0x01 || sha256(commitment)[1:].
const BlobVersionedHashVersion = 0x01

// BlobTx is an EIP-4844 transaction (envelope type 0x03): it carries a
// maxFeePerBlobGas field and 1..6 blob-versioned hashes, and — unlike
// legacy/1559 — can never be a contract creation.
type BlobTx struct {
	ChainID             *big.Int
	Nonce               uint64
	GasTipCap           *big.Int
	GasFeeCap           *big.Int
	GasLimit            uint64
	To                  common.Address
	Value               *big.Int
	Data                []byte
	AccessList          AccessList
	MaxFeePerBlobGas    *big.Int
	BlobVersionedHashes []common.Hash
}

func (t *BlobTx) Kind() Kind { return KindBlob }

func (t *BlobTx) validate() error {
	if t.ChainID == nil || t.ChainID.Sign() <= 0 {
		return braneerr.RlpInvalid(errZeroChainID)
	}
	if t.GasLimit == 0 {
		return braneerr.RlpInvalid(errZeroGasLimit)
	}
	if len(t.BlobVersionedHashes) < 1 || len(t.BlobVersionedHashes) > 6 {
		return braneerr.RlpInvalid(errBlobHashCount)
	}
	for _, h := range t.BlobVersionedHashes {
		if h[0] != BlobVersionedHashVersion {
			return braneerr.RlpInvalid(errBlobHashVersion)
		}
	}
	return nil
}

func (t *BlobTx) fields() []rlp.Item {
	hashes := make([]rlp.Item, len(t.BlobVersionedHashes))
	for i, h := range t.BlobVersionedHashes {
		hashes[i] = rlp.AsBytes(h.Bytes())
	}
	return []rlp.Item{
		rlp.AsBigUint(t.ChainID),
		rlp.AsUint(t.Nonce),
		rlp.AsBigUint(t.GasTipCap),
		rlp.AsBigUint(t.GasFeeCap),
		rlp.AsUint(t.GasLimit),
		rlp.AsBytes(t.To.Bytes()),
		rlp.AsBigUint(t.Value),
		rlp.AsBytes(t.Data),
		t.AccessList.Canonicalize().rlpItem(),
		rlp.AsBigUint(t.MaxFeePerBlobGas),
		rlp.List(hashes...),
	}
}

// SigningPreimage returns 0x03 || rlp([chainId, nonce,
// maxPriorityFeePerGas, maxFeePerGas, gasLimit, to, value, data,
// accessList, maxFeePerBlobGas, blobVersionedHashes]).
func (t *BlobTx) SigningPreimage() ([]byte, error) {
	if err := t.validate(); err != nil {
		return nil, err
	}
	body := rlp.Encode(rlp.List(t.fields()...))
	out := make([]byte, 0, 1+len(body))
	out = append(out, 0x03)
	return append(out, body...), nil
}

// Envelope returns 0x03 || rlp([…same fields…, yParity, r, s]).
func (t *BlobTx) Envelope(sig Signature) ([]byte, error) {
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
	out = append(out, 0x03)
	return append(out, body...), nil
}

// Hash returns keccak256 of the signed envelope (the execution-layer
// envelope, not the network-wrapped form with blobs/commitments/proofs).
func (t *BlobTx) Hash(sig Signature) ([32]byte, error) {
	env, err := t.Envelope(sig)
	if err != nil {
		return [32]byte{}, err
	}
	return crypto.Keccak256Hash(env), nil
}
