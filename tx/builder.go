package tx

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Builder assembles unsigned transactions for a fixed chain id, mirroring
// the shape of a fee-estimation step (nonce, gas limit, and fee fields are
// supplied by the caller — typically from eth_getTransactionCount,
// eth_estimateGas, and eth_feeHistory) followed by one constructor call per
// transaction kind.
type Builder struct {
	chainID *big.Int
}

// NewBuilder returns a Builder for the given chain id.
func NewBuilder(chainID int64) *Builder {
	return &Builder{chainID: big.NewInt(chainID)}
}

// ChainID returns the chain id this builder stamps onto 1559/4844
// transactions (legacy transactions fold it into the signature instead).
func (b *Builder) ChainID() *big.Int { return new(big.Int).Set(b.chainID) }

// Legacy builds an unsigned LegacyTx.
func (b *Builder) Legacy(nonce uint64, gasPrice *big.Int, gasLimit uint64, to *common.Address, value *big.Int, data []byte) *LegacyTx {
	return &LegacyTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		GasLimit: gasLimit,
		To:       to,
		Value:    value,
		Data:     data,
	}
}

// DynamicFee builds an unsigned EIP-1559 transaction under this builder's
// chain id.
func (b *Builder) DynamicFee(nonce uint64, gasTipCap, gasFeeCap *big.Int, gasLimit uint64, to *common.Address, value *big.Int, data []byte, accessList AccessList) *DynamicFeeTx {
	return &DynamicFeeTx{
		ChainID:    b.ChainID(),
		Nonce:      nonce,
		GasTipCap:  gasTipCap,
		GasFeeCap:  gasFeeCap,
		GasLimit:   gasLimit,
		To:         to,
		Value:      value,
		Data:       data,
		AccessList: accessList,
	}
}

// Blob builds an unsigned EIP-4844 transaction under this builder's chain
// id. Returns braneerr.RlpInvalid if blobHashes is empty, has more than six
// entries, or any entry's version byte is not 0x01 — validated eagerly here
// so a malformed blob set is rejected before a signature is ever requested.
func (b *Builder) Blob(nonce uint64, gasTipCap, gasFeeCap *big.Int, gasLimit uint64, to common.Address, value *big.Int, data []byte, accessList AccessList, maxFeePerBlobGas *big.Int, blobHashes []common.Hash) (*BlobTx, error) {
	t := &BlobTx{
		ChainID:             b.ChainID(),
		Nonce:               nonce,
		GasTipCap:           gasTipCap,
		GasFeeCap:           gasFeeCap,
		GasLimit:            gasLimit,
		To:                  to,
		Value:               value,
		Data:                data,
		AccessList:          accessList,
		MaxFeePerBlobGas:    maxFeePerBlobGas,
		BlobVersionedHashes: blobHashes,
	}
	if err := t.validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// FeeWei computes gasLimit * gasPrice (legacy) or gasLimit * maxFeePerGas
// (1559/4844), the worst-case fee a sender's balance must cover.
func FeeWei(gasLimit uint64, pricePerGas *big.Int) *big.Int {
	return new(big.Int).Mul(pricePerGas, new(big.Int).SetUint64(gasLimit))
}

// ValidateAddress reports whether addr is a well-formed "0x"-prefixed,
// 20-byte hex address, matching the builder's validation of a transaction
// request's from/to fields before any RLP encoding is attempted.
func ValidateAddress(addr string) bool {
	return common.IsHexAddress(addr)
}
