package tx

import (
	"math/big"

	"github.com/branehq/brane/braneerr"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Signer is the trait-shaped signing dependency this package builds
// transactions around: anything that can produce a secp256k1 signature
// over an arbitrary 32-byte hash and report the address it signs for.
// Production callers may satisfy this with an in-process key (see
// ecdsasigner), a hardware wallet, or a remote KMS — this package never
// assumes which.
//
// Contract:
//   - SignHash MUST return V as the raw recovery id (0 or 1), never an
//     already-adjusted legacy or typed-transaction V; SignLegacy/
//     SignDynamicFee/SignBlob perform that adjustment themselves.
//   - Address MUST be the address whose key SignHash signs with.
type Signer interface {
	Address() common.Address
	SignHash(hash []byte) (Signature, error)
}

// SignLegacy signs a LegacyTx's EIP-155 preimage under chainID and returns
// the envelope ready for eth_sendRawTransaction, adjusting the raw recovery
// id into v = chainId*2 + 35 + yParity.
func SignLegacy(signer Signer, t *LegacyTx, chainID *big.Int) ([]byte, error) {
	preimage, err := t.SigningPreimage(chainID)
	if err != nil {
		return nil, err
	}
	hash := crypto.Keccak256(preimage)
	sig, err := signer.SignHash(hash)
	if err != nil {
		return nil, err
	}
	yParity := sig.V.Int64()
	sig.V = new(big.Int).Add(new(big.Int).Mul(chainID, big.NewInt(2)), big.NewInt(35+yParity))
	return t.Envelope(sig)
}

// SignDynamicFee signs an EIP-1559 transaction's preimage and returns the
// type-0x02 envelope.
func SignDynamicFee(signer Signer, t *DynamicFeeTx) ([]byte, error) {
	preimage, err := t.SigningPreimage()
	if err != nil {
		return nil, err
	}
	hash := crypto.Keccak256(preimage)
	sig, err := signer.SignHash(hash)
	if err != nil {
		return nil, err
	}
	return t.Envelope(sig)
}

// SignBlob signs an EIP-4844 transaction's preimage and returns the
// type-0x03 execution-layer envelope (not the network-wrapped form).
func SignBlob(signer Signer, t *BlobTx) ([]byte, error) {
	preimage, err := t.SigningPreimage()
	if err != nil {
		return nil, err
	}
	hash := crypto.Keccak256(preimage)
	sig, err := signer.SignHash(hash)
	if err != nil {
		return nil, err
	}
	return t.Envelope(sig)
}

// Recover recovers the signer address from a preimage hash and a Signature
// whose V holds a raw recovery id (0 or 1), a pre-155 legacy v (27/28), or
// an EIP-155 legacy v (>=35); used to verify a transaction's apparent
// sender without access to a Signer.
func Recover(hash []byte, sig Signature) (common.Address, error) {
	v := sig.V.Int64()
	var recID byte
	switch {
	case v == 0 || v == 1:
		recID = byte(v)
	case v >= 35:
		recID = byte((v - 35) % 2)
	case v == 27 || v == 28:
		recID = byte(v - 27)
	default:
		return common.Address{}, braneerr.RlpInvalid(errInvalidYParity)
	}

	sigBytes := make([]byte, 65)
	copy(sigBytes[0:32], leftPad32(sig.R.Bytes()))
	copy(sigBytes[32:64], leftPad32(sig.S.Bytes()))
	sigBytes[64] = recID

	pub, err := crypto.SigToPub(hash, sigBytes)
	if err != nil {
		return common.Address{}, braneerr.RlpInvalid(err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}

func leftPad32(b []byte) []byte {
	if len(b) >= 32 {
		return b[len(b)-32:]
	}
	out := make([]byte, 32)
	copy(out[32-len(b):], b)
	return out
}
