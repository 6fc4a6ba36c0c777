// Package ecdsasigner is the default in-process implementation of
// tx.Signer: a single secp256k1 private key held in memory. Production
// deployments that need a hardware wallet or remote KMS satisfy tx.Signer
// themselves instead of using this package.
package ecdsasigner

import (
	"crypto/ecdsa"
	"math/big"

	"github.com/branehq/brane/braneerr"
	"github.com/branehq/brane/tx"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Signer holds a single secp256k1 private key and produces raw signatures
// over arbitrary hashes. It never leaves process memory.
type Signer struct {
	privateKey *ecdsa.PrivateKey
	address    common.Address
}

// New constructs a Signer from a 32-byte secp256k1 private key.
func New(privKey []byte) (*Signer, error) {
	key, err := crypto.ToECDSA(privKey)
	if err != nil {
		return nil, braneerr.RlpInvalid(err)
	}
	pub, ok := key.Public().(*ecdsa.PublicKey)
	if !ok {
		return nil, braneerr.RlpInvalid(errNotECDSAPublicKey)
	}
	return &Signer{privateKey: key, address: crypto.PubkeyToAddress(*pub)}, nil
}

// Address returns the checksummed address this signer controls.
func (s *Signer) Address() common.Address { return s.address }

// SignHash signs hash with secp256k1, returning a Signature whose V holds
// the raw recovery id (0 or 1), unadjusted for either legacy or
// typed-transaction conventions.
func (s *Signer) SignHash(hash []byte) (tx.Signature, error) {
	sig, err := crypto.Sign(hash, s.privateKey)
	if err != nil {
		return tx.Signature{}, braneerr.RlpInvalid(err)
	}
	r := new(big.Int).SetBytes(sig[:32])
	sVal := new(big.Int).SetBytes(sig[32:64])
	v := big.NewInt(int64(sig[64]))
	return tx.Signature{V: v, R: r, S: sVal}, nil
}

var _ tx.Signer = (*Signer)(nil)
