package hdwallet

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/tyler-smith/go-bip32"
)

// Account is one derived keypair: its private key and the checksummed
// address that key controls.
type Account struct {
	Path       string
	PrivateKey *ecdsa.PrivateKey
	Address    common.Address
}

// Wallet is a BIP-32 master key derived from a BIP-39 seed, capable of
// walking Ethereum's BIP-44 path (m/44'/60'/account'/change/index) down to
// individual signing keys.
type Wallet struct {
	master *bip32.Key
}

// NewWallet derives the BIP-32 master extended key from a 64-byte BIP-39
// seed (see SeedFromMnemonic).
func NewWallet(seed []byte) (*Wallet, error) {
	master, err := bip32.NewMasterKey(seed)
	if err != nil {
		return nil, fmt.Errorf("hdwallet: failed to derive master key: %w", err)
	}
	return &Wallet{master: master}, nil
}

// NewWalletFromMnemonic is the common-case constructor: validate mnemonic,
// derive seed, derive master key, in one call.
func NewWalletFromMnemonic(mnemonic, passphrase string) (*Wallet, error) {
	seed, err := SeedFromMnemonic(mnemonic, passphrase)
	if err != nil {
		return nil, err
	}
	return NewWallet(seed)
}

// Derive walks path from the master key and returns the account it names.
// path may be any path ParsePath accepts; the standard
// "m/44'/60'/account'/change/index" form is not enforced here (see
// ValidateEthereumPath). Hardened segments are suffixed with ' (or h/H).
func (w *Wallet) Derive(path string) (*Account, error) {
	segments, err := ParsePath(path)
	if err != nil {
		return nil, err
	}

	key := w.master
	for _, seg := range segments {
		childIdx := seg.index
		if seg.hardened {
			childIdx += bip32.FirstHardenedChild
		}
		key, err = key.NewChildKey(childIdx)
		if err != nil {
			return nil, fmt.Errorf("hdwallet: failed to derive child at segment %d: %w", seg.index, err)
		}
	}

	privKey, err := crypto.ToECDSA(key.Key)
	if err != nil {
		return nil, fmt.Errorf("hdwallet: derived key is not a valid secp256k1 scalar: %w", err)
	}

	return &Account{
		Path:       path,
		PrivateKey: privKey,
		Address:    crypto.PubkeyToAddress(privKey.PublicKey),
	}, nil
}

// DeriveEthereum derives the account at the standard Ethereum BIP-44 path
// for the given account index, change chain, and address index.
func (w *Wallet) DeriveEthereum(account, change, index uint32) (*Account, error) {
	return w.Derive(EthereumPath(account, change, index))
}
