// Package hdwallet implements BIP-39 mnemonic generation and BIP-32
// hierarchical deterministic key derivation down an Ethereum BIP-44 path
// (m/44'/60'/account'/change/index), producing secp256k1 keys and
// checksummed addresses.
package hdwallet

import (
	"crypto/rand"
	"fmt"

	"github.com/tyler-smith/go-bip39"
)

// GenerateMnemonic returns a BIP-39 mnemonic phrase of the given word count
// (12 for 128-bit entropy, 24 for 256-bit entropy — 15/18/21 are also valid
// BIP-39 lengths and accepted here).
func GenerateMnemonic(wordCount int) (string, error) {
	entropyBits, err := entropyBitsForWordCount(wordCount)
	if err != nil {
		return "", err
	}

	entropy := make([]byte, entropyBits/8)
	if _, err := rand.Read(entropy); err != nil {
		return "", fmt.Errorf("hdwallet: failed to generate entropy: %w", err)
	}

	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", fmt.Errorf("hdwallet: failed to generate mnemonic: %w", err)
	}
	return mnemonic, nil
}

func entropyBitsForWordCount(wordCount int) (int, error) {
	switch wordCount {
	case 12:
		return 128, nil
	case 15:
		return 160, nil
	case 18:
		return 192, nil
	case 21:
		return 224, nil
	case 24:
		return 256, nil
	default:
		return 0, fmt.Errorf("hdwallet: invalid word count %d: must be one of 12,15,18,21,24", wordCount)
	}
}

// ValidateMnemonic checks wordlist membership and the BIP-39 checksum.
func ValidateMnemonic(mnemonic string) error {
	if mnemonic == "" {
		return fmt.Errorf("hdwallet: mnemonic cannot be empty")
	}
	if !bip39.IsMnemonicValid(mnemonic) {
		return fmt.Errorf("hdwallet: invalid mnemonic: checksum verification failed or invalid words")
	}
	return nil
}

// SeedFromMnemonic derives the 64-byte BIP-32 seed from a mnemonic and an
// optional passphrase (PBKDF2-HMAC-SHA512, 2048 rounds, per BIP-39).
func SeedFromMnemonic(mnemonic, passphrase string) ([]byte, error) {
	if err := ValidateMnemonic(mnemonic); err != nil {
		return nil, err
	}
	return bip39.NewSeed(mnemonic, passphrase), nil
}
