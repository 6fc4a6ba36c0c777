package abi

import (
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
)

// Selector computes the 4-byte function selector: the first 4 bytes of
// keccak256 of the canonical signature ("name(type1,type2,...)", no spaces).
func Selector(canonicalSignature string) [4]byte {
	hash := crypto.Keccak256([]byte(canonicalSignature))
	var sel [4]byte
	copy(sel[:], hash[:4])
	return sel
}

// FunctionSignature assembles a canonical signature from a name and its
// argument types, with no whitespace, matching spec.md §4.3/§6.
func FunctionSignature(name string, argTypes []Type) string {
	parts := make([]string, len(argTypes))
	for i, t := range argTypes {
		parts[i] = t.String()
	}
	return name + "(" + strings.Join(parts, ",") + ")"
}
