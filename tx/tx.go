// Package tx builds and signs Ethereum typed transactions: Legacy, EIP-1559,
// and EIP-4844. Encoding is bit-exact per the wire rules — every envelope and
// signing preimage is assembled through this repo's own rlp package, never
// go-ethereum's, since the codec is the thing under specification here.
package tx

import (
	"math/big"

	"github.com/branehq/brane/braneerr"
	"github.com/branehq/brane/rlp"
	"github.com/ethereum/go-ethereum/common"
)

// Kind selects the transaction variant an EIP-2718 envelope's first byte
// identifies.
type Kind int

const (
	KindLegacy Kind = iota
	KindDynamicFee
	KindBlob
)

func (k Kind) String() string {
	switch k {
	case KindLegacy:
		return "legacy"
	case KindDynamicFee:
		return "eip1559"
	case KindBlob:
		return "eip4844"
	default:
		return "unknown"
	}
}

// envelopeByte is the EIP-2718 type byte prefixed to 1559/4844 encodings.
// Legacy transactions have no envelope byte — their first RLP byte is
// always >= 0xc0 (a list), which is how wire parsers tell them apart.
func (k Kind) envelopeByte() (byte, bool) {
	switch k {
	case KindDynamicFee:
		return 0x02, true
	case KindBlob:
		return 0x03, true
	default:
		return 0, false
	}
}

// AccessTuple is one address + storage-key-list entry of an EIP-2930 access
// list.
type AccessTuple struct {
	Address     common.Address
	StorageKeys []common.Hash
}

// AccessList is the access list carried by 1559 and 4844 transactions.
type AccessList []AccessTuple

// Canonicalize returns a copy of the list with duplicate storage keys
// removed from each tuple, preserving first-seen order. Addresses are left
// as-is: a real access list rarely repeats an address, and de-duplicating
// across tuples would change which gas-refund bucket a key falls in.
func (al AccessList) Canonicalize() AccessList {
	out := make(AccessList, len(al))
	for i, t := range al {
		seen := make(map[common.Hash]bool, len(t.StorageKeys))
		keys := make([]common.Hash, 0, len(t.StorageKeys))
		for _, k := range t.StorageKeys {
			if seen[k] {
				continue
			}
			seen[k] = true
			keys = append(keys, k)
		}
		out[i] = AccessTuple{Address: t.Address, StorageKeys: keys}
	}
	return out
}

func (al AccessList) rlpItem() rlp.Item {
	items := make([]rlp.Item, len(al))
	for i, t := range al {
		keys := make([]rlp.Item, len(t.StorageKeys))
		for j, k := range t.StorageKeys {
			keys[j] = rlp.AsBytes(k.Bytes())
		}
		items[i] = rlp.List(rlp.AsBytes(t.Address.Bytes()), rlp.List(keys...))
	}
	return rlp.List(items...)
}

// Signature is the (yParity|v, r, s) triple produced by signing a
// transaction's preimage hash. For legacy transactions V carries the full
// EIP-155 value (chainId*2 + 35 + yParity); for 1559/4844 V carries only
// yParity (0 or 1).
type Signature struct {
	V *big.Int
	R *big.Int
	S *big.Int
}

// yParity validates and extracts the 1559/4844 recovery id.
func (s Signature) yParity() (byte, error) {
	if s.V == nil || (s.V.Cmp(big.NewInt(0)) != 0 && s.V.Cmp(big.NewInt(1)) != 0) {
		return 0, braneerr.RlpInvalid(errInvalidYParity)
	}
	return byte(s.V.Int64()), nil
}

// legacyV validates the EIP-155 encoded v value per spec.md's chosen policy
// (design notes §9, open question 3): only v >= 35 is accepted. Pre-EIP-155
// v in {27,28} and raw recovery ids in {0,1} are rejected outright — there is
// no fallback code path for them in this component.
func (s Signature) legacyV() (*big.Int, error) {
	if s.V == nil || s.V.Cmp(big.NewInt(35)) < 0 {
		return nil, braneerr.RlpInvalid(errInvalidLegacyV)
	}
	return s.V, nil
}

// chainIDFromLegacyV recovers the chain id implied by an EIP-155 v value:
// chainId = (v - 35) / 2, rounding toward the yParity bit.
func chainIDFromLegacyV(v *big.Int) *big.Int {
	t := new(big.Int).Sub(v, big.NewInt(35))
	return new(big.Int).Rsh(t, 1)
}
