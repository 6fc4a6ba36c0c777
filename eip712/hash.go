package eip712

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/branehq/brane/abi"
	"github.com/branehq/brane/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// TypeHash returns keccak256 of the canonical type string for primaryType.
func TypeHash(primaryType string, types TypeSet) ([32]byte, error) {
	var out [32]byte
	enc, err := EncodeType(primaryType, types)
	if err != nil {
		return out, err
	}
	copy(out[:], crypto.Keccak256([]byte(enc)))
	return out, nil
}

// HashStruct computes hashStruct(value) = keccak256(typeHash || encode(value)),
// where encode(value) is the concatenation of each field's 32-byte encoding
// in declaration order.
func HashStruct(typeName string, value Value, types TypeSet) ([32]byte, error) {
	var out [32]byte
	fields, ok := types[typeName]
	if !ok {
		return out, fmt.Errorf("%w: %s", ErrUnknownType, typeName)
	}
	th, err := TypeHash(typeName, types)
	if err != nil {
		return out, err
	}

	buf := make([]byte, 0, 32*(len(fields)+1))
	buf = append(buf, th[:]...)
	for _, f := range fields {
		raw, present := value[f.Name]
		if !present {
			return out, &InvalidValueError{Type: typeName, Reason: "missing field " + f.Name}
		}
		word, err := encodeField(f.Type, raw, types)
		if err != nil {
			return out, err
		}
		buf = append(buf, word[:]...)
	}
	copy(out[:], crypto.Keccak256(buf))
	return out, nil
}

// encodeField encodes a single field's value to its 32-byte struct-hash
// representation, per EIP-712 §Definition of encodeData:
//   - struct            -> hashStruct(value)
//   - bytes / string     -> keccak256(value)
//   - array (any arity)  -> keccak256(concat(encode each element))
//   - atomic ABI type    -> the standard 32-byte ABI head word
func encodeField(typeStr string, raw interface{}, types TypeSet) ([32]byte, error) {
	var out [32]byte

	if isArrayType(typeStr) {
		elemType := baseType(typeStr)
		elems, ok := raw.([]interface{})
		if !ok {
			return out, &InvalidValueError{Type: typeStr, Reason: "value is not an array"}
		}
		buf := make([]byte, 0, 32*len(elems))
		for _, e := range elems {
			w, err := encodeField(elemType, e, types)
			if err != nil {
				return out, err
			}
			buf = append(buf, w[:]...)
		}
		copy(out[:], crypto.Keccak256(buf))
		return out, nil
	}

	if _, isStruct := types[typeStr]; isStruct {
		v, ok := raw.(Value)
		if !ok {
			if m, ok2 := raw.(map[string]interface{}); ok2 {
				v = Value(m)
			} else {
				return out, &InvalidValueError{Type: typeStr, Reason: "value is not a struct"}
			}
		}
		return HashStruct(typeStr, v, types)
	}

	switch typeStr {
	case "bytes":
		b, ok := raw.([]byte)
		if !ok {
			return out, &InvalidValueError{Type: typeStr, Reason: "value is not []byte"}
		}
		copy(out[:], crypto.Keccak256(b))
		return out, nil
	case "string":
		s, ok := raw.(string)
		if !ok {
			return out, &InvalidValueError{Type: typeStr, Reason: "value is not string"}
		}
		copy(out[:], crypto.Keccak256([]byte(s)))
		return out, nil
	}

	return encodeAtomic(typeStr, raw)
}

// encodeAtomic encodes a non-struct, non-array, non-dynamic field (uintN,
// intN, address, bool, bytesN) to its 32-byte ABI head word, accepting a
// wider set of input representations than the abi package proper: integers
// may arrive as decimal or 0x-hex strings, matching how typed-data message
// values are commonly supplied (spec.md §8 Open Questions).
func encodeAtomic(typeStr string, raw interface{}) ([32]byte, error) {
	var out [32]byte
	t, err := abi.ParseType(typeStr)
	if err != nil {
		return out, &InvalidValueError{Type: typeStr, Reason: err.Error()}
	}

	value := raw
	if s, isString := raw.(string); isString {
		switch t.Kind {
		case abi.KindUint, abi.KindInt:
			n, err := parseFlexibleInt(s)
			if err != nil {
				return out, &InvalidValueError{Type: typeStr, Reason: err.Error()}
			}
			value = n
		}
	}

	word, err := abi.EncodeArgs([]abi.Type{t}, []interface{}{value})
	if err != nil {
		return out, &InvalidValueError{Type: typeStr, Reason: err.Error()}
	}
	copy(out[:], word)
	return out, nil
}

func parseFlexibleInt(s string) (*big.Int, error) {
	if hexutil.Has0xPrefix(s) {
		b, err := hexutil.Decode(s)
		if err != nil {
			return nil, err
		}
		return new(big.Int).SetBytes(b), nil
	}
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("eip712: not a valid integer literal: %q", s)
	}
	return n, nil
}

// DomainSeparator computes hashStruct("EIP712Domain", domain) over only the
// fields actually populated in d, in the fixed order name, version, chainId,
// verifyingContract, salt (spec.md §4.4).
func DomainSeparator(d Domain) ([32]byte, error) {
	var fields []FieldDef
	value := Value{}

	if d.Name != nil {
		fields = append(fields, FieldDef{"name", "string"})
		value["name"] = *d.Name
	}
	if d.Version != nil {
		fields = append(fields, FieldDef{"version", "string"})
		value["version"] = *d.Version
	}
	if d.ChainID != nil {
		fields = append(fields, FieldDef{"chainId", "uint256"})
		value["chainId"] = big.NewInt(*d.ChainID)
	}
	if d.VerifyingContract != nil {
		fields = append(fields, FieldDef{"verifyingContract", "address"})
		value["verifyingContract"] = strings.TrimSpace(*d.VerifyingContract)
	}
	if d.Salt != nil {
		fields = append(fields, FieldDef{"salt", "bytes32"})
		value["salt"] = *d.Salt
	}

	types := TypeSet{"EIP712Domain": fields}
	return HashStruct("EIP712Domain", value, types)
}

// Digest computes the final EIP-712 signing hash:
// keccak256(0x1901 || domainSeparator || hashStruct(primaryType, message)).
func Digest(domain Domain, primaryType string, message Value, types TypeSet) ([32]byte, error) {
	var out [32]byte
	ds, err := DomainSeparator(domain)
	if err != nil {
		return out, err
	}
	hs, err := HashStruct(primaryType, message, types)
	if err != nil {
		return out, err
	}
	buf := make([]byte, 0, 2+32+32)
	buf = append(buf, 0x19, 0x01)
	buf = append(buf, ds[:]...)
	buf = append(buf, hs[:]...)
	copy(out[:], crypto.Keccak256(buf))
	return out, nil
}
