package abi

import (
	"math/big"

	"github.com/branehq/brane/hexutil"
)

const wordSize = 32

// EncodeArgs ABI-encodes a sequence of values against their declared types
// using the standard head/tail scheme: static values are inlined in the
// head; dynamic values leave a 32-byte offset in the head and their content
// in the tail, in declaration order.
func EncodeArgs(types []Type, values []interface{}) ([]byte, error) {
	if len(types) != len(values) {
		return nil, encErr("args", "type/value count mismatch: %d types, %d values", len(types), len(values))
	}
	return encodeSeq(types, values)
}

// EncodeCall builds full calldata: the 4-byte selector followed by the
// head/tail-encoded arguments.
func EncodeCall(selector [4]byte, types []Type, values []interface{}) ([]byte, error) {
	args, err := EncodeArgs(types, values)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 4+len(args))
	copy(out, selector[:])
	copy(out[4:], args)
	return out, nil
}

func encodeSeq(types []Type, values []interface{}) ([]byte, error) {
	heads := make([][]byte, len(types))
	tails := make([][]byte, len(types))
	headSize := 0

	for i, t := range types {
		if t.IsDynamic() {
			headSize += wordSize
			continue
		}
		enc, err := encodeStatic(t, values[i])
		if err != nil {
			return nil, err
		}
		heads[i] = enc
		headSize += len(enc)
	}

	tailOffset := headSize
	for i, t := range types {
		if !t.IsDynamic() {
			continue
		}
		enc, err := encodeStandalone(t, values[i])
		if err != nil {
			return nil, err
		}
		tails[i] = enc
		heads[i] = encode32Uint(uint64(tailOffset))
		if tailOffset+len(enc) < tailOffset {
			return nil, encErr(t.String(), "offset overflow")
		}
		tailOffset += len(enc)
	}

	out := make([]byte, 0, tailOffset)
	for _, h := range heads {
		out = append(out, h...)
	}
	for _, tl := range tails {
		out = append(out, tl...)
	}
	return out, nil
}

// encodeStatic encodes a value whose type is NOT dynamic: atomics inline to
// one word; static fixed arrays/tuples inline as the concatenation of their
// (also static) elements.
func encodeStatic(t Type, v interface{}) ([]byte, error) {
	switch t.Kind {
	case KindUint:
		return encodeUint(t, v)
	case KindInt:
		return encodeInt(t, v)
	case KindAddress:
		return encodeAddress(v)
	case KindBool:
		return encodeBool(v)
	case KindFixedBytes:
		return encodeFixedBytes(t, v)
	case KindFixedArray:
		return encodeStaticSeqLike(t, v, t.ArrayLen)
	case KindTuple:
		return encodeStaticSeqLike(t, v, len(t.Components))
	default:
		return nil, encErr(t.String(), "not a static type")
	}
}

func encodeStaticSeqLike(t Type, v interface{}, n int) ([]byte, error) {
	vals, err := asSlice(t, v, n)
	if err != nil {
		return nil, err
	}
	var out []byte
	for i := 0; i < n; i++ {
		elemType := elementType(t, i)
		enc, err := encodeStatic(elemType, vals[i])
		if err != nil {
			return nil, err
		}
		out = append(out, enc...)
	}
	return out, nil
}

// encodeStandalone encodes a dynamic-type value as a complete, self-contained
// unit (used for tail slots and anywhere a dynamic value is embedded, e.g.
// array elements and EIP-712 array hashing inputs).
func encodeStandalone(t Type, v interface{}) ([]byte, error) {
	switch t.Kind {
	case KindBytes:
		b, ok := v.([]byte)
		if !ok {
			return nil, encErr("bytes", "value is not []byte")
		}
		return append(encode32Uint(uint64(len(b))), rightPad32(b)...), nil

	case KindString:
		s, ok := v.(string)
		if !ok {
			return nil, encErr("string", "value is not string")
		}
		b := []byte(s)
		return append(encode32Uint(uint64(len(b))), rightPad32(b)...), nil

	case KindDynamicArray:
		vals, err := asAnySlice(v)
		if err != nil {
			return nil, err
		}
		elemTypes := repeatType(*t.Elem, len(vals))
		seq, err := encodeSeq(elemTypes, vals)
		if err != nil {
			return nil, err
		}
		return append(encode32Uint(uint64(len(vals))), seq...), nil

	case KindFixedArray:
		vals, err := asSlice(t, v, t.ArrayLen)
		if err != nil {
			return nil, err
		}
		elemTypes := repeatType(*t.Elem, t.ArrayLen)
		return encodeSeq(elemTypes, vals)

	case KindTuple:
		vals, err := asSlice(t, v, len(t.Components))
		if err != nil {
			return nil, err
		}
		return encodeSeq(t.Components, vals)

	default:
		return nil, encErr(t.String(), "not a dynamic type")
	}
}

func elementType(t Type, i int) Type {
	if t.Kind == KindTuple {
		return t.Components[i]
	}
	return *t.Elem
}

func repeatType(t Type, n int) []Type {
	out := make([]Type, n)
	for i := range out {
		out[i] = t
	}
	return out
}

func asSlice(t Type, v interface{}, n int) ([]interface{}, error) {
	vals, err := asAnySlice(v)
	if err != nil {
		return nil, err
	}
	if len(vals) != n {
		return nil, encErr(t.String(), "expected %d elements, got %d", n, len(vals))
	}
	return vals, nil
}

func asAnySlice(v interface{}) ([]interface{}, error) {
	switch s := v.(type) {
	case []interface{}:
		return s, nil
	default:
		return nil, encErr("array", "value is not a slice of values")
	}
}

func encodeUint(t Type, v interface{}) ([]byte, error) {
	n, err := toBigInt(v)
	if err != nil {
		return nil, encErr(t.String(), err.Error())
	}
	if n.Sign() < 0 {
		return nil, encErr(t.String(), "negative value not allowed")
	}
	if n.BitLen() > t.BitSize {
		return nil, encErr(t.String(), "value exceeds %d bits", t.BitSize)
	}
	return leftPad32(n.Bytes()), nil
}

func encodeInt(t Type, v interface{}) ([]byte, error) {
	n, err := toBigInt(v)
	if err != nil {
		return nil, encErr(t.String(), err.Error())
	}
	maxVal := new(big.Int).Lsh(big.NewInt(1), uint(t.BitSize-1))
	minVal := new(big.Int).Neg(maxVal)
	if n.Cmp(minVal) < 0 || n.Cmp(new(big.Int).Sub(maxVal, big.NewInt(1))) > 0 {
		return nil, encErr(t.String(), "value out of range for int%d", t.BitSize)
	}
	return twosComplement32(n), nil
}

func encodeAddress(v interface{}) ([]byte, error) {
	b, err := toAddressBytes(v)
	if err != nil {
		return nil, encErr("address", err.Error())
	}
	return leftPad32(b), nil
}

func encodeBool(v interface{}) ([]byte, error) {
	b, ok := v.(bool)
	if !ok {
		return nil, encErr("bool", "value is not bool")
	}
	out := make([]byte, wordSize)
	if b {
		out[wordSize-1] = 1
	}
	return out, nil
}

func encodeFixedBytes(t Type, v interface{}) ([]byte, error) {
	b, ok := v.([]byte)
	if !ok {
		return nil, encErr(t.String(), "value is not []byte")
	}
	if len(b) > t.ByteSize {
		return nil, encErr(t.String(), "value longer than bytes%d", t.ByteSize)
	}
	return rightPad32(b), nil
}

func toBigInt(v interface{}) (*big.Int, error) {
	switch n := v.(type) {
	case *big.Int:
		return n, nil
	case int64:
		return big.NewInt(n), nil
	case uint64:
		return new(big.Int).SetUint64(n), nil
	case int:
		return big.NewInt(int64(n)), nil
	default:
		return nil, encErr("integer", "unsupported integer representation %T", v)
	}
}

func toAddressBytes(v interface{}) ([]byte, error) {
	switch a := v.(type) {
	case []byte:
		if len(a) != 20 {
			return nil, encErr("address", "must be 20 bytes, got %d", len(a))
		}
		return a, nil
	case [20]byte:
		return a[:], nil
	case string:
		b, err := hexutil.Decode(a)
		if err != nil || len(b) != 20 {
			return nil, encErr("address", "invalid hex address %q", a)
		}
		return b, nil
	default:
		return nil, encErr("address", "unsupported address representation %T", v)
	}
}

func leftPad32(b []byte) []byte {
	if len(b) >= wordSize {
		return b[len(b)-wordSize:]
	}
	out := make([]byte, wordSize)
	copy(out[wordSize-len(b):], b)
	return out
}

func rightPad32(b []byte) []byte {
	n := ((len(b) + wordSize - 1) / wordSize) * wordSize
	if n == 0 {
		n = wordSize
	}
	out := make([]byte, n)
	copy(out, b)
	return out
}

func encode32Uint(n uint64) []byte {
	out := make([]byte, wordSize)
	for i := 0; i < 8; i++ {
		out[wordSize-1-i] = byte(n)
		n >>= 8
	}
	return out
}

// twosComplement32 encodes a signed big.Int into 32-byte two's-complement form.
func twosComplement32(n *big.Int) []byte {
	if n.Sign() >= 0 {
		return leftPad32(n.Bytes())
	}
	mod := new(big.Int).Lsh(big.NewInt(1), 256)
	wrapped := new(big.Int).Add(mod, n)
	return leftPad32(wrapped.Bytes())
}
