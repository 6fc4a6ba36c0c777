package abi

import "math/big"

// DecodeArgs decodes calldata (without the 4-byte selector) against the
// declared argument types, returning one Go value per type in the same
// representation EncodeArgs accepts (*big.Int for ints, []byte for
// address/bytesN/bytes, string, []interface{} for arrays/tuples).
func DecodeArgs(types []Type, data []byte) ([]interface{}, error) {
	return decodeSeq(types, data)
}

func decodeSeq(types []Type, data []byte) ([]interface{}, error) {
	out := make([]interface{}, len(types))
	headOffset := 0
	for i, t := range types {
		if t.IsDynamic() {
			if headOffset+wordSize > len(data) {
				return nil, decErr(t.String(), "truncated head")
			}
			off, err := decodeUint256Offset(data[headOffset : headOffset+wordSize])
			if err != nil {
				return nil, decErr(t.String(), err.Error())
			}
			if off > len(data) {
				return nil, decErr(t.String(), "offset beyond data")
			}
			v, err := decodeStandalone(t, data[off:])
			if err != nil {
				return nil, err
			}
			out[i] = v
			headOffset += wordSize
			continue
		}
		size := staticSize(t)
		if headOffset+size > len(data) {
			return nil, decErr(t.String(), "truncated head")
		}
		v, n, err := decodeStatic(t, data[headOffset:headOffset+size])
		if err != nil {
			return nil, err
		}
		out[i] = v
		headOffset += n
	}
	return out, nil
}

func staticSize(t Type) int {
	switch t.Kind {
	case KindFixedArray:
		return staticSize(*t.Elem) * t.ArrayLen
	case KindTuple:
		n := 0
		for _, c := range t.Components {
			n += staticSize(c)
		}
		return n
	default:
		return wordSize
	}
}

func decodeStatic(t Type, word []byte) (interface{}, int, error) {
	switch t.Kind {
	case KindUint:
		n := new(big.Int).SetBytes(word[:wordSize])
		if n.BitLen() > t.BitSize {
			return nil, 0, decErr(t.String(), "non-zero high bits beyond width")
		}
		return n, wordSize, nil

	case KindInt:
		n := fromTwosComplement32(word[:wordSize])
		maxVal := new(big.Int).Lsh(big.NewInt(1), uint(t.BitSize-1))
		minVal := new(big.Int).Neg(maxVal)
		if n.Cmp(minVal) < 0 || n.Cmp(new(big.Int).Sub(maxVal, big.NewInt(1))) > 0 {
			return nil, 0, decErr(t.String(), "value out of declared width")
		}
		return n, wordSize, nil

	case KindAddress:
		for _, b := range word[:12] {
			if b != 0 {
				return nil, 0, decErr("address", "non-zero padding bits")
			}
		}
		addr := make([]byte, 20)
		copy(addr, word[12:32])
		return addr, wordSize, nil

	case KindBool:
		for _, b := range word[:31] {
			if b != 0 {
				return nil, 0, decErr("bool", "non-zero padding bits")
			}
		}
		if word[31] > 1 {
			return nil, 0, decErr("bool", "value not 0/1")
		}
		return word[31] == 1, wordSize, nil

	case KindFixedBytes:
		for _, b := range word[t.ByteSize:wordSize] {
			if b != 0 {
				return nil, 0, decErr(t.String(), "non-zero padding bits")
			}
		}
		out := make([]byte, t.ByteSize)
		copy(out, word[:t.ByteSize])
		return out, wordSize, nil

	case KindFixedArray:
		elemSize := staticSize(*t.Elem)
		vals := make([]interface{}, t.ArrayLen)
		off := 0
		for i := 0; i < t.ArrayLen; i++ {
			v, n, err := decodeStatic(*t.Elem, word[off:off+elemSize])
			if err != nil {
				return nil, 0, err
			}
			vals[i] = v
			off += n
		}
		return vals, off, nil

	case KindTuple:
		vals := make([]interface{}, len(t.Components))
		off := 0
		for i, c := range t.Components {
			size := staticSize(c)
			v, n, err := decodeStatic(c, word[off:off+size])
			if err != nil {
				return nil, 0, err
			}
			vals[i] = v
			off += n
		}
		return vals, off, nil

	default:
		return nil, 0, decErr(t.String(), "not a static type")
	}
}

func decodeStandalone(t Type, data []byte) (interface{}, error) {
	switch t.Kind {
	case KindBytes:
		if len(data) < wordSize {
			return nil, decErr("bytes", "truncated length")
		}
		n, err := decodeUint256Offset(data[:wordSize])
		if err != nil {
			return nil, decErr("bytes", err.Error())
		}
		if wordSize+n > len(data) {
			return nil, decErr("bytes", "truncated content")
		}
		out := make([]byte, n)
		copy(out, data[wordSize:wordSize+n])
		return out, nil

	case KindString:
		if len(data) < wordSize {
			return nil, decErr("string", "truncated length")
		}
		n, err := decodeUint256Offset(data[:wordSize])
		if err != nil {
			return nil, decErr("string", err.Error())
		}
		if wordSize+n > len(data) {
			return nil, decErr("string", "truncated content")
		}
		return string(data[wordSize : wordSize+n]), nil

	case KindDynamicArray:
		if len(data) < wordSize {
			return nil, decErr(t.String(), "truncated length")
		}
		n, err := decodeUint256Offset(data[:wordSize])
		if err != nil {
			return nil, decErr(t.String(), err.Error())
		}
		elemTypes := repeatType(*t.Elem, n)
		return decodeSeq(elemTypes, data[wordSize:])

	case KindFixedArray:
		elemTypes := repeatType(*t.Elem, t.ArrayLen)
		return decodeSeq(elemTypes, data)

	case KindTuple:
		return decodeSeq(t.Components, data)

	default:
		return nil, decErr(t.String(), "not a dynamic type")
	}
}

func decodeUint256Offset(word []byte) (int, error) {
	n := new(big.Int).SetBytes(word)
	if !n.IsUint64() || n.Uint64() > uint64(1)<<32 {
		return 0, decErr("offset", "offset/length out of range")
	}
	return int(n.Uint64()), nil
}

func fromTwosComplement32(word []byte) *big.Int {
	n := new(big.Int).SetBytes(word)
	if word[0]&0x80 == 0 {
		return n
	}
	mod := new(big.Int).Lsh(big.NewInt(1), 256)
	return new(big.Int).Sub(n, mod)
}
