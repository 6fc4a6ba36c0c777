package abi

import (
	"strconv"
	"strings"
)

// Kind enumerates the Solidity ABI type families this package supports.
type Kind int

const (
	KindUint Kind = iota
	KindInt
	KindAddress
	KindBool
	KindFixedBytes
	KindBytes
	KindString
	KindFixedArray
	KindDynamicArray
	KindTuple
)

// Type is a parsed Solidity ABI type, sufficient to drive head/tail encoding
// and decoding without runtime reflection (the EIP-712 engine builds these
// from an explicit caller-supplied type table rather than struct tags).
type Type struct {
	Kind       Kind
	BitSize    int    // uintN/intN: N. 0 means unset/not applicable.
	ByteSize   int    // bytesN: N (1..32).
	ArrayLen   int    // fixed array length ([N]); 0 for dynamic arrays.
	Elem       *Type  // array element type.
	Components []Type // tuple field types, in order.
	raw        string // returned by String when non-empty; nothing in this package sets it.
}

// IsDynamic reports whether the type's encoding requires the head/tail
// offset scheme rather than inline encoding.
func (t Type) IsDynamic() bool {
	switch t.Kind {
	case KindBytes, KindString:
		return true
	case KindDynamicArray:
		return true
	case KindFixedArray:
		return t.Elem.IsDynamic()
	case KindTuple:
		for _, c := range t.Components {
			if c.IsDynamic() {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// String returns the canonical Solidity type string (e.g. "uint256",
// "address[]", "(uint256,address)"), used both for function selectors and
// inside EIP-712 canonical type strings.
func (t Type) String() string {
	if t.raw != "" {
		return t.raw
	}
	switch t.Kind {
	case KindUint:
		return "uint" + strconv.Itoa(t.BitSize)
	case KindInt:
		return "int" + strconv.Itoa(t.BitSize)
	case KindAddress:
		return "address"
	case KindBool:
		return "bool"
	case KindFixedBytes:
		return "bytes" + strconv.Itoa(t.ByteSize)
	case KindBytes:
		return "bytes"
	case KindString:
		return "string"
	case KindFixedArray:
		return t.Elem.String() + "[" + strconv.Itoa(t.ArrayLen) + "]"
	case KindDynamicArray:
		return t.Elem.String() + "[]"
	case KindTuple:
		parts := make([]string, len(t.Components))
		for i, c := range t.Components {
			parts[i] = c.String()
		}
		return "(" + strings.Join(parts, ",") + ")"
	default:
		return "?"
	}
}

// ParseType parses a Solidity ABI type string into a Type. Tuple syntax
// "(t1,t2,...)" is not parsed and returns an error; tuple Types are built
// directly with Tuple(...).
func ParseType(s string) (Type, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Type{}, encErr(s, "empty type string")
	}

	// Array suffix: T[] or T[N], possibly repeated (T[][3] etc).
	if strings.HasSuffix(s, "]") {
		open := strings.LastIndex(s, "[")
		if open < 0 {
			return Type{}, encErr(s, "malformed array type")
		}
		inner := s[:open]
		sizeStr := s[open+1 : len(s)-1]
		elemType, err := ParseType(inner)
		if err != nil {
			return Type{}, err
		}
		if sizeStr == "" {
			return DynamicArray(elemType), nil
		}
		n, err := strconv.Atoi(sizeStr)
		if err != nil || n <= 0 {
			return Type{}, encErr(s, "invalid array length %q", sizeStr)
		}
		return FixedArray(elemType, n), nil
	}

	switch {
	case s == "address":
		return Address(), nil
	case s == "bool":
		return Bool(), nil
	case s == "bytes":
		return DynBytes(), nil
	case s == "string":
		return Str(), nil
	case strings.HasPrefix(s, "uint"):
		n, err := bitWidth(s, "uint")
		if err != nil {
			return Type{}, err
		}
		return Uint(n), nil
	case strings.HasPrefix(s, "int"):
		n, err := bitWidth(s, "int")
		if err != nil {
			return Type{}, err
		}
		return Int(n), nil
	case strings.HasPrefix(s, "bytes"):
		n, err := strconv.Atoi(strings.TrimPrefix(s, "bytes"))
		if err != nil || n < 1 || n > 32 {
			return Type{}, encErr(s, "invalid bytesN width")
		}
		return FixedBytes(n), nil
	}

	return Type{}, encErr(s, "unknown or unsupported type")
}

func bitWidth(s, prefix string) (int, error) {
	rest := strings.TrimPrefix(s, prefix)
	if rest == "" {
		return 256, nil
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 8 || n > 256 || n%8 != 0 {
		return 0, encErr(s, "invalid bit width")
	}
	return n, nil
}

// Constructors for programmatic Type assembly (used by EIP-712 and tx
// encoding, which build types from explicit tables rather than parsing).

func Uint(bits int) Type       { return Type{Kind: KindUint, BitSize: bits} }
func Int(bits int) Type        { return Type{Kind: KindInt, BitSize: bits} }
func Address() Type            { return Type{Kind: KindAddress} }
func Bool() Type                { return Type{Kind: KindBool} }
func FixedBytes(n int) Type    { return Type{Kind: KindFixedBytes, ByteSize: n} }
func DynBytes() Type           { return Type{Kind: KindBytes} }
func Str() Type                 { return Type{Kind: KindString} }
func FixedArray(elem Type, n int) Type {
	e := elem
	return Type{Kind: KindFixedArray, Elem: &e, ArrayLen: n}
}
func DynamicArray(elem Type) Type {
	e := elem
	return Type{Kind: KindDynamicArray, Elem: &e}
}
func Tuple(components ...Type) Type {
	return Type{Kind: KindTuple, Components: components}
}
