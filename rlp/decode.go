package rlp

import "errors"

// ErrMalformed is returned for truncated or otherwise structurally invalid
// RLP input. Decoding never panics on untrusted input.
var ErrMalformed = errors.New("rlp: malformed input")

// Decode parses a single RLP-encoded item from b, requiring that the entire
// input is consumed by exactly one item (no trailing bytes).
func Decode(b []byte) (Item, error) {
	item, rest, err := decodeOne(b)
	if err != nil {
		return Item{}, err
	}
	if len(rest) != 0 {
		return Item{}, ErrMalformed
	}
	return item, nil
}

// DecodePrefix parses a single RLP-encoded item from the start of b and
// returns it along with any unconsumed trailing bytes. Used by list decoding
// and by callers that concatenate multiple top-level items (e.g. RLP streams).
func DecodePrefix(b []byte) (item Item, rest []byte, err error) {
	return decodeOne(b)
}

func decodeOne(b []byte) (Item, []byte, error) {
	if len(b) == 0 {
		return Item{}, nil, ErrMalformed
	}
	first := b[0]
	switch {
	case first < 0x80:
		return Bytes([]byte{first}), b[1:], nil

	case first <= 0xb7:
		n := int(first - 0x80)
		if len(b) < 1+n {
			return Item{}, nil, ErrMalformed
		}
		return Bytes(clone(b[1 : 1+n])), b[1+n:], nil

	case first <= 0xbf:
		lenOfLen := int(first - 0xb7)
		if len(b) < 1+lenOfLen {
			return Item{}, nil, ErrMalformed
		}
		n, err := decodeLength(b[1 : 1+lenOfLen])
		if err != nil {
			return Item{}, nil, err
		}
		start := 1 + lenOfLen
		if len(b) < start+n {
			return Item{}, nil, ErrMalformed
		}
		return Bytes(clone(b[start : start+n])), b[start+n:], nil

	case first <= 0xf7:
		n := int(first - 0xc0)
		if len(b) < 1+n {
			return Item{}, nil, ErrMalformed
		}
		items, err := decodeItems(b[1 : 1+n])
		if err != nil {
			return Item{}, nil, err
		}
		return List(items...), b[1+n:], nil

	default:
		lenOfLen := int(first - 0xf7)
		if len(b) < 1+lenOfLen {
			return Item{}, nil, ErrMalformed
		}
		n, err := decodeLength(b[1 : 1+lenOfLen])
		if err != nil {
			return Item{}, nil, err
		}
		start := 1 + lenOfLen
		if len(b) < start+n {
			return Item{}, nil, ErrMalformed
		}
		items, err := decodeItems(b[start : start+n])
		if err != nil {
			return Item{}, nil, err
		}
		return List(items...), b[start+n:], nil
	}
}

func decodeItems(payload []byte) ([]Item, error) {
	var items []Item
	for len(payload) > 0 {
		item, rest, err := decodeOne(payload)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		payload = rest
	}
	return items, nil
}

func decodeLength(b []byte) (int, error) {
	if len(b) == 0 || len(b) > 8 {
		return 0, ErrMalformed
	}
	if b[0] == 0 {
		// Non-canonical: a length encoding must not have a leading zero byte.
		return 0, ErrMalformed
	}
	var n uint64
	for _, c := range b {
		n = n<<8 | uint64(c)
	}
	return int(n), nil
}

func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// DecodeUint interprets a byte-string Item as an RLP-elided unsigned integer.
func DecodeUint(item Item) (uint64, error) {
	if item.isList {
		return 0, ErrMalformed
	}
	if len(item.String) > 8 {
		return 0, ErrMalformed
	}
	var n uint64
	for _, c := range item.String {
		n = n<<8 | uint64(c)
	}
	return n, nil
}
