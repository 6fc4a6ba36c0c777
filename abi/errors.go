package abi

import "fmt"

// EncodingError reports a failure to encode a value as the given Solidity type.
type EncodingError struct {
	Type   string
	Reason string
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("abi: encoding %s: %s", e.Type, e.Reason)
}

// DecodingError reports a failure to decode a Solidity-typed value from calldata.
type DecodingError struct {
	Type   string
	Reason string
}

func (e *DecodingError) Error() string {
	return fmt.Sprintf("abi: decoding %s: %s", e.Type, e.Reason)
}

func encErr(typ, format string, args ...interface{}) error {
	return &EncodingError{Type: typ, Reason: fmt.Sprintf(format, args...)}
}

func decErr(typ, format string, args ...interface{}) error {
	return &DecodingError{Type: typ, Reason: fmt.Sprintf(format, args...)}
}
