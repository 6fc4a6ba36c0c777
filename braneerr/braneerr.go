// Package braneerr defines the closed error taxonomy shared by every
// transport, codec, and signing component. No network or codec path returns
// a panic or an unstructured error; everything funnels through Error.
package braneerr

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/branehq/brane/abi"
)

// revertSelector is the 4-byte selector of the standard Solidity
// Error(string) revert encoding.
var revertSelector = abi.Selector("Error(string)")

// Kind enumerates the closed set of error variants.
type Kind int

const (
	KindNotConnected Kind = iota
	KindTooManyInFlight
	KindRingBufferSaturated
	KindRequestTimeout
	KindConnectionLost
	KindProtocolError
	KindRpcError
	KindTransportError
	KindSerializationError
	KindAbiEncoding
	KindAbiDecoding
	KindRlpInvalid
	KindEip712UnknownType
	KindEip712CyclicDependency
	KindEip712InvalidValue
	KindEip712ValueOutOfRange
	KindRevert
)

func (k Kind) String() string {
	switch k {
	case KindNotConnected:
		return "NotConnected"
	case KindTooManyInFlight:
		return "TooManyInFlight"
	case KindRingBufferSaturated:
		return "RingBufferSaturated"
	case KindRequestTimeout:
		return "RequestTimeout"
	case KindConnectionLost:
		return "ConnectionLost"
	case KindProtocolError:
		return "ProtocolError"
	case KindRpcError:
		return "RpcError"
	case KindTransportError:
		return "TransportError"
	case KindSerializationError:
		return "SerializationError"
	case KindAbiEncoding:
		return "AbiEncoding"
	case KindAbiDecoding:
		return "AbiDecoding"
	case KindRlpInvalid:
		return "RlpInvalid"
	case KindEip712UnknownType:
		return "Eip712::UnknownType"
	case KindEip712CyclicDependency:
		return "Eip712::CyclicDependency"
	case KindEip712InvalidValue:
		return "Eip712::InvalidValue"
	case KindEip712ValueOutOfRange:
		return "Eip712::ValueOutOfRange"
	case KindRevert:
		return "Revert"
	default:
		return "Unknown"
	}
}

// Propagation classifies how a Kind is handled per the core's propagation
// rule: recovered locally, surfaced to the caller, or fatal to the provider.
type Propagation int

const (
	PropagationLocal Propagation = iota
	PropagationSurfaced
	PropagationFatal
)

// Propagation reports the default handling for this error's Kind.
func (k Kind) Propagation() Propagation {
	switch k {
	case KindConnectionLost:
		return PropagationLocal
	case KindTooManyInFlight, KindRingBufferSaturated, KindRequestTimeout,
		KindRpcError, KindAbiEncoding, KindAbiDecoding, KindRlpInvalid,
		KindEip712UnknownType, KindEip712CyclicDependency,
		KindEip712InvalidValue, KindEip712ValueOutOfRange, KindRevert,
		KindSerializationError, KindProtocolError, KindNotConnected:
		return PropagationSurfaced
	default:
		return PropagationSurfaced
	}
}

// Error is the single concrete error type for every Kind; fields not
// relevant to a given Kind are left zero.
type Error struct {
	Kind Kind

	Message string // ProtocolError, SerializationError, general context
	Cause   error  // wrapped underlying error, if any

	// RpcError
	Code int64
	Data []byte

	// Eip712{UnknownType,CyclicDependency,InvalidValue,ValueOutOfRange}
	TypeName string
	Reason   string

	// Revert
	RevertReason string
	HasRevertReason bool
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindRpcError:
		return fmt.Sprintf("%s: code=%d message=%q", e.Kind, e.Code, e.Message)
	case KindEip712UnknownType:
		return fmt.Sprintf("%s: %s", e.Kind, e.TypeName)
	case KindEip712CyclicDependency:
		return fmt.Sprintf("%s: %s", e.Kind, e.TypeName)
	case KindEip712InvalidValue:
		return fmt.Sprintf("%s: type=%s reason=%s", e.Kind, e.TypeName, e.Reason)
	case KindRevert:
		if e.HasRevertReason {
			return fmt.Sprintf("%s: %s", e.Kind, e.RevertReason)
		}
		return fmt.Sprintf("%s: no reason string (data=%d bytes)", e.Kind, len(e.Data))
	default:
		if e.Message != "" {
			if e.Cause != nil {
				return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
			}
			return fmt.Sprintf("%s: %s", e.Kind, e.Message)
		}
		if e.Cause != nil {
			return fmt.Sprintf("%s: %v", e.Kind, e.Cause)
		}
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error { return e.Cause }

// Is supports errors.Is against a bare Kind sentinel comparison: two *Error
// values match if their Kind matches.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == other.Kind
}

func NotConnected() *Error { return &Error{Kind: KindNotConnected} }

func TooManyInFlight() *Error { return &Error{Kind: KindTooManyInFlight} }

func RingBufferSaturated() *Error { return &Error{Kind: KindRingBufferSaturated} }

func RequestTimeout() *Error { return &Error{Kind: KindRequestTimeout} }

func ConnectionLost() *Error { return &Error{Kind: KindConnectionLost} }

func ProtocolError(message string) *Error {
	return &Error{Kind: KindProtocolError, Message: message}
}

func RpcError(code int64, message string, data []byte) *Error {
	return &Error{Kind: KindRpcError, Code: code, Message: message, Data: data}
}

func TransportError(cause error) *Error {
	return &Error{Kind: KindTransportError, Cause: cause}
}

func SerializationError(message string, cause error) *Error {
	return &Error{Kind: KindSerializationError, Message: message, Cause: cause}
}

func AbiEncoding(cause error) *Error {
	return &Error{Kind: KindAbiEncoding, Cause: cause}
}

func AbiDecoding(cause error) *Error {
	return &Error{Kind: KindAbiDecoding, Cause: cause}
}

func RlpInvalid(cause error) *Error {
	return &Error{Kind: KindRlpInvalid, Cause: cause}
}

func Eip712UnknownType(typeName string) *Error {
	return &Error{Kind: KindEip712UnknownType, TypeName: typeName}
}

func Eip712CyclicDependency(typeName string) *Error {
	return &Error{Kind: KindEip712CyclicDependency, TypeName: typeName}
}

func Eip712InvalidValue(typeName, reason string) *Error {
	return &Error{Kind: KindEip712InvalidValue, TypeName: typeName, Reason: reason}
}

func Eip712ValueOutOfRange(typeName string) *Error {
	return &Error{Kind: KindEip712ValueOutOfRange, TypeName: typeName}
}

// Revert builds a Revert error. reason is nil when the revert data did not
// decode as a standard Error(string) selector.
func Revert(reason *string, data []byte) *Error {
	e := &Error{Kind: KindRevert, Data: data}
	if reason != nil {
		e.HasRevertReason = true
		e.RevertReason = *reason
	}
	return e
}

// DecodeRevert inspects an RpcError returned from a contract-execution
// method (eth_call, eth_estimateGas, eth_sendRawTransaction) and, if its
// Data carries revert information, returns a Revert in its place. Any other
// error, or an RpcError with no decodable Data, is returned unchanged.
func DecodeRevert(err error) error {
	e, ok := err.(*Error)
	if !ok || e.Kind != KindRpcError {
		return err
	}
	data, ok := decodeRevertData(e.Data)
	if !ok || len(data) == 0 {
		return err
	}
	if len(data) >= 4 && [4]byte(data[:4]) == revertSelector {
		if reason, derr := decodeRevertReason(data[4:]); derr == nil {
			return Revert(&reason, data)
		}
	}
	return Revert(nil, data)
}

// decodeRevertData unwraps a JSON-RPC error's Data field into raw bytes.
// Data arrives as a raw JSON value, almost always a quoted "0x..." string;
// anything else is treated as undecodable rather than guessed at.
func decodeRevertData(raw []byte) ([]byte, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, false
	}
	s = strings.TrimPrefix(s, "0x")
	s = strings.TrimPrefix(s, "0X")
	if s == "" {
		return nil, false
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, false
	}
	return b, true
}

func decodeRevertReason(data []byte) (string, error) {
	vals, err := abi.DecodeArgs([]abi.Type{abi.Str()}, data)
	if err != nil {
		return "", err
	}
	reason, ok := vals[0].(string)
	if !ok {
		return "", fmt.Errorf("revert reason decoded to non-string value")
	}
	return reason, nil
}

// Is reports whether err (or any error it wraps) has the given Kind.
func Is(err error, kind Kind) bool {
	var be *Error
	for err != nil {
		if e, ok := err.(*Error); ok {
			be = e
			break
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return be != nil && be.Kind == kind
}
