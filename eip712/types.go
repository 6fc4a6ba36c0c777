// Package eip712 implements EIP-712 typed-data hashing: canonical type-string
// assembly, recursive struct-dependency resolution, struct hashing, the
// domain separator, and the final signing digest. Field definitions are
// supplied as an explicit, caller-provided table rather than derived via
// reflection (spec.md §9 design note): this mirrors how a systems-language
// implementation has no "extract record fields" facility to lean on.
package eip712

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// FieldDef is one field of a struct type: its name and its Solidity type
// string (an atomic ABI type, "bytes"/"string", another struct type name, or
// any of those with an array suffix).
type FieldDef struct {
	Name string
	Type string
}

// TypeSet maps a struct type name to its ordered field definitions.
type TypeSet map[string][]FieldDef

// Value is the generic representation of a struct/message instance: field
// name to value. Nested structs are themselves Values; arrays are []interface{}.
type Value map[string]interface{}

// Domain holds the subset of {name, version, chainId, verifyingContract, salt}
// that a concrete signing domain populates. Only populated fields are
// included when building the EIP712Domain type and separator (spec.md §4.4).
type Domain struct {
	Name              *string
	Version           *string
	ChainID           *int64
	VerifyingContract *string // 20-byte address, hex
	Salt              *[]byte // 32 bytes
}

var (
	// ErrUnknownType is returned when a field references a struct type not
	// present in the TypeSet.
	ErrUnknownType = errors.New("eip712: unknown struct type")
	// ErrCyclicDependency is returned when a type's dependency graph contains
	// a cycle.
	ErrCyclicDependency = errors.New("eip712: cyclic type dependency")
)

// InvalidValueError reports a field value that cannot be encoded as its
// declared type (wrong shape, missing key, out-of-range integer, ...).
type InvalidValueError struct {
	Type   string
	Reason string
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("eip712: invalid value for %s: %s", e.Type, e.Reason)
}

// baseType strips a trailing array suffix ("[]" or "[N]") from a type
// string, returning the element type. Non-array types are returned as-is.
func baseType(typeStr string) string {
	if i := strings.IndexByte(typeStr, '['); i >= 0 {
		return typeStr[:i]
	}
	return typeStr
}

// isArrayType reports whether typeStr has an array suffix.
func isArrayType(typeStr string) bool {
	return strings.HasSuffix(typeStr, "]")
}

// dependencies walks the field types of `name` within `types`, following
// every struct-typed field (after stripping array suffixes), and returns the
// set of all struct type names reachable from `name` (name itself included).
// A type currently being visited that is revisited signals a cycle.
func dependencies(name string, types TypeSet, visiting map[string]bool, reached map[string]bool) error {
	if reached[name] {
		return nil
	}
	if visiting[name] {
		return fmt.Errorf("%w: %s", ErrCyclicDependency, name)
	}
	fields, ok := types[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownType, name)
	}
	visiting[name] = true
	for _, f := range fields {
		base := baseType(f.Type)
		if _, isStruct := types[base]; !isStruct {
			continue
		}
		if err := dependencies(base, types, visiting, reached); err != nil {
			return err
		}
	}
	delete(visiting, name)
	reached[name] = true
	return nil
}

// ReachableTypes returns the set of struct type names reachable from
// primaryType (primaryType included), erroring on an unknown type or a
// dependency cycle.
func ReachableTypes(primaryType string, types TypeSet) (map[string]bool, error) {
	reached := map[string]bool{}
	visiting := map[string]bool{}
	if err := dependencies(primaryType, types, visiting, reached); err != nil {
		return nil, err
	}
	return reached, nil
}

// formatType renders one type's definition: "Name(type1 field1,type2 field2,...)".
func formatType(name string, fields []FieldDef) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f.Type + " " + f.Name
	}
	return name + "(" + strings.Join(parts, ",") + ")"
}

// EncodeType builds the canonical type string for primaryType: its own
// definition first, then every other reachable type sorted lexicographically
// by name, each formatted the same way, with no whitespace beyond the single
// space between a field's type and name.
func EncodeType(primaryType string, types TypeSet) (string, error) {
	reached, err := ReachableTypes(primaryType, types)
	if err != nil {
		return "", err
	}
	others := make([]string, 0, len(reached)-1)
	for name := range reached {
		if name != primaryType {
			others = append(others, name)
		}
	}
	sort.Strings(others)

	var b strings.Builder
	b.WriteString(formatType(primaryType, types[primaryType]))
	for _, name := range others {
		b.WriteString(formatType(name, types[name]))
	}
	return b.String(), nil
}
