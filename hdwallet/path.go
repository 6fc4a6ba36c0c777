package hdwallet

import (
	"fmt"
	"strconv"
	"strings"
)

// segment is one level of a derivation path: an index plus whether it is
// hardened (the trailing ' in "44'").
type segment struct {
	index    uint32
	hardened bool
}

// ParsePath parses an arbitrary "m/44'/60'/0'/0/0"-style derivation path
// into its per-level segments, generalized from a fixed five-level
// Ethereum-only parser to accept any depth so the same code serves both the
// standard BIP-44 Ethereum path and ad-hoc sub-paths.
func ParsePath(path string) ([]segment, error) {
	path = strings.TrimSpace(path)
	if !strings.HasPrefix(path, "m") {
		return nil, fmt.Errorf("hdwallet: path must start with \"m\": %q", path)
	}
	path = strings.TrimPrefix(path, "m")
	path = strings.TrimPrefix(path, "/")
	if path == "" {
		return nil, nil
	}

	parts := strings.Split(path, "/")
	segments := make([]segment, 0, len(parts))
	for _, p := range parts {
		hardened := strings.HasSuffix(p, "'") || strings.HasSuffix(p, "h") || strings.HasSuffix(p, "H")
		numStr := strings.TrimRight(p, "'hH")
		n, err := strconv.ParseUint(numStr, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("hdwallet: invalid path segment %q: %w", p, err)
		}
		segments = append(segments, segment{index: uint32(n), hardened: hardened})
	}
	return segments, nil
}

// EthereumPath builds the standard m/44'/60'/account'/change/index path for
// the given account, change chain (0 external, 1 internal), and address
// index.
func EthereumPath(account, change, index uint32) string {
	return fmt.Sprintf("m/44'/60'/%d'/%d/%d", account, change, index)
}

// ValidateEthereumPath checks that path follows m/44'/60'/account'/change/index
// with change restricted to {0,1}, matching the teacher's coin-type-60 guard
// generalized only to report the specific mismatch rather than a single
// catch-all error.
func ValidateEthereumPath(path string) error {
	segments, err := ParsePath(path)
	if err != nil {
		return err
	}
	if len(segments) != 5 {
		return fmt.Errorf("hdwallet: path must have 5 segments (44'/60'/account'/change/index), got %d", len(segments))
	}
	if segments[0].index != 44 || !segments[0].hardened {
		return fmt.Errorf("hdwallet: path must start with 44' (BIP-44 purpose)")
	}
	if segments[1].index != 60 || !segments[1].hardened {
		return fmt.Errorf("hdwallet: coin type must be 60' for Ethereum, got %d", segments[1].index)
	}
	if !segments[2].hardened {
		return fmt.Errorf("hdwallet: account level must be hardened")
	}
	if segments[3].index != 0 && segments[3].index != 1 {
		return fmt.Errorf("hdwallet: change must be 0 or 1, got %d", segments[3].index)
	}
	return nil
}
