// Package chainprofile holds a small static table of well-known chains so
// callers don't have to hardcode chain ids, log-range caps, and fork
// activation flags at every call site.
package chainprofile

import "math/big"

// Profile describes the fixed characteristics of one chain that the rest of
// this module needs to behave correctly against it.
type Profile struct {
	Name string
	// ChainID is the EIP-155 chain id used in legacy signature V values and
	// the EIP-1559/4844 ChainID transaction field.
	ChainID *big.Int
	// MaxGetLogsBlockRange bounds a single eth_getLogs block range; callers
	// doing historical scans should page at this width. 0 means the chain
	// does not enforce a range cap.
	MaxGetLogsBlockRange uint64
	// Blob4844Active reports whether EIP-4844 blob transactions are
	// accepted on this chain.
	Blob4844Active bool
}

var (
	Mainnet = Profile{
		Name:                 "mainnet",
		ChainID:              big.NewInt(1),
		MaxGetLogsBlockRange: 10_000,
		Blob4844Active:       true,
	}
	Sepolia = Profile{
		Name:                 "sepolia",
		ChainID:              big.NewInt(11155111),
		MaxGetLogsBlockRange: 10_000,
		Blob4844Active:       true,
	}
	Holesky = Profile{
		Name:                 "holesky",
		ChainID:              big.NewInt(17000),
		MaxGetLogsBlockRange: 10_000,
		Blob4844Active:       true,
	}
	Optimism = Profile{
		Name:                 "optimism",
		ChainID:              big.NewInt(10),
		MaxGetLogsBlockRange: 10_000,
		Blob4844Active:       false,
	}
	Base = Profile{
		Name:                 "base",
		ChainID:              big.NewInt(8453),
		MaxGetLogsBlockRange: 10_000,
		Blob4844Active:       false,
	}
)

var byChainID = map[int64]Profile{
	1:        Mainnet,
	11155111: Sepolia,
	17000:    Holesky,
	10:       Optimism,
	8453:     Base,
}

var byName = map[string]Profile{
	Mainnet.Name:  Mainnet,
	Sepolia.Name:  Sepolia,
	Holesky.Name:  Holesky,
	Optimism.Name: Optimism,
	Base.Name:     Base,
}

// Lookup returns the profile for a chain id, and false if the chain isn't in
// the static table.
func Lookup(chainID *big.Int) (Profile, bool) {
	if chainID == nil {
		return Profile{}, false
	}
	p, ok := byChainID[chainID.Int64()]
	return p, ok
}

// LookupByName returns the profile for a chain name ("mainnet", "sepolia",
// "holesky", "optimism", "base"), and false if unknown.
func LookupByName(name string) (Profile, bool) {
	p, ok := byName[name]
	return p, ok
}

// All returns every profile in the static table.
func All() []Profile {
	return []Profile{Mainnet, Sepolia, Holesky, Optimism, Base}
}
