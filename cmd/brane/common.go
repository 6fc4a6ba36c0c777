package main

import (
	"fmt"
	"time"

	"github.com/branehq/brane/braneconfig"
	"github.com/branehq/brane/chainprofile"
	"github.com/branehq/brane/transport"
)

// resolveEndpoints turns --rpc-url / --endpoints into the endpoint list
// HTTPClient's failover dials across. --rpc-url wins if both are set.
func resolveEndpoints() ([]string, error) {
	if rpcURL != "" {
		return []string{rpcURL}, nil
	}
	if endpointFilePath != "" {
		ef, err := braneconfig.LoadEndpointFile(endpointFilePath)
		if err != nil {
			return nil, fmt.Errorf("failed to load endpoint file: %w", err)
		}
		return ef.URLs(), nil
	}
	return nil, fmt.Errorf("one of --rpc-url or --endpoints is required")
}

func newHTTPClient() (*transport.HTTPClient, error) {
	endpoints, err := resolveEndpoints()
	if err != nil {
		return nil, err
	}
	return transport.NewHTTPClient(endpoints, 10*time.Second)
}

func resolveChainProfile() (chainprofile.Profile, error) {
	p, ok := chainprofile.LookupByName(chainFlag)
	if !ok {
		return chainprofile.Profile{}, fmt.Errorf("unknown chain profile %q", chainFlag)
	}
	return p, nil
}
