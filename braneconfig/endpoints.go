package braneconfig

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// EndpointProfile describes one named RPC endpoint in an endpoints file,
// e.g. for failover across several providers.
type EndpointProfile struct {
	Name    string        `yaml:"name"`
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// EndpointFile is the top-level shape of an endpoints YAML file: a list of
// named endpoints plus a default timeout applied to any entry that omits
// its own.
type EndpointFile struct {
	Endpoints      []EndpointProfile `yaml:"endpoints"`
	DefaultTimeout time.Duration     `yaml:"defaultTimeout"`
}

// LoadEndpointFile reads path, expanding ${VAR}-style environment variable
// references before parsing, so API keys stay out of the file itself. Any
// endpoint without an explicit timeout inherits DefaultTimeout.
func LoadEndpointFile(path string) (*EndpointFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("braneconfig: failed to read endpoints file %q: %w", path, err)
	}

	var ef EndpointFile
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &ef); err != nil {
		return nil, fmt.Errorf("braneconfig: failed to parse endpoints file %q: %w", path, err)
	}

	for i := range ef.Endpoints {
		if ef.Endpoints[i].Timeout == 0 {
			ef.Endpoints[i].Timeout = ef.DefaultTimeout
		}
	}
	return &ef, nil
}

// URLs returns just the endpoint URLs, in file order, for passing to a
// failover-capable HTTP transport.
func (ef *EndpointFile) URLs() []string {
	urls := make([]string, len(ef.Endpoints))
	for i, e := range ef.Endpoints {
		urls[i] = e.URL
	}
	return urls
}
