// Package braneconfig loads this module's runtime configuration from
// flags, environment variables, and a config file, in that precedence
// order, via viper.
package braneconfig

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/branehq/brane/transport/internal/ringbuffer"
)

const envPrefix = "BRANE"

// Config is the full set of configuration keys this module recognizes.
type Config struct {
	Chain string `mapstructure:"chain"` // chain profile name: mainnet, sepolia, holesky, optimism, base

	WS struct {
		URL                string        `mapstructure:"url"`
		MaxPendingRequests int           `mapstructure:"maxPendingRequests"` // slot table size, power of two
		RingBufferSize     int           `mapstructure:"ringBufferSize"`     // outbound queue size, power of two
		WaitStrategy       string        `mapstructure:"waitStrategy"`       // busy-spin, yielding, lite-blocking, blocking
		DefaultTimeout     time.Duration `mapstructure:"defaultRequestTimeout"`
		ConnectTimeout     time.Duration `mapstructure:"connectTimeout"`
		WriteIdleTimeout   time.Duration `mapstructure:"writeIdleTimeout"`
		ReadIdleTimeout    time.Duration `mapstructure:"readIdleTimeout"`
	} `mapstructure:"ws"`

	HTTP struct {
		Endpoints []string      `mapstructure:"endpoints"`
		Timeout   time.Duration `mapstructure:"timeout"`
	} `mapstructure:"http"`

	Retry struct {
		MaxAttempts int           `mapstructure:"maxAttempts"`
		BaseDelay   time.Duration `mapstructure:"baseDelay"`
		MaxDelay    time.Duration `mapstructure:"maxDelay"`
	} `mapstructure:"retry"`

	Log struct {
		Level  string `mapstructure:"level"`
		Output string `mapstructure:"output"`
	} `mapstructure:"log"`
}

// Default returns the documented defaults (spec.md §6's configuration-keys
// table, plus the HTTP/retry/log keys this module adds on top).
func Default() Config {
	var c Config
	c.Chain = "mainnet"
	c.WS.MaxPendingRequests = 65536
	c.WS.RingBufferSize = 4096
	c.WS.WaitStrategy = "yielding"
	c.WS.DefaultTimeout = 10 * time.Second
	c.WS.ConnectTimeout = 10 * time.Second
	c.WS.WriteIdleTimeout = 30 * time.Second
	c.WS.ReadIdleTimeout = 60 * time.Second
	c.HTTP.Timeout = 30 * time.Second
	c.Retry.MaxAttempts = 3
	c.Retry.BaseDelay = 200 * time.Millisecond
	c.Retry.MaxDelay = 5 * time.Second
	c.Log.Level = "info"
	c.Log.Output = "stderr"
	return c
}

// Load reads configuration from flags bound to fs (may be nil to skip flag
// binding), environment variables prefixed BRANE_, and configFile if
// non-empty, layered over Default().
func Load(fs *pflag.FlagSet, configFile string) (*Config, error) {
	v := viper.New()
	def := Default()

	v.SetDefault("chain", def.Chain)
	v.SetDefault("ws.maxPendingRequests", def.WS.MaxPendingRequests)
	v.SetDefault("ws.ringBufferSize", def.WS.RingBufferSize)
	v.SetDefault("ws.waitStrategy", def.WS.WaitStrategy)
	v.SetDefault("ws.defaultRequestTimeout", def.WS.DefaultTimeout)
	v.SetDefault("ws.connectTimeout", def.WS.ConnectTimeout)
	v.SetDefault("ws.writeIdleTimeout", def.WS.WriteIdleTimeout)
	v.SetDefault("ws.readIdleTimeout", def.WS.ReadIdleTimeout)
	v.SetDefault("http.timeout", def.HTTP.Timeout)
	v.SetDefault("retry.maxAttempts", def.Retry.MaxAttempts)
	v.SetDefault("retry.baseDelay", def.Retry.BaseDelay)
	v.SetDefault("retry.maxDelay", def.Retry.MaxDelay)
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.output", def.Log.Output)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			if _, statErr := os.Stat(configFile); statErr == nil {
				return nil, fmt.Errorf("braneconfig: failed to parse config file %q: %w", configFile, err)
			} else if !os.IsNotExist(statErr) {
				return nil, fmt.Errorf("braneconfig: failed to read config file %q: %w", configFile, err)
			}
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if fs != nil {
		if err := v.BindPFlags(fs); err != nil {
			return nil, fmt.Errorf("braneconfig: failed to bind flags: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("braneconfig: failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

// ResolveWaitStrategy maps the WaitStrategy config string to the
// ringbuffer.WaitStrategy the transport package expects.
func ResolveWaitStrategy(name string) (ringbuffer.WaitStrategy, error) {
	switch strings.ToLower(name) {
	case "busy-spin", "busyspin":
		return ringbuffer.BusySpin{}, nil
	case "yielding", "":
		return ringbuffer.Yielding{}, nil
	case "lite-blocking", "liteblocking":
		return ringbuffer.NewLiteBlocking(1000), nil
	case "blocking":
		return ringbuffer.Blocking{}, nil
	default:
		return nil, fmt.Errorf("braneconfig: unknown wait strategy %q", name)
	}
}
