package braneconfig

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultMatchesDocumentedDefaults(t *testing.T) {
	d := Default()
	assert.Equal(t, "mainnet", d.Chain)
	assert.Equal(t, 65536, d.WS.MaxPendingRequests)
	assert.Equal(t, 4096, d.WS.RingBufferSize)
	assert.Equal(t, "yielding", d.WS.WaitStrategy)
	assert.Equal(t, 10*time.Second, d.WS.DefaultTimeout)
	assert.Equal(t, 3, d.Retry.MaxAttempts)
}

func TestLoadWithoutFlagsOrFileUsesDefaults(t *testing.T) {
	cfg, err := Load(nil, "")
	require.NoError(t, err)
	assert.Equal(t, "mainnet", cfg.Chain)
	assert.Equal(t, 65536, cfg.WS.MaxPendingRequests)
}

func TestLoadEnvironmentOverride(t *testing.T) {
	t.Setenv("BRANE_CHAIN", "sepolia")
	cfg, err := Load(nil, "")
	require.NoError(t, err)
	assert.Equal(t, "sepolia", cfg.Chain)
}

func TestLoadMissingConfigFileIsNotAnError(t *testing.T) {
	_, err := Load(nil, "/nonexistent/path/brane.yaml")
	assert.NoError(t, err)
}

func TestLoadMalformedConfigFileIsAnError(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "brane-*.yaml")
	require.NoError(t, err)
	_, err = f.WriteString("chain: [unterminated")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	_, err = Load(nil, f.Name())
	assert.Error(t, err)
}

func TestLoadConfigFileOverridesDefault(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "brane-*.yaml")
	require.NoError(t, err)
	_, err = f.WriteString("chain: base\nws:\n  waitStrategy: blocking\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	cfg, err := Load(nil, f.Name())
	require.NoError(t, err)
	assert.Equal(t, "base", cfg.Chain)
	assert.Equal(t, "blocking", cfg.WS.WaitStrategy)
}

func TestResolveWaitStrategyKnownNames(t *testing.T) {
	for _, name := range []string{"busy-spin", "yielding", "lite-blocking", "blocking", ""} {
		ws, err := ResolveWaitStrategy(name)
		require.NoError(t, err)
		assert.NotNil(t, ws)
	}
}

func TestResolveWaitStrategyUnknownName(t *testing.T) {
	_, err := ResolveWaitStrategy("warp-speed")
	assert.Error(t, err)
}
