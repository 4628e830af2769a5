package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
chain_name: testnet
heartbeat_period_blocks: 5
session_length_blocks: 50
block_time_seconds: 2
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "testnet", cfg.ChainName)
	require.Equal(t, uint64(5), cfg.HeartbeatPeriodBlocks)
	require.Equal(t, uint64(50), cfg.SessionLengthBlocks)
	require.Equal(t, 2*time.Second, cfg.BlockPeriod())
	// Untouched fields keep their defaults.
	require.Equal(t, Default().ListenAddr, cfg.ListenAddr)
	require.True(t, cfg.HeartbeatEnabled)
}

func TestLoadRejectsZeroPeriod(t *testing.T) {
	path := writeConfig(t, `
chain_name: testnet
heartbeat_period_blocks: 0
heartbeat_enabled: true
`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadAllowsZeroPeriodWhenDisabled(t *testing.T) {
	path := writeConfig(t, `
chain_name: testnet
heartbeat_period_blocks: 0
heartbeat_enabled: false
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.False(t, cfg.HeartbeatEnabled)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}
