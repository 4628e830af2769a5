// Package config loads the node's YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// ChainName seeds the network identifier; heartbeats are only valid
	// on the chain they were signed for.
	ChainName string `yaml:"chain_name"`
	// ListenAddr is the submission gateway's QUIC listen address.
	ListenAddr string `yaml:"listen_addr"`
	// MetricsAddr serves prometheus metrics; empty disables the endpoint.
	MetricsAddr string `yaml:"metrics_addr"`
	// DataDir holds the pebble-backed liveness archive.
	DataDir string `yaml:"data_dir"`
	// KeyFile is the JSON keystore holding this authority's session key.
	KeyFile string `yaml:"key_file"`
	// Authorities is the hex-encoded ordered authority set of the first
	// session, in index order.
	Authorities []string `yaml:"authorities"`

	// HeartbeatPeriodBlocks is the heartbeat period length.
	HeartbeatPeriodBlocks uint64 `yaml:"heartbeat_period_blocks"`
	// HeartbeatEnabled turns heartbeat authoring off when false.
	HeartbeatEnabled bool `yaml:"heartbeat_enabled"`
	// SessionLengthBlocks is the number of blocks per session.
	SessionLengthBlocks uint64 `yaml:"session_length_blocks"`
	// BlockTimeSeconds is the wall-clock duration of one block.
	BlockTimeSeconds uint64 `yaml:"block_time_seconds"`

	LogLevel string `yaml:"log_level"`
}

func Default() Config {
	return Config{
		ChainName:             "bilberry-dev",
		ListenAddr:            "127.0.0.1:19800",
		DataDir:               "data",
		HeartbeatPeriodBlocks: 10,
		HeartbeatEnabled:      true,
		SessionLengthBlocks:   100,
		BlockTimeSeconds:      6,
		LogLevel:              "info",
	}
}

// Load reads a YAML config file over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// BlockPeriod returns the block time as a duration.
func (c Config) BlockPeriod() time.Duration {
	return time.Duration(c.BlockTimeSeconds) * time.Second
}

func (c Config) Validate() error {
	if c.ChainName == "" {
		return errors.New("chain_name must be set")
	}
	if c.HeartbeatEnabled && c.HeartbeatPeriodBlocks == 0 {
		return errors.New("heartbeat_period_blocks must be positive when heartbeats are enabled")
	}
	if c.SessionLengthBlocks == 0 {
		return errors.New("session_length_blocks must be positive")
	}
	if c.BlockTimeSeconds == 0 {
		return errors.New("block_time_seconds must be positive")
	}
	return nil
}
