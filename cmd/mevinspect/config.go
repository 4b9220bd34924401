package main

import (
	"fmt"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"
)

// oracleConfig is the YAML-layered configuration for the price oracle's
// router wiring: which router to quote against, the canonical WETH
// address, any stablecoins that should route directly against each
// other instead of via WETH, and the oracle's cache/retry/pacing knobs.
type oracleConfig struct {
	Router          string            `yaml:"router"`
	WETH            string            `yaml:"weth"`
	StablecoinPairs map[string]string `yaml:"stablecoin_pairs"`
	CacheSize       int               `yaml:"cache_size"`
	MaxAttempts     int               `yaml:"max_attempts"`
	RetryBackoff    time.Duration     `yaml:"retry_backoff"`
	RequestsPerSec  float64           `yaml:"requests_per_second"`
}

func defaultOracleConfig() oracleConfig {
	return oracleConfig{
		WETH:           "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2",
		CacheSize:      4096,
		MaxAttempts:    3,
		RetryBackoff:   200 * time.Millisecond,
		RequestsPerSec: 20,
	}
}

// loadOracleConfig reads path if non-empty, layering its fields over the
// defaults; an empty path is not an error (the CLI runs with defaults).
func loadOracleConfig(path string) (oracleConfig, error) {
	cfg := defaultOracleConfig()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

func (c oracleConfig) stablecoinPairs() map[common.Address]common.Address {
	out := make(map[common.Address]common.Address, len(c.StablecoinPairs))
	for k, v := range c.StablecoinPairs {
		out[common.HexToAddress(k)] = common.HexToAddress(v)
	}
	return out
}
