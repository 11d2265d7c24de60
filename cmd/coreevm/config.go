package main

import (
	"fmt"

	"github.com/holiman/uint256"
)

// Config holds the resolved command-line configuration for one run of the
// coreevm driver: enough to construct a BlockContext, TxContext, and a
// single top-level Call against an in-memory account database.
type Config struct {
	Code      string
	Input     string
	Caller    string
	To        string
	Value     uint64
	GasLimit  uint64
	GasPrice  uint64
	ChainID   uint64
	BlockNum  uint64
	BlockTime uint64
	BaseFee   uint64
	Verbosity int
	Metrics   bool
}

// DefaultConfig returns a Config with sensible defaults for a one-shot
// bytecode execution: plenty of gas, block 1, chain id 1.
func DefaultConfig() Config {
	return Config{
		Caller:    "0x1000000000000000000000000000000000000001",
		To:        "0x2000000000000000000000000000000000000002",
		GasLimit:  10_000_000,
		GasPrice:  1,
		ChainID:   1,
		BlockNum:  1,
		BlockTime: 0,
		BaseFee:   1,
		Verbosity: 3,
	}
}

// Validate rejects configurations that cannot produce a runnable call.
func (c *Config) Validate() error {
	if c.Code == "" {
		return fmt.Errorf("--code is required")
	}
	if c.GasLimit == 0 {
		return fmt.Errorf("--gas must be greater than zero")
	}
	return nil
}

// valueWord parses the configured transfer value into a Word, defaulting
// to zero.
func (c *Config) valueWord() *uint256.Int {
	return new(uint256.Int).SetUint64(c.Value)
}
