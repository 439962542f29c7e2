// Copyright (c) 2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btclog"
)

const (
	defaultNetwork        = "mainnet"
	defaultLogLevel       = "info"
	defaultMaxLogFileSize = 10
	defaultMaxLogFiles    = 3
)

// config holds the options shared by all commands.
type config struct {
	Network        string `long:"network" description:"The network the keys and transaction belong to" choice:"mainnet" choice:"testnet" choice:"testnet3" choice:"regtest" choice:"signet" choice:"simnet"`
	DebugLevel     string `short:"d" long:"debuglevel" description:"Logging level {trace, debug, info, warn, error, critical, off}"`
	LogFile        string `long:"logfile" description:"Also write the log to this file, rotating it by size"`
	MaxLogFileSize int    `long:"maxlogfilesize" description:"Maximum log file size in MB before it is rotated"`
	MaxLogFiles    int    `long:"maxlogfiles" description:"Maximum number of rotated log files to keep (0 for all)"`

	// params are the network parameters selected by Network. They are
	// set by validate.
	params *chaincfg.Params

	// logLevel is the parsed DebugLevel.
	logLevel btclog.Level
}

// defaultConfig returns a config with every option at its default.
func defaultConfig() *config {
	return &config{
		Network:        defaultNetwork,
		DebugLevel:     defaultLogLevel,
		MaxLogFileSize: defaultMaxLogFileSize,
		MaxLogFiles:    defaultMaxLogFiles,
	}
}

// validate checks the options after parsing and resolves the values derived
// from them.
func (c *config) validate() error {
	params, err := networkParams(c.Network)
	if err != nil {
		return err
	}
	c.params = params

	level, ok := btclog.LevelFromString(c.DebugLevel)
	if !ok {
		return fmt.Errorf("invalid debug level: %v", c.DebugLevel)
	}
	c.logLevel = level

	if c.LogFile != "" && c.MaxLogFileSize <= 0 {
		return fmt.Errorf("maxlogfilesize must be positive, got %d",
			c.MaxLogFileSize)
	}
	if c.MaxLogFiles < 0 {
		return fmt.Errorf("maxlogfiles must not be negative, got %d",
			c.MaxLogFiles)
	}

	return nil
}

// networkParams returns the chain parameters for the named network.
func networkParams(network string) (*chaincfg.Params, error) {
	switch strings.ToLower(network) {
	case "mainnet":
		return &chaincfg.MainNetParams, nil

	case "testnet", "testnet3":
		return &chaincfg.TestNet3Params, nil

	case "regtest":
		return &chaincfg.RegressionNetParams, nil

	case "signet":
		return &chaincfg.SigNetParams, nil

	case "simnet":
		return &chaincfg.SimNetParams, nil

	default:
		return nil, fmt.Errorf("unknown network: %v", network)
	}
}
