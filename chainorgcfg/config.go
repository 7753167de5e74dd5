// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chainorgcfg defines the settings object cmd/chainorgd loads
// at startup: the byte/sigop fee floors, the minimum output size, the
// scrypt selector, the consensus network selector, and the data/log
// directories a runnable daemon needs.
package chainorgcfg

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jessevdk/go-flags"

	"github.com/ordata-labs/chainorg/chaincfg"
)

const (
	defaultConfigFilename       = "chainorgd.conf"
	defaultByteFeeSatoshis      = 1.0
	defaultSigopFeeSatoshis     = 0.0
	defaultMinimumOutputSatoshi = 546
	defaultNetwork              = "mainnet"
)

// homeDir returns an OS appropriate home directory for chainorgd,
// mirroring btcd/config.go's btcdHomeDir.
func homeDir() string {
	if appData := os.Getenv("APPDATA"); appData != "" {
		return filepath.Join(appData, "chainorgd")
	}
	if home := os.Getenv("HOME"); home != "" {
		return filepath.Join(home, ".chainorgd")
	}
	return "."
}

var (
	defaultHomeDir = homeDir()
	defaultConfig  = filepath.Join(defaultHomeDir, defaultConfigFilename)
	defaultDataDir = filepath.Join(defaultHomeDir, "data")
	defaultLogDir  = filepath.Join(defaultHomeDir, "logs")
)

// Config is the flat option struct parsed from the command line and an
// optional config file.
type Config struct {
	ConfigFile string `short:"C" long:"configfile" description:"Path to configuration file"`
	DataDir    string `short:"b" long:"datadir" description:"Data directory (reported at startup; the in-memory store writes nothing to it)"`
	LogDir     string `long:"logdir" description:"Directory to store log output"`
	DebugLevel string `short:"d" long:"debuglevel" description:"Logging level {trace, debug, info, warn, error, critical}"`

	Network string `long:"network" description:"Consensus network to track {mainnet, simnet}"`
	Scrypt  bool   `long:"scrypt" description:"Select the scrypt proof-of-work function over double-SHA256"`

	ByteFeeSatoshis       float64 `long:"byte_fee_satoshis" description:"Minimum fee, in satoshis per serialized byte, for a transaction to be accepted"`
	SigopFeeSatoshis      float64 `long:"sigop_fee_satoshis" description:"Minimum fee, in satoshis per signature operation, for a transaction to be accepted"`
	MinimumOutputSatoshis int64   `long:"minimum_output_satoshis" description:"Outputs below this value are rejected as dust"`
	DistinguishOrphans    bool    `long:"distinguish_orphans" description:"Report orphan headers as ErrOrphanBlock instead of folding them into ErrDuplicateBlock"`
}

// Params resolves the Network selection to a chaincfg.Params value.
func (c *Config) Params() (*chaincfg.Params, error) {
	var params chaincfg.Params
	switch c.Network {
	case "mainnet":
		params = chaincfg.MainNetParams
	case "simnet":
		params = chaincfg.SimNetParams
	default:
		return nil, fmt.Errorf("unknown network %q", c.Network)
	}
	params.Scrypt = c.Scrypt
	return &params, nil
}

// fileExists reports whether the named file or directory exists.
func fileExists(name string) bool {
	_, err := os.Stat(name)
	return err == nil
}

// Load initializes a Config with sane defaults, then overlays a config
// file (if present) and command line options, command line options
// taking precedence, mirroring btcd/config.go's loadConfig four-step
// process.
func Load() (*Config, []string, error) {
	cfg := Config{
		ConfigFile:            defaultConfig,
		DataDir:               defaultDataDir,
		LogDir:                defaultLogDir,
		DebugLevel:            "info",
		Network:               defaultNetwork,
		ByteFeeSatoshis:       defaultByteFeeSatoshis,
		SigopFeeSatoshis:      defaultSigopFeeSatoshis,
		MinimumOutputSatoshis: defaultMinimumOutputSatoshi,
	}

	if fileExists(defaultConfigFilename) {
		cfg.ConfigFile = defaultConfigFilename
	}

	preCfg := cfg
	preParser := flags.NewParser(&preCfg, flags.Default)
	if _, err := preParser.Parse(); err != nil {
		if e, ok := err.(*flags.Error); !ok || e.Type != flags.ErrHelp {
			preParser.WriteHelp(os.Stderr)
		}
		return nil, nil, err
	}

	parser := flags.NewParser(&cfg, flags.Default)
	if err := flags.NewIniParser(parser).ParseFile(preCfg.ConfigFile); err != nil {
		if _, ok := err.(*os.PathError); !ok {
			fmt.Fprintln(os.Stderr, err)
			parser.WriteHelp(os.Stderr)
			return nil, nil, err
		}
	}

	remaining, err := parser.Parse()
	if err != nil {
		if e, ok := err.(*flags.Error); !ok || e.Type != flags.ErrHelp {
			parser.WriteHelp(os.Stderr)
		}
		return nil, nil, err
	}

	if cfg.ByteFeeSatoshis < 0 || cfg.SigopFeeSatoshis < 0 {
		return nil, nil, fmt.Errorf("byte_fee_satoshis and sigop_fee_satoshis must be non-negative")
	}
	if cfg.MinimumOutputSatoshis < 0 {
		return nil, nil, fmt.Errorf("minimum_output_satoshis must be non-negative")
	}

	return &cfg, remaining, nil
}
